package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"dreamportal/internal/logger"
)

// Feed is the transport for change notifications, keyed by owner. The
// remote backend fans out across processes via Redis pub/sub; the local
// backend fans out in process.
type Feed interface {
	Publish(ownerID string, change Change)
	Subscribe(ownerID string, fn func(Change)) (Subscription, error)
}

// memoryFeed delivers changes to in-process subscribers. Each subscriber
// drains its own buffered channel on a dedicated goroutine, so a slow
// consumer never blocks the writer that published the change.
type memoryFeed struct {
	mu   sync.RWMutex
	subs map[string][]*memorySub
}

// NewMemoryFeed creates an in-process change feed.
func NewMemoryFeed() Feed {
	return &memoryFeed{subs: make(map[string][]*memorySub)}
}

type memorySub struct {
	feed    *memoryFeed
	ownerID string
	ch      chan Change
	done    chan struct{}
	once    sync.Once
}

func (f *memoryFeed) Publish(ownerID string, change Change) {
	f.mu.RLock()
	subs := make([]*memorySub, len(f.subs[ownerID]))
	copy(subs, f.subs[ownerID])
	f.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.ch <- change:
		case <-sub.done:
		}
	}
}

func (f *memoryFeed) Subscribe(ownerID string, fn func(Change)) (Subscription, error) {
	sub := &memorySub{
		feed:    f,
		ownerID: ownerID,
		ch:      make(chan Change, 64),
		done:    make(chan struct{}),
	}

	f.mu.Lock()
	f.subs[ownerID] = append(f.subs[ownerID], sub)
	f.mu.Unlock()

	go func() {
		for {
			select {
			case change := <-sub.ch:
				fn(change)
			case <-sub.done:
				return
			}
		}
	}()

	return sub, nil
}

func (s *memorySub) Close() {
	s.once.Do(func() {
		close(s.done)
		s.feed.mu.Lock()
		defer s.feed.mu.Unlock()
		subs := s.feed.subs[s.ownerID]
		for i, sub := range subs {
			if sub == s {
				s.feed.subs[s.ownerID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	})
}

// redisFeed carries changes over Redis pub/sub so every connected session
// of the couple, in any process, observes the same stream.
type redisFeed struct {
	client *redis.Client
}

// NewRedisFeed creates a feed over an existing Redis client.
func NewRedisFeed(client *redis.Client) Feed {
	return &redisFeed{client: client}
}

func feedChannel(ownerID string) string {
	return "portal:feed:" + ownerID
}

func (f *redisFeed) Publish(ownerID string, change Change) {
	payload, err := json.Marshal(change)
	if err != nil {
		logger.Get().Errorw("feed publish marshal failed", "owner_id", ownerID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := f.client.Publish(ctx, feedChannel(ownerID), payload).Err(); err != nil {
		logger.Get().Errorw("feed publish failed", "owner_id", ownerID, "error", err)
	}
}

func (f *redisFeed) Subscribe(ownerID string, fn func(Change)) (Subscription, error) {
	pubsub := f.client.Subscribe(context.Background(), feedChannel(ownerID))

	// Force the subscription onto the wire before returning, so no change
	// published after Subscribe can be missed.
	if _, err := pubsub.Receive(context.Background()); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &redisSub{pubsub: pubsub}
	go func() {
		for msg := range pubsub.Channel() {
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				logger.Get().Warnw("discarding malformed feed payload", "owner_id", ownerID, "error", err)
				continue
			}
			fn(change)
		}
	}()

	return sub, nil
}

type redisSub struct {
	pubsub *redis.PubSub
	once   sync.Once
}

func (s *redisSub) Close() {
	s.once.Do(func() {
		if err := s.pubsub.Close(); err != nil {
			logger.Get().Warnw("feed unsubscribe failed", "error", err)
		}
	})
}
