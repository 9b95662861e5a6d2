package cache

import (
	"sync"
	"time"

	"github.com/getmentor/course-feedback-api/internal/feedback"
	"github.com/getmentor/course-feedback-api/pkg/logger"
	"github.com/getmentor/course-feedback-api/pkg/metrics"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	sessionCacheName   = "feedback_sessions"
	sessionCleanupTick = time.Minute
)

// Session pairs one form engine with the lock that keeps it single-caller
type Session struct {
	ID     string
	mu     sync.Mutex
	engine *feedback.Engine
}

// Do runs fn with exclusive access to the session's engine
func (s *Session) Do(fn func(e *feedback.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.engine)
}

// SessionCache holds live form sessions in memory. Idle sessions expire after ttl
// and every access extends the deadline.
type SessionCache struct {
	cache     *gocache.Cache
	ttl       time.Duration
	newEngine func() *feedback.Engine
}

// NewSessionCache creates a cache whose sessions are built by newEngine
func NewSessionCache(ttl time.Duration, newEngine func() *feedback.Engine) *SessionCache {
	c := gocache.New(ttl, sessionCleanupTick)
	c.OnEvicted(func(id string, _ interface{}) {
		logger.Debug("Feedback session expired", zap.String("session_id", id))
		metrics.CacheSize.WithLabelValues(sessionCacheName).Dec()
	})

	return &SessionCache{
		cache:     c,
		ttl:       ttl,
		newEngine: newEngine,
	}
}

// Create starts a new session with a blank form
func (sc *SessionCache) Create() *Session {
	s := &Session{
		ID:     uuid.NewString(),
		engine: sc.newEngine(),
	}
	sc.cache.Set(s.ID, s, sc.ttl)
	metrics.CacheSize.WithLabelValues(sessionCacheName).Inc()
	return s
}

// Get returns the session and refreshes its expiry
func (sc *SessionCache) Get(id string) (*Session, bool) {
	data, found := sc.cache.Get(id)
	if !found {
		metrics.CacheMisses.WithLabelValues(sessionCacheName).Inc()
		return nil, false
	}
	s, ok := data.(*Session)
	if !ok {
		logger.Error("Invalid session cache data type", zap.String("session_id", id))
		sc.cache.Delete(id)
		return nil, false
	}
	metrics.CacheHits.WithLabelValues(sessionCacheName).Inc()
	sc.cache.Set(id, s, sc.ttl)
	return s, true
}

// Count returns the number of live sessions
func (sc *SessionCache) Count() int {
	return sc.cache.ItemCount()
}
