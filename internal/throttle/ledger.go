package throttle

import (
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"pincheck/internal/metrics"
)

const (
	// DefaultUserCooldown is the per-user window between check-ins.
	DefaultUserCooldown = 30 * time.Second

	// DefaultOriginCooldown is the per-origin window between check-ins.
	DefaultOriginCooldown = 5 * time.Second

	unknownOrigin = "unknown"
)

// Ledger gates check-ins with two independent cooldown windows, one keyed by
// user and one keyed by origin. An allowed attempt starts both cooldowns; a
// rejected attempt leaves them untouched.
type Ledger struct {
	mu      sync.Mutex
	users   *gocache.Cache
	origins *gocache.Cache
}

// NewLedger creates a ledger with the given window lengths.
func NewLedger(userCooldown, originCooldown time.Duration) *Ledger {
	if userCooldown <= 0 {
		userCooldown = DefaultUserCooldown
	}
	if originCooldown <= 0 {
		originCooldown = DefaultOriginCooldown
	}
	return &Ledger{
		users:   gocache.New(userCooldown, 2*userCooldown),
		origins: gocache.New(originCooldown, 2*originCooldown),
	}
}

// TryAcquire reports whether a check-in for userKey from originKey may
// proceed, recording a fresh entry in both windows when it may.
func (l *Ledger) TryAcquire(userKey, originKey string) bool {
	if originKey == "" {
		originKey = unknownOrigin
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, found := l.users.Get(userKey); found {
		metrics.RecordThrottled("user")
		return false
	}
	if _, found := l.origins.Get(originKey); found {
		metrics.RecordThrottled("origin")
		return false
	}

	l.users.SetDefault(userKey, struct{}{})
	l.origins.SetDefault(originKey, struct{}{})
	return true
}
