package shield

import "time"

// Blacklist holds temporarily banned identities. It is consulted before any
// other gate; entries lapse purely by TTL, there is no unban operation here.
type Blacklist struct {
	entries *Store[time.Time]
	ttl     time.Duration
}

// NewBlacklist creates a blacklist holding at most maxEntries bans, each
// lasting ttl from the moment it was issued.
func NewBlacklist(maxEntries int, ttl time.Duration) *Blacklist {
	return &Blacklist{
		entries: NewStore[time.Time](maxEntries, ttl),
		ttl:     ttl,
	}
}

// Ban bans the identity for the configured TTL. Re-banning restarts the
// clock.
func (b *Blacklist) Ban(key string) {
	b.entries.Set(key, time.Now())
}

// IsBanned reports whether the identity is currently banned. Reading keeps
// an active ban recent so a hammering client cannot evict its own entry
// under capacity pressure.
func (b *Blacklist) IsBanned(key string) bool {
	_, ok := b.entries.Get(key)
	return ok
}

// Len returns the number of tracked bans.
func (b *Blacklist) Len() int { return b.entries.Len() }

// PurgeExpired drops lapsed bans and returns how many were removed.
func (b *Blacklist) PurgeExpired() int { return b.entries.PurgeExpired() }
