package cache

import (
	"strings"
	"time"

	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
	"github.com/smallbiznis/hushbox/internal/clock"
)

const defaultProfileTTL = 30 * time.Second

// ProfileCache stores public profiles served on /u/<username>.
type ProfileCache interface {
	Get(username string) (authdomain.PublicProfile, bool)
	Set(username string, profile authdomain.PublicProfile)
	Invalidate(username string)
}

type profileCache struct {
	profiles Cache[string, authdomain.PublicProfile]
	ttl      time.Duration
}

func NewProfileCache(clk clock.Clock) ProfileCache {
	return &profileCache{
		profiles: NewTTLCache[string, authdomain.PublicProfile](clk),
		ttl:      defaultProfileTTL,
	}
}

func (c *profileCache) Get(username string) (authdomain.PublicProfile, bool) {
	key := cacheKey(username)
	if key == "" {
		return authdomain.PublicProfile{}, false
	}
	return c.profiles.Get(key)
}

func (c *profileCache) Set(username string, profile authdomain.PublicProfile) {
	key := cacheKey(username)
	if key == "" {
		return
	}
	c.profiles.Set(key, profile, c.ttl)
}

func (c *profileCache) Invalidate(username string) {
	if key := cacheKey(username); key != "" {
		c.profiles.Delete(key)
	}
}

// cacheKey keeps case: usernames are unique case-sensitively.
func cacheKey(username string) string {
	return strings.TrimSpace(username)
}
