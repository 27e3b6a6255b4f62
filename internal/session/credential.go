// Package session owns the client's identity: a cached credential with
// an explicit expiry check, and the bootstrap flow that obtains a new
// one from the backend when the cache is stale.
package session

import (
	"time"

	"github.com/scene-hunter/scenehunter/internal/model"
)

// DefaultTTL is how long a cached credential is trusted before a fresh
// token is requested.
const DefaultTTL = 3 * time.Hour

// Credential is the client's identity, cached between runs.
type Credential struct {
	Token      string         `json:"token"`
	PlayerID   model.PlayerID `json:"player_id"`
	PlayerName string         `json:"player_name,omitempty"`
	Language   string         `json:"language,omitempty"`
	SavedAt    time.Time      `json:"save_date_time"`
}

// Expired reports whether the credential is older than ttl at the
// given instant. It is a pure function of its inputs.
func (c *Credential) Expired(now time.Time, ttl time.Duration) bool {
	if c.SavedAt.IsZero() {
		return true
	}
	return now.Sub(c.SavedAt) > ttl
}

// Usable reports whether the credential can authenticate requests.
func (c *Credential) Usable(now time.Time, ttl time.Duration) bool {
	return c.Token != "" && c.PlayerID != "" && !c.Expired(now, ttl)
}
