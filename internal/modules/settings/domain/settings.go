package domain

import (
	"strings"
	"time"
)

// Channel is a user-curated allow-list entry. A channel is matchable only if
// it carries a handle or an id; both may be present, and ChannelID is filled
// in later when the resolver discovers the canonical platform id.
type Channel struct {
	Name      string    `json:"name"`
	Handle    string    `json:"handle,omitempty"`
	ID        string    `json:"id,omitempty"`
	ChannelID string    `json:"channelId,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// NormalizedHandle returns the handle lowercased with the leading @ removed,
// or "" when the channel has no handle.
func (c Channel) NormalizedHandle() string {
	if c.Handle == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(c.Handle), "@")
}

// AnyID returns the canonical platform id if known, falling back to the
// user-supplied one.
func (c Channel) AnyID() string {
	if c.ChannelID != "" {
		return c.ChannelID
	}
	return c.ID
}

// Matchable reports whether the channel can ever match a reference.
func (c Channel) Matchable() bool {
	return c.Handle != "" || c.ID != "" || c.ChannelID != ""
}

// SameIdentity reports whether two channels refer to the same channel,
// by normalized handle or by either id field. Used for allow-list
// uniqueness, not for reference matching.
func (c Channel) SameIdentity(other Channel) bool {
	if h := c.NormalizedHandle(); h != "" && h == other.NormalizedHandle() {
		return true
	}
	for _, id := range []string{c.ID, c.ChannelID} {
		if id == "" {
			continue
		}
		if id == other.ID || id == other.ChannelID {
			return true
		}
	}
	return false
}

// Rule is a recurring weekly time window during which gating is active.
// Days are weekday numbers 0-6 with 0=Sunday, kept sorted ascending.
// Times are "HH:MM" 24-hour wall clock strings.
type Rule struct {
	Days      []int  `json:"days"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// Schedule is the optional time-gating sub-config.
type Schedule struct {
	Enabled bool   `json:"enabled"`
	Rules   []Rule `json:"rules"`
}

// Settings is the whole persisted configuration.
type Settings struct {
	Enabled  bool      `json:"enabled"`
	Channels []Channel `json:"channels"`
	Schedule *Schedule `json:"schedule,omitempty"`
}

// Default returns the first-run configuration: gating on, empty allow-list,
// schedule present but disabled.
func Default() *Settings {
	return &Settings{
		Enabled:  true,
		Channels: []Channel{},
		Schedule: &Schedule{Enabled: false, Rules: []Rule{}},
	}
}
