package service

import (
	"strings"

	"github.com/samber/lo"
	"github.com/subonly/gate/internal/modules/policy/domain"
	settingsDomain "github.com/subonly/gate/internal/modules/settings/domain"
)

// Matcher decides allow-list membership for a channel reference. Pure.
type Matcher struct{}

// NewMatcher creates a new channel identity matcher.
func NewMatcher() *Matcher {
	return &Matcher{}
}

// IsChannelAllowed reports whether the reference names a channel on the
// allow-list. An empty allow-list never matches. Handle comparison is
// case-insensitive and tolerates a leading @ on either side; id comparison is
// exact, against both the user-supplied and the resolved id field, since a
// channel added by handle may not have its canonical id yet.
func (m *Matcher) IsChannelAllowed(ref domain.ChannelRef, channels []settingsDomain.Channel) bool {
	if len(channels) == 0 {
		return false
	}

	switch ref.Type {
	case domain.RefTypeHandle:
		want := strings.ToLower(ref.Value)
		return lo.SomeBy(channels, func(ch settingsDomain.Channel) bool {
			if ch.Handle == "" {
				return false
			}
			have := strings.ToLower(ch.Handle)
			return have == want ||
				have == "@"+want ||
				strings.TrimPrefix(have, "@") == want
		})
	case domain.RefTypeId:
		return lo.SomeBy(channels, func(ch settingsDomain.Channel) bool {
			return (ch.ID != "" && ch.ID == ref.Value) ||
				(ch.ChannelID != "" && ch.ChannelID == ref.Value)
		})
	default:
		return false
	}
}
