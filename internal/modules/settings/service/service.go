package service

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/samber/lo"
	"github.com/samber/oops"
	resolverDomain "github.com/subonly/gate/internal/modules/resolver/domain"
	scheduleService "github.com/subonly/gate/internal/modules/schedule/service"
	"github.com/subonly/gate/internal/modules/settings/domain"
	"github.com/subonly/gate/internal/modules/settings/repository"
	"github.com/subonly/gate/internal/shared/errors"
)

// Resolver fills in a channel's canonical identity from its handle.
type Resolver interface {
	Resolve(ctx context.Context, handle string) (*resolverDomain.Info, error)
}

// Service handles settings business logic. All mutations go through the
// repository's atomic Update, so interleaved callers cannot lose each
// other's writes.
type Service struct {
	repo     repository.Repository
	resolver Resolver
}

// New creates a new settings service. resolver may be nil, in which case
// channels added by handle keep an empty canonical id until a later
// resolution fills it in.
func New(repo repository.Repository, resolver Resolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// Get returns the current settings.
func (s *Service) Get() (*domain.Settings, error) {
	return s.repo.Load()
}

// SetEnabled flips the master switch.
func (s *Service) SetEnabled(enabled bool) (*domain.Settings, error) {
	return s.repo.Update(func(settings *domain.Settings) error {
		settings.Enabled = enabled
		return nil
	})
}

// Toggle flips the master switch to the opposite state and returns the new
// settings.
func (s *Service) Toggle() (*domain.Settings, error) {
	return s.repo.Update(func(settings *domain.Settings) error {
		settings.Enabled = !settings.Enabled
		return nil
	})
}

// AddChannel adds a channel to the allow-list. The channel must carry a
// handle or an id. When the canonical id is missing and a resolver is
// available, it is resolved best-effort first: a resolution failure is
// logged, not fatal, so the user is never prevented from allowing a channel
// by a flaky network. Duplicates (by handle-or-id identity) are rejected.
func (s *Service) AddChannel(ctx context.Context, channel domain.Channel) (*domain.Settings, error) {
	if !channel.Matchable() {
		return nil, errors.ErrChannelUnmatchable
	}
	if channel.Name == "" {
		channel.Name = lo.CoalesceOrEmpty(channel.NormalizedHandle(), channel.AnyID())
	}
	channel.AddedAt = time.Now()

	// Resolve outside the store lock; dedupe happens inside Update.
	if channel.ChannelID == "" && channel.Handle != "" && s.resolver != nil {
		if info, err := s.resolver.Resolve(ctx, channel.Handle); err != nil {
			slog.Warn("Could not resolve channel info on add", "handle", channel.Handle, "error", err)
		} else {
			channel.ChannelID = info.ChannelID
			if info.Name != "" && channel.Name == channel.NormalizedHandle() {
				channel.Name = info.Name
			}
			if info.Avatar != "" {
				channel.Avatar = info.Avatar
			}
		}
	}

	return s.repo.Update(func(settings *domain.Settings) error {
		exists := lo.SomeBy(settings.Channels, func(existing domain.Channel) bool {
			return existing.SameIdentity(channel)
		})
		if exists {
			return oops.With("handle", channel.Handle, "id", channel.AnyID()).Wrap(errors.ErrChannelExists)
		}
		settings.Channels = append(settings.Channels, channel)
		return nil
	})
}

// UpdateChannelIdentity stores a later-resolved canonical id, name and avatar
// on an existing channel, matched by identity against the given channel.
func (s *Service) UpdateChannelIdentity(channel domain.Channel, info resolverDomain.Info) (*domain.Settings, error) {
	return s.repo.Update(func(settings *domain.Settings) error {
		for i := range settings.Channels {
			if !settings.Channels[i].SameIdentity(channel) {
				continue
			}
			if info.ChannelID != "" {
				settings.Channels[i].ChannelID = info.ChannelID
			}
			if info.Name != "" {
				settings.Channels[i].Name = info.Name
			}
			if info.Avatar != "" {
				settings.Channels[i].Avatar = info.Avatar
			}
			return nil
		}
		return errors.ErrChannelNotFound
	})
}

// RemoveChannel removes the channel whose handle or id equals key.
func (s *Service) RemoveChannel(key string) (*domain.Settings, error) {
	probe := domain.Channel{Handle: key, ID: key}
	return s.repo.Update(func(settings *domain.Settings) error {
		kept := lo.Reject(settings.Channels, func(ch domain.Channel, _ int) bool {
			return ch.SameIdentity(probe)
		})
		if len(kept) == len(settings.Channels) {
			return oops.With("key", key).Wrap(errors.ErrChannelNotFound)
		}
		settings.Channels = kept
		return nil
	})
}

// SetScheduleEnabled turns time-based gating on or off.
func (s *Service) SetScheduleEnabled(enabled bool) (*domain.Settings, error) {
	return s.repo.Update(func(settings *domain.Settings) error {
		if settings.Schedule == nil {
			settings.Schedule = &domain.Schedule{}
		}
		settings.Schedule.Enabled = enabled
		return nil
	})
}

// AddRule validates and appends a schedule rule. Days must be weekday
// numbers 0-6; duplicates are collapsed and the set is stored sorted
// ascending. Times must parse as HH:MM.
func (s *Service) AddRule(rule domain.Rule) (*domain.Settings, error) {
	if len(rule.Days) == 0 {
		return nil, errors.ErrInvalidDay
	}
	for _, day := range rule.Days {
		if day < 0 || day > 6 {
			return nil, oops.With("day", day).Wrap(errors.ErrInvalidDay)
		}
	}
	if _, ok := scheduleService.ParseClock(rule.StartTime); !ok {
		return nil, oops.With("start", rule.StartTime).Wrap(errors.ErrInvalidTime)
	}
	if _, ok := scheduleService.ParseClock(rule.EndTime); !ok {
		return nil, oops.With("end", rule.EndTime).Wrap(errors.ErrInvalidTime)
	}

	rule.Days = lo.Uniq(rule.Days)
	sort.Ints(rule.Days)

	return s.repo.Update(func(settings *domain.Settings) error {
		if settings.Schedule == nil {
			settings.Schedule = &domain.Schedule{}
		}
		settings.Schedule.Rules = append(settings.Schedule.Rules, rule)
		return nil
	})
}

// RemoveRule deletes the schedule rule at the given index.
func (s *Service) RemoveRule(index int) (*domain.Settings, error) {
	return s.repo.Update(func(settings *domain.Settings) error {
		if settings.Schedule == nil || index < 0 || index >= len(settings.Schedule.Rules) {
			return oops.With("index", index).Wrap(errors.ErrRuleNotFound)
		}
		settings.Schedule.Rules = append(settings.Schedule.Rules[:index], settings.Schedule.Rules[index+1:]...)
		return nil
	})
}
