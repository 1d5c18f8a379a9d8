package service

import (
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/subonly/gate/internal/modules/settings/domain"
)

// Service evaluates schedule rules. Pure: no clock reads, callers pass now.
type Service struct{}

// New creates a new schedule service.
func New() *Service {
	return &Service{}
}

// ParseClock converts an "HH:MM" 24-hour string to minutes since midnight.
func ParseClock(s string) (int, bool) {
	hh, mm, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// InRule reports whether the given weekday (0=Sunday) and minute of day fall
// inside the rule's window.
//
// A window with EndTime after StartTime is half-open: it matches [start, end),
// so a rule ending at 17:00 stops matching exactly at 17:00. A window with
// EndTime at or before StartTime wraps midnight (22:00-06:00); as a
// consequence StartTime == EndTime matches every minute of the listed days.
// Malformed times make the rule match nothing.
func (s *Service) InRule(rule domain.Rule, weekday, minuteOfDay int) bool {
	if !lo.Contains(rule.Days, weekday) {
		return false
	}

	start, ok := ParseClock(rule.StartTime)
	if !ok {
		return false
	}
	end, ok := ParseClock(rule.EndTime)
	if !ok {
		return false
	}

	if end > start {
		return minuteOfDay >= start && minuteOfDay < end
	}
	// Overnight window.
	return minuteOfDay >= start || minuteOfDay < end
}

// InRuleAt is InRule against a concrete instant.
func (s *Service) InRuleAt(rule domain.Rule, now time.Time) bool {
	return s.InRule(rule, int(now.Weekday()), now.Hour()*60+now.Minute())
}

// IsBlockingActive reports whether gating is active at the given instant.
// The master switch wins: disabled settings mean no gating regardless of
// schedule. With the master switch on, an enabled schedule with at least one
// rule gates only while some rule matches; otherwise gating is always on.
func (s *Service) IsBlockingActive(settings *domain.Settings, now time.Time) bool {
	if settings == nil || !settings.Enabled {
		return false
	}

	sched := settings.Schedule
	if sched != nil && sched.Enabled && len(sched.Rules) > 0 {
		return lo.SomeBy(sched.Rules, func(rule domain.Rule) bool {
			return s.InRuleAt(rule, now)
		})
	}

	return true
}
