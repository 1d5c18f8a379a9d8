package service

import (
	"testing"
	"time"

	"github.com/subonly/gate/internal/modules/settings/domain"
)

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantOK  bool
	}{
		{"00:00", 0, true},
		{"09:00", 540, true},
		{"17:00", 1020, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"-1:30", 0, false},
		{"nine", 0, false},
		{"9", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParseClock(tt.in)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParseClock(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestInRule_HalfOpenInterval(t *testing.T) {
	svc := New()
	rule := domain.Rule{Days: []int{1, 2, 3, 4, 5}, StartTime: "09:00", EndTime: "17:00"}

	tests := []struct {
		name    string
		weekday int
		minute  int
		want    bool
	}{
		{"start boundary matches", 1, 9 * 60, true},
		{"mid window matches", 1, 10 * 60, true},
		{"last minute matches", 1, 17*60 - 1, true},
		{"end boundary does not match", 1, 17 * 60, false},
		{"before window", 1, 9*60 - 1, false},
		{"after window", 1, 18 * 60, false},
		{"weekday not listed", 6, 10 * 60, false},
		{"sunday not listed", 0, 10 * 60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.InRule(rule, tt.weekday, tt.minute); got != tt.want {
				t.Errorf("InRule(day=%d, minute=%d) = %v, want %v", tt.weekday, tt.minute, got, tt.want)
			}
		})
	}
}

func TestInRule_OvernightWraparound(t *testing.T) {
	svc := New()
	rule := domain.Rule{Days: []int{5}, StartTime: "22:00", EndTime: "06:00"}

	tests := []struct {
		name   string
		minute int
		want   bool
	}{
		{"late evening matches", 23 * 60, true},
		{"start boundary matches", 22 * 60, true},
		{"just before midnight matches", 24*60 - 1, true},
		{"early morning matches", 5 * 60, true},
		{"midnight matches", 0, true},
		{"end boundary does not match", 6 * 60, false},
		{"daytime does not match", 12 * 60, false},
		{"just before start does not match", 22*60 - 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.InRule(rule, 5, tt.minute); got != tt.want {
				t.Errorf("InRule(minute=%d) = %v, want %v", tt.minute, got, tt.want)
			}
		})
	}
}

// A rule whose start and end coincide falls into the wraparound branch and
// matches the whole day. Whether that was intended by the rule author is
// debatable, but it is the behavior callers depend on.
func TestInRule_ZeroWidthWindowMatchesWholeDay(t *testing.T) {
	svc := New()
	rule := domain.Rule{Days: []int{3}, StartTime: "10:00", EndTime: "10:00"}

	for _, minute := range []int{0, 10 * 60, 10*60 - 1, 10*60 + 1, 23*60 + 59} {
		if !svc.InRule(rule, 3, minute) {
			t.Errorf("InRule(minute=%d) = false, want true for zero-width window", minute)
		}
	}
	if svc.InRule(rule, 4, 10*60) {
		t.Error("zero-width window matched a day not in the rule")
	}
}

func TestInRule_MalformedTimesNeverMatch(t *testing.T) {
	svc := New()
	tests := []domain.Rule{
		{Days: []int{1}, StartTime: "9am", EndTime: "17:00"},
		{Days: []int{1}, StartTime: "09:00", EndTime: "25:00"},
		{Days: []int{1}, StartTime: "", EndTime: ""},
	}

	for _, rule := range tests {
		for minute := 0; minute < 24*60; minute += 30 {
			if svc.InRule(rule, 1, minute) {
				t.Errorf("rule %+v matched minute %d, want no match", rule, minute)
			}
		}
	}
}

func TestIsBlockingActive(t *testing.T) {
	svc := New()
	weekdayRule := domain.Rule{Days: []int{1, 2, 3, 4, 5}, StartTime: "09:00", EndTime: "17:00"}

	// 2025-01-06 is a Monday.
	monday10 := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	monday18 := time.Date(2025, 1, 6, 18, 0, 0, 0, time.UTC)
	saturday10 := time.Date(2025, 1, 4, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		settings *domain.Settings
		now      time.Time
		want     bool
	}{
		{
			name:     "master switch off wins over everything",
			settings: &domain.Settings{Enabled: false, Schedule: &domain.Schedule{Enabled: true, Rules: []domain.Rule{weekdayRule}}},
			now:      monday10,
			want:     false,
		},
		{
			name:     "enabled with no schedule is always active",
			settings: &domain.Settings{Enabled: true},
			now:      monday18,
			want:     true,
		},
		{
			name:     "enabled schedule with zero rules behaves as absent",
			settings: &domain.Settings{Enabled: true, Schedule: &domain.Schedule{Enabled: true, Rules: []domain.Rule{}}},
			now:      monday18,
			want:     true,
		},
		{
			name:     "disabled schedule behaves as absent",
			settings: &domain.Settings{Enabled: true, Schedule: &domain.Schedule{Enabled: false, Rules: []domain.Rule{weekdayRule}}},
			now:      monday18,
			want:     true,
		},
		{
			name:     "inside weekday window",
			settings: &domain.Settings{Enabled: true, Schedule: &domain.Schedule{Enabled: true, Rules: []domain.Rule{weekdayRule}}},
			now:      monday10,
			want:     true,
		},
		{
			name:     "outside weekday window",
			settings: &domain.Settings{Enabled: true, Schedule: &domain.Schedule{Enabled: true, Rules: []domain.Rule{weekdayRule}}},
			now:      monday18,
			want:     false,
		},
		{
			name:     "weekend is not in the rule",
			settings: &domain.Settings{Enabled: true, Schedule: &domain.Schedule{Enabled: true, Rules: []domain.Rule{weekdayRule}}},
			now:      saturday10,
			want:     false,
		},
		{
			name: "any rule matching is enough",
			settings: &domain.Settings{Enabled: true, Schedule: &domain.Schedule{Enabled: true, Rules: []domain.Rule{
				{Days: []int{0}, StartTime: "08:00", EndTime: "09:00"},
				weekdayRule,
			}}},
			now:  monday10,
			want: true,
		},
		{
			name:     "nil settings is inactive",
			settings: nil,
			now:      monday10,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := svc.IsBlockingActive(tt.settings, tt.now); got != tt.want {
				t.Errorf("IsBlockingActive() = %v, want %v", got, tt.want)
			}
		})
	}
}
