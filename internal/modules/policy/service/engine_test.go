package service

import (
	"testing"
	"time"

	"github.com/subonly/gate/internal/modules/policy/domain"
	scheduleService "github.com/subonly/gate/internal/modules/schedule/service"
	settingsDomain "github.com/subonly/gate/internal/modules/settings/domain"
)

func newTestEngine() *Engine {
	return NewEngine(scheduleService.New(), NewClassifier(), NewMatcher())
}

func baseSettings() *settingsDomain.Settings {
	return &settingsDomain.Settings{
		Enabled: true,
		Channels: []settingsDomain.Channel{
			{Name: "Acme", Handle: "@acme"},
		},
		Schedule: &settingsDomain.Schedule{Enabled: false},
	}
}

func TestEngine_Decide(t *testing.T) {
	e := newTestEngine()
	now := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		settings *settingsDomain.Settings
		url      string
		want     domain.Decision
	}{
		{"allowed channel", baseSettings(), "https://youtube.com/@acme", domain.DecisionAllow},
		{"allowed channel, different case", baseSettings(), "https://youtube.com/@ACME", domain.DecisionAllow},
		{"unlisted channel", baseSettings(), "https://youtube.com/@other", domain.DecisionBlock},
		{"homepage", baseSettings(), "https://youtube.com/", domain.DecisionBlock},
		{"subscriptions", baseSettings(), "https://youtube.com/feed/subscriptions", domain.DecisionAllow},
		{"video page defers", baseSettings(), "https://youtube.com/watch?v=abc", domain.DecisionPending},
		{"other site", baseSettings(), "https://example.com/", domain.DecisionAllow},
		{"malformed url fails open", baseSettings(), "not a url at all\x7f://", domain.DecisionAllow},
		{
			name: "master switch off allows everything",
			settings: func() *settingsDomain.Settings {
				s := baseSettings()
				s.Enabled = false
				return s
			}(),
			url:  "https://youtube.com/",
			want: domain.DecisionAllow,
		},
		{
			name: "inactive schedule window allows everything",
			settings: func() *settingsDomain.Settings {
				s := baseSettings()
				s.Schedule = &settingsDomain.Schedule{Enabled: true, Rules: []settingsDomain.Rule{
					{Days: []int{6}, StartTime: "09:00", EndTime: "17:00"},
				}}
				return s
			}(),
			url:  "https://youtube.com/",
			want: domain.DecisionAllow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Decide(tt.settings, tt.url, now)
			if got.Decision != tt.want {
				t.Errorf("Decide(%q).Decision = %s, want %s", tt.url, got.Decision, tt.want)
			}
			if got.URL != tt.url {
				t.Errorf("Decide(%q).URL = %q, verdict must carry the original URL", tt.url, got.URL)
			}
		})
	}
}

func TestEngine_Decide_ChannelPageCarriesRef(t *testing.T) {
	e := newTestEngine()
	now := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)

	verdict := e.Decide(baseSettings(), "https://youtube.com/@other", now)
	if verdict.Ref == nil {
		t.Fatal("channel page verdict must carry the extracted reference")
	}
	if verdict.Ref.Type != domain.RefTypeHandle || verdict.Ref.Value != "other" {
		t.Errorf("verdict.Ref = %+v, want handle other", verdict.Ref)
	}
}

func TestEngine_ResolveDeferred(t *testing.T) {
	e := newTestEngine()
	now := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	watchURL := "https://youtube.com/watch?v=abc"

	t.Run("resolved to allowed channel", func(t *testing.T) {
		ref := domain.ChannelRef{Type: domain.RefTypeHandle, Value: "acme"}
		verdict := e.ResolveDeferred(baseSettings(), watchURL, ref, now)
		if verdict.Decision != domain.DecisionAllow {
			t.Errorf("Decision = %s, want allow", verdict.Decision)
		}
	})

	t.Run("resolved to unlisted channel", func(t *testing.T) {
		ref := domain.ChannelRef{Type: domain.RefTypeHandle, Value: "other"}
		verdict := e.ResolveDeferred(baseSettings(), watchURL, ref, now)
		if verdict.Decision != domain.DecisionBlock {
			t.Errorf("Decision = %s, want block", verdict.Decision)
		}
	})

	t.Run("stale resolution after navigating away is discarded", func(t *testing.T) {
		ref := domain.ChannelRef{Type: domain.RefTypeHandle, Value: "other"}
		verdict := e.ResolveDeferred(baseSettings(), "https://youtube.com/feed/subscriptions", ref, now)
		if verdict.Decision != domain.DecisionAllow {
			t.Errorf("Decision = %s, want allow: page is no longer a video page", verdict.Decision)
		}
	})

	t.Run("stale resolution after disabling gating is discarded", func(t *testing.T) {
		s := baseSettings()
		s.Enabled = false
		ref := domain.ChannelRef{Type: domain.RefTypeHandle, Value: "other"}
		verdict := e.ResolveDeferred(s, watchURL, ref, now)
		if verdict.Decision != domain.DecisionAllow {
			t.Errorf("Decision = %s, want allow: gating is off", verdict.Decision)
		}
	})
}

// End-to-end scenario: toggle the master switch between decisions.
func TestEngine_ToggleScenario(t *testing.T) {
	e := newTestEngine()
	now := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	s := baseSettings()

	if got := e.Decide(s, "https://youtube.com/@acme", now); got.Decision != domain.DecisionAllow {
		t.Errorf("allowed channel: got %s", got.Decision)
	}
	if got := e.Decide(s, "https://youtube.com/@other", now); got.Decision != domain.DecisionBlock {
		t.Errorf("unlisted channel: got %s", got.Decision)
	}
	if got := e.Decide(s, "https://youtube.com/", now); got.Decision != domain.DecisionBlock {
		t.Errorf("homepage: got %s", got.Decision)
	}

	s.Enabled = false
	if got := e.Decide(s, "https://youtube.com/", now); got.Decision != domain.DecisionAllow {
		t.Errorf("homepage with gating off: got %s", got.Decision)
	}
}
