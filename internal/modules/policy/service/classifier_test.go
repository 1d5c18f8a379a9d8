package service

import (
	"testing"

	"github.com/subonly/gate/internal/modules/policy/domain"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name     string
		url      string
		wantPage domain.PageType
		wantRef  *domain.ChannelRef
	}{
		{
			name:     "homepage is blocked",
			url:      "https://youtube.com/",
			wantPage: domain.PageTypeBlocked,
		},
		{
			name:     "www subdomain homepage is blocked",
			url:      "https://www.youtube.com/",
			wantPage: domain.PageTypeBlocked,
		},
		{
			name:     "subscriptions feed is always allowed",
			url:      "https://youtube.com/feed/subscriptions",
			wantPage: domain.PageTypeAlwaysAllowed,
		},
		{
			name:     "library is always allowed",
			url:      "https://www.youtube.com/feed/library",
			wantPage: domain.PageTypeAlwaysAllowed,
		},
		{
			name:     "playlist subpath is always allowed",
			url:      "https://www.youtube.com/playlist?list=PL123",
			wantPage: domain.PageTypeAlwaysAllowed,
		},
		{
			name:     "handle channel page",
			url:      "https://youtube.com/@somechannel",
			wantPage: domain.PageTypeChannelPage,
			wantRef:  &domain.ChannelRef{Type: domain.RefTypeHandle, Value: "somechannel"},
		},
		{
			name:     "handle channel page with subpath",
			url:      "https://youtube.com/@somechannel/videos",
			wantPage: domain.PageTypeChannelPage,
			wantRef:  &domain.ChannelRef{Type: domain.RefTypeHandle, Value: "somechannel"},
		},
		{
			name:     "channel id page",
			url:      "https://youtube.com/channel/UC123",
			wantPage: domain.PageTypeChannelPage,
			wantRef:  &domain.ChannelRef{Type: domain.RefTypeId, Value: "UC123"},
		},
		{
			name:     "legacy c path is a handle",
			url:      "https://youtube.com/c/somechannel",
			wantPage: domain.PageTypeChannelPage,
			wantRef:  &domain.ChannelRef{Type: domain.RefTypeHandle, Value: "somechannel"},
		},
		{
			name:     "legacy user path is a handle",
			url:      "https://youtube.com/user/somechannel",
			wantPage: domain.PageTypeChannelPage,
			wantRef:  &domain.ChannelRef{Type: domain.RefTypeHandle, Value: "somechannel"},
		},
		{
			name:     "bare at sign is not a channel page",
			url:      "https://youtube.com/@",
			wantPage: domain.PageTypeBlocked,
		},
		{
			name:     "watch page needs channel resolution",
			url:      "https://youtube.com/watch?v=abc",
			wantPage: domain.PageTypeVideoPage,
		},
		{
			name:     "shorts are blocked",
			url:      "https://youtube.com/shorts/abc123",
			wantPage: domain.PageTypeBlocked,
		},
		{
			name:     "search results are blocked",
			url:      "https://youtube.com/results?search_query=cats",
			wantPage: domain.PageTypeBlocked,
		},
		{
			name:     "trending is blocked",
			url:      "https://youtube.com/feed/trending",
			wantPage: domain.PageTypeBlocked,
		},
		{
			name:     "unrecognized paths are blocked by default",
			url:      "https://youtube.com/some/new/surface",
			wantPage: domain.PageTypeBlocked,
		},
		{
			name:     "gate's own pages are never blocked",
			url:      "https://youtube.com/youtube-sub-only/blocked",
			wantPage: domain.PageTypeExtensionPage,
		},
		{
			name:     "other hosts are not gated",
			url:      "https://example.com/",
			wantPage: domain.PageTypeNotTarget,
		},
		{
			name:     "lookalike host is not gated",
			url:      "https://notyoutube.org/",
			wantPage: domain.PageTypeNotTarget,
		},
		{
			name:     "malformed url fails open",
			url:      "://not a url",
			wantPage: domain.PageTypeNotTarget,
		},
		{
			name:     "relative url fails open",
			url:      "/watch?v=abc",
			wantPage: domain.PageTypeNotTarget,
		},
		{
			name:     "empty url fails open",
			url:      "",
			wantPage: domain.PageTypeNotTarget,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.url)
			if got.Page != tt.wantPage {
				t.Fatalf("Classify(%q).Page = %s, want %s", tt.url, got.Page, tt.wantPage)
			}
			if tt.wantRef == nil {
				if got.Ref != nil {
					t.Fatalf("Classify(%q).Ref = %+v, want nil", tt.url, got.Ref)
				}
				return
			}
			if got.Ref == nil {
				t.Fatalf("Classify(%q).Ref = nil, want %+v", tt.url, tt.wantRef)
			}
			if *got.Ref != *tt.wantRef {
				t.Errorf("Classify(%q).Ref = %+v, want %+v", tt.url, got.Ref, tt.wantRef)
			}
		})
	}
}

func TestIsExplicitlyBlocked(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/", true},
		{"/feed/trending", true},
		{"/shorts/abc", true},
		{"/gaming", true},
		{"/some/new/surface", false},
		{"/watch", false},
	}

	for _, tt := range tests {
		if got := IsExplicitlyBlocked(tt.path); got != tt.want {
			t.Errorf("IsExplicitlyBlocked(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
