package service

import (
	"net/url"
	"strings"

	"github.com/samber/lo"
	"github.com/subonly/gate/internal/modules/policy/domain"
)

// targetHost is the gated platform. Any other host is never gated.
const targetHost = "youtube.com"

// extensionPrefix marks the gate's own pages (interstitial and friends),
// which must never be blocked.
const extensionPrefix = "/youtube-sub-only"

// alwaysAllowedPrefixes are utility pages that carry no discoverable content:
// the subscriptions feed only shows channels the user already follows, and
// the rest are account plumbing.
var alwaysAllowedPrefixes = []string{
	"/feed/subscriptions",
	"/feed/library",
	"/feed/history",
	"/playlist",
	"/account",
	"/premium",
}

// blockedPrefixes are the discovery surfaces. The bare root is listed for
// auditability but is matched exactly, since every path starts with "/".
// Unlisted paths are blocked too; the classifier is default-deny.
var blockedPrefixes = []string{
	"/",
	"/feed/trending",
	"/feed/explore",
	"/shorts",
	"/results",
	"/gaming",
	"/music",
}

// channelPattern maps a path prefix to the reference type it extracts.
type channelPattern struct {
	prefix  string
	refType domain.RefType
}

// Tried in order; first match wins. Only the /channel/ form carries the
// opaque platform id, the rest are user handles.
var channelPatterns = []channelPattern{
	{"/@", domain.RefTypeHandle},
	{"/channel/", domain.RefTypeId},
	{"/c/", domain.RefTypeHandle},
	{"/user/", domain.RefTypeHandle},
}

// Classifier turns destination URLs into page categories. Pure.
type Classifier struct{}

// NewClassifier creates a new URL classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify categorizes an absolute URL. URLs that cannot be parsed, or whose
// host is not the gated platform, classify as not_target: a broken evaluation
// must never trap the user.
func (c *Classifier) Classify(rawURL string) domain.Classification {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" || !isTargetHost(u.Hostname()) {
		return domain.Classification{Page: domain.PageTypeNotTarget}
	}

	path := u.Path

	if strings.HasPrefix(path, extensionPrefix) {
		return domain.Classification{Page: domain.PageTypeExtensionPage}
	}

	if lo.SomeBy(alwaysAllowedPrefixes, func(prefix string) bool {
		return strings.HasPrefix(path, prefix)
	}) {
		return domain.Classification{Page: domain.PageTypeAlwaysAllowed}
	}

	if ref := ExtractChannelRef(path); ref != nil {
		return domain.Classification{Page: domain.PageTypeChannelPage, Ref: ref}
	}

	if path == "/watch" {
		return domain.Classification{Page: domain.PageTypeVideoPage}
	}

	// Explicit deny list and default-deny collapse into the same category.
	return domain.Classification{Page: domain.PageTypeBlocked}
}

// ExtractChannelRef pulls a channel reference out of a URL path, or returns
// nil when the path is not a channel page.
func (c *Classifier) ExtractChannelRef(rawURL string) *domain.ChannelRef {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	return ExtractChannelRef(u.Path)
}

// ExtractChannelRef matches the channel path patterns against a URL path.
// The value is the path segment right after the matched prefix.
func ExtractChannelRef(path string) *domain.ChannelRef {
	for _, pattern := range channelPatterns {
		rest, found := strings.CutPrefix(path, pattern.prefix)
		if !found {
			continue
		}
		value, _, _ := strings.Cut(rest, "/")
		if value == "" {
			continue
		}
		return &domain.ChannelRef{Type: pattern.refType, Value: value}
	}
	return nil
}

// isTargetHost reports whether the hostname is the gated platform or one of
// its subdomains (www, m, music live under the same policy).
func isTargetHost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	return hostname == targetHost || strings.HasSuffix(hostname, "."+targetHost)
}

// IsExplicitlyBlocked reports whether the path is on the deny list proper,
// as opposed to falling through to the default deny. Exposed for the
// interstitial page to explain the block.
func IsExplicitlyBlocked(path string) bool {
	for _, prefix := range blockedPrefixes {
		if prefix == "/" {
			if path == "/" {
				return true
			}
			continue
		}
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
