package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/subonly/gate/internal/modules/resolver/domain"
	"github.com/subonly/gate/internal/shared/config"
	"github.com/subonly/gate/internal/shared/errors"
)

// The channel page embeds its id and metadata in several shapes depending on
// rollout; checked in order, first hit wins.
var (
	channelIDPatterns = []*regexp.Regexp{
		regexp.MustCompile(`<meta\s+itemprop="channelId"\s+content="([^"]+)"`),
		regexp.MustCompile(`"channelId":"([^"]+)"`),
		regexp.MustCompile(`channel_id=([^"&]+)`),
	}
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`<meta\s+property="og:title"\s+content="([^"]+)"`),
		regexp.MustCompile(`"ownerChannelName":"([^"]+)"`),
	}
	avatarPattern = regexp.MustCompile(`<meta\s+property="og:image"\s+content="([^"]+)"`)
)

// Service resolves a channel handle into the channel's canonical identity by
// fetching its public page. The decision engine never calls this directly;
// it is the out-of-band collaborator behind pending verdicts and behind
// filling in ids for channels added by handle.
type Service struct {
	cfg    *config.Config
	client *http.Client
}

// New creates a new resolver service.
func New(cfg *config.Config) *Service {
	return &Service{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

// Resolve fetches the channel page for a handle and extracts the channel id,
// canonical name and avatar. Transient failures are retried with a fixed
// delay up to the configured attempt cap; the cap keeps a dead page from
// being polled forever.
func (s *Service) Resolve(ctx context.Context, handle string) (*domain.Info, error) {
	clean := strings.TrimPrefix(handle, "@")
	if clean == "" {
		return nil, oops.With("handle", handle).Wrap(errors.ErrResolveFailed)
	}

	attempts := s.cfg.ResolveAttempts
	if attempts < 1 {
		attempts = 1
	}
	delay := time.Duration(s.cfg.ResolveDelay) * time.Second

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		info, err := s.fetch(ctx, clean)
		if err == nil {
			return info, nil
		}
		lastErr = err
		slog.Warn("Channel resolution attempt failed", "handle", clean, "attempt", attempt, "error", err)

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, oops.With("handle", clean).Wrap(ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, oops.With("handle", clean, "attempts", attempts, "context", "channel resolution exhausted retries").Wrap(lastErr)
}

func (s *Service) fetch(ctx context.Context, handle string) (*domain.Info, error) {
	pageURL := strings.TrimSuffix(s.cfg.YouTubeBaseURL, "/") + "/@" + handle

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, oops.With("url", pageURL).Wrap(err)
	}
	req.Header.Set("Accept-Language", "en")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, oops.With("url", pageURL).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, oops.With("url", pageURL, "status", resp.StatusCode).Wrap(errors.ErrResolveFailed)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.With("url", pageURL).Wrap(err)
	}

	info := extract(string(body), handle)
	if info.ChannelID == "" {
		return nil, oops.With("url", pageURL, "context", "page carried no channel id").Wrap(errors.ErrResolveFailed)
	}
	return info, nil
}

// extract pulls identity fields out of the page HTML. The name falls back to
// the handle so callers always get something displayable.
func extract(html, handle string) *domain.Info {
	info := &domain.Info{Name: handle}

	for _, re := range channelIDPatterns {
		if m := re.FindStringSubmatch(html); m != nil {
			info.ChannelID = m[1]
			break
		}
	}
	for _, re := range namePatterns {
		if m := re.FindStringSubmatch(html); m != nil {
			info.Name = m[1]
			break
		}
	}
	if m := avatarPattern.FindStringSubmatch(html); m != nil {
		info.Avatar = m[1]
	}

	return info
}
