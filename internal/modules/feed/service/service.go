package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/feeds"
	"github.com/samber/lo"
	"github.com/samber/oops"
	"github.com/subonly/gate/internal/modules/feed/domain"
	settingsService "github.com/subonly/gate/internal/modules/settings/service"
	"github.com/subonly/gate/internal/shared/config"
)

// uploadsFeed mirrors the platform's per-channel Atom upload feed.
type uploadsFeed struct {
	Entries []uploadEntry `xml:"entry"`
}

type uploadEntry struct {
	VideoID   string `xml:"http://www.youtube.com/xml/schemas/2015 videoId"`
	Title     string `xml:"title"`
	Published string `xml:"published"`
	Author    struct {
		Name string `xml:"name"`
	} `xml:"author"`
	Group struct {
		Thumbnail struct {
			URL string `xml:"url,attr"`
		} `xml:"http://search.yahoo.com/mrss/ thumbnail"`
	} `xml:"http://search.yahoo.com/mrss/ group"`
}

// Service aggregates upload feeds for the allow-listed channels into one
// newest-first video list, refreshed in the background. It is the only
// component besides the resolver that touches the network; the decision
// engine never waits on it.
type Service struct {
	cfg      *config.Config
	settings *settingsService.Service
	resolver settingsService.Resolver
	client   *http.Client

	mu     sync.RWMutex
	videos []domain.Video

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new feed service.
func New(cfg *config.Config, settings *settingsService.Service, resolver settingsService.Resolver) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		cfg:      cfg,
		settings: settings,
		resolver: resolver,
		client:   &http.Client{Timeout: 20 * time.Second},
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start begins the background refresh loop.
func (s *Service) Start() {
	s.wg.Add(1)
	go s.refreshLoop()
}

// Stop stops the refresh loop and waits for it to finish.
func (s *Service) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Service) refreshLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Duration(s.cfg.UpdateInterval) * time.Second)
	defer ticker.Stop()

	// Initial fetch
	s.Refresh(s.ctx)

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(s.ctx)
		}
	}
}

// Refresh fetches the upload feeds for every allow-listed channel and swaps
// in the aggregated result. Channels without a canonical id are resolved
// first and the stored channel updated, so the next refresh is cheaper.
func (s *Service) Refresh(ctx context.Context) {
	current, err := s.settings.Get()
	if err != nil {
		slog.Error("Failed to load settings for feed refresh", "error", err)
		return
	}

	var all []domain.Video
	for _, channel := range current.Channels {
		channelID := channel.AnyID()

		if channelID == "" && channel.Handle != "" && s.resolver != nil {
			info, err := s.resolver.Resolve(ctx, channel.Handle)
			if err != nil {
				slog.Warn("Skipping channel without resolvable id", "handle", channel.Handle, "error", err)
				continue
			}
			channelID = info.ChannelID
			if _, err := s.settings.UpdateChannelIdentity(channel, *info); err != nil {
				slog.Error("Failed to store resolved channel identity", "handle", channel.Handle, "error", err)
			}
		}
		if channelID == "" {
			continue
		}

		videos, err := s.fetchChannelFeed(ctx, channelID)
		if err != nil {
			slog.Error("Error fetching uploads for channel", "channel_id", channelID, "error", err)
			continue
		}
		all = append(all, videos...)
	}

	// Newest first.
	sort.Slice(all, func(i, j int) bool {
		return all[i].Published.After(all[j].Published)
	})

	s.mu.Lock()
	s.videos = all
	s.mu.Unlock()

	slog.Debug("Feed refresh complete", "videos", len(all), "channels", len(current.Channels))
}

// Videos returns a snapshot of the aggregated video list, newest first.
func (s *Service) Videos() []domain.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Video, len(s.videos))
	copy(out, s.videos)
	return out
}

func (s *Service) fetchChannelFeed(ctx context.Context, channelID string) ([]domain.Video, error) {
	feedURL := fmt.Sprintf("%s/feeds/videos.xml?channel_id=%s", strings.TrimSuffix(s.cfg.YouTubeBaseURL, "/"), channelID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, oops.With("url", feedURL).Wrap(err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, oops.With("url", feedURL).Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, oops.With("url", feedURL, "status", resp.StatusCode).Errorf("upload feed request failed")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.With("url", feedURL).Wrap(err)
	}

	var parsed uploadsFeed
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return nil, oops.With("url", feedURL, "context", "failed to parse upload feed").Wrap(err)
	}

	videos := lo.FilterMap(parsed.Entries, func(entry uploadEntry, _ int) (domain.Video, bool) {
		if entry.VideoID == "" || entry.Title == "" {
			return domain.Video{}, false
		}

		published, _ := time.Parse(time.RFC3339, entry.Published)
		thumbnail := entry.Group.Thumbnail.URL
		if thumbnail == "" {
			thumbnail = fmt.Sprintf("https://i.ytimg.com/vi/%s/mqdefault.jpg", entry.VideoID)
		}

		return domain.Video{
			VideoID:     entry.VideoID,
			Title:       entry.Title,
			URL:         fmt.Sprintf("https://www.youtube.com/watch?v=%s", entry.VideoID),
			Thumbnail:   thumbnail,
			ChannelName: entry.Author.Name,
			ChannelID:   channelID,
			Published:   published,
		}, true
	})

	return videos, nil
}

// GenerateFeed renders the aggregated video list as a syndication feed, so a
// reader pointed at the gate sees only uploads from allowed channels.
func (s *Service) GenerateFeed(baseURL string) *feeds.Feed {
	videos := s.Videos()

	feed := &feeds.Feed{
		Title:       "Allowed channel uploads",
		Link:        &feeds.Link{Href: fmt.Sprintf("%s/rss", baseURL)},
		Description: "Latest uploads from channels on the allow-list",
		Created:     time.Now(),
	}

	feed.Items = lo.Map(videos, func(v domain.Video, _ int) *feeds.Item {
		return &feeds.Item{
			Title:       v.Title,
			Link:        &feeds.Link{Href: v.URL},
			Description: fmt.Sprintf("New upload from %s", v.ChannelName),
			Author:      &feeds.Author{Name: v.ChannelName},
			Created:     v.Published,
			Id:          fmt.Sprintf("%s-%s", v.ChannelID, v.VideoID),
		}
	})

	return feed
}
