package domain

import "time"

// Video is one entry from a channel's upload feed.
type Video struct {
	VideoID     string    `json:"videoId"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Thumbnail   string    `json:"thumbnail"`
	ChannelName string    `json:"channel"`
	ChannelID   string    `json:"channelId"`
	Published   time.Time `json:"published"`
}
