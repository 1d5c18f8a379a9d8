package domain

// Info is what a channel page reveals about its channel: the stable platform
// id plus cosmetic metadata. Any field may be empty when the page did not
// carry it.
type Info struct {
	ChannelID string `json:"channelId"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
}
