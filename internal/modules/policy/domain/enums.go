//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package domain

// Decision is the verdict for a navigation attempt. Pending means the page
// cannot be decided from the URL alone and a channel reference must be
// resolved out of band first.
// ENUM(allow,block,pending)
type Decision string

// RefType says how a channel reference identifies its channel.
// ENUM(handle,id)
type RefType string

// PageType is the structural category of a destination URL.
// ENUM(not_target,extension_page,always_allowed,channel_page,video_page,blocked)
type PageType string
