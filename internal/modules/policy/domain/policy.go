package domain

// ChannelRef identifies the channel a page belongs to, extracted from a URL
// path or resolved from page metadata. Not persisted.
type ChannelRef struct {
	Type  RefType `json:"type"`
	Value string  `json:"value"`
}

// Classification is the URL classifier's output. Ref is non-nil only for
// channel pages.
type Classification struct {
	Page PageType
	Ref  *ChannelRef
}

// Verdict is the decision engine's output for one navigation attempt.
// A pending verdict is a request for more information, not a page-load
// decision: the caller must resolve a ChannelRef for URL and come back.
type Verdict struct {
	Decision Decision    `json:"decision"`
	Page     PageType    `json:"page"`
	URL      string      `json:"url"`
	Ref      *ChannelRef `json:"channel,omitempty"`
}

// Allowed reports whether the navigation may proceed.
func (v Verdict) Allowed() bool {
	return v.Decision == DecisionAllow
}

// Pending reports whether the verdict needs an out-of-band channel
// resolution before it becomes terminal.
func (v Verdict) Pending() bool {
	return v.Decision == DecisionPending
}
