package service

import (
	"time"

	"github.com/subonly/gate/internal/modules/policy/domain"
	scheduleService "github.com/subonly/gate/internal/modules/schedule/service"
	settingsDomain "github.com/subonly/gate/internal/modules/settings/domain"
)

// Engine composes the schedule evaluator, URL classifier and channel matcher
// into the final verdict for one navigation attempt. Pure: a function of
// (settings, url, optional ref, now), it performs no I/O and never suspends.
type Engine struct {
	schedule   *scheduleService.Service
	classifier *Classifier
	matcher    *Matcher
}

// NewEngine creates a new policy decision engine.
func NewEngine(schedule *scheduleService.Service, classifier *Classifier, matcher *Matcher) *Engine {
	return &Engine{
		schedule:   schedule,
		classifier: classifier,
		matcher:    matcher,
	}
}

// Decide produces the verdict for navigating to rawURL at the given instant.
//
// When gating is inactive everything is allowed. Otherwise the URL's category
// decides: pages off the platform, the gate's own pages and the utility pages
// are allowed; channel pages are allowed iff the channel is on the allow-list;
// video pages come back pending, because the owning channel cannot be read
// off the URL; everything else is blocked.
func (e *Engine) Decide(settings *settingsDomain.Settings, rawURL string, now time.Time) domain.Verdict {
	if !e.schedule.IsBlockingActive(settings, now) {
		return domain.Verdict{Decision: domain.DecisionAllow, URL: rawURL}
	}

	cls := e.classifier.Classify(rawURL)
	verdict := domain.Verdict{Page: cls.Page, URL: rawURL, Ref: cls.Ref}

	switch cls.Page {
	case domain.PageTypeNotTarget, domain.PageTypeExtensionPage, domain.PageTypeAlwaysAllowed:
		verdict.Decision = domain.DecisionAllow
	case domain.PageTypeChannelPage:
		verdict.Decision = e.decideChannel(settings, *cls.Ref)
	case domain.PageTypeVideoPage:
		verdict.Decision = domain.DecisionPending
	default:
		verdict.Decision = domain.DecisionBlock
	}

	return verdict
}

// ResolveDeferred completes a pending video verdict once a collaborator has
// resolved the page's channel reference.
//
// The navigation is re-evaluated first: if the fresh verdict is no longer
// pending — the user navigated away, gating went inactive, the settings
// changed — the stale resolution is discarded and the fresh verdict returned.
// Only a still-pending navigation is decided by the resolved reference.
func (e *Engine) ResolveDeferred(settings *settingsDomain.Settings, rawURL string, ref domain.ChannelRef, now time.Time) domain.Verdict {
	verdict := e.Decide(settings, rawURL, now)
	if !verdict.Pending() {
		return verdict
	}

	verdict.Ref = &ref
	verdict.Decision = e.decideChannel(settings, ref)
	return verdict
}

// IsChannelAllowed exposes the matcher for callers that hold a reference
// already (page-inspection messages).
func (e *Engine) IsChannelAllowed(settings *settingsDomain.Settings, ref domain.ChannelRef) bool {
	return e.matcher.IsChannelAllowed(ref, settings.Channels)
}

// IsBlockingActive exposes the schedule evaluator.
func (e *Engine) IsBlockingActive(settings *settingsDomain.Settings, now time.Time) bool {
	return e.schedule.IsBlockingActive(settings, now)
}

func (e *Engine) decideChannel(settings *settingsDomain.Settings, ref domain.ChannelRef) domain.Decision {
	if e.matcher.IsChannelAllowed(ref, settings.Channels) {
		return domain.DecisionAllow
	}
	return domain.DecisionBlock
}
