package errors

import "errors"

var (
	ErrChannelNotFound   = errors.New("channel not found")
	ErrChannelExists     = errors.New("channel already exists")
	ErrChannelUnmatchable = errors.New("channel needs a handle or an id")
	ErrInvalidTime       = errors.New("time must be in HH:MM 24-hour format")
	ErrInvalidDay        = errors.New("schedule days must be between 0 (Sunday) and 6 (Saturday)")
	ErrRuleNotFound      = errors.New("schedule rule not found")
	ErrUnauthorized      = errors.New("unauthorized user")
	ErrResolveFailed     = errors.New("could not resolve channel info")
)
