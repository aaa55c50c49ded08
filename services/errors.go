package services

import "errors"

// Errors shared by the services and mapped to HTTP responses by the handlers.
var (
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrPoolNotFound       = errors.New("pool not found")
	ErrPermalinkNotFound  = errors.New("permalink not found")
	ErrRaceNotFound       = errors.New("race not found")

	ErrNotAuthorized      = errors.New("you are not authorized to view this tournament")
	ErrRaceNotReviewable  = errors.New("this race cannot be reviewed yet")
	ErrRaceReattempted    = errors.New("this race was marked as reattempted and cannot be reviewed")
	ErrSelfReview         = errors.New("you are not authorized to review your own tournament run")
	ErrInvalidReviewState = errors.New("invalid review status")
	ErrInvalidFilter      = errors.New("invalid filter value")

	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrInvalidAPIKey        = errors.New("invalid api key")
	ErrAPIKeyScope          = errors.New("api key is not authorized for this resource")
	ErrOAuthStateMismatch   = errors.New("oauth state mismatch")
	ErrLoginNotConfigured   = errors.New("discord login is not configured")
)
