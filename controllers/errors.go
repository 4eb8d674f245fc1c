package controllers

import "errors"

var (
	ErrMissingViewer     = errors.New("viewer id is not resolved")
	ErrFetchInFlight     = errors.New("a page fetch is already in flight")
	ErrNoCard            = errors.New("no current card")
	ErrDecisionInFlight  = errors.New("a decision is already in flight for this card")
	ErrInvalidTransition = errors.New("invalid gesture transition")
	ErrInvalidDecision   = errors.New("invalid decision type")
	ErrUnknownConnection = errors.New("no connection record for user")
	ErrNotConnected      = errors.New("chat is not connected")
)
