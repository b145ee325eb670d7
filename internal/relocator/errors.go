package relocator

import "errors"

// Eligibility failures. Their messages double as nack reasons.
var (
	ErrMalformedEvent    = errors.New("event has no action or pull_request")
	ErrNotMerged         = errors.New("pull request is not closed and merged")
	ErrOwnerMismatch     = errors.New("pull request author does not match configured user")
	ErrMissingTrelloInfo = errors.New("trello key, token, board and list are required")
)

var (
	ErrInvalidList  = errors.New("invalid Trello list identifier")
	ErrListLookup   = errors.New("trello api error on list lookup")
	ErrListNotFound = errors.New("trello api no list found")
	ErrCardSearch   = errors.New("trello api error on cards search")
	ErrNoCards      = errors.New("trello api no cards found")
	ErrMoveFailed   = errors.New("trello api error on card move")
)
