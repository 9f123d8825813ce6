package shared

import "errors"

var (
	// ErrInvalidToken indicates a missing or mismatching API token.
	ErrInvalidToken = errors.New("invalid api token")
)
