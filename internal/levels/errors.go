package levels

import "errors"

// Level store errors
var (
	ErrInvalidLevel  = errors.New("invalid level data: missing name or solution")
	ErrLevelNotFound = errors.New("level not found")
	ErrStoreClosed   = errors.New("level store is closed")
)
