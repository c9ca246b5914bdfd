package pieces

import "errors"

// Piece-table errors
var (
	ErrInvalidTemplate = errors.New("invalid piece template")
	ErrDuplicatePiece  = errors.New("duplicate piece id")
	ErrUnknownPiece    = errors.New("unknown piece id")
)
