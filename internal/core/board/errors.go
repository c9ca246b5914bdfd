package board

import "errors"

// Board errors
var (
	ErrPieceNotFound = errors.New("piece is not on the board")
	ErrPiecePlaced   = errors.New("piece is already on the board")
)
