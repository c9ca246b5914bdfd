package board

import (
	"github.com/tngrm/tngrm/internal/core/magnet"
	"github.com/tngrm/tngrm/internal/core/pieces"
)

// Event types published by a Board.
const (
	EventPiecePlaced  = "piece.placed"
	EventPieceMoved   = "piece.moved"
	EventPieceSnapped = "piece.snapped"
	EventPieceRemoved = "piece.removed"
	EventBoardReset   = "board.reset"
)

// PieceEvent is the payload of every piece.* event. Snap is set only for
// piece.snapped.
type PieceEvent struct {
	BoardID   string           `json:"board"`
	PieceID   string           `json:"piece"`
	Placement pieces.Placement `json:"placement"`
	Snap      *magnet.Snap     `json:"snap,omitempty"`
}

// ResetEvent is the payload of board.reset.
type ResetEvent struct {
	BoardID string `json:"board"`
	Removed int    `json:"removed"`
}
