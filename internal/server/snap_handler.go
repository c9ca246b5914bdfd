package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tngrm/tngrm/internal/core/board"
	"github.com/tngrm/tngrm/internal/core/observability/log"
	"github.com/tngrm/tngrm/internal/core/pieces"
)

// SnapRequest is the body of POST /api/snap. Piece is the one being dropped;
// Pieces is the whole arrangement, Piece included.
type SnapRequest struct {
	Piece  string                      `json:"piece"`
	Pieces map[string]pieces.Placement `json:"pieces"`
}

// SnapResponse is the reply to POST /api/snap. Placement is where Piece ends
// up, moved by (DX, DY) when Snapped.
type SnapResponse struct {
	Piece     string           `json:"piece"`
	Snapped   bool             `json:"snapped"`
	DX        float64          `json:"dx"`
	DY        float64          `json:"dy"`
	Distance  float64          `json:"distance"`
	Placement pieces.Placement `json:"placement"`
}

func (s *Server) handleSnap(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	var req SnapRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeErrorDetails(w, http.StatusBadRequest, msgInvalidJSON, err)
		return
	}
	if req.Piece == "" {
		writeError(w, http.StatusBadRequest, "Missing piece id")
		return
	}

	b := board.New(s.checker.Table(),
		board.WithDetector(s.detector),
		board.WithLogger(s.logger))
	if err := b.LoadSolution(req.Pieces); err != nil {
		writeErrorDetails(w, http.StatusBadRequest, "Invalid arrangement", err)
		return
	}

	snap, snapped, err := b.ApplySnap(req.Piece)
	switch {
	case errors.Is(err, board.ErrPieceNotFound):
		writeError(w, http.StatusBadRequest, "Piece not in arrangement")
		return
	case err != nil:
		writeErrorDetails(w, http.StatusInternalServerError, "Snap failed", err)
		return
	}

	resp := SnapResponse{
		Piece:     req.Piece,
		Snapped:   snapped,
		Placement: b.Arrangement()[req.Piece],
	}
	if snapped {
		resp.DX, resp.DY, resp.Distance = snap.DX, snap.DY, snap.Distance()
	}
	s.logger.Debug("Snap checked",
		log.String("piece", req.Piece),
		log.Bool("snapped", snapped))
	writeJSON(w, http.StatusOK, resp)
}
