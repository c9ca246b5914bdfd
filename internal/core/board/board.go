// Package board holds the mutable state of one puzzle attempt: which pieces
// are on the table and where. It applies user edits, runs the magnet
// detector against the other pieces, and publishes every change on an
// event bus.
package board

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/tngrm/tngrm/internal/core/events/bus"
	"github.com/tngrm/tngrm/internal/core/magnet"
	"github.com/tngrm/tngrm/internal/core/observability/log"
	"github.com/tngrm/tngrm/internal/core/pieces"
)

// Option configures a Board.
type Option func(*Board)

// WithBus publishes board events on b.
func WithBus(b bus.EventBus) Option {
	return func(bd *Board) { bd.bus = b }
}

// WithLogger sets the board logger.
func WithLogger(l log.Log) Option {
	return func(bd *Board) { bd.logger = l }
}

// WithDetector replaces the default magnet detector.
func WithDetector(d magnet.Detector) Option {
	return func(bd *Board) { bd.detector = d }
}

// WithID sets the board id used as event source. A random id is used
// otherwise.
func WithID(id string) Option {
	return func(bd *Board) { bd.id = id }
}

// Board is safe for concurrent use. Events are published after the lock is
// released, so handlers may call back into the board.
type Board struct {
	id       string
	table    *pieces.Table
	detector magnet.Detector
	bus      bus.EventBus
	logger   log.Log

	mu     sync.RWMutex
	placed map[string]*pieces.Placed
}

// New creates an empty board over table.
func New(table *pieces.Table, opts ...Option) *Board {
	b := &Board{
		table:    table,
		detector: magnet.New(magnet.DefaultThreshold),
		logger:   log.NewNop(),
		placed:   make(map[string]*pieces.Placed, table.Len()),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.id == "" {
		b.id = uuid.NewString()
	}
	b.logger = b.logger.With(log.String("component", "board"), log.String("board_id", b.id))
	return b
}

// ID returns the board id.
func (b *Board) ID() string { return b.id }

// Table returns the template table the board draws from.
func (b *Board) Table() *pieces.Table { return b.table }

// Place puts the piece id on the board at p.
func (b *Board) Place(id string, p pieces.Placement) error {
	tpl, err := b.table.Get(id)
	if err != nil {
		return err
	}

	b.mu.Lock()
	if _, ok := b.placed[id]; ok {
		b.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrPiecePlaced, id)
	}
	pp := pieces.Place(tpl, p)
	b.placed[id] = pp
	placement := pp.Placement()
	b.mu.Unlock()

	b.logger.Debug("Piece placed", log.String("piece", id))
	b.publish(EventPiecePlaced, PieceEvent{BoardID: b.id, PieceID: id, Placement: placement})
	return nil
}

// Move sets the position of a placed piece.
func (b *Board) Move(id string, x, y float64) error {
	return b.update(id, func(p *pieces.Placed) { p.MoveTo(x, y) })
}

// Rotate turns a placed piece by deg degrees.
func (b *Board) Rotate(id string, deg float64) error {
	return b.update(id, func(p *pieces.Placed) { p.RotateBy(deg) })
}

// Flip mirrors a placed piece horizontally.
func (b *Board) Flip(id string) error {
	return b.update(id, (*pieces.Placed).Flip)
}

// Set replaces the whole placement of a placed piece.
func (b *Board) Set(id string, p pieces.Placement) error {
	return b.update(id, func(pp *pieces.Placed) { pp.Set(p) })
}

func (b *Board) update(id string, fn func(*pieces.Placed)) error {
	b.mu.Lock()
	pp, ok := b.placed[id]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrPieceNotFound, id)
	}
	fn(pp)
	placement := pp.Placement()
	b.mu.Unlock()

	b.publish(EventPieceMoved, PieceEvent{BoardID: b.id, PieceID: id, Placement: placement})
	return nil
}

// Remove takes a piece off the board.
func (b *Board) Remove(id string) error {
	b.mu.Lock()
	pp, ok := b.placed[id]
	if !ok {
		b.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrPieceNotFound, id)
	}
	delete(b.placed, id)
	b.mu.Unlock()

	b.publish(EventPieceRemoved, PieceEvent{BoardID: b.id, PieceID: id, Placement: pp.Placement()})
	return nil
}

// Reset removes every piece.
func (b *Board) Reset() {
	b.mu.Lock()
	n := len(b.placed)
	b.placed = make(map[string]*pieces.Placed, b.table.Len())
	b.mu.Unlock()

	b.logger.Debug("Board reset", log.Int("removed", n))
	b.publish(EventBoardReset, ResetEvent{BoardID: b.id, Removed: n})
}

// LoadSolution clears the board and places every piece of sol. Nothing
// changes when sol names an unknown piece.
func (b *Board) LoadSolution(sol map[string]pieces.Placement) error {
	next := make(map[string]*pieces.Placed, len(sol))
	for id, p := range sol {
		tpl, err := b.table.Get(id)
		if err != nil {
			return err
		}
		next[id] = pieces.Place(tpl, p)
	}

	b.mu.Lock()
	n := len(b.placed)
	b.placed = next
	b.mu.Unlock()

	b.publish(EventBoardReset, ResetEvent{BoardID: b.id, Removed: n})
	for _, id := range b.table.IDs() {
		if pp, ok := next[id]; ok {
			b.publish(EventPiecePlaced, PieceEvent{BoardID: b.id, PieceID: id, Placement: pp.Placement()})
		}
	}
	b.logger.Info("Solution loaded", log.Int("pieces", len(next)))
	return nil
}

// Has reports whether id is on the board.
func (b *Board) Has(id string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.placed[id]
	return ok
}

// Len returns the number of placed pieces.
func (b *Board) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.placed)
}

// Pieces returns copies of the placed pieces in table order.
func (b *Board) Pieces() []*pieces.Placed {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]*pieces.Placed, 0, len(b.placed))
	for _, id := range b.table.IDs() {
		if pp, ok := b.placed[id]; ok {
			out = append(out, pp.Clone())
		}
	}
	return out
}

// Arrangement returns the placement of every piece on the board.
func (b *Board) Arrangement() map[string]pieces.Placement {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make(map[string]pieces.Placement, len(b.placed))
	for id, pp := range b.placed {
		out[id] = pp.Placement()
	}
	return out
}

// Snap reports the offset that would bring piece id onto the nearest
// vertex of another piece.
func (b *Board) Snap(id string) (magnet.Snap, bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.snapLocked(id)
}

// ApplySnap moves piece id by its snap offset when one exists.
func (b *Board) ApplySnap(id string) (magnet.Snap, bool, error) {
	b.mu.Lock()
	s, ok, err := b.snapLocked(id)
	if err != nil || !ok {
		b.mu.Unlock()
		return s, ok, err
	}
	pp := b.placed[id]
	pp.MoveBy(s.DX, s.DY)
	placement := pp.Placement()
	b.mu.Unlock()

	b.logger.Debug("Piece snapped",
		log.String("piece", id),
		log.Float64("distance", s.Distance()))
	b.publish(EventPieceSnapped, PieceEvent{BoardID: b.id, PieceID: id, Placement: placement, Snap: &s})
	return s, true, nil
}

func (b *Board) snapLocked(id string) (magnet.Snap, bool, error) {
	active, ok := b.placed[id]
	if !ok {
		return magnet.Snap{}, false, fmt.Errorf("%w: %q", ErrPieceNotFound, id)
	}
	others := make([]magnet.Candidate, 0, len(b.placed)-1)
	for _, oid := range b.table.IDs() {
		if pp, ok := b.placed[oid]; ok && oid != id {
			others = append(others, pp)
		}
	}
	s, found := b.detector.Detect(active, others)
	return s, found, nil
}

func (b *Board) publish(typ string, data any) {
	if b.bus == nil {
		return
	}
	if err := b.bus.Publish(bus.NewEvent(typ, b.id, data)); err != nil {
		b.logger.Warn("Event handler failed", log.String("event", typ), log.Error(err))
	}
}
