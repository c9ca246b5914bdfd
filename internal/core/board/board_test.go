package board

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tngrm/tngrm/internal/core/events/bus"
	"github.com/tngrm/tngrm/internal/core/magnet"
	"github.com/tngrm/tngrm/internal/core/pieces"
)

// squares returns a table of unit squares scaled to 10 with the pivot at the
// lower-left corner, so a square placed at (x, y) spans [x, x+10].
func squares(t *testing.T, ids ...string) *pieces.Table {
	t.Helper()
	tpls := make([]*pieces.Template, 0, len(ids))
	for _, id := range ids {
		tpls = append(tpls, pieces.MustTemplate(id, []float64{0, 0, 1, 0, 1, 1, 0, 1}, 0, 0, 10, "#fff"))
	}
	table, err := pieces.NewTable(tpls...)
	require.NoError(t, err)
	return table
}

type recorder struct {
	mu     sync.Mutex
	events []bus.Event
}

func (r *recorder) handle(e bus.Event) error {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type())
	}
	return out
}

func newBoard(t *testing.T, ids ...string) (*Board, *recorder) {
	t.Helper()
	rec := &recorder{}
	eb := bus.New()
	_, err := eb.Subscribe(bus.AnyEvent, rec.handle)
	require.NoError(t, err)
	return New(squares(t, ids...), WithBus(eb), WithID("test")), rec
}

func TestPlaceAndMutate(t *testing.T) {
	b, rec := newBoard(t, "A", "B")

	require.NoError(t, b.Place("A", pieces.At(0, 0)))
	assert.ErrorIs(t, b.Place("A", pieces.At(5, 5)), ErrPiecePlaced)
	assert.ErrorIs(t, b.Place("Z", pieces.At(5, 5)), pieces.ErrUnknownPiece)
	assert.ErrorIs(t, b.Move("B", 1, 1), ErrPieceNotFound)

	require.NoError(t, b.Move("A", 20, 30))
	require.NoError(t, b.Rotate("A", 45))
	require.NoError(t, b.Rotate("A", 45))
	require.NoError(t, b.Flip("A"))

	got := b.Arrangement()["A"]
	assert.Equal(t, pieces.Placement{X: 20, Y: 30, Rotation: 90, ScaleX: -1}, got)
	assert.True(t, b.Has("A"))
	assert.False(t, b.Has("B"))

	assert.Equal(t, []string{
		EventPiecePlaced, EventPieceMoved, EventPieceMoved, EventPieceMoved, EventPieceMoved,
	}, rec.types())

	e := rec.events[0]
	assert.Equal(t, "test", e.Source())
	assert.Equal(t, PieceEvent{BoardID: "test", PieceID: "A", Placement: pieces.At(0, 0)}, e.Data())
}

func TestPiecesAreCopiesInTableOrder(t *testing.T) {
	b, _ := newBoard(t, "A", "B", "C")
	require.NoError(t, b.Place("C", pieces.At(0, 0)))
	require.NoError(t, b.Place("A", pieces.At(50, 0)))

	ps := b.Pieces()
	require.Len(t, ps, 2)
	assert.Equal(t, "A", ps[0].ID())
	assert.Equal(t, "C", ps[1].ID())

	ps[0].MoveTo(999, 999)
	assert.Equal(t, 50.0, b.Arrangement()["A"].X)
}

func TestSnap(t *testing.T) {
	b, rec := newBoard(t, "A", "B")
	require.NoError(t, b.Place("A", pieces.At(0, 0)))

	_, ok, err := b.Snap("A")
	require.NoError(t, err)
	assert.False(t, ok, "a lone piece has nothing to snap to")

	require.NoError(t, b.Place("B", pieces.At(13, 0)))

	s, ok, err := b.Snap("A")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 3, s.DX, 1e-9)
	assert.InDelta(t, 0, s.DY, 1e-9)
	assert.Equal(t, 0.0, b.Arrangement()["A"].X, "Snap does not move")

	s, ok, err = b.ApplySnap("A")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 3, b.Arrangement()["A"].X, 1e-9)
	assert.InDelta(t, 9, s.DistSq, 1e-9)

	last := rec.events[len(rec.events)-1]
	assert.Equal(t, EventPieceSnapped, last.Type())
	require.NotNil(t, last.Data().(PieceEvent).Snap)

	_, _, err = b.Snap("Z")
	assert.ErrorIs(t, err, ErrPieceNotFound)
}

func TestApplySnapOutOfReach(t *testing.T) {
	b, rec := newBoard(t, "A", "B")
	require.NoError(t, b.Place("A", pieces.At(0, 0)))
	require.NoError(t, b.Place("B", pieces.At(100, 0)))
	n := len(rec.types())

	_, ok, err := b.ApplySnap("A")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0.0, b.Arrangement()["A"].X)
	assert.Len(t, rec.types(), n)
}

func TestCustomDetector(t *testing.T) {
	b := New(squares(t, "A", "B"), WithDetector(magnet.New(2)))
	require.NoError(t, b.Place("A", pieces.At(0, 0)))
	require.NoError(t, b.Place("B", pieces.At(13, 0)))

	_, ok, err := b.Snap("A")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotEmpty(t, b.ID())
}

func TestRemoveAndReset(t *testing.T) {
	b, rec := newBoard(t, "A", "B")
	require.NoError(t, b.Place("A", pieces.At(0, 0)))
	require.NoError(t, b.Place("B", pieces.At(0, 0)))

	require.NoError(t, b.Remove("A"))
	assert.ErrorIs(t, b.Remove("A"), ErrPieceNotFound)
	assert.Equal(t, 1, b.Len())

	b.Reset()
	assert.Equal(t, 0, b.Len())

	types := rec.types()
	assert.Equal(t, EventPieceRemoved, types[2])
	assert.Equal(t, EventBoardReset, types[3])
	assert.Equal(t, ResetEvent{BoardID: "test", Removed: 1}, rec.events[3].Data())
}

func TestLoadSolution(t *testing.T) {
	b, rec := newBoard(t, "A", "B")
	require.NoError(t, b.Place("A", pieces.At(7, 7)))

	err := b.LoadSolution(map[string]pieces.Placement{"A": pieces.At(1, 1), "Z": pieces.At(0, 0)})
	assert.ErrorIs(t, err, pieces.ErrUnknownPiece)
	assert.Equal(t, 7.0, b.Arrangement()["A"].X, "failed load leaves the board untouched")

	sol := map[string]pieces.Placement{"B": pieces.At(2, 2), "A": pieces.At(1, 1)}
	require.NoError(t, b.LoadSolution(sol))
	assert.Equal(t, sol, b.Arrangement())

	assert.Equal(t, []string{EventPiecePlaced, EventBoardReset, EventPiecePlaced, EventPiecePlaced}, rec.types())
	assert.Equal(t, "A", rec.events[2].Data().(PieceEvent).PieceID)
}

func TestHandlersMayReenter(t *testing.T) {
	eb := bus.New()
	b := New(squares(t, "A"), WithBus(eb))
	var seen int
	_, err := eb.Subscribe(EventPiecePlaced, func(bus.Event) error {
		seen = b.Len()
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, b.Place("A", pieces.At(0, 0)))
	assert.Equal(t, 1, seen)
}

func TestConcurrentEdits(t *testing.T) {
	b := New(squares(t, "A", "B"))
	require.NoError(t, b.Place("A", pieces.At(0, 0)))
	require.NoError(t, b.Place("B", pieces.At(30, 0)))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = b.Move("A", float64(j), 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _, _ = b.Snap("B")
				_ = b.Pieces()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 2, b.Len())
}
