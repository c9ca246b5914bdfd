package solver

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tngrm/tngrm/internal/core/pieces"
	"github.com/tngrm/tngrm/internal/core/raster"
	"github.com/tngrm/tngrm/internal/core/validation"
)

func newChecker(t *testing.T) *Checker {
	t.Helper()
	table, err := pieces.DefaultTable(pieces.DefaultUnit)
	require.NoError(t, err)
	return NewChecker(table, validation.NewValidator(validation.DefaultConfig()), raster.New(128))
}

// square places both big triangles in the top and left quarters of a 4x4 square.
func square() Arrangement {
	u := float64(pieces.DefaultUnit)
	return Arrangement{
		"T1": {X: 2 * u, Y: 1 * u, Rotation: 0, ScaleX: 1},
		"T2": {X: 1 * u, Y: 2 * u, Rotation: 270, ScaleX: 1},
	}
}

func TestCheckSameArrangementSolves(t *testing.T) {
	c := newChecker(t)
	res, err := c.Check(square(), square())
	require.NoError(t, err)
	assert.True(t, res.Solved)
	assert.True(t, res.DimensionsOK)
	assert.Equal(t, 1.0, res.Similarity)
}

func TestCheckIgnoresTranslation(t *testing.T) {
	c := newChecker(t)
	moved := Arrangement{}
	for id, p := range square() {
		p.X += 300
		p.Y -= 120
		moved[id] = p
	}
	res, err := c.Check(square(), moved)
	require.NoError(t, err)
	assert.True(t, res.Solved)
	assert.InDelta(t, 1.0, res.Similarity, 1e-3)
}

func TestCheckRejectsWrongShape(t *testing.T) {
	c := newChecker(t)
	wrong := Arrangement{
		"T1": {X: 0, Y: 0, Rotation: 0, ScaleX: 1},
		"T2": {X: 500, Y: 0, Rotation: 0, ScaleX: 1},
	}
	res, err := c.Check(square(), wrong)
	require.NoError(t, err)
	assert.False(t, res.Solved)
	assert.Less(t, res.Similarity, 0.9)
}

func TestCheckUnknownPiece(t *testing.T) {
	c := newChecker(t)
	_, err := c.Check(square(), Arrangement{"ZZ": pieces.At(0, 0)})
	assert.ErrorIs(t, err, pieces.ErrUnknownPiece)
}

func TestCheckConcurrent(t *testing.T) {
	c := newChecker(t)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				res, err := c.Check(square(), square())
				assert.NoError(t, err)
				assert.True(t, res.Solved)
			}
		}()
	}
	wg.Wait()
}
