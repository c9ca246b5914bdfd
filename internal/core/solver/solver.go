// Package solver checks an attempted arrangement against a saved solution by
// rendering both silhouettes and running the validator on them.
package solver

import (
	"fmt"
	"sort"

	"github.com/tngrm/tngrm/internal/core/geometry"
	"github.com/tngrm/tngrm/internal/core/pieces"
	"github.com/tngrm/tngrm/internal/core/raster"
	"github.com/tngrm/tngrm/internal/core/validation"
)

// Arrangement maps piece ids to their placements.
type Arrangement map[string]pieces.Placement

// Checker renders arrangements with one rasterizer and scores them with one
// validator. It is safe for concurrent use.
type Checker struct {
	table     *pieces.Table
	validator *validation.Validator
	raster    *raster.Rasterizer
}

// NewChecker creates a checker.
func NewChecker(table *pieces.Table, validator *validation.Validator, r *raster.Rasterizer) *Checker {
	return &Checker{table: table, validator: validator, raster: r}
}

// Table returns the template table arrangements are drawn from.
func (c *Checker) Table() *pieces.Table { return c.table }

// Polygons returns the world polygons of a in sorted id order.
func (c *Checker) Polygons(a Arrangement) ([][]geometry.Point, error) {
	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	polys := make([][]geometry.Point, 0, len(ids))
	for _, id := range ids {
		tpl, err := c.table.Get(id)
		if err != nil {
			return nil, err
		}
		polys = append(polys, pieces.WorldVertices(tpl, a[id]))
	}
	return polys, nil
}

// Check scores attempt against target. Both silhouettes are anchored at the
// frame origin and drawn with the scale that fits the target, so position on
// the board is ignored while size and shape are not.
func (c *Checker) Check(target, attempt Arrangement) (validation.Result, error) {
	tp, err := c.Polygons(target)
	if err != nil {
		return validation.Result{}, fmt.Errorf("target: %w", err)
	}
	ap, err := c.Polygons(attempt)
	if err != nil {
		return validation.Result{}, fmt.Errorf("attempt: %w", err)
	}

	scale := c.raster.FitScale(raster.Bounds(tp))
	targetMask := validation.MaskFromRGBA(c.raster.Render(tp, scale))
	attemptMask := validation.MaskFromRGBA(c.raster.Render(ap, scale))

	return c.validator.Validate(targetMask, attemptMask), nil
}
