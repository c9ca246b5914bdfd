package pieces

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultUnit is the world size of one template unit.
const DefaultUnit = 36

// Table is an immutable id-keyed set of templates. Build it once at startup
// and pass it by pointer to whatever needs piece geometry.
type Table struct {
	byID map[string]*Template
	ids  []string
}

// NewTable indexes templates by id. The given order is kept for iteration.
func NewTable(templates ...*Template) (*Table, error) {
	t := &Table{
		byID: make(map[string]*Template, len(templates)),
		ids:  make([]string, 0, len(templates)),
	}
	for _, tpl := range templates {
		if tpl == nil {
			return nil, fmt.Errorf("%w: nil template", ErrInvalidTemplate)
		}
		if _, ok := t.byID[tpl.id]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicatePiece, tpl.id)
		}
		t.byID[tpl.id] = tpl
		t.ids = append(t.ids, tpl.id)
	}
	return t, nil
}

// Lookup returns the template registered under id.
func (t *Table) Lookup(id string) (*Template, bool) {
	tpl, ok := t.byID[id]
	return tpl, ok
}

// MustLookup returns the template for id and panics when it is missing.
// Use it only where the id comes from data already validated against t.
func (t *Table) MustLookup(id string) *Template {
	tpl, ok := t.byID[id]
	if !ok {
		panic(fmt.Errorf("%w: %q", ErrUnknownPiece, id))
	}
	return tpl
}

// Get is Lookup with an error for callers that propagate failures.
func (t *Table) Get(id string) (*Template, error) {
	tpl, ok := t.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPiece, id)
	}
	return tpl, nil
}

// IDs returns the piece ids in table order.
func (t *Table) IDs() []string { return append([]string(nil), t.ids...) }

// SortedIDs returns the piece ids in lexical order.
func (t *Table) SortedIDs() []string {
	ids := t.IDs()
	sort.Strings(ids)
	return ids
}

// Len returns the number of templates.
func (t *Table) Len() int { return len(t.ids) }

// DefaultTable returns the seven classic tangram pieces.
func DefaultTable(unit float64) (*Table, error) {
	doc := Document{
		Pieces: []PieceDef{
			// big triangles
			{ID: "T1", Pts: []float64{0, 0, 4, 0, 2, 2}, Off: [2]float64{2, 1}, Color: "#fca5a5"},
			{ID: "T2", Pts: []float64{0, 0, 4, 0, 2, 2}, Off: [2]float64{2, 1}, Color: "#fdba74"},
			// medium triangle
			{ID: "T3", Pts: []float64{0, 0, 2, 0, 0, 2}, Off: [2]float64{0.67, 0.67}, Color: "#86efac"},
			// small triangles
			{ID: "T4", Pts: []float64{0, 0, 2, 0, 1, 1}, Off: [2]float64{1, 0.5}, Color: "#c4b5fd"},
			{ID: "T5", Pts: []float64{0, 0, 2, 0, 1, 1}, Off: [2]float64{1, 0.5}, Color: "#93c5fd"},
			{ID: "SQ", Pts: []float64{1, 0, 2, 1, 1, 2, 0, 1}, Off: [2]float64{1, 1}, Color: "#fde047"},
			{ID: "PL", Pts: []float64{0, 0, 2, 0, 3, 1, 1, 1}, Off: [2]float64{1.5, 0.5}, Color: "#67e8f9"},
		},
	}
	return doc.Build(unit)
}

// Document is the on-disk description of a template table.
type Document struct {
	Unit   float64    `json:"unit,omitempty" yaml:"unit,omitempty"`
	Pieces []PieceDef `json:"pieces" yaml:"pieces"`
}

// PieceDef describes one template in a Document.
type PieceDef struct {
	ID    string     `json:"id" yaml:"id"`
	Pts   []float64  `json:"pts" yaml:"pts"`
	Off   [2]float64 `json:"off" yaml:"off"`
	Color string     `json:"color,omitempty" yaml:"color,omitempty"`
}

// Build constructs the table. A unit set in the document wins over unit.
func (d Document) Build(unit float64) (*Table, error) {
	if d.Unit > 0 {
		unit = d.Unit
	}
	templates := make([]*Template, 0, len(d.Pieces))
	for _, p := range d.Pieces {
		tpl, err := NewTemplate(p.ID, p.Pts, p.Off[0], p.Off[1], unit, p.Color)
		if err != nil {
			return nil, err
		}
		templates = append(templates, tpl)
	}
	return NewTable(templates...)
}

// LoadJSON reads a template table from a JSON document.
func LoadJSON(r io.Reader, unit float64) (*Table, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode pieces: %w", err)
	}
	return d.Build(unit)
}

// LoadYAML reads a template table from a YAML document.
func LoadYAML(r io.Reader, unit float64) (*Table, error) {
	var d Document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode pieces: %w", err)
	}
	return d.Build(unit)
}
