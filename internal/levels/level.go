package levels

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/tngrm/tngrm/internal/core/pieces"
	"github.com/tngrm/tngrm/pkg/generic"
)

var buffers = generic.NewPool(func() *bytes.Buffer { return new(bytes.Buffer) }, (*bytes.Buffer).Reset)

// Level is a named puzzle. Sol maps piece ids to their solved placement,
// kept as raw JSON so per-piece fields the server does not read survive a
// rewrite of the file. Top-level fields the server does not interpret are kept
// in Extra and written back untouched.
type Level struct {
	Name  string
	Sol   map[string]json.RawMessage
	Extra map[string]json.RawMessage
}

// NewLevel builds a level from typed placements.
func NewLevel(name string, sol map[string]pieces.Placement) (Level, error) {
	l := Level{Name: name, Sol: make(map[string]json.RawMessage, len(sol))}
	for id, p := range sol {
		raw, err := json.Marshal(p)
		if err != nil {
			return Level{}, fmt.Errorf("sol %s: %w", id, err)
		}
		l.Sol[id] = raw
	}
	return l, nil
}

// Placements decodes the solution. An entry that is not a placement object
// is reported with its piece id.
func (l Level) Placements() (map[string]pieces.Placement, error) {
	out := make(map[string]pieces.Placement, len(l.Sol))
	for id, raw := range l.Sol {
		var p pieces.Placement
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("sol %s: %w", id, err)
		}
		out[id] = p
	}
	return out, nil
}

// Validate checks that the level has a name and a solution.
func (l Level) Validate() error {
	if l.Name == "" || l.Sol == nil {
		return ErrInvalidLevel
	}
	return nil
}

// MarshalJSON writes name and sol followed by the extra fields.
func (l Level) MarshalJSON() ([]byte, error) {
	out := make(map[string]json.RawMessage, len(l.Extra)+2)
	for k, v := range l.Extra {
		out[k] = v
	}
	name, err := json.Marshal(l.Name)
	if err != nil {
		return nil, err
	}
	out["name"] = name
	if l.Sol != nil {
		sol, err := json.Marshal(l.Sol)
		if err != nil {
			return nil, err
		}
		out["sol"] = sol
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads name and sol and keeps every other field in Extra.
// A name that is not a string or a sol that is not an object is an invalid
// level. Sol entries are not decoded here.
func (l *Level) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if err := compact(raw); err != nil {
		return err
	}
	*l = Level{}
	if v, ok := raw["name"]; ok {
		if err := json.Unmarshal(v, &l.Name); err != nil {
			return fmt.Errorf("%w: name: %v", ErrInvalidLevel, err)
		}
		delete(raw, "name")
	}
	if v, ok := raw["sol"]; ok {
		if err := json.Unmarshal(v, &l.Sol); err != nil {
			return fmt.Errorf("%w: sol: %v", ErrInvalidLevel, err)
		}
		if err := compact(l.Sol); err != nil {
			return err
		}
		delete(raw, "sol")
	}
	if len(raw) > 0 {
		l.Extra = raw
	}
	return nil
}

// compact strips insignificant whitespace from every value so a level read
// back from the indented file equals the one that was saved.
func compact(m map[string]json.RawMessage) error {
	buf := buffers.Get()
	defer buffers.Put(buf)
	for k, v := range m {
		buf.Reset()
		if err := json.Compact(buf, v); err != nil {
			return err
		}
		m[k] = append(json.RawMessage(nil), buf.Bytes()...)
	}
	return nil
}

// ETag returns a strong HTTP entity tag for the encoded levels.
func ETag(levels []Level) (string, error) {
	buf := buffers.Get()
	defer buffers.Put(buf)
	if err := json.NewEncoder(buf).Encode(levels); err != nil {
		return "", err
	}
	return fmt.Sprintf("\"%016x\"", xxhash.Sum64(buf.Bytes())), nil
}
