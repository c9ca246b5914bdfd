package generic

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolResetsOnPut(t *testing.T) {
	allocs := 0
	p := NewPool(func() *bytes.Buffer {
		allocs++
		return new(bytes.Buffer)
	}, (*bytes.Buffer).Reset)

	b := p.Get()
	b.WriteString("dirty")
	p.Put(b)
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 1, allocs)

	assert.NotNil(t, p.Get())
}

func TestHotPool(t *testing.T) {
	allocs := 0
	p := NewHotPool(func() []int {
		allocs++
		return make([]int, 0, 4)
	}, nil, 3)
	assert.Equal(t, 3, allocs)
	assert.Equal(t, 4, cap(p.Get()))
}
