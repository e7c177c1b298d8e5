package paging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	p, pp := Normalize(0, 0)
	assert.Equal(t, 1, p)
	assert.Equal(t, DefaultPerPage, pp)

	p, pp = Normalize(3, 500)
	assert.Equal(t, 3, p)
	assert.Equal(t, MaxPerPage, pp)
	assert.Equal(t, 200, Offset(p, pp))
}

func TestNew(t *testing.T) {
	r := New([]int{1, 2}, 41, 1, 20)
	assert.Equal(t, 3, r.TotalPages)

	e := Empty[string](1, 20)
	assert.NotNil(t, e.Data)
	assert.Equal(t, 0, e.TotalPages)
}
