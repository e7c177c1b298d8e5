package cpf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"529.982.247-25", "52998224725", true},
		{"52998224725", "52998224725", true},
		{"529.982.247-24", "", false},
		{"111.111.111-11", "", false},
		{"5299822472", "", false},
		{"529x982.247-25", "", false},
	}
	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if !tt.ok {
			assert.ErrorIs(t, err, ErrInvalid, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "529.982.247-25", Format("52998224725"))
	assert.Equal(t, "123", Format("123"))
}
