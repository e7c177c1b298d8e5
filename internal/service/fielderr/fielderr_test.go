package fielderr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	assert.NoError(t, New().Err())

	err := New().
		Require("patient_id", "", "required").
		Require("content", "texto", "required").
		Add("patient_id", "second message is ignored").
		Add("appointment_id", "required").
		Err()
	require.Error(t, err)

	fields, ok := As(fmt.Errorf("create evolution: %w", err))
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"patient_id":     "required",
		"appointment_id": "required",
	}, fields)
	assert.Equal(t, "validation failed: appointment_id: required; patient_id: required", err.Error())
}

func TestSingle(t *testing.T) {
	fields, ok := As(Single("feedback", "required"))
	require.True(t, ok)
	assert.Equal(t, "required", fields["feedback"])

	_, ok = As(fmt.Errorf("plain"))
	assert.False(t, ok)
}
