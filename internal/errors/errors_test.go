package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchemaErrorNamesColumn(t *testing.T) {
	err := fmt.Errorf("failed to build graph: %w", NewSchemaError("device_id"))

	assert.True(t, IsSchemaError(err))
	assert.False(t, IsModelFitError(err))

	col, ok := MissingColumn(err)
	assert.True(t, ok)
	assert.Equal(t, "device_id", col)
	assert.Contains(t, err.Error(), `"device_id"`)
}

func TestAppErrorUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDatabaseError("failed to write batch").WithCause(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to write batch: connection refused", err.Error())

	_, ok := MissingColumn(err)
	assert.False(t, ok)
}
