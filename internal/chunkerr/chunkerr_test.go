package chunkerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageIncludesKindAndOp(t *testing.T) {
	err := New(Schema, "AddTable", errors.New("table \"orders\" already exists"))
	assert.Equal(t, `schema: AddTable: table "orders" already exists`, err.Error())
}

func TestNewfFormats(t *testing.T) {
	err := Newf(Translation, "translateWhere", "ambiguous column %q", "id")
	assert.Equal(t, Translation, err.Kind)
	assert.Contains(t, err.Error(), `ambiguous column "id"`)
}

func TestIsMatchesKindThroughWrap(t *testing.T) {
	base := New(Resource, "AppendRow", errors.New("chunk pool exhausted"))
	wrapped := fmt.Errorf("insert failed: %w", base)

	assert.True(t, Is(wrapped, Resource))
	assert.False(t, Is(wrapped, Schema))
	assert.False(t, Is(errors.New("plain"), Schema))
}

func TestUnwrapReturnsUnderlyingError(t *testing.T) {
	cause := errors.New("boom")
	err := New(Invariant, "Decode", cause)
	assert.Same(t, cause, errors.Unwrap(err))
}
