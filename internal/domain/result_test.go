package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstudio/toolbridge/internal/domain"
)

func TestResult_Constructors(t *testing.T) {
	ok := domain.Ok(map[string]any{"text": "hi"})
	assert.True(t, ok.Success)
	assert.Equal(t, map[string]any{"text": "hi"}, ok.Output)
	assert.Empty(t, ok.Error)

	fail := domain.Failf("tool not found: %s", "missing")
	assert.False(t, fail.Success)
	assert.Nil(t, fail.Output)
	assert.Equal(t, "tool not found: missing", fail.Error)
}

func TestResult_WithMetaDoesNotMutateOriginal(t *testing.T) {
	base := domain.Ok(map[string]any{"n": 1})
	stamped := base.WithMeta("tool_id", "echo").WithMeta("invocation_id", "abc")

	assert.Nil(t, base.Meta)
	assert.Equal(t, "echo", stamped.Meta["tool_id"])
	assert.Equal(t, "abc", stamped.Meta["invocation_id"])
}

func TestResult_JSONShape(t *testing.T) {
	payload, err := json.Marshal(domain.Fail("boom"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, false, decoded["success"])
	assert.Equal(t, "boom", decoded["error"])
	// Output is omitted on failure; error is omitted on success.
	_, hasOutput := decoded["output"]
	assert.False(t, hasOutput)
}
