package tools_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstudio/toolbridge/internal/adapter/outbound/tools"
)

func TestEcho_Invoke(t *testing.T) {
	echo := tools.NewEcho()
	ctx := context.Background()

	t.Run("returns input unchanged", func(t *testing.T) {
		result, err := echo.Invoke(ctx, map[string]any{"text": "hi"})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, map[string]any{"text": "hi"}, result.Output)
	})

	t.Run("missing text fails validation", func(t *testing.T) {
		result, err := echo.Invoke(ctx, map[string]any{})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Contains(t, result.Error, "text")
	})

	t.Run("wrong type fails validation", func(t *testing.T) {
		result, err := echo.Invoke(ctx, map[string]any{"text": 5})
		require.NoError(t, err)
		assert.False(t, result.Success)
	})
}

func TestEcho_Describe(t *testing.T) {
	echo := tools.NewEcho()
	desc := echo.Describe()
	assert.Equal(t, "echo", desc.ID)
	assert.True(t, desc.Enabled)
	require.Len(t, desc.Parameters, 1)
	assert.Equal(t, "text", desc.Parameters[0].Name)
	assert.True(t, desc.Parameters[0].Required)
	assert.NoError(t, desc.Validate())
}
