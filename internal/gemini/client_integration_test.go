//go:build integration
// +build integration

package gemini

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Hits the real Gemini api. Requires GEMINI_API_KEY to be set.
func Test_Client_GenerateText_Integration(t *testing.T) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		t.Skip("GEMINI_API_KEY not set")
	}

	c, err := NewClient(zap.NewNop(), Config{APIKey: apiKey})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	out, err := c.GenerateText(ctx, "Reply with the single word: pong", nil)
	require.NoError(t, err)

	assert.NotEmpty(t, out)
}
