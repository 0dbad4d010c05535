package dispose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProtocol(t *testing.T) {
	tests := []struct {
		in   string
		want Protocol
	}{
		{"", ProtocolContext},
		{"context", ProtocolContext},
		{" CTX ", ProtocolContext},
		{"stack", ProtocolStack},
		{"Stack", ProtocolStack},
	}
	for _, tt := range tests {
		got, err := ParseProtocol(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseProtocol("array")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"array"`)
}

func TestProtocolString(t *testing.T) {
	assert.Equal(t, "context", ProtocolContext.String())
	assert.Equal(t, "stack", ProtocolStack.String())
	assert.Equal(t, "Protocol(7)", Protocol(7).String())
}

func TestProtocolCapabilities(t *testing.T) {
	assert.True(t, ProtocolContext.SupportsSwitch())
	assert.False(t, ProtocolStack.SupportsSwitch())

	assert.Equal(t, []string{HelperUsingCtx}, ProtocolContext.Helpers())
	assert.Equal(t, []string{HelperUsing, HelperDispose}, ProtocolStack.Helpers())
}
