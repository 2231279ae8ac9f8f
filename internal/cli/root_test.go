package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	root := GetRootCmd()
	assert.Equal(t, "agora", root.Use)
	assert.Equal(t, version, root.Version)
}

func TestSubcommandsRegistered(t *testing.T) {
	root := GetRootCmd()

	names := make(map[string]bool)
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"], "serve command missing")
	assert.True(t, names["chat"], "chat command missing")
}

func TestGlobalFlags(t *testing.T) {
	root := GetRootCmd()

	require.NotNil(t, root.PersistentFlags().Lookup("config"))
	require.NotNil(t, root.PersistentFlags().Lookup("log-level"))
}

func TestGetVersion(t *testing.T) {
	assert.Equal(t, "0.1.0", GetVersion())
}
