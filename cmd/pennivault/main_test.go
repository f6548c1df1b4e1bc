package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	require.NotNil(t, rootCmd)
	assert.Equal(t, "pennivault", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestRootCommandShowsHelp(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetArgs([]string{})
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)

	require.NoError(t, rootCmd.Execute())
	assert.NotEmpty(t, buf.String())
}

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"quote", "lock-quote", "goal", "validate", "example", "serve", "advance-rounds", "tui"}
	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}
	for _, name := range want {
		assert.True(t, registered[name], name)
	}
}
