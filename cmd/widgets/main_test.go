package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "widgets dev\n", out.String())
}

func TestServeFlags(t *testing.T) {
	cmd := serveCmd()
	require.NoError(t, cmd.Flags().Parse([]string{"--port", "4100", "--journal", ""}))

	assert.True(t, cmd.Flags().Changed("port"))
	assert.True(t, cmd.Flags().Changed("journal"))
	assert.False(t, cmd.Flags().Changed("log-level"))
}
