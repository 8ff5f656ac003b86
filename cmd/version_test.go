package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	SetVersion("1.2.3")
	defer SetVersion("")

	cmd := newVersionCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "gauth version 1.2.3\n", buf.String())
}

func TestSetVersion(t *testing.T) {
	SetVersion("9.9.9")
	defer SetVersion("")
	assert.Equal(t, "9.9.9", GetVersion())
}
