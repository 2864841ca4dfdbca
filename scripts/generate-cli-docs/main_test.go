package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsSection(t *testing.T) {
	markdown := "## n8nctl up\n\n### Options\n\n```\n  -h, --help   help for up\n```\n\n" +
		"### Options inherited from parent commands\n\n```\n      --debug\n```\n\n### SEE ALSO\n"

	assert.Equal(t, "**Options**\n\n```\n  -h, --help   help for up\n```", optionsSection(markdown))
	assert.Empty(t, optionsSection("## n8nctl\n"))
}

func TestWriteFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "docs", "CLI.md")

	require.NoError(t, writeFile(out))

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	for _, heading := range []string{"# n8nctl CLI reference", "### n8nctl doctor", "### n8nctl up", "### n8nctl validate"} {
		assert.Contains(t, string(content), heading)
	}
}
