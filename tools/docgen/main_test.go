package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTree() *cobra.Command {
	root := &cobra.Command{Use: "bl", Short: "root"}
	root.AddCommand(&cobra.Command{Use: "items", Short: "Manage items", Run: func(*cobra.Command, []string) {}})
	return root
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		format string
		file   string
	}{
		{format: "markdown", file: "bl_items.md"},
		{format: "man", file: "bl-items.1"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()

			dir := filepath.Join(t.TempDir(), "out")
			require.NoError(t, generate(testTree(), dir, tt.format))

			_, err := os.Stat(filepath.Join(dir, tt.file))
			assert.NoError(t, err)
		})
	}
}

func TestGenerate_UnknownFormat(t *testing.T) {
	t.Parallel()

	err := generate(testTree(), t.TempDir(), "html")
	assert.ErrorContains(t, err, `unknown format "html"`)
}
