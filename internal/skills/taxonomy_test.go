package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tax := Default()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"synonym", "JS", "javascript"},
		{"canonical mixed case", "JavaScript", "javascript"},
		{"collapse whitespace", "  Node   JS ", "node.js"},
		{"k8s", "k8s", "kubernetes"},
		{"golang", "Golang", "go"},
		{"unknown passes through lowercased", "Elixir", "elixir"},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tax.Normalize(tt.input))
		})
	}
}

func TestNormalizeSet_SortedUnique(t *testing.T) {
	tax := Default()
	got := tax.NormalizeSet([]string{"React", "reactjs", "JS"}, []string{"Node.js", "", "nodejs"})
	assert.Equal(t, []string{"javascript", "node.js", "react"}, got)
}

func TestRelated(t *testing.T) {
	tax := Default()
	assert.True(t, tax.IsRelated("javascript", "typescript"))
	assert.True(t, tax.IsRelated("typescript", "javascript"))
	assert.False(t, tax.IsRelated("javascript", "javascript"))
	assert.False(t, tax.IsRelated("go", "aws"))

	assert.True(t, tax.HasRelated("postgresql", []string{"go", "mysql"}))
	assert.False(t, tax.HasRelated("postgresql", []string{"go"}))
	assert.False(t, tax.HasRelated("elixir", []string{"erlang"}))
}

func TestRecommendation(t *testing.T) {
	tax := Default()
	text, ok := tax.Recommendation("aws")
	require.True(t, ok)
	assert.Contains(t, text, "AWS")

	_, ok = tax.Recommendation("cobol")
	assert.False(t, ok)
}

func TestParseTaxonomy_ConflictingAlias(t *testing.T) {
	data := []byte(`
synonyms:
  javascript: [js]
  json: [js]
`)
	_, err := ParseTaxonomy(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"js"`)
}

func TestParseTaxonomy_InvalidYAML(t *testing.T) {
	_, err := ParseTaxonomy([]byte("synonyms: [unclosed"))
	assert.Error(t, err)
}

func TestLoadTaxonomy(t *testing.T) {
	t.Run("empty path uses default", func(t *testing.T) {
		tax, err := LoadTaxonomy("")
		require.NoError(t, err)
		assert.Same(t, Default(), tax)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "taxonomy.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
synonyms:
  rust: [rustlang]
related:
  - [rust, c++]
recommendations:
  Rust: Write a command-line tool in Rust.
`), 0o600))

		tax, err := LoadTaxonomy(path)
		require.NoError(t, err)
		assert.Equal(t, "rust", tax.Normalize("RustLang"))
		assert.True(t, tax.IsRelated("c++", "rust"))
		text, ok := tax.Recommendation("rust")
		assert.True(t, ok)
		assert.Equal(t, "Write a command-line tool in Rust.", text)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadTaxonomy(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
