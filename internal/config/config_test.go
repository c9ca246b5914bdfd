package config

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, "127.0.0.1:8080", c.Server.Addr())
	assert.Equal(t, int64(1<<20), c.Server.MaxBodySize)
	assert.Equal(t, 20.0, c.Magnet.Threshold)
	assert.Equal(t, 0.15, c.Validation.DimensionTolerance)
	assert.Equal(t, 36.0, c.Pieces.Unit)
}

func TestParseOverridesDefaults(t *testing.T) {
	doc := `
server:
  port: 9090
  read_timeout: 3s
log:
  level: debug
magnet:
  threshold: 12.5
validation:
  similarity_threshold: 0.8
`
	c, err := Parse(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, "127.0.0.1", c.Server.Host)
	assert.Equal(t, 3*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, 12.5, c.Magnet.Threshold)
	assert.Equal(t, 0.8, c.Validation.SimilarityThreshold)
	assert.Equal(t, 0.15, c.Validation.DimensionTolerance)
}

func TestParseEmpty(t *testing.T) {
	c, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestParseRejects(t *testing.T) {
	tests := map[string]string{
		"unknown_field": "server:\n  nope: 1\n",
		"threshold":     "magnet:\n  threshold: 0\n",
		"similarity":    "validation:\n  similarity_threshold: 1.5\n",
		"port":          "server:\n  port: 70000\n",
		"log_level":     "log:\n  level: loud\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}

	_, err := Parse(strings.NewReader("magnet:\n  threshold: -1\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadAndPieces(t *testing.T) {
	dir := t.TempDir()
	piecesPath := filepath.Join(dir, "pieces.yaml")
	require.NoError(t, os.WriteFile(piecesPath, []byte("pieces:\n  - id: A\n    pts: [0, 0, 1, 0, 0, 1]\n"), 0o644))
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("pieces:\n  file: "+piecesPath+"\n  unit: 10\n"), 0o644))

	c, err := Load(cfgPath)
	require.NoError(t, err)
	table, err := c.LoadPieces()
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, table.IDs())
	assert.Equal(t, 10.0, table.MustLookup("A").Unit())

	c, err = Load("")
	require.NoError(t, err)
	table, err = c.LoadPieces()
	require.NoError(t, err)
	assert.Equal(t, 7, table.Len())

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestExportedTypesDocumented(t *testing.T) {
	f, err := parser.ParseFile(token.NewFileSet(), "config.go", nil, parser.ParseComments)
	require.NoError(t, err)

	for _, decl := range f.Decls {
		gen, ok := decl.(*ast.GenDecl)
		if !ok || gen.Tok != token.TYPE {
			continue
		}
		for _, spec := range gen.Specs {
			ts := spec.(*ast.TypeSpec)
			if !ts.Name.IsExported() {
				continue
			}
			doc := ts.Doc
			if doc == nil {
				doc = gen.Doc
			}
			if assert.NotNil(t, doc, ts.Name.Name) {
				assert.True(t, strings.HasPrefix(doc.Text(), ts.Name.Name+" "), ts.Name.Name)
			}
		}
	}
}
