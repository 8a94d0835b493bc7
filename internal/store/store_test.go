package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usestring/gqlquery-mcp/pkg/querydef"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "queries"))
	require.NoError(t, err)
	return s
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	def := querydef.Definition{
		RawQuery: "query Countries {\n  countries {\n    name\n    code\n  }\n}\n",
		Rules: []querydef.Rule{
			{Name: "names", Expression: ".data.countries[] | {name}"},
			{Name: "", Expression: ""},
		},
	}

	require.NoError(t, s.Save("countries", def))

	got, err := s.Load("countries")
	require.NoError(t, err)
	if diff := cmp.Diff(def, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("q", querydef.Definition{RawQuery: "{ a }"}))
	require.NoError(t, s.Save("q", querydef.Definition{RawQuery: "{ b }"}))

	got, err := s.Load("q")
	require.NoError(t, err)
	assert.Equal(t, "{ b }", got.RawQuery)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestStore_LoadMissing(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	def, found, err := s.LoadOrEmpty("nope")
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, def.Equal(querydef.Definition{}))
}

func TestStore_LoadValidatesDocument(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{name: "missing query", doc: "fields: []\n", want: "query"},
		{name: "wrong type", doc: "query: 42\n", want: "/query"},
		{name: "unknown key", doc: "query: '{ a }'\nquery_text: x\n", want: "query_text"},
		{name: "rule missing jq", doc: "query: '{ a }'\nfields:\n  - name: a\n", want: "/fields/0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t)
			require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "bad.yaml"), []byte(tt.doc), 0o644))

			_, err := s.Load("bad")
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
			assert.NotEmpty(t, verr.Problems)
			assert.Contains(t, verr.Error(), tt.want)
		})
	}
}

func TestStore_LoadMalformedYAML(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "bad.yaml"), []byte("query: [unclosed\n"), 0o644))

	_, err := s.Load("bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing definition")
}

func TestStore_InvalidNames(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"", "../escape", "a/b", ".hidden", "a..b", "with space"} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Save(name, querydef.Definition{}), ErrInvalidName)
			_, err := s.Load(name)
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}
}

func TestStore_ListAndLoadAll(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("b", querydef.Definition{RawQuery: "{ b }"}))
	require.NoError(t, s.Save("a", querydef.Definition{RawQuery: "{ a }"}))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "broken.yaml"), []byte("nope: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), "notes.txt"), []byte("ignored"), 0o644))

	names, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "broken"}, names)

	defs, failed, err := s.LoadAll()
	require.NoError(t, err)
	assert.Len(t, defs, 2)
	assert.Contains(t, failed, "broken")
}

func TestStore_Delete(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Save("q", querydef.Definition{RawQuery: "{ a }"}))
	require.NoError(t, s.Delete("q"))
	assert.ErrorIs(t, s.Delete("q"), ErrNotFound)
}

func TestDefinitionSchema(t *testing.T) {
	schema := DefinitionSchema()
	require.NotNil(t, schema.Properties)
	_, ok := schema.Properties.Get("query")
	assert.True(t, ok)
	_, ok = schema.Properties.Get("fields")
	assert.True(t, ok)
	assert.Contains(t, schema.Required, "query")
}
