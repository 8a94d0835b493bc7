package preview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRequest(t *testing.T) {
	t.Run("no variables", func(t *testing.T) {
		req, err := BuildRequest("{ countries { name } }", "  ", "")
		require.NoError(t, err)
		assert.Equal(t, "{ countries { name } }", req.Query)
		assert.Nil(t, req.Variables)
		assert.Empty(t, req.OperationName)
	})

	t.Run("variables object", func(t *testing.T) {
		req, err := BuildRequest("query Q($c: ID!) { country(code: $c) { name } }", `{"c":"SE"}`, "")
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"c": "SE"}, req.Variables)
		assert.Empty(t, req.OperationName, "single operation needs no name")
	})

	t.Run("variables must be an object", func(t *testing.T) {
		_, err := BuildRequest("{ x }", `[1,2]`, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing variables")
	})

	t.Run("malformed variables", func(t *testing.T) {
		_, err := BuildRequest("{ x }", `{"c":`, "")
		require.Error(t, err)
	})

	t.Run("picks first named operation", func(t *testing.T) {
		doc := "query A { a }\nquery B { b }"
		req, err := BuildRequest(doc, "", "")
		require.NoError(t, err)
		assert.Equal(t, "A", req.OperationName)
	})

	t.Run("explicit operation name wins", func(t *testing.T) {
		doc := "query A { a }\nquery B { b }"
		req, err := BuildRequest(doc, "", "B")
		require.NoError(t, err)
		assert.Equal(t, "B", req.OperationName)
	})

	t.Run("raw text is sent unchanged", func(t *testing.T) {
		doc := "{ countries { name "
		req, err := BuildRequest(doc, "", "")
		require.NoError(t, err)
		assert.Equal(t, doc, req.Query)
	})
}
