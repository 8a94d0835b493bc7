package preview

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/usestring/gqlquery-mcp/pkg/gqltext"
)

// Request is the GraphQL-over-HTTP payload sent to the endpoint.
type Request struct {
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
	OperationName string         `json:"operationName,omitempty"`
}

// BuildRequest assembles a request from editor state.
//
// variablesJSON may be empty; otherwise it must be a JSON object. When
// operationName is empty and the document contains more than one named
// operation, the first named operation is selected so the endpoint does not
// reject the document as ambiguous.
func BuildRequest(rawQuery, variablesJSON, operationName string) (Request, error) {
	req := Request{Query: rawQuery, OperationName: operationName}

	if s := strings.TrimSpace(variablesJSON); s != "" {
		var vars map[string]any
		if err := json.Unmarshal([]byte(s), &vars); err != nil {
			return Request{}, fmt.Errorf("parsing variables: %w", err)
		}
		req.Variables = vars
	}

	if req.OperationName == "" {
		outline := gqltext.Scan(rawQuery)
		if len(outline.Operations) > 1 {
			for _, op := range outline.Operations {
				if op.Name != "" {
					req.OperationName = op.Name
					break
				}
			}
		}
	}

	return req, nil
}
