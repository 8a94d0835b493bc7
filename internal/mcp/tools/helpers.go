// Package tools contains MCP tool implementations for gqlquery-mcp.
package tools

import (
	"github.com/usestring/gqlquery-mcp/internal/extract"
	"github.com/usestring/gqlquery-mcp/pkg/querydef"
	"github.com/usestring/gqlquery-mcp/pkg/types"
)

// MIME type constant.
const MimeJSON = "application/json"

// ruleIssues compiles every non-empty rule expression and reports the ones
// that fail. Blank rows are still being typed and are skipped.
func ruleIssues(rows []querydef.Rule) []types.RuleIssue {
	var issues []types.RuleIssue
	for i, r := range rows {
		if r.Expression == "" {
			continue
		}
		if err := extract.Validate(r.Expression); err != nil {
			issues = append(issues, types.RuleIssue{Index: i, Name: r.Name, Message: err.Error()})
		}
	}
	return issues
}
