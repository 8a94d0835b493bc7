package types

import (
	"github.com/usestring/gqlquery-mcp/pkg/gqltext"
	"github.com/usestring/gqlquery-mcp/pkg/querydef"
)

// EditorView is a serializable snapshot of one editing session.
type EditorView struct {
	SessionID       string              `json:"session_id"`
	Name            string              `json:"name"`
	SupportsRules   bool                `json:"supports_rules"`
	RawQuery        string              `json:"raw_query"`       // displayed text, draft included
	Rows            []querydef.Rule     `json:"rows,omitzero"`   // displayed rule rows, drafts included
	Persisted       querydef.Definition `json:"persisted"`       // last committed definition
	Dirty           bool                `json:"dirty"`           // an edit has not been blurred yet
	Outline         gqltext.Outline     `json:"outline"`
	Commits         int                 `json:"commits"`
	LastCommitError string              `json:"last_commit_error,omitempty"`
}

// RuleIssue reports a rule row whose expression does not compile.
type RuleIssue struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Message string `json:"message"`
}
