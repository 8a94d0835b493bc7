// Package editor implements the query-definition editor: a raw-query text
// binding plus an optional extraction-rule list, reconciled with the host's
// persisted definition on blur rather than on every keystroke.
//
// The host hands in a querydef.Definition and a CommitFunc. Keystroke-level
// edits only change local state; the host observes a new definition only when
// a field loses focus (BlurRule, BlurRawQuery). Rule commits replace the whole
// rule list and keep the persisted raw query; raw-query commits keep the
// persisted rules.
//
// An Editor is owned by a single editing session and is not safe for
// concurrent use.
package editor

import (
	"errors"
	"log/slog"

	"github.com/usestring/gqlquery-mcp/pkg/gqltext"
	"github.com/usestring/gqlquery-mcp/pkg/querydef"
)

// ErrRulesDisabled is returned by rule operations on an editor created
// without rule support.
var ErrRulesDisabled = errors.New("editor: extraction rules are disabled")

// CommitFunc receives every committed definition. Persistence failures are
// the host's concern; the editor neither retries nor rolls back.
type CommitFunc func(querydef.Definition)

// Options configures an Editor.
type Options struct {
	// SupportsRules enables the extraction-rule list. A plain query editor
	// leaves it false.
	SupportsRules bool
}

// Editor holds one editing session.
type Editor struct {
	opts      Options
	persisted querydef.Definition
	buffer    Buffer
	commit    CommitFunc

	rawDraft   string
	rawEditing bool
}

// New activates an editor for def. The rule buffer is seeded once from
// def.Rules; later commits do not reseed it.
func New(def querydef.Definition, commit CommitFunc, opts Options) *Editor {
	e := &Editor{
		opts:      opts,
		persisted: def.Clone(),
		commit:    commit,
	}
	if opts.SupportsRules {
		e.buffer = NewBuffer(def.Rules)
	}
	return e
}

// SupportsRules reports whether the rule list is enabled.
func (e *Editor) SupportsRules() bool {
	return e.opts.SupportsRules
}

// Definition returns the last persisted definition known to the editor.
func (e *Editor) Definition() querydef.Definition {
	return e.persisted.Clone()
}

// Buffer returns the current rule buffer.
func (e *Editor) Buffer() Buffer {
	return e.buffer
}

// Rows returns the rule rows to render. Empty when rules are disabled or the
// definition has none.
func (e *Editor) Rows() []querydef.Rule {
	if !e.opts.SupportsRules {
		return []querydef.Rule{}
	}
	return e.buffer.Rules()
}

// EditRule changes one field of one rule in the buffer. Nothing is committed.
func (e *Editor) EditRule(index int, field Field, value string) error {
	if !e.opts.SupportsRules {
		return ErrRulesDisabled
	}
	next, err := e.buffer.UpdateField(index, field, value)
	if err != nil {
		return err
	}
	e.buffer = next
	return nil
}

// AppendRule adds a blank rule to the buffer. Nothing is committed.
func (e *Editor) AppendRule() error {
	if !e.opts.SupportsRules {
		return ErrRulesDisabled
	}
	e.buffer = e.buffer.Append()
	return nil
}

// BlurRule commits the whole buffer as the new rule list. The persisted raw
// query is carried over unchanged, even if a raw-query draft is pending.
func (e *Editor) BlurRule() (querydef.Definition, error) {
	if !e.opts.SupportsRules {
		return querydef.Definition{}, ErrRulesDisabled
	}
	next := e.persisted.WithRules(e.buffer.Rules())
	e.push(next, "rules")
	return next.Clone(), nil
}

// RawQuery returns the text to display: the live draft while the field is
// being edited, the persisted raw query otherwise.
func (e *Editor) RawQuery() string {
	if e.rawEditing {
		return e.rawDraft
	}
	return e.persisted.RawQuery
}

// EditRawQuery replaces the live raw-query draft. Nothing is committed.
func (e *Editor) EditRawQuery(text string) {
	e.rawDraft = text
	e.rawEditing = true
}

// BlurRawQuery commits the raw-query draft, keeping the persisted rules.
// It reports false when there was no draft to commit.
func (e *Editor) BlurRawQuery() (querydef.Definition, bool) {
	if !e.rawEditing {
		return querydef.Definition{}, false
	}
	next := e.persisted.WithRawQuery(e.rawDraft)
	e.rawEditing = false
	e.rawDraft = ""
	e.push(next, "raw_query")
	return next.Clone(), true
}

// Outline scans the displayed raw query.
func (e *Editor) Outline() gqltext.Outline {
	return gqltext.Scan(e.RawQuery())
}

// Dirty reports whether there are edits the host has not seen yet.
func (e *Editor) Dirty() bool {
	if e.rawEditing && e.rawDraft != e.persisted.RawQuery {
		return true
	}
	if !e.opts.SupportsRules {
		return false
	}
	return !querydef.RulesEqual(e.buffer.Rules(), e.persisted.Rules)
}

// Reset is called when the host replaces the whole definition. The buffer is
// reseeded and any raw-query draft is dropped; nothing is committed.
func (e *Editor) Reset(def querydef.Definition) {
	e.persisted = def.Clone()
	e.rawDraft = ""
	e.rawEditing = false
	if e.opts.SupportsRules {
		e.buffer = NewBuffer(def.Rules)
	}
}

func (e *Editor) push(next querydef.Definition, source string) {
	e.persisted = next
	slog.Debug("committing query definition",
		slog.String("source", source),
		slog.Int("rules", len(next.Rules)),
		slog.Int("query_len", len(next.RawQuery)),
	)
	if e.commit != nil {
		e.commit(next.Clone())
	}
}
