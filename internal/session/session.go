// Package session manages editing sessions: one editor and one preview
// inspector per open definition, kept in a bounded LRU.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/usestring/gqlquery-mcp/pkg/editor"
	"github.com/usestring/gqlquery-mcp/pkg/preview"
	"github.com/usestring/gqlquery-mcp/pkg/querydef"
	"github.com/usestring/gqlquery-mcp/pkg/types"
)

// DefaultMaxSessions bounds the number of open sessions.
const DefaultMaxSessions = 64

var (
	// ErrNotFound is returned for unknown or evicted session IDs.
	ErrNotFound = errors.New("session not found")
	// ErrClosed is returned when a session is used after close or eviction.
	ErrClosed = errors.New("session closed")
)

// Persister loads and saves definitions by name.
type Persister interface {
	LoadOrEmpty(name string) (querydef.Definition, bool, error)
	Save(name string, def querydef.Definition) error
}

// Session is one open editor. All editor access goes through Do, which
// serializes callers.
type Session struct {
	ID      string
	Name    string
	Created time.Time

	mu        sync.Mutex
	editor    *editor.Editor
	inspector *preview.Inspector
	closed    bool
	commitErr error
	commits   int
}

// Do runs fn with exclusive access to the session's editor.
func (s *Session) Do(fn func(ed *editor.Editor) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: %s", ErrClosed, s.ID)
	}
	return fn(s.editor)
}

// Inspector returns the session's preview inspector. It is safe for
// concurrent use without holding the session lock.
func (s *Session) Inspector() *preview.Inspector {
	return s.inspector
}

// View snapshots the session.
func (s *Session) View() (types.EditorView, error) {
	return s.Apply(func(*editor.Editor) error { return nil })
}

// Apply runs fn like Do and snapshots the session under the same lock. No
// snapshot is taken when fn fails.
func (s *Session) Apply(fn func(ed *editor.Editor) error) (types.EditorView, error) {
	var v types.EditorView
	err := s.Do(func(ed *editor.Editor) error {
		if err := fn(ed); err != nil {
			return err
		}
		v = s.viewLocked(ed)
		return nil
	})
	return v, err
}

func (s *Session) viewLocked(ed *editor.Editor) types.EditorView {
	v := types.EditorView{
		SessionID:     s.ID,
		Name:          s.Name,
		SupportsRules: ed.SupportsRules(),
		RawQuery:      ed.RawQuery(),
		Rows:          ed.Rows(),
		Persisted:     ed.Definition(),
		Dirty:         ed.Dirty(),
		Outline:       ed.Outline(),
		Commits:       s.commits,
	}
	if s.commitErr != nil {
		v.LastCommitError = s.commitErr.Error()
	}
	return v
}

// commit is the editor's CommitFunc. It runs inside Do, under the session lock.
func (s *Session) commit(p Persister) editor.CommitFunc {
	return func(def querydef.Definition) {
		s.commits++
		if err := p.Save(s.Name, def); err != nil {
			s.commitErr = err
			slog.Warn("failed to persist definition",
				slog.String("session_id", s.ID),
				slog.String("name", s.Name),
				slog.String("error", err.Error()),
			)
			return
		}
		s.commitErr = nil
	}
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.editor = nil
}

// Manager owns the open sessions.
type Manager struct {
	persister Persister
	sessions  *lru.Cache[string, *Session]
}

// NewManager creates a manager holding at most maxSessions sessions; the least
// recently used session is closed when the limit is exceeded.
func NewManager(p Persister, maxSessions int) (*Manager, error) {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	c, err := lru.NewWithEvict[string, *Session](maxSessions, func(id string, s *Session) {
		s.close()
		slog.Debug("session closed",
			slog.String("session_id", id),
			slog.String("name", s.Name),
		)
	})
	if err != nil {
		return nil, err
	}
	return &Manager{persister: p, sessions: c}, nil
}

// Open loads the named definition (an empty one when none is stored) and
// starts a session for it. found reports whether a stored definition existed.
func (m *Manager) Open(name string, opts editor.Options) (s *Session, found bool, err error) {
	def, found, err := m.persister.LoadOrEmpty(name)
	if err != nil {
		return nil, false, err
	}

	s = &Session{
		ID:        uuid.NewString(),
		Name:      name,
		Created:   time.Now(),
		inspector: preview.NewInspector(),
	}
	s.editor = editor.New(def, s.commit(m.persister), opts)
	m.sessions.Add(s.ID, s)

	slog.Debug("session opened",
		slog.String("session_id", s.ID),
		slog.String("name", name),
		slog.Bool("found", found),
		slog.Bool("supports_rules", opts.SupportsRules),
	)
	return s, found, nil
}

// Get returns an open session and marks it recently used.
func (m *Manager) Get(id string) (*Session, error) {
	s, ok := m.sessions.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

// Close ends a session, discarding uncommitted edits. It reports whether the
// session was open.
func (m *Manager) Close(id string) bool {
	return m.sessions.Remove(id)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	return m.sessions.Len()
}

// Sessions lists the open sessions, most recently used last.
func (m *Manager) Sessions() []*Session {
	return m.sessions.Values()
}

// Purge closes every session.
func (m *Manager) Purge() {
	m.sessions.Purge()
}
