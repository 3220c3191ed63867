package databasetest

import (
	"context"
	"errors"
	"sync"

	"github.com/deppfellow/erp-gateway/internal/database"
	"github.com/jackc/pgx/v5"
)

// Query is one recorded call to Session.Query.
type Query struct {
	SQL  string
	Args []any
}

// QueryFunc produces the result of a query.
type QueryFunc func(sql string, args []any) (pgx.Rows, error)

// Session is a fake database.Session.
type Session struct {
	mu sync.Mutex

	// QueryFunc answers queries. When nil every query returns empty rows.
	QueryFunc QueryFunc
	// CommitErr is returned by Commit.
	CommitErr error
	// CloseErr is returned by Close; the session is closed regardless.
	CloseErr error

	user      string
	queries   []Query
	committed bool
	closed    bool
}

var _ database.Session = (*Session)(nil)

// NewSession returns a session answering queries with fn.
func NewSession(fn QueryFunc) *Session {
	return &Session{QueryFunc: fn}
}

func (s *Session) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	s.mu.Lock()
	s.queries = append(s.queries, Query{SQL: sql, Args: args})
	fn := s.QueryFunc
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fn == nil {
		return NewRows(nil), nil
	}
	return fn(sql, args)
}

func (s *Session) User() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("databasetest: commit on closed session")
	}
	if s.CommitErr != nil {
		return s.CommitErr
	}
	s.committed = true
	return nil
}

func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return s.CloseErr
}

// Queries returns the recorded queries.
func (s *Session) Queries() []Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Query(nil), s.queries...)
}

// Committed reports whether Commit succeeded.
func (s *Session) Committed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.committed
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Opener is a fake database.Opener that hands out one Session.
type Opener struct {
	mu sync.Mutex

	// Session is returned by every successful Open.
	Session *Session
	// Err, when set, makes Open fail.
	Err error
	// Accept, when set, decides which credentials are valid.
	Accept func(user, password string) bool

	calls int
}

var _ database.Opener = (*Opener)(nil)

// ErrLoginRejected is returned when Accept refuses the credentials.
var ErrLoginRejected = errors.New("databasetest: password authentication failed")

// NewOpener returns an Opener serving session.
func NewOpener(session *Session) *Opener {
	return &Opener{Session: session}
}

func (o *Opener) Open(ctx context.Context, user, password string) (database.Session, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.calls++
	if o.Err != nil {
		return nil, o.Err
	}
	if o.Accept != nil && !o.Accept(user, password) {
		return nil, ErrLoginRejected
	}
	if o.Session == nil {
		o.Session = NewSession(nil)
	}
	o.Session.mu.Lock()
	o.Session.user = user
	o.Session.mu.Unlock()
	return o.Session, nil
}

// Calls returns how many times Open was called.
func (o *Opener) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}
