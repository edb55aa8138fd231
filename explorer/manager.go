package explorer

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultHistoryLimit is how many recent searches the search screen shows.
const DefaultHistoryLimit = 8

// Catalog is the book search backend used by Explorer.
type Catalog interface {
	Search(ctx context.Context, query string, maxResults int) ([]BookRecord, error)
}

// Explorer is a thin façade over the Database and the catalog, keeping CLI
// code simple. Every identity-bearing call takes an explicit *Session.
type Explorer struct {
	db      *Database
	catalog Catalog
	log     *logrus.Logger
	now     func() time.Time
}

// NewExplorer opens (or creates) the SQLite database at cfg.DBPath and wires
// a catalog client built from cfg.
func NewExplorer(cfg *Config, log *logrus.Logger) (*Explorer, error) {
	db, err := NewDatabase(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return newExplorer(db, NewCatalogClient(cfg, log), log), nil
}

func newExplorer(db *Database, catalog Catalog, log *logrus.Logger) *Explorer {
	return &Explorer{db: db, catalog: catalog, log: log, now: time.Now}
}

// Close closes the underlying database.
func (e *Explorer) Close() error { return e.db.Close() }

// ------------------ Accounts ------------------

// Register creates an account. Blank usernames or passwords are rejected.
func (e *Explorer) Register(username, password string) error {
	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return ErrEmptyCredentials
	}
	if err := e.db.AddUser(username, password); err != nil {
		return err
	}
	e.log.WithField("user", username).Info("account created")
	return nil
}

// Login verifies the credentials and opens a session.
func (e *Explorer) Login(username, password string) (*Session, error) {
	ok, err := e.db.Authenticate(username, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		e.log.WithField("user", username).Info("login rejected")
		return nil, ErrInvalidCredentials
	}
	e.log.WithField("user", username).Info("logged in")
	return &Session{Username: username, StartedAt: e.now()}, nil
}

// Logout ends s. Using it afterwards yields ErrNotLoggedIn.
func (e *Explorer) Logout(s *Session) {
	if !s.Active() {
		return
	}
	s.closed = true
	e.log.WithField("user", s.Username).Info("logged out")
}

// ------------------ Search ------------------

// Search runs query against the catalog and logs it under the session user
// with the number of results returned. Catalog failures show up as zero
// results; malformed responses abort without logging.
func (e *Explorer) Search(ctx context.Context, s *Session, query string, maxResults int) ([]BookRecord, error) {
	if !s.Active() {
		return nil, ErrNotLoggedIn
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	results, err := e.catalog.Search(ctx, query, ClampResults(maxResults))
	if err != nil {
		return nil, err
	}
	if _, err := e.db.RecordSearch(s.Username, query, len(results)); err != nil {
		return nil, err
	}
	return results, nil
}

// History returns up to limit of the session user's searches, newest first.
func (e *Explorer) History(s *Session, limit int) ([]*SearchLogEntry, error) {
	if !s.Active() {
		return nil, ErrNotLoggedIn
	}
	return e.db.RecentSearches(s.Username, limit)
}
