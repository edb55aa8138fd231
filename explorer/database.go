package explorer

import (
	"crypto/sha256"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/bcrypt"
)

// TimestampLayout is the ISO-8601 form stored in searches.ts.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// Database provides the credential store and search log on top of SQLite.
type Database struct {
	db *sql.DB

	addUserStmt   *sql.Stmt
	logSearchStmt *sql.Stmt

	now func() time.Time
}

// NewDatabase opens (or creates) the SQLite database at dbPath, applies schema
// migrations, and prepares common statements.
func NewDatabase(dbPath string) (*Database, error) {
	// Ensure directory exists so first-run succeeds.
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := applyMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	database := &Database{db: db, now: time.Now}
	if err := database.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return database, nil
}

// Close releases prepared statements and closes the DB.
func (d *Database) Close() error {
	if d.addUserStmt != nil {
		d.addUserStmt.Close()
	}
	if d.logSearchStmt != nil {
		d.logSearchStmt.Close()
	}
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const schemaVersion = 1

// applyMigrations creates the tables on first run. Databases written by the
// legacy app already carry users and searches but no meta table; the
// IF NOT EXISTS forms leave their rows alone.
func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return fmt.Errorf("create meta: %w", err)
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= schemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
            username TEXT PRIMARY KEY,
            password TEXT
        );`,
		`CREATE TABLE IF NOT EXISTS searches (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            username TEXT,
            query TEXT,
            result_count INTEGER,
            ts TEXT
        );`,
		`CREATE INDEX IF NOT EXISTS idx_searches_username ON searches(username, id);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
        ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Prepared statements
// ---------------------------------------------------------------------------

func (d *Database) prepareStatements() error {
	var err error
	if d.addUserStmt, err = d.db.Prepare(`INSERT INTO users(username,password) VALUES(?,?)`); err != nil {
		return err
	}
	if d.logSearchStmt, err = d.db.Prepare(`INSERT INTO searches(username,query,result_count,ts) VALUES(?,?,?,?)`); err != nil {
		return err
	}
	return nil
}

// ---------------------------------------------------------------------------
// Credential store
// ---------------------------------------------------------------------------

// AddUser registers username with a bcrypt hash of password. It returns
// ErrUserExists when the username is already taken.
func (d *Database) AddUser(username, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	if _, err := d.addUserStmt.Exec(username, hash); err != nil {
		if isConstraintError(err) {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// Authenticate reports whether password matches the secret stored for
// username. The error is reserved for storage failures.
func (d *Database) Authenticate(username, password string) (bool, error) {
	stored, err := d.storedSecret(username)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	// A NULL secret matches nothing, not even the empty password.
	if !stored.Valid {
		return false, nil
	}

	if isHashed(stored.String) {
		return bcrypt.CompareHashAndPassword([]byte(stored.String), passwordKey(password)) == nil, nil
	}

	// Legacy row: verbatim secret. Upgrade it once it has been proven.
	if subtle.ConstantTimeCompare([]byte(stored.String), []byte(password)) != 1 {
		return false, nil
	}
	if err := d.replaceSecret(username, stored.String, password); err != nil {
		return false, fmt.Errorf("upgrade legacy password: %w", err)
	}
	return true, nil
}

// PlaintextUsernames lists accounts whose stored secret is not yet hashed.
// Accounts without any secret are skipped; there is nothing to hash.
func (d *Database) PlaintextUsernames() ([]string, error) {
	rows, err := d.db.Query(`SELECT username, password FROM users WHERE password IS NOT NULL ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name, stored string
		if err := rows.Scan(&name, &stored); err != nil {
			return nil, err
		}
		if !isHashed(stored) {
			names = append(names, name)
		}
	}
	return names, rows.Err()
}

// RehashPassword replaces a plaintext secret with its bcrypt hash. Rows that
// are already hashed are left untouched.
func (d *Database) RehashPassword(username string) error {
	stored, err := d.storedSecret(username)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("user %q does not exist", username)
	}
	if err != nil {
		return err
	}
	if !stored.Valid {
		return fmt.Errorf("user %q has no password", username)
	}
	if isHashed(stored.String) {
		return nil
	}
	return d.replaceSecret(username, stored.String, stored.String)
}

func (d *Database) storedSecret(username string) (sql.NullString, error) {
	var stored sql.NullString
	err := d.db.QueryRow(`SELECT password FROM users WHERE username=?`, username).Scan(&stored)
	return stored, err
}

// replaceSecret hashes password and stores it, provided the row still holds old.
func (d *Database) replaceSecret(username, old, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	_, err = d.db.Exec(`UPDATE users SET password=? WHERE username=? AND password=?`, hash, username, old)
	return err
}

// passwordKey condenses password to a fixed 44 bytes so that bcrypt, which
// rejects input over 72 bytes, sees every byte of long passwords.
func passwordKey(password string) []byte {
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword(passwordKey(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func isHashed(stored string) bool {
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

func isConstraintError(err error) bool {
	var se sqlite3.Error
	return errors.As(err, &se) && se.Code == sqlite3.ErrConstraint
}

// ---------------------------------------------------------------------------
// Search log
// ---------------------------------------------------------------------------

// RecordSearch appends a search log entry stamped with the current time and
// returns its id.
func (d *Database) RecordSearch(username, query string, resultCount int) (int64, error) {
	ts := d.now().Format(TimestampLayout)
	res, err := d.logSearchStmt.Exec(username, query, resultCount, ts)
	if err != nil {
		return 0, fmt.Errorf("log search: %w", err)
	}
	return res.LastInsertId()
}

// RecentSearches returns up to limit entries for username, newest first.
func (d *Database) RecentSearches(username string, limit int) ([]*SearchLogEntry, error) {
	entries := []*SearchLogEntry{}
	if limit <= 0 {
		return entries, nil
	}

	rows, err := d.db.Query(`
        SELECT id, username, query, COALESCE(result_count,0), COALESCE(ts,'')
        FROM searches
        WHERE username=?
        ORDER BY id DESC
        LIMIT ?`, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var e SearchLogEntry
		if err := rows.Scan(&e.ID, &e.Username, &e.Query, &e.ResultCount, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
