// Package archive keeps a SQLite index of generated plots.
//
// Every plot the CLI or server writes is recorded with its seed, the
// options that produced it and a summary of the result, so a piece can be
// found and regenerated later:
//
//	a, err := archive.Open(path)
//	if err != nil {
//	    return err
//	}
//	defer a.Close()
//	entry, err := a.Record(ctx, archive.Entry{Seed: seed, Params: params})
package archive

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/gre/shattered/pkg/errors"
)

// Entry is one archived plot.
type Entry struct {
	ID        string          `json:"id"`
	Seed      string          `json:"seed"`
	Palette   string          `json:"palette,omitempty"`
	Width     float64         `json:"width"`
	Height    float64         `json:"height"`
	MaxDepth  int             `json:"max_depth"`
	Attempts  int             `json:"attempts"`
	Leaves    int             `json:"leaves"`
	Routes    int             `json:"routes"`
	Dark      bool            `json:"dark"`
	PlotHash  string          `json:"plot_hash,omitempty"`
	Output    string          `json:"output,omitempty"` // file written, if any
	Params    json.RawMessage `json:"params,omitempty"` // options that regenerate the plot
	CreatedAt time.Time       `json:"created_at"`
}

// ListOptions filters [Archive.List].
type ListOptions struct {
	// Seed restricts results to seeds starting with this prefix.
	Seed string
	// Limit caps the number of entries; 0 means 50.
	Limit int
}

// Archive is a SQLite-backed plot index. It is safe for concurrent use.
type Archive struct {
	db *sql.DB
}

// Open opens or creates the archive database at path.
func Open(path string) (*Archive, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeArchive, "empty archive path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "create archive directory")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "open %s", path)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "configure %s", path)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "migrate %s", path)
	}
	return &Archive{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS plots (
			id TEXT PRIMARY KEY,
			seed TEXT NOT NULL,
			palette TEXT NOT NULL DEFAULT '',
			width REAL NOT NULL,
			height REAL NOT NULL,
			max_depth INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			leaves INTEGER NOT NULL,
			routes INTEGER NOT NULL,
			dark INTEGER NOT NULL,
			plot_hash TEXT NOT NULL DEFAULT '',
			output TEXT NOT NULL DEFAULT '',
			params TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS plots_seed ON plots(seed);`,
		`CREATE INDEX IF NOT EXISTS plots_created ON plots(created_at);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Record stores e, assigning an ID and timestamp when missing, and returns
// the stored entry.
func (a *Archive) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.Seed == "" {
		return Entry{}, errors.New(errors.ErrCodeInvalidInput, "archive entry has no seed")
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC().Truncate(time.Millisecond)

	_, err := a.db.ExecContext(ctx, `INSERT INTO plots
		(id, seed, palette, width, height, max_depth, attempts, leaves, routes, dark, plot_hash, output, params, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Seed, e.Palette, e.Width, e.Height, e.MaxDepth, e.Attempts, e.Leaves, e.Routes,
		boolInt(e.Dark), e.PlotHash, e.Output, string(e.Params), e.CreatedAt.UnixMilli())
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeArchive, err, "record %s", e.Seed)
	}
	return e, nil
}

const selectColumns = `SELECT id, seed, palette, width, height, max_depth, attempts, leaves, routes, dark, plot_hash, output, params, created_at FROM plots`

// Get returns the entry with the given ID. A unique ID prefix of at least
// 8 characters also matches.
func (a *Archive) Get(ctx context.Context, id string) (Entry, error) {
	if len(id) < 8 {
		return Entry{}, errors.New(errors.ErrCodeInvalidInput, "archive id %q is too short", id)
	}
	rows, err := a.db.QueryContext(ctx, selectColumns+` WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return Entry{}, errors.Wrap(errors.ErrCodeArchive, err, "query %s", id)
	}
	entries, err := scanEntries(rows)
	if err != nil {
		return Entry{}, err
	}
	switch len(entries) {
	case 0:
		return Entry{}, errors.New(errors.ErrCodeNotFound, "no archived plot %s", id)
	case 1:
		return entries[0], nil
	default:
		return Entry{}, errors.New(errors.ErrCodeInvalidInput, "archive id %s is ambiguous", id)
	}
}

// List returns entries, newest first.
func (a *Archive) List(ctx context.Context, opts ListOptions) ([]Entry, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	query := selectColumns
	var args []any
	if opts.Seed != "" {
		query += ` WHERE seed LIKE ? ESCAPE '\'`
		args = append(args, escapeLike(opts.Seed)+"%")
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "list plots")
	}
	return scanEntries(rows)
}

// Delete removes the entry with the given ID.
func (a *Archive) Delete(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM plots WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(errors.ErrCodeArchive, err, "delete %s", id)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.New(errors.ErrCodeNotFound, "no archived plot %s", id)
	}
	return nil
}

// Count returns the number of archived plots.
func (a *Archive) Count(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plots`).Scan(&n); err != nil {
		return 0, errors.Wrap(errors.ErrCodeArchive, err, "count plots")
	}
	return n, nil
}

// Close closes the database.
func (a *Archive) Close() error {
	return a.db.Close()
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			dark    int
			params  string
			created int64
		)
		if err := rows.Scan(&e.ID, &e.Seed, &e.Palette, &e.Width, &e.Height, &e.MaxDepth, &e.Attempts,
			&e.Leaves, &e.Routes, &dark, &e.PlotHash, &e.Output, &params, &created); err != nil {
			return nil, errors.Wrap(errors.ErrCodeArchive, err, "scan plot")
		}
		e.Dark = dark != 0
		if params != "" {
			e.Params = json.RawMessage(params)
		}
		e.CreatedAt = time.UnixMilli(created).UTC()
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeArchive, err, "read plots")
	}
	return out, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

// String implements fmt.Stringer for log output.
func (e Entry) String() string {
	return fmt.Sprintf("%s %s (%d leaves)", shortID(e.ID), e.Seed, e.Leaves)
}

// ShortID returns the first 8 characters of the entry ID.
func (e Entry) ShortID() string { return shortID(e.ID) }

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
