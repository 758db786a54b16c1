// Package search maintains an optional sqlite full-text index over
// transcript entries, so the UI can find sessions by content. It sits on
// top of the reconstruction engine; the engine itself stays pure and
// rebuilds every view from disk.
package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"agentview/internal/logview"
)

type Index struct {
	db         *sql.DB
	ftsEnabled bool
	mu         sync.Mutex
}

// Open opens (or creates) the index database at dbPath.
func Open(dbPath string) (*Index, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open search index: %w", err)
	}
	x := &Index{db: db}
	if err := x.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return x, nil
}

func (x *Index) Close() error {
	return x.db.Close()
}

func (x *Index) initSchema() error {
	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS entries (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file TEXT,
			session_id TEXT,
			kind TEXT,
			tool_name TEXT,
			content TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_file ON entries(file);`,
		`CREATE TABLE IF NOT EXISTS indexed_files (
			path TEXT PRIMARY KEY,
			mtime INTEGER,
			size INTEGER
		);`,
	}
	for _, stmt := range stmts {
		if _, err := x.db.Exec(stmt); err != nil {
			return fmt.Errorf("init search schema: %w", err)
		}
	}
	return x.ensureFTSTable()
}

func (x *Index) ensureFTSTable() error {
	var sqlDef string
	err := x.db.QueryRow(`SELECT sql FROM sqlite_master WHERE name = 'entries_fts'`).Scan(&sqlDef)
	if err == nil {
		lower := strings.ToLower(sqlDef)
		x.ftsEnabled = strings.Contains(lower, "virtual table") && strings.Contains(lower, "fts5")
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("inspect entries_fts table: %w", err)
	}

	_, err = x.db.Exec(`CREATE VIRTUAL TABLE entries_fts USING fts5(
		file UNINDEXED,
		session_id UNINDEXED,
		content
	);`)
	if err == nil {
		x.ftsEnabled = true
		return nil
	}
	if !strings.Contains(strings.ToLower(err.Error()), "no such module: fts5") {
		return fmt.Errorf("create entries_fts: %w", err)
	}

	// Fallback for sqlite builds without FTS5; searches go through LIKE.
	if _, err := x.db.Exec(`CREATE TABLE IF NOT EXISTS entries_fts (
		rowid INTEGER PRIMARY KEY,
		file TEXT,
		session_id TEXT,
		content TEXT
	);`); err != nil {
		return fmt.Errorf("create entries_fts fallback table: %w", err)
	}
	x.ftsEnabled = false
	return nil
}

// Rebuild refreshes the index from the given session files. Unchanged files
// (same mtime and size as last time) are skipped; files gone from disk are
// pruned.
func (x *Index) Rebuild(ctx context.Context, files []logview.SessionFile) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if err := x.pruneMissing(ctx, files); err != nil {
		return err
	}
	for _, file := range files {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := x.ingestFile(ctx, file); err != nil {
			return err
		}
	}
	return nil
}

func (x *Index) ingestFile(ctx context.Context, file logview.SessionFile) error {
	stat, err := os.Stat(file.Path)
	if err != nil {
		// Vanished between listing and ingest; the next Rebuild prunes it.
		return nil
	}
	mtime := stat.ModTime().Unix()
	size := stat.Size()

	var prevMtime, prevSize int64
	err = x.db.QueryRowContext(ctx, `SELECT mtime, size FROM indexed_files WHERE path = ?`, file.Path).
		Scan(&prevMtime, &prevSize)
	if err == nil && prevMtime == mtime && prevSize == size {
		return nil
	}
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read indexed metadata for %s: %w", file.Path, err)
	}

	records := logview.ReadRecords(file.Path)
	sessionID := file.Name
	if summary, ok := logview.Summarize(file.Name, records); ok {
		sessionID = summary.ID
	}
	entries := logview.BuildTranscript(records)

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ingest tx: %w", err)
	}
	defer tx.Rollback()

	if err := deleteFileRows(ctx, tx, file.Path, file.Name); err != nil {
		return err
	}

	insertEntry, err := tx.PrepareContext(ctx, `
		INSERT INTO entries(file, session_id, kind, tool_name, content)
		VALUES(?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare entry insert: %w", err)
	}
	defer insertEntry.Close()

	insertFTS, err := tx.PrepareContext(ctx, `
		INSERT INTO entries_fts(rowid, file, session_id, content)
		VALUES(?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare fts insert: %w", err)
	}
	defer insertFTS.Close()

	for _, entry := range entries {
		if strings.TrimSpace(entry.Content) == "" {
			continue
		}
		res, err := insertEntry.ExecContext(ctx, file.Name, sessionID, entry.Kind, entry.ToolName, entry.Content)
		if err != nil {
			continue
		}
		rowID, err := res.LastInsertId()
		if err != nil {
			continue
		}
		_, _ = insertFTS.ExecContext(ctx, rowID, file.Name, sessionID, entry.Content)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO indexed_files(path, mtime, size)
		VALUES(?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET mtime=excluded.mtime, size=excluded.size
	`, file.Path, mtime, size); err != nil {
		return fmt.Errorf("update indexed metadata: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ingest %s: %w", file.Path, err)
	}
	return nil
}

func (x *Index) pruneMissing(ctx context.Context, files []logview.SessionFile) error {
	keep := make(map[string]string, len(files))
	for _, f := range files {
		keep[f.Path] = f.Name
	}

	rows, err := x.db.QueryContext(ctx, `SELECT path FROM indexed_files`)
	if err != nil {
		return fmt.Errorf("query indexed files: %w", err)
	}
	defer rows.Close()

	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			return fmt.Errorf("scan indexed file row: %w", err)
		}
		if _, ok := keep[path]; !ok {
			stale = append(stale, path)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate indexed files: %w", err)
	}
	if len(stale) == 0 {
		return nil
	}

	tx, err := x.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin prune tx: %w", err)
	}
	defer tx.Rollback()

	for _, path := range stale {
		if err := deleteFileRows(ctx, tx, path, fileNameOf(path)); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM indexed_files WHERE path = ?`, path); err != nil {
			return fmt.Errorf("delete stale metadata for %s: %w", path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit prune: %w", err)
	}
	return nil
}

func deleteFileRows(ctx context.Context, tx *sql.Tx, path, name string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries_fts WHERE rowid IN (SELECT id FROM entries WHERE file = ?)`, name); err != nil {
		return fmt.Errorf("clear stale fts rows for %s: %w", path, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE file = ?`, name); err != nil {
		return fmt.Errorf("clear stale rows for %s: %w", path, err)
	}
	return nil
}

func fileNameOf(path string) string {
	if idx := strings.LastIndexAny(path, `/\`); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
