package state

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/teamcutter/patches/internal/domain"
	"github.com/teamcutter/patches/internal/log"
)

const schema = `
CREATE TABLE IF NOT EXISTS detections (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    name       TEXT NOT NULL,
    version    TEXT NOT NULL,
    strategy   TEXT NOT NULL DEFAULT '',
    installed  INTEGER NOT NULL DEFAULT 0,
    error      TEXT NOT NULL DEFAULT '',
    checked_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS detections_name ON detections (name);
`

type SQLiteHistory struct {
	mu       sync.RWMutex
	db       *sql.DB
	dbPath   string
	jsonPath string
}

// NewSQLite opens the history database at dbPath. If the database is empty
// and a JSON history exists at jsonPath, its detections are imported and the
// file is renamed to jsonPath + ".bak".
func NewSQLite(dbPath, jsonPath string) (*SQLiteHistory, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	s := &SQLiteHistory{
		db:       db,
		dbPath:   dbPath,
		jsonPath: jsonPath,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteHistory) migrate() error {
	if s.jsonPath == "" {
		return nil
	}

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM detections").Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := os.Stat(s.jsonPath); os.IsNotExist(err) {
		return nil
	}

	j, err := readJournal(s.jsonPath)
	if err != nil {
		return fmt.Errorf("failed to read json history: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, d := range j.Detections {
		if err := insertDetection(tx, d); err != nil {
			return fmt.Errorf("failed to insert %s: %w", d.Package, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	backupPath := s.jsonPath + ".bak"
	if err := os.Rename(s.jsonPath, backupPath); err != nil {
		log.Warn("failed to back up json history", "path", s.jsonPath, "err", err)
	}

	log.Debug("imported json history", "count", len(j.Detections), "from", s.jsonPath)
	return nil
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertDetection(e execer, d domain.Detection) error {
	_, err := e.Exec(`
		INSERT INTO detections (name, version, strategy, installed, error, checked_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.Package.Name(), d.Package.Version().String(), d.Strategy,
		boolToInt(d.Installed), d.Error, d.CheckedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteHistory) Record(d domain.Detection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insertDetection(s.db, d)
}

func (s *SQLiteHistory) List(name string, limit int) ([]domain.Detection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT name, version, strategy, installed, error, checked_at FROM detections`
	var args []any
	if name != "" {
		query += ` WHERE name = ?`
		args = append(args, name)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Detection
	for rows.Next() {
		var d domain.Detection
		var pkgName, version, checkedAt string
		var installed int

		if err := rows.Scan(&pkgName, &version, &d.Strategy, &installed, &d.Error, &checkedAt); err != nil {
			return nil, err
		}

		d.Package, err = domain.ParsePackage(pkgName, version)
		if err != nil {
			return nil, fmt.Errorf("corrupt history row for %s: %w", pkgName, err)
		}
		d.Installed = installed == 1
		d.CheckedAt, err = time.Parse(time.RFC3339Nano, checkedAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt history row for %s: %w", pkgName, err)
		}

		out = append(out, d)
	}

	return out, rows.Err()
}

func (s *SQLiteHistory) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM detections")
	return err
}

func (s *SQLiteHistory) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
