// Package database provides the snapshot store for topoview.
//
// A snapshot freezes one file load: the table tabs with their column
// schema, every record with all of its attributes, and the flattened tree
// rows. It implements the Store interface using SQLite; the DBService
// struct is the primary entry point.
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Mr-Dark-debug/topoview/pkg/jsonutil"
	"github.com/Mr-Dark-debug/topoview/pkg/timeutil"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNotFound is returned when a snapshot id does not exist.
var ErrNotFound = errors.New("snapshot not found")

// Store defines snapshot persistence.
type Store interface {
	// SaveSnapshot writes s in one transaction and returns its id.
	SaveSnapshot(s *Snapshot) (int64, error)
	// ListSnapshots returns all snapshots, newest first.
	ListSnapshots() ([]SnapshotInfo, error)
	// LatestSnapshot returns the id of the newest snapshot.
	LatestSnapshot() (int64, error)
	// ListTables returns the table tabs of a snapshot in menu order.
	ListTables(snapshotID int64) ([]TableInfo, error)
	// QueryRecords returns the records of one type in document order.
	QueryRecords(snapshotID int64, recordType string) ([]*Record, error)
	// QueryTreeRows returns the tree rows in depth-first order.
	QueryTreeRows(snapshotID int64) ([]*TreeRow, error)
	// Close shuts down the database connection.
	Close() error
}

// ============================================================
// DBService Implementation
// ============================================================

// DBService implements Store using SQLite.
type DBService struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string

	stmtInsertSnapshot *sql.Stmt
	stmtInsertTable    *sql.Stmt
	stmtInsertRecord   *sql.Stmt
	stmtInsertValue    *sql.Stmt
	stmtInsertTreeRow  *sql.Stmt
}

// NewDBService opens the database at path, initializes the schema and
// prepares statements. Use ":memory:" for tests.
func NewDBService(path string) (*DBService, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// One connection keeps ":memory:" a single database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{db: db, path: path}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	if err := svc.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}
	return svc, nil
}

func (s *DBService) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	return nil
}

func (s *DBService) prepareStatements() error {
	var err error

	s.stmtInsertSnapshot, err = s.db.Prepare(`
		INSERT INTO snapshots (uid, source, created_at, element_count) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertSnapshot: %w", err)
	}

	s.stmtInsertTable, err = s.db.Prepare(`
		INSERT INTO table_columns (snapshot_id, record_type, label, tab_order, columns_json, record_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertTable: %w", err)
	}

	s.stmtInsertRecord, err = s.db.Prepare(`
		INSERT INTO records (snapshot_id, record_type, position) VALUES (?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertRecord: %w", err)
	}

	s.stmtInsertValue, err = s.db.Prepare(`
		INSERT INTO record_values (record_id, ord, name, value) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertValue: %w", err)
	}

	s.stmtInsertTreeRow, err = s.db.Prepare(`
		INSERT INTO tree_rows (snapshot_id, ord, row_id, parent_id, kind, key, label, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertTreeRow: %w", err)
	}
	return nil
}

// SaveSnapshot writes the snapshot, its tables, records and tree rows in a
// single transaction.
func (s *DBService) SaveSnapshot(snap *Snapshot) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning snapshot transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if snap.UID == "" {
		snap.UID = uuid.NewString()
	}
	res, err := tx.Stmt(s.stmtInsertSnapshot).Exec(
		snap.UID, snap.Source, timeutil.FormatTimestamp(snap.CreatedAt), snap.Elements,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting snapshot for %s: %w", snap.Source, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading snapshot id: %w", err)
	}

	insertTable := tx.Stmt(s.stmtInsertTable)
	insertRecord := tx.Stmt(s.stmtInsertRecord)
	insertValue := tx.Stmt(s.stmtInsertValue)
	for i, t := range snap.Tables {
		if _, err := insertTable.Exec(id, t.Type, t.Label, i, jsonutil.MarshalStrings(t.Columns), len(t.Records)); err != nil {
			return 0, fmt.Errorf("inserting table %s: %w", t.Type, err)
		}
		for pos, r := range t.Records {
			res, err := insertRecord.Exec(id, t.Type, pos)
			if err != nil {
				return 0, fmt.Errorf("inserting %s record %d: %w", t.Type, pos, err)
			}
			recID, err := res.LastInsertId()
			if err != nil {
				return 0, fmt.Errorf("reading record id: %w", err)
			}
			for ord, a := range r.Attrs {
				if _, err := insertValue.Exec(recID, ord, a.Name, a.Value); err != nil {
					return 0, fmt.Errorf("inserting value %s of %s record %d: %w", a.Name, t.Type, pos, err)
				}
			}
		}
	}

	insertRow := tx.Stmt(s.stmtInsertTreeRow)
	for ord, r := range snap.TreeRows {
		var parent *string
		if r.ParentID != "" {
			p := r.ParentID
			parent = &p
		}
		if _, err := insertRow.Exec(id, ord, r.ID, parent, r.Kind, r.Key, r.Label, r.Detail); err != nil {
			return 0, fmt.Errorf("inserting tree row %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing snapshot transaction: %w", err)
	}
	return id, nil
}

// ListSnapshots returns every snapshot, newest first.
func (s *DBService) ListSnapshots() ([]SnapshotInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT snapshot_id, uid, source, created_at, element_count
		FROM snapshots
		ORDER BY snapshot_id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		var created string
		if err := rows.Scan(&info.ID, &info.UID, &info.Source, &created, &info.Elements); err != nil {
			return nil, fmt.Errorf("scanning snapshot row: %w", err)
		}
		if info.CreatedAt, err = timeutil.ParseTimestamp(created); err != nil {
			return nil, fmt.Errorf("parsing snapshot %d timestamp: %w", info.ID, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// LatestSnapshot returns the newest snapshot id or ErrNotFound.
func (s *DBService) LatestSnapshot() (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var id sql.NullInt64
	if err := s.db.QueryRow(`SELECT MAX(snapshot_id) FROM snapshots`).Scan(&id); err != nil {
		return 0, fmt.Errorf("querying latest snapshot: %w", err)
	}
	if !id.Valid {
		return 0, ErrNotFound
	}
	return id.Int64, nil
}

// ListTables returns the table tabs of a snapshot in menu order.
func (s *DBService) ListTables(snapshotID int64) ([]TableInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkSnapshot(snapshotID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT record_type, label, columns_json, record_count
		FROM table_columns
		WHERE snapshot_id = ?
		ORDER BY tab_order ASC
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("querying tables of snapshot %d: %w", snapshotID, err)
	}
	defer rows.Close()

	var out []TableInfo
	for rows.Next() {
		var t TableInfo
		var cols string
		if err := rows.Scan(&t.Type, &t.Label, &cols, &t.Records); err != nil {
			return nil, fmt.Errorf("scanning table row: %w", err)
		}
		if t.Columns, err = jsonutil.UnmarshalStrings(cols); err != nil {
			return nil, fmt.Errorf("columns of %s: %w", t.Type, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// QueryRecords returns the records of one type with all attributes in
// source order.
func (s *DBService) QueryRecords(snapshotID int64, recordType string) ([]*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkSnapshot(snapshotID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT r.record_id, r.position, v.name, v.value
		FROM records r
		LEFT JOIN record_values v ON v.record_id = r.record_id
		WHERE r.snapshot_id = ? AND r.record_type = ?
		ORDER BY r.position ASC, v.ord ASC
	`, snapshotID, recordType)
	if err != nil {
		return nil, fmt.Errorf("querying %s records of snapshot %d: %w", recordType, snapshotID, err)
	}
	defer rows.Close()

	var out []*Record
	var current *Record
	var currentID int64 = -1
	for rows.Next() {
		var recID int64
		var pos int
		var name, value sql.NullString
		if err := rows.Scan(&recID, &pos, &name, &value); err != nil {
			return nil, fmt.Errorf("scanning record row: %w", err)
		}
		if recID != currentID {
			current = &Record{Type: recordType, Position: pos}
			out = append(out, current)
			currentID = recID
		}
		if name.Valid {
			current.Attrs = append(current.Attrs, Attr{Name: name.String, Value: value.String})
		}
	}
	return out, rows.Err()
}

// QueryTreeRows returns the tree rows of a snapshot in stored order.
func (s *DBService) QueryTreeRows(snapshotID int64) ([]*TreeRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.checkSnapshot(snapshotID); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(`
		SELECT row_id, parent_id, kind, key, label, detail
		FROM tree_rows
		WHERE snapshot_id = ?
		ORDER BY ord ASC
	`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("querying tree rows of snapshot %d: %w", snapshotID, err)
	}
	defer rows.Close()

	var out []*TreeRow
	for rows.Next() {
		r := &TreeRow{}
		var parent sql.NullString
		if err := rows.Scan(&r.ID, &parent, &r.Kind, &r.Key, &r.Label, &r.Detail); err != nil {
			return nil, fmt.Errorf("scanning tree row: %w", err)
		}
		r.ParentID = parent.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *DBService) checkSnapshot(id int64) error {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM snapshots WHERE snapshot_id = ?`, id).Scan(&n); err != nil {
		return fmt.Errorf("looking up snapshot %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

// Close closes the prepared statements and the connection.
func (s *DBService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmts := []*sql.Stmt{
		s.stmtInsertSnapshot, s.stmtInsertTable, s.stmtInsertRecord,
		s.stmtInsertValue, s.stmtInsertTreeRow,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}
