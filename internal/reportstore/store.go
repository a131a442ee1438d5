package reportstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/osgrady/radreport/internal/report"
)

// Store archives finished batches and their per-case reports in SQLite.
// Writes are write-through: a batch and its reports land in one transaction.
type Store struct {
	db *sqlx.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS batches (
	batch_id    INTEGER PRIMARY KEY AUTOINCREMENT,
	case_count  INTEGER NOT NULL,
	artifact    TEXT NOT NULL DEFAULT '',
	started_at  TEXT NOT NULL,
	finished_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS reports (
	report_id     INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id      INTEGER NOT NULL,
	position      INTEGER NOT NULL,
	label         TEXT NOT NULL DEFAULT '',
	body          TEXT NOT NULL DEFAULT '',
	impression    TEXT NOT NULL DEFAULT '',
	section_count INTEGER NOT NULL DEFAULT 0,
	degraded      INTEGER NOT NULL DEFAULT 0,
	started_at    TEXT NOT NULL,
	finished_at   TEXT NOT NULL,
	UNIQUE (batch_id, position)
);
`

func New(dbPath string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// BatchRecord is a stored batch row; Reports is populated by GetBatch.
type BatchRecord struct {
	BatchID    int64     `db:"batch_id"`
	CaseCount  int       `db:"case_count"`
	Artifact   string    `db:"artifact"`
	StartedAt  time.Time `db:"-"`
	FinishedAt time.Time `db:"-"`
	Reports    []ReportRecord
}

type ReportRecord struct {
	ReportID     int64  `db:"report_id"`
	BatchID      int64  `db:"batch_id"`
	Position     int    `db:"position"`
	Label        string `db:"label"`
	Body         string `db:"body"`
	Impression   string `db:"impression"`
	SectionCount int    `db:"section_count"`
	Degraded     bool   `db:"degraded"`
}

// SaveBatch persists a batch result and its artifact, returning the new
// batch id. Reports are stored in entry order under their position index.
func (s *Store) SaveBatch(batch report.BatchResult, artifact string) (int64, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO batches (case_count, artifact, started_at, finished_at) VALUES (?, ?, ?, ?)`,
		len(batch.Entries),
		artifact,
		timeToString(batch.StartedAt),
		timeToString(batch.FinishedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("insert batch: %w", err)
	}
	batchID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("batch id: %w", err)
	}

	for i, entry := range batch.Entries {
		rep := entry.Report
		_, err := tx.Exec(`INSERT INTO reports (batch_id, position, label, body, impression, section_count, degraded, started_at, finished_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			batchID,
			i,
			entry.Label,
			rep.Text,
			rep.Impression,
			len(rep.Sections),
			boolToInt(rep.Degraded),
			timeToString(rep.StartedAt),
			timeToString(rep.FinishedAt),
		)
		if err != nil {
			return 0, fmt.Errorf("insert report %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return batchID, nil
}

// GetBatch loads one batch and its reports in stored position order.
// Returns sql.ErrNoRows when the id is unknown.
func (s *Store) GetBatch(batchID int64) (*BatchRecord, error) {
	row := s.db.QueryRow(`SELECT batch_id, case_count, artifact, started_at, finished_at FROM batches WHERE batch_id = ?`, batchID)
	var rec BatchRecord
	var startedAt, finishedAt string
	if err := row.Scan(&rec.BatchID, &rec.CaseCount, &rec.Artifact, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	rec.StartedAt = parseTime(startedAt)
	rec.FinishedAt = parseTime(finishedAt)

	rows, err := s.db.Query(`SELECT report_id, batch_id, position, label, body, impression, section_count, degraded
		FROM reports WHERE batch_id = ? ORDER BY position`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var r ReportRecord
		var degraded int
		if err := rows.Scan(&r.ReportID, &r.BatchID, &r.Position, &r.Label, &r.Body, &r.Impression, &r.SectionCount, &degraded); err != nil {
			return nil, err
		}
		r.Degraded = degraded != 0
		rec.Reports = append(rec.Reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListBatches returns batch rows newest first, without their reports.
func (s *Store) ListBatches(limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT batch_id, case_count, started_at, finished_at FROM batches ORDER BY batch_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BatchRecord
	for rows.Next() {
		var rec BatchRecord
		var startedAt, finishedAt string
		if err := rows.Scan(&rec.BatchID, &rec.CaseCount, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		rec.StartedAt = parseTime(startedAt)
		rec.FinishedAt = parseTime(finishedAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetReport loads a single report by batch id and case label.
func (s *Store) GetReport(batchID int64, label string) (*ReportRecord, error) {
	row := s.db.QueryRow(`SELECT report_id, batch_id, position, label, body, impression, section_count, degraded
		FROM reports WHERE batch_id = ? AND label = ?`, batchID, label)
	var r ReportRecord
	var degraded int
	if err := row.Scan(&r.ReportID, &r.BatchID, &r.Position, &r.Label, &r.Body, &r.Impression, &r.SectionCount, &degraded); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	r.Degraded = degraded != 0
	return &r, nil
}

func timeToString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
