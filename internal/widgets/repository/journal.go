package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"widget-board/internal/widgets/models"

	"github.com/google/uuid"
)

// ============================================================
// SQLite Change Journal
// ============================================================

// Journal дописывает зафиксированные изменения доски в SQLite. Это только
// журнал аудита: доска живёт в памяти и из журнала не восстанавливается.
type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

// Init применяет миграцию схемы.
func (j *Journal) Init(ctx context.Context, migrationsPath string) error {
	data, err := os.ReadFile(migrationsPath)
	if err != nil {
		return fmt.Errorf("read migration: %w", err)
	}
	if _, err := j.db.ExecContext(ctx, string(data)); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// Append пишет события одной транзакцией в переданном порядке.
func (j *Journal) Append(ctx context.Context, events ...models.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin journal tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
        INSERT INTO widget_events (kind, widget_id, z_index, occurred_at)
        VALUES (?, ?, ?, ?)
    `)
	if err != nil {
		return fmt.Errorf("prepare journal insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, string(e.Kind), e.WidgetID.String(), e.ZIndex, e.OccurredAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("insert journal event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit journal tx: %w", err)
	}
	return nil
}

// Recent возвращает до limit событий, новые первыми.
func (j *Journal) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	rows, err := j.db.QueryContext(ctx, `
        SELECT seq, kind, widget_id, z_index, occurred_at
        FROM widget_events
        ORDER BY seq DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var (
			e          models.Event
			kind       string
			widgetID   string
			occurredAt string
		)
		if err := rows.Scan(&e.Seq, &kind, &widgetID, &e.ZIndex, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan journal row: %w", err)
		}
		e.Kind = models.EventKind(kind)
		if e.WidgetID, err = uuid.Parse(widgetID); err != nil {
			return nil, fmt.Errorf("parse widget id %q: %w", widgetID, err)
		}
		if e.OccurredAt, err = time.Parse(time.RFC3339Nano, occurredAt); err != nil {
			return nil, fmt.Errorf("parse occurred_at %q: %w", occurredAt, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// OpenSQLite открывает sqlite журнала по указанному пути, создавая каталог.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
