package data

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/devricklin/discord-casual-bot/internal/biz/domain"
	"github.com/devricklin/discord-casual-bot/internal/biz/repo"

	_ "modernc.org/sqlite"
)

// transcriptRepo implements the transcript archive
type transcriptRepo struct {
	db *sql.DB
}

// NewTranscriptRepo creates a new transcript repository
func NewTranscriptRepo(dbPath string) (repo.TranscriptRepo, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS transcript (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			channel_id TEXT NOT NULL,
			turn_id TEXT NOT NULL DEFAULT '',
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_transcript_channel ON transcript(channel_id, created_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &transcriptRepo{db: db}, nil
}

// Record archives a turn
func (r *transcriptRepo) Record(ctx context.Context, channelID, turnID string, turn domain.Turn) error {
	createdAt := turn.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transcript (channel_id, turn_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, channelID, turnID, string(turn.Role), turn.Content, createdAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert transcript: %w", err)
	}
	return nil
}

// ListByChannel lists the most recent archived turns of a channel, oldest first
func (r *transcriptRepo) ListByChannel(ctx context.Context, channelID string, limit int) ([]*repo.TranscriptEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, channel_id, turn_id, role, content, created_at FROM (
			SELECT id, channel_id, turn_id, role, content, created_at
			FROM transcript
			WHERE channel_id = ?
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC
	`, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transcript: %w", err)
	}
	defer rows.Close()

	var entries []*repo.TranscriptEntry
	for rows.Next() {
		var e repo.TranscriptEntry
		var role string
		var createdAt int64
		if err := rows.Scan(&e.ID, &e.ChannelID, &e.TurnID, &role, &e.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		e.Role = domain.Role(role)
		e.CreatedAt = time.UnixMilli(createdAt)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// CleanupOld deletes turns archived before the given time
func (r *transcriptRepo) CleanupOld(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM transcript WHERE created_at < ?
	`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("cleanup transcript: %w", err)
	}
	return result.RowsAffected()
}

// Close closes the database
func (r *transcriptRepo) Close() error {
	return r.db.Close()
}
