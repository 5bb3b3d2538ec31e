package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ticketdesk/ticket-bot/internal/domain"
)

type sqliteCreatorIndex struct {
	db *sql.DB
}

// NewSQLiteCreatorIndex opens or creates the index database at path.
func NewSQLiteCreatorIndex(path string) (CreatorIndex, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS ticket_channels (
		channel_id   TEXT PRIMARY KEY,
		guild_id     TEXT NOT NULL,
		category_id  TEXT NOT NULL,
		creator_id   TEXT NOT NULL,
		creator_name TEXT NOT NULL,
		name         TEXT NOT NULL,
		number       INTEGER NOT NULL,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ticket_channels_creator ON ticket_channels(guild_id, creator_id);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate index: %w", err)
	}

	return &sqliteCreatorIndex{db: db}, nil
}

func (s *sqliteCreatorIndex) Put(ctx context.Context, record *domain.TicketRecord) error {
	const query = `
	INSERT INTO ticket_channels (channel_id, guild_id, category_id, creator_id, creator_name, name, number, created_at)
	VALUES (?,?,?,?,?,?,?,?)
	ON CONFLICT(channel_id) DO UPDATE SET
		guild_id=excluded.guild_id, category_id=excluded.category_id, creator_id=excluded.creator_id,
		creator_name=excluded.creator_name, name=excluded.name, number=excluded.number, created_at=excluded.created_at`
	_, err := s.db.ExecContext(ctx, query,
		record.ChannelID,
		record.GuildID,
		record.CategoryID,
		record.CreatorID,
		record.CreatorName,
		record.Name,
		record.Number,
		record.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (s *sqliteCreatorIndex) Get(ctx context.Context, channelID string) (*domain.TicketRecord, error) {
	const query = `
	SELECT channel_id, guild_id, category_id, creator_id, creator_name, name, number, created_at
	FROM ticket_channels WHERE channel_id=?`

	var (
		record    domain.TicketRecord
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, channelID).Scan(
		&record.ChannelID,
		&record.GuildID,
		&record.CategoryID,
		&record.CreatorID,
		&record.CreatorName,
		&record.Name,
		&record.Number,
		&createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	record.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &record, nil
}

func (s *sqliteCreatorIndex) Delete(ctx context.Context, channelID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM ticket_channels WHERE channel_id=?`, channelID)
	return err
}

func (s *sqliteCreatorIndex) Close() error {
	return s.db.Close()
}
