package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/hearth/internal/model"
)

// SourceStore persists the calendar source registry. The refresh cycle
// reads a snapshot of it via List at the start of each pass.
type SourceStore struct {
	db *sql.DB
}

func NewSourceStore(db *sql.DB) *SourceStore {
	return &SourceStore{db: db}
}

func (s *SourceStore) Create(name, feedURL, color string) (*model.CalendarSource, error) {
	result, err := s.db.Exec(
		`INSERT INTO calendar_sources (name, feed_url, color) VALUES (?, ?, ?)`,
		name, feedURL, color,
	)
	if err != nil {
		return nil, fmt.Errorf("insert calendar source: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(id)
}

func (s *SourceStore) GetByID(id int64) (*model.CalendarSource, error) {
	var src model.CalendarSource
	err := s.db.QueryRow(
		`SELECT id, name, feed_url, color, created_at, updated_at
		 FROM calendar_sources WHERE id = ?`,
		id,
	).Scan(&src.ID, &src.Name, &src.FeedURL, &src.Color, &src.CreatedAt, &src.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query calendar source: %w", err)
	}
	return &src, nil
}

func (s *SourceStore) List() ([]model.CalendarSource, error) {
	rows, err := s.db.Query(
		`SELECT id, name, feed_url, color, created_at, updated_at
		 FROM calendar_sources ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query calendar sources: %w", err)
	}
	defer rows.Close()

	var sources []model.CalendarSource
	for rows.Next() {
		var src model.CalendarSource
		if err := rows.Scan(&src.ID, &src.Name, &src.FeedURL, &src.Color, &src.CreatedAt, &src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan calendar source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

func (s *SourceStore) Update(id int64, name, feedURL, color string) (*model.CalendarSource, error) {
	_, err := s.db.Exec(
		`UPDATE calendar_sources
		 SET name = ?, feed_url = ?, color = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, feedURL, color, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update calendar source: %w", err)
	}
	return s.GetByID(id)
}

func (s *SourceStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM calendar_sources WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete calendar source: %w", err)
	}
	return nil
}
