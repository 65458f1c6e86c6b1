package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/houseboard/internal/model"
)

// FetchLogStore records upstream catalog fetches for diagnostics.
type FetchLogStore struct {
	db *sql.DB
}

func NewFetchLogStore(db *sql.DB) *FetchLogStore {
	return &FetchLogStore{db: db}
}

func scanFetchRecord(scanner interface{ Scan(...any) error }) (*model.FetchRecord, error) {
	var r model.FetchRecord
	var status string
	err := scanner.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &status, &r.HouseCount, &r.Error)
	if err != nil {
		return nil, err
	}
	r.Status = model.FetchStatus(status)
	return &r, nil
}

const fetchCols = `id, started_at, finished_at, status, house_count, error`

func (s *FetchLogStore) Record(r model.FetchRecord) (*model.FetchRecord, error) {
	res, err := s.db.Exec(
		`INSERT INTO fetch_log (started_at, finished_at, status, house_count, error) VALUES (?, ?, ?, ?, ?)`,
		r.StartedAt.UTC(), r.FinishedAt.UTC(), string(r.Status), r.HouseCount, r.Error,
	)
	if err != nil {
		return nil, fmt.Errorf("insert fetch record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	r.ID = id
	return &r, nil
}

// Recent returns up to limit records, newest first.
func (s *FetchLogStore) Recent(limit int) ([]model.FetchRecord, error) {
	rows, err := s.db.Query(`SELECT `+fetchCols+` FROM fetch_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list fetch records: %w", err)
	}
	defer rows.Close()

	var records []model.FetchRecord
	for rows.Next() {
		r, err := scanFetchRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan fetch record: %w", err)
		}
		records = append(records, *r)
	}
	return records, rows.Err()
}
