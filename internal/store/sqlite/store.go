// Package sqlite persists fetched daily OHLCV history so analysis runs
// can replay price data without refetching the exchange.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"finpanel/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Store is a single-writer SQLite store for daily price rows.
type Store struct {
	db *sql.DB
}

// DB returns the underlying sql.DB for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// Open opens (creating if needed) the price database with WAL mode and the
// schema in place.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	slog.Info("opened price database", "path", dbPath)
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS prices (
			stock_id TEXT    NOT NULL,
			date     INTEGER NOT NULL,
			open     REAL    NOT NULL,
			high     REAL    NOT NULL,
			low      REAL    NOT NULL,
			close    REAL    NOT NULL,
			volume   REAL,
			PRIMARY KEY (stock_id, date)
		);
	`)
	return err
}

// WriteRows upserts price rows in one transaction.
func (s *Store) WriteRows(rows []model.Row) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite begin: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO prices (stock_id, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.StockID, r.Date.Unix(), r.Open, r.High, r.Low, r.Close, r.Volume); err != nil {
			tx.Rollback()
			return fmt.Errorf("sqlite insert %s/%s: %w", r.StockID, r.Date.Format("2006-01-02"), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite commit: %w", err)
	}
	return nil
}

// ReadPanel loads price history for the given stocks and date range,
// ordered by (stock, date) so the result satisfies the Panel contract.
// Stocks with no rows simply contribute no group.
func (s *Store) ReadPanel(stockIDs []string, start, end time.Time) (*model.Panel, error) {
	var rows []model.Row
	for _, id := range stockIDs {
		rs, err := s.db.Query(`
			SELECT stock_id, date, open, high, low, close, volume
			FROM prices
			WHERE stock_id = ? AND date >= ? AND date <= ?
			ORDER BY date ASC
		`, id, start.Unix(), end.Unix())
		if err != nil {
			return nil, fmt.Errorf("sqlite query prices: %w", err)
		}
		for rs.Next() {
			var r model.Row
			var dateUnix int64
			var volume sql.NullFloat64
			if err := rs.Scan(&r.StockID, &dateUnix, &r.Open, &r.High, &r.Low, &r.Close, &volume); err != nil {
				rs.Close()
				return nil, fmt.Errorf("sqlite scan prices: %w", err)
			}
			r.Date = time.Unix(dateUnix, 0).UTC()
			if volume.Valid {
				r.Volume = volume.Float64
			}
			rows = append(rows, r)
		}
		if err := rs.Err(); err != nil {
			rs.Close()
			return nil, err
		}
		rs.Close()
	}
	return model.NewPanel(rows)
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
