package storage

import (
	"database/sql"
	"fmt"
	"time"

	"volatility-scanner/src/logger"
	"volatility-scanner/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type SQLiteRankingStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteRankingStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteRankingStore, error) {
	return &SQLiteRankingStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *SQLiteRankingStore) Initialize() error {
	db, err := sql.Open("sqlite", d.Config.Storage.DBPath)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS instrument_rankings (
			symbol TEXT,
			quote_volume REAL,
			rank INTEGER,
			fetched_at INTEGER,
			PRIMARY KEY (symbol, fetched_at)
		);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create instrument_rankings: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

// SaveRanking replaces the stored snapshot with the given entries in one
// transaction.
func (d *SQLiteRankingStore) SaveRanking(entries []models.MRankingEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := d.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM instrument_rankings"); err != nil {
		return fmt.Errorf("failed to clear old snapshot: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO instrument_rankings (symbol, quote_volume, rank, fetched_at) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.Exec(e.Symbol, e.QuoteVolume, e.Rank, e.FetchedAt.UnixMilli()); err != nil {
			return fmt.Errorf("failed to insert ranking row for %s: %w", e.Symbol, err)
		}
	}

	return tx.Commit()
}

// -----------------------------------------------------------------------------

func (d *SQLiteRankingStore) LatestRanking(limit int) ([]models.MRankingEntry, error) {
	rows, err := d.DB.Query(
		"SELECT symbol, quote_volume, rank, fetched_at FROM instrument_rankings ORDER BY rank ASC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.MRankingEntry
	for rows.Next() {
		var e models.MRankingEntry
		var fetchedAt int64
		if err := rows.Scan(&e.Symbol, &e.QuoteVolume, &e.Rank, &fetchedAt); err != nil {
			return nil, err
		}
		e.FetchedAt = time.UnixMilli(fetchedAt).UTC()
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// -----------------------------------------------------------------------------

func (d *SQLiteRankingStore) Close() error {
	if d.DB == nil {
		return nil
	}
	return d.DB.Close()
}
