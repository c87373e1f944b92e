package interfaces

import "volatility-scanner/src/models"

// -----------------------------------------------------------------------------
// IRankingStore persists instrument-selection snapshots.
// -----------------------------------------------------------------------------

type IRankingStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the database schema and tables.
	Initialize() error

	// -----------------------------------------------------------------------------

	// SaveRanking replaces the stored snapshot with the given entries.
	SaveRanking(entries []models.MRankingEntry) error

	// -----------------------------------------------------------------------------

	// LatestRanking returns up to limit entries of the most recent
	// snapshot, best-ranked first.
	LatestRanking(limit int) ([]models.MRankingEntry, error)

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
