package storage

import (
	"context"

	"github.com/poiesic/lectio/core"
)

// ScoredPassage pairs a stored passage with a similarity score.
type ScoredPassage struct {
	Passage *core.Passage
	Score   float32
}

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// FindSimilar finds passages whose embedding is similar to the given vector.
	// Returns passages with similarity >= minSimilarity, up to limit results.
	// Results are ordered by similarity score (highest first).
	FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*ScoredPassage, error)

	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// PassageRepository provides operations for managing indexed passages.
type PassageRepository interface {
	Repository

	// AddPassages stores one or more passages, replacing any passage with the
	// same ID. Passages with ID=0 get a content-based ID.
	// Returns the passages with IDs populated.
	AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error)

	// DeletePassages removes passages by their IDs.
	// Returns ErrNotFound if any passage doesn't exist.
	DeletePassages(ctx context.Context, ids ...core.ID) error

	// GetPassage retrieves a single passage by ID.
	// Returns ErrNotFound if the passage doesn't exist.
	GetPassage(ctx context.Context, id core.ID) (*core.Passage, error)

	// GetPassages retrieves multiple passages by their IDs.
	// Returns only the passages that exist (no error for missing passages).
	GetPassages(ctx context.Context, ids ...core.ID) ([]*core.Passage, error)

	// GetPassagesByCategory returns the IDs of passages in a category.
	GetPassagesByCategory(ctx context.Context, category string) ([]core.ID, error)

	// ScanPassages calls fn for every stored passage in ID order.
	// Iteration stops at the first error returned by fn.
	ScanPassages(ctx context.Context, fn func(*core.Passage) error) error

	// CountPassages returns the number of stored passages.
	CountPassages(ctx context.Context) (int, error)
}
