package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lectio/core"
	"github.com/poiesic/lectio/storage"
)

// PassageRepository implements storage.PassageRepository for BadgerDB.
type PassageRepository struct {
	backend *Backend
	owned   bool
}

var _ storage.PassageRepository = (*PassageRepository)(nil)

// newPassageRepository creates a repository on a shared backend.
func newPassageRepository(backend *Backend, owned bool) *PassageRepository {
	return &PassageRepository{
		backend: backend,
		owned:   owned,
	}
}

// NewPassageRepository creates a passage repository on an open backend.
// Closing the repository leaves the backend open.
func NewPassageRepository(backend *Backend) storage.PassageRepository {
	return newPassageRepository(backend, false)
}

// OpenPassageRepository opens a BadgerDB database at path and returns a
// repository that owns it. Closing the repository closes the database.
func OpenPassageRepository(path string) (storage.PassageRepository, error) {
	backend, err := OpenBackend(path, false)
	if err != nil {
		return nil, err
	}
	return newPassageRepository(backend, true), nil
}

// Close closes the backend when the repository owns it.
func (r *PassageRepository) Close() error {
	if r.owned && !r.backend.IsClosed() {
		return r.backend.Close()
	}
	return nil
}

// FindSimilar delegates to the backend.
func (r *PassageRepository) FindSimilar(ctx context.Context, vector []float32, minSimilarity float32, limit int) ([]*storage.ScoredPassage, error) {
	return r.backend.FindSimilar(ctx, vector, minSimilarity, limit)
}

// WithTransaction delegates to the backend.
func (r *PassageRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddPassages stores passages, replacing existing passages with the same ID.
func (r *PassageRepository) AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error) {
	for _, passage := range passages {
		if err := core.ValidatePassage(passage); err != nil {
			return nil, fmt.Errorf("%w: %w", storage.ErrInvalidPassage, err)
		}
	}

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, passage := range passages {
			if passage.ID == 0 {
				passage.ID = core.IDFromContent(passage.SourcePage + "\x00" + passage.Content)
			}
			key := makePassageKey(passage.ID)

			// Drop the old category index entry when replacing
			old, err := readPassage(tx, key)
			if err != nil {
				return err
			}
			if old != nil && old.Category != "" && old.Category != passage.Category {
				if err := tx.Delete(makeCategoryKey(old.Category, old.ID)); err != nil {
					return err
				}
			}

			value, err := storage.MarshalPassage(passage)
			if err != nil {
				return err
			}
			if err := tx.Set(key, value); err != nil {
				return err
			}

			if passage.Category != "" {
				if err := tx.Set(makeCategoryKey(passage.Category, passage.ID), storage.MarshalID(passage.ID)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}

	r.backend.logger.Debug("stored passages", "count", len(passages))
	return passages, nil
}

// DeletePassages removes passages by their IDs.
func (r *PassageRepository) DeletePassages(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makePassageKey(id)

			passage, err := readPassage(tx, key)
			if err != nil {
				return err
			}
			if passage == nil {
				return fmt.Errorf("%w: passage %s", storage.ErrNotFound, id)
			}

			if passage.Category != "" {
				if err := tx.Delete(makeCategoryKey(passage.Category, id)); err != nil {
					return err
				}
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetPassage retrieves a single passage by ID.
func (r *PassageRepository) GetPassage(ctx context.Context, id core.ID) (*core.Passage, error) {
	var result *core.Passage
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readPassage(tx, makePassageKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return fmt.Errorf("%w: passage %s", storage.ErrNotFound, id)
		}
		return nil
	}, false)
	return result, err
}

// GetPassages retrieves multiple passages by their IDs.
func (r *PassageRepository) GetPassages(ctx context.Context, ids ...core.ID) ([]*core.Passage, error) {
	results := make([]*core.Passage, 0, len(ids))
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			passage, err := readPassage(tx, makePassageKey(id))
			if err != nil {
				return err
			}
			if passage != nil {
				results = append(results, passage)
			}
		}
		return nil
	}, false)
	return results, err
}

// GetPassagesByCategory returns the IDs of passages in a category.
func (r *PassageRepository) GetPassagesByCategory(ctx context.Context, category string) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makePartialCategoryKey(category)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			// Longer keys belong to categories that share this prefix
			if len(key) != len(opts.Prefix)+8 {
				continue
			}
			id, err := storage.UnmarshalID(key[len(opts.Prefix):])
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	}, false)
	return ids, err
}

// ScanPassages calls fn for every stored passage in ID order.
func (r *PassageRepository) ScanPassages(ctx context.Context, fn func(*core.Passage) error) error {
	return r.backend.scanPassages(ctx, fn)
}

// CountPassages returns the number of stored passages.
func (r *PassageRepository) CountPassages(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(passagePrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// readPassage loads a passage, returning nil when the key is absent.
func readPassage(tx *badger.Txn, key []byte) (*core.Passage, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var passage *core.Passage
	err = item.Value(func(val []byte) error {
		var err error
		passage, err = storage.UnmarshalPassage(val)
		return err
	})
	return passage, err
}
