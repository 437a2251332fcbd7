package badger

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/lectio/core"
	"github.com/poiesic/lectio/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) storage.PassageRepository {
	t.Helper()
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestAddPassages_AssignsContentIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddPassages(ctx,
		&core.Passage{Content: "Clause one.", SourcePage: "contract01.pdf#page=1", Category: "contracts"},
		&core.Passage{Content: "Clause two.", SourcePage: "contract01.pdf#page=2"},
	)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.NotZero(t, added[0].ID)
	assert.NotEqual(t, added[0].ID, added[1].ID)

	got, err := repo.GetPassage(ctx, added[0].ID)
	require.NoError(t, err)
	assert.Equal(t, added[0], got)

	// Same content and source page yields the same ID
	again, err := repo.AddPassages(ctx, &core.Passage{Content: "Clause one.", SourcePage: "contract01.pdf#page=1", Category: "contracts"})
	require.NoError(t, err)
	assert.Equal(t, added[0].ID, again[0].ID)

	count, err := repo.CountPassages(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAddPassages_Invalid(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.AddPassages(context.Background(), &core.Passage{SourcePage: "a.pdf"})
	require.ErrorIs(t, err, storage.ErrInvalidPassage)
	assert.ErrorIs(t, err, core.ErrEmptyContent)
}

func TestGetPassage_NotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.GetPassage(context.Background(), core.ID(99))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetPassages_SkipsMissing(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddPassages(ctx, &core.Passage{Content: "a", SourcePage: "a.pdf"})
	require.NoError(t, err)

	got, err := repo.GetPassages(ctx, added[0].ID, core.ID(12345))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Content)
}

func TestCategoryIndex(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	added, err := repo.AddPassages(ctx,
		&core.Passage{ID: 1, Content: "a", SourcePage: "a.pdf", Category: "internal"},
		&core.Passage{ID: 2, Content: "b", SourcePage: "b.pdf", Category: "internal"},
		&core.Passage{ID: 3, Content: "c", SourcePage: "c.pdf", Category: "internal:archived"},
		&core.Passage{ID: 4, Content: "d", SourcePage: "d.pdf"},
	)
	require.NoError(t, err)
	require.Len(t, added, 4)

	ids, err := repo.GetPassagesByCategory(ctx, "internal")
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1, 2}, ids)

	// Moving a passage to another category updates the index
	_, err = repo.AddPassages(ctx, &core.Passage{ID: 2, Content: "b", SourcePage: "b.pdf", Category: "public"})
	require.NoError(t, err)

	ids, err = repo.GetPassagesByCategory(ctx, "internal")
	require.NoError(t, err)
	assert.Equal(t, []core.ID{1}, ids)

	ids, err = repo.GetPassagesByCategory(ctx, "public")
	require.NoError(t, err)
	assert.Equal(t, []core.ID{2}, ids)
}

func TestDeletePassages(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddPassages(ctx,
		&core.Passage{ID: 1, Content: "a", SourcePage: "a.pdf", Category: "internal"},
		&core.Passage{ID: 2, Content: "b", SourcePage: "b.pdf"},
	)
	require.NoError(t, err)

	require.NoError(t, repo.DeletePassages(ctx, 1))

	_, err = repo.GetPassage(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	ids, err := repo.GetPassagesByCategory(ctx, "internal")
	require.NoError(t, err)
	assert.Empty(t, ids)

	err = repo.DeletePassages(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestScanPassages(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.AddPassages(ctx,
		&core.Passage{ID: 300, Content: "c", SourcePage: "c.pdf"},
		&core.Passage{ID: 2, Content: "a", SourcePage: "a.pdf"},
		&core.Passage{ID: 40, Content: "b", SourcePage: "b.pdf"},
	)
	require.NoError(t, err)

	var seen []core.ID
	err = repo.ScanPassages(ctx, func(p *core.Passage) error {
		seen = append(seen, p.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []core.ID{2, 40, 300}, seen)

	stop := errors.New("stop")
	calls := 0
	err = repo.ScanPassages(ctx, func(p *core.Passage) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestOpenPassageRepository(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, err := OpenPassageRepository(dir)
	require.NoError(t, err)
	_, err = repo.AddPassages(ctx, &core.Passage{ID: 5, Content: "persisted", SourcePage: "p.pdf"})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	reopened, err := OpenPassageRepository(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.GetPassage(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Content)
}

func TestScanPassages_Closed(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	err = repo.ScanPassages(context.Background(), func(*core.Passage) error { return nil })
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
