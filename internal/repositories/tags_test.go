package repositories_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohits-web03/notevault/internal/models"
	"github.com/rohits-web03/notevault/internal/repositories"
	"github.com/rohits-web03/notevault/internal/testutil"
)

func TestTagsUpsert_ReusesExisting(t *testing.T) {
	store := testutil.NewStore(t)
	tags := store.Read(t.Context()).Tags

	first, err := tags.Upsert("golang")
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := tags.Upsert("golang")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := tags.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTagsUpsert_InsideTransaction(t *testing.T) {
	store := testutil.NewStore(t)

	_, err := store.Read(t.Context()).Tags.Upsert("math")
	require.NoError(t, err)

	var got []models.Tag
	err = store.Transaction(t.Context(), func(r repositories.Repos) error {
		var err error
		got, err = r.Tags.UpsertAll([]string{"math", "physics"})
		return err
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "math", got[0].Name)
	assert.Equal(t, "physics", got[1].Name)
}

func TestTagsUpsert_Concurrent(t *testing.T) {
	store := testutil.NewStore(t)

	const workers = 8
	ids := make([]uint, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tag, err := store.Read(t.Context()).Tags.Upsert("shared")
			errs[i] = err
			if tag != nil {
				ids[i] = tag.ID
			}
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, ids[0], ids[i])
	}
	all, err := store.Read(t.Context()).Tags.All()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestTagsByName_NotFound(t *testing.T) {
	store := testutil.NewStore(t)

	_, err := store.Read(t.Context()).Tags.ByName("missing")
	assert.Error(t, err)
}
