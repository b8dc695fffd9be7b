package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-directory/internal/store/model"
	appErrors "store-directory/pkg/errors"
)

type fakeStoreRepo struct {
	stores map[uuid.UUID]*model.Store
	slugs  []string

	searchResults []model.SearchResult
	searchLimit   int

	updatedFields map[string]interface{}

	tagCounts   []model.TagCount
	taggedCalls []string
}

func newFakeStoreRepo() *fakeStoreRepo {
	return &fakeStoreRepo{stores: make(map[uuid.UUID]*model.Store)}
}

func (f *fakeStoreRepo) Create(ctx context.Context, store *model.Store) error {
	store.ID = uuid.New()
	f.stores[store.ID] = store
	return nil
}

func (f *fakeStoreRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	if s, ok := f.stores[id]; ok {
		return s, nil
	}
	return nil, appErrors.ErrStoreNotFound
}

func (f *fakeStoreRepo) GetBySlug(ctx context.Context, slug string) (*model.Store, error) {
	for _, s := range f.stores {
		if s.Slug == slug {
			return s, nil
		}
	}
	return nil, appErrors.ErrStoreNotFound
}

func (f *fakeStoreRepo) List(ctx context.Context) ([]model.Store, error) {
	var out []model.Store
	for _, s := range f.stores {
		out = append(out, *s)
	}
	return out, nil
}

func (f *fakeStoreRepo) ListByTag(ctx context.Context, tag string) ([]model.Store, error) {
	f.taggedCalls = append(f.taggedCalls, tag)
	var out []model.Store
	for _, s := range f.stores {
		if tag == "" {
			if len(s.Tags) > 0 {
				out = append(out, *s)
			}
			continue
		}
		for _, t := range s.Tags {
			if t == tag {
				out = append(out, *s)
				break
			}
		}
	}
	return out, nil
}

func (f *fakeStoreRepo) TagCounts(ctx context.Context) ([]model.TagCount, error) {
	return f.tagCounts, nil
}

func (f *fakeStoreRepo) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Store, error) {
	store, ok := f.stores[id]
	if !ok {
		return nil, appErrors.ErrStoreNotFound
	}
	f.updatedFields = fields
	if name, ok := fields["name"].(string); ok {
		store.Name = name
	}
	return store, nil
}

func (f *fakeStoreRepo) ListSlugsLike(ctx context.Context, base string) ([]string, error) {
	return f.slugs, nil
}

func (f *fakeStoreRepo) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	f.searchLimit = limit
	return f.searchResults, nil
}

func TestCreate_DerivesSlug(t *testing.T) {
	repo := newFakeStoreRepo()
	svc := NewService(repo)
	author := uuid.New()

	store, err := svc.Create(context.Background(), author, &model.StoreRequest{
		Name: "The Flying Bean Cafe",
	})
	require.NoError(t, err)

	assert.Equal(t, "the-flying-bean-cafe", store.Slug)
	assert.Equal(t, author, store.AuthorID)
	assert.Equal(t, model.LocationPointType, store.Location.Type)
}

func TestCreate_DeduplicatesSlug(t *testing.T) {
	repo := newFakeStoreRepo()
	repo.slugs = []string{"coffee-corner", "coffee-corner-2"}
	svc := NewService(repo)

	store, err := svc.Create(context.Background(), uuid.New(), &model.StoreRequest{
		Name: "Coffee Corner",
	})
	require.NoError(t, err)
	assert.Equal(t, "coffee-corner-3", store.Slug)
}

func TestGetForEdit_Ownership(t *testing.T) {
	repo := newFakeStoreRepo()
	svc := NewService(repo)

	owner := uuid.New()
	stranger := uuid.New()
	store := &model.Store{Name: "Owned", AuthorID: owner}
	require.NoError(t, repo.Create(context.Background(), store))

	t.Run("owner may edit", func(t *testing.T) {
		got, err := svc.GetForEdit(context.Background(), store.ID, owner)
		require.NoError(t, err)
		assert.Equal(t, store.ID, got.ID)
	})

	t.Run("non-owner is rejected", func(t *testing.T) {
		_, err := svc.GetForEdit(context.Background(), store.ID, stranger)
		assert.ErrorIs(t, err, appErrors.ErrNotStoreOwner)
	})

	t.Run("missing store", func(t *testing.T) {
		_, err := svc.GetForEdit(context.Background(), uuid.New(), owner)
		assert.ErrorIs(t, err, appErrors.ErrStoreNotFound)
	})
}

func TestUpdate_ForcesPointLocation(t *testing.T) {
	repo := newFakeStoreRepo()
	svc := NewService(repo)

	store := &model.Store{Name: "Before", AuthorID: uuid.New()}
	require.NoError(t, repo.Create(context.Background(), store))

	_, err := svc.Update(context.Background(), store.ID, &model.StoreRequest{
		Name:    "After",
		Address: "1 Main St",
		Lng:     -73.98,
		Lat:     40.75,
	})
	require.NoError(t, err)

	require.NotNil(t, repo.updatedFields)
	assert.Equal(t, model.LocationPointType, repo.updatedFields["location_type"])
	assert.NotContains(t, repo.updatedFields, "slug", "slug must not be regenerated on update")
}

func TestStoresAndTags(t *testing.T) {
	repo := newFakeStoreRepo()
	repo.tagCounts = []model.TagCount{{Tag: "wifi", Count: 3}, {Tag: "late", Count: 1}}
	svc := NewService(repo)

	store := &model.Store{Name: "Tagged", Tags: []string{"wifi"}, AuthorID: uuid.New()}
	require.NoError(t, repo.Create(context.Background(), store))
	untagged := &model.Store{Name: "Untagged", AuthorID: uuid.New()}
	require.NoError(t, repo.Create(context.Background(), untagged))

	t.Run("with tag", func(t *testing.T) {
		stores, tags, err := svc.StoresAndTags(context.Background(), "wifi")
		require.NoError(t, err)
		require.Len(t, stores, 1)
		assert.Equal(t, "Tagged", stores[0].Name)
		assert.Len(t, tags, 2)
	})

	t.Run("without tag returns only tagged stores", func(t *testing.T) {
		stores, _, err := svc.StoresAndTags(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, stores, 1)
		assert.Equal(t, "Tagged", stores[0].Name)
	})
}

func TestSearch(t *testing.T) {
	repo := newFakeStoreRepo()
	svc := NewService(repo)

	t.Run("sorted and capped at five", func(t *testing.T) {
		// Out of order and one over the cap; the contract is descending
		// score, at most five rows.
		repo.searchResults = []model.SearchResult{
			{Name: "c", Score: 5},
			{Name: "a", Score: 9},
			{Name: "d", Score: 5},
			{Name: "b", Score: 7},
			{Name: "e", Score: 3},
			{Name: "f", Score: 1},
		}

		results, err := svc.Search(context.Background(), "coffee")
		require.NoError(t, err)

		require.Len(t, results, 5)
		scores := make([]float64, len(results))
		for i, r := range results {
			scores[i] = r.Score
		}
		assert.Equal(t, []float64{9, 7, 5, 5, 3}, scores)
		assert.Equal(t, 5, repo.searchLimit)
	})

	t.Run("blank query short-circuits", func(t *testing.T) {
		repo.searchLimit = 0
		results, err := svc.Search(context.Background(), "   ")
		require.NoError(t, err)
		assert.Empty(t, results)
		assert.Zero(t, repo.searchLimit, "repository must not be queried")
	})
}
