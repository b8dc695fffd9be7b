package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"store-directory/internal/database"
	"store-directory/internal/store/model"
	appErrors "store-directory/pkg/errors"
)

// Repository is the persistence contract for stores.
type Repository interface {
	Create(ctx context.Context, store *model.Store) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error)
	GetBySlug(ctx context.Context, slug string) (*model.Store, error)
	List(ctx context.Context) ([]model.Store, error)

	// ListByTag returns stores whose tag array contains tag; with an
	// empty tag it returns every store that has at least one tag.
	ListByTag(ctx context.Context, tag string) ([]model.Store, error)
	TagCounts(ctx context.Context) ([]model.TagCount, error)

	// Update applies fields atomically and returns the post-update row.
	Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Store, error)

	// ListSlugsLike returns existing slugs equal to base or base with a
	// numeric suffix, for unique slug derivation.
	ListSlugsLike(ctx context.Context, base string) ([]string, error)

	Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error)
}

type storeRepository struct {
	db *database.Database
}

func NewRepository(db *database.Database) Repository {
	return &storeRepository{db: db}
}

func (r *storeRepository) Create(ctx context.Context, store *model.Store) error {
	store.ID = uuid.New()
	store.CreatedAt = time.Now()
	store.UpdatedAt = time.Now()

	if err := r.db.DB.WithContext(ctx).Create(store).Error; err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}

func (r *storeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Store, error) {
	var store model.Store
	err := r.db.DB.WithContext(ctx).First(&store, "id = ?", id).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store: %w", err)
	}
	return &store, nil
}

func (r *storeRepository) GetBySlug(ctx context.Context, slug string) (*model.Store, error) {
	var store model.Store
	err := r.db.DB.WithContext(ctx).
		Preload("Author").
		Where("slug = ?", slug).
		First(&store).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, appErrors.ErrStoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get store by slug: %w", err)
	}
	return &store, nil
}

func (r *storeRepository) List(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	if err := r.db.DB.WithContext(ctx).Order("created_at DESC").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}
	return stores, nil
}

func (r *storeRepository) ListByTag(ctx context.Context, tag string) ([]model.Store, error) {
	var stores []model.Store
	query := r.db.DB.WithContext(ctx).Order("created_at DESC")

	if tag != "" {
		query = query.Where("? = ANY(tags)", tag)
	} else {
		query = query.Where("array_length(tags, 1) > 0")
	}

	if err := query.Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to list stores by tag: %w", err)
	}
	return stores, nil
}

func (r *storeRepository) TagCounts(ctx context.Context) ([]model.TagCount, error) {
	var counts []model.TagCount
	err := r.db.DB.WithContext(ctx).Raw(`
		SELECT unnest(tags) AS tag, count(*) AS count
		FROM stores
		GROUP BY tag
		ORDER BY count DESC, tag ASC
	`).Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate tags: %w", err)
	}
	return counts, nil
}

func (r *storeRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*model.Store, error) {
	fields["updated_at"] = time.Now()

	var store model.Store
	result := r.db.DB.WithContext(ctx).
		Model(&store).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		Updates(fields)

	if result.Error != nil {
		return nil, fmt.Errorf("failed to update store: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, appErrors.ErrStoreNotFound
	}
	return &store, nil
}

func (r *storeRepository) ListSlugsLike(ctx context.Context, base string) ([]string, error) {
	var slugs []string
	err := r.db.DB.WithContext(ctx).
		Model(&model.Store{}).
		Where("slug = ? OR slug ~ ?", base, "^"+base+"-[0-9]+$").
		Pluck("slug", &slugs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list slugs: %w", err)
	}
	return slugs, nil
}

func (r *storeRepository) Search(ctx context.Context, query string, limit int) ([]model.SearchResult, error) {
	results := []model.SearchResult{}
	err := r.db.DB.WithContext(ctx).Raw(`
		SELECT id, name, slug, description,
		       ts_rank(search_vector, plainto_tsquery('english', ?)) AS score
		FROM stores
		WHERE search_vector @@ plainto_tsquery('english', ?)
		ORDER BY score DESC
		LIMIT ?
	`, query, query, limit).Scan(&results).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search stores: %w", err)
	}
	return results, nil
}
