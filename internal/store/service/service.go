package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"store-directory/internal/store/model"
	"store-directory/internal/store/repository"
	appErrors "store-directory/pkg/errors"
	"store-directory/pkg/utils"
)

// searchLimit caps the number of rows the search API returns.
const searchLimit = 5

type StoreService struct {
	repo repository.Repository
}

func NewService(repo repository.Repository) *StoreService {
	return &StoreService{repo: repo}
}

// Create persists a new store owned by authorID. The slug is derived
// from the name and deduplicated against existing slugs with a numeric
// suffix.
func (s *StoreService) Create(ctx context.Context, authorID uuid.UUID, request *model.StoreRequest) (*model.Store, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	storeSlug, err := s.uniqueSlug(ctx, request.Name)
	if err != nil {
		return nil, err
	}

	store := &model.Store{
		Name:        request.Name,
		Slug:        storeSlug,
		Description: request.Description,
		Tags:        pq.StringArray(request.Tags),
		Location: model.Location{
			Type:    model.LocationPointType,
			Lng:     request.Lng,
			Lat:     request.Lat,
			Address: request.Address,
		},
		Photo:    request.Photo,
		AuthorID: authorID,
	}

	if err := s.repo.Create(ctx, store); err != nil {
		return nil, err
	}
	return store, nil
}

// GetForEdit fetches a store and enforces ownership before the edit
// form may be rendered.
func (s *StoreService) GetForEdit(ctx context.Context, id uuid.UUID, currentUserID uuid.UUID) (*model.Store, error) {
	store, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if store.AuthorID != currentUserID {
		return nil, appErrors.ErrNotStoreOwner
	}
	return store, nil
}

// Update applies the edit form atomically and returns the updated row.
// The location type is always written as Point regardless of input; the
// slug is never regenerated on update.
func (s *StoreService) Update(ctx context.Context, id uuid.UUID, request *model.StoreRequest) (*model.Store, error) {
	if err := utils.ValidateStruct(request); err != nil {
		return nil, appErrors.NewAppError("VALIDATION_ERROR", "Invalid input", err)
	}

	fields := map[string]interface{}{
		"name":             request.Name,
		"description":      request.Description,
		"tags":             pq.StringArray(request.Tags),
		"location_type":    model.LocationPointType,
		"location_lng":     request.Lng,
		"location_lat":     request.Lat,
		"location_address": request.Address,
	}
	if request.Photo != nil {
		fields["photo"] = *request.Photo
	}

	return s.repo.Update(ctx, id, fields)
}

func (s *StoreService) GetBySlug(ctx context.Context, slug string) (*model.Store, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *StoreService) List(ctx context.Context) ([]model.Store, error) {
	return s.repo.List(ctx)
}

// StoresAndTags fetches the tag-filtered store list and the distinct
// tag aggregation concurrently and joins both results.
func (s *StoreService) StoresAndTags(ctx context.Context, tag string) ([]model.Store, []model.TagCount, error) {
	var (
		stores []model.Store
		tags   []model.TagCount
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stores, err = s.repo.ListByTag(gctx, tag)
		return err
	})
	g.Go(func() error {
		var err error
		tags, err = s.repo.TagCounts(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return stores, tags, nil
}

// Search delegates ranking to the database text index and enforces the
// response contract: descending score, at most searchLimit rows.
func (s *StoreService) Search(ctx context.Context, query string) ([]model.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.SearchResult{}, nil
	}

	results, err := s.repo.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	if results == nil {
		results = []model.SearchResult{}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > searchLimit {
		results = results[:searchLimit]
	}
	return results, nil
}

func (s *StoreService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", appErrors.NewAppError("VALIDATION_ERROR", "Store name produces an empty slug", nil)
	}

	existing, err := s.repo.ListSlugsLike(ctx, base)
	if err != nil {
		return "", err
	}
	if len(existing) == 0 {
		return base, nil
	}

	// Find the highest numeric suffix already taken.
	highest := 1
	for _, taken := range existing {
		if taken == base {
			continue
		}
		if n, err := strconv.Atoi(strings.TrimPrefix(taken, base+"-")); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-%d", base, highest+1), nil
}
