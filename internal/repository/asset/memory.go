package asset

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/jgivc/assetgate/internal/common"
	"github.com/jgivc/assetgate/internal/entity"
)

// memoryRepository keeps asset records in process memory. It satisfies the
// same contract as the redis repository and backs tests and redis-less runs.
type memoryRepository struct {
	mu     sync.Mutex
	assets map[string]*entity.Asset
}

func NewMemoryRepository() *memoryRepository {
	return &memoryRepository{
		assets: make(map[string]*entity.Asset),
	}
}

func (r *memoryRepository) Insert(ctx context.Context, a *entity.Asset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.assets[a.UniqueName]; exists {
		return common.ErrAssetExistsError
	}

	clone := *a
	r.assets[a.UniqueName] = &clone

	return nil
}

func (r *memoryRepository) FindByUniqueName(ctx context.Context, name string) (*entity.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.assets[name]
	if !exists {
		return nil, common.ErrAssetNotFoundError
	}

	clone := *a

	return &clone, nil
}

func (r *memoryRepository) IncViewCount(ctx context.Context, name string) (int64, error) {
	return r.incCounter(name, func(a *entity.Asset) *int64 { return &a.ViewCount })
}

func (r *memoryRepository) IncDownloadCount(ctx context.Context, name string) (int64, error) {
	return r.incCounter(name, func(a *entity.Asset) *int64 { return &a.DownloadCount })
}

func (r *memoryRepository) incCounter(name string, counter func(*entity.Asset) *int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.assets[name]
	if !exists {
		return 0, common.ErrAssetNotFoundError
	}

	c := counter(a)
	*c++

	return *c, nil
}

func (r *memoryRepository) DeleteByUniqueName(ctx context.Context, name string) (*entity.Asset, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, exists := r.assets[name]
	if !exists {
		return nil, common.ErrAssetNotFoundError
	}

	delete(r.assets, name)

	return a, nil
}

func (r *memoryRepository) Search(ctx context.Context, substr string, limit int) ([]*entity.Asset, error) {
	substr = strings.ToLower(substr)

	var matched []*entity.Asset
	for _, a := range r.sorted() {
		if strings.Contains(strings.ToLower(a.UniqueName), substr) ||
			strings.Contains(strings.ToLower(a.OriginalName), substr) {
			matched = append(matched, a)
		}

		if len(matched) >= limit {
			break
		}
	}

	return matched, nil
}

func (r *memoryRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Asset, error) {
	assets := r.sorted()
	if len(assets) > limit {
		assets = assets[:limit]
	}

	return assets, nil
}

func (r *memoryRepository) ListPage(ctx context.Context, page, size int) (*entity.AssetPage, error) {
	assets := r.sorted()
	total := int64(len(assets))

	start := (page - 1) * size
	if start > len(assets) {
		start = len(assets)
	}

	end := start + size
	if end > len(assets) {
		end = len(assets)
	}

	return &entity.AssetPage{
		Assets:      assets[start:end],
		CurrentPage: page,
		TotalPages:  totalPages(total, size),
		TotalAssets: total,
	}, nil
}

func (r *memoryRepository) sorted() []*entity.Asset {
	r.mu.Lock()
	defer r.mu.Unlock()

	assets := make([]*entity.Asset, 0, len(r.assets))
	for _, a := range r.assets {
		clone := *a
		assets = append(assets, &clone)
	}

	sort.Slice(assets, func(i, j int) bool {
		if assets[i].UploadedAt.Equal(assets[j].UploadedAt) {
			return assets[i].UniqueName < assets[j].UniqueName
		}

		return assets[i].UploadedAt.After(assets[j].UploadedAt)
	})

	return assets
}
