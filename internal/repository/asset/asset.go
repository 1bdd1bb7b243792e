package asset

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jgivc/assetgate/internal/common"
	"github.com/jgivc/assetgate/internal/entity"
	"github.com/redis/go-redis/v9"
)

const (
	KeyAsset  = "asset" // HASH. asset:{unique_name} field: value
	KeyRecent = "ar"    // ZSET. unique_name scored by uploaded_at
	KeyNames  = "an"    // HASH. unique_name: original_name, search index

	KeySeparator = ":"

	fieldOriginalName = "original_name"
	fieldMIMEType     = "mime_type"
	fieldSize         = "size"
	fieldUploadedAt   = "uploaded_at"
	fieldViews        = "views"
	fieldDownloads    = "downloads"
)

// incScript increments a counter field only while the record still exists.
// A plain HINCRBY would resurrect a concurrently deleted record; callers must
// see not-found instead.
var incScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return redis.call("HINCRBY", KEYS[1], ARGV[1], 1)
end
return -1
`)

type assetRepository struct {
	cl  *redis.Client
	log *slog.Logger
}

func NewAssetRepository(cl *redis.Client, log *slog.Logger) *assetRepository {
	return &assetRepository{
		cl:  cl,
		log: log.With(slog.String("item", "AssetRepository")),
	}
}

func (r *assetRepository) Insert(ctx context.Context, a *entity.Asset) error {
	key := getKey(KeyAsset, a.UniqueName)

	// The uploaded_at field doubles as the existence guard: HSetNX fails on a
	// name that was ever inserted and not deleted since.
	ok, err := r.cl.HSetNX(ctx, key, fieldUploadedAt, a.UploadedAt.UnixNano()).Result()
	if err != nil {
		return fmt.Errorf("cannot insert asset %s: %w", a.UniqueName, err)
	}

	if !ok {
		return common.ErrAssetExistsError
	}

	pipe := r.cl.Pipeline()
	pipe.HSet(ctx, key,
		fieldOriginalName, a.OriginalName,
		fieldMIMEType, a.MIMEType,
		fieldSize, a.Size,
		fieldViews, a.ViewCount,
		fieldDownloads, a.DownloadCount,
	)
	pipe.ZAdd(ctx, KeyRecent, redis.Z{Score: float64(a.UploadedAt.UnixNano()), Member: a.UniqueName})
	pipe.HSet(ctx, KeyNames, a.UniqueName, a.OriginalName)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cannot save asset %s fields: %w", a.UniqueName, err)
	}

	return nil
}

func (r *assetRepository) FindByUniqueName(ctx context.Context, name string) (*entity.Asset, error) {
	fields, err := r.cl.HGetAll(ctx, getKey(KeyAsset, name)).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get asset %s: %w", name, err)
	}

	if len(fields) < 1 {
		return nil, common.ErrAssetNotFoundError
	}

	return r.toAsset(name, fields)
}

func (r *assetRepository) IncViewCount(ctx context.Context, name string) (int64, error) {
	return r.incCounter(ctx, name, fieldViews)
}

func (r *assetRepository) IncDownloadCount(ctx context.Context, name string) (int64, error) {
	return r.incCounter(ctx, name, fieldDownloads)
}

func (r *assetRepository) incCounter(ctx context.Context, name, field string) (int64, error) {
	counter, err := incScript.Run(ctx, r.cl, []string{getKey(KeyAsset, name)}, field).Int64()
	if err != nil {
		return 0, fmt.Errorf("cannot increment %s for asset %s: %w", field, name, err)
	}

	if counter < 0 {
		return 0, common.ErrAssetNotFoundError
	}

	return counter, nil
}

func (r *assetRepository) DeleteByUniqueName(ctx context.Context, name string) (*entity.Asset, error) {
	a, err := r.FindByUniqueName(ctx, name)
	if err != nil {
		return nil, err
	}

	pipe := r.cl.Pipeline()
	pipe.Del(ctx, getKey(KeyAsset, name))
	pipe.ZRem(ctx, KeyRecent, name)
	pipe.HDel(ctx, KeyNames, name)

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("cannot delete asset %s: %w", name, err)
	}

	return a, nil
}

// Search matches substr case-insensitively against original or unique names,
// newest uploads first, capped at limit.
func (r *assetRepository) Search(ctx context.Context, substr string, limit int) ([]*entity.Asset, error) {
	names, err := r.cl.ZRevRange(ctx, KeyRecent, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get asset index: %w", err)
	}

	originals, err := r.cl.HGetAll(ctx, KeyNames).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get name index: %w", err)
	}

	substr = strings.ToLower(substr)

	var matched []string
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), substr) ||
			strings.Contains(strings.ToLower(originals[name]), substr) {
			matched = append(matched, name)
		}

		if len(matched) >= limit {
			break
		}
	}

	return r.fetch(ctx, matched)
}

func (r *assetRepository) ListRecent(ctx context.Context, limit int) ([]*entity.Asset, error) {
	names, err := r.cl.ZRevRange(ctx, KeyRecent, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get recent assets: %w", err)
	}

	return r.fetch(ctx, names)
}

func (r *assetRepository) ListPage(ctx context.Context, page, size int) (*entity.AssetPage, error) {
	total, err := r.cl.ZCard(ctx, KeyRecent).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot count assets: %w", err)
	}

	offset := int64(page-1) * int64(size)

	names, err := r.cl.ZRevRange(ctx, KeyRecent, offset, offset+int64(size)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("cannot get asset page: %w", err)
	}

	assets, err := r.fetch(ctx, names)
	if err != nil {
		return nil, err
	}

	return &entity.AssetPage{
		Assets:      assets,
		CurrentPage: page,
		TotalPages:  totalPages(total, size),
		TotalAssets: total,
	}, nil
}

func (r *assetRepository) fetch(ctx context.Context, names []string) ([]*entity.Asset, error) {
	assets := make([]*entity.Asset, 0, len(names))
	if len(names) < 1 {
		return assets, nil
	}

	pipe := r.cl.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(names))
	for i, name := range names {
		cmds[i] = pipe.HGetAll(ctx, getKey(KeyAsset, name))
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("cannot fetch assets: %w", err)
	}

	for i, cmd := range cmds {
		fields, err := cmd.Result()
		if err != nil || len(fields) < 1 {
			// Deleted between the index read and the fetch.
			continue
		}

		a, err := r.toAsset(names[i], fields)
		if err != nil {
			r.log.Error("Cannot parse asset record", slog.String("name", names[i]), slog.Any("error", err))

			continue
		}

		assets = append(assets, a)
	}

	return assets, nil
}

func (r *assetRepository) toAsset(name string, fields map[string]string) (*entity.Asset, error) {
	nanos, err := strconv.ParseInt(fields[fieldUploadedAt], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cannot parse uploaded_at of %s: %w", name, err)
	}

	size, err := strconv.ParseInt(fields[fieldSize], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("cannot parse size of %s: %w", name, err)
	}

	views, _ := strconv.ParseInt(fields[fieldViews], 10, 64)
	downloads, _ := strconv.ParseInt(fields[fieldDownloads], 10, 64)

	return &entity.Asset{
		UniqueName:    name,
		OriginalName:  fields[fieldOriginalName],
		MIMEType:      fields[fieldMIMEType],
		Size:          size,
		UploadedAt:    time.Unix(0, nanos),
		ViewCount:     views,
		DownloadCount: downloads,
	}, nil
}

func totalPages(total int64, size int) int {
	if total < 1 {
		return 0
	}

	return int((total + int64(size) - 1) / int64(size))
}

func getKey(keys ...string) string {
	return strings.Join(keys, KeySeparator)
}
