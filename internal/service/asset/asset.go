package asset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/jgivc/assetgate/internal/common"
	"github.com/jgivc/assetgate/internal/entity"
	"github.com/jgivc/assetgate/internal/namegen"
)

const (
	serviceName = "asset"

	RecentLimit     = 10
	SearchLimit     = 20
	DefaultPageSize = 10
)

type AssetRepository interface {
	Insert(ctx context.Context, a *entity.Asset) error
	FindByUniqueName(ctx context.Context, name string) (*entity.Asset, error)
	IncViewCount(ctx context.Context, name string) (int64, error)
	IncDownloadCount(ctx context.Context, name string) (int64, error)
	DeleteByUniqueName(ctx context.Context, name string) (*entity.Asset, error)
	Search(ctx context.Context, substr string, limit int) ([]*entity.Asset, error)
	ListRecent(ctx context.Context, limit int) ([]*entity.Asset, error)
	ListPage(ctx context.Context, page, size int) (*entity.AssetPage, error)
}

type BlobStore interface {
	Write(ctx context.Context, name string, src io.Reader) (int64, error)
	Open(ctx context.Context, name string) (io.ReadSeekCloser, error)
	Delete(ctx context.Context, name string) error
}

type assetService struct {
	repo  AssetRepository
	blobs BlobStore
	clock func() time.Time
	log   *slog.Logger
}

func NewAssetService(repo AssetRepository, blobs BlobStore, log *slog.Logger) *assetService {
	return &assetService{
		repo:  repo,
		blobs: blobs,
		clock: time.Now,
		log:   log.With(slog.String("service", serviceName)),
	}
}

// Upload stores the payload under a freshly minted name and inserts the
// metadata record. A blob written before a failed insert stays orphaned; it
// is logged for out-of-band reconciliation, never silently reconciled.
func (s *assetService) Upload(ctx context.Context, originalName, mimeType string, src io.Reader) (*entity.Asset, error) {
	name, err := namegen.New(originalName)
	if err != nil {
		return nil, fmt.Errorf("cannot mint unique name: %w", err)
	}

	size, err := s.blobs.Write(ctx, name, src)
	if err != nil {
		s.log.Error("Cannot write blob", slog.String("name", name), slog.Any("error", err))

		return nil, fmt.Errorf("cannot store blob: %w", err)
	}

	a := &entity.Asset{
		UniqueName:   name,
		OriginalName: originalName,
		MIMEType:     mimeType,
		Size:         size,
		UploadedAt:   s.clock(),
	}

	if err := s.repo.Insert(ctx, a); err != nil {
		s.log.Error("Cannot insert asset record, blob is orphaned",
			slog.String("name", name), slog.Any("error", err))

		return nil, fmt.Errorf("cannot insert asset %s: %w", name, err)
	}

	s.log.Info("Asset uploaded", slog.String("name", name),
		slog.String("original_name", originalName), slog.Int64("size", size))

	return a, nil
}

func (s *assetService) Get(ctx context.Context, name string) (*entity.Asset, error) {
	a, err := s.repo.FindByUniqueName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("cannot get asset %s: %w", name, err)
	}

	return a, nil
}

// View counts a view and returns the record for the detail page. No bytes
// are transferred on this path.
func (s *assetService) View(ctx context.Context, name string) (*entity.Asset, error) {
	a, err := s.repo.FindByUniqueName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("cannot get asset %s: %w", name, err)
	}

	counter, err := s.repo.IncViewCount(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("cannot count view of %s: %w", name, err)
	}

	a.ViewCount = counter

	return a, nil
}

// Download counts a download and opens the blob. The counter reflects the
// attempt even if the transfer fails afterwards.
func (s *assetService) Download(ctx context.Context, name string) (*entity.Asset, io.ReadSeekCloser, error) {
	a, err := s.repo.FindByUniqueName(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot get asset %s: %w", name, err)
	}

	counter, err := s.repo.IncDownloadCount(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot count download of %s: %w", name, err)
	}

	a.DownloadCount = counter

	blob, err := s.blobs.Open(ctx, name)
	if err != nil {
		s.log.Error("Cannot open blob for existing record",
			slog.String("name", name), slog.Any("error", err))

		return nil, nil, fmt.Errorf("cannot open blob %s: %w", name, err)
	}

	return a, blob, nil
}

func (s *assetService) Recent(ctx context.Context) ([]*entity.Asset, error) {
	assets, err := s.repo.ListRecent(ctx, RecentLimit)
	if err != nil {
		s.log.Error("Cannot list recent assets", slog.Any("error", err))

		return nil, fmt.Errorf("cannot list recent assets: %w", err)
	}

	return assets, nil
}

func (s *assetService) Search(ctx context.Context, query string) ([]*entity.Asset, error) {
	if strings.TrimSpace(query) == "" {
		return nil, common.ErrEmptyQueryError
	}

	assets, err := s.repo.Search(ctx, query, SearchLimit)
	if err != nil {
		s.log.Error("Cannot search assets", slog.String("query", query), slog.Any("error", err))

		return nil, fmt.Errorf("cannot search assets: %w", err)
	}

	return assets, nil
}

func (s *assetService) Page(ctx context.Context, page, size int) (*entity.AssetPage, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}

	window, err := s.repo.ListPage(ctx, page, size)
	if err != nil {
		s.log.Error("Cannot list asset page", slog.Int("page", page), slog.Any("error", err))

		return nil, fmt.Errorf("cannot list asset page: %w", err)
	}

	return window, nil
}

// Delete removes the metadata record first, then the blob. A failed blob
// removal does not undo the metadata deletion; blobDeleted tells the caller
// the two halves diverged.
func (s *assetService) Delete(ctx context.Context, name string) (*entity.Asset, bool, error) {
	a, err := s.repo.DeleteByUniqueName(ctx, name)
	if err != nil {
		return nil, false, fmt.Errorf("cannot delete asset %s: %w", name, err)
	}

	if err := s.blobs.Delete(ctx, name); err != nil {
		s.log.Error("Metadata deleted but blob removal failed",
			slog.String("name", name), slog.Any("error", err))

		return a, false, nil
	}

	s.log.Info("Asset deleted", slog.String("name", name))

	return a, true, nil
}
