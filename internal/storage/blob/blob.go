package blob

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jgivc/assetgate/internal/common"
	"github.com/spf13/afero"
)

const dirPerm = 0o750

// Store keeps uploaded blobs as flat files under a data directory, addressed
// by their unique name. Write-once-read-many; the metadata store owns all
// descriptive state.
type Store struct {
	fs      afero.Fs
	dataDir string
	log     *slog.Logger
}

func NewStore(dataDir string, log *slog.Logger) (*Store, error) {
	return NewStoreWithFS(afero.NewOsFs(), dataDir, log)
}

func NewStoreWithFS(fs afero.Fs, dataDir string, log *slog.Logger) (*Store, error) {
	if err := fs.MkdirAll(dataDir, dirPerm); err != nil {
		return nil, fmt.Errorf("cannot create data dir: %w", err)
	}

	return &Store{
		fs:      fs,
		dataDir: dataDir,
		log:     log.With(slog.String("item", "BlobStore")),
	}, nil
}

// Write streams src into a new blob and returns the number of bytes stored.
func (s *Store) Write(ctx context.Context, name string, src io.Reader) (int64, error) {
	path, err := s.path(name)
	if err != nil {
		return 0, err
	}

	f, err := s.fs.Create(path)
	if err != nil {
		return 0, fmt.Errorf("cannot create blob %s: %w", name, err)
	}

	size, err := io.Copy(f, src)
	if err != nil {
		f.Close()
		if rmErr := s.fs.Remove(path); rmErr != nil {
			s.log.Error("Cannot remove partial blob", slog.String("name", name), slog.Any("error", rmErr))
		}

		return 0, fmt.Errorf("cannot write blob %s: %w", name, err)
	}

	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("cannot close blob %s: %w", name, err)
	}

	return size, nil
}

func (s *Store) Open(ctx context.Context, name string) (io.ReadSeekCloser, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.ErrBlobNotFoundError
		}

		return nil, fmt.Errorf("cannot open blob %s: %w", name, err)
	}

	return f, nil
}

func (s *Store) Delete(ctx context.Context, name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return common.ErrBlobNotFoundError
		}

		return fmt.Errorf("cannot delete blob %s: %w", name, err)
	}

	return nil
}

func (s *Store) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid blob name: %q", name)
	}

	return filepath.Join(s.dataDir, name), nil
}
