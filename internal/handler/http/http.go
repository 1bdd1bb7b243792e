package httphandler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/jgivc/assetgate/internal/adapter/notice"
	"github.com/jgivc/assetgate/internal/common"
	"github.com/jgivc/assetgate/internal/entity"
)

const (
	fileField = "file"

	mimeTypeUnknown = "application/octet-stream"
)

type AssetService interface {
	Upload(ctx context.Context, originalName, mimeType string, src io.Reader) (*entity.Asset, error)
	View(ctx context.Context, name string) (*entity.Asset, error)
	Download(ctx context.Context, name string) (*entity.Asset, io.ReadSeekCloser, error)
	Recent(ctx context.Context) ([]*entity.Asset, error)
	Search(ctx context.Context, query string) ([]*entity.Asset, error)
	Page(ctx context.Context, page, size int) (*entity.AssetPage, error)
	Delete(ctx context.Context, name string) (*entity.Asset, bool, error)
}

type NoticeLoader interface {
	Load() (*notice.Notice, error)
}

type uploadResponse struct {
	UniqueName   string `json:"uniqueName"`
	OriginalName string `json:"originalName"`
	MIMEType     string `json:"mimeType"`
	Size         int64  `json:"size"`
	FileURL      string `json:"fileUrl"`
	ViewURL      string `json:"viewUrl"`
}

type deleteResponse struct {
	UniqueName  string `json:"uniqueName"`
	BlobDeleted bool   `json:"blobDeleted"`
}

func NewUploadHandler(baseURL string, uploadLimit int64, srv AssetService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "UploadHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, uploadLimit)

		file, header, err := r.FormFile(fileField)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "no file in request")

			return
		}
		defer file.Close()

		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" {
			mimeType = mimeTypeUnknown
		}

		a, err := srv.Upload(r.Context(), header.Filename, mimeType, file)
		if err != nil {
			log.Error("Cannot upload file", slog.String("original_name", header.Filename), slog.Any("error", err))

			// Minted names collide only when entropy runs dry; still worth
			// its own status so it is never mistaken for a storage fault.
			if errors.Is(err, common.ErrAssetExistsError) {
				writeJSONError(w, http.StatusConflict, "name collision, retry upload")

				return
			}

			writeJSONError(w, http.StatusInternalServerError, "cannot store file")

			return
		}

		fileURL := fmt.Sprintf("%s/%s", baseURL, a.UniqueName)

		writeJSON(w, http.StatusCreated, uploadResponse{
			UniqueName:   a.UniqueName,
			OriginalName: a.OriginalName,
			MIMEType:     a.MIMEType,
			Size:         a.Size,
			FileURL:      fileURL,
			ViewURL:      fileURL + "?view=true",
		})
	}
}

// NewServeHandler serves one asset. With view=true it counts a view and
// renders the detail page; otherwise it counts a download and streams the
// blob. The counter update precedes the transfer.
func NewServeHandler(rnd *renderer, baseURL string, srv AssetService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ServeHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		if r.URL.Query().Get("view") == "true" {
			a, err := srv.View(r.Context(), name)
			if err != nil {
				if errors.Is(err, common.ErrAssetNotFoundError) {
					rnd.notFound(w)

					return
				}

				log.Error("Cannot view asset", slog.String("name", name), slog.Any("error", err))
				http.Error(w, "Cannot get asset", http.StatusInternalServerError)

				return
			}

			rnd.render(w, http.StatusOK, "view.html", struct {
				Asset   *entity.Asset
				FileURL string
			}{Asset: a, FileURL: fmt.Sprintf("%s/%s", baseURL, a.UniqueName)})

			return
		}

		a, blob, err := srv.Download(r.Context(), name)
		if err != nil {
			if errors.Is(err, common.ErrAssetNotFoundError) {
				rnd.notFound(w)

				return
			}

			log.Error("Cannot download asset", slog.String("name", name), slog.Any("error", err))
			http.Error(w, "Cannot get asset", http.StatusInternalServerError)

			return
		}
		defer blob.Close()

		w.Header().Set("Content-Type", a.MIMEType)
		w.Header().Set("Content-Disposition", disposition(a))

		http.ServeContent(w, r, "", a.UploadedAt, blob)
	}
}

func NewRecentHandler(srv AssetService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "RecentHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		assets, err := srv.Recent(r.Context())
		if err != nil {
			log.Error("Cannot list recent assets", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "cannot list assets")

			return
		}

		writeJSON(w, http.StatusOK, assets)
	}
}

func NewSearchHandler(srv AssetService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "SearchHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		assets, err := srv.Search(r.Context(), r.URL.Query().Get("q"))
		if err != nil {
			if errors.Is(err, common.ErrEmptyQueryError) {
				writeJSONError(w, http.StatusBadRequest, "query parameter q is required")

				return
			}

			log.Error("Cannot search assets", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "cannot search assets")

			return
		}

		writeJSON(w, http.StatusOK, assets)
	}
}

func NewListHandler(srv AssetService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "ListHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		// Non-numeric values fall through to the service defaults.
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		window, err := srv.Page(r.Context(), page, limit)
		if err != nil {
			log.Error("Cannot list assets", slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "cannot list assets")

			return
		}

		writeJSON(w, http.StatusOK, window)
	}
}

func NewDeleteHandler(srv AssetService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "DeleteHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		a, blobDeleted, err := srv.Delete(r.Context(), name)
		if err != nil {
			if errors.Is(err, common.ErrAssetNotFoundError) {
				writeJSONError(w, http.StatusNotFound, "asset not found")

				return
			}

			log.Error("Cannot delete asset", slog.String("name", name), slog.Any("error", err))
			writeJSONError(w, http.StatusInternalServerError, "cannot delete asset")

			return
		}

		writeJSON(w, http.StatusOK, deleteResponse{
			UniqueName:  a.UniqueName,
			BlobDeleted: blobDeleted,
		})
	}
}

func NewBrowseHandler(rnd *renderer, notices NoticeLoader, srv AssetService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "BrowseHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		assets, err := srv.Recent(r.Context())
		if err != nil {
			log.Error("Cannot list recent assets", slog.Any("error", err))
			http.Error(w, "Cannot list assets", http.StatusInternalServerError)

			return
		}

		n, err := notices.Load()
		if err != nil {
			log.Error("Cannot load notice", slog.Any("error", err))
		}

		rnd.render(w, http.StatusOK, "browse.html", struct {
			Notice *notice.Notice
			Assets []*entity.Asset
		}{Notice: n, Assets: assets})
	}
}

func NewStatusHandler(started time.Time, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)

		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "online",
			"uptime":     time.Since(started).Round(time.Second).String(),
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]string{
				"alloc": fmt.Sprintf("%.2f MB", float64(ms.Alloc)/1024/1024),
				"sys":   fmt.Sprintf("%.2f MB", float64(ms.Sys)/1024/1024),
			},
			"goVersion": runtime.Version(),
		})
	}
}

// disposition picks inline for media the browser can show and attachment for
// everything else, suggesting the original name for the save dialog.
func disposition(a *entity.Asset) string {
	dtype := "attachment"
	for _, prefix := range []string{"image/", "video/", "audio/"} {
		if strings.HasPrefix(a.MIMEType, prefix) {
			dtype = "inline"

			break
		}
	}

	return mime.FormatMediaType(dtype, map[string]string{"filename": a.OriginalName})
}
