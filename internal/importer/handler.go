package importer

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mailom-erp/mailom-erp/internal/platform/httpx"
	"github.com/mailom-erp/mailom-erp/internal/rbac"
	"github.com/mailom-erp/mailom-erp/internal/shared"
)

const defaultMaxUploadBytes = 10 << 20

// Enqueuer submits import tasks to the background worker.
type Enqueuer interface {
	EnqueueExcelImport(ctx context.Context, path string, actorID int64) error
}

// Handler exposes the Excel import endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	enqueuer Enqueuer
	rbac     rbac.Middleware
	spoolDir string
	maxBytes int64
}

// NewHandler constructs the handler. enqueuer may be nil, which disables
// the async endpoint. maxBytes caps the upload size; zero means the default.
func NewHandler(logger *slog.Logger, service *Service, enqueuer Enqueuer, rbacMW rbac.Middleware, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = defaultMaxUploadBytes
	}
	return &Handler{
		logger:   logger,
		service:  service,
		enqueuer: enqueuer,
		rbac:     rbacMW,
		spoolDir: os.TempDir(),
		maxBytes: maxBytes,
	}
}

// MountRoutes registers the import endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(rbac.PermDataImport))
		r.Post("/import/excel", h.importExcel)
		r.Post("/import/excel/async", h.importExcelAsync)
	})
}

// importExcel parses an uploaded workbook. With ?dryRun=true it returns
// the plan without writing anything.
func (h *Handler) importExcel(w http.ResponseWriter, r *http.Request) {
	file, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	if r.URL.Query().Get("dryRun") == "true" {
		plan, err := h.service.Preview(r.Context(), file)
		if err != nil {
			httpx.Problem(w, http.StatusUnprocessableEntity, "import failed", err.Error())
			return
		}
		httpx.JSON(w, http.StatusOK, plan)
		return
	}

	result, err := h.service.Import(r.Context(), file, currentActor(r))
	if err != nil {
		httpx.Problem(w, http.StatusUnprocessableEntity, "import failed", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, result)
}

// importExcelAsync spools the upload to disk and hands it to the worker.
func (h *Handler) importExcelAsync(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "unavailable", "background import is not configured")
		return
	}
	file, ok := h.openUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	spooled, err := os.CreateTemp(h.spoolDir, "mailom-import-*.xlsx")
	if err != nil {
		h.logger.Error("spool import upload", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if _, err := spooled.ReadFrom(file); err != nil {
		_ = spooled.Close()
		_ = os.Remove(spooled.Name())
		h.logger.Error("spool import upload", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if err := spooled.Close(); err != nil {
		_ = os.Remove(spooled.Name())
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	if err := h.enqueuer.EnqueueExcelImport(r.Context(), spooled.Name(), currentActor(r)); err != nil {
		_ = os.Remove(spooled.Name())
		h.logger.Error("enqueue import", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]any{
		"status":   "queued",
		"file":     filepath.Base(spooled.Name()),
		"queuedAt": time.Now().UTC(),
	})
}

func (h *Handler) openUpload(w http.ResponseWriter, r *http.Request) (interface {
	Read([]byte) (int, error)
	Close() error
}, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid upload", "expected a multipart form with a file field")
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "invalid upload", "missing file field")
		return nil, false
	}
	return file, true
}

func currentActor(r *http.Request) int64 {
	return shared.ActorID(r.Context())
}
