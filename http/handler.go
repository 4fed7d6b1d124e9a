package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sagarc03/bucketgate"
)

// multipart parts beyond this size are spooled to temporary files
const maxMemory = 32 << 20

type Service interface {
	Upload(ctx context.Context, owner string, req bucketgate.UploadRequest, body io.Reader) (bucketgate.UploadResult, error)
	PresignDownload(ctx context.Context, owner, rel string) (bucketgate.DownloadResult, error)
	Delete(ctx context.Context, owner, rel string) (string, error)
}

type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type HandlerConfig struct {
	Authenticator bucketgate.Authenticator
	CORS          CORSConfig
	MaxUploadSize int64    // bytes, 0 means unlimited
	Metrics       *Metrics // nil disables /metrics and instrumentation
}

// DownloadResponse is the body returned by GET /download.
type DownloadResponse struct {
	URL  string           `json:"Download your file here"`
	Tags []bucketgate.Tag `json:"Tags"`
}

// Handler provides HTTP handlers for the gateway operations.
type Handler struct {
	config  HandlerConfig
	service Service
}

// NewHandler creates a new Handler with the given configuration and service.
func NewHandler(config *HandlerConfig, service Service) *Handler {
	return &Handler{
		config:  *config,
		service: service,
	}
}

// Router returns an http.Handler with all routes configured.
// /healthz and /metrics are public; everything else requires Basic auth.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(middleware.Recoverer)

	if h.config.Metrics != nil {
		r.Use(h.config.Metrics.Middleware)
	}

	if h.config.CORS.Enabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   h.config.CORS.AllowedOrigins,
			AllowedMethods:   h.config.CORS.AllowedMethods,
			AllowedHeaders:   h.config.CORS.AllowedHeaders,
			ExposedHeaders:   h.config.CORS.ExposedHeaders,
			AllowCredentials: h.config.CORS.AllowCredentials,
			MaxAge:           h.config.CORS.MaxAge,
		}))
	}

	r.Get("/healthz", h.handleHealth)
	if h.config.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.config.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		r.Use(BasicAuthMiddleware(h.config.Authenticator, h.config.Metrics))
		r.Post("/upload", h.handleUpload)
		r.Get("/download", h.handleDownload)
		r.Delete("/delete", h.handleDelete)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	_ = WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	id, ok := bucketgate.IdentityFromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	if h.config.MaxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "FAILED: File too large")
			return
		}
		WriteError(w, http.StatusUnprocessableEntity, "file: field required")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "file: field required")
		return
	}
	defer func() { _ = file.Close() }()

	req := bucketgate.UploadRequest{
		Filename:    header.Filename,
		Path:        r.Header.Get("path"),
		ContentType: detectContentType(header),
		Size:        header.Size,
		Tag:         ParseAddInfo(r.Header.Values("addinfo")),
	}

	res, err := h.service.Upload(r.Context(), id.Username, req, file)
	if err != nil {
		HandleError(w, r, err)
		return
	}

	if res.TagErr != nil {
		slog.Warn("object stored without tag",
			"user", id.Username, "key", res.Key, "error", res.TagErr, "request_id", RequestIDFromContext(r.Context()))
	}

	slog.Info("object uploaded",
		"user", id.Username, "key", res.Key, "size", res.Size, "tagged", res.Tagged, "request_id", RequestIDFromContext(r.Context()))

	_ = WriteJSON(w, http.StatusCreated, "File upload OK. Use path reference to retrieve your file: "+res.Key)
}

func (h *Handler) handleDownload(w http.ResponseWriter, r *http.Request) {
	id, ok := bucketgate.IdentityFromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	if !r.URL.Query().Has("path") {
		WriteError(w, http.StatusUnprocessableEntity, "path: field required")
		return
	}

	res, err := h.service.PresignDownload(r.Context(), id.Username, r.URL.Query().Get("path"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	_ = WriteJSON(w, http.StatusOK, DownloadResponse{URL: res.URL, Tags: res.Tags})
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := bucketgate.IdentityFromContext(r.Context())
	if !ok {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	if !r.URL.Query().Has("path") {
		WriteError(w, http.StatusUnprocessableEntity, "path: field required")
		return
	}

	rel, err := h.service.Delete(r.Context(), id.Username, r.URL.Query().Get("path"))
	if err != nil {
		HandleError(w, r, err)
		return
	}

	slog.Info("object deleted", "user", id.Username, "key", rel, "request_id", RequestIDFromContext(r.Context()))

	_ = WriteJSON(w, http.StatusOK, "File deleted from path: "+rel)
}

// ParseAddInfo builds a tag from the addinfo header values. Repeated headers
// are taken in order; a single value is split on commas. The first two
// elements become key and value, and both must be non-empty.
func ParseAddInfo(values []string) *bucketgate.Tag {
	if len(values) == 1 {
		values = strings.Split(values[0], ",")
	}
	if len(values) < 2 {
		return nil
	}

	tag := bucketgate.Tag{Key: strings.TrimSpace(values[0]), Value: strings.TrimSpace(values[1])}
	if !tag.Valid() {
		return nil
	}
	return &tag
}

func detectContentType(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if ct != "" && ct != "application/octet-stream" {
		return ct
	}
	if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
		return byExt
	}
	if ct != "" {
		return ct
	}
	return "application/octet-stream"
}
