package registrations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omc-club/registration/internal/audit"
	"github.com/omc-club/registration/internal/eligibility"
	"github.com/omc-club/registration/internal/middleware"
	"github.com/omc-club/registration/internal/models"
	"github.com/omc-club/registration/pkg/response"
	"github.com/omc-club/registration/pkg/storage"
)

// Messages pinned by the admin tooling that consumes this API.
const (
	msgUpdated      = "Registration updated successfully"
	msgUserNotFound = "User not found in registration database"
	msgNoExport     = "No registrations to export"
)

// Store is the slice of the repository the admin handler needs.
type Store interface {
	Get(ctx context.Context, discordID string) (*models.Registration, error)
	ModifyField(ctx context.Context, discordID, field, value string) error
	Remove(ctx context.Context, discordID string) error
	Stats(ctx context.Context) (*models.Stats, error)
	ExportCSV(ctx context.Context, path string) (int, error)
}

// HealthChecker is the connectivity probe surface for the db ping route.
type HealthChecker interface {
	EnsureConnection(ctx context.Context)
	Ping(ctx context.Context) error
}

// Handler exposes admin operations over stored registrations.
type Handler struct {
	store   Store
	audit   audit.Recorder
	db      HealthChecker
	s3      *storage.S3
	csvPath string
	logger  *zap.Logger
}

// NewHandler creates a registrations admin handler. s3 may be nil; exports
// then stay on local disk only.
func NewHandler(store Store, rec audit.Recorder, db HealthChecker, s3 *storage.S3, csvPath string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, audit: rec, db: db, s3: s3, csvPath: csvPath, logger: logger}
}

func (h *Handler) record(c *gin.Context, action, details string) {
	entry := models.AdminAction{
		Action:    action,
		AdminID:   c.GetString(middleware.ContextActorID),
		AdminName: c.GetString(middleware.ContextDisplayName),
		Details:   details,
	}
	if err := h.audit.Record(c.Request.Context(), entry); err != nil {
		h.logger.Warn("audit write failed", zap.String("action", action), zap.Error(err))
	}
}

// Get handles GET /admin/registrations/:id.
func (h *Handler) Get(c *gin.Context) {
	reg, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, msgUserNotFound)
		return
	}
	if err != nil {
		h.logger.Error("get registration failed", zap.Error(err))
		response.Internal(c, "failed to load registration")
		return
	}
	response.OK(c, reg)
}

// Modify handles PATCH /admin/registrations/:id. The value is validated by
// the shared field validators before the column update.
func (h *Handler) Modify(c *gin.Context) {
	var req struct {
		Field string `json:"field" binding:"required"`
		Value string `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "field and value required")
		return
	}
	if msg := eligibility.ValidateField(req.Field, req.Value); msg != "" {
		response.BadRequest(c, msg)
		return
	}

	discordID := c.Param("id")
	err := h.store.ModifyField(c.Request.Context(), discordID, req.Field, req.Value)
	var invalid *InvalidFieldError
	switch {
	case errors.As(err, &invalid):
		response.BadRequest(c, invalid.Error())
	case errors.Is(err, ErrNotFound):
		response.NotFound(c, msgUserNotFound)
	case err != nil:
		h.logger.Error("modify field failed", zap.String("field", req.Field), zap.Error(err))
		response.Internal(c, "failed to update registration")
	default:
		h.record(c, models.ActionModifyRegistration,
			"Changed "+req.Field+" for "+discordID)
		response.OK(c, gin.H{"message": msgUpdated})
	}
}

// Delete handles DELETE /admin/registrations/:id. Requires confirm:true in
// the body; deletion is irreversible.
func (h *Handler) Delete(c *gin.Context) {
	var req struct {
		Confirm bool `json:"confirm"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
		response.BadRequest(c, "confirmation required: pass {\"confirm\": true}")
		return
	}
	discordID := c.Param("id")
	err := h.store.Remove(c.Request.Context(), discordID)
	if errors.Is(err, ErrNotFound) {
		response.NotFound(c, msgUserNotFound)
		return
	}
	if err != nil {
		h.logger.Error("delete registration failed", zap.Error(err))
		response.Internal(c, "failed to delete registration")
		return
	}
	h.record(c, models.ActionDeleteRegistration, "Deleted registration for "+discordID)
	response.OK(c, gin.H{"message": "Registration deleted"})
}

// Stats handles GET /admin/stats. Read-only, not audited.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.store.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("stats failed", zap.Error(err))
		response.Internal(c, "failed to load stats")
		return
	}
	response.OK(c, stats)
}

// Export handles POST /admin/export: CSV to the configured path, newest
// first, optionally pushed to S3 with a presigned download URL.
func (h *Handler) Export(c *gin.Context) {
	count, err := h.store.ExportCSV(c.Request.Context(), h.csvPath)
	if errors.Is(err, ErrNoRegistrations) {
		response.OK(c, gin.H{"exported": 0, "message": msgNoExport})
		return
	}
	if err != nil {
		h.logger.Error("export failed", zap.Error(err))
		response.Internal(c, "failed to export registrations")
		return
	}

	out := gin.H{"exported": count, "path": h.csvPath}
	if h.s3 != nil {
		if url, err := h.uploadExport(c.Request.Context()); err != nil {
			h.logger.Warn("export upload failed", zap.Error(err))
		} else {
			out["download_url"] = url
		}
	}
	h.record(c, models.ActionExportCSV, fmt.Sprintf("Exported %d registrations", count))
	response.OK(c, out)
}

func (h *Handler) uploadExport(ctx context.Context) (string, error) {
	f, err := os.Open(h.csvPath)
	if err != nil {
		return "", err
	}
	defer f.Close()
	key := storage.ExportKey(time.Now())
	if err := h.s3.UploadExport(ctx, key, f); err != nil {
		return "", err
	}
	return h.s3.PresignDownload(ctx, key)
}

// DBPing handles GET /admin/db/ping: the ensure-connection probe.
func (h *Handler) DBPing(c *gin.Context) {
	h.db.EnsureConnection(c.Request.Context())
	if err := h.db.Ping(c.Request.Context()); err != nil {
		response.ServiceUnavailable(c, "database unreachable")
		return
	}
	response.OK(c, gin.H{"database": "ok"})
}
