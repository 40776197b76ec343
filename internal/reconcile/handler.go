package reconcile

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omc-club/registration/internal/middleware"
	"github.com/omc-club/registration/internal/worker"
	"github.com/omc-club/registration/pkg/response"
)

// Handler exposes the reconciliation and bulk-action admin routes.
type Handler struct {
	svc     *Service
	results worker.ResultStore
	logger  *zap.Logger
}

// NewHandler creates a reconcile handler.
func NewHandler(svc *Service, results worker.ResultStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, results: results, logger: logger}
}

// Status handles GET /admin/status.
func (h *Handler) Status(c *gin.Context) {
	report, err := h.svc.Status(c.Request.Context())
	if err != nil {
		h.logger.Error("status report failed", zap.Error(err))
		response.Internal(c, "failed to build status report")
		return
	}
	response.OK(c, report)
}

func (h *Handler) assign(c *gin.Context, run func(ctx *gin.Context, adminID, adminName string) (string, int, error)) {
	adminID := c.GetString(middleware.ContextActorID)
	adminName := c.GetString(middleware.ContextDisplayName)
	jobID, count, err := run(c, adminID, adminName)
	if err != nil {
		h.logger.Error("bulk assign failed", zap.Error(err))
		response.Internal(c, "failed to start bulk action")
		return
	}
	if count == 0 {
		response.OK(c, gin.H{"message": "Everyone has registered. Nothing to do."})
		return
	}
	response.Accepted(c, gin.H{"job_id": jobID, "members": count})
}

// AssignNotRenewed handles POST /admin/roles/not-renewed.
func (h *Handler) AssignNotRenewed(c *gin.Context) {
	h.assign(c, func(c *gin.Context, adminID, adminName string) (string, int, error) {
		return h.svc.AssignNotRenewed(c.Request.Context(), adminID, adminName)
	})
}

// AssignUnverified handles POST /admin/roles/unverified.
func (h *Handler) AssignUnverified(c *gin.Context) {
	h.assign(c, func(c *gin.Context, adminID, adminName string) (string, int, error) {
		return h.svc.AssignUnverified(c.Request.Context(), adminID, adminName)
	})
}

// PreviewKicks handles POST /admin/kicks/preview: read-only dry run.
func (h *Handler) PreviewKicks(c *gin.Context) {
	preview, err := h.svc.PreviewKicks(c.Request.Context())
	if err != nil {
		h.logger.Error("kick preview failed", zap.Error(err))
		response.Internal(c, "failed to build kick preview")
		return
	}
	response.OK(c, preview)
}

// ConfirmKicks handles POST /admin/kicks/confirm: the irreversible step.
func (h *Handler) ConfirmKicks(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "confirmation token required")
		return
	}
	adminID := c.GetString(middleware.ContextActorID)
	adminName := c.GetString(middleware.ContextDisplayName)
	jobID, count, err := h.svc.ConfirmKicks(c.Request.Context(), req.Token, adminID, adminName)
	if errors.Is(err, ErrTokenExpired) {
		response.Gone(c, "Confirmation expired. Run the preview again.")
		return
	}
	if err != nil {
		h.logger.Error("kick confirm failed", zap.Error(err))
		response.Internal(c, "failed to start kick batch")
		return
	}
	response.Accepted(c, gin.H{"job_id": jobID, "members": count})
}

// JobStatus handles GET /admin/jobs/:id.
func (h *Handler) JobStatus(c *gin.Context) {
	result, err := h.results.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, worker.ErrResultNotFound) {
		response.NotFound(c, "no result for this job (unknown, still running, or expired)")
		return
	}
	if err != nil {
		h.logger.Error("job result lookup failed", zap.Error(err))
		response.Internal(c, "failed to load job result")
		return
	}
	response.OK(c, result)
}
