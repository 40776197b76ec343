package flow

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omc-club/registration/internal/middleware"
	"github.com/omc-club/registration/internal/models"
	"github.com/omc-club/registration/internal/registrations"
	"github.com/omc-club/registration/pkg/response"
)

// User-facing messages for flow outcomes.
const (
	msgAlreadyRegistered = "You have already registered. Only one registration per member is allowed."
	msgExpired           = "Your registration session is no longer valid. Please start over."
	msgNoSession         = "No active registration session. Please start from the beginning."
	msgWrongStage        = "Please complete the previous step first."
	msgUnavailable       = "Could not save your registration. Please try again."
)

// Handler exposes the flow over HTTP for the platform gateway to drive.
type Handler struct {
	svc    *Service
	logger *zap.Logger
}

// NewHandler creates a flow handler.
func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{svc: svc, logger: logger}
}

// Panel handles POST /admin/panel: the registration panel descriptor the
// gateway renders in the community channel.
func (h *Handler) Panel(c *gin.Context) {
	response.OK(c, gin.H{
		"title":       "Re-Registration",
		"description": "Did you enjoy your time last year at OMC? Let's have another great year together!",
		"footer":      "Complete all fields to finalize your registration",
		"teams":       models.TeamOptions,
	})
}

// BasicInfo handles POST /flow/basic-info.
func (h *Handler) BasicInfo(c *gin.Context) {
	var in BasicInfo
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	actorID := c.GetString(middleware.ContextActorID)
	displayName := c.GetString(middleware.ContextDisplayName)
	if err := h.svc.SubmitBasicInfo(c.Request.Context(), actorID, displayName, in); err != nil {
		h.flowError(c, err)
		return
	}
	response.OK(c, gin.H{"stage": StageBasicInfo})
}

// ContactInfo handles POST /flow/contact-info.
func (h *Handler) ContactInfo(c *gin.Context) {
	var in ContactInfo
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	actorID := c.GetString(middleware.ContextActorID)
	if err := h.svc.SubmitContactInfo(c.Request.Context(), actorID, in); err != nil {
		h.flowError(c, err)
		return
	}
	response.OK(c, gin.H{"stage": StageContactInfo})
}

// Team handles POST /flow/team: the final commit.
func (h *Handler) Team(c *gin.Context) {
	var in struct {
		Team string `json:"team"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, "invalid request body")
		return
	}
	actorID := c.GetString(middleware.ContextActorID)
	reg, err := h.svc.SubmitTeam(c.Request.Context(), actorID, in.Team)
	if err != nil {
		h.flowError(c, err)
		return
	}
	response.Created(c, gin.H{
		"message":      "Registration complete. Welcome to the " + reg.Team + " team!",
		"registration": reg,
	})
}

// Cancel handles POST /flow/cancel.
func (h *Handler) Cancel(c *gin.Context) {
	h.svc.Cancel(c.GetString(middleware.ContextActorID))
	response.OK(c, gin.H{"message": "Registration cancelled."})
}

// Session handles GET /flow/session for re-rendering the current stage.
func (h *Handler) Session(c *gin.Context) {
	sess, err := h.svc.Session(c.GetString(middleware.ContextActorID))
	if err != nil {
		h.flowError(c, err)
		return
	}
	response.OK(c, gin.H{"stage": sess.Stage, "started_at": sess.StartedAt})
}

// flowError maps service errors to user-visible outcomes. Internal detail is
// logged in the service, never echoed to members.
func (h *Handler) flowError(c *gin.Context, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "validation failed",
			"errors":  ve.Errors,
		})
	case errors.Is(err, ErrNotEligible):
		response.Forbidden(c, ErrNotEligible.Error())
	case errors.Is(err, registrations.ErrAlreadyRegistered):
		response.Conflict(c, msgAlreadyRegistered)
	case errors.Is(err, ErrSessionExpired):
		response.Gone(c, msgExpired)
	case errors.Is(err, ErrNoSession):
		response.NotFound(c, msgNoSession)
	case errors.Is(err, ErrWrongStage):
		response.Conflict(c, msgWrongStage)
	case errors.Is(err, ErrUnavailable):
		response.ServiceUnavailable(c, msgUnavailable)
	default:
		h.logger.Error("unexpected flow error", zap.Error(err))
		response.Internal(c, "something went wrong")
	}
}
