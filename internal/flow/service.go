package flow

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omc-club/registration/internal/audit"
	"github.com/omc-club/registration/internal/eligibility"
	"github.com/omc-club/registration/internal/models"
	"github.com/omc-club/registration/internal/platform"
	"github.com/omc-club/registration/internal/registrations"
)

var (
	// ErrNotEligible rejects actors holding an excluded role.
	ErrNotEligible = errors.New(eligibility.ReasonExcluded)
	// ErrNoSession means the actor has no form session to advance.
	ErrNoSession = errors.New("no active registration session")
	// ErrSessionExpired means the session sat inactive past the timeout.
	ErrSessionExpired = errors.New("registration session expired")
	// ErrWrongStage means the submission skipped a stage.
	ErrWrongStage = errors.New("previous step not completed")
	// ErrUnavailable means storage failed transiently; the caller may retry.
	ErrUnavailable = errors.New("storage temporarily unavailable")
)

// ValidationError carries the full list of field errors for one stage.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// Store is the slice of the persistence layer the flow needs.
type Store interface {
	IsRegistered(ctx context.Context, discordID string) (bool, error)
	Save(ctx context.Context, reg *models.Registration) error
}

// Service drives the three-stage form. Eligibility and registration status
// are re-queried live at every stage boundary: storage calls are suspension
// points, and another flow for the same actor may have committed in between.
// The storage uniqueness constraint stays the authoritative tie-breaker.
type Service struct {
	sessions *SessionStore
	store    Store
	gateway  platform.Gateway
	audit    audit.Recorder
	excluded eligibility.RoleSet
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates the flow service.
func NewService(sessions *SessionStore, store Store, gateway platform.Gateway, rec audit.Recorder, excluded eligibility.RoleSet, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sessions: sessions,
		store:    store,
		gateway:  gateway,
		audit:    rec,
		excluded: excluded,
		logger:   logger,
		now:      time.Now,
	}
}

// precheck re-runs both gate conditions live: eligibility by current roles,
// and not-already-registered straight from storage. Never cached.
func (s *Service) precheck(ctx context.Context, actorID string) error {
	member, err := s.gateway.GetMember(ctx, actorID)
	if err != nil {
		s.logger.Warn("member lookup failed", zap.String("actor_id", actorID), zap.Error(err))
		return ErrUnavailable
	}
	if member == nil {
		return ErrNotEligible
	}
	if ok, _ := eligibility.Check(member.RoleIDs, s.excluded); !ok {
		return ErrNotEligible
	}
	registered, err := s.store.IsRegistered(ctx, actorID)
	if err != nil {
		s.logger.Warn("registration check failed", zap.String("actor_id", actorID), zap.Error(err))
		return ErrUnavailable
	}
	if registered {
		return registrations.ErrAlreadyRegistered
	}
	return nil
}

// session fetches the actor's live session, distinguishing expiry from absence.
func (s *Service) session(actorID string) (Session, error) {
	sess, ok := s.sessions.Get(actorID)
	if !ok {
		return Session{}, ErrNoSession
	}
	if sess.Expired(s.now(), s.sessions.Timeout()) {
		s.sessions.Delete(actorID)
		return Session{}, ErrSessionExpired
	}
	return sess, nil
}

// SubmitBasicInfo handles Start -> BasicInfoCaptured. On validation failure
// every field complaint is reported at once and no session is created.
func (s *Service) SubmitBasicInfo(ctx context.Context, actorID, displayName string, in BasicInfo) error {
	if errs := in.Validate(); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	if err := s.precheck(ctx, actorID); err != nil {
		return err
	}
	s.sessions.Put(Begin(actorID, displayName, in, s.now()))
	return nil
}

// SubmitContactInfo handles BasicInfoCaptured -> ContactInfoCaptured,
// carrying the stage-1 fields forward and normalizing the phone number.
func (s *Service) SubmitContactInfo(ctx context.Context, actorID string, in ContactInfo) error {
	sess, err := s.session(actorID)
	if err != nil {
		return err
	}
	if sess.Stage != StageBasicInfo {
		return ErrWrongStage
	}
	if errs := in.Validate(); len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	if err := s.precheck(ctx, actorID); err != nil {
		return err
	}
	s.sessions.Put(sess.WithContactInfo(in, s.now()))
	return nil
}

// SubmitTeam handles ContactInfoCaptured -> Committed. Both gates are
// re-checked a third time immediately before the write; on a transient
// storage failure the session survives so the actor can retry the stage.
func (s *Service) SubmitTeam(ctx context.Context, actorID, team string) (*models.Registration, error) {
	sess, err := s.session(actorID)
	if err != nil {
		return nil, err
	}
	if sess.Stage != StageContactInfo {
		return nil, ErrWrongStage
	}
	if msg := eligibility.ValidateTeam(team); msg != "" {
		return nil, &ValidationError{Errors: []string{msg}}
	}
	if err := s.precheck(ctx, actorID); err != nil {
		if errors.Is(err, registrations.ErrAlreadyRegistered) {
			s.sessions.Delete(actorID)
		}
		return nil, err
	}

	reg := sess.Assemble(strings.TrimSpace(team), s.now())
	if err := s.store.Save(ctx, &reg); err != nil {
		if errors.Is(err, registrations.ErrAlreadyRegistered) {
			// lost the race at the constraint; this flow is terminal
			s.sessions.Delete(actorID)
			return nil, registrations.ErrAlreadyRegistered
		}
		s.logger.Error("registration save failed", zap.String("actor_id", actorID), zap.Error(err))
		return nil, ErrUnavailable
	}
	s.sessions.Delete(actorID)

	if err := s.audit.Record(ctx, models.AdminAction{
		Action:    models.ActionRegistration,
		AdminID:   actorID,
		AdminName: sess.DisplayName,
		Details:   "Registered for team " + reg.Team,
	}); err != nil {
		s.logger.Warn("audit write failed", zap.String("actor_id", actorID), zap.Error(err))
	}
	return &reg, nil
}

// Cancel discards the actor's session immediately.
func (s *Service) Cancel(actorID string) {
	s.sessions.Delete(actorID)
}

// Session returns the actor's live session for re-rendering.
func (s *Service) Session(actorID string) (Session, error) {
	return s.session(actorID)
}
