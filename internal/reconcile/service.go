package reconcile

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omc-club/registration/internal/eligibility"
	"github.com/omc-club/registration/internal/models"
	"github.com/omc-club/registration/internal/platform"
	"github.com/omc-club/registration/pkg/queue"
)

// RegisteredIDs is the slice of the persistence layer reconciliation needs.
type RegisteredIDs interface {
	RegisteredIDs(ctx context.Context) (map[string]struct{}, error)
}

// BulkQueue enqueues bulk membership jobs.
type BulkQueue interface {
	EnqueueBulkAction(ctx context.Context, payload queue.BulkActionPayload) (string, error)
}

// MemberRef is the compact member view returned in reports.
type MemberRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// SkippedRef is one skipped member with its reason.
type SkippedRef struct {
	MemberRef
	Reason string `json:"reason"`
}

// StatusReport is the unregistered-by-category view.
type StatusReport struct {
	RegisteredTotal int         `json:"registered_total"`
	RenewalCount    int         `json:"renewal_count"`
	NewCount        int         `json:"new_count"`
	Renewal         []MemberRef `json:"renewal"`
	New             []MemberRef `json:"new"`
}

// KickPreview is the read-only result of a kick dry run, actionable only
// through its confirmation token.
type KickPreview struct {
	Token    string       `json:"token"`
	Kickable []MemberRef  `json:"kickable"`
	Skipped  []SkippedRef `json:"skipped"`
}

// Service classifies the roster and enqueues bulk actions. Classification is
// always computed fresh from the live roster and the live registered-ID set.
type Service struct {
	repo         RegisteredIDs
	gateway      platform.Gateway
	queue        BulkQueue
	confirms     ConfirmStore
	excluded     eligibility.RoleSet
	existingTeam eligibility.RoleSet
	notRenewed   string
	unverified   string
	logger       *zap.Logger
}

// NewService creates the reconciliation service.
func NewService(repo RegisteredIDs, gateway platform.Gateway, q BulkQueue, confirms ConfirmStore,
	excluded, existingTeam eligibility.RoleSet, notRenewedRole, unverifiedRole string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:         repo,
		gateway:      gateway,
		queue:        q,
		confirms:     confirms,
		excluded:     excluded,
		existingTeam: existingTeam,
		notRenewed:   notRenewedRole,
		unverified:   unverifiedRole,
		logger:       logger,
	}
}

func (s *Service) buckets(ctx context.Context) (Buckets, int, error) {
	registered, err := s.repo.RegisteredIDs(ctx)
	if err != nil {
		return Buckets{}, 0, fmt.Errorf("load registered ids: %w", err)
	}
	members, err := s.gateway.ListMembers(ctx)
	if err != nil {
		return Buckets{}, 0, fmt.Errorf("list members: %w", err)
	}
	return Classify(members, registered, s.excluded, s.existingTeam), len(registered), nil
}

func refs(members []platform.Member) []MemberRef {
	out := make([]MemberRef, len(members))
	for i, m := range members {
		out[i] = MemberRef{ID: m.ID, DisplayName: m.DisplayName}
	}
	return out
}

func ids(members []platform.Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.ID
	}
	return out
}

// Status returns the unregistered-by-category report.
func (s *Service) Status(ctx context.Context) (*StatusReport, error) {
	b, total, err := s.buckets(ctx)
	if err != nil {
		return nil, err
	}
	return &StatusReport{
		RegisteredTotal: total,
		RenewalCount:    len(b.Renewal),
		NewCount:        len(b.New),
		Renewal:         refs(b.Renewal),
		New:             refs(b.New),
	}, nil
}

// AssignNotRenewed enqueues a role grant for the renewal bucket. Returns the
// job ID and the bucket size; a zero size means everyone registered and no
// job was enqueued.
func (s *Service) AssignNotRenewed(ctx context.Context, adminID, adminName string) (string, int, error) {
	b, _, err := s.buckets(ctx)
	if err != nil {
		return "", 0, err
	}
	if len(b.Renewal) == 0 {
		return "", 0, nil
	}
	jobID, err := s.queue.EnqueueBulkAction(ctx, queue.BulkActionPayload{
		Action:      models.BulkActionRoleGrant,
		RoleID:      s.notRenewed,
		MemberIDs:   ids(b.Renewal),
		AuditAction: models.ActionAssignNotRenewed,
		AdminID:     adminID,
		AdminName:   adminName,
	})
	return jobID, len(b.Renewal), err
}

// AssignUnverified enqueues a role grant for the new bucket.
func (s *Service) AssignUnverified(ctx context.Context, adminID, adminName string) (string, int, error) {
	b, _, err := s.buckets(ctx)
	if err != nil {
		return "", 0, err
	}
	if len(b.New) == 0 {
		return "", 0, nil
	}
	jobID, err := s.queue.EnqueueBulkAction(ctx, queue.BulkActionPayload{
		Action:      models.BulkActionRoleGrant,
		RoleID:      s.unverified,
		MemberIDs:   ids(b.New),
		AuditAction: models.ActionAssignUnverified,
		AdminID:     adminID,
		AdminName:   adminName,
	})
	return jobID, len(b.New), err
}

// PreviewKicks computes the kickable subset of the new bucket and parks the
// exact list under a single-use confirmation token. Nothing is kicked here.
func (s *Service) PreviewKicks(ctx context.Context) (*KickPreview, error) {
	b, _, err := s.buckets(ctx)
	if err != nil {
		return nil, err
	}
	agentRank, err := s.gateway.AgentRank(ctx)
	if err != nil {
		return nil, fmt.Errorf("agent rank: %w", err)
	}
	kickable, skipped := FilterKickable(b.New, agentRank)

	preview := &KickPreview{
		Token:    uuid.New().String(),
		Kickable: refs(kickable),
	}
	for _, sk := range skipped {
		preview.Skipped = append(preview.Skipped, SkippedRef{
			MemberRef: MemberRef{ID: sk.Member.ID, DisplayName: sk.Member.DisplayName},
			Reason:    sk.Reason,
		})
	}
	if len(kickable) > 0 {
		if err := s.confirms.Put(ctx, preview.Token, ids(kickable)); err != nil {
			return nil, fmt.Errorf("store pending kicks: %w", err)
		}
	}
	return preview, nil
}

// ConfirmKicks consumes a confirmation token and enqueues the kick job for
// the previewed list. The token is single-use and expires with its TTL.
func (s *Service) ConfirmKicks(ctx context.Context, token, adminID, adminName string) (string, int, error) {
	memberIDs, err := s.confirms.Take(ctx, token)
	if err != nil {
		return "", 0, err
	}
	jobID, err := s.queue.EnqueueBulkAction(ctx, queue.BulkActionPayload{
		Action:      models.BulkActionKick,
		KickReason:  KickReason,
		MemberIDs:   memberIDs,
		AuditAction: models.ActionDeadlineEnforce,
		AdminID:     adminID,
		AdminName:   adminName,
	})
	return jobID, len(memberIDs), err
}
