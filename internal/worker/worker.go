// Package worker processes bulk membership jobs: role grants and deadline
// kicks, executed strictly sequentially with per-member failure tallies.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/omc-club/registration/internal/audit"
	"github.com/omc-club/registration/internal/models"
	"github.com/omc-club/registration/internal/platform"
	"github.com/omc-club/registration/pkg/queue"
)

// BulkProcessor executes bulk membership jobs. Members are processed one at a
// time so counts stay accurate and a single rate-limit error cannot corrupt
// the whole batch's accounting.
type BulkProcessor struct {
	gateway platform.Gateway
	audit   audit.Recorder
	queue   *queue.Queue
	results ResultStore
	logger  *zap.Logger
}

// NewBulkProcessor creates a bulk action processor.
func NewBulkProcessor(gateway platform.Gateway, rec audit.Recorder, q *queue.Queue, results ResultStore, logger *zap.Logger) *BulkProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BulkProcessor{gateway: gateway, audit: rec, queue: q, results: results, logger: logger}
}

// Process executes one bulk action job.
func (p *BulkProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeBulkAction {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.BulkActionPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	result := models.BulkResult{
		JobID:  job.ID,
		Action: payload.Action,
		Status: models.JobStatusCompleted,
	}
	for _, memberID := range payload.MemberIDs {
		switch payload.Action {
		case models.BulkActionRoleGrant:
			p.grantRole(ctx, payload, memberID, &result)
		case models.BulkActionKick:
			p.kick(ctx, payload, memberID, &result)
		default:
			return fmt.Errorf("unknown bulk action: %s", payload.Action)
		}
	}
	result.CompletedAt = time.Now()

	if err := p.audit.Record(ctx, models.AdminAction{
		Action:    payload.AuditAction,
		AdminID:   payload.AdminID,
		AdminName: payload.AdminName,
		Details:   auditDetails(payload.Action, result),
	}); err != nil {
		p.logger.Warn("audit write failed", zap.String("job_id", job.ID), zap.Error(err))
	}
	if err := p.results.Set(ctx, result); err != nil {
		p.logger.Error("result write failed", zap.String("job_id", job.ID), zap.Error(err))
	}

	p.logger.Info("bulk job completed",
		zap.String("job_id", job.ID),
		zap.String("action", payload.Action),
		zap.Int("processed", result.Processed),
		zap.Int("already_had", result.AlreadyHad),
		zap.Int("errors", result.Errors))
	return nil
}

// grantRole grants one role, skipping members who already hold it. One
// member's failure is tallied and the batch continues.
func (p *BulkProcessor) grantRole(ctx context.Context, payload queue.BulkActionPayload, memberID string, result *models.BulkResult) {
	member, err := p.gateway.GetMember(ctx, memberID)
	if err != nil {
		result.Errors++
		result.ErrorNotes = append(result.ErrorNotes, memberID+": "+err.Error())
		return
	}
	if member == nil {
		result.Errors++
		result.ErrorNotes = append(result.ErrorNotes, memberID+": left the guild")
		return
	}
	if member.HasRole(payload.RoleID) {
		result.AlreadyHad++
		return
	}
	if err := p.gateway.AddRole(ctx, memberID, payload.RoleID); err != nil {
		result.Errors++
		result.ErrorNotes = append(result.ErrorNotes, memberID+": "+err.Error())
		return
	}
	result.Processed++
}

func (p *BulkProcessor) kick(ctx context.Context, payload queue.BulkActionPayload, memberID string, result *models.BulkResult) {
	if err := p.gateway.Kick(ctx, memberID, payload.KickReason); err != nil {
		result.Errors++
		result.ErrorNotes = append(result.ErrorNotes, memberID+": "+err.Error())
		return
	}
	result.Processed++
}

func auditDetails(action string, result models.BulkResult) string {
	if action == models.BulkActionKick {
		return fmt.Sprintf("Kicked: %d, Errors: %d", result.Processed, result.Errors)
	}
	return fmt.Sprintf("Assigned: %d, Already had: %d, Errors: %d",
		result.Processed, result.AlreadyHad, result.Errors)
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *BulkProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("bulk worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
