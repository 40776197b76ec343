package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omc-club/registration/internal/models"
	"github.com/omc-club/registration/internal/platform"
	"github.com/omc-club/registration/pkg/queue"
)

type memRecorder struct {
	mu      sync.Mutex
	actions []models.AdminAction
}

func (m *memRecorder) Record(ctx context.Context, a models.AdminAction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.actions = append(m.actions, a)
	return nil
}

type memResults struct {
	mu      sync.Mutex
	results map[string]models.BulkResult
}

func newMemResults() *memResults {
	return &memResults{results: make(map[string]models.BulkResult)}
}

func (m *memResults) Set(ctx context.Context, r models.BulkResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[r.JobID] = r
	return nil
}

func (m *memResults) Get(ctx context.Context, jobID string) (*models.BulkResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.results[jobID]
	if !ok {
		return nil, ErrResultNotFound
	}
	return &r, nil
}

func bulkJob(t *testing.T, payload queue.BulkActionPayload) *queue.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &queue.Job{ID: "job-1", Type: queue.JobTypeBulkAction, Payload: raw}
}

func TestRoleGrantTallies(t *testing.T) {
	gw := platform.NewFake(
		platform.Member{ID: "m1"},
		platform.Member{ID: "m2", RoleIDs: []string{"role-x"}},
		platform.Member{ID: "m3"},
		platform.Member{ID: "m4"},
	)
	gw.FailRole["m3"] = errors.New("rate limited")
	rec := &memRecorder{}
	results := newMemResults()
	p := NewBulkProcessor(gw, rec, nil, results, nil)

	job := bulkJob(t, queue.BulkActionPayload{
		Action:      models.BulkActionRoleGrant,
		RoleID:      "role-x",
		MemberIDs:   []string{"m1", "m2", "m3", "m4"},
		AuditAction: models.ActionAssignNotRenewed,
		AdminID:     "admin",
		AdminName:   "Admin",
	})
	require.NoError(t, p.Process(context.Background(), job))

	result, err := results.Get(context.Background(), "job-1")
	require.NoError(t, err)
	// m3's failure did not abort the batch: m4 was still processed
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.AlreadyHad)
	assert.Equal(t, 1, result.Errors)
	require.Len(t, result.ErrorNotes, 1)
	assert.Contains(t, result.ErrorNotes[0], "m3")

	m1, err := gw.GetMember(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, m1.HasRole("role-x"))

	require.Len(t, rec.actions, 1)
	assert.Equal(t, models.ActionAssignNotRenewed, rec.actions[0].Action)
	assert.Equal(t, "Assigned: 2, Already had: 1, Errors: 1", rec.actions[0].Details)
}

func TestKickTallies(t *testing.T) {
	gw := platform.NewFake(
		platform.Member{ID: "m1"},
		platform.Member{ID: "m2"},
		platform.Member{ID: "m3"},
	)
	gw.FailKick["m2"] = errors.New("missing permissions")
	rec := &memRecorder{}
	results := newMemResults()
	p := NewBulkProcessor(gw, rec, nil, results, nil)

	job := bulkJob(t, queue.BulkActionPayload{
		Action:      models.BulkActionKick,
		KickReason:  "Failed to complete club registration within deadline",
		MemberIDs:   []string{"m1", "m2", "m3"},
		AuditAction: models.ActionDeadlineEnforce,
		AdminID:     "admin",
		AdminName:   "Admin",
	})
	require.NoError(t, p.Process(context.Background(), job))

	result, err := results.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, []string{"m1", "m3"}, gw.Kicked)

	require.Len(t, rec.actions, 1)
	assert.Equal(t, "Kicked: 2, Errors: 1", rec.actions[0].Details)
}

func TestRoleGrantMemberLeft(t *testing.T) {
	gw := platform.NewFake(platform.Member{ID: "m1"})
	rec := &memRecorder{}
	results := newMemResults()
	p := NewBulkProcessor(gw, rec, nil, results, nil)

	job := bulkJob(t, queue.BulkActionPayload{
		Action:      models.BulkActionRoleGrant,
		RoleID:      "role-x",
		MemberIDs:   []string{"gone", "m1"},
		AuditAction: models.ActionAssignUnverified,
	})
	require.NoError(t, p.Process(context.Background(), job))

	result, err := results.Get(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Errors)
	assert.Contains(t, result.ErrorNotes[0], "left the guild")
}

func TestProcessRejectsUnknownJobType(t *testing.T) {
	p := NewBulkProcessor(platform.NewFake(), &memRecorder{}, nil, newMemResults(), nil)
	err := p.Process(context.Background(), &queue.Job{ID: "j", Type: "email"})
	assert.Error(t, err)
}
