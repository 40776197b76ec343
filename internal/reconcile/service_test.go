package reconcile

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omc-club/registration/internal/eligibility"
	"github.com/omc-club/registration/internal/models"
	"github.com/omc-club/registration/internal/platform"
	"github.com/omc-club/registration/pkg/queue"
)

type fakeRegistered map[string]struct{}

func (f fakeRegistered) RegisteredIDs(ctx context.Context) (map[string]struct{}, error) {
	return f, nil
}

type fakeQueue struct {
	mu       sync.Mutex
	payloads []queue.BulkActionPayload
}

func (f *fakeQueue) EnqueueBulkAction(ctx context.Context, p queue.BulkActionPayload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, p)
	return "job-1", nil
}

type fakeConfirms struct {
	mu      sync.Mutex
	pending map[string][]string
}

func newFakeConfirms() *fakeConfirms {
	return &fakeConfirms{pending: make(map[string][]string)}
}

func (f *fakeConfirms) Put(ctx context.Context, token string, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending[token] = ids
	return nil
}

func (f *fakeConfirms) Take(ctx context.Context, token string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids, ok := f.pending[token]
	if !ok {
		return nil, ErrTokenExpired
	}
	delete(f.pending, token)
	return ids, nil
}

func newTestReconcile(gw platform.Gateway, registered fakeRegistered) (*Service, *fakeQueue, *fakeConfirms) {
	q := &fakeQueue{}
	confirms := newFakeConfirms()
	svc := NewService(registered, gw, q, confirms,
		eligibility.NewRoleSet([]string{"alumni"}),
		eligibility.NewRoleSet([]string{"team-it"}),
		"role-not-renewed", "role-unverified", nil)
	return svc, q, confirms
}

func TestStatusReport(t *testing.T) {
	gw := platform.NewFake(
		platform.Member{ID: "m1", DisplayName: "One", RoleIDs: []string{"team-it"}},
		platform.Member{ID: "m2", DisplayName: "Two"},
		platform.Member{ID: "m3", DisplayName: "Three", RoleIDs: []string{"alumni"}},
		platform.Member{ID: "m4", DisplayName: "Four"},
	)
	svc, _, _ := newTestReconcile(gw, fakeRegistered{"m4": {}})

	report, err := svc.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.RegisteredTotal)
	assert.Equal(t, 1, report.RenewalCount)
	assert.Equal(t, 1, report.NewCount)
	assert.Equal(t, "m1", report.Renewal[0].ID)
	assert.Equal(t, "m2", report.New[0].ID)
}

func TestAssignNotRenewedEnqueuesRenewalBucket(t *testing.T) {
	gw := platform.NewFake(
		platform.Member{ID: "m1", RoleIDs: []string{"team-it"}},
		platform.Member{ID: "m2"},
	)
	svc, q, _ := newTestReconcile(gw, fakeRegistered{})

	jobID, count, err := svc.AssignNotRenewed(context.Background(), "admin", "Admin")
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, 1, count)

	require.Len(t, q.payloads, 1)
	p := q.payloads[0]
	assert.Equal(t, models.BulkActionRoleGrant, p.Action)
	assert.Equal(t, "role-not-renewed", p.RoleID)
	assert.Equal(t, []string{"m1"}, p.MemberIDs)
	assert.Equal(t, models.ActionAssignNotRenewed, p.AuditAction)
}

func TestAssignUnverifiedEmptyBucketEnqueuesNothing(t *testing.T) {
	gw := platform.NewFake(platform.Member{ID: "m1", RoleIDs: []string{"team-it"}})
	svc, q, _ := newTestReconcile(gw, fakeRegistered{})

	jobID, count, err := svc.AssignUnverified(context.Background(), "admin", "Admin")
	require.NoError(t, err)
	assert.Empty(t, jobID)
	assert.Zero(t, count)
	assert.Empty(t, q.payloads)
}

func TestPreviewThenConfirmKicks(t *testing.T) {
	gw := platform.NewFake(
		platform.Member{ID: "m1", DisplayName: "One", Rank: 1},
		platform.Member{ID: "m2", DisplayName: "Bot", Bot: true, Rank: 1},
		platform.Member{ID: "m3", DisplayName: "Boss", Rank: 200},
	)
	gw.Rank = 100
	svc, q, _ := newTestReconcile(gw, fakeRegistered{})

	preview, err := svc.PreviewKicks(context.Background())
	require.NoError(t, err)
	require.Len(t, preview.Kickable, 1)
	assert.Equal(t, "m1", preview.Kickable[0].ID)
	require.Len(t, preview.Skipped, 2)
	assert.NotEmpty(t, preview.Token)
	// preview is read-only
	assert.Empty(t, q.payloads)

	jobID, count, err := svc.ConfirmKicks(context.Background(), preview.Token, "admin", "Admin")
	require.NoError(t, err)
	assert.Equal(t, "job-1", jobID)
	assert.Equal(t, 1, count)

	require.Len(t, q.payloads, 1)
	p := q.payloads[0]
	assert.Equal(t, models.BulkActionKick, p.Action)
	assert.Equal(t, KickReason, p.KickReason)
	assert.Equal(t, []string{"m1"}, p.MemberIDs)
	assert.Equal(t, models.ActionDeadlineEnforce, p.AuditAction)

	// single use
	_, _, err = svc.ConfirmKicks(context.Background(), preview.Token, "admin", "Admin")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestConfirmKicksUnknownToken(t *testing.T) {
	gw := platform.NewFake()
	svc, _, _ := newTestReconcile(gw, fakeRegistered{})

	_, _, err := svc.ConfirmKicks(context.Background(), "nope", "admin", "Admin")
	assert.ErrorIs(t, err, ErrTokenExpired)
}
