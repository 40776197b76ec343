package platform

import (
	"context"
	"fmt"
	"sync"
)

// Fake is an in-memory Gateway for tests and local development. FailRole and
// FailKick inject per-member errors so batch accounting can be exercised.
type Fake struct {
	mu       sync.Mutex
	members  map[string]*Member
	order    []string
	Rank     int
	FailRole map[string]error
	FailKick map[string]error
	Kicked   []string
}

// NewFake creates a fake gateway seeded with members.
func NewFake(members ...Member) *Fake {
	f := &Fake{
		members:  make(map[string]*Member),
		FailRole: make(map[string]error),
		FailKick: make(map[string]error),
		Rank:     100,
	}
	for i := range members {
		m := members[i]
		f.members[m.ID] = &m
		f.order = append(f.order, m.ID)
	}
	return f
}

// ListMembers returns members in insertion order.
func (f *Fake) ListMembers(ctx context.Context) ([]Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Member, 0, len(f.order))
	for _, id := range f.order {
		if m, ok := f.members[id]; ok {
			out = append(out, *m)
		}
	}
	return out, nil
}

// GetMember returns a member or nil.
func (f *Fake) GetMember(ctx context.Context, id string) (*Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

// AddRole grants a role, honoring injected failures.
func (f *Fake) AddRole(ctx context.Context, memberID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.FailRole[memberID]; ok {
		return err
	}
	m, ok := f.members[memberID]
	if !ok {
		return fmt.Errorf("member not found: %s", memberID)
	}
	if !m.HasRole(roleID) {
		m.RoleIDs = append(m.RoleIDs, roleID)
	}
	return nil
}

// Kick removes a member, honoring injected failures.
func (f *Fake) Kick(ctx context.Context, memberID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.FailKick[memberID]; ok {
		return err
	}
	if _, ok := f.members[memberID]; !ok {
		return fmt.Errorf("member not found: %s", memberID)
	}
	delete(f.members, memberID)
	f.Kicked = append(f.Kicked, memberID)
	return nil
}

// AgentRank returns the configured rank.
func (f *Fake) AgentRank(ctx context.Context) (int, error) {
	return f.Rank, nil
}
