package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omc-club/registration/internal/eligibility"
	"github.com/omc-club/registration/internal/platform"
)

func TestClassifyPartition(t *testing.T) {
	excluded := eligibility.NewRoleSet([]string{"alumni"})
	existingTeam := eligibility.NewRoleSet([]string{"team-it", "team-design"})

	members := []platform.Member{
		{ID: "m1", RoleIDs: []string{"team-it"}},
		{ID: "m2", RoleIDs: []string{"team-design", "gamer"}},
		{ID: "m3"},
		{ID: "m4", RoleIDs: []string{"gamer"}},
		{ID: "m5", RoleIDs: []string{"member"}},
		{ID: "m6", RoleIDs: []string{"alumni", "team-it"}},
		{ID: "m7", RoleIDs: []string{"team-it"}}, // already registered
	}
	registered := map[string]struct{}{"m7": {}}

	b := Classify(members, registered, excluded, existingTeam)

	require.Len(t, b.Renewal, 2)
	require.Len(t, b.New, 3)
	assert.Equal(t, "m1", b.Renewal[0].ID)
	assert.Equal(t, "m2", b.Renewal[1].ID)

	// the excluded member lands in neither bucket
	for _, m := range append(b.Renewal, b.New...) {
		assert.NotEqual(t, "m6", m.ID)
		assert.NotEqual(t, "m7", m.ID)
	}
}

func TestClassifyEmptyRoster(t *testing.T) {
	b := Classify(nil, nil, eligibility.NewRoleSet(nil), eligibility.NewRoleSet(nil))
	assert.Empty(t, b.Renewal)
	assert.Empty(t, b.New)
}

func TestFilterKickable(t *testing.T) {
	members := []platform.Member{
		{ID: "m1", Rank: 1},
		{ID: "m2", Bot: true, Rank: 1},
		{ID: "m3", Admin: true, Rank: 1},
		{ID: "m4", Rank: 10}, // equal to agent rank
		{ID: "m5", Rank: 50}, // above agent rank
		{ID: "m6", Rank: 2},
	}

	kickable, skipped := FilterKickable(members, 10)

	require.Len(t, kickable, 2)
	assert.Equal(t, "m1", kickable[0].ID)
	assert.Equal(t, "m6", kickable[1].ID)

	require.Len(t, skipped, 4)
	reasons := map[string]string{}
	for _, s := range skipped {
		reasons[s.Member.ID] = s.Reason
	}
	assert.Equal(t, SkipReasonBot, reasons["m2"])
	assert.Equal(t, SkipReasonAdmin, reasons["m3"])
	assert.Equal(t, SkipReasonHigherRole, reasons["m4"])
	assert.Equal(t, SkipReasonHigherRole, reasons["m5"])
}
