package sessions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func twoSessions() []Session {
	return []Session{
		{
			ID: "s1", Theme: "pirates", MaxRounds: 5, PlayersCount: 2,
			Users: []Player{
				{UserID: "alice", IsReady: true, IsHost: true},
				{UserID: "bob"},
			},
		},
		{
			ID: "s2", Theme: "space", MaxRounds: 3, PlayersCount: 1,
			Users: []Player{{UserID: "carol", IsHost: true}},
		},
	}
}

func TestReduce_CreatedAppends(t *testing.T) {
	t.Parallel()

	got := Reduce(twoSessions(), Created{
		SessionID: "s3",
		Theme:     "noir",
		MaxRounds: 4,
		Users:     []Player{{UserID: "dave", IsHost: true}},
	})

	require.Len(t, got, 3)
	require.Equal(t, "s3", got[2].ID)
	require.Equal(t, "noir", got[2].Theme)
	require.Equal(t, 1, got[2].PlayersCount)
}

func TestReduce_UpdatePlayersReplacesUsersAndCount(t *testing.T) {
	t.Parallel()

	got := Reduce(twoSessions(), UpdatePlayers{
		SessionID: "s1",
		Users: []Player{
			{UserID: "alice", IsReady: true, IsHost: true},
			{UserID: "bob", IsReady: true},
			{UserID: "erin"},
		},
	})

	require.Equal(t, 3, got[0].PlayersCount)
	require.Len(t, got[0].Users, 3)
	require.True(t, got[0].Users[1].IsReady)
	// The other session is untouched.
	require.Equal(t, twoSessions()[1], got[1])
}

func TestReduce_UpdatePlayersUnknownIDIsNoOp(t *testing.T) {
	t.Parallel()

	before := twoSessions()
	got := Reduce(before, UpdatePlayers{
		SessionID: "missing",
		Users:     []Player{{UserID: "mallory"}},
	})
	require.Equal(t, before, got)
}

func TestReduce_StartedAndDeletedRemoveByID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		event Event
	}{
		{name: "started", event: Started{SessionID: "s1"}},
		{name: "deleted", event: Deleted{SessionID: "s1"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Reduce(twoSessions(), tt.event)
			require.Len(t, got, 1)
			require.Equal(t, "s2", got[0].ID)
		})
	}
}

func TestReduce_RemoveUnknownIDIsNoOp(t *testing.T) {
	t.Parallel()

	got := Reduce(twoSessions(), Deleted{SessionID: "missing"})
	require.Equal(t, twoSessions(), got)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	before := twoSessions()
	_ = Reduce(before, UpdatePlayers{SessionID: "s1", Users: nil})
	_ = Reduce(before, Deleted{SessionID: "s1"})
	require.Equal(t, twoSessions(), before)
}

func TestDirectory_SnapshotAndEvents(t *testing.T) {
	t.Parallel()

	d := NewDirectory()
	d.ReplaceAll(twoSessions())

	d.Apply(Created{SessionID: "s3", Theme: "noir", MaxRounds: 4, Users: []Player{{UserID: "dave"}}})
	d.Apply(Started{SessionID: "s2"})

	list := d.List()
	require.Len(t, list, 2)
	require.Equal(t, "s1", list[0].ID)
	require.Equal(t, "s3", list[1].ID)

	s, ok := d.ByID("s3")
	require.True(t, ok)
	require.Equal(t, "noir", s.Theme)

	_, ok = d.ByID("s2")
	require.False(t, ok)
}

func TestDirectory_MembershipFilters(t *testing.T) {
	t.Parallel()

	d := NewDirectory()
	d.ReplaceAll(twoSessions())

	withBob := d.WithUser("bob")
	require.Len(t, withBob, 1)
	require.Equal(t, "s1", withBob[0].ID)

	withoutBob := d.WithoutUser("bob")
	require.Len(t, withoutBob, 1)
	require.Equal(t, "s2", withoutBob[0].ID)
}

func TestDirectory_ListReturnsCopies(t *testing.T) {
	t.Parallel()

	d := NewDirectory()
	d.ReplaceAll(twoSessions())

	list := d.List()
	list[0].Theme = "mutated"

	fresh := d.List()
	require.Equal(t, "pirates", fresh[0].Theme)
}
