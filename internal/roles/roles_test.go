package roles

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libdb.so/fogo-faucet/internal/members"
)

const (
	testRole      discord.RoleID = 100
	pyronautsRole discord.RoleID = 200
	teamRole      discord.RoleID = 300
)

type fakeGuild struct {
	roles   []discord.Role
	members []discord.Member
	added   []discord.UserID
	removed []discord.UserID
	failFor discord.UserID
}

func newFakeGuild() *fakeGuild {
	return &fakeGuild{
		roles: []discord.Role{
			{ID: 1, Name: "@everyone"},
			{ID: testRole, Name: "test"},
			{ID: pyronautsRole, Name: "Pyronauts"},
			{ID: teamRole, Name: "Pyron Team"},
			{ID: 400, Name: "Some Bot", Managed: true},
		},
		members: []discord.Member{
			{User: discord.User{ID: 1, Username: "alice"}, RoleIDs: []discord.RoleID{testRole}},
			{User: discord.User{ID: 2, Username: "bob"}},
			{User: discord.User{ID: 3, Username: "carol"}, RoleIDs: []discord.RoleID{testRole, pyronautsRole}},
			{User: discord.User{ID: 4, Username: "dave"}, RoleIDs: []discord.RoleID{pyronautsRole}},
			{User: discord.User{ID: 5, Username: "erin"}},
		},
	}
}

func (g *fakeGuild) Roles(context.Context) ([]discord.Role, error) { return g.roles, nil }

func (g *fakeGuild) AddRole(_ context.Context, userID discord.UserID, roleID discord.RoleID) error {
	if userID == g.failFor {
		return errors.New("403 Missing Permissions")
	}
	g.added = append(g.added, userID)
	return nil
}

func (g *fakeGuild) RemoveRole(_ context.Context, userID discord.UserID, roleID discord.RoleID) error {
	if userID == g.failFor {
		return errors.New("403 Missing Permissions")
	}
	g.removed = append(g.removed, userID)
	return nil
}

func (g *fakeGuild) AllMembers(context.Context) ([]discord.Member, error) { return g.members, nil }

// fakeResolver resolves exact usernames; "broken" resolves to an error.
type fakeResolver struct{ guild *fakeGuild }

func (r fakeResolver) Resolve(_ context.Context, handle string) members.Result {
	if handle == "broken" {
		return members.Result{Status: members.Error, Err: errors.New("gateway timeout")}
	}
	for _, m := range r.guild.members {
		if strings.EqualFold(m.User.Username, handle) {
			return members.Result{Status: members.Found, Member: m}
		}
	}
	return members.Result{Status: members.NotFound}
}

func newRunner(g *fakeGuild) *Runner {
	return NewRunner(g, fakeResolver{g}, NewLimiter(1000, 100), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFindRole(t *testing.T) {
	r := newRunner(newFakeGuild())

	role, err := r.FindRole(context.Background(), "PYRONAUTS")
	require.NoError(t, err)
	assert.Equal(t, pyronautsRole, role.ID)

	_, err = r.FindRole(context.Background(), "moderators")
	require.ErrorIs(t, err, ErrRoleNotFound)

	var notFound *RoleNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, []string{"test", "Pyronauts", "Pyron Team"}, notFound.Available)
}

func TestCheck(t *testing.T) {
	r := newRunner(newFakeGuild())

	report, err := r.Check(context.Background(), "test",
		[]string{"alice", "bob", "alice", "carol", "zed", "broken"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "carol"}, report.HasRole)
	assert.Equal(t, []string{"bob"}, report.MissingRole)
	assert.Equal(t, []string{"zed"}, report.NotFound)
	assert.Equal(t, []string{"broken"}, report.Errors)
}

func TestCheckMissingRole(t *testing.T) {
	_, err := newRunner(newFakeGuild()).Check(context.Background(), "nope", []string{"alice"})
	assert.ErrorIs(t, err, ErrRoleNotFound)
}

func TestAssign(t *testing.T) {
	g := newFakeGuild()
	g.failFor = 5
	r := newRunner(g)

	report, err := r.Assign(context.Background(), "test",
		[]string{"alice", "bob", "dave", "erin", "zed", "bob"})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob", "dave"}, report.Success)
	assert.Equal(t, []string{"alice"}, report.AlreadyHasRole)
	assert.Equal(t, []string{"zed"}, report.NotFound)
	assert.Equal(t, []string{"erin"}, report.Errors)
	assert.Equal(t, []discord.UserID{2, 4}, g.added)
}

func TestRemove(t *testing.T) {
	g := newFakeGuild()
	r := newRunner(g)

	report, err := r.Remove(context.Background(), "Pyronauts",
		[]string{"carol", "dave", "alice", "zed"})
	require.NoError(t, err)
	assert.Equal(t, []string{"carol", "dave"}, report.Success)
	assert.Equal(t, []string{"alice"}, report.AlreadyNoRole)
	assert.Equal(t, []string{"zed"}, report.NotFound)
	assert.Equal(t, []discord.UserID{3, 4}, g.removed)
}

func TestOverlap(t *testing.T) {
	r := newRunner(newFakeGuild())

	report, err := r.Overlap(context.Background(), "test", "Pyronauts")
	require.NoError(t, err)
	assert.Equal(t, []string{"carol"}, report.Both)
	assert.Equal(t, []string{"alice"}, report.AOnly)
	assert.Equal(t, []string{"dave"}, report.BOnly)
	assert.Equal(t, []string{"bob", "erin"}, report.Neither)
	assert.Equal(t, 5, report.Total())
	assert.Equal(t, 2, report.HoldersA())
	assert.Equal(t, 2, report.HoldersB())
	assert.InDelta(t, 40.0, Percent(report.HoldersA(), report.Total()), 0.001)
	assert.InDelta(t, 50.0, Percent(len(report.Both), report.HoldersA()), 0.001)
	assert.Zero(t, Percent(1, 0))
}

func TestAssignFromCSV(t *testing.T) {
	g := newFakeGuild()
	r := newRunner(g)

	report, err := r.AssignFromCSV(context.Background(), "test", "Pyronauts",
		[]string{"carol", "dave", "bob", "alice", "zed"})
	require.NoError(t, err)
	require.NotNil(t, report.Secondary)
	assert.Equal(t, []string{"dave", "bob"}, report.Success)
	assert.Equal(t, []string{"carol", "alice"}, report.AlreadyHasRole)
	assert.Equal(t, 1, report.BothExisting, "carol")
	assert.Equal(t, 1, report.BothNew, "dave")
	assert.Equal(t, []string{"zed"}, report.NotFound)
}

func TestAssignFromCSVWithoutSecondaryRole(t *testing.T) {
	g := newFakeGuild()
	g.roles = slices.DeleteFunc(g.roles, func(r discord.Role) bool { return r.ID == pyronautsRole })
	r := newRunner(g)

	report, err := r.AssignFromCSV(context.Background(), "test", "Pyronauts", []string{"dave"})
	require.NoError(t, err)
	assert.Nil(t, report.Secondary)
	assert.Equal(t, []string{"dave"}, report.Success)
	assert.Zero(t, report.BothNew)
}

func TestAssignStopsOnCancel(t *testing.T) {
	g := newFakeGuild()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newRunner(g).Assign(ctx, "test", []string{"bob"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, g.added)
}

func TestUnique(t *testing.T) {
	assert.Equal(t,
		[]string{"a", "b", "A"},
		Unique([]string{"a", " b ", "", "a", "A", "b"}))
}
