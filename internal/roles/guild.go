package roles

import (
	"context"

	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/state"
)

// auditReason is attached to every role change in the guild's audit log.
const auditReason api.AuditLogReason = "fogo-faucet role tooling"

// DiscordGuild is a Guild over an arikawa state. Discord's rate limit
// headers are honored by the state's HTTP client on top of the Limiter.
type DiscordGuild struct {
	State   *state.State
	GuildID discord.GuildID
}

var _ Guild = (*DiscordGuild)(nil)

func (g *DiscordGuild) Roles(ctx context.Context) ([]discord.Role, error) {
	return g.State.WithContext(ctx).Roles(g.GuildID)
}

func (g *DiscordGuild) AddRole(ctx context.Context, userID discord.UserID, roleID discord.RoleID) error {
	return g.State.WithContext(ctx).AddRole(g.GuildID, userID, roleID, api.AddRoleData{
		AuditLogReason: auditReason,
	})
}

func (g *DiscordGuild) RemoveRole(ctx context.Context, userID discord.UserID, roleID discord.RoleID) error {
	return g.State.WithContext(ctx).RemoveRole(g.GuildID, userID, roleID, auditReason)
}

func (g *DiscordGuild) AllMembers(ctx context.Context) ([]discord.Member, error) {
	return g.State.WithContext(ctx).Client.Members(g.GuildID, 0)
}
