package members

import (
	"context"
	"errors"
	"fmt"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/diamondburned/arikawa/v3/state/store"
)

// GuildSource is a Source over an arikawa state.
type GuildSource struct {
	State   *state.State
	GuildID discord.GuildID
}

var _ Source = (*GuildSource)(nil)

func (g *GuildSource) CachedMembers(ctx context.Context) ([]discord.Member, error) {
	ms, err := g.State.Cabinet.Members(g.GuildID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cached members: %w", err)
	}
	return ms, nil
}

func (g *GuildSource) MemberCount(ctx context.Context) (int, error) {
	guild, err := g.State.WithContext(ctx).GuildWithCount(g.GuildID)
	if err != nil {
		return 0, fmt.Errorf("fetch guild %v: %w", g.GuildID, err)
	}
	return int(guild.ApproximateMembers), nil
}

// RefreshMembers fetches every member through the REST API and stores them in
// the state's cabinet.
func (g *GuildSource) RefreshMembers(ctx context.Context) ([]discord.Member, error) {
	ms, err := g.State.WithContext(ctx).Client.Members(g.GuildID, 0)
	if err != nil {
		return nil, fmt.Errorf("fetch members of %v: %w", g.GuildID, err)
	}
	for i := range ms {
		if err := g.State.Cabinet.MemberSet(g.GuildID, &ms[i], false); err != nil {
			return nil, fmt.Errorf("cache member %v: %w", ms[i].User.ID, err)
		}
	}
	return ms, nil
}
