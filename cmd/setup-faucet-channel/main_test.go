package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeInspector struct {
	channelErr error
	perms      discord.Permissions
}

func (f fakeInspector) Me() (*discord.User, error) {
	return &discord.User{ID: 7, Username: "fogo-faucet"}, nil
}

func (f fakeInspector) Channel(id discord.ChannelID) (*discord.Channel, error) {
	if f.channelErr != nil {
		return nil, f.channelErr
	}
	return &discord.Channel{ID: id, GuildID: 3, Name: "faucet", Type: discord.GuildText}, nil
}

func (f fakeInspector) Guild(id discord.GuildID) (*discord.Guild, error) {
	return &discord.Guild{ID: id, Name: "Fogo"}, nil
}

func (f fakeInspector) Permissions(discord.ChannelID, discord.UserID) (discord.Permissions, error) {
	return f.perms, nil
}

func TestInspectReady(t *testing.T) {
	var out bytes.Buffer
	err := inspect(&out, fakeInspector{
		perms: discord.PermissionSendMessages | discord.PermissionUseExternalEmojis,
	}, 42)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Found channel: faucet (42)")
	assert.Contains(t, out.String(), "Channel type: text")
	assert.Contains(t, out.String(), "Guild: Fogo")
	assert.NotContains(t, out.String(), "custom emojis")
	assert.Contains(t, out.String(), "Setup complete!")
}

func TestInspectMissingEmojiPermissionWarns(t *testing.T) {
	var out bytes.Buffer
	err := inspect(&out, fakeInspector{perms: discord.PermissionSendMessages}, 42)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "may not be able to use custom emojis")
}

func TestInspectCannotSend(t *testing.T) {
	var out bytes.Buffer
	err := inspect(&out, fakeInspector{perms: discord.PermissionViewChannel}, 42)
	assert.ErrorIs(t, err, errCannotSend)
	assert.NotContains(t, out.String(), "Setup complete!")
}

func TestInspectChannelNotFound(t *testing.T) {
	var out bytes.Buffer
	err := inspect(&out, fakeInspector{channelErr: errors.New("404 Unknown Channel")}, 42)
	assert.Error(t, err)
	assert.Contains(t, out.String(), "Channel 42 not found")
}
