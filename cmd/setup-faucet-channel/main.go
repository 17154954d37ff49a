package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/state"

	"libdb.so/fogo-faucet/internal/cli"
)

func init() {
	cli.Usage("setup-faucet-channel",
		"DISCORD_TOKEN", "the bot token",
		"TARGET_CHANNEL_ID", "the faucet channel",
	)
}

func main() {
	flag.Parse()
	cli.Main(run)
}

func run(ctx context.Context) int {
	cfg, err := cli.Load()
	if err != nil {
		return cli.ExitCode(err)
	}
	if err := cfg.RequireDiscord(); err != nil {
		return cli.ExitCode(err)
	}

	s := state.New(cfg.Discord.BotToken()).WithContext(ctx)

	if err := inspect(os.Stdout, s, cfg.Discord.TargetChannelID); err != nil {
		return cli.ExitCode(err)
	}
	return 0
}

// inspector is implemented by *state.State.
type inspector interface {
	Me() (*discord.User, error)
	Channel(id discord.ChannelID) (*discord.Channel, error)
	Guild(id discord.GuildID) (*discord.Guild, error)
	Permissions(channelID discord.ChannelID, userID discord.UserID) (discord.Permissions, error)
}

var _ inspector = (*state.State)(nil)

var errCannotSend = errors.New("bot does not have permission to send messages in this channel")

func inspect(out io.Writer, s inspector, channelID discord.ChannelID) error {
	me, err := s.Me()
	if err != nil {
		return fmt.Errorf("fetch bot user: %w", err)
	}
	fmt.Fprintf(out, "Bot logged in as %s\n", me.Tag())

	ch, err := s.Channel(channelID)
	if err != nil {
		fmt.Fprintf(out, "❌ Channel %s not found\n", channelID)
		fmt.Fprintln(out, "Please make sure:")
		fmt.Fprintln(out, "1. The bot has access to the channel")
		fmt.Fprintln(out, "2. The channel ID is correct")
		fmt.Fprintln(out, "3. The bot has permission to send messages in the channel")
		return fmt.Errorf("fetch channel %s: %w", channelID, err)
	}

	fmt.Fprintf(out, "✅ Found channel: %s (%s)\n", ch.Name, ch.ID)
	fmt.Fprintf(out, "Channel type: %s\n", channelType(ch.Type))

	if ch.GuildID.IsValid() {
		if guild, err := s.Guild(ch.GuildID); err == nil {
			fmt.Fprintf(out, "Guild: %s\n", guild.Name)
		}
	}

	perms, err := s.Permissions(channelID, me.ID)
	if err != nil {
		return fmt.Errorf("compute permissions: %w", err)
	}

	if !perms.Has(discord.PermissionSendMessages) {
		fmt.Fprintln(out, "❌ Bot does not have permission to send messages in this channel")
		return errCannotSend
	}
	if !perms.Has(discord.PermissionUseExternalEmojis) {
		fmt.Fprintln(out, "⚠️  Bot may not be able to use custom emojis")
	}

	fmt.Fprintln(out, "✅ Bot has the necessary permissions")
	fmt.Fprintln(out, "\nSetup complete! The faucet bot will now:")
	fmt.Fprintf(out, "• Only respond to interactions in channel %s\n", channelID)
	fmt.Fprintln(out, "• Post a faucet message when it starts")
	fmt.Fprintln(out, "• Handle token requests from this channel only")
	return nil
}

func channelType(t discord.ChannelType) string {
	switch t {
	case discord.GuildText:
		return "text"
	case discord.GuildAnnouncement:
		return "announcement"
	case discord.GuildForum:
		return "forum"
	case discord.GuildVoice:
		return "voice"
	default:
		return fmt.Sprintf("type %d", t)
	}
}
