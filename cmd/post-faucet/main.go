package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/state"

	"libdb.so/fogo-faucet/internal/cli"
	"libdb.so/fogo-faucet/internal/cooldown"
	"libdb.so/fogo-faucet/internal/discordbot"
)

const help = `FOGO faucet message poster

Usage: post-faucet [command] [channel_id]

Commands:
  main <channel_id>  Post the main faucet message with its button
  test <channel_id>  Post the test faucet message with its button
  help               Show this help message

Examples:
  post-faucet main 1234567890123456789
  post-faucet test 1234567890123456789

To get a channel ID:
  1. Enable Developer Mode in Discord
  2. Right-click on the channel
  3. Click "Copy Channel ID"
`

func init() {
	cli.Usage("post-faucet main|test|help <channel_id>",
		"DISCORD_TOKEN", "the bot token",
		"FAUCET_AMOUNT", "the amount shown in the post (default 0.1)",
		"COOLDOWN", "the cooldown shown in the post (default 24h)",
	)
}

func main() {
	flag.Parse()
	cli.Main(run)
}

func run(ctx context.Context) int {
	command := flag.Arg(0)

	variant, ok := discordbot.VariantByName(command)
	if !ok {
		fmt.Print(help)
		return 0
	}

	if flag.Arg(1) == "" {
		fmt.Println("Please provide a channel ID.")
		fmt.Printf("Usage: post-faucet %s <channel_id>\n", variant.Name)
		return 0
	}

	channelID, err := discord.ParseSnowflake(flag.Arg(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%q is not a channel ID: %v\n", flag.Arg(1), err)
		return 1
	}

	cfg, err := cli.Load()
	if err != nil {
		return cli.ExitCode(err)
	}
	if err := cfg.RequireDiscord(); err != nil {
		return cli.ExitCode(err)
	}

	s := state.New(cfg.Discord.BotToken()).WithContext(ctx)

	terms := discordbot.Terms{
		Amount:   cfg.Faucet.Amount,
		Cooldown: cfg.Faucet.Cooldown,
	}
	if terms.Cooldown == 0 {
		terms.Cooldown = cooldown.DefaultWindow
	}

	msg, err := discordbot.Post(s, discord.ChannelID(channelID), variant, terms)
	if err != nil {
		slog.Error(
			"Failed to post the faucet message.",
			"variant", variant.Name,
			"channel_id", channelID,
			"err", err)
		return 1
	}

	slog.Info(
		"Faucet message has been posted.",
		"variant", variant.Name,
		"channel_id", msg.ChannelID,
		"message_id", msg.ID)
	return 0
}
