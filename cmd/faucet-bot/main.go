package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"

	"libdb.so/fogo-faucet/internal/cli"
	"libdb.so/fogo-faucet/internal/config"
	"libdb.so/fogo-faucet/internal/cooldown"
	"libdb.so/fogo-faucet/internal/discordbot"
	"libdb.so/fogo-faucet/internal/faucet"
	"libdb.so/fogo-faucet/internal/ledger"
	"libdb.so/fogo-faucet/internal/metrics"
	"libdb.so/fogo-faucet/internal/store"
)

var (
	dryRun = flag.Bool("dry-run", false, "serve the test faucet: simulate transfers instead of sending them")
	check  = flag.Bool("check", false, "print a configuration self-check and exit")
)

func init() {
	cli.Usage("faucet-bot [-dry-run] [-check]",
		"DISCORD_TOKEN", "the bot token",
		"TARGET_CHANNEL_ID", "the faucet channel",
		"FOGO_RPC_URL", "the ledger RPC endpoint",
		"BOT_WALLET_PRIVATE_KEY", "the custodial wallet's base58 secret key",
		"FOGO_TOKEN_MINT", "the mint whose balance is checked",
		"FAUCET_AMOUNT", "the amount sent per request (default 0.1)",
		"BALANCE_THRESHOLD", "the balance that counts as funded (default 0.1)",
		"COOLDOWN", "the time between two requests (default 24h)",
		"BYPASS_ROLE_NAME", "the role that skips the cooldown (default Pyron Team)",
		"STORE_DRIVER", "badger, sqlite or redis (default badger)",
		"DATABASE_PATH", "the cooldown database path",
		"TEST_DATABASE_PATH", "the cooldown database path in dry-run mode",
		"REDIS_URL", "the cooldown Redis URL",
		"METRICS_ADDR", "the Prometheus listen address, empty to disable",
		"LOG_LEVEL", "debug, info, warn or error",
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

	if *check {
		return preflight(cfg)
	}

	if err := cfg.RequireDiscord(); err != nil {
		return cli.ExitCode(err)
	}
	if err := cfg.RequireLedger(); err != nil {
		return cli.ExitCode(err)
	}
	if !*dryRun {
		if err := cfg.RequireCustody(); err != nil {
			return cli.ExitCode(err)
		}
	}

	rpcClient := ledger.Dial(cfg.Ledger.RPCURL)

	var mint solana.PublicKey
	if !cfg.Ledger.IsNative() {
		mint, err = solana.PublicKeyFromBase58(cfg.Ledger.TokenMint)
		if err != nil {
			slog.Error(
				"Bot could not parse $FOGO_TOKEN_MINT.",
				"mint", cfg.Ledger.TokenMint,
				"err", err)
			return 1
		}
	}
	oracle := ledger.NewOracle(rpcClient, mint, cfg.Faucet.BalanceThreshold)

	var transferer faucet.Transferer
	if *dryRun {
		transferer = new(ledger.DryRun)
		slog.Warn("Bot is running in dry-run mode. No tokens will be transferred.")
	} else {
		wallet, err := ledger.NewWallet(rpcClient, cfg.Ledger.PrivateKey)
		if err != nil {
			slog.Error(
				"Bot could not load the custodial wallet.",
				"err", err)
			return 1
		}
		transferer = wallet
		slog.Info(
			"Bot has loaded the custodial wallet.",
			"wallet", wallet.PublicKey())
	}

	storeCfg := cfg.Store
	if *dryRun {
		storeCfg = storeCfg.DryRun()
	}

	requests, err := store.Open(ctx, storeCfg)
	if err != nil {
		slog.Error(
			"Bot could not open the cooldown store. It will not be able to function.",
			"driver", storeCfg.Driver,
			"err", err)
		return 1
	}
	defer func() {
		if err := requests.Close(); err != nil {
			slog.Warn(
				"Bot has failed to close the cooldown store.",
				"err", err)
		}
	}()

	tracker := cooldown.NewTracker(requests, cfg.Faucet.Cooldown)

	f := faucet.New(faucet.Deps{
		Cooldown:   tracker,
		Oracle:     oracle,
		Transferer: transferer,
		Amount:     cfg.Faucet.Amount,
		Threshold:  cfg.Faucet.BalanceThreshold,
		BypassRole: cfg.Faucet.BypassRoleName,
		DryRun:     *dryRun,
		Logger:     slog.Default(),
	})

	variant := discordbot.MainVariant
	if *dryRun {
		variant = discordbot.TestVariant
	}

	gatewayID := gateway.DefaultIdentifier(cfg.Discord.BotToken())
	gatewayID.Properties = gateway.IdentifyProperties{
		OS:      runtime.GOOS,
		Browser: "Arikawa",
		Device:  settings.Device,
	}
	presence := settings.Presence
	gatewayID.Presence = &presence

	session := state.NewWithIdentifier(gatewayID)

	bot := discordbot.New(session, f, discordbot.Config{
		ChannelID: cfg.Discord.TargetChannelID,
		Variant:   variant,
		Terms: discordbot.Terms{
			Amount:   f.Amount(),
			Cooldown: tracker.Window(),
		},
		Timeout: settings.InteractionTimeout,
		Logger:  slog.Default(),
	})

	slog.Info(
		"This bot is starting.",
		"channel_id", cfg.Discord.TargetChannelID,
		"variant", variant.Name,
		"amount", f.Amount(),
		"cooldown", tracker.Window(),
		"native", oracle.Native())

	errg, ctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		errg.Go(func() error {
			return metrics.Serve(ctx, cfg.MetricsAddr, slog.Default())
		})
	}

	errg.Go(func() error {
		return discordbot.Run(ctx, session, bot)
	})

	if err := errg.Wait(); err != nil {
		// Try to extract the cause of the cancellation, if any.
		if cause := context.Cause(ctx); cause != nil && cause != ctx.Err() {
			err = cause
		}

		if errors.Is(err, context.Canceled) {
			slog.Info("Bot has been shut down.")
			return 0
		}

		slog.Error(
			"Bot has been stopped.",
			"err", err)
		return 1
	}

	return 0
}

func preflight(cfg *config.Config) int {
	items := cfg.Preflight()

	fmt.Println("FOGO faucet bot self-check")
	fmt.Println()
	for _, item := range items {
		fmt.Println(" ", item)
	}
	fmt.Println()

	if !config.PreflightOK(items) {
		fmt.Println("Some checks failed. Copy .env.example to .env and fill in every required variable.")
		return 1
	}

	fmt.Println("All checks passed. Start the bot with:")
	fmt.Println("  faucet-bot")
	fmt.Println("Or serve the test faucet with:")
	fmt.Println("  faucet-bot -dry-run")
	fmt.Printf("\nThe bot will target channel %s.\n", cfg.Discord.TargetChannelID)
	return 0
}
