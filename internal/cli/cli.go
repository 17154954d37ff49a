// Package cli holds the start-up plumbing shared by the binaries under cmd/.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/diamondburned/arikawa/v3/state"

	"libdb.so/fogo-faucet/internal/config"
	"libdb.so/fogo-faucet/internal/members"
	"libdb.so/fogo-faucet/internal/roles"
)

// Usage installs a flag.Usage that prints the command synopsis followed by the
// environment variables the command reads.
func Usage(synopsis string, env ...string) {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage:\n  %s\n\n", synopsis)

		hasFlags := false
		flag.VisitAll(func(*flag.Flag) { hasFlags = true })
		if hasFlags {
			fmt.Fprintf(out, "Flags:\n")
			flag.PrintDefaults()
			fmt.Fprintf(out, "\n")
		}

		if len(env) > 0 {
			fmt.Fprintf(out, "Environment Variables:\n")
			for i := 0; i+1 < len(env); i += 2 {
				fmt.Fprintf(out, "  $%-24s %s\n", env[i], env[i+1])
			}
		}
	}
}

// Main runs run with a context canceled on interrupt and exits with its
// status code.
func Main(run func(ctx context.Context) int) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx)
	cancel()
	os.Exit(code)
}

// Load loads the configuration and installs the default logger at the
// configured level.
func Load() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	SetLogger(os.Stderr, cfg.Log)
	return cfg, nil
}

// SetLogger installs a text slog handler writing to w as the default logger.
func SetLogger(w io.Writer, cfg config.LogConfig) {
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})))
}

// ExitCode logs err and maps it to a process exit code. Missing configuration
// is reported as a usage problem.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.Is(err, config.ErrMissing) {
		slog.Error(
			"This command is missing required configuration.",
			"err", err)
		return 1
	}
	slog.Error(
		"This command has failed.",
		"err", err)
	return 1
}

// RoleTool is a role Runner bound to the configured guild.
type RoleTool struct {
	*roles.Runner
	State *state.State
	Guild *roles.DiscordGuild
}

// OpenRoleTool creates a RoleTool for the configured guild. The state is used
// over REST only; members are fetched on demand by the resolver.
func OpenRoleTool(ctx context.Context, cfg *config.Config) (*RoleTool, error) {
	if err := cfg.RequireGuild(); err != nil {
		return nil, err
	}

	s := state.New(cfg.Discord.BotToken())

	guild, err := s.WithContext(ctx).Guild(cfg.Discord.GuildID)
	if err != nil {
		return nil, fmt.Errorf("fetch guild %v: %w", cfg.Discord.GuildID, err)
	}

	slog.Info(
		"Connected to the guild.",
		"guild_id", guild.ID,
		"guild_name", guild.Name)

	g := &roles.DiscordGuild{State: s, GuildID: cfg.Discord.GuildID}
	resolver := members.NewResolver(&members.GuildSource{State: s, GuildID: cfg.Discord.GuildID})
	limiter := roles.NewLimiter(cfg.Roles.Rate, cfg.Roles.Burst)

	return &RoleTool{
		Runner: roles.NewRunner(g, resolver, limiter, slog.Default()),
		State:  s,
		Guild:  g,
	}, nil
}

// PrintList prints a titled bullet list to w. Empty lists print nothing.
func PrintList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", title)
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

// RoleExitCode is ExitCode for role operations. A missing role is reported
// together with the roles that do exist and is not a failure of the command.
func RoleExitCode(w io.Writer, err error) int {
	var notFound *roles.RoleNotFoundError
	if errors.As(err, &notFound) {
		fmt.Fprintf(w, "❌ Role %q not found in the server.\n", notFound.Name)
		PrintList(w, "Available roles:", notFound.Available)
		return 0
	}
	return ExitCode(err)
}

// PrintAssignReport prints the summary of an assignment run.
func PrintAssignReport(w io.Writer, r roles.AssignReport) {
	name := r.Role.Name
	fmt.Fprintln(w, "\nSUMMARY:")
	fmt.Fprintf(w, "✅ Successfully assigned %q role: %d\n", name, len(r.Success))
	fmt.Fprintf(w, "ℹ️  Already had %q role: %d\n", name, len(r.AlreadyHasRole))
	fmt.Fprintf(w, "⚠️  Users not found in server: %d\n", len(r.NotFound))
	fmt.Fprintf(w, "❌ Errors: %d\n", len(r.Errors))

	PrintList(w, "✅ Successfully assigned role to:", r.Success)
	PrintList(w, "ℹ️  Already had role:", r.AlreadyHasRole)
	PrintList(w, "⚠️  Users not found in server:", r.NotFound)
	PrintList(w, "❌ Users with errors:", r.Errors)
}
