package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"libdb.so/fogo-faucet/internal/cli"
	"libdb.so/fogo-faucet/internal/roles"
)

// listLimit caps the number of single-role holders printed.
const listLimit = 10

func init() {
	cli.Usage("check-role-overlap",
		"DISCORD_TOKEN", "the bot token",
		"GUILD_ID", "the guild to analyze",
		"ROLE_NAME", "the first role (default test)",
		"PYRONAUTS_ROLE", "the second role (default Pyronauts)",
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

	tool, err := cli.OpenRoleTool(ctx, cfg)
	if err != nil {
		return cli.ExitCode(err)
	}

	report, err := tool.Overlap(ctx, cfg.Roles.RoleName, cfg.Roles.PyronautsRole)
	if err != nil {
		return cli.RoleExitCode(os.Stdout, err)
	}

	printOverlap(os.Stdout, report)
	return 0
}

func printOverlap(w io.Writer, r roles.OverlapReport) {
	a, b := r.RoleA.Name, r.RoleB.Name
	total := r.Total()

	fmt.Fprintln(w, "ROLE ANALYSIS SUMMARY:")
	fmt.Fprintf(w, "🏆 Users with BOTH %q and %q roles: %d\n", a, b, len(r.Both))
	fmt.Fprintf(w, "✅ Users with %q role only: %d\n", a, len(r.AOnly))
	fmt.Fprintf(w, "🏆 Users with %q role only: %d\n", b, len(r.BOnly))
	fmt.Fprintf(w, "❌ Users with neither role: %d\n", len(r.Neither))
	fmt.Fprintf(w, "Total members analyzed: %d\n", total)

	fmt.Fprintln(w, "\nPERCENTAGES:")
	fmt.Fprintf(w, "%s role holders: %d (%.1f%%)\n", a, r.HoldersA(), roles.Percent(r.HoldersA(), total))
	fmt.Fprintf(w, "%s role holders: %d (%.1f%%)\n", b, r.HoldersB(), roles.Percent(r.HoldersB(), total))
	fmt.Fprintf(w, "Overlap (both roles): %d (%.1f%%)\n", len(r.Both), roles.Percent(len(r.Both), total))
	if r.HoldersA() > 0 {
		fmt.Fprintf(w, "Of %s holders, %.1f%% also have the %s role\n", a, roles.Percent(len(r.Both), r.HoldersA()), b)
	}

	cli.PrintList(w, "🏆 Users with BOTH roles:", r.Both)

	only := r.AOnly
	if len(only) > listLimit {
		only = only[:listLimit]
	}
	cli.PrintList(w, fmt.Sprintf("✅ Users with %q role only (first %d):", a, listLimit), only)
	if len(r.AOnly) > listLimit {
		fmt.Fprintf(w, "  ... and %d more\n", len(r.AOnly)-listLimit)
	}

	fmt.Fprintln(w, "\nAnalysis complete!")
}
