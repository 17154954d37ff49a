package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"libdb.so/fogo-faucet/internal/cli"
	"libdb.so/fogo-faucet/internal/roles"
)

func init() {
	cli.Usage("check-roles",
		"DISCORD_TOKEN", "the bot token",
		"GUILD_ID", "the guild to check",
		"ROLE_NAME", "the role to look for (default test)",
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

	unique := roles.Unique(usernames)
	fmt.Printf("Checking %d unique usernames for the %q role\n", len(unique), cfg.Roles.RoleName)

	report, err := tool.Check(ctx, cfg.Roles.RoleName, unique)
	if err != nil {
		return cli.RoleExitCode(os.Stdout, err)
	}

	name := report.Role.Name
	fmt.Println("\nSUMMARY:")
	fmt.Printf("✅ Users WITH %q role: %d\n", name, len(report.HasRole))
	fmt.Printf("❌ Users MISSING %q role: %d\n", name, len(report.MissingRole))
	fmt.Printf("⚠️  Users not found in server: %d\n", len(report.NotFound))
	fmt.Printf("❌ Errors: %d\n", len(report.Errors))

	cli.PrintList(os.Stdout, "✅ Users WITH role:", report.HasRole)
	cli.PrintList(os.Stdout, "❌ Users MISSING role:", report.MissingRole)
	cli.PrintList(os.Stdout, "⚠️  Users not found in server:", report.NotFound)
	cli.PrintList(os.Stdout, "❌ Users that could not be checked:", report.Errors)

	fmt.Println("\nRole check complete!")
	return 0
}
