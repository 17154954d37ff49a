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
	cli.Usage("assign-missing-roles",
		"DISCORD_TOKEN", "the bot token",
		"GUILD_ID", "the guild to update",
		"ROLE_NAME", "the role to assign (default test)",
		"ROLE_RATE", "role changes per second (default 2.5)",
		"ROLE_BURST", "role changes allowed in a burst (default 5)",
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
	fmt.Printf("Assigning the %q role to %d users\n", cfg.Roles.RoleName, len(unique))

	report, err := tool.Assign(ctx, cfg.Roles.RoleName, unique)
	if err != nil {
		return cli.RoleExitCode(os.Stdout, err)
	}

	cli.PrintAssignReport(os.Stdout, report)
	fmt.Println("\nRole assignment complete!")
	return 0
}
