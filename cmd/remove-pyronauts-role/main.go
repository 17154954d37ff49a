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
	cli.Usage("remove-pyronauts-role",
		"DISCORD_TOKEN", "the bot token",
		"GUILD_ID", "the guild to update",
		"PYRONAUTS_ROLE", "the role to remove (default Pyronauts)",
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

	role := cfg.Roles.PyronautsRole
	unique := roles.Unique(usernames)
	fmt.Printf("Removing the %q role from %d users\n", role, len(unique))

	report, err := tool.Remove(ctx, role, unique)
	if err != nil {
		return cli.RoleExitCode(os.Stdout, err)
	}

	name := report.Role.Name
	fmt.Println("\nSUMMARY:")
	fmt.Printf("✅ Successfully removed %q role: %d\n", name, len(report.Success))
	fmt.Printf("ℹ️  Already without %q role: %d\n", name, len(report.AlreadyNoRole))
	fmt.Printf("⚠️  Users not found in server: %d\n", len(report.NotFound))
	fmt.Printf("❌ Errors: %d\n", len(report.Errors))

	cli.PrintList(os.Stdout, "✅ Successfully removed role from:", report.Success)
	cli.PrintList(os.Stdout, "ℹ️  Already without role:", report.AlreadyNoRole)
	cli.PrintList(os.Stdout, "⚠️  Users not found in server:", report.NotFound)
	cli.PrintList(os.Stdout, "❌ Users with errors:", report.Errors)

	fmt.Println("\nRole removal complete!")
	return 0
}
