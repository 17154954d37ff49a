package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"libdb.so/fogo-faucet/internal/cli"
	"libdb.so/fogo-faucet/internal/roles"
)

var (
	file    = flag.String("file", "", "the CSV file to read (default $CSV_FILE)")
	inspect = flag.Bool("inspect", false, "only report what the CSV file contains")
)

func init() {
	cli.Usage("assign-csv-roles [-inspect] [-file users.csv]",
		"DISCORD_TOKEN", "the bot token",
		"GUILD_ID", "the guild to update",
		"CSV_FILE", "the CSV file to read (default users.csv)",
		"ROLE_NAME", "the role to assign (default test)",
		"PYRONAUTS_ROLE", "the role whose overlap is reported (default Pyronauts)",
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

	path := *file
	if path == "" {
		path = cfg.Roles.CSVFile
	}

	list, err := roles.ReadUserListFile(path)
	if err != nil {
		return cli.ExitCode(err)
	}

	if *inspect {
		printInspection(os.Stdout, list.Inspect())
		return 0
	}

	tool, err := cli.OpenRoleTool(ctx, cfg)
	if err != nil {
		return cli.ExitCode(err)
	}

	usernames := list.Unique()
	fmt.Printf("Found %d unique usernames in %s\n", len(usernames), path)

	report, err := tool.AssignFromCSV(ctx, cfg.Roles.RoleName, cfg.Roles.PyronautsRole, usernames)
	if err != nil {
		return cli.RoleExitCode(os.Stdout, err)
	}

	printCSVReport(os.Stdout, report)
	return 0
}

func printInspection(w io.Writer, in roles.Inspection) {
	fmt.Fprintln(w, "CSV Analysis:")
	fmt.Fprintf(w, "Total rows: %d\n", in.Rows)
	fmt.Fprintf(w, "Unique usernames: %d\n", in.Unique)
	fmt.Fprintf(w, "\nColumn names found: %s\n", strings.Join(in.Columns, ", "))

	fmt.Fprintln(w, "\nFirst 10 usernames that will be processed:")
	for i, name := range in.First {
		fmt.Fprintf(w, "%d. %s\n", i+1, name)
	}
	if in.Unique > len(in.First) {
		fmt.Fprintf(w, "... and %d more\n", in.Unique-len(in.First))
	}

	fmt.Fprintln(w, "\n✅ CSV file is ready for processing!")
}

func printCSVReport(w io.Writer, r roles.CSVReport) {
	cli.PrintAssignReport(w, r.AssignReport)

	if r.Secondary != nil {
		a, b := r.Role.Name, r.Secondary.Name
		fmt.Fprintln(w, "\nSecondary role analysis:")
		fmt.Fprintf(w, "Users with both %q and %q roles: %d\n", a, b, r.BothExisting+r.BothNew)
		fmt.Fprintf(w, "   - Already had %q before: %d\n", b, r.BothExisting)
		fmt.Fprintf(w, "   - Got %q after %q: %d\n", b, a, r.BothNew)
	}

	fmt.Fprintln(w, "\nProcessing complete!")
}
