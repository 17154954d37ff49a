// Package roles checks, assigns and removes a guild role for lists of
// usernames.
package roles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/diamondburned/arikawa/v3/discord"

	"libdb.so/fogo-faucet/internal/members"
	"libdb.so/fogo-faucet/internal/metrics"
)

// ErrRoleNotFound is returned when no guild role has the requested name.
var ErrRoleNotFound = errors.New("role not found")

// RoleNotFoundError lists the roles that could have been meant.
type RoleNotFoundError struct {
	Name string
	// Available holds the names of the non-managed roles, @everyone excluded.
	Available []string
}

func (e *RoleNotFoundError) Error() string {
	return fmt.Sprintf("role %q not found in the server", e.Name)
}

func (e *RoleNotFoundError) Unwrap() error { return ErrRoleNotFound }

// Guild is the part of the chat platform the runner mutates.
type Guild interface {
	Roles(ctx context.Context) ([]discord.Role, error)
	AddRole(ctx context.Context, userID discord.UserID, roleID discord.RoleID) error
	RemoveRole(ctx context.Context, userID discord.UserID, roleID discord.RoleID) error
	// AllMembers fetches every member of the guild.
	AllMembers(ctx context.Context) ([]discord.Member, error)
}

// Resolver is implemented by *members.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, handle string) members.Result
}

var _ Resolver = (*members.Resolver)(nil)

// Runner runs role operations against one guild.
type Runner struct {
	guild    Guild
	resolver Resolver
	limiter  *Limiter
	logger   *slog.Logger
}

// NewRunner creates a Runner. A nil limiter does not pace mutations.
func NewRunner(guild Guild, resolver Resolver, limiter *Limiter, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		guild:    guild,
		resolver: resolver,
		limiter:  limiter,
		logger:   logger,
	}
}

// FindRole looks a role up by case-insensitive name. A missing role is
// reported as a *RoleNotFoundError.
func (r *Runner) FindRole(ctx context.Context, name string) (discord.Role, error) {
	roles, err := r.guild.Roles(ctx)
	if err != nil {
		return discord.Role{}, fmt.Errorf("list roles: %w", err)
	}

	for _, role := range roles {
		if strings.EqualFold(role.Name, name) {
			return role, nil
		}
	}

	notFound := &RoleNotFoundError{Name: name}
	for _, role := range roles {
		if !role.Managed && role.Name != "@everyone" {
			notFound.Available = append(notFound.Available, role.Name)
		}
	}
	return discord.Role{}, notFound
}

// CheckReport is the result of Check.
type CheckReport struct {
	Role        discord.Role
	HasRole     []string
	MissingRole []string
	NotFound    []string
	Errors      []string
}

// Check reports which of usernames hold roleName. Nothing is mutated.
func (r *Runner) Check(ctx context.Context, roleName string, usernames []string) (CheckReport, error) {
	role, err := r.FindRole(ctx, roleName)
	if err != nil {
		return CheckReport{}, err
	}

	report := CheckReport{Role: role}
	for _, username := range Unique(usernames) {
		m, ok := r.resolve(ctx, "check", username, &report.NotFound, &report.Errors)
		if !ok {
			continue
		}
		if hasRole(m, role.ID) {
			report.HasRole = append(report.HasRole, username)
			r.count("check", "has_role")
		} else {
			report.MissingRole = append(report.MissingRole, username)
			r.count("check", "missing_role")
		}
	}
	return report, nil
}

// AssignReport is the result of Assign.
type AssignReport struct {
	Role           discord.Role
	Success        []string
	AlreadyHasRole []string
	NotFound       []string
	Errors         []string
}

// Assign gives roleName to every username that does not hold it yet.
func (r *Runner) Assign(ctx context.Context, roleName string, usernames []string) (AssignReport, error) {
	role, err := r.FindRole(ctx, roleName)
	if err != nil {
		return AssignReport{}, err
	}

	report := AssignReport{Role: role}
	for _, username := range Unique(usernames) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r.assign(ctx, role, username, &report, nil)
	}
	return report, nil
}

// assign handles one username. held is called with the member once the
// member is known to hold role, whether it was just added or not.
func (r *Runner) assign(ctx context.Context, role discord.Role, username string, report *AssignReport, held func(m discord.Member, added bool)) {
	m, ok := r.resolve(ctx, "assign", username, &report.NotFound, &report.Errors)
	if !ok {
		return
	}

	logger := r.logger.With("username", username, "role", role.Name)

	if hasRole(m, role.ID) {
		logger.Debug("Member already has the role.")
		report.AlreadyHasRole = append(report.AlreadyHasRole, username)
		r.count("assign", "already_has_role")
		if held != nil {
			held(m, false)
		}
		return
	}

	if err := r.mutate(ctx, func() error { return r.guild.AddRole(ctx, m.User.ID, role.ID) }); err != nil {
		logger.Error("Runner has failed to add the role.", "err", err)
		report.Errors = append(report.Errors, username)
		r.count("assign", "error")
		return
	}

	logger.Info("Role has been added to the member.")
	report.Success = append(report.Success, username)
	r.count("assign", "success")
	if held != nil {
		held(m, true)
	}
}

// RemoveReport is the result of Remove.
type RemoveReport struct {
	Role          discord.Role
	Success       []string
	AlreadyNoRole []string
	NotFound      []string
	Errors        []string
}

// Remove takes roleName away from every username that holds it.
func (r *Runner) Remove(ctx context.Context, roleName string, usernames []string) (RemoveReport, error) {
	role, err := r.FindRole(ctx, roleName)
	if err != nil {
		return RemoveReport{}, err
	}

	report := RemoveReport{Role: role}
	for _, username := range Unique(usernames) {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		m, ok := r.resolve(ctx, "remove", username, &report.NotFound, &report.Errors)
		if !ok {
			continue
		}

		logger := r.logger.With("username", username, "role", role.Name)

		if !hasRole(m, role.ID) {
			logger.Debug("Member does not have the role.")
			report.AlreadyNoRole = append(report.AlreadyNoRole, username)
			r.count("remove", "already_no_role")
			continue
		}

		if err := r.mutate(ctx, func() error { return r.guild.RemoveRole(ctx, m.User.ID, role.ID) }); err != nil {
			logger.Error("Runner has failed to remove the role.", "err", err)
			report.Errors = append(report.Errors, username)
			r.count("remove", "error")
			continue
		}

		logger.Info("Role has been removed from the member.")
		report.Success = append(report.Success, username)
		r.count("remove", "success")
	}
	return report, nil
}

// OverlapReport is the result of Overlap. Lists hold usernames.
type OverlapReport struct {
	RoleA   discord.Role
	RoleB   discord.Role
	Both    []string
	AOnly   []string
	BOnly   []string
	Neither []string
}

// Total is the number of members analyzed.
func (o OverlapReport) Total() int {
	return len(o.Both) + len(o.AOnly) + len(o.BOnly) + len(o.Neither)
}

// HoldersA is the number of members holding role A.
func (o OverlapReport) HoldersA() int { return len(o.Both) + len(o.AOnly) }

// HoldersB is the number of members holding role B.
func (o OverlapReport) HoldersB() int { return len(o.Both) + len(o.BOnly) }

// Percent returns n as a percentage of of, or 0 when of is 0.
func Percent(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of) * 100
}

// Overlap fetches every member and buckets them by which of the two roles
// they hold.
func (r *Runner) Overlap(ctx context.Context, roleA, roleB string) (OverlapReport, error) {
	a, err := r.FindRole(ctx, roleA)
	if err != nil {
		return OverlapReport{}, err
	}
	b, err := r.FindRole(ctx, roleB)
	if err != nil {
		return OverlapReport{}, err
	}

	all, err := r.guild.AllMembers(ctx)
	if err != nil {
		return OverlapReport{}, fmt.Errorf("fetch members: %w", err)
	}

	report := OverlapReport{RoleA: a, RoleB: b}
	for _, m := range all {
		hasA, hasB := hasRole(m, a.ID), hasRole(m, b.ID)
		switch {
		case hasA && hasB:
			report.Both = append(report.Both, m.User.Username)
		case hasA:
			report.AOnly = append(report.AOnly, m.User.Username)
		case hasB:
			report.BOnly = append(report.BOnly, m.User.Username)
		default:
			report.Neither = append(report.Neither, m.User.Username)
		}
	}
	return report, nil
}

// CSVReport is the result of AssignFromCSV.
type CSVReport struct {
	AssignReport
	// Secondary is nil when the secondary role does not exist.
	Secondary *discord.Role
	// BothExisting counts members that already held the target role and also
	// hold the secondary role.
	BothExisting int
	// BothNew counts members that were just given the target role and already
	// held the secondary role.
	BothNew int
}

// AssignFromCSV assigns roleName like Assign and additionally reports how the
// assigned members overlap with secondaryRole. A missing secondary role only
// disables that analysis.
func (r *Runner) AssignFromCSV(ctx context.Context, roleName, secondaryRole string, usernames []string) (CSVReport, error) {
	role, err := r.FindRole(ctx, roleName)
	if err != nil {
		return CSVReport{}, err
	}

	report := CSVReport{AssignReport: AssignReport{Role: role}}

	secondary, err := r.FindRole(ctx, secondaryRole)
	switch {
	case err == nil:
		report.Secondary = &secondary
	case errors.Is(err, ErrRoleNotFound):
		r.logger.Warn(
			"Secondary role was not found. Only the target role will be tracked.",
			"role", secondaryRole)
	default:
		return CSVReport{}, err
	}

	held := func(m discord.Member, added bool) {
		if report.Secondary == nil || !hasRole(m, report.Secondary.ID) {
			return
		}
		if added {
			report.BothNew++
		} else {
			report.BothExisting++
		}
	}

	for _, username := range Unique(usernames) {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r.assign(ctx, role, username, &report.AssignReport, held)
	}
	return report, nil
}

// resolve finds username and files it under notFound or errs when that fails.
func (r *Runner) resolve(ctx context.Context, op, username string, notFound, errs *[]string) (discord.Member, bool) {
	res := r.resolver.Resolve(ctx, username)
	switch res.Status {
	case members.Found:
		return res.Member, true
	case members.Error:
		r.logger.Warn(
			"Runner has failed to look up the member.",
			"username", username,
			"err", res.Err)
		*errs = append(*errs, username)
		r.count(op, "error")
	default:
		r.logger.Warn(
			"Member was not found in the server.",
			"username", username)
		*notFound = append(*notFound, username)
		r.count(op, "not_found")
	}
	return discord.Member{}, false
}

func (r *Runner) mutate(ctx context.Context, f func() error) error {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	return f()
}

func (r *Runner) count(op, result string) {
	metrics.RoleOperations.WithLabelValues(op, result).Inc()
}

func hasRole(m discord.Member, roleID discord.RoleID) bool {
	return slices.Contains(m.RoleIDs, roleID)
}

// Unique returns names without blanks and repeats, keeping the first
// occurrence of each.
func Unique(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
