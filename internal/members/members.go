// Package members finds guild members by a loosely typed handle.
package members

import (
	"context"
	"strings"
	"sync"

	"github.com/diamondburned/arikawa/v3/discord"

	"libdb.so/fogo-faucet/internal/metrics"
)

// Source provides the members of one guild.
type Source interface {
	// CachedMembers returns the members known without a full fetch.
	CachedMembers(ctx context.Context) ([]discord.Member, error)
	// MemberCount returns the total membership reported by the platform.
	MemberCount(ctx context.Context) (int, error)
	// RefreshMembers fetches every member of the guild.
	RefreshMembers(ctx context.Context) ([]discord.Member, error)
}

// Status tells the variants of a Result apart.
type Status int

const (
	NotFound Status = iota
	Found
	Error
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// Result is the outcome of a lookup. Member is set iff Status is Found, Err
// iff Status is Error.
type Result struct {
	Status Status
	Member discord.Member
	Err    error
}

// DisplayName returns the name a member is shown with in the guild.
func DisplayName(m discord.Member) string {
	if m.Nick != "" {
		return m.Nick
	}
	return m.User.DisplayOrUsername()
}

// Resolver looks members up by username or display name. It refreshes the
// member list from its Source at most once.
type Resolver struct {
	src Source

	mu        sync.Mutex
	refreshed []discord.Member
}

// NewResolver creates a Resolver over src.
func NewResolver(src Source) *Resolver {
	return &Resolver{src: src}
}

// Resolve finds the member best matching handle. Matching is case-insensitive
// and tries, in order: exact username, exact display name, then a substring
// of either. When nothing matches and the cache is incomplete, the full
// member list is fetched once and searched again.
func (r *Resolver) Resolve(ctx context.Context, handle string) Result {
	query := strings.ToLower(strings.TrimSpace(handle))
	if query == "" {
		return Result{Status: NotFound}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.refreshed != nil {
		return match(r.refreshed, query)
	}

	cached, err := r.src.CachedMembers(ctx)
	if err != nil {
		return Result{Status: Error, Err: err}
	}
	if res := match(cached, query); res.Status == Found {
		return res
	}

	total, err := r.src.MemberCount(ctx)
	if err != nil {
		return Result{Status: Error, Err: err}
	}
	if len(cached) >= total {
		return Result{Status: NotFound}
	}

	all, err := r.src.RefreshMembers(ctx)
	if err != nil {
		return Result{Status: Error, Err: err}
	}
	metrics.MemberRefreshes.Inc()

	if all == nil {
		all = []discord.Member{}
	}
	r.refreshed = all

	return match(all, query)
}

func match(members []discord.Member, query string) Result {
	for _, m := range members {
		if strings.ToLower(m.User.Username) == query {
			return Result{Status: Found, Member: m}
		}
	}
	for _, m := range members {
		if strings.ToLower(DisplayName(m)) == query {
			return Result{Status: Found, Member: m}
		}
	}
	for _, m := range members {
		if strings.Contains(strings.ToLower(m.User.Username), query) ||
			strings.Contains(strings.ToLower(DisplayName(m)), query) {
			return Result{Status: Found, Member: m}
		}
	}
	return Result{Status: NotFound}
}
