// Package faucet runs a single token request through address validation, the
// bypass role, the cooldown, the balance check and the transfer, and turns the
// result into a notification for the requester.
package faucet

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"libdb.so/fogo-faucet/internal/cooldown"
	"libdb.so/fogo-faucet/internal/ledger"
	"libdb.so/fogo-faucet/internal/metrics"
)

// DefaultBypassRole is the role whose holders skip the cooldown.
const DefaultBypassRole = "Pyron Team"

// DefaultAmount is the amount sent per request.
var DefaultAmount = decimal.New(1, -1)

// Request is one inbound token request.
type Request struct {
	RequesterID   string
	RequesterTag  string
	WalletAddress string
	// RoleNames are the names of the guild roles the requester holds.
	RoleNames []string
}

// Cooldown is implemented by *cooldown.Tracker.
type Cooldown interface {
	CheckEligibility(ctx context.Context, requesterID string, now time.Time) (cooldown.Eligibility, error)
	RecordRequest(ctx context.Context, requesterID, walletAddress string, now time.Time) error
}

// BalanceOracle is implemented by *ledger.Oracle.
type BalanceOracle interface {
	Balance(ctx context.Context, address string) (ledger.BalanceSnapshot, error)
}

// Transferer is implemented by *ledger.Wallet and *ledger.DryRun.
type Transferer interface {
	Transfer(ctx context.Context, recipient solana.PublicKey, amount decimal.Decimal) ledger.TransferResult
}

var (
	_ Cooldown      = (*cooldown.Tracker)(nil)
	_ BalanceOracle = (*ledger.Oracle)(nil)
	_ Transferer    = (*ledger.Wallet)(nil)
	_ Transferer    = (*ledger.DryRun)(nil)
)

// Deps holds everything a Faucet talks to.
type Deps struct {
	Cooldown   Cooldown
	Oracle     BalanceOracle
	Transferer Transferer

	// Amount defaults to DefaultAmount.
	Amount decimal.Decimal
	// Threshold is only used in notifications; the oracle applies it.
	// Defaults to ledger.DefaultThreshold.
	Threshold decimal.Decimal
	// BypassRole is matched case-insensitively. Defaults to DefaultBypassRole.
	BypassRole string
	// DryRun switches notifications to their test wording.
	DryRun bool

	Logger *slog.Logger
	Now    func() time.Time
}

// Faucet handles token requests. It is safe for concurrent use; requests from
// the same requester are serialized.
type Faucet struct {
	cooldown   Cooldown
	oracle     BalanceOracle
	transferer Transferer

	amount     decimal.Decimal
	threshold  decimal.Decimal
	bypassRole string
	dryRun     bool

	logger *slog.Logger
	now    func() time.Time
	locks  keyLock
}

// New creates a Faucet.
func New(deps Deps) *Faucet {
	f := &Faucet{
		cooldown:   deps.Cooldown,
		oracle:     deps.Oracle,
		transferer: deps.Transferer,
		amount:     deps.Amount,
		threshold:  deps.Threshold,
		bypassRole: deps.BypassRole,
		dryRun:     deps.DryRun,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if f.amount.IsZero() {
		f.amount = DefaultAmount
	}
	if f.threshold.IsZero() {
		f.threshold = ledger.DefaultThreshold
	}
	if f.bypassRole == "" {
		f.bypassRole = DefaultBypassRole
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	if f.now == nil {
		f.now = time.Now
	}
	return f
}

// Amount returns the amount sent per request.
func (f *Faucet) Amount() decimal.Decimal { return f.amount }

// Handle runs req to completion and returns the notification to show. It
// never returns without a notification.
func (f *Faucet) Handle(ctx context.Context, req Request) Notification {
	start := time.Now()
	n := f.handle(ctx, req)
	metrics.FaucetRequests.WithLabelValues(string(n.Outcome)).Inc()
	metrics.FaucetHandleLatency.Observe(time.Since(start).Seconds())
	return n
}

func (f *Faucet) handle(ctx context.Context, req Request) Notification {
	logger := f.logger.With(
		"user_id", req.RequesterID,
		"wallet_address", req.WalletAddress)

	recipient, err := ledger.ParseAddress(req.WalletAddress)
	if err != nil {
		logger.Debug("Requester has sent an invalid wallet address.", "err", err)
		return invalidAddress()
	}
	wallet := recipient.String()

	bypass := f.HasBypassRole(req.RoleNames)

	// The cooldown check and the record write must not interleave with another
	// request from the same requester.
	unlock := f.locks.Lock(req.RequesterID)
	defer unlock()

	if bypass {
		metrics.FaucetBypassRequests.Inc()
		logger.Info(
			"Team member is bypassing the cooldown.",
			"user_tag", req.RequesterTag)
	} else {
		eligibility, err := f.cooldown.CheckEligibility(ctx, req.RequesterID, f.now())
		if err != nil {
			logger.Error(
				"Faucet has failed to check the cooldown.",
				"err", err)
			return Unavailable()
		}
		if !eligibility.Eligible {
			return cooldownActive(eligibility.RemainingHours)
		}
	}

	balance, err := f.oracle.Balance(ctx, wallet)
	if err != nil {
		logger.Error(
			"Faucet has failed to check the wallet balance.",
			"err", err)
		return Unavailable()
	}
	if balance.Sufficient {
		logger.Debug(
			"Wallet is already funded.",
			"balance", balance.Amount.String())
		return alreadyFunded(f.threshold)
	}

	result := f.transferer.Transfer(ctx, recipient, f.amount)
	if !result.Succeeded {
		logger.Warn(
			"Faucet has failed to send tokens.",
			"reason", result.FailureReason)
		return f.transferFailed(result.FailureReason)
	}

	logger.Info(
		"Faucet has sent tokens.",
		"amount", f.amount.String(),
		"reference", result.Reference,
		"bypass", bypass)

	if !bypass {
		if err := f.cooldown.RecordRequest(ctx, req.RequesterID, wallet, f.now()); err != nil {
			// The tokens are already gone; the requester still gets the
			// success reply.
			metrics.FaucetRecordErrors.Inc()
			logger.Error(
				"Faucet has failed to record the request after a successful transfer.",
				"reference", result.Reference,
				"err", err)
		}
	}

	return f.sent(wallet, result.Reference, bypass)
}

// HasBypassRole reports whether roleNames contains the bypass role.
func (f *Faucet) HasBypassRole(roleNames []string) bool {
	for _, name := range roleNames {
		if strings.EqualFold(strings.TrimSpace(name), f.bypassRole) {
			return true
		}
	}
	return false
}
