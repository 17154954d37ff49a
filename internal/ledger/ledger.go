// Package ledger talks to the FOGO chain's Solana-compatible RPC: it validates
// addresses, reads balances and sends native-unit transfers from the custodial
// wallet.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// ErrInvalidAddress is returned for input that does not decode as a public
// key.
var ErrInvalidAddress = errors.New("invalid wallet address")

// Decimals is the number of decimal places of the native unit.
const Decimals = 9

// DefaultThreshold is the balance at which a wallet counts as already funded.
var DefaultThreshold = decimal.New(1, -1)

// RPC is the subset of *rpc.Client used by this package.
type RPC interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetAccountInfo(ctx context.Context, account solana.PublicKey) (*rpc.GetAccountInfoResult, error)
	GetTokenAccountBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error)
	GetLatestBlockhash(ctx context.Context, commitment rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error)
	SendTransactionWithOpts(ctx context.Context, tx *solana.Transaction, opts rpc.TransactionOpts) (solana.Signature, error)
	GetVersion(ctx context.Context) (*rpc.GetVersionResult, error)
	GetSlot(ctx context.Context, commitment rpc.CommitmentType) (uint64, error)
}

var _ RPC = (*rpc.Client)(nil)

// Dial creates an RPC client for endpoint. No request is made.
func Dial(endpoint string) *rpc.Client {
	return rpc.New(endpoint)
}

// ParseAddress validates address structurally without a network round trip.
func ParseAddress(address string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(strings.TrimSpace(address))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return pk, nil
}

// FromLamports converts base units into native units.
func FromLamports(lamports uint64) decimal.Decimal {
	return decimal.New(int64(lamports), -Decimals)
}

// ToLamports converts native units into base units, truncating any precision
// below one lamport.
func ToLamports(amount decimal.Decimal) uint64 {
	return uint64(amount.Shift(Decimals).IntPart())
}

// BalanceSnapshot is a wallet's balance at the time of the query.
type BalanceSnapshot struct {
	Amount decimal.Decimal
	// Sufficient is true when Amount is at or above the oracle's threshold.
	Sufficient bool
}

// Oracle reads wallet balances of either the native unit or an SPL mint.
type Oracle struct {
	rpc       RPC
	mint      solana.PublicKey
	native    bool
	threshold decimal.Decimal
}

// NewOracle creates an oracle. A zero mint or solana.SolMint selects the
// native unit; a zero threshold selects DefaultThreshold.
func NewOracle(client RPC, mint solana.PublicKey, threshold decimal.Decimal) *Oracle {
	if threshold.IsZero() {
		threshold = DefaultThreshold
	}
	return &Oracle{
		rpc:       client,
		mint:      mint,
		native:    mint.IsZero() || mint.Equals(solana.SolMint),
		threshold: threshold,
	}
}

// Native reports whether the oracle reads native balances.
func (o *Oracle) Native() bool { return o.native }

// Balance returns the balance snapshot of address. Invalid addresses fail with
// ErrInvalidAddress before any RPC call.
func (o *Oracle) Balance(ctx context.Context, address string) (BalanceSnapshot, error) {
	owner, err := ParseAddress(address)
	if err != nil {
		return BalanceSnapshot{}, err
	}

	var amount decimal.Decimal
	if o.native {
		amount, err = o.nativeBalance(ctx, owner)
	} else {
		amount, err = o.tokenBalance(ctx, owner)
	}
	if err != nil {
		return BalanceSnapshot{}, err
	}

	return BalanceSnapshot{
		Amount:     amount,
		Sufficient: amount.GreaterThanOrEqual(o.threshold),
	}, nil
}

func (o *Oracle) nativeBalance(ctx context.Context, owner solana.PublicKey) (decimal.Decimal, error) {
	res, err := o.rpc.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get balance of %s: %w", owner, err)
	}
	return FromLamports(res.Value), nil
}

// tokenBalance reads the balance of the owner's associated token account. A
// missing account is a zero balance.
func (o *Oracle) tokenBalance(ctx context.Context, owner solana.PublicKey) (decimal.Decimal, error) {
	ata, _, err := solana.FindAssociatedTokenAddress(owner, o.mint)
	if err != nil {
		return decimal.Zero, fmt.Errorf("derive token account: %w", err)
	}

	if _, err := o.rpc.GetAccountInfo(ctx, ata); err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get token account %s: %w", ata, err)
	}

	res, err := o.rpc.GetTokenAccountBalance(ctx, ata, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("get token balance of %s: %w", ata, err)
	}
	if res.Value == nil {
		return decimal.Zero, nil
	}

	raw, err := decimal.NewFromString(res.Value.Amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse token amount %q: %w", res.Value.Amount, err)
	}
	return raw.Shift(-int32(res.Value.Decimals)), nil
}

// NodeInfo describes the RPC node the client is connected to.
type NodeInfo struct {
	Version string
	Slot    uint64
}

// Ping queries the node's version and current slot.
func Ping(ctx context.Context, client RPC) (NodeInfo, error) {
	version, err := client.GetVersion(ctx)
	if err != nil {
		return NodeInfo{}, fmt.Errorf("get version: %w", err)
	}
	slot, err := client.GetSlot(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return NodeInfo{}, fmt.Errorf("get slot: %w", err)
	}
	return NodeInfo{Version: version.SolanaCore, Slot: slot}, nil
}
