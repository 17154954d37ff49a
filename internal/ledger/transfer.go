package ledger

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
)

// TransferResult is the outcome of one transfer. Reference is set iff
// Succeeded; FailureReason is set iff not.
type TransferResult struct {
	Succeeded     bool
	Reference     string
	FailureReason string
}

func transferFailed(err error) TransferResult {
	return TransferResult{FailureReason: err.Error()}
}

// Wallet is the custodial wallet that funds every faucet transfer.
type Wallet struct {
	rpc RPC
	key solana.PrivateKey
}

// NewWallet loads the custodial wallet from its base58-encoded secret key.
func NewWallet(client RPC, secret string) (*Wallet, error) {
	key, err := ParsePrivateKey(secret)
	if err != nil {
		return nil, err
	}
	return &Wallet{rpc: client, key: key}, nil
}

// ParsePrivateKey decodes a base58-encoded 64-byte secret key.
func ParsePrivateKey(secret string) (solana.PrivateKey, error) {
	key, err := solana.PrivateKeyFromBase58(strings.TrimSpace(secret))
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if len(key) != 64 {
		return nil, fmt.Errorf("decode private key: expected 64 bytes, got %d", len(key))
	}
	return key, nil
}

// PublicKey returns the wallet's address.
func (w *Wallet) PublicKey() solana.PublicKey {
	return w.key.PublicKey()
}

// Transfer sends amount native units to recipient in a single System Program
// transfer. It submits exactly once and never retries; any failure is
// reported verbatim in the result.
func (w *Wallet) Transfer(ctx context.Context, recipient solana.PublicKey, amount decimal.Decimal) TransferResult {
	lamports := ToLamports(amount)
	if lamports == 0 {
		return transferFailed(fmt.Errorf("amount %s is below one lamport", amount))
	}

	blockhash, err := w.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return transferFailed(fmt.Errorf("get latest blockhash: %w", err))
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(lamports, w.PublicKey(), recipient).Build(),
		},
		blockhash.Value.Blockhash,
		solana.TransactionPayer(w.PublicKey()),
	)
	if err != nil {
		return transferFailed(fmt.Errorf("build transaction: %w", err))
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(w.PublicKey()) {
			return &w.key
		}
		return nil
	}); err != nil {
		return transferFailed(fmt.Errorf("sign transaction: %w", err))
	}

	sig, err := w.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return transferFailed(err)
	}

	return TransferResult{Succeeded: true, Reference: sig.String()}
}

// DryRun pretends to transfer. It is used by the test faucet and never talks
// to the network.
type DryRun struct {
	n atomic.Uint64
}

// Transfer returns a synthetic successful result.
func (d *DryRun) Transfer(_ context.Context, recipient solana.PublicKey, amount decimal.Decimal) TransferResult {
	n := d.n.Add(1)
	return TransferResult{
		Succeeded: true,
		Reference: fmt.Sprintf("dryrun-%d-%d-%s", time.Now().Unix(), n, recipient.Short(4)),
	}
}

// GeneratedWallet is a freshly generated keypair.
type GeneratedWallet struct {
	PublicKey solana.PublicKey
	// Secret is the base58-encoded 64-byte secret key.
	Secret string
}

// GenerateWallet creates a new random keypair.
func GenerateWallet() (GeneratedWallet, error) {
	key, err := solana.NewRandomPrivateKey()
	if err != nil {
		return GeneratedWallet{}, fmt.Errorf("generate key: %w", err)
	}
	return GeneratedWallet{
		PublicKey: key.PublicKey(),
		Secret:    key.String(),
	}, nil
}
