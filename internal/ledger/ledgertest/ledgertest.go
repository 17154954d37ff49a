// Package ledgertest provides an in-memory stand-in for the ledger RPC.
package ledgertest

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// RPC answers ledger queries from its fields. Set the *Err fields to make the
// matching call fail.
type RPC struct {
	mu sync.Mutex

	Balance      uint64
	BalanceErr   error
	BalanceCalls int

	AccountErr   error
	TokenBalance *rpc.UiTokenAmount

	Blockhash solana.Hash
	SendErr   error
	Sent      []*solana.Transaction

	Version string
	Slot    uint64
	PingErr error
}

func (f *RPC) GetBalance(_ context.Context, _ solana.PublicKey, _ rpc.CommitmentType) (*rpc.GetBalanceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.BalanceCalls++
	if f.BalanceErr != nil {
		return nil, f.BalanceErr
	}
	return &rpc.GetBalanceResult{Value: f.Balance}, nil
}

func (f *RPC) GetAccountInfo(_ context.Context, _ solana.PublicKey) (*rpc.GetAccountInfoResult, error) {
	if f.AccountErr != nil {
		return nil, f.AccountErr
	}
	return &rpc.GetAccountInfoResult{}, nil
}

func (f *RPC) GetTokenAccountBalance(_ context.Context, _ solana.PublicKey, _ rpc.CommitmentType) (*rpc.GetTokenAccountBalanceResult, error) {
	return &rpc.GetTokenAccountBalanceResult{Value: f.TokenBalance}, nil
}

func (f *RPC) GetLatestBlockhash(_ context.Context, _ rpc.CommitmentType) (*rpc.GetLatestBlockhashResult, error) {
	return &rpc.GetLatestBlockhashResult{
		Value: &rpc.LatestBlockhashResult{Blockhash: f.Blockhash},
	}, nil
}

func (f *RPC) SendTransactionWithOpts(_ context.Context, tx *solana.Transaction, _ rpc.TransactionOpts) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendErr != nil {
		return solana.Signature{}, f.SendErr
	}
	f.Sent = append(f.Sent, tx)
	return tx.Signatures[0], nil
}

func (f *RPC) GetVersion(_ context.Context) (*rpc.GetVersionResult, error) {
	if f.PingErr != nil {
		return nil, f.PingErr
	}
	return &rpc.GetVersionResult{SolanaCore: f.Version}, nil
}

func (f *RPC) GetSlot(_ context.Context, _ rpc.CommitmentType) (uint64, error) {
	if f.PingErr != nil {
		return 0, f.PingErr
	}
	return f.Slot, nil
}
