package ledger

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libdb.so/fogo-faucet/internal/ledger/ledgertest"
)

var _ RPC = (*ledgertest.RPC)(nil)

const validAddress = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{"valid", validAddress, true},
		{"surrounding whitespace", "  " + validAddress + "\n", true},
		{"native mint", "So11111111111111111111111111111111111111112", true},
		{"empty", "", false},
		{"too short", "7xKXtg2CW87d97TXJSDp", false},
		{"invalid base58", "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", false},
		{"too long", validAddress + "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAddress(tt.input)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidAddress)
			}
		})
	}
}

func TestLamportConversion(t *testing.T) {
	assert.Equal(t, uint64(100_000_000), ToLamports(decimal.RequireFromString("0.1")))
	assert.Equal(t, uint64(1), ToLamports(decimal.RequireFromString("0.0000000019")))
	assert.Equal(t, "0.1", FromLamports(100_000_000).String())
	assert.Equal(t, "2.5", FromLamports(2_500_000_000).String())
}

func TestOracleNativeBalance(t *testing.T) {
	tests := []struct {
		name       string
		lamports   uint64
		sufficient bool
	}{
		{"empty", 0, false},
		{"just below", 99_999_999, false},
		{"exactly threshold", 100_000_000, true},
		{"above", 5_000_000_000, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &ledgertest.RPC{Balance: tt.lamports}
			oracle := NewOracle(f, solana.SolMint, decimal.Zero)
			require.True(t, oracle.Native())

			snap, err := oracle.Balance(context.Background(), validAddress)
			require.NoError(t, err)
			assert.Equal(t, tt.sufficient, snap.Sufficient)
			assert.True(t, FromLamports(tt.lamports).Equal(snap.Amount))
		})
	}
}

func TestOracleInvalidAddressSkipsRPC(t *testing.T) {
	f := &ledgertest.RPC{}
	oracle := NewOracle(f, solana.PublicKey{}, decimal.Zero)

	_, err := oracle.Balance(context.Background(), "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidAddress)
	assert.Zero(t, f.BalanceCalls)
}

func TestOracleNetworkError(t *testing.T) {
	boom := errors.New("connection refused")
	oracle := NewOracle(&ledgertest.RPC{BalanceErr: boom}, solana.PublicKey{}, decimal.Zero)

	_, err := oracle.Balance(context.Background(), validAddress)
	assert.ErrorIs(t, err, boom)
}

func TestOracleTokenBalance(t *testing.T) {
	mint := solana.MustPublicKeyFromBase58("4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU")

	t.Run("missing account", func(t *testing.T) {
		oracle := NewOracle(&ledgertest.RPC{AccountErr: rpc.ErrNotFound}, mint, decimal.Zero)
		require.False(t, oracle.Native())

		snap, err := oracle.Balance(context.Background(), validAddress)
		require.NoError(t, err)
		assert.True(t, snap.Amount.IsZero())
		assert.False(t, snap.Sufficient)
	})

	t.Run("funded account", func(t *testing.T) {
		oracle := NewOracle(&ledgertest.RPC{
			TokenBalance: &rpc.UiTokenAmount{Amount: "1500000", Decimals: 6},
		}, mint, decimal.Zero)

		snap, err := oracle.Balance(context.Background(), validAddress)
		require.NoError(t, err)
		assert.Equal(t, "1.5", snap.Amount.String())
		assert.True(t, snap.Sufficient)
	})

	t.Run("account lookup failure", func(t *testing.T) {
		oracle := NewOracle(&ledgertest.RPC{AccountErr: errors.New("503")}, mint, decimal.Zero)

		_, err := oracle.Balance(context.Background(), validAddress)
		assert.Error(t, err)
	})
}

func newTestWallet(t *testing.T, f *ledgertest.RPC) *Wallet {
	t.Helper()
	gen, err := GenerateWallet()
	require.NoError(t, err)

	w, err := NewWallet(f, gen.Secret)
	require.NoError(t, err)
	assert.Equal(t, gen.PublicKey, w.PublicKey())
	return w
}

func TestWalletTransfer(t *testing.T) {
	f := &ledgertest.RPC{Blockhash: solana.HashFromBytes(make([]byte, 32))}
	w := newTestWallet(t, f)
	recipient := solana.MustPublicKeyFromBase58(validAddress)

	res := w.Transfer(context.Background(), recipient, decimal.RequireFromString("0.1"))
	require.True(t, res.Succeeded, res.FailureReason)
	assert.NotEmpty(t, res.Reference)
	assert.Empty(t, res.FailureReason)

	require.Len(t, f.Sent, 1)
	tx := f.Sent[0]
	require.NoError(t, tx.VerifySignatures())
	assert.Equal(t, res.Reference, tx.Signatures[0].String())

	require.Len(t, tx.Message.Instructions, 1)
	inst := tx.Message.Instructions[0]

	program, err := tx.ResolveProgramIDIndex(inst.ProgramIDIndex)
	require.NoError(t, err)
	assert.Equal(t, solana.SystemProgramID, program)

	// System Program transfer: u32 instruction index 2, then u64 lamports.
	require.Len(t, inst.Data, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(inst.Data[:4]))
	assert.Equal(t, uint64(100_000_000), binary.LittleEndian.Uint64(inst.Data[4:]))
}

func TestWalletTransferFailureIsVerbatim(t *testing.T) {
	f := &ledgertest.RPC{SendErr: errors.New("Transaction simulation failed: Attempt to debit an account but found no record of a prior credit.")}
	w := newTestWallet(t, f)

	res := w.Transfer(context.Background(), solana.MustPublicKeyFromBase58(validAddress), decimal.RequireFromString("0.1"))
	assert.False(t, res.Succeeded)
	assert.Empty(t, res.Reference)
	assert.Equal(t, f.SendErr.Error(), res.FailureReason)
}

func TestWalletTransferRejectsDust(t *testing.T) {
	f := &ledgertest.RPC{}
	w := newTestWallet(t, f)

	res := w.Transfer(context.Background(), solana.MustPublicKeyFromBase58(validAddress), decimal.RequireFromString("0.0000000001"))
	assert.False(t, res.Succeeded)
	assert.Empty(t, f.Sent)
}

func TestNewWalletInvalidSecret(t *testing.T) {
	_, err := NewWallet(&ledgertest.RPC{}, "not base58 0OIl")
	assert.Error(t, err)

	_, err = NewWallet(&ledgertest.RPC{}, validAddress)
	assert.Error(t, err, "a 32-byte public key is not a secret key")
}

func TestDryRun(t *testing.T) {
	var d DryRun
	recipient := solana.MustPublicKeyFromBase58(validAddress)

	a := d.Transfer(context.Background(), recipient, decimal.RequireFromString("0.1"))
	b := d.Transfer(context.Background(), recipient, decimal.RequireFromString("0.1"))
	assert.True(t, a.Succeeded)
	assert.True(t, b.Succeeded)
	assert.NotEqual(t, a.Reference, b.Reference)
}

func TestPing(t *testing.T) {
	info, err := Ping(context.Background(), &ledgertest.RPC{Version: "2.2.0", Slot: 4242})
	require.NoError(t, err)
	assert.Equal(t, "2.2.0", info.Version)
	assert.Equal(t, uint64(4242), info.Slot)
}
