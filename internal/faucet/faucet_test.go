package faucet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libdb.so/fogo-faucet/internal/cooldown"
	"libdb.so/fogo-faucet/internal/ledger"
)

const (
	wallet    = "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU"
	requester = "1402734319755202640"
)

type memStore struct {
	mu      sync.Mutex
	records map[string]cooldown.Record
	err     error
}

func (s *memStore) Load(_ context.Context, id string) (cooldown.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return cooldown.Record{}, false, s.err
	}
	r, ok := s.records[id]
	return r, ok, nil
}

func (s *memStore) Upsert(_ context.Context, r cooldown.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.records[r.RequesterID] = r
	return nil
}

func (s *memStore) Close() error { return nil }

// countingCooldown wraps a real tracker and counts calls.
type countingCooldown struct {
	*cooldown.Tracker
	checks    atomic.Int32
	records   atomic.Int32
	recordErr error
}

func (c *countingCooldown) CheckEligibility(ctx context.Context, id string, now time.Time) (cooldown.Eligibility, error) {
	c.checks.Add(1)
	return c.Tracker.CheckEligibility(ctx, id, now)
}

func (c *countingCooldown) RecordRequest(ctx context.Context, id, wallet string, now time.Time) error {
	c.records.Add(1)
	if c.recordErr != nil {
		return c.recordErr
	}
	return c.Tracker.RecordRequest(ctx, id, wallet, now)
}

type fakeOracle struct {
	amount decimal.Decimal
	err    error
	calls  atomic.Int32
}

func (o *fakeOracle) Balance(_ context.Context, address string) (ledger.BalanceSnapshot, error) {
	o.calls.Add(1)
	if o.err != nil {
		return ledger.BalanceSnapshot{}, o.err
	}
	return ledger.BalanceSnapshot{
		Amount:     o.amount,
		Sufficient: o.amount.GreaterThanOrEqual(ledger.DefaultThreshold),
	}, nil
}

type fakeTransferer struct {
	fail  string
	delay time.Duration
	calls atomic.Int32
}

func (t *fakeTransferer) Transfer(_ context.Context, recipient solana.PublicKey, amount decimal.Decimal) ledger.TransferResult {
	t.calls.Add(1)
	time.Sleep(t.delay)
	if t.fail != "" {
		return ledger.TransferResult{FailureReason: t.fail}
	}
	return ledger.TransferResult{Succeeded: true, Reference: "5sig" + recipient.Short(4)}
}

type harness struct {
	store      *memStore
	cooldown   *countingCooldown
	oracle     *fakeOracle
	transferer *fakeTransferer
	now        time.Time
	faucet     *Faucet
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		store:      &memStore{records: map[string]cooldown.Record{}},
		oracle:     &fakeOracle{amount: decimal.Zero},
		transferer: &fakeTransferer{},
		now:        time.Date(2025, 8, 6, 12, 0, 0, 0, time.UTC),
	}
	h.cooldown = &countingCooldown{Tracker: cooldown.NewTracker(h.store, cooldown.DefaultWindow)}
	h.faucet = New(Deps{
		Cooldown:   h.cooldown,
		Oracle:     h.oracle,
		Transferer: h.transferer,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:        func() time.Time { return h.now },
	})
	return h
}

func request(roles ...string) Request {
	return Request{
		RequesterID:   requester,
		RequesterTag:  "alice",
		WalletAddress: wallet,
		RoleNames:     roles,
	}
}

func TestNewRequesterIsServed(t *testing.T) {
	h := newHarness(t)

	n := h.faucet.Handle(context.Background(), request())
	assert.Equal(t, Success, n.Kind)
	assert.Equal(t, OutcomeSent, n.Outcome)
	assert.Equal(t, "🎉 Tokens Sent Successfully!", n.Title)
	assert.Contains(t, n.Description, "0.1 FOGO(Native)")
	assert.Contains(t, n.Description, wallet)
	assert.Contains(t, n.Description, "5sig")
	assert.NotContains(t, n.Description, "Team Member")

	assert.EqualValues(t, 1, h.cooldown.checks.Load())
	assert.EqualValues(t, 1, h.transferer.calls.Load())

	rec, ok := h.store.records[requester]
	require.True(t, ok, "record written")
	assert.Equal(t, wallet, rec.WalletAddress)
	assert.True(t, rec.LastRequest.Equal(h.now))
}

func TestRepeatWithinCooldownIsRejected(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.Equal(t, OutcomeSent, h.faucet.Handle(ctx, request()).Outcome)

	h.now = h.now.Add(5*time.Hour + 30*time.Minute)
	n := h.faucet.Handle(ctx, request())
	assert.Equal(t, Failure, n.Kind)
	assert.Equal(t, OutcomeCooldown, n.Outcome)
	assert.Equal(t, "⏰ Cooldown Active", n.Title)
	assert.Equal(t, "You can request tokens again in 19 hours.", n.Description)
	assert.EqualValues(t, 1, h.transferer.calls.Load())
	assert.EqualValues(t, 1, h.oracle.calls.Load())

	h.now = h.now.Add(19 * time.Hour)
	assert.Equal(t, OutcomeSent, h.faucet.Handle(ctx, request()).Outcome)
	assert.EqualValues(t, 2, h.transferer.calls.Load())
}

func TestBypassSkipsCooldown(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		n := h.faucet.Handle(ctx, request("Member", "pyron team"))
		assert.Equal(t, OutcomeSent, n.Outcome)
		assert.Contains(t, n.Description, "🛡️ **Team Member Request**")
		h.now = h.now.Add(10 * time.Minute)
	}

	assert.EqualValues(t, 3, h.transferer.calls.Load())
	assert.Zero(t, h.cooldown.checks.Load(), "cooldown never checked")
	assert.Zero(t, h.cooldown.records.Load(), "no record written")
	assert.Empty(t, h.store.records)
}

func TestBypassDoesNotClearExistingCooldownForOthers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.Equal(t, OutcomeSent, h.faucet.Handle(ctx, request()).Outcome)
	assert.Equal(t, OutcomeCooldown, h.faucet.Handle(ctx, request()).Outcome)
	assert.Equal(t, OutcomeSent, h.faucet.Handle(ctx, request("Pyron Team")).Outcome)
}

func TestInvalidAddressNeverReachesLedger(t *testing.T) {
	for _, addr := range []string{
		"",
		"short",
		"0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl",
		wallet + "extra",
	} {
		t.Run(addr, func(t *testing.T) {
			h := newHarness(t)
			req := request()
			req.WalletAddress = addr

			n := h.faucet.Handle(context.Background(), req)
			assert.Equal(t, OutcomeInvalidAddress, n.Outcome)
			assert.Equal(t, "❌ Invalid Wallet Address", n.Title)
			assert.Zero(t, h.oracle.calls.Load())
			assert.Zero(t, h.transferer.calls.Load())
			assert.Zero(t, h.cooldown.checks.Load())
		})
	}
}

func TestFundedWalletNeverReachesTransfer(t *testing.T) {
	for _, bypass := range []bool{false, true} {
		h := newHarness(t)
		h.oracle.amount = decimal.RequireFromString("0.1")

		var roles []string
		if bypass {
			roles = []string{"Pyron Team"}
		}

		n := h.faucet.Handle(context.Background(), request(roles...))
		assert.Equal(t, OutcomeFunded, n.Outcome)
		assert.Equal(t, "This wallet already has 0.1 or more FOGO(Native) tokens.", n.Description)
		assert.Zero(t, h.transferer.calls.Load())
		assert.Empty(t, h.store.records)
	}
}

func TestTransferFailureIsReportedVerbatim(t *testing.T) {
	h := newHarness(t)
	h.transferer.fail = "insufficient funds for rent"

	n := h.faucet.Handle(context.Background(), request())
	assert.Equal(t, Failure, n.Kind)
	assert.Equal(t, OutcomeTransferFailed, n.Outcome)
	assert.Equal(t, "Failed to send tokens: insufficient funds for rent", n.Description)
	assert.Empty(t, h.store.records, "no cooldown after a failed transfer")
}

func TestNetworkFailuresFailClosed(t *testing.T) {
	t.Run("store", func(t *testing.T) {
		h := newHarness(t)
		h.store.err = errors.New("database is locked")

		n := h.faucet.Handle(context.Background(), request())
		assert.Equal(t, OutcomeUnavailable, n.Outcome)
		assert.Zero(t, h.oracle.calls.Load())
		assert.Zero(t, h.transferer.calls.Load())
	})

	t.Run("ledger", func(t *testing.T) {
		h := newHarness(t)
		h.oracle.err = errors.New("dial tcp: connection refused")

		n := h.faucet.Handle(context.Background(), request())
		assert.Equal(t, OutcomeUnavailable, n.Outcome)
		assert.Zero(t, h.transferer.calls.Load())
	})
}

func TestRecordFailureStillNotifiesSuccess(t *testing.T) {
	h := newHarness(t)
	h.cooldown.recordErr = errors.New("disk full")

	n := h.faucet.Handle(context.Background(), request())
	assert.Equal(t, OutcomeSent, n.Outcome)
	assert.EqualValues(t, 1, h.cooldown.records.Load())
}

func TestDryRunWording(t *testing.T) {
	h := newHarness(t)
	h.faucet.dryRun = true

	n := h.faucet.Handle(context.Background(), request())
	assert.Equal(t, "🎉 Test Transfer Successful!", n.Title)
	assert.Contains(t, n.Description, "no actual tokens were transferred")

	h.now = h.now.Add(25 * time.Hour)
	h.transferer.fail = "boom"
	n = h.faucet.Handle(context.Background(), request())
	assert.Equal(t, "❌ Test Transfer Failed", n.Title)
	assert.Equal(t, "Failed to simulate transfer: boom", n.Description)
}

func TestConcurrentRequestsFromSameRequester(t *testing.T) {
	h := newHarness(t)
	h.transferer.delay = 20 * time.Millisecond

	const n = 8
	outcomes := make(chan Outcome, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes <- h.faucet.Handle(context.Background(), request()).Outcome
		}()
	}
	wg.Wait()
	close(outcomes)

	counts := map[Outcome]int{}
	for o := range outcomes {
		counts[o]++
	}
	assert.Equal(t, 1, counts[OutcomeSent])
	assert.Equal(t, n-1, counts[OutcomeCooldown])
	assert.EqualValues(t, 1, h.transferer.calls.Load())
	assert.Zero(t, h.faucet.locks.size())
}

func TestHasBypassRole(t *testing.T) {
	f := New(Deps{BypassRole: "Core Devs"})
	assert.True(t, f.HasBypassRole([]string{"core devs"}))
	assert.True(t, f.HasBypassRole([]string{"x", " CORE DEVS "}))
	assert.False(t, f.HasBypassRole([]string{"Pyron Team"}))
	assert.False(t, f.HasBypassRole(nil))

	assert.True(t, New(Deps{}).HasBypassRole([]string{"PYRON TEAM"}))
}
