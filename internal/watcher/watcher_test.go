package watcher

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/groupkey"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/models"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/notify"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/storage"
	"github.com/YASH-YADAV-dynamo/monad-blitz-lucknow/internal/storage/memory"
)

var (
	alice = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")
	bob   = common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8")
)

// fakeSubscription replays scripted batches, one per Poll call. The last
// batch repeats forever, mimicking a subscription that keeps redelivering
// a window.
type fakeSubscription struct {
	batches [][]models.LedgerEvent
	errs    []error
	calls   int
}

func (f *fakeSubscription) Poll(context.Context) ([]models.LedgerEvent, error) {
	i := f.calls
	f.calls++
	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if len(f.batches) == 0 {
		return nil, nil
	}
	if i >= len(f.batches) {
		i = len(f.batches) - 1
	}
	return f.batches[i], nil
}

func (f *fakeSubscription) Ack() {}

// windowedSubscription yields its batch until the watcher acks it, the
// way a watermarked poller re-yields an uncommitted window.
type windowedSubscription struct {
	batch []models.LedgerEvent
	acked bool
}

func (s *windowedSubscription) Poll(context.Context) ([]models.LedgerEvent, error) {
	if s.acked {
		return nil, nil
	}
	return s.batch, nil
}

func (s *windowedSubscription) Ack() { s.acked = true }

// flakyStore fails a number of Sets before behaving like the wrapped
// store.
type flakyStore struct {
	storage.Store
	failures int
}

func (f *flakyStore) Set(ctx context.Context, user common.Address, data []byte) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("db briefly down")
	}
	return f.Store.Set(ctx, user, data)
}

func splitRequest(amount int64) models.LedgerEvent {
	return models.LedgerEvent{
		Kind:     models.EventSplitRequestCreated,
		GroupKey: groupkey.Derive("Dinner", alice),
		Actor:    alice,
		Target:   bob,
		Amount:   big.NewInt(amount),
	}
}

func TestRedeliveryAcrossTicks(t *testing.T) {
	ctx := context.Background()
	store := notify.NewStore(memory.New())

	// The same split request shows up in two separate poll windows.
	sub := &fakeSubscription{batches: [][]models.LedgerEvent{
		{splitRequest(300)},
		{splitRequest(300)},
	}}
	w := New(sub, store)

	for i := 0; i < 2; i++ {
		if err := w.RunOnce(ctx); err != nil {
			t.Fatalf("RunOnce failed: %v", err)
		}
	}

	list, err := store.List(ctx, bob)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d notifications after redelivery, want 1", len(list))
	}
	if list[0].Kind != models.NotificationSplitRequest {
		t.Errorf("kind = %s, want split_request", list[0].Kind)
	}
	pending, _ := store.PendingSplitCount(ctx, bob)
	if pending != 1 {
		t.Errorf("pendingSplitCount = %d, want 1", pending)
	}
}

func TestDuplicatesWithinOneBatch(t *testing.T) {
	ctx := context.Background()
	store := notify.NewStore(memory.New())

	sub := &fakeSubscription{batches: [][]models.LedgerEvent{
		{splitRequest(300), splitRequest(300), splitRequest(500)},
	}}
	w := New(sub, store)

	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	list, _ := store.List(ctx, bob)
	if len(list) != 2 {
		t.Fatalf("got %d notifications, want 2 (300 deduped, 500 distinct)", len(list))
	}
}

func TestPollErrorDoesNotDisturbState(t *testing.T) {
	ctx := context.Background()
	store := notify.NewStore(memory.New())

	sub := &fakeSubscription{
		batches: [][]models.LedgerEvent{{splitRequest(300)}, {splitRequest(300)}, {splitRequest(300)}},
		errs:    []error{nil, errors.New("rpc timeout")},
	}
	w := New(sub, store)

	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("first tick failed: %v", err)
	}
	if err := w.RunOnce(ctx); err == nil {
		t.Fatal("second tick should surface the poll error")
	}
	// Third tick redelivers the window; state converges, no duplicates.
	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("third tick failed: %v", err)
	}

	list, _ := store.List(ctx, bob)
	if len(list) != 1 {
		t.Errorf("got %d notifications, want 1", len(list))
	}
}

func TestMalformedEventSkippedNotFatal(t *testing.T) {
	ctx := context.Background()
	store := notify.NewStore(memory.New())

	// Malformed event (no amount) mixed into a batch with a good one.
	bad := splitRequest(300)
	bad.Amount = nil
	sub := &fakeSubscription{batches: [][]models.LedgerEvent{{bad, splitRequest(500)}}}
	w := New(sub, store)

	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed: %v", err)
	}

	list, _ := store.List(ctx, bob)
	if len(list) != 1 {
		t.Fatalf("got %d notifications, want 1 (bad event dropped, good applied)", len(list))
	}
	if list[0].Amount != "500" {
		t.Errorf("surviving notification amount = %s, want 500", list[0].Amount)
	}
}

func TestFailedAppendRedeliveredNextTick(t *testing.T) {
	ctx := context.Background()
	store := notify.NewStore(&flakyStore{Store: memory.New(), failures: 1})

	sub := &windowedSubscription{batch: []models.LedgerEvent{splitRequest(300)}}
	w := New(sub, store)

	// First tick: the store write fails. The tick must surface the error
	// and leave the window unacked so it comes back.
	if err := w.RunOnce(ctx); err == nil {
		t.Fatal("tick with a failed append should report an error")
	}
	if sub.acked {
		t.Fatal("window acked despite a failed append")
	}

	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("retry tick failed: %v", err)
	}
	if !sub.acked {
		t.Error("clean tick should ack the window")
	}

	list, err := store.List(ctx, bob)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d notifications after retry, want 1", len(list))
	}
}

func TestPartialBatchKeepsApplying(t *testing.T) {
	ctx := context.Background()
	// bob's write fails once; alice's must still land on the same tick.
	store := notify.NewStore(&flakyStore{Store: memory.New(), failures: 1})

	funds := models.LedgerEvent{
		Kind:     models.EventFundsAdded,
		GroupKey: groupkey.Derive("Dinner", alice),
		Actor:    alice,
		Amount:   big.NewInt(700),
	}
	sub := &windowedSubscription{batch: []models.LedgerEvent{splitRequest(300), funds}}
	w := New(sub, store)

	if err := w.RunOnce(ctx); err == nil {
		t.Fatal("tick with a failed append should report an error")
	}
	if list, _ := store.List(ctx, alice); len(list) != 1 {
		t.Errorf("got %d notifications for the unaffected user, want 1", len(list))
	}

	// The redelivered window fills the gap without duplicating.
	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("retry tick failed: %v", err)
	}
	if list, _ := store.List(ctx, bob); len(list) != 1 {
		t.Errorf("got %d notifications for bob after retry, want 1", len(list))
	}
	if list, _ := store.List(ctx, alice); len(list) != 1 {
		t.Errorf("got %d notifications for alice after retry, want 1", len(list))
	}
}

// slowSubscription stalls its first poll and records when each poll
// starts.
type slowSubscription struct {
	delay  time.Duration
	starts []time.Time
}

func (s *slowSubscription) Poll(context.Context) ([]models.LedgerEvent, error) {
	s.starts = append(s.starts, time.Now())
	if len(s.starts) == 1 {
		time.Sleep(s.delay)
	}
	return nil, nil
}

func (s *slowSubscription) Ack() {}

func TestOverdueTickSkippedAfterSlowTick(t *testing.T) {
	sub := &slowSubscription{delay: 60 * time.Millisecond}
	w := New(sub, notify.NewStore(memory.New()), WithInterval(40*time.Millisecond))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	w.Run(ctx)

	if len(sub.starts) < 2 {
		t.Fatalf("got %d polls, want at least 2", len(sub.starts))
	}
	// The tick that came due during the slow poll is dropped, so the next
	// poll waits for a fresh tick instead of firing immediately.
	if gap := sub.starts[1].Sub(sub.starts[0]) - sub.delay; gap < 5*time.Millisecond {
		t.Errorf("second poll started %v after the slow one finished, want a fresh tick", gap)
	}
}

type recordingSink struct {
	published []any
	err       error
}

func (r *recordingSink) Publish(_ string, event any) error {
	if r.err != nil {
		return r.err
	}
	r.published = append(r.published, event)
	return nil
}

func TestSinkSeesOnlyInserts(t *testing.T) {
	ctx := context.Background()
	store := notify.NewStore(memory.New())
	sink := &recordingSink{}

	sub := &fakeSubscription{batches: [][]models.LedgerEvent{
		{splitRequest(300)},
		{splitRequest(300)}, // redelivery, must not republish
	}}
	w := New(sub, store, WithSink(sink))

	w.RunOnce(ctx)
	w.RunOnce(ctx)

	if len(sink.published) != 1 {
		t.Errorf("sink received %d events, want 1", len(sink.published))
	}
}

func TestSinkFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	store := notify.NewStore(memory.New())
	sink := &recordingSink{err: errors.New("broker down")}

	sub := &fakeSubscription{batches: [][]models.LedgerEvent{{splitRequest(300)}}}
	w := New(sub, store, WithSink(sink))

	if err := w.RunOnce(ctx); err != nil {
		t.Fatalf("RunOnce failed on sink error: %v", err)
	}
	list, _ := store.List(ctx, bob)
	if len(list) != 1 {
		t.Errorf("notification lost because of sink failure")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	store := notify.NewStore(memory.New())
	sub := &fakeSubscription{}
	w := New(sub, store, WithInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}
