package room

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"sharepad/internal/storage/sqlite"
)

func TestEnsure_Idempotent(t *testing.T) {
	g := NewRegistry(nil, 0)
	ctx := context.Background()

	first := g.Ensure(ctx, "alpha")
	second := g.Ensure(ctx, "alpha")

	if first != second {
		t.Errorf("Ensure not idempotent: %+v vs %+v", first, second)
	}
	if first.Language != DefaultLanguage {
		t.Errorf("new room language = %q, want %q", first.Language, DefaultLanguage)
	}
	if first.Code != "" {
		t.Errorf("new room code = %q, want empty", first.Code)
	}
}

func TestSetCode_LastWriteWins(t *testing.T) {
	g := NewRegistry(nil, 0)
	ctx := context.Background()

	g.SetCode(ctx, "r", "first")
	g.SetCode(ctx, "r", "second")

	snap, ok := g.Get("r")
	if !ok {
		t.Fatal("room not found after SetCode")
	}
	if snap.Code != "second" {
		t.Errorf("code = %q, want %q", snap.Code, "second")
	}
}

func TestSetCode_ImplicitCreate(t *testing.T) {
	g := NewRegistry(nil, 0)

	// A code-change for an unknown room tolerates the event by creating
	// the room rather than rejecting it.
	g.SetCode(context.Background(), "ghost", "print(1)")

	snap, ok := g.Get("ghost")
	if !ok {
		t.Fatal("expected implicit room creation")
	}
	if snap.Code != "print(1)" || snap.Language != DefaultLanguage {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestSetCodeAndLanguage_NoTornRead(t *testing.T) {
	g := NewRegistry(nil, 0)
	ctx := context.Background()

	// Writer flips between two consistent pairs; readers must only ever
	// observe one of them.
	pairs := [2][2]string{
		{"code-a", "python"},
		{"code-b", "javascript"},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			p := pairs[i%2]
			g.SetCodeAndLanguage(ctx, "r", p[0], p[1])
		}
	}()

	for i := 0; i < 500; i++ {
		snap, ok := g.Get("r")
		if !ok {
			continue
		}
		if (snap.Code == "code-a") != (snap.Language == "python") {
			t.Fatalf("torn read: %+v", snap)
		}
	}
	<-done
}

func TestConcurrentWriters_DistinctRooms(t *testing.T) {
	g := NewRegistry(nil, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("room-%d", n)
			for j := 0; j < 100; j++ {
				g.SetCode(ctx, id, fmt.Sprintf("v%d", j))
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		snap, ok := g.Get(fmt.Sprintf("room-%d", i))
		if !ok {
			t.Fatalf("room-%d missing", i)
		}
		if snap.Code != "v99" {
			t.Errorf("room-%d code = %q, want v99", i, snap.Code)
		}
	}
}

func TestEnsure_HydratesFromStore(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SaveCode(ctx, "persisted", "saved code"); err != nil {
		t.Fatal(err)
	}

	g := NewRegistry(store, 0)
	snap := g.Ensure(ctx, "persisted")
	if snap.Code != "saved code" {
		t.Errorf("hydrated code = %q, want %q", snap.Code, "saved code")
	}
}

func TestJoin_HydratesFromStore(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.SaveCode(ctx, "r", "persisted code"); err != nil {
		t.Fatal(err)
	}

	// The gateway joins before it snapshots; hydration must fire no matter
	// which operation creates the record.
	g := NewRegistry(store, 0)
	g.Join(ctx, "r")
	snap := g.Ensure(ctx, "r")
	if snap.Code != "persisted code" {
		t.Errorf("snapshot after join = %q, want %q", snap.Code, "persisted code")
	}
	if snap.Participants != 1 {
		t.Errorf("participants = %d, want 1", snap.Participants)
	}
}

func TestSetCode_Persists(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	ctx := context.Background()
	g := NewRegistry(store, 0)
	g.SetCode(ctx, "r", "durable")

	code, ok, err := store.LoadCode(ctx, "r")
	if err != nil {
		t.Fatal(err)
	}
	if !ok || code != "durable" {
		t.Errorf("store has (%q, %v), want (%q, true)", code, ok, "durable")
	}
}

func TestEviction_WaitsForGrace(t *testing.T) {
	g := NewRegistry(nil, 20*time.Millisecond)
	ctx := context.Background()

	g.Join(ctx, "r")
	g.Leave("r")

	if _, ok := g.Get("r"); !ok {
		t.Fatal("room evicted before grace period")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, ok := g.Get("r"); !ok {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("room not evicted after grace period")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestEviction_CancelledByRejoin(t *testing.T) {
	g := NewRegistry(nil, 20*time.Millisecond)
	ctx := context.Background()

	g.Join(ctx, "r")
	g.Leave("r")
	g.Join(ctx, "r") // rejoin within grace cancels the pending eviction

	time.Sleep(60 * time.Millisecond)

	snap, ok := g.Get("r")
	if !ok {
		t.Fatal("occupied room was evicted")
	}
	if snap.Participants != 1 {
		t.Errorf("participants = %d, want 1", snap.Participants)
	}
}
