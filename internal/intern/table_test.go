package intern

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func buildString(s string) func(ID) (string, error) {
	return func(ID) (string, error) { return s, nil }
}

func TestInternIsIdempotent(t *testing.T) {
	tab := New[string, string](0)
	a, created, err := tab.Intern("java.lang.String", buildString("String"))
	if err != nil || !created {
		t.Fatalf("first intern: id=%d created=%v err=%v", a, created, err)
	}
	b, created, err := tab.Intern("java.lang.String", buildString("other"))
	if err != nil || created {
		t.Fatalf("second intern: created=%v err=%v", created, err)
	}
	if a != b {
		t.Fatalf("expected same ID, got %d and %d", a, b)
	}
	if got := tab.MustGet(a); got != "String" {
		t.Fatalf("value replaced on re-intern: %q", got)
	}
}

func TestDistinctKeysGetDistinctIDs(t *testing.T) {
	tab := New[string, int](0)
	a, _, _ := tab.Intern("a", func(ID) (int, error) { return 1, nil })
	b, _, _ := tab.Intern("b", func(ID) (int, error) { return 2, nil })
	if a == b {
		t.Fatalf("distinct keys share ID %d", a)
	}
	if tab.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", tab.Len())
	}
}

func TestBuildErrorLeavesTableUnchanged(t *testing.T) {
	tab := New[string, int](0)
	boom := errors.New("boom")
	if _, _, err := tab.Intern("x", func(ID) (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected build error, got %v", err)
	}
	if _, ok := tab.Lookup("x"); ok {
		t.Fatalf("failed build must not be indexed")
	}
	if tab.Len() != 0 {
		t.Fatalf("failed build must not allocate, len=%d", tab.Len())
	}
}

func TestGetRejectsSentinel(t *testing.T) {
	tab := New[string, int](0)
	if _, ok := tab.Get(NoID); ok {
		t.Fatalf("NoID must not resolve")
	}
	if _, ok := tab.Get(42); ok {
		t.Fatalf("out of range ID must not resolve")
	}
}

func TestConcurrentInternBuildsOnce(t *testing.T) {
	tab := New[string, int](0)
	var builds atomic.Int32
	ids := make([]ID, 64)

	var g errgroup.Group
	for i := range ids {
		g.Go(func() error {
			key := fmt.Sprintf("k%d", i%4)
			id, _, err := tab.Intern(key, func(ID) (int, error) {
				builds.Add(1)
				return i, nil
			})
			ids[i] = id
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("intern: %v", err)
	}
	if got := builds.Load(); got != 4 {
		t.Fatalf("expected 4 builds, got %d", got)
	}
	for i := range ids {
		if ids[i] != ids[i%4] {
			t.Fatalf("key k%d interned to %d and %d", i%4, ids[i], ids[i%4])
		}
	}
}

func TestResetClearsEntries(t *testing.T) {
	tab := New[string, int](0)
	tab.Intern("a", func(ID) (int, error) { return 1, nil })
	tab.Reset()
	if tab.Len() != 0 {
		t.Fatalf("reset left %d entries", tab.Len())
	}
	if _, ok := tab.Lookup("a"); ok {
		t.Fatalf("reset left key indexed")
	}
	id, created, _ := tab.Intern("a", func(ID) (int, error) { return 2, nil })
	if !created || id != 1 {
		t.Fatalf("expected fresh slot 1 after reset, got %d created=%v", id, created)
	}
}

func TestEachVisitsInAllocationOrder(t *testing.T) {
	tab := New[string, string](0)
	for _, k := range []string{"c", "a", "b"} {
		tab.Intern(k, buildString(k))
	}
	var seen []string
	tab.Each(func(_ ID, v string) bool {
		seen = append(seen, v)
		return true
	})
	if fmt.Sprint(seen) != "[c a b]" {
		t.Fatalf("unexpected order %v", seen)
	}
}

func TestGetDoesNotWaitForInsert(t *testing.T) {
	tab := New[string, int](0)
	first, _, _ := tab.Intern("first", func(ID) (int, error) { return 7, nil })

	inBuild := make(chan struct{})
	release := make(chan struct{})
	go func() {
		tab.Intern("slow", func(ID) (int, error) {
			close(inBuild)
			<-release
			return 8, nil
		})
	}()
	<-inBuild
	defer close(release)

	got := make(chan int, 1)
	go func() {
		v, _ := tab.Get(first)
		got <- v
	}()
	select {
	case v := <-got:
		if v != 7 {
			t.Fatalf("Get(first) = %d, want 7", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Get waited for an insert in progress")
	}
	if tab.Len() != 1 {
		t.Fatalf("unpublished slot counted: Len = %d", tab.Len())
	}
}

func TestValuesSurviveChunkGrowth(t *testing.T) {
	tab := New[int, int](0)
	const n = 3*chunkSize + 5
	var g errgroup.Group
	g.Go(func() error {
		for i := range n {
			if _, _, err := tab.Intern(i, func(ID) (int, error) { return i * 10, nil }); err != nil {
				return err
			}
		}
		return nil
	})
	g.Go(func() error {
		// reads race with growth; every published slot must be intact
		for range 2000 {
			tab.Each(func(id ID, v int) bool {
				if v != int(id-1)*10 {
					t.Errorf("slot %d holds %d", id, v)
					return false
				}
				return true
			})
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		t.Fatalf("intern: %v", err)
	}
	if tab.Len() != n {
		t.Fatalf("Len = %d, want %d", tab.Len(), n)
	}
	for i := range n {
		id, ok := tab.Lookup(i)
		if !ok {
			t.Fatalf("key %d missing", i)
		}
		if v := tab.MustGet(id); v != i*10 {
			t.Fatalf("key %d -> %d", i, v)
		}
	}
}
