package runstate

import (
	"sync"
	"testing"
)

func TestSetRunningAndLookup(t *testing.T) {
	tr := NewTracker()

	if tr.IsRunning("a") {
		t.Error("new tracker should be empty")
	}

	tr.SetRunning("a", true)
	tr.SetRunning("b", true)

	if !tr.IsRunning("a") || !tr.IsRunning("b") {
		t.Error("expected a and b running")
	}
	if tr.Len() != 2 {
		t.Errorf("expected 2 running, got %d", tr.Len())
	}

	tr.SetRunning("a", false)
	if tr.IsRunning("a") {
		t.Error("a should have stopped")
	}
	if tr.Len() != 1 {
		t.Errorf("expected 1 running, got %d", tr.Len())
	}
}

func TestRunningIDsSorted(t *testing.T) {
	tr := NewTracker()
	tr.SetRunning("zeta", true)
	tr.SetRunning("alpha", true)
	tr.SetRunning("mid", true)

	ids := tr.RunningIDs()
	want := []string{"alpha", "mid", "zeta"}
	if len(ids) != len(want) {
		t.Fatalf("expected %d ids, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestEmptyIDIgnored(t *testing.T) {
	tr := NewTracker()
	tr.SetRunning("", true)
	if tr.Len() != 0 {
		t.Error("empty id should not enter the set")
	}
}

func TestSubscribeReceivesChanges(t *testing.T) {
	tr := NewTracker()
	ch := tr.Subscribe()
	defer tr.Unsubscribe(ch)

	tr.SetRunning("a", true)
	ev := <-ch
	if ev.ID != "a" || !ev.Running {
		t.Errorf("unexpected event %+v", ev)
	}

	// Repeating the same state is not a change.
	tr.SetRunning("a", true)
	tr.SetRunning("a", false)
	ev = <-ch
	if ev.ID != "a" || ev.Running {
		t.Errorf("expected stop event, got %+v", ev)
	}

	select {
	case extra := <-ch:
		t.Errorf("unexpected extra event %+v", extra)
	default:
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	tr := NewTracker()
	ch := tr.Subscribe()
	tr.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}

	// Events after unsubscribe must not panic.
	tr.SetRunning("a", true)
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker()
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := string(rune('a' + n))
			for j := 0; j < 100; j++ {
				tr.SetRunning(id, j%2 == 0)
				tr.IsRunning(id)
				tr.RunningIDs()
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		if tr.IsRunning(string(rune('a' + i))) {
			t.Errorf("id %c should have ended stopped", 'a'+i)
		}
	}
}
