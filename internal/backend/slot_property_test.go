package backend

import (
	"os/exec"
	"sync"
	"testing"

	"pgregory.net/rapid"
)

// Whatever mix of stores and concurrent takes happens, at most one taker
// ever observes the handle, and nothing can be stored afterwards.
func TestSlotSingleWinner(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		takers := rapid.IntRange(1, 32).Draw(t, "takers")
		stored := rapid.Bool().Draw(t, "stored")

		slot := &Slot{}
		proc := NewProcess(exec.Command("true"))
		if stored {
			if err := slot.Store(proc); err != nil {
				t.Fatalf("store failed: %v", err)
			}
		}

		var wg sync.WaitGroup
		wins := make(chan *Process, takers)
		for i := 0; i < takers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if p := slot.Take(); p != nil {
					wins <- p
				}
			}()
		}
		wg.Wait()
		close(wins)

		var got []*Process
		for p := range wins {
			got = append(got, p)
		}

		if stored {
			if len(got) != 1 {
				t.Fatalf("expected exactly one winner, got %d", len(got))
			}
			if got[0] != proc {
				t.Fatalf("winner observed %v, want stored process", got[0])
			}
		} else if len(got) != 0 {
			t.Fatalf("expected no winners on empty slot, got %d", len(got))
		}

		if err := slot.Store(proc); err != ErrSlotClosed {
			t.Fatalf("store after takes returned %v, want ErrSlotClosed", err)
		}
	})
}
