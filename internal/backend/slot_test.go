package backend

import (
	"errors"
	"os/exec"
	"testing"
)

func TestSlotStoreAndTake(t *testing.T) {
	slot := &Slot{}
	proc := NewProcess(exec.Command("true"))

	if !slot.Empty() {
		t.Error("new slot should be empty")
	}
	if err := slot.Store(proc); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	if slot.Empty() {
		t.Error("slot should not be empty after store")
	}
	if got := slot.Peek(); got != proc {
		t.Errorf("peek returned %v, want stored process", got)
	}

	got := slot.Take()
	if got != proc {
		t.Errorf("take returned %v, want stored process", got)
	}
	if !slot.Empty() {
		t.Error("slot should be empty after take")
	}
}

func TestSlotTakeEmpty(t *testing.T) {
	slot := &Slot{}
	if got := slot.Take(); got != nil {
		t.Errorf("take on empty slot returned %v, want nil", got)
	}
}

func TestSlotSecondTakeNil(t *testing.T) {
	slot := &Slot{}
	if err := slot.Store(NewProcess(exec.Command("true"))); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	if got := slot.Take(); got == nil {
		t.Fatal("first take returned nil")
	}
	if got := slot.Take(); got != nil {
		t.Errorf("second take returned %v, want nil", got)
	}
}

func TestSlotStoreOccupied(t *testing.T) {
	slot := &Slot{}
	if err := slot.Store(NewProcess(exec.Command("true"))); err != nil {
		t.Fatalf("store failed: %v", err)
	}

	err := slot.Store(NewProcess(exec.Command("true")))
	if !errors.Is(err, ErrSlotOccupied) {
		t.Errorf("expected ErrSlotOccupied, got %v", err)
	}
}

func TestSlotStoreAfterTake(t *testing.T) {
	slot := &Slot{}
	if err := slot.Store(NewProcess(exec.Command("true"))); err != nil {
		t.Fatalf("store failed: %v", err)
	}
	slot.Take()

	err := slot.Store(NewProcess(exec.Command("true")))
	if !errors.Is(err, ErrSlotClosed) {
		t.Errorf("expected ErrSlotClosed, got %v", err)
	}
}

func TestSlotStoreNil(t *testing.T) {
	slot := &Slot{}
	if err := slot.Store(nil); err == nil {
		t.Error("expected an error storing nil")
	}
}

func TestSlotTakeClosesEvenWhenEmpty(t *testing.T) {
	slot := &Slot{}
	if got := slot.Take(); got != nil {
		t.Fatalf("take on empty slot returned %v", got)
	}

	// A destroy event that races ahead of the store must still close the
	// slot, so the late store fails and the caller disposes of the process.
	err := slot.Store(NewProcess(exec.Command("true")))
	if !errors.Is(err, ErrSlotClosed) {
		t.Errorf("expected ErrSlotClosed after empty take, got %v", err)
	}
}
