package common

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryImportLock_MutualExclusion(t *testing.T) {
	lock := NewMemoryImportLock()
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "apply:review-1", time.Minute)
	if err != nil {
		t.Fatalf("First acquire failed: %v", err)
	}

	if _, err := lock.Acquire(ctx, "rollback:import-1", time.Minute); !errors.Is(err, ErrLockHeld) {
		t.Errorf("Expected ErrLockHeld while held, got %v", err)
	}

	release()

	release2, err := lock.Acquire(ctx, "rollback:import-1", time.Minute)
	if err != nil {
		t.Fatalf("Acquire after release failed: %v", err)
	}
	release2()
}

func TestMemoryImportLock_ExpiredLockIsReacquirable(t *testing.T) {
	lock := NewMemoryImportLock()
	ctx := context.Background()

	if _, err := lock.Acquire(ctx, "apply:crashed", time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	release, err := lock.Acquire(ctx, "apply:next", time.Minute)
	if err != nil {
		t.Errorf("An expired lock must be reacquirable, got %v", err)
	} else {
		release()
	}
}

func TestMemoryImportLock_ReleaseIsOwnershipChecked(t *testing.T) {
	lock := NewMemoryImportLock()
	ctx := context.Background()

	staleRelease, err := lock.Acquire(ctx, "apply:first", time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := lock.Acquire(ctx, "apply:second", time.Minute); err != nil {
		t.Fatal(err)
	}

	// The stale holder's release must not free the new holder's lock.
	staleRelease()

	if _, err := lock.Acquire(ctx, "apply:third", time.Minute); !errors.Is(err, ErrLockHeld) {
		t.Errorf("Stale release must not free the current holder's lock, got %v", err)
	}
}
