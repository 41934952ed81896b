package taskcontrol

import (
	"testing"
	"time"
)

func TestPauseResumeUnblocksWaiter(t *testing.T) {
	c := New()
	c.Pause()

	done := make(chan struct{})
	go func() {
		c.AwaitIfPaused()
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("AwaitIfPaused returned before Resume")
	case <-time.After(50 * time.Millisecond):
	}

	c.Resume()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AwaitIfPaused did not unblock after Resume")
	}
}

func TestCancelWakesPausedWaiter(t *testing.T) {
	c := New()
	c.Pause()

	done := make(chan struct{})
	go func() {
		c.AwaitIfPaused()
		close(done)
	}()

	c.Cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Cancel did not wake a paused waiter")
	}
	if !c.IsCancelled() {
		t.Fatal("IsCancelled should be true after Cancel")
	}
}

func TestCancelWithoutPauseIsObservable(t *testing.T) {
	c := New()
	if c.IsCancelled() {
		t.Fatal("fresh controller should not be cancelled")
	}
	c.Cancel()
	if !c.IsCancelled() {
		t.Fatal("IsCancelled should report true after Cancel")
	}
}
