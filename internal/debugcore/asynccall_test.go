package debugcore

import (
	"testing"

	"beeb-core/internal/bigpage"
)

func TestScheduleAsyncCallThenInjectBuildsLiteralThunk(t *testing.T) {
	d := newTestDebugger(bigpage.VariantMaster, 65536)

	var called *bool
	d.ScheduleAsyncCall(0x1234, 1, 2, 3, true, func(c bool) {
		called = &c
	})

	addr, injected := d.TryInjectAsyncCall()
	if !injected {
		t.Fatalf("expected TryInjectAsyncCall to report an injection")
	}
	if addr != ThunkAddr {
		t.Fatalf("TryInjectAsyncCall address = %#x, want %#x", addr, ThunkAddr)
	}
	if called == nil || !*called {
		t.Fatalf("expected the callback to fire with called=true")
	}

	want := []byte{
		0x48, 0x8A, 0x48, 0x98, 0x48,
		0xA9, 0x01, 0xA2, 0x02, 0xA0, 0x03,
		0x38,
		0x20, 0x34, 0x12,
		0x68, 0xA8, 0x68, 0xAA, 0x68,
		0x40,
	}
	for i, wantByte := range want {
		if got := d.ReadThunkByte(i); got != wantByte {
			t.Fatalf("thunk byte %d = %#x, want %#x", i, got, wantByte)
		}
	}
}

func TestReadThunkByteIsZeroBeforeInjection(t *testing.T) {
	d := newTestDebugger(bigpage.VariantMaster, 65536)
	d.ScheduleAsyncCall(0x1234, 1, 2, 3, true, func(bool) {})
	if got := d.ReadThunkByte(0); got != 0 {
		t.Fatalf("ReadThunkByte(0) before injection = %#x, want 0", got)
	}
}

func TestTryInjectAsyncCallWithNothingPendingDoesNothing(t *testing.T) {
	d := newTestDebugger(bigpage.VariantMaster, 65536)
	_, injected := d.TryInjectAsyncCall()
	if injected {
		t.Fatalf("expected no injection when no call is pending")
	}
}

func TestSchedulingANewCallCancelsThePriorOne(t *testing.T) {
	d := newTestDebugger(bigpage.VariantMaster, 65536)

	var firstResult *bool
	d.ScheduleAsyncCall(0x1000, 0, 0, 0, false, func(c bool) { firstResult = &c })
	d.ScheduleAsyncCall(0x2000, 0, 0, 0, false, func(bool) {})

	if firstResult == nil || *firstResult {
		t.Fatalf("expected the superseded call's callback to fire with called=false")
	}
}

func TestTickFiresTimeoutCallback(t *testing.T) {
	d := newTestDebugger(bigpage.VariantMaster, 65536)
	var result *bool
	d.ScheduleAsyncCall(0x1000, 0, 0, 0, false, func(c bool) { result = &c })

	for i := 0; i < AsyncCallTimeoutCycles; i++ {
		d.Tick()
	}
	if result == nil || *result {
		t.Fatalf("expected the callback to fire with called=false after the timeout elapses")
	}

	// A further tick with nothing pending must not panic or refire.
	result = nil
	d.Tick()
	if result != nil {
		t.Fatalf("expected no further callback once the pending call has already resolved")
	}
}
