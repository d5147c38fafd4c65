package debugcore

// ThunkAddr is the fixed reserved MMIO address the injected subroutine
// call thunk is written to and redirected into.
const ThunkAddr = 0xFC50

// thunkBufSize is large enough to hold the full 21-byte thunk with room to
// spare; the MMIO window a caller actually exposes at $FC50 can be any
// size up to this.
const thunkBufSize = 24

// AsyncCallTimeoutCycles is how long ScheduleAsyncCall waits for a
// qualifying IRQ entry before giving up and reporting called=false.
const AsyncCallTimeoutCycles = 1_000_000

// AsyncCallback reports whether a scheduled call was actually injected.
type AsyncCallback func(called bool)

type asyncState struct {
	pending      bool
	address      uint16
	a, x, y      uint8
	carry        bool
	callback     AsyncCallback
	cyclesWaited uint64
	thunk        [thunkBufSize]byte
	thunkLen     int
}

// ScheduleAsyncCall arms a one-shot 6502 subroutine call to be injected at
// the next qualifying IRQ entry. A call already pending is cancelled first
// (its callback fires with called=false, no error) before the new one is
// armed.
func (d *Debugger) ScheduleAsyncCall(address uint16, a, x, y uint8, carry bool, cb AsyncCallback) {
	d.asyncMu.Lock()
	prior := d.async.callback
	wasPending := d.async.pending
	d.async = asyncState{
		pending:  true,
		address:  address,
		a:        a,
		x:        x,
		y:        y,
		carry:    carry,
		callback: cb,
	}
	d.asyncMu.Unlock()

	if wasPending && prior != nil {
		prior(false)
	}
}

// Tick advances the pending call's timeout by one cycle; call once per CPU
// cycle. Firing the timeout invokes the callback with called=false.
func (d *Debugger) Tick() {
	d.asyncMu.Lock()
	if !d.async.pending {
		d.asyncMu.Unlock()
		return
	}
	d.async.cyclesWaited++
	timedOut := d.async.cyclesWaited >= AsyncCallTimeoutCycles
	var cb AsyncCallback
	if timedOut {
		cb = d.async.callback
		d.async = asyncState{}
	}
	d.asyncMu.Unlock()

	if cb != nil {
		cb(false)
	}
}

// TryInjectAsyncCall is called exactly when the CPU is about to vector a
// genuine hardware IRQ (never NMI, never BRK). If a call is pending, it
// builds and stores the thunk bytes, invokes the callback with
// called=true, and returns (ThunkAddr, true) so the caller redirects PC
// there instead of the normal IRQ vector target. The stack push the CPU
// already performed for this interrupt entry is left untouched: the
// thunk's trailing RTI pulls it back exactly as the real handler would
// have.
func (d *Debugger) TryInjectAsyncCall() (uint16, bool) {
	d.asyncMu.Lock()
	if !d.async.pending {
		d.asyncMu.Unlock()
		return 0, false
	}

	thunk := buildThunk(d.async.address, d.async.a, d.async.x, d.async.y, d.async.carry)
	copy(d.async.thunk[:], thunk)
	for i := len(thunk); i < thunkBufSize; i++ {
		d.async.thunk[i] = 0
	}
	d.async.thunkLen = len(thunk)
	d.async.pending = false
	cb := d.async.callback
	d.async.callback = nil
	d.asyncMu.Unlock()

	if cb != nil {
		cb(true)
	}
	return ThunkAddr, true
}

// ReadThunkByte serves an MMIO read in the $FC50-$FC63 window. Before a
// call has ever been injected the buffer is all zero, matching "returns
// the current thunk-buffer byte (0 before the trigger)".
func (d *Debugger) ReadThunkByte(offset int) uint8 {
	d.asyncMu.Lock()
	defer d.asyncMu.Unlock()
	if offset < 0 || offset >= thunkBufSize {
		return 0
	}
	return d.async.thunk[offset]
}

// buildThunk assembles the injected-call sequence: preserve A/X/Y, load
// the requested A/X/Y and carry, JSR the target, restore A/X/Y, RTI.
func buildThunk(addr uint16, a, x, y uint8, carry bool) []byte {
	carryOp := byte(0x18) // CLC
	if carry {
		carryOp = 0x38 // SEC
	}
	lo := byte(addr)
	hi := byte(addr >> 8)
	return []byte{
		0x48,         // PHA
		0x8A, 0x48,   // TXA, PHA
		0x98, 0x48,   // TYA, PHA
		0xA9, a,      // LDA #a
		0xA2, x,      // LDX #x
		0xA0, y,      // LDY #y
		carryOp,      // SEC/CLC
		0x20, lo, hi, // JSR addr
		0x68, 0xA8, // PLA, TAY
		0x68, 0xAA, // PLA, TAX
		0x68, // PLA
		0x40, // RTI
	}
}
