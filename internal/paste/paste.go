// Package paste implements the synthetic key-injection hack (spec §4.7):
// feeding a string to the emulated machine as if it had been typed, by
// intercepting the OS's character-input routine rather than synthesising
// keystrokes.
package paste

// State is the paste engine's state machine.
type State int

const (
	None State = iota
	Wait
	Delete
	Paste
)

// WaitDeadlineCycles is the cycle budget spec §4.7 describes as "observable
// but effectively unused" — paste actually advances on the next OSRDCH
// opcode fetch regardless of how many cycles have elapsed.
const WaitDeadlineCycles = 2_000_000

// Engine tracks in-flight paste text and the state machine driving it.
type Engine struct {
	state    State
	text     []byte
	index    int
	deadline uint64
}

// Active reports whether a paste is in progress.
func (e *Engine) Active() bool { return e.state != None }

// State returns the current state-machine state.
func (e *Engine) State() State { return e.state }

// Start arms a new paste. currentCycle is the machine's cycle counter at
// the moment of the call, used to compute the (unused-in-practice)
// deadline. Start only arms the state machine: neither Start nor OSRDCH
// presses or releases any key.
func (e *Engine) Start(text string, currentCycle uint64) {
	e.state = Wait
	e.text = []byte(text)
	e.index = 0
	e.deadline = currentCycle + WaitDeadlineCycles
}

// Stop cancels any in-flight paste immediately, dropping remaining text.
func (e *Engine) Stop() {
	e.state = None
	e.text = nil
	e.index = 0
}

// OSRDCH is called by the CPU data-bus hacks wrapper whenever the opcode
// about to execute is OSRDCH's entry point. It returns the value to load
// into A and whether the opcode fetch should be forced to RTS ($60) with
// carry cleared. That is true in every active state except a Paste step
// with no text left, which ends the paste without forcing RTS.
func (e *Engine) OSRDCH() (a uint8, forceRTS bool) {
	switch e.state {
	case Wait:
		e.state = Delete
		return 0, true
	case Delete:
		e.state = Paste
		return 127, true
	case Paste:
		if e.index >= len(e.text) {
			e.state = None
			return 0, false
		}
		b := e.text[e.index]
		e.index++
		if e.index >= len(e.text) {
			e.state = None
		}
		return b, true
	default:
		return 0, false
	}
}
