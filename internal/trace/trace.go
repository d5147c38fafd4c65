// Package trace implements the optional instruction/IO event ring
// described for the core (spec "TraceSink"): a fixed-capacity buffer of
// records tagged by event type, each carrying an absolute cycle
// timestamp, with either a fixed-size instruction-event payload or a
// variable-size formatted string. The on-disk trace format a host
// eventually writes these out to is explicitly not this package's
// concern - only the event taxonomy is.
package trace

import (
	"fmt"
	"sync"
)

// EventType tags which payload a Record carries.
type EventType uint8

const (
	EventInstruction EventType = iota
	EventFormatted
)

// InstructionRecord is the fixed-size payload for one instruction fetch:
// the registers at fetch time plus whatever addresses the addressing mode
// computed.
type InstructionRecord struct {
	PC        uint16
	Effective uint16
	Indirect  uint16
	A, X, Y   uint8
	P         uint8
	S         uint8
	Data      uint8
	Opcode    uint8
}

// Record is one entry in the ring: an event type, an absolute cycle
// timestamp, and exactly one of the two payloads populated.
type Record struct {
	Type        EventType
	Cycle       uint64
	Instruction InstructionRecord
	Text        string
}

// Sink is a fixed-capacity ring buffer of trace records. Once full, each
// new record overwrites the oldest. A window (start cycle and record limit) mirrors
// the source's cycle-offset logging so a caller can capture only a
// specific slice of a long run without growing the buffer unbounded.
type Sink struct {
	mu sync.Mutex

	enabled bool

	records []Record
	next    int
	count   int

	startCycle uint64 // records before this absolute cycle are dropped
	maxRecords uint64 // 0 = unlimited; once reached, further records are dropped
	seen       uint64 // total records offered since the window was armed
}

// NewSink allocates a ring of the given capacity. capacity must be at
// least 1.
func NewSink(capacity int) *Sink {
	if capacity < 1 {
		capacity = 1
	}
	return &Sink{
		records: make([]Record, capacity),
		enabled: true,
	}
}

// SetWindow restricts recording to cycle >= startCycle, and to at most
// maxRecords records after that point (0 = unlimited). Call before
// recording begins; it resets the seen-count.
func (s *Sink) SetWindow(startCycle uint64, maxRecords uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startCycle = startCycle
	s.maxRecords = maxRecords
	s.seen = 0
}

func (s *Sink) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

func (s *Sink) Toggle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = !s.enabled
}

func (s *Sink) IsEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// admit reports whether a record at cycle should be kept, and advances the
// window bookkeeping. Caller must hold s.mu.
func (s *Sink) admit(cycle uint64) bool {
	if !s.enabled {
		return false
	}
	if cycle < s.startCycle {
		return false
	}
	if s.maxRecords > 0 && s.seen >= s.maxRecords {
		return false
	}
	s.seen++
	return true
}

func (s *Sink) push(r Record) {
	s.records[s.next] = r
	s.next = (s.next + 1) % len(s.records)
	if s.count < len(s.records) {
		s.count++
	}
}

// RecordInstruction appends a fixed-size instruction event.
func (s *Sink) RecordInstruction(cycle uint64, ins InstructionRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.admit(cycle) {
		return
	}
	s.push(Record{Type: EventInstruction, Cycle: cycle, Instruction: ins})
}

// RecordFormatted appends a variable-size formatted-string event, built
// with the same fmt verbs as Printf.
func (s *Sink) RecordFormatted(cycle uint64, format string, args ...interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.admit(cycle) {
		return
	}
	s.push(Record{Type: EventFormatted, Cycle: cycle, Text: fmt.Sprintf(format, args...)})
}

// Len reports how many records are currently buffered.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Snapshot returns a copy of the currently buffered records, oldest first.
func (s *Sink) Snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, s.count)
	if s.count == 0 {
		return out
	}
	start := s.next - s.count
	if start < 0 {
		start += len(s.records)
	}
	for i := 0; i < s.count; i++ {
		out[i] = s.records[(start+i)%len(s.records)]
	}
	return out
}

// Clear empties the ring without disturbing the enabled flag or window.
func (s *Sink) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next = 0
	s.count = 0
	s.seen = 0
}
