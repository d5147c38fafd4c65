// Package diag provides the emulator's diagnostic channel: a component- and
// level-gated ring buffer of messages, adapted from the teacher's logging
// idiom. Disc-image load failures (the one user-visible failure mode in
// spec §7) are reported through here; everything else the core does is
// silent by design.
package diag

import (
	"fmt"
	"time"
)

// Level is the severity of a diagnostic entry.
type Level int

const (
	LevelNone Level = iota
	LevelError
	LevelWarning
	LevelInfo
	LevelDebug
)

func (l Level) String() string {
	switch l {
	case LevelNone:
		return "NONE"
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "UNKNOWN"
	}
}

// Component identifies the subsystem that produced an entry.
type Component string

const (
	ComponentCPU         Component = "CPU"
	ComponentVideo       Component = "Video"
	ComponentPeripherals Component = "Peripherals"
	ComponentDisc        Component = "Disc"
	ComponentDebugger    Component = "Debugger"
	ComponentSystem      Component = "System"
)

// Entry is a single diagnostic record.
type Entry struct {
	Timestamp time.Time
	Component Component
	Level     Level
	Message   string
	Data      map[string]interface{}
}

// Format renders the entry the way a terminal front-end would print it.
func (e *Entry) Format() string {
	ts := e.Timestamp.Format("15:04:05.000")
	return fmt.Sprintf("[%s] [%s] %s: %s", ts, e.Component, e.Level, e.Message)
}
