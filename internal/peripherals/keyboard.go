package peripherals

// Keyboard models the BBC Micro's 16-column × 8-row key matrix, scanned
// either automatically (the system VIA free-runs a column counter) or
// manually (the host picks a column via VIA port A and reads back
// whether a key in it is down).
type Keyboard struct {
	down   [16][8]bool
	column uint8
}

// NewKeyboard returns an empty (no keys down) keyboard.
func NewKeyboard() *Keyboard { return &Keyboard{} }

// SetKeyState sets key (column, row) down or up, returning true if this
// call changed the key's state (an edge), matching spec §6's
// `SetKeyState(key, down) -> bool` contract.
func (k *Keyboard) SetKeyState(column, row int, down bool) bool {
	if column < 0 || column > 15 || row < 0 || row > 7 {
		return false
	}
	changed := k.down[column][row] != down
	k.down[column][row] = down
	return changed
}

// columnHasKeyExceptRow0 reports whether any key other than row 0 (the
// shift/break row excluded from the auto-scan interrupt condition) is
// down in column.
func (k *Keyboard) columnHasKeyExceptRow0(column uint8) bool {
	for row := 1; row < 8; row++ {
		if k.down[column][row] {
			return true
		}
	}
	return false
}

// NumKeysDown returns the total count of keys currently down outside
// row 0 of the break column, matching spec §8 invariant 4's
// `num_keys_down == popcount(key_columns \ row-0-of-break-column)`.
func (k *Keyboard) NumKeysDown() int {
	n := 0
	for col := 0; col < 16; col++ {
		for row := 0; row < 8; row++ {
			if row == 0 && col == 0 {
				continue
			}
			if k.down[col][row] {
				n++
			}
		}
	}
	return n
}

// AutoScan advances the column counter by one (mod 16) and reports
// whether any key except row 0 is down in the new column, which the
// caller feeds into the system VIA's CA2 line.
func (k *Keyboard) AutoScan() bool {
	k.column = (k.column + 1) & 0x0F
	return k.columnHasKeyExceptRow0(k.column)
}

// ManualScan reads back the selected (row, column) cell given the
// system VIA port A's low 7 bits (column in low 4 bits, row in bits
// 4-6), returning the bit to place in port A bit 7.
func (k *Keyboard) ManualScan(portA uint8) bool {
	column := portA & 0x0F
	row := (portA >> 4) & 0x07
	return k.down[column][row]
}

// Snapshot returns the full 16x8 key-down matrix and the current
// auto-scan column, for savestate and clone support.
func (k *Keyboard) Snapshot() (down [16][8]bool, column uint8) {
	return k.down, k.column
}

// Restore replaces the key-down matrix and auto-scan column.
func (k *Keyboard) Restore(down [16][8]bool, column uint8) {
	k.down = down
	k.column = column
}
