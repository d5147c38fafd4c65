package cpu6502

// opFunc executes one instruction (opcode already consumed) and returns its
// base cycle cost, before any MMIO stretch accumulated along the way.
type opFunc func(c *CPU) int

var opcodeTable [256]opFunc

func (c *CPU) branch(cond bool) int {
	addr, crossed := c.addrRelative()
	if !cond {
		return 2
	}
	c.PC = addr
	if crossed {
		return 4
	}
	return 3
}

func init() {
	t := &opcodeTable

	// ADC
	t[0x69] = func(c *CPU) int { c.doADC(c.fetch()); return 2 }
	t[0x65] = func(c *CPU) int { c.doADC(c.read(c.addrZeroPage())); return 3 }
	t[0x75] = func(c *CPU) int { c.doADC(c.read(c.addrZeroPageX())); return 4 }
	t[0x6D] = func(c *CPU) int { c.doADC(c.read(c.addrAbsolute())); return 4 }
	t[0x7D] = func(c *CPU) int { a, cr := c.addrAbsoluteX(); c.doADC(c.read(a)); return extra(4, cr) }
	t[0x79] = func(c *CPU) int { a, cr := c.addrAbsoluteY(); c.doADC(c.read(a)); return extra(4, cr) }
	t[0x61] = func(c *CPU) int { c.doADC(c.read(c.addrIndirectX())); return 6 }
	t[0x71] = func(c *CPU) int { a, cr := c.addrIndirectY(); c.doADC(c.read(a)); return extra(5, cr) }
	t[0x72] = func(c *CPU) int { c.doADC(c.read(c.addrIndirectZP())); return 5 } // 65C02 ADC (zp)

	// SBC
	t[0xE9] = func(c *CPU) int { c.doSBC(c.fetch()); return 2 }
	t[0xE5] = func(c *CPU) int { c.doSBC(c.read(c.addrZeroPage())); return 3 }
	t[0xF5] = func(c *CPU) int { c.doSBC(c.read(c.addrZeroPageX())); return 4 }
	t[0xED] = func(c *CPU) int { c.doSBC(c.read(c.addrAbsolute())); return 4 }
	t[0xFD] = func(c *CPU) int { a, cr := c.addrAbsoluteX(); c.doSBC(c.read(a)); return extra(4, cr) }
	t[0xF9] = func(c *CPU) int { a, cr := c.addrAbsoluteY(); c.doSBC(c.read(a)); return extra(4, cr) }
	t[0xE1] = func(c *CPU) int { c.doSBC(c.read(c.addrIndirectX())); return 6 }
	t[0xF1] = func(c *CPU) int { a, cr := c.addrIndirectY(); c.doSBC(c.read(a)); return extra(5, cr) }
	t[0xF2] = func(c *CPU) int { c.doSBC(c.read(c.addrIndirectZP())); return 5 } // 65C02 SBC (zp)

	// AND
	t[0x29] = func(c *CPU) int { c.A &= c.fetch(); c.setZN(c.A); return 2 }
	t[0x25] = func(c *CPU) int { c.A &= c.read(c.addrZeroPage()); c.setZN(c.A); return 3 }
	t[0x35] = func(c *CPU) int { c.A &= c.read(c.addrZeroPageX()); c.setZN(c.A); return 4 }
	t[0x2D] = func(c *CPU) int { c.A &= c.read(c.addrAbsolute()); c.setZN(c.A); return 4 }
	t[0x3D] = func(c *CPU) int { a, cr := c.addrAbsoluteX(); c.A &= c.read(a); c.setZN(c.A); return extra(4, cr) }
	t[0x39] = func(c *CPU) int { a, cr := c.addrAbsoluteY(); c.A &= c.read(a); c.setZN(c.A); return extra(4, cr) }
	t[0x21] = func(c *CPU) int { c.A &= c.read(c.addrIndirectX()); c.setZN(c.A); return 6 }
	t[0x31] = func(c *CPU) int { a, cr := c.addrIndirectY(); c.A &= c.read(a); c.setZN(c.A); return extra(5, cr) }
	t[0x32] = func(c *CPU) int { c.A &= c.read(c.addrIndirectZP()); c.setZN(c.A); return 5 } // 65C02 AND (zp)

	// ORA
	t[0x09] = func(c *CPU) int { c.A |= c.fetch(); c.setZN(c.A); return 2 }
	t[0x05] = func(c *CPU) int { c.A |= c.read(c.addrZeroPage()); c.setZN(c.A); return 3 }
	t[0x15] = func(c *CPU) int { c.A |= c.read(c.addrZeroPageX()); c.setZN(c.A); return 4 }
	t[0x0D] = func(c *CPU) int { c.A |= c.read(c.addrAbsolute()); c.setZN(c.A); return 4 }
	t[0x1D] = func(c *CPU) int { a, cr := c.addrAbsoluteX(); c.A |= c.read(a); c.setZN(c.A); return extra(4, cr) }
	t[0x19] = func(c *CPU) int { a, cr := c.addrAbsoluteY(); c.A |= c.read(a); c.setZN(c.A); return extra(4, cr) }
	t[0x01] = func(c *CPU) int { c.A |= c.read(c.addrIndirectX()); c.setZN(c.A); return 6 }
	t[0x11] = func(c *CPU) int { a, cr := c.addrIndirectY(); c.A |= c.read(a); c.setZN(c.A); return extra(5, cr) }
	t[0x12] = func(c *CPU) int { c.A |= c.read(c.addrIndirectZP()); c.setZN(c.A); return 5 } // 65C02 ORA (zp)

	// EOR
	t[0x49] = func(c *CPU) int { c.A ^= c.fetch(); c.setZN(c.A); return 2 }
	t[0x45] = func(c *CPU) int { c.A ^= c.read(c.addrZeroPage()); c.setZN(c.A); return 3 }
	t[0x55] = func(c *CPU) int { c.A ^= c.read(c.addrZeroPageX()); c.setZN(c.A); return 4 }
	t[0x4D] = func(c *CPU) int { c.A ^= c.read(c.addrAbsolute()); c.setZN(c.A); return 4 }
	t[0x5D] = func(c *CPU) int { a, cr := c.addrAbsoluteX(); c.A ^= c.read(a); c.setZN(c.A); return extra(4, cr) }
	t[0x59] = func(c *CPU) int { a, cr := c.addrAbsoluteY(); c.A ^= c.read(a); c.setZN(c.A); return extra(4, cr) }
	t[0x41] = func(c *CPU) int { c.A ^= c.read(c.addrIndirectX()); c.setZN(c.A); return 6 }
	t[0x51] = func(c *CPU) int { a, cr := c.addrIndirectY(); c.A ^= c.read(a); c.setZN(c.A); return extra(5, cr) }
	t[0x52] = func(c *CPU) int { c.A ^= c.read(c.addrIndirectZP()); c.setZN(c.A); return 5 } // 65C02 EOR (zp)

	// CMP / CPX / CPY
	t[0xC9] = func(c *CPU) int { c.doCompare(c.A, c.fetch()); return 2 }
	t[0xC5] = func(c *CPU) int { c.doCompare(c.A, c.read(c.addrZeroPage())); return 3 }
	t[0xD5] = func(c *CPU) int { c.doCompare(c.A, c.read(c.addrZeroPageX())); return 4 }
	t[0xCD] = func(c *CPU) int { c.doCompare(c.A, c.read(c.addrAbsolute())); return 4 }
	t[0xDD] = func(c *CPU) int { a, cr := c.addrAbsoluteX(); c.doCompare(c.A, c.read(a)); return extra(4, cr) }
	t[0xD9] = func(c *CPU) int { a, cr := c.addrAbsoluteY(); c.doCompare(c.A, c.read(a)); return extra(4, cr) }
	t[0xC1] = func(c *CPU) int { c.doCompare(c.A, c.read(c.addrIndirectX())); return 6 }
	t[0xD1] = func(c *CPU) int { a, cr := c.addrIndirectY(); c.doCompare(c.A, c.read(a)); return extra(5, cr) }
	t[0xD2] = func(c *CPU) int { c.doCompare(c.A, c.read(c.addrIndirectZP())); return 5 } // 65C02 CMP (zp)
	t[0xE0] = func(c *CPU) int { c.doCompare(c.X, c.fetch()); return 2 }
	t[0xE4] = func(c *CPU) int { c.doCompare(c.X, c.read(c.addrZeroPage())); return 3 }
	t[0xEC] = func(c *CPU) int { c.doCompare(c.X, c.read(c.addrAbsolute())); return 4 }
	t[0xC0] = func(c *CPU) int { c.doCompare(c.Y, c.fetch()); return 2 }
	t[0xC4] = func(c *CPU) int { c.doCompare(c.Y, c.read(c.addrZeroPage())); return 3 }
	t[0xCC] = func(c *CPU) int { c.doCompare(c.Y, c.read(c.addrAbsolute())); return 4 }

	// BIT
	t[0x24] = func(c *CPU) int { c.doBIT(c.read(c.addrZeroPage())); return 3 }
	t[0x2C] = func(c *CPU) int { c.doBIT(c.read(c.addrAbsolute())); return 4 }

	// Shifts / rotates
	t[0x0A] = func(c *CPU) int { c.A = c.doASL(c.A); return 2 }
	t[0x06] = func(c *CPU) int { a := c.addrZeroPage(); c.write(a, c.doASL(c.read(a))); return 5 }
	t[0x16] = func(c *CPU) int { a := c.addrZeroPageX(); c.write(a, c.doASL(c.read(a))); return 6 }
	t[0x0E] = func(c *CPU) int { a := c.addrAbsolute(); c.write(a, c.doASL(c.read(a))); return 6 }
	t[0x1E] = func(c *CPU) int { a, _ := c.addrAbsoluteX(); c.write(a, c.doASL(c.read(a))); return 7 }

	t[0x4A] = func(c *CPU) int { c.A = c.doLSR(c.A); return 2 }
	t[0x46] = func(c *CPU) int { a := c.addrZeroPage(); c.write(a, c.doLSR(c.read(a))); return 5 }
	t[0x56] = func(c *CPU) int { a := c.addrZeroPageX(); c.write(a, c.doLSR(c.read(a))); return 6 }
	t[0x4E] = func(c *CPU) int { a := c.addrAbsolute(); c.write(a, c.doLSR(c.read(a))); return 6 }
	t[0x5E] = func(c *CPU) int { a, _ := c.addrAbsoluteX(); c.write(a, c.doLSR(c.read(a))); return 7 }

	t[0x2A] = func(c *CPU) int { c.A = c.doROL(c.A); return 2 }
	t[0x26] = func(c *CPU) int { a := c.addrZeroPage(); c.write(a, c.doROL(c.read(a))); return 5 }
	t[0x36] = func(c *CPU) int { a := c.addrZeroPageX(); c.write(a, c.doROL(c.read(a))); return 6 }
	t[0x2E] = func(c *CPU) int { a := c.addrAbsolute(); c.write(a, c.doROL(c.read(a))); return 6 }
	t[0x3E] = func(c *CPU) int { a, _ := c.addrAbsoluteX(); c.write(a, c.doROL(c.read(a))); return 7 }

	t[0x6A] = func(c *CPU) int { c.A = c.doROR(c.A); return 2 }
	t[0x66] = func(c *CPU) int { a := c.addrZeroPage(); c.write(a, c.doROR(c.read(a))); return 5 }
	t[0x76] = func(c *CPU) int { a := c.addrZeroPageX(); c.write(a, c.doROR(c.read(a))); return 6 }
	t[0x6E] = func(c *CPU) int { a := c.addrAbsolute(); c.write(a, c.doROR(c.read(a))); return 6 }
	t[0x7E] = func(c *CPU) int { a, _ := c.addrAbsoluteX(); c.write(a, c.doROR(c.read(a))); return 7 }

	// INC / DEC (memory)
	t[0xE6] = func(c *CPU) int { a := c.addrZeroPage(); v := c.read(a) + 1; c.write(a, v); c.setZN(v); return 5 }
	t[0xF6] = func(c *CPU) int { a := c.addrZeroPageX(); v := c.read(a) + 1; c.write(a, v); c.setZN(v); return 6 }
	t[0xEE] = func(c *CPU) int { a := c.addrAbsolute(); v := c.read(a) + 1; c.write(a, v); c.setZN(v); return 6 }
	t[0xFE] = func(c *CPU) int { a, _ := c.addrAbsoluteX(); v := c.read(a) + 1; c.write(a, v); c.setZN(v); return 7 }
	t[0xC6] = func(c *CPU) int { a := c.addrZeroPage(); v := c.read(a) - 1; c.write(a, v); c.setZN(v); return 5 }
	t[0xD6] = func(c *CPU) int { a := c.addrZeroPageX(); v := c.read(a) - 1; c.write(a, v); c.setZN(v); return 6 }
	t[0xCE] = func(c *CPU) int { a := c.addrAbsolute(); v := c.read(a) - 1; c.write(a, v); c.setZN(v); return 6 }
	t[0xDE] = func(c *CPU) int { a, _ := c.addrAbsoluteX(); v := c.read(a) - 1; c.write(a, v); c.setZN(v); return 7 }

	// 65C02 INC A / DEC A
	t[0x1A] = func(c *CPU) int { c.A++; c.setZN(c.A); return 2 }
	t[0x3A] = func(c *CPU) int { c.A--; c.setZN(c.A); return 2 }

	// INX/INY/DEX/DEY
	t[0xE8] = func(c *CPU) int { c.X++; c.setZN(c.X); return 2 }
	t[0xC8] = func(c *CPU) int { c.Y++; c.setZN(c.Y); return 2 }
	t[0xCA] = func(c *CPU) int { c.X--; c.setZN(c.X); return 2 }
	t[0x88] = func(c *CPU) int { c.Y--; c.setZN(c.Y); return 2 }

	// Loads
	t[0xA9] = func(c *CPU) int { c.A = c.fetch(); c.setZN(c.A); return 2 }
	t[0xA5] = func(c *CPU) int { c.A = c.read(c.addrZeroPage()); c.setZN(c.A); return 3 }
	t[0xB5] = func(c *CPU) int { c.A = c.read(c.addrZeroPageX()); c.setZN(c.A); return 4 }
	t[0xAD] = func(c *CPU) int { c.A = c.read(c.addrAbsolute()); c.setZN(c.A); return 4 }
	t[0xBD] = func(c *CPU) int { a, cr := c.addrAbsoluteX(); c.A = c.read(a); c.setZN(c.A); return extra(4, cr) }
	t[0xB9] = func(c *CPU) int { a, cr := c.addrAbsoluteY(); c.A = c.read(a); c.setZN(c.A); return extra(4, cr) }
	t[0xA1] = func(c *CPU) int { c.A = c.read(c.addrIndirectX()); c.setZN(c.A); return 6 }
	t[0xB1] = func(c *CPU) int { a, cr := c.addrIndirectY(); c.A = c.read(a); c.setZN(c.A); return extra(5, cr) }
	t[0xB2] = func(c *CPU) int { c.A = c.read(c.addrIndirectZP()); c.setZN(c.A); return 5 } // 65C02 LDA (zp)

	t[0xA2] = func(c *CPU) int { c.X = c.fetch(); c.setZN(c.X); return 2 }
	t[0xA6] = func(c *CPU) int { c.X = c.read(c.addrZeroPage()); c.setZN(c.X); return 3 }
	t[0xB6] = func(c *CPU) int { c.X = c.read(c.addrZeroPageY()); c.setZN(c.X); return 4 }
	t[0xAE] = func(c *CPU) int { c.X = c.read(c.addrAbsolute()); c.setZN(c.X); return 4 }
	t[0xBE] = func(c *CPU) int { a, cr := c.addrAbsoluteY(); c.X = c.read(a); c.setZN(c.X); return extra(4, cr) }

	t[0xA0] = func(c *CPU) int { c.Y = c.fetch(); c.setZN(c.Y); return 2 }
	t[0xA4] = func(c *CPU) int { c.Y = c.read(c.addrZeroPage()); c.setZN(c.Y); return 3 }
	t[0xB4] = func(c *CPU) int { c.Y = c.read(c.addrZeroPageX()); c.setZN(c.Y); return 4 }
	t[0xAC] = func(c *CPU) int { c.Y = c.read(c.addrAbsolute()); c.setZN(c.Y); return 4 }
	t[0xBC] = func(c *CPU) int { a, cr := c.addrAbsoluteX(); c.Y = c.read(a); c.setZN(c.Y); return extra(4, cr) }

	// Stores
	t[0x85] = func(c *CPU) int { c.write(c.addrZeroPage(), c.A); return 3 }
	t[0x95] = func(c *CPU) int { c.write(c.addrZeroPageX(), c.A); return 4 }
	t[0x8D] = func(c *CPU) int { c.write(c.addrAbsolute(), c.A); return 4 }
	t[0x9D] = func(c *CPU) int { a, _ := c.addrAbsoluteX(); c.write(a, c.A); return 5 }
	t[0x99] = func(c *CPU) int { a, _ := c.addrAbsoluteY(); c.write(a, c.A); return 5 }
	t[0x81] = func(c *CPU) int { c.write(c.addrIndirectX(), c.A); return 6 }
	t[0x91] = func(c *CPU) int { a, _ := c.addrIndirectY(); c.write(a, c.A); return 6 }
	t[0x92] = func(c *CPU) int { c.write(c.addrIndirectZP(), c.A); return 5 } // 65C02 STA (zp)

	t[0x86] = func(c *CPU) int { c.write(c.addrZeroPage(), c.X); return 3 }
	t[0x96] = func(c *CPU) int { c.write(c.addrZeroPageY(), c.X); return 4 }
	t[0x8E] = func(c *CPU) int { c.write(c.addrAbsolute(), c.X); return 4 }

	t[0x84] = func(c *CPU) int { c.write(c.addrZeroPage(), c.Y); return 3 }
	t[0x94] = func(c *CPU) int { c.write(c.addrZeroPageX(), c.Y); return 4 }
	t[0x8C] = func(c *CPU) int { c.write(c.addrAbsolute(), c.Y); return 4 }

	// 65C02 STZ
	t[0x64] = func(c *CPU) int { c.write(c.addrZeroPage(), 0); return 3 }
	t[0x74] = func(c *CPU) int { c.write(c.addrZeroPageX(), 0); return 4 }
	t[0x9C] = func(c *CPU) int { c.write(c.addrAbsolute(), 0); return 4 }
	t[0x9E] = func(c *CPU) int { a, _ := c.addrAbsoluteX(); c.write(a, 0); return 5 }

	// Transfers
	t[0xAA] = func(c *CPU) int { c.X = c.A; c.setZN(c.X); return 2 }
	t[0xA8] = func(c *CPU) int { c.Y = c.A; c.setZN(c.Y); return 2 }
	t[0xBA] = func(c *CPU) int { c.X = c.S; c.setZN(c.X); return 2 }
	t[0x8A] = func(c *CPU) int { c.A = c.X; c.setZN(c.A); return 2 }
	t[0x9A] = func(c *CPU) int { c.S = c.X; return 2 }
	t[0x98] = func(c *CPU) int { c.A = c.Y; c.setZN(c.A); return 2 }

	// Stack
	t[0x48] = func(c *CPU) int { c.push(c.A); return 3 }
	t[0x68] = func(c *CPU) int { c.A = c.pull(); c.setZN(c.A); return 4 }
	t[0x08] = func(c *CPU) int { c.push(c.P | FlagUnused | FlagBreak); return 3 }
	t[0x28] = func(c *CPU) int { c.P = (c.pull() &^ FlagBreak) | FlagUnused; return 4 }
	t[0xDA] = func(c *CPU) int { c.push(c.X); return 3 }  // 65C02 PHX
	t[0x5A] = func(c *CPU) int { c.push(c.Y); return 3 }  // 65C02 PHY
	t[0xFA] = func(c *CPU) int { c.X = c.pull(); c.setZN(c.X); return 4 } // 65C02 PLX
	t[0x7A] = func(c *CPU) int { c.Y = c.pull(); c.setZN(c.Y); return 4 } // 65C02 PLY

	// Jumps / calls
	t[0x4C] = func(c *CPU) int { c.PC = c.addrAbsolute(); return 3 }
	t[0x6C] = func(c *CPU) int { c.PC = c.addrIndirect(); return 5 }
	t[0x7C] = func(c *CPU) int { // 65C02 JMP (abs,X)
		base := c.fetchWord()
		ptr := base + uint16(c.X)
		lo := c.read(ptr)
		hi := c.read(ptr + 1)
		c.PC = uint16(lo) | uint16(hi)<<8
		return 6
	}
	t[0x20] = func(c *CPU) int {
		target := c.addrAbsolute()
		c.push16(c.PC - 1)
		c.PC = target
		return 6
	}
	t[0x60] = func(c *CPU) int { c.PC = c.pull16() + 1; return 6 }
	t[0x40] = func(c *CPU) int {
		c.P = (c.pull() &^ FlagBreak) | FlagUnused
		c.PC = c.pull16()
		return 6
	}
	t[0x00] = func(c *CPU) int {
		c.fetch() // BRK's signature byte, conventionally skipped
		c.serviceInterrupt(vectorIRQ, true, false)
		return 7
	}

	// Branches
	t[0x90] = func(c *CPU) int { return c.branch(c.P&FlagCarry == 0) }
	t[0xB0] = func(c *CPU) int { return c.branch(c.P&FlagCarry != 0) }
	t[0xF0] = func(c *CPU) int { return c.branch(c.P&FlagZero != 0) }
	t[0xD0] = func(c *CPU) int { return c.branch(c.P&FlagZero == 0) }
	t[0x30] = func(c *CPU) int { return c.branch(c.P&FlagNegative != 0) }
	t[0x10] = func(c *CPU) int { return c.branch(c.P&FlagNegative == 0) }
	t[0x50] = func(c *CPU) int { return c.branch(c.P&FlagOverflow == 0) }
	t[0x70] = func(c *CPU) int { return c.branch(c.P&FlagOverflow != 0) }
	t[0x80] = func(c *CPU) int { return c.branch(true) } // 65C02 BRA

	// Flags
	t[0x18] = func(c *CPU) int { c.setFlag(FlagCarry, false); return 2 }
	t[0x38] = func(c *CPU) int { c.setFlag(FlagCarry, true); return 2 }
	t[0x58] = func(c *CPU) int { c.setFlag(FlagInterrupt, false); return 2 }
	t[0x78] = func(c *CPU) int { c.setFlag(FlagInterrupt, true); return 2 }
	t[0xB8] = func(c *CPU) int { c.setFlag(FlagOverflow, false); return 2 }
	t[0xD8] = func(c *CPU) int { c.setFlag(FlagDecimal, false); return 2 }
	t[0xF8] = func(c *CPU) int { c.setFlag(FlagDecimal, true); return 2 }

	// NOP
	t[0xEA] = func(c *CPU) int { return 2 }
}

func extra(base int, pageCrossed bool) int {
	if pageCrossed {
		return base + 1
	}
	return base
}
