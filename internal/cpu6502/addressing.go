package cpu6502

// Addressing-mode helpers. Each returns the effective address; the ones for
// indexed absolute/indirect-indexed modes also report whether the
// calculation crossed a page boundary, since that adds one cycle to
// read-only instructions (stores and read-modify-write instructions always
// pay the extra cycle regardless).

func (c *CPU) addrZeroPage() uint16 {
	return uint16(c.fetch())
}

func (c *CPU) addrZeroPageX() uint16 {
	return uint16(c.fetch() + c.X)
}

func (c *CPU) addrZeroPageY() uint16 {
	return uint16(c.fetch() + c.Y)
}

func (c *CPU) addrAbsolute() uint16 {
	return c.fetchWord()
}

func (c *CPU) addrAbsoluteX() (uint16, bool) {
	base := c.fetchWord()
	addr := base + uint16(c.X)
	return addr, pagesDiffer(base, addr)
}

func (c *CPU) addrAbsoluteY() (uint16, bool) {
	base := c.fetchWord()
	addr := base + uint16(c.Y)
	return addr, pagesDiffer(base, addr)
}

func (c *CPU) addrIndirectX() uint16 {
	zp := c.fetch() + c.X
	lo := c.read(uint16(zp))
	hi := c.read(uint16(zp + 1))
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) addrIndirectY() (uint16, bool) {
	zp := c.fetch()
	lo := c.read(uint16(zp))
	hi := c.read(uint16(zp + 1))
	base := uint16(lo) | uint16(hi)<<8
	addr := base + uint16(c.Y)
	return addr, pagesDiffer(base, addr)
}

// addrIndirectZP is the 65C02 (zp) addressing mode: indirect through a
// zero-page pointer with no index register involved.
func (c *CPU) addrIndirectZP() uint16 {
	zp := c.fetch()
	lo := c.read(uint16(zp))
	hi := c.read(uint16(zp + 1))
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) addrIndirect() uint16 {
	ptr := c.fetchWord()
	lo := c.read(ptr)
	var hiAddr uint16
	if c.Variant == Variant6502 {
		// NMOS JMP (addr) bug: the high byte is fetched from the same page,
		// wrapping instead of carrying into the next page.
		hiAddr = (ptr & 0xFF00) | uint16(uint8(ptr)+1)
	} else {
		hiAddr = ptr + 1
	}
	hi := c.read(hiAddr)
	return uint16(lo) | uint16(hi)<<8
}

func (c *CPU) addrRelative() (uint16, bool) {
	offset := int8(c.fetch())
	base := c.PC
	target := uint16(int32(base) + int32(offset))
	return target, pagesDiffer(base, target)
}
