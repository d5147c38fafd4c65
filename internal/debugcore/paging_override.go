package debugcore

import "beeb-core/internal/bigpage"

// shadowEligibleLow/High mirror bigpage's unexported shadow PC-range
// constants; the debugger's out-of-band byte access needs the same range
// test the live paging applies to instruction fetches.
const (
	shadowEligibleLow  = 0x30
	shadowEligibleHigh = 0x7F
)

// Override bits returned by GetPageOverrideMask, one per DPO field.
const (
	OverrideROM = 1 << iota
	OverrideANDY
	OverrideHazel
	OverrideShadow
	OverrideOS
)

// OverrideField is one entry of a Paging Override word: whether the
// debugger wants to force this bank/region, and to what value.
type OverrideField struct {
	Override bool
	Value    uint8
}

// DPO ("paging override") lets a debugger read or write bytes as though a
// chosen set of paging registers held specific values, independent of what
// is actually live. Unmasked fields fall back to the current live mapping
// as observed from PC-page 0 (i.e. always the Default, never the Shadow,
// map - page 0 is never in the shadow-eligible PC range).
type DPO struct {
	ROM    OverrideField // sideways bank 0-15 at $8000-$BFFF
	ANDY   OverrideField // ANDY overlay at $8000-$8FFF
	Hazel  OverrideField // HAZEL overlay at $C000-$DFFF
	Shadow OverrideField // shadow RAM over $3000-$7FFF
	OS     OverrideField // not consulted by DebugGetBigPage
}

// DebugGetBigPage returns the big page that would back highByte under dpo.
//
// The IO region ($FC-$FE, inside $C0-$FF) falls through to the MOS big
// page whether or not an OS override is requested: the source this was
// ported from does the same ("Access IO. Not yet supported"), and this
// preserves that observable behaviour rather than guessing at the intended
// fix.
func (d *Debugger) DebugGetBigPage(highByte uint8, dpo DPO) *bigpage.BigPage {
	switch {
	case highByte >= 0xC0:
		localSub := int(highByte) - 0xC0
		hazel := d.paging.Acccon&bigpage.AcccHazel != 0
		if dpo.Hazel.Override {
			hazel = dpo.Hazel.Value != 0
		}
		if localSub < 32 && hazel && d.paging.HasHazel() {
			return d.paging.Table.Page(bigpage.HazelStart + localSub/16)
		}
		return d.paging.Table.Page(bigpage.MOSStart + localSub/16)

	case highByte >= 0x80:
		localSub := int(highByte) - 0x80
		pageInBank := localSub / 16
		andy := d.paging.Romsel&0x80 != 0
		if dpo.ANDY.Override {
			andy = dpo.ANDY.Value != 0
		}
		if pageInBank == 0 && andy && d.paging.HasANDY() {
			return d.paging.Table.Page(bigpage.AndyStart)
		}
		bank := int(d.paging.Romsel) & 0x0F
		if dpo.ROM.Override {
			bank = int(dpo.ROM.Value) & 0x0F
		}
		return d.paging.Table.Page(bigpage.SidewaysStart + bank*bigpage.PagesPerBank + pageInBank)

	case highByte >= shadowEligibleLow && highByte <= shadowEligibleHigh:
		if d.paging.Shadow != nil && dpo.Shadow.Override && dpo.Shadow.Value != 0 {
			return d.paging.Table.Page(bigpage.ShadowStart + (int(highByte)-shadowEligibleLow)/16)
		}
		return d.paging.Default.BigPage[highByte]

	default:
		return d.paging.Default.BigPage[highByte]
	}
}

// ReadBytes fills dst[0:n] (n must not exceed len(dst)) by reading n bytes
// starting at addr through the big pages DebugGetBigPage resolves for dpo,
// one byte at a time so a run can cross big-page boundaries.
func (d *Debugger) ReadBytes(dst []byte, n int, addr uint16, dpo DPO) {
	if n > len(dst) {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		a := addr + uint16(i)
		bp := d.DebugGetBigPage(uint8(a>>8), dpo)
		if bp == nil || bp.Read == nil {
			dst[i] = 0
			continue
		}
		dst[i] = bp.Read[bigPageOffset(uint8(a>>8), uint8(a))]
	}
}

// WriteBytes writes src[0:n] (n must not exceed len(src)) starting at addr
// through the big pages DebugGetBigPage resolves for dpo. Writes to ROM or
// unmapped big pages are discarded: their Write slice is a shared scratch
// page, never read back.
func (d *Debugger) WriteBytes(addr uint16, dpo DPO, src []byte, n int) {
	if n > len(src) {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		a := addr + uint16(i)
		bp := d.DebugGetBigPage(uint8(a>>8), dpo)
		if bp == nil || bp.Write == nil {
			continue
		}
		bp.Write[bigPageOffset(uint8(a>>8), uint8(a))] = src[i]
	}
}

// GetPageOverrideMask reports which DPO fields are meaningful for this
// machine's variant; fields outside the mask are accepted but ignored by
// DebugGetBigPage.
func (d *Debugger) GetPageOverrideMask() uint8 {
	mask := uint8(OverrideROM | OverrideOS)
	if d.paging.HasANDY() {
		mask |= OverrideANDY
	}
	if d.paging.HasHazel() {
		mask |= OverrideHazel
	}
	if d.paging.Shadow != nil {
		mask |= OverrideShadow
	}
	return mask
}

func boolToValue(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// GetCurrentPageOverride reports the live paging registers reshaped as a
// DPO, so a caller can round-trip "whatever is currently selected" through
// the override-based byte access API.
func (d *Debugger) GetCurrentPageOverride() DPO {
	var dpo DPO
	dpo.ROM = OverrideField{Override: true, Value: d.paging.Romsel & 0x0F}

	switch d.paging.Variant() {
	case bigpage.VariantB:
		// No ANDY, HAZEL, shadow RAM or OS-select bit exists on the B.
	case bigpage.VariantBPlus:
		dpo.ANDY = OverrideField{Override: true, Value: boolToValue(d.paging.Romsel&0x80 != 0)}
		dpo.Shadow = OverrideField{Override: true, Value: boolToValue(d.paging.Acccon&bigpage.AcccShadow != 0)}
	case bigpage.VariantMaster:
		dpo.ANDY = OverrideField{Override: true, Value: boolToValue(d.paging.Romsel&0x80 != 0)}
		dpo.Hazel = OverrideField{Override: true, Value: boolToValue(d.paging.Acccon&bigpage.AcccHazel != 0)}
		dpo.Shadow = OverrideField{Override: true, Value: boolToValue(d.paging.Acccon&bigpage.AcccShadow != 0)}
	default:
		panic("debugcore: unreachable machine variant in GetCurrentPageOverride")
	}

	return dpo
}
