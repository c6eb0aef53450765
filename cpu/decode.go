package cpu

// mode names one of the memory addressing modes shared by the generic
// load/store/RMW builders in addressing.go. Branches, jumps, and
// implied/accumulator instructions are built directly and don't go
// through dispatchLoad/dispatchStore/dispatchRMW.
type Mode int

const (
	modeImm Mode = iota
	modeZP
	modeZPX
	modeZPY
	modeAbs
	modeAbsX
	modeAbsY
	modeIndX
	modeIndY
)

func (c *Chip) dispatchLoad(m Mode, load loadFunc) {
	switch m {
	case modeImm:
		c.buildImmediateLoad(load)
	case modeZP:
		c.buildZPLoad(load)
	case modeZPX:
		c.buildZPXLoad(load, false)
	case modeZPY:
		c.buildZPXLoad(load, true)
	case modeAbs:
		c.buildAbsoluteLoad(load)
	case modeAbsX:
		c.buildAbsoluteIndexedLoad(load, false)
	case modeAbsY:
		c.buildAbsoluteIndexedLoad(load, true)
	case modeIndX:
		c.buildIndirectXLoad(load)
	case modeIndY:
		c.buildIndirectYLoad(load)
	}
}

func (c *Chip) dispatchStore(m Mode, store storeFunc) {
	switch m {
	case modeZP:
		c.buildZPStore(store)
	case modeZPX:
		c.buildZPXStore(store, false)
	case modeZPY:
		c.buildZPXStore(store, true)
	case modeAbs:
		c.buildAbsoluteStore(store)
	case modeAbsX:
		c.buildAbsoluteIndexedStore(store, false)
	case modeAbsY:
		c.buildAbsoluteIndexedStore(store, true)
	case modeIndX:
		c.buildIndirectXStore(store)
	case modeIndY:
		c.buildIndirectYStore(store)
	}
}

func (c *Chip) dispatchRMW(m Mode, rmw rmwFunc) {
	switch m {
	case modeZP:
		c.buildZPRMW(rmw)
	case modeZPX:
		c.buildZPXRMW(rmw)
	case modeAbs:
		c.buildAbsoluteRMW(rmw)
	case modeAbsX:
		c.buildAbsoluteIndexedRMW(rmw, false)
	case modeAbsY:
		c.buildAbsoluteIndexedRMW(rmw, true)
	case modeIndX:
		c.buildIndirectXRMW(rmw)
	case modeIndY:
		c.buildIndirectYRMW(rmw)
	}
}

// opEntry is one row of the decode table: everything needed to append
// this opcode's remaining cycles to c.queue once the opcode byte itself
// has been fetched. halt is set for every undocumented opcode; decode runs
// such an opcode only if illegalAllowed permits it under Config.Illegal.
type opEntry struct {
	build     func(c *Chip)
	halt      bool // undocumented: runs only if the configured IllegalMode allows it
	forceHalt bool // genuinely halts the processor on real silicon (JAM/KIL/HLT), independent of IllegalMode
}

// decode consumes c.opcode (already fetched) and appends the rest of the
// instruction's microOps to c.queue. It never itself returns a BusEvent;
// Step pops and runs the first appended op in the same call.
func (c *Chip) decode() error {
	e := opcodeTable[c.opcode]
	if e.build == nil || e.forceHalt {
		return invalidState(c, "opcode %.2X halts the processor", c.opcode)
	}
	if e.halt && !c.illegalAllowed(c.opcode) {
		return invalidState(c, "opcode %.2X not implemented for this CPU variant", c.opcode)
	}
	e.build(c)
	if len(c.queue) == 0 {
		return invalidState(c, "opcode %.2X decoded to an empty cycle sequence", c.opcode)
	}
	return nil
}

// illegalAllowed reports whether opcode (known undocumented) should run
// as its stable/unstable semantics rather than halting, per Config.Illegal.
func (c *Chip) illegalAllowed(opcode uint8) bool {
	switch c.illegal {
	case IllegalHalt:
		return false
	case IllegalStable:
		return stableIllegal[opcode]
	case IllegalAll:
		return true
	default:
		return false
	}
}

// stableIllegal marks the undocumented opcodes with well-documented,
// deterministic behavior across real NMOS 6502 parts. The rest (XAA,
// AHX/SHA, TAS, LAS, SHX, SHY) depend on bus capacitance effects real
// silicon doesn't guarantee and are only available under IllegalAll.
var stableIllegal = map[uint8]bool{}

func init() {
	for _, op := range []uint8{
		0x03, 0x07, 0x0F, 0x13, 0x17, 0x1B, 0x1F, // SLO
		0x23, 0x27, 0x2F, 0x33, 0x37, 0x3B, 0x3F, // RLA
		0x43, 0x47, 0x4F, 0x53, 0x57, 0x5B, 0x5F, // SRE
		0x63, 0x67, 0x6F, 0x73, 0x77, 0x7B, 0x7F, // RRA
		0x83, 0x87, 0x8F, 0x97, // SAX
		0xA3, 0xA7, 0xAF, 0xB3, 0xB7, 0xBF, // LAX
		0xC3, 0xC7, 0xCF, 0xD3, 0xD7, 0xDB, 0xDF, // DCP
		0xE3, 0xE7, 0xEF, 0xF3, 0xF7, 0xFB, 0xFF, // ISC
		0x0B, 0x2B, // ANC
		0x4B, // ALR
		0x6B, // ARR
		0xCB, // AXS
		0xEB, // SBC (documented-equivalent)
		0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA, // NOP
		0x04, 0x44, 0x64, 0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4, // NOP zp/zpx
		0x80, 0x82, 0x89, 0xC2, 0xE2, // NOP imm
		0x0C, 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC, // NOP abs/absx
	} {
		stableIllegal[op] = true
	}
}

func build(m func(c *Chip)) opEntry { return opEntry{build: m} }
func buildHalt(m func(c *Chip)) opEntry { return opEntry{build: m, halt: true} }

// opcodeTable is the full 256-entry decode table. Gaps (opcodes with no
// assigned entry) halt unconditionally: none exist in the documented set
// or the teacher's stable/unstable undocumented set, so an empty slot
// here means the mnemonic really is unassigned on real silicon too.
var opcodeTable = buildOpcodeTable()

func buildOpcodeTable() [256]opEntry {
	var t [256]opEntry

	ld := func(op uint8, m Mode, f loadFunc) { t[op] = build(func(c *Chip) { c.dispatchLoad(m, f) }) }
	st := func(op uint8, m Mode, f storeFunc) { t[op] = build(func(c *Chip) { c.dispatchStore(m, f) }) }
	rmw := func(op uint8, m Mode, f rmwFunc) { t[op] = build(func(c *Chip) { c.dispatchRMW(m, f) }) }
	impl := func(op uint8, f func(c *Chip)) { t[op] = build(func(c *Chip) { c.buildImpliedOrAccumulator(f) }) }
	illegalLd := func(op uint8, m Mode, f loadFunc) { t[op] = buildHalt(func(c *Chip) { c.dispatchLoad(m, f) }) }
	illegalSt := func(op uint8, m Mode, f storeFunc) { t[op] = buildHalt(func(c *Chip) { c.dispatchStore(m, f) }) }
	illegalRmw := func(op uint8, m Mode, f rmwFunc) { t[op] = buildHalt(func(c *Chip) { c.dispatchRMW(m, f) }) }
	illegalImm := func(op uint8, f loadFunc) { t[op] = buildHalt(func(c *Chip) { c.buildImmediateLoad(f) }) }
	illegalImpl := func(op uint8, f func(c *Chip)) { t[op] = buildHalt(func(c *Chip) { c.buildImpliedOrAccumulator(f) }) }
	jam := func(op uint8) { t[op] = opEntry{forceHalt: true} }

	// ORA
	ld(0x01, modeIndX, func(c *Chip) { execORA(c) })
	ld(0x05, modeZP, func(c *Chip) { execORA(c) })
	ld(0x09, modeImm, func(c *Chip) { execORA(c) })
	ld(0x0D, modeAbs, func(c *Chip) { execORA(c) })
	ld(0x11, modeIndY, func(c *Chip) { execORA(c) })
	ld(0x15, modeZPX, func(c *Chip) { execORA(c) })
	ld(0x19, modeAbsY, func(c *Chip) { execORA(c) })
	ld(0x1D, modeAbsX, func(c *Chip) { execORA(c) })

	// AND
	ld(0x21, modeIndX, func(c *Chip) { execAND(c) })
	ld(0x25, modeZP, func(c *Chip) { execAND(c) })
	ld(0x29, modeImm, func(c *Chip) { execAND(c) })
	ld(0x2D, modeAbs, func(c *Chip) { execAND(c) })
	ld(0x31, modeIndY, func(c *Chip) { execAND(c) })
	ld(0x35, modeZPX, func(c *Chip) { execAND(c) })
	ld(0x39, modeAbsY, func(c *Chip) { execAND(c) })
	ld(0x3D, modeAbsX, func(c *Chip) { execAND(c) })

	// EOR
	ld(0x41, modeIndX, func(c *Chip) { execEOR(c) })
	ld(0x45, modeZP, func(c *Chip) { execEOR(c) })
	ld(0x49, modeImm, func(c *Chip) { execEOR(c) })
	ld(0x4D, modeAbs, func(c *Chip) { execEOR(c) })
	ld(0x51, modeIndY, func(c *Chip) { execEOR(c) })
	ld(0x55, modeZPX, func(c *Chip) { execEOR(c) })
	ld(0x59, modeAbsY, func(c *Chip) { execEOR(c) })
	ld(0x5D, modeAbsX, func(c *Chip) { execEOR(c) })

	// ADC
	ld(0x61, modeIndX, func(c *Chip) { execADC(c) })
	ld(0x65, modeZP, func(c *Chip) { execADC(c) })
	ld(0x69, modeImm, func(c *Chip) { execADC(c) })
	ld(0x6D, modeAbs, func(c *Chip) { execADC(c) })
	ld(0x71, modeIndY, func(c *Chip) { execADC(c) })
	ld(0x75, modeZPX, func(c *Chip) { execADC(c) })
	ld(0x79, modeAbsY, func(c *Chip) { execADC(c) })
	ld(0x7D, modeAbsX, func(c *Chip) { execADC(c) })

	// SBC (+ 0xEB illegal documented-equivalent)
	ld(0xE1, modeIndX, func(c *Chip) { execSBC(c) })
	ld(0xE5, modeZP, func(c *Chip) { execSBC(c) })
	ld(0xE9, modeImm, func(c *Chip) { execSBC(c) })
	ld(0xED, modeAbs, func(c *Chip) { execSBC(c) })
	ld(0xF1, modeIndY, func(c *Chip) { execSBC(c) })
	ld(0xF5, modeZPX, func(c *Chip) { execSBC(c) })
	ld(0xF9, modeAbsY, func(c *Chip) { execSBC(c) })
	ld(0xFD, modeAbsX, func(c *Chip) { execSBC(c) })
	illegalImm(0xEB, func(c *Chip) { execSBC(c) })

	// CMP / CPX / CPY
	ld(0xC1, modeIndX, func(c *Chip) { execCMP(c) })
	ld(0xC5, modeZP, func(c *Chip) { execCMP(c) })
	ld(0xC9, modeImm, func(c *Chip) { execCMP(c) })
	ld(0xCD, modeAbs, func(c *Chip) { execCMP(c) })
	ld(0xD1, modeIndY, func(c *Chip) { execCMP(c) })
	ld(0xD5, modeZPX, func(c *Chip) { execCMP(c) })
	ld(0xD9, modeAbsY, func(c *Chip) { execCMP(c) })
	ld(0xDD, modeAbsX, func(c *Chip) { execCMP(c) })
	ld(0xE0, modeImm, func(c *Chip) { execCPX(c) })
	ld(0xE4, modeZP, func(c *Chip) { execCPX(c) })
	ld(0xEC, modeAbs, func(c *Chip) { execCPX(c) })
	ld(0xC0, modeImm, func(c *Chip) { execCPY(c) })
	ld(0xC4, modeZP, func(c *Chip) { execCPY(c) })
	ld(0xCC, modeAbs, func(c *Chip) { execCPY(c) })

	// LDA / LDX / LDY
	ld(0xA1, modeIndX, loadA)
	ld(0xA5, modeZP, loadA)
	ld(0xA9, modeImm, loadA)
	ld(0xAD, modeAbs, loadA)
	ld(0xB1, modeIndY, loadA)
	ld(0xB5, modeZPX, loadA)
	ld(0xB9, modeAbsY, loadA)
	ld(0xBD, modeAbsX, loadA)
	ld(0xA2, modeImm, loadX)
	ld(0xA6, modeZP, loadX)
	ld(0xAE, modeAbs, loadX)
	ld(0xB6, modeZPY, loadX)
	ld(0xBE, modeAbsY, loadX)
	ld(0xA0, modeImm, loadY)
	ld(0xA4, modeZP, loadY)
	ld(0xAC, modeAbs, loadY)
	ld(0xB4, modeZPX, loadY)
	ld(0xBC, modeAbsX, loadY)

	// LAX (illegal)
	illegalLd(0xA3, modeIndX, execLAX)
	illegalLd(0xA7, modeZP, execLAX)
	illegalLd(0xAF, modeAbs, execLAX)
	illegalLd(0xB3, modeIndY, execLAX)
	illegalLd(0xB7, modeZPY, execLAX)
	illegalLd(0xBF, modeAbsY, execLAX)

	// BIT
	ld(0x24, modeZP, execBIT)
	ld(0x2C, modeAbs, execBIT)

	// STA / STX / STY
	st(0x81, modeIndX, storeA)
	st(0x85, modeZP, storeA)
	st(0x8D, modeAbs, storeA)
	st(0x91, modeIndY, storeA)
	st(0x95, modeZPX, storeA)
	st(0x99, modeAbsY, storeA)
	st(0x9D, modeAbsX, storeA)
	st(0x86, modeZP, storeX)
	st(0x8E, modeAbs, storeX)
	st(0x96, modeZPY, storeX)
	st(0x84, modeZP, storeY)
	st(0x8C, modeAbs, storeY)
	st(0x94, modeZPX, storeY)

	// SAX (illegal)
	illegalSt(0x83, modeIndX, storeSAX)
	illegalSt(0x87, modeZP, storeSAX)
	illegalSt(0x8F, modeAbs, storeSAX)
	illegalSt(0x97, modeZPY, storeSAX)

	// ASL / LSR / ROL / ROR (memory forms)
	rmw(0x06, modeZP, rmwASL)
	rmw(0x0E, modeAbs, rmwASL)
	rmw(0x16, modeZPX, rmwASL)
	rmw(0x1E, modeAbsX, rmwASL)
	rmw(0x46, modeZP, rmwLSR)
	rmw(0x4E, modeAbs, rmwLSR)
	rmw(0x56, modeZPX, rmwLSR)
	rmw(0x5E, modeAbsX, rmwLSR)
	rmw(0x26, modeZP, rmwROL)
	rmw(0x2E, modeAbs, rmwROL)
	rmw(0x36, modeZPX, rmwROL)
	rmw(0x3E, modeAbsX, rmwROL)
	rmw(0x66, modeZP, rmwROR)
	rmw(0x6E, modeAbs, rmwROR)
	rmw(0x76, modeZPX, rmwROR)
	rmw(0x7E, modeAbsX, rmwROR)
	// accumulator forms
	impl(0x0A, execASLAcc)
	impl(0x4A, execLSRAcc)
	impl(0x2A, execROLAcc)
	impl(0x6A, execRORAcc)

	// INC / DEC (memory forms)
	rmw(0xE6, modeZP, rmwINC)
	rmw(0xEE, modeAbs, rmwINC)
	rmw(0xF6, modeZPX, rmwINC)
	rmw(0xFE, modeAbsX, rmwINC)
	rmw(0xC6, modeZP, rmwDEC)
	rmw(0xCE, modeAbs, rmwDEC)
	rmw(0xD6, modeZPX, rmwDEC)
	rmw(0xDE, modeAbsX, rmwDEC)

	// SLO / RLA / SRE / RRA / DCP / ISC (illegal fused RMW ops)
	for op, m := range map[uint8]Mode{0x03: modeIndX, 0x07: modeZP, 0x0F: modeAbs, 0x13: modeIndY, 0x17: modeZPX, 0x1B: modeAbsY, 0x1F: modeAbsX} {
		illegalRmw(op, m, rmwSLO)
	}
	for op, m := range map[uint8]Mode{0x23: modeIndX, 0x27: modeZP, 0x2F: modeAbs, 0x33: modeIndY, 0x37: modeZPX, 0x3B: modeAbsY, 0x3F: modeAbsX} {
		illegalRmw(op, m, rmwRLA)
	}
	for op, m := range map[uint8]Mode{0x43: modeIndX, 0x47: modeZP, 0x4F: modeAbs, 0x53: modeIndY, 0x57: modeZPX, 0x5B: modeAbsY, 0x5F: modeAbsX} {
		illegalRmw(op, m, rmwSRE)
	}
	for op, m := range map[uint8]Mode{0x63: modeIndX, 0x67: modeZP, 0x6F: modeAbs, 0x73: modeIndY, 0x77: modeZPX, 0x7B: modeAbsY, 0x7F: modeAbsX} {
		illegalRmw(op, m, rmwRRA)
	}
	for op, m := range map[uint8]Mode{0xC3: modeIndX, 0xC7: modeZP, 0xCF: modeAbs, 0xD3: modeIndY, 0xD7: modeZPX, 0xDB: modeAbsY, 0xDF: modeAbsX} {
		illegalRmw(op, m, rmwDCP)
	}
	for op, m := range map[uint8]Mode{0xE3: modeIndX, 0xE7: modeZP, 0xEF: modeAbs, 0xF3: modeIndY, 0xF7: modeZPX, 0xFB: modeAbsY, 0xFF: modeAbsX} {
		illegalRmw(op, m, rmwISC)
	}

	// ANC / ALR / ARR / AXS (illegal immediate-mode)
	illegalImm(0x0B, execANC)
	illegalImm(0x2B, execANC)
	illegalImm(0x4B, execALR)
	illegalImm(0x6B, execARR)
	illegalImm(0xCB, execAXS)
	illegalImm(0xAB, execOAL)
	illegalImm(0x8B, execANE)

	// Flag ops and register transfers (implied)
	impl(0x18, execCLC)
	impl(0x38, execSEC)
	impl(0x58, execCLI)
	impl(0x78, execSEI)
	impl(0xB8, execCLV)
	impl(0xD8, execCLD)
	impl(0xF8, execSED)
	impl(0xAA, execTAX)
	impl(0xA8, execTAY)
	impl(0x8A, execTXA)
	impl(0x98, execTYA)
	impl(0xBA, execTSX)
	impl(0x9A, execTXS)
	impl(0xE8, execINX)
	impl(0xC8, execINY)
	impl(0xCA, execDEX)
	impl(0x88, execDEY)
	impl(0xEA, execNOP)

	// documented-equivalent undocumented NOPs
	illegalImpl(0x1A, execNOP)
	illegalImpl(0x3A, execNOP)
	illegalImpl(0x5A, execNOP)
	illegalImpl(0x7A, execNOP)
	illegalImpl(0xDA, execNOP)
	illegalImpl(0xFA, execNOP)
	for _, op := range []uint8{0x04, 0x44, 0x64} {
		illegalLd(op, modeZP, func(c *Chip) {})
	}
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		illegalLd(op, modeZPX, func(c *Chip) {})
	}
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		illegalImm(op, func(c *Chip) {})
	}
	illegalLd(0x0C, modeAbs, func(c *Chip) {})
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		illegalLd(op, modeAbsX, func(c *Chip) {})
	}

	// Branches
	t[0x90] = build(func(c *Chip) { c.buildBranch(condCC) })
	t[0xB0] = build(func(c *Chip) { c.buildBranch(condCS) })
	t[0xF0] = build(func(c *Chip) { c.buildBranch(condEQ) })
	t[0xD0] = build(func(c *Chip) { c.buildBranch(condNE) })
	t[0x30] = build(func(c *Chip) { c.buildBranch(condMI) })
	t[0x10] = build(func(c *Chip) { c.buildBranch(condPL) })
	t[0x50] = build(func(c *Chip) { c.buildBranch(condVC) })
	t[0x70] = build(func(c *Chip) { c.buildBranch(condVS) })

	// Jumps, subroutines, interrupts, stack
	t[0x4C] = build(func(c *Chip) { c.buildJMPAbsolute() })
	t[0x6C] = build(func(c *Chip) { c.buildJMPIndirect() })
	t[0x20] = build(func(c *Chip) { c.buildJSR() })
	t[0x60] = build(func(c *Chip) { c.buildRTS() })
	t[0x40] = build(func(c *Chip) { c.buildRTI() })
	t[0x00] = build(func(c *Chip) { c.buildBRK() })
	t[0x48] = build(func(c *Chip) { c.buildPHA() })
	t[0x08] = build(func(c *Chip) { c.buildPHP() })
	t[0x68] = build(func(c *Chip) { c.buildPLA() })
	t[0x28] = build(func(c *Chip) { c.buildPLP() })

	// AHX / SHY / SHX / TAS / LAS: unstable undocumented opcodes, only
	// available under IllegalAll.
	illegalSt(0x93, modeIndY, storeAHX)
	illegalSt(0x9F, modeAbsY, storeAHX)
	illegalSt(0x9C, modeAbsX, storeSHY)
	illegalSt(0x9E, modeAbsY, storeSHX)
	illegalSt(0x9B, modeAbsY, storeTAS)
	illegalLd(0xBB, modeAbsY, execLAS)

	// HLT / KIL / JAM: the documented "stops the processor" opcodes.
	// Under IllegalHalt every undocumented opcode behaves this way already;
	// these specific ones halt unconditionally on real silicon regardless
	// of IllegalMode, so they're wired directly rather than through the
	// stableIllegal table.
	for _, op := range []uint8{0x02, 0x12, 0x22, 0x32, 0x42, 0x52, 0x62, 0x72, 0x92, 0xB2, 0xD2, 0xF2} {
		jam(op)
	}

	return t
}
