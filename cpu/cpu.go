// Package cpu implements a cycle-accurate, suspendable MOS 6502 family
// interpreter. Unlike a free-running emulator, the interpreter advances
// exactly one clock cycle per call to Step and publishes exactly one
// BusEvent describing what that cycle did to the bus. The host is
// responsible for servicing that event (placing a byte in Latch for a
// Read, committing Latch for a Write) before calling Step again.
package cpu

import (
	"fmt"

	"github.com/bagnalla/6502/irq"
)

// CPUType selects which concrete 6502-family variant Step emulates.
// The variants differ only in whether BCD arithmetic is on by default
// (off for NMOSRicoh) and in whether JMP (a) wraps within a page (not on
// CMOS). Undocumented-opcode handling is chosen by Config.Illegal for
// every variant alike.
type CPUType int

const (
	CPUUnimplemented CPUType = iota // zero value is invalid, matching the teacher's UNIMPLEMENTED sentinel
	// NMOS is the stock NMOS 6502 including the full stable undocumented opcode set.
	NMOS
	// NMOSRicoh is the Ricoh 2A03/2A07 used in the NES: identical to NMOS except BCD arithmetic is disabled.
	NMOSRicoh
	// NMOS6510 is the 6510 variant. It runs exactly as NMOS; the I/O port at $0000/$0001 is not modeled.
	NMOS6510
	// CMOS is the 65C02 as far as JMP (a) goes: it does not wrap within a page. All other opcodes, undocumented ones included, decode as on NMOS.
	CMOS
	cpuMax // end sentinel, exported range is [NMOS, CMOS]
)

// IllegalMode selects how undocumented NMOS opcodes are handled.
type IllegalMode int

const (
	// IllegalHalt treats every undocumented opcode as an immediate halt,
	// useful for conformance runs that want to flag any departure from
	// the documented instruction set.
	IllegalHalt IllegalMode = iota
	// IllegalStable implements only the well-known stable undocumented
	// opcodes (LAX, SAX, DCP, ISC, SLO, RLA, SRE, RRA, ANC, ALR, ARR, AXS,
	// and the documented-equivalent NOPs) and halts on the unstable ones
	// (XAA, AHX, TAS, LAS, SHY, SHX) whose real silicon behavior depends
	// on bus capacitance and is not worth modeling faithfully.
	IllegalStable
	// IllegalAll implements the unstable opcodes too, using the commonly
	// accepted approximations documented by the NMOS 6510 community.
	IllegalAll
)

// Status flag bits, in the layout the 6502 pushes to the stack.
const (
	FlagNegative  = uint8(0x80)
	FlagOverflow  = uint8(0x40)
	FlagUnused    = uint8(0x20) // always reads 1, never affected by ALU ops
	FlagBreak     = uint8(0x10) // only meaningful in the pushed copy of P
	FlagDecimal   = uint8(0x08)
	FlagInterrupt = uint8(0x04)
	FlagZero      = uint8(0x02)
	FlagCarry     = uint8(0x01)
)

// Vector addresses.
const (
	VectorNMI   = uint16(0xFFFA)
	VectorReset = uint16(0xFFFC)
	VectorIRQ   = uint16(0xFFFE)
)

// Config describes a CPU instance: its silicon variant, the interrupt
// line sources a host wires in, and the undocumented-opcode policy.
// There is deliberately no file format or flag parsing here (see
// SPEC_FULL.md) — callers construct Config as a literal.
type Config struct {
	Type     CPUType
	NMI      irq.Sender // edge-triggered; see irq.Latch
	IRQ      irq.Sender // level-triggered, masked by FlagInterrupt
	RDY      irq.Sender // held high at an instruction boundary, Step starts no new instruction
	Illegal  IllegalMode
	Decimal  *bool // override; nil means "variant default" (off for NMOSRicoh, on otherwise)
}

// State is a read-only snapshot of CPU-visible registers and the
// cycle count, intended for tests, debuggers, and disassemblers.
type State struct {
	A, X, Y, S, P uint8
	PC            uint16
	Cycles        uint64
	Halted        bool
}

// Chip is a single 6502-family CPU core. Zero value is not usable; build
// one with New and PowerOn it before calling Step.
type Chip struct {
	A, X, Y, S, P uint8
	PC            uint16

	cpuType CPUType
	illegal IllegalMode
	decimal bool

	nmi irq.Sender
	irq irq.Sender
	rdy irq.Sender
	nmiLatch irq.Latch

	// Latch is the single shared byte the host and the CPU trade a value
	// through. After a Read event, the host writes the addressed byte
	// here before the next Step call. Before a Write event is returned,
	// Step has already placed the value to store here.
	Latch uint8

	queue    []microOp
	lastDir  Direction
	lastAddr uint16
	haveLast bool

	opcode         uint8
	data           uint8 // the Data Latch: value read on the previous cycle, resolved from Latch at the top of Step
	opAddr         uint16
	opVal          uint8 // first operand byte, kept around the way the teacher's opVal is
	pageCrossed    bool
	awaitingOpcode bool

	// finish is set by the final Read microOp of a load/branch/jump/pull
	// instruction and applied at the top of the following Step call, once
	// c.data holds that Read's result. This lets the register/PC update
	// ride along on the next cycle's work instead of costing a bus cycle
	// of its own.
	finish func(c *Chip)

	skipInterrupt     bool
	prevSkipInterrupt bool
	nmiPending        bool
	runningInterrupt  bool

	cycles     uint64
	terminated *Terminated
	termEvent  BusEvent
}

// New constructs a Chip for the given configuration. It does not power it
// on; call PowerOn (or Seed) first.
func New(cfg Config) (*Chip, error) {
	if cfg.Type <= CPUUnimplemented || cfg.Type >= cpuMax {
		return nil, fmt.Errorf("cpu: invalid CPUType %d", cfg.Type)
	}
	decimal := cfg.Type != NMOSRicoh
	if cfg.Decimal != nil {
		decimal = *cfg.Decimal
	}
	c := &Chip{
		cpuType: cfg.Type,
		illegal: cfg.Illegal,
		decimal: decimal,
		nmi:     cfg.NMI,
		irq:     cfg.IRQ,
		rdy:     cfg.RDY,
	}
	return c, nil
}

// PowerOn sets the chip to its power-on register state and queues the
// 7-cycle reset sequence as the first thing Step will run. S lands at
// 0xFD (three decrements from the power-on value of 0x00) because the
// reset sequence's "push" cycles are reads on real silicon.
func (c *Chip) PowerOn() {
	c.A, c.X, c.Y = 0, 0, 0
	c.S = 0x00
	c.P = FlagUnused | FlagInterrupt
	c.PC = 0
	c.queue = nil
	c.lastDir = Idle
	c.haveLast = false
	c.skipInterrupt = false
	c.prevSkipInterrupt = false
	c.nmiPending = false
	c.runningInterrupt = false
	c.cycles = 0
	c.terminated = nil
	c.nmiLatch = irq.Latch{}
	c.queue = resetSequence()
}

// Snapshot returns a copy of the CPU-visible register state.
func (c *Chip) Snapshot() State {
	return State{A: c.A, X: c.X, Y: c.Y, S: c.S, P: c.P, PC: c.PC, Cycles: c.cycles, Halted: c.terminated != nil}
}

// Cycles returns the number of clock cycles processed so far (i.e. the
// number of completed Step calls since PowerOn).
func (c *Chip) Cycles() uint64 { return c.cycles }

// AtInstructionBoundary reports whether the next Step call will begin a
// new instruction (or interrupt service) rather than continue one already
// in progress. Conformance/trace tooling uses this to sample PC once per
// instruction instead of once per cycle.
func (c *Chip) AtInstructionBoundary() bool {
	return len(c.queue) == 0 && !c.awaitingOpcode
}

// AwaitingOpcode reports whether an opcode byte has been fetched and is
// waiting to be decoded on the next Step call. Trace tooling watches the
// false-to-true edge on this (paired with the Step that produced it) to
// find an instruction's true start address, since that bus event names
// the fetch address directly rather than through PC, which may already
// have advanced past it by the time Step returns.
func (c *Chip) AwaitingOpcode() bool {
	return c.awaitingOpcode
}

// Seed forces the chip directly into state s at a clean instruction
// boundary, discarding any in-flight instruction or interrupt service and
// bypassing RESET entirely. Conformance harnesses use this to load a
// SingleStepTests-style fixture's initial register state without needing
// to drive an unrelated reset sequence through it first.
func (c *Chip) Seed(s State) {
	c.A, c.X, c.Y, c.S, c.P = s.A, s.X, s.Y, s.S, s.P
	c.PC = s.PC
	c.queue = nil
	c.awaitingOpcode = false
	c.finish = nil
	c.haveLast = false
	c.skipInterrupt = false
	c.prevSkipInterrupt = false
	c.runningInterrupt = false
	c.nmiPending = false
	c.terminated = nil
}

// TerminatedErr returns the error that halted the chip, or nil if it has
// not halted.
func (c *Chip) TerminatedErr() *Terminated { return c.terminated }

func (c *Chip) halt(err *Terminated) BusEvent {
	c.terminated = err
	c.termEvent = BusEvent{Addr: c.PC, Dir: Idle}
	return c.termEvent
}
