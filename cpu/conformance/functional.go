package conformance

import (
	"fmt"

	"github.com/bagnalla/6502/cpu"
	"github.com/bagnalla/6502/host"
)

// FunctionalResult reports how a functional-test ROM run ended.
type FunctionalResult struct {
	Cycles       uint64
	TrapPC       uint16
	Instructions int
}

// RunFunctional loads image at loadAddr, parks the chip's PC at startPC
// (bypassing the normal RESET vector fetch, matching how the teacher's
// TestROMs seeds startPC directly rather than pointing the reset vector at
// it), and steps until the PC stops advancing between instruction
// boundaries (the traditional Klaus Dormann "trap" convention: a
// self-branch means either success or failure depending on which address
// it traps at) or maxCycles is exhausted.
//
// successPC is the address TestROMs-style suites document as the
// "all tests passed" trap; if the run traps anywhere else, RunFunctional
// returns an error naming the trap address so the caller can cross-
// reference it against the suite's documented failure codes.
func RunFunctional(cfg cpu.Config, image []byte, loadAddr, startPC, successPC uint16, maxCycles uint64) (FunctionalResult, error) {
	mem := &host.FlatMemory{}
	mem.Load(loadAddr, image)

	c, err := cpu.New(cfg)
	if err != nil {
		return FunctionalResult{}, fmt.Errorf("conformance: New: %w", err)
	}
	c.PowerOn()
	// Seed parks the chip directly at startPC with the same register values
	// a real RESET would leave (S at FD, interrupts masked), skipping the
	// vector fetch the teacher's TestROMs target doesn't use either.
	c.Seed(cpu.State{PC: startPC, S: 0xFD, P: cpu.FlagUnused | cpu.FlagInterrupt})

	// An opcode fetch's own bus event names the address it was fetched
	// from directly, before PC's subsequent increment, so watching for the
	// false-to-true edge on awaitingOpcode (rather than sampling PC through
	// AtInstructionBoundary) gives the instruction's true start address
	// even for loads/jumps/branches whose finish and next-opcode prefetch
	// land in the same Step call.
	wasAwaitingOpcode := false
	haveLastBoundary := false
	lastBoundaryPC := uint16(0)
	instructions := 0
	for c.Cycles() < maxCycles {
		ev, stepErr := c.Step()
		if ev.Dir == cpu.Read {
			c.Latch = mem.Read(ev.Addr)
		} else if ev.Dir == cpu.Write {
			mem.Write(ev.Addr, c.Latch)
		}

		if !wasAwaitingOpcode && c.AwaitingOpcode() {
			pc := ev.Addr
			if haveLastBoundary && pc == lastBoundaryPC {
				result := FunctionalResult{Cycles: c.Cycles(), TrapPC: pc, Instructions: instructions}
				if pc == successPC {
					return result, nil
				}
				return result, fmt.Errorf("conformance: trapped at PC %04X (want success trap at %04X)", pc, successPC)
			}
			lastBoundaryPC = pc
			haveLastBoundary = true
			instructions++
		}
		wasAwaitingOpcode = c.AwaitingOpcode()

		if stepErr != nil {
			return FunctionalResult{Cycles: c.Cycles(), TrapPC: c.PC, Instructions: instructions}, fmt.Errorf("conformance: terminated: %w", stepErr)
		}
	}
	return FunctionalResult{Cycles: c.Cycles(), Instructions: instructions}, fmt.Errorf("conformance: exceeded %d cycles without trapping", maxCycles)
}
