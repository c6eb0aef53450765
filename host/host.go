// Package host provides a reference implementation of the bus contract
// cpu.Chip.Step expects a driver to service: a flat 64K RAM and a Run loop
// that copies bytes between it and the chip's Latch. It is not part of the
// CPU core's API; it exists so tests, the conformance runner, and the
// disassembler have something concrete to point at, the way the teacher's
// memory.Bank/ram and functionality_test.go's flatMemory do.
package host

import (
	"math/rand"

	"github.com/bagnalla/6502/cpu"
)

// FlatMemory is a simple 64K address space with no bank switching or
// memory-mapped I/O, adapted from the teacher's memory.ram and
// functionality_test.go's flatMemory. Read/Write never fail; addresses
// wrap via uint16 the same way real hardware's address bus does.
type FlatMemory struct {
	mem [65536]uint8
}

// Read implements disasm.Reader and the byte-access half of the bus contract.
func (m *FlatMemory) Read(addr uint16) uint8 { return m.mem[addr] }

// Write stores val at addr.
func (m *FlatMemory) Write(addr uint16, val uint8) { m.mem[addr] = val }

// Load copies data into memory starting at addr, for installing a test
// program or ROM image before a Run.
func (m *FlatMemory) Load(addr uint16, data []byte) {
	for i, b := range data {
		m.mem[addr+uint16(i)] = b
	}
}

// PowerOn fills RAM with random bytes, matching the teacher's
// ram.PowerOn: real hardware RAM powers up in an indeterminate state, and
// tests that depend on zeroed memory should Load explicit data instead of
// relying on PowerOn's contents.
func (m *FlatMemory) PowerOn(rng *rand.Rand) {
	for i := range m.mem {
		m.mem[i] = uint8(rng.Intn(256))
	}
}

// SetVector writes a 16-bit little-endian vector (RESET/NMI/IRQ) at addr.
func (m *FlatMemory) SetVector(addr, target uint16) {
	m.mem[addr] = uint8(target)
	m.mem[addr+1] = uint8(target >> 8)
}

// Run services Step calls against mem for exactly n cycles, wiring the
// Latch/BusEvent protocol described in cpu/bus.go: a Read event's address
// is resolved into Latch before the next Step, and a Write event's Latch
// value is committed to mem immediately. It stops early if the chip
// terminates.
func Run(c *cpu.Chip, mem *FlatMemory, n int) error {
	for i := 0; i < n; i++ {
		ev, err := c.Step()
		if ev.Dir == cpu.Read {
			c.Latch = mem.Read(ev.Addr)
		} else if ev.Dir == cpu.Write {
			mem.Write(ev.Addr, c.Latch)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
