// Package conformance implements the two data-driven test harnesses spec
// §8 requires: an exhaustive per-opcode cycle-and-state corpus runner (the
// Harte/SingleStepTests 65x02 format) and a Klaus-Dormann-style functional
// test ROM runner, adapted from the teacher's root-level
// functionality_test.go.
package conformance

import (
	"encoding/json"
	"fmt"

	"github.com/bagnalla/6502/cpu"
	"github.com/bagnalla/6502/host"
)

// HarteState is one pre- or post-state in a SingleStepTests-format fixture:
// registers plus a list of [address, value] memory entries to seed or
// check. ram entries are [2]int rather than a struct to match the
// dataset's on-disk JSON shape directly.
type HarteState struct {
	PC  uint16    `json:"pc"`
	S   uint8     `json:"s"`
	A   uint8     `json:"a"`
	X   uint8     `json:"x"`
	Y   uint8     `json:"y"`
	P   uint8     `json:"p"`
	RAM [][2]int  `json:"ram"`
}

// HarteCycle is one entry of the fixture's recorded cycle-by-cycle bus
// trace: the address and the direction, spelled the way
// cpu.Direction.String spells it ("Read"/"Write"/"Idle"). The byte on the
// bus is not recorded or checked (the teacher's equivalent would be a
// Tick()-by-Tick() log; the dataset encodes it up front instead).
type HarteCycle struct {
	Addr uint16
	Dir  string
}

// HarteCase is a single opcode test case: one pre-state, the expected
// post-state, and the expected cycle trace.
type HarteCase struct {
	Name    string       `json:"name"`
	Initial HarteState   `json:"initial"`
	Final   HarteState   `json:"final"`
	Cycles  []HarteCycle `json:"cycles"`
}

// LoadHarteFile parses a SingleStepTests-format JSON fixture (an array of
// HarteCase) from data.
func LoadHarteFile(data []byte) ([]HarteCase, error) {
	var cases []HarteCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("conformance: parse Harte fixture: %w", err)
	}
	return cases, nil
}

// RunHarteCase seeds a fresh Chip (variant cfg) from tc.Initial, steps it
// through exactly one instruction (len(tc.Cycles) Step calls), and
// compares both the observed bus trace and the final register state
// against tc.Final/tc.Cycles. It returns a descriptive error on the first
// mismatch rather than a bool, so callers can surface exactly what
// diverged.
func RunHarteCase(cfg cpu.Config, tc HarteCase) error {
	mem := &host.FlatMemory{}
	for _, kv := range tc.Initial.RAM {
		mem.Write(uint16(kv[0]), uint8(kv[1]))
	}

	c, err := cpu.New(cfg)
	if err != nil {
		return fmt.Errorf("conformance: %s: New: %w", tc.Name, err)
	}
	c.PowerOn()
	// Harte cases assume a CPU already parked at Initial.PC, not one
	// mid-RESET; Seed drops straight to a clean instruction boundary there.
	c.Seed(cpu.State{
		PC: tc.Initial.PC, S: tc.Initial.S,
		A: tc.Initial.A, X: tc.Initial.X, Y: tc.Initial.Y, P: tc.Initial.P,
	})

	for i, want := range tc.Cycles {
		ev, stepErr := c.Step()
		if ev.Dir == cpu.Read {
			c.Latch = mem.Read(ev.Addr)
		} else if ev.Dir == cpu.Write {
			mem.Write(ev.Addr, c.Latch)
		}
		if ev.Addr != want.Addr || ev.Dir.String() != want.Dir {
			return fmt.Errorf("conformance: %s: cycle %d: got {%04X %s}, want {%04X %s}",
				tc.Name, i, ev.Addr, ev.Dir, want.Addr, want.Dir)
		}
		if stepErr != nil {
			return fmt.Errorf("conformance: %s: cycle %d: %w", tc.Name, i, stepErr)
		}
	}
	// The fixture's last recorded cycle is the instruction's last bus
	// access, but a Read on that cycle can't be applied to a register until
	// the host has latched it, which only happens after Step returns. Run
	// one unrecorded settle step so a deferred load/branch/jump/pull result
	// lands before checking Final. That settle step always also prefetches
	// the following opcode (the queue is empty, so Step folds a fresh
	// beginInstruction into the same call), which is what makes its own bus
	// event land exactly on Final.PC: for a load it's the unchanged PC read
	// before the prefetch's own increment, and for a jump/branch it's the
	// just-applied target read the same way. c.PC itself reads one past
	// that by the time Step returns, so the settle event's address is the
	// PC check, not got.PC.
	settleEv, stepErr := c.Step()
	if stepErr == nil {
		if settleEv.Dir == cpu.Read {
			c.Latch = mem.Read(settleEv.Addr)
		} else if settleEv.Dir == cpu.Write {
			mem.Write(settleEv.Addr, c.Latch)
		}
	}

	got := c.Snapshot()
	if settleEv.Addr != tc.Final.PC || got.S != tc.Final.S || got.A != tc.Final.A ||
		got.X != tc.Final.X || got.Y != tc.Final.Y || got.P != tc.Final.P {
		return fmt.Errorf("conformance: %s: final state mismatch: got pc=%04X s=%02X a=%02X x=%02X y=%02X p=%02X, want pc=%04X s=%02X a=%02X x=%02X y=%02X p=%02X",
			tc.Name, settleEv.Addr, got.S, got.A, got.X, got.Y, got.P,
			tc.Final.PC, tc.Final.S, tc.Final.A, tc.Final.X, tc.Final.Y, tc.Final.P)
	}
	for _, kv := range tc.Final.RAM {
		addr, want := uint16(kv[0]), uint8(kv[1])
		if got := mem.Read(addr); got != want {
			return fmt.Errorf("conformance: %s: mem[%04X] = %02X, want %02X", tc.Name, addr, got, want)
		}
	}
	return nil
}
