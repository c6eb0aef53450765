package cpu

import "fmt"

// Terminated is returned by Step once the chip has halted, either because
// it executed an opcode configured to halt (see Config.Illegal) or
// because the state machine detected an invariant it cannot recover from.
// Once returned, every subsequent Step call returns the same Terminated
// value and the same cached BusEvent without advancing.
type Terminated struct {
	Message string
	PC      uint16
	Opcode  uint8
	Cycle   uint64
}

func (t *Terminated) Error() string {
	return fmt.Sprintf("6502 halted at PC %.4X opcode %.2X (cycle %d): %s", t.PC, t.Opcode, t.Cycle, t.Message)
}

// invalidState builds the Terminated value decode returns when it cannot
// run an opcode: a JAM/HLT opcode, an undocumented opcode that
// Config.Illegal does not allow, or a table entry whose builder queued no
// cycles (which means the decode table and the addressing-mode sequence
// builders have drifted apart).
func invalidState(c *Chip, format string, args ...interface{}) *Terminated {
	return &Terminated{
		Message: fmt.Sprintf("invalid internal state: %s", fmt.Sprintf(format, args...)),
		PC:      c.PC,
		Opcode:  c.opcode,
		Cycle:   c.cycles,
	}
}
