// Package disasm implements a disassembler driven off the cpu package's
// per-opcode metadata (cpu.Info), so the disassembler itself carries no
// opcode table.
package disasm

import (
	"fmt"

	"github.com/bagnalla/6502/cpu"
)

// Reader is the minimal memory access disasm needs: a random-access byte
// read, independent of the bus-event protocol cpu.Chip.Step uses. Any
// host.FlatMemory (or a test's byte slice wrapper) satisfies this.
type Reader interface {
	Read(addr uint16) uint8
}

// Step disassembles the instruction at pc and returns its mnemonic text
// along with the number of bytes (1-3) it occupies, mirroring the
// teacher's disassemble.Step(pc, ram) (string, int) signature. It reads
// only as many operand bytes as the addressing mode requires.
func Step(pc uint16, r Reader) (string, int) {
	opcode := r.Read(pc)
	info := cpu.Info(opcode)
	operandLen := info.Mode.OperandLen()

	text := info.Mnemonic
	switch operandLen {
	case 0:
		if info.Mnemonic != "" && modeIsAccumulator(info.Mode) {
			text = fmt.Sprintf("%s A", info.Mnemonic)
		}
	case 1:
		operand := r.Read(pc + 1)
		if isRelative(info.Mode) {
			offset := int8(operand)
			target := uint16(int32(pc) + 2 + int32(offset))
			text = fmt.Sprintf("%s $%04X", info.Mnemonic, target)
		} else {
			text = fmt.Sprintf("%s %s", info.Mnemonic, formatOperand(info.Mode, uint16(operand)))
		}
	case 2:
		lo := r.Read(pc + 1)
		hi := r.Read(pc + 2)
		addr := uint16(hi)<<8 | uint16(lo)
		text = fmt.Sprintf("%s %s", info.Mnemonic, formatOperand(info.Mode, addr))
	}

	return text, operandLen + 1
}

func isRelative(m cpu.Mode) bool { return m.String() == "rel" }

func modeIsAccumulator(m cpu.Mode) bool { return m.String() == "A" }

// formatOperand renders addr the way the addressing mode's syntax expects.
func formatOperand(m cpu.Mode, addr uint16) string {
	switch m.String() {
	case "imm":
		return fmt.Sprintf("#$%02X", addr)
	case "zp":
		return fmt.Sprintf("$%02X", addr)
	case "zp,x":
		return fmt.Sprintf("$%02X,X", addr)
	case "zp,y":
		return fmt.Sprintf("$%02X,Y", addr)
	case "(zp,x)":
		return fmt.Sprintf("($%02X,X)", addr)
	case "(zp),y":
		return fmt.Sprintf("($%02X),Y", addr)
	case "abs":
		return fmt.Sprintf("$%04X", addr)
	case "abs,x":
		return fmt.Sprintf("$%04X,X", addr)
	case "abs,y":
		return fmt.Sprintf("$%04X,Y", addr)
	case "(abs)":
		return fmt.Sprintf("($%04X)", addr)
	default:
		return fmt.Sprintf("$%X", addr)
	}
}
