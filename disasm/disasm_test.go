package disasm

import "testing"

type byteReader []byte

func (b byteReader) Read(addr uint16) uint8 {
	if int(addr) >= len(b) {
		return 0
	}
	return b[addr]
}

func TestStepImplied(t *testing.T) {
	text, n := Step(0, byteReader{0xEA})
	if text != "NOP" || n != 1 {
		t.Errorf("got %q/%d, want NOP/1", text, n)
	}
}

func TestStepImmediate(t *testing.T) {
	text, n := Step(0, byteReader{0xA9, 0x42})
	if text != "LDA #$42" || n != 2 {
		t.Errorf("got %q/%d, want \"LDA #$42\"/2", text, n)
	}
}

func TestStepAbsolute(t *testing.T) {
	text, n := Step(0, byteReader{0x4C, 0x00, 0x80})
	if text != "JMP $8000" || n != 3 {
		t.Errorf("got %q/%d, want \"JMP $8000\"/3", text, n)
	}
}

func TestStepIndirect(t *testing.T) {
	text, n := Step(0, byteReader{0x6C, 0xFF, 0x10})
	if text != "JMP ($10FF)" || n != 3 {
		t.Errorf("got %q/%d, want \"JMP ($10FF)\"/3", text, n)
	}
}

func TestStepIndirectIndexedY(t *testing.T) {
	text, n := Step(0, byteReader{0xB1, 0x7F})
	if text != "LDA ($7F),Y" || n != 2 {
		t.Errorf("got %q/%d, want \"LDA ($7F),Y\"/2", text, n)
	}
}

func TestStepRelativeForward(t *testing.T) {
	// BNE at $8000 with operand $05 branches to $8000+2+5 = $8007.
	mem := make(byteReader, 0x10000)
	mem[0x8000], mem[0x8001] = 0xD0, 0x05
	text, n := Step(0x8000, mem)
	if text != "BNE $8007" || n != 2 {
		t.Errorf("got %q/%d, want \"BNE $8007\"/2", text, n)
	}
}

func TestStepRelativeBackward(t *testing.T) {
	// Operand 0xFE (-2) at $8010 branches to $8010+2-2 = $8010.
	mem := make(byteReader, 0x10000)
	mem[0x8010], mem[0x8011] = 0xD0, 0xFE
	text, n := Step(0x8010, mem)
	if text != "BNE $8010" || n != 2 {
		t.Errorf("got %q/%d, want \"BNE $8010\"/2", text, n)
	}
}

func TestStepJSR(t *testing.T) {
	text, n := Step(0, byteReader{0x20, 0x34, 0x12})
	if text != "JSR $1234" || n != 3 {
		t.Errorf("got %q/%d, want \"JSR $1234\"/3", text, n)
	}
}
