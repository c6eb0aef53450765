package host

import (
	"math/rand"
	"testing"

	"github.com/bagnalla/6502/cpu"
)

func TestFlatMemoryReadWrite(t *testing.T) {
	var m FlatMemory
	m.Write(0x1234, 0x42)
	if got := m.Read(0x1234); got != 0x42 {
		t.Errorf("Read(1234) = %02X, want 42", got)
	}
}

func TestFlatMemoryLoad(t *testing.T) {
	var m FlatMemory
	m.Load(0x8000, []byte{0xA9, 0x01, 0x8D, 0x00, 0x02})
	want := []byte{0xA9, 0x01, 0x8D, 0x00, 0x02}
	for i, b := range want {
		if got := m.Read(0x8000 + uint16(i)); got != b {
			t.Errorf("Read(%04X) = %02X, want %02X", 0x8000+i, got, b)
		}
	}
}

func TestFlatMemorySetVector(t *testing.T) {
	var m FlatMemory
	m.SetVector(cpu.VectorReset, 0xC000)
	if m.Read(cpu.VectorReset) != 0x00 || m.Read(cpu.VectorReset+1) != 0xC0 {
		t.Errorf("reset vector bytes = %02X %02X, want 00 C0", m.Read(cpu.VectorReset), m.Read(cpu.VectorReset+1))
	}
}

func TestFlatMemoryPowerOnFillsRAM(t *testing.T) {
	var m FlatMemory
	m.PowerOn(rand.New(rand.NewSource(1)))

	allZero := true
	for i := 0; i < 4096; i++ {
		if m.Read(uint16(i)) != 0 {
			allZero = false
			break
		}
	}
	if allZero {
		t.Errorf("PowerOn left the first 4K all zero; expected pseudo-random fill")
	}
}

func TestRunServicesLoadAndStore(t *testing.T) {
	var m FlatMemory
	m.SetVector(cpu.VectorReset, 0x8000)
	m.Load(0x8000, []byte{
		0xA9, 0x55, // LDA #$55
		0x8D, 0x00, 0x20, // STA $2000
	})

	c, err := cpu.New(cpu.Config{Type: cpu.NMOS})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c.PowerOn()

	if err := Run(c, &m, 7); err != nil { // drain RESET
		t.Fatalf("Run(reset): %v", err)
	}
	if err := Run(c, &m, 2+4); err != nil { // LDA #imm (2) + STA abs (4)
		t.Fatalf("Run(program): %v", err)
	}

	if got := m.Read(0x2000); got != 0x55 {
		t.Errorf("mem[2000] = %02X, want 55", got)
	}
}
