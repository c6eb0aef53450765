package conformance

import (
	"strings"
	"testing"

	"github.com/bagnalla/6502/cpu"
)

func ldaImmCase() HarteCase {
	return HarteCase{
		Name: "a9 42 (LDA #$42)",
		Initial: HarteState{
			PC: 0x0200, S: 0xFD, A: 0x00, X: 0x00, Y: 0x00, P: 0x24,
			RAM: [][2]int{{0x0200, 0xA9}, {0x0201, 0x42}},
		},
		Final: HarteState{
			PC: 0x0202, S: 0xFD, A: 0x42, X: 0x00, Y: 0x00, P: 0x24,
			RAM: [][2]int{{0x0201, 0x42}},
		},
		Cycles: []HarteCycle{
			{Addr: 0x0200, Dir: "Read"},
			{Addr: 0x0201, Dir: "Read"},
		},
	}
}

func TestRunHarteCaseLDAImmediate(t *testing.T) {
	if err := RunHarteCase(cpu.Config{Type: cpu.NMOS}, ldaImmCase()); err != nil {
		t.Fatalf("RunHarteCase: %v", err)
	}
}

func TestRunHarteCaseDetectsStateMismatch(t *testing.T) {
	tc := ldaImmCase()
	tc.Final.A = 0x99 // wrong on purpose
	err := RunHarteCase(cpu.Config{Type: cpu.NMOS}, tc)
	if err == nil {
		t.Fatalf("expected a mismatch error, got nil")
	}
	if !strings.Contains(err.Error(), "final state mismatch") {
		t.Errorf("error = %v, want a final state mismatch message", err)
	}
}

func TestRunHarteCaseDetectsCycleMismatch(t *testing.T) {
	tc := ldaImmCase()
	tc.Cycles[1].Addr = 0x0300 // wrong on purpose
	err := RunHarteCase(cpu.Config{Type: cpu.NMOS}, tc)
	if err == nil {
		t.Fatalf("expected a cycle mismatch error, got nil")
	}
	if !strings.Contains(err.Error(), "cycle 1") {
		t.Errorf("error = %v, want it to name cycle 1", err)
	}
}

func TestLoadHarteFile(t *testing.T) {
	data := []byte(`[
		{
			"name": "a9 42",
			"initial": {"pc": 512, "s": 253, "a": 0, "x": 0, "y": 0, "p": 36, "ram": [[512, 169], [513, 66]]},
			"final":   {"pc": 514, "s": 253, "a": 66, "x": 0, "y": 0, "p": 36, "ram": [[513, 66]]},
			"cycles": [{"Addr": 512, "Dir": "Read"}, {"Addr": 513, "Dir": "Read"}]
		}
	]`)
	cases, err := LoadHarteFile(data)
	if err != nil {
		t.Fatalf("LoadHarteFile: %v", err)
	}
	if len(cases) != 1 || cases[0].Name != "a9 42" {
		t.Fatalf("got %+v", cases)
	}
	if err := RunHarteCase(cpu.Config{Type: cpu.NMOS}, cases[0]); err != nil {
		t.Fatalf("RunHarteCase(parsed): %v", err)
	}
}
