package irq

import "testing"

type fixedSender struct{ v bool }

func (f *fixedSender) Raised() bool { return f.v }

func TestLatchNilSenderNeverFires(t *testing.T) {
	var l Latch
	for i := 0; i < 3; i++ {
		if l.Poll(nil) {
			t.Fatalf("Poll(nil) returned true on call %d", i)
		}
	}
}

func TestLatchFiresOnceOnRisingEdge(t *testing.T) {
	s := &fixedSender{}
	var l Latch

	if l.Poll(s) {
		t.Fatalf("Poll fired while source was low")
	}

	s.v = true
	if !l.Poll(s) {
		t.Fatalf("Poll did not fire on rising edge")
	}
	if l.Poll(s) {
		t.Fatalf("Poll fired again while source held high")
	}
	if l.Poll(s) {
		t.Fatalf("Poll fired a third time while source held high")
	}
}

func TestLatchRefiresOnSecondEdge(t *testing.T) {
	s := &fixedSender{}
	var l Latch

	s.v = true
	l.Poll(s)
	s.v = false
	l.Poll(s)
	s.v = true
	if !l.Poll(s) {
		t.Fatalf("Poll did not fire on second rising edge")
	}
}
