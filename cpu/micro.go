package cpu

// microOp is one clock cycle's worth of work: given the chip (with c.data
// already holding whatever the previous Read resolved to), it performs
// whatever register/ALU side effect belongs on this cycle and returns the
// BusEvent for the cycle. It may grow c.queue (conditional cycles: a
// page-crossing "oops" read, a branch's extra cycles, more RMW ticks).
type microOp func(c *Chip) BusEvent

func (c *Chip) push(op microOp) {
	c.queue = append(c.queue, op)
}

func (c *Chip) pop() microOp {
	op := c.queue[0]
	c.queue = c.queue[1:]
	return op
}

// Step advances the chip by exactly one clock cycle and returns the bus
// event that cycle performed. If the previous event was a Read, the host
// must have written the addressed byte into c.Latch before calling Step;
// if the returned event is a Write, c.Latch already holds the byte to
// store. Once Step returns a non-nil error the chip is halted: every
// subsequent call returns the same event and the same error.
func (c *Chip) Step() (BusEvent, error) {
	if c.terminated != nil {
		return c.termEvent, c.terminated
	}

	if c.haveLast && c.lastDir == Read {
		c.data = c.Latch
	}
	if c.finish != nil {
		f := c.finish
		c.finish = nil
		f(c)
	}
	if c.nmiLatch.Poll(c.nmi) {
		c.nmiPending = true
	}

	var ev BusEvent
	switch {
	case c.rdy != nil && c.rdy.Raised() && len(c.queue) == 0 && !c.runningInterrupt:
		// Held at an instruction boundary: re-publish idle on the current PC without
		// consuming any queued work. A host driving DMA uses this to borrow cycles.
		ev = BusEvent{Addr: c.PC, Dir: Idle}
	case c.awaitingOpcode:
		c.awaitingOpcode = false
		c.opcode = c.data
		if err := c.decode(); err != nil {
			return c.halt(err.(*Terminated)), err
		}
		op := c.pop()
		ev = op(c)
	case len(c.queue) == 0:
		ev = c.beginInstruction()
	default:
		op := c.pop()
		ev = op(c)
	}

	c.cycles++
	c.lastDir = ev.Dir
	c.lastAddr = ev.Addr
	c.haveLast = true

	if c.terminated != nil {
		return c.termEvent, c.terminated
	}
	return ev, nil
}

// fetchOpcode is the canonical first cycle of every instruction: read the
// byte at PC and advance PC. What happens next is decided at the top of
// the following Step call once that byte is latched into c.data.
func (c *Chip) fetchOpcode() BusEvent {
	addr := c.PC
	c.PC++
	c.awaitingOpcode = true
	return BusEvent{Addr: addr, Dir: Read}
}

// fetchOperand reads the byte at PC (without yet knowing what it means)
// and advances PC; used by every addressing mode for its operand bytes.
func fetchOperand(c *Chip) BusEvent {
	addr := c.PC
	c.PC++
	return BusEvent{Addr: addr, Dir: Read}
}
