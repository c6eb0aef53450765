package cpu

// beginInstruction runs once per instruction boundary (the queue has just
// drained). It decides whether a latched NMI or a masked-level IRQ takes
// priority over fetching the next opcode, applying the one-instruction
// grace period a taken branch grants real NMOS silicon (skipInterrupt).
func (c *Chip) beginInstruction() BusEvent {
	irqLevel := c.irq != nil && c.irq.Raised() && c.P&FlagInterrupt == 0
	pending := c.nmiPending || irqLevel

	c.prevSkipInterrupt = c.skipInterrupt
	if c.skipInterrupt {
		c.skipInterrupt = false
		pending = false
	}

	if !pending {
		return c.fetchOpcode()
	}

	c.runningInterrupt = true
	c.queue = serviceSequence(c.nmiPending)
	op := c.pop()
	return op(c)
}

// serviceSequence builds the 7-cycle hardware interrupt (NMI/IRQ) entry
// sequence. nmi selects the initial vector choice; an NMI that becomes
// pending partway through, up to the cycle that reads the vector's low
// byte, still hijacks the vector, matching real silicon's documented
// behavior.
func serviceSequence(nmi bool) []microOp {
	return []microOp{
		func(c *Chip) BusEvent { return BusEvent{Addr: c.PC, Dir: Idle} },
		func(c *Chip) BusEvent { return BusEvent{Addr: c.PC, Dir: Idle} },
		func(c *Chip) BusEvent { return c.pushByte(uint8(c.PC >> 8)) },
		func(c *Chip) BusEvent { return c.pushByte(uint8(c.PC)) },
		func(c *Chip) BusEvent {
			push := c.P | FlagUnused
			push &^= FlagBreak
			return c.pushByte(push)
		},
		func(c *Chip) BusEvent {
			if c.nmiPending {
				nmi = true
				c.nmiPending = false
			}
			addr := VectorIRQ
			if nmi {
				addr = VectorNMI
			}
			c.opAddr = addr
			return BusEvent{Addr: addr, Dir: Read}
		},
		func(c *Chip) BusEvent {
			c.opVal = c.data // vector low byte
			c.P |= FlagInterrupt
			c.runningInterrupt = false
			return BusEvent{Addr: c.opAddr + 1, Dir: Read}
		},
		func(c *Chip) BusEvent {
			c.PC = uint16(c.data)<<8 | uint16(c.opVal)
			return c.fetchOpcode()
		},
	}
}

// pushByte writes v to the hardware stack page and decrements S.
func (c *Chip) pushByte(v uint8) BusEvent {
	addr := uint16(0x100) + uint16(c.S)
	c.S--
	c.Latch = v
	return BusEvent{Addr: addr, Dir: Write}
}

// popByte issues the read for the next stack pull; the popped value
// becomes available as c.data on the following Step call.
func (c *Chip) popByte() BusEvent {
	c.S++
	addr := uint16(0x100) + uint16(c.S)
	return BusEvent{Addr: addr, Dir: Read}
}

// resetSequence builds PowerOn's queued 7-cycle RESET entry. S still
// decrements three times even though the "push" cycles are reads, landing
// at 0xFD from the power-on value of 0x00, matching real hardware.
func resetSequence() []microOp {
	return []microOp{
		func(c *Chip) BusEvent { return BusEvent{Addr: c.PC, Dir: Idle} },
		func(c *Chip) BusEvent { return BusEvent{Addr: c.PC, Dir: Idle} },
		func(c *Chip) BusEvent {
			addr := uint16(0x100) + uint16(c.S)
			c.S--
			return BusEvent{Addr: addr, Dir: Idle}
		},
		func(c *Chip) BusEvent {
			addr := uint16(0x100) + uint16(c.S)
			c.S--
			return BusEvent{Addr: addr, Dir: Idle}
		},
		func(c *Chip) BusEvent {
			addr := uint16(0x100) + uint16(c.S)
			c.S--
			c.P |= FlagInterrupt
			return BusEvent{Addr: addr, Dir: Idle}
		},
		func(c *Chip) BusEvent {
			c.opAddr = VectorReset
			return BusEvent{Addr: VectorReset, Dir: Read}
		},
		func(c *Chip) BusEvent {
			c.opVal = c.data
			return BusEvent{Addr: VectorReset + 1, Dir: Read}
		},
		func(c *Chip) BusEvent {
			c.PC = uint16(c.data)<<8 | uint16(c.opVal)
			return c.fetchOpcode()
		},
	}
}
