package cpu

// Control-flow and stack instructions: branches, JMP/JSR/RTS/RTI, BRK,
// and the four stack opcodes. These don't fit the generic load/store/RMW
// shapes in addressing.go because each has its own fixed cycle count
// independent of an addressing mode.

func (c *Chip) buildBranch(cond func(c *Chip) bool) {
	c.push(func(c *Chip) BusEvent {
		c.finish = branchFinish(cond)
		return fetchOperand(c)
	})
}

func branchFinish(cond func(c *Chip) bool) func(c *Chip) {
	return func(c *Chip) {
		if !cond(c) {
			return
		}
		offset := int8(c.data)
		base := c.PC
		c.skipInterrupt = true
		c.push(func(c *Chip) BusEvent {
			newPC := uint16(int32(base) + int32(offset))
			partial := (base & 0xFF00) | (newPC & 0x00FF)
			crossed := (base & 0xFF00) != (newPC & 0xFF00)
			if crossed {
				c.opAddr = newPC
				c.push(func(c *Chip) BusEvent {
					c.PC = c.opAddr
					return BusEvent{Addr: c.PC, Dir: Idle}
				})
			} else {
				c.PC = newPC
			}
			return BusEvent{Addr: partial, Dir: Idle}
		})
	}
}

func (c *Chip) buildJMPAbsolute() {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		c.finish = func(c *Chip) { c.PC = uint16(c.data)<<8 | uint16(c.opVal) }
		return fetchOperand(c)
	})
}

func (c *Chip) buildJMPIndirect() {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return fetchOperand(c)
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr = uint16(c.data)<<8 | uint16(c.opVal)
		return BusEvent{Addr: c.opAddr, Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data // target low byte
		hiAddr := c.opAddr + 1
		if c.cpuType != CMOS && uint8(c.opAddr) == 0xFF {
			// NMOS JMP (a) bug: the high-byte fetch wraps within the same page.
			hiAddr = c.opAddr & 0xFF00
		}
		c.finish = func(c *Chip) { c.PC = uint16(c.data)<<8 | uint16(c.opVal) }
		return BusEvent{Addr: hiAddr, Dir: Read}
	})
}

func (c *Chip) buildJSR() {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return BusEvent{Addr: uint16(0x100) + uint16(c.S), Dir: Idle}
	})
	c.push(func(c *Chip) BusEvent { return c.pushByte(uint8(c.PC >> 8)) })
	c.push(func(c *Chip) BusEvent { return c.pushByte(uint8(c.PC)) })
	c.push(func(c *Chip) BusEvent {
		c.finish = func(c *Chip) { c.PC = uint16(c.data)<<8 | uint16(c.opVal) }
		return fetchOperand(c)
	})
}

func (c *Chip) buildRTS() {
	c.push(func(c *Chip) BusEvent { return BusEvent{Addr: c.PC, Dir: Idle} })
	c.push(func(c *Chip) BusEvent {
		return BusEvent{Addr: uint16(0x100) + uint16(c.S), Dir: Idle}
	})
	c.push(func(c *Chip) BusEvent { return c.popByte() })
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return c.popByte()
	})
	c.push(func(c *Chip) BusEvent {
		c.PC = (uint16(c.data)<<8 | uint16(c.opVal)) + 1
		return BusEvent{Addr: c.PC, Dir: Idle}
	})
}

func (c *Chip) buildRTI() {
	c.push(func(c *Chip) BusEvent { return BusEvent{Addr: c.PC, Dir: Idle} })
	c.push(func(c *Chip) BusEvent {
		return BusEvent{Addr: uint16(0x100) + uint16(c.S), Dir: Idle}
	})
	c.push(func(c *Chip) BusEvent { return c.popByte() })
	c.push(func(c *Chip) BusEvent {
		c.P = (c.data &^ FlagBreak) | FlagUnused
		return c.popByte()
	})
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		c.finish = func(c *Chip) { c.PC = uint16(c.data)<<8 | uint16(c.opVal) }
		return c.popByte()
	})
}

func (c *Chip) buildBRK() {
	c.push(fetchOperand) // signature byte, read and discarded
	c.push(func(c *Chip) BusEvent { return c.pushByte(uint8(c.PC >> 8)) })
	c.push(func(c *Chip) BusEvent { return c.pushByte(uint8(c.PC)) })
	c.push(func(c *Chip) BusEvent {
		return c.pushByte(c.P | FlagUnused | FlagBreak)
	})
	c.push(func(c *Chip) BusEvent {
		addr := VectorIRQ
		if c.nmiPending {
			addr = VectorNMI
			c.nmiPending = false
		}
		c.opAddr = addr
		return BusEvent{Addr: addr, Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		c.P |= FlagInterrupt
		c.finish = func(c *Chip) { c.PC = uint16(c.data)<<8 | uint16(c.opVal) }
		return BusEvent{Addr: c.opAddr + 1, Dir: Read}
	})
}

func (c *Chip) buildPHA() { c.buildPush(func(c *Chip) uint8 { return c.A }) }
func (c *Chip) buildPHP() {
	c.buildPush(func(c *Chip) uint8 { return c.P | FlagUnused | FlagBreak })
}

func (c *Chip) buildPush(value func(c *Chip) uint8) {
	c.push(func(c *Chip) BusEvent { return BusEvent{Addr: c.PC, Dir: Idle} })
	c.push(func(c *Chip) BusEvent { return c.pushByte(value(c)) })
}

func (c *Chip) buildPLA() {
	c.buildPull(func(c *Chip) { c.A = c.data; c.setZN(c.A) })
}

func (c *Chip) buildPLP() {
	c.buildPull(func(c *Chip) { c.P = (c.data &^ FlagBreak) | FlagUnused })
}

func (c *Chip) buildPull(apply func(c *Chip)) {
	c.push(func(c *Chip) BusEvent { return BusEvent{Addr: c.PC, Dir: Idle} })
	c.push(func(c *Chip) BusEvent {
		return BusEvent{Addr: uint16(0x100) + uint16(c.S), Dir: Idle}
	})
	c.push(func(c *Chip) BusEvent {
		c.finish = apply
		return c.popByte()
	})
}

func condCC(c *Chip) bool  { return c.P&FlagCarry == 0 }
func condCS(c *Chip) bool  { return c.P&FlagCarry != 0 }
func condEQ(c *Chip) bool  { return c.P&FlagZero != 0 }
func condNE(c *Chip) bool  { return c.P&FlagZero == 0 }
func condMI(c *Chip) bool  { return c.P&FlagNegative != 0 }
func condPL(c *Chip) bool  { return c.P&FlagNegative == 0 }
func condVS(c *Chip) bool  { return c.P&FlagOverflow != 0 }
func condVC(c *Chip) bool  { return c.P&FlagOverflow == 0 }
