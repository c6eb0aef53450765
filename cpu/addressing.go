package cpu

// This file builds the per-cycle microOp queue for each addressing mode,
// parameterized by the class of instruction (load, store, read-modify-
// write) that uses it. Each builder is handed the opcode's already-known
// exec callback and appends exactly the cycles real NMOS hardware takes,
// including the dummy reads the 6502 is known to perform (indexed modes
// reading the unindexed address first, RMW's extra write-back of the old
// value). A builder never costs more or fewer cycles than the mode+class
// pair requires; page-crossing adds its own conditional cycle inline.
//
// Every builder assumes the opcode byte has already been consumed
// (fetchOpcode ran as cycle 1); it only appends what follows.

type loadFunc func(c *Chip)
type storeFunc func(c *Chip) uint8
type rmwFunc func(c *Chip, v uint8) uint8

func (c *Chip) buildImmediateLoad(load loadFunc) {
	c.push(func(c *Chip) BusEvent {
		c.finish = load
		return fetchOperand(c)
	})
}

func (c *Chip) buildZPLoad(load loadFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.finish = load
		return BusEvent{Addr: uint16(c.data), Dir: Read}
	})
}

func (c *Chip) buildZPStore(store storeFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		addr := uint16(c.data)
		c.Latch = store(c)
		return BusEvent{Addr: addr, Dir: Write}
	})
}

func (c *Chip) buildZPRMW(rmw rmwFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opAddr = uint16(c.data)
		return BusEvent{Addr: c.opAddr, Dir: Read}
	})
	c.appendRMWTail(rmw)
}

// appendRMWTail appends the two cycles common to every RMW addressing
// mode once the effective address is known and the operand has been
// read: a dummy write-back of the unmodified byte (real NMOS behavior)
// followed by the write of the transformed byte.
func (c *Chip) appendRMWTail(rmw rmwFunc) {
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		c.Latch = c.data
		return BusEvent{Addr: c.opAddr, Dir: Write}
	})
	c.push(func(c *Chip) BusEvent {
		v := rmw(c, c.opVal)
		c.Latch = v
		return BusEvent{Addr: c.opAddr, Dir: Write}
	})
}

func (c *Chip) buildZPXLoad(load loadFunc, useY bool) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data // unindexed zero page address
		return BusEvent{Addr: uint16(c.opVal), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		idx := c.X
		if useY {
			idx = c.Y
		}
		c.opAddr = uint16(uint8(c.opVal + idx))
		c.finish = load
		return BusEvent{Addr: c.opAddr, Dir: Read}
	})
}

func (c *Chip) buildZPXStore(store storeFunc, useY bool) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return BusEvent{Addr: uint16(c.opVal), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		idx := c.X
		if useY {
			idx = c.Y
		}
		addr := uint16(uint8(c.opVal + idx))
		c.Latch = store(c)
		return BusEvent{Addr: addr, Dir: Write}
	})
}

func (c *Chip) buildZPXRMW(rmw rmwFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return BusEvent{Addr: uint16(c.opVal), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr = uint16(uint8(c.opVal + c.X))
		return BusEvent{Addr: c.opAddr, Dir: Read}
	})
	c.appendRMWTail(rmw)
}

// buildAbsoluteLoad: fetch lo, fetch hi, read value.
func (c *Chip) buildAbsoluteLoad(load loadFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return fetchOperand(c)
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr = uint16(c.data)<<8 | uint16(c.opVal)
		c.finish = load
		return BusEvent{Addr: c.opAddr, Dir: Read}
	})
}

func (c *Chip) buildAbsoluteStore(store storeFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return fetchOperand(c)
	})
	c.push(func(c *Chip) BusEvent {
		addr := uint16(c.data)<<8 | uint16(c.opVal)
		c.Latch = store(c)
		return BusEvent{Addr: addr, Dir: Write}
	})
}

func (c *Chip) buildAbsoluteRMW(rmw rmwFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return fetchOperand(c)
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr = uint16(c.data)<<8 | uint16(c.opVal)
		return BusEvent{Addr: c.opAddr, Dir: Read}
	})
	c.appendRMWTail(rmw)
}

// buildAbsoluteIndexedLoad implements Absolute,X and Absolute,Y for load
// class instructions: the 4th cycle speculatively reads at the
// low-byte-wrapped address; if the index carried into the high byte, a
// 5th "oops" cycle re-reads at the corrected address. Load class only
// pays for the oops cycle when it actually happens.
func (c *Chip) buildAbsoluteIndexedLoad(load loadFunc, useY bool) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return fetchOperand(c)
	})
	c.push(func(c *Chip) BusEvent {
		hi := c.data
		idx := c.X
		if useY {
			idx = c.Y
		}
		lo := c.opVal + idx
		c.pageCrossed = c.opVal > lo // unsigned wrap means the add carried
		guess := uint16(hi)<<8 | uint16(lo)
		c.opAddr = (uint16(hi)<<8 | uint16(c.opVal)) + uint16(idx)
		if c.pageCrossed {
			c.push(func(c *Chip) BusEvent {
				c.finish = load
				return BusEvent{Addr: c.opAddr, Dir: Read}
			})
			return BusEvent{Addr: guess, Dir: Idle}
		}
		c.finish = load
		return BusEvent{Addr: guess, Dir: Read}
	})
}

func (c *Chip) buildAbsoluteIndexedStore(store storeFunc, useY bool) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return fetchOperand(c)
	})
	c.push(func(c *Chip) BusEvent {
		hi := c.data
		idx := c.X
		if useY {
			idx = c.Y
		}
		lo := c.opVal + idx
		guess := uint16(hi)<<8 | uint16(lo)
		c.opAddr = (uint16(hi)<<8 | uint16(c.opVal)) + uint16(idx)
		return BusEvent{Addr: guess, Dir: Idle}
	})
	c.push(func(c *Chip) BusEvent {
		c.Latch = store(c)
		return BusEvent{Addr: c.opAddr, Dir: Write}
	})
}

func (c *Chip) buildAbsoluteIndexedRMW(rmw rmwFunc, useY bool) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return fetchOperand(c)
	})
	c.push(func(c *Chip) BusEvent {
		hi := c.data
		idx := c.X
		if useY {
			idx = c.Y
		}
		lo := c.opVal + idx
		guess := uint16(hi)<<8 | uint16(lo)
		c.opAddr = (uint16(hi)<<8 | uint16(c.opVal)) + uint16(idx)
		return BusEvent{Addr: guess, Dir: Idle}
	})
	c.push(func(c *Chip) BusEvent {
		return BusEvent{Addr: c.opAddr, Dir: Read}
	})
	c.appendRMWTail(rmw)
}

// buildIndirectXLoad implements (zp,X): read zp ptr byte, dummy read at
// zp ptr (pre-index), read pointer low at (ptr+X)&0xFF, read pointer high
// at (ptr+X+1)&0xFF, read value at assembled pointer. 6 cycles total.
func (c *Chip) buildIndirectXLoad(load loadFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return BusEvent{Addr: uint16(c.opVal), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		ptr := uint8(c.opVal + c.X)
		c.opVal = ptr
		return BusEvent{Addr: uint16(ptr), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr = uint16(c.data) // low byte of target
		return BusEvent{Addr: uint16(uint8(c.opVal + 1)), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr |= uint16(c.data) << 8
		c.finish = load
		return BusEvent{Addr: c.opAddr, Dir: Read}
	})
}

func (c *Chip) buildIndirectXStore(store storeFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return BusEvent{Addr: uint16(c.opVal), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		ptr := uint8(c.opVal + c.X)
		c.opVal = ptr
		return BusEvent{Addr: uint16(ptr), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr = uint16(c.data)
		return BusEvent{Addr: uint16(uint8(c.opVal + 1)), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr |= uint16(c.data) << 8
		c.Latch = store(c)
		return BusEvent{Addr: c.opAddr, Dir: Write}
	})
}

func (c *Chip) buildIndirectXRMW(rmw rmwFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return BusEvent{Addr: uint16(c.opVal), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		ptr := uint8(c.opVal + c.X)
		c.opVal = ptr
		return BusEvent{Addr: uint16(ptr), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr = uint16(c.data)
		return BusEvent{Addr: uint16(uint8(c.opVal + 1)), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr |= uint16(c.data) << 8
		return BusEvent{Addr: c.opAddr, Dir: Read}
	})
	c.appendRMWTail(rmw)
}

// buildIndirectYLoad implements (zp),Y: read zp ptr byte, read pointer
// low at ptr, read pointer high at ptr+1, speculative read at
// (ptrhigh, ptrlow+Y), with an oops cycle if that carried into the high
// byte. 5 cycles normally, 6 on a page cross.
func (c *Chip) buildIndirectYLoad(load loadFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data // zp pointer address
		return BusEvent{Addr: uint16(c.opVal), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr = uint16(c.data) // pointer low byte
		return BusEvent{Addr: uint16(uint8(c.opVal + 1)), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		hi := c.data
		lo := uint8(c.opAddr) + c.Y
		c.pageCrossed = uint8(c.opAddr) > lo
		guess := uint16(hi)<<8 | uint16(lo)
		c.opAddr = uint16(hi)<<8 + uint16(c.Y) + c.opAddr
		if c.pageCrossed {
			c.push(func(c *Chip) BusEvent {
				c.finish = load
				return BusEvent{Addr: c.opAddr, Dir: Read}
			})
			return BusEvent{Addr: guess, Dir: Idle}
		}
		c.finish = load
		return BusEvent{Addr: guess, Dir: Read}
	})
}

func (c *Chip) buildIndirectYStore(store storeFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return BusEvent{Addr: uint16(c.opVal), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr = uint16(c.data)
		return BusEvent{Addr: uint16(uint8(c.opVal + 1)), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		hi := c.data
		lo := uint8(c.opAddr) + c.Y
		guess := uint16(hi)<<8 | uint16(lo)
		c.opAddr = uint16(hi)<<8 + uint16(c.Y) + c.opAddr
		return BusEvent{Addr: guess, Dir: Idle}
	})
	c.push(func(c *Chip) BusEvent {
		c.Latch = store(c)
		return BusEvent{Addr: c.opAddr, Dir: Write}
	})
}

func (c *Chip) buildIndirectYRMW(rmw rmwFunc) {
	c.push(fetchOperand)
	c.push(func(c *Chip) BusEvent {
		c.opVal = c.data
		return BusEvent{Addr: uint16(c.opVal), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		c.opAddr = uint16(c.data)
		return BusEvent{Addr: uint16(uint8(c.opVal + 1)), Dir: Read}
	})
	c.push(func(c *Chip) BusEvent {
		hi := c.data
		lo := uint8(c.opAddr) + c.Y
		guess := uint16(hi)<<8 | uint16(lo)
		c.opAddr = (uint16(hi)<<8 | c.opAddr) + uint16(c.Y)
		return BusEvent{Addr: guess, Dir: Idle}
	})
	c.push(func(c *Chip) BusEvent {
		return BusEvent{Addr: c.opAddr, Dir: Read}
	})
	c.appendRMWTail(rmw)
}

// buildImpliedOrAccumulator appends the single dummy-read cycle shared by
// every implied/accumulator 1-byte instruction, invoking exec directly
// since these never depend on a memory value.
func (c *Chip) buildImpliedOrAccumulator(exec func(c *Chip)) {
	c.push(func(c *Chip) BusEvent {
		exec(c)
		return BusEvent{Addr: c.PC, Dir: Idle}
	})
}
