// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

// Raise requests an interrupt by setting the line's bit in IS.
// Only the low three bits of line are used.
func (st *State) Raise(line int) {
	st.Register[REG_IS] |= 1 << (line & 7)
}

// Pending returns the interrupts that are both raised and unmasked.
func (st *State) Pending() byte {
	return st.Register[REG_IM] & st.Register[REG_IS]
}

// checkInterrupts dispatches the lowest pending interrupt line, if any.
//   - Masks further interrupts until IRET.
//   - Clears the line's IS bit.
//   - Pushes PC, FL, then r0 through r6.
//   - Jumps through the line's vector table entry.
func (st *State) checkInterrupts() (line int, ok bool) {
	pending := st.Pending()

	for line = range INT_SCANNED {
		if (pending & (1 << line)) == 0 {
			continue
		}

		st.Armed = false
		st.Register[REG_IS] &^= 1 << line

		st.Push(st.Pc)
		st.Push(st.Fl)
		for r := range REG_SP {
			st.Push(st.Register[r])
		}

		st.Pc = st.Memory.Read(VECTOR_TABLE + byte(line))
		return line, true
	}

	return 0, false
}

// opIret restores the context saved by checkInterrupts and re-arms.
func opIret(st *State, a, b byte) (err error) {
	for r := REG_SP - 1; r >= 0; r-- {
		st.Register[r], _ = st.Pop()
	}
	st.Fl, _ = st.Pop()
	st.Pc, _ = st.Pop()
	st.Armed = true

	return
}
