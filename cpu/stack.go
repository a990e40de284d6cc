package cpu

// Push decrements SP and stores the value at the new top of stack.
// SP is not guarded against running below 0x00.
func (st *State) Push(value byte) {
	st.Register[REG_SP]--
	st.Memory.Write(st.Register[REG_SP], value)
}

// Pop returns the top of stack and increments SP.
// Popping an empty stack returns 0 and leaves SP unchanged.
func (st *State) Pop() (value byte, ok bool) {
	value, ok = st.Peek()
	if ok {
		st.Register[REG_SP]++
	}
	return
}

func (st *State) Empty() bool {
	return st.Register[REG_SP] > STACK_FLOOR
}

func (st *State) Peek() (value byte, ok bool) {
	if st.Empty() {
		return
	}

	return st.Memory.Read(st.Register[REG_SP]), true
}
