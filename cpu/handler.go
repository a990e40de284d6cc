package cpu

// handler executes one decoded instruction against the machine state.
// Operands are passed raw; each handler decides whether they name
// registers or are immediates.
type handler func(st *State, a, b byte) error

// handlers is the dispatch table. A nil entry is an unimplemented opcode.
var handlers [256]handler

func init() {
	handlers = [256]handler{
		OP_NOP:  opNop,
		OP_HLT:  opHlt,
		OP_RET:  opRet,
		OP_IRET: opIret,
		OP_PRA:  opPra,
		OP_PRN:  opPrn,
		OP_CALL: opCall,
		OP_INT:  opInt,
		OP_POP:  opPop,
		OP_PUSH: opPush,
		OP_JMP:  opJmp,
		OP_JEQ:  jumpIf(func(fl byte) bool { return (fl & FL_EQUAL) != 0 }),
		OP_JNE:  jumpIf(func(fl byte) bool { return (fl & FL_EQUAL) == 0 }),
		OP_JLT:  jumpIf(func(fl byte) bool { return (fl & FL_LESS) != 0 }),
		OP_JGT:  jumpIf(func(fl byte) bool { return (fl & FL_GREATER) != 0 }),
		OP_LD:   opLd,
		OP_LDI:  opLdi,
		OP_ST:   opSt,
	}

	for _, op := range []Opcode{
		OP_NOT, OP_INC, OP_DEC,
		OP_CMP, OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_MOD,
		OP_OR, OP_XOR, OP_AND,
	} {
		handlers[op] = aluHandler(op)
	}
}

// aluHandler binds an ALU opcode to the shared ALU.
func aluHandler(op Opcode) handler {
	return func(st *State, a, b byte) error {
		return alu(st, op, a, b)
	}
}

func opNop(st *State, a, b byte) (err error) {
	return
}

func opHlt(st *State, a, b byte) (err error) {
	st.Halted = true
	return
}

// opLd loads reg[a] from the address in reg[b].
func opLd(st *State, a, b byte) (err error) {
	*st.Reg(a) = st.Memory.Read(*st.Reg(b))
	return
}

// opLdi loads the immediate b into reg[a].
func opLdi(st *State, a, b byte) (err error) {
	*st.Reg(a) = b
	return
}

// opSt stores reg[b] at the address in reg[a].
func opSt(st *State, a, b byte) (err error) {
	st.Memory.Write(*st.Reg(a), *st.Reg(b))
	return
}

func opJmp(st *State, a, b byte) (err error) {
	st.Pc = *st.Reg(a)
	return
}

// jumpIf builds a conditional jump. A jump not taken steps over
// its own two bytes.
func jumpIf(taken func(fl byte) bool) handler {
	return func(st *State, a, b byte) (err error) {
		if taken(st.Fl) {
			st.Pc = *st.Reg(a)
		} else {
			st.Pc += 2
		}
		return
	}
}

// opCall pushes the address of the next instruction and jumps to reg[a].
func opCall(st *State, a, b byte) (err error) {
	st.Push(st.Pc + 2)
	st.Pc = *st.Reg(a)
	return
}

func opRet(st *State, a, b byte) (err error) {
	st.Pc, _ = st.Pop()
	return
}

func opPush(st *State, a, b byte) (err error) {
	st.Push(*st.Reg(a))
	return
}

func opPop(st *State, a, b byte) (err error) {
	*st.Reg(a), _ = st.Pop()
	return
}

// opInt sets IS to reg[a] and continues with the next instruction, so
// the raised interrupt returns past the INT.
func opInt(st *State, a, b byte) (err error) {
	st.Register[REG_IS] = *st.Reg(a)
	st.Pc += 2
	return
}

func opPrn(st *State, a, b byte) (err error) {
	if st.Output == nil {
		err = ErrOutput
		return
	}
	return st.Output.Number(*st.Reg(a))
}

func opPra(st *State, a, b byte) (err error) {
	if st.Output == nil {
		err = ErrOutput
		return
	}
	return st.Output.Character(*st.Reg(a))
}
