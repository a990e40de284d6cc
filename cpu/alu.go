package cpu

// alu performs the ALU operation on reg[a] and reg[b], storing into
// reg[a]. CMP only updates the flags.
func alu(st *State, op Opcode, a, b byte) (err error) {
	dst := st.Reg(a)
	value := *st.Reg(b)

	switch op {
	case OP_ADD:
		*dst += value
	case OP_SUB:
		*dst -= value
	case OP_MUL:
		*dst *= value
	case OP_DIV:
		if value == 0 {
			err = ErrDivideByZero
			return
		}
		*dst /= value
	case OP_MOD:
		if value == 0 {
			err = ErrDivideByZero
			return
		}
		*dst %= value
	case OP_INC:
		*dst++
	case OP_DEC:
		*dst--
	case OP_AND:
		*dst &= value
	case OP_OR:
		*dst |= value
	case OP_XOR:
		*dst ^= value
	case OP_NOT:
		*dst = ^*dst
	case OP_CMP:
		st.Fl = compare(*dst, value)
	default:
		err = ErrAluOp
	}

	return
}

// compare returns the single flag describing a against b.
func compare(a, b byte) byte {
	switch {
	case a < b:
		return FL_LESS
	case a > b:
		return FL_GREATER
	default:
		return FL_EQUAL
	}
}
