// Package cpu implements the processor and assembler for the LS-8 system.
//
// The LS-8 is an 8-bit machine with eight general-purpose registers (r0-r7),
// a program counter, a flags register and a 256 byte address space. Register
// r5 holds the interrupt mask (IM), r6 the interrupt status (IS) and r7 the
// stack pointer (SP). The stack grows down from 0xf4, and the top eight bytes
// of memory are the interrupt vector table.
//
// Instructions are one to three bytes. The top two bits of the opcode give the
// number of operand bytes that follow, and bit 5 routes the opcode to the ALU.
//
// The assembler provides a small assembly language for the LS-8 instruction
// set, supporting macros, labels, equates, and compile-time expression
// evaluation.
package cpu
