package luacode

import "fmt"

// Instruction is a single 32-bit Lua 5.3 virtual machine instruction.
//
// Bits 0-5 hold the opcode. The remaining 26 bits are interpreted
// according to the opcode's [OpMode] (spec.md §4.G):
//
//	IABC:  A (8 bits, 6-13)  C (9 bits, 14-22)  B (9 bits, 23-31)
//	IABx:  A (8 bits, 6-13)  Bx (18 bits, 14-31, unsigned)
//	IAsBx: A (8 bits, 6-13)  sBx (18 bits, 14-31, signed, biased)
//	IAx:   Ax (26 bits, 6-31)
//
// Grounded on 256lights-zb/internal/luacode/instruction.go's Instruction
// type and its sizeX/posX accessor pattern, adapted from Lua 5.4's
// 7-bit-opcode/k-flag layout to the Lua 5.3 6-bit layout this spec uses.
type Instruction uint32

const (
	sizeOp = 6
	sizeA  = 8
	sizeB  = 9
	sizeC  = 9
	sizeBx = sizeB + sizeC // 18
	sizeAx = sizeA + sizeBx

	posOp = 0
	posA  = posOp + sizeOp // 6
	posC  = posA + sizeA   // 14
	posB  = posC + sizeC   // 23
	posBx = posA + sizeA   // 14 (shares position with C/B)
	posAx = posA           // 6

	maxArgBx = 1<<sizeBx - 1
	offsetBx = maxArgBx >> 1 // bias for signed Bx, (1<<17)-1

	// rkConstantBit (0x100) marks an RK operand as a constant index
	// rather than a register index.
	rkConstantBit = 1 << 8
)

// OpCode returns the instruction's opcode.
func (i Instruction) OpCode() OpCode {
	return OpCode(i >> posOp & (1<<sizeOp - 1))
}

// A returns the instruction's A operand.
// Valid for IABC, IABx, and IAsBx instructions.
func (i Instruction) A() uint8 {
	return uint8(i >> posA & (1<<sizeA - 1))
}

// B returns the instruction's B operand.
// Valid only for IABC instructions.
func (i Instruction) B() uint16 {
	return uint16(i >> posB & (1<<sizeB - 1))
}

// C returns the instruction's C operand.
// Valid only for IABC instructions.
func (i Instruction) C() uint16 {
	return uint16(i >> posC & (1<<sizeC - 1))
}

// Bx returns the instruction's unsigned Bx operand.
// Valid only for IABx instructions.
func (i Instruction) Bx() uint32 {
	return uint32(i >> posBx & (1<<sizeBx - 1))
}

// SBx returns the instruction's signed Bx operand
// (Bx biased by (1<<17)-1).
// Valid only for IAsBx instructions.
func (i Instruction) SBx() int32 {
	return int32(i.Bx()) - offsetBx
}

// Ax returns the instruction's unsigned 26-bit Ax operand.
// Valid only for IAx instructions (i.e. EXTRAARG).
func (i Instruction) Ax() uint32 {
	return uint32(i >> posAx & (1<<sizeAx - 1))
}

// IsConstantRK reports whether an RK operand (a 9-bit B or C field)
// addresses the constant table rather than a register.
func IsConstantRK(rk uint16) bool {
	return rk&rkConstantBit != 0
}

// ConstantIndex returns the constant-table index encoded by an RK
// operand for which [IsConstantRK] is true.
func ConstantIndex(rk uint16) int {
	return int(rk &^ rkConstantBit)
}

// RegisterIndex returns the register number encoded by an RK operand
// for which [IsConstantRK] is false.
func RegisterIndex(rk uint16) int {
	return int(rk)
}

// ABCInstruction builds an IABC-mode instruction.
func ABCInstruction(op OpCode, a uint8, b, c uint16) Instruction {
	return Instruction(op)<<posOp |
		Instruction(a)<<posA |
		Instruction(c&(1<<sizeC-1))<<posC |
		Instruction(b&(1<<sizeB-1))<<posB
}

// ABxInstruction builds an IABx-mode instruction.
func ABxInstruction(op OpCode, a uint8, bx uint32) Instruction {
	return Instruction(op)<<posOp | Instruction(a)<<posA | Instruction(bx&maxArgBx)<<posBx
}

// AsBxInstruction builds an IAsBx-mode instruction from a signed offset.
func AsBxInstruction(op OpCode, a uint8, sbx int32) Instruction {
	return ABxInstruction(op, a, uint32(sbx+offsetBx))
}

// AxInstruction builds an IAx-mode instruction (EXTRAARG).
func AxInstruction(op OpCode, ax uint32) Instruction {
	return Instruction(op)<<posOp | Instruction(ax&(1<<sizeAx-1))<<posAx
}

// String formats the instruction similarly to `luac -l`.
func (i Instruction) String() string {
	op := i.OpCode()
	switch op.Mode() {
	case IABC:
		return fmt.Sprintf("%-10s A=%d B=%d C=%d", op, i.A(), i.B(), i.C())
	case IABx:
		return fmt.Sprintf("%-10s A=%d Bx=%d", op, i.A(), i.Bx())
	case IAsBx:
		return fmt.Sprintf("%-10s A=%d sBx=%d", op, i.A(), i.SBx())
	case IAx:
		return fmt.Sprintf("%-10s Ax=%d", op, i.Ax())
	default:
		return fmt.Sprintf("Instruction(%#08x)", uint32(i))
	}
}
