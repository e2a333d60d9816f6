package luacode

import "fmt"

// Signature is the first 4 bytes of every Lua precompiled chunk:
// ESC "Lua".
const Signature = "\x1bLua"

const (
	luacVersion = 0x53
	luacFormat  = 0x00

	luacData = "\x19\x93\r\n\x1a\n"

	expectedCintSize        = 4
	expectedSizetSize       = 8
	expectedInstructionSize = 4
	expectedLuaIntegerSize  = 8
	expectedLuaNumberSize   = 8
	luacIntegerSanityValue  = int64(0x5678)
	luacNumberSanityValue   = float64(370.5)
)

// Undump decodes a Lua 5.3 precompiled chunk and returns its main
// function's Prototype.
//
// The returned Prototype (and all of its descendants) may hold string
// fields that are sub-slices of data; the caller must keep data alive
// for as long as the Prototype tree is used (spec.md §5).
//
// Grounded on speedata-go-lua/undump.go's checkHeader + readFunction
// shape, adapted to spec.md §4.B's exact byte layout and error-kind
// taxonomy.
func Undump(data []byte) (*Prototype, error) {
	r := newChunkReader(data)
	if err := checkHeader(r); err != nil {
		return nil, err
	}
	// One upvalue-count byte follows the header; it is redundant with
	// the main function's own Upvalues length and is discarded
	// (spec.md §4.B).
	if _, err := r.readByte(); err != nil {
		return nil, fmt.Errorf("luacode: undump: %w", ErrTruncated)
	}
	proto := new(Prototype)
	if err := loadFunction(r, proto, ""); err != nil {
		return nil, err
	}
	return proto, nil
}

func checkHeader(r *chunkReader) error {
	sig, err := r.readBytes(len(Signature))
	if err != nil {
		return fmt.Errorf("luacode: header: %w", ErrTruncated)
	}
	if string(sig) != Signature {
		return ErrNotAPrecompiledChunk
	}

	version, err := r.readByte()
	if err != nil {
		return fmt.Errorf("luacode: header: %w", ErrTruncated)
	}
	if version != luacVersion {
		return ErrVersionMismatch
	}

	format, err := r.readByte()
	if err != nil {
		return fmt.Errorf("luacode: header: %w", ErrTruncated)
	}
	if format != luacFormat {
		return ErrFormatMismatch
	}

	data, err := r.readBytes(len(luacData))
	if err != nil {
		return fmt.Errorf("luacode: header: %w", ErrTruncated)
	}
	if string(data) != luacData {
		return ErrCorrupted
	}

	cintSize, err := r.readByte()
	if err != nil {
		return fmt.Errorf("luacode: header: %w", ErrTruncated)
	}
	if cintSize != expectedCintSize {
		return ErrIntSizeMismatch
	}

	sizetSize, err := r.readByte()
	if err != nil {
		return fmt.Errorf("luacode: header: %w", ErrTruncated)
	}
	if sizetSize != expectedSizetSize {
		return ErrSizetSizeMismatch
	}

	instructionSize, err := r.readByte()
	if err != nil {
		return fmt.Errorf("luacode: header: %w", ErrTruncated)
	}
	if instructionSize != expectedInstructionSize {
		return ErrInstructionSizeMismatch
	}

	luaIntegerSize, err := r.readByte()
	if err != nil {
		return fmt.Errorf("luacode: header: %w", ErrTruncated)
	}
	if luaIntegerSize != expectedLuaIntegerSize {
		return ErrLuaIntegerSizeMismatch
	}

	luaNumberSize, err := r.readByte()
	if err != nil {
		return fmt.Errorf("luacode: header: %w", ErrTruncated)
	}
	if luaNumberSize != expectedLuaNumberSize {
		return ErrLuaNumberSizeMismatch
	}

	sanityInt, err := r.readLuaInteger()
	if err != nil {
		return fmt.Errorf("luacode: header: %w", ErrTruncated)
	}
	if sanityInt != luacIntegerSanityValue {
		return ErrEndiannessMismatch
	}

	sanityNum, err := r.readLuaNumber()
	if err != nil {
		return fmt.Errorf("luacode: header: %w", ErrTruncated)
	}
	if sanityNum != luacNumberSanityValue {
		return ErrFloatFormatMismatch
	}

	return nil
}

// Constant type tags (spec.md §4.B).
const (
	tagNil         = 0x00
	tagBoolean     = 0x01
	tagFloat       = 0x03
	tagInteger     = 0x13
	tagShortString = 0x04
	tagLongString  = 0x14
)

func loadFunction(r *chunkReader, p *Prototype, parentSource string) error {
	source, err := r.readString()
	if err != nil {
		return fmt.Errorf("luacode: function source: %w", err)
	}
	if source == "" {
		source = parentSource
	}
	p.Source = source

	lineDefined, err := r.readU32()
	if err != nil {
		return fmt.Errorf("luacode: line defined: %w", err)
	}
	p.LineDefined = lineDefined

	lastLineDefined, err := r.readU32()
	if err != nil {
		return fmt.Errorf("luacode: last line defined: %w", err)
	}
	p.LastLineDefined = lastLineDefined

	numParams, err := r.readByte()
	if err != nil {
		return fmt.Errorf("luacode: num params: %w", err)
	}
	p.NumParams = numParams

	isVararg, err := r.readByte()
	if err != nil {
		return fmt.Errorf("luacode: is vararg: %w", err)
	}
	p.IsVararg = isVararg != 0

	maxStackSize, err := r.readByte()
	if err != nil {
		return fmt.Errorf("luacode: max stack size: %w", err)
	}
	p.MaxStackSize = maxStackSize

	if p.Code, err = loadCode(r); err != nil {
		return err
	}
	if p.Constants, err = loadConstants(r); err != nil {
		return err
	}
	if p.Upvalues, err = loadUpvalues(r); err != nil {
		return err
	}
	if p.Protos, err = loadProtos(r, p.Source); err != nil {
		return err
	}
	if p.LineInfo, err = loadLineInfo(r, len(p.Code)); err != nil {
		return err
	}
	if p.LocVars, err = loadLocVars(r); err != nil {
		return err
	}
	if err = loadUpvalueNames(r, p.Upvalues); err != nil {
		return err
	}

	return nil
}

func loadCode(r *chunkReader) ([]Instruction, error) {
	n, err := r.readU32()
	if err != nil {
		return nil, fmt.Errorf("luacode: code length: %w", err)
	}
	code := make([]Instruction, n)
	for i := range code {
		code[i], err = r.readInstruction()
		if err != nil {
			return nil, fmt.Errorf("luacode: code[%d]: %w", i, err)
		}
	}
	return code, nil
}

func loadConstants(r *chunkReader) ([]Value, error) {
	n, err := r.readU32()
	if err != nil {
		return nil, fmt.Errorf("luacode: constants length: %w", err)
	}
	constants := make([]Value, n)
	for i := range constants {
		tag, err := r.readByte()
		if err != nil {
			return nil, fmt.Errorf("luacode: constants[%d]: %w", i, err)
		}
		switch tag {
		case tagNil:
			constants[i] = NilValue()
		case tagBoolean:
			b, err := r.readBool()
			if err != nil {
				return nil, fmt.Errorf("luacode: constants[%d]: %w", i, err)
			}
			constants[i] = BoolValue(b)
		case tagInteger:
			v, err := r.readLuaInteger()
			if err != nil {
				return nil, fmt.Errorf("luacode: constants[%d]: %w", i, err)
			}
			constants[i] = IntegerValue(v)
		case tagFloat:
			v, err := r.readLuaNumber()
			if err != nil {
				return nil, fmt.Errorf("luacode: constants[%d]: %w", i, err)
			}
			constants[i] = FloatValue(v)
		case tagShortString, tagLongString:
			s, err := r.readString()
			if err != nil {
				return nil, fmt.Errorf("luacode: constants[%d]: %w", i, err)
			}
			constants[i] = StringValue(s)
		default:
			return nil, fmt.Errorf("luacode: constants[%d]: unknown tag %#02x: %w", i, tag, ErrCorrupted)
		}
	}
	return constants, nil
}

func loadUpvalues(r *chunkReader) ([]UpvalueDescriptor, error) {
	n, err := r.readU32()
	if err != nil {
		return nil, fmt.Errorf("luacode: upvalues length: %w", err)
	}
	upvalues := make([]UpvalueDescriptor, n)
	for i := range upvalues {
		inStack, err := r.readByte()
		if err != nil {
			return nil, fmt.Errorf("luacode: upvalues[%d]: %w", i, err)
		}
		idx, err := r.readByte()
		if err != nil {
			return nil, fmt.Errorf("luacode: upvalues[%d]: %w", i, err)
		}
		upvalues[i] = UpvalueDescriptor{InStack: inStack != 0, Index: idx}
	}
	return upvalues, nil
}

func loadProtos(r *chunkReader, parentSource string) ([]*Prototype, error) {
	n, err := r.readU32()
	if err != nil {
		return nil, fmt.Errorf("luacode: protos length: %w", err)
	}
	protos := make([]*Prototype, n)
	for i := range protos {
		child := new(Prototype)
		if err := loadFunction(r, child, parentSource); err != nil {
			return nil, err
		}
		protos[i] = child
	}
	return protos, nil
}

func loadLineInfo(r *chunkReader, codeLen int) ([]uint32, error) {
	n, err := r.readU32()
	if err != nil {
		return nil, fmt.Errorf("luacode: line info length: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	if int(n) != codeLen {
		return nil, fmt.Errorf("luacode: line info length %d does not match code length %d: %w", n, codeLen, ErrCorrupted)
	}
	lineInfo := make([]uint32, n)
	for i := range lineInfo {
		lineInfo[i], err = r.readU32()
		if err != nil {
			return nil, fmt.Errorf("luacode: line info[%d]: %w", i, err)
		}
	}
	return lineInfo, nil
}

func loadLocVars(r *chunkReader) ([]LocalVariable, error) {
	n, err := r.readU32()
	if err != nil {
		return nil, fmt.Errorf("luacode: local variables length: %w", err)
	}
	locVars := make([]LocalVariable, n)
	for i := range locVars {
		name, err := r.readString()
		if err != nil {
			return nil, fmt.Errorf("luacode: local variables[%d]: %w", i, err)
		}
		startPC, err := r.readU32()
		if err != nil {
			return nil, fmt.Errorf("luacode: local variables[%d]: %w", i, err)
		}
		endPC, err := r.readU32()
		if err != nil {
			return nil, fmt.Errorf("luacode: local variables[%d]: %w", i, err)
		}
		locVars[i] = LocalVariable{Name: name, StartPC: startPC, EndPC: endPC}
	}
	return locVars, nil
}

func loadUpvalueNames(r *chunkReader, upvalues []UpvalueDescriptor) error {
	n, err := r.readU32()
	if err != nil {
		return fmt.Errorf("luacode: upvalue names length: %w", err)
	}
	if n == 0 {
		return nil
	}
	if int(n) != len(upvalues) {
		return fmt.Errorf("luacode: upvalue names length %d does not match upvalues length %d: %w", n, len(upvalues), ErrCorrupted)
	}
	for i := range upvalues {
		name, err := r.readString()
		if err != nil {
			return fmt.Errorf("luacode: upvalue names[%d]: %w", i, err)
		}
		upvalues[i].Name = name
	}
	return nil
}
