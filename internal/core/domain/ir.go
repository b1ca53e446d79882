package domain

// TypeTag identifies a value type in the lowered IR.
type TypeTag uint8

const (
	// TypeVoid is the absence of a value (void returns).
	TypeVoid TypeTag = iota
	// TypeInt is a 64-bit signed integer.
	TypeInt
	// TypeFloat is a 64-bit float.
	TypeFloat
	// TypeBool is a boolean.
	TypeBool
	// TypeString is a string constant.
	TypeString
)

// String returns the source-level name of the type.
func (t TypeTag) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeBool:
		return "bool"
	case TypeString:
		return "string"
	default:
		return "void"
	}
}

// Opcode identifies an instruction kind in the lowered IR.
type Opcode uint8

const (
	// OpConst materializes a literal value.
	OpConst Opcode = iota
	// OpParam loads a function parameter by position.
	OpParam
	// OpBinary applies a binary arithmetic operator to two prior instructions.
	OpBinary
	// OpCall calls a named function with prior instructions as arguments.
	OpCall
	// OpRet returns from the function, optionally with a value.
	OpRet
)

// BinaryOp identifies the operator of an OpBinary instruction.
type BinaryOp uint8

const (
	BinAdd BinaryOp = iota
	BinSub
	BinMul
	BinDiv
)

// NoValue marks an OpRet without a result (void return).
const NoValue = ^uint32(0)

// Instruction is one lowered IR instruction. Operand fields are only
// meaningful for the matching opcode; instruction operands reference earlier
// instructions by index within the same function.
type Instruction struct {
	Op   Opcode
	Type TypeTag

	// Literal holds the canonical value bytes of an OpConst.
	Literal []byte
	// Param is the parameter position of an OpParam.
	Param uint32
	// Bin, LHS and RHS describe an OpBinary.
	Bin BinaryOp
	LHS uint32
	RHS uint32
	// Callee and Args describe an OpCall.
	Callee string
	Args   []uint32
	// Value is the returned instruction index of an OpRet, or NoValue.
	Value uint32
}

// Param is a named, typed function parameter.
type Param struct {
	Name string
	Type TypeTag
}

// Function is the fully lowered form of one source function. It carries no
// trace of source formatting or comments, which makes its hash insensitive to
// both and to edits in sibling functions.
type Function struct {
	Name         string
	Params       []Param
	Return       TypeTag
	Instructions []Instruction
}

// FileIR is the lowered form of one source file.
type FileIR struct {
	Path      string
	Imports   []string
	Functions []Function
}
