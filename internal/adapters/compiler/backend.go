package compiler

import (
	"fmt"
	"strings"

	"go.trai.ch/minic/internal/core/domain"
	"go.trai.ch/zerr"
)

// CompileFunction generates LLVM-style text for one lowered function. Each
// instruction becomes one value line named by its index.
func (m *Mini) CompileFunction(fn *domain.Function) ([]byte, error) {
	var b strings.Builder

	params := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = fmt.Sprintf("%s %%%s", llvmType(p.Type), p.Name)
	}
	fmt.Fprintf(&b, "define %s @%s(%s) {\n", llvmType(fn.Return), fn.Name, strings.Join(params, ", "))
	b.WriteString("entry:\n")

	for i, ins := range fn.Instructions {
		switch ins.Op {
		case domain.OpConst:
			fmt.Fprintf(&b, "  %%%d = %s %s %s, %s\n",
				i, identityOp(ins.Type), llvmType(ins.Type), zeroValue(ins.Type), string(ins.Literal))
		case domain.OpParam:
			fmt.Fprintf(&b, "  %%%d = %s %s %s, %%%s\n",
				i, identityOp(ins.Type), llvmType(ins.Type), zeroValue(ins.Type), fn.Params[ins.Param].Name)
		case domain.OpBinary:
			fmt.Fprintf(&b, "  %%%d = %s %s %%%d, %%%d\n",
				i, binaryOp(ins.Bin, ins.Type), llvmType(ins.Type), ins.LHS, ins.RHS)
		case domain.OpCall:
			args := make([]string, len(ins.Args))
			for j, a := range ins.Args {
				args[j] = fmt.Sprintf("%s %%%d", llvmType(fn.Instructions[a].Type), a)
			}
			fmt.Fprintf(&b, "  %%%d = call %s @%s(%s)\n",
				i, llvmType(ins.Type), ins.Callee, strings.Join(args, ", "))
		case domain.OpRet:
			if ins.Value == domain.NoValue {
				b.WriteString("  ret void\n")
			} else {
				fmt.Fprintf(&b, "  ret %s %%%d\n", llvmType(ins.Type), ins.Value)
			}
		default:
			return nil, zerr.With(zerr.New("unknown opcode"), "opcode", int(ins.Op))
		}
	}

	b.WriteString("}\n")
	return []byte(b.String()), nil
}

func llvmType(t domain.TypeTag) string {
	switch t {
	case domain.TypeInt:
		return "i64"
	case domain.TypeFloat:
		return "double"
	case domain.TypeBool:
		return "i1"
	case domain.TypeString:
		return "ptr"
	default:
		return "void"
	}
}

// identityOp is the no-op arithmetic used to bind a constant or parameter to
// a value name.
func identityOp(t domain.TypeTag) string {
	if t == domain.TypeFloat {
		return "fadd"
	}
	return "add"
}

func zeroValue(t domain.TypeTag) string {
	if t == domain.TypeFloat {
		return "0.0"
	}
	return "0"
}

func binaryOp(op domain.BinaryOp, t domain.TypeTag) string {
	if t == domain.TypeFloat {
		switch op {
		case domain.BinAdd:
			return "fadd"
		case domain.BinSub:
			return "fsub"
		case domain.BinMul:
			return "fmul"
		default:
			return "fdiv"
		}
	}
	switch op {
	case domain.BinAdd:
		return "add"
	case domain.BinSub:
		return "sub"
	case domain.BinMul:
		return "mul"
	default:
		return "sdiv"
	}
}
