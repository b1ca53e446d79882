package artifact

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/minic/internal/core/domain"
)

// FunctionKey builds the function cache key for a function inside a file.
func FunctionKey(path, name string) string {
	return path + ":" + name
}

// HashFunction computes the semantic hash of a lowered function: name,
// parameter names and type tags, return tag, then every instruction's opcode
// tag and operand bytes. The input is the lowered IR, so the hash is invariant
// to source whitespace, comments and edits in sibling functions, and changes
// for any edit to the function's own name, signature or instruction sequence.
func HashFunction(fn *domain.Function) uint64 {
	d := xxhash.New()

	_, _ = d.WriteString(fn.Name)
	_, _ = d.Write([]byte{0}) // Separator

	for _, p := range fn.Params {
		_, _ = d.WriteString(p.Name)
		_, _ = d.Write([]byte{0, byte(p.Type)})
	}
	_, _ = d.Write([]byte{0}) // Section separator

	_, _ = d.Write([]byte{byte(fn.Return), 0})

	for _, ins := range fn.Instructions {
		_, _ = d.Write([]byte{byte(ins.Op), byte(ins.Type)})
		switch ins.Op {
		case domain.OpConst:
			_, _ = d.Write(ins.Literal)
		case domain.OpParam:
			writeOperand(d, ins.Param)
		case domain.OpBinary:
			_, _ = d.Write([]byte{byte(ins.Bin)})
			writeOperand(d, ins.LHS)
			writeOperand(d, ins.RHS)
		case domain.OpCall:
			_, _ = d.WriteString(ins.Callee)
			_, _ = d.Write([]byte{0})
			writeOperand(d, uint32(len(ins.Args)))
			for _, a := range ins.Args {
				writeOperand(d, a)
			}
		case domain.OpRet:
			writeOperand(d, ins.Value)
		}
		_, _ = d.Write([]byte{0})
	}

	return d.Sum64()
}

func writeOperand(d *xxhash.Digest, v uint32) {
	_ = binary.Write(d, binary.LittleEndian, v)
}
