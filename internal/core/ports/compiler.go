package ports

import "go.trai.ch/minic/internal/core/domain"

// Compiler is the boundary to the actual compiler pipeline. The cache treats
// both halves as black boxes: the front half lowers a source file to IR, the
// back half turns one lowered function into output bytes.
//
//go:generate go run go.uber.org/mock/mockgen -source=compiler.go -destination=mocks/mock_compiler.go -package=mocks
type Compiler interface {
	// ParseFile lowers source (the raw bytes of path) into file IR.
	ParseFile(path string, source []byte) (*domain.FileIR, error)

	// CompileFunction generates output for a single lowered function.
	CompileFunction(fn *domain.Function) ([]byte, error)
}
