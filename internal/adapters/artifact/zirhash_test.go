package artifact_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/minic/internal/adapters/artifact"
	"go.trai.ch/minic/internal/adapters/compiler"
	"go.trai.ch/minic/internal/core/domain"
)

// lower parses source and returns the named function's IR.
func lower(t *testing.T, source, name string) *domain.Function {
	t.Helper()
	ir, err := compiler.New().ParseFile("test.mini", []byte(source))
	require.NoError(t, err)
	for i := range ir.Functions {
		if ir.Functions[i].Name == name {
			return &ir.Functions[i]
		}
	}
	t.Fatalf("function %q not found", name)
	return nil
}

func TestHashFunction_Deterministic(t *testing.T) {
	src := "fn add(a: int, b: int) -> int { return a + b }\n"
	h1 := artifact.HashFunction(lower(t, src, "add"))
	h2 := artifact.HashFunction(lower(t, src, "add"))
	assert.Equal(t, h1, h2)
}

func TestHashFunction_WhitespaceInsensitive(t *testing.T) {
	h1 := artifact.HashFunction(lower(t,
		"fn add(a: int, b: int) -> int { return a + b }\n", "add"))
	h2 := artifact.HashFunction(lower(t,
		"fn add( a : int ,\n\tb : int ) -> int {\n\treturn a + b\n}\n", "add"))
	assert.Equal(t, h1, h2, "formatting must not change the hash")
}

func TestHashFunction_CommentInsensitive(t *testing.T) {
	h1 := artifact.HashFunction(lower(t,
		"fn id(x: int) -> int { return x }\n", "id"))
	h2 := artifact.HashFunction(lower(t,
		"// identity\nfn id(x: int) -> int { return x // passthrough\n }\n", "id"))
	assert.Equal(t, h1, h2, "comments must not change the hash")
}

func TestHashFunction_SiblingInsensitive(t *testing.T) {
	h1 := artifact.HashFunction(lower(t,
		"fn keep(x: int) -> int { return x }\nfn other() -> int { return 1 }\n", "keep"))
	h2 := artifact.HashFunction(lower(t,
		"fn keep(x: int) -> int { return x }\nfn other() -> int { return 2 }\n", "keep"))
	assert.Equal(t, h1, h2, "editing a sibling must not change the hash")
}

func TestHashFunction_CanonicalLiterals(t *testing.T) {
	h1 := artifact.HashFunction(lower(t, "fn c() -> int { return 7 }\n", "c"))
	h2 := artifact.HashFunction(lower(t, "fn c() -> int { return 007 }\n", "c"))
	assert.Equal(t, h1, h2, "equal literal values must hash identically")
}

func TestHashFunction_Sensitivity(t *testing.T) {
	base := artifact.HashFunction(lower(t,
		"fn f(a: int, b: int) -> int { return a + b }\n", "f"))

	tests := []struct {
		name   string
		source string
		fn     string
	}{
		{"renamed function", "fn g(a: int, b: int) -> int { return a + b }\n", "g"},
		{"renamed parameter", "fn f(x: int, b: int) -> int { return x + b }\n", "f"},
		{"parameter type", "fn f(a: float, b: int) -> int { return b }\n", "f"},
		{"operator", "fn f(a: int, b: int) -> int { return a - b }\n", "f"},
		{"operand order", "fn f(a: int, b: int) -> int { return b + a }\n", "f"},
		{"literal value", "fn f(a: int, b: int) -> int { return a + 1 }\n", "f"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := artifact.HashFunction(lower(t, tt.source, tt.fn))
			assert.NotEqual(t, base, got)
		})
	}
}

func TestFunctionKey(t *testing.T) {
	assert.Equal(t, "src/main.mini:main", artifact.FunctionKey("src/main.mini", "main"))
}
