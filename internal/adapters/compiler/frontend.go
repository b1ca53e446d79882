// Package compiler implements the reference mini-language compiler behind the
// ports.Compiler boundary: a single-pass frontend lowering source to the
// domain IR, and a per-function text backend. The cache layers treat both as
// black boxes.
package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"go.trai.ch/minic/internal/core/domain"
	"go.trai.ch/minic/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Compiler = (*Mini)(nil)

// Mini compiles the mini language: files of `fn` declarations with typed
// parameters and a single return expression over literals, parameters,
// arithmetic and calls.
type Mini struct{}

// New creates a new Mini compiler.
func New() *Mini {
	return &Mini{}
}

// ParseFile lowers source into file IR. Comments and formatting are consumed
// by the scanner and leave no trace in the result.
func (m *Mini) ParseFile(path string, source []byte) (*domain.FileIR, error) {
	p := &parser{toks: scan(string(source)), path: path}

	ir := &domain.FileIR{Path: path}
	for !p.atEOF() {
		switch {
		case p.accept("import"):
			imp, err := p.expectString()
			if err != nil {
				return nil, err
			}
			ir.Imports = append(ir.Imports, imp)
		case p.accept("fn"):
			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			ir.Functions = append(ir.Functions, *fn)
		default:
			return nil, p.errorf("unexpected token %q", p.peek())
		}
	}
	return ir, nil
}

type token struct {
	kind byte // 'i' ident, 'n' number, 's' string, 'p' punctuation
	text string
}

// scan tokenizes source, discarding whitespace and // comments.
func scan(src string) []token {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '"':
			j := strings.IndexByte(src[i+1:], '"')
			if j < 0 {
				toks = append(toks, token{kind: 's', text: src[i+1:]})
				i = len(src)
				break
			}
			toks = append(toks, token{kind: 's', text: src[i+1 : i+1+j]})
			i += j + 2
		case c == '-' && i+1 < len(src) && src[i+1] == '>':
			toks = append(toks, token{kind: 'p', text: "->"})
			i += 2
		case strings.IndexByte("(){},:+-*/", c) >= 0:
			toks = append(toks, token{kind: 'p', text: string(c)})
			i++
		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && (src[j] >= '0' && src[j] <= '9' || src[j] == '.') {
				j++
			}
			toks = append(toks, token{kind: 'n', text: src[i:j]})
			i = j
		case isIdentByte(c):
			j := i
			for j < len(src) && isIdentByte(src[j]) {
				j++
			}
			toks = append(toks, token{kind: 'i', text: src[i:j]})
			i = j
		default:
			// Unknown byte: skip, the parser will fault on what follows.
			i++
		}
	}
	return toks
}

func isIdentByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

type parser struct {
	toks []token
	pos  int
	path string

	fn *domain.Function
}

func (p *parser) atEOF() bool { return p.pos >= len(p.toks) }

func (p *parser) peek() string {
	if p.atEOF() {
		return "<eof>"
	}
	return p.toks[p.pos].text
}

func (p *parser) accept(text string) bool {
	if !p.atEOF() && p.toks[p.pos].text == text && p.toks[p.pos].kind != 's' {
		p.pos++
		return true
	}
	return false
}

func (p *parser) expect(text string) error {
	if !p.accept(text) {
		return p.errorf("expected %q, found %q", text, p.peek())
	}
	return nil
}

func (p *parser) expectIdent() (string, error) {
	if p.atEOF() || p.toks[p.pos].kind != 'i' {
		return "", p.errorf("expected identifier, found %q", p.peek())
	}
	t := p.toks[p.pos].text
	p.pos++
	return t, nil
}

func (p *parser) expectString() (string, error) {
	if p.atEOF() || p.toks[p.pos].kind != 's' {
		return "", p.errorf("expected string literal, found %q", p.peek())
	}
	t := p.toks[p.pos].text
	p.pos++
	return t, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return zerr.With(zerr.New("parse error: "+fmt.Sprintf(format, args...)), "path", p.path)
}

func (p *parser) parseFunction() (*domain.Function, error) {
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	fn := &domain.Function{Name: name}
	p.fn = fn

	if err := p.expect("("); err != nil {
		return nil, err
	}
	for !p.accept(")") {
		if len(fn.Params) > 0 {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
		pname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		ptype, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, domain.Param{Name: pname, Type: ptype})
	}

	fn.Return = domain.TypeVoid
	if p.accept("->") {
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		fn.Return = ret
	}

	if err := p.expect("{"); err != nil {
		return nil, err
	}
	if p.accept("return") {
		if p.peek() == "}" {
			fn.Instructions = append(fn.Instructions, domain.Instruction{
				Op: domain.OpRet, Type: domain.TypeVoid, Value: domain.NoValue,
			})
		} else {
			idx, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			fn.Instructions = append(fn.Instructions, domain.Instruction{
				Op: domain.OpRet, Type: fn.Instructions[idx].Type, Value: idx,
			})
		}
	} else {
		fn.Instructions = append(fn.Instructions, domain.Instruction{
			Op: domain.OpRet, Type: domain.TypeVoid, Value: domain.NoValue,
		})
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *parser) parseType() (domain.TypeTag, error) {
	name, err := p.expectIdent()
	if err != nil {
		return domain.TypeVoid, err
	}
	switch name {
	case "int":
		return domain.TypeInt, nil
	case "float":
		return domain.TypeFloat, nil
	case "bool":
		return domain.TypeBool, nil
	case "void":
		return domain.TypeVoid, nil
	default:
		return domain.TypeVoid, p.errorf("unknown type %q", name)
	}
}

// emit appends an instruction and returns its index.
func (p *parser) emit(ins domain.Instruction) uint32 {
	p.fn.Instructions = append(p.fn.Instructions, ins)
	return uint32(len(p.fn.Instructions) - 1)
}

func (p *parser) parseExpr() (uint32, error) {
	lhs, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		var op domain.BinaryOp
		switch {
		case p.accept("+"):
			op = domain.BinAdd
		case p.accept("-"):
			op = domain.BinSub
		default:
			return lhs, nil
		}
		rhs, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		lhs = p.emit(domain.Instruction{
			Op: domain.OpBinary, Type: p.fn.Instructions[lhs].Type,
			Bin: op, LHS: lhs, RHS: rhs,
		})
	}
}

func (p *parser) parseTerm() (uint32, error) {
	lhs, err := p.parseFactor()
	if err != nil {
		return 0, err
	}
	for {
		var op domain.BinaryOp
		switch {
		case p.accept("*"):
			op = domain.BinMul
		case p.accept("/"):
			op = domain.BinDiv
		default:
			return lhs, nil
		}
		rhs, err := p.parseFactor()
		if err != nil {
			return 0, err
		}
		lhs = p.emit(domain.Instruction{
			Op: domain.OpBinary, Type: p.fn.Instructions[lhs].Type,
			Bin: op, LHS: lhs, RHS: rhs,
		})
	}
}

func (p *parser) parseFactor() (uint32, error) {
	if p.accept("(") {
		idx, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		return idx, p.expect(")")
	}

	if p.atEOF() {
		return 0, p.errorf("unexpected end of input in expression")
	}

	tok := p.toks[p.pos]
	switch tok.kind {
	case 'n':
		p.pos++
		return p.emitNumber(tok.text)
	case 'i':
		p.pos++
		switch tok.text {
		case "true", "false":
			lit := []byte{0}
			if tok.text == "true" {
				lit = []byte{1}
			}
			return p.emit(domain.Instruction{Op: domain.OpConst, Type: domain.TypeBool, Literal: lit}), nil
		}
		if p.accept("(") {
			return p.parseCall(tok.text)
		}
		return p.emitParamRef(tok.text)
	default:
		return 0, p.errorf("unexpected token %q in expression", tok.text)
	}
}

// emitNumber lowers a numeric literal to canonical value bytes, so `007` and
// `7` hash identically while `7` and `8` do not.
func (p *parser) emitNumber(text string) (uint32, error) {
	if strings.ContainsRune(text, '.') {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, p.errorf("invalid float literal %q", text)
		}
		lit := strconv.AppendFloat(nil, f, 'g', -1, 64)
		return p.emit(domain.Instruction{Op: domain.OpConst, Type: domain.TypeFloat, Literal: lit}), nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, p.errorf("invalid integer literal %q", text)
	}
	lit := strconv.AppendInt(nil, n, 10)
	return p.emit(domain.Instruction{Op: domain.OpConst, Type: domain.TypeInt, Literal: lit}), nil
}

func (p *parser) emitParamRef(name string) (uint32, error) {
	for i, param := range p.fn.Params {
		if param.Name == name {
			return p.emit(domain.Instruction{
				Op: domain.OpParam, Type: param.Type, Param: uint32(i),
			}), nil
		}
	}
	return 0, p.errorf("unknown identifier %q", name)
}

func (p *parser) parseCall(callee string) (uint32, error) {
	var args []uint32
	for !p.accept(")") {
		if len(args) > 0 {
			if err := p.expect(","); err != nil {
				return 0, err
			}
		}
		idx, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		args = append(args, idx)
	}
	// Cross-file signatures are not resolved here; calls default to int.
	return p.emit(domain.Instruction{
		Op: domain.OpCall, Type: domain.TypeInt, Callee: callee, Args: args,
	}), nil
}
