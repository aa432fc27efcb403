package parser

import (
	"errors"
	"testing"

	fverrors "github.com/wippyai/fractview/errors"
	"github.com/wippyai/fractview/script/ast"
	"github.com/wippyai/fractview/script/internal/token"
)

func parse(t *testing.T, src string) (*ast.Program, []*ast.ExternDecl) {
	t.Helper()
	tokens, err := token.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	prog, externs, err := New(tokens).Parse()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return prog, externs
}

func parseExpr(t *testing.T, src string) ast.Node {
	t.Helper()
	tokens, err := token.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	n, err := New(tokens).ParseExpr()
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	return n
}

func TestParseExterns(t *testing.T) {
	prog, externs := parse(t, `extern a int = 0; extern b "Bailout" real = 1.5; var d = a + b`)

	if len(externs) != 2 {
		t.Fatalf("got %d externs, want 2", len(externs))
	}
	if externs[0].ID != "a" || externs[0].TypeName != "int" || externs[0].Description != "a" {
		t.Errorf("extern 0 = %+v", externs[0])
	}
	if externs[1].Description != "Bailout" || externs[1].TypeName != "real" {
		t.Errorf("extern 1 = %+v", externs[1])
	}
	if v, ok := externs[1].Default.(ast.Real); !ok || v.Value != 1.5 {
		t.Errorf("extern 1 default = %v", externs[1].Default)
	}
	if len(prog.Stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Stmts))
	}
	decl, ok := prog.Stmts[0].(*ast.VarDecl)
	if !ok || decl.Name != "d" {
		t.Fatalf("stmt 0 = %#v", prog.Stmts[0])
	}
	if decl.Value.String() != "(a + b)" {
		t.Errorf("var d = %s", decl.Value)
	}
}

func TestParseUnknownTypeNameAccepted(t *testing.T) {
	_, externs := parse(t, "extern a integer = 0;")
	if externs[0].TypeName != "integer" {
		t.Errorf("TypeName = %q", externs[0].TypeName)
	}
}

func TestParsePalette(t *testing.T) {
	_, externs := parse(t, `extern lake palette = [[#000, #f00], [#ff0]]; var x = lake (1:1)`)
	vec, ok := externs[0].Default.(*ast.Vec)
	if !ok || len(vec.Items) != 2 {
		t.Fatalf("default = %v", externs[0].Default)
	}
	row := vec.Items[0].(*ast.Vec)
	if c := row.Items[1].(ast.Int).Value; uint32(c) != 0xffff0000 {
		t.Errorf("#f00 = %#x", uint32(c))
	}
}

func TestParseExprPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"-a ^ 2", "-(a ^ 2)"},
		{"a ^ b ^ c", "(a ^ (b ^ c))"},
		{"1 + 2 : 3", "((1 + 2) : 3)"},
		{"f(x, y)(z)", "f(x, y)(z)"},
		{"lake (1:1)", "lake((1 : 1))"},
		{"[1, [2]]", "[1, [2]]"},
		{"true", "true"},
		{"a - b - c", "((a - b) - c)"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			if got := parseExpr(t, tt.src).String(); got != tt.want {
				t.Errorf("ParseExpr(%q) = %s, want %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestParseColors(t *testing.T) {
	tests := []struct {
		src  string
		want uint32
	}{
		{"#f00", 0xffff0000},
		{"#8f00", 0x88ff0000},
		{"#00ff00", 0xff00ff00},
		{"#12345678", 0x12345678},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			n := parseExpr(t, tt.src)
			if got := uint32(n.(ast.Int).Value); got != tt.want {
				t.Errorf("%s = %#x, want %#x", tt.src, got, tt.want)
			}
		})
	}
}

func TestParseStatements(t *testing.T) {
	prog, _ := parse(t, "var x; x = 2;; x + 1;")
	if len(prog.Stmts) != 3 {
		t.Fatalf("got %d statements", len(prog.Stmts))
	}
	if _, ok := prog.Stmts[1].(*ast.Assign); !ok {
		t.Errorf("stmt 1 = %#v", prog.Stmts[1])
	}
	if _, ok := prog.Stmts[2].(*ast.ExprStmt); !ok {
		t.Errorf("stmt 2 = %#v", prog.Stmts[2])
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"unary_plus", "var x = +1"},
		{"missing_semicolon", "var x = 1 var y = 2"},
		{"extern_without_default", "extern a int;"},
		{"duplicate_extern", "extern a int = 0; extern a int = 1;"},
		{"unclosed_paren", "var x = (1 + 2"},
		{"reserved_name", "var var = 1"},
		{"int_overflow", "var x = 99999999999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := token.Tokenize(tt.src)
			if err != nil {
				t.Fatalf("tokenize: %v", err)
			}
			_, _, err = New(tokens).Parse()
			if err == nil {
				t.Fatalf("Parse(%q) expected error", tt.src)
			}
			if !errors.Is(err, fverrors.ErrSyntax) {
				t.Errorf("error %v is not a syntax error", err)
			}
			var fe *fverrors.Error
			if errors.As(err, &fe) && fe.Line == 0 {
				t.Errorf("error %v carries no position", err)
			}
		})
	}
}

func TestParseExprTrailing(t *testing.T) {
	tokens, _ := token.Tokenize("1 2")
	if _, err := New(tokens).ParseExpr(); err == nil {
		t.Error("expected error for trailing tokens")
	}
}
