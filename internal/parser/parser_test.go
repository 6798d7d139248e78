package parser

import (
	"strings"
	"testing"
)

func TestParseSimpleFunction(t *testing.T) {
	code := "def hello():\n    return 42\n"

	parser := NewParser()
	defer parser.Close()

	ast, err := parser.ParseString(code)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if ast == nil {
		t.Fatal("AST is nil")
	}

	if ast.Type != NodeModule {
		t.Errorf("Expected NodeModule, got %s", ast.Type)
	}

	if len(ast.Body) == 0 {
		t.Fatal("Expected at least one statement in body")
	}

	funcNode := ast.Body[0]
	if funcNode.Type != NodeFunctionDef {
		t.Errorf("Expected NodeFunctionDef, got %s", funcNode.Type)
	}

	if funcNode.Name != "hello" {
		t.Errorf("Expected function name 'hello', got '%s'", funcNode.Name)
	}

	if len(funcNode.Body) != 1 || funcNode.Body[0].Type != NodeReturn {
		t.Fatalf("Expected a single return statement body, got %+v", funcNode.Body)
	}

	ret := funcNode.Body[0]
	if ret.Value == nil || ret.Value.Type != NodeConstant || ret.Value.Const != ConstNumber {
		t.Errorf("Expected numeric constant return value, got %v", ret.Value)
	}
}

func TestParseClassDefinition(t *testing.T) {
	code := `class Dog(Animal):
    def __init__(self, name):
        self.name = name

    def speak(self):
        return "woof"
`

	ast, err := ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	classNode := ast.Body[0]
	if classNode.Type != NodeClassDef {
		t.Fatalf("Expected NodeClassDef, got %s", classNode.Type)
	}
	if classNode.Name != "Dog" {
		t.Errorf("Expected class name 'Dog', got '%s'", classNode.Name)
	}
	if len(classNode.Bases) != 1 || classNode.Bases[0].Name != "Animal" {
		t.Errorf("Expected base class 'Animal', got %+v", classNode.Bases)
	}
	if len(classNode.Body) != 2 {
		t.Fatalf("Expected 2 methods, got %d", len(classNode.Body))
	}
	if classNode.Body[0].Name != "__init__" || classNode.Body[1].Name != "speak" {
		t.Errorf("Unexpected method names: %s, %s", classNode.Body[0].Name, classNode.Body[1].Name)
	}
}

func TestParseSyntaxErrorRejected(t *testing.T) {
	code := "def broken(:\n    pass\n"

	_, err := ParseSource("broken.py", []byte(code))
	if err == nil {
		t.Fatal("Expected parse error for invalid syntax")
	}
	if !strings.Contains(err.Error(), "syntax error in broken.py") {
		t.Errorf("Unexpected error message: %v", err)
	}
}

func TestParseElifChain(t *testing.T) {
	code := `def check(shape):
    if shape.type == "circle":
        return 1
    elif shape.type == "square":
        return 2
    else:
        return 3
`

	ast, err := ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	ifNode := ast.Body[0].Body[0]
	if ifNode.Type != NodeIf {
		t.Fatalf("Expected NodeIf, got %s", ifNode.Type)
	}
	if ifNode.Test == nil || ifNode.Test.Type != NodeCompare {
		t.Errorf("Expected comparison test, got %v", ifNode.Test)
	}

	// elif is a single nested If in the else branch
	if len(ifNode.OrElse) != 1 || ifNode.OrElse[0].Type != NodeIf {
		t.Fatalf("Expected nested If in OrElse, got %+v", ifNode.OrElse)
	}
	elifNode := ifNode.OrElse[0]
	if len(elifNode.OrElse) != 1 || elifNode.OrElse[0].Type != NodeReturn {
		t.Errorf("Expected trailing else body, got %+v", elifNode.OrElse)
	}
}

func TestParseImports(t *testing.T) {
	code := `import os
import json as j
from pathlib import Path
from . import sibling
from ..pkg import helper
`

	ast, err := ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(ast.Body) != 5 {
		t.Fatalf("Expected 5 statements, got %d", len(ast.Body))
	}

	if ast.Body[0].Type != NodeImport || ast.Body[0].Names[0].Name != "os" {
		t.Errorf("Unexpected first import: %+v", ast.Body[0])
	}
	if ast.Body[1].Names[0].AsName != "j" {
		t.Errorf("Expected alias 'j', got '%s'", ast.Body[1].Names[0].AsName)
	}

	fromImport := ast.Body[2]
	if fromImport.Type != NodeImportFrom || fromImport.Module != "pathlib" {
		t.Errorf("Unexpected from-import: %+v", fromImport)
	}

	relative := ast.Body[3]
	if relative.Level != 1 || relative.Module != "" {
		t.Errorf("Expected bare relative import level 1, got level=%d module=%q", relative.Level, relative.Module)
	}

	deepRelative := ast.Body[4]
	if deepRelative.Level != 2 || deepRelative.Module != "pkg" {
		t.Errorf("Expected level 2 import of 'pkg', got level=%d module=%q", deepRelative.Level, deepRelative.Module)
	}
}

func TestArgumentsTotal(t *testing.T) {
	code := "def f(a, b, *args, c=1, **kwargs):\n    pass\n"

	ast, err := ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	fn := ast.Body[0]
	if got := fn.Args.Total(); got != 5 {
		t.Errorf("Expected 5 total parameters, got %d", got)
	}
	if fn.Args.VarArg == nil || fn.Args.VarArg.Name != "args" {
		t.Errorf("Expected *args, got %+v", fn.Args.VarArg)
	}
	if fn.Args.KwArg == nil || fn.Args.KwArg.Name != "kwargs" {
		t.Errorf("Expected **kwargs, got %+v", fn.Args.KwArg)
	}
}

func TestParseDecorators(t *testing.T) {
	code := `class Point:
    @property
    def x(self):
        return self._x
`

	ast, err := ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	method := ast.Body[0].Body[0]
	if len(method.Decorators) != 1 {
		t.Fatalf("Expected 1 decorator, got %d", len(method.Decorators))
	}
	if method.Decorators[0].Name != "property" {
		t.Errorf("Expected property decorator, got '%s'", method.Decorators[0].Name)
	}
}

func TestParseMatchStatement(t *testing.T) {
	code := `def handle(cmd):
    match cmd:
        case "start":
            return 1
        case "stop":
            return 2
        case _:
            return 0
`

	ast, err := ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	matchNode := ast.Body[0].Body[0]
	if matchNode.Type != NodeMatch {
		t.Fatalf("Expected NodeMatch, got %s", matchNode.Type)
	}
	if matchNode.Subject == nil || matchNode.Subject.Name != "cmd" {
		t.Errorf("Expected match subject 'cmd', got %v", matchNode.Subject)
	}
	if len(matchNode.Cases) != 3 {
		t.Errorf("Expected 3 case arms, got %d", len(matchNode.Cases))
	}
}

func TestLocations(t *testing.T) {
	code := "x = 1\ndef f():\n    pass\n"

	ast, err := ParseSource("located.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	assign := ast.Body[0]
	if assign.Location.StartLine != 1 || assign.Location.StartCol != 0 {
		t.Errorf("Expected assignment at 1:0, got %d:%d", assign.Location.StartLine, assign.Location.StartCol)
	}

	fn := ast.Body[1]
	if fn.Location.StartLine != 2 {
		t.Errorf("Expected function at line 2, got %d", fn.Location.StartLine)
	}
	if fn.Location.File != "located.py" {
		t.Errorf("Expected file 'located.py', got '%s'", fn.Location.File)
	}
}

func TestWalkStopsBranch(t *testing.T) {
	code := `class A:
    def inner(self):
        pass

def outer():
    pass
`

	ast, err := ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var functions []string
	ast.Walk(func(n *Node) bool {
		if n.Type == NodeClassDef {
			return false
		}
		if n.Type == NodeFunctionDef {
			functions = append(functions, n.Name)
		}
		return true
	})

	if len(functions) != 1 || functions[0] != "outer" {
		t.Errorf("Expected only 'outer' outside the skipped class, got %v", functions)
	}
}

func TestParseDictLiteral(t *testing.T) {
	code := "data = {\"name\": \"x\", \"age\": 3}\n"

	ast, err := ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	dict := ast.Body[0].Value
	if dict == nil || dict.Type != NodeDict {
		t.Fatalf("Expected NodeDict value, got %v", dict)
	}
	if len(dict.Keys) != 2 || len(dict.Values) != 2 {
		t.Fatalf("Expected 2 entries, got %d keys / %d values", len(dict.Keys), len(dict.Values))
	}
	if dict.Keys[0].StrVal != "name" {
		t.Errorf("Expected first key 'name', got '%s'", dict.Keys[0].StrVal)
	}
}

func TestParseParameterizedAnnotations(t *testing.T) {
	code := "def f(d: Dict[str, int], o: Optional[int]) -> Union[str, None]:\n    pass\n"

	ast, err := ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	args := ast.Body[0].Args.Args
	if len(args) != 2 {
		t.Fatalf("Expected 2 parameters, got %d", len(args))
	}

	dictHint := args[0].Annotation
	if dictHint == nil || dictHint.Type != NodeSubscript {
		t.Fatalf("Expected subscript annotation, got %+v", dictHint)
	}
	if dictHint.Value == nil || dictHint.Value.Name != "Dict" {
		t.Errorf("Expected Dict base, got %+v", dictHint.Value)
	}
	if dictHint.Slice == nil || dictHint.Slice.Type != NodeTuple || len(dictHint.Slice.Elts) != 2 {
		t.Errorf("Expected two type parameters, got %+v", dictHint.Slice)
	}

	optHint := args[1].Annotation
	if optHint == nil || optHint.Type != NodeSubscript || optHint.Value.Name != "Optional" {
		t.Fatalf("Expected Optional subscript, got %+v", optHint)
	}
	if optHint.Slice == nil || optHint.Slice.Name != "int" {
		t.Errorf("Expected single int parameter, got %+v", optHint.Slice)
	}

	returns := ast.Body[0].Returns
	if returns == nil || returns.Type != NodeSubscript || returns.Value.Name != "Union" {
		t.Fatalf("Expected Union return annotation, got %+v", returns)
	}
}

func TestParseUnionPipeAnnotation(t *testing.T) {
	code := "def f(x: int | None):\n    pass\n"

	ast, err := ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	hint := ast.Body[0].Args.Args[0].Annotation
	if hint == nil || hint.Type != NodeBinOp || hint.Op != "|" {
		t.Fatalf("Expected | binary op annotation, got %+v", hint)
	}
	if hint.Left == nil || hint.Left.Name != "int" {
		t.Errorf("Expected int left operand, got %+v", hint.Left)
	}
	if hint.Right == nil || !hint.Right.IsNone() {
		t.Errorf("Expected None right operand, got %+v", hint.Right)
	}
}

func TestNoneConstant(t *testing.T) {
	code := "x = None\n"

	ast, err := ParseSource("test.py", []byte(code))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	value := ast.Body[0].Value
	if !value.IsNone() {
		t.Errorf("Expected None constant, got %+v", value)
	}
}
