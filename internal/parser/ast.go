package parser

import "fmt"

// NodeType represents the type of AST node
type NodeType string

// Python AST node types
const (
	// Module structure
	NodeModule NodeType = "Module"

	// Definitions
	NodeClassDef    NodeType = "ClassDef"
	NodeFunctionDef NodeType = "FunctionDef"
	NodeLambda      NodeType = "Lambda"
	NodeDecorator   NodeType = "Decorator"

	// Control flow statements
	NodeIf       NodeType = "If"
	NodeWhile    NodeType = "While"
	NodeFor      NodeType = "For"
	NodeTry      NodeType = "Try"
	NodeWith     NodeType = "With"
	NodeMatch    NodeType = "Match"
	NodeCaseArm  NodeType = "MatchCase"
	NodeReturn   NodeType = "Return"
	NodeRaise    NodeType = "Raise"
	NodeBreak    NodeType = "Break"
	NodeContinue NodeType = "Continue"
	NodePass     NodeType = "Pass"

	// Assignments
	NodeAssign    NodeType = "Assign"
	NodeAnnAssign NodeType = "AnnAssign"
	NodeAugAssign NodeType = "AugAssign"

	// Expressions
	NodeBoolOp    NodeType = "BoolOp"
	NodeBinOp     NodeType = "BinOp"
	NodeUnaryOp   NodeType = "UnaryOp"
	NodeCompare   NodeType = "Compare"
	NodeCall      NodeType = "Call"
	NodeIfExp     NodeType = "IfExp"
	NodeAttribute NodeType = "Attribute"
	NodeSubscript NodeType = "Subscript"
	NodeName      NodeType = "Name"
	NodeConstant  NodeType = "Constant"
	NodeStarred   NodeType = "Starred"
	NodeKeyword   NodeType = "Keyword"
	NodeAwait     NodeType = "Await"
	NodeYield     NodeType = "Yield"

	// Containers
	NodeDict  NodeType = "Dict"
	NodeList  NodeType = "List"
	NodeTuple NodeType = "Tuple"
	NodeSet   NodeType = "Set"

	// Comprehensions
	NodeListComp NodeType = "ListComp"
	NodeDictComp NodeType = "DictComp"
	NodeSetComp  NodeType = "SetComp"
	NodeGenExp   NodeType = "GeneratorExp"

	// Module system
	NodeImport     NodeType = "Import"
	NodeImportFrom NodeType = "ImportFrom"

	// Other statements
	NodeExprStatement NodeType = "ExpressionStatement"
	NodeGlobal        NodeType = "Global"
	NodeNonlocal      NodeType = "Nonlocal"
	NodeAssert        NodeType = "Assert"
	NodeDelete        NodeType = "Delete"

	// Fallback for constructs the analyzer does not model explicitly
	NodeGeneric NodeType = "Generic"
)

// ConstKind classifies a Constant node's literal value
type ConstKind string

const (
	ConstNone   ConstKind = "none"
	ConstBool   ConstKind = "bool"
	ConstString ConstKind = "string"
	ConstNumber ConstKind = "number"
	ConstOther  ConstKind = "other"
)

// Location represents the position of a node in the source code
type Location struct {
	File      string
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
}

// String returns a string representation of the location
func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.StartLine, l.StartCol)
}

// Param represents a single function parameter
type Param struct {
	Name       string
	Annotation *Node
	Location   Location
}

// Arguments holds the full parameter list of a function definition.
// Defaults is right-aligned against Args the way Python stores it:
// Defaults[i] belongs to Args[len(Args)-len(Defaults)+i].
type Arguments struct {
	Args       []*Param
	Defaults   []*Node
	KwOnlyArgs []*Param
	KwDefaults []*Node // same length as KwOnlyArgs, nil entry means no default
	VarArg     *Param  // *args
	KwArg      *Param  // **kwargs
}

// Total returns the parameter count including *args and **kwargs
func (a *Arguments) Total() int {
	if a == nil {
		return 0
	}
	n := len(a.Args) + len(a.KwOnlyArgs)
	if a.VarArg != nil {
		n++
	}
	if a.KwArg != nil {
		n++
	}
	return n
}

// ImportAlias is one name bound by an import statement
type ImportAlias struct {
	Name   string // dotted module or symbol name
	AsName string // empty when no alias
}

// Node represents an AST node
type Node struct {
	Type     NodeType
	Location Location

	// Common fields for various node types
	Name string // class/function/decorator name, Name identifier, Attribute attr

	// Definition fields
	Args       *Arguments // FunctionDef parameters
	Decorators []*Node    // FunctionDef/ClassDef decorators
	Returns    *Node      // FunctionDef return annotation
	Bases      []*Node    // ClassDef base classes
	Async      bool       // async def

	// Statement bodies
	Body   []*Node
	OrElse []*Node // else branch; for If this is either the else body or a single nested If (elif)
	Test   *Node   // condition for if/while/if-expression

	// Assignment fields
	Targets    []*Node // Assign targets
	Value      *Node   // Assign/Return/Keyword/AnnAssign value, Attribute/Subscript base
	Annotation *Node   // AnnAssign annotation

	// Expression fields
	Left        *Node    // Compare left operand, BinOp left
	Right       *Node    // BinOp right
	Ops         []string // Compare operator tokens ("==", "is", "is not", ...)
	Comparators []*Node  // Compare right-hand operands
	Op          string   // BoolOp ("and"/"or"), UnaryOp, BinOp, AugAssign operator
	Operand     *Node    // UnaryOp operand
	Values      []*Node  // BoolOp operands, Dict values
	Keys        []*Node  // Dict keys
	Elts        []*Node  // List/Tuple/Set elements

	// Call fields
	Func     *Node   // callee expression
	CallArgs []*Node // positional arguments
	Keywords []*Node // keyword arguments (Keyword nodes)

	// Subscript fields
	Slice *Node

	// Constant fields
	Const   ConstKind
	BoolVal bool
	StrVal  string // unquoted string content
	Raw     string // raw source text of the literal

	// Import fields
	Module string // ImportFrom source module ("" for bare relative imports)
	Level  int    // ImportFrom relative level (number of leading dots)
	Names  []ImportAlias

	// Match fields
	Subject *Node   // match subject expression
	Cases   []*Node // MatchCase arms

	// Generic container for child nodes of unmodeled constructs
	Children []*Node
}

// NewNode creates a new AST node
func NewNode(nodeType NodeType) *Node {
	return &Node{Type: nodeType}
}

// Walk traverses the AST depth-first and calls the visitor function for each node.
// If the visitor returns false, traversal of that branch is stopped.
func (n *Node) Walk(visitor func(*Node) bool) {
	if n == nil {
		return
	}

	if !visitor(n) {
		return
	}

	for _, d := range n.Decorators {
		d.Walk(visitor)
	}
	if n.Args != nil {
		for _, p := range n.Args.Args {
			p.Annotation.Walk(visitor)
		}
		for _, def := range n.Args.Defaults {
			def.Walk(visitor)
		}
		for _, p := range n.Args.KwOnlyArgs {
			p.Annotation.Walk(visitor)
		}
		for _, def := range n.Args.KwDefaults {
			def.Walk(visitor)
		}
		if n.Args.VarArg != nil {
			n.Args.VarArg.Annotation.Walk(visitor)
		}
		if n.Args.KwArg != nil {
			n.Args.KwArg.Annotation.Walk(visitor)
		}
	}
	if n.Returns != nil {
		n.Returns.Walk(visitor)
	}
	for _, b := range n.Bases {
		b.Walk(visitor)
	}
	if n.Test != nil {
		n.Test.Walk(visitor)
	}
	for _, stmt := range n.Body {
		stmt.Walk(visitor)
	}
	for _, stmt := range n.OrElse {
		stmt.Walk(visitor)
	}
	for _, t := range n.Targets {
		t.Walk(visitor)
	}
	if n.Value != nil {
		n.Value.Walk(visitor)
	}
	if n.Annotation != nil {
		n.Annotation.Walk(visitor)
	}
	if n.Left != nil {
		n.Left.Walk(visitor)
	}
	if n.Right != nil {
		n.Right.Walk(visitor)
	}
	for _, c := range n.Comparators {
		c.Walk(visitor)
	}
	if n.Operand != nil {
		n.Operand.Walk(visitor)
	}
	for _, v := range n.Values {
		v.Walk(visitor)
	}
	for _, k := range n.Keys {
		k.Walk(visitor)
	}
	for _, e := range n.Elts {
		e.Walk(visitor)
	}
	if n.Func != nil {
		n.Func.Walk(visitor)
	}
	for _, a := range n.CallArgs {
		a.Walk(visitor)
	}
	for _, kw := range n.Keywords {
		kw.Walk(visitor)
	}
	if n.Slice != nil {
		n.Slice.Walk(visitor)
	}
	if n.Subject != nil {
		n.Subject.Walk(visitor)
	}
	for _, c := range n.Cases {
		c.Walk(visitor)
	}
	for _, child := range n.Children {
		child.Walk(visitor)
	}
}

// String returns a string representation of the node
func (n *Node) String() string {
	if n.Name != "" {
		return fmt.Sprintf("%s(%s) at %s", n.Type, n.Name, n.Location)
	}
	return fmt.Sprintf("%s at %s", n.Type, n.Location)
}

// IsNone reports whether the node is the None constant
func (n *Node) IsNone() bool {
	return n != nil && n.Type == NodeConstant && n.Const == ConstNone
}

// IsStatement returns true if the node is a statement
func (n *Node) IsStatement() bool {
	switch n.Type {
	case NodeIf, NodeWhile, NodeFor, NodeTry, NodeWith, NodeMatch,
		NodeReturn, NodeRaise, NodeBreak, NodeContinue, NodePass,
		NodeAssign, NodeAnnAssign, NodeAugAssign,
		NodeImport, NodeImportFrom, NodeExprStatement,
		NodeGlobal, NodeNonlocal, NodeAssert, NodeDelete:
		return true
	}
	return false
}

// IsDefinition returns true if the node introduces a class or function
func (n *Node) IsDefinition() bool {
	return n.Type == NodeClassDef || n.Type == NodeFunctionDef
}
