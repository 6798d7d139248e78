package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// ASTBuilder builds our internal AST from tree-sitter CST
type ASTBuilder struct {
	filename string
	source   []byte
}

// NewASTBuilder creates a new AST builder
func NewASTBuilder(filename string, source []byte) *ASTBuilder {
	return &ASTBuilder{
		filename: filename,
		source:   source,
	}
}

// Build builds the AST from a tree-sitter node
func (b *ASTBuilder) Build(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	return b.buildNode(tsNode)
}

// buildNode converts a tree-sitter node to our internal AST node
func (b *ASTBuilder) buildNode(tsNode *sitter.Node) *Node {
	if tsNode == nil {
		return nil
	}

	switch tsNode.Type() {
	case "module":
		return b.buildModule(tsNode)
	case "class_definition":
		return b.buildClassDefinition(tsNode, nil)
	case "function_definition":
		return b.buildFunctionDefinition(tsNode, nil)
	case "decorated_definition":
		return b.buildDecoratedDefinition(tsNode)
	case "lambda":
		return b.buildLambda(tsNode)
	case "if_statement":
		return b.buildIfStatement(tsNode)
	case "while_statement":
		return b.buildWhileStatement(tsNode)
	case "for_statement":
		return b.buildForStatement(tsNode)
	case "match_statement":
		return b.buildMatchStatement(tsNode)
	case "return_statement":
		return b.buildReturnStatement(tsNode)
	case "raise_statement":
		return b.buildSimpleStatement(tsNode, NodeRaise)
	case "break_statement":
		return b.buildLeaf(tsNode, NodeBreak)
	case "continue_statement":
		return b.buildLeaf(tsNode, NodeContinue)
	case "pass_statement":
		return b.buildLeaf(tsNode, NodePass)
	case "global_statement":
		return b.buildLeaf(tsNode, NodeGlobal)
	case "nonlocal_statement":
		return b.buildLeaf(tsNode, NodeNonlocal)
	case "assert_statement":
		return b.buildSimpleStatement(tsNode, NodeAssert)
	case "delete_statement":
		return b.buildSimpleStatement(tsNode, NodeDelete)
	case "expression_statement":
		return b.buildExpressionStatement(tsNode)
	case "assignment":
		return b.buildAssignment(tsNode)
	case "augmented_assignment":
		return b.buildAugmentedAssignment(tsNode)
	case "boolean_operator":
		return b.buildBooleanOperator(tsNode)
	case "not_operator":
		return b.buildNotOperator(tsNode)
	case "unary_operator":
		return b.buildUnaryOperator(tsNode)
	case "binary_operator":
		return b.buildBinaryOperator(tsNode)
	case "comparison_operator":
		return b.buildComparisonOperator(tsNode)
	case "conditional_expression":
		return b.buildConditionalExpression(tsNode)
	case "call":
		return b.buildCall(tsNode)
	case "attribute":
		return b.buildAttribute(tsNode)
	case "subscript":
		return b.buildSubscript(tsNode)
	case "generic_type":
		return b.buildGenericType(tsNode)
	case "union_type":
		return b.buildUnionType(tsNode)
	case "await":
		return b.buildSimpleStatement(tsNode, NodeAwait)
	case "yield":
		return b.buildSimpleStatement(tsNode, NodeYield)
	case "identifier":
		return b.buildIdentifier(tsNode)
	case "none", "true", "false", "integer", "float", "string", "concatenated_string", "ellipsis":
		return b.buildConstant(tsNode)
	case "dictionary":
		return b.buildDictionary(tsNode)
	case "list":
		return b.buildSequence(tsNode, NodeList)
	case "tuple", "expression_list", "pattern_list":
		return b.buildSequence(tsNode, NodeTuple)
	case "set":
		return b.buildSequence(tsNode, NodeSet)
	case "list_comprehension":
		return b.buildGeneric(tsNode, NodeListComp)
	case "dictionary_comprehension":
		return b.buildGeneric(tsNode, NodeDictComp)
	case "set_comprehension":
		return b.buildGeneric(tsNode, NodeSetComp)
	case "generator_expression":
		return b.buildGeneric(tsNode, NodeGenExp)
	case "import_statement":
		return b.buildImport(tsNode)
	case "import_from_statement", "future_import_statement":
		return b.buildImportFrom(tsNode)
	case "try_statement":
		return b.buildGeneric(tsNode, NodeTry)
	case "with_statement":
		return b.buildGeneric(tsNode, NodeWith)
	case "parenthesized_expression":
		// Transparent: a[(x)] and (x) behave like x
		if inner := b.firstNamedChild(tsNode); inner != nil {
			return b.buildNode(inner)
		}
		return b.buildGeneric(tsNode, NodeGeneric)
	case "keyword_argument":
		return b.buildKeywordArgument(tsNode)
	case "type":
		// Annotation wrapper around a plain expression
		if inner := b.firstNamedChild(tsNode); inner != nil {
			return b.buildNode(inner)
		}
		return b.buildGeneric(tsNode, NodeGeneric)
	default:
		return b.buildGeneric(tsNode, NodeGeneric)
	}
}

// buildModule builds the module root node
func (b *ASTBuilder) buildModule(tsNode *sitter.Node) *Node {
	node := NewNode(NodeModule)
	node.Location = b.getLocation(tsNode)
	node.Body = b.buildStatements(tsNode)
	return node
}

// buildStatements builds the statement list of a module or block node
func (b *ASTBuilder) buildStatements(tsNode *sitter.Node) []*Node {
	var stmts []*Node
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		if stmt := b.buildNode(child); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// buildBlock builds the body of a field referencing a block node
func (b *ASTBuilder) buildBlock(tsNode *sitter.Node) []*Node {
	if tsNode == nil {
		return nil
	}
	return b.buildStatements(tsNode)
}

// buildDecoratedDefinition unwraps a decorated class or function definition
func (b *ASTBuilder) buildDecoratedDefinition(tsNode *sitter.Node) *Node {
	var decorators []*Node
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || child.Type() != "decorator" {
			continue
		}
		dec := NewNode(NodeDecorator)
		dec.Location = b.getLocation(child)
		if expr := b.firstNamedChild(child); expr != nil {
			dec.Value = b.buildNode(expr)
			dec.Name = b.decoratorName(dec.Value)
		}
		decorators = append(decorators, dec)
	}

	defNode := tsNode.ChildByFieldName("definition")
	if defNode == nil {
		return b.buildGeneric(tsNode, NodeGeneric)
	}
	switch defNode.Type() {
	case "class_definition":
		return b.buildClassDefinition(defNode, decorators)
	case "function_definition":
		return b.buildFunctionDefinition(defNode, decorators)
	}
	return b.buildNode(defNode)
}

// decoratorName extracts the dotted name of a decorator expression
func (b *ASTBuilder) decoratorName(expr *Node) string {
	switch {
	case expr == nil:
		return ""
	case expr.Type == NodeName:
		return expr.Name
	case expr.Type == NodeAttribute:
		base := b.decoratorName(expr.Value)
		if base == "" {
			return expr.Name
		}
		return base + "." + expr.Name
	case expr.Type == NodeCall:
		return b.decoratorName(expr.Func)
	}
	return ""
}

// buildClassDefinition builds a class definition node
func (b *ASTBuilder) buildClassDefinition(tsNode *sitter.Node, decorators []*Node) *Node {
	node := NewNode(NodeClassDef)
	node.Location = b.getLocation(tsNode)
	node.Decorators = decorators

	if nameNode := tsNode.ChildByFieldName("name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if supers := tsNode.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			child := supers.NamedChild(i)
			if child == nil || child.Type() == "keyword_argument" {
				continue
			}
			if base := b.buildNode(child); base != nil {
				node.Bases = append(node.Bases, base)
			}
		}
	}
	node.Body = b.buildBlock(tsNode.ChildByFieldName("body"))

	return node
}

// buildFunctionDefinition builds a function definition node
func (b *ASTBuilder) buildFunctionDefinition(tsNode *sitter.Node, decorators []*Node) *Node {
	node := NewNode(NodeFunctionDef)
	node.Location = b.getLocation(tsNode)
	node.Decorators = decorators

	if tsNode.ChildCount() > 0 {
		if first := tsNode.Child(0); first != nil && first.Type() == "async" {
			node.Async = true
		}
	}
	if nameNode := tsNode.ChildByFieldName("name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if paramsNode := tsNode.ChildByFieldName("parameters"); paramsNode != nil {
		node.Args = b.buildParameters(paramsNode)
	}
	if retNode := tsNode.ChildByFieldName("return_type"); retNode != nil {
		node.Returns = b.buildNode(retNode)
	}
	node.Body = b.buildBlock(tsNode.ChildByFieldName("body"))

	return node
}

// buildLambda builds a lambda node
func (b *ASTBuilder) buildLambda(tsNode *sitter.Node) *Node {
	node := NewNode(NodeLambda)
	node.Location = b.getLocation(tsNode)

	if paramsNode := tsNode.ChildByFieldName("parameters"); paramsNode != nil {
		node.Args = b.buildParameters(paramsNode)
	}
	if bodyNode := tsNode.ChildByFieldName("body"); bodyNode != nil {
		if body := b.buildNode(bodyNode); body != nil {
			node.Body = []*Node{body}
		}
	}

	return node
}

// buildParameters builds the Arguments from a parameters node.
// A bare "*" separator switches subsequent parameters to keyword-only.
func (b *ASTBuilder) buildParameters(tsNode *sitter.Node) *Arguments {
	args := &Arguments{}
	keywordOnly := false

	addParam := func(p *Param, def *Node) {
		if keywordOnly {
			args.KwOnlyArgs = append(args.KwOnlyArgs, p)
			args.KwDefaults = append(args.KwDefaults, def)
			return
		}
		args.Args = append(args.Args, p)
		if def != nil {
			args.Defaults = append(args.Defaults, def)
		}
	}

	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil {
			continue
		}

		switch child.Type() {
		case "identifier":
			addParam(&Param{Name: child.Content(b.source), Location: b.getLocation(child)}, nil)

		case "typed_parameter":
			p := &Param{Location: b.getLocation(child)}
			if typeNode := child.ChildByFieldName("type"); typeNode != nil {
				p.Annotation = b.buildNode(typeNode)
			}
			if pattern := b.firstNamedChild(child); pattern != nil {
				switch pattern.Type() {
				case "identifier":
					p.Name = pattern.Content(b.source)
					addParam(p, nil)
				case "list_splat_pattern":
					p.Name = b.splatName(pattern)
					args.VarArg = p
					keywordOnly = true
				case "dictionary_splat_pattern":
					p.Name = b.splatName(pattern)
					args.KwArg = p
				}
			}

		case "default_parameter", "typed_default_parameter":
			p := &Param{Location: b.getLocation(child)}
			if nameNode := child.ChildByFieldName("name"); nameNode != nil {
				p.Name = nameNode.Content(b.source)
			}
			if typeNode := child.ChildByFieldName("type"); typeNode != nil {
				p.Annotation = b.buildNode(typeNode)
			}
			var def *Node
			if valueNode := child.ChildByFieldName("value"); valueNode != nil {
				def = b.buildNode(valueNode)
			}
			if keywordOnly {
				addParam(p, def)
			} else {
				args.Args = append(args.Args, p)
				args.Defaults = append(args.Defaults, def)
			}

		case "list_splat_pattern":
			args.VarArg = &Param{Name: b.splatName(child), Location: b.getLocation(child)}
			keywordOnly = true

		case "dictionary_splat_pattern":
			args.KwArg = &Param{Name: b.splatName(child), Location: b.getLocation(child)}

		case "keyword_separator":
			keywordOnly = true
		}
	}

	return args
}

// splatName extracts the identifier inside *args / **kwargs patterns
func (b *ASTBuilder) splatName(tsNode *sitter.Node) string {
	if inner := b.firstNamedChild(tsNode); inner != nil {
		return inner.Content(b.source)
	}
	return ""
}

// buildIfStatement builds an if statement. Elif clauses become nested If
// nodes in OrElse, matching how Python's own AST chains them.
func (b *ASTBuilder) buildIfStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeIf)
	node.Location = b.getLocation(tsNode)

	if condNode := tsNode.ChildByFieldName("condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
	}
	node.Body = b.buildBlock(tsNode.ChildByFieldName("consequence"))

	// Collect elif/else clauses in order, then fold them right to left
	var clauses []*sitter.Node
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil {
			continue
		}
		if child.Type() == "elif_clause" || child.Type() == "else_clause" {
			clauses = append(clauses, child)
		}
	}

	var orElse []*Node
	for i := len(clauses) - 1; i >= 0; i-- {
		clause := clauses[i]
		if clause.Type() == "else_clause" {
			orElse = b.buildBlock(clause.ChildByFieldName("body"))
			continue
		}
		elifNode := NewNode(NodeIf)
		elifNode.Location = b.getLocation(clause)
		if condNode := clause.ChildByFieldName("condition"); condNode != nil {
			elifNode.Test = b.buildNode(condNode)
		}
		elifNode.Body = b.buildBlock(clause.ChildByFieldName("consequence"))
		elifNode.OrElse = orElse
		orElse = []*Node{elifNode}
	}
	node.OrElse = orElse

	return node
}

// buildWhileStatement builds a while statement node
func (b *ASTBuilder) buildWhileStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeWhile)
	node.Location = b.getLocation(tsNode)

	if condNode := tsNode.ChildByFieldName("condition"); condNode != nil {
		node.Test = b.buildNode(condNode)
	}
	node.Body = b.buildBlock(tsNode.ChildByFieldName("body"))
	if altNode := tsNode.ChildByFieldName("alternative"); altNode != nil {
		node.OrElse = b.buildBlock(altNode.ChildByFieldName("body"))
	}

	return node
}

// buildForStatement builds a for statement node
func (b *ASTBuilder) buildForStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeFor)
	node.Location = b.getLocation(tsNode)

	if leftNode := tsNode.ChildByFieldName("left"); leftNode != nil {
		if target := b.buildNode(leftNode); target != nil {
			node.Targets = []*Node{target}
		}
	}
	if rightNode := tsNode.ChildByFieldName("right"); rightNode != nil {
		node.Value = b.buildNode(rightNode)
	}
	node.Body = b.buildBlock(tsNode.ChildByFieldName("body"))
	if altNode := tsNode.ChildByFieldName("alternative"); altNode != nil {
		node.OrElse = b.buildBlock(altNode.ChildByFieldName("body"))
	}

	return node
}

// buildMatchStatement builds a match statement node
func (b *ASTBuilder) buildMatchStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeMatch)
	node.Location = b.getLocation(tsNode)

	if subjectNode := tsNode.ChildByFieldName("subject"); subjectNode != nil {
		node.Subject = b.buildNode(subjectNode)
	}
	if bodyNode := tsNode.ChildByFieldName("body"); bodyNode != nil {
		for i := 0; i < int(bodyNode.NamedChildCount()); i++ {
			child := bodyNode.NamedChild(i)
			if child == nil || child.Type() != "case_clause" {
				continue
			}
			arm := NewNode(NodeCaseArm)
			arm.Location = b.getLocation(child)
			arm.Body = b.buildBlock(child.ChildByFieldName("consequence"))
			if guard := child.ChildByFieldName("guard"); guard != nil {
				if g := b.firstNamedChild(guard); g != nil {
					arm.Test = b.buildNode(g)
				}
			}
			node.Cases = append(node.Cases, arm)
		}
	}

	return node
}

// buildReturnStatement builds a return statement node
func (b *ASTBuilder) buildReturnStatement(tsNode *sitter.Node) *Node {
	node := NewNode(NodeReturn)
	node.Location = b.getLocation(tsNode)

	if valueNode := b.firstNamedChild(tsNode); valueNode != nil {
		node.Value = b.buildNode(valueNode)
	}

	return node
}

// buildSimpleStatement builds a statement node holding a single value
func (b *ASTBuilder) buildSimpleStatement(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)

	if valueNode := b.firstNamedChild(tsNode); valueNode != nil {
		node.Value = b.buildNode(valueNode)
	}

	return node
}

// buildLeaf builds a childless statement node
func (b *ASTBuilder) buildLeaf(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)
	return node
}

// buildExpressionStatement unwraps the contained expression.
// Assignments are expressions in the tree-sitter grammar, so this is where
// Assign and AnnAssign statements surface.
func (b *ASTBuilder) buildExpressionStatement(tsNode *sitter.Node) *Node {
	if inner := b.firstNamedChild(tsNode); inner != nil {
		child := b.buildNode(inner)
		if child != nil && (child.Type == NodeAssign || child.Type == NodeAnnAssign || child.Type == NodeAugAssign) {
			return child
		}
		node := NewNode(NodeExprStatement)
		node.Location = b.getLocation(tsNode)
		node.Value = child
		return node
	}

	node := NewNode(NodeExprStatement)
	node.Location = b.getLocation(tsNode)
	return node
}

// buildAssignment builds an assignment, annotated when a type field is present
func (b *ASTBuilder) buildAssignment(tsNode *sitter.Node) *Node {
	typeNode := tsNode.ChildByFieldName("type")

	var node *Node
	if typeNode != nil {
		node = NewNode(NodeAnnAssign)
		node.Annotation = b.buildNode(typeNode)
	} else {
		node = NewNode(NodeAssign)
	}
	node.Location = b.getLocation(tsNode)

	if leftNode := tsNode.ChildByFieldName("left"); leftNode != nil {
		if target := b.buildNode(leftNode); target != nil {
			node.Targets = []*Node{target}
		}
	}
	if rightNode := tsNode.ChildByFieldName("right"); rightNode != nil {
		node.Value = b.buildNode(rightNode)
	}

	return node
}

// buildAugmentedAssignment builds an augmented assignment node
func (b *ASTBuilder) buildAugmentedAssignment(tsNode *sitter.Node) *Node {
	node := NewNode(NodeAugAssign)
	node.Location = b.getLocation(tsNode)

	if leftNode := tsNode.ChildByFieldName("left"); leftNode != nil {
		if target := b.buildNode(leftNode); target != nil {
			node.Targets = []*Node{target}
		}
	}
	if opNode := tsNode.ChildByFieldName("operator"); opNode != nil {
		node.Op = opNode.Content(b.source)
	}
	if rightNode := tsNode.ChildByFieldName("right"); rightNode != nil {
		node.Value = b.buildNode(rightNode)
	}

	return node
}

// buildBooleanOperator builds a BoolOp node, flattening chains of the same
// operator into one Values list the way Python's AST does
func (b *ASTBuilder) buildBooleanOperator(tsNode *sitter.Node) *Node {
	node := NewNode(NodeBoolOp)
	node.Location = b.getLocation(tsNode)

	if opNode := tsNode.ChildByFieldName("operator"); opNode != nil {
		node.Op = opNode.Content(b.source)
	}

	appendOperand := func(operand *Node) {
		if operand == nil {
			return
		}
		if operand.Type == NodeBoolOp && operand.Op == node.Op {
			node.Values = append(node.Values, operand.Values...)
			return
		}
		node.Values = append(node.Values, operand)
	}

	if leftNode := tsNode.ChildByFieldName("left"); leftNode != nil {
		appendOperand(b.buildNode(leftNode))
	}
	if rightNode := tsNode.ChildByFieldName("right"); rightNode != nil {
		appendOperand(b.buildNode(rightNode))
	}

	return node
}

// buildNotOperator builds a unary not node
func (b *ASTBuilder) buildNotOperator(tsNode *sitter.Node) *Node {
	node := NewNode(NodeUnaryOp)
	node.Location = b.getLocation(tsNode)
	node.Op = "not"

	if argNode := tsNode.ChildByFieldName("argument"); argNode != nil {
		node.Operand = b.buildNode(argNode)
	}

	return node
}

// buildUnaryOperator builds a unary operator node (-, +, ~)
func (b *ASTBuilder) buildUnaryOperator(tsNode *sitter.Node) *Node {
	node := NewNode(NodeUnaryOp)
	node.Location = b.getLocation(tsNode)

	if opNode := tsNode.ChildByFieldName("operator"); opNode != nil {
		node.Op = opNode.Content(b.source)
	}
	if argNode := tsNode.ChildByFieldName("argument"); argNode != nil {
		node.Operand = b.buildNode(argNode)
	}

	return node
}

// buildBinaryOperator builds a binary operator node
func (b *ASTBuilder) buildBinaryOperator(tsNode *sitter.Node) *Node {
	node := NewNode(NodeBinOp)
	node.Location = b.getLocation(tsNode)

	if leftNode := tsNode.ChildByFieldName("left"); leftNode != nil {
		node.Left = b.buildNode(leftNode)
	}
	if opNode := tsNode.ChildByFieldName("operator"); opNode != nil {
		node.Op = opNode.Content(b.source)
	}
	if rightNode := tsNode.ChildByFieldName("right"); rightNode != nil {
		node.Right = b.buildNode(rightNode)
	}

	return node
}

// comparisonOps are the operator tokens of a comparison chain
var comparisonOps = map[string]bool{
	"<": true, "<=": true, "==": true, "!=": true, ">=": true, ">": true,
	"<>": true, "in": true, "is": true, "not": true,
	"not in": true, "is not": true,
}

// buildComparisonOperator builds a Compare node. Named children are the
// operands; operator tokens sit between them, with "is not" and "not in"
// possibly split into two tokens.
func (b *ASTBuilder) buildComparisonOperator(tsNode *sitter.Node) *Node {
	node := NewNode(NodeCompare)
	node.Location = b.getLocation(tsNode)

	var operands []*Node
	var ops []string
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		if child.IsNamed() {
			if operand := b.buildNode(child); operand != nil {
				operands = append(operands, operand)
			}
			continue
		}
		tok := child.Content(b.source)
		if !comparisonOps[tok] {
			continue
		}
		if n := len(ops); n > 0 && ((ops[n-1] == "is" && tok == "not") || (ops[n-1] == "not" && tok == "in")) {
			ops[n-1] = ops[n-1] + " " + tok
			continue
		}
		ops = append(ops, tok)
	}

	if len(operands) > 0 {
		node.Left = operands[0]
		node.Comparators = operands[1:]
	}
	node.Ops = ops

	return node
}

// buildConditionalExpression builds a ternary if-expression.
// Named children are value-if-true, condition, value-if-false.
func (b *ASTBuilder) buildConditionalExpression(tsNode *sitter.Node) *Node {
	node := NewNode(NodeIfExp)
	node.Location = b.getLocation(tsNode)

	var parts []*Node
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		if part := b.buildNode(child); part != nil {
			parts = append(parts, part)
		}
	}
	if len(parts) == 3 {
		node.Body = []*Node{parts[0]}
		node.Test = parts[1]
		node.OrElse = []*Node{parts[2]}
	}

	return node
}

// buildCall builds a call node
func (b *ASTBuilder) buildCall(tsNode *sitter.Node) *Node {
	node := NewNode(NodeCall)
	node.Location = b.getLocation(tsNode)

	if funcNode := tsNode.ChildByFieldName("function"); funcNode != nil {
		node.Func = b.buildNode(funcNode)
	}
	if argsNode := tsNode.ChildByFieldName("arguments"); argsNode != nil {
		for i := 0; i < int(argsNode.NamedChildCount()); i++ {
			child := argsNode.NamedChild(i)
			if child == nil || b.isTrivia(child) {
				continue
			}
			if child.Type() == "keyword_argument" {
				if kw := b.buildKeywordArgument(child); kw != nil {
					node.Keywords = append(node.Keywords, kw)
				}
				continue
			}
			if arg := b.buildNode(child); arg != nil {
				node.CallArgs = append(node.CallArgs, arg)
			}
		}
	}

	return node
}

// buildKeywordArgument builds a keyword argument node
func (b *ASTBuilder) buildKeywordArgument(tsNode *sitter.Node) *Node {
	node := NewNode(NodeKeyword)
	node.Location = b.getLocation(tsNode)

	if nameNode := tsNode.ChildByFieldName("name"); nameNode != nil {
		node.Name = nameNode.Content(b.source)
	}
	if valueNode := tsNode.ChildByFieldName("value"); valueNode != nil {
		node.Value = b.buildNode(valueNode)
	}

	return node
}

// buildAttribute builds an attribute access node
func (b *ASTBuilder) buildAttribute(tsNode *sitter.Node) *Node {
	node := NewNode(NodeAttribute)
	node.Location = b.getLocation(tsNode)

	if objNode := tsNode.ChildByFieldName("object"); objNode != nil {
		node.Value = b.buildNode(objNode)
	}
	if attrNode := tsNode.ChildByFieldName("attribute"); attrNode != nil {
		node.Name = attrNode.Content(b.source)
	}

	return node
}

// buildSubscript builds a subscript node
func (b *ASTBuilder) buildSubscript(tsNode *sitter.Node) *Node {
	node := NewNode(NodeSubscript)
	node.Location = b.getLocation(tsNode)

	if valueNode := tsNode.ChildByFieldName("value"); valueNode != nil {
		node.Value = b.buildNode(valueNode)
	}

	// Multiple subscript fields (a[i, j]) fold into a tuple slice
	var indexes []*Node
	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || tsNode.FieldNameForChild(i) != "subscript" {
			continue
		}
		if idx := b.buildNode(child); idx != nil {
			indexes = append(indexes, idx)
		}
	}
	switch len(indexes) {
	case 0:
	case 1:
		node.Slice = indexes[0]
	default:
		slice := NewNode(NodeTuple)
		slice.Location = node.Location
		slice.Elts = indexes
		node.Slice = slice
	}

	return node
}

// buildGenericType lowers a parameterized annotation like Dict[str, int] to
// the subscript shape, so annotation matching works the same as expression
// matching
func (b *ASTBuilder) buildGenericType(tsNode *sitter.Node) *Node {
	node := NewNode(NodeSubscript)
	node.Location = b.getLocation(tsNode)

	if base := tsNode.NamedChild(0); base != nil && base.Type() != "type_parameter" {
		node.Value = b.buildNode(base)
	}

	var params []*Node
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || child.Type() != "type_parameter" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			param := child.NamedChild(j)
			if param == nil || b.isTrivia(param) {
				continue
			}
			if elt := b.buildNode(param); elt != nil {
				params = append(params, elt)
			}
		}
	}
	switch len(params) {
	case 0:
	case 1:
		node.Slice = params[0]
	default:
		slice := NewNode(NodeTuple)
		slice.Location = node.Location
		slice.Elts = params
		node.Slice = slice
	}

	return node
}

// buildUnionType lowers a PEP 604 union annotation (X | None) to the
// binary-op shape
func (b *ASTBuilder) buildUnionType(tsNode *sitter.Node) *Node {
	node := NewNode(NodeBinOp)
	node.Location = b.getLocation(tsNode)
	node.Op = "|"

	if left := tsNode.NamedChild(0); left != nil {
		node.Left = b.buildNode(left)
	}
	if right := tsNode.NamedChild(1); right != nil {
		node.Right = b.buildNode(right)
	}

	return node
}

// buildIdentifier builds a name node
func (b *ASTBuilder) buildIdentifier(tsNode *sitter.Node) *Node {
	node := NewNode(NodeName)
	node.Location = b.getLocation(tsNode)
	node.Name = tsNode.Content(b.source)
	return node
}

// buildConstant builds a constant literal node
func (b *ASTBuilder) buildConstant(tsNode *sitter.Node) *Node {
	node := NewNode(NodeConstant)
	node.Location = b.getLocation(tsNode)
	node.Raw = tsNode.Content(b.source)

	switch tsNode.Type() {
	case "none":
		node.Const = ConstNone
	case "true":
		node.Const = ConstBool
		node.BoolVal = true
	case "false":
		node.Const = ConstBool
	case "integer", "float":
		node.Const = ConstNumber
	case "string", "concatenated_string":
		node.Const = ConstString
		node.StrVal = b.stringContent(tsNode)
	default:
		node.Const = ConstOther
	}

	return node
}

// stringContent extracts the unquoted text of a string literal
func (b *ASTBuilder) stringContent(tsNode *sitter.Node) string {
	var sb strings.Builder
	found := false

	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		for i := 0; i < int(n.ChildCount()); i++ {
			child := n.Child(i)
			if child == nil {
				continue
			}
			switch child.Type() {
			case "string_content":
				found = true
				sb.WriteString(child.Content(b.source))
			case "string":
				collect(child)
			}
		}
	}
	collect(tsNode)

	if found {
		return sb.String()
	}
	// Grammar versions without string_content nodes: strip matching quotes
	raw := tsNode.Content(b.source)
	raw = strings.TrimLeft(raw, "rbufRBUF")
	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(raw, q) && strings.HasSuffix(raw, q) && len(raw) >= 2*len(q) {
			return raw[len(q) : len(raw)-len(q)]
		}
	}
	return raw
}

// buildDictionary builds a dict literal node
func (b *ASTBuilder) buildDictionary(tsNode *sitter.Node) *Node {
	node := NewNode(NodeDict)
	node.Location = b.getLocation(tsNode)

	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || child.Type() != "pair" {
			continue
		}
		var key, value *Node
		if keyNode := child.ChildByFieldName("key"); keyNode != nil {
			key = b.buildNode(keyNode)
		}
		if valueNode := child.ChildByFieldName("value"); valueNode != nil {
			value = b.buildNode(valueNode)
		}
		node.Keys = append(node.Keys, key)
		node.Values = append(node.Values, value)
	}

	return node
}

// buildSequence builds a list, tuple or set literal node
func (b *ASTBuilder) buildSequence(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)

	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		if elt := b.buildNode(child); elt != nil {
			node.Elts = append(node.Elts, elt)
		}
	}

	return node
}

// buildImport builds an import statement node
func (b *ASTBuilder) buildImport(tsNode *sitter.Node) *Node {
	node := NewNode(NodeImport)
	node.Location = b.getLocation(tsNode)

	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			node.Names = append(node.Names, ImportAlias{Name: child.Content(b.source)})
		case "aliased_import":
			node.Names = append(node.Names, b.buildAliasedImport(child))
		}
	}

	return node
}

// buildImportFrom builds a from-import statement node
func (b *ASTBuilder) buildImportFrom(tsNode *sitter.Node) *Node {
	node := NewNode(NodeImportFrom)
	node.Location = b.getLocation(tsNode)

	moduleNode := tsNode.ChildByFieldName("module_name")
	if moduleNode != nil {
		switch moduleNode.Type() {
		case "dotted_name":
			node.Module = moduleNode.Content(b.source)
		case "relative_import":
			for i := 0; i < int(moduleNode.NamedChildCount()); i++ {
				child := moduleNode.NamedChild(i)
				if child == nil {
					continue
				}
				switch child.Type() {
				case "import_prefix":
					node.Level = len(child.Content(b.source))
				case "dotted_name":
					node.Module = child.Content(b.source)
				}
			}
		}
	}

	for i := 0; i < int(tsNode.ChildCount()); i++ {
		child := tsNode.Child(i)
		if child == nil || !child.IsNamed() || tsNode.FieldNameForChild(i) == "module_name" {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			node.Names = append(node.Names, ImportAlias{Name: child.Content(b.source)})
		case "aliased_import":
			node.Names = append(node.Names, b.buildAliasedImport(child))
		case "wildcard_import":
			node.Names = append(node.Names, ImportAlias{Name: "*"})
		}
	}

	return node
}

// buildAliasedImport builds one "name as alias" binding
func (b *ASTBuilder) buildAliasedImport(tsNode *sitter.Node) ImportAlias {
	alias := ImportAlias{}
	if nameNode := tsNode.ChildByFieldName("name"); nameNode != nil {
		alias.Name = nameNode.Content(b.source)
	}
	if asNode := tsNode.ChildByFieldName("alias"); asNode != nil {
		alias.AsName = asNode.Content(b.source)
	}
	return alias
}

// buildGeneric builds a node for constructs without a dedicated shape,
// keeping children reachable for traversal
func (b *ASTBuilder) buildGeneric(tsNode *sitter.Node, nodeType NodeType) *Node {
	node := NewNode(nodeType)
	node.Location = b.getLocation(tsNode)

	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child == nil || b.isTrivia(child) {
			continue
		}
		if childNode := b.buildNode(child); childNode != nil {
			node.Children = append(node.Children, childNode)
		}
	}

	return node
}

// Helper methods

// getLocation extracts location information from a tree-sitter node
func (b *ASTBuilder) getLocation(tsNode *sitter.Node) Location {
	return Location{
		File:      b.filename,
		StartLine: int(tsNode.StartPoint().Row) + 1,
		StartCol:  int(tsNode.StartPoint().Column),
		EndLine:   int(tsNode.EndPoint().Row) + 1,
		EndCol:    int(tsNode.EndPoint().Column),
	}
}

// firstNamedChild returns the first non-trivia named child
func (b *ASTBuilder) firstNamedChild(tsNode *sitter.Node) *sitter.Node {
	for i := 0; i < int(tsNode.NamedChildCount()); i++ {
		child := tsNode.NamedChild(i)
		if child != nil && !b.isTrivia(child) {
			return child
		}
	}
	return nil
}

// isTrivia checks if a node is trivia (comments)
func (b *ASTBuilder) isTrivia(tsNode *sitter.Node) bool {
	return tsNode.Type() == "comment"
}
