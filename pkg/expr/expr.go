// Package expr implements the restricted expression language used by custom
// conditions and script actions. Programs are parsed into a small AST and
// interpreted against the transition's data; there is no host access of any
// kind, which keeps administrator-supplied logic sandboxed.
package expr

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrEmptyExpression is returned when an empty program is parsed.
	ErrEmptyExpression = errors.New("empty expression")
	// ErrNotBoolean is returned when a program does not produce a boolean.
	ErrNotBoolean = errors.New("expression did not evaluate to a boolean")
)

// Node is an evaluatable AST node.
type Node interface {
	Eval(data map[string]any) (any, error)
}

// Program is a parsed, reusable expression.
type Program struct {
	root   Node
	source string
}

// Parse compiles an expression such as
//
//	ticket.priority >= 3 and (user.role == "agent" or user.role == "admin")
//
// into a reusable program.
func Parse(source string) (*Program, error) {
	tokens, err := lex(source)
	if err != nil {
		return nil, err
	}

	if len(tokens) == 0 {
		return nil, ErrEmptyExpression
	}

	parser := &parser{tokens: tokens}

	root, err := parser.parseOr()
	if err != nil {
		return nil, err
	}

	if parser.pos != len(parser.tokens) {
		return nil, fmt.Errorf("unexpected token %q at position %d", parser.tokens[parser.pos].text, parser.pos)
	}

	return &Program{root: root, source: source}, nil
}

// Eval evaluates the program and returns its raw result.
func (p *Program) Eval(data map[string]any) (any, error) {
	return p.root.Eval(data)
}

// EvalBool evaluates the program and requires a boolean result.
func (p *Program) EvalBool(data map[string]any) (bool, error) {
	result, err := p.root.Eval(data)
	if err != nil {
		return false, err
	}

	boolean, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %q yielded %T", ErrNotBoolean, p.source, result)
	}

	return boolean, nil
}

// String returns the original source of the program.
func (p *Program) String() string {
	return p.source
}

type tokenKind int

const (
	tokenIdent tokenKind = iota
	tokenString
	tokenNumber
	tokenOperator
	tokenLeftParen
	tokenRightParen
	tokenLeftBracket
	tokenRightBracket
	tokenComma
)

type token struct {
	kind tokenKind
	text string
}

func lex(source string) ([]token, error) {
	var tokens []token

	i := 0
	for i < len(source) {
		ch := source[i]

		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{tokenLeftParen, "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{tokenRightParen, ")"})
			i++
		case ch == '[':
			tokens = append(tokens, token{tokenLeftBracket, "["})
			i++
		case ch == ']':
			tokens = append(tokens, token{tokenRightBracket, "]"})
			i++
		case ch == ',':
			tokens = append(tokens, token{tokenComma, ","})
			i++
		case ch == '"' || ch == '\'':
			end := i + 1
			for end < len(source) && source[end] != ch {
				end++
			}

			if end == len(source) {
				return nil, fmt.Errorf("unterminated string at position %d", i)
			}

			tokens = append(tokens, token{tokenString, source[i+1 : end]})
			i = end + 1
		case strings.ContainsRune("=!<>", rune(ch)):
			if i+1 < len(source) && source[i+1] == '=' {
				tokens = append(tokens, token{tokenOperator, source[i : i+2]})
				i += 2
			} else if ch == '<' || ch == '>' {
				tokens = append(tokens, token{tokenOperator, string(ch)})
				i++
			} else {
				return nil, fmt.Errorf("unexpected character %q at position %d", ch, i)
			}
		case ch >= '0' && ch <= '9' || ch == '-':
			end := i + 1
			for end < len(source) && (source[end] >= '0' && source[end] <= '9' || source[end] == '.') {
				end++
			}

			tokens = append(tokens, token{tokenNumber, source[i:end]})
			i = end
		case isIdentChar(ch):
			end := i
			for end < len(source) && (isIdentChar(source[end]) || source[end] == '.') {
				end++
			}

			tokens = append(tokens, token{tokenIdent, source[i:end]})
			i = end
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", ch, i)
		}
	}

	return tokens, nil
}

func isIdentChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' || ch == '_'
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.tokens) {
		return token{}, false
	}

	return p.tokens[p.pos], true
}

func (p *parser) next() (token, bool) {
	tok, ok := p.peek()
	if ok {
		p.pos++
	}

	return tok, ok
}

func (p *parser) parseOr() (Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenIdent || tok.text != "or" {
			return left, nil
		}

		p.pos++

		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		left = &binaryNode{op: "or", left: left, right: right}
	}
}

func (p *parser) parseAnd() (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok, ok := p.peek()
		if !ok || tok.kind != tokenIdent || tok.text != "and" {
			return left, nil
		}

		p.pos++

		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		left = &binaryNode{op: "and", left: left, right: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	tok, ok := p.peek()
	if ok && tok.kind == tokenIdent && tok.text == "not" {
		p.pos++

		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}

		return &notNode{operand: operand}, nil
	}

	return p.parseComparison()
}

func (p *parser) parseComparison() (Node, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	tok, ok := p.peek()
	if !ok {
		return left, nil
	}

	var op string

	switch {
	case tok.kind == tokenOperator:
		op = tok.text
	case tok.kind == tokenIdent && (tok.text == "contains" || tok.text == "matches" || tok.text == "in"):
		op = tok.text
	default:
		return left, nil
	}

	p.pos++

	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}

	return &binaryNode{op: op, left: left, right: right}, nil
}

func (p *parser) parseOperand() (Node, error) {
	tok, ok := p.next()
	if !ok {
		return nil, errors.New("unexpected end of expression")
	}

	switch tok.kind {
	case tokenLeftParen:
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		closing, ok := p.next()
		if !ok || closing.kind != tokenRightParen {
			return nil, errors.New("missing closing parenthesis")
		}

		return inner, nil
	case tokenLeftBracket:
		return p.parseList()
	case tokenString:
		return &literalNode{value: tok.text}, nil
	case tokenNumber:
		number, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", tok.text, err)
		}

		return &literalNode{value: number}, nil
	case tokenIdent:
		switch tok.text {
		case "true":
			return &literalNode{value: true}, nil
		case "false":
			return &literalNode{value: false}, nil
		case "null":
			return &literalNode{value: nil}, nil
		default:
			return &identNode{path: tok.text}, nil
		}
	default:
		return nil, fmt.Errorf("unexpected token %q", tok.text)
	}
}

func (p *parser) parseList() (Node, error) {
	var items []Node

	for {
		tok, ok := p.peek()
		if !ok {
			return nil, errors.New("unterminated list literal")
		}

		if tok.kind == tokenRightBracket {
			p.pos++

			return &listNode{items: items}, nil
		}

		if len(items) > 0 {
			if tok.kind != tokenComma {
				return nil, fmt.Errorf("expected comma in list, got %q", tok.text)
			}

			p.pos++
		}

		item, err := p.parseOperand()
		if err != nil {
			return nil, err
		}

		items = append(items, item)
	}
}

type literalNode struct {
	value any
}

func (n *literalNode) Eval(_ map[string]any) (any, error) {
	return n.value, nil
}

type listNode struct {
	items []Node
}

func (n *listNode) Eval(data map[string]any) (any, error) {
	values := make([]any, 0, len(n.items))

	for _, item := range n.items {
		value, err := item.Eval(data)
		if err != nil {
			return nil, err
		}

		values = append(values, value)
	}

	return values, nil
}

type identNode struct {
	path string
}

func (n *identNode) Eval(data map[string]any) (any, error) {
	value, _ := Lookup(data, n.path)

	return value, nil
}

type notNode struct {
	operand Node
}

func (n *notNode) Eval(data map[string]any) (any, error) {
	value, err := n.operand.Eval(data)
	if err != nil {
		return nil, err
	}

	boolean, ok := value.(bool)
	if !ok {
		return nil, fmt.Errorf("%w: operand of not", ErrNotBoolean)
	}

	return !boolean, nil
}

type binaryNode struct {
	op    string
	left  Node
	right Node
}

func (n *binaryNode) Eval(data map[string]any) (any, error) {
	left, err := n.left.Eval(data)
	if err != nil {
		return nil, err
	}

	// Short-circuit boolean operators.
	if n.op == "and" || n.op == "or" {
		leftBool, ok := left.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: left operand of %s", ErrNotBoolean, n.op)
		}

		if n.op == "and" && !leftBool {
			return false, nil
		}

		if n.op == "or" && leftBool {
			return true, nil
		}

		right, err := n.right.Eval(data)
		if err != nil {
			return nil, err
		}

		rightBool, ok := right.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: right operand of %s", ErrNotBoolean, n.op)
		}

		return rightBool, nil
	}

	right, err := n.right.Eval(data)
	if err != nil {
		return nil, err
	}

	switch n.op {
	case "==":
		return looseEqual(left, right), nil
	case "!=":
		return !looseEqual(left, right), nil
	case "<", "<=", ">", ">=":
		return compareNumbers(n.op, left, right)
	case "contains":
		return contains(left, right), nil
	case "matches":
		pattern, err := regexp.Compile(Stringify(right))
		if err != nil {
			return nil, fmt.Errorf("invalid pattern: %w", err)
		}

		return pattern.MatchString(Stringify(left)), nil
	case "in":
		list, ok := right.([]any)
		if !ok {
			return nil, fmt.Errorf("right operand of 'in' must be a list, got %T", right)
		}

		for _, item := range list {
			if looseEqual(left, item) {
				return true, nil
			}
		}

		return false, nil
	default:
		return nil, fmt.Errorf("unsupported operator %q", n.op)
	}
}

func compareNumbers(op string, left, right any) (any, error) {
	leftNum, leftOK := ToNumber(left)
	rightNum, rightOK := ToNumber(right)

	if !leftOK || !rightOK {
		return nil, fmt.Errorf("operator %q requires numeric operands, got %T and %T", op, left, right)
	}

	switch op {
	case "<":
		return leftNum < rightNum, nil
	case "<=":
		return leftNum <= rightNum, nil
	case ">":
		return leftNum > rightNum, nil
	default:
		return leftNum >= rightNum, nil
	}
}

func contains(left, right any) bool {
	if list, ok := left.([]any); ok {
		for _, item := range list {
			if looseEqual(item, right) {
				return true
			}
		}

		return false
	}

	return strings.Contains(
		strings.ToLower(Stringify(left)),
		strings.ToLower(Stringify(right)),
	)
}

func looseEqual(left, right any) bool {
	if left == nil || right == nil {
		return left == right
	}

	if leftNum, ok := ToNumber(left); ok {
		if rightNum, ok := ToNumber(right); ok {
			return leftNum == rightNum
		}
	}

	return Stringify(left) == Stringify(right)
}

// ToNumber coerces common scalar types to float64.
func ToNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}

		return parsed, true
	default:
		return 0, false
	}
}

// Stringify renders a value the way condition and template comparisons expect.
func Stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Lookup descends a dot-separated path through nested maps. The second return
// reports whether the full path resolved.
func Lookup(data map[string]any, path string) (any, bool) {
	segments := strings.Split(path, ".")

	var current any = data

	for _, segment := range segments {
		asMap, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = asMap[segment]
		if !ok {
			return nil, false
		}
	}

	return current, true
}
