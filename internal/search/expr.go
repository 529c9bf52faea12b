package search

import (
	"strings"
)

// Node is an element of a search expression tree. Only the types in this
// package implement it.
type Node interface {
	// AppendExpr appends the SQL text of the node to text and its
	// positional arguments to args.
	AppendExpr(text []byte, args []any) ([]byte, []any)
	// Render returns the SQL text of the node and its arguments.
	Render() (string, []any)
	isNode()
}

func render(n Node) (string, []any) {
	text, args := n.AppendExpr(nil, nil)
	if args == nil {
		args = []any{}
	}
	return string(text), args
}

// QuoteIdent quotes a plain column name. Anything that is not a plain
// identifier, such as a grouping expression, is returned untouched.
func QuoteIdent(name string) string {
	if !isIdent(name) {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func mustField(field string) string {
	if field == "" {
		panic("search: predicate with empty field name")
	}
	return field
}

// comparison is the shared shape of the binary leaves
type comparison struct {
	Field string
	Match Value
}

func (c comparison) appendOp(text []byte, args []any, op string) ([]byte, []any) {
	text = append(text, QuoteIdent(c.Field)...)
	text = append(text, ' ')
	text = append(text, op...)
	text = append(text, " ?"...)
	return text, append(args, c.Match.Arg())
}

// EqualTo matches rows where Field = Match
type EqualTo struct{ comparison }

// NewEqualTo creates a Field = Match predicate
func NewEqualTo(field string, match Value) *EqualTo {
	return &EqualTo{comparison{Field: mustField(field), Match: match}}
}

func (e *EqualTo) AppendExpr(text []byte, args []any) ([]byte, []any) {
	return e.appendOp(text, args, "=")
}
func (e *EqualTo) Render() (string, []any) { return render(e) }
func (*EqualTo) isNode() {}

// NotEqualTo matches rows where Field != Match
type NotEqualTo struct{ comparison }

// NewNotEqualTo creates a Field != Match predicate
func NewNotEqualTo(field string, match Value) *NotEqualTo {
	return &NotEqualTo{comparison{Field: mustField(field), Match: match}}
}

func (e *NotEqualTo) AppendExpr(text []byte, args []any) ([]byte, []any) {
	return e.appendOp(text, args, "!=")
}
func (e *NotEqualTo) Render() (string, []any) { return render(e) }
func (*NotEqualTo) isNode() {}

// GreaterThan matches rows where Field > Match
type GreaterThan struct{ comparison }

// NewGreaterThan creates a Field > Match predicate
func NewGreaterThan(field string, match Value) *GreaterThan {
	return &GreaterThan{comparison{Field: mustField(field), Match: match}}
}

func (e *GreaterThan) AppendExpr(text []byte, args []any) ([]byte, []any) {
	return e.appendOp(text, args, ">")
}
func (e *GreaterThan) Render() (string, []any) { return render(e) }
func (*GreaterThan) isNode() {}

// GreaterOrEqual matches rows where Field >= Match
type GreaterOrEqual struct{ comparison }

// NewGreaterOrEqual creates a Field >= Match predicate
func NewGreaterOrEqual(field string, match Value) *GreaterOrEqual {
	return &GreaterOrEqual{comparison{Field: mustField(field), Match: match}}
}

func (e *GreaterOrEqual) AppendExpr(text []byte, args []any) ([]byte, []any) {
	return e.appendOp(text, args, ">=")
}
func (e *GreaterOrEqual) Render() (string, []any) { return render(e) }
func (*GreaterOrEqual) isNode() {}

// LessThan matches rows where Field < Match
type LessThan struct{ comparison }

// NewLessThan creates a Field < Match predicate
func NewLessThan(field string, match Value) *LessThan {
	return &LessThan{comparison{Field: mustField(field), Match: match}}
}

func (e *LessThan) AppendExpr(text []byte, args []any) ([]byte, []any) {
	return e.appendOp(text, args, "<")
}
func (e *LessThan) Render() (string, []any) { return render(e) }
func (*LessThan) isNode() {}

// LessOrEqual matches rows where Field <= Match
type LessOrEqual struct{ comparison }

// NewLessOrEqual creates a Field <= Match predicate
func NewLessOrEqual(field string, match Value) *LessOrEqual {
	return &LessOrEqual{comparison{Field: mustField(field), Match: match}}
}

func (e *LessOrEqual) AppendExpr(text []byte, args []any) ([]byte, []any) {
	return e.appendOp(text, args, "<=")
}
func (e *LessOrEqual) Render() (string, []any) { return render(e) }
func (*LessOrEqual) isNode() {}

// Is matches rows where Field IS Match. Unlike = it also matches NULL.
type Is struct{ comparison }

// NewIs creates a Field IS Match predicate
func NewIs(field string, match Value) *Is {
	return &Is{comparison{Field: mustField(field), Match: match}}
}

func (e *Is) AppendExpr(text []byte, args []any) ([]byte, []any) {
	return e.appendOp(text, args, "IS")
}
func (e *Is) Render() (string, []any) { return render(e) }
func (*Is) isNode() {}

// IsExact matches rows whose Expr evaluates to exactly Match, NULL
// included. Expr may be a grouping expression rather than a column; only
// plain column names are quoted.
type IsExact struct {
	Expr  string
	Match Value
}

// NewIsExact creates an Expr IS Match predicate
func NewIsExact(expr string, match Value) *IsExact {
	return &IsExact{Expr: mustField(expr), Match: match}
}

func (e *IsExact) AppendExpr(text []byte, args []any) ([]byte, []any) {
	text = append(text, QuoteIdent(e.Expr)...)
	text = append(text, " IS ?"...)
	return text, append(args, e.Match.Arg())
}
func (e *IsExact) Render() (string, []any) { return render(e) }
func (*IsExact) isNode() {}

var likeSpecials = "\\_%"

// EscapeLike escapes the LIKE wildcards in text with a backslash and
// reports whether anything was escaped.
func EscapeLike(text string) (string, bool) {
	first := strings.IndexAny(text, likeSpecials)
	if first == -1 {
		return text, false
	}

	var b strings.Builder
	b.Grow(len(text) + 4)
	b.WriteString(text[:first])
	for i := first; i < len(text); i++ {
		if strings.IndexByte(likeSpecials, text[i]) != -1 {
			b.WriteByte('\\')
		}
		b.WriteByte(text[i])
	}
	return b.String(), true
}

// Like matches rows where Field contains Match as a substring
type Like struct {
	Field string
	Match string
}

// NewLike creates a substring match predicate
func NewLike(field, match string) *Like {
	return &Like{Field: mustField(field), Match: match}
}

func (e *Like) AppendExpr(text []byte, args []any) ([]byte, []any) {
	pattern, escaped := EscapeLike(e.Match)
	text = append(text, QuoteIdent(e.Field)...)
	if escaped {
		text = append(text, " LIKE ? ESCAPE ?"...)
		return text, append(args, "%"+pattern+"%", `\`)
	}
	text = append(text, " LIKE ?"...)
	return text, append(args, "%"+pattern+"%")
}
func (e *Like) Render() (string, []any) { return render(e) }
func (*Like) isNode() {}

// group is a parenthesized list of children joined by a logical operator
type group struct {
	Children []Node
}

func (g *group) appendJoined(text []byte, args []any, op string) ([]byte, []any) {
	children := g.nonEmpty()
	if len(children) > 1 {
		text = append(text, '(')
	}
	for i, child := range children {
		if i > 0 {
			text = append(text, ' ')
			text = append(text, op...)
			text = append(text, ' ')
		}
		text, args = child.AppendExpr(text, args)
	}
	if len(children) > 1 {
		text = append(text, ')')
	}
	return text, args
}

// nonEmpty returns the children that render something
func (g *group) nonEmpty() []Node {
	out := make([]Node, 0, len(g.Children))
	for _, child := range g.Children {
		if !isEmpty(child) {
			out = append(out, child)
		}
	}
	return out
}

func isEmpty(n Node) bool {
	if n == nil {
		return true
	}
	if w, ok := n.(*Where); ok {
		return w.IsEmpty()
	}
	if g, ok := n.(interface{ HasChildren() bool }); ok {
		return !g.HasChildren()
	}
	return false
}

// Add appends children to the group
func (g *group) Add(children ...Node) {
	g.Children = append(g.Children, children...)
}

// HasChildren reports whether any child renders something. Groups holding
// only empty groups count as empty.
func (g *group) HasChildren() bool {
	for _, child := range g.Children {
		if !isEmpty(child) {
			return true
		}
	}
	return false
}

// And requires every child to match
type And struct{ group }

// NewAnd creates a conjunction of children
func NewAnd(children ...Node) *And {
	return &And{group{Children: children}}
}

func (e *And) AppendExpr(text []byte, args []any) ([]byte, []any) {
	return e.appendJoined(text, args, "AND")
}
func (e *And) Render() (string, []any) { return render(e) }
func (*And) isNode() {}

// Or requires any child to match
type Or struct{ group }

// NewOr creates a disjunction of children
func NewOr(children ...Node) *Or {
	return &Or{group{Children: children}}
}

func (e *Or) AppendExpr(text []byte, args []any) ([]byte, []any) {
	return e.appendJoined(text, args, "OR")
}
func (e *Or) Render() (string, []any) { return render(e) }
func (*Or) isNode() {}

// Where is the root of a search expression. It renders nothing when it
// has no root or the root is an empty group.
type Where struct {
	Root Node
}

// NewWhere creates a WHERE clause around root
func NewWhere(root Node) *Where {
	return &Where{Root: root}
}

// IsEmpty reports whether the clause would render nothing
func (w *Where) IsEmpty() bool {
	return w == nil || isEmpty(w.Root)
}

func (w *Where) AppendExpr(text []byte, args []any) ([]byte, []any) {
	if w.IsEmpty() {
		return text, args
	}
	text = append(text, "WHERE "...)
	return w.Root.AppendExpr(text, args)
}
func (w *Where) Render() (string, []any) { return render(w) }
func (*Where) isNode() {}
