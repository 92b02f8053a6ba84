// Package routing parses route patterns and applies matched routes to
// requests.
//
// A pattern is a slash separated path whose segments are either literal
// text or a single variable in braces:
//
//	/blog/{@controller}/{@action}/{id:int}
//
// Variables prefixed with @ fill the request's package, controller or
// action. All other variables become request arguments and may carry a
// converter type. A trailing {*name} captures the rest of the path.
package routing

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	axonerrors "github.com/toyz/axonmvc/internal/errors"
	"github.com/toyz/axonmvc/pkg/mvc"
)

// Internal routing slots addressed by {@name} variables
const (
	PackageSlot    = "package"
	ControllerSlot = "controller"
	ActionSlot     = "action"
)

// DefaultWildcardName names an unnamed {*} variable
const DefaultWildcardName = "path"

// Variable is one {name:type} placeholder of a pattern
type Variable struct {
	Name     string
	Type     string
	Internal bool
	Wildcard bool
}

// Segment is one path segment, either literal text or a variable
type Segment struct {
	Literal  string
	Variable *Variable
}

// Pattern is a parsed route pattern
type Pattern struct {
	raw      string
	segments []Segment
}

type segmentAST struct {
	Variable *variableAST `parser:"  '{' @@ '}'"`
	Literal  string       `parser:"| @(Ident | Text | ':' | '@' | '*')+"`
}

type variableAST struct {
	Internal bool   `parser:"@'@'?"`
	Wildcard bool   `parser:"@'*'?"`
	Name     string `parser:"@Ident?"`
	Type     string `parser:"(':' @Ident)?"`
}

var segmentParser = participle.MustBuild[segmentAST](
	participle.Lexer(lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
		{Name: "Text", Pattern: `[^{}@*:a-zA-Z_]+`},
		{Name: "Punct", Pattern: `[{}@*:]`},
	})),
	participle.UseLookahead(2),
)

// PatternError is returned for malformed route patterns
type PatternError struct {
	*axonerrors.BaseError
	Pattern string
}

func newPatternError(pattern string, cause error, format string, args ...any) *PatternError {
	base := axonerrors.Newf(axonerrors.RoutingErrorCode, "invalid route pattern %q: "+format, append([]any{pattern}, args...)...)
	if cause != nil {
		base = base.WithCause(cause)
	}
	return &PatternError{BaseError: base.WithContext("pattern", pattern), Pattern: pattern}
}

// ParsePattern parses raw into a Pattern. Patterns must start with a slash;
// a trailing slash is ignored.
func ParsePattern(raw string) (*Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return nil, newPatternError(raw, nil, "must start with '/'")
	}

	p := &Pattern{raw: raw}
	trimmed := strings.TrimSuffix(raw[1:], "/")
	if trimmed == "" {
		return p, nil
	}

	seen := make(map[string]struct{})
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		if part == "" {
			return nil, newPatternError(raw, nil, "empty segment at position %d", i+1)
		}

		ast, err := segmentParser.ParseString(raw, part)
		if err != nil {
			return nil, newPatternError(raw, err, "segment %q", part)
		}
		if ast.Variable == nil {
			if ast.Literal == "" {
				return nil, newPatternError(raw, nil, "segment %q is not a valid variable", part)
			}
			p.segments = append(p.segments, Segment{Literal: ast.Literal})
			continue
		}

		v, err := buildVariable(raw, ast.Variable, i == len(parts)-1)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[v.Name]; dup {
			return nil, newPatternError(raw, nil, "variable %q is used more than once", v.Name)
		}
		seen[v.Name] = struct{}{}
		p.segments = append(p.segments, Segment{Variable: v})
	}
	return p, nil
}

func buildVariable(raw string, ast *variableAST, last bool) (*Variable, error) {
	v := &Variable{
		Name:     ast.Name,
		Type:     ast.Type,
		Internal: ast.Internal,
		Wildcard: ast.Wildcard,
	}

	switch {
	case v.Wildcard:
		if v.Internal || v.Type != "" {
			return nil, newPatternError(raw, nil, "wildcard variables take neither @ nor a type")
		}
		if !last {
			return nil, newPatternError(raw, nil, "wildcard must be the last segment")
		}
		if v.Name == "" {
			v.Name = DefaultWildcardName
		}
	case v.Name == "":
		return nil, newPatternError(raw, nil, "variable needs a name")
	case v.Internal:
		if v.Type != "" {
			return nil, newPatternError(raw, nil, "internal variable {@%s} takes no type", v.Name)
		}
		if v.Name != PackageSlot && v.Name != ControllerSlot && v.Name != ActionSlot {
			return nil, newPatternError(raw, nil, "unknown internal variable {@%s}", v.Name)
		}
	case v.Type != "" && !mvc.IsBuiltinType(v.Type):
		return nil, newPatternError(raw, nil, "unknown type %q for variable %q", v.Type, v.Name)
	}

	if strings.Contains(v.Name, ".") {
		return nil, newPatternError(raw, nil, "variable name %q must not contain '.'", v.Name)
	}
	return v, nil
}

// MustParsePattern is like ParsePattern but panics on error
func MustParsePattern(raw string) *Pattern {
	p, err := ParsePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern as it was written
func (p *Pattern) String() string {
	return p.raw
}

func (p *Pattern) Segments() []Segment {
	return append([]Segment(nil), p.segments...)
}

// Variables returns the variables in path order
func (p *Pattern) Variables() []Variable {
	var vars []Variable
	for _, seg := range p.segments {
		if seg.Variable != nil {
			vars = append(vars, *seg.Variable)
		}
	}
	return vars
}

// ParameterTypes maps argument variables to their declared types
func (p *Pattern) ParameterTypes() map[string]string {
	types := make(map[string]string)
	for _, v := range p.Variables() {
		if !v.Internal && v.Type != "" {
			types[v.Name] = v.Type
		}
	}
	return types
}

// Match matches path against the pattern and returns the raw variable
// values by name. A wildcard needs the slash before it: /files/{*rest}
// matches /files/ with an empty value but not /files.
func (p *Pattern) Match(path string) (map[string]string, bool) {
	trailingSlash := strings.HasSuffix(path, "/")
	path = strings.Trim(path, "/")
	var parts []string
	if path != "" {
		parts = strings.Split(path, "/")
	}

	params := make(map[string]string)
	for i, seg := range p.segments {
		if seg.Variable != nil && seg.Variable.Wildcard {
			if i > len(parts) || (i == len(parts) && !trailingSlash) {
				return nil, false
			}
			params[seg.Variable.Name] = strings.Join(parts[i:], "/")
			return params, true
		}
		if i >= len(parts) {
			return nil, false
		}
		if seg.Variable == nil {
			if seg.Literal != parts[i] {
				return nil, false
			}
			continue
		}
		if parts[i] == "" {
			return nil, false
		}
		params[seg.Variable.Name] = parts[i]
	}
	if len(parts) != len(p.segments) {
		return nil, false
	}
	return params, true
}

// EchoPath converts the pattern to Echo syntax, e.g. /posts/:id
func (p *Pattern) EchoPath() string {
	return p.frameworkPath(func(v *Variable) string {
		if v.Wildcard {
			return "*"
		}
		return ":" + v.Name
	})
}

// GinPath converts the pattern to Gin syntax, e.g. /files/*p1. Gin
// requires one parameter name per tree position, so variables are named
// after their segment index; GinParam gives the name of a variable.
func (p *Pattern) GinPath() string {
	var b strings.Builder
	for i, seg := range p.segments {
		b.WriteByte('/')
		switch {
		case seg.Variable == nil:
			b.WriteString(seg.Literal)
		case seg.Variable.Wildcard:
			b.WriteString("*" + ginParam(i))
		default:
			b.WriteString(":" + ginParam(i))
		}
	}
	if b.Len() == 0 {
		return "/"
	}
	return b.String()
}

// GinParam returns the Gin parameter name of the variable called name, or
// an empty string when the pattern has no such variable.
func (p *Pattern) GinParam(name string) string {
	for i, seg := range p.segments {
		if seg.Variable != nil && seg.Variable.Name == name {
			return ginParam(i)
		}
	}
	return ""
}

func ginParam(position int) string {
	return fmt.Sprintf("p%d", position)
}

// FiberPath converts the pattern to Fiber syntax, e.g. /posts/:id
func (p *Pattern) FiberPath() string {
	return p.frameworkPath(func(v *Variable) string {
		if v.Wildcard {
			return "*"
		}
		return ":" + v.Name
	})
}

func (p *Pattern) frameworkPath(variable func(v *Variable) string) string {
	if len(p.segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		if seg.Variable != nil {
			b.WriteString(variable(seg.Variable))
			continue
		}
		b.WriteString(seg.Literal)
	}
	return b.String()
}

func (v Variable) String() string {
	var b strings.Builder
	b.WriteByte('{')
	if v.Internal {
		b.WriteByte('@')
	}
	if v.Wildcard {
		b.WriteByte('*')
	}
	b.WriteString(v.Name)
	if v.Type != "" {
		fmt.Fprintf(&b, ":%s", v.Type)
	}
	b.WriteByte('}')
	return b.String()
}
