// Package lambda describes display render routines as data.
//
// A Program is a list of statements over the drawing API of epdmock.Gfx. It
// can be executed against a Gfx for the live preview, and rendered as the C++
// body of a firmware display lambda for export:
//
//	p := lambda.New(
//		lambda.Clear(),
//		lambda.Print(lambda.Div(lambda.Width(), lambda.N(2)), lambda.N(4),
//			myFont, epdmock.AlignCenter, "Hello World!"),
//		lambda.If(lambda.State(mainswitch),
//			lambda.FilledCircle(lambda.N(148), lambda.N(64), lambda.N(20), ""),
//		),
//	)
//	ui.RegisterRenderLoop(p)
//
// p.Code() yields
//
//	it.clear();
//	it.print(it.get_width() / 2, 4, id(my_font), TextAlign::CENTER, "Hello World!");
//	if (id(mainswitch).state) {
//	  it.filled_circle(148, 64, 20);
//	}
package lambda

import (
	"errors"
	"fmt"
	"strings"

	"github.com/flavioheleno/epdmock"
)

// MaxIterations bounds a single For loop.
const MaxIterations = 1 << 16

// ErrLoopLimit is returned when a loop runs more than MaxIterations times.
var ErrLoopLimit = errors.New("lambda: loop iteration limit exceeded")

// Env is the evaluation state of one frame.
type Env struct {
	gfx  *epdmock.Gfx
	vars map[string]float64
}

// Stmt is one statement of a Program.
type Stmt interface {
	exec(env *Env) error
	code(w *codeWriter)
}

// Program is a render routine expressed as statements.
type Program struct {
	body []Stmt
}

var (
	_ epdmock.Routine = (*Program)(nil)
	_ epdmock.Coder   = (*Program)(nil)
)

// New creates a Program.
func New(body ...Stmt) *Program {
	return &Program{body: body}
}

// Append adds statements at the end of the program.
func (p *Program) Append(body ...Stmt) *Program {
	p.body = append(p.body, body...)
	return p
}

// Render executes the program against it.
func (p *Program) Render(it *epdmock.Gfx) error {
	env := &Env{gfx: it, vars: make(map[string]float64)}
	return execAll(env, p.body)
}

// Code renders the program as the C++ body of a display lambda.
func (p *Program) Code() string {
	w := &codeWriter{}
	for _, s := range p.body {
		s.code(w)
	}
	return w.String()
}

func execAll(env *Env, body []Stmt) error {
	for _, s := range body {
		if err := s.exec(env); err != nil {
			return err
		}
	}
	return nil
}

type codeWriter struct {
	b     strings.Builder
	depth int
}

func (w *codeWriter) line(format string, args ...any) {
	w.b.WriteString(strings.Repeat("  ", w.depth))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *codeWriter) block(body []Stmt) {
	w.depth++
	for _, s := range body {
		s.code(w)
	}
	w.depth--
}

func (w *codeWriter) String() string {
	return w.b.String()
}

// evalInts evaluates exprs and truncates to device coordinates, as the C++
// int parameters of the display API do.
func evalInts(env *Env, exprs ...Expr) ([]int, error) {
	out := make([]int, len(exprs))
	for i, e := range exprs {
		v, err := e.Eval(env)
		if err != nil {
			return nil, err
		}
		out[i] = int(v)
	}
	return out, nil
}

func joinCode(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.Code()
	}
	return strings.Join(parts, ", ")
}

// quote renders s as a C string literal.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
