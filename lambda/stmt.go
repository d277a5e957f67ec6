package lambda

import (
	"fmt"

	"github.com/flavioheleno/epdmock"
)

// shape is a drawing call whose arguments are all coordinates plus an
// optional trailing color.
type shape struct {
	name  string
	args  []Expr
	color epdmock.Color
	draw  func(it *epdmock.Gfx, a []int, c epdmock.Color)
}

func (s shape) exec(env *Env) error {
	a, err := evalInts(env, s.args...)
	if err != nil {
		return fmt.Errorf("%s: %w", s.name, err)
	}
	s.draw(env.gfx, a, s.color)
	return nil
}

func (s shape) code(w *codeWriter) {
	args := joinCode(s.args)
	if s.color != "" {
		args += ", " + s.color.Code()
	}
	w.line("it.%s(%s);", s.name, args)
}

// DrawPixelAt is it.draw_pixel_at(x, y, color).
func DrawPixelAt(x, y Expr, c epdmock.Color) Stmt {
	return shape{"draw_pixel_at", []Expr{x, y}, c, func(it *epdmock.Gfx, a []int, c epdmock.Color) {
		it.DrawPixelAt(a[0], a[1], c)
	}}
}

// Rectangle is it.rectangle(x, y, w, h, color).
func Rectangle(x, y, w, h Expr, c epdmock.Color) Stmt {
	return shape{"rectangle", []Expr{x, y, w, h}, c, func(it *epdmock.Gfx, a []int, c epdmock.Color) {
		it.Rectangle(a[0], a[1], a[2], a[3], c)
	}}
}

// FilledRectangle is it.filled_rectangle(x, y, w, h, color).
func FilledRectangle(x, y, w, h Expr, c epdmock.Color) Stmt {
	return shape{"filled_rectangle", []Expr{x, y, w, h}, c, func(it *epdmock.Gfx, a []int, c epdmock.Color) {
		it.FilledRectangle(a[0], a[1], a[2], a[3], c)
	}}
}

// Line is it.line(x1, y1, x2, y2, color).
func Line(x1, y1, x2, y2 Expr, c epdmock.Color) Stmt {
	return shape{"line", []Expr{x1, y1, x2, y2}, c, func(it *epdmock.Gfx, a []int, c epdmock.Color) {
		it.Line(a[0], a[1], a[2], a[3], c)
	}}
}

// HorizontalLine is it.horizontal_line(x, y, width, color).
func HorizontalLine(x, y, width Expr, c epdmock.Color) Stmt {
	return shape{"horizontal_line", []Expr{x, y, width}, c, func(it *epdmock.Gfx, a []int, c epdmock.Color) {
		it.HorizontalLine(a[0], a[1], a[2], c)
	}}
}

// VerticalLine is it.vertical_line(x, y, height, color).
func VerticalLine(x, y, height Expr, c epdmock.Color) Stmt {
	return shape{"vertical_line", []Expr{x, y, height}, c, func(it *epdmock.Gfx, a []int, c epdmock.Color) {
		it.VerticalLine(a[0], a[1], a[2], c)
	}}
}

// Circle is it.circle(cx, cy, r, color).
func Circle(cx, cy, r Expr, c epdmock.Color) Stmt {
	return shape{"circle", []Expr{cx, cy, r}, c, func(it *epdmock.Gfx, a []int, c epdmock.Color) {
		it.Circle(a[0], a[1], a[2], c)
	}}
}

// FilledCircle is it.filled_circle(cx, cy, r, color).
func FilledCircle(cx, cy, r Expr, c epdmock.Color) Stmt {
	return shape{"filled_circle", []Expr{cx, cy, r}, c, func(it *epdmock.Gfx, a []int, c epdmock.Color) {
		it.FilledCircle(a[0], a[1], a[2], c)
	}}
}

type clearStmt struct{}

// Clear is it.clear().
func Clear() Stmt { return clearStmt{} }

func (clearStmt) exec(env *Env) error {
	env.gfx.Clear()
	return nil
}

func (clearStmt) code(w *codeWriter) { w.line("it.clear();") }

type fillStmt struct{ color epdmock.Color }

// Fill is it.fill(color).
func Fill(c epdmock.Color) Stmt { return fillStmt{c} }

func (s fillStmt) exec(env *Env) error {
	env.gfx.Fill(s.color)
	return nil
}

func (s fillStmt) code(w *codeWriter) { w.line("it.fill(%s);", s.color.Code()) }

type imageStmt struct {
	x, y Expr
	b    *epdmock.Bitmap
}

// Image is it.image(x, y, id(bitmap)). A nil bitmap draws and exports nothing.
func Image(x, y Expr, b *epdmock.Bitmap) Stmt { return imageStmt{x, y, b} }

func (s imageStmt) exec(env *Env) error {
	if s.b == nil {
		return nil
	}
	a, err := evalInts(env, s.x, s.y)
	if err != nil {
		return fmt.Errorf("image: %w", err)
	}
	env.gfx.Image(a[0], a[1], s.b)
	return nil
}

func (s imageStmt) code(w *codeWriter) {
	if s.b == nil {
		return
	}
	w.line("it.image(%s, %s, %s);", s.x.Code(), s.y.Code(), s.b.Code())
}

type printStmt struct {
	x, y   Expr
	font   epdmock.Font
	align  epdmock.TextAlign
	format string
	args   []Expr
	printf bool
}

// Print is it.print(x, y, id(font), align, text).
func Print(x, y Expr, f epdmock.Font, align epdmock.TextAlign, text string) Stmt {
	return printStmt{x: x, y: y, font: f, align: align, format: text}
}

// Printf is it.printf(x, y, id(font), align, format, args...).
func Printf(x, y Expr, f epdmock.Font, align epdmock.TextAlign, format string, args ...Expr) Stmt {
	return printStmt{x: x, y: y, font: f, align: align, format: format, args: args, printf: true}
}

func (s printStmt) exec(env *Env) error {
	a, err := evalInts(env, s.x, s.y)
	if err != nil {
		return fmt.Errorf("print: %w", err)
	}
	if !s.printf {
		env.gfx.Print(a[0], a[1], s.font, s.align, s.format)
		return nil
	}
	vals := make([]any, len(s.args))
	for i, e := range s.args {
		v, err := e.Eval(env)
		if err != nil {
			return fmt.Errorf("printf: %w", err)
		}
		vals[i] = v
	}
	env.gfx.Printf(a[0], a[1], s.font, s.align, s.format, vals...)
	return nil
}

func (s printStmt) code(w *codeWriter) {
	name, args := "print", ""
	if s.printf {
		name = "printf"
		if len(s.args) > 0 {
			args = ", " + joinCode(s.args)
		}
	}
	w.line("it.%s(%s, %s, %s, %s, %s%s);", name, s.x.Code(), s.y.Code(),
		s.font.Code(), s.align.Code(), quote(s.format), args)
}

// IfStmt is a conditional block.
type IfStmt struct {
	cond            Expr
	then, otherwise []Stmt
}

// If runs then when cond is non-zero.
func If(cond Expr, then ...Stmt) *IfStmt {
	return &IfStmt{cond: cond, then: then}
}

// Else sets the statements run when the condition is zero.
func (s *IfStmt) Else(body ...Stmt) *IfStmt {
	s.otherwise = body
	return s
}

func (s *IfStmt) exec(env *Env) error {
	v, err := s.cond.Eval(env)
	if err != nil {
		return fmt.Errorf("if: %w", err)
	}
	if v != 0 {
		return execAll(env, s.then)
	}
	return execAll(env, s.otherwise)
}

func (s *IfStmt) code(w *codeWriter) {
	w.line("if (%s) {", s.cond.Code())
	w.block(s.then)
	if len(s.otherwise) > 0 {
		w.line("} else {")
		w.block(s.otherwise)
	}
	w.line("}")
}

type forStmt struct {
	name     string
	from, to Expr
	body     []Stmt
}

// For runs body with name counting from `from` up to, excluding, `to`:
// for (int name = from; name < to; name++).
func For(name string, from, to Expr, body ...Stmt) Stmt {
	return forStmt{name: name, from: from, to: to, body: body}
}

func (s forStmt) exec(env *Env) error {
	start, err := s.from.Eval(env)
	if err != nil {
		return fmt.Errorf("for %s: %w", s.name, err)
	}
	prev, shadowed := env.vars[s.name]
	defer func() {
		if shadowed {
			env.vars[s.name] = prev
		} else {
			delete(env.vars, s.name)
		}
	}()

	i := float64(int(start))
	for n := 0; ; n++ {
		env.vars[s.name] = i
		end, err := s.to.Eval(env)
		if err != nil {
			return fmt.Errorf("for %s: %w", s.name, err)
		}
		if !(i < end) {
			return nil
		}
		if n >= MaxIterations {
			return fmt.Errorf("for %s: %w", s.name, ErrLoopLimit)
		}
		if err := execAll(env, s.body); err != nil {
			return err
		}
		i = env.vars[s.name] + 1
	}
}

func (s forStmt) code(w *codeWriter) {
	w.line("for (int %s = %s; %s < %s; %s++) {", s.name, s.from.Code(), s.name, s.to.Code(), s.name)
	w.block(s.body)
	w.line("}")
}

type comment string

// Comment is a line comment in the exported code. It does nothing when run.
func Comment(text string) Stmt { return comment(text) }

func (comment) exec(*Env) error { return nil }

func (c comment) code(w *codeWriter) {
	if c == "" {
		w.b.WriteByte('\n')
		return
	}
	w.line("// %s", string(c))
}
