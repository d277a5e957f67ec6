package lambda

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

var (
	// ErrUnboundVariable is returned when an expression reads a loop variable
	// outside its loop.
	ErrUnboundVariable = errors.New("lambda: unbound variable")
	// ErrDivisionByZero is returned by Div and Mod with a zero divisor.
	ErrDivisionByZero = errors.New("lambda: division by zero")
)

// Expr is a numeric expression: it evaluates against the running frame and
// renders as C++.
type Expr interface {
	Eval(env *Env) (float64, error)
	Code() string
}

// Valued is a sensor whose state can be read as a number.
type Valued interface {
	Number() float64
	Code() string
}

// num is a literal.
type num float64

// N is a numeric literal.
func N(v float64) Expr { return num(v) }

func (n num) Eval(*Env) (float64, error) { return float64(n), nil }

func (n num) Code() string {
	v := float64(n)
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

type dimension bool

// Width is it.get_width().
func Width() Expr { return dimension(false) }

// Height is it.get_height().
func Height() Expr { return dimension(true) }

func (d dimension) Eval(env *Env) (float64, error) {
	if d {
		return float64(env.gfx.Height()), nil
	}
	return float64(env.gfx.Width()), nil
}

func (d dimension) Code() string {
	if d {
		return "it.get_height()"
	}
	return "it.get_width()"
}

type state struct{ s Valued }

// State reads a sensor: id(x).state.
func State(s Valued) Expr { return state{s} }

func (e state) Eval(*Env) (float64, error) { return e.s.Number(), nil }
func (e state) Code() string               { return e.s.Code() }

type variable string

// Var reads a loop variable.
func Var(name string) Expr { return variable(name) }

func (v variable) Eval(env *Env) (float64, error) {
	x, ok := env.vars[string(v)]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnboundVariable, string(v))
	}
	return x, nil
}

func (v variable) Code() string { return string(v) }

// Operator precedence, C order, higher binds tighter.
const (
	precOr = iota + 1
	precAnd
	precEq
	precRel
	precAdd
	precMul
	precUnary
	precAtom
)

type binary struct {
	op   string
	prec int
	l, r Expr
	fn   func(a, b float64) (float64, error)
}

func precOf(e Expr) int {
	switch e := e.(type) {
	case binary:
		return e.prec
	case unary:
		return precUnary
	case num:
		if e < 0 {
			return precUnary
		}
	}
	return precAtom
}

func (b binary) Eval(env *Env) (float64, error) {
	l, err := b.l.Eval(env)
	if err != nil {
		return 0, err
	}
	// && and || short-circuit like C.
	switch b.op {
	case "&&":
		if l == 0 {
			return 0, nil
		}
	case "||":
		if l != 0 {
			return 1, nil
		}
	}
	r, err := b.r.Eval(env)
	if err != nil {
		return 0, err
	}
	return b.fn(l, r)
}

func (b binary) Code() string {
	l, r := b.l.Code(), b.r.Code()
	if precOf(b.l) < b.prec {
		l = "(" + l + ")"
	}
	// Equal precedence on the right keeps the tree's grouping: a - (b - c).
	if precOf(b.r) <= b.prec && precOf(b.r) != precAtom {
		r = "(" + r + ")"
	}
	return l + " " + b.op + " " + r
}

func truth(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

func arith(op string, prec int, l, r Expr, fn func(a, b float64) float64) Expr {
	return binary{op: op, prec: prec, l: l, r: r, fn: func(a, b float64) (float64, error) {
		return fn(a, b), nil
	}}
}

func cmp(op string, prec int, l, r Expr, fn func(a, b float64) bool) Expr {
	return binary{op: op, prec: prec, l: l, r: r, fn: func(a, b float64) (float64, error) {
		return truth(fn(a, b)), nil
	}}
}

func Add(l, r Expr) Expr {
	return arith("+", precAdd, l, r, func(a, b float64) float64 { return a + b })
}

func Sub(l, r Expr) Expr {
	return arith("-", precAdd, l, r, func(a, b float64) float64 { return a - b })
}

func Mul(l, r Expr) Expr {
	return arith("*", precMul, l, r, func(a, b float64) float64 { return a * b })
}

func Div(l, r Expr) Expr {
	return binary{op: "/", prec: precMul, l: l, r: r, fn: func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return a / b, nil
	}}
}

func Mod(l, r Expr) Expr {
	return binary{op: "%", prec: precMul, l: l, r: r, fn: func(a, b float64) (float64, error) {
		if b == 0 {
			return 0, ErrDivisionByZero
		}
		return math.Mod(a, b), nil
	}}
}

func Lt(l, r Expr) Expr { return cmp("<", precRel, l, r, func(a, b float64) bool { return a < b }) }
func Le(l, r Expr) Expr { return cmp("<=", precRel, l, r, func(a, b float64) bool { return a <= b }) }
func Gt(l, r Expr) Expr { return cmp(">", precRel, l, r, func(a, b float64) bool { return a > b }) }
func Ge(l, r Expr) Expr { return cmp(">=", precRel, l, r, func(a, b float64) bool { return a >= b }) }
func Eq(l, r Expr) Expr { return cmp("==", precEq, l, r, func(a, b float64) bool { return a == b }) }
func Ne(l, r Expr) Expr { return cmp("!=", precEq, l, r, func(a, b float64) bool { return a != b }) }

func And(l, r Expr) Expr {
	return cmp("&&", precAnd, l, r, func(a, b float64) bool { return a != 0 && b != 0 })
}

func Or(l, r Expr) Expr {
	return cmp("||", precOr, l, r, func(a, b float64) bool { return a != 0 || b != 0 })
}

type unary struct {
	op string
	x  Expr
	fn func(float64) float64
}

// Neg is -x.
func Neg(x Expr) Expr { return unary{op: "-", x: x, fn: func(v float64) float64 { return -v }} }

// Not is !x.
func Not(x Expr) Expr {
	return unary{op: "!", x: x, fn: func(v float64) float64 { return truth(v == 0) }}
}

func (u unary) Eval(env *Env) (float64, error) {
	v, err := u.x.Eval(env)
	if err != nil {
		return 0, err
	}
	return u.fn(v), nil
}

func (u unary) Code() string {
	x := u.x.Code()
	if precOf(u.x) < precAtom {
		x = "(" + x + ")"
	}
	return u.op + x
}
