package lambda

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flavioheleno/epdmock"
	"github.com/flavioheleno/epdmock/image1bit"
)

func TestProgramCode(t *testing.T) {
	myFont := epdmock.NewFont("my_font", "11px Arial")
	sw := epdmock.NewBinarySensor("mainswitch", "Switch", true)
	battery := epdmock.NewNumericSensor("battery", "Battery", 45)
	logo := epdmock.NewBitmapFromImage("logo", image.NewRGBA(image.Rect(0, 0, 4, 4)))

	p := New(
		Comment("header"),
		Clear(),
		Fill(epdmock.ColorOff),
		Print(Div(Width(), N(2)), N(4), myFont, epdmock.AlignCenter, "Hello \"World\"!"),
		Printf(N(6), N(20), myFont, epdmock.AlignLeft, "%d%%", State(battery)),
		Comment(""),
		If(State(sw),
			FilledCircle(N(148), N(64), N(20), ""),
		).Else(
			Circle(N(148), N(64), N(20), epdmock.ColorOn),
		),
		For("i", N(0), N(4),
			DrawPixelAt(Var("i"), N(0), epdmock.ColorOn),
		),
		Image(N(0), N(0), logo),
		HorizontalLine(N(6), N(64), N(100), ""),
		VerticalLine(N(6), N(64), N(10), "red"),
		Line(N(0), N(0), Width(), Height(), epdmock.ColorOff),
		Rectangle(N(0), N(0), Width(), Height(), ""),
		FilledRectangle(N(1), N(2), N(3), N(4), ""),
	)

	want := `// header
it.clear();
it.fill(COLOR_OFF);
it.print(it.get_width() / 2, 4, id(my_font), TextAlign::CENTER, "Hello \"World\"!");
it.printf(6, 20, id(my_font), TextAlign::LEFT, "%d%%", id(battery).state);

if (id(mainswitch).state) {
  it.filled_circle(148, 64, 20);
} else {
  it.circle(148, 64, 20, COLOR_ON);
}
for (int i = 0; i < 4; i++) {
  it.draw_pixel_at(i, 0, COLOR_ON);
}
it.image(0, 0, id(logo));
it.horizontal_line(6, 64, 100);
it.vertical_line(6, 64, 10, Color(0xFF0000));
it.line(0, 0, it.get_width(), it.get_height(), COLOR_OFF);
it.rectangle(0, 0, it.get_width(), it.get_height());
it.filled_rectangle(1, 2, 3, 4);
`
	assert.Equal(t, want, p.Code())
}

func TestProgramCodeNestedIndent(t *testing.T) {
	p := New(For("y", N(0), N(2),
		For("x", N(0), N(2),
			If(Eq(Mod(Add(Var("x"), Var("y")), N(2)), N(0)),
				DrawPixelAt(Var("x"), Var("y"), ""),
			),
		),
	))
	want := `for (int y = 0; y < 2; y++) {
  for (int x = 0; x < 2; x++) {
    if ((x + y) % 2 == 0) {
      it.draw_pixel_at(x, y);
    }
  }
}
`
	assert.Equal(t, want, p.Code())
}

func TestProgramRender(t *testing.T) {
	sw := epdmock.NewBinarySensor("mainswitch", "Switch", true)
	p := New(
		Fill(epdmock.ColorOff),
		If(State(sw),
			FilledRectangle(N(0), N(0), N(10), N(10), epdmock.ColorOn),
		).Else(
			FilledRectangle(N(20), N(0), N(10), N(10), epdmock.ColorOn),
		),
		For("i", N(0), N(4),
			DrawPixelAt(Add(N(50), Mul(Var("i"), N(2))), N(50), epdmock.ColorOn),
		),
	)

	it := epdmock.NewGfx(64, 64)
	defer it.Close()

	require.NoError(t, p.Render(it))
	mono := it.Mono()
	assert.Equal(t, image1bit.On, mono.BitAt(5, 5))
	assert.Equal(t, image1bit.Off, mono.BitAt(25, 5))
	for _, x := range []int{50, 52, 54, 56} {
		assert.Equal(t, image1bit.On, mono.BitAt(x, 50), "x=%d", x)
	}
	assert.Equal(t, image1bit.Off, mono.BitAt(51, 50))
	assert.Equal(t, image1bit.Off, mono.BitAt(58, 50))

	sw.State = false
	require.NoError(t, p.Render(it))
	mono = it.Mono()
	assert.Equal(t, image1bit.Off, mono.BitAt(5, 5))
	assert.Equal(t, image1bit.On, mono.BitAt(25, 5))
}

func TestProgramRenderErrors(t *testing.T) {
	it := epdmock.NewGfx(16, 16)
	defer it.Close()

	err := New(DrawPixelAt(Var("i"), N(0), "")).Render(it)
	assert.ErrorIs(t, err, ErrUnboundVariable)

	err = New(Circle(N(0), N(0), Div(N(1), N(0)), "")).Render(it)
	assert.ErrorIs(t, err, ErrDivisionByZero)

	err = New(For("i", N(0), N(MaxIterations+1))).Render(it)
	assert.ErrorIs(t, err, ErrLoopLimit)

	// The loop variable is gone after the loop.
	err = New(For("i", N(0), N(1)), DrawPixelAt(Var("i"), N(0), "")).Render(it)
	assert.ErrorIs(t, err, ErrUnboundVariable)
}

func TestForRestoresShadowedVariable(t *testing.T) {
	it := epdmock.NewGfx(16, 16)
	defer it.Close()

	var seen []float64
	trace := traceStmt(func(env *Env) { seen = append(seen, env.vars["i"]) })
	p := New(For("i", N(5), N(6),
		For("i", N(0), N(2), trace),
		trace,
	))
	require.NoError(t, p.Render(it))
	assert.Equal(t, []float64{0, 1, 5}, seen)
}

type traceStmt func(env *Env)

func (p traceStmt) exec(env *Env) error { p(env); return nil }
func (traceStmt) code(w *codeWriter)    {}

func TestProgramAppend(t *testing.T) {
	p := New(Clear()).Append(Fill(""))
	assert.Equal(t, "it.clear();\nit.fill(COLOR_ON);\n", p.Code())
}

func TestImageWithoutBitmap(t *testing.T) {
	p := New(Clear(), Image(N(0), N(0), nil), Fill(""))
	assert.Equal(t, "it.clear();\nit.fill(COLOR_ON);\n", p.Code())

	it := epdmock.NewGfx(8, 8)
	defer it.Close()
	require.NoError(t, p.Render(it))
}

func TestExportThroughSession(t *testing.T) {
	ui := epdmock.New(nil)
	ui.RegisterRenderLoop(New(Clear()))
	assert.Equal(t, "it.clear();\n", ui.GetCode())
}
