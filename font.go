package epdmock

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Font is a font declaration: the firmware identifier it is exported as and a
// CSS-like spec such as "11px Arial" or "bold 20px monospace".
type Font struct {
	ID   string
	Spec string
}

// NewFont declares a font.
func NewFont(id, spec string) Font {
	return Font{ID: id, Spec: spec}
}

// Code renders the font reference as a firmware expression.
func (f Font) Code() string {
	return "id(" + f.ID + ")"
}

func (f Font) String() string {
	return fmt.Sprintf("%s(%s)", f.ID, f.Spec)
}

// DefaultFontSpec is the font in effect before any valid font is used.
const DefaultFontSpec = "10px sans-serif"

type fontStyle struct {
	mono, bold, italic bool
}

// fontSpec is a parsed Font.Spec.
type fontSpec struct {
	style fontStyle
	size  float64
}

// parseFontSpec understands "[style...] <size>(px|pt) <family>[, fallback...]".
func parseFontSpec(spec string) (fontSpec, bool) {
	var (
		fs      fontSpec
		sized   bool
		family  []string
		fields  = strings.Fields(spec)
		inStyle = true
	)
	for _, f := range fields {
		lf := strings.ToLower(f)
		if inStyle {
			switch lf {
			case "bold", "bolder", "700", "800", "900":
				fs.style.bold = true
				continue
			case "italic", "oblique":
				fs.style.italic = true
				continue
			case "normal":
				continue
			}
		}
		if !sized {
			if size, ok := parseFontSize(lf); ok {
				fs.size = size
				sized = true
				inStyle = false
				continue
			}
			return fontSpec{}, false
		}
		family = append(family, lf)
	}
	if !sized || len(family) == 0 {
		return fontSpec{}, false
	}
	fam := strings.Join(family, " ")
	for _, m := range []string{"mono", "courier", "consolas", "menlo"} {
		if strings.Contains(fam, m) {
			fs.style.mono = true
		}
	}
	return fs, true
}

func parseFontSize(s string) (float64, bool) {
	unit := 1.0
	switch {
	case strings.HasSuffix(s, "px"):
		s = strings.TrimSuffix(s, "px")
	case strings.HasSuffix(s, "pt"):
		s = strings.TrimSuffix(s, "pt")
		unit = 4.0 / 3.0
	default:
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v * unit, true
}

func (s fontStyle) ttf() []byte {
	switch {
	case s.mono && s.bold && s.italic:
		return gomonobolditalic.TTF
	case s.mono && s.bold:
		return gomonobold.TTF
	case s.mono && s.italic:
		return gomonoitalic.TTF
	case s.mono:
		return gomono.TTF
	case s.bold && s.italic:
		return gobolditalic.TTF
	case s.bold:
		return gobold.TTF
	case s.italic:
		return goitalic.TTF
	}
	return goregular.TTF
}

var fontSources struct {
	sync.Mutex
	m map[fontStyle]*text.FontSource
}

// faceFor resolves a spec to a face. ok is false when the spec cannot be parsed
// or the embedded font fails to load.
func faceFor(spec string) (text.Face, bool) {
	fs, ok := parseFontSpec(spec)
	if !ok {
		return nil, false
	}

	fontSources.Lock()
	defer fontSources.Unlock()
	src, found := fontSources.m[fs.style]
	if !found {
		var err error
		src, err = text.NewFontSource(fs.style.ttf())
		if err != nil {
			Logger().Warn("font source failed to load", "spec", spec, "err", err)
			return nil, false
		}
		if fontSources.m == nil {
			fontSources.m = make(map[fontStyle]*text.FontSource)
		}
		fontSources.m[fs.style] = src
	}
	return src.Face(fs.size), true
}
