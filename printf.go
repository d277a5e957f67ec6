package epdmock

import (
	"fmt"
	"strconv"
	"strings"
)

// Sprintf formats according to a C printf format, the way the firmware's
// it.printf does, so that display code behaves identically in the mock-up.
//
// Supported conversions are %d %i %u %x %X %o %c %f %F %e %E %g %G %s and %%,
// with the flags "-+ 0#", a width and a precision (either may be '*').
// C length modifiers (h, l, ll, z, ...) are accepted and ignored. Arguments are
// coerced to what the conversion expects: %d on 45.0 prints "45", %f on 3
// prints "3.000000", booleans are 0 or 1.
func Sprintf(format string, args ...any) string {
	var (
		b    strings.Builder
		argi int
	)
	next := func() (any, bool) {
		if argi >= len(args) {
			return nil, false
		}
		a := args[argi]
		argi++
		return a, true
	}

	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		start := i
		i++
		if i >= len(format) {
			b.WriteByte('%')
			break
		}
		if format[i] == '%' {
			b.WriteByte('%')
			continue
		}

		var spec strings.Builder
		spec.WriteByte('%')
		for i < len(format) && strings.IndexByte("-+ 0#", format[i]) >= 0 {
			spec.WriteByte(format[i])
			i++
		}
		i = scanCount(format, i, &spec, next)
		precision := false
		if i < len(format) && format[i] == '.' {
			var prec strings.Builder
			i = scanCount(format, i+1, &prec, next)
			// A negative precision counts as omitted.
			if !strings.HasPrefix(prec.String(), "-") {
				precision = true
				spec.WriteByte('.')
				spec.WriteString(prec.String())
			}
		}
		for i < len(format) && strings.IndexByte("hlLqjzt", format[i]) >= 0 {
			i++
		}
		if i >= len(format) {
			b.WriteString(format[start:])
			break
		}

		verb := format[i]
		arg, ok := next()
		if !ok && strings.IndexByte("diuxXocfFeEgGs", verb) >= 0 {
			fmt.Fprintf(&b, "%%!%c(MISSING)", verb)
			continue
		}
		switch verb {
		case 'd', 'i':
			b.WriteString(fmt.Sprintf(spec.String()+"d", toInt(arg)))
		case 'u':
			b.WriteString(fmt.Sprintf(spec.String()+"d", toUnsigned(arg)))
		case 'x', 'X', 'o':
			u := toUnsigned(arg)
			s := spec.String()
			if u == 0 && verb != 'o' {
				// C adds no 0x prefix to a zero value.
				s = strings.ReplaceAll(s, "#", "")
			}
			b.WriteString(fmt.Sprintf(s+string(verb), u))
		case 'c':
			b.WriteString(fmt.Sprintf(spec.String()+"c", rune(toInt(arg))))
		case 'f', 'F', 'e', 'E':
			if verb == 'F' {
				verb = 'f'
			}
			b.WriteString(fmt.Sprintf(spec.String()+string(verb), toFloat(arg)))
		case 'g', 'G':
			s := spec.String()
			if !precision {
				s += ".6"
			}
			b.WriteString(fmt.Sprintf(s+string(verb), toFloat(arg)))
		case 's':
			b.WriteString(fmt.Sprintf(spec.String()+"s", fmt.Sprint(arg)))
		default:
			// Unknown conversion: emit it untouched and give the argument back.
			argi--
			b.WriteString(format[start : i+1])
		}
	}
	return b.String()
}

// scanCount copies a width or precision (digits or '*') into spec.
func scanCount(format string, i int, spec *strings.Builder, next func() (any, bool)) int {
	if i < len(format) && format[i] == '*' {
		a, _ := next()
		spec.WriteString(strconv.FormatInt(toInt(a), 10))
		return i + 1
	}
	for i < len(format) && format[i] >= '0' && format[i] <= '9' {
		spec.WriteByte(format[i])
		i++
	}
	return i
}

func toInt(a any) int64 {
	switch v := a.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		return int64(v)
	case float32:
		return int64(v)
	case float64:
		return int64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case string:
		n, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return int64(n)
	}
	return 0
}

// toUnsigned mirrors a 32-bit firmware: negative values wrap at 2^32.
func toUnsigned(a any) uint64 {
	n := toInt(a)
	if n < 0 {
		return uint64(uint32(n))
	}
	return uint64(n)
}

func toFloat(a any) float64 {
	switch v := a.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	}
	return float64(toInt(a))
}
