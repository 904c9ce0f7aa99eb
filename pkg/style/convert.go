package style

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/iancoleman/strcase"
)

func setEnum[T ~string](dst *T, v any, allowed ...T) bool {
	str, ok := v.(string)
	if !ok {
		return false
	}
	str = strcase.ToKebab(strings.TrimSpace(str))
	for _, a := range allowed {
		if string(a) == str {
			*dst = a
			return true
		}
	}
	return false
}

// flexAlias maps the short "start"/"end" spellings onto their flex-
// prefixed names.
func flexAlias(v any) any {
	switch v {
	case "start":
		return "flex-start"
	case "end":
		return "flex-end"
	}
	return v
}

func setAlign(dst *Align, v any) bool {
	return setEnum(dst, flexAlias(v), AlignAuto, AlignStart, AlignCenter, AlignEnd, AlignStretch)
}

func setBool(dst *bool, v any) bool {
	switch x := v.(type) {
	case bool:
		*dst = x
		return true
	case string:
		b, err := strconv.ParseBool(x)
		if err != nil {
			return false
		}
		*dst = b
		return true
	}
	return false
}

func setInt(dst *int, v any) bool {
	n, ok := toInt(v)
	if ok {
		*dst = n
	}
	return ok
}

func setFloat(dst *float64, v any) bool {
	f, ok := toFloat(v)
	if ok {
		*dst = f
	}
	return ok
}

func setColor(dst *color.Color, v any) bool {
	c, ok := ParseColor(v)
	if ok {
		*dst = c
	}
	return ok
}

func setDimension(dst *Dimension, v any) bool {
	d, ok := ParseDimension(v)
	if ok {
		*dst = d
	}
	return ok
}

// ParseDimension converts a number, a numeric string, a percentage such as
// "50%", or "auto" into a Dimension.
func ParseDimension(v any) (Dimension, bool) {
	if str, ok := v.(string); ok {
		str = strings.TrimSpace(str)
		if str == "auto" {
			return Auto, true
		}
		if pct, ok := strings.CutSuffix(str, "%"); ok {
			f, err := strconv.ParseFloat(pct, 64)
			if err != nil {
				return Dimension{}, false
			}
			return Percent(f), true
		}
	}
	f, ok := toFloat(v)
	if !ok {
		return Dimension{}, false
	}
	return Dimension{Value: math.Round(f), Unit: UnitPoint}, true
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return 0, false
		}
		return x, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok {
		return 0, false
	}
	return int(math.Round(f)), true
}
