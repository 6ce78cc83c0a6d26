package request

import (
	"fmt"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"

	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
)

// AddQueryParams appends params to rawURL as a query string, using "?" or
// "&" depending on whether rawURL already has a query. Booleans encode as
// 1/0, lists as key[0]=…, maps as key[sub]=…; nil values are skipped. Keys
// are sorted so the output is deterministic.
func AddQueryParams(rawURL string, params map[string]any) string {
	values := url.Values{}
	for k, v := range params {
		encodeParam(values, k, v)
	}
	if len(values) == 0 {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + values.Encode()
}

func encodeParam(values url.Values, key string, v any) {
	if v == nil {
		return
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if b, ok := v.([]byte); ok {
			values.Add(key, string(b))
			return
		}
		for i := range rv.Len() {
			encodeParam(values, fmt.Sprintf("%s[%d]", key, i), rv.Index(i).Interface())
		}
	case reflect.Map:
		for _, mk := range rv.MapKeys() {
			encodeParam(values, fmt.Sprintf("%s[%v]", key, mk.Interface()), rv.MapIndex(mk).Interface())
		}
	default:
		values.Add(key, scalarString(v))
	}
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return "0"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	}
	return fmt.Sprint(v)
}

// ValidateParams checks params against rules. Each rule is a "|"-separated
// list of constraints: required, string, integer, array, boolean or
// in:a,b,c. Absent or nil parameters are only checked for required. All
// violations are collected into one *errors.ValidationError.
func ValidateParams(params map[string]any, rules map[string]string) error {
	names := make([]string, 0, len(rules))
	for name := range rules {
		names = append(names, name)
	}
	slices.Sort(names)

	var violations []string
	for _, name := range names {
		violations = append(violations, checkParam(name, params[name], strings.Split(rules[name], "|"))...)
	}
	if len(violations) == 0 {
		return nil
	}

	e := gterrors.NewValidation("Validation failed for request parameters", violations...)
	e.Context = gterrors.Fields{"parameters": params}
	return e
}

func checkParam(name string, value any, constraints []string) []string {
	if value == nil {
		if slices.Contains(constraints, "required") {
			return []string{fmt.Sprintf("The parameter '%s' is required", name)}
		}
		return nil
	}

	var out []string
	for _, c := range constraints {
		switch {
		case c == "string":
			if _, ok := value.(string); !ok {
				out = append(out, fmt.Sprintf("The parameter '%s' must be a string", name))
			}
		case c == "integer":
			if !isInteger(value) {
				out = append(out, fmt.Sprintf("The parameter '%s' must be an integer", name))
			}
		case c == "array":
			if !isArray(value) {
				out = append(out, fmt.Sprintf("The parameter '%s' must be an array", name))
			}
		case c == "boolean":
			if _, ok := value.(bool); !ok {
				out = append(out, fmt.Sprintf("The parameter '%s' must be a boolean", name))
			}
		case strings.HasPrefix(c, "in:"):
			allowed := strings.Split(strings.TrimPrefix(c, "in:"), ",")
			if !slices.Contains(allowed, scalarString(value)) {
				out = append(out, fmt.Sprintf("The parameter '%s' must be one of: %s", name, strings.Join(allowed, ", ")))
			}
		}
	}
	return out
}

func isInteger(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func isArray(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}
