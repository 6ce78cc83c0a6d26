package config

import (
	"slices"
	"strconv"
	"strings"

	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
)

// Type names a value type accepted by a [Rule].
type Type string

// Supported value types. TypeFloat also accepts integers; TypeArray accepts
// both maps and lists.
const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeFloat   Type = "float"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
)

// Rule constrains the value stored under Key.
type Rule struct {
	Key      string
	Type     Type
	Min      *float64
	Max      *float64
	Required bool
	OneOf    []string // allowed values for string rules
}

func bound(v float64) *float64 { return &v }

// schema is the fixed set of rules, checked in declaration order.
var schema = []Rule{
	{Key: "base_uri", Type: TypeString, Required: true},
	{Key: "timeout", Type: TypeInteger, Min: bound(1), Max: bound(120), Required: true},
	{Key: "connect_timeout", Type: TypeInteger, Min: bound(1), Max: bound(120)},
	{Key: "headers", Type: TypeArray},
	{Key: "api_key", Type: TypeString},
	{Key: "retry.max_attempts", Type: TypeInteger, Min: bound(0), Max: bound(10)},
	{Key: "retry.delay", Type: TypeInteger, Min: bound(100), Max: bound(10000)},
	{Key: "retry.multiplier", Type: TypeFloat, Min: bound(1), Max: bound(5)},
	{Key: "pagination.per_page", Type: TypeInteger, Min: bound(5), Max: bound(100)},
	{Key: "pagination.max_items", Type: TypeInteger, Min: bound(5), Max: bound(1000)},
	{Key: "debug", Type: TypeBoolean},
	{Key: "verify_ssl", Type: TypeBoolean},
	{Key: "dry_run", Type: TypeBoolean},
	{Key: "cache.enabled", Type: TypeBoolean},
	{Key: "cache.driver", Type: TypeString, OneOf: []string{"file", "redis", "mongo", "null"}},
	{Key: "cache.ttl", Type: TypeInteger, Min: bound(0), Max: bound(604800)},
	{Key: "cache.dir", Type: TypeString},
	{Key: "cache.redis_addr", Type: TypeString},
	{Key: "cache.mongo_uri", Type: TypeString},
	{Key: "rate_limit.per_second", Type: TypeFloat, Min: bound(0), Max: bound(1000)},
	{Key: "rate_limit.burst", Type: TypeInteger, Min: bound(1), Max: bound(1000)},
}

// Schema returns a copy of the validation rules in the order they are checked.
func Schema() []Rule {
	return append([]Rule(nil), schema...)
}

func ruleFor(key string) (Rule, bool) {
	for _, r := range schema {
		if r.Key == key {
			return r, true
		}
	}
	return Rule{}, false
}

// Defaults returns a fresh copy of the built-in configuration.
func Defaults() map[string]any {
	return map[string]any{
		"base_uri":        "http://localhost:3000/api/",
		"timeout":         30,
		"connect_timeout": 10,
		"headers": map[string]any{
			"Accept": "application/json",
		},
		"retry": map[string]any{
			"max_attempts": 3,
			"delay":        1000,
			"multiplier":   2,
		},
		"pagination": map[string]any{
			"per_page":  20,
			"max_items": 100,
		},
		"debug":      false,
		"verify_ssl": true,
		"dry_run":    false,
		"cache": map[string]any{
			"enabled":    false,
			"driver":     "file",
			"ttl":        3600,
			"dir":        "",
			"redis_addr": "localhost:6379",
			"mongo_uri":  "mongodb://localhost:27017",
		},
		"rate_limit": map[string]any{
			"per_second": 0,
			"burst":      1,
		},
	}
}

// Check validates value against the rule. The returned error is a
// *errors.ConfigurationError naming the key, the value and the violated
// constraint.
func (r Rule) Check(value any) error {
	if !r.typeMatches(value) {
		return gterrors.NewConfiguration(r.Key, value, string(r.Type),
			"Invalid type for configuration key %s: expected %s", r.Key, r.Type)
	}
	if str, ok := value.(string); ok && len(r.OneOf) > 0 && !slices.Contains(r.OneOf, str) {
		return gterrors.NewConfiguration(r.Key, value, joinChoices(r.OneOf),
			"Unsupported value %q for %s: expected %s", str, r.Key, joinChoices(r.OneOf))
	}
	n, numeric := toFloat(value)
	if !numeric {
		return nil
	}
	if r.Min != nil && n < *r.Min {
		return gterrors.NewConfiguration(r.Key, value, "Value >= "+formatBound(*r.Min),
			"Value for %s is too small: minimum is %s", r.Key, formatBound(*r.Min))
	}
	if r.Max != nil && n > *r.Max {
		return gterrors.NewConfiguration(r.Key, value, "Value <= "+formatBound(*r.Max),
			"Value for %s is too large: maximum is %s", r.Key, formatBound(*r.Max))
	}
	return nil
}

func (r Rule) typeMatches(value any) bool {
	switch r.Type {
	case TypeString:
		_, ok := value.(string)
		return ok
	case TypeInteger:
		_, ok := value.(int)
		return ok
	case TypeFloat:
		switch value.(type) {
		case int, float64:
			return true
		}
		return false
	case TypeBoolean:
		_, ok := value.(bool)
		return ok
	case TypeArray:
		switch value.(type) {
		case map[string]any, []any:
			return true
		}
		return false
	}
	return true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// joinChoices renders {"a", "b", "c"} as "a, b or c".
func joinChoices(choices []string) string {
	if len(choices) < 2 {
		return strings.Join(choices, "")
	}
	last := len(choices) - 1
	return strings.Join(choices[:last], ", ") + " or " + choices[last]
}

func formatBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
