package config

import (
	"encoding/json"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
)

// EnvPrefix is the conventional prefix of environment overrides.
const EnvPrefix = "GTRENDS_"

// LoadFromEnvironment merges every environment variable starting with
// prefix. The prefix is stripped, the rest lower-cased and "__" becomes the
// nesting separator, so GTRENDS_RETRY__MAX_ATTEMPTS=5 sets
// retry.max_attempts to 5. Values are coerced with [CoerceEnvValue].
func (s *Store) LoadFromEnvironment(prefix string) error {
	vars := make(map[string]string)
	for _, kv := range os.Environ() {
		name, value, ok := strings.Cut(kv, "=")
		if ok {
			vars[name] = value
		}
	}
	return s.loadVars(prefix, vars)
}

// LoadDotEnv reads a .env file and merges its prefixed variables the same
// way [Store.LoadFromEnvironment] does. The process environment is not
// modified.
func (s *Store) LoadDotEnv(path, prefix string) error {
	vars, err := godotenv.Read(path)
	if err != nil {
		e := gterrors.NewConfiguration("", path, "", "Failed to read environment file %s", path)
		e.Cause = err
		return e
	}
	return s.loadVars(prefix, vars)
}

func (s *Store) loadVars(prefix string, vars map[string]string) error {
	partial := map[string]any{}
	for name, raw := range vars {
		rest, ok := strings.CutPrefix(name, prefix)
		if !ok || rest == "" {
			continue
		}
		key := strings.ReplaceAll(strings.ToLower(rest), "__", ".")
		assign(partial, strings.Split(key, "."), CoerceEnvValue(raw))
	}
	return s.Load(partial)
}

// CoerceEnvValue converts a raw environment string: "true"/"false" in any
// case become booleans, numeric strings become int (or float64 when they
// contain a "."), strings starting with "{" or "[" are decoded as JSON with
// the raw string kept when decoding fails, and anything else stays a string.
func CoerceEnvValue(raw string) any {
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}

	if n, ok := parseNumeric(raw); ok {
		return n
	}

	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		dec := json.NewDecoder(strings.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err == nil && !dec.More() {
			return normalize(v)
		}
	}
	return raw
}

func parseNumeric(raw string) (any, bool) {
	s := strings.TrimSpace(raw)
	if s == "" || !isNumericStart(s[0]) {
		return nil, false
	}
	if !strings.Contains(s, ".") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return int(i), true
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, false
	}
	if strings.Contains(s, ".") || f < math.MinInt64 || f >= math.MaxInt64 {
		return f, true
	}
	return int(f), true
}

// isNumericStart keeps ParseFloat from accepting "Inf", "NaN" or hex forms.
func isNumericStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}
