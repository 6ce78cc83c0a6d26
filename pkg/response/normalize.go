package response

import (
	"maps"

	gterrors "github.com/gtrends/gtrends-go/pkg/errors"
)

// Normalize reshapes a decoded payload into the common list form. A "meta"
// key is moved to "_metadata"; a payload with a "data" list becomes
// {"items": [...], "endpoint": endpoint, "metadata": {...}}. Anything else
// is returned unchanged apart from the metadata move. data is not modified.
func Normalize(data map[string]any, endpoint string) map[string]any {
	out := maps.Clone(data)
	if out == nil {
		out = map[string]any{}
	}
	if meta, ok := out["meta"]; ok {
		delete(out, "meta")
		out["_metadata"] = meta
	}

	items, ok := out["data"].([]any)
	if !ok {
		return out
	}
	metadata, ok := out["_metadata"]
	if !ok || metadata == nil {
		metadata = map[string]any{}
	}
	return map[string]any{
		"items":    items,
		"endpoint": endpoint,
		"metadata": metadata,
	}
}

// RequireFields returns an *errors.APIError listing every field missing
// (or null) in data.
func RequireFields(data map[string]any, fields ...string) error {
	var missing []string
	for _, f := range fields {
		if v, ok := data[f]; !ok || v == nil {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return &gterrors.APIError{
		Message: "API response missing required fields",
		Data:    data,
		Context: gterrors.Fields{"missing_fields": missing},
	}
}
