package gtrends

// reshape gives an endpoint payload a stable shape. A payload that already
// carries key as a list or object is returned unchanged. Otherwise the
// result holds key set to the first container found under candidates (or
// the whole payload), a timestamp (the payload's, else the current Unix
// time) and fields.
func (c *Client) reshape(data map[string]any, key string, candidates []string, fields map[string]any) map[string]any {
	if isContainer(data[key]) {
		return data
	}

	out := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		out[k] = v
	}
	out["timestamp"] = c.timestamp(data)
	out[key] = data
	for _, cand := range candidates {
		if v := data[cand]; isContainer(v) {
			out[key] = v
			break
		}
	}
	return out
}

// health reshapes a health payload into {status, message, timestamp,
// details[, version]}. Payloads that already report a status together with
// a message or details are returned unchanged.
func (c *Client) health(data map[string]any) map[string]any {
	if data["status"] != nil && (data["message"] != nil || data["details"] != nil) {
		return data
	}

	out := map[string]any{
		"status":    "unknown",
		"message":   "",
		"timestamp": c.timestamp(data),
		"details":   []any{},
	}

	switch {
	case data["status"] != nil:
		out["status"] = data["status"]
	case data["health_status"] != nil:
		out["status"] = data["health_status"]
	default:
		if healthy, ok := data["is_healthy"].(bool); ok {
			out["status"] = "unhealthy"
			if healthy {
				out["status"] = "healthy"
			}
		}
	}

	if data["message"] != nil {
		out["message"] = data["message"]
	} else if data["status_message"] != nil {
		out["message"] = data["status_message"]
	}

	for _, k := range []string{"details", "metrics", "components"} {
		if isContainer(data[k]) {
			out["details"] = data[k]
			break
		}
	}

	if v := data["version"]; v != nil {
		out["version"] = v
	}
	return out
}

func (c *Client) timestamp(data map[string]any) any {
	if ts := data["timestamp"]; ts != nil {
		return ts
	}
	return c.now().Unix()
}

func isContainer(v any) bool {
	switch v.(type) {
	case []any, map[string]any:
		return true
	}
	return false
}
