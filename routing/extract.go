package routing

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSONBlock returns the first balanced brace-delimited block in s.
// Braces inside JSON strings are ignored. Returns false when no complete
// block exists.
func extractJSONBlock(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// routePayload is the structured result requested from the routing backend.
// PrimaryAgent is a pointer because null is a legitimate answer (no
// specialist applies); the field must still be present.
type routePayload struct {
	PrimaryAgent    *string  `json:"primary_agent"`
	SecondaryAgents []string `json:"secondary_agents"`
	Reasoning       string   `json:"reasoning"`
	IsMultiAgent    bool     `json:"is_multi_agent"`
}

// parseRoutePayload extracts and strictly validates the router's structured
// output. Best-effort extraction, then schema validation: every required
// field must be present with the right type or the whole payload is rejected.
func parseRoutePayload(raw string) (routePayload, error) {
	var payload routePayload

	block, ok := extractJSONBlock(raw)
	if !ok {
		return payload, fmt.Errorf("no JSON object in router output")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(block), &fields); err != nil {
		return payload, fmt.Errorf("malformed router output: %w", err)
	}

	for _, required := range []string{"primary_agent", "secondary_agents", "reasoning", "is_multi_agent"} {
		if _, ok := fields[required]; !ok {
			return payload, fmt.Errorf("missing required field %q", required)
		}
	}

	if err := json.Unmarshal(fields["primary_agent"], &payload.PrimaryAgent); err != nil {
		return payload, fmt.Errorf("field primary_agent: %w", err)
	}
	if err := json.Unmarshal(fields["secondary_agents"], &payload.SecondaryAgents); err != nil {
		return payload, fmt.Errorf("field secondary_agents: %w", err)
	}
	if err := json.Unmarshal(fields["reasoning"], &payload.Reasoning); err != nil {
		return payload, fmt.Errorf("field reasoning: %w", err)
	}
	if err := json.Unmarshal(fields["is_multi_agent"], &payload.IsMultiAgent); err != nil {
		return payload, fmt.Errorf("field is_multi_agent: %w", err)
	}

	return payload, nil
}
