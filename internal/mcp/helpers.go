package mcpserver

import (
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// parseJSON parses a JSON string into the target type.
func parseJSON(data string, target any) error {
	return json.Unmarshal([]byte(data), target)
}

// marshalJSON serializes a value to JSON bytes.
func marshalJSON(v any) ([]byte, error) {
	return json.Marshal(v)
}

func marshalIndent(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// decodeArg converts the tool argument key into target. Agents send either
// a JSON value or a string holding JSON; both are accepted.
func decodeArg(args map[string]any, key string, target any) error {
	v, ok := args[key]
	if !ok || v == nil {
		return fmt.Errorf("%s is required", key)
	}
	if s, isString := v.(string); isString {
		if err := parseJSON(s, target); err != nil {
			return fmt.Errorf("%s: invalid JSON: %w", key, err)
		}
		return nil
	}
	data, err := marshalJSON(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// rawArg returns the tool argument key as JSON bytes.
func rawArg(args map[string]any, key string) ([]byte, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, fmt.Errorf("%s is required", key)
	}
	if s, isString := v.(string); isString {
		return []byte(s), nil
	}
	return marshalJSON(v)
}

// intArg reads a whole-number argument. JSON numbers arrive as float64.
func intArg(args map[string]any, key string) (int, error) {
	switch v := args[key].(type) {
	case float64:
		// -MinInt is 2^63, the first float64 past MaxInt.
		if v != math.Trunc(v) || v < math.MinInt || v >= -math.MinInt {
			return 0, fmt.Errorf("%s must be a whole number, got %v", key, v)
		}
		return int(v), nil
	case int:
		return v, nil
	case nil:
		return 0, fmt.Errorf("%s is required", key)
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", key, v)
	}
}

func boolPtr(v bool) *bool { return &v }
