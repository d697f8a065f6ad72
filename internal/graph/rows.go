package graph

import (
	"fmt"
	"time"
)

// Record decoding helpers. Neo4j hands values back as any-typed map
// entries; these helpers pin down the expected Go type and normalise
// timestamps to UTC so downstream age arithmetic is zone-independent.

func rowString(row map[string]any, key string) (string, error) {
	v, ok := row[key]
	if !ok || v == nil {
		return "", fmt.Errorf("graph: record missing %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("graph: record field %q is %T, want string", key, v)
	}
	return s, nil
}

func rowStringOr(row map[string]any, key, fallback string) string {
	s, err := rowString(row, key)
	if err != nil {
		return fallback
	}
	return s
}

func rowTime(row map[string]any, key string) (time.Time, error) {
	v, ok := row[key]
	if !ok || v == nil {
		return time.Time{}, fmt.Errorf("graph: record missing %q", key)
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, fmt.Errorf("graph: record field %q is %T, want time.Time", key, v)
	}
	return t.UTC(), nil
}

func rowTimePtr(row map[string]any, key string) *time.Time {
	t, err := rowTime(row, key)
	if err != nil {
		return nil
	}
	return &t
}

func rowFloat(row map[string]any, key string) (float64, error) {
	v, ok := row[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("graph: record missing %q", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("graph: record field %q is %T, want number", key, v)
	}
}

func rowInt(row map[string]any, key string) (int, error) {
	v, ok := row[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("graph: record missing %q", key)
	}
	n, ok := v.(int64)
	if !ok {
		return 0, fmt.Errorf("graph: record field %q is %T, want int64", key, v)
	}
	return int(n), nil
}
