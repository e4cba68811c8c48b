// Copyright (C) 2025 Paragraf AI (kontakt@paragraf.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package tools

import (
	"fmt"
	"strings"
	"time"
)

// Input validation helpers shared by the tool implementations. Model-produced
// inputs are untrusted: wrong types, missing keys and junk values must come
// back as errors the model can read and correct, never as panics.

func requiredString(input map[string]any, key string) (string, error) {
	raw, ok := input[key]
	if !ok {
		return "", fmt.Errorf("missing required parameter %q", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string", key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("parameter %q must not be empty", key)
	}
	return s, nil
}

func optionalString(input map[string]any, key string, maxLen int) (string, error) {
	raw, ok := input[key]
	if !ok || raw == nil {
		return "", nil
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("parameter %q must be a string", key)
	}
	if maxLen > 0 && len(s) > maxLen {
		return "", fmt.Errorf("parameter %q exceeds the maximum length of %d", key, maxLen)
	}
	return strings.TrimSpace(s), nil
}

// optionalNumber accepts float64 (the JSON decoder default) and int.
func optionalNumber(input map[string]any, key string, def, min, max float64) (float64, error) {
	raw, ok := input[key]
	if !ok || raw == nil {
		return def, nil
	}
	var n float64
	switch v := raw.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	default:
		return 0, fmt.Errorf("parameter %q must be a number", key)
	}
	if n < min || n > max {
		return 0, fmt.Errorf("parameter %q must be between %g and %g", key, min, max)
	}
	return n, nil
}

func requiredNumber(input map[string]any, key string, min, max float64) (float64, error) {
	if _, ok := input[key]; !ok {
		return 0, fmt.Errorf("missing required parameter %q", key)
	}
	return optionalNumber(input, key, 0, min, max)
}

func optionalBool(input map[string]any, key string, def bool) (bool, error) {
	raw, ok := input[key]
	if !ok || raw == nil {
		return def, nil
	}
	b, ok := raw.(bool)
	if !ok {
		return false, fmt.Errorf("parameter %q must be a boolean", key)
	}
	return b, nil
}

// requiredDate parses a YYYY-MM-DD value in local time.
func requiredDate(input map[string]any, key string) (time.Time, error) {
	s, err := requiredString(input, key)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parameter %q must be a date in YYYY-MM-DD format", key)
	}
	return t, nil
}
