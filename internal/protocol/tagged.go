package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/serbe/rugo-sub000/internal/errs"
)

// splitTagged decodes an externally tagged value: either a bare string naming
// a unit variant, or an object with exactly one key holding the variant body.
func splitTagged(data []byte) (string, json.RawMessage, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return "", nil, err
		}
		return tag, nil, nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return "", nil, err
	}
	if len(m) != 1 {
		return "", nil, fmt.Errorf("%w: want one variant, got %d", errs.ErrBadRequest, len(m))
	}
	for tag, body := range m {
		return tag, body, nil
	}
	return "", nil, nil
}

// decodeStrict decodes a JSON object into v. Every key in required must be
// present and no key outside required and optional may appear. Keys compare
// case-sensitively.
func decodeStrict(data []byte, v any, required []string, optional ...string) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	if keys == nil {
		return fmt.Errorf("%w: not an object", errs.ErrBadRequest)
	}
	for _, k := range required {
		if _, ok := keys[k]; !ok {
			return fmt.Errorf("%w: missing %q", errs.ErrBadRequest, k)
		}
	}
	for k := range keys {
		if !slices.Contains(required, k) && !slices.Contains(optional, k) {
			return fmt.Errorf("%w: unexpected key %q", errs.ErrBadRequest, k)
		}
	}
	return json.Unmarshal(data, v)
}

// isObject reports whether raw holds a JSON object.
func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}
