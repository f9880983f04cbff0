package envelope

import (
	"bytes"
	"encoding/json"
)

// Unwrap normalizes the backend's envelope variants into the resource
// payload. Accepted shapes, checked in this order:
//
//	{"data": {"<resource>": payload}}
//	{"data": payload}
//	{"<resource>": payload}
//	payload
//
// Only one level of "data" is removed: {"data":{"data":[...]}} yields
// {"data":[...]}, which then fails to decode into a list and becomes empty.
func Unwrap(body []byte, resource string) json.RawMessage {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil
	}

	current := json.RawMessage(body)
	if obj, ok := asObject(current); ok {
		if data, has := obj["data"]; has {
			current = data
		}
	}
	if resource != "" {
		if obj, ok := asObject(current); ok {
			if inner, has := obj[resource]; has {
				current = inner
			}
		}
	}
	return current
}

// DecodeList never fails: any shape other than a JSON array of T is empty.
func DecodeList[T any](raw json.RawMessage) []T {
	out := make([]T, 0)
	if len(raw) == 0 {
		return out
	}
	var list []T
	if err := json.Unmarshal(raw, &list); err != nil || list == nil {
		return out
	}
	return list
}

// DecodeObject never fails: any shape other than a JSON object of T is the zero value.
func DecodeObject[T any](raw json.RawMessage) (T, bool) {
	var zero T
	if _, ok := asObject(raw); !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, false
	}
	return out, true
}

func asObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, false
	}
	return obj, true
}
