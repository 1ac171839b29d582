package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/quangdang46/zapshop/shared/errors"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

// View results come back in several shapes for the same Move return type:
// a bare struct, a one-element array wrapping the struct, or nothing at all.
// Everything above this file sees only the bare form.

// NormalizeObject returns the struct carried by raw. Anything that is not a
// struct or a one-element array wrapping one yields an empty Object; only
// undecodable JSON is an error.
func NormalizeObject(raw json.RawMessage) (domain.Object, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if arr, ok := v.([]interface{}); ok {
		if len(arr) == 0 {
			return domain.Object{}, nil
		}
		v = arr[0]
	}
	if obj, ok := v.(map[string]interface{}); ok {
		return domain.Object(obj), nil
	}
	return domain.Object{}, nil
}

// NormalizeTuple returns the elements of a Move tuple, unwrapping the extra
// array level some nodes add ([[a, b]] becomes [a, b]).
func NormalizeTuple(raw json.RawMessage) ([]interface{}, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}
	arr, ok := v.([]interface{})
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, apperrors.MalformedResponse("view", fmt.Errorf("expected tuple, got %T", v))
	}
	if len(arr) > 0 {
		if inner, ok := arr[0].([]interface{}); ok {
			return inner, nil
		}
	}
	return arr, nil
}

// NormalizeList returns a vector of structs, accepting [[{..},{..}]],
// [{..},{..}] or null.
func NormalizeList(raw json.RawMessage) ([]domain.Object, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return []domain.Object{}, nil
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, apperrors.MalformedResponse("view", fmt.Errorf("expected list, got %T", v))
	}
	if len(arr) == 1 {
		if inner, ok := arr[0].([]interface{}); ok {
			arr = inner
		}
	}
	out := make([]domain.Object, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, apperrors.MalformedResponse("view", fmt.Errorf("element %d: expected object, got %T", i, item))
		}
		out = append(out, domain.Object(obj))
	}
	return out, nil
}

// NormalizeScalar returns a single return value, unwrapping a one-element
// array. Numbers come back as json.Number.
func NormalizeScalar(raw json.RawMessage) (interface{}, error) {
	v, err := decode(raw)
	if err != nil {
		return nil, err
	}
	if arr, ok := v.([]interface{}); ok {
		if len(arr) == 0 {
			return nil, nil
		}
		v = arr[0]
	}
	return v, nil
}

func decode(raw json.RawMessage) (interface{}, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return nil, apperrors.MalformedResponse("view", err)
	}
	return v, nil
}
