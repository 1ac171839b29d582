package rpc_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/quangdang46/zapshop/shared/errors"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/infrastructure/rpc"
)

func TestNormalizeObject(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want domain.Object
	}{
		{"bare object", `{"gold": "1"}`, domain.Object{"gold": "1"}},
		{"wrapped object", `[{"gold": "1"}]`, domain.Object{"gold": "1"}},
		{"empty array", `[]`, domain.Object{}},
		{"null", `null`, domain.Object{}},
		{"absent", ``, domain.Object{}},
		{"numbers stay exact", `{"cap": 18446744073709551615}`, domain.Object{"cap": json.Number("18446744073709551615")}},
		{"string", `"text"`, domain.Object{}},
		{"number", `5`, domain.Object{}},
		{"bool", `true`, domain.Object{}},
		{"wrapped number", `[5]`, domain.Object{}},
		{"wrapped string", `["x"]`, domain.Object{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rpc.NormalizeObject(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := rpc.NormalizeObject(json.RawMessage(`{"gold": `))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedResponse))
}

func TestNormalizeTuple(t *testing.T) {
	got, err := rpc.NormalizeTuple(json.RawMessage(`[true, "5"]`))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{true, "5"}, got)

	got, err = rpc.NormalizeTuple(json.RawMessage(`[[false, 0]]`))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{false, json.Number("0")}, got)

	got, err = rpc.NormalizeTuple(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = rpc.NormalizeTuple(json.RawMessage(`{"a": 1}`))
	assert.Error(t, err)
}

func TestNormalizeList(t *testing.T) {
	for _, raw := range []string{`[[{"id": "1"}, {"id": "2"}]]`, `[{"id": "1"}, {"id": "2"}]`} {
		got, err := rpc.NormalizeList(json.RawMessage(raw))
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "2", got[1].String("id"))
	}

	got, err := rpc.NormalizeList(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = rpc.NormalizeList(json.RawMessage(`[1, 2]`))
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeMalformedResponse))
}

func TestNormalizeScalar(t *testing.T) {
	got, err := rpc.NormalizeScalar(json.RawMessage(`["12"]`))
	require.NoError(t, err)
	assert.Equal(t, "12", got)

	got, err = rpc.NormalizeScalar(json.RawMessage(`7`))
	require.NoError(t, err)
	assert.Equal(t, json.Number("7"), got)

	got, err = rpc.NormalizeScalar(json.RawMessage(`[]`))
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = rpc.NormalizeScalar(json.RawMessage(`[`))
	assert.Error(t, err)
}
