package bcs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestU64_LittleEndian(t *testing.T) {
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, U64(1))
	assert.Equal(t, []byte{0x34, 0x12, 0, 0, 0, 0, 0, 0}, U64(0x1234))
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, U64(^uint64(0)))
}

func TestCheckedU8(t *testing.T) {
	tests := []struct {
		name    string
		value   int64
		want    []byte
		wantErr bool
	}{
		{name: "zero", value: 0, want: []byte{0}},
		{name: "max", value: 255, want: []byte{0xff}},
		{name: "overflow", value: 256, wantErr: true},
		{name: "negative", value: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CheckedU8("tier", tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "tier")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCheckedU64_RejectsNegative(t *testing.T) {
	_, err := CheckedU64("quantity", -5)
	assert.Error(t, err)

	got, err := CheckedU64("quantity", 3)
	require.NoError(t, err)
	assert.Equal(t, U64(3), got)
}
