package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextID(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		existing []string
		want     string
		wantErr  bool
	}{
		{name: "empty customer sequence", prefix: "CUST", existing: nil, want: "CUST0001"},
		{name: "empty bill sequence", prefix: "BILL", existing: []string{}, want: "BILL0001"},
		{name: "increments last", prefix: "EMP", existing: []string{"EMP0001", "EMP0002"}, want: "EMP0003"},
		{name: "uses last not highest", prefix: "ORD", existing: []string{"ORD0009", "ORD0004"}, want: "ORD0005"},
		{name: "carries past padding", prefix: "ORD", existing: []string{"ORD9999"}, want: "ORD10000"},
		{name: "wrong prefix", prefix: "CUST", existing: []string{"EMP0001"}, wantErr: true},
		{name: "non numeric suffix", prefix: "CUST", existing: []string{"CUST00A1"}, wantErr: true},
		{name: "negative suffix", prefix: "CUST", existing: []string{"CUST-001"}, wantErr: true},
		{name: "missing digits", prefix: "BILL", existing: []string{"BILL"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextID(tt.prefix, IDWidth, tt.existing)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrMalformedIdentifier), "got %v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAndParseID(t *testing.T) {
	assert.Equal(t, "CUST0042", FormatID("CUST", IDWidth, 42))
	assert.Equal(t, "BILL0001", FormatID("BILL", IDWidth, 1))

	n, err := ParseID("EMP", "EMP0042")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), n)

	_, err = ParseID("EMP", "emp0042")
	assert.ErrorIs(t, err, ErrMalformedIdentifier)
}
