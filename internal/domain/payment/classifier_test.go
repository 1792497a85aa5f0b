package payment

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateClassifier_TextHeuristics(t *testing.T) {
	c := MustDuplicateClassifier(nil, nil)

	tests := []struct {
		name    string
		failure Failure
		want    bool
	}{
		{
			name:    "transaction id already used",
			failure: Failure{Response: &GatewayResponse{Message: "Transaction id T1 is already used"}},
			want:    true,
		},
		{
			name:    "duplicate transaction in technical message",
			failure: Failure{Response: &GatewayResponse{Message: "Invalid data", TechnicalMessage: "DUPLICATE TRANSACTION"}},
			want:    true,
		},
		{
			name:    "transaction_id variant",
			failure: Failure{Response: &GatewayResponse{TechnicalMessage: "transaction_id has already been taken"}},
			want:    true,
		},
		{
			name:    "transport error text",
			failure: Failure{Err: fmt.Errorf("%w: duplicate transaction", ErrGatewayRequestFailed)},
			want:    true,
		},
		{
			name:    "decline",
			failure: Failure{Response: &GatewayResponse{Status: StatusDeclined, Message: "Insufficient funds"}},
			want:    false,
		},
		{
			name:    "transport timeout",
			failure: Failure{Err: errors.New("context deadline exceeded")},
			want:    false,
		},
		{
			name:    "empty failure",
			failure: Failure{},
			want:    false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.IsDuplicate(tt.failure))
		})
	}
}

func TestDuplicateClassifier_StructuredCode(t *testing.T) {
	c := MustDuplicateClassifier([]string{"340"}, nil)

	assert.True(t, c.IsDuplicate(Failure{Response: &GatewayResponse{Code: "340", Message: "whatever"}}))
	assert.False(t, c.IsDuplicate(Failure{Response: &GatewayResponse{Code: "510", Message: "Insufficient funds"}}))
	// text fallback still applies for unknown codes
	assert.True(t, c.IsDuplicate(Failure{Response: &GatewayResponse{Code: "999", Message: "duplicate transaction"}}))
}

func TestNewDuplicateClassifier_InvalidPattern(t *testing.T) {
	_, err := NewDuplicateClassifier(nil, []string{"("})
	require.Error(t, err)
}

func TestFailure_Message(t *testing.T) {
	assert.Equal(t, "declined", Failure{Response: &GatewayResponse{Message: "declined"}}.Message())
	assert.Equal(t, "boom", Failure{Err: errors.New("boom")}.Message())
	assert.Equal(t, "unknown gateway failure", Failure{}.Message())
}
