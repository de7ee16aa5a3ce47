package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{404, ErrorTypeNotFound},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
		{400, ErrorTypeClientError},
		{302, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.status), func(t *testing.T) {
			err := FromStatus(tt.status)
			assert.Equal(t, tt.want, err.Type)
			assert.Equal(t, tt.status, err.Code)
		})
	}
}

func TestTypeOfWrapped(t *testing.T) {
	base := New(ErrorTypeParsing, 200, "bad json")
	wrapped := fmt.Errorf("fetch species: %w", base)

	assert.Equal(t, ErrorTypeParsing, TypeOf(wrapped))
	assert.Equal(t, ErrorTypeUnknown, TypeOf(fmt.Errorf("plain")))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeNotFound))
	assert.True(t, IsRetryable(ErrorTypeServerError))
	assert.False(t, IsRetryable(ErrorTypeDecode))
	assert.False(t, IsRetryable(ErrorTypeCheckpoint))
}
