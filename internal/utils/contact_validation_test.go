package utils

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsE164(t *testing.T) {
	assert.True(t, IsE164("+254712345678"))
	assert.True(t, IsE164("+14155552671"))
	assert.False(t, IsE164("0712345678"))
	assert.False(t, IsE164("+0712345678"))
	assert.False(t, IsE164("+2547 1234 5678"))
}

func TestValidateEmail(t *testing.T) {
	ctx := context.Background()
	assert.True(t, ValidateEmail(ctx, "tenant@hostel.test", false))
	assert.False(t, ValidateEmail(ctx, "Tenant <tenant@hostel.test>", false))
	assert.False(t, ValidateEmail(ctx, "not-an-email", false))
}

func TestNewTwilioClient_EmptyCredentials(t *testing.T) {
	assert.Nil(t, NewTwilioClient("", ""))
}
