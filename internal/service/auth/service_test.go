package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Additional-Code/bazaar/internal/entity"
)

func TestOTPMessagePerPurpose(t *testing.T) {
	ttl := 10 * time.Minute

	subject, body := otpMessage(entity.OTPPurposeRegistration, "123456", ttl)
	assert.Equal(t, "Your verification code", subject)
	assert.Contains(t, body, "123456")

	subject, _ = otpMessage(entity.OTPPurposePasswordReset, "123456", ttl)
	assert.Equal(t, "Your password reset code", subject)

	subject, _ = otpMessage(entity.OTPPurposeLogin, "654321", ttl)
	assert.Equal(t, "Your login code", subject)
}
