package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignatureAcceptsGenuine(t *testing.T) {
	sig := Sign("order_abc", "pay_xyz", "s3cr3t")

	assert.True(t, VerifySignature("order_abc", "pay_xyz", sig, "s3cr3t"))
}

func TestVerifySignatureRejectsTampered(t *testing.T) {
	sig := Sign("order_abc", "pay_xyz", "s3cr3t")

	assert.False(t, VerifySignature("order_abc", "pay_other", sig, "s3cr3t"))
	assert.False(t, VerifySignature("order_other", "pay_xyz", sig, "s3cr3t"))
	assert.False(t, VerifySignature("order_abc", "pay_xyz", sig+"00", "s3cr3t"))
	assert.False(t, VerifySignature("order_abc", "pay_xyz", sig, "wrong"))
}

func TestVerifySignatureRejectsEmpty(t *testing.T) {
	assert.False(t, VerifySignature("order_abc", "pay_xyz", "", "s3cr3t"))
}
