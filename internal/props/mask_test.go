package props_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"uidam/internal/props"
)

func TestIsSensitiveKey(t *testing.T) {
	t.Parallel()

	assert.True(t, props.IsSensitiveKey("tenants.profile.acme.password"))
	assert.True(t, props.IsSensitiveKey("tenants.profile.acme.client.registration-secret"))
	assert.True(t, props.IsSensitiveKey("SOME_API_KEY"))
	assert.True(t, props.IsSensitiveKey("crypto.salt"))
	assert.False(t, props.IsSensitiveKey("tenant.ids"))
	assert.False(t, props.IsSensitiveKey("tenants.profile.acme.jdbc-url"))
}

func TestMaskValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "******", props.MaskValue("tenants.profile.acme.password", "hunter2"))
	assert.Equal(t, "acme,beta", props.MaskValue("tenant.ids", "acme,beta"))
	assert.Equal(t, "", props.MaskValue("tenants.profile.acme.password", ""))
}
