package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyozo/waitlist/internal/config"
)

func TestLocalProvider_VerifyPassword(t *testing.T) {
	p := NewLocalProvider([]config.AdminAccount{
		{Email: "Will@Kyozo.com", Password: "correct horse"},
		{Email: "gone@kyozo.com", Password: "x", Disabled: true},
	})
	ctx := context.Background()

	got, err := p.VerifyPassword(ctx, "will@kyozo.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, "Will@Kyozo.com", got.Email)
	assert.NotEmpty(t, got.UID)

	again, err := p.VerifyPassword(ctx, " WILL@kyozo.com ", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, got.UID, again.UID, "uid is stable per account")

	_, err = p.VerifyPassword(ctx, "will@kyozo.com", "wrong")
	assert.Equal(t, CodeWrongPassword, CodeOf(err))

	_, err = p.VerifyPassword(ctx, "gone@kyozo.com", "x")
	assert.Equal(t, CodeUserDisabled, CodeOf(err))
}
