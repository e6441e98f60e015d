package identity

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"strings"

	"github.com/google/uuid"

	"github.com/kyozo/waitlist/internal/config"
)

// LocalProvider issues random anonymous ids and checks operators against a
// configured account list. It is meant for development and tests.
type LocalProvider struct {
	accounts map[string]config.AdminAccount
}

// NewLocalProvider indexes accounts by lower-cased email.
func NewLocalProvider(accounts []config.AdminAccount) *LocalProvider {
	m := make(map[string]config.AdminAccount, len(accounts))
	for _, a := range accounts {
		m[strings.ToLower(strings.TrimSpace(a.Email))] = a
	}
	return &LocalProvider{accounts: m}
}

func (p *LocalProvider) SignInAnonymously(context.Context) (string, error) {
	return "anon-" + uuid.NewString(), nil
}

func (p *LocalProvider) VerifyPassword(_ context.Context, email, password string) (*Principal, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	acct, ok := p.accounts[key]
	if !ok {
		return nil, &Error{Code: CodeUserNotFound}
	}
	if acct.Disabled {
		return nil, &Error{Code: CodeUserDisabled}
	}
	// Compare digests so timing does not leak the password length.
	got := sha256.Sum256([]byte(password))
	want := sha256.Sum256([]byte(acct.Password))
	if subtle.ConstantTimeCompare(got[:], want[:]) != 1 {
		return nil, &Error{Code: CodeWrongPassword}
	}
	return &Principal{
		UID:     uuid.NewSHA1(uuid.NameSpaceURL, []byte("kyozo-admin:"+key)).String(),
		Email:   acct.Email,
		IDToken: uuid.NewString(),
	}, nil
}
