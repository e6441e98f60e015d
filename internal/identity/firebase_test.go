package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(server *httptest.Server) *FirebaseClient {
	return &FirebaseClient{
		baseURL:    server.URL,
		apiKey:     "test-key",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestSignInAnonymously(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signUp", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["returnSecureToken"])

		json.NewEncoder(w).Encode(map[string]string{"localId": "anon-uid", "idToken": "tok"})
	}))
	defer server.Close()

	uid, err := newTestClient(server).SignInAnonymously(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "anon-uid", uid)
}

func TestSignInAnonymously_NotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server).SignInAnonymously(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestVerifyPassword_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ops@kyozo.com", body["email"])
		json.NewEncoder(w).Encode(map[string]string{"localId": "u1", "email": "ops@kyozo.com", "idToken": "tok"})
	}))
	defer server.Close()

	p, err := newTestClient(server).VerifyPassword(context.Background(), "ops@kyozo.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, &Principal{UID: "u1", Email: "ops@kyozo.com", IDToken: "tok"}, p)
}

func TestVerifyPassword_ProviderCodes(t *testing.T) {
	cases := map[string]Code{
		"INVALID_LOGIN_CREDENTIALS": CodeInvalidCredential,
		"INVALID_PASSWORD":          CodeWrongPassword,
		"EMAIL_NOT_FOUND":           CodeUserNotFound,
		"TOO_MANY_ATTEMPTS_TRY_LATER : Access to this account has been temporarily disabled": CodeTooManyRequests,
		"USER_DISABLED": CodeUserDisabled,
		"OPERATION_ODD": CodeUnknown,
	}
	for msg, want := range cases {
		t.Run(msg, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]any{"error": map[string]any{"code": 400, "message": msg}})
			}))
			defer server.Close()

			_, err := newTestClient(server).VerifyPassword(context.Background(), "a@b.co", "x")
			require.Error(t, err)
			assert.Equal(t, want, CodeOf(err))
		})
	}
}

func TestLocalProvider(t *testing.T) {
	p := NewLocalProvider(nil)
	uid1, err := p.SignInAnonymously(context.Background())
	require.NoError(t, err)
	uid2, _ := p.SignInAnonymously(context.Background())
	assert.NotEqual(t, uid1, uid2)

	_, err = p.VerifyPassword(context.Background(), "nobody@kyozo.com", "x")
	assert.Equal(t, CodeUserNotFound, CodeOf(err))
}

func TestCodeOf_NonProviderError(t *testing.T) {
	assert.Equal(t, CodeUnknown, CodeOf(assert.AnError))
}
