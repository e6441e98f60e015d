package gate

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyozo/waitlist/internal/domain"
)

func TestPasscodeCheck(t *testing.T) {
	p := NewPasscode("KYOZO2026")

	tests := []struct {
		input string
		ok    bool
	}{
		{"KYOZO2026", true},
		{"  kyozo2026 ", true},
		{"Kyozo2026", true},
		{"KYOZO2025", false},
		{"", false},
	}
	for _, tt := range tests {
		err := p.Check(tt.input)
		if tt.ok {
			assert.NoError(t, err, tt.input)
		} else {
			assert.ErrorIs(t, err, ErrInvalidPasscode, tt.input)
		}
	}
}

func TestPasscodeEmptyConfigNeverMatches(t *testing.T) {
	assert.ErrorIs(t, NewPasscode("  ").Check(""), ErrInvalidPasscode)
}

func TestHandleCheck(t *testing.T) {
	p := NewPasscode("KYOZO2026")

	rec := httptest.NewRecorder()
	p.HandleCheck(rec, httptest.NewRequest(http.MethodPost, "/api/passcode", strings.NewReader(`{"passcode":"wrong"}`)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), MsgInvalidPasscode)

	rec = httptest.NewRecorder()
	p.HandleCheck(rec, httptest.NewRequest(http.MethodPost, "/api/passcode", strings.NewReader(`{"passcode":" kyozo2026"}`)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"granted":true`)
}

func TestValidateAccessRequest(t *testing.T) {
	req := &domain.AccessRequest{Name: "  ", Email: "nope"}
	errs := ValidateAccessRequest(req)
	assert.Equal(t, MsgNameRequired, errs["name"])
	assert.Equal(t, MsgEmailInvalid, errs["email"])

	req = &domain.AccessRequest{Name: "Sam"}
	assert.Equal(t, MsgEmailRequired, ValidateAccessRequest(req)["email"])

	req = &domain.AccessRequest{Name: " Sam Lee ", Email: " sam@studio.io ", CreativeWork: " murals "}
	assert.Nil(t, ValidateAccessRequest(req))
	assert.Equal(t, "Sam Lee", req.Name)
	assert.Equal(t, "sam@studio.io", req.Email)
	assert.Equal(t, "murals", req.CreativeWork)
}
