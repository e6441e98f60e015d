// Package gate implements the entrance page: a static passcode check that
// unlocks the waitlist form, and the short request-access form offered to
// visitors without a code.
package gate

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/kyozo/waitlist/internal/domain"
	"github.com/kyozo/waitlist/internal/form"
	"github.com/kyozo/waitlist/internal/pkg/httputil"
)

// MsgInvalidPasscode is returned for any wrong code.
const MsgInvalidPasscode = "Invalid passcode. Please check and try again."

// Access-request field messages.
const (
	MsgNameRequired  = "Name is required"
	MsgEmailRequired = "Email is required"
	MsgEmailInvalid  = "Please enter a valid email"
)

var ErrInvalidPasscode = errors.New("gate: invalid passcode")

// Passcode compares visitor input with a single shared code.
type Passcode struct {
	code string
}

// NewPasscode normalises the configured code the same way input is normalised.
func NewPasscode(code string) *Passcode {
	return &Passcode{code: normalise(code)}
}

func normalise(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// Check reports ErrInvalidPasscode unless input matches after trimming and
// upper-casing. An empty configured code never matches.
func (p *Passcode) Check(input string) error {
	got := normalise(input)
	if p.code == "" || subtle.ConstantTimeCompare([]byte(got), []byte(p.code)) != 1 {
		return ErrInvalidPasscode
	}
	return nil
}

// HandleCheck serves POST /api/passcode {passcode}.
func (p *Passcode) HandleCheck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Passcode string `json:"passcode"`
	}
	if !httputil.Decode(w, r, &req) {
		return
	}
	if err := p.Check(req.Passcode); err != nil {
		httputil.Error(w, http.StatusForbidden, MsgInvalidPasscode)
		return
	}
	httputil.OK(w, map[string]bool{"granted": true})
}

// ValidateAccessRequest trims the request in place and checks the required
// fields. The returned map is keyed by JSON field name.
func ValidateAccessRequest(req *domain.AccessRequest) map[string]string {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.CreativeWork = strings.TrimSpace(req.CreativeWork)

	errs := map[string]string{}
	if req.Name == "" {
		errs["name"] = MsgNameRequired
	}
	switch {
	case req.Email == "":
		errs["email"] = MsgEmailRequired
	case !form.ValidEmail(req.Email):
		errs["email"] = MsgEmailInvalid
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
