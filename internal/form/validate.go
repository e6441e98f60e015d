package form

import (
	"regexp"
	"strings"

	"github.com/kyozo/waitlist/internal/domain"
)

// Step identifies a form page. Steps are 1-based.
type Step int

const (
	StepIdentity Step = iota + 1
	StepContact
	StepCreativeWork
	StepBetaInterest
	StepResonance
	StepCommunities
)

// TotalSteps is the number of pages in the form; the last one submits.
const TotalSteps = int(StepCommunities)

var stepNames = map[Step]string{
	StepIdentity:     "identity",
	StepContact:      "contact",
	StepCreativeWork: "creative-work",
	StepBetaInterest: "beta-interest",
	StepResonance:    "resonance",
	StepCommunities:  "communities",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return "unknown"
}

// Valid reports whether s is a page of the form.
func (s Step) Valid() bool { return s >= StepIdentity && s <= StepCommunities }

// Field names used as error keys. They match the submission's JSON names.
const (
	FieldFirstName        = "firstName"
	FieldLastName         = "lastName"
	FieldEmail            = "email"
	FieldPhone            = "phone"
	FieldLocation         = "location"
	FieldRoleTypes        = "roleTypes"
	FieldCreativeWork     = "creativeWork"
	FieldBetaTesting      = "betaTesting"
	FieldResonanceLevel   = "resonanceLevel"
	FieldResonanceReasons = "resonanceReasons"
	FieldCommunities      = "communitySelections"
)

// Error messages shown next to a field.
const (
	MsgFirstName        = "Please enter your given name"
	MsgLastName         = "Please enter your last name"
	MsgEmailRequired    = "Please enter your email"
	MsgEmailInvalid     = "Please enter a valid email"
	MsgPhone            = "Please enter your phone number"
	MsgLocation         = "Please select your location"
	MsgCreativeWork     = "Please describe your creative work"
	MsgBetaTesting      = "Please select an option"
	MsgResonanceLevel   = "Please rate your resonance with Kyozo"
	MsgResonanceReasons = "Please select at least one reason for your rating"
)

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail checks the simple local@domain.tld shape on the value as typed,
// so surrounding whitespace fails. No RFC parsing.
func ValidEmail(email string) bool {
	return emailShape.MatchString(email)
}

// Errors maps a field name to its message. Empty means the step may advance.
type Errors map[string]string

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// Validate returns the errors for step against sub. It has no side effects.
// Role types are deliberately not counted and the communities step always
// passes.
func Validate(step Step, sub *domain.Submission) Errors {
	errs := Errors{}
	if sub == nil {
		sub = &domain.Submission{}
	}
	switch step {
	case StepIdentity:
		if blank(sub.FirstName) {
			errs[FieldFirstName] = MsgFirstName
		}
		if blank(sub.LastName) {
			errs[FieldLastName] = MsgLastName
		}
		if blank(sub.Email) {
			errs[FieldEmail] = MsgEmailRequired
		} else if !ValidEmail(sub.Email) {
			errs[FieldEmail] = MsgEmailInvalid
		}
	case StepContact:
		if blank(sub.Phone) {
			errs[FieldPhone] = MsgPhone
		}
		if blank(sub.Location) {
			errs[FieldLocation] = MsgLocation
		}
	case StepCreativeWork:
		if blank(sub.CreativeWork) {
			errs[FieldCreativeWork] = MsgCreativeWork
		}
	case StepBetaInterest:
		if blank(sub.BetaTesting) {
			errs[FieldBetaTesting] = MsgBetaTesting
		}
	case StepResonance:
		if blank(sub.ResonanceLevel) {
			errs[FieldResonanceLevel] = MsgResonanceLevel
		} else if len(sub.ResonanceReasons) == 0 {
			errs[FieldResonanceReasons] = MsgResonanceReasons
		}
	}
	return errs
}

// ValidateAll runs every step in order and merges the results.
func ValidateAll(sub *domain.Submission) Errors {
	all := Errors{}
	for s := StepIdentity; s <= StepCommunities; s++ {
		for k, v := range Validate(s, sub) {
			all[k] = v
		}
	}
	return all
}
