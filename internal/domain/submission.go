package domain

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

// ErrIdentityAlreadySet is returned when an identity token is assigned to a
// submission that already carries one.
var ErrIdentityAlreadySet = errors.New("domain: submission identity already set")

// BetaTesting answers: "yes" or "no". Empty means unanswered.
const (
	BetaYes = "yes"
	BetaNo  = "no"
)

// Submission is one person's waitlist entry.
type Submission struct {
	ID        string    `json:"id,omitempty"`
	UserID    string    `json:"userId,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`

	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`

	Phone    string `json:"phone"`
	Location string `json:"location"`

	RoleTypes    []string `json:"roleTypes"`
	CreativeWork string   `json:"creativeWork"`

	BetaTesting string `json:"betaTesting"`

	// ResonanceLevel is "1".."5"; empty means not rated yet.
	ResonanceLevel   string   `json:"resonanceLevel"`
	ResonanceReasons []string `json:"resonanceReasons"`

	CommunitySelections []string `json:"communitySelections"`

	SegmentAnswers SegmentAnswerSet `json:"segmentAnswers,omitempty"`
}

// SetIdentity assigns the identity token exactly once.
func (s *Submission) SetIdentity(uid string) error {
	if s.UserID != "" && s.UserID != uid {
		return ErrIdentityAlreadySet
	}
	s.UserID = uid
	return nil
}

// FullName joins first and last name.
func (s *Submission) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// ResonanceScore parses ResonanceLevel. ok is false when unset or out of range.
func (s *Submission) ResonanceScore() (score int, ok bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s.ResonanceLevel))
	if err != nil || n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}

// Segments lists the segments the submission belongs to, in catalog order.
func (s *Submission) Segments() []Segment {
	var out []Segment
	for _, seg := range AllSegments {
		if _, ok := s.SegmentAnswers[seg]; ok {
			out = append(out, seg)
		}
	}
	return out
}

// InSegment reports segment membership.
func (s *Submission) InSegment(seg Segment) bool {
	_, ok := s.SegmentAnswers[seg]
	return ok
}

// Clone returns a deep copy; the pipeline works on a frozen clone so later
// edits to a draft never leak into a write in progress.
func (s *Submission) Clone() *Submission {
	if s == nil {
		return nil
	}
	c := *s
	c.RoleTypes = cloneStrings(s.RoleTypes)
	c.ResonanceReasons = cloneStrings(s.ResonanceReasons)
	c.CommunitySelections = cloneStrings(s.CommunitySelections)
	if s.SegmentAnswers != nil {
		c.SegmentAnswers = make(SegmentAnswerSet, len(s.SegmentAnswers))
		for k, v := range s.SegmentAnswers {
			c.SegmentAnswers[k] = v
		}
	}
	return &c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
