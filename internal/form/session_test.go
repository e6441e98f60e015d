package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyozo/waitlist/internal/domain"
)

func strp(s string) *string       { return &s }
func listp(v ...string) *[]string { return &v }

// sarahChen fills every step of the form.
func sarahChen() []Patch {
	return []Patch{
		{FirstName: strp("Sarah"), LastName: strp("Chen"), Email: strp("sarah.chen@example.com")},
		{Phone: strp("+1 415 555 0134"), Location: strp("San Francisco, US")},
		{RoleTypes: listp("artist-musician-performer"), CreativeWork: strp("Mixed-media installations")},
		{BetaTesting: strp(domain.BetaYes)},
		{ResonanceLevel: strp("5"), ResonanceReasons: listp("control", "freedom")},
		{CommunitySelections: listp("asia")},
	}
}

func TestSession_FullFlowReachesSubmit(t *testing.T) {
	s := NewSession("s1", time.Now())
	patches := sarahChen()

	for i, p := range patches {
		require.NoError(t, s.Apply(p))
		res, err := s.Advance()
		require.NoError(t, err, "step %d", i+1)
		if i < len(patches)-1 {
			assert.True(t, res.Moved)
			assert.Equal(t, Step(i+2), s.Step)
			continue
		}
		assert.True(t, res.Submit)
		assert.True(t, s.InFlight)
		require.NotNil(t, res.Submission)
		assert.Equal(t, "Sarah", res.Submission.FirstName)
		assert.Equal(t, []string{"control", "freedom"}, res.Submission.ResonanceReasons)
	}
}

func TestSession_AdvanceWithViolationsKeepsStep(t *testing.T) {
	s := NewSession("s1", time.Now())
	require.NoError(t, s.Apply(Patch{FirstName: strp("Sarah"), Email: strp("bad")}))

	_, err := s.Advance()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StepIdentity, s.Step)
	assert.Equal(t, Errors{FieldLastName: MsgLastName, FieldEmail: MsgEmailInvalid}, s.Errors)
}

func TestSession_EditingClearsOnlyThatFieldError(t *testing.T) {
	s := NewSession("s1", time.Now())
	_, err := s.Advance()
	require.ErrorIs(t, err, ErrValidation)
	require.Len(t, s.Errors, 3)

	require.NoError(t, s.Apply(Patch{LastName: strp("C")}))
	assert.NotContains(t, s.Errors, FieldLastName)
	assert.Contains(t, s.Errors, FieldFirstName)
	assert.Contains(t, s.Errors, FieldEmail)

	// Clearing happens on edit, even if the new value is still invalid.
	require.NoError(t, s.Apply(Patch{Email: strp("still-bad")}))
	assert.NotContains(t, s.Errors, FieldEmail)
}

func TestSession_RetreatThenAdvancePreservesData(t *testing.T) {
	s := NewSession("s1", time.Now())
	patches := sarahChen()
	for _, p := range patches[:4] {
		require.NoError(t, s.Apply(p))
		_, err := s.Advance()
		require.NoError(t, err)
	}
	require.Equal(t, StepResonance, s.Step)
	before := s.Draft.Clone()

	moved, err := s.Retreat()
	require.NoError(t, err)
	assert.True(t, moved)
	assert.Equal(t, StepBetaInterest, s.Step)
	assert.Equal(t, Backward, s.Direction)

	_, err = s.Advance()
	require.NoError(t, err)
	assert.Equal(t, StepResonance, s.Step)
	assert.Equal(t, before, s.Draft)
}

func TestSession_RetreatOnFirstStepIsNoop(t *testing.T) {
	s := NewSession("s1", time.Now())
	moved, err := s.Retreat()
	require.NoError(t, err)
	assert.False(t, moved)
	assert.Equal(t, StepIdentity, s.Step)
}

func TestSession_ChangingResonanceKeepsReasons(t *testing.T) {
	s := NewSession("s1", time.Now())
	s.Step = StepResonance
	require.NoError(t, s.Apply(Patch{ResonanceLevel: strp("2"), ResonanceReasons: listp("expression")}))
	require.NoError(t, s.Apply(Patch{ResonanceLevel: strp("4")}))
	assert.Equal(t, []string{"expression"}, s.Draft.ResonanceReasons)

	// Emptying the reasons blocks the next advance again.
	require.NoError(t, s.Apply(Patch{ResonanceReasons: listp()}))
	_, err := s.Advance()
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, Errors{FieldResonanceReasons: MsgResonanceReasons}, s.Errors)

	require.NoError(t, s.Apply(Patch{ResonanceReasons: listp("all")}))
	_, err = s.Advance()
	assert.NoError(t, err)
}

func TestSession_InFlightGuard(t *testing.T) {
	s := NewSession("s1", time.Now())
	s.Step = StepCommunities

	res, err := s.Advance()
	require.NoError(t, err)
	require.True(t, res.Submit)

	_, err = s.Advance()
	assert.ErrorIs(t, err, ErrSubmitInFlight)
	assert.ErrorIs(t, s.Apply(Patch{FirstName: strp("x")}), ErrSubmitInFlight)

	s.Fail()
	assert.False(t, s.InFlight)
	assert.Equal(t, StepCommunities, s.Step)

	res, err = s.Advance()
	require.NoError(t, err)
	assert.True(t, res.Submit, "retry is allowed after a failure")
}

func TestSession_FrozenCopyCarriesRememberedIdentity(t *testing.T) {
	s := NewSession("s1", time.Now())
	s.Step = StepCommunities
	s.RememberIdentity("anon-7")
	s.RememberIdentity("anon-8")

	res, err := s.Advance()
	require.NoError(t, err)
	assert.Equal(t, "anon-7", res.Submission.UserID)

	res.Submission.FirstName = "changed"
	assert.Empty(t, s.Draft.FirstName)
}

func TestSession_CompleteIsTerminal(t *testing.T) {
	s := NewSession("s1", time.Now())
	s.Step = StepCommunities
	_, err := s.Advance()
	require.NoError(t, err)

	s.Complete("abc123")
	assert.Equal(t, StatusSubmitted, s.Status)
	assert.Equal(t, "abc123", s.SubmissionID)
	assert.False(t, s.InFlight)
	assert.Nil(t, s.Draft)

	_, err = s.Advance()
	assert.ErrorIs(t, err, ErrSubmitted)
	_, err = s.Retreat()
	assert.ErrorIs(t, err, ErrSubmitted)
	assert.ErrorIs(t, s.Apply(Patch{}), ErrSubmitted)
}
