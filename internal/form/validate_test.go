package form

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kyozo/waitlist/internal/domain"
)

func TestValidate_PerStep(t *testing.T) {
	tests := []struct {
		name string
		step Step
		sub  domain.Submission
		want Errors
	}{
		{
			name: "identity all blank",
			step: StepIdentity,
			sub:  domain.Submission{FirstName: "  ", Email: ""},
			want: Errors{FieldFirstName: MsgFirstName, FieldLastName: MsgLastName, FieldEmail: MsgEmailRequired},
		},
		{
			name: "identity bad email shape",
			step: StepIdentity,
			sub:  domain.Submission{FirstName: "Sarah", LastName: "Chen", Email: "sarah@example"},
			want: Errors{FieldEmail: MsgEmailInvalid},
		},
		{
			name: "identity padded email",
			step: StepIdentity,
			sub:  domain.Submission{FirstName: "Sarah", LastName: "Chen", Email: " sarah@x.co "},
			want: Errors{FieldEmail: MsgEmailInvalid},
		},
		{
			name: "identity ok",
			step: StepIdentity,
			sub:  domain.Submission{FirstName: "Sarah", LastName: "Chen", Email: "sarah.chen@example.com"},
			want: Errors{},
		},
		{
			name: "contact missing location",
			step: StepContact,
			sub:  domain.Submission{Phone: "+1 555 0100"},
			want: Errors{FieldLocation: MsgLocation},
		},
		{
			name: "creative work ignores role count",
			step: StepCreativeWork,
			sub:  domain.Submission{CreativeWork: "Ceramics"},
			want: Errors{},
		},
		{
			name: "beta unanswered",
			step: StepBetaInterest,
			want: Errors{FieldBetaTesting: MsgBetaTesting},
		},
		{
			name: "resonance unrated",
			step: StepResonance,
			want: Errors{FieldResonanceLevel: MsgResonanceLevel},
		},
		{
			name: "resonance rated without reasons",
			step: StepResonance,
			sub:  domain.Submission{ResonanceLevel: "3"},
			want: Errors{FieldResonanceReasons: MsgResonanceReasons},
		},
		{
			name: "communities always pass",
			step: StepCommunities,
			want: Errors{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := tt.sub
			assert.Equal(t, tt.want, Validate(tt.step, &sub))
		})
	}
}

func TestValidate_ResonanceReasonsForEveryLevel(t *testing.T) {
	for _, lvl := range []string{"1", "2", "3", "4", "5"} {
		sub := &domain.Submission{ResonanceLevel: lvl}
		assert.Contains(t, Validate(StepResonance, sub), FieldResonanceReasons, "level %s", lvl)

		sub.ResonanceReasons = []string{"control"}
		assert.Empty(t, Validate(StepResonance, sub), "level %s", lvl)
	}
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("a@b.co"))
	assert.False(t, ValidEmail(" sarah.chen@example.com "))
	assert.False(t, ValidEmail("no-at.example.com"))
	assert.False(t, ValidEmail("two words@example.com"))
	assert.False(t, ValidEmail("a@b"))
}
