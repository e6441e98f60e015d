package form

import "github.com/kyozo/waitlist/internal/domain"

// Patch is a partial update of the draft. Nil fields are left unchanged.
type Patch struct {
	FirstName           *string   `json:"firstName,omitempty"`
	LastName            *string   `json:"lastName,omitempty"`
	Email               *string   `json:"email,omitempty"`
	Phone               *string   `json:"phone,omitempty"`
	Location            *string   `json:"location,omitempty"`
	RoleTypes           *[]string `json:"roleTypes,omitempty"`
	CreativeWork        *string   `json:"creativeWork,omitempty"`
	BetaTesting         *string   `json:"betaTesting,omitempty"`
	ResonanceLevel      *string   `json:"resonanceLevel,omitempty"`
	ResonanceReasons    *[]string `json:"resonanceReasons,omitempty"`
	CommunitySelections *[]string `json:"communitySelections,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return len(p.apply(&domain.Submission{})) == 0
}

// apply copies set fields into sub and returns the field names it touched.
func (p Patch) apply(sub *domain.Submission) []string {
	var touched []string
	str := func(dst *string, src *string, field string) {
		if src != nil {
			*dst = *src
			touched = append(touched, field)
		}
	}
	list := func(dst *[]string, src *[]string, field string) {
		if src != nil {
			*dst = append([]string(nil), (*src)...)
			touched = append(touched, field)
		}
	}
	str(&sub.FirstName, p.FirstName, FieldFirstName)
	str(&sub.LastName, p.LastName, FieldLastName)
	str(&sub.Email, p.Email, FieldEmail)
	str(&sub.Phone, p.Phone, FieldPhone)
	str(&sub.Location, p.Location, FieldLocation)
	list(&sub.RoleTypes, p.RoleTypes, FieldRoleTypes)
	str(&sub.CreativeWork, p.CreativeWork, FieldCreativeWork)
	str(&sub.BetaTesting, p.BetaTesting, FieldBetaTesting)
	str(&sub.ResonanceLevel, p.ResonanceLevel, FieldResonanceLevel)
	list(&sub.ResonanceReasons, p.ResonanceReasons, FieldResonanceReasons)
	list(&sub.CommunitySelections, p.CommunitySelections, FieldCommunities)
	return touched
}
