package domain

// Option is one selectable value shown by the form.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
}

// RoleTypes is the creative-role catalog.
var RoleTypes = []Option{
	{Value: "artist-musician-performer", Label: "Artist / Musician / Performer"},
	{Value: "creative-professional", Label: "Creative Professional"},
	{Value: "curator-cultural-institution", Label: "Curator / Cultural Institution"},
	{Value: "community-builder", Label: "Community Builder"},
	{Value: "explorer", Label: "Explorer"},
	{Value: "catalyst", Label: "Catalyst"},
}

// ResonanceLevels are the 1..5 rating options.
var ResonanceLevels = []Option{
	{Value: "1", Label: "Not sure", Description: "I'm not sure this is for me yet"},
	{Value: "2", Label: "Curious", Description: "I'd like to learn more"},
	{Value: "3", Label: "Excited", Description: "This sounds like something I want"},
	{Value: "4", Label: "Essential", Description: "This is what I've been looking for"},
	{Value: "5", Label: "Urgent", Description: "I need this now"},
}

// ResonanceReasons explain a resonance rating.
var ResonanceReasons = []Option{
	{Value: "control", Label: "Control over my work and audience"},
	{Value: "communities-on-terms", Label: "Building communities on my own terms"},
	{Value: "expression", Label: "Freedom of creative expression"},
	{Value: "anti-economy", Label: "An alternative to the attention economy"},
	{Value: "integration", Label: "Integrating my creative and professional life"},
	{Value: "community", Label: "Finding my community"},
	{Value: "foundation", Label: "A foundation for long-term work"},
	{Value: "all", Label: "All of the above"},
}

// BetaCommunities are the communities a submitter can ask to join.
var BetaCommunities = []Option{
	{Value: "asia", Label: "Kyozo Asia"},
	{Value: "willer", Label: "Willer"},
}

// BetaOptions are the yes/no choices for the beta-interest step.
var BetaOptions = []Option{
	{Value: BetaYes, Label: "Yes, count me in"},
	{Value: BetaNo, Label: "Not right now"},
}

// Catalog bundles every option list for the form.
type Catalog struct {
	RoleTypes        []Option `json:"roleTypes"`
	ResonanceLevels  []Option `json:"resonanceLevels"`
	ResonanceReasons []Option `json:"resonanceReasons"`
	BetaCommunities  []Option `json:"betaCommunities"`
	BetaOptions      []Option `json:"betaOptions"`
}

// FormCatalog returns the catalogs served to the form.
func FormCatalog() Catalog {
	return Catalog{
		RoleTypes:        RoleTypes,
		ResonanceLevels:  ResonanceLevels,
		ResonanceReasons: ResonanceReasons,
		BetaCommunities:  BetaCommunities,
		BetaOptions:      BetaOptions,
	}
}

// OptionLabel returns the label for value in opts, or value itself.
func OptionLabel(opts []Option, value string) string {
	for _, o := range opts {
		if o.Value == value {
			return o.Label
		}
	}
	return value
}
