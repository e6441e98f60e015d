package notify

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/osteele/liquid"

	"github.com/kyozo/waitlist/internal/domain"
)

const (
	newSubmissionSubject = `New Waitlist Submission from {{ first_name }} {{ last_name }}`

	newSubmissionBody = `
<h2>New Waitlist Submission</h2>
<p><strong>Name:</strong> {{ first_name | escape }} {{ last_name | escape }}</p>
<p><strong>Email:</strong> {{ email | escape }}</p>
<p><strong>Phone:</strong> {{ phone | escape }}</p>
<p><strong>Location:</strong> {{ location | escape }}</p>
<p><strong>Role Types:</strong> {{ role_types | escape_all | join: ", " }}</p>
<p><strong>Creative Work:</strong> {{ creative_work | escape }}</p>
<p><strong>Beta Testing:</strong> {{ beta_testing | escape }}</p>
<p><strong>Resonance Level:</strong> {{ resonance_level | escape }}/5{% if resonance_level != "" %} ({{ resonance_level | resonance_label }}){% endif %}</p>
<p><strong>Resonance Reasons:</strong> {{ resonance_reasons | escape_all | join: ", " }}</p>
<p><strong>Community Selections:</strong> {{ community_selections | escape_all | join: ", " }}</p>
{%- if segments.size > 0 %}
<p><strong>Segments:</strong> {{ segments | join: ", " }}</p>
{%- endif %}
<p><strong>Timestamp:</strong> {{ timestamp }}</p>
`
)

// Templates renders notification emails.
type Templates struct {
	engine  *liquid.Engine
	subject *liquid.Template
	body    *liquid.Template
}

// NewTemplates parses the built-in templates.
func NewTemplates() (*Templates, error) {
	engine := liquid.NewEngine()

	// Escape every element of a list: {{ reasons | escape_all | join: ", " }}
	engine.RegisterFilter("escape_all", func(items []string) []string {
		out := make([]string, len(items))
		for i, s := range items {
			out[i] = html.EscapeString(s)
		}
		return out
	})

	// Resonance label: {{ "5" | resonance_label }} => Urgent
	engine.RegisterFilter("resonance_label", func(level string) string {
		return domain.OptionLabel(domain.ResonanceLevels, strings.TrimSpace(level))
	})

	subject, err := engine.ParseString(newSubmissionSubject)
	if err != nil {
		return nil, fmt.Errorf("parse subject template: %w", err)
	}
	body, err := engine.ParseString(newSubmissionBody)
	if err != nil {
		return nil, fmt.Errorf("parse body template: %w", err)
	}
	return &Templates{engine: engine, subject: subject, body: body}, nil
}

func bindings(sub *domain.Submission) map[string]any {
	segs := make([]string, 0, len(sub.SegmentAnswers))
	for _, s := range sub.Segments() {
		segs = append(segs, string(s))
	}
	ts := sub.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	nonNil := func(v []string) []string {
		if v == nil {
			return []string{}
		}
		return v
	}
	return map[string]any{
		"first_name":           sub.FirstName,
		"last_name":            sub.LastName,
		"email":                sub.Email,
		"phone":                sub.Phone,
		"location":             sub.Location,
		"role_types":           nonNil(sub.RoleTypes),
		"creative_work":        sub.CreativeWork,
		"beta_testing":         sub.BetaTesting,
		"resonance_level":      sub.ResonanceLevel,
		"resonance_reasons":    nonNil(sub.ResonanceReasons),
		"community_selections": nonNil(sub.CommunitySelections),
		"segments":             segs,
		"timestamp":            ts.UTC().Format(time.RFC3339),
	}
}

// NewSubmission renders the subject and HTML body for sub.
func (t *Templates) NewSubmission(sub *domain.Submission) (subject, body string, err error) {
	b := bindings(sub)
	subject, err = t.subject.RenderString(b)
	if err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	body, err = t.body.RenderString(b)
	if err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return strings.TrimSpace(subject), body, nil
}
