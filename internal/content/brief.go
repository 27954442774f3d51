package content

// CreativeBrief is the structured requirements document driving content
// generation. All fields are optional free text. A brief is either pending
// (server-parsed, awaiting user confirmation, still mutable via chat turns)
// or confirmed (frozen, used as generation input); the lifecycle state is
// tracked by the conversation session, not here.
type CreativeBrief struct {
	Overview         string `json:"overview,omitempty"`
	Objectives       string `json:"objectives,omitempty"`
	TargetAudience   string `json:"target_audience,omitempty"`
	KeyMessage       string `json:"key_message,omitempty"`
	ToneAndStyle     string `json:"tone_and_style,omitempty"`
	Deliverable      string `json:"deliverable,omitempty"`
	Timelines        string `json:"timelines,omitempty"`
	VisualGuidelines string `json:"visual_guidelines,omitempty"`
	CTA              string `json:"cta,omitempty"`
}

// BriefField pairs a display label with a brief field value, in the fixed
// order the review card renders them.
type BriefField struct {
	Label string
	Value string
}

// Fields returns all nine fields in display order, including empty ones.
func (b CreativeBrief) Fields() []BriefField {
	return []BriefField{
		{"Overview", b.Overview},
		{"Objectives", b.Objectives},
		{"Target Audience", b.TargetAudience},
		{"Key Message", b.KeyMessage},
		{"Tone & Style", b.ToneAndStyle},
		{"Deliverable", b.Deliverable},
		{"Timelines", b.Timelines},
		{"Visual Guidelines", b.VisualGuidelines},
		{"Call to Action", b.CTA},
	}
}

// IsEmpty reports whether every field is empty. An empty brief cannot be
// confirmed.
func (b CreativeBrief) IsEmpty() bool {
	for _, f := range b.Fields() {
		if f.Value != "" {
			return false
		}
	}
	return true
}
