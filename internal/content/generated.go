package content

import "strings"

// Violation severities, ordered most to least severe.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// ComplianceViolation is a flagged compliance issue on generated content.
type ComplianceViolation struct {
	Severity   string `json:"severity"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
	Field      string `json:"field,omitempty"`
}

// GeneratedContent is the result of one generation run: text and image
// output plus the compliance review verdict. RequiresModification is a hard
// gate; content must not be presented as final while it is set.
type GeneratedContent struct {
	TextContent          string                `json:"text_content,omitempty"`
	ImageContent         string                `json:"image_content,omitempty"`
	Violations           []ComplianceViolation `json:"violations"`
	RequiresModification bool                  `json:"requires_modification"`
	Error                string                `json:"error,omitempty"`
	TextError            string                `json:"text_error,omitempty"`
	ImageError           string                `json:"image_error,omitempty"`
}

// Approved reports whether the content passed compliance review outright:
// zero violations and no modification required.
func (g GeneratedContent) Approved() bool {
	return len(g.Violations) == 0 && !g.RequiresModification
}

// ViolationsBySeverity partitions violations into error, warning, and info
// buckets, preserving order within each bucket. Unknown severities land in
// the info bucket so nothing is silently dropped.
func (g GeneratedContent) ViolationsBySeverity() (errors, warnings, infos []ComplianceViolation) {
	for _, v := range g.Violations {
		switch v.Severity {
		case SeverityError:
			errors = append(errors, v)
		case SeverityWarning:
			warnings = append(warnings, v)
		default:
			infos = append(infos, v)
		}
	}
	return errors, warnings, infos
}

// safetyFilterPatterns are substrings of backend error messages that
// indicate generation was blocked by a safety/content filter rather than
// failing outright. Matched case-insensitively; the backend does not expose
// a typed error for this, so string matching is the only option.
var safetyFilterPatterns = []string{
	"content_filter",
	"content filter",
	"content management policy",
	"responsiblea",
	"responsible ai",
	"safety system",
	"blocked by",
}

// ContentFiltered reports whether an error message indicates the backend's
// safety filter rejected the request. Callers use this to show a targeted
// "adjust your brief" message instead of a generic failure.
func ContentFiltered(message string) bool {
	lower := strings.ToLower(message)
	for _, p := range safetyFilterPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
