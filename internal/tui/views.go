package tui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/adcraftlabs/adcraft/internal/content"
	"github.com/adcraftlabs/adcraft/internal/conversation"
)

// renderStagePanel renders the workflow panel for the current stage:
// nothing at welcome, the brief card while one is pending or confirmed,
// the product list during selection, and the content preview at the end.
func (m *Model) renderStagePanel(session conversation.Session) string {
	switch session.Stage {
	case conversation.StageBriefPending:
		if session.PendingBrief == nil {
			return ""
		}
		return m.renderBriefCard("Draft Brief", *session.PendingBrief) +
			m.styles.System.Render("Review the brief, refine it in chat, or /confirm to lock it in.") + "\n\n"

	case conversation.StageBriefConfirmed:
		var b strings.Builder
		if session.ConfirmedBrief != nil {
			_, _ = b.WriteString(m.renderBriefCard("Confirmed Brief", *session.ConfirmedBrief))
		}
		_, _ = b.WriteString(m.styles.System.Render("Now pick products, e.g. \"add the sage green paint\"."))
		_, _ = b.WriteString("\n\n")
		return b.String()

	case conversation.StageProductReview:
		return m.renderProductList(session.Selected) +
			m.styles.System.Render("Adjust the selection in chat, or /generate when ready.") + "\n\n"

	case conversation.StageContentPreview:
		var b strings.Builder
		_, _ = b.WriteString(m.renderProductList(session.Selected))
		if session.Generated != nil {
			_, _ = b.WriteString(m.renderContentPreview(*session.Generated))
		}
		return b.String()
	}
	return ""
}

// renderBriefCard renders the structured brief as a bordered card, empty
// fields omitted.
func (m *Model) renderBriefCard(title string, brief content.CreativeBrief) string {
	var b strings.Builder
	_, _ = b.WriteString(m.styles.PanelTitle.Render(title))
	_, _ = b.WriteString("\n")

	for _, f := range brief.Fields() {
		if f.Value == "" {
			continue
		}
		_, _ = b.WriteString(m.styles.FieldLabel.Render(f.Label + ": "))
		_, _ = b.WriteString(f.Value)
		_, _ = b.WriteString("\n")
	}

	return m.styles.PanelBorder.Render(strings.TrimRight(b.String(), "\n")) + "\n\n"
}

// renderProductList renders the selected products with color swatches.
func (m *Model) renderProductList(products []content.Product) string {
	if len(products) == 0 {
		return ""
	}

	var b strings.Builder
	_, _ = b.WriteString(m.styles.PanelTitle.Render(fmt.Sprintf("Selected Products (%d)", len(products))))
	_, _ = b.WriteString("\n")

	for i, p := range products {
		_, _ = b.WriteString(fmt.Sprintf("%2d. ", i+1))
		_, _ = b.WriteString(m.styles.RenderSwatch(p.HexValue))
		_, _ = b.WriteString(p.ProductName)
		if p.SKU != "" {
			_, _ = b.WriteString(m.styles.System.Render(" [" + p.SKU + "]"))
		}
		if p.Price > 0 {
			_, _ = b.WriteString(" " + m.styles.Price.Render(fmt.Sprintf("$%.2f", p.Price)))
		}
		_, _ = b.WriteString("\n")
	}

	return m.styles.PanelBorder.Render(strings.TrimRight(b.String(), "\n")) + "\n\n"
}

// renderContentPreview renders the generated content with its compliance
// verdict. Content that requires modification is flagged before the text so
// the verdict cannot be missed.
func (m *Model) renderContentPreview(g content.GeneratedContent) string {
	var b strings.Builder
	_, _ = b.WriteString(m.styles.PanelTitle.Render("Generated Content"))
	_, _ = b.WriteString("\n")

	switch {
	case g.Error != "":
		_, _ = b.WriteString(m.styles.Error.Render(g.Error))
		_, _ = b.WriteString("\n")
		_, _ = b.WriteString(m.styles.System.Render("/regenerate to try again."))

	default:
		_, _ = b.WriteString(m.renderComplianceVerdict(g))

		if g.TextContent != "" {
			_, _ = b.WriteString("\n")
			_, _ = b.WriteString(m.markdown.Render(g.TextContent))
			_, _ = b.WriteString("\n")
		}
		if g.TextError != "" {
			_, _ = b.WriteString(m.styles.Error.Render("Text generation failed: " + g.TextError))
			_, _ = b.WriteString("\n")
		}

		if g.ImageContent != "" {
			_, _ = b.WriteString(m.styles.FieldLabel.Render("Image: "))
			_, _ = b.WriteString(g.ImageContent)
			_, _ = b.WriteString("\n")
		}
		if g.ImageError != "" {
			_, _ = b.WriteString(m.styles.Error.Render("Image generation failed: " + g.ImageError))
			_, _ = b.WriteString("\n")
		}

		_, _ = b.WriteString(m.styles.System.Render("/regenerate for a new take, or adjust products and /generate."))
	}

	return m.styles.PanelBorder.Render(strings.TrimRight(b.String(), "\n")) + "\n\n"
}

// renderComplianceVerdict renders the review outcome and any violations,
// errors first.
func (m *Model) renderComplianceVerdict(g content.GeneratedContent) string {
	var b strings.Builder

	switch {
	case g.RequiresModification:
		_, _ = b.WriteString(m.styles.SeverityError.Render("✗ Compliance review: changes required"))
	case len(g.Violations) > 0:
		_, _ = b.WriteString(m.styles.SeverityWarning.Render("⚠ Compliance review: advisory notes"))
	default:
		_, _ = b.WriteString(m.styles.Approved.Render("✓ Approved by compliance review"))
	}
	_, _ = b.WriteString("\n")

	errs, warns, infos := g.ViolationsBySeverity()
	for _, v := range errs {
		_, _ = b.WriteString(m.renderViolation(m.styles.SeverityError, "error", v))
	}
	for _, v := range warns {
		_, _ = b.WriteString(m.renderViolation(m.styles.SeverityWarning, "warning", v))
	}
	for _, v := range infos {
		_, _ = b.WriteString(m.renderViolation(m.styles.SeverityInfo, "info", v))
	}

	return b.String()
}

func (m *Model) renderViolation(style lipgloss.Style, label string, v content.ComplianceViolation) string {
	var b strings.Builder
	_, _ = b.WriteString("  ")
	_, _ = b.WriteString(style.Render("[" + label + "] "))
	_, _ = b.WriteString(v.Message)
	if v.Field != "" {
		_, _ = b.WriteString(m.styles.System.Render(" (" + v.Field + ")"))
	}
	_, _ = b.WriteString("\n")
	if v.Suggestion != "" {
		_, _ = b.WriteString(m.styles.System.Render("      → " + v.Suggestion))
		_, _ = b.WriteString("\n")
	}
	return b.String()
}
