package notify

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// Subject builds the summary email subject line for a reporting date.
func Subject(asOfDate time.Time) string {
	return fmt.Sprintf("DBG KRI Summary – %s", asOfDate.Format("2006-01-02"))
}

// ComposeBody wraps the narrative summary in the HTML email template. When a
// dashboard URL is available the footer carries a call-to-action button;
// otherwise it carries an unavailability notice.
func ComposeBody(summaryText, dashboardName, dashboardURL string) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Arial, sans-serif; color: #1a1a1a; max-width: 720px; margin: 0 auto;">`)
	b.WriteString(`<h2 style="color: #0b3d2e;">Monthly Executive Risk Summary</h2>`)

	for _, para := range splitParagraphs(summaryText) {
		b.WriteString(`<p style="line-height: 1.6;">`)
		b.WriteString(html.EscapeString(para))
		b.WriteString(`</p>`)
	}

	if dashboardURL != "" {
		label := dashboardName
		if label == "" {
			label = "Dashboard"
		}
		fmt.Fprintf(&b,
			`<p style="margin-top: 28px;"><a href="%s" style="background-color: #0b3d2e; color: #ffffff; padding: 12px 24px; text-decoration: none; border-radius: 4px; display: inline-block;">View %s</a></p>`,
			html.EscapeString(dashboardURL), html.EscapeString(label))
	} else {
		b.WriteString(`<p style="margin-top: 28px; color: #6b6b6b; font-style: italic;">Dashboard link currently unavailable.</p>`)
	}

	b.WriteString(`<p style="margin-top: 32px; font-size: 12px; color: #6b6b6b;">This report was generated automatically by the DBG risk insight service.</p>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

func splitParagraphs(text string) []string {
	var out []string
	for _, chunk := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(chunk)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		out = []string{strings.TrimSpace(text)}
	}
	return out
}
