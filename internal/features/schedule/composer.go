package schedule

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"inteldesk/internal/features/advisory"
)

// The composer is a pure function of its inputs: the same advisory
// snapshot, custom message, tracking id and base URL always render the
// same bytes, so a manual resend after a transport failure delivers
// identical content. Absent optional fields omit their section
// entirely.

func severityColor(severity string) string {
	switch strings.ToLower(severity) {
	case "critical":
		return "#dc2626"
	case "high":
		return "#ea580c"
	case "medium":
		return "#eab308"
	default:
		return "#3b82f6"
	}
}

// DefaultSubject is used when a schedule request carries no subject of
// its own.
func DefaultSubject(adv *advisory.Advisory) string {
	return "THREAT ALERT: " + adv.Title
}

// trackedLink rewrites an outbound href through the click-tracking
// redirect, carrying the tracking id and the encoded original target.
// Without a tracking id the original href is used untouched.
func trackedLink(baseURL, trackingID, rawURL, label, linkID string) string {
	href := rawURL
	if trackingID != "" {
		href = fmt.Sprintf("%s/api/track/link?t=%s&u=%s&l=%s",
			baseURL,
			url.QueryEscape(trackingID),
			url.QueryEscape(rawURL),
			url.QueryEscape(linkID))
	}
	return fmt.Sprintf(`<a href="%s" style="color:#06b6d4;text-decoration:none;" rel="noopener noreferrer" target="_blank">%s</a>`,
		html.EscapeString(href), html.EscapeString(label))
}

// ComposeHTML renders the full advisory email body.
func ComposeHTML(adv *advisory.Advisory, customMessage, trackingID, baseURL string) string {
	var b strings.Builder

	b.WriteString(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>`)
	b.WriteString(html.EscapeString(adv.Title))
	b.WriteString(`</title>
</head>
<body style="margin:0;padding:0;font-family:Arial,Helvetica,sans-serif;background:#0f172a;color:#e2e8f0;">
<div style="max-width:800px;margin:0 auto;padding:20px;">
`)

	// Header
	b.WriteString(`<div style="background:linear-gradient(135deg,#6366f1 0%,#8b5cf6 100%);padding:30px;text-align:center;border-radius:12px 12px 0 0;">`)
	b.WriteString(`<h1 style="margin:0 0 10px 0;font-size:26px;color:#ffffff;">`)
	b.WriteString(html.EscapeString(adv.Title))
	b.WriteString(`</h1>`)
	if adv.Severity != "" {
		fmt.Fprintf(&b,
			`<span style="display:inline-block;padding:8px 16px;border-radius:20px;font-size:13px;font-weight:bold;text-transform:uppercase;background:%s;color:#ffffff;">%s</span>`,
			severityColor(adv.Severity), html.EscapeString(adv.Severity))
	}
	if adv.TLP != "" {
		fmt.Fprintf(&b,
			`<span style="display:inline-block;padding:8px 16px;border-radius:20px;font-size:13px;font-weight:bold;margin-left:8px;background:#334155;color:#ffffff;">TLP:%s</span>`,
			html.EscapeString(strings.ToUpper(adv.TLP)))
	}
	b.WriteString(`</div>`)

	b.WriteString(`<div style="background:rgba(15,23,42,0.95);padding:30px;border-radius:0 0 12px 12px;">`)

	// Custom message (HTML-escaped, inserted verbatim otherwise)
	if customMessage != "" {
		b.WriteString(`<div style="background:rgba(5,150,105,0.2);border:1px solid rgba(16,185,129,0.5);border-radius:8px;padding:15px;margin-bottom:20px;">`)
		b.WriteString(html.EscapeString(customMessage))
		b.WriteString(`</div>`)
	}

	if adv.ExecutiveSummary != "" {
		writeSection(&b, "Executive Summary", html.EscapeString(adv.ExecutiveSummary))
	}
	if adv.Description != "" {
		writeSection(&b, "Description", html.EscapeString(adv.Description))
	}

	if len(adv.AffectedProducts) > 0 {
		writeSection(&b, "Affected Products", tagList(adv.AffectedProducts))
	}
	if len(adv.TargetSectors) > 0 {
		writeSection(&b, "Target Sectors", tagList(adv.TargetSectors))
	}
	if adv.ThreatActor != "" {
		writeSection(&b, "Threat Actor", html.EscapeString(adv.ThreatActor))
	}

	if len(adv.CveIDs) > 0 {
		var items []string
		for _, cve := range adv.CveIDs {
			nvdURL := "https://nvd.nist.gov/vuln/detail/" + url.PathEscape(cve)
			items = append(items, "<li>"+trackedLink(baseURL, trackingID, nvdURL, cve, "cve-"+cve)+"</li>")
		}
		writeSection(&b, "CVE References", `<ul style="margin:0;padding-left:20px;">`+strings.Join(items, "")+"</ul>")
	}

	if len(adv.IOCs) > 0 {
		var rows []string
		for _, ioc := range adv.IOCs {
			rows = append(rows, fmt.Sprintf(
				`<tr><td style="padding:6px 12px;border:1px solid #334155;">%s</td><td style="padding:6px 12px;border:1px solid #334155;font-family:monospace;">%s</td></tr>`,
				html.EscapeString(ioc.Type), html.EscapeString(ioc.Value)))
		}
		table := `<table style="border-collapse:collapse;width:100%;">` +
			`<tr><th style="padding:6px 12px;border:1px solid #334155;text-align:left;">Type</th><th style="padding:6px 12px;border:1px solid #334155;text-align:left;">Indicator</th></tr>` +
			strings.Join(rows, "") + `</table>`
		writeSection(&b, "Indicators of Compromise", table)
	}

	if len(adv.Recommendations) > 0 {
		writeSection(&b, "Recommendations", bulletList(adv.Recommendations))
	}
	if len(adv.PatchDetails) > 0 {
		writeSection(&b, "Patch Details", bulletList(adv.PatchDetails))
	}

	if len(adv.References) > 0 {
		var items []string
		for i, ref := range adv.References {
			items = append(items, "<li>"+trackedLink(baseURL, trackingID, ref, ref, fmt.Sprintf("ref-%d", i))+"</li>")
		}
		writeSection(&b, "References", `<ul style="margin:0;padding-left:20px;">`+strings.Join(items, "")+"</ul>")
	}

	if adv.PublishedDate != nil {
		fmt.Fprintf(&b,
			`<p style="font-size:12px;color:#94a3b8;">Published: %s</p>`,
			adv.PublishedDate.UTC().Format("January 2, 2006"))
	}

	b.WriteString(`</div>`)
	b.WriteString(`<p style="text-align:center;font-size:11px;color:#64748b;padding:15px;">This advisory was distributed by the IntelDesk threat advisory platform.</p>`)
	b.WriteString(`</div>`)

	// Invisible open-tracking pixel, last element before </body>.
	if trackingID != "" {
		fmt.Fprintf(&b,
			`<img src="%s/api/track/pixel?t=%s" width="1" height="1" style="display:block;width:1px;height:1px;" alt="" />`,
			baseURL, url.QueryEscape(trackingID))
	}

	b.WriteString(`</body>
</html>`)

	return b.String()
}

func writeSection(b *strings.Builder, title, innerHTML string) {
	b.WriteString(`<div style="background:rgba(51,65,85,0.5);border:1px solid rgba(148,163,184,0.3);border-radius:10px;padding:20px;margin-bottom:20px;">`)
	fmt.Fprintf(b, `<div style="font-size:18px;font-weight:bold;color:#60a5fa;margin-bottom:12px;">%s</div>`, html.EscapeString(title))
	b.WriteString(innerHTML)
	b.WriteString(`</div>`)
}

func bulletList(items []string) string {
	var lis []string
	for _, item := range items {
		lis = append(lis, "<li>"+html.EscapeString(item)+"</li>")
	}
	return `<ul style="margin:0;padding-left:20px;">` + strings.Join(lis, "") + "</ul>"
}

func tagList(items []string) string {
	var tags []string
	for _, item := range items {
		tags = append(tags, fmt.Sprintf(
			`<span style="display:inline-block;background:#d97706;color:#ffffff;padding:4px 10px;border-radius:6px;font-size:12px;margin:3px;">%s</span>`,
			html.EscapeString(item)))
	}
	return strings.Join(tags, "")
}
