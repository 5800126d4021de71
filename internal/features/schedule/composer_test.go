package schedule

import (
	"strings"
	"testing"
	"time"

	"inteldesk/internal/features/advisory"
)

func sampleAdvisory() *advisory.Advisory {
	published := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	return &advisory.Advisory{
		Title:            "Critical RCE in Widget Server",
		Severity:         "Critical",
		TLP:              "amber",
		ExecutiveSummary: "Widget Server is exploitable pre-auth.",
		Description:      "A crafted request reaches a deserialization sink.",
		CveIDs:           []string{"CVE-2026-0001"},
		IOCs: []advisory.IOC{
			{Type: "IP", Value: "203.0.113.9"},
		},
		Recommendations:  []string{"Patch to 2.1.5"},
		References:       []string{"https://vendor.example/advisory"},
		AffectedProducts: []string{"Widget Server 2.x"},
		TargetSectors:    []string{"Finance"},
		ThreatActor:      "FIN99",
		PublishedDate:    &published,
	}
}

func TestComposeHTMLIsDeterministic(t *testing.T) {
	adv := sampleAdvisory()

	first := ComposeHTML(adv, "please review", "track-1", "https://mail.example")
	second := ComposeHTML(adv, "please review", "track-1", "https://mail.example")

	if first != second {
		t.Error("two renders of identical inputs produced different bytes")
	}
}

func TestComposeHTMLSections(t *testing.T) {
	html := ComposeHTML(sampleAdvisory(), "", "track-1", "https://mail.example")

	for _, want := range []string{
		"Critical RCE in Widget Server",
		"TLP:AMBER",
		"Executive Summary",
		"Indicators of Compromise",
		"203.0.113.9",
		"CVE-2026-0001",
		"nvd.nist.gov",
		"Recommendations",
		"References",
		"FIN99",
		"March 14, 2026",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered HTML missing %q", want)
		}
	}
}

func TestComposeHTMLOmitsAbsentSections(t *testing.T) {
	html := ComposeHTML(&advisory.Advisory{Title: "Minimal"}, "", "", "https://mail.example")

	for _, absent := range []string{
		"Executive Summary",
		"Indicators of Compromise",
		"Recommendations",
		"Patch Details",
		"References",
		"Threat Actor",
	} {
		if strings.Contains(html, absent) {
			t.Errorf("rendered HTML contains %q for an advisory without that field", absent)
		}
	}
}

func TestComposeHTMLTrackingPixel(t *testing.T) {
	withPixel := ComposeHTML(sampleAdvisory(), "", "track-1", "https://mail.example")
	if !strings.Contains(withPixel, "https://mail.example/api/track/pixel?t=track-1") {
		t.Error("tracking pixel missing when tracking id is set")
	}

	withoutPixel := ComposeHTML(sampleAdvisory(), "", "", "https://mail.example")
	if strings.Contains(withoutPixel, "/api/track/pixel") {
		t.Error("tracking pixel present without a tracking id")
	}
}

func TestComposeHTMLRewritesLinks(t *testing.T) {
	html := ComposeHTML(sampleAdvisory(), "", "track-1", "https://mail.example")

	if !strings.Contains(html, "/api/track/link?t=track-1&amp;u=https%3A%2F%2Fvendor.example%2Fadvisory") {
		t.Error("reference link not routed through the click redirect")
	}

	// Without a tracking id, the original href survives.
	plain := ComposeHTML(sampleAdvisory(), "", "", "https://mail.example")
	if !strings.Contains(plain, `href="https://vendor.example/advisory"`) {
		t.Error("untracked render should keep the original href")
	}
}

func TestComposeHTMLEscapesCustomMessage(t *testing.T) {
	html := ComposeHTML(sampleAdvisory(), `<script>alert("x")</script>`, "", "https://mail.example")

	if strings.Contains(html, "<script>") {
		t.Error("custom message was not HTML-escaped")
	}
	if !strings.Contains(html, "&lt;script&gt;") {
		t.Error("escaped custom message missing from output")
	}
}

func TestDefaultSubject(t *testing.T) {
	got := DefaultSubject(&advisory.Advisory{Title: "Bad Thing"})
	if got != "THREAT ALERT: Bad Thing" {
		t.Errorf("DefaultSubject = %q", got)
	}
}
