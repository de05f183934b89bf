package nginx

import (
	"net/url"
	"strings"

	"github.com/aquasecurity/nginx-vuln-list-update/types"
)

const (
	cveHost      = "cve.mitre.org"
	advisoryHost = "mailman.nginx.org"

	severityMarker      = "Severity"
	notVulnerableMarker = "Not vulnerable"
	vulnerableMarker    = "Vulnerable"
)

type kind int

const (
	kindIgnored kind = iota
	kindSeverity
	kindNotVulnerable
	kindVulnerable
	kindCVELink
	kindAdvisoryLink
	kindLink
)

// classify decides what a non-summary node carries. For links the returned value is the resolved URL,
// for text it is the text itself.
func classify(n Node, base *url.URL) (kind, string) {
	switch n := n.(type) {
	case Link:
		link := resolve(base, n.Href)
		switch {
		case strings.Contains(link, cveHost):
			return kindCVELink, link
		case strings.Contains(link, advisoryHost):
			return kindAdvisoryLink, link
		}
		return kindLink, link
	case Text:
		// "Not vulnerable" must be tested before "Vulnerable"
		switch {
		case strings.Contains(n.Value, severityMarker):
			return kindSeverity, n.Value
		case strings.Contains(n.Value, notVulnerableMarker):
			return kindNotVulnerable, n.Value
		case strings.Contains(n.Value, vulnerableMarker):
			return kindVulnerable, n.Value
		}
	}
	return kindIgnored, ""
}

func resolve(base *url.URL, href string) string {
	u, err := base.Parse(href)
	if err != nil {
		return href
	}
	return u.String()
}

// Interpret folds the nodes of a fragment from left to right. The first node is the summary whatever it
// contains. The severity attached to the mailing-list advisory link is the last severity line seen before
// that link, so the page has to list "Severity: ..." first.
func Interpret(f Fragment, base *url.URL) ParsedFields {
	var (
		fields       ParsedFields
		lastSeverity string
	)
	for i, n := range f {
		if i == 0 {
			fields.Summary = n.text()
			continue
		}

		k, value := classify(n, base)
		switch k {
		case kindSeverity:
			fields.SeverityText = value
			lastSeverity = value
		case kindNotVulnerable:
			fields.NotVulnerableText = value
		case kindVulnerable:
			fields.VulnerableText = value
		case kindCVELink:
			fields.CVE = n.text()
			fields.References = append(fields.References, types.Reference{
				ReferenceID: fields.CVE,
				URL:         value,
			})
		case kindAdvisoryLink:
			fields.References = append(fields.References, types.Reference{
				URL: value,
				Severities: []types.VulnerabilitySeverity{
					{
						System: types.GenericTextual,
						Value:  lastSeverity,
					},
				},
			})
		case kindLink:
			fields.References = append(fields.References, types.Reference{URL: value})
		}
	}
	return fields
}
