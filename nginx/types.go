package nginx

import "github.com/aquasecurity/nginx-vuln-list-update/types"

// Node is one child of an advisory paragraph: either Text or Link.
type Node interface {
	text() string
}

type Text struct {
	Value string
}

func (t Text) text() string { return t.Value }

// Link is an anchor with a non-empty href. Href is kept as written in the page.
type Link struct {
	Href string
	Text string
}

func (l Link) text() string { return l.Text }

// Fragment holds the children of one advisory paragraph in document order.
type Fragment []Node

// ParsedFields is what a fragment says before versions are resolved. Empty strings mean the line was absent.
type ParsedFields struct {
	CVE               string
	Summary           string
	SeverityText      string
	NotVulnerableText string
	VulnerableText    string
	References        []types.Reference
}
