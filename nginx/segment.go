package nginx

import (
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/xerrors"
)

const fragmentSelector = "li p"

// Segment splits the advisories page into one fragment per "li p" paragraph, in page order.
// A page without advisories yields no fragments and no error.
func Segment(r io.Reader) ([]Fragment, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse the advisories page: %w", err)
	}

	var fragments []Fragment
	doc.Find(fragmentSelector).Each(func(_ int, p *goquery.Selection) {
		var f Fragment
		p.Contents().Each(func(_ int, s *goquery.Selection) {
			f = append(f, toNode(s))
		})
		fragments = append(fragments, f)
	})
	return fragments, nil
}

// toNode keeps every child so that positions survive; elements other than links, e.g. <br>, become their text.
func toNode(s *goquery.Selection) Node {
	if goquery.NodeName(s) == "a" {
		if href, ok := s.Attr("href"); ok && href != "" {
			return Link{Href: href, Text: s.Text()}
		}
	}
	return Text{Value: s.Text()}
}
