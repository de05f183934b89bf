package nginx_test

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasecurity/nginx-vuln-list-update/nginx"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []nginx.Fragment
	}{
		{
			name: "text, breaks and links",
			in: `<ul><li><p>Stack-based buffer overflow<br>Severity: major<br>` +
				`<a href="/download/patch.2013.chunked.txt">The patch</a>  <a>anchor</a></p></li></ul>`,
			want: []nginx.Fragment{
				{
					nginx.Text{Value: "Stack-based buffer overflow"},
					nginx.Text{},
					nginx.Text{Value: "Severity: major"},
					nginx.Text{},
					nginx.Link{Href: "/download/patch.2013.chunked.txt", Text: "The patch"},
					nginx.Text{Value: "  "},
					nginx.Text{Value: "anchor"},
				},
			},
		},
		{
			name: "paragraphs outside list items are skipped",
			in:   `<p>Patches are signed.</p><ul><li><p>first</p></li><li><p>second</p></li></ul>`,
			want: []nginx.Fragment{
				{nginx.Text{Value: "first"}},
				{nginx.Text{Value: "second"}},
			},
		},
		{
			name: "no advisories",
			in:   `<html><body><ul></ul></body></html>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := nginx.Segment(strings.NewReader(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSegment_Page(t *testing.T) {
	f, err := os.Open("testdata/security_advisories.html")
	require.NoError(t, err)
	defer f.Close()

	got, err := nginx.Segment(f)
	require.NoError(t, err)
	require.Len(t, got, 5)
	assert.Equal(t, nginx.Text{Value: "1-byte memory overwrite in resolver"}, got[1][0])
	assert.Equal(t, nginx.Text{Value: "Vulnerabilities with Windows directory aliases"}, got[3][0])
}
