package nginx

import (
	"bytes"
	"iter"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/nginx-vuln-list-update/types"
	"github.com/aquasecurity/nginx-vuln-list-update/utils"
)

const (
	advisoriesURL = "https://nginx.org/en/security_advisories.html"
	baseURL       = "https://nginx.org"
	nginxDir      = "nginx"
	retry         = 3
)

type options struct {
	url         string
	baseURL     *url.URL
	vulnListDir string
	retry       int
	appFs       afero.Fs
	clock       func() time.Time
}

type option func(*options)

func WithURL(url string) option {
	return func(opts *options) { opts.url = url }
}

// WithBaseURL sets the origin relative links on the page are resolved against.
func WithBaseURL(u *url.URL) option {
	return func(opts *options) { opts.baseURL = u }
}

func WithVulnListDir(dir string) option {
	return func(opts *options) { opts.vulnListDir = dir }
}

func WithRetry(retry int) option {
	return func(opts *options) { opts.retry = retry }
}

func WithAppFs(fs afero.Fs) option {
	return func(opts *options) { opts.appFs = fs }
}

func WithClock(clock func() time.Time) option {
	return func(opts *options) { opts.clock = clock }
}

type Config struct {
	*options
}

func NewConfig(opts ...option) Config {
	o := &options{
		url:         advisoriesURL,
		baseURL:     lo.Must(url.Parse(baseURL)),
		vulnListDir: utils.VulnListDir(),
		retry:       retry,
		appFs:       afero.NewOsFs(),
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}

	return Config{
		options: o,
	}
}

func (c Config) Update() error {
	log.Println("Fetching nginx security advisories...")

	fs := utils.NewFs(c.appFs)
	etag, err := fs.GetETag(c.vulnListDir, c.url)
	if err != nil {
		return xerrors.Errorf("failed to get the etag of the nginx advisories page: %w", err)
	}

	page, newETag, err := utils.FetchURLWithETag(c.url, "", etag, c.retry)
	if xerrors.Is(err, utils.ErrNotModified) {
		log.Println("nginx security advisories are not modified, skip update")
		return nil
	} else if err != nil {
		return xerrors.Errorf("failed to fetch the nginx advisories page: %w", err)
	}

	fragments, err := Segment(bytes.NewReader(page))
	if err != nil {
		return xerrors.Errorf("failed to segment the nginx advisories page: %w", err)
	}

	// the tree is left untouched unless every advisory on the page builds
	var advisories []types.AdvisoryData
	for advisory, err := range c.advisories(fragments) {
		if err != nil {
			return xerrors.Errorf("failed to build nginx advisory: %w", err)
		}
		advisories = append(advisories, advisory)
	}

	dir := filepath.Join(c.vulnListDir, nginxDir)
	log.Printf("Remove nginx directory %s", dir)
	if err = c.appFs.RemoveAll(dir); err != nil {
		return xerrors.Errorf("failed to remove nginx directory: %w", err)
	}
	if err = c.appFs.MkdirAll(dir, os.ModePerm); err != nil {
		return xerrors.Errorf("failed to mkdir: %w", err)
	}

	bar := pb.StartNew(len(advisories))
	defer bar.Finish()
	for _, advisory := range advisories {
		if err = c.save(fs, dir, advisory); err != nil {
			return xerrors.Errorf("failed to save nginx advisory: %w", err)
		}
		bar.Increment()
	}

	if err = fs.SetETag(c.vulnListDir, c.url, newETag); err != nil {
		return xerrors.Errorf("failed to save the etag of the nginx advisories page: %w", err)
	}
	return nil
}

func (c Config) save(fs utils.Fs, dir string, advisory types.AdvisoryData) error {
	if _, err := utils.CVEYear(advisory.VulnerabilityID); err != nil {
		log.Printf("skip nginx advisory %q without a valid CVE-ID: %s", advisory.Summary, err)
		return nil
	}
	return fs.SaveCVEPerYear(dir, advisory.VulnerabilityID, advisory)
}

// Advisories fetches the advisories page and yields one advisory per fragment in page order.
// The sequence stops at the first error; advisories yielded before it stand.
func (c Config) Advisories() iter.Seq2[types.AdvisoryData, error] {
	return func(yield func(types.AdvisoryData, error) bool) {
		page, err := utils.FetchURL(c.url, "", c.retry)
		if err != nil {
			yield(types.AdvisoryData{}, xerrors.Errorf("failed to fetch the nginx advisories page: %w", err))
			return
		}
		fragments, err := Segment(bytes.NewReader(page))
		if err != nil {
			yield(types.AdvisoryData{}, xerrors.Errorf("failed to segment the nginx advisories page: %w", err))
			return
		}
		for advisory, err := range c.advisories(fragments) {
			if !yield(advisory, err) {
				return
			}
		}
	}
}

func (c Config) advisories(fragments []Fragment) iter.Seq2[types.AdvisoryData, error] {
	return func(yield func(types.AdvisoryData, error) bool) {
		for _, f := range fragments {
			advisory, err := Build(Interpret(f, c.baseURL), c.clock())
			if err != nil {
				yield(types.AdvisoryData{}, err)
				return
			}
			if !yield(advisory, nil) {
				return
			}
		}
	}
}
