package utils

import (
	"crypto/rand"
	"log"
	"math"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/parnurzeal/gorequest"
	"golang.org/x/xerrors"
)

// ErrNotModified is returned by FetchURLWithETag when the server answers 304.
var ErrNotModified = xerrors.New("not modified")

func CacheDir() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	dir := filepath.Join(cacheDir, "nginx-vuln-list-update")
	return dir
}

// VulnListDir returns the root of the vuln-list tree. VULN_LIST_DIR overrides the default under the cache dir.
func VulnListDir() string {
	return LookupEnv("VULN_LIST_DIR", filepath.Join(CacheDir(), "vuln-list"))
}

// FetchURL returns HTTP response body with retry
func FetchURL(url, apikey string, retry int) ([]byte, error) {
	body, _, err := FetchURLWithETag(url, apikey, "", retry)
	return body, err
}

// FetchURLWithETag performs a conditional GET. When etag is non-empty it is sent as If-None-Match
// and a 304 answer is reported as ErrNotModified without retrying. The returned string is the
// ETag header of the response, if any.
func FetchURLWithETag(url, apikey, etag string, retry int) (res []byte, newETag string, err error) {
	for i := 0; i <= retry; i++ {
		if i > 0 {
			wait := math.Pow(float64(i), 2) + float64(randInt()%10)
			log.Printf("retry after %f seconds\n", wait)
			time.Sleep(time.Duration(time.Duration(wait) * time.Second))
		}
		res, newETag, err = fetchURL(url, apikey, etag)
		if err == nil || xerrors.Is(err, ErrNotModified) {
			return res, newETag, err
		}
	}
	return nil, "", xerrors.Errorf("failed to fetch URL: %w", err)
}

func randInt() int {
	seed, _ := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	return int(seed.Int64())
}

func fetchURL(url, apikey, etag string) ([]byte, string, error) {
	req := gorequest.New().Get(url)
	if apikey != "" {
		req.Header.Add("api-key", apikey)
	}
	if etag != "" {
		req.Header.Add("If-None-Match", etag)
	}
	resp, body, errs := req.Type("text").EndBytes()
	if len(errs) > 0 {
		return nil, "", xerrors.Errorf("HTTP error. url: %s, err: %w", url, errs[0])
	}
	switch resp.StatusCode {
	case http.StatusOK:
		return body, resp.Header.Get("ETag"), nil
	case http.StatusNotModified:
		return nil, etag, ErrNotModified
	}
	return nil, "", xerrors.Errorf("HTTP error. status code: %d, url: %s", resp.StatusCode, url)
}

func LookupEnv(key, defaultValue string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultValue
}
