package utils

import (
	"os"
	"path/filepath"
	"time"

	"golang.org/x/xerrors"
)

const (
	lastUpdatedFile = "last_updated.json"
	etagsFile       = "etags.json"
)

type LastUpdated map[string]time.Time

// ETags maps a fetched URL to the ETag the server returned for it.
type ETags map[string]string

func (fs Fs) GetLastUpdatedDate(vulnListDir, dist string) (time.Time, error) {
	lastUpdated := LastUpdated{}
	if err := fs.ReadJSON(filepath.Join(vulnListDir, lastUpdatedFile), &lastUpdated); err != nil {
		return time.Time{}, xerrors.Errorf("failed to get last updated date: %w", err)
	}

	t, ok := lastUpdated[dist]
	if !ok {
		return time.Unix(0, 0), nil
	}
	return t, nil
}

func (fs Fs) SetLastUpdatedDate(vulnListDir, dist string, lastUpdatedDate time.Time) error {
	filePath := filepath.Join(vulnListDir, lastUpdatedFile)
	lastUpdated := LastUpdated{}
	if err := fs.ReadJSON(filePath, &lastUpdated); err != nil {
		return xerrors.Errorf("failed to get last updated date: %w", err)
	}
	lastUpdated[dist] = lastUpdatedDate

	if err := fs.AppFs.MkdirAll(vulnListDir, os.ModePerm); err != nil {
		return xerrors.Errorf("unable to create a directory: %w", err)
	}
	if err := fs.WriteJSON(filePath, lastUpdated); err != nil {
		return xerrors.Errorf("failed to write last updated date: %w", err)
	}
	return nil
}

func (fs Fs) GetETag(vulnListDir, url string) (string, error) {
	etags := ETags{}
	if err := fs.ReadJSON(filepath.Join(vulnListDir, etagsFile), &etags); err != nil {
		return "", xerrors.Errorf("failed to read etags: %w", err)
	}
	return etags[url], nil
}

func (fs Fs) SetETag(vulnListDir, url, etag string) error {
	filePath := filepath.Join(vulnListDir, etagsFile)
	etags := ETags{}
	if err := fs.ReadJSON(filePath, &etags); err != nil {
		return xerrors.Errorf("failed to read etags: %w", err)
	}
	if etag == "" {
		delete(etags, url)
	} else {
		etags[url] = etag
	}

	if err := fs.AppFs.MkdirAll(vulnListDir, os.ModePerm); err != nil {
		return xerrors.Errorf("unable to create a directory: %w", err)
	}
	if err := fs.WriteJSON(filePath, etags); err != nil {
		return xerrors.Errorf("failed to write etags: %w", err)
	}
	return nil
}
