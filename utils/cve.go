package utils

import (
	"strings"

	"golang.org/x/xerrors"
)

var ErrInvalidCVEID = xerrors.New("invalid CVE-ID format")

// CVEYear returns the year part of a CVE-ID, e.g. "2021" for CVE-2021-23017.
func CVEYear(cveID string) (string, error) {
	s := strings.Split(cveID, "-")
	if len(s) != 3 || s[0] != "CVE" {
		return "", xerrors.Errorf("%w: %q", ErrInvalidCVEID, cveID)
	}
	return s[1], nil
}
