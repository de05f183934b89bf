package version

import (
	"encoding/json"
	"strings"

	goversion "github.com/hashicorp/go-version"
	"golang.org/x/xerrors"
)

var ErrInvalidVersion = xerrors.New("invalid version")

// Version is a semantic version such as a fixed release of nginx.
type Version struct {
	v *goversion.Version
}

func Parse(s string) (*Version, error) {
	v, err := goversion.NewSemver(strings.TrimSpace(s))
	if err != nil {
		return nil, xerrors.Errorf("%w %q: %s", ErrInvalidVersion, s, err)
	}
	return &Version{v: v}, nil
}

func MustParse(s string) *Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// Compare returns -1, 0 or 1 as v is lower than, equal to or greater than o.
func (v *Version) Compare(o *Version) int {
	return v.v.Compare(o.v)
}

func (v *Version) Equal(o *Version) bool {
	return v.Compare(o) == 0
}

// String returns the version as it was written, e.g. "1.20.1".
func (v *Version) String() string {
	return v.v.Original()
}

func (v *Version) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

func (v *Version) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*v = *parsed
	return nil
}
