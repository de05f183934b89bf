package types

import (
	"encoding/json"
	"time"

	"github.com/package-url/packageurl-go"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/nginx-vuln-list-update/version"
)

type ScoringSystem string

// GenericTextual is a severity given as free text such as "medium" rather than a score.
const GenericTextual ScoringSystem = "generic_textual"

type VulnerabilitySeverity struct {
	System ScoringSystem `json:"system"`
	Value  string        `json:"value"`
}

type Reference struct {
	ReferenceID string                  `json:"reference_id"`
	URL         string                  `json:"url"`
	Severities  []VulnerabilitySeverity `json:"severities"`
}

type AffectedPackage struct {
	Package              packageurl.PackageURL
	AffectedVersionRange version.Range
	FixedVersion         *version.Version
}

type affectedPackageJSON struct {
	Package              string           `json:"package"`
	AffectedVersionRange version.Range    `json:"affected_version_range"`
	FixedVersion         *version.Version `json:"fixed_version,omitempty"`
}

func (p AffectedPackage) MarshalJSON() ([]byte, error) {
	return json.Marshal(affectedPackageJSON{
		Package:              p.Package.ToString(),
		AffectedVersionRange: p.AffectedVersionRange,
		FixedVersion:         p.FixedVersion,
	})
}

func (p *AffectedPackage) UnmarshalJSON(b []byte) error {
	var v affectedPackageJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	purl, err := packageurl.FromString(v.Package)
	if err != nil {
		return xerrors.Errorf("failed to parse package URL %q: %w", v.Package, err)
	}
	*p = AffectedPackage{
		Package:              purl,
		AffectedVersionRange: v.AffectedVersionRange,
		FixedVersion:         v.FixedVersion,
	}
	return nil
}

type AdvisoryData struct {
	VulnerabilityID  string            `json:"vulnerability_id"`
	Summary          string            `json:"summary"`
	AffectedPackages []AffectedPackage `json:"affected_packages"`
	References       []Reference       `json:"references"`
	DatePublished    time.Time         `json:"date_published"`
}
