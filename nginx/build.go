package nginx

import (
	"strings"
	"time"

	"github.com/package-url/packageurl-go"
	"golang.org/x/xerrors"

	"github.com/aquasecurity/nginx-vuln-list-update/types"
	"github.com/aquasecurity/nginx-vuln-list-update/version"
)

const (
	packageName   = "nginx"
	windowsMarker = "nginx/Windows"
	noFixMarker   = "none"
)

// Build resolves the version lines of a fragment into an advisory.
//
// "Vulnerable: nginx/Windows 0.7.52-1.3.0" yields a package qualified with os=windows and the range
// 0.7.52-1.3.0. Every token of "Not vulnerable: 1.21.0+, 1.20.1+" becomes one affected package
// sharing that range. A token containing "none" ends the list: an affected package without a fixed
// version cannot be told apart from one with an unbounded range, so nothing is emitted for it or for
// the tokens after it. When the "Not vulnerable" line is missing entirely, a single package without a
// fixed version is emitted.
func Build(fields ParsedFields, now time.Time) (types.AdvisoryData, error) {
	var qualifiers packageurl.Qualifiers
	_, rangeText, _ := strings.Cut(fields.VulnerableText, ":")
	if strings.Contains(rangeText, windowsMarker) {
		qualifiers = packageurl.QualifiersFromMap(map[string]string{"os": "windows"})
		rangeText = strings.ReplaceAll(rangeText, windowsMarker, "")
	}

	affectedRange, err := version.NewNginxRange(rangeText)
	if err != nil {
		return types.AdvisoryData{}, xerrors.Errorf("failed to parse the vulnerable versions of %q: %w", fields.Summary, err)
	}
	purl := packageurl.NewPackageURL(packageurl.TypeGeneric, "", packageName, "", qualifiers, "")

	fixedVersions, err := parseFixedVersions(fields.NotVulnerableText)
	if err != nil {
		return types.AdvisoryData{}, xerrors.Errorf("failed to parse the fixed versions of %q: %w", fields.Summary, err)
	}

	var affected []types.AffectedPackage
	if fields.NotVulnerableText == "" {
		affected = append(affected, types.AffectedPackage{
			Package:              *purl,
			AffectedVersionRange: affectedRange,
		})
	}
	for _, fixed := range fixedVersions {
		affected = append(affected, types.AffectedPackage{
			Package:              *purl,
			AffectedVersionRange: affectedRange,
			FixedVersion:         fixed,
		})
	}

	return types.AdvisoryData{
		VulnerabilityID:  fields.CVE,
		Summary:          fields.Summary,
		AffectedPackages: affected,
		References:       fields.References,
		DatePublished:    now.UTC(),
	}, nil
}

func parseFixedVersions(notVulnerable string) ([]*version.Version, error) {
	_, list, _ := strings.Cut(notVulnerable, ":")

	var fixed []*version.Version
	for _, token := range strings.Split(list, ",") {
		token = strings.TrimSuffix(strings.TrimSpace(token), "+")
		if token == "" {
			continue
		}
		if strings.Contains(token, noFixMarker) {
			break
		}
		v, err := version.Parse(token)
		if err != nil {
			return nil, err
		}
		fixed = append(fixed, v)
	}
	return fixed, nil
}
