package version

import (
	"encoding/json"
	"strings"

	"golang.org/x/exp/slices"
	"golang.org/x/xerrors"
)

const (
	NginxScheme = "nginx"
	versPrefix  = "vers:"
)

var ErrInvalidRange = xerrors.New("invalid version range")

type Comparator string

const (
	Equal              Comparator = "="
	GreaterThanOrEqual Comparator = ">="
	LessThanOrEqual    Comparator = "<="
	Any                Comparator = "*"
)

type Constraint struct {
	Comparator Comparator
	Version    *Version
}

func (c Constraint) String() string {
	switch c.Comparator {
	case Any:
		return string(Any)
	case Equal:
		return c.Version.String()
	}
	return string(c.Comparator) + c.Version.String()
}

// interval is one clause of a native range. A nil bound is unbounded.
type interval struct {
	lower, upper *Version
}

func (i interval) contains(v *Version) bool {
	if i.lower != nil && v.Compare(i.lower) < 0 {
		return false
	}
	if i.upper != nil && v.Compare(i.upper) > 0 {
		return false
	}
	return true
}

// Range is a set of versions expressed as a union of closed intervals.
type Range struct {
	scheme    string
	any       bool
	intervals []interval
}

// NewNginxRange parses the range notation used on the nginx security advisories page:
//
//	all                       every version
//	0.6.18-1.20.0             from 0.6.18 through 1.20.0
//	1.1.4-1.2.8, 1.3.9-1.4.0  union of clauses
//	1.5.0+                    1.5.0 and later
//	1.5.10                    exactly 1.5.10
func NewNginxRange(s string) (Range, error) {
	cleaned := strings.ToLower(strings.Join(strings.Fields(s), ""))
	if cleaned == "" {
		return Range{}, xerrors.Errorf("%w: empty range", ErrInvalidRange)
	}

	r := Range{scheme: NginxScheme}
	if cleaned == "all" {
		r.any = true
		return r, nil
	}

	for _, clause := range strings.Split(cleaned, ",") {
		i, err := parseClause(clause)
		if err != nil {
			return Range{}, xerrors.Errorf("%w %q: %s", ErrInvalidRange, s, err)
		}
		r.intervals = append(r.intervals, i)
	}
	r.intervals = merge(r.intervals)
	return r, nil
}

func MustNginxRange(s string) Range {
	r, err := NewNginxRange(s)
	if err != nil {
		panic(err)
	}
	return r
}

func parseClause(clause string) (interval, error) {
	switch {
	case clause == "":
		return interval{}, xerrors.New("empty clause")
	case strings.Contains(clause, "-"):
		bounds := strings.Split(clause, "-")
		if len(bounds) != 2 {
			return interval{}, xerrors.Errorf("unexpected clause %q", clause)
		}
		lower, err := Parse(bounds[0])
		if err != nil {
			return interval{}, err
		}
		upper, err := Parse(bounds[1])
		if err != nil {
			return interval{}, err
		}
		if lower.Compare(upper) > 0 {
			return interval{}, xerrors.Errorf("lower bound is greater than upper bound in %q", clause)
		}
		return interval{lower: lower, upper: upper}, nil
	case strings.HasSuffix(clause, "+"):
		lower, err := Parse(strings.TrimSuffix(clause, "+"))
		if err != nil {
			return interval{}, err
		}
		return interval{lower: lower}, nil
	}

	v, err := Parse(clause)
	if err != nil {
		return interval{}, err
	}
	return interval{lower: v, upper: v}, nil
}

// merge sorts intervals by lower bound and joins the ones that overlap or share a bound, so the
// result is disjoint and ascending.
func merge(intervals []interval) []interval {
	if len(intervals) == 0 {
		return nil
	}
	sorted := slices.Clone(intervals)
	slices.SortStableFunc(sorted, func(a, b interval) int {
		return compareBound(a.lower, b.lower, -1)
	})

	merged := []interval{sorted[0]}
	for _, next := range sorted[1:] {
		cur := &merged[len(merged)-1]
		if cur.upper != nil && next.lower != nil && next.lower.Compare(cur.upper) > 0 {
			merged = append(merged, next)
			continue
		}
		if compareBound(next.upper, cur.upper, 1) > 0 {
			cur.upper = next.upper
		}
	}
	return merged
}

// compareBound compares two bounds where nil stands for infinity with the given sign.
func compareBound(a, b *Version, nilSign int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return nilSign
	case b == nil:
		return -nilSign
	}
	return a.Compare(b)
}

func (r Range) Scheme() string {
	return r.scheme
}

func (r Range) IsZero() bool {
	return r.scheme == "" && !r.any && len(r.intervals) == 0
}

// Contains reports whether v falls in any clause of the range.
func (r Range) Contains(v *Version) bool {
	if r.any {
		return true
	}
	for _, i := range r.intervals {
		if i.contains(v) {
			return true
		}
	}
	return false
}

// Constraints returns the range as vers constraints sorted by version. Lower and upper bounds
// alternate since the intervals are disjoint.
func (r Range) Constraints() []Constraint {
	if r.any {
		return []Constraint{{Comparator: Any}}
	}

	var constraints []Constraint
	for _, i := range r.intervals {
		switch {
		case i.lower != nil && i.upper != nil && i.lower.Equal(i.upper):
			constraints = append(constraints, Constraint{Comparator: Equal, Version: i.lower})
		default:
			if i.lower != nil {
				constraints = append(constraints, Constraint{Comparator: GreaterThanOrEqual, Version: i.lower})
			}
			if i.upper != nil {
				constraints = append(constraints, Constraint{Comparator: LessThanOrEqual, Version: i.upper})
			}
		}
	}
	return constraints
}

// String renders the range as a vers URI, e.g. "vers:nginx/>=0.6.18|<=1.20.0".
func (r Range) String() string {
	if r.IsZero() {
		return ""
	}
	var parts []string
	for _, c := range r.Constraints() {
		parts = append(parts, c.String())
	}
	return versPrefix + r.scheme + "/" + strings.Join(parts, "|")
}

// ParseVers parses a vers URI produced by String.
func ParseVers(s string) (Range, error) {
	scheme, rest, ok := strings.Cut(strings.TrimPrefix(s, versPrefix), "/")
	if !ok || !strings.HasPrefix(s, versPrefix) || scheme == "" || rest == "" {
		return Range{}, xerrors.Errorf("%w: malformed vers %q", ErrInvalidRange, s)
	}

	r := Range{scheme: scheme}
	if rest == string(Any) {
		r.any = true
		return r, nil
	}

	var open *interval
	for _, c := range strings.Split(rest, "|") {
		comparator, raw := splitComparator(c)
		v, err := Parse(raw)
		if err != nil {
			return Range{}, xerrors.Errorf("%w %q: %s", ErrInvalidRange, s, err)
		}
		switch comparator {
		case GreaterThanOrEqual:
			if open != nil {
				r.intervals = append(r.intervals, *open)
			}
			open = &interval{lower: v}
		case LessThanOrEqual:
			if open == nil {
				open = &interval{}
			}
			open.upper = v
			r.intervals = append(r.intervals, *open)
			open = nil
		default:
			r.intervals = append(r.intervals, interval{lower: v, upper: v})
		}
	}
	if open != nil {
		r.intervals = append(r.intervals, *open)
	}
	r.intervals = merge(r.intervals)
	return r, nil
}

func splitComparator(c string) (Comparator, string) {
	for _, comparator := range []Comparator{GreaterThanOrEqual, LessThanOrEqual} {
		if strings.HasPrefix(c, string(comparator)) {
			return comparator, strings.TrimPrefix(c, string(comparator))
		}
	}
	return Equal, c
}

func (r Range) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Range) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*r = Range{}
		return nil
	}
	parsed, err := ParseVers(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
