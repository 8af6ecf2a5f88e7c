package decl

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/eponymouse/columnal-sub000/types"
)

// Temporal is a date and/or time of one of the temporal kinds.  Fields not
// covered by the kind are zero.
type Temporal struct {
	Kind types.PrimitiveKind
	Time time.Time
}

var temporalLayouts = map[types.PrimitiveKind][]string{
	types.KindDate:     {"2006-01-02"},
	types.KindDateYM:   {"2006-01"},
	types.KindTime:     {"15:04:05.999999999", "15:04"},
	types.KindDateTime: {"2006-01-02 15:04:05.999999999", "2006-01-02 15:04"},
}

var temporalKeywords = map[types.PrimitiveKind]string{
	types.KindDate:          "date",
	types.KindDateYM:        "dateym",
	types.KindTime:          "time",
	types.KindDateTime:      "datetime",
	types.KindDateTimeZoned: "datetimezoned",
}

// TemporalKeyword is the literal prefix for a kind, eg "date" in date{..}.
func TemporalKeyword(k types.PrimitiveKind) string { return temporalKeywords[k] }

// TemporalKindByKeyword is the inverse of TemporalKeyword.
func TemporalKindByKeyword(kw string) (types.PrimitiveKind, bool) {
	for k, w := range temporalKeywords {
		if w == kw {
			return k, true
		}
	}
	return 0, false
}

// ParseTemporal reads the content of a temporal literal.  Zoned values end
// with a zone name (Europe/London) or an offset (+01:00).
func ParseTemporal(kind types.PrimitiveKind, content string) (Temporal, error) {
	content = strings.TrimSpace(content)
	if kind == types.KindDateTimeZoned {
		idx := strings.LastIndexByte(content, ' ')
		if idx < 0 {
			return Temporal{}, fmt.Errorf("zoned date-time %q needs a zone", content)
		}
		local, err := ParseTemporal(types.KindDateTime, content[:idx])
		if err != nil {
			return Temporal{}, err
		}
		loc, err := parseZone(content[idx+1:])
		if err != nil {
			return Temporal{}, err
		}
		t := local.Time
		return Temporal{Kind: kind, Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)}, nil
	}
	layouts, ok := temporalLayouts[kind]
	if !ok {
		return Temporal{}, fmt.Errorf("%s is not a temporal type", kind)
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, content); err == nil {
			return Temporal{Kind: kind, Time: t}, nil
		}
	}
	return Temporal{}, fmt.Errorf("cannot read %q as %s", content, kind)
}

func parseZone(z string) (*time.Location, error) {
	if strings.HasPrefix(z, "+") || strings.HasPrefix(z, "-") {
		t, err := time.Parse("-07:00", z)
		if err != nil {
			return nil, fmt.Errorf("invalid zone offset %q", z)
		}
		_, offset := t.Zone()
		return time.FixedZone(z, offset), nil
	}
	if z == "Z" || z == "UTC" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(z)
	if err != nil {
		return nil, fmt.Errorf("unknown zone %q", z)
	}
	return loc, nil
}

// Content renders the value the way ParseTemporal reads it.
func (t Temporal) Content() string {
	switch t.Kind {
	case types.KindDate:
		return t.Time.Format("2006-01-02")
	case types.KindDateYM:
		return t.Time.Format("2006-01")
	case types.KindTime:
		return t.Time.Format("15:04:05.999999999")
	case types.KindDateTime:
		return t.Time.Format("2006-01-02 15:04:05.999999999")
	case types.KindDateTimeZoned:
		return t.Time.Format("2006-01-02 15:04:05.999999999") + " " + t.Time.Location().String()
	}
	return t.Time.String()
}

// Literal renders the value as a literal, eg date{2024-02-29}.
func (t Temporal) Literal() string {
	return TemporalKeyword(t.Kind) + "{" + t.Content() + "}"
}

func (t Temporal) Compare(other Temporal) int {
	return t.Time.Compare(other.Time)
}
