// Package formstate decides whether a form differs from its last-saved
// baseline, which gates the save and reset actions.
package formstate

import (
	"sort"
	"strconv"
	"strings"

	"github.com/templui/folio/internal/datemath"
)

// DescriptionKey is left out of snapshots unless the description is
// user-owned, so regenerated text alone never marks a form dirty.
const DescriptionKey = "description"

// Fields is the editable projection of a form, keyed by field name.
type Fields map[string]string

type Options struct {
	IncludeDescription bool
	// DateFields are normalized to YYYY-MM-DD before comparison.
	DateFields []string
}

// Key is an opaque comparable snapshot.
type Key string

// Snapshot normalizes fields into a canonical Key: values are trimmed, dates
// are ISO-normalized and keys are sorted.
func Snapshot(fields Fields, opts Options) Key {
	dates := make(map[string]bool, len(opts.DateFields))
	for _, name := range opts.DateFields {
		dates[name] = true
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		if name == DescriptionKey && !opts.IncludeDescription {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		value := strings.TrimSpace(fields[name])
		if dates[name] {
			value = datemath.ToISO(value)
		}
		b.WriteString(strconv.Quote(name))
		b.WriteByte('=')
		b.WriteString(strconv.Quote(value))
		b.WriteByte(';')
	}
	return Key(b.String())
}

type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// IsDirty reports whether a form may be submitted. Create forms are always
// dirty; edit forms only when the snapshot moved off the baseline.
func IsDirty(mode Mode, baseline, current Key) bool {
	if mode == ModeCreate {
		return true
	}
	return baseline != current
}
