// Package columns maps arbitrary or localized header names onto the small
// canonical vocabulary the pipeline understands, and classifies which fields
// aggregate by numeric maximum rather than by most recent value.
package columns

import (
	"strconv"
	"strings"

	"github.com/SFDataHub/scanpipe/internal/domain/model"
)

// Canonical semantic column names. Matching against source headers is
// case-insensitive and ignores whitespace and underscores, so "Guild_ID",
// "guild id", and "GuildId" are distinct from these only in spelling that
// survives folding.
const (
	FieldID              = "ID"
	FieldIdentifier      = "Identifier"
	FieldGuildIdentifier = "Guild Identifier"
	FieldServer          = "Server"
	FieldName            = "Name"
	FieldTimestamp       = "Timestamp"
	FieldMemberCount     = "Guild Member Count"

	FieldStrength     = "Strength"
	FieldDexterity    = "Dexterity"
	FieldIntelligence = "Intelligence"
	FieldConstitution = "Constitution"
	FieldLuck         = "Luck"
	FieldAttribute    = "Attribute"
)

// maxAggregated holds the folded names of fields whose period aggregate is
// the numeric maximum observed. Any header whose folded name contains
// "equipment" joins the set implicitly.
var maxAggregated = map[string]struct{}{
	Fold(FieldStrength):     {},
	Fold(FieldDexterity):    {},
	Fold(FieldIntelligence): {},
	Fold(FieldConstitution): {},
	Fold(FieldLuck):         {},
	Fold(FieldAttribute):    {},
}

// Fold canonicalizes a header name: lowercase with all whitespace and
// underscores removed.
func Fold(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		switch r {
		case ' ', '\t', '_':
			continue
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Resolve returns the first row value whose folded key matches the folded
// canonical name. Absence means the caller must treat the field as missing;
// required fields make the row a skip, never a guess.
func Resolve(row model.RawRow, canonical string) (string, bool) {
	want := Fold(canonical)
	for _, k := range row.Keys() {
		if Fold(k) == want {
			v, _ := row.Get(k)
			return v, true
		}
	}
	return "", false
}

// IsMaxAggregated reports whether a header reduces by numeric maximum.
func IsMaxAggregated(header string) bool {
	folded := Fold(header)
	if _, ok := maxAggregated[folded]; ok {
		return true
	}
	return strings.Contains(folded, "equipment")
}

// LenientNumber parses a value as a number after discarding every rune that
// is not a digit, sign, or decimal point. The coercion is deliberately lossy
// ("1.234.567" style grouping collapses, units vanish); keeping it behind one
// named function makes that auditable. Returns false when nothing numeric
// remains.
func LenientNumber(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '-' || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" || cleaned == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
