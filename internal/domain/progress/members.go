package progress

import (
	"github.com/SFDataHub/scanpipe/internal/domain/columns"
	"github.com/SFDataHub/scanpipe/internal/domain/model"
)

// fieldTotalStats is resolved leniently like every other column but is not
// part of the canonical vocabulary; exports that lack it fall back to the
// base stat sum.
const fieldTotalStats = "Total Stats"

// baseStatFields are summed into a member's base stat total.
var baseStatFields = []string{
	columns.FieldStrength,
	columns.FieldDexterity,
	columns.FieldIntelligence,
	columns.FieldConstitution,
	columns.FieldLuck,
}

// StatsFromRow extracts the member stat summary out of one player row. The
// main stat comes from the Attribute column (the class's primary attribute
// as exported); missing or unparseable stat columns contribute zero.
func StatsFromRow(memberID string, row model.RawRow) model.MemberStats {
	m := model.MemberStats{ID: memberID}
	if name, ok := columns.Resolve(row, columns.FieldName); ok {
		m.Name = name
	}

	var baseSum int64
	for _, f := range baseStatFields {
		v := lenientInt(row, f)
		baseSum += v
		if f == columns.FieldConstitution {
			m.Con = v
		}
	}
	m.BaseStats = baseSum
	m.MainStat = lenientInt(row, columns.FieldAttribute)

	m.TotalStats = lenientInt(row, fieldTotalStats)
	if m.TotalStats == 0 {
		m.TotalStats = baseSum
	}
	return m
}

func lenientInt(row model.RawRow, field string) int64 {
	raw, ok := columns.Resolve(row, field)
	if !ok {
		return 0
	}
	n, ok := columns.LenientNumber(raw)
	if !ok {
		return 0
	}
	return int64(n)
}
