package catalog

import "strings"

// CanonicalCreateTable renders t's schema as the canonical CREATE TABLE text
// returned by GetTable (spec.md §6, testable property "SQL round-trip").
// Scenario 4 of spec.md §8 fixes the exact shape:
//
//	CREATE TABLE name (
//	  id INTEGER PRIMARY KEY NOT NULL,
//	)
func CanonicalCreateTable(t Table) string {
	var b strings.Builder
	b.WriteString("CREATE TABLE ")
	b.WriteString(t.Name)
	b.WriteString(" (\n")
	for _, c := range t.Columns {
		b.WriteString("  ")
		b.WriteString(c.Name)
		b.WriteString(" ")
		b.WriteString(c.Type.String())
		if c.Name == t.PrimaryKey {
			b.WriteString(" PRIMARY KEY NOT NULL")
		} else if c.Nullable {
			// nullable is the default for non-primary columns, so the
			// canonical form writes no NULL suffix for them
		} else {
			b.WriteString(" NOT NULL")
		}
		b.WriteString(",\n")
	}
	b.WriteString(")")
	return b.String()
}
