package core

import "strings"

// RowIDColumn is the implicit row-identity column of tables without a primary key.
const RowIDColumn = "rowid"

// StructureKind tells what a Structure was built from.
type StructureKind string

// Structure kinds.
const (
	KindTable StructureKind = "table"
	KindView  StructureKind = "view"
	KindQuery StructureKind = "query"
)

// ParseKind converts a user supplied kind name. Unknown names are reported as false.
func ParseKind(s string) (StructureKind, bool) {
	switch StructureKind(strings.ToLower(strings.TrimSpace(s))) {
	case KindTable:
		return KindTable, true
	case KindView:
		return KindView, true
	case KindQuery:
		return KindQuery, true
	}
	return "", false
}

// Column describes one column of a table or view as reported by the engine.
type Column struct {
	Name       string
	Type       string // declared type, free-form
	NotNull    bool
	Default    *string
	PrimaryKey bool
	Position   int
}

// StructureRef names a table or view without its schema.
type StructureRef struct {
	Name string
	Kind StructureKind
}

// Structure is the browsing context for one table, view or ad-hoc query.
// Exactly one Structure is current per session; mutations target it.
type Structure struct {
	Kind       StructureKind
	Name       string
	Columns    []Column
	PrimaryKey []string // in discovery order
	BaseQuery  string
	OrderBy    string
	Result     *ResultSet
}

// Editable reports whether rows of the structure may be inserted, updated or deleted.
func (s *Structure) Editable() bool {
	return s != nil && s.Kind == KindTable
}

// HasPrimaryKey reports whether rows are identified by declared key columns
// rather than by rowid.
func (s *Structure) HasPrimaryKey() bool {
	return len(s.PrimaryKey) > 0
}

// Column returns the column descriptor with the given name.
func (s *Structure) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Query returns the statement used to fetch the structure's rows.
func (s *Structure) Query() string {
	return s.BaseQuery + s.OrderBy
}
