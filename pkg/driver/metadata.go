package driver

import (
	"fmt"
	"strings"
)

// ordered is an insertion-ordered, name-keyed collection. Adding an
// existing name replaces the item in place.
type ordered[T any] struct {
	names []string
	items map[string]T
}

func (o *ordered[T]) put(name string, item T) {
	if o.items == nil {
		o.items = make(map[string]T)
	}
	if _, exists := o.items[name]; !exists {
		o.names = append(o.names, name)
	}
	o.items[name] = item
}

func (o *ordered[T]) get(name string) (T, bool) {
	item, ok := o.items[name]
	return item, ok
}

func (o *ordered[T]) values() []T {
	out := make([]T, 0, len(o.names))
	for _, name := range o.names {
		out = append(out, o.items[name])
	}
	return out
}

func (o *ordered[T]) len() int { return len(o.names) }

// Metadata is the catalog > schema > table/view tree a connection reports
// for its data source.
type Metadata struct {
	dialect  Dialect
	catalogs ordered[*Catalog]
}

// NewMetadata returns an empty tree tagged with the connection's dialect.
func NewMetadata(dialect Dialect) *Metadata {
	return &Metadata{dialect: dialect}
}

// Dialect returns the dialect the metadata was reflected under.
func (m *Metadata) Dialect() Dialect { return m.dialect }

// AddCatalog adds or replaces a catalog by name.
func (m *Metadata) AddCatalog(c *Catalog) { m.catalogs.put(c.name, c) }

// Catalog returns the catalog with the given name.
func (m *Metadata) Catalog(name string) (*Catalog, bool) { return m.catalogs.get(name) }

// Catalogs returns the catalogs in insertion order.
func (m *Metadata) Catalogs() []*Catalog { return m.catalogs.values() }

// CurrentCatalog returns the catalog flagged current, if any.
func (m *Metadata) CurrentCatalog() (*Catalog, bool) {
	for _, c := range m.catalogs.values() {
		if c.current {
			return c, true
		}
	}
	return nil, false
}

// CurrentSchema returns the current schema of the current catalog.
func (m *Metadata) CurrentSchema() (*Schema, bool) {
	c, ok := m.CurrentCatalog()
	if !ok {
		return nil, false
	}
	return c.CurrentSchema()
}

// InferPrimaryKeys runs primary key inference over every schema.
func (m *Metadata) InferPrimaryKeys() {
	for _, c := range m.catalogs.values() {
		for _, s := range c.schemas.values() {
			s.InferPrimaryKeys()
		}
	}
}

// InferForeignKeys runs foreign key inference over every schema.
func (m *Metadata) InferForeignKeys() {
	for _, c := range m.catalogs.values() {
		for _, s := range c.schemas.values() {
			s.InferForeignKeys()
		}
	}
}

// Catalog is a database holding namespaces.
type Catalog struct {
	name    string
	current bool
	schemas ordered[*Schema]
}

func NewCatalog(name string, current bool) *Catalog {
	return &Catalog{name: name, current: current}
}

func (c *Catalog) Name() string             { return c.name }
func (c *Catalog) Current() bool            { return c.current }
func (c *Catalog) SetCurrent(current bool)  { c.current = current }
func (c *Catalog) AddSchema(s *Schema)      { c.schemas.put(s.name, s) }
func (c *Catalog) Schemas() []*Schema       { return c.schemas.values() }
func (c *Catalog) Schema(name string) (*Schema, bool) { return c.schemas.get(name) }

// CurrentSchema returns the schema flagged current, if any.
func (c *Catalog) CurrentSchema() (*Schema, bool) {
	for _, s := range c.schemas.values() {
		if s.current {
			return s, true
		}
	}
	return nil, false
}

// Schema is a namespace holding tables and views.
type Schema struct {
	name    string
	current bool
	tables  ordered[*Table]
	views   ordered[*View]
}

func NewSchema(name string, current bool) *Schema {
	return &Schema{name: name, current: current}
}

func (s *Schema) Name() string            { return s.name }
func (s *Schema) Current() bool           { return s.current }
func (s *Schema) SetCurrent(current bool) { s.current = current }
func (s *Schema) AddTable(t *Table)       { s.tables.put(t.name, t) }
func (s *Schema) Tables() []*Table        { return s.tables.values() }
func (s *Schema) Table(name string) (*Table, bool) { return s.tables.get(name) }
func (s *Schema) AddView(v *View)         { s.views.put(v.name, v) }
func (s *Schema) Views() []*View          { return s.views.values() }
func (s *Schema) View(name string) (*View, bool) { return s.views.get(name) }

// InferPrimaryKeys assigns an inferred primary key to each table without a
// declared one: first a NOT NULL column named "id", then a NOT NULL column
// named "<singular table name>_id". Matching is case-insensitive.
func (s *Schema) InferPrimaryKeys() {
	for _, table := range s.tables.values() {
		if table.primaryKey != nil {
			continue
		}
		column, ok := table.columnFold("id")
		if !ok {
			column, ok = table.columnFold(singularize(table.name) + "_id")
		}
		if !ok || !column.NotNull {
			continue
		}
		table.SetPrimaryKey(PrimaryKey{
			Name:     fmt.Sprintf("inferred_%s_pk", table.name),
			Columns:  []string{column.Name},
			Inferred: true,
		})
	}
}

// InferForeignKeys assigns inferred foreign keys based on naming: a column
// "<prefix>_id" referencing another table whose name is a plural form of
// the prefix and which has an "id" column. Columns already covered by a
// declared foreign key and self-references are skipped.
func (s *Schema) InferForeignKeys() {
	for _, table := range s.tables.values() {
		covered := make(map[string]bool)
		for _, fk := range table.foreignKeys.values() {
			for _, col := range fk.Columns {
				covered[strings.ToLower(col)] = true
			}
		}

		for _, column := range table.columns.values() {
			lower := strings.ToLower(column.Name)
			if !strings.HasSuffix(lower, "_id") || covered[lower] {
				continue
			}
			prefix := lower[:len(lower)-len("_id")]
			for _, candidate := range pluralCandidates(prefix) {
				if strings.EqualFold(candidate, table.name) {
					continue
				}
				referenced, ok := s.tableFold(candidate)
				if !ok {
					continue
				}
				if _, ok := referenced.columnFold("id"); !ok {
					continue
				}
				table.AddForeignKey(ForeignKey{
					Name:              fmt.Sprintf("inferred_%s_%s_fk", table.name, column.Name),
					Columns:           []string{column.Name},
					ReferencedTable:   referenced.name,
					ReferencedColumns: []string{"id"},
					Inferred:          true,
				})
				break
			}
		}
	}
}

func (s *Schema) tableFold(name string) (*Table, bool) {
	for _, t := range s.tables.values() {
		if strings.EqualFold(t.name, name) {
			return t, true
		}
	}
	return nil, false
}

// Table holds column, index and key definitions.
type Table struct {
	name        string
	columns     ordered[Column]
	indexes     ordered[Index]
	primaryKey  *PrimaryKey
	foreignKeys ordered[ForeignKey]
}

func NewTable(name string) *Table { return &Table{name: name} }

func (t *Table) Name() string          { return t.name }
func (t *Table) AddColumn(c Column)    { t.columns.put(c.Name, c) }
func (t *Table) Columns() []Column     { return t.columns.values() }
func (t *Table) Column(name string) (Column, bool) { return t.columns.get(name) }
func (t *Table) AddIndex(i Index)      { t.indexes.put(i.Name, i) }
func (t *Table) Indexes() []Index      { return t.indexes.values() }
func (t *Table) Index(name string) (Index, bool) { return t.indexes.get(name) }

func (t *Table) SetPrimaryKey(pk PrimaryKey) { t.primaryKey = &pk }

// PrimaryKey returns the declared or inferred primary key, if any.
func (t *Table) PrimaryKey() (PrimaryKey, bool) {
	if t.primaryKey == nil {
		return PrimaryKey{}, false
	}
	return *t.primaryKey, true
}

func (t *Table) AddForeignKey(fk ForeignKey) { t.foreignKeys.put(fk.Name, fk) }
func (t *Table) ForeignKeys() []ForeignKey   { return t.foreignKeys.values() }
func (t *Table) ForeignKey(name string) (ForeignKey, bool) { return t.foreignKeys.get(name) }

func (t *Table) columnFold(name string) (Column, bool) {
	for _, c := range t.columns.values() {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// View holds the column definitions of a view.
type View struct {
	name    string
	columns ordered[Column]
}

func NewView(name string) *View { return &View{name: name} }

func (v *View) Name() string       { return v.name }
func (v *View) AddColumn(c Column) { v.columns.put(c.Name, c) }
func (v *View) Columns() []Column  { return v.columns.values() }
func (v *View) Column(name string) (Column, bool) { return v.columns.get(name) }

// Column describes a table or view column. Default is the literal default
// expression, empty when none.
type Column struct {
	Name     string
	DataType string
	NotNull  bool
	Default  string
}

// Index describes an index on a table.
type Index struct {
	Name    string
	Columns []string
	Unique  bool
}

// PrimaryKey describes a declared or inferred primary key.
type PrimaryKey struct {
	Name     string
	Columns  []string
	Inferred bool
}

// ForeignKey describes a declared or inferred foreign key.
type ForeignKey struct {
	Name              string
	Columns           []string
	ReferencedTable   string
	ReferencedColumns []string
	Inferred          bool
}

// singularize reduces an English plural table name to its singular form
// with simple suffix rules. Unrecognized names pass through unchanged.
func singularize(name string) string {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "ies") && len(name) > 3:
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(lower, "ses") || strings.HasSuffix(lower, "xes") ||
		strings.HasSuffix(lower, "zes") || strings.HasSuffix(lower, "ches") ||
		strings.HasSuffix(lower, "shes"):
		return name[:len(name)-2]
	case strings.HasSuffix(lower, "ss"):
		return name
	case strings.HasSuffix(lower, "s") && len(name) > 1:
		return name[:len(name)-1]
	default:
		return name
	}
}

// pluralCandidates lists plural forms of an English noun, most specific
// first.
func pluralCandidates(name string) []string {
	if name == "" {
		return nil
	}
	lower := strings.ToLower(name)
	var candidates []string
	if strings.HasSuffix(lower, "y") && len(name) > 1 && !isVowel(lower[len(lower)-2]) {
		candidates = append(candidates, name[:len(name)-1]+"ies")
	}
	if strings.HasSuffix(lower, "s") || strings.HasSuffix(lower, "x") ||
		strings.HasSuffix(lower, "z") || strings.HasSuffix(lower, "ch") ||
		strings.HasSuffix(lower, "sh") {
		candidates = append(candidates, name+"es")
	} else {
		candidates = append(candidates, name+"s")
	}
	return candidates
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	default:
		return false
	}
}
