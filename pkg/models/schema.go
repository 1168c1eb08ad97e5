package models

// ColumnType is a dialect-neutral column type.
type ColumnType int

const (
	ColumnText ColumnType = iota
	ColumnReal
	ColumnInteger
	ColumnDate
)

// Column describes a non-key column of a normalized table.
type Column struct {
	Name       string
	Type       ColumnType
	Unique     bool
	References string // parent table name; the referenced column is the parent's primary key
}

// Table describes one normalized table. The primary key is always an
// auto-incrementing integer surrogate.
type Table struct {
	Name       string
	PrimaryKey string
	Columns    []Column
}

// ColumnNames returns the non-key column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// References returns the parent tables this table points at.
func (t Table) References() []string {
	var refs []string
	for _, c := range t.Columns {
		if c.References != "" {
			refs = append(refs, c.References)
		}
	}
	return refs
}

var (
	RegionTable = Table{
		Name:       "region",
		PrimaryKey: "regionid",
		Columns: []Column{
			{Name: "region", Type: ColumnText, Unique: true},
		},
	}

	CountryTable = Table{
		Name:       "country",
		PrimaryKey: "countryid",
		Columns: []Column{
			{Name: "country", Type: ColumnText},
			{Name: "regionid", Type: ColumnInteger, References: "region"},
		},
	}

	CustomerTable = Table{
		Name:       "customer",
		PrimaryKey: "customerid",
		Columns: []Column{
			{Name: "firstname", Type: ColumnText},
			{Name: "lastname", Type: ColumnText},
			{Name: "address", Type: ColumnText},
			{Name: "city", Type: ColumnText},
			{Name: "countryid", Type: ColumnInteger, References: "country"},
		},
	}

	ProductCategoryTable = Table{
		Name:       "productcategory",
		PrimaryKey: "productcategoryid",
		Columns: []Column{
			{Name: "productcategory", Type: ColumnText, Unique: true},
			{Name: "productcategorydescription", Type: ColumnText},
		},
	}

	ProductTable = Table{
		Name:       "product",
		PrimaryKey: "productid",
		Columns: []Column{
			{Name: "productname", Type: ColumnText},
			{Name: "productunitprice", Type: ColumnReal},
			{Name: "productcategoryid", Type: ColumnInteger, References: "productcategory"},
		},
	}

	OrderDetailTable = Table{
		Name:       "orderdetail",
		PrimaryKey: "orderid",
		Columns: []Column{
			{Name: "customerid", Type: ColumnInteger, References: "customer"},
			{Name: "productid", Type: ColumnInteger, References: "product"},
			{Name: "orderdate", Type: ColumnDate},
			{Name: "quantityordered", Type: ColumnInteger},
		},
	}
)

// Tables returns the normalized schema, parents before children.
func Tables() []Table {
	return []Table{RegionTable, CountryTable, CustomerTable, ProductCategoryTable, ProductTable, OrderDetailTable}
}

// TableByName looks a table up in the schema.
func TableByName(name string) (Table, bool) {
	for _, t := range Tables() {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// Dependents returns every table that references name directly or
// transitively, ordered so that each table comes before the tables it
// references. Dropping them in this order never violates a foreign key.
func Dependents(name string) []string {
	tables := Tables()
	found := map[string]bool{name: true}
	changed := true
	for changed {
		changed = false
		for _, t := range tables {
			if found[t.Name] {
				continue
			}
			for _, ref := range t.References() {
				if found[ref] {
					found[t.Name] = true
					changed = true
					break
				}
			}
		}
	}

	// Tables() is parent-first, so walking it backwards yields children first.
	var deps []string
	for i := len(tables) - 1; i >= 0; i-- {
		if n := tables[i].Name; n != name && found[n] {
			deps = append(deps, n)
		}
	}
	return deps
}
