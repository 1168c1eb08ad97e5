package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/ekaya-normalize/pkg/models"
)

func TestCreateTableSQL_Postgres(t *testing.T) {
	got := CreateTableSQL(postgresDialect{}, models.CountryTable)
	want := "CREATE TABLE \"country\" (\n" +
		"\t\"countryid\" SERIAL PRIMARY KEY,\n" +
		"\t\"country\" VARCHAR NOT NULL,\n" +
		"\t\"regionid\" INTEGER NOT NULL,\n" +
		"\tFOREIGN KEY (\"regionid\") REFERENCES \"region\" (\"regionid\")\n" +
		")"
	assert.Equal(t, want, got)
}

func TestCreateTableSQL_UniqueColumns(t *testing.T) {
	assert.Contains(t, CreateTableSQL(postgresDialect{}, models.RegionTable), `"region" VARCHAR NOT NULL UNIQUE`)
	assert.Contains(t, CreateTableSQL(sqliteDialect{}, models.RegionTable), `"region" TEXT NOT NULL UNIQUE`)
	assert.Contains(t, CreateTableSQL(sqlServerDialect{}, models.RegionTable), `[region] NVARCHAR(450) NOT NULL UNIQUE`)
}

func TestCreateTableSQL_SQLServer(t *testing.T) {
	got := CreateTableSQL(sqlServerDialect{}, models.OrderDetailTable)
	assert.Contains(t, got, "[orderid] INT IDENTITY(1,1) PRIMARY KEY")
	assert.Contains(t, got, "[orderdate] DATE NOT NULL")
	assert.Contains(t, got, "FOREIGN KEY ([customerid]) REFERENCES [customer] ([customerid])")
	assert.Contains(t, got, "FOREIGN KEY ([productid]) REFERENCES [product] ([productid])")
}

func TestCreateTableSQL_SQLite(t *testing.T) {
	got := CreateTableSQL(sqliteDialect{}, models.ProductTable)
	assert.Contains(t, got, `"productid" INTEGER PRIMARY KEY AUTOINCREMENT`)
	assert.Contains(t, got, `"productunitprice" REAL NOT NULL`)
}

func TestDropTableSQL(t *testing.T) {
	assert.Equal(t, []string{`DROP TABLE IF EXISTS "region" CASCADE`},
		DropTableSQL(postgresDialect{}, models.RegionTable))

	assert.Equal(t, []string{
		`DROP TABLE IF EXISTS "orderdetail"`,
		`DROP TABLE IF EXISTS "customer"`,
		`DROP TABLE IF EXISTS "country"`,
		`DROP TABLE IF EXISTS "region"`,
	}, DropTableSQL(sqliteDialect{}, models.RegionTable))

	assert.Equal(t, []string{`DROP TABLE IF EXISTS [orderdetail]`},
		DropTableSQL(sqlServerDialect{}, models.OrderDetailTable))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"odd""name"`, postgresDialect{}.QuoteIdentifier(`odd"name`))
	assert.Equal(t, `"odd""name"`, sqliteDialect{}.QuoteIdentifier(`odd"name`))
	assert.Equal(t, `[odd]]name]`, sqlServerDialect{}.QuoteIdentifier(`odd]name`))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$3", postgresDialect{}.Placeholder(3))
	assert.Equal(t, "?", sqliteDialect{}.Placeholder(3))
	assert.Equal(t, "@p3", sqlServerDialect{}.Placeholder(3))
}

func TestBindDate(t *testing.T) {
	d := time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2023-01-15", sqliteDialect{}.BindDate(d))
	assert.Equal(t, d, postgresDialect{}.BindDate(d))
}

func TestSelectSQL(t *testing.T) {
	assert.Equal(t, `SELECT "region", "regionid" FROM "region" ORDER BY "regionid"`,
		SelectSQL(postgresDialect{}, models.RegionTable, "region", "regionid"))
}
