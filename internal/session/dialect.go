package session

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	_ "github.com/microsoft/go-mssqldb" // registers "sqlserver"
	"github.com/microsoft/go-mssqldb/msdsn"
	_ "modernc.org/sqlite" // registers "sqlite"
)

// dialect captures the per-database SQL differences a Session needs.
type dialect struct {
	name        string
	driver      string
	placeholder func(n int) string
	// quote quotes a possibly schema-qualified table name.
	quote       func(ident string) string
	// quoteColumn quotes a single column name; dots are part of the name.
	quoteColumn func(name string) string
	// maxParams is the most bind parameters one statement may carry.
	maxParams   int
	textType    string
	createTable func(quoted, columns string) string
	checkDSN    func(dsn string) error
}

func questionMark(int) string { return "?" }

func ifNotExists(quoted, columns string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoted, columns)
}

var dialects = map[string]dialect{
	"sqlite": {
		name:        "sqlite",
		driver:      "sqlite",
		placeholder: questionMark,
		quote:       doubleQuote,
		quoteColumn: func(name string) string { return quoteOne(name, `"`, `"`) },
		maxParams:   32766,
		textType:    "TEXT",
		createTable: ifNotExists,
		checkDSN:    func(string) error { return nil },
	},
	"pgx": {
		name:        "pgx",
		driver:      "pgx",
		placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
		quote:       func(ident string) string { return splitIdentifier(ident).Sanitize() },
		quoteColumn: func(name string) string { return pgx.Identifier{name}.Sanitize() },
		maxParams:   65535,
		textType:    "TEXT",
		createTable: ifNotExists,
		checkDSN: func(dsn string) error {
			_, err := pgx.ParseConfig(dsn)
			return err
		},
	},
	"mysql": {
		name:        "mysql",
		driver:      "mysql",
		placeholder: questionMark,
		quote: func(ident string) string {
			return quoteParts(ident, "`", "`")
		},
		quoteColumn: func(name string) string { return quoteOne(name, "`", "`") },
		maxParams:   65535,
		textType:    "TEXT",
		createTable: ifNotExists,
		checkDSN: func(dsn string) error {
			_, err := mysql.ParseDSN(dsn)
			return err
		},
	},
	"sqlserver": {
		name:        "sqlserver",
		driver:      "sqlserver",
		placeholder: func(n int) string { return fmt.Sprintf("@p%d", n) },
		quote: func(ident string) string {
			return quoteParts(ident, "[", "]")
		},
		quoteColumn: func(name string) string { return quoteOne(name, "[", "]") },
		// 2100 on the server, one of which the driver keeps for itself.
		maxParams:   2099,
		textType:    "NVARCHAR(MAX)",
		createTable: func(quoted, columns string) string {
			return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)",
				strings.ReplaceAll(quoted, "'", "''"), quoted, columns)
		},
		checkDSN: func(dsn string) error {
			_, err := msdsn.Parse(dsn)
			return err
		},
	},
}

var aliases = map[string]string{
	"postgres":   "pgx",
	"postgresql": "pgx",
	"mssql":      "sqlserver",
	"sqlite3":    "sqlite",
}

// Drivers lists the accepted driver names, aliases included.
func Drivers() []string {
	names := slices.Collect(maps.Keys(dialects))
	names = append(names, slices.Collect(maps.Keys(aliases))...)
	slices.Sort(names)
	return names
}

func lookupDialect(name string) (dialect, error) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	d, ok := dialects[name]
	if !ok {
		return dialect{}, fmt.Errorf("session: unsupported driver %q (supported: %s)", name, strings.Join(Drivers(), ", "))
	}
	return d, nil
}

// splitIdentifier turns "schema.table" into a pgx.Identifier.
func splitIdentifier(ident string) pgx.Identifier {
	return pgx.Identifier(strings.Split(ident, "."))
}

func doubleQuote(ident string) string {
	return quoteParts(ident, `"`, `"`)
}

func quoteParts(ident, opening, closing string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		parts[i] = quoteOne(p, opening, closing)
	}
	return strings.Join(parts, ".")
}

func quoteOne(name, opening, closing string) string {
	return opening + strings.ReplaceAll(name, closing, closing+closing) + closing
}
