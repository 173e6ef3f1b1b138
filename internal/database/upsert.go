// internal/database/upsert.go
//
// Injection-safe upsert statement builder.
//
// Context
// -------
// Nearly every write on the platform is "update this row by primary key, or
// insert it if the key does not exist yet."  The payload arrives as a
// loosely-typed JSON object, so the builder derives the statement from a
// fixed column whitelist: only columns present in BOTH the whitelist and
// the payload are touched.  Partial updates are first-class; absent columns
// are left alone, never rewritten.
//
// The safety invariant this file exists to guarantee: payload VALUES only
// ever travel as bound parameters, and identifiers (table, pk, columns)
// only ever come from the fixed whitelist arguments.  Caller input never
// reaches statement text.
//
// Notes
// -----
// • The builder is pure.  Execution, and the atomicity of the
//   update-then-insert sequence, live in Gateway.Upsert.
// • Oxford commas, two spaces after periods.

package database

import "strings"

// UpsertStatement is a built update-or-insert pair plus its bindings.  Run
// it with Gateway.Upsert, which executes both legs in one serializable
// transaction.
type UpsertStatement struct {
	Table string

	// Update is "UPDATE ... SET col = ?, ... WHERE pk = ?".  Its argument
	// list is Args followed by PKValue.
	Update string

	// Insert is "INSERT INTO ... (cols) VALUES (?, ...)".  Its argument
	// list is Args alone; the primary key is generated by the database.
	Insert string

	// Args holds the payload values for the whitelisted columns, in
	// whitelist order.
	Args []any

	// PKValue is the primary-key binding for the UPDATE leg.
	PKValue any
}

// BuildUpsert derives an UpsertStatement from table, primary-key column,
// primary-key value, a fixed column whitelist, and the supplied payload.
// The second return is false when no payload key matched the whitelist;
// callers must treat that as "nothing to do," not as a failure.
func BuildUpsert(table, pkColumn string, pkValue any, whitelist []string, payload map[string]any) (*UpsertStatement, bool) {
	var (
		sets  []string
		cols  []string
		marks []string
		args  []any
	)
	for _, col := range whitelist {
		v, ok := payload[col]
		if !ok {
			continue
		}
		sets = append(sets, quoteIdent(col)+" = ?")
		cols = append(cols, quoteIdent(col))
		marks = append(marks, "?")
		args = append(args, v)
	}
	if len(args) == 0 {
		return nil, false
	}

	return &UpsertStatement{
		Table: table,
		Update: "UPDATE " + quoteIdent(table) +
			" SET " + strings.Join(sets, ", ") +
			" WHERE " + quoteIdent(pkColumn) + " = ?",
		Insert: "INSERT INTO " + quoteIdent(table) +
			" (" + strings.Join(cols, ", ") + ")" +
			" VALUES (" + strings.Join(marks, ", ") + ")",
		Args:    args,
		PKValue: pkValue,
	}, true
}

// quoteIdent backtick-quotes a MySQL identifier.
func quoteIdent(ident string) string {
	return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
}
