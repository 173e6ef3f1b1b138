// internal/database/gateway.go
//
// Query gateway used by every endpoint handler.
//
// Context
// -------
// Handlers never touch *sqlx.DB directly.  The Gateway narrows the surface
// to a handful of shapes (ordered loosely-typed rows, a single scalar, an
// affected-row count, and a role lookup) plus Upsert, which executes a
// built UpsertStatement atomically.  All parameters are passed by position
// binding; statement text is assembled only from fixed fragments and
// whitelisted identifiers.
//
// Notes
// -----
// • Rows come back as []Row (map[string]any) because response shapes are
//   driven by column lists at the call site, mirroring how the JSON
//   envelopes are assembled.  MySQL returns strings as []byte; normalize
//   so encoding/json does not base64 them.
// • No retry policy.  Every error surfaces immediately to the handler.
// • Oxford commas, two spaces after periods.

package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/volunteerpeel/vp-api/internal/auth"
	"github.com/volunteerpeel/vp-api/internal/metrics"
)

// Row is one result tuple, addressable by column name.
type Row = map[string]any

// Gateway executes parameterized statements against the shared pool.  The
// zero value is invalid; construct with NewGateway.  Gateways are cheap and
// built once per request by the authorization gate.
type Gateway struct {
	db *sqlx.DB
}

// NewGateway wraps an open pool.
func NewGateway(db *sqlx.DB) *Gateway {
	return &Gateway{db: db}
}

// Query runs q and returns every row in result-set order.
func (g *Gateway) Query(ctx context.Context, q string, args ...any) ([]Row, error) {
	rows, err := g.db.QueryxContext(ctx, q, args...)
	if err != nil {
		metrics.DatabaseErrorsTotal.Inc()
		return nil, err
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		row := Row{}
		if err := rows.MapScan(row); err != nil {
			metrics.DatabaseErrorsTotal.Inc()
			return nil, err
		}
		normalizeRow(row)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		metrics.DatabaseErrorsTotal.Inc()
		return nil, err
	}
	return out, nil
}

// Scalar runs q and returns the first value of the first row, or nil when
// no row matched.
func (g *Gateway) Scalar(ctx context.Context, q string, args ...any) (any, error) {
	var v any
	err := g.db.QueryRowxContext(ctx, q, args...).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		metrics.DatabaseErrorsTotal.Inc()
		return nil, err
	}
	return normalizeValue(v), nil
}

// Exec runs q and returns the affected-row count.
func (g *Gateway) Exec(ctx context.Context, q string, args ...any) (int64, error) {
	res, err := g.db.ExecContext(ctx, q, args...)
	if err != nil {
		metrics.DatabaseErrorsTotal.Inc()
		return 0, err
	}
	return res.RowsAffected()
}

// Insert runs q and returns the generated identity.
func (g *Gateway) Insert(ctx context.Context, q string, args ...any) (int64, error) {
	res, err := g.db.ExecContext(ctx, q, args...)
	if err != nil {
		metrics.DatabaseErrorsTotal.Inc()
		return 0, err
	}
	return res.LastInsertId()
}

// RoleOf looks up the role bound to email.  Unknown emails map to
// auth.RoleNone, which callers also read as "no user row exists yet."
func (g *Gateway) RoleOf(ctx context.Context, email string) (auth.Role, error) {
	v, err := g.Scalar(ctx,
		"SELECT `role_id` FROM `user` WHERE `email` = ? LIMIT 1", email)
	if err != nil {
		return auth.RoleNone, err
	}
	if v == nil {
		return auth.RoleNone, nil
	}
	n, ok := v.(int64)
	if !ok {
		return auth.RoleNone, errors.New("database: role_id is not an integer")
	}
	return auth.Role(n), nil
}

// Upsert executes stmt inside one SERIALIZABLE transaction: UPDATE by
// primary key, and only when zero rows were affected, INSERT.  The strict
// isolation level is what keeps two concurrent callers from both observing
// "zero rows updated" and both inserting.
//
// The returned id is nil when the UPDATE leg matched (record existed) and
// the generated identity when the INSERT leg ran.  Callers use it to word
// created-versus-updated responses and to chain child writes.
//
// The DSN must set clientFoundRows=true so RowsAffected reports matched
// rows; otherwise an update that changes nothing would fall through to the
// INSERT leg.
func (g *Gateway) Upsert(ctx context.Context, stmt *UpsertStatement) (*int64, error) {
	tx, err := g.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		metrics.DatabaseErrorsTotal.Inc()
		return nil, err
	}
	defer tx.Rollback() // no-op after Commit

	args := append(append([]any{}, stmt.Args...), stmt.PKValue)
	res, err := tx.ExecContext(ctx, stmt.Update, args...)
	if err != nil {
		metrics.DatabaseErrorsTotal.Inc()
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	var newID *int64
	if affected == 0 {
		res, err = tx.ExecContext(ctx, stmt.Insert, stmt.Args...)
		if err != nil {
			metrics.DatabaseErrorsTotal.Inc()
			return nil, err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, err
		}
		newID = &id
	}

	if err := tx.Commit(); err != nil {
		metrics.DatabaseErrorsTotal.Inc()
		return nil, err
	}
	return newID, nil
}

// normalizeRow rewrites driver []byte values into string in place.
func normalizeRow(row Row) {
	for k, v := range row {
		row[k] = normalizeValue(v)
	}
}

func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
