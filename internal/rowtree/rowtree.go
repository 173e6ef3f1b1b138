// internal/rowtree/rowtree.go
//
// Fold flat, foreign-key-joined result sets into nested JSON-ready trees.
//
// Context
// -------
// The schema is normalized but the API speaks in trees: events carry their
// shifts, mail lists carry their members, users carry shifts and
// subscription flags.  Rather than join-and-deduplicate in SQL, the
// handlers run one query per level and this package stitches the rowsets
// together on a shared key column.
//
// A child row whose key matches no loaded parent is dropped, not errored.
// The parent and child queries are filtered independently, so a child may
// legitimately reference a parent the filter excluded; both queries must
// apply the same predicate for the output to be complete.
//
// Notes
// -----
// • Key values are compared after canonicalisation because the driver may
//   hand back the same key as int64 in one rowset and string in another.
// • Oxford commas, two spaces after periods.

package rowtree

import "strconv"

// Row is one result tuple, addressable by column name.  It aliases the
// database package's row shape without importing it.
type Row = map[string]any

// Nest attaches each child row to the parent whose key column matches,
// under field.  Every parent gets a child list, empty included, and parents
// keep their original order.  Children append in rowset order.
func Nest(parents, children []Row, key, field string) []Row {
	index := make(map[string]Row, len(parents))
	for _, p := range parents {
		p[field] = []Row{}
		index[keyString(p[key])] = p
	}
	for _, c := range children {
		p, ok := index[keyString(c[key])]
		if !ok {
			continue // parent filtered out upstream
		}
		p[field] = append(p[field].([]Row), c)
	}
	return parents
}

// Collapse folds one denormalized rowset into parents with embedded child
// lists.  The first row seen for a key value contributes the parent columns;
// every row contributes a child built from childCols.  Parents come out in
// first-appearance order.
func Collapse(rows []Row, key string, parentCols, childCols []string, field string) []Row {
	var out []Row
	index := make(map[string]Row)
	for _, r := range rows {
		k := keyString(r[key])
		p, ok := index[k]
		if !ok {
			p = Row{}
			for _, col := range parentCols {
				p[col] = r[col]
			}
			p[field] = []Row{}
			index[k] = p
			out = append(out, p)
		}
		child := Row{}
		for _, col := range childCols {
			child[col] = r[col]
		}
		p[field] = append(p[field].([]Row), child)
	}
	return out
}

// Pick copies the named columns of r into a fresh row.
func Pick(r Row, cols ...string) Row {
	out := make(Row, len(cols))
	for _, col := range cols {
		out[col] = r[col]
	}
	return out
}

// keyString canonicalises a key value for comparison across rowsets.
func keyString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
