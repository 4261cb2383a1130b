package sqlxrepos

import (
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// orderBy renders an ORDER BY clause from the given orderings; empty
// orderings fall back to `def`.
func orderBy(orderings []core.DBOrdering, def string) string {
	if len(orderings) == 0 {
		if def == "" {
			return ""
		}
		return " ORDER BY " + def
	}
	parts := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		parts = append(parts, ord.String())
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

// trapNoRowsErr maps psql "no rows" err to notFound
func trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}
