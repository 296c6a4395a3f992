package query

import (
	"strconv"
	"strings"

	"github.com/atlekbai/wallet_search/internal/filter"
)

// compileOrderBy renders "col DIR" entries comma-joined in input order.
func (b *Builder) compileOrderBy(orders []filter.Order) string {
	clauses := make([]string, 0, len(orders))
	for _, o := range orders {
		clauses = append(clauses, b.column(o.Field)+" "+o.Dir.String())
	}
	return strings.Join(clauses, ", ")
}

// paginate returns the OFFSET and LIMIT suffix. Zero means unset.
func paginate(offset, limit uint64) string {
	var sb strings.Builder
	if offset > 0 {
		sb.WriteString(" OFFSET ")
		sb.WriteString(strconv.FormatUint(offset, 10))
	}
	if limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.FormatUint(limit, 10))
	}
	return sb.String()
}
