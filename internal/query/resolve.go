package query

import "github.com/atlekbai/wallet_search/internal/schema"

// Resolver maps logical field names to physical column names.
// Implementations must be total: unknown names resolve to themselves.
// Physical names are emitted verbatim; a "?" in them is escaped by the Builder.
type Resolver interface {
	Resolve(name string) string
}

// Aliases is a fixed logical → physical name table.
type Aliases map[string]string

// WalletAliases is the alias table of the built-in wallets object.
var WalletAliases = Aliases{
	"wallet_id":   "id",
	"wallet_type": "type",
}

func (a Aliases) Resolve(name string) string {
	if col, ok := a[name]; ok {
		return col
	}
	return name
}

// AliasesFor derives the alias table from an object's storage columns.
func AliasesFor(obj *schema.ObjectDef) Aliases {
	return Aliases(obj.Aliases())
}
