// Package module holds the fixed catalog of feature areas the application
// exposes. Role grants are always a subset of this catalog; the catalog itself
// never changes at runtime.
package module

import "sort"

const (
	Dashboard         = "dashboard"
	Customers         = "customers"
	Invoices          = "invoices"
	Stock             = "stock"
	Expenses          = "expenses"
	PurchaseOrders    = "purchase-orders"
	FinancialProgress = "financial-progress"
	Settings          = "settings"
)

var catalog = map[string]struct{}{
	Dashboard:         {},
	Customers:         {},
	Invoices:          {},
	Stock:             {},
	Expenses:          {},
	PurchaseOrders:    {},
	FinancialProgress: {},
	Settings:          {},
}

// All returns every module name, sorted ascending.
func All() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func IsValid(name string) bool {
	_, ok := catalog[name]
	return ok
}

// Normalize deduplicates and sorts a requested grant list. The second return
// value lists any names that are not part of the catalog; the normalized list
// only contains valid entries.
func Normalize(requested []string) ([]string, []string) {
	seen := make(map[string]struct{}, len(requested))
	var valid, unknown []string
	for _, name := range requested {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if IsValid(name) {
			valid = append(valid, name)
		} else {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(valid)
	return valid, unknown
}
