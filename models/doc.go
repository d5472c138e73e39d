// Package models holds the persisted documents of the storefront together
// with the rules that keep them consistent: the cart aggregate (quantity
// merge, total recompute, price snapshot) and the order status lifecycle.
//
// Money is carried as decimal.Decimal. JSON renders it as a bare number so
// existing clients keep reading numeric prices.
package models

import "github.com/shopspring/decimal"

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}
