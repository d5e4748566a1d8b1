// Package migrations holds the SQL applied by `cafeteria --mode migrate`
package migrations

import "embed"

//go:embed *.sql
var Files embed.FS
