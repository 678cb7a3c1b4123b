// Package migrations embeds the protocol schema so the server boot path and
// the test harness apply the same SQL.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
