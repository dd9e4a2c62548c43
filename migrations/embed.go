// Package migrations embeds the golang-migrate SQL files so the server and
// tests apply the same schema.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
