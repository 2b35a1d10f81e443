// Package migrations embeds the schema files for the SQL video store and the
// ClickHouse analytics database.
package migrations

import "embed"

// FS holds the goose migrations for the videos table, under db/.
//
//go:embed db/*.sql
var FS embed.FS

// AnalyticsFS holds the golang-migrate migrations for ClickHouse, under analytics/.
//
//go:embed analytics/*.sql
var AnalyticsFS embed.FS
