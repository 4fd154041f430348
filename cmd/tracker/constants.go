package main

// Default limits for CLI commands.
const (
	DefaultListLimit   = 50
	DefaultExportLimit = 10000
	DefaultAuditLimit  = 20
)

// Valid export formats.
var validFormats = []string{"json", "csv", "markdown"}
