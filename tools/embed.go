package tools

import "embed"

// Playbooks holds the guidance tool definitions, one directory per category
// (config/payroll for fraud schemes, config/investigation for graph walks).
//
//go:embed config/payroll/*.yaml config/investigation/*.yaml
var Playbooks embed.FS
