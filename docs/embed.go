package docs

import (
	_ "embed"
)

// AuditPlaybookPrompt is served as the payroll-audit-playbook prompt. It tells the agent how to
// sequence the payroll tools and how to word findings.
//
//go:embed prompts/audit_playbook.md
var AuditPlaybookPrompt string
