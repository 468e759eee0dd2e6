package dynamic

// ToolConfig is one YAML guidance tool under tools/config/<category>/.
type ToolConfig struct {
	Name        string `yaml:"name"`
	Title       string `yaml:"title,omitempty"`
	Description string `yaml:"description"`

	// Intent tells the agent when the playbook applies.
	Intent string `yaml:"intent,omitempty"`

	Indicators      []IndicatorConfig      `yaml:"indicators,omitempty"`
	ReferenceCypher string                 `yaml:"reference_cypher,omitempty"`
	ReferenceSchema *ReferenceSchemaConfig `yaml:"reference_schema,omitempty"`
	Parameters      []ParameterConfig      `yaml:"parameters,omitempty"`

	// LiveFindings names snapshot checks whose current counts are appended to the response,
	// e.g. ghost_families or living_dead. See findingCounters for the accepted names.
	LiveFindings []string `yaml:"live_findings,omitempty"`

	// FollowUpTools lists the tools an agent should call next.
	FollowUpTools []string `yaml:"follow_up_tools,omitempty"`

	// Category comes from the directory the file lives in.
	Category string `yaml:"-"`
}

// IndicatorConfig describes one red flag of a payroll fraud scheme.
type IndicatorConfig struct {
	Entity         string   `yaml:"entity"`
	SharedElements []string `yaml:"shared_elements,omitempty"`
	Signal         string   `yaml:"signal"`
}

// ReferenceSchemaConfig lists the graph elements the reference query touches.
type ReferenceSchemaConfig struct {
	Labels        []string `yaml:"labels,omitempty"`
	Relationships []string `yaml:"relationships,omitempty"`
}

// ParameterConfig is a parameter of the reference Cypher.
type ParameterConfig struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"` // JSON Schema type
	Description string `yaml:"description,omitempty"`
	Default     any    `yaml:"default,omitempty"`
	Required    bool   `yaml:"required,omitempty"`
}
