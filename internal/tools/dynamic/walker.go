package dynamic

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// EmbeddedFS holds the tool definitions compiled into the binary. When it is empty the
// registry reads configDir from disk instead.
var EmbeddedFS embed.FS

// WalkConfigDirectory loads every YAML tool definition, preferring EmbeddedFS.
func WalkConfigDirectory(configDir string) ([]*ToolConfig, error) {
	if configs, err := walkFS(EmbeddedFS, "."); err == nil && len(configs) > 0 {
		slog.Info("loaded tools from embedded filesystem", "count", len(configs))
		return configs, nil
	}

	if _, err := os.Stat(configDir); errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config directory does not exist", "dir", configDir)
		return []*ToolConfig{}, nil
	}
	return walkFS(os.DirFS(configDir), ".")
}

func walkFS(fsys fs.FS, root string) ([]*ToolConfig, error) {
	configs := []*ToolConfig{}
	seen := make(map[string]string)

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(d.Name()) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", p, err)
		}
		config, err := parseToolConfig(data, p)
		if err != nil {
			slog.Error("failed to parse tool config", "path", p, "error", err)
			return err
		}
		if prev, dup := seen[config.Name]; dup {
			return fmt.Errorf("tool %q is defined in both %s and %s", config.Name, prev, p)
		}
		seen[config.Name] = p

		configs = append(configs, config)
		slog.Debug("loaded tool config", "tool", config.Name, "category", config.Category, "path", p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk tool configs: %w", err)
	}
	return configs, nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

// parseToolConfig decodes one definition and checks its required fields.
func parseToolConfig(data []byte, p string) (*ToolConfig, error) {
	var config ToolConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	config.Category = deriveCategoryFromPath(p)

	if config.Name == "" {
		return nil, fmt.Errorf("tool name is required in config file: %s", p)
	}
	if config.Description == "" {
		return nil, fmt.Errorf("tool description is required in config file: %s", p)
	}
	if err := validateParameters(config.Parameters); err != nil {
		return nil, fmt.Errorf("invalid parameters in %s: %w", p, err)
	}
	for _, f := range config.LiveFindings {
		if _, ok := findingCounters[f]; !ok {
			return nil, fmt.Errorf("unknown live finding %q in %s", f, p)
		}
	}
	return &config, nil
}

var validParameterTypes = map[string]bool{
	"string": true, "integer": true, "number": true,
	"boolean": true, "array": true, "object": true,
}

func validateParameters(params []ParameterConfig) error {
	names := make(map[string]bool)
	for i, param := range params {
		if param.Name == "" {
			return fmt.Errorf("parameter[%d] name is required", i)
		}
		if names[param.Name] {
			return fmt.Errorf("duplicate parameter name '%s'", param.Name)
		}
		names[param.Name] = true

		if param.Type != "" && !validParameterTypes[param.Type] {
			return fmt.Errorf("parameter '%s' has invalid type '%s'", param.Name, param.Type)
		}
	}
	return nil
}

// deriveCategoryFromPath maps "config/payroll/ghost-families.yaml" and "payroll/ghost-families.yaml"
// to "payroll". Files at the top level are "general".
func deriveCategoryFromPath(p string) string {
	parts := strings.Split(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")
	for i, part := range parts {
		if part == "config" && i+2 < len(parts) {
			return parts[i+1]
		}
	}
	if len(parts) >= 2 && parts[0] != "config" {
		return parts[0]
	}
	return "general"
}
