// Package config resolves archetect-go's layered configuration: built-in
// defaults, the global XDG configuration file, the current project's
// configuration file, environment variables, and finally CLI flags, in that
// priority order.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"

	"github.com/madstone-tech/archetect-go/internal/core/entities"
)

// Loader resolves a Configuration from the layered sources described above.
// The on-disk envelope (global and project archetect.toml) is TOML, decoded
// directly with go-toml; viper is used only to merge the two file layers
// and to overlay environment variables, not to parse the files itself.
type Loader struct {
	paths *XDGPathResolver
	v     *viper.Viper
}

// NewLoader creates a configuration loader rooted at the resolved XDG paths.
func NewLoader(paths *XDGPathResolver) *Loader {
	return &Loader{paths: paths, v: viper.New()}
}

// Load resolves the merged Configuration. cfgFile, when non-empty,
// overrides the global-config path entirely (the CLI's --config flag), and
// a missing file at that explicit path is an error. projectRoot is the
// directory searched for a project-local archetect.toml, which is optional.
func (l *Loader) Load(cfgFile, projectRoot string) (entities.Configuration, error) {
	defaults := entities.DefaultConfiguration()

	globalPath := l.paths.ConfigFile()
	required := false
	if cfgFile != "" {
		globalPath = cfgFile
		required = true
	}
	globalLayer, err := readTOMLLayer(globalPath, required)
	if err != nil {
		return defaults, err
	}
	if err := l.v.MergeConfigMap(globalLayer); err != nil {
		return defaults, fmt.Errorf("failed to merge configuration %s: %w", globalPath, err)
	}

	projectLayer, err := readTOMLLayer(projectRoot+"/archetect.toml", false)
	if err != nil {
		return defaults, err
	}
	if err := l.v.MergeConfigMap(projectLayer); err != nil {
		return defaults, fmt.Errorf("failed to merge project configuration: %w", err)
	}

	l.v.SetEnvPrefix("ARCHETECT")
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	l.v.AutomaticEnv()
	for _, key := range []string{"offline", "local.offline", "security.allow_exec", "update.enabled", "update.check_interval"} {
		_ = l.v.BindEnv(key)
	}

	var fileLayer entities.Configuration
	decoderOpts := func(c *mapstructure.DecoderConfig) {
		c.TagName = "toml"
		c.DecodeHook = mapstructure.StringToTimeDurationHookFunc()
	}
	if err := l.v.Unmarshal(&fileLayer, decoderOpts); err != nil {
		return defaults, fmt.Errorf("failed to decode configuration: %w", err)
	}

	return defaults.Merge(fileLayer), nil
}

// readTOMLLayer reads and decodes a TOML config file into a generic map
// suitable for viper.MergeConfigMap. A missing file is not an error unless
// required (the explicit --config override), since the global and project
// config files are both optional.
func readTOMLLayer(path string, required bool) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var layer map[string]any
	if err := toml.Unmarshal(data, &layer); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return layer, nil
}

// ApplyFlagOverrides layers CLI-flag-derived values onto a resolved
// Configuration, the highest-priority layer of the merge.
func ApplyFlagOverrides(base entities.Configuration, offline *bool, allowExec *bool) entities.Configuration {
	override := entities.Configuration{Actions: map[string]string{}}
	if offline != nil {
		override.Offline = *offline
	}
	if allowExec != nil {
		override.Security.AllowExec = *allowExec
	}
	return base.Merge(override)
}
