package entities

import "time"

// Layout describes the on-disk locations the Coordinator consults.
type Layout struct {
	EtcDir   string
	EtcDDir  string
	CacheDir string
}

// ConfigurationPath returns etc_dir/archetect.toml, the global configuration
// file location.
func (l Layout) ConfigurationPath() string {
	if l.EtcDir == "" {
		return "archetect.toml"
	}
	return l.EtcDir + "/archetect.toml"
}

// LocalSection mirrors archetect-core's configuration_local_section.rs:
// developer-local overrides that are never shared or committed.
type LocalSection struct {
	OfflineDefault bool `toml:"offline"`
}

// UpdateSection mirrors configuration_update_section.rs: how often the CLI
// shell checks for a newer archetect-go release. Purely advisory; the core
// render path never consults it.
type UpdateSection struct {
	CheckInterval time.Duration `toml:"check_interval"`
	Enabled       bool          `toml:"enabled"`
}

// SecuritySection mirrors configuration_security_sections.rs.
type SecuritySection struct {
	// AllowExec gates the script engine's execute/capture bindings.
	AllowExec bool `toml:"allow_exec"`
}

// Configuration is the Coordinator's merged configuration:
// defaults → user → current dir → CLI flags, scalar fields fully override,
// but the `actions` map merges as a union with later-wins-per-key. It is
// the engine's own config envelope (`archetect.toml`), distinct from the
// YAML-based archetype/catalog manifest format.
type Configuration struct {
	Actions  map[string]string `toml:"actions"`
	Local    LocalSection      `toml:"local"`
	Update   UpdateSection     `toml:"update"`
	Security SecuritySection   `toml:"security"`

	Offline bool `toml:"offline"`
}

// DefaultConfiguration returns the built-in defaults, the lowest-priority
// layer of the merge.
func DefaultConfiguration() Configuration {
	return Configuration{
		Actions: map[string]string{},
		Update: UpdateSection{
			CheckInterval: 24 * time.Hour,
			Enabled:       true,
		},
		Security: SecuritySection{
			AllowExec: false,
		},
	}
}

// Merge layers `other` on top of c: the `Actions` map is a
// union with other's keys winning on conflict; every other field is a full
// scalar override when set by `other` (zero-value fields in `other` are
// presumed unset and do not override).
func (c Configuration) Merge(other Configuration) Configuration {
	merged := c

	if merged.Actions == nil {
		merged.Actions = map[string]string{}
	}
	for k, v := range other.Actions {
		merged.Actions[k] = v
	}

	if other.Offline {
		merged.Offline = true
	}
	if other.Local.OfflineDefault {
		merged.Local.OfflineDefault = true
	}
	if other.Update.CheckInterval != 0 {
		merged.Update.CheckInterval = other.Update.CheckInterval
	}
	merged.Update.Enabled = other.Update.Enabled || merged.Update.Enabled
	merged.Security.AllowExec = other.Security.AllowExec || merged.Security.AllowExec

	return merged
}
