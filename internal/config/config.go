// Package config loads runtime configuration for the PassVault CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the vault API endpoint
//	-d string   local database DSN
//	-p int      maximum sync passes per invocation (0 = unbounded)
package config

// Config holds runtime settings for the PassVault CLI.
type Config struct {
	// ServerEndpointAddr is the host:port of the vault API endpoint. Empty
	// means no transport: the client runs against local state only.
	ServerEndpointAddr string

	// DatabaseDSN locates the local SQLite database.
	DatabaseDSN string

	// SyncMaxPasses bounds how many event batches one sync invocation may
	// apply before giving up. Zero means unbounded.
	SyncMaxPasses int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = ""
	c.DatabaseDSN = "passvault.db"
	c.SyncMaxPasses = 50
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
