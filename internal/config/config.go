// Package config loads the client configuration file (YAML or TOML),
// applies environment overrides and validates the result.
package config

// Networks the client can talk to.
const (
	NetworkLocal  = "local"
	NetworkIC     = "ic"
	NetworkMemory = "memory"
)

// Identity provider kinds.
const (
	ProviderDelegation = "delegation"
	ProviderSPIFFE     = "spiffe"
	ProviderMemory     = "memory"
)

// BackendSection locates the recipe backend.
type BackendSection struct {
	// CanisterID is the backend service id. Env: CANISTER_ID_YUMMY_BACKEND.
	CanisterID string `yaml:"canister_id" toml:"canister_id"`

	// Host overrides the network's default gateway URL.
	Host string `yaml:"host" toml:"host"`

	// Timeout bounds each HTTP request to the backend ("30s").
	Timeout string `yaml:"timeout" toml:"timeout"`
}

// IdentityProviderSection configures login.
type IdentityProviderSection struct {
	// Kind is "delegation" (interactive), "spiffe" (workload) or "memory".
	// Empty selects "memory" on the memory network and "delegation" otherwise.
	Kind string `yaml:"kind" toml:"kind"`

	// CanisterID is the identity provider service id on a local replica.
	// Env: CANISTER_ID_INTERNET_IDENTITY.
	CanisterID string `yaml:"canister_id" toml:"canister_id"`

	// URL overrides the provider URL derived from the network.
	URL string `yaml:"url" toml:"url"`

	// LocalPort is the local replica port (4943).
	LocalPort int `yaml:"local_port" toml:"local_port"`

	// BrowserUserAgent selects the Safari URL form on local networks.
	// Env: YUMMY_BROWSER_USER_AGENT.
	BrowserUserAgent string `yaml:"browser_user_agent" toml:"browser_user_agent"`

	// CallbackAddr is where the login callback listener binds ("127.0.0.1:0").
	CallbackAddr string `yaml:"callback_addr" toml:"callback_addr"`
}

// SessionSection configures the stored session.
type SessionSection struct {
	// StorePath is the delegation store file. Empty means
	// $XDG_CONFIG_HOME/yummy/session.yaml (or the OS equivalent).
	StorePath string `yaml:"store_path" toml:"store_path"`

	// MaxTimeToLive is the session lifetime requested at login ("168h").
	MaxTimeToLive string `yaml:"max_time_to_live" toml:"max_time_to_live"`
}

// RetrySection configures the resilient call wrapper.
type RetrySection struct {
	MaxAttempts  int    `yaml:"max_attempts" toml:"max_attempts"`
	InitialDelay string `yaml:"initial_delay" toml:"initial_delay"`

	// OtherErrors is "retry" (default) or "abort".
	OtherErrors string `yaml:"other_errors" toml:"other_errors"`
}

// NoticesSection configures the notice board.
type NoticesSection struct {
	History int `yaml:"history" toml:"history"`
}

// SPIFFESection configures the workload identity provider.
type SPIFFESection struct {
	// WorkloadSocket is the SPIRE agent socket, e.g. "unix:///tmp/spire-agent/public/api.sock".
	WorkloadSocket string `yaml:"workload_socket" toml:"workload_socket"`

	// InitialFetchTimeout bounds the first SVID fetch ("30s").
	InitialFetchTimeout string `yaml:"initial_fetch_timeout" toml:"initial_fetch_timeout"`

	// Exactly one of these authorizes the backend's server certificate.
	ExpectedServerSPIFFEID    string `yaml:"expected_server_spiffe_id" toml:"expected_server_spiffe_id"`
	ExpectedServerTrustDomain string `yaml:"expected_server_trust_domain" toml:"expected_server_trust_domain"`
}

// DebugSection turns on debug tooling. Environment variables can only add to it.
type DebugSection struct {
	Enabled        bool   `yaml:"enabled" toml:"enabled"`
	SingleThreaded bool   `yaml:"single_threaded" toml:"single_threaded"`
	Server         bool   `yaml:"server" toml:"server"`
	ServerAddr     string `yaml:"server_addr" toml:"server_addr"`
}

// FileConfig is the client configuration file.
//
// The format is versioned; only version 1 (or 0, unset) exists.
type FileConfig struct {
	Version int `yaml:"version,omitempty" toml:"version,omitempty"`

	// Network is "local", "ic" or "memory". Env: DFX_NETWORK.
	Network string `yaml:"network" toml:"network"`

	Backend          BackendSection          `yaml:"backend" toml:"backend"`
	IdentityProvider IdentityProviderSection `yaml:"identity_provider" toml:"identity_provider"`
	Session          SessionSection          `yaml:"session" toml:"session"`
	Retry            RetrySection            `yaml:"retry" toml:"retry"`
	Notices          NoticesSection          `yaml:"notices" toml:"notices"`
	SPIFFE           SPIFFESection           `yaml:"spiffe" toml:"spiffe"`
	Debug            DebugSection            `yaml:"debug" toml:"debug"`
}

// Default returns the configuration used for fields a file leaves out.
func Default() FileConfig {
	return FileConfig{
		Version: 1,
		Network: NetworkLocal,
		Backend: BackendSection{
			Timeout: "30s",
		},
		IdentityProvider: IdentityProviderSection{
			LocalPort:    4943,
			CallbackAddr: "127.0.0.1:0",
		},
		Session: SessionSection{
			MaxTimeToLive: "168h",
		},
		Retry: RetrySection{
			MaxAttempts:  3,
			InitialDelay: "100ms",
			OtherErrors:  "retry",
		},
		Notices: NoticesSection{
			History: 32,
		},
		SPIFFE: SPIFFESection{
			InitialFetchTimeout: "30s",
		},
	}
}
