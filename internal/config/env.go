package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read by ApplyEnv.
const (
	EnvNetwork          = "DFX_NETWORK"
	EnvIICanister       = "CANISTER_ID_INTERNET_IDENTITY"
	EnvBackendCanister  = "CANISTER_ID_YUMMY_BACKEND"
	EnvBrowserUserAgent = "YUMMY_BROWSER_USER_AGENT"
	EnvBackendHost      = "YUMMY_BACKEND_HOST"
	EnvLocalPort        = "YUMMY_LOCAL_PORT"
	EnvProvider         = "YUMMY_IDENTITY_PROVIDER"
	EnvStorePath        = "YUMMY_SESSION_STORE"
	EnvRetryAttempts    = "YUMMY_RETRY_MAX_ATTEMPTS"
	EnvRetryDelay       = "YUMMY_RETRY_INITIAL_DELAY"
	EnvRetryOther       = "YUMMY_RETRY_OTHER_ERRORS"
	EnvSPIFFESocket     = "YUMMY_SPIFFE_SOCKET"
)

// ApplyEnv overrides cfg with environment variables. Invalid values fail
// fast instead of being ignored.
func ApplyEnv(cfg *FileConfig) error {
	setString(&cfg.Network, EnvNetwork)
	setString(&cfg.IdentityProvider.CanisterID, EnvIICanister)
	setString(&cfg.Backend.CanisterID, EnvBackendCanister)
	setString(&cfg.IdentityProvider.BrowserUserAgent, EnvBrowserUserAgent)
	setString(&cfg.Backend.Host, EnvBackendHost)
	setString(&cfg.IdentityProvider.Kind, EnvProvider)
	setString(&cfg.Session.StorePath, EnvStorePath)
	setString(&cfg.Retry.InitialDelay, EnvRetryDelay)
	setString(&cfg.Retry.OtherErrors, EnvRetryOther)
	setString(&cfg.SPIFFE.WorkloadSocket, EnvSPIFFESocket)

	if err := setInt(&cfg.IdentityProvider.LocalPort, EnvLocalPort); err != nil {
		return err
	}
	if err := setInt(&cfg.Retry.MaxAttempts, EnvRetryAttempts); err != nil {
		return err
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	*dst = v
	return nil
}
