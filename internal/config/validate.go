package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spiffe/go-spiffe/v2/spiffeid"

	"github.com/sufield/yummy/internal/domain"
)

// Validate checks a resolved configuration.
//
// Ensures:
//   - Version is 0 or 1 and Network is local, ic or memory
//   - the backend canister id is set
//   - the provider kind is known and its own settings are present
//   - durations parse and the retry section forms a valid policy
//   - SPIFFE IDs and trust domains are syntactically valid (using SDK validation)
func Validate(cfg FileConfig) error {
	if cfg.Version != 0 && cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d", cfg.Version)
	}

	switch cfg.Network {
	case NetworkLocal, NetworkIC, NetworkMemory:
	default:
		return fmt.Errorf("network must be one of local, ic, memory; got %q", cfg.Network)
	}

	if cfg.Backend.CanisterID == "" {
		return errors.New("backend.canister_id must be set")
	}
	if _, err := parseDuration("backend.timeout", cfg.Backend.Timeout); err != nil {
		return err
	}
	if _, err := MaxTimeToLive(cfg); err != nil {
		return err
	}
	if _, err := RetryPolicy(cfg); err != nil {
		return err
	}
	if cfg.Notices.History < 0 {
		return fmt.Errorf("notices.history must be >= 0, got %d", cfg.Notices.History)
	}

	switch ProviderKind(cfg) {
	case ProviderDelegation:
		if cfg.Network == NetworkMemory {
			return errors.New("identity_provider.kind delegation needs network local or ic")
		}
		if cfg.Network == NetworkLocal && cfg.IdentityProvider.URL == "" && cfg.IdentityProvider.CanisterID == "" {
			return errors.New("identity_provider.canister_id must be set on the local network")
		}
		if cfg.IdentityProvider.LocalPort < 1 || cfg.IdentityProvider.LocalPort > 65535 {
			return fmt.Errorf("identity_provider.local_port out of range: %d", cfg.IdentityProvider.LocalPort)
		}
	case ProviderSPIFFE:
		if err := validateSPIFFE(cfg.SPIFFE); err != nil {
			return err
		}
	case ProviderMemory:
	default:
		return fmt.Errorf("identity_provider.kind must be one of delegation, spiffe, memory; got %q", cfg.IdentityProvider.Kind)
	}

	return nil
}

func validateSPIFFE(s SPIFFESection) error {
	if s.WorkloadSocket == "" {
		return errors.New("spiffe.workload_socket must be set")
	}
	if _, err := parseDuration("spiffe.initial_fetch_timeout", s.InitialFetchTimeout); err != nil {
		return err
	}

	hasServerID := s.ExpectedServerSPIFFEID != ""
	hasTrustDomain := s.ExpectedServerTrustDomain != ""
	if !hasServerID && !hasTrustDomain {
		return errors.New("must set exactly one of spiffe.expected_server_spiffe_id or spiffe.expected_server_trust_domain")
	}
	if hasServerID && hasTrustDomain {
		return errors.New("cannot set both spiffe.expected_server_spiffe_id and spiffe.expected_server_trust_domain")
	}

	if hasServerID {
		if _, err := spiffeid.FromString(s.ExpectedServerSPIFFEID); err != nil {
			return fmt.Errorf("invalid spiffe.expected_server_spiffe_id %q: %w", s.ExpectedServerSPIFFEID, err)
		}
	}
	if hasTrustDomain {
		if _, err := spiffeid.TrustDomainFromString(s.ExpectedServerTrustDomain); err != nil {
			return fmt.Errorf("invalid spiffe.expected_server_trust_domain %q: %w", s.ExpectedServerTrustDomain, err)
		}
	}
	return nil
}

// RetryPolicy converts the retry section into a validated policy.
func RetryPolicy(cfg FileConfig) (domain.RetryPolicy, error) {
	delay, err := parseDuration("retry.initial_delay", cfg.Retry.InitialDelay)
	if err != nil {
		return domain.RetryPolicy{}, err
	}
	mode, err := domain.ParseOtherErrorMode(cfg.Retry.OtherErrors)
	if err != nil {
		return domain.RetryPolicy{}, fmt.Errorf("retry.other_errors: %w", err)
	}
	p := domain.RetryPolicy{MaxAttempts: cfg.Retry.MaxAttempts, InitialDelay: delay, OtherErrors: mode}
	if err := p.Validate(); err != nil {
		return domain.RetryPolicy{}, fmt.Errorf("retry: %w", err)
	}
	return p, nil
}

// MaxTimeToLive returns the session lifetime requested at login.
func MaxTimeToLive(cfg FileConfig) (time.Duration, error) {
	d, err := parseDuration("session.max_time_to_live", cfg.Session.MaxTimeToLive)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("session.max_time_to_live must be >= 0, got %s", d)
	}
	return d, nil
}

// BackendTimeout returns the per-request backend timeout (0 means none).
func BackendTimeout(cfg FileConfig) time.Duration {
	d, _ := parseDuration("backend.timeout", cfg.Backend.Timeout)
	return d
}

// InitialFetchTimeout returns the SPIFFE first-fetch timeout (0 means the adapter default).
func InitialFetchTimeout(cfg FileConfig) time.Duration {
	d, _ := parseDuration("spiffe.initial_fetch_timeout", cfg.SPIFFE.InitialFetchTimeout)
	return d
}

// parseDuration parses a Go duration; empty is zero.
func parseDuration(field, raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	return d, nil
}
