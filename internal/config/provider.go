package config

import (
	"fmt"
	"strings"
)

// MainnetIdentityProvider is the provider URL on the ic network.
const MainnetIdentityProvider = "https://identity.ic0.app"

// Backend gateway hosts per network.
const (
	MainnetBackendHost = "https://icp-api.io"
	localBackendHost   = "http://127.0.0.1:%d"
)

// ProviderKind returns the configured provider kind, defaulting by network.
func ProviderKind(cfg FileConfig) string {
	if cfg.IdentityProvider.Kind != "" {
		return cfg.IdentityProvider.Kind
	}
	if cfg.Network == NetworkMemory {
		return ProviderMemory
	}
	return ProviderDelegation
}

// IdentityProviderURL selects the login URL.
//
// An explicit identity_provider.url wins. On the local network Safari gets
// the path form because it does not resolve localhost subdomains; other
// browsers get the subdomain form. On ic the mainnet provider is used.
func IdentityProviderURL(cfg FileConfig) string {
	ip := cfg.IdentityProvider
	if ip.URL != "" {
		return ip.URL
	}
	switch cfg.Network {
	case NetworkLocal:
		if IsSafari(ip.BrowserUserAgent) {
			return fmt.Sprintf("http://localhost:%d/?canisterId=%s", ip.LocalPort, ip.CanisterID)
		}
		return fmt.Sprintf("http://%s.localhost:%d", ip.CanisterID, ip.LocalPort)
	case NetworkIC:
		return MainnetIdentityProvider
	default:
		return ""
	}
}

// IsSafari reports whether ua names Safari and not a Chrome or Android
// browser that also mentions Safari. Matching is case-insensitive and
// mirrors /^((?!chrome|android).)*safari/i: the first "safari" must come
// before any "chrome" or "android".
func IsSafari(ua string) bool {
	lower := strings.ToLower(ua)
	i := strings.Index(lower, "safari")
	if i < 0 {
		return false
	}
	prefix := lower[:i]
	return !strings.Contains(prefix, "chrome") && !strings.Contains(prefix, "android")
}

// BackendHost returns the backend gateway URL without a trailing slash.
func BackendHost(cfg FileConfig) string {
	if cfg.Backend.Host != "" {
		return strings.TrimRight(cfg.Backend.Host, "/")
	}
	if cfg.Network == NetworkIC {
		return MainnetBackendHost
	}
	return fmt.Sprintf(localBackendHost, cfg.IdentityProvider.LocalPort)
}
