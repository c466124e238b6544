// Package spiffeauth authenticates a workload with an X.509 SVID from the
// SPIFFE Workload API instead of an interactive login.
//
// Login fetches the SVID; the resulting Identity carries an mTLS HTTP client
// that the backend actor uses in place of request signing. Certificate
// verification failures from that client are tagged as transient signature
// failures so the retry loop treats them like a clock-skewed signature.
package spiffeauth
