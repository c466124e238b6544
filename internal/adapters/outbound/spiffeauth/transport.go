package spiffeauth

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net/http"
	"strings"

	"github.com/sufield/yummy/internal/domain"
)

// taggingTransport marks certificate verification failures as transient
// signature errors so the caller's retry policy applies.
type taggingTransport struct {
	base http.RoundTripper
}

func (t *taggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if err != nil && isVerificationError(err) {
		return nil, domain.NewCallError(domain.KindTransientSignature, req.URL.Path, err)
	}
	return resp, err
}

func isVerificationError(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		invalid          x509.CertificateInvalidError
		verification     *tls.CertificateVerificationError
	)
	switch {
	case errors.As(err, &unknownAuthority),
		errors.As(err, &invalid),
		errors.As(err, &verification):
		return true
	}
	// go-spiffe reports chain failures as plain errors.
	return strings.Contains(err.Error(), "x509svid: could not verify")
}
