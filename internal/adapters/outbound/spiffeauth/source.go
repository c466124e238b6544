package spiffeauth

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/spiffe/go-spiffe/v2/bundle/x509bundle"
	"github.com/spiffe/go-spiffe/v2/svid/x509svid"
	"github.com/spiffe/go-spiffe/v2/workloadapi"
)

// Source supplies the workload's SVID and trust bundles.
// workloadapi.X509Source satisfies it.
type Source interface {
	x509svid.Source
	x509bundle.Source
	Close() error
}

// Dialer connects to the Workload API at socket and waits for the first SVID.
type Dialer func(ctx context.Context, socket string) (Source, error)

// DialWorkloadAPI is the production Dialer. An empty socket lets the SDK
// read SPIFFE_ENDPOINT_SOCKET.
func DialWorkloadAPI(ctx context.Context, socket string) (Source, error) {
	var opts []workloadapi.X509SourceOption
	if socket != "" {
		opts = append(opts, workloadapi.WithClientOptions(workloadapi.WithAddr(normalizeToAddr(socket))))
	}
	src, err := workloadapi.NewX509Source(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create X509Source: %w", err)
	}
	return src, nil
}

// normalizeToAddr prefixes bare filesystem paths with unix://.
func normalizeToAddr(raw string) string {
	if strings.HasPrefix(raw, "unix://") || strings.HasPrefix(raw, "tcp://") {
		return raw
	}
	return "unix://" + raw
}

// closeOnce wraps a Source so Close is idempotent and later calls return
// the first result.
type closeOnce struct {
	Source
	once sync.Once
	err  error
}

func (c *closeOnce) Close() error {
	c.once.Do(func() { c.err = c.Source.Close() })
	return c.err
}
