package assets

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Prober answers whether a remote asset exists. Implementations must
// bound their own latency; a slow probe stalls the whole pass.
type Prober interface {
	Exists(ctx context.Context, url string) bool
}

// HTTPProber checks existence with a HEAD request and a short timeout.
type HTTPProber struct {
	client *http.Client
	log    *zap.Logger
}

func NewHTTPProber(timeout time.Duration, log *zap.Logger) *HTTPProber {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPProber{
		client: &http.Client{Timeout: timeout},
		log:    log.Named("assets.prober"),
	}
}

func (p *HTTPProber) Exists(ctx context.Context, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Debug("asset probe failed", zap.String("url", url), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
