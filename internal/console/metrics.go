package console

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"

	mdw "user-admin-console/internal/transport/http/middleware"
)

// PushJob is the Pushgateway job the console reports under.
const PushJob = "user_admin_console"

// PushMetrics sends the users API client metrics to a Pushgateway. A CLI run is
// too short-lived to be scraped.
func PushMetrics(ctx context.Context, url string) error {
	p := push.New(url, PushJob)
	for _, c := range mdw.Collectors() {
		p = p.Collector(c)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
