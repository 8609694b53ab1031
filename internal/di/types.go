/**
 * Package di provides dependency injection type definitions.
 *
 * The Container holds every constructed dependency of the risk monitor and is
 * the single source of truth handed to the server and the scheduler.
 */
package di

import (
	"github.com/aristath/riskmonitor/internal/clients/yahoo"
	"github.com/aristath/riskmonitor/internal/metrics"
	"github.com/aristath/riskmonitor/internal/modules/marketdata"
	"github.com/aristath/riskmonitor/internal/modules/monitor"
	"github.com/aristath/riskmonitor/internal/modules/portfolio"
	"github.com/aristath/riskmonitor/internal/modules/risk"
	"github.com/aristath/riskmonitor/internal/scheduler"
	"github.com/aristath/riskmonitor/internal/sink"
)

// Container holds all application dependencies
type Container struct {
	// Clients
	YahooClient *yahoo.Client

	// Sink (selected by RISK_SINK)
	Sink sink.Sink

	// Services
	PortfolioLoader *portfolio.Loader
	Fetcher         *marketdata.Fetcher
	Calculator      *risk.Calculator
	MonitorService  *monitor.Service
	Metrics         *metrics.Metrics

	// Scheduler is nil unless RISK_SCHEDULE is set
	Scheduler *scheduler.Scheduler
}

// Close releases resources held by the sink
func (c *Container) Close() error {
	if closer, ok := c.Sink.(sink.Closer); ok {
		return closer.Close()
	}
	return nil
}
