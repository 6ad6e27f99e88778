package http

import (
	"github.com/GriffinCanCode/remotehub/internal/infrastructure/monitoring"
)

// HandlerMetrics wraps handlers with operation timing
type HandlerMetrics struct {
	metrics *monitoring.Metrics
}

// NewHandlerMetrics creates a metrics wrapper. A nil metrics disables it.
func NewHandlerMetrics(metrics *monitoring.Metrics) *HandlerMetrics {
	return &HandlerMetrics{metrics: metrics}
}

// Track starts timing operation. The returned func records it as a success
// or an error depending on err.
func (hm *HandlerMetrics) Track(operation string) func(err error) {
	timer := monitoring.NewTimer(hm.metrics, operation)
	return func(err error) {
		status := "success"
		if err != nil {
			status = "error"
		}
		timer.Stop(status)
	}
}
