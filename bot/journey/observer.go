package journey

// Metrics receives interpreter events. The prometheus implementation lives in internal/metrics.
type Metrics interface {
	JourneyStarted(product string)
	Transition(product string, from, to StepID)
	Response(product string, widget WidgetType, accepted bool)
	Fallback(product, reason string)
}

type nopMetrics struct{}

func (nopMetrics) JourneyStarted(string)             {}
func (nopMetrics) Transition(string, StepID, StepID) {}
func (nopMetrics) Response(string, WidgetType, bool) {}
func (nopMetrics) Fallback(string, string)           {}
