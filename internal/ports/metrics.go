package ports

type Metrics interface {
	SearchCompleted(result string)
	RefreshTicked(result string)
	RefreshActive(active bool)
	WaitResolved(outcome string)
	WaitActive(active bool)
}

type NopMetrics struct{}

func (NopMetrics) SearchCompleted(string) {}
func (NopMetrics) RefreshTicked(string)   {}
func (NopMetrics) RefreshActive(bool)     {}
func (NopMetrics) WaitResolved(string)    {}
func (NopMetrics) WaitActive(bool)        {}
