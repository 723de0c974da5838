package domain

// TrainingCallback is the JSON body of a provider webhook delivery. It is
// consumed within a single request and never persisted.
type TrainingCallback struct {
	ID      string           `json:"id"`
	Status  TrainingStatus   `json:"status"`
	Error   *string          `json:"error,omitempty"`
	Metrics *CallbackMetrics `json:"metrics,omitempty"`
	Output  *CallbackOutput  `json:"output,omitempty"`
}

// CallbackMetrics carries timing information reported on success.
type CallbackMetrics struct {
	TotalTime *float64 `json:"total_time,omitempty"`
}

// CallbackOutput carries the trained artifact reference reported on success.
// Version has the form "owner/model:version".
type CallbackOutput struct {
	Version string `json:"version,omitempty"`
	Weights string `json:"weights,omitempty"`
}
