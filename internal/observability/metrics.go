// Package observability implements the two sink surfaces every pipeline
// component emits against: a structured MetricsSink (null-implementable)
// and a human-readable TraceSink. Both are narrow interfaces with a no-op
// default, the same "optional hooks on a concrete adapter" shape as the
// teacher's ports.Logger/ports.EventPublisher pairing.
package observability

import "time"

// MetricsSink receives structured lifecycle events from the pipe, its
// stages, and their operations. Every method is optional: embed
// NoopMetricsSink and override only what you need.
type MetricsSink interface {
	PipeStarted(pipeName string, input map[string]any)
	PipeCompleted(pipeName string, input, output map[string]any, duration time.Duration, opCount int)
	PipeFailed(pipeName string, err error, duration time.Duration)

	StageStarted(stageName string, namespaceCount int, pipeName string)
	StageCompleted(stageName string, namespaceCount int, duration time.Duration, pipeName string)
	StageFailed(stageName string, err error, duration time.Duration, pipeName string)

	OperationStarted(opClass string, input map[string]any, stageName, pipeName string)
	OperationCompleted(opClass string, input map[string]any, duration time.Duration, stageName, pipeName string)
	OperationFailed(opClass string, input map[string]any, err error, duration time.Duration, stageName, pipeName string)

	ModelCalled(modelName string, input, output string, tokensIn, tokensOut int, duration time.Duration)
}

// NoopMetricsSink implements MetricsSink with every method a no-op. Embed it
// to implement only the hooks you care about.
type NoopMetricsSink struct{}

func (NoopMetricsSink) PipeStarted(string, map[string]any)                                        {}
func (NoopMetricsSink) PipeCompleted(string, map[string]any, map[string]any, time.Duration, int)   {}
func (NoopMetricsSink) PipeFailed(string, error, time.Duration)                                    {}
func (NoopMetricsSink) StageStarted(string, int, string)                                           {}
func (NoopMetricsSink) StageCompleted(string, int, time.Duration, string)                          {}
func (NoopMetricsSink) StageFailed(string, error, time.Duration, string)                           {}
func (NoopMetricsSink) OperationStarted(string, map[string]any, string, string)                    {}
func (NoopMetricsSink) OperationCompleted(string, map[string]any, time.Duration, string, string)    {}
func (NoopMetricsSink) OperationFailed(string, map[string]any, error, time.Duration, string, string) {}
func (NoopMetricsSink) ModelCalled(string, string, string, int, int, time.Duration)                {}

var _ MetricsSink = NoopMetricsSink{}
