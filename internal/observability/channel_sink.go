package observability

import (
	"fmt"
	"time"
)

// ChannelSink is a MetricsSink that renders every event as one formatted
// line and forwards it on Lines, for a live UI (the CLI's watch mode) to
// consume. Sends are non-blocking: a full channel drops the line rather
// than stalling the pipe.
type ChannelSink struct {
	Lines chan string
}

// NewChannelSink constructs a ChannelSink with a buffered channel of the
// given capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelSink{Lines: make(chan string, buffer)}
}

func (c *ChannelSink) emit(line string) {
	select {
	case c.Lines <- line:
	default:
	}
}

func (c *ChannelSink) PipeStarted(pipeName string, _ map[string]any) {
	c.emit(fmt.Sprintf("pipe %s started", pipeName))
}

func (c *ChannelSink) PipeCompleted(pipeName string, _, _ map[string]any, duration time.Duration, opCount int) {
	c.emit(fmt.Sprintf("pipe %s completed in %s (%d operations)", pipeName, FormatDuration(duration), opCount))
}

func (c *ChannelSink) PipeFailed(pipeName string, err error, duration time.Duration) {
	c.emit(fmt.Sprintf("pipe %s failed after %s: %s", pipeName, FormatDuration(duration), err))
}

func (c *ChannelSink) StageStarted(stageName string, namespaceCount int, pipeName string) {
	c.emit(fmt.Sprintf("  stage %s/%s started (%d namespace(s))", pipeName, stageName, namespaceCount))
}

func (c *ChannelSink) StageCompleted(stageName string, namespaceCount int, duration time.Duration, pipeName string) {
	c.emit(fmt.Sprintf("  stage %s/%s completed in %s (%d namespace(s))", pipeName, stageName, FormatDuration(duration), namespaceCount))
}

func (c *ChannelSink) StageFailed(stageName string, err error, duration time.Duration, pipeName string) {
	c.emit(fmt.Sprintf("  stage %s/%s failed after %s: %s", pipeName, stageName, FormatDuration(duration), err))
}

func (c *ChannelSink) OperationStarted(opClass string, _ map[string]any, stageName, pipeName string) {
	c.emit(fmt.Sprintf("    operation %s/%s/%s started", pipeName, stageName, opClass))
}

func (c *ChannelSink) OperationCompleted(opClass string, _ map[string]any, duration time.Duration, stageName, pipeName string) {
	c.emit(fmt.Sprintf("    operation %s/%s/%s completed in %s", pipeName, stageName, opClass, FormatDuration(duration)))
}

func (c *ChannelSink) OperationFailed(opClass string, _ map[string]any, err error, duration time.Duration, stageName, pipeName string) {
	c.emit(fmt.Sprintf("    operation %s/%s/%s failed after %s: %s", pipeName, stageName, opClass, FormatDuration(duration), err))
}

func (c *ChannelSink) ModelCalled(modelName string, _, _ string, tokensIn, tokensOut int, duration time.Duration) {
	c.emit(fmt.Sprintf("    model %s called in %s (%d in / %d out tokens)", modelName, FormatDuration(duration), tokensIn, tokensOut))
}

var _ MetricsSink = (*ChannelSink)(nil)
