package kernel

import (
	"fmt"

	"github.com/npillmayer/xterex/terex"
)

// StreamStderr is the stream channel warnings are published on.
const StreamStderr = "stderr"

// Publisher is the host side of out-of-band stream notifications.
type Publisher interface {
	PublishStream(channel string, text string)
}

// PublisherFunc adapts a function to the Publisher interface.
type PublisherFunc func(channel string, text string)

// PublishStream calls f(channel, text).
func (f PublisherFunc) PublishStream(channel string, text string) {
	f(channel, text)
}

// WarningRelay forwards engine warnings to a Publisher. Each warning is
// forwarded as soon as the engine raises it, in the order raised. Nothing is
// buffered, counted or deduplicated.
type WarningRelay struct {
	publisher Publisher
}

// NewWarningRelay creates a relay publishing to pub. A nil publisher drops
// warnings after tracing them.
func NewWarningRelay(pub Publisher) *WarningRelay {
	return &WarningRelay{publisher: pub}
}

// OnWarning is installed as warning hook of compiler and VM.
func (r *WarningRelay) OnWarning(w *terex.Error) {
	tracer().Debugf("relaying warning %s", w.ID)
	if r.publisher == nil {
		return
	}
	r.publisher.PublishStream(StreamStderr, FormatWarning(w.ID, w.Msg))
}

// FormatWarning renders a warning as a stream line.
func FormatWarning(id, message string) string {
	return fmt.Sprintf("Warning [%s]: %s\n", id, message)
}
