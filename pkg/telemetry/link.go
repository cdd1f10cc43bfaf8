package telemetry

// Link is a source of telemetry frames (a real board or the in-process simulator).
type Link interface {
	Connect() error
	Close() error
	// Frames is closed when the link is closed.
	Frames() <-chan Frame
	IsConnected() bool
}

// DefaultBufferSize is the default capacity of the frame channel.
const DefaultBufferSize = 100

var (
	_ Link = (*Serial)(nil)
	_ Link = (*Feed)(nil)
)
