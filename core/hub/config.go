package hub

// Config holds configuration for the notification hub.
type Config struct {
	// QueueSize is the outbound event queue capacity per connection.
	// A connection that falls this many events behind starts losing events.
	QueueSize int `mapstructure:"queue_size" default:"32"`
}
