package dbosruntime

// Config holds DBOS runtime configuration
type Config struct {
	// DatabaseURL is the PostgreSQL connection string for DBOS state
	// storage. Required.
	DatabaseURL string

	// AppName identifies this application in DBOS. Required.
	AppName string

	// QueueName is the workflow queue name. Defaults to "default".
	QueueName string

	// Concurrency is the number of concurrent workers per queue.
	// A value of 0 means client mode: enqueue only.
	Concurrency int

	// ApplicationVersion overrides the default binary hash for version
	// matching, allowing multiple binaries to share workflows. Optional.
	ApplicationVersion string
}

// WithDefaults fills in default values for optional fields
func (c *Config) WithDefaults() {
	if c.QueueName == "" {
		c.QueueName = "default"
	}
}
