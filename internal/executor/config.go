package executor

const (
	defaultTimeoutSeconds = 5
	defaultMemoryLimitMB  = 256
)

// Config holds execution limits. Constructed once per engine instance and
// never mutated. MemoryLimitMB is enforced with a data-segment rlimit in the
// worker helper on linux and is advisory elsewhere.
type Config struct {
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	MemoryLimitMB  int    `yaml:"memoryLimitMB"`
	HelperPath     string `yaml:"helperPath"`
}

func (c Config) withDefaults() Config {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.MemoryLimitMB <= 0 {
		c.MemoryLimitMB = defaultMemoryLimitMB
	}
	return c
}
