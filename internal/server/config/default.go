package config

// Default configuration values.
const (
	DefaultRedisAddr      = "127.0.0.1:6379"
	DefaultReadBufferSize = 1024

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Redis: RedisConfig{
				Addr:           DefaultRedisAddr,
				ReadBufferSize: DefaultReadBufferSize,
			},
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
