package backend

import (
	"time"

	"github.com/cockroachdb/errors"
)

type Config struct {
	// URL is the control daemon base URL.
	URL string `mapstructure:"url"`

	// MockData serves deterministic synthetic responses instead of calling the daemon.
	MockData bool `mapstructure:"mock_data"`

	// Debug logs every request.
	Debug bool `mapstructure:"debug"`

	Timeout time.Duration `mapstructure:"timeout"`

	// MockLatencyScale multiplies the simulated latencies. 0 disables them.
	MockLatencyScale float64 `mapstructure:"mock_latency_scale"`
}

// New returns the control API selected by the configuration.
func New(config Config) (ControlAPI, error) {
	if config.MockData {
		return NewMock(WithLatencyScale(config.MockLatencyScale)), nil
	}
	api, err := NewHTTP(config)
	if err != nil {
		return nil, errors.Wrap(err, "can't create control api client")
	}
	return api, nil
}
