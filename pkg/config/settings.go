package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

// Settings are defaults taken from the environment. Command line flags win.
type Settings struct {
	Output    string `env:"JMETER_REPORTS_OUTPUT,default=results"`
	SearchURL string `env:"JMETER_REPORTS_SEARCH_URL"`
	Index     string `env:"JMETER_REPORTS_INDEX,default=jmeter-reports"`
}

// LoadSettings reads Settings from the process environment.
func LoadSettings(ctx context.Context) (Settings, error) {
	var s Settings
	if err := envconfig.Process(ctx, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
