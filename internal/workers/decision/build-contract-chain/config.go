// internal/workers/decision/build-contract-chain/config.go
package buildcontractchain

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
