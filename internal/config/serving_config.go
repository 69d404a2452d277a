package config

import "time"

// Serving holds the fixed model-serving call policy
type Serving struct{}

func (Serving) GetInvocationTimeout() time.Duration {
	return 30 * time.Second
}
