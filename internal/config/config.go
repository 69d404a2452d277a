package config

import "time"

type Config interface {
	EnvConfig
	OAuthConfig
	ServingConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
}

type OAuthConfig interface {
	GetProviderHost() string
	GetClientID() string
	GetClientSecret() string
	GetRedirectURI() string
	GetScopes() []string
	VerifyIDTokens() bool
}

type ServingConfig interface {
	GetServingEndpoint() string
	GetInvocationTimeout() time.Duration
}

type mainConfig struct {
	EnvVars
	Serving
}

func New() (Config, error) {
	envVars, err := LoadEnvVars()
	if err != nil {
		return nil, err
	}
	return mainConfig{EnvVars: envVars}, nil
}
