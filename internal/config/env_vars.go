package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvVars is the environment-variable backed portion of the configuration.
// Variable names follow the original deployment: the portal talks to a
// Databricks workspace for both OAuth and model serving.
type EnvVars struct {
	Port          string   `env:"PORT" envDefault:"3000"`
	AppName       string   `env:"APP_NAME" envDefault:"Summarize Portal"`
	Environment   string   `env:"ENV" envDefault:"DEV"`
	ProviderHost  string   `env:"DATABRICKS_HOST"`
	ClientID      string   `env:"DATABRICKS_CLIENT_ID"`
	ClientSecret  string   `env:"DATABRICKS_CLIENT_SECRET"`
	RedirectURI   string   `env:"REDIRECT_URI"`
	Scopes        []string `env:"OAUTH_SCOPES" envSeparator:" " envDefault:"openid all-apis offline_access"`
	VerifyTokens  bool     `env:"VERIFY_ID_TOKENS" envDefault:"false"`
	ServingTarget string   `env:"DATABRICKS_SERVING_ENDPOINT" envDefault:"databricks-claude-sonnet-4"`
}

var _ EnvConfig = EnvVars{}
var _ OAuthConfig = EnvVars{}

// LoadEnvVars parses the process environment into an EnvVars value
func LoadEnvVars() (EnvVars, error) {
	var e EnvVars
	if err := env.Parse(&e); err != nil {
		return EnvVars{}, fmt.Errorf("[config LoadEnvVars] failed to parse environment: %w", err)
	}
	return e, nil
}

func (e EnvVars) GetPort() string {
	port := e.Port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

func (e EnvVars) GetEnv() string {
	return e.Environment
}

func (e EnvVars) GetProviderHost() string {
	return e.ProviderHost
}

func (e EnvVars) GetClientID() string {
	return e.ClientID
}

func (e EnvVars) GetClientSecret() string {
	return e.ClientSecret
}

// GetRedirectURI returns the configured callback URI, or a localhost default
// derived from the port when none is set
func (e EnvVars) GetRedirectURI() string {
	if e.RedirectURI != "" {
		return e.RedirectURI
	}
	return fmt.Sprintf("http://localhost:%s/oauth/callback", e.Port)
}

func (e EnvVars) GetScopes() []string {
	return e.Scopes
}

func (e EnvVars) VerifyIDTokens() bool {
	return e.VerifyTokens
}

func (e EnvVars) GetServingEndpoint() string {
	return e.ServingTarget
}
