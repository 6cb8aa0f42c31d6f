package config

type EnvConfig interface {
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
}

// EnvVars holds the process wide settings.
type EnvVars struct {
	AppName  string `env:"APP_NAME" envDefault:"Session Gateway"`
	Env      string `env:"ENV" envDefault:"DEV"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetAppName() string {
	return e.AppName
}

// GetEnv returns the environment name, DEV by default.
func (e EnvVars) GetEnv() string {
	return e.Env
}

func (e EnvVars) GetLogLevel() string {
	return e.LogLevel
}
