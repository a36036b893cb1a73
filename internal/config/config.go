package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	Auth   Auth   `envPrefix:"AUTH_"`
	Webpay Webpay `envPrefix:"WEBPAY_"`
	Orders Orders `envPrefix:"ORDERS_"`
}

type Webpay struct {
	BaseApiURL   string `env:"BASE_API_URL"`
	CommerceCode string `env:"COMMERCE_CODE"`
	ApiKey       string `env:"API_KEY"`
	ReturnURL    string `env:"RETURN_URL"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

type Orders struct {
	// Allows administrative callers to force PENDING -> PAID without a
	// gateway confirmation. Off unless the operator opts in.
	AllowForcePaid bool `env:"ALLOW_FORCE_PAID" envDefault:"false"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}
