package config

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	DatabaseURL string `env:"DATABASE_URL"`
	SelfURL     string `env:"SELF_URL"`

	Payme Payme `envPrefix:"PAYME_"`
	Click Click `envPrefix:"CLICK_"`
}

type Payme struct {
	// MerchantKey is the shared secret Payme sends as Basic auth on every
	// callback. It seeds the secret store and can be rotated at runtime via
	// ChangePassword.
	MerchantKey string `env:"MERCHANT_KEY"`
	Login       string `env:"LOGIN" envDefault:"Paycom"`
}

type Click struct {
	BaseApiURL     string `env:"BASE_API_URL" envDefault:"https://api.click.uz/v2"`
	ServiceID      int    `env:"SERVICE_ID"`
	MerchantUserID string `env:"MERCHANT_USER_ID"`
	SecretKey      string `env:"SECRET_KEY"`
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
