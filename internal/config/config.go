package config

import "fmt"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer

	Mongo      Mongo      `envPrefix:"MONGO_"`
	Auth       Auth       `envPrefix:"AUTH_"`
	Razorpay   Razorpay   `envPrefix:"RAZORPAY_"`
	Shiprocket Shiprocket `envPrefix:"SHIPROCKET_"`
}

type Mongo struct {
	URI      string `env:"URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"DATABASE" envDefault:"storefront"`
}

type Auth struct {
	// Secret verifies bearer tokens issued by the identity provider.
	Secret string `env:"JWT_SECRET"`
}

type Razorpay struct {
	BaseURL   string `env:"BASE_URL" envDefault:"https://api.razorpay.com"`
	KeyID     string `env:"KEY_ID"`
	KeySecret string `env:"KEY_SECRET"`
	// Currency is the settlement currency every gateway order is opened in.
	Currency string `env:"CURRENCY" envDefault:"INR"`
}

type Shiprocket struct {
	BaseURL        string `env:"BASE_URL" envDefault:"https://apiv2.shiprocket.in"`
	Email          string `env:"EMAIL"`
	Password       string `env:"PASSWORD"`
	PickupLocation string `env:"PICKUP_LOCATION" envDefault:"Primary"`
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

// Validate fails fast on missing credentials so a misconfigured deployment
// dies at boot instead of surfacing a cryptic downstream failure.
func (c *Config) Validate() error {
	if c.Auth.Secret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if c.Razorpay.KeyID == "" || c.Razorpay.KeySecret == "" {
		return fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}
	if c.Shiprocket.Email == "" || c.Shiprocket.Password == "" {
		return fmt.Errorf("SHIPROCKET_EMAIL and SHIPROCKET_PASSWORD are required")
	}
	return nil
}
