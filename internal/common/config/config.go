// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds settings for the webhook/health HTTP server.
type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// CatalogConfig holds settings for the university catalog source.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// PaymentConfig holds settings for the Click.uz gateway integration.
type PaymentConfig struct {
	ServiceID      string `mapstructure:"service_id"`
	MerchantID     string `mapstructure:"merchant_id"`
	SecretKey      string `mapstructure:"secret_key"`
	MerchantUserID string `mapstructure:"merchant_user_id"`
	Amount         string `mapstructure:"amount"` // fixed fee, "37000.00"
	APIBaseURL     string `mapstructure:"api_base_url"`
	PayBaseURL     string `mapstructure:"pay_base_url"`
	ReturnURL      string `mapstructure:"return_url"`
	Timeout        int    `mapstructure:"timeout"` // milliseconds
}

// IsConfigured reports whether the credentials needed for invoice creation
// are all present. Checked at score submission, not at startup.
func (p PaymentConfig) IsConfigured() bool {
	return p.ServiceID != "" && p.MerchantID != "" && p.SecretKey != ""
}

type DatabaseConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
