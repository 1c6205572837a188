package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
	DriverMongo     = "mongo"
	DriverMemory    = "memory"

	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

type Config struct {
	Port                    string        `validate:"required,numeric"`
	Env                     string        `validate:"required"`
	StoreDriver             string        `validate:"oneof=firestore postgres mongo memory"`
	AuthMode                string        `validate:"oneof=firebase jwt"`
	FirebaseCredentialsPath string        `validate:"required_if=StoreDriver firestore,required_if=AuthMode firebase"`
	PostgresConnStr         string        `validate:"required_if=StoreDriver postgres"`
	MongoURI                string        `validate:"required_if=StoreDriver mongo"`
	MongoDatabase           string
	JWTSecret               string        `validate:"required_if=AuthMode jwt"`
	StoreTimeout            time.Duration `validate:"gte=0"`
	ReconcileInterval       time.Duration `validate:"gte=0"`
	PlaceholderName         string
}

// Load reads the configuration from the environment, after loading a .env
// file from the working directory when one exists.
func Load() (*Config, error) {
	// A missing .env is normal in deployed environments.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("STORE_DRIVER", DriverFirestore)
	v.SetDefault("AUTH_MODE", AuthFirebase)
	v.SetDefault("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json")
	v.SetDefault("MONGO_DATABASE", "matrimony")
	v.SetDefault("STORE_TIMEOUT", "10s")
	v.SetDefault("RECONCILE_INTERVAL", "5m")
	v.SetDefault("PLACEHOLDER_NAME", "Someone")

	cfg := &Config{
		Port:                    v.GetString("PORT"),
		Env:                     v.GetString("ENV"),
		StoreDriver:             v.GetString("STORE_DRIVER"),
		AuthMode:                v.GetString("AUTH_MODE"),
		FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		PostgresConnStr:         v.GetString("POSTGRES_CONN_STR"),
		MongoURI:                v.GetString("MONGO_URI"),
		MongoDatabase:           v.GetString("MONGO_DATABASE"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		StoreTimeout:            v.GetDuration("STORE_TIMEOUT"),
		ReconcileInterval:       v.GetDuration("RECONCILE_INTERVAL"),
		PlaceholderName:         v.GetString("PLACEHOLDER_NAME"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// NeedsFirebase reports whether the Firebase app has to be initialized
func (c *Config) NeedsFirebase() bool {
	return c.StoreDriver == DriverFirestore || c.AuthMode == AuthFirebase
}
