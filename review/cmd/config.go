package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type config struct {
	API              apiConfig              `yaml:"api"`
	Auth             authConfig             `yaml:"auth"`
	Firebase         firebaseConfig         `yaml:"firebase"`
	Store            storeConfig            `yaml:"store"`
	Notifier         notifierConfig         `yaml:"notifier"`
	Metadata         metadataConfig         `yaml:"metadata"`
	ServiceDiscovery serviceDiscoveryConfig `yaml:"serviceDiscovery"`
	Jaeger           jaegerConfig           `yaml:"jaeger"`
}

type apiConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	GRPCPort       int           `yaml:"grpcPort"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	RateLimit      int           `yaml:"rateLimit"`
	Burst          int           `yaml:"burst"`
	SecureCookies  bool          `yaml:"secureCookies"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

type authConfig struct {
	Provider  string `yaml:"provider"`
	JWTSecret string `yaml:"jwtSecret"`
}

type firebaseConfig struct {
	ProjectID       string `yaml:"projectId"`
	CredentialsFile string `yaml:"credentialsFile"`
}

type storeConfig struct {
	Backend string      `yaml:"backend"`
	MySQL   mysqlConfig `yaml:"mysql"`
}

type mysqlConfig struct {
	DSN string `yaml:"dsn"`
}

type notifierConfig struct {
	HubBuffer int         `yaml:"hubBuffer"`
	Kafka     kafkaConfig `yaml:"kafka"`
	FCM       fcmConfig   `yaml:"fcm"`
}

type kafkaConfig struct {
	Enabled          bool   `yaml:"enabled"`
	BootstrapServers string `yaml:"bootstrapServers"`
	Topic            string `yaml:"topic"`
}

type fcmConfig struct {
	Enabled bool `yaml:"enabled"`
}

type metadataConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type serviceDiscoveryConfig struct {
	Consul consulConfig `yaml:"consul"`
}

type consulConfig struct {
	Address string `yaml:"address"`
}

type jaegerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

// usesFirebase reports whether any component needs a Firebase app.
func (c *config) usesFirebase() bool {
	return c.Auth.Provider == "firebase" || c.Store.Backend == "firestore" || c.Notifier.FCM.Enabled
}

// loadConfig decodes the yaml file at path and applies environment
// overrides, reading a .env file first if one exists.
func loadConfig(path string) (*config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var cfg config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, err
	}

	_ = godotenv.Load()
	setString(&cfg.Auth.Provider, "AUTH_PROVIDER")
	setString(&cfg.Auth.JWTSecret, "JWT_SECRET")
	setString(&cfg.Firebase.ProjectID, "FIREBASE_PROJECT_ID")
	setString(&cfg.Firebase.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&cfg.Store.Backend, "STORE_BACKEND")
	setString(&cfg.Store.MySQL.DSN, "MYSQL_DSN")
	setString(&cfg.Notifier.Kafka.BootstrapServers, "KAFKA_BOOTSTRAP_SERVERS")
	setString(&cfg.ServiceDiscovery.Consul.Address, "CONSUL_ADDR")
	setString(&cfg.Jaeger.Host, "JAEGER_AGENT_HOST")
	setString(&cfg.Jaeger.Port, "JAEGER_AGENT_PORT")
	if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.API.Port = v
	}
	if v, err := strconv.ParseBool(os.Getenv("KAFKA_ENABLED")); err == nil {
		cfg.Notifier.Kafka.Enabled = v
	}
	return &cfg, nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
