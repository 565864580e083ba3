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
	TMDB             tmdbConfig             `yaml:"tmdb"`
	Cache            cacheConfig            `yaml:"cache"`
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
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

type tmdbConfig struct {
	BaseURL   string        `yaml:"baseURL"`
	APIKey    string        `yaml:"apiKey"`
	Language  string        `yaml:"language"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rateLimit"`
	Burst     int           `yaml:"burst"`
}

type cacheConfig struct {
	// Backend is one of memory, redis or mongo.
	Backend string      `yaml:"backend"`
	Redis   redisConfig `yaml:"redis"`
	Mongo   mongoConfig `yaml:"mongo"`
}

type redisConfig struct {
	Address  string        `yaml:"address"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

type mongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
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
	setString(&cfg.TMDB.APIKey, "TMDB_API_KEY")
	setString(&cfg.TMDB.BaseURL, "TMDB_BASE_URL")
	setString(&cfg.Cache.Backend, "CACHE_BACKEND")
	setString(&cfg.Cache.Redis.Address, "REDIS_ADDR")
	setString(&cfg.Cache.Redis.Password, "REDIS_PASSWORD")
	setString(&cfg.Cache.Mongo.URI, "MONGO_URI")
	setString(&cfg.ServiceDiscovery.Consul.Address, "CONSUL_ADDR")
	setString(&cfg.Jaeger.Host, "JAEGER_AGENT_HOST")
	setString(&cfg.Jaeger.Port, "JAEGER_AGENT_PORT")
	if v, err := strconv.Atoi(os.Getenv("PORT")); err == nil {
		cfg.API.Port = v
	}
	return &cfg, nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
