package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"prod"`
	HTTPServer `yaml:"http_server"`

	DBUser     string `yaml:"db_user" env:"DB_USER" env-required:"true"`
	DBPassword string `yaml:"db_password" env:"DB_PASSWORD"`
	DBHost     string `yaml:"db_host" env:"DB_HOST" env-default:"localhost"`
	DBPort     int    `yaml:"db_port" env:"DB_PORT" env-default:"3306"`
	DBName     string `yaml:"db_name" env:"DB_NAME" env-required:"true"`

	RouteAPI RouteAPI `yaml:"route_api"`
	Import   Import   `yaml:"import"`

	AdminLogin string `yaml:"admin_login" env:"ADMIN_LOGIN"`
	AdminPass  string `yaml:"admin_pass" env:"ADMIN_PASS"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env-default:"localhost:4001"`
	Timeout     time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RouteAPI points at the external routing system orders are imported from.
type RouteAPI struct {
	BaseURL string        `yaml:"base_url" env:"ROUTE_API_URL" env-default:"https://api.optimoroute.com/v1"`
	APIKey  string        `yaml:"api_key" env:"ROUTE_API_KEY" env-required:"true"`
	Timeout time.Duration `yaml:"timeout" env-default:"30s"`
}

type Import struct {
	ChunkSize int `yaml:"chunk_size" env-default:"50"`
	// DetailBatch is how many order numbers go into one completion-details call.
	DetailBatch int `yaml:"detail_batch" env-default:"100"`
}

func MustLoad() *Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/local.yaml"
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}

	return &cfg
}
