package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowedOrigins"`
		RateLimitRPS   float64  `yaml:"rateLimitRPS"`
		RateLimitBurst int      `yaml:"rateLimitBurst"`
	} `yaml:"server"`

	Database struct {
		Driver   string `yaml:"driver"` // mysql | postgres | "" (disabled)
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		SSLMode  string `yaml:"sslMode"`
	} `yaml:"database"`

	Minio struct {
		Enabled    bool   `yaml:"enabled"`
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	OpenAI struct {
		APIKey  string        `yaml:"apiKey"`
		Model   string        `yaml:"model"`
		BaseURL string        `yaml:"baseURL"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"openai"`

	Analysis struct {
		PromptSalt        string        `yaml:"promptSalt"` // extra cache key salt; the prompt version is always included
		MaxDimension      int           `yaml:"maxDimension"`
		JPEGQuality       int           `yaml:"jpegQuality"`
		Concurrency       int           `yaml:"concurrency"`
		RequestsPerMinute int           `yaml:"requestsPerMinute"`
		PhotoTimeout      time.Duration `yaml:"photoTimeout"`
		DefectTerms       []string      `yaml:"defectTerms"`
	} `yaml:"analysis"`

	Cache struct {
		Driver    string `yaml:"driver"` // file | sqlite | redis
		Dir       string `yaml:"dir"`
		Path      string `yaml:"path"`
		RedisAddr string `yaml:"redisAddr"`
	} `yaml:"cache"`

	Output struct {
		Dir string `yaml:"dir"`
	} `yaml:"output"`

	Log struct {
		Mode string `yaml:"mode"`
	} `yaml:"log"`

	Auth struct {
		APIKeys map[string]string `yaml:"apiKeys"` // client id -> key
	} `yaml:"auth"`
}

// Load baca file config yaml, lalu env override dan default.
// A missing file is not an error: everything can come from the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv("INSPEKTA_CACHE_DIR"); v != "" {
		c.Cache.Dir = v
	}
	if v := os.Getenv("INSPEKTA_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitRPS <= 0 {
		c.Server.RateLimitRPS = 5
	}
	if c.Server.RateLimitBurst <= 0 {
		c.Server.RateLimitBurst = 20
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.OpenAI.Timeout == 0 {
		c.OpenAI.Timeout = 90 * time.Second
	}
	if c.Analysis.MaxDimension <= 0 {
		c.Analysis.MaxDimension = 1568
	}
	if c.Analysis.JPEGQuality <= 0 || c.Analysis.JPEGQuality > 100 {
		c.Analysis.JPEGQuality = 88
	}
	if c.Analysis.Concurrency <= 0 {
		c.Analysis.Concurrency = 4
	}
	if c.Analysis.RequestsPerMinute <= 0 {
		c.Analysis.RequestsPerMinute = 60
	}
	if c.Analysis.PhotoTimeout <= 0 {
		c.Analysis.PhotoTimeout = 3 * time.Minute
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "file"
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = ".cache/analysis"
	}
	if c.Cache.Path == "" {
		c.Cache.Path = ".cache/analysis.db"
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "reports"
	}
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	ssl := c.Database.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		ssl,
	)
}
