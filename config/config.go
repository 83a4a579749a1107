package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config 全局配置
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Ingest   IngestConfig   `mapstructure:"ingest"`
	Digest   DigestConfig   `mapstructure:"digest"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" validate:"required"`
	Mode string `mapstructure:"mode" validate:"oneof=debug release test"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	DSN    string `mapstructure:"dsn" validate:"required"`
	// 连接池
	MaxOpenConns int `mapstructure:"max_open_conns"`
	MaxIdleConns int `mapstructure:"max_idle_conns"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr" validate:"required"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// IngestConfig content-published 消费与入库参数
type IngestConfig struct {
	Stream        string   `mapstructure:"stream" validate:"required"`
	Group         string   `mapstructure:"group" validate:"required"`
	Consumer      string   `mapstructure:"consumer"`
	BannedAuthors []string `mapstructure:"banned_authors"`
	// 超过该数量仅打日志提示，不算错误
	KeywordLimit int `mapstructure:"keyword_limit"`
}

type DigestConfig struct {
	QueueSize  int     `mapstructure:"queue_size"`
	Workers    int     `mapstructure:"workers"`
	RatePerSec float64 `mapstructure:"rate_per_sec"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load 读取配置（文件 + 环境变量），缺省值兜底
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix("CE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 允许无配置文件，全部走默认值/环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "content.db")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("ingest.stream", "content-published")
	v.SetDefault("ingest.group", "content-engine")
	v.SetDefault("ingest.consumer", "worker-1")
	v.SetDefault("ingest.keyword_limit", 5)
	v.SetDefault("digest.queue_size", 10000)
	v.SetDefault("digest.workers", 4)
	v.SetDefault("digest.rate_per_sec", 20)
	v.SetDefault("log.level", "info")
}
