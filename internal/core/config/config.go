package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	MaxBodyBytes      int64
	RateRPS           float64 // 每个客户端 IP 的限流
	RateBurst         int
	MaxInFlight       int64 // 同时处理的请求上限
}

type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type LogSampling struct {
	Initial    int
	Thereafter int
}

type Log struct {
	Level    string
	JSON     bool
	Sampling LogSampling
	File     LogFile
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type Latency struct {
	MinMs int
	MaxMs int
}

type Retry struct {
	MaxRetries        int
	InitialDelayMs    int
	BackoffMultiplier float64
}

// Directory 目录服务本身的参数
type Directory struct {
	SeedFile  string
	Latency   Latency
	Retry     Retry
	FaultRate float64
}

type Config struct {
	App       App
	Log       Log
	JWT       JWT
	Redis     Redis `mapstructure:"redis"`
	Directory Directory
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "team-directory")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 10)
	v.SetDefault("app.http.writeTimeoutSec", 30)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.http.requestTimeoutSec", 25)
	v.SetDefault("app.http.maxBodyBytes", 1<<20)
	v.SetDefault("app.http.rateRPS", 20)
	v.SetDefault("app.http.rateBurst", 40)
	v.SetDefault("app.http.maxInFlight", 256)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.sampling.initial", 100)
	v.SetDefault("log.sampling.thereafter", 100)
	v.SetDefault("log.file.enable", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 30)
	v.SetDefault("log.file.compress", true)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "team-directory")
	v.SetDefault("jwt.accessTokenTTLMin", 24*60)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("directory.seedFile", "")
	v.SetDefault("directory.latency.minMs", 500)
	v.SetDefault("directory.latency.maxMs", 1000)
	v.SetDefault("directory.retry.maxRetries", 3)
	v.SetDefault("directory.retry.initialDelayMs", 1000)
	v.SetDefault("directory.retry.backoffMultiplier", 2.0)
	v.SetDefault("directory.faultRate", 0.0)
}

// Load 读取配置文件；path 为空时依次取 CONFIG_PATH、./configs/config.local.yaml。
// 默认路径下文件不存在时只用默认值 + 环境变量。
func Load(path string) (*Config, error) {
	v := viper.New()
	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt.secret is required (APP_JWT_SECRET)")
	}
	if c.Directory.Latency.MinMs < 0 || c.Directory.Latency.MaxMs < c.Directory.Latency.MinMs {
		return fmt.Errorf("directory.latency: invalid range [%d, %d]", c.Directory.Latency.MinMs, c.Directory.Latency.MaxMs)
	}
	if c.Directory.FaultRate < 0 || c.Directory.FaultRate > 1 {
		return fmt.Errorf("directory.faultRate must be within [0, 1], got %v", c.Directory.FaultRate)
	}
	if c.Directory.Retry.MaxRetries < 0 {
		return fmt.Errorf("directory.retry.maxRetries must be >= 0, got %d", c.Directory.Retry.MaxRetries)
	}
	return nil
}

func (d Directory) LatencyRange() (time.Duration, time.Duration) {
	return time.Duration(d.Latency.MinMs) * time.Millisecond, time.Duration(d.Latency.MaxMs) * time.Millisecond
}

func (r Retry) InitialDelay() time.Duration { return time.Duration(r.InitialDelayMs) * time.Millisecond }

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }
