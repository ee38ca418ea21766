package config

import (
	"errors"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP    HTTPConfig
	DB      DBConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Render  RenderConfig
	Storage StorageConfig
	Mail    MailConfig
	Kafka   KafkaConfig
	Jobs    JobsConfig
	Log     LogConfig
}

type HTTPConfig struct {
	Port string
}

type DBConfig struct {
	Driver string
	DSN    string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type CacheConfig struct {
	TTL         time.Duration
	Compression string
}

type RenderConfig struct {
	Engine      string
	Timeout     time.Duration
	Concurrency int
	ChromePath  string
}

type StorageConfig struct {
	Driver  string
	Bucket  string
	Dir     string
	BaseURL string
	Region  string
}

type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type KafkaConfig struct {
	Brokers string
	Topic   string
}

type JobsConfig struct {
	TemplateWarmup string
}

type LogConfig struct {
	Level  string
	Format string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", "4001")
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "./.data/docgen.db")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.ttl", time.Hour)
	v.SetDefault("cache.compression", "gzip")
	v.SetDefault("render.engine", "gofpdf")
	v.SetDefault("render.timeout", 30*time.Second)
	v.SetDefault("render.concurrency", 4)
	v.SetDefault("render.chrome_path", "")
	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.dir", "./.data/objects")
	v.SetDefault("storage.base_url", "")
	v.SetDefault("storage.region", "eu-west-1")
	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.user", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "documents")
	v.SetDefault("jobs.template_warmup", "@every 10m")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// LoadConfig reads docgen.yml from the working directory or ./config when
// present. Environment variables override the file, e.g. RENDER_TIMEOUT=10s.
func LoadConfig() *Config {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("docgen")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logrus.Warnf("error reading config file: %v", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		HTTP: HTTPConfig{Port: v.GetString("http.port")},
		DB: DBConfig{
			Driver: v.GetString("db.driver"),
			DSN:    v.GetString("db.dsn"),
		},
		Redis: RedisConfig{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Cache: CacheConfig{
			TTL:         v.GetDuration("cache.ttl"),
			Compression: v.GetString("cache.compression"),
		},
		Render: RenderConfig{
			Engine:      v.GetString("render.engine"),
			Timeout:     v.GetDuration("render.timeout"),
			Concurrency: v.GetInt("render.concurrency"),
			ChromePath:  v.GetString("render.chrome_path"),
		},
		Storage: StorageConfig{
			Driver:  v.GetString("storage.driver"),
			Bucket:  v.GetString("storage.bucket"),
			Dir:     v.GetString("storage.dir"),
			BaseURL: v.GetString("storage.base_url"),
			Region:  v.GetString("storage.region"),
		},
		Mail: MailConfig{
			Host:     v.GetString("mail.host"),
			Port:     v.GetInt("mail.port"),
			User:     v.GetString("mail.user"),
			Password: v.GetString("mail.password"),
			From:     v.GetString("mail.from"),
		},
		Kafka: KafkaConfig{
			Brokers: v.GetString("kafka.brokers"),
			Topic:   v.GetString("kafka.topic"),
		},
		Jobs: JobsConfig{TemplateWarmup: v.GetString("jobs.template_warmup")},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}
