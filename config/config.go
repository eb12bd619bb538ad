package config

import (
	"database/sql"
	"fmt"
	_ "github.com/lib/pq"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"strings"
	"time"
)

type Config struct {
	MinIOBucket string        `yaml:"minio_bucket"`
	App         App           `yaml:"app"`
	DB          *sql.DB       `yaml:"db"`
	Queue       *RabbitMQ     `yaml:"rabbitmq"`
	Storage     *minio.Client `yaml:"storage"`
	Redis       *redis.Client `yaml:"redis"`
	Server      Server        `yaml:"server"`
	Review      Review        `yaml:"review"`
	Moderation  Moderation    `yaml:"moderation"`
	Deletion    Deletion      `yaml:"deletion"`
}

type App struct {
	Environment string `yaml:"environment"`
	Host        string `yaml:"host"`
	Protocol    string `yaml:"protocol"`
}

type Server struct {
	HttpPort string `yaml:"http_port"`
	Workers  int    `yaml:"workers"`
}

type RabbitMQ struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Pass         string `json:"pass"`
	ExchangeName string `json:"exchange_name"`
	Kind         string `json:"kind"`
	// ConnectRetries bounds dial attempts for the long running server.
	ConnectRetries     uint          `json:"connect_retries"`
	ConnectMaxInterval time.Duration `json:"connect_max_interval"`
	// BatchConnectRetries is used by one-shot commands, which run on without notifications.
	BatchConnectRetries uint `json:"batch_connect_retries"`
}

func (r RabbitMQ) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", r.User, r.Pass, r.Host, r.Port)
}

// ForBatch returns a copy that gives up on the broker after the batch retry budget.
func (r RabbitMQ) ForBatch() *RabbitMQ {
	r.ConnectRetries = r.BatchConnectRetries
	return &r
}

type Review struct {
	// ClaimTTL is how long a claim survives before the entry is offered again. Zero keeps claims forever.
	ClaimTTL time.Duration `yaml:"claim_ttl"`
}

type Moderation struct {
	WarningThreshold    int           `yaml:"warning_threshold"`
	SuspensionThreshold int           `yaml:"suspension_threshold"`
	WarningWindow       time.Duration `yaml:"warning_window"`
	// ResetCountersOnExpiry clears both violation counters once a warning has expired.
	ResetCountersOnExpiry bool `yaml:"reset_counters_on_expiry"`
}

type Deletion struct {
	DefaultAdminID   string        `yaml:"default_admin_id"`
	InactivityPeriod time.Duration `yaml:"inactivity_period"`
}

func setDefaults() {
	viper.SetDefault("app.environment", "develop")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.workers", 4)
	viper.SetDefault("rabbitmq_port", 5672)
	viper.SetDefault("rabbitmq_kind", "direct")
	viper.SetDefault("rabbitmq_connect_retries", 5)
	viper.SetDefault("rabbitmq_connect_max_interval", 10*time.Second)
	viper.SetDefault("rabbitmq_batch_connect_retries", 1)
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("review.claim_ttl", 30*time.Minute)
	viper.SetDefault("moderation.warning_threshold", 2)
	viper.SetDefault("moderation.suspension_threshold", 3)
	viper.SetDefault("moderation.warning_window", 30*24*time.Hour)
	viper.SetDefault("moderation.reset_counters_on_expiry", false)
	viper.SetDefault("deletion.inactivity_period", 365*24*time.Hour)
}

func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()
	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open("postgres", viper.GetString("postgresql_host"))
	if err != nil {
		return nil, err
	}

	rabbitmq := &RabbitMQ{
		Host:         viper.GetString("rabbitmq_host"),
		Port:         viper.GetInt("rabbitmq_port"),
		User:         viper.GetString("rabbitmq_user"),
		Pass:         viper.GetString("rabbitmq_pass"),
		ExchangeName: viper.GetString("rabbitmq_exchange"),
		Kind:         viper.GetString("rabbitmq_kind"),

		ConnectRetries:      viper.GetUint("rabbitmq_connect_retries"),
		ConnectMaxInterval:  viper.GetDuration("rabbitmq_connect_max_interval"),
		BatchConnectRetries: viper.GetUint("rabbitmq_batch_connect_retries"),
	}

	minioClient, err := minio.New(viper.GetString("minio.url"), &minio.Options{
		Creds:  credentials.NewStaticV4(viper.GetString("minio.access_id"), viper.GetString("minio.secret_access_key"), ""),
		Secure: viper.GetBool("minio.secure"),
	})
	if err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     viper.GetString("redis.addr"),
		Password: viper.GetString("redis.password"),
		DB:       viper.GetInt("redis.db"),
	})

	return &Config{
		MinIOBucket: viper.GetString("minio.bucket"),
		App: App{
			Environment: viper.GetString("app.environment"),
			Host:        viper.GetString("app.host"),
			Protocol:    viper.GetString("app.protocol"),
		},
		Server: Server{
			HttpPort: viper.GetString("server.port"),
			Workers:  viper.GetInt("server.workers"),
		},
		Review: Review{
			ClaimTTL: viper.GetDuration("review.claim_ttl"),
		},
		Moderation: Moderation{
			WarningThreshold:      viper.GetInt("moderation.warning_threshold"),
			SuspensionThreshold:   viper.GetInt("moderation.suspension_threshold"),
			WarningWindow:         viper.GetDuration("moderation.warning_window"),
			ResetCountersOnExpiry: viper.GetBool("moderation.reset_counters_on_expiry"),
		},
		Deletion: Deletion{
			DefaultAdminID:   viper.GetString("deletion.default_admin_id"),
			InactivityPeriod: viper.GetDuration("deletion.inactivity_period"),
		},
		DB:      db,
		Queue:   rabbitmq,
		Storage: minioClient,
		Redis:   redisClient,
	}, nil
}

func DefaultModeration() Moderation {
	return Moderation{
		WarningThreshold:    2,
		SuspensionThreshold: 3,
		WarningWindow:       30 * 24 * time.Hour,
	}
}
