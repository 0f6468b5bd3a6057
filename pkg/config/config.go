package config

import "time"

// Chat definition chat_service YAML structure
type Chat struct {
	Port          string
	PostgreSQL    DatabaseConfig `mapstructure:"pg"`
	Redis         RedisConfig    `mapstructure:"redis"`
	Kafka         KafkaConfig    `mapstructure:"kafka"`
	MemberService ServiceConfig  `mapstructure:"member"`
}

// Member definition member_service YAML structure
type Member struct {
	Port       string
	SessionTTL time.Duration `mapstructure:"session_ttl"`

	PostgreSQL  DatabaseConfig `mapstructure:"pg"`
	RedisMember RedisConfig    `mapstructure:"redis"`
}

// DeliveryWorker definition delivery_worker YAML structure
type DeliveryWorker struct {
	Kafka    KafkaConfig  `mapstructure:"kafka"`
	Redis    RedisConfig  `mapstructure:"redis"`
	RabbitMQ RabbitConfig `mapstructure:"rabbit"`
}

// NotifyWorker definition notify_worker YAML structure
type NotifyWorker struct {
	PostgreSQL DatabaseConfig `mapstructure:"pg"`
	Redis      RedisConfig    `mapstructure:"redis"`
	RabbitMQ   RabbitConfig   `mapstructure:"rabbit"`
}

// ServiceConfig definition service port & name
type ServiceConfig struct {
	Port string `mapstructure:"service_port"`
	Name string `mapstructure:"service_name"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// KafkaConfig definition kafka setting
type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	Topic         string   `mapstructure:"topic"`
	GroupID       string   `mapstructure:"group_id"`
	RetryInterval int      `mapstructure:"retry_interval"`
	RetryCount    int      `mapstructure:"retry_count"`
}

// RabbitConfig definition rabbitmq setting
type RabbitConfig struct {
	URL           string `mapstructure:"url"`
	Queue         string `mapstructure:"queue"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
