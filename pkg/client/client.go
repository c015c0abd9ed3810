package client

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"truerelief/pkg/kafka"
	"truerelief/pkg/logger"
)

// Client bundles the external connections of a process. Redis and Kafka are
// optional and stay nil when not configured.
type Client struct {
	Mongo *mongo.Client
	Redis *redis.Client
	Kafka *kafka.Producer

	log *logger.Logger
}

func NewClient(log *logger.Logger) *Client {
	return &Client{log: log}
}

func (c *Client) SetMongo(mongoURI string, mongoConnTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		c.log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		c.log.Fatal("Failed to ping MongoDB", "error", err)
	}

	c.log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

func (c *Client) SetRedis(addr, password string, db int, timeout time.Duration) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		c.log.Fatal("Failed to ping Redis", "addr", addr, "error", err)
	}

	c.log.Info("Successfully connected to Redis", "addr", addr)
	c.Redis = rdb
}

func (c *Client) SetKafka(cfg kafka.ProducerConfig) {
	producer, err := kafka.NewProducer(cfg, c.log)
	if err != nil {
		c.log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka.LoggingMiddleware(c.log))
	producer.Use(kafka.MetricsMiddleware())

	c.log.Info("Kafka producer configured", "brokers", cfg.Brokers, "topic", cfg.Topic)
	c.Kafka = producer
}

// GracefulShutdown closes every open connection, logging failures.
func (c *Client) GracefulShutdown() {
	if c.Kafka != nil {
		if err := c.Kafka.Close(); err != nil {
			c.log.Error("Failed to close Kafka producer", "error", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.log.Error("Failed to close Redis client", "error", err)
		}
	}

	if c.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.Mongo.Disconnect(ctx); err != nil {
			c.log.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}

	c.log.Info("External connections closed")
}
