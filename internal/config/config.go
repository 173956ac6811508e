package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/artifactops/promotion-service/internal/models"
)

type Config struct {
	Addr          string
	DevBucket     string
	QABucket      string
	ProdBucket    string
	ConfigBucket  string
	AWSRegion     string
	KafkaBrokers  []string
	KafkaTopic    string
	NotifyTimeout time.Duration
}

const (
	defaultAddr          = ":8070"
	defaultNotifyTimeout = 5 * time.Second
)

func Load() (Config, error) {
	cfg := Config{
		Addr:          getEnv("PROMOTION_ADDR", defaultAddr),
		DevBucket:     os.Getenv("DEV_BUCKET"),
		QABucket:      os.Getenv("QA_BUCKET"),
		ProdBucket:    os.Getenv("PROD_BUCKET"),
		ConfigBucket:  os.Getenv("CONFIG_BUCKET"),
		AWSRegion:     os.Getenv("AWS_REGION"),
		KafkaBrokers:  splitList(os.Getenv("BROADCAST_KAFKA_BROKERS")),
		KafkaTopic:    os.Getenv("BROADCAST_KAFKA_TOPIC"),
		NotifyTimeout: getDuration("NOTIFY_TIMEOUT", defaultNotifyTimeout),
	}
	for name, v := range map[string]string{
		"DEV_BUCKET":    cfg.DevBucket,
		"QA_BUCKET":     cfg.QABucket,
		"PROD_BUCKET":   cfg.ProdBucket,
		"CONFIG_BUCKET": cfg.ConfigBucket,
	} {
		if v == "" {
			return Config{}, fmt.Errorf("%s required", name)
		}
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return Config{}, fmt.Errorf("BROADCAST_KAFKA_TOPIC required when brokers are set")
	}
	return cfg, nil
}

// EnvBuckets maps each pipeline environment to its storage bucket.
func (c Config) EnvBuckets() map[models.Environment]string {
	return map[models.Environment]string{
		models.EnvDevelop: c.DevBucket,
		models.EnvQA:      c.QABucket,
		models.EnvProd:    c.ProdBucket,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
