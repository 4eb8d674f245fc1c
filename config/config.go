package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"vibin_client/models"
)

type Config struct {
	APIURL             string
	SocketURL          string
	AccessToken        string
	RequestTimeout     time.Duration
	PageSize           int
	SwipeThreshold     float64
	SessionTable       string
	AWSRegion          string
	PhotoBucket        string
	ConnectionsRefresh time.Duration
}

func Load() *Config {
	return &Config{
		APIURL:             getEnv("VIBIN_API_URL", "http://localhost:8080"),
		SocketURL:          getEnv("VIBIN_SOCKET_URL", "ws://localhost:8080/socket"),
		AccessToken:        getEnv("VIBIN_ACCESS_TOKEN", ""),
		RequestTimeout:     getDuration("VIBIN_REQUEST_TIMEOUT", 15*time.Second),
		PageSize:           getInt("VIBIN_PAGE_SIZE", models.DefaultPageSize),
		SwipeThreshold:     getFloat("VIBIN_SWIPE_THRESHOLD", 120),
		SessionTable:       getEnv("VIBIN_SESSION_TABLE", "ClientSessions"),
		AWSRegion:          getEnv("AWS_REGION", ""),
		PhotoBucket:        getEnv("S3_BUCKET_NAME", ""),
		ConnectionsRefresh: getDuration("VIBIN_CONNECTIONS_REFRESH", time.Minute),
	}
}

func getEnv(key, fallback string) string {
	val, exists := os.LookupEnv(key)

	if exists {
		return val
	}

	return fallback
}

func getInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("⚠️ Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		log.Printf("⚠️ Invalid %s=%q, using %v", key, v, fallback)
		return fallback
	}
	return f
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("⚠️ Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
