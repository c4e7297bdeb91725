package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Defaults()
	if c.HTTPPort != want.HTTPPort || c.StoreDriver != DriverMemory {
		t.Fatalf("port=%q driver=%q", c.HTTPPort, c.StoreDriver)
	}
	if c.ReadTimeout != 10*time.Second || c.ShutdownTimeout != 15*time.Second {
		t.Fatalf("timeouts read=%v shutdown=%v", c.ReadTimeout, c.ShutdownTimeout)
	}
	if c.EventsEnabled() || c.CacheEnabled() {
		t.Fatalf("events/cache should be disabled by default")
	}
	if !reflect.DeepEqual(c.CORSAllowOrigins, []string{"*"}) {
		t.Fatalf("cors=%v", c.CORSAllowOrigins)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, ,kafka-2:9092")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")
	t.Setenv("CACHE_TTL_SEC", "5")

	c, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTPPort != "9090" || c.CacheTTL != 5 {
		t.Fatalf("port=%q ttl=%d", c.HTTPPort, c.CacheTTL)
	}
	if !reflect.DeepEqual(c.KafkaBrokers, []string{"kafka-1:9092", "kafka-2:9092"}) {
		t.Fatalf("brokers=%v", c.KafkaBrokers)
	}
	if !c.EventsEnabled() || !c.CacheEnabled() {
		t.Fatalf("events/cache should be enabled")
	}
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("HTTP_PORT=7070\nLOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("HTTP_PORT")
		os.Unsetenv("LOG_LEVEL")
	})

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.HTTPPort != "7070" || c.LogLevel != "debug" {
		t.Fatalf("port=%q level=%q", c.HTTPPort, c.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		dsn     string
		wantErr error
	}{
		{"memory", DriverMemory, "", nil},
		{"postgres with dsn", DriverPostgres, "postgres://localhost/tasks", nil},
		{"postgres without dsn", DriverPostgres, "", ErrMissingDatabaseURL},
		{"unknown", "sqlite", "", ErrUnknownDriver},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Defaults()
			c.StoreDriver = tt.driver
			c.DatabaseURL = tt.dsn
			err := c.Validate()
			if tt.wantErr == nil && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("err=%v want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsPostgresWithoutURL(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Postgres")
	if _, err := Load(""); !errors.Is(err, ErrMissingDatabaseURL) {
		t.Fatalf("err=%v", err)
	}
}
