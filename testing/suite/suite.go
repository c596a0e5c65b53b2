package suite

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	containerTTLSeconds = 120
	startupTimeout      = 120 * time.Second
)

const (
	storeImage = "redis"
	storeTag   = "alpine"
	storePort  = "6379/tcp"
)

// Suite provisions a disposable Redis container for the progression
// repositories and tears it down when the test finishes.
type Suite struct {
	*testing.T
	Logger *slog.Logger

	Storage *redis.Client
}

func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	t.Cleanup(cancel)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: storeImage,
		Tag:        storeTag,
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis container: %v", err)
	}

	// Hard deadline on the container itself, in case cleanup never runs.
	_ = resource.Expire(containerTTLSeconds)

	pool.MaxWait = startupTimeout

	var client *redis.Client
	if err = pool.Retry(func() error {
		client = redis.NewClient(&redis.Options{Addr: resource.GetHostPort(storePort)})
		return client.Ping(ctx).Err()
	}); err != nil {
		if purgeErr := pool.Purge(resource); purgeErr != nil {
			t.Fatalf("could not purge redis container: %v", purgeErr)
		}

		t.Fatalf("could not connect to redis: %v", err)
	}

	// Every repository shares database 0; each run starts from nothing.
	if err = client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("could not flush database: %v", err)
	}

	t.Cleanup(func() {
		t.Helper()

		if err = pool.Purge(resource); err != nil {
			t.Fatalf("could not purge redis container: %v", err)
		}
	})

	return ctx, &Suite{
		T:       t,
		Logger:  logger,
		Storage: client,
	}
}

// Seed writes one JSON blob under a key, matching how the repositories
// store their holdings and stats records.
func (that *Suite) Seed(ctx context.Context, key string, value any) {
	that.T.Helper()

	blob, err := json.Marshal(value)
	if err != nil {
		that.Fatalf("could not marshal seed value: %v", err)
	}

	if err = that.Storage.Set(ctx, key, blob, 0).Err(); err != nil {
		that.Fatalf("could not seed key %q: %v", key, err)
	}
}
