package testutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	redismodule "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/KasumiMercury/primind-task-reminder/internal/infra/planfix/planfixstub"
)

const StubToken = "test-token"

func SetupRedisContainer(ctx context.Context, t *testing.T) (*redis.Client, func()) {
	t.Helper()

	defer func() {
		if r := recover(); r != nil {
			t.Skipf("failed to start redis container: %v", r)
		}
	}()

	container, err := redismodule.Run(ctx, "redis:8-alpine")
	if err != nil {
		t.Skipf("failed to start redis container: %v", err)
	}

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Skipf("failed to get redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	cleanup := func() {
		if err := client.Close(); err != nil {
			t.Logf("failed to close redis client: %v", err)
		}

		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	}

	return client, cleanup
}

// SetupPlanfixStub starts an in-process fake Planfix API. The returned URL
// already carries the /rest suffix.
func SetupPlanfixStub(t *testing.T) (*planfixstub.TaskStorage, string) {
	t.Helper()

	storage := planfixstub.NewTaskStorage()
	srv := httptest.NewServer(planfixstub.NewRouter(storage, StubToken))
	t.Cleanup(srv.Close)

	return storage, srv.URL + "/rest"
}

// Date formats t the way Planfix returns calendar dates.
func Date(t time.Time) string {
	return t.Format("02-01-2006")
}
