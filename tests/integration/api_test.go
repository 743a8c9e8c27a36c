//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Sternrassler/bookreview/internal/app"
	"github.com/Sternrassler/bookreview/internal/config"
	"github.com/Sternrassler/bookreview/pkg/logging"
	"github.com/Sternrassler/bookreview/pkg/store"
)

// startContainer runs image and returns host:port for the exposed port.
func startContainer(t *testing.T, image, port string, waitFor wait.Strategy) string {
	t.Helper()

	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        image,
			ExposedPorts: []string{port},
			WaitingFor:   waitFor,
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start %s container: %v", image, err)
	}
	t.Cleanup(func() { container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get %s endpoint: %v", image, err)
	}
	return endpoint
}

// setupApp starts Redis and MongoDB containers and opens the application
// against them.
func setupApp(t *testing.T) *app.App {
	t.Helper()

	redisAddr := startContainer(t, "redis:7-alpine", "6379/tcp",
		wait.ForLog("Ready to accept connections"))
	mongoAddr := startContainer(t, "mongo:7", "27017/tcp",
		wait.ForListeningPort("27017/tcp").WithStartupTimeout(90*time.Second))

	cfg := config.Config{
		Port:            "0",
		MongoURI:        "mongodb://" + mongoAddr,
		MongoDB:         fmt.Sprintf("bookreview_it_%d", time.Now().UnixNano()),
		RedisURL:        "redis://" + redisAddr,
		CORSOrigins:     []string{"*"},
		ShutdownTimeout: 5 * time.Second,
	}

	a, err := app.Open(context.Background(), cfg, logging.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })

	return a
}

func get(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func post(t *testing.T, url, body string) (int, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func TestAPI_Integration_ReviewLifecycle(t *testing.T) {
	a := setupApp(t)
	ctx := context.Background()

	ids, err := a.Books.Replace(ctx, []store.Book{{Title: "Dune", Author: "Herbert"}})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	dune := ids[0].Hex()

	srv := httptest.NewServer(a.Handler)
	defer srv.Close()

	// Initial list is read from Mongo and cached.
	status, first := get(t, srv.URL+"/api/books")
	require.Equal(t, http.StatusOK, status)

	var books []store.Book
	require.NoError(t, json.Unmarshal(first, &books))
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Empty(t, books[0].Reviews)

	ttl, err := a.Redis.TTL(ctx, "books:list").Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= 30*time.Second, "ttl = %v", ttl)

	// Second read within the TTL is the same bytes.
	_, second := get(t, srv.URL+"/api/books")
	assert.Equal(t, first, second)

	// Reviews land in call order and invalidate the list.
	status, body := post(t, srv.URL+"/api/books/"+dune+"/reviews", `{"text":"Great"}`)
	require.Equal(t, http.StatusCreated, status)

	var created store.Review
	require.NoError(t, json.Unmarshal(body, &created))
	assert.Equal(t, "anon", created.Author)

	status, _ = post(t, srv.URL+"/api/books/"+dune+"/reviews", `{"text":"Spice must flow","author":"paul"}`)
	require.Equal(t, http.StatusCreated, status)

	exists, err := a.Redis.Exists(ctx, "books:list").Result()
	require.NoError(t, err)
	assert.Zero(t, exists)

	status, body = get(t, srv.URL+"/api/books/"+dune)
	require.Equal(t, http.StatusOK, status)
	var book store.Book
	require.NoError(t, json.Unmarshal(body, &book))
	require.Len(t, book.Reviews, 2)
	assert.Equal(t, "Great", book.Reviews[0].Text)
	assert.Equal(t, "paul", book.Reviews[1].Author)
	assert.True(t, created.CreatedAt.Equal(book.Reviews[0].CreatedAt))

	_, third := get(t, srv.URL+"/api/books")
	require.NoError(t, json.Unmarshal(third, &books))
	assert.Len(t, books[0].Reviews, 2)
}

func TestAPI_Integration_NotFound(t *testing.T) {
	a := setupApp(t)

	srv := httptest.NewServer(a.Handler)
	defer srv.Close()

	for _, id := range []string{"65f1c0ffee0000000000beef", "not-an-id"} {
		status, body := get(t, srv.URL+"/api/books/"+id)
		assert.Equal(t, http.StatusNotFound, status)
		assert.JSONEq(t, `{"error":"not found"}`, string(body))

		status, _ = post(t, srv.URL+"/api/books/"+id+"/reviews", `{"text":"ghost"}`)
		assert.Equal(t, http.StatusNotFound, status)
	}
}

func TestAPI_Integration_HealthAndMetrics(t *testing.T) {
	a := setupApp(t)

	srv := httptest.NewServer(a.Handler)
	defer srv.Close()

	status, body := get(t, srv.URL+"/_healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", string(body))

	get(t, srv.URL+"/api/books")

	status, body = get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `route="/api/books"`)
	assert.Contains(t, string(body), "bookreview_store_operation_duration_seconds")
}
