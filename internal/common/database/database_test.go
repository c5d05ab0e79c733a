// internal/common/database/database_test.go
package database

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"operator-assessment-workers/internal/common/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Postgres
// ==========================

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS assessment_candidates`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE`).WillReturnError(fmt.Errorf("permission denied"))

	err = Migrate(context.Background(), db)
	assert.ErrorContains(t, err, "apply schema")
}

func TestSchemaDeclaresAllTables(t *testing.T) {
	for _, table := range []string{"assessment_candidates", "assessment_processes", "operator_assessments", "audit_log"} {
		assert.Contains(t, schemaSQL, "CREATE TABLE IF NOT EXISTS "+table)
	}
}

// ==========================
// Redis JSON cache
// ==========================

type cachedDoc struct {
	CandidateID string  `json:"candidateId"`
	Total       float64 `json:"total"`
}

func TestJSONCache_RoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cache := NewJSONCache(rdb, "assessment:result:", 10*time.Minute)
	ctx := context.Background()

	var got cachedDoc
	hit, err := cache.Get(ctx, "cand-001", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "cand-001", cachedDoc{CandidateID: "cand-001", Total: 75}))
	assert.True(t, mr.Exists("assessment:result:cand-001"))
	assert.Equal(t, 10*time.Minute, mr.TTL("assessment:result:cand-001"))

	hit, err = cache.Get(ctx, "cand-001", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 75.0, got.Total)

	require.NoError(t, cache.Delete(ctx, "cand-001"))
	assert.False(t, mr.Exists("assessment:result:cand-001"))
}

func TestJSONCache_CorruptValue(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, mr.Set("assessment:input:bad", "{not json"))

	var got cachedDoc
	hit, err := NewJSONCache(rdb, "assessment:input:", time.Minute).Get(context.Background(), "bad", &got)
	assert.False(t, hit)
	assert.Error(t, err)
}

func TestJSONCache_RedisError(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	mock.ExpectGet("assessment:input:cand-002").SetErr(fmt.Errorf("connection refused"))

	var got cachedDoc
	hit, err := NewJSONCache(rdb, "assessment:input:", time.Minute).Get(context.Background(), "cand-002", &got)
	assert.False(t, hit)
	assert.ErrorContains(t, err, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ==========================
// Elasticsearch
// ==========================

func fakeElasticsearch(t *testing.T, indexExists bool) (*ElasticsearchClient, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var calls []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.Path)
		mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodHead && indexExists:
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodHead:
			w.WriteHeader(http.StatusNotFound)
		case r.Method == http.MethodPut:
			_, _ = w.Write([]byte(`{"acknowledged":true}`))
		default:
			_, _ = w.Write([]byte(`{"version":{"number":"8.11.0"}}`))
		}
	}))
	t.Cleanup(srv.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{URL: srv.URL})
	require.NoError(t, err)
	return client, &calls
}

func TestEnsureIndex_CreatesMissingIndex(t *testing.T) {
	client, calls := fakeElasticsearch(t, false)

	require.NoError(t, client.EnsureIndex(context.Background(), "operator-assessments", AssessmentIndexMapping))
	assert.Equal(t, []string{"HEAD /operator-assessments", "PUT /operator-assessments"}, *calls)
}

func TestEnsureIndex_ExistingIndex(t *testing.T) {
	client, calls := fakeElasticsearch(t, true)

	require.NoError(t, client.EnsureIndex(context.Background(), "operator-assessments", AssessmentIndexMapping))
	assert.Equal(t, []string{"HEAD /operator-assessments"}, *calls)
}

func TestElasticsearchPing(t *testing.T) {
	client, _ := fakeElasticsearch(t, true)
	assert.NoError(t, client.Ping(context.Background()))
}
