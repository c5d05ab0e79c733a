// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: erp
    user: erp
  redis:
    address: localhost:6379
  elasticsearch:
    addresses: ["http://localhost:9200"]
workers:
  compute-operator-assessment:
    enabled: true
    max_jobs_active: 20
  notify-assessment-result:
    enabled: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "weighted", cfg.Assessment.Scale)
	assert.Zero(t, cfg.Assessment.AllowancePercent)
	assert.Nil(t, cfg.Assessment.QualityFloor)
	assert.Equal(t, 30*time.Minute, cfg.Assessment.CacheTTL)
	assert.Equal(t, "operator-assessments", cfg.Assessment.IndexName)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Database.Elasticsearch.GetAddresses())

	w := GetWorkerConfig(cfg, "compute-operator-assessment")
	assert.Equal(t, 20, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
	assert.Equal(t, 3, w.MaxRetries)

	assert.False(t, IsWorkerEnabled(cfg, "notify-assessment-result"))
	assert.True(t, IsWorkerEnabled(cfg, "rank-assessment-candidates"))
	assert.Equal(t, 5, GetWorkerConfig(cfg, "rank-assessment-candidates").MaxJobsActive)
}

func TestLoadFromFile_AssessmentSection(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, baseYAML+`
assessment:
  scale: flat
  allowance_percent: 10
  quality_floor: 12
  cache_ttl: 5m
`))
	require.NoError(t, err)

	assert.Equal(t, "flat", cfg.Assessment.Scale)
	assert.Equal(t, 10.0, cfg.Assessment.AllowancePercent)
	require.NotNil(t, cfg.Assessment.QualityFloor)
	assert.Equal(t, 12.0, *cfg.Assessment.QualityFloor)
	assert.Equal(t, 5*time.Minute, cfg.Assessment.CacheTTL)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("ASSESSMENT_SCALE", "flat")
	t.Setenv("PG_PASSWORD", "s3cret")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)
	assert.Equal(t, "flat", cfg.Assessment.Scale)

	cfg, err = LoadFromFile(writeConfig(t, `
camunda:
  broker_address: localhost:26500
database:
  postgres:
    host: localhost
    database: erp
    user: erp
    password: ${PG_PASSWORD}
  redis:
    address: localhost:6379
  elasticsearch:
    url: http://localhost:9200
`))
	require.NoError(t, err)
	assert.Equal(t, "s3cret", cfg.Database.Postgres.Password)
	assert.Equal(t, []string{"http://localhost:9200"}, cfg.Database.Elasticsearch.GetAddresses())
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing broker", `
database:
  postgres: {host: localhost, database: erp, user: erp}
  redis: {address: localhost:6379}
  elasticsearch: {url: http://localhost:9200}
`},
		{"unknown scale", baseYAML + `
assessment:
  scale: metric
`},
		{"negative allowance", baseYAML + `
assessment:
  allowance_percent: -1
`},
		{"sms without topic", baseYAML + `
notifications:
  sms:
    enabled: true
`},
		{"email recipient malformed", baseYAML + `
notifications:
  email:
    enabled: true
    from_email: training@factory.example
    recipients: ["hr@factory.example", "not-an-address"]
`},
		{"port out of range", baseYAML + `
server:
  port: 70000
`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_ReportsEveryInvalidKey(t *testing.T) {
	_, err := LoadFromFile(writeConfig(t, baseYAML+`
assessment:
  scale: metric
  allowance_percent: 120
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assessment.scale: must be weighted or flat")
	assert.Contains(t, err.Error(), "assessment.allowance_percent")
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
