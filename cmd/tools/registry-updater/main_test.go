// cmd/tools/registry-updater/main_test.go
package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"operator-assessment-workers/pkg/registry"
)

const shippedRegistry = "../../../configs/activity-registry.json"

func copyRegistry(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(shippedRegistry)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "registry.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestValidateRegistry_Shipped(t *testing.T) {
	reg, err := validateRegistry(shippedRegistry)
	require.NoError(t, err)
	assert.Len(t, reg.Activities, 6)
}

func TestValidateRegistry_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "empty",
			body: `{"activities":[]}`,
			want: "no activities",
		},
		{
			name: "unknown error code",
			body: `{"activities":[{"displayName":"X","taskType":"x","timeout":"5s","errorCodes":["PAYMENT_DECLINED"]}]}`,
			want: "unknown error code",
		},
		{
			name: "bad timeout",
			body: `{"activities":[{"displayName":"X","taskType":"x","timeout":"soon"}]}`,
			want: "invalid timeout",
		},
		{
			name: "missing display name",
			body: `{"activities":[{"taskType":"x","timeout":"5s"}]}`,
			want: "displayName",
		},
		{
			name: "schema does not compile",
			body: `{"activities":[{"displayName":"X","taskType":"x","timeout":"5s","inputSchema":{"type":12}}]}`,
			want: "compile input schema",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := validateRegistry(writeFile(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheckVariables(t *testing.T) {
	valid := writeFile(t, `{"candidateId":"cand-001"}`)
	res, err := checkVariables(shippedRegistry, "load-assessment-input", valid)
	require.NoError(t, err)
	assert.True(t, res.Valid)

	invalid := writeFile(t, `{}`)
	res, err = checkVariables(shippedRegistry, "load-assessment-input", invalid)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, []string{"candidateId"}, res.Fields())

	_, err = checkVariables(shippedRegistry, "create-lead", valid)
	assert.ErrorContains(t, err, "not registered")
}

func TestUpdateActivity(t *testing.T) {
	path := copyRegistry(t)

	require.NoError(t, updateActivity(path, "store-assessment-result", "timeout", "15s"))
	require.NoError(t, updateActivity(path, "store-assessment-result", "retries", "5"))

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	a, ok := reg.Find("store-assessment-result")
	require.True(t, ok)
	assert.Equal(t, "15s", a.Timeout)
	assert.Equal(t, 5, a.Retries)

	assert.ErrorContains(t, updateActivity(path, "store-assessment-result", "timeout", "later"), "invalid timeout")
	assert.ErrorContains(t, updateActivity(path, "store-assessment-result", "retries", "many"), "invalid retries")
	assert.ErrorContains(t, updateActivity(path, "store-assessment-result", "category", "x"), "unknown field")
	assert.ErrorContains(t, updateActivity(path, "missing-task", "version", "2.0.0"), "not found")
}

func TestRun_List(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run("list", []string{"-path", shippedRegistry}, &out))
	assert.Contains(t, out.String(), "TASK TYPE")
	assert.Contains(t, out.String(), "compute-operator-assessment")
	assert.Contains(t, out.String(), "notify-assessment-result")
}
