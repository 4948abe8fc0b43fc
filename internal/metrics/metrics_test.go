package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Observe(t *testing.T) {
	r := NewRecorder("prod-db-1")
	finished := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	r.ObserveSuccess(finished, 2*time.Second)
	r.ObserveFailure("metadata", time.Second)
	r.ObserveSweep(3, nil)
	r.ObserveSweep(0, errors.New("throttled"))

	assert.Equal(t, 1.0, testutil.ToFloat64(r.BackupCount.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.BackupCount.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.StepFailures.WithLabelValues("metadata")))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(r.LastSuccess))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.RetentionDeletes))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.SweepFailures))
}

func TestRecorder_Push(t *testing.T) {
	var path, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		path = req.URL.Path
		data, _ := io.ReadAll(req.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	r := NewRecorder("prod-db-1")
	r.ObserveSweep(2, nil)

	require.NoError(t, r.Push(context.Background(), srv.URL, "rds_backup"))
	assert.Equal(t, "/metrics/job/rds_backup", path)
	assert.NotEmpty(t, body)
}

func TestRecorder_PushError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewRecorder("db").Push(context.Background(), srv.URL, "rds_backup")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), srv.URL))
}
