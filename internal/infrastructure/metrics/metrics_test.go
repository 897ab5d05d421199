package metrics

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowiq/shadowiq/internal/application/access"
	"github.com/shadowiq/shadowiq/internal/application/files/objectstorage"
)

func TestCollector_ObserveDecision(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.ObserveDecision("project_access", access.OutcomeDenied)
	c.ObserveDecision("project_access", access.OutcomeDenied)
	c.ObserveDecision("project_access", access.OutcomeAllowed)

	assert.Equal(t, 2.0, promtestutil.ToFloat64(c.authzDecisions.WithLabelValues("project_access", access.OutcomeDenied)))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(c.authzDecisions.WithLabelValues("project_access", access.OutcomeAllowed)))
}

func TestCollector_ObserveAuditFailure(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.ObserveAuditFailure("unauthorized_access")

	assert.Equal(t, 1.0, promtestutil.ToFloat64(c.auditFailures.WithLabelValues("unauthorized_access")))
}

func TestCollector_HTTPStarted(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	done := c.HTTPStarted()
	assert.Equal(t, 1.0, promtestutil.ToFloat64(c.httpInFlight))

	done(http.MethodGet, "/projects/:ref", http.StatusForbidden)
	assert.Equal(t, 0.0, promtestutil.ToFloat64(c.httpInFlight))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(c.httpRequests.WithLabelValues(http.MethodGet, "/projects/:ref", "403")))
}

type stubStorage struct {
	objectstorage.ObjectStorage
	err error
}

func (s stubStorage) Delete(context.Context, string) error { return s.err }

func TestInstrumentStorage_RecordsResult(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	ok := InstrumentStorage(stubStorage{}, c)
	failing := InstrumentStorage(stubStorage{err: stderrors.New("boom")}, c)

	require.NoError(t, ok.Delete(context.Background(), "k"))
	require.Error(t, failing.Delete(context.Background(), "k"))

	assert.Equal(t, 1.0, promtestutil.ToFloat64(c.collaboratorCalls.WithLabelValues(CollaboratorObjectStorage, "delete", "ok")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(c.collaboratorCalls.WithLabelValues(CollaboratorObjectStorage, "delete", "error")))
}

func TestHandler_ServesMetrics(t *testing.T) {
	reg := NewRegistry()
	c := NewCollector(reg)
	c.SetBuildInfo("test")
	c.ObserveCollaborator(CollaboratorMailer, "send", nil, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "shadowiq_build_info")
	assert.Contains(t, string(body), "shadowiq_collaborator_calls_total")
	assert.Contains(t, string(body), "go_goroutines")
}
