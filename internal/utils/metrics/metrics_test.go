package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m, reg := New("test")
	require.NotNil(t, m)
	require.NotNil(t, reg)

	m.RecordHTTPRequest(http.MethodPost, "/api/generate", 200, 50*time.Millisecond)
	m.RecordSubmit("veo-3.0-generate-001", "text-to-video", "ok")
	m.RecordPoll("pending")
	m.RecordTokenExchange("service_account", "ok")

	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.HTTPRequestsTotal.WithLabelValues("POST", "/api/generate", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.SubmitsTotal.WithLabelValues("veo-3.0-generate-001", "text-to-video", "ok")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PollsTotal.WithLabelValues("pending")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		m.TokenExchanges.WithLabelValues("service_account", "ok")))
}

func TestNew_EmptyNamespace(t *testing.T) {
	m, _ := New("")
	require.NotNil(t, m)
	m.GalleryEntries.Set(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(m.GalleryEntries))
}
