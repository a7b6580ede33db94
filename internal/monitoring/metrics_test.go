package monitoring

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "2xx"))
	RecordAPIRequest("GET", "2xx", 20*time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "2xx")))
}

func TestRecordRefresh(t *testing.T) {
	before := testutil.ToFloat64(RefreshAttemptsTotal.WithLabelValues("failure"))
	RecordRefresh("failure", time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(RefreshAttemptsTotal.WithLabelValues("failure")))
}

func TestWriteTextfile(t *testing.T) {
	RecordAPIRequest("POST", "4xx", time.Millisecond)
	path := filepath.Join(t.TempDir(), "admin_console.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "admin_console_api_requests_total")
}
