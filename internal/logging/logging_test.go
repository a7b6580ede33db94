package logging

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorKind(t *testing.T) {
	require.Equal(t, "network_error", ErrorKind(0, true))
	require.Equal(t, "unauthorized", ErrorKind(401, true))
	require.Equal(t, "forbidden", ErrorKind(403, true))
	require.Equal(t, "rate_limited", ErrorKind(429, true))
	require.Equal(t, "client_4xx", ErrorKind(404, true))
	require.Equal(t, "server_5xx", ErrorKind(503, true))
	require.Equal(t, "error", ErrorKind(200, true))
	require.Equal(t, "ok", ErrorKind(200, false))
}

func TestStatusClass(t *testing.T) {
	require.Equal(t, "2xx", StatusClass(201))
	require.Equal(t, "4xx", StatusClass(401))
	require.Equal(t, "5xx", StatusClass(500))
	require.Equal(t, "none", StatusClass(0))
}

func TestMaskToken(t *testing.T) {
	require.Equal(t, "", MaskToken(""))
	require.Equal(t, "***", MaskToken("short"))
	require.Equal(t, "eyJh...wxyz", MaskToken("eyJhbGciOiJIUzI1NiJ9.wxyz"))
}
