package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Domenick1991/travelbooking/config"
	adminapi "github.com/Domenick1991/travelbooking/internal/api/admin_service_api"
	"github.com/Domenick1991/travelbooking/internal/identity"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/handlers/slogdiscard"
)

func TestGRPCTarget(t *testing.T) {
	assert.Equal(t, "localhost:9090", grpcTarget(":9090"))
	assert.Equal(t, "10.0.0.1:9090", grpcTarget("10.0.0.1:9090"))
	assert.Equal(t, "bogus", grpcTarget("bogus"))
}

func TestNewServers_Routes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := &config.Config{Env: config.EnvLocal}
	cfg.GRPC.Address = ":0"
	cfg.HTTP.SwaggerDir = t.TempDir()

	s, err := newServers(ctx, cfg, Deps{
		Log:      slogdiscard.NewDiscardLogger(),
		Verifier: identity.NewHMACVerifier([]byte("secret")),
		Admin:    adminapi.NewServer(slogdiscard.NewDiscardLogger(), nil, nil, nil, nil),
	})
	require.NoError(t, err)

	for path, code := range map[string]int{
		"/healthz":                   http.StatusOK,
		"/swagger/index.html":        http.StatusOK,
		"/api/v1/bookings":           http.StatusUnauthorized,
		adminapi.GatewayPrefix + "X": http.StatusNotImplemented,
	} {
		method := http.MethodGet
		if path == adminapi.GatewayPrefix+"X" {
			method = http.MethodPost
		}
		w := httptest.NewRecorder()
		s.httpServer.Handler.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		assert.Equal(t, code, w.Code, path)
	}
}
