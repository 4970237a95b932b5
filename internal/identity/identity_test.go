package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Domenick1991/travelbooking/config"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/handlers/slogdiscard"
)

var secret = []byte("test-secret")

func sign(t *testing.T, sub, role string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	raw, err := token.SignedString(secret)
	require.NoError(t, err)
	return raw
}

func TestVerifier_Verify(t *testing.T) {
	v := NewHMACVerifier(secret, jwt.WithExpirationRequired())

	p, err := v.Verify(sign(t, "u1", RoleAdmin, time.Now().Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, Principal{UserID: "u1", Role: RoleAdmin}, p)
	assert.True(t, p.IsAdmin())

	_, err = v.Verify(sign(t, "u1", "", time.Now().Add(-time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = v.Verify(sign(t, "", "", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)

	other := NewHMACVerifier([]byte("other"))
	_, err = other.Verify(sign(t, "u1", "", time.Now().Add(time.Hour)))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewVerifier_RequiresSource(t *testing.T) {
	_, err := NewVerifier(context.Background(), config.AuthConfig{})
	assert.ErrorIs(t, err, ErrNoVerifier)

	v, err := NewVerifier(context.Background(), config.AuthConfig{JWTSecret: string(secret)})
	require.NoError(t, err)
	defer v.Close()
	_, err = v.Verify(sign(t, "u1", "", time.Now().Add(time.Hour)))
	assert.NoError(t, err)
}

func newRouter(v *Verifier) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(v, slogdiscard.NewDiscardLogger()))
	r.GET("/me", func(c *gin.Context) {
		p, _ := FromContext(c.Request.Context())
		c.String(http.StatusOK, UserID(c)+"|"+p.Role)
	})
	r.GET("/admin", RequireAdmin(), func(c *gin.Context) { c.Status(http.StatusNoContent) })
	return r
}

func TestMiddleware(t *testing.T) {
	r := newRouter(NewHMACVerifier(secret))
	valid := sign(t, "u1", "", time.Now().Add(time.Hour))
	admin := sign(t, "root", RoleAdmin, time.Now().Add(time.Hour))

	tests := []struct {
		name   string
		path   string
		header string
		code   int
		body   string
	}{
		{name: "no header", path: "/me", code: http.StatusUnauthorized},
		{name: "not bearer", path: "/me", header: "Basic abc", code: http.StatusUnauthorized},
		{name: "garbage token", path: "/me", header: "Bearer abc", code: http.StatusUnauthorized},
		{name: "valid", path: "/me", header: "Bearer " + valid, code: http.StatusOK, body: "u1|"},
		{name: "admin route as user", path: "/admin", header: "Bearer " + valid, code: http.StatusForbidden},
		{name: "admin route as admin", path: "/admin", header: "Bearer " + admin, code: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.code, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestAdminUnaryInterceptor(t *testing.T) {
	interceptor := AdminUnaryInterceptor(NewHMACVerifier(secret))
	info := &grpc.UnaryServerInfo{FullMethod: "/travel.admin.v1.AdminService/ListBookings"}
	handler := func(ctx context.Context, req any) (any, error) {
		p, _ := FromContext(ctx)
		return p.UserID, nil
	}
	withToken := func(raw string) context.Context {
		return metadata.NewIncomingContext(context.Background(), metadata.Pairs("authorization", "Bearer "+raw))
	}

	_, err := interceptor(context.Background(), nil, info, handler)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = interceptor(withToken(sign(t, "u1", "", time.Now().Add(time.Hour))), nil, info, handler)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	got, err := interceptor(withToken(sign(t, "root", RoleAdmin, time.Now().Add(time.Hour))), nil, info, handler)
	require.NoError(t, err)
	assert.Equal(t, "root", got)
}
