package identity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/Domenick1991/travelbooking/config"
	resp "github.com/Domenick1991/travelbooking/internal/lib/api/response"
	"github.com/Domenick1991/travelbooking/internal/lib/logger/sl"
)

const RoleAdmin = "admin"

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
	ErrNoVerifier   = errors.New("neither jwt secret nor jwks url configured")
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type Principal struct {
	UserID string
	Role   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

type Verifier struct {
	keyfunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
	parser  *jwt.Parser
}

// NewVerifier verifies tokens against the JWKS endpoint when one is
// configured, otherwise against the shared HS256 secret.
func NewVerifier(ctx context.Context, cfg config.AuthConfig) (*Verifier, error) {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	switch {
	case cfg.JWKSURL != "":
		jwks, err := keyfunc.Get(cfg.JWKSURL, keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   time.Hour,
			RefreshUnknownKID: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load jwks: %w", err)
		}
		return &Verifier{keyfunc: jwks.Keyfunc, jwks: jwks, parser: jwt.NewParser(opts...)}, nil
	case cfg.JWTSecret != "":
		return NewHMACVerifier([]byte(cfg.JWTSecret), opts...), nil
	default:
		return nil, ErrNoVerifier
	}
}

func NewHMACVerifier(secret []byte, opts ...jwt.ParserOption) *Verifier {
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return &Verifier{
		keyfunc: func(*jwt.Token) (any, error) { return secret, nil },
		parser:  jwt.NewParser(opts...),
	}
}

func (v *Verifier) Verify(raw string) (Principal, error) {
	token, err := v.parser.ParseWithClaims(raw, &Claims{}, v.keyfunc)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: claims.Subject, Role: claims.Role}, nil
}

func (v *Verifier) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

func bearer(header string) (string, error) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(token), nil
}

const principalKey = "principal"

// Middleware rejects requests without a valid bearer token and stores the
// principal on both the gin context and the request context.
func Middleware(v *Verifier, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := bearer(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(err.Error()))
			return
		}
		p, err := v.Verify(raw)
		if err != nil {
			log.Debug("token rejected", sl.Err(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, resp.Error(ErrInvalidToken.Error()))
			return
		}
		c.Set(principalKey, p)
		c.Request = c.Request.WithContext(WithPrincipal(c.Request.Context(), p))
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if p, ok := Current(c); !ok || !p.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, resp.Error("admin role required"))
			return
		}
		c.Next()
	}
}

func Current(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// UserID returns the authenticated user id, empty when the route is public.
func UserID(c *gin.Context) string {
	p, _ := Current(c)
	return p.UserID
}

// AdminUnaryInterceptor guards the admin gRPC service: every call must carry an
// admin bearer token in the authorization metadata.
func AdminUnaryInterceptor(v *Verifier) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		md, _ := metadata.FromIncomingContext(ctx)
		var header string
		if vals := md.Get("authorization"); len(vals) > 0 {
			header = vals[0]
		}
		raw, err := bearer(header)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, err.Error())
		}
		p, err := v.Verify(raw)
		if err != nil {
			return nil, status.Error(codes.Unauthenticated, ErrInvalidToken.Error())
		}
		if !p.IsAdmin() {
			return nil, status.Error(codes.PermissionDenied, "admin role required")
		}
		return handler(WithPrincipal(ctx, p), req)
	}
}
