package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	httpSwagger "github.com/swaggo/http-swagger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Domenick1991/travelbooking/api"
	"github.com/Domenick1991/travelbooking/config"
	adminapi "github.com/Domenick1991/travelbooking/internal/api/admin_service_api"
	"github.com/Domenick1991/travelbooking/internal/identity"
)

type Deps struct {
	Log      *slog.Logger
	Verifier *identity.Verifier
	API      api.Services
	Admin    adminapi.AdminServiceServer
}

type Servers struct {
	grpcServer *grpc.Server
	httpServer *http.Server
}

// Run starts the admin gRPC server and the HTTP server (REST API, admin
// gateway, swagger) and blocks until ctx is canceled or a server fails.
func Run(ctx context.Context, cfg *config.Config, deps Deps) error {
	gwCtx, cancelGateway := context.WithCancel(context.Background())
	defer cancelGateway()

	s, err := newServers(gwCtx, cfg, deps)
	if err != nil {
		return err
	}

	errCh := make(chan error, 2)

	lis, err := net.Listen("tcp", cfg.GRPC.Address)
	if err != nil {
		return fmt.Errorf("listen gRPC %s: %w", cfg.GRPC.Address, err)
	}
	go func() { errCh <- s.grpcServer.Serve(lis) }()

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	deps.Log.Info("servers started",
		slog.String("http", cfg.HTTP.Address),
		slog.String("grpc", cfg.GRPC.Address),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.HTTP.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		s.grpcServer.GracefulStop()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newServers(ctx context.Context, cfg *config.Config, deps Deps) (*Servers, error) {
	grpcSrv := grpc.NewServer(grpc.UnaryInterceptor(identity.AdminUnaryInterceptor(deps.Verifier)))
	adminapi.RegisterAdminServiceServer(grpcSrv, deps.Admin)

	mux := runtime.NewServeMux()
	opts := []grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}
	if err := adminapi.RegisterAdminServiceHandlerFromEndpoint(ctx, mux, grpcTarget(cfg.GRPC.Address), opts); err != nil {
		return nil, fmt.Errorf("register admin gateway: %w", err)
	}

	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(deps.Log, deps.Verifier, cfg.HTTP.AllowedOrigins, deps.API)
	router.Any(adminapi.GatewayPrefix+"*method", gin.WrapH(mux))

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/docs", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/docs/travelbooking.swagger.json"))))
	}

	httpSrv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &Servers{
		grpcServer: grpcSrv,
		httpServer: httpSrv,
	}, nil
}

// grpcTarget turns a listen address like ":9090" into a dialable one.
func grpcTarget(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil || host != "" {
		return addr
	}
	return net.JoinHostPort("localhost", port)
}
