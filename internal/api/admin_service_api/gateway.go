package admin_service_api

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// GatewayPrefix is where the admin methods are exposed over HTTP:
// POST /admin/v1/{method} with a JSON body.
const GatewayPrefix = "/admin/v1/"

// RegisterAdminServiceHandlerFromEndpoint proxies HTTP calls on mux to the gRPC
// server at endpoint. The connection is closed when ctx is done.
func RegisterAdminServiceHandlerFromEndpoint(ctx context.Context, mux *runtime.ServeMux, endpoint string, opts []grpc.DialOption) error {
	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return fmt.Errorf("dial admin service: %w", err)
	}
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	return RegisterAdminServiceHandler(mux, conn)
}

func RegisterAdminServiceHandler(mux *runtime.ServeMux, conn grpc.ClientConnInterface) error {
	return mux.HandlePath(http.MethodPost, GatewayPrefix+"{method}", func(w http.ResponseWriter, r *http.Request, pathParams map[string]string) {
		_, marshaler := runtime.MarshalerForRequest(mux, r)

		method := pathParams["method"]
		if _, ok := calls[method]; !ok {
			runtime.HTTPError(r.Context(), mux, marshaler, w, r, status.Errorf(codes.Unimplemented, "unknown method %s", method))
			return
		}

		in := &structpb.Struct{}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			runtime.HTTPError(r.Context(), mux, marshaler, w, r, status.Error(codes.InvalidArgument, "read body"))
			return
		}
		if len(body) > 0 {
			if err := protojson.Unmarshal(body, in); err != nil {
				runtime.HTTPError(r.Context(), mux, marshaler, w, r, status.Error(codes.InvalidArgument, "body must be a JSON object"))
				return
			}
		}

		ctx := r.Context()
		if auth := r.Header.Get("Authorization"); auth != "" {
			ctx = metadata.AppendToOutgoingContext(ctx, "authorization", auth)
		}

		out := &structpb.Struct{}
		if err := conn.Invoke(ctx, FullMethod(method), in, out); err != nil {
			runtime.HTTPError(ctx, mux, marshaler, w, r, err)
			return
		}

		raw, err := marshaler.Marshal(out)
		if err != nil {
			runtime.HTTPError(ctx, mux, marshaler, w, r, status.Error(codes.Internal, "encode response"))
			return
		}
		w.Header().Set("Content-Type", marshaler.ContentType(out))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(raw)
	})
}
