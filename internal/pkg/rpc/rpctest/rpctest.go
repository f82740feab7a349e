// Package rpctest serves service descriptors over an in-memory listener for handler tests.
package rpctest

import (
	"context"
	"net"
	"testing"

	"github.com/fekuna/omnipos-pricing-service/internal/pkg/middleware"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type Client struct {
	t       *testing.T
	conn    *grpc.ClientConn
	service string
}

// Serve registers desc on a server with the request context interceptor and returns a
// client for it. Everything is torn down when the test ends.
func Serve(t *testing.T, desc *grpc.ServiceDesc) *Client {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(middleware.ContextInterceptor()))
	srv.RegisterService(desc, struct{}{})
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		conn.Close()
		srv.Stop()
	})
	return &Client{t: t, conn: conn, service: desc.ServiceName}
}

// Call invokes method with req encoded as a Struct. md is alternating metadata keys and
// values.
func (c *Client) Call(method string, req map[string]any, md ...string) (*structpb.Struct, error) {
	c.t.Helper()
	in, err := structpb.NewStruct(req)
	if err != nil {
		c.t.Fatalf("request: %v", err)
	}
	ctx := context.Background()
	if len(md) > 0 {
		ctx = metadata.AppendToOutgoingContext(ctx, md...)
	}
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, rpc.FullMethod(c.service, method), in, out); err != nil {
		return nil, err
	}
	return out, nil
}
