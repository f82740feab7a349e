package rpc

import (
	"context"
	"net"
	"testing"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

type echoRequest struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type echoResponse struct {
	Greeting string `json:"greeting"`
	Count    int    `json:"count"`
}

func TestServiceDescRoundTrip(t *testing.T) {
	desc := NewServiceDesc("test.v1.EchoService", Method{
		Name: "Echo",
		Handler: func(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
			var in echoRequest
			if err := Decode(req, &in); err != nil {
				return nil, err
			}
			if in.Name == "" {
				return nil, status.Error(codes.InvalidArgument, "name required")
			}
			return Encode(echoResponse{Greeting: "hello " + in.Name, Count: in.Count + 1})
		},
	})

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	srv.RegisterService(desc, struct{}{})
	go func() { _ = srv.Serve(lis) }()
	defer srv.Stop()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	req, _ := structpb.NewStruct(map[string]any{"name": "parts", "count": 2})
	resp := &structpb.Struct{}
	if err := conn.Invoke(context.Background(), FullMethod("test.v1.EchoService", "Echo"), req, resp); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := resp.Fields["greeting"].GetStringValue(); got != "hello parts" {
		t.Errorf("greeting = %q", got)
	}
	if got := resp.Fields["count"].GetNumberValue(); got != 3 {
		t.Errorf("count = %v, want 3", got)
	}

	empty, _ := structpb.NewStruct(map[string]any{})
	err = conn.Invoke(context.Background(), FullMethod("test.v1.EchoService", "Echo"), empty, resp)
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestDecodeRejectsWrongTypes(t *testing.T) {
	req, _ := structpb.NewStruct(map[string]any{"count": "many"})
	var in echoRequest
	if err := Decode(req, &in); status.Code(err) != codes.InvalidArgument {
		t.Errorf("Decode() code = %v, want InvalidArgument", status.Code(err))
	}
}
