package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

type invocation struct {
	method string
	auth   []string
	body   json.RawMessage
}

// fakeConn answers unary calls from a handler, passing messages through the JSON codec
type fakeConn struct {
	mu      sync.Mutex
	calls   []invocation
	handler func(method string) (any, error)
	closed  bool
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args any, reply any, _ ...grpc.CallOption) error {
	body, err := jsonCodec{}.Marshal(args)
	if err != nil {
		return err
	}
	md, _ := metadata.FromOutgoingContext(ctx)

	f.mu.Lock()
	f.calls = append(f.calls, invocation{method: method, auth: md.Get("authorization"), body: body})
	handler := f.handler
	f.mu.Unlock()

	if handler == nil {
		return nil
	}
	out, err := handler(method)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	data, err := jsonCodec{}.Marshal(out)
	if err != nil {
		return err
	}
	return jsonCodec{}.Unmarshal(data, reply)
}

func (f *fakeConn) NewStream(context.Context, *grpc.StreamDesc, string, ...grpc.CallOption) (grpc.ClientStream, error) {
	return nil, errors.New("streams are not supported")
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) lastCall() invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

var _ io.Closer = (*fakeConn)(nil)
