package server

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls a remote narodmon.v1.Aggregator service.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// Update runs a cycle; typeID 0 requests every known type.
func (c *Client) Update(ctx context.Context, typeID int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, updateMethod, wrapperspb.Int64(typeID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateSingle(ctx context.Context, typeID int64, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, updateSingleMethod, wrapperspb.Int64(typeID), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// RemoveAll returns the number of removed entities.
func (c *Client) RemoveAll(ctx context.Context, opts ...grpc.CallOption) (int64, error) {
	out := new(wrapperspb.Int64Value)
	if err := c.conn.Invoke(ctx, removeAllMethod, &emptypb.Empty{}, out, opts...); err != nil {
		return 0, err
	}
	return out.GetValue(), nil
}

func (c *Client) History(ctx context.Context, typeID int64, start, end time.Time, window, aggregation string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]interface{}{
		"type_id":     typeID,
		"start":       start.UTC().Format(time.RFC3339),
		"end":         end.UTC().Format(time.RFC3339),
		"window":      window,
		"aggregation": aggregation,
	})
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, historyMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
