package rpc

import (
	"context"
	"encoding/json"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls the Viewer service
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps an established connection
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dispatch runs link remotely. An empty sessionID lets the server create a
// session; its ID is returned in the result.
func (c *Client) Dispatch(ctx context.Context, sessionID, link string) (*Result, error) {
	if sessionID != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, SessionHeader, sessionID)
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, DispatchMethod, wrapperspb.String(link), out); err != nil {
		return nil, err
	}

	data, err := json.Marshal(out.AsMap())
	if err != nil {
		return nil, decodeError(err)
	}
	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, decodeError(err)
	}
	return &result, nil
}

func decodeError(err error) error {
	return mdwerror.Wrap(err, "failed to decode dispatch result").
		WithCode(mdwerror.CodeInternal).
		WithOperation("rpc.Dispatch")
}
