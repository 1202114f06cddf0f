package grpc

import (
	"context"
	"errors"

	"github.com/litetable/litetable-db/pkg/proto"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (l *lt) validateDelete(msg *proto.DeleteRequest) error {
	var errGrp []error
	if msg.GetFamily() == "" {
		errGrp = append(errGrp, status.Errorf(codes.InvalidArgument, "family required"))
	}
	if msg.GetRowKey() == "" {
		errGrp = append(errGrp, status.Errorf(codes.InvalidArgument, "rowKey required"))
	}

	return errors.Join(errGrp...)
}

// Delete removes the given qualifiers of one family, or the whole family when none are named.
// Tombstones at a timestamp and TTLs are not supported: cells are removed immediately.
func (l *lt) Delete(ctx context.Context, msg *proto.DeleteRequest) (*proto.Empty, error) {
	if err := l.validateDelete(msg); err != nil {
		return nil, err
	}
	if msg.GetTimestampUnix() > 0 || msg.GetTtl() > 0 {
		return nil, status.Errorf(codes.Unimplemented, "timestamped and ttl deletes are not supported")
	}

	if err := l.storage.DeleteCells(ctx, msg.GetRowKey(), msg.GetFamily(), msg.GetQualifiers()...); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to delete data: %v", err)
	}
	return &proto.Empty{}, nil
}
