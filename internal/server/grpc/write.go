package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/litetable/litetable-mapper/internal/memstore"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (l *lt) validateWrite(msg *proto.WriteRequest) error {
	var errGrp []error
	if msg.GetFamily() == "" {
		errGrp = append(errGrp, status.Errorf(codes.InvalidArgument, "family required"))
	}
	if msg.GetRowKey() == "" {
		errGrp = append(errGrp, status.Errorf(codes.InvalidArgument, "rowKey required"))
	}
	if len(msg.GetQualifiers()) == 0 {
		errGrp = append(errGrp, status.Errorf(codes.InvalidArgument, "qualifiers required"))
	}
	for _, q := range msg.GetQualifiers() {
		if q.GetName() == "" {
			errGrp = append(errGrp, status.Errorf(codes.InvalidArgument, "qualifier name required"))
			break
		}
	}
	return errors.Join(errGrp...)
}

// Write stores every qualifier of the request as one row update at the server's clock and
// returns the cells it wrote.
func (l *lt) Write(ctx context.Context, msg *proto.WriteRequest) (*proto.LitetableData, error) {
	if err := l.validateWrite(msg); err != nil {
		return nil, err
	}
	now := time.Now()
	log.Debug().Msgf("Write request: %v", msg)

	names := make([]string, 0, len(msg.GetQualifiers()))
	mutations := make([]litetable.Mutation, 0, len(msg.GetQualifiers()))
	for _, q := range msg.GetQualifiers() {
		names = append(names, q.GetName())
		mutations = append(mutations, litetable.Mutation{
			Family:    msg.GetFamily(),
			Qualifier: q.GetName(),
			Value:     q.GetValue(),
		})
	}

	if err := l.storage.Put(ctx, msg.GetRowKey(), mutations); err != nil {
		if errors.Is(err, memstore.ErrFamilyNotAllowed) {
			return nil, status.Errorf(codes.FailedPrecondition, "failed to write data: %v", err)
		}
		return nil, status.Errorf(codes.Internal, "failed to write data: %v", err)
	}

	row, err := l.storage.Get(ctx, msg.GetRowKey(), cellFilter(msg.GetFamily(), names, 1))
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to read written data: %v", err)
	}

	log.Debug().Msgf("Write latency: %v", time.Since(now))
	if row == nil {
		return convertToProtoData(nil), nil
	}
	return convertToProtoData([]*litetable.Row{row}), nil
}
