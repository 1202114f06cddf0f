package grpc

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/litetable/litetable-mapper/internal/query"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func (l *lt) validateRead(msg *proto.ReadRequest) error {
	var errGrp []error
	if msg.GetFamily() == "" {
		errGrp = append(errGrp, status.Errorf(codes.InvalidArgument, "family required"))
	}
	if msg.GetRowKey() == "" {
		errGrp = append(errGrp, status.Errorf(codes.InvalidArgument, "rowKey required"))
	}
	if msg.GetQueryType() == proto.QueryType_REGEX {
		if _, err := regexp.Compile(msg.GetRowKey()); err != nil {
			errGrp = append(errGrp, status.Errorf(codes.InvalidArgument, "invalid row key pattern: %v", err))
		}
	}

	return errors.Join(errGrp...)
}

// Read returns one family of the row named by the request, or of every row matching it as a
// prefix or regular expression. An exact read of a missing row is NotFound.
func (l *lt) Read(ctx context.Context, msg *proto.ReadRequest) (*proto.LitetableData, error) {
	now := time.Now()
	log.Debug().Msgf("Read request: %v", msg)
	if err := l.validateRead(msg); err != nil {
		return nil, err
	}

	filter := cellFilter(msg.GetFamily(), msg.GetQualifiers(), int(msg.GetLatest()))

	var (
		rows []*litetable.Row
		err  error
	)
	switch msg.GetQueryType() {
	case proto.QueryType_PREFIX:
		rows, err = l.storage.Scan(ctx, query.And(query.RowKeyPrefix(msg.GetRowKey()), filter), 0)
	case proto.QueryType_REGEX:
		rows, err = l.storage.ScanRegex(ctx, msg.GetRowKey(), filter)
	default:
		var row *litetable.Row
		row, err = l.storage.Get(ctx, msg.GetRowKey(), filter)
		if err == nil && row == nil {
			return nil, status.Errorf(codes.NotFound, "row %s not found", msg.GetRowKey())
		}
		if row != nil {
			rows = []*litetable.Row{row}
		}
	}
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to read data: %v", err)
	}

	log.Debug().Msgf("Read latency: %v", time.Since(now))
	return convertToProtoData(rows), nil
}
