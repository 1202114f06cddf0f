package grpc

import (
	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-mapper/internal/query"
)

type lt struct {
	proto.UnimplementedLitetableServiceServer
	storage storage
}

// cellFilter keeps one family, optionally narrowed to qualifiers and to the latest versions.
func cellFilter(family string, qualifiers []string, latest int) query.Filter {
	filters := []query.Filter{query.Family(family)}
	if len(qualifiers) > 0 {
		names := make([]query.Filter, 0, len(qualifiers))
		for _, q := range qualifiers {
			names = append(names, query.Qualifier(q))
		}
		filters = append(filters, query.Or(names...))
	}
	if latest > 0 {
		filters = append(filters, query.CellsColumnLimit{N: latest})
	}
	return query.And(filters...)
}
