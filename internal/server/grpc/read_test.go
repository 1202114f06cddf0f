package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/litetable/litetable-mapper/internal/query"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func testRow(key string) *litetable.Row {
	return &litetable.Row{
		Key: key,
		Columns: map[string]litetable.VersionedQualifier{
			"fam": {
				"a": {{Value: []byte("v1"), Timestamp: 1111}},
			},
		},
	}
}

func TestLt_Read(t *testing.T) {
	tests := map[string]struct {
		request         *proto.ReadRequest
		mockSetup       func(m *Mockstorage)
		expectedCode    codes.Code
		expectedMessage string
		expectedRows    []string
	}{
		"missing family and rowKey": {
			request:         &proto.ReadRequest{},
			expectedCode:    codes.InvalidArgument,
			expectedMessage: "family required",
		},
		"invalid regex": {
			request: &proto.ReadRequest{
				Family:    "fam",
				RowKey:    "(",
				QueryType: proto.QueryType_REGEX,
			},
			expectedCode:    codes.InvalidArgument,
			expectedMessage: "invalid row key pattern",
		},
		"internal error from storage": {
			request: &proto.ReadRequest{
				Family:    "fam",
				RowKey:    "key1",
				QueryType: proto.QueryType_EXACT,
			},
			mockSetup: func(m *Mockstorage) {
				m.EXPECT().
					Get(gomock.Any(), "key1", gomock.Any()).
					Return(nil, errors.New("boom"))
			},
			expectedCode:    codes.Internal,
			expectedMessage: "failed to read data: boom",
		},
		"exact read of a missing row": {
			request: &proto.ReadRequest{
				Family: "fam",
				RowKey: "key1",
			},
			mockSetup: func(m *Mockstorage) {
				m.EXPECT().
					Get(gomock.Any(), "key1", gomock.Any()).
					Return(nil, nil)
			},
			expectedCode:    codes.NotFound,
			expectedMessage: "row key1 not found",
		},
		"exact read with qualifiers and latest": {
			request: &proto.ReadRequest{
				Family:     "fam",
				RowKey:     "r1",
				Qualifiers: []string{"a", "b"},
				Latest:     2,
			},
			mockSetup: func(m *Mockstorage) {
				m.EXPECT().
					Get(gomock.Any(), "r1", query.And(
						query.Family("fam"),
						query.Or(query.Qualifier("a"), query.Qualifier("b")),
						query.CellsColumnLimit{N: 2},
					)).
					Return(testRow("r1"), nil)
			},
			expectedCode: codes.OK,
			expectedRows: []string{"r1"},
		},
		"prefix read": {
			request: &proto.ReadRequest{
				Family:    "fam",
				RowKey:    "r",
				QueryType: proto.QueryType_PREFIX,
			},
			mockSetup: func(m *Mockstorage) {
				m.EXPECT().
					Scan(gomock.Any(), query.And(query.RowKeyPrefix("r"), query.Family("fam")), 0).
					Return([]*litetable.Row{testRow("r1"), testRow("r2")}, nil)
			},
			expectedCode: codes.OK,
			expectedRows: []string{"r1", "r2"},
		},
		"regex read": {
			request: &proto.ReadRequest{
				Family:    "fam",
				RowKey:    "r[0-9]",
				QueryType: proto.QueryType_REGEX,
			},
			mockSetup: func(m *Mockstorage) {
				m.EXPECT().
					ScanRegex(gomock.Any(), "r[0-9]", query.Family("fam")).
					Return(nil, nil)
			},
			expectedCode: codes.OK,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			req := require.New(t)

			ctrl := gomock.NewController(t)
			mockStorage := NewMockstorage(ctrl)
			if tc.mockSetup != nil {
				tc.mockSetup(mockStorage)
			}

			svc := &lt{
				storage: mockStorage,
			}

			resp, err := svc.Read(context.Background(), tc.request)

			if tc.expectedCode == codes.OK {
				req.NoError(err)
				req.NotNil(resp)
				req.Len(resp.GetRows(), len(tc.expectedRows))
				for _, key := range tc.expectedRows {
					row, ok := resp.GetRows()[key]
					req.True(ok)
					req.Equal(key, row.GetKey())
				}
				return
			}

			req.Error(err)
			st, ok := status.FromError(err)
			req.True(ok)
			req.Equal(tc.expectedCode, st.Code())
			req.Contains(st.Message(), tc.expectedMessage)
		})
	}
}
