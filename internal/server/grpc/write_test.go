package grpc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/litetable/litetable-mapper/internal/memstore"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLt_Write(t *testing.T) {
	tests := map[string]struct {
		request         *proto.WriteRequest
		mockSetup       func(m *Mockstorage)
		expectedCode    codes.Code
		expectedMessage string
	}{
		"missing fields": {
			request:         &proto.WriteRequest{},
			expectedCode:    codes.InvalidArgument,
			expectedMessage: "family required",
		},
		"unnamed qualifier": {
			request: &proto.WriteRequest{
				Family:     "f1",
				RowKey:     "r1",
				Qualifiers: []*proto.ColumnQualifier{{Value: []byte("v1")}},
			},
			expectedCode:    codes.InvalidArgument,
			expectedMessage: "qualifier name required",
		},
		"unknown family": {
			request: &proto.WriteRequest{
				Family:     "f1",
				RowKey:     "r1",
				Qualifiers: []*proto.ColumnQualifier{{Name: "q1", Value: []byte("v1")}},
			},
			mockSetup: func(m *Mockstorage) {
				m.EXPECT().
					Put(gomock.Any(), "r1", gomock.Any()).
					Return(fmt.Errorf("%w: f1", memstore.ErrFamilyNotAllowed))
			},
			expectedCode:    codes.FailedPrecondition,
			expectedMessage: "column family not allowed",
		},
		"internal error from Put": {
			request: &proto.WriteRequest{
				Family:     "f1",
				RowKey:     "r1",
				Qualifiers: []*proto.ColumnQualifier{{Name: "q1", Value: []byte("v1")}},
			},
			mockSetup: func(m *Mockstorage) {
				m.EXPECT().
					Put(gomock.Any(), "r1", gomock.Any()).
					Return(errors.New("write failed"))
			},
			expectedCode:    codes.Internal,
			expectedMessage: "failed to write data: write failed",
		},
		"successful write": {
			request: &proto.WriteRequest{
				Family: "fam",
				RowKey: "r1",
				Qualifiers: []*proto.ColumnQualifier{
					{Name: "a", Value: []byte("hello world!")},
				},
			},
			mockSetup: func(m *Mockstorage) {
				m.EXPECT().
					Put(gomock.Any(), "r1", []litetable.Mutation{
						{Family: "fam", Qualifier: "a", Value: []byte("hello world!")},
					}).
					Return(nil)
				m.EXPECT().
					Get(gomock.Any(), "r1", gomock.Any()).
					Return(testRow("r1"), nil)
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

			svc := &lt{storage: mockStorage}
			resp, err := svc.Write(context.Background(), tc.request)

			if tc.expectedCode == codes.OK {
				req.NoError(err)
				req.Contains(resp.GetRows(), "r1")
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
