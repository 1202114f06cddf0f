package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/litetable/litetable-mapper/internal/mapper"
	"github.com/litetable/litetable-mapper/internal/memstore"
	"github.com/litetable/litetable-mapper/internal/query"
	servergrpc "github.com/litetable/litetable-mapper/internal/server/grpc"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestNew(t *testing.T) {
	tests := map[string]struct {
		cfg         *Config
		expectedErr string
	}{
		"empty": {
			cfg:         &Config{},
			expectedErr: "address required\nat least one family required",
		},
		"blank family and negative timeout": {
			cfg:         &Config{Address: "localhost:9443", Families: []string{" "}, Timeout: -1},
			expectedErr: "family name cannot be empty\ntimeout cannot be negative",
		},
		"valid": {
			cfg: &Config{Address: "localhost:9443", Families: []string{"main"}},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s, err := New(tc.cfg)
			if tc.expectedErr != "" {
				require.EqualError(t, err, tc.expectedErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, "Remote Store", s.Name())
			require.NoError(t, s.Stop())
		})
	}
}

func newMockStore(t *testing.T, families ...string) (*Store, *Mockclient) {
	t.Helper()
	c := NewMockclient(gomock.NewController(t))
	return &Store{client: c, families: families, timeout: defaultTimeout}, c
}

func data(rowKey, family, qualifier, value string, ts int64) *proto.LitetableData {
	return &proto.LitetableData{Rows: map[string]*proto.Row{
		rowKey: {
			Key: rowKey,
			Cols: map[string]*proto.VersionedQualifier{
				family: {Qualifiers: map[string]*proto.QualifierValues{
					qualifier: {Values: []*proto.TimestampedValue{{Value: []byte(value), TimestampUnix: ts}}},
				}},
			},
		},
	}}
}

func TestStore_Get(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s, c := newMockStore(t, "extra", "main")

	c.EXPECT().Read(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *proto.ReadRequest, _ ...grpc.CallOption) (*proto.LitetableData, error) {
			req.Equal(proto.QueryType_EXACT, in.GetQueryType())
			req.Equal("r1", in.GetRowKey())
			if in.GetFamily() == "extra" {
				return nil, status.Error(codes.NotFound, "row r1 not found")
			}
			return data("r1", "main", "name", "bob", 10), nil
		}).Times(2)

	row, err := s.Get(ctx, "r1", query.CellsColumnLimit{N: 1})
	req.NoError(err)
	cell, ok := row.Latest("main", "name")
	req.True(ok)
	req.Equal("bob", string(cell.Value))

	c.EXPECT().Read(gomock.Any(), gomock.Any()).Return(nil, status.Error(codes.Unavailable, "down"))
	_, err = s.Get(ctx, "r1", nil)
	req.Equal(codes.Unavailable, status.Code(err))
}

func TestStore_Put(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s, c := newMockStore(t, "extra", "main")

	err := s.Put(ctx, "r1", []litetable.Mutation{{Family: "main", Qualifier: "a", Timestamp: 0, HasTimestamp: true}})
	req.ErrorIs(err, ErrExplicitTimestamp)

	var families []string
	c.EXPECT().Write(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *proto.WriteRequest, _ ...grpc.CallOption) (*proto.LitetableData, error) {
			families = append(families, in.GetFamily())
			return &proto.LitetableData{}, nil
		}).Times(2)

	req.NoError(s.Put(ctx, "r1", []litetable.Mutation{
		{Family: "main", Qualifier: "a", Value: []byte("1")},
		{Family: "extra", Qualifier: "b", Value: []byte("2")},
		{Family: "main", Qualifier: "c", Value: []byte("3")},
	}))
	req.Equal([]string{"main", "extra"}, families)
}

func TestStore_Delete(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s, c := newMockStore(t, "extra", "main")

	c.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil, status.Error(codes.NotFound, "missing"))
	c.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(&proto.Empty{}, nil)
	req.NoError(s.Delete(ctx, "r1"))

	c.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))
	req.ErrorContains(s.DeleteCells(ctx, "r1", "main", "a"), "delete r1/main: boom")
}

func TestStore_Start(t *testing.T) {
	req := require.New(t)
	s, c := newMockStore(t, "main")

	req.NoError(s.Start(), "nothing to create")

	s.createFamilies = true
	c.EXPECT().CreateFamily(gomock.Any(), gomock.Any()).Return(&proto.Empty{}, nil)
	req.NoError(s.Start())
}

type person struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Age  *int     `json:"age"`
	Tags []string `json:"tags"`
}

// serve runs a LiteTable server over an in-memory store and returns a remote store for it.
func serve(t *testing.T, families ...string) (*Store, *memstore.Manager) {
	t.Helper()
	backend, err := memstore.New(&memstore.Config{})
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := grpc.NewServer()
	servergrpc.Register(srv, backend)
	go func() { _ = srv.Serve(listener) }()
	t.Cleanup(srv.GracefulStop)

	s, err := New(&Config{Address: listener.Addr().String(), Families: families, CreateFamilies: true})
	require.NoError(t, err)
	require.NoError(t, s.Start())
	t.Cleanup(func() { _ = s.Stop() })
	return s, backend
}

func TestStore_Loopback(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	s, backend := serve(t, "main", "extra")
	req.ElementsMatch([]string{"main", "extra"}, backend.Families())

	people, err := mapper.New(&mapper.Config[person]{
		Store:         s,
		RowKey:        func(p person) string { return p.ID },
		DefaultFamily: "main",
		Families:      map[string]string{"tags": "extra"},
	})
	req.NoError(err)

	age := 41
	bob := person{ID: "B0001", Name: "bob", Age: &age, Tags: []string{"a", "b"}}
	req.NoError(people.Save(ctx, bob))

	got, err := people.Read(ctx, "B0001")
	req.NoError(err)
	req.Equal(bob, *got)

	missing, err := people.Read(ctx, "B9999")
	req.NoError(err)
	req.Nil(missing)

	for i := 2; i <= 5; i++ {
		req.NoError(people.Save(ctx, person{ID: fmt.Sprintf("B%04d", i), Name: fmt.Sprintf("p%d", i)}))
	}
	req.NoError(people.Save(ctx, person{ID: "A0001", Name: "a"}))

	scanned, err := people.Scan(ctx, "B", mapper.WithFields("name"), mapper.WithLimit(3))
	req.NoError(err)
	req.Equal([]person{{Name: "bob"}, {Name: "p2"}, {Name: "p3"}}, scanned)

	err = people.Save(ctx, bob, mapper.WithVersion(1))
	req.ErrorIs(err, ErrExplicitTimestamp)

	req.NoError(people.Delete(ctx, bob))
	got, err = people.Read(ctx, "B0001")
	req.NoError(err)
	req.Nil(got)
	req.Equal(5, backend.Len())

	req.NoError(s.DeleteCells(ctx, "B0002", "main", "id", "name"))
	got, err = people.Read(ctx, "B0002")
	req.NoError(err)
	req.Nil(got)
}
