// Package remote implements the store contract over the LiteTable gRPC API.
//
// The API reads and writes one family per call and has no server-side filters, so the store
// fans out over its configured families and evaluates filters on the client. A row update
// spanning several families is one call per family and is not atomic.
package remote

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/litetable/litetable-mapper/internal/query"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

//go:generate mockgen -destination=./store_mock.go -package=remote -source=store.go

const defaultTimeout = 5 * time.Second

// ErrExplicitTimestamp is returned for writes that carry their own timestamp: the server always
// stamps cells with its clock.
var ErrExplicitTimestamp = errors.New("explicit cell timestamps are not supported by the remote store")

type client interface {
	Read(ctx context.Context, in *proto.ReadRequest, opts ...grpc.CallOption) (*proto.LitetableData, error)
	Write(ctx context.Context, in *proto.WriteRequest, opts ...grpc.CallOption) (*proto.LitetableData, error)
	Delete(ctx context.Context, in *proto.DeleteRequest, opts ...grpc.CallOption) (*proto.Empty, error)
	CreateFamily(ctx context.Context, in *proto.CreateFamilyRequest, opts ...grpc.CallOption) (*proto.Empty, error)
}

// Store is a LiteTable server seen through the store contract.
type Store struct {
	address        string
	conn           *grpc.ClientConn
	client         client
	families       []string
	createFamilies bool
	timeout        time.Duration
}

type Config struct {
	// Address of the LiteTable server, host:port.
	Address string
	// Families are the families a read fans out over.
	Families []string
	// CreateFamilies creates Families on Start.
	CreateFamilies bool
	// Timeout bounds every call. Defaults to 5s.
	Timeout time.Duration
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, errors.New("address required"))
	}
	if len(c.Families) == 0 {
		errGrp = append(errGrp, errors.New("at least one family required"))
	}
	for _, f := range c.Families {
		if strings.TrimSpace(f) == "" {
			errGrp = append(errGrp, errors.New("family name cannot be empty"))
			break
		}
	}
	if c.Timeout < 0 {
		errGrp = append(errGrp, errors.New("timeout cannot be negative"))
	}
	return errors.Join(errGrp...)
}

// New creates a store for the server at cfg.Address. The connection is established lazily.
func New(cfg *Config) (*Store, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(cfg.Address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to create client for %s: %w", cfg.Address, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	families := append([]string(nil), cfg.Families...)
	sort.Strings(families)

	return &Store{
		address:        cfg.Address,
		conn:           conn,
		client:         proto.NewLitetableServiceClient(conn),
		families:       families,
		createFamilies: cfg.CreateFamilies,
		timeout:        timeout,
	}, nil
}

// Start creates the configured families when asked to.
func (s *Store) Start() error {
	if !s.createFamilies {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.client.CreateFamily(ctx, &proto.CreateFamilyRequest{Family: s.families}); err != nil {
		return fmt.Errorf("failed to create families: %w", err)
	}
	log.Info().Strs("families", s.families).Str("address", s.address).Msg("remote families created")
	return nil
}

func (s *Store) Stop() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *Store) Name() string {
	return "Remote Store"
}

// Get reads rowKey from every family and returns the cells surviving filter, or nil.
func (s *Store) Get(ctx context.Context, rowKey string, filter query.Filter) (*litetable.Row, error) {
	rows, err := s.read(ctx, rowKey, proto.QueryType_EXACT)
	if err != nil {
		return nil, err
	}
	return query.Apply(filter, rows[rowKey]), nil
}

// Scan pushes the row key constraint of filter down to the server and evaluates the rest
// locally. Rows come back in row key order.
func (s *Store) Scan(ctx context.Context, filter query.Filter, limit int) ([]*litetable.Row, error) {
	key, queryType := ".*", proto.QueryType_REGEX
	if prefix, ok := query.ScanPrefix(filter); ok {
		key, queryType = prefix, proto.QueryType_PREFIX
	} else if pattern, ok := query.RowKeyPattern(filter); ok {
		key = pattern
	}

	rows, err := s.read(ctx, key, queryType)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []*litetable.Row
	for _, k := range keys {
		row := query.Apply(filter, rows[k])
		if row == nil {
			continue
		}
		out = append(out, row)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Put writes mutations grouped by family, one call per family.
func (s *Store) Put(ctx context.Context, rowKey string, mutations []litetable.Mutation) error {
	if rowKey == "" {
		return errors.New("row key is required")
	}

	var order []string
	byFamily := make(map[string][]*proto.ColumnQualifier)
	for _, m := range mutations {
		if m.HasTimestamp {
			return fmt.Errorf("%w: %s/%s", ErrExplicitTimestamp, m.Family, m.Qualifier)
		}
		if _, ok := byFamily[m.Family]; !ok {
			order = append(order, m.Family)
		}
		byFamily[m.Family] = append(byFamily[m.Family], &proto.ColumnQualifier{
			Name:  m.Qualifier,
			Value: m.Value,
		})
	}

	for _, family := range order {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		_, err := s.client.Write(callCtx, &proto.WriteRequest{
			Family:     family,
			RowKey:     rowKey,
			Qualifiers: byFamily[family],
		})
		cancel()
		if err != nil {
			return fmt.Errorf("write %s/%s: %w", rowKey, family, err)
		}
	}
	return nil
}

// Delete removes rowKey from every family.
func (s *Store) Delete(ctx context.Context, rowKey string) error {
	var errGrp []error
	for _, family := range s.families {
		if err := s.DeleteCells(ctx, rowKey, family); err != nil {
			errGrp = append(errGrp, err)
		}
	}
	return errors.Join(errGrp...)
}

// DeleteCells removes qualifiers of family, or the whole family when none are given.
func (s *Store) DeleteCells(ctx context.Context, rowKey, family string, qualifiers ...string) error {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.Delete(callCtx, &proto.DeleteRequest{
		RowKey:     rowKey,
		Family:     family,
		Qualifiers: qualifiers,
	})
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("delete %s/%s: %w", rowKey, family, err)
	}
	return nil
}

// NewBatch starts an empty batch applied row by row on Flush.
func (s *Store) NewBatch() litetable.Batch {
	return litetable.NewSerialBatch(s)
}

// read fetches key from every family and merges the results by row.
func (s *Store) read(ctx context.Context, key string, queryType proto.QueryType) (map[string]*litetable.Row, error) {
	rows := make(map[string]*litetable.Row)
	for _, family := range s.families {
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		data, err := s.client.Read(callCtx, &proto.ReadRequest{
			Family:    family,
			RowKey:    key,
			QueryType: queryType,
		})
		cancel()
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("read %s/%s: %w", key, family, err)
		}
		mergeRows(rows, data)
	}
	return rows, nil
}

func isNotFound(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	return st.Code() == codes.NotFound || strings.Contains(strings.ToLower(st.Message()), "not found")
}
