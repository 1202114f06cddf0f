package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/litetable/litetable-db/pkg/proto"
	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/litetable/litetable-mapper/internal/query"
	"github.com/rs/zerolog/log"
	grpc2 "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

//go:generate mockgen -destination=./grpc_mock.go -package=grpc -source=grpc.go

type grpcServer interface {
	Serve(lis net.Listener) error
	GracefulStop()
}

type storage interface {
	Get(ctx context.Context, rowKey string, filter query.Filter) (*litetable.Row, error)
	Scan(ctx context.Context, filter query.Filter, limit int) ([]*litetable.Row, error)
	ScanRegex(ctx context.Context, pattern string, filter query.Filter) ([]*litetable.Row, error)
	Put(ctx context.Context, rowKey string, mutations []litetable.Mutation) error
	DeleteCells(ctx context.Context, rowKey, family string, qualifiers ...string) error
	CreateFamilies(families ...string) error
}

// Server implements the app.Dependency interface for a gRPC server
type Server struct {
	address  string
	server   grpcServer
	port     int
	listener net.Listener
}

type Config struct {
	Address string
	Port    int
	Storage storage
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, fmt.Errorf("address required"))
	}
	if c.Port == 0 {
		errGrp = append(errGrp, fmt.Errorf("port required"))
	}
	if c.Storage == nil {
		errGrp = append(errGrp, fmt.Errorf("storage required"))
	}

	return errors.Join(errGrp...)
}

// NewServer creates a new gRPC server instance serving the LiteTable API over storage.
func NewServer(cfg *Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	srv := grpc2.NewServer()
	Register(srv, cfg.Storage)
	reflection.Register(srv)

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Address, cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to create listener on port %d: %w", cfg.Port, err)
	}

	return &Server{
		address:  cfg.Address,
		server:   srv,
		port:     cfg.Port,
		listener: lis,
	}, nil
}

// Register adds the LiteTable service backed by st to srv.
func Register(srv grpc2.ServiceRegistrar, st storage) {
	proto.RegisterLitetableServiceServer(srv, &lt{storage: st})
}

func (s *Server) Start() error {
	log.Info().Msgf("gRPC server listening at %s:%d", s.address, s.port)

	errCh := make(chan error, 1)

	go func() {
		if err := s.server.Serve(s.listener); err != nil {
			errCh <- err
			log.Error().Err(err).Msg("gRPC server failed")
			return
		}
		errCh <- nil
	}()

	// Block briefly for error or nil return
	select {
	case err := <-errCh:
		return err
	case <-time.After(500 * time.Millisecond):
		return nil
	}
}

func (s *Server) Stop() error {
	log.Info().Msg("Stopping gRPC server")
	s.server.GracefulStop()
	return nil
}

func (s *Server) Name() string {
	return "gRPC Server"
}
