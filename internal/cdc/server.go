// Package cdc streams store changes to subscribers over the LiteTable CDC gRPC API.
package cdc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	v1 "github.com/litetable/litetable-cdc/go/v1"
	"github.com/litetable/litetable-mapper/internal/litetable"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
)

const defaultBufferSize = 1000

type subscriber struct {
	id     string
	stream v1.CDCService_CDCStreamServer
	done   chan struct{}
}

// Server fans out every emitted event to the connected subscribers. Emit never blocks: when the
// buffer is full the event is dropped.
type Server struct {
	v1.UnimplementedCDCServiceServer
	address  string
	port     int
	listener net.Listener
	server   *grpc.Server

	events chan *litetable.Event

	subscribersMux sync.Mutex
	subscribers    map[string]*subscriber

	procCtx    context.Context
	procCancel context.CancelFunc
	stopOnce   sync.Once
}

type Config struct {
	Address string
	// Port 0 picks a free port.
	Port int
	// BufferSize is the number of events held for dispatch. Defaults to 1000.
	BufferSize int
}

func (c *Config) validate() error {
	var errGrp []error
	if c.Address == "" {
		errGrp = append(errGrp, fmt.Errorf("invalid address: %s", c.Address))
	}
	if c.Port < 0 {
		errGrp = append(errGrp, fmt.Errorf("invalid port: %d", c.Port))
	}
	if c.BufferSize < 0 {
		errGrp = append(errGrp, fmt.Errorf("invalid buffer size: %d", c.BufferSize))
	}
	return errors.Join(errGrp...)
}

// New creates the CDC server and binds its listener.
func New(cfg *Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	addrString := fmt.Sprintf("%s:%d", cfg.Address, cfg.Port)
	listener, err := net.Listen("tcp", addrString)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", addrString, err)
	}

	bufferSize := cfg.BufferSize
	if bufferSize == 0 {
		bufferSize = defaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		address:     cfg.Address,
		port:        listener.Addr().(*net.TCPAddr).Port,
		listener:    listener,
		server:      grpc.NewServer(),
		events:      make(chan *litetable.Event, bufferSize),
		subscribers: make(map[string]*subscriber),
		procCtx:     ctx,
		procCancel:  cancel,
	}
	v1.RegisterCDCServiceServer(s.server, s)
	return s, nil
}

// Addr is the address the server listens on.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) Start() error {
	log.Info().Msgf("CDC gRPC server listening at %s:%d", s.address, s.port)

	go s.dispatchLoop()

	go func() {
		if err := s.server.Serve(s.listener); err != nil {
			log.Error().Err(err).Msg("CDC gRPC server failed")
		}
	}()
	return nil
}

// Stop ends every subscription and stops the server. Events still buffered are discarded.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		s.procCancel()
		s.server.GracefulStop()
		_ = s.listener.Close()
	})
	return nil
}

func (s *Server) Name() string {
	return "CDC Stream"
}

// Emit queues event for every subscriber.
func (s *Server) Emit(event *litetable.Event) {
	if s.procCtx.Err() != nil {
		return
	}
	select {
	case s.events <- event:
	default:
		log.Warn().Str("rowKey", event.RowKey).Msg("cdc buffer full, dropping event")
	}
}

// CDCStream registers a subscriber and blocks until it disconnects or the server stops.
// Subscribers without a client id get a random one.
func (s *Server) CDCStream(req *v1.CDCSubscriptionRequest, stream v1.CDCService_CDCStreamServer) error {
	sub := &subscriber{
		id:     req.GetClientId(),
		stream: stream,
		done:   make(chan struct{}),
	}
	if sub.id == "" {
		sub.id = uuid.NewString()
	}
	if req.GetReplay() {
		log.Debug().Str("client", sub.id).Msg("cdc replay is not supported, streaming live events only")
	}

	s.register(sub)
	defer s.unregister(sub)

	log.Debug().Str("client", sub.id).Msg("cdc subscriber connected")
	select {
	case <-stream.Context().Done():
	case <-sub.done:
	case <-s.procCtx.Done():
	}
	return nil
}

func (s *Server) register(sub *subscriber) {
	s.subscribersMux.Lock()
	defer s.subscribersMux.Unlock()
	if prev, ok := s.subscribers[sub.id]; ok {
		close(prev.done)
	}
	s.subscribers[sub.id] = sub
}

func (s *Server) unregister(sub *subscriber) {
	s.subscribersMux.Lock()
	defer s.subscribersMux.Unlock()
	if s.subscribers[sub.id] == sub {
		delete(s.subscribers, sub.id)
	}
}

func (s *Server) subscriberCount() int {
	s.subscribersMux.Lock()
	defer s.subscribersMux.Unlock()
	return len(s.subscribers)
}

func (s *Server) dispatchLoop() {
	for {
		select {
		case <-s.procCtx.Done():
			return
		case evt := <-s.events:
			s.dispatch(toProto(evt))
		}
	}
}

func (s *Server) dispatch(event *v1.CDCEvent) {
	s.subscribersMux.Lock()
	defer s.subscribersMux.Unlock()

	for id, sub := range s.subscribers {
		if err := sub.stream.Send(event); err != nil {
			log.Warn().Err(err).Str("client", id).Msg("removing gRPC stream due to send error")
			delete(s.subscribers, id)
			close(sub.done)
		}
	}
}

func toProto(evt *litetable.Event) *v1.CDCEvent {
	event := &v1.CDCEvent{
		RowKey:        evt.RowKey,
		Family:        evt.Family,
		Qualifier:     evt.Qualifier,
		Value:         evt.Value,
		TimestampUnix: evt.Timestamp,
		Tombstone:     evt.Tombstone,
	}

	switch evt.Operation {
	case litetable.OperationRead:
		event.Operation = v1.LitetableOperation_READ
	case litetable.OperationWrite:
		event.Operation = v1.LitetableOperation_WRITE
	case litetable.OperationDelete:
		event.Operation = v1.LitetableOperation_DELETE
	}
	return event
}
