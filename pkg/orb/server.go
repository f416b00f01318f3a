package orb

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/lunaricorn/lunaricorn/api/proto"
	"github.com/lunaricorn/lunaricorn/pkg/database"
	"github.com/lunaricorn/lunaricorn/pkg/log"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

// Server is the object store's gRPC surface.
type Server struct {
	pb.UnimplementedOrbServiceServer

	storage *Storage
	port    int
	grpc    *grpc.Server
	logger  zerolog.Logger
}

// NewServer wires the RPC service over the given storage.
func NewServer(storage *Storage, port int) *Server {
	s := &Server{
		storage: storage,
		port:    port,
		grpc:    grpc.NewServer(),
		logger:  log.WithComponent("orb-rpc"),
	}
	pb.RegisterOrbServiceServer(s.grpc, s)
	return s
}

// Start serves RPCs until the context is canceled, then drains in-flight
// calls.
func (s *Server) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Int("port", s.port).Msg("orb RPC listening")
		if err := s.grpc.Serve(lis); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.grpc.GracefulStop()
		return nil
	}
}

// PushOrbData stores a typed data record. An empty u means create.
func (s *Server) PushOrbData(ctx context.Context, in *pb.OrbDataRecord) (*pb.PushDataReply, error) {
	d, err := dataFromRecord(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	created, err := s.storage.PushData(ctx, d)
	if err != nil {
		return nil, storageErr(err)
	}
	return &pb.PushDataReply{U: d.U.String(), Created: created}, nil
}

// FetchOrbData returns the typed data record stored under u.
func (s *Server) FetchOrbData(ctx context.Context, in *pb.FetchDataRequest) (*pb.OrbDataRecord, error) {
	u, err := uuid.Parse(in.GetU())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed uuid")
	}

	d, err := s.storage.FetchData(ctx, u)
	if err != nil {
		return nil, storageErr(err)
	}
	return recordFromData(d)
}

// PushOrbMeta stores a typed meta record. A zero id means create.
func (s *Server) PushOrbMeta(ctx context.Context, in *pb.OrbMetaRecord) (*pb.PushMetaReply, error) {
	m, err := metaFromRecord(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	created, err := s.storage.PushMeta(ctx, m)
	if err != nil {
		return nil, storageErr(err)
	}
	return &pb.PushMetaReply{Id: m.ID, Created: created}, nil
}

// FetchOrbMeta returns the typed meta record stored under id.
func (s *Server) FetchOrbMeta(ctx context.Context, in *pb.FetchMetaRequest) (*pb.OrbMetaRecord, error) {
	m, err := s.storage.FetchMeta(ctx, in.GetId())
	if err != nil {
		return nil, storageErr(err)
	}
	return recordFromMeta(m), nil
}

// PushData stores an opaque byte payload. The bytes land in a raw-subtype
// record so a later typed fetch still works.
func (s *Server) PushData(ctx context.Context, in *pb.PushDataRequest) (*pb.PushDataReply, error) {
	d := &types.OrbData{
		Subtype: types.OrbSubtypeRaw,
		Data: map[string]any{
			types.RawDataKey: base64.StdEncoding.EncodeToString(in.GetData()),
		},
	}
	if in.GetU() != "" {
		u, err := uuid.Parse(in.GetU())
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "malformed uuid")
		}
		d.U = u
	}

	created, err := s.storage.PushData(ctx, d)
	if err != nil {
		return nil, storageErr(err)
	}
	return &pb.PushDataReply{U: d.U.String(), Created: created}, nil
}

// FetchData returns the stored payload as bytes. Raw records yield their
// original bytes; structured records yield their JSON encoding.
func (s *Server) FetchData(ctx context.Context, in *pb.FetchDataRequest) (*pb.FetchDataReply, error) {
	u, err := uuid.Parse(in.GetU())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "malformed uuid")
	}

	d, err := s.storage.FetchData(ctx, u)
	if err != nil {
		return nil, storageErr(err)
	}

	if d.Subtype == types.OrbSubtypeRaw {
		encoded, _ := d.Data[types.RawDataKey].(string)
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "corrupt raw record %s", u)
		}
		return &pb.FetchDataReply{Data: raw}, nil
	}

	raw, err := json.Marshal(d.Data)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode record")
	}
	return &pb.FetchDataReply{Data: raw}, nil
}

// legacyMeta is the JSON shape of byte-encoded meta payloads.
type legacyMeta struct {
	U        string   `json:"u,omitempty"`
	DataType string   `json:"data_type,omitempty"`
	Flags    []string `json:"flags,omitempty"`
	Handle   int64    `json:"handle,omitempty"`
}

// PushMeta stores a meta record carried as a JSON byte payload.
func (s *Server) PushMeta(ctx context.Context, in *pb.PushMetaRequest) (*pb.PushMetaReply, error) {
	var lm legacyMeta
	if err := json.Unmarshal(in.GetData(), &lm); err != nil {
		return nil, status.Error(codes.InvalidArgument, "payload is not valid json")
	}

	m := &types.OrbMeta{
		ID:       in.GetId(),
		DataType: types.OrbDataSubtype(lm.DataType),
		Flags:    lm.Flags,
		Handle:   lm.Handle,
	}
	if lm.U != "" {
		u, err := uuid.Parse(lm.U)
		if err != nil {
			return nil, status.Error(codes.InvalidArgument, "malformed uuid")
		}
		m.U = u
	}

	created, err := s.storage.PushMeta(ctx, m)
	if err != nil {
		return nil, storageErr(err)
	}
	return &pb.PushMetaReply{Id: m.ID, Created: created}, nil
}

// FetchMeta returns the meta record as a JSON byte payload.
func (s *Server) FetchMeta(ctx context.Context, in *pb.FetchMetaRequest) (*pb.FetchMetaReply, error) {
	m, err := s.storage.FetchMeta(ctx, in.GetId())
	if err != nil {
		return nil, storageErr(err)
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode record")
	}
	return &pb.FetchMetaReply{Data: raw}, nil
}

func storageErr(err error) error {
	if errors.Is(err, database.ErrNotFound) {
		return status.Error(codes.NotFound, "record not found")
	}
	return status.Error(codes.Internal, err.Error())
}

// optionalUUID parses a wire uuid field, with the empty string mapping to the
// zero uuid.
func optionalUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

func dataFromRecord(in *pb.OrbDataRecord) (*types.OrbData, error) {
	d := &types.OrbData{
		Subtype: types.OrbDataSubtype(in.GetDataType()),
		Src:     in.GetSrc(),
		Flags:   in.GetFlags(),
	}

	if in.GetU() != "" {
		u, err := uuid.Parse(in.GetU())
		if err != nil {
			return nil, fmt.Errorf("malformed uuid")
		}
		d.U = u
	}
	var err error
	if d.ChainLeft, err = optionalUUID(in.GetChainLeft()); err != nil {
		return nil, fmt.Errorf("malformed chain_left")
	}
	if d.ChainRight, err = optionalUUID(in.GetChainRight()); err != nil {
		return nil, fmt.Errorf("malformed chain_right")
	}
	if d.Parent, err = optionalUUID(in.GetParent()); err != nil {
		return nil, fmt.Errorf("malformed parent")
	}

	if in.GetDataJson() != "" {
		if err := json.Unmarshal([]byte(in.GetDataJson()), &d.Data); err != nil {
			return nil, fmt.Errorf("data_json is not a json object")
		}
	}
	return d, nil
}

func recordFromData(d *types.OrbData) (*pb.OrbDataRecord, error) {
	raw, err := json.Marshal(d.Data)
	if err != nil {
		return nil, status.Error(codes.Internal, "failed to encode record")
	}
	out := &pb.OrbDataRecord{
		U:        d.U.String(),
		DataType: string(d.Subtype),
		Ctime:    float64(d.CTime.UnixNano()) / float64(time.Second),
		Flags:    d.Flags,
		Src:      d.Src,
		DataJson: string(raw),
	}
	if d.ChainLeft != uuid.Nil {
		out.ChainLeft = d.ChainLeft.String()
	}
	if d.ChainRight != uuid.Nil {
		out.ChainRight = d.ChainRight.String()
	}
	if d.Parent != uuid.Nil {
		out.Parent = d.Parent.String()
	}
	return out, nil
}

func metaFromRecord(in *pb.OrbMetaRecord) (*types.OrbMeta, error) {
	m := &types.OrbMeta{
		ID:       in.GetId(),
		DataType: types.OrbDataSubtype(in.GetDataType()),
		Flags:    in.GetFlags(),
		Handle:   in.GetHandle(),
	}
	if in.GetU() != "" {
		u, err := uuid.Parse(in.GetU())
		if err != nil {
			return nil, fmt.Errorf("malformed uuid")
		}
		m.U = u
	}
	return m, nil
}

func recordFromMeta(m *types.OrbMeta) *pb.OrbMetaRecord {
	return &pb.OrbMetaRecord{
		Id:       m.ID,
		U:        m.U.String(),
		DataType: string(m.DataType),
		Ctime:    float64(m.CTime.UnixNano()) / float64(time.Second),
		Flags:    m.Flags,
		Handle:   m.Handle,
	}
}
