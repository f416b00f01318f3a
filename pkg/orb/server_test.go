package orb

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/lunaricorn/lunaricorn/api/proto"
)

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock, *fakeBus) {
	t.Helper()
	storage, mock, bus := newMockStorage(t)
	return NewServer(storage, 50051), mock, bus
}

func TestPushOrbDataCreate(t *testing.T) {
	s, mock, bus := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orb_data").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reply, err := s.PushOrbData(context.Background(), &pb.OrbDataRecord{
		DataJson: `{"title":"hello"}`,
		Flags:    []string{"pinned"},
	})
	require.NoError(t, err)
	assert.True(t, reply.GetCreated())

	u, err := uuid.Parse(reply.GetU())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, u)
	require.Len(t, bus.events, 1)
}

func TestPushOrbDataRejectsBadInput(t *testing.T) {
	s, _, _ := newTestServer(t)

	_, err := s.PushOrbData(context.Background(), &pb.OrbDataRecord{U: "not-a-uuid"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.PushOrbData(context.Background(), &pb.OrbDataRecord{DataJson: "not json"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	_, err = s.PushOrbData(context.Background(), &pb.OrbDataRecord{ChainLeft: "broken"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestFetchOrbDataNotFound(t *testing.T) {
	s, mock, _ := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM orb_data").
		WillReturnRows(dataRows())
	mock.ExpectCommit()

	_, err := s.FetchOrbData(context.Background(), &pb.FetchDataRequest{U: uuid.NewString()})
	assert.Equal(t, codes.NotFound, status.Code(err))

	_, err = s.FetchOrbData(context.Background(), &pb.FetchDataRequest{U: "junk"})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestFetchOrbDataRoundTripsRecord(t *testing.T) {
	s, mock, _ := newTestServer(t)
	u := uuid.New()
	parent := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM orb_data").
		WithArgs(u).
		WillReturnRows(dataRows().
			AddRow(u.String(), "@json", nil, nil, parent.String(),
				time.Unix(1700000100, 0), `["pinned"]`, "portal", `{"title":"hello"}`))
	mock.ExpectCommit()

	rec, err := s.FetchOrbData(context.Background(), &pb.FetchDataRequest{U: u.String()})
	require.NoError(t, err)
	assert.Equal(t, u.String(), rec.GetU())
	assert.Equal(t, parent.String(), rec.GetParent())
	assert.Empty(t, rec.GetChainLeft())
	assert.Equal(t, []string{"pinned"}, rec.GetFlags())
	assert.InDelta(t, 1700000100, rec.GetCtime(), 0.001)

	var data map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.GetDataJson()), &data))
	assert.Equal(t, "hello", data["title"])
}

func TestLegacyPushAndFetchData(t *testing.T) {
	s, mock, _ := newTestServer(t)
	payload := []byte{0x00, 0x01, 0xfe, 0xff}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orb_data").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	reply, err := s.PushData(context.Background(), &pb.PushDataRequest{Data: payload})
	require.NoError(t, err)
	require.True(t, reply.GetCreated())
	u := reply.GetU()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM orb_data").
		WillReturnRows(dataRows().
			AddRow(u, "@raw", nil, nil, nil, time.Now(), "[]", "",
				`{"data":"AAH+/w=="}`))
	mock.ExpectCommit()

	fetched, err := s.FetchData(context.Background(), &pb.FetchDataRequest{U: u})
	require.NoError(t, err)
	assert.Equal(t, payload, fetched.GetData())
}

func TestLegacyFetchDataEncodesStructuredRecords(t *testing.T) {
	s, mock, _ := newTestServer(t)
	u := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM orb_data").
		WillReturnRows(dataRows().
			AddRow(u.String(), "@json", nil, nil, nil, time.Now(), "[]", "",
				`{"title":"hello"}`))
	mock.ExpectCommit()

	fetched, err := s.FetchData(context.Background(), &pb.FetchDataRequest{U: u.String()})
	require.NoError(t, err)

	var data map[string]any
	require.NoError(t, json.Unmarshal(fetched.GetData(), &data))
	assert.Equal(t, "hello", data["title"])
}

func TestPushOrbMeta(t *testing.T) {
	s, mock, _ := newTestServer(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orb_meta").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(31))
	mock.ExpectCommit()

	reply, err := s.PushOrbMeta(context.Background(), &pb.OrbMetaRecord{
		U:      uuid.NewString(),
		Handle: 900,
	})
	require.NoError(t, err)
	assert.True(t, reply.GetCreated())
	assert.Equal(t, int64(31), reply.GetId())
}

func TestLegacyPushMeta(t *testing.T) {
	s, mock, _ := newTestServer(t)
	u := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO orb_meta").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	raw, err := json.Marshal(map[string]any{"u": u.String(), "handle": 900})
	require.NoError(t, err)

	reply, err := s.PushMeta(context.Background(), &pb.PushMetaRequest{Data: raw})
	require.NoError(t, err)
	assert.Equal(t, int64(7), reply.GetId())

	_, err = s.PushMeta(context.Background(), &pb.PushMetaRequest{Data: []byte("junk")})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestLegacyFetchMeta(t *testing.T) {
	s, mock, _ := newTestServer(t)
	u := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM orb_meta").
		WillReturnRows(sqlmock.NewRows([]string{"id", "u", "data_type", "ctime", "flags", "src"}).
			AddRow(7, u.String(), "@json", time.Now(), `[]`, 900))
	mock.ExpectCommit()

	reply, err := s.FetchMeta(context.Background(), &pb.FetchMetaRequest{Id: 7})
	require.NoError(t, err)

	var meta map[string]any
	require.NoError(t, json.Unmarshal(reply.GetData(), &meta))
	assert.EqualValues(t, 7, meta["id"])
	assert.EqualValues(t, 900, meta["handle"])
}
