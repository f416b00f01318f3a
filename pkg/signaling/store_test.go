package signaling

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunaricorn/lunaricorn/pkg/database"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(database.NewWithDB(db, "sqlmock")), mock
}

func TestValidateToken(t *testing.T) {
	tests := []struct {
		value string
		ok    bool
	}{
		{"FileOp_new", true},
		{"orb-storage.v1", true},
		{"drop;table", false},
		{"x--comment", false},
		{"x/*y*/", false},
		{"o'brien", false},
		{`say "hi"`, false},
		{`back\slash`, false},
	}
	for _, tt := range tests {
		err := ValidateToken(tt.value)
		if tt.ok {
			assert.NoError(t, err, tt.value)
		} else {
			assert.Error(t, err, tt.value)
		}
	}
}

func TestCreateEventAssignsEID(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO signaling_events").
		WithArgs("FileOp_new", `{"id":7,"uuid":"abc"}`, `["abc"]`,
			sqlmock.AnyArg(), "orb", `{"orb"}`).
		WillReturnRows(sqlmock.NewRows([]string{"eid"}).AddRow(101))
	mock.ExpectCommit()

	event := &types.Event{
		Type:     types.EventFileOpNew,
		Payload:  map[string]any{"id": 7, "uuid": "abc"},
		Source:   "orb",
		Affected: []string{"abc"},
		Tags:     []string{"orb"},
	}
	eid, err := store.CreateEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, int64(101), eid)
	assert.Equal(t, int64(101), event.EID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEventDefaultsOwnerless(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO signaling_events").
		WithArgs("ping", "{}", nil, sqlmock.AnyArg(), "ownerless", "{}").
		WillReturnRows(sqlmock.NewRows([]string{"eid"}).AddRow(1))
	mock.ExpectCommit()

	event := &types.Event{Type: "ping", Payload: map[string]any{}}
	_, err := store.CreateEvent(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, "ownerless", event.Source)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEventWithoutAffectedBindsNull(t *testing.T) {
	store, mock := newMockStore(t)

	// A jsonb null scalar would pass an IS NOT NULL filter and then break
	// jsonb_array_elements_text; the column has to be SQL NULL instead.
	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO signaling_events").
		WithArgs("signaling_started", `{"name":"sig"}`, nil,
			sqlmock.AnyArg(), "sig", `{"selftest"}`).
		WillReturnRows(sqlmock.NewRows([]string{"eid"}).AddRow(3))
	mock.ExpectCommit()

	event := &types.Event{
		Type:    "signaling_started",
		Payload: map[string]any{"name": "sig"},
		Source:  "sig",
		Tags:    []string{"selftest"},
	}
	_, err := store.CreateEvent(context.Background(), event)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEventRejectsUnsafeValues(t *testing.T) {
	store, _ := newMockStore(t)

	_, err := store.CreateEvent(context.Background(), &types.Event{Type: "x'y"})
	assert.Error(t, err)

	_, err = store.CreateEvent(context.Background(), &types.Event{
		Type: "ok", Tags: []string{"a;b"},
	})
	assert.Error(t, err)

	_, err = store.CreateEvent(context.Background(), &types.Event{})
	assert.Error(t, err)
}

func browseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"eid", "type", "payload", "affected", "ts", "owner", "tags"})
}

func TestBrowseDecodesEvents(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM signaling_events").
		WillReturnRows(browseRows().
			AddRow(2, "FileOp_update", `{"id":7}`, `["u1"]`, 1700000200.25, "orb", `["orb"]`).
			AddRow(1, "FileOp_new", `{"id":6}`, nil, 1700000100.0, "orb", nil))
	mock.ExpectCommit()

	events, err := store.Browse(context.Background(), BrowseQuery{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, int64(2), events[0].EID)
	assert.Equal(t, types.EventFileOpUpdate, events[0].Type)
	assert.EqualValues(t, 7, events[0].Payload["id"])
	assert.Equal(t, []string{"u1"}, events[0].Affected)
	assert.Equal(t, []string{"orb"}, events[0].Tags)
	assert.InDelta(t, 1700000200.25, events[0].Timestamp, 0.001)

	assert.Empty(t, events[1].Affected)
	assert.Empty(t, events[1].Tags)
}

func TestBrowseAppliesFilters(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM signaling_events WHERE ctime >= \$1 AND type = ANY\(\$2::text\[\]\) AND owner = ANY\(\$3::text\[\]\) AND affected @> \$4::jsonb AND tags && \$5::text\[\] ORDER BY ctime DESC LIMIT \$6`).
		WithArgs(sqlmock.AnyArg(), `{"FileOp_new"}`, `{"orb"}`, `["u1"]`, `{"orb"}`, 10).
		WillReturnRows(browseRows())
	mock.ExpectCommit()

	_, err := store.Browse(context.Background(), BrowseQuery{
		Since:    1700000000,
		Types:    []string{"FileOp_new"},
		Owners:   []string{"orb"},
		Affected: []string{"u1"},
		Tags:     []string{"orb"},
		Limit:    10,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBrowseRejectsUnsafeFilters(t *testing.T) {
	store, _ := newMockStore(t)

	_, err := store.Browse(context.Background(), BrowseQuery{Types: []string{"a';--"}})
	assert.Error(t, err)
}

func TestDistinctLists(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT DISTINCT type").
		WillReturnRows(sqlmock.NewRows([]string{"type"}).
			AddRow("FileOp_new").AddRow("FileOp_update"))
	mock.ExpectCommit()

	values, err := store.DistinctTypes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"FileOp_new", "FileOp_update"}, values)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT DISTINCT unnest").
		WillReturnRows(sqlmock.NewRows([]string{"tag"}).AddRow("orb"))
	mock.ExpectCommit()

	tags, err := store.DistinctTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"orb"}, tags)
}
