package leader

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunaricorn/lunaricorn/pkg/database"
	"github.com/lunaricorn/lunaricorn/pkg/types"
)

func newMockInventory(t *testing.T) (*Inventory, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewInventory(database.NewWithDB(db, "sqlmock")), mock
}

func TestInventoryUpdateUpsertsByKey(t *testing.T) {
	inv, mock := newMockInventory(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO last_seen").
		WithArgs("orb", "storage", "orb-1", sqlmock.AnyArg(), "10.0.0.5", 50051).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := inv.Update(context.Background(), types.Beacon{
		NodeName:    "orb",
		NodeType:    "storage",
		InstanceKey: "orb-1",
		Host:        "10.0.0.5",
		Port:        50051,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryListFiltersByAliveWindow(t *testing.T) {
	inv, mock := newMockInventory(t)

	rows := sqlmock.NewRows([]string{"i", "name", "type", "key", "last_update", "host", "port"}).
		AddRow(2, "signaling", "bus", "sig-1", 1700000100, "10.0.0.2", 5555).
		AddRow(1, "orb", "storage", "orb-1", 1700000090, "", 0)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM last_seen").
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)
	mock.ExpectCommit()

	nodes, err := inv.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "signaling", nodes[0].Name)
	assert.Equal(t, "sig-1", nodes[0].Key)
	assert.Equal(t, 5555, nodes[0].Port)
	assert.Equal(t, "orb", nodes[1].Name)
	assert.Empty(t, nodes[1].Host)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryGetByKeyNotFound(t *testing.T) {
	inv, mock := newMockInventory(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM last_seen").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"i", "name", "type", "key", "last_update", "host", "port"}))
	mock.ExpectRollback()

	_, err := inv.GetByKey(context.Background(), "ghost")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestInventoryDeleteOlderThan(t *testing.T) {
	inv, mock := newMockInventory(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM last_seen").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	deleted, err := inv.DeleteOlderThan(context.Background(), 3600)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}

func TestInventoryStats(t *testing.T) {
	inv, mock := newMockInventory(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("SELECT type, COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"type", "count"}).
			AddRow("storage", 3).
			AddRow("bus", 2))
	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"min", "max"}).AddRow(1700000000, 1700000100))
	mock.ExpectCommit()

	stats, err := inv.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalRecords)
	assert.Equal(t, int64(3), stats.RecordsByType["storage"])
	assert.Equal(t, int64(1700000000), stats.OldestTimestamp)
	assert.Equal(t, int64(1700000100), stats.NewestTimestamp)
}

func TestStateNextReturnsPostIncrement(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	state := NewState(database.NewWithDB(db, "sqlmock"))

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO cluster_state").
		WithArgs("MESSAGE_ID").
		WillReturnRows(sqlmock.NewRows([]string{"i"}).AddRow(42))
	mock.ExpectCommit()

	value, err := state.Next(context.Background(), types.StateMessageID)
	require.NoError(t, err)
	assert.Equal(t, int64(42), value)
	assert.NoError(t, mock.ExpectationsWereMet())
}
