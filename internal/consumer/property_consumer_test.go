package consumer

import (
	"context"
	"testing"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/repository"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/pkg/database"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// --- Fakes ---

type fakeAck struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *fakeAck) Ack(tag uint64, multiple bool) error {
	a.acked++
	return nil
}
func (a *fakeAck) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}
func (a *fakeAck) Reject(tag uint64, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

type fakeInvalidator struct {
	ids []uint
}

func (f *fakeInvalidator) Invalidate(ctx context.Context, propertyID uint) error {
	f.ids = append(f.ids, propertyID)
	return nil
}

func newTestRepo(t *testing.T) (repository.PropertyRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return repository.NewPropertyRepository(db), db
}

func deliver(pc *PropertyConsumer, body string) *fakeAck {
	ack := &fakeAck{}
	pc.handleMessage(context.Background(), amqp.Delivery{
		Acknowledger: ack,
		RoutingKey:   "property.updated",
		Body:         []byte(body),
	})
	return ack
}

// --- Tests ---

func TestHandleMessage_UpsertsPropertyAndSlots(t *testing.T) {
	repo, db := newTestRepo(t)
	cache := &fakeInvalidator{}
	pc := NewPropertyConsumer(repo, cache, "LKR")

	ack := deliver(pc, `{"id":7,"name":"Harbour","hourly_rate":250,"active":true,
		"slots":[{"id":70,"number":"H1","type":"normal","active":true},{"id":71,"number":"H2","type":"CAR_WASH","active":true}]}`)

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, []uint{7}, cache.ids)

	p, err := repo.FindByID(context.Background(), db, 7)
	require.NoError(t, err)
	assert.Equal(t, "Harbour", p.Name)
	assert.Equal(t, "LKR", p.Currency)
	slots, err := repo.FindSlots(context.Background(), db, 7)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, models.SlotNormal, slots[0].Type)
}

func TestHandleMessage_SlotTypeNeverOverwritten(t *testing.T) {
	repo, db := newTestRepo(t)
	pc := NewPropertyConsumer(repo, nil, "LKR")

	deliver(pc, `{"id":7,"name":"Harbour","hourly_rate":250,"active":true,
		"slots":[{"id":70,"number":"H1","type":"NORMAL","active":true}]}`)
	ack := deliver(pc, `{"id":7,"name":"Harbour North","hourly_rate":275,"active":true,
		"slots":[{"id":70,"number":"H1-A","type":"EV","active":false}]}`)

	assert.Equal(t, 1, ack.acked)
	p, err := repo.FindByID(context.Background(), db, 7)
	require.NoError(t, err)
	assert.Equal(t, "Harbour North", p.Name)
	assert.Equal(t, int64(275), p.HourlyRate)

	slot, err := repo.FindSlotByID(context.Background(), db, 70)
	require.NoError(t, err)
	assert.Equal(t, "H1-A", slot.Number)
	assert.False(t, slot.Active)
	assert.Equal(t, models.SlotNormal, slot.Type)
}

func TestHandleMessage_RejectsBadMessages(t *testing.T) {
	repo, _ := newTestRepo(t)
	pc := NewPropertyConsumer(repo, nil, "LKR")

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{{{`},
		{"missing id", `{"name":"Nowhere","active":true}`},
		{"missing active", `{"id":3,"name":"X"}`},
		{"slot missing active", `{"id":3,"name":"X","active":true,"slots":[{"id":30,"number":"X1","type":"NORMAL"}]}`},
		{"unknown slot type", `{"id":3,"name":"X","active":true,"slots":[{"id":30,"number":"X1","type":"HELIPAD","active":true}]}`},
		{"slot without id", `{"id":3,"name":"X","active":true,"slots":[{"number":"X1","type":"NORMAL","active":true}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ack := deliver(pc, tt.body)
			assert.Equal(t, 0, ack.acked)
			assert.Equal(t, 1, ack.nacked)
			assert.False(t, ack.requeue)
		})
	}
}

func TestHandleMessage_MissingActiveLeavesPropertyUntouched(t *testing.T) {
	repo, db := newTestRepo(t)
	pc := NewPropertyConsumer(repo, nil, "LKR")

	deliver(pc, `{"id":7,"name":"Harbour","hourly_rate":250,"active":true}`)
	ack := deliver(pc, `{"id":7,"name":"Harbour renamed","hourly_rate":250}`)

	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
	p, err := repo.FindByID(context.Background(), db, 7)
	require.NoError(t, err)
	assert.True(t, p.Active)
	assert.Equal(t, "Harbour", p.Name)
}

func TestHandleMessage_RefusesSlotOfAnotherProperty(t *testing.T) {
	repo, db := newTestRepo(t)
	cache := &fakeInvalidator{}
	pc := NewPropertyConsumer(repo, cache, "LKR")

	deliver(pc, `{"id":7,"name":"Harbour","hourly_rate":250,"active":true,
		"slots":[{"id":70,"number":"H1","type":"NORMAL","active":true}]}`)
	ack := deliver(pc, `{"id":8,"name":"Fort","hourly_rate":300,"active":true,
		"slots":[{"id":80,"number":"F1","type":"NORMAL","active":true},{"id":70,"number":"F2","type":"NORMAL","active":true}]}`)

	assert.Equal(t, 0, ack.acked)
	assert.Equal(t, 1, ack.nacked)
	assert.False(t, ack.requeue)
	assert.Equal(t, []uint{7}, cache.ids)

	slot, err := repo.FindSlotByID(context.Background(), db, 70)
	require.NoError(t, err)
	assert.Equal(t, uint(7), slot.PropertyID)
	assert.Equal(t, "H1", slot.Number)

	// The whole message rolled back, property included.
	_, err = repo.FindByID(context.Background(), db, 8)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
