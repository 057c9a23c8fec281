package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/gateway"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/models"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/principal"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/internal/repository"
	"github.com/S-W-Development-Group-Project-UOG-4-7/Easy-Park-sub002/pkg/database"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// --- Fakes ---

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *recordingPublisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type stubGateway struct {
	chargeFn func(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error)
	calls    int
}

func (g *stubGateway) Charge(ctx context.Context, req gateway.ChargeRequest) (*gateway.ChargeResult, error) {
	g.calls++
	if g.chargeFn != nil {
		return g.chargeFn(ctx, req)
	}
	return &gateway.ChargeResult{TransactionID: "txn-" + req.IdempotencyKey}, nil
}

type countingCache struct {
	mu          sync.Mutex
	invalidated map[uint]int
	stored      map[uint]cachedSnapshot
}

type cachedSnapshot struct {
	version int64
	value   []SlotAvailability
}

func newCountingCache() *countingCache {
	return &countingCache{invalidated: map[uint]int{}, stored: map[uint]cachedSnapshot{}}
}

func (c *countingCache) Get(ctx context.Context, propertyID uint, start, end time.Time, dst any) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	version := int64(c.invalidated[propertyID])
	snap, ok := c.stored[propertyID]
	if !ok || snap.version != version {
		return version, false, nil
	}
	*(dst.(*[]SlotAvailability)) = snap.value
	return version, true, nil
}

func (c *countingCache) Set(ctx context.Context, propertyID uint, version int64, start, end time.Time, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stored[propertyID] = cachedSnapshot{version: version, value: v.([]SlotAvailability)}
	return nil
}

func (c *countingCache) Invalidate(ctx context.Context, propertyID uint) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated[propertyID]++
	return nil
}

func (c *countingCache) Invalidations(propertyID uint) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated[propertyID]
}

// --- Fixture ---

var (
	customer  = principal.New("cust-1", "CUSTOMER")
	stranger  = principal.New("cust-2", "USER")
	counter   = principal.New("counter-1", "CASHIER")
	washer    = principal.New("washer-1", "car-washer")
	admin     = principal.New("admin-1", "ADMIN")
	landOwner = principal.New("owner-1", "LANDOWNER")
)

type fixture struct {
	db           *gorm.DB
	property     models.Property
	slots        map[string]models.Slot
	bookings     BookingService
	payments     PaymentService
	washJobs     WashJobService
	availability AvailabilityService
	publisher    *recordingPublisher
	gateway      *stubGateway
	cache        *countingCache
	auditRepo    repository.AuditRepository
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// One connection: the in-memory database lives on it, and concurrent
	// transactions queue for it the way row locks make them queue on postgres.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func newFixture(t *testing.T, opts PaymentOptions) *fixture {
	t.Helper()
	db := newTestDB(t)

	property := models.Property{
		Name:       "City Centre",
		HourlyRate: 300,
		Currency:   "LKR",
		Active:     true,
		Slots: []models.Slot{
			{Number: "A1", Type: models.SlotNormal, Active: true},
			{Number: "A2", Type: models.SlotNormal, Active: true},
			{Number: "E1", Type: models.SlotEV, Active: true},
			{Number: "W1", Type: models.SlotCarWash, Active: true},
			{Number: "W2", Type: models.SlotCarWash, Active: true},
			{Number: "W3", Type: models.SlotCarWash, Active: true},
		},
	}
	require.NoError(t, db.Create(&property).Error)

	slots := make(map[string]models.Slot, len(property.Slots))
	for _, s := range property.Slots {
		slots[s.Number] = s
	}

	bookingRepo := repository.NewBookingRepository(db)
	propertyRepo := repository.NewPropertyRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	washJobRepo := repository.NewWashJobRepository(db)
	auditRepo := repository.NewAuditRepository()

	pub := &recordingPublisher{}
	gw := &stubGateway{}
	cache := newCountingCache()

	return &fixture{
		db:           db,
		property:     property,
		slots:        slots,
		bookings:     NewBookingService(bookingRepo, propertyRepo, paymentRepo, auditRepo, pub, cache),
		payments:     NewPaymentService(bookingRepo, paymentRepo, auditRepo, gw, pub, cache, opts),
		washJobs:     NewWashJobService(washJobRepo, auditRepo, pub),
		availability: NewAvailabilityService(propertyRepo, bookingRepo, cache),
		publisher:    pub,
		gateway:      gw,
		cache:        cache,
		auditRepo:    auditRepo,
	}
}

// at returns a fixed day at the given hour, UTC.
func at(hour int) time.Time {
	return time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC).Add(time.Duration(hour) * time.Hour)
}

func (f *fixture) book(t *testing.T, actor principal.Principal, from, to int, numbers ...string) *models.Booking {
	t.Helper()
	ids := make([]uint, 0, len(numbers))
	for _, n := range numbers {
		ids = append(ids, f.slots[n].ID)
	}
	b, err := f.bookings.CreateBooking(context.Background(), actor, CreateBookingInput{
		PropertyID: f.property.ID,
		SlotIDs:    ids,
		Start:      at(from),
		End:        at(to),
	})
	require.NoError(t, err)
	return b
}

func washJobIDs(b *models.Booking) []uint {
	var ids []uint
	for _, s := range b.Slots {
		if s.WashJob != nil {
			ids = append(ids, s.WashJob.ID)
		}
	}
	return ids
}
