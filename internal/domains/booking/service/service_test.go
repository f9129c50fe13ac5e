package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"spacebook/config"
	otelMocks "spacebook/infras/otel/mocks"
	"spacebook/internal/domains/booking/model"
	"spacebook/internal/domains/booking/model/dto"
	"spacebook/internal/domains/booking/service"
	locationModel "spacebook/internal/domains/location/model"
	"spacebook/internal/realtime"
	cacheMocks "spacebook/shared/cache/mocks"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/failure"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// memoryStore backs both repositories. It understands the id filters the service issues.
type memoryStore struct {
	mu        sync.Mutex
	bookings  map[string]model.Booking
	locations map[string]locationModel.Location
	failWrite error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		bookings:  map[string]model.Booking{},
		locations: map[string]locationModel.Location{},
	}
}

func idOf(filter gDto.FilterGroup) string {
	for _, f := range filter.Filters {
		if flt, ok := f.(gDto.Filter); ok && flt.Field == "id" && flt.Operator == gDto.FilterOperatorEq {
			id, _ := flt.Value.(string)

			return id
		}
	}

	return ""
}

func (m *memoryStore) Insert(_ context.Context, b model.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrite != nil {
		return m.failWrite
	}

	m.bookings[b.ID] = b

	return nil
}

func (m *memoryStore) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.bookings[idOf(filter)], nil
}

func (m *memoryStore) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	all := make([]model.Booking, 0, len(m.bookings))
	for _, b := range m.bookings {
		all = append(all, b)
	}

	return all, nil
}

func (m *memoryStore) Update(_ context.Context, fields map[string]any, filter gDto.FilterGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrite != nil {
		return m.failWrite
	}

	b := m.bookings[idOf(filter)]

	for column, value := range fields {
		switch column {
		case model.FieldDate:
			b.Date, _ = time.Parse(constant.DayFormat, *value.(*string))
		case model.FieldLocationID:
			b.LocationID = *value.(*string)
		case model.FieldTeamID:
			b.TeamID = *value.(*string)
		case model.FieldTeamName:
			b.TeamName = *value.(*string)
		case model.FieldPeopleCount:
			b.PeopleCount = *value.(*int)
		case model.FieldNotes:
			b.Notes = *value.(*string)
		}
	}

	m.bookings[b.ID] = b

	return nil
}

func (m *memoryStore) Delete(_ context.Context, filter gDto.FilterGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWrite != nil {
		return m.failWrite
	}

	delete(m.bookings, idOf(filter))

	return nil
}

func (m *memoryStore) DeleteTx(ctx context.Context, _ *sqlx.Tx, filter gDto.FilterGroup) error {
	return m.Delete(ctx, filter)
}

func (m *memoryStore) SumPeople(_ context.Context, locationID, day, excludeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0

	for _, b := range m.bookings {
		if b.LocationID == locationID && b.Day() == day && b.ID != excludeID {
			total += b.PeopleCount
		}
	}

	return total, nil
}

func (m *memoryStore) FindTeamBooking(_ context.Context, teamID, day, locationID, excludeID string) (model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, b := range m.bookings {
		if b.TeamID == teamID && b.Day() == day && b.LocationID == locationID && b.ID != excludeID {
			return b, nil
		}
	}

	return model.Booking{}, nil
}

func (m *memoryStore) total(locationID, day string) int {
	total, _ := m.SumPeople(context.Background(), locationID, day, "")

	return total
}

type locationStore struct {
	*memoryStore
}

func (l locationStore) Insert(_ context.Context, loc locationModel.Location) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.locations[loc.ID] = loc

	return nil
}

func (l locationStore) Get(_ context.Context, filter gDto.FilterGroup, _ ...string) (locationModel.Location, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.locations[idOf(filter)], nil
}

func (l locationStore) GetAll(_ context.Context, _ gDto.QueryParams, _ gDto.FilterGroup, _ ...string) ([]locationModel.Location, error) {
	return nil, nil
}

func (l locationStore) Exist(_ context.Context, filter gDto.FilterGroup) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.locations[idOf(filter)]

	return ok, nil
}

func (l locationStore) Count(_ context.Context, _ gDto.FilterGroup) (int, error) {
	return len(l.locations), nil
}

func (l locationStore) Update(_ context.Context, _ map[string]any, _ gDto.FilterGroup) error {
	return nil
}

func (l locationStore) DeleteTx(_ context.Context, _ *sqlx.Tx, _ gDto.FilterGroup) error {
	return nil
}

func (l locationStore) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

type fixture struct {
	svc    service.Booking
	store  *memoryStore
	hub    *realtime.Hub
	traces *otelMocks.Recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	mockCache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).AnyTimes()
	mockCache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	store := newMemoryStore()
	store.locations["jhb"] = locationModel.Location{ID: "jhb", Name: "Johannesburg", Capacity: 21}
	store.locations["cpt"] = locationModel.Location{ID: "cpt", Name: "Cape Town", Capacity: 5}

	otel, traces := otelMocks.NewRecordingOtel()
	hub := realtime.NewHub("test", nil, otel)
	locations := locationStore{store}
	capacity := service.NewCapacityValidator(locations, store, otel)

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	return fixture{
		svc:    service.New(store, locations, capacity, hub, cfg, mockCache, otel),
		store:  store,
		hub:    hub,
		traces: traces,
	}
}

func (f fixture) watch(room realtime.RoomKey) *realtime.Client {
	client := realtime.NewClient("watch-"+room.String(), 64)
	f.hub.Subscribe(room, client)

	return client
}

func (f fixture) seed(t *testing.T, req dto.CreateBookingRequest) dto.BookingResponse {
	t.Helper()

	res, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	return res
}

func changes(t *testing.T, client *realtime.Client) []realtime.DataChanged {
	t.Helper()

	var out []realtime.DataChanged

	for {
		select {
		case raw := <-client.Send():
			var envelope realtime.Envelope
			require.NoError(t, json.Unmarshal(raw, &envelope))
			require.Equal(t, realtime.EventDataChanged, envelope.Event)

			var change struct {
				RoomKey realtime.RoomKey     `json:"roomKey"`
				Type    realtime.ChangeType  `json:"type"`
				Booking dto.BookingResponse  `json:"booking"`
				Before  *dto.BookingResponse `json:"before"`
			}
			require.NoError(t, json.Unmarshal(envelope.Data, &change))

			dc := realtime.DataChanged{RoomKey: change.RoomKey, Type: change.Type, Booking: change.Booking}
			if change.Before != nil {
				dc.Before = *change.Before
			}

			out = append(out, dc)
		default:
			return out
		}
	}
}

func request(team string, people int) dto.CreateBookingRequest {
	return dto.CreateBookingRequest{
		Date:        "2024-03-15",
		LocationID:  "jhb",
		TeamID:      team,
		TeamName:    "Team " + team,
		PeopleCount: people,
	}
}

func TestCreate_EmitsCreatedToRoom(t *testing.T) {
	f := newFixture(t)
	march := f.watch("jhb:2024-03")
	april := f.watch("jhb:2024-04")

	ctx := context.WithValue(context.Background(), constant.ContextKeyUserID, "user-1")
	res, err := f.svc.Create(ctx, request("t1", 4))

	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "2024-03-15", res.Date)
	assert.Equal(t, "jhb", res.LocationID)
	assert.Equal(t, 4, res.PeopleCount)

	got := changes(t, march)
	require.Len(t, got, 1)
	assert.Equal(t, realtime.ChangeCreated, got[0].Type)
	assert.Equal(t, res, got[0].Booking)
	assert.Nil(t, got[0].Before)

	assert.Empty(t, changes(t, april))
}

func TestCreate_IDsAreTimeOrdered(t *testing.T) {
	f := newFixture(t)

	first := f.seed(t, request("t1", 1))
	second := f.seed(t, request("t2", 1))

	assert.Less(t, first.ID, second.ID)
}

func TestCreate_CapacityExceededReportsAvailable(t *testing.T) {
	f := newFixture(t)
	f.seed(t, request("t1", 10))

	watcher := f.watch("jhb:2024-03")

	_, err := f.svc.Create(context.Background(), request("t2", 12))

	require.Error(t, err)
	assert.True(t, failure.HasReason(err, failure.ReasonCapacityExceeded))
	assert.Equal(t, 11, failure.GetMeta(err)[failure.MetaAvailable])
	assert.Empty(t, changes(t, watcher))

	_, err = f.svc.Create(context.Background(), request("t2", 11))
	require.NoError(t, err)
	assert.Equal(t, 21, f.store.total("jhb", "2024-03-15"))
}

func TestCreate_RejectionIsTraced(t *testing.T) {
	f := newFixture(t)
	f.seed(t, request("t1", 20))

	_, err := f.svc.Create(context.Background(), request("t2", 2))
	require.Error(t, err)

	traced := f.traces.Errors(constant.OtelServiceScopeName + ".booking.Create")
	require.Len(t, traced, 1)
	assert.True(t, failure.HasReason(traced[0], failure.ReasonCapacityExceeded))
}

func TestCreate_DuplicateTeamBooking(t *testing.T) {
	f := newFixture(t)
	f.seed(t, request("t1", 2))

	_, err := f.svc.Create(context.Background(), request("t1", 1))

	require.Error(t, err)
	assert.True(t, failure.HasReason(err, failure.ReasonDuplicateTeamBooking))
	assert.Equal(t, "Team t1", failure.GetMeta(err)[failure.MetaTeamName])

	other := request("t1", 1)
	other.Date = "2024-03-16"
	_, err = f.svc.Create(context.Background(), other)
	assert.NoError(t, err, "same team on another day is fine")
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		req  dto.CreateBookingRequest
	}{
		{name: "missing date", req: dto.CreateBookingRequest{LocationID: "jhb", TeamID: "t1", PeopleCount: 1}},
		{name: "missing team", req: dto.CreateBookingRequest{Date: "2024-03-15", LocationID: "jhb", PeopleCount: 1}},
		{name: "missing location", req: dto.CreateBookingRequest{Date: "2024-03-15", TeamID: "t1", PeopleCount: 1}},
		{name: "zero people", req: dto.CreateBookingRequest{Date: "2024-03-15", LocationID: "jhb", TeamID: "t1"}},
		{name: "negative people", req: dto.CreateBookingRequest{Date: "2024-03-15", LocationID: "jhb", TeamID: "t1", PeopleCount: -2}},
		{name: "malformed date", req: dto.CreateBookingRequest{Date: "2024-02-30", LocationID: "jhb", TeamID: "t1", PeopleCount: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(context.Background(), tt.req)

			require.Error(t, err)
			assert.True(t, failure.HasReason(err, failure.ReasonValidation))
		})
	}
}

func TestCreate_InvalidLocation(t *testing.T) {
	f := newFixture(t)

	req := request("t1", 1)
	req.LocationID = "nowhere"

	_, err := f.svc.Create(context.Background(), req)

	assert.True(t, failure.HasReason(err, failure.ReasonInvalidLocation))
}

func TestCreate_StorageFailureEmitsNothing(t *testing.T) {
	f := newFixture(t)
	watcher := f.watch("jhb:2024-03")

	f.store.failWrite = errors.New("disk full")

	_, err := f.svc.Create(context.Background(), request("t1", 1))

	assert.True(t, failure.HasReason(err, failure.ReasonStorageFailure))
	assert.Empty(t, changes(t, watcher))
}

func TestCreate_UniqueViolationIsDuplicate(t *testing.T) {
	f := newFixture(t)
	watcher := f.watch("jhb:2024-03")

	f.store.failWrite = &pq.Error{Code: constant.PqErrorCodeUniqueViolation}

	_, err := f.svc.Create(context.Background(), request("t1", 1))

	assert.True(t, failure.HasReason(err, failure.ReasonDuplicateTeamBooking))
	assert.Equal(t, "Team t1", failure.GetMeta(err)[failure.MetaTeamName])
	assert.Empty(t, changes(t, watcher))
}

func TestCreate_ForeignKeyViolationIsInvalidLocation(t *testing.T) {
	f := newFixture(t)

	f.store.failWrite = &pq.Error{Code: constant.PqErrorCodeFkViolation}

	_, err := f.svc.Create(context.Background(), request("t1", 1))

	assert.True(t, failure.HasReason(err, failure.ReasonInvalidLocation))
}

func TestCreate_ConcurrentNeverOverbooks(t *testing.T) {
	f := newFixture(t)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		admitted int
		rejected int
	)

	for i := range 40 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := f.svc.Create(context.Background(), request(fmt.Sprintf("team-%d", i), 1))

			mu.Lock()
			defer mu.Unlock()

			if err == nil {
				admitted++

				return
			}

			if failure.HasReason(err, failure.ReasonCapacityExceeded) {
				rejected++
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 21, admitted)
	assert.Equal(t, 19, rejected)
	assert.Equal(t, 21, f.store.total("jhb", "2024-03-15"))
}

func TestCreate_ConcurrentDuplicateOnlyOneWins(t *testing.T) {
	f := newFixture(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			if _, err := f.svc.Create(context.Background(), request("t1", 1)); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestUpdate_MoveAcrossMonthsNotifiesBothRooms(t *testing.T) {
	f := newFixture(t)
	booking := f.seed(t, request("t1", 3))

	march := f.watch("jhb:2024-03")
	april := f.watch("jhb:2024-04")

	newDate := "2024-04-02"
	res, err := f.svc.Update(context.Background(), booking.ID, dto.UpdateBookingRequest{Date: &newDate})
	require.NoError(t, err)
	assert.Equal(t, newDate, res.Date)

	inApril := changes(t, april)
	require.Len(t, inApril, 1)
	assert.Equal(t, realtime.ChangeUpdated, inApril[0].Type)
	assert.Equal(t, realtime.RoomKey("jhb:2024-04"), inApril[0].RoomKey)
	assert.Equal(t, res, inApril[0].Booking)
	assert.Equal(t, booking, inApril[0].Before)

	inMarch := changes(t, march)
	require.Len(t, inMarch, 1)
	assert.Equal(t, realtime.ChangeMovedOut, inMarch[0].Type)
	assert.Equal(t, realtime.RoomKey("jhb:2024-03"), inMarch[0].RoomKey)
	assert.Equal(t, res, inMarch[0].Booking)
	assert.Equal(t, booking, inMarch[0].Before)

	assert.Equal(t, 0, f.store.total("jhb", "2024-03-15"))
	assert.Equal(t, 3, f.store.total("jhb", "2024-04-02"))
}

func TestUpdate_SameRoomSingleEvent(t *testing.T) {
	f := newFixture(t)
	booking := f.seed(t, request("t1", 3))

	march := f.watch("jhb:2024-03")

	newDate := "2024-03-20"
	people := 5
	notes := "window seats"

	res, err := f.svc.Update(context.Background(), booking.ID, dto.UpdateBookingRequest{Date: &newDate, PeopleCount: &people, Notes: &notes})
	require.NoError(t, err)

	got := changes(t, march)
	require.Len(t, got, 1)
	assert.Equal(t, realtime.ChangeUpdated, got[0].Type)
	assert.Equal(t, res, got[0].Booking)
	assert.Equal(t, booking, got[0].Before)
	assert.Equal(t, "window seats", res.Notes)
	assert.Equal(t, 5, res.PeopleCount)
}

func TestUpdate_CapacityExcludesOwnBooking(t *testing.T) {
	f := newFixture(t)
	booking := f.seed(t, request("t1", 10))
	f.seed(t, request("t2", 10))

	people := 11
	_, err := f.svc.Update(context.Background(), booking.ID, dto.UpdateBookingRequest{PeopleCount: &people})
	require.NoError(t, err, "10 + 11 fits in 21")

	people = 12
	_, err = f.svc.Update(context.Background(), booking.ID, dto.UpdateBookingRequest{PeopleCount: &people})
	require.Error(t, err)
	assert.Equal(t, 11, failure.GetMeta(err)[failure.MetaAvailable])
}

func TestUpdate_MoveIntoFullLocation(t *testing.T) {
	f := newFixture(t)
	booking := f.seed(t, request("t1", 6))

	watcher := f.watch("jhb:2024-03")

	cpt := "cpt"
	_, err := f.svc.Update(context.Background(), booking.ID, dto.UpdateBookingRequest{LocationID: &cpt})

	require.Error(t, err)
	assert.True(t, failure.HasReason(err, failure.ReasonCapacityExceeded))
	assert.Equal(t, 5, failure.GetMeta(err)[failure.MetaAvailable])
	assert.Empty(t, changes(t, watcher))
}

func TestUpdate_DuplicateOnTripleChange(t *testing.T) {
	f := newFixture(t)
	f.seed(t, request("t1", 1))

	other := request("t2", 1)
	other.Date = "2024-03-16"
	moving := f.seed(t, other)

	date := "2024-03-15"
	team := "t1"

	_, err := f.svc.Update(context.Background(), moving.ID, dto.UpdateBookingRequest{Date: &date, TeamID: &team})

	assert.True(t, failure.HasReason(err, failure.ReasonDuplicateTeamBooking))
}

func TestUpdate_NotFoundAndInvalidLocation(t *testing.T) {
	f := newFixture(t)

	people := 1
	_, err := f.svc.Update(context.Background(), "missing", dto.UpdateBookingRequest{PeopleCount: &people})
	assert.True(t, failure.HasReason(err, failure.ReasonNotFound))

	booking := f.seed(t, request("t1", 1))
	nowhere := "nowhere"
	_, err = f.svc.Update(context.Background(), booking.ID, dto.UpdateBookingRequest{LocationID: &nowhere})
	assert.True(t, failure.HasReason(err, failure.ReasonInvalidLocation))
}

func TestDelete_EmitsDeletedSnapshot(t *testing.T) {
	f := newFixture(t)
	booking := f.seed(t, request("t1", 2))

	watcher := f.watch("jhb:2024-03")

	require.NoError(t, f.svc.Delete(context.Background(), booking.ID))

	got := changes(t, watcher)
	require.Len(t, got, 1)
	assert.Equal(t, realtime.ChangeDeleted, got[0].Type)
	assert.Equal(t, booking, got[0].Booking)
}

func TestDelete_MissingIsSilentSuccess(t *testing.T) {
	f := newFixture(t)
	booking := f.seed(t, request("t1", 2))
	require.NoError(t, f.svc.Delete(context.Background(), booking.ID))

	watcher := f.watch("jhb:2024-03")

	require.NoError(t, f.svc.Delete(context.Background(), booking.ID))
	require.NoError(t, f.svc.Delete(context.Background(), "never-existed"))

	assert.Empty(t, changes(t, watcher))
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	booking := f.seed(t, request("t1", 2))

	got, err := f.svc.Get(context.Background(), booking.ID)
	require.NoError(t, err)
	assert.Equal(t, booking, got)

	_, err = f.svc.Get(context.Background(), "missing")
	assert.True(t, failure.HasReason(err, failure.ReasonNotFound))
}

func TestList(t *testing.T) {
	f := newFixture(t)
	f.seed(t, request("t1", 2))

	res, err := f.svc.List(context.Background(), dto.ListBookingsRequest{LocationID: "jhb", Month: "2024-03"})
	require.NoError(t, err)
	assert.Equal(t, "jhb", res.LocationID)
	assert.Equal(t, "2024-03", res.Month)
	assert.Len(t, res.Bookings, 1)

	_, err = f.svc.List(context.Background(), dto.ListBookingsRequest{LocationID: "jhb", Month: "March"})
	assert.True(t, failure.HasReason(err, failure.ReasonValidation))
}
