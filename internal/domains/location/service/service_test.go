package service_test

import (
	"context"
	"errors"
	"spacebook/config"
	otelMocks "spacebook/infras/otel/mocks"
	bookingMocks "spacebook/internal/domains/booking/mocks"
	bookingModel "spacebook/internal/domains/booking/model"
	"spacebook/internal/domains/location/mocks"
	"spacebook/internal/domains/location/model"
	"spacebook/internal/domains/location/model/dto"
	"spacebook/internal/domains/location/service"
	"spacebook/internal/realtime"
	realtimeMocks "spacebook/internal/realtime/mocks"
	cacheMocks "spacebook/shared/cache/mocks"
	gDto "spacebook/shared/dto"
	"spacebook/shared/failure"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	svc      service.Location
	repo     *mocks.MockLocation
	bookings *bookingMocks.MockBooking
	notifier *realtimeMocks.MockNotifier
	cache    *cacheMocks.MockRedisCache
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	ctrl := gomock.NewController(t)

	f := fixture{
		repo:     mocks.NewMockLocation(ctrl),
		bookings: bookingMocks.NewMockBooking(ctrl),
		notifier: realtimeMocks.NewMockNotifier(ctrl),
		cache:    cacheMocks.NewMockRedisCache(ctrl),
	}

	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	cfg := &config.Config{}
	cfg.Cache.TTL = 60

	f.svc = service.New(f.repo, f.bookings, f.notifier, cfg, f.cache, otelMocks.NewOtel())

	return f
}

func (f fixture) miss() {
	f.cache.EXPECT().Get(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("miss")).AnyTimes()
}

func TestCreate(t *testing.T) {
	tests := []struct {
		name       string
		req        dto.CreateLocationRequest
		exist      bool
		existErr   error
		insertErr  error
		wantReason string
		wantCode   int
	}{
		{
			name: "slug id kept",
			req:  dto.CreateLocationRequest{ID: "jhb", Name: "Johannesburg", Capacity: 21},
		},
		{
			name: "generated id",
			req:  dto.CreateLocationRequest{Name: "Cape Town", Capacity: 5},
		},
		{
			name:     "taken id",
			req:      dto.CreateLocationRequest{ID: "jhb", Name: "Johannesburg"},
			exist:    true,
			wantCode: 409,
		},
		{
			name:       "exist check fails",
			req:        dto.CreateLocationRequest{ID: "jhb", Name: "Johannesburg"},
			existErr:   errors.New("connection reset"),
			wantReason: failure.ReasonStorageFailure,
		},
		{
			name:       "insert fails",
			req:        dto.CreateLocationRequest{ID: "jhb", Name: "Johannesburg"},
			insertErr:  errors.New("connection reset"),
			wantReason: failure.ReasonStorageFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(tt.exist, tt.existErr)

			if !tt.exist && tt.existErr == nil {
				f.repo.EXPECT().Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, loc model.Location) error {
						assert.NotEmpty(t, loc.ID)
						assert.Equal(t, tt.req.Name, loc.Name)

						return tt.insertErr
					})
			}

			res, err := f.svc.Create(context.Background(), tt.req)

			switch {
			case tt.wantReason != "":
				assert.True(t, failure.HasReason(err, tt.wantReason))
			case tt.wantCode != 0:
				assert.Equal(t, tt.wantCode, failure.GetCode(err))
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.req.Capacity, res.Capacity)

				if tt.req.ID != "" {
					assert.Equal(t, tt.req.ID, res.ID)
				}
			}
		})
	}
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	f.miss()

	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Location{ID: "jhb", Name: "Johannesburg", Capacity: 21}, nil)
	f.repo.EXPECT().Get(gomock.Any(), gomock.Any()).Return(model.Location{}, nil)

	res, err := f.svc.Get(context.Background(), "jhb")
	require.NoError(t, err)
	assert.Equal(t, 21, res.Capacity)

	_, err = f.svc.Get(context.Background(), "nowhere")
	assert.True(t, failure.HasReason(err, failure.ReasonNotFound))
}

func TestGet_CacheHit(t *testing.T) {
	f := newFixture(t)

	f.cache.EXPECT().Get(gomock.Any(), "location:get:jhb", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, value any) error {
			value.(*dto.LocationResponse).ID = "jhb"

			return nil
		})

	res, err := f.svc.Get(context.Background(), "jhb")

	require.NoError(t, err)
	assert.Equal(t, "jhb", res.ID)
}

func TestGetAll(t *testing.T) {
	f := newFixture(t)
	f.miss()

	f.repo.EXPECT().Count(gomock.Any(), gomock.Any()).Return(3, nil)
	f.repo.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]model.Location{{ID: "jhb"}, {ID: "cpt"}}, nil)

	res, err := f.svc.GetAll(context.Background(), gDto.QueryParams{Page: 1, Limit: 2}, gDto.FilterGroup{})

	require.NoError(t, err)
	assert.Len(t, res.Locations, 2)
	assert.Equal(t, 3, res.TotalData)
	assert.Equal(t, 2, res.TotalPage)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)

	capacity := 3
	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	f.repo.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fields map[string]any, _ gDto.FilterGroup) error {
			assert.Equal(t, &capacity, fields[model.FieldCapacity])
			assert.NotContains(t, fields, model.FieldName)

			return nil
		})

	require.NoError(t, f.svc.Update(context.Background(), dto.UpdateLocationRequest{Capacity: &capacity}, "jhb"))
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

	name := "Durban"
	err := f.svc.Update(context.Background(), dto.UpdateLocationRequest{Name: &name}, "dbn")

	assert.True(t, failure.HasReason(err, failure.ReasonNotFound))
}

func TestDelete_CascadesAndNotifies(t *testing.T) {
	f := newFixture(t)

	march := bookingModel.Booking{ID: "b-1", LocationID: "jhb", TeamID: "t1", PeopleCount: 2, Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)}
	april := bookingModel.Booking{ID: "b-2", LocationID: "jhb", TeamID: "t2", PeopleCount: 4, Date: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)}

	gomock.InOrder(
		f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil),
		f.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).Return([]bookingModel.Booking{march, april}, nil),
		f.repo.EXPECT().WithTx(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fn func(tx *sqlx.Tx) error) error {
				return fn(nil)
			}),
		f.bookings.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
		f.repo.EXPECT().DeleteTx(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
	)

	var rooms []realtime.RoomKey

	f.notifier.EXPECT().Publish(gomock.Any(), gomock.Any(), realtime.EventDataChanged, gomock.Any()).
		DoAndReturn(func(_ context.Context, room realtime.RoomKey, _ string, data any) error {
			change, ok := data.(realtime.DataChanged)
			require.True(t, ok)
			assert.Equal(t, realtime.ChangeDeleted, change.Type)

			rooms = append(rooms, room)

			return nil
		}).Times(2)

	require.NoError(t, f.svc.Delete(context.Background(), "jhb"))
	assert.Equal(t, []realtime.RoomKey{"jhb:2024-03", "jhb:2024-04"}, rooms)
}

func TestDelete_TxFailureEmitsNothing(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(true, nil)
	f.bookings.EXPECT().GetAll(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]bookingModel.Booking{{ID: "b-1", LocationID: "jhb", Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)}}, nil)
	f.repo.EXPECT().WithTx(gomock.Any(), gomock.Any()).Return(errors.New("deadlock detected"))

	err := f.svc.Delete(context.Background(), "jhb")

	assert.True(t, failure.HasReason(err, failure.ReasonStorageFailure))
}

func TestDelete_NotFound(t *testing.T) {
	f := newFixture(t)

	f.repo.EXPECT().Exist(gomock.Any(), gomock.Any()).Return(false, nil)

	err := f.svc.Delete(context.Background(), "nowhere")

	assert.True(t, failure.HasReason(err, failure.ReasonNotFound))
}
