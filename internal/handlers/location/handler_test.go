package location_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"spacebook/infras/otel/mocks"
	"spacebook/internal/domains/location/model/dto"
	"spacebook/internal/handlers/location"
	gDto "spacebook/shared/dto"
	"spacebook/shared/failure"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	created  dto.CreateLocationRequest
	params   gDto.QueryParams
	filter   gDto.FilterGroup
	updated  dto.UpdateLocationRequest
	deleted  string
	failWith error
}

func (f *fakeService) Create(_ context.Context, req dto.CreateLocationRequest) (dto.LocationResponse, error) {
	f.created = req

	return dto.LocationResponse{ID: req.ID, Name: req.Name, Capacity: req.Capacity}, f.failWith
}

func (f *fakeService) GetAll(_ context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (dto.GetLocationsResponse, error) {
	f.params = params
	f.filter = filter

	return dto.GetLocationsResponse{}, f.failWith
}

func (f *fakeService) Count(context.Context, gDto.QueryParams, gDto.FilterGroup) (int, error) {
	return 0, f.failWith
}

func (f *fakeService) Get(_ context.Context, id string) (dto.LocationResponse, error) {
	return dto.LocationResponse{ID: id}, f.failWith
}

func (f *fakeService) Update(_ context.Context, req dto.UpdateLocationRequest, _ string) error {
	f.updated = req

	return f.failWith
}

func (f *fakeService) Delete(_ context.Context, id string) error {
	f.deleted = id

	return f.failWith
}

func serve(svc *fakeService, method, target, body string) *httptest.ResponseRecorder {
	handler := location.New(svc, mocks.NewOtel())
	router := chi.NewRouter()
	handler.Router(router)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

func TestCreateLocation(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, http.MethodPost, "/locations/", `{"id":"jhb","name":"Johannesburg","capacity":21,"floors":3}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 21, svc.created.Capacity)
	assert.Contains(t, rec.Body.String(), `"id":"jhb"`)
}

func TestCreateLocation_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing name", body: `{"capacity":3}`},
		{name: "negative capacity", body: `{"name":"x","capacity":-1}`},
		{name: "id with colon", body: `{"id":"jhb:1","name":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{}, http.MethodPost, "/locations/", tt.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetLocations_SortIsRestricted(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, http.MethodGet, "/locations/?sort_by=password&name=jo", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, svc.params.SortBy)
	assert.Len(t, svc.filter.Filters, 1)

	serve(svc, http.MethodGet, "/locations/?sort_by=capacity", "")
	assert.Equal(t, "capacity", svc.params.SortBy)
	assert.Empty(t, svc.filter.Filters)
}

func TestUpdateLocation(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, http.MethodPatch, "/locations/jhb", `{"capacity":0}`)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.updated.Capacity)
	assert.Zero(t, *svc.updated.Capacity)
}

func TestDeleteLocation(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, http.MethodDelete, "/locations/jhb", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "jhb", svc.deleted)

	svc.failWith = failure.NotFound("location not found")
	rec = serve(svc, http.MethodDelete, "/locations/nowhere", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
