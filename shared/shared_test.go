package shared_test

import (
	"context"
	"errors"
	"spacebook/shared"
	"spacebook/shared/cache/mocks"
	"spacebook/shared/constant"
	"spacebook/shared/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestCalculateTotalPage(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		limit    int
		expected int
	}{
		{name: "zero total returns 1", total: 0, limit: 10, expected: 1},
		{name: "zero limit returns 1", total: 100, limit: 0, expected: 1},
		{name: "exact division", total: 100, limit: 10, expected: 10},
		{name: "division with remainder", total: 101, limit: 10, expected: 11},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, shared.CalculateTotalPage(tt.total, tt.limit))
		})
	}
}

func TestTransformFieldsWithPointers(t *testing.T) {
	type update struct {
		Date        *string `db:"date"`
		PeopleCount *int    `db:"people_count"`
		Notes       *string `db:"notes"`
		LocationID  *string `json:"locationId"`
	}

	empty := ""
	count := 4
	location := "jhb"

	result := shared.TransformFields(update{PeopleCount: &count, Notes: &empty, LocationID: &location}, "user-1")

	assert.Equal(t, &count, result["people_count"])
	assert.Equal(t, &empty, result["notes"], "pointer to empty string still updates")
	assert.NotContains(t, result, "date")
	assert.NotContains(t, result, "locationId")
	assert.Equal(t, "user-1", result[constant.FieldModifiedBy])
	assert.IsType(t, time.Time{}, result[constant.FieldModifiedAt])
}

func TestFilterByID(t *testing.T) {
	filter := shared.FilterByID("b-1", "id", "bookings")

	where, args := filter.GetWhereClause()
	assert.Equal(t, "(bookings.id = :id)", where)
	assert.Equal(t, "b-1", args["id"])
}

func TestBuildCacheKey(t *testing.T) {
	assert.Equal(t, "location:get", shared.BuildCacheKey("location:get"))
	assert.Equal(t, "location:get:jhb", shared.BuildCacheKey("location:get", "jhb"))
}

func TestBuildCacheKeyWithQuery_Deterministic(t *testing.T) {
	params := dto.QueryParams{Page: 1, Limit: 10}
	filter := dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{Field: "name", Operator: dto.FilterOperatorLike, Value: "jo"},
			dto.Filter{Field: "capacity", Operator: dto.FilterOperatorGreaterEq, Value: 5},
		},
	}

	first := shared.BuildCacheKeyWithQuery("location:gets", params, filter)
	second := shared.BuildCacheKeyWithQuery("location:gets", params, filter)

	assert.Equal(t, first, second)
	assert.NotEqual(t, first, shared.BuildCacheKeyWithQuery("location:gets", dto.QueryParams{Page: 2, Limit: 10}, filter))
}

func TestInvalidateCaches(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockCache := mocks.NewMockRedisCache(ctrl)
	mockCache.EXPECT().Clear(gomock.Any(), "location:gets*").Return(errors.New("redis down"))

	// errors are logged, never propagated
	shared.InvalidateCaches(context.Background(), mockCache, "location:gets")
}
