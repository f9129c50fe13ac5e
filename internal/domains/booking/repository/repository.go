package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"spacebook/infras/otel"
	"spacebook/infras/postgres"
	"spacebook/internal/domains/booking/model"
	"spacebook/shared/constant"
	gDto "spacebook/shared/dto"
	"spacebook/shared/logger"
	gRepo "spacebook/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Booking interface {
	Insert(ctx context.Context, model model.Booking) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Booking, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) error
	// SumPeople totals people booked at a location on a day, leaving out excludeID when set.
	SumPeople(ctx context.Context, locationID, day, excludeID string) (int, error)
	// FindTeamBooking returns the team's booking for the day and location, or a zero Booking.
	FindTeamBooking(ctx context.Context, teamID, day, locationID, excludeID string) (model.Booking, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

func slotFilter(locationID, day, excludeID string) gDto.FilterGroup {
	filter := gDto.And(
		gDto.Where(model.TableName, model.FieldLocationID, gDto.FilterOperatorEq, locationID),
		gDto.Where(model.TableName, model.FieldDate, gDto.FilterOperatorEq, day),
	)

	if excludeID != "" {
		filter.Filters = append(filter.Filters,
			gDto.Where(model.TableName, model.FieldID, gDto.FilterOperatorNotEq, excludeID))
	}

	return filter
}

// SumPeople always reads the primary; admission decisions cannot use a lagging replica.
func (r *repositoryImpl) SumPeople(ctx context.Context, locationID, day, excludeID string) (int, error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.SumPeople")
	defer scope.End()

	where, args := r.BuildWhereClause(slotFilter(locationID, day, excludeID))

	query := fmt.Sprintf("SELECT COALESCE(SUM(%s.%s), 0) FROM %s %s", model.TableName, model.FieldPeopleCount, model.TableName, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	prepare, err := r.db.Write.PrepareNamedContext(ctx, query)
	if err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to prepare statement (booking): %w", err)
	}
	defer prepare.Close()

	var total int
	if err = prepare.GetContext(ctx, &total, args); err != nil {
		logger.ErrorWithStack(err)
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to sum people (booking): %w", err)
	}

	return total, nil
}

func (r *repositoryImpl) FindTeamBooking(ctx context.Context, teamID, day, locationID, excludeID string) (model.Booking, error) {
	filter := slotFilter(locationID, day, excludeID)
	filter.Filters = append(filter.Filters,
		gDto.Where(model.TableName, model.FieldTeamID, gDto.FilterOperatorEq, teamID))

	return r.Get(gRepo.WithPrimary(ctx), filter) //nolint:wrapcheck
}
