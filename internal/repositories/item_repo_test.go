package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"homestock/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type ItemRepoTestSuite struct {
	suite.Suite
	mock       pgxmock.PgxPoolIface
	repo       ItemRepository
	ownerID1   uuid.UUID
	ownerID2   uuid.UUID
	itemID     uuid.UUID
	locationID uuid.UUID
	context    context.Context
}

func (suite *ItemRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewItemRepo(mock)
	suite.ownerID1 = uuid.New()
	suite.ownerID2 = uuid.New()
	suite.itemID = uuid.New()
	suite.locationID = uuid.New()
	suite.context = context.Background()
}

func (suite *ItemRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestItemRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ItemRepoTestSuite))
}

func (suite *ItemRepoTestSuite) TestCreate_Success() {
	item := &models.Item{
		ID:          suite.itemID,
		OwnerID:     suite.ownerID1,
		LocationID:  suite.locationID,
		Name:        "Phillips screwdriver",
		Description: stringPtr("Yellow handle"),
		Quantity:    2,
	}

	suite.mock.ExpectExec(`
		INSERT INTO items \(id, owner_id, location_id, name, description, quantity, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, NOW\(\), NOW\(\)\)
	`).WithArgs(item.ID, item.OwnerID, item.LocationID, item.Name, item.Description, item.Quantity).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.context, item)
	assert.NoError(suite.T(), err)
}

func (suite *ItemRepoTestSuite) TestCreate_DatabaseError() {
	item := &models.Item{
		ID:         suite.itemID,
		OwnerID:    suite.ownerID1,
		LocationID: suite.locationID,
		Name:       "Hammer",
		Quantity:   1,
	}

	suite.mock.ExpectExec(`
		INSERT INTO items \(id, owner_id, location_id, name, description, quantity, created_at, updated_at\)
		VALUES \(\$1, \$2, \$3, \$4, \$5, \$6, NOW\(\), NOW\(\)\)
	`).WithArgs(item.ID, item.OwnerID, item.LocationID, item.Name, (*string)(nil), item.Quantity).
		WillReturnError(errors.New("database connection failed"))

	err := suite.repo.Create(suite.context, item)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "database connection failed")
}

func (suite *ItemRepoTestSuite) TestGetByID_Success() {
	now := time.Now()

	suite.mock.ExpectQuery(`
		SELECT id, owner_id, location_id, name, description, quantity, created_at, updated_at
		FROM items
		WHERE owner_id = \$1 AND id = \$2
	`).WithArgs(suite.ownerID1, suite.itemID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "location_id", "name", "description", "quantity", "created_at", "updated_at"}).
			AddRow(suite.itemID, suite.ownerID1, suite.locationID, "Duct tape", stringPtr("Half used"), 3, now, now))

	result, err := suite.repo.GetByID(suite.context, suite.ownerID1, suite.itemID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.itemID, result.ID)
	assert.Equal(suite.T(), "Duct tape", result.Name)
	assert.Equal(suite.T(), "Half used", *result.Description)
	assert.Equal(suite.T(), 3, result.Quantity)
}

func (suite *ItemRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`
		SELECT id, owner_id, location_id, name, description, quantity, created_at, updated_at
		FROM items
		WHERE owner_id = \$1 AND id = \$2
	`).WithArgs(suite.ownerID1, suite.itemID).
		WillReturnError(pgx.ErrNoRows)

	result, err := suite.repo.GetByID(suite.context, suite.ownerID1, suite.itemID)
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), result)
}

func (suite *ItemRepoTestSuite) TestGetByID_WrongOwner() {
	suite.mock.ExpectQuery(`
		SELECT id, owner_id, location_id, name, description, quantity, created_at, updated_at
		FROM items
		WHERE owner_id = \$1 AND id = \$2
	`).WithArgs(suite.ownerID2, suite.itemID).
		WillReturnError(pgx.ErrNoRows)

	result, err := suite.repo.GetByID(suite.context, suite.ownerID2, suite.itemID)
	assert.Error(suite.T(), err)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
	assert.Nil(suite.T(), result)
}

func (suite *ItemRepoTestSuite) TestUpdate_Success() {
	item := &models.Item{
		ID:          suite.itemID,
		OwnerID:     suite.ownerID1,
		Name:        "Duct tape",
		Description: stringPtr("Nearly gone"),
		Quantity:    1,
	}

	suite.mock.ExpectExec(`
		UPDATE items
		SET name = \$1, description = \$2, quantity = \$3, updated_at = NOW\(\)
		WHERE owner_id = \$4 AND id = \$5
	`).WithArgs(item.Name, item.Description, item.Quantity, item.OwnerID, item.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.Update(suite.context, item)
	assert.NoError(suite.T(), err)
}

func (suite *ItemRepoTestSuite) TestUpdateLocation_Success() {
	newLocationID := uuid.New()

	suite.mock.ExpectExec(`
		UPDATE items
		SET location_id = \$1, updated_at = NOW\(\)
		WHERE owner_id = \$2 AND id = \$3
	`).WithArgs(newLocationID, suite.ownerID1, suite.itemID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := suite.repo.UpdateLocation(suite.context, suite.ownerID1, suite.itemID, newLocationID)
	assert.NoError(suite.T(), err)
}

func (suite *ItemRepoTestSuite) TestDelete_RemovesPhotoRowsFirst() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM item_photos WHERE owner_id = \$1 AND item_id = \$2`).
		WithArgs(suite.ownerID1, suite.itemID).
		WillReturnResult(pgxmock.NewResult("DELETE", 2))
	suite.mock.ExpectExec(`DELETE FROM items WHERE owner_id = \$1 AND id = \$2`).
		WithArgs(suite.ownerID1, suite.itemID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	suite.mock.ExpectCommit()

	err := suite.repo.Delete(suite.context, suite.ownerID1, suite.itemID)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *ItemRepoTestSuite) TestDelete_RollsBackOnFailure() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectExec(`DELETE FROM item_photos WHERE owner_id = \$1 AND item_id = \$2`).
		WithArgs(suite.ownerID1, suite.itemID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	suite.mock.ExpectExec(`DELETE FROM items WHERE owner_id = \$1 AND id = \$2`).
		WithArgs(suite.ownerID1, suite.itemID).
		WillReturnError(errors.New("deadlock detected"))
	suite.mock.ExpectRollback()

	err := suite.repo.Delete(suite.context, suite.ownerID1, suite.itemID)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "delete item")
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *ItemRepoTestSuite) TestListByLocation_Success() {
	limit, offset := 10, 0
	now := time.Now()

	suite.mock.ExpectQuery(`
		SELECT id, owner_id, location_id, name, description, quantity, created_at, updated_at
		FROM items
		WHERE owner_id = \$1 AND location_id = \$2
		ORDER BY name ASC, id ASC
		LIMIT \$3 OFFSET \$4
	`).WithArgs(suite.ownerID1, suite.locationID, limit, offset).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "location_id", "name", "description", "quantity", "created_at", "updated_at"}).
			AddRow(uuid.New(), suite.ownerID1, suite.locationID, "AA batteries", nil, 8, now, now).
			AddRow(uuid.New(), suite.ownerID1, suite.locationID, "Allen keys", stringPtr("Metric set"), 1, now, now))

	result, err := suite.repo.ListByLocation(suite.context, suite.ownerID1, suite.locationID, limit, offset)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)
	assert.Equal(suite.T(), "AA batteries", result[0].Name)
	assert.Nil(suite.T(), result[0].Description)
	assert.Equal(suite.T(), "Allen keys", result[1].Name)
}

func (suite *ItemRepoTestSuite) TestSearch_NameQueryEscapesWildcards() {
	now := time.Now()
	filter := &models.ItemSearchFilter{Query: "50%_rag", Limit: 20, Offset: 0}
	pattern := `%50\%\_rag%`

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM items i WHERE i.owner_id = \$1 AND i.name ILIKE \$2`).
		WithArgs(suite.ownerID1, pattern).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	suite.mock.ExpectQuery(`
		SELECT i.id, i.owner_id, i.location_id, i.name, i.description, i.quantity, i.created_at, i.updated_at, l.path_names
		FROM items i
		JOIN locations l ON l.owner_id = i.owner_id AND l.id = i.location_id WHERE i.owner_id = \$1 AND i.name ILIKE \$2
		ORDER BY i.name ASC, i.id ASC
		LIMIT \$3 OFFSET \$4
	`).WithArgs(suite.ownerID1, pattern, 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "location_id", "name", "description", "quantity", "created_at", "updated_at", "path_names"}).
			AddRow(suite.itemID, suite.ownerID1, suite.locationID, "50%_rags box", nil, 1, now, now, []string{"Garage", "Shelf"}))

	result, err := suite.repo.Search(suite.context, suite.ownerID1, filter)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, result.Total)
	assert.False(suite.T(), result.HasMore)
	assert.Len(suite.T(), result.Items, 1)
	assert.Equal(suite.T(), []string{"Garage", "Shelf"}, result.Items[0].LocationPath)
}

func (suite *ItemRepoTestSuite) TestSearch_SubtreeScope() {
	now := time.Now()
	scope := []uuid.UUID{suite.locationID, uuid.New()}
	filter := &models.ItemSearchFilter{LocationIDs: scope, Limit: 50, Offset: 0}

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM items i WHERE i.owner_id = \$1 AND i.location_id = ANY\(\$2\)`).
		WithArgs(suite.ownerID1, scope).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))

	suite.mock.ExpectQuery(`
		SELECT i.id, i.owner_id, i.location_id, i.name, i.description, i.quantity, i.created_at, i.updated_at, l.path_names
		FROM items i
		JOIN locations l ON l.owner_id = i.owner_id AND l.id = i.location_id WHERE i.owner_id = \$1 AND i.location_id = ANY\(\$2\)
		ORDER BY i.name ASC, i.id ASC
		LIMIT \$3 OFFSET \$4
	`).WithArgs(suite.ownerID1, scope, 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "location_id", "name", "description", "quantity", "created_at", "updated_at", "path_names"}).
			AddRow(uuid.New(), suite.ownerID1, scope[0], "Paint roller", nil, 1, now, now, []string{"Garage"}).
			AddRow(uuid.New(), suite.ownerID1, scope[1], "Paint tray", nil, 1, now, now, []string{"Garage", "Shelf"}))

	result, err := suite.repo.Search(suite.context, suite.ownerID1, filter)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, result.Total)
	assert.False(suite.T(), result.HasMore)
	assert.Len(suite.T(), result.Items, 2)
}

func (suite *ItemRepoTestSuite) TestSearch_ScopeAndQueryPaged() {
	now := time.Now()
	scope := []uuid.UUID{suite.locationID}
	filter := &models.ItemSearchFilter{Query: "screw", LocationIDs: scope, Limit: 10, Offset: 10}

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM items i WHERE i.owner_id = \$1 AND i.location_id = ANY\(\$2\) AND i.name ILIKE \$3`).
		WithArgs(suite.ownerID1, scope, "%screw%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(25))

	suite.mock.ExpectQuery(`
		SELECT i.id, i.owner_id, i.location_id, i.name, i.description, i.quantity, i.created_at, i.updated_at, l.path_names
		FROM items i
		JOIN locations l ON l.owner_id = i.owner_id AND l.id = i.location_id WHERE i.owner_id = \$1 AND i.location_id = ANY\(\$2\) AND i.name ILIKE \$3
		ORDER BY i.name ASC, i.id ASC
		LIMIT \$4 OFFSET \$5
	`).WithArgs(suite.ownerID1, scope, "%screw%", 10, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "location_id", "name", "description", "quantity", "created_at", "updated_at", "path_names"}).
			AddRow(uuid.New(), suite.ownerID1, suite.locationID, "Screwdriver bits", nil, 1, now, now, []string{"Garage", "Toolbox"}))

	result, err := suite.repo.Search(suite.context, suite.ownerID1, filter)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 25, result.Total)
	assert.True(suite.T(), result.HasMore)
}

func (suite *ItemRepoTestSuite) TestSearch_NoFilters() {
	now := time.Now()
	filter := &models.ItemSearchFilter{Limit: 50, Offset: 0}

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM items i WHERE i.owner_id = \$1`).
		WithArgs(suite.ownerID1).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))

	suite.mock.ExpectQuery(`
		SELECT i.id, i.owner_id, i.location_id, i.name, i.description, i.quantity, i.created_at, i.updated_at, l.path_names
		FROM items i
		JOIN locations l ON l.owner_id = i.owner_id AND l.id = i.location_id WHERE i.owner_id = \$1
		ORDER BY i.name ASC, i.id ASC
		LIMIT \$2 OFFSET \$3
	`).WithArgs(suite.ownerID1, 50, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "location_id", "name", "description", "quantity", "created_at", "updated_at", "path_names"}).
			AddRow(suite.itemID, suite.ownerID1, suite.locationID, "Spare keys", nil, 2, now, now, []string{"Hallway", "Bowl"}))

	result, err := suite.repo.Search(suite.context, suite.ownerID1, filter)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, result.Total)
	assert.Len(suite.T(), result.Items, 1)
}

func (suite *ItemRepoTestSuite) TestSearch_EmptyResult() {
	filter := &models.ItemSearchFilter{Query: "unobtainium", Limit: 20, Offset: 0}

	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM items i WHERE i.owner_id = \$1 AND i.name ILIKE \$2`).
		WithArgs(suite.ownerID1, "%unobtainium%").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))

	suite.mock.ExpectQuery(`
		SELECT i.id, i.owner_id, i.location_id, i.name, i.description, i.quantity, i.created_at, i.updated_at, l.path_names
		FROM items i
		JOIN locations l ON l.owner_id = i.owner_id AND l.id = i.location_id WHERE i.owner_id = \$1 AND i.name ILIKE \$2
		ORDER BY i.name ASC, i.id ASC
		LIMIT \$3 OFFSET \$4
	`).WithArgs(suite.ownerID1, "%unobtainium%", 20, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "location_id", "name", "description", "quantity", "created_at", "updated_at", "path_names"}))

	result, err := suite.repo.Search(suite.context, suite.ownerID1, filter)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, result.Total)
	assert.False(suite.T(), result.HasMore)
	assert.Empty(suite.T(), result.Items)
}

func (suite *ItemRepoTestSuite) TestCountByOwner_Success() {
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\), COALESCE\(SUM\(quantity\), 0\) FROM items WHERE owner_id = \$1`).
		WithArgs(suite.ownerID1).
		WillReturnRows(pgxmock.NewRows([]string{"count", "quantity"}).AddRow(3, 14))

	count, quantity, err := suite.repo.CountByOwner(suite.context, suite.ownerID1)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, count)
	assert.Equal(suite.T(), 14, quantity)
}

func (suite *ItemRepoTestSuite) TestRootBreakdown_Success() {
	garageID, kitchenID := uuid.New(), uuid.New()

	suite.mock.ExpectQuery(`
		SELECT l.path_ids\[1\], l.path_names\[1\], COUNT\(i.id\), COALESCE\(SUM\(i.quantity\), 0\)
		FROM items i
		JOIN locations l ON l.owner_id = i.owner_id AND l.id = i.location_id
		WHERE i.owner_id = \$1
		GROUP BY l.path_ids\[1\], l.path_names\[1\]
		ORDER BY COUNT\(i.id\) DESC
	`).WithArgs(suite.ownerID1).
		WillReturnRows(pgxmock.NewRows([]string{"root_id", "root_name", "item_count", "total_quantity"}).
			AddRow(garageID, "Garage", 12, 40).
			AddRow(kitchenID, "Kitchen", 5, 7))

	result, err := suite.repo.RootBreakdown(suite.context, suite.ownerID1)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)
	assert.Equal(suite.T(), "Garage", result[0].RootName)
	assert.Equal(suite.T(), 12, result[0].ItemCount)
	assert.Equal(suite.T(), 40, result[0].TotalQuantity)
	assert.Equal(suite.T(), kitchenID, result[1].RootID)
}

func (suite *ItemRepoTestSuite) TestRecentlyUpdated_Success() {
	now := time.Now()

	suite.mock.ExpectQuery(`
		SELECT id, owner_id, location_id, name, description, quantity, created_at, updated_at
		FROM items
		WHERE owner_id = \$1
		ORDER BY updated_at DESC
		LIMIT \$2
	`).WithArgs(suite.ownerID1, 5).
		WillReturnRows(pgxmock.NewRows([]string{"id", "owner_id", "location_id", "name", "description", "quantity", "created_at", "updated_at"}).
			AddRow(uuid.New(), suite.ownerID1, suite.locationID, "Camping stove", nil, 1, now, now))

	result, err := suite.repo.RecentlyUpdated(suite.context, suite.ownerID1, 5)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 1)
	assert.Equal(suite.T(), "Camping stove", result[0].Name)
}

// Helper function to create string pointer
func stringPtr(s string) *string {
	return &s
}
