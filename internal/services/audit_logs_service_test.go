package services

import (
	"context"
	"testing"
	"time"

	"hauntedadmin/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAuditLogsRepository struct {
	mock.Mock
}

func (m *MockAuditLogsRepository) Create(ctx context.Context, auditLog *models.AuditLog) error {
	args := m.Called(ctx, auditLog)
	return args.Error(0)
}

func (m *MockAuditLogsRepository) List(ctx context.Context, filters *models.AuditLogFilters) ([]*models.AuditLog, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

func (m *MockAuditLogsRepository) GetByTableAndRecord(ctx context.Context, tableName, recordID string, limit, offset int) ([]*models.AuditLog, error) {
	args := m.Called(ctx, tableName, recordID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.AuditLog), args.Error(1)
}

type AuditLogsServiceTestSuite struct {
	suite.Suite
	mockRepo *MockAuditLogsRepository
	service  AuditLogsService
	adminID  uuid.UUID
	ctx      context.Context
}

func (suite *AuditLogsServiceTestSuite) SetupTest() {
	suite.mockRepo = &MockAuditLogsRepository{}
	suite.service = NewAuditLogsService(suite.mockRepo)
	suite.adminID = uuid.New()
	suite.ctx = context.Background()

	suite.mockRepo.Test(suite.T())
}

func (suite *AuditLogsServiceTestSuite) TearDownTest() {
	suite.mockRepo.AssertExpectations(suite.T())
}

func TestAuditLogsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuditLogsServiceTestSuite))
}

func (suite *AuditLogsServiceTestSuite) TestLogActivity_Success() {
	recordID := uuid.New().String()

	suite.mockRepo.On("Create", suite.ctx, mock.MatchedBy(func(l *models.AuditLog) bool {
		return l.TableName == "members" &&
			l.RecordID == recordID &&
			l.Action == models.ActionUpdate &&
			l.ChangedBy != nil && *l.ChangedBy == suite.adminID
	})).Return(nil)

	err := suite.service.LogActivity(suite.ctx, "members", recordID,
		models.ActionUpdate, &suite.adminID, nil, models.JSONB{"name": "Morticia"})

	assert.NoError(suite.T(), err)
}

func (suite *AuditLogsServiceTestSuite) TestLogActivity_MissingTableName() {
	err := suite.service.LogActivity(suite.ctx, "", "rec", models.ActionInsert, nil, nil, nil)

	assert.Error(suite.T(), err)
	suite.mockRepo.AssertNotCalled(suite.T(), "Create")
}

func (suite *AuditLogsServiceTestSuite) TestListAuditLogs_AppliesDefaultLimit() {
	expectedLogs := []*models.AuditLog{
		{ID: uuid.New(), TableName: "members", Action: models.ActionInsert},
	}

	suite.mockRepo.On("List", suite.ctx, mock.MatchedBy(func(f *models.AuditLogFilters) bool {
		return f.Limit == 50
	})).Return(expectedLogs, nil)

	result, err := suite.service.ListAuditLogs(suite.ctx, &models.AuditLogFilters{Limit: 0})

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 1)
}

func (suite *AuditLogsServiceTestSuite) TestGetEntityHistory_Success() {
	recordID := uuid.New().String()
	expectedLogs := []*models.AuditLog{
		{ID: uuid.New(), TableName: "members", RecordID: recordID, Action: models.ActionExtend},
		{ID: uuid.New(), TableName: "members", RecordID: recordID, Action: models.ActionInsert},
	}

	suite.mockRepo.On("GetByTableAndRecord", suite.ctx, "members", recordID, 50, 0).Return(expectedLogs, nil)

	result, err := suite.service.GetEntityHistory(suite.ctx, "members", recordID, 50, 0)

	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), result, 2)
}

func (suite *AuditLogsServiceTestSuite) TestValidateAuditFilters_Valid() {
	start := time.Now().AddDate(0, -1, 0)
	end := time.Now()
	filters := &models.AuditLogFilters{
		TableName: strPtr("members"),
		Limit:     50,
		StartDate: &start,
		EndDate:   &end,
	}

	assert.NoError(suite.T(), suite.service.ValidateAuditFilters(filters))
}

func (suite *AuditLogsServiceTestSuite) TestValidateAuditFilters_RangeTooWide() {
	start := time.Now().AddDate(-2, 0, 0)
	end := time.Now()
	filters := &models.AuditLogFilters{
		StartDate: &start,
		EndDate:   &end,
	}

	err := suite.service.ValidateAuditFilters(filters)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "date range cannot exceed 1 year")
}

func (suite *AuditLogsServiceTestSuite) TestValidateAuditFilters_LimitTooLarge() {
	err := suite.service.ValidateAuditFilters(&models.AuditLogFilters{Limit: 5000})
	assert.Error(suite.T(), err)
}
