package batch

import (
	"aligner-lab/internal/domain"
	apiErrors "aligner-lab/internal/errors"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// mock implementation of the BatchRepository interface
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) Create(ctx context.Context, b *domain.Batch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBatchRepository) FindByID(ctx context.Context, id uint64) (*domain.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Batch), args.Error(1)
}

func (m *MockBatchRepository) ListBySet(ctx context.Context, setID uint64) ([]domain.Batch, error) {
	args := m.Called(ctx, setID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Batch), args.Error(1)
}

func (m *MockBatchRepository) Update(ctx context.Context, b *domain.Batch) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBatchRepository) Delete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockSetProvider struct {
	mock.Mock
}

func (m *MockSetProvider) FindByID(ctx context.Context, id uint64) (*domain.AlignerSet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AlignerSet), args.Error(1)
}

type MockVersionCache struct {
	mock.Mock
}

func (m *MockVersionCache) IncrementVersion(ctx context.Context, key string) {
	m.Called(ctx, key)
}

func newTestService() (Service, *MockBatchRepository, *MockSetProvider, *MockVersionCache) {
	repo := new(MockBatchRepository)
	sets := new(MockSetProvider)
	cache := new(MockVersionCache)
	cache.On("IncrementVersion", mock.Anything, mock.Anything).Maybe()
	return NewService(repo, sets, cache), repo, sets, cache
}

func TestCreateBatch_Success(t *testing.T) {
	svc, repo, sets, cache := newTestService()

	sets.On("FindByID", mock.Anything, uint64(5)).Return(&domain.AlignerSet{ID: 5, WorkID: 3, IsActive: true}, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(b *domain.Batch) bool {
		return b.SetID == 5 && b.Sequence == 1
	})).Return(nil)

	b, err := svc.CreateBatch(context.Background(), 5, &BatchInput{
		Sequence:       1,
		UpperCount:     7,
		LowerCount:     5,
		UpperStart:     1,
		LowerStart:     1,
		DaysPerAligner: 10,
	})

	assert.NoError(t, err)
	assert.Equal(t, uint64(5), b.SetID)
	assert.True(t, b.IsActive)
	cache.AssertCalled(t, "IncrementVersion", mock.Anything, "work:3:sets:version")
	repo.AssertExpectations(t)
}

func TestCreateBatch_InactiveSet(t *testing.T) {
	svc, repo, _, cache := newTestService()

	repo.On("Create", mock.Anything, mock.Anything).Return(ErrSetInactive)

	_, err := svc.CreateBatch(context.Background(), 5, &BatchInput{Sequence: 1})

	var apiErr *apiErrors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "inactive_set_conflict", apiErr.Code)
	assert.Equal(t, uint64(5), apiErr.Details["set_id"])
	cache.AssertNotCalled(t, "IncrementVersion", mock.Anything, mock.Anything)
}

func TestCreateBatch_SetNotFound(t *testing.T) {
	svc, repo, _, _ := newTestService()

	repo.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrRecordNotFound)

	_, err := svc.CreateBatch(context.Background(), 404, &BatchInput{Sequence: 1})

	var apiErr *apiErrors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not_found", apiErr.Code)
}

func TestCreateBatch_MissingSequence(t *testing.T) {
	svc, repo, _, _ := newTestService()

	_, err := svc.CreateBatch(context.Background(), 5, &BatchInput{UpperCount: 7})

	var apiErr *apiErrors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "validation_error", apiErr.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateBatch_DuplicateSequence(t *testing.T) {
	svc, repo, _, cache := newTestService()

	// the guard runs inside the insert transaction, so a concurrent sibling
	// with the same sequence still surfaces as a conflict, never a raw DB error
	repo.On("Create", mock.Anything, mock.Anything).Return(ErrSequenceTaken)

	_, err := svc.CreateBatch(context.Background(), 5, &BatchInput{Sequence: 2})

	var apiErr *apiErrors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "conflict", apiErr.Code)
	assert.Equal(t, uint(2), apiErr.Details["sequence"])
	cache.AssertNotCalled(t, "IncrementVersion", mock.Anything, mock.Anything)
}

func TestUpdateBatch_KeepsDeliveryState(t *testing.T) {
	svc, repo, sets, _ := newTestService()

	delivered := time.Now().Add(-24 * time.Hour)
	existing := &domain.Batch{ID: 2, SetID: 5, Sequence: 1, DeliveredAt: &delivered}
	repo.On("FindByID", mock.Anything, uint64(2)).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	sets.On("FindByID", mock.Anything, uint64(5)).Return(&domain.AlignerSet{ID: 5, WorkID: 3}, nil)

	b, err := svc.UpdateBatch(context.Background(), 2, &BatchInput{Sequence: 1, UpperCount: 10, UpperStart: 8})

	assert.NoError(t, err)
	assert.Equal(t, uint(10), b.UpperCount)
	assert.NotNil(t, b.DeliveredAt)
	assert.Equal(t, uint(17), b.UpperEnd())
}

func TestUpdateBatch_DuplicateSequence(t *testing.T) {
	svc, repo, _, _ := newTestService()

	repo.On("FindByID", mock.Anything, uint64(2)).Return(&domain.Batch{ID: 2, SetID: 5, Sequence: 1}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(ErrSequenceTaken)

	_, err := svc.UpdateBatch(context.Background(), 2, &BatchInput{Sequence: 3})

	var apiErr *apiErrors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "conflict", apiErr.Code)
	assert.Equal(t, uint(3), apiErr.Details["sequence"])
}

func TestMarkDelivered_StampsDate(t *testing.T) {
	svc, repo, sets, cache := newTestService()

	repo.On("FindByID", mock.Anything, uint64(2)).Return(&domain.Batch{ID: 2, SetID: 5}, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)
	sets.On("FindByID", mock.Anything, uint64(5)).Return(&domain.AlignerSet{ID: 5, WorkID: 3}, nil)

	b, err := svc.MarkDelivered(context.Background(), 2)

	assert.NoError(t, err)
	assert.NotNil(t, b.DeliveredAt)
	assert.WithinDuration(t, time.Now().UTC(), *b.DeliveredAt, time.Minute)
	cache.AssertCalled(t, "IncrementVersion", mock.Anything, "work:3:sets:version")
}

func TestMarkDelivered_Idempotent(t *testing.T) {
	svc, repo, _, cache := newTestService()

	delivered := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.On("FindByID", mock.Anything, uint64(2)).Return(&domain.Batch{ID: 2, SetID: 5, DeliveredAt: &delivered}, nil)

	b, err := svc.MarkDelivered(context.Background(), 2)

	assert.NoError(t, err)
	assert.Equal(t, delivered, *b.DeliveredAt)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "IncrementVersion", mock.Anything, mock.Anything)
}

func TestDeleteBatch(t *testing.T) {
	svc, repo, sets, cache := newTestService()

	repo.On("FindByID", mock.Anything, uint64(2)).Return(&domain.Batch{ID: 2, SetID: 5}, nil)
	repo.On("Delete", mock.Anything, uint64(2)).Return(nil)
	sets.On("FindByID", mock.Anything, uint64(5)).Return(&domain.AlignerSet{ID: 5, WorkID: 3}, nil)

	assert.NoError(t, svc.DeleteBatch(context.Background(), 2))
	cache.AssertCalled(t, "IncrementVersion", mock.Anything, "work:3:sets:version")
	repo.AssertExpectations(t)
}

func TestBatchDerivedFields(t *testing.T) {
	mfg := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	delivered := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	b := domain.Batch{
		UpperCount:      7,
		LowerCount:      5,
		UpperStart:      8,
		LowerStart:      6,
		DaysPerAligner:  10,
		ManufactureDate: &mfg,
		DeliveredAt:     &delivered,
	}

	assert.Equal(t, uint(14), b.UpperEnd())
	assert.Equal(t, uint(10), b.LowerEnd())
	assert.Equal(t, uint(70), b.ValidityDays())

	next := b.NextReadyDate()
	assert.NotNil(t, next)
	assert.Equal(t, delivered.AddDate(0, 0, 70), *next)
}

func TestBatchDerivedFields_SingleArch(t *testing.T) {
	b := domain.Batch{UpperCount: 7, UpperStart: 1, DaysPerAligner: 14}

	assert.Equal(t, uint(7), b.UpperEnd())
	assert.Equal(t, uint(0), b.LowerEnd())
	assert.Equal(t, uint(98), b.ValidityDays())
	assert.Nil(t, b.NextReadyDate())
}
