package alignerset

import (
	"aligner-lab/internal/domain"
	apiErrors "aligner-lab/internal/errors"
	"aligner-lab/redis"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// mock implementation of the SetRepository interface
type MockSetRepository struct {
	mock.Mock
}

func (m *MockSetRepository) Create(ctx context.Context, set *domain.AlignerSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

func (m *MockSetRepository) FindByID(ctx context.Context, id uint64) (*domain.AlignerSet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AlignerSet), args.Error(1)
}

func (m *MockSetRepository) ListByWork(ctx context.Context, workID uint64) ([]domain.AlignerSet, error) {
	args := m.Called(ctx, workID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AlignerSet), args.Error(1)
}

func (m *MockSetRepository) NextSequence(ctx context.Context, workID uint64) (uint, error) {
	args := m.Called(ctx, workID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockSetRepository) Update(ctx context.Context, set *domain.AlignerSet) error {
	args := m.Called(ctx, set)
	return args.Error(0)
}

func (m *MockSetRepository) UpdateReactivating(ctx context.Context, set *domain.AlignerSet) (uint64, error) {
	args := m.Called(ctx, set)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *MockSetRepository) DeleteCascade(ctx context.Context, setID uint64) error {
	args := m.Called(ctx, setID)
	return args.Error(0)
}

type MockDoctorProvider struct {
	mock.Mock
}

func (m *MockDoctorProvider) GetDoctorByID(ctx context.Context, id uint64) (*domain.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Doctor), args.Error(1)
}

type MockBatchProvider struct {
	mock.Mock
}

func (m *MockBatchProvider) ListBySet(ctx context.Context, setID uint64) ([]domain.Batch, error) {
	args := m.Called(ctx, setID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Batch), args.Error(1)
}

type MockPaymentProvider struct {
	mock.Mock
}

func (m *MockPaymentProvider) ListBySet(ctx context.Context, setID uint64) ([]domain.Payment, error) {
	args := m.Called(ctx, setID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Payment), args.Error(1)
}

type MockUnreadProvider struct {
	mock.Mock
}

func (m *MockUnreadProvider) UnreadCountForSet(ctx context.Context, setID uint64, forRole string) (int64, error) {
	args := m.Called(ctx, setID, forRole)
	return args.Get(0).(int64), args.Error(1)
}

type serviceMocks struct {
	repo    *MockSetRepository
	doctors *MockDoctorProvider
	batches *MockBatchProvider
	pays    *MockPaymentProvider
	unread  *MockUnreadProvider
}

func newTestService() (Service, *serviceMocks) {
	m := &serviceMocks{
		repo:    new(MockSetRepository),
		doctors: new(MockDoctorProvider),
		batches: new(MockBatchProvider),
		pays:    new(MockPaymentProvider),
		unread:  new(MockUnreadProvider),
	}
	svc := NewService(m.repo, m.doctors, m.batches, m.pays, m.unread, nil, redis.NewCache(), nil)
	return svc, m
}

func TestCreateSet_DefaultsSequence(t *testing.T) {
	svc, m := newTestService()

	m.doctors.On("GetDoctorByID", mock.Anything, uint64(7)).Return(&domain.Doctor{ID: 7}, nil)
	m.repo.On("NextSequence", mock.Anything, uint64(3)).Return(uint(4), nil)
	m.repo.On("Create", mock.Anything, mock.MatchedBy(func(s *domain.AlignerSet) bool {
		return s.Sequence == 4 && s.IsActive
	})).Return(nil)

	set := &domain.AlignerSet{WorkID: 3, DoctorID: 7, Type: domain.SetTypeInitial}
	err := svc.CreateSet(context.Background(), set)

	assert.NoError(t, err)
	assert.Equal(t, uint(4), set.Sequence)
	m.repo.AssertExpectations(t)
}

func TestCreateSet_KeepsExplicitSequence(t *testing.T) {
	svc, m := newTestService()

	m.doctors.On("GetDoctorByID", mock.Anything, uint64(7)).Return(&domain.Doctor{ID: 7}, nil)
	m.repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	set := &domain.AlignerSet{WorkID: 3, DoctorID: 7, Sequence: 9, Type: domain.SetTypeRefinement}
	err := svc.CreateSet(context.Background(), set)

	assert.NoError(t, err)
	assert.Equal(t, uint(9), set.Sequence)
	m.repo.AssertNotCalled(t, "NextSequence", mock.Anything, mock.Anything)
}

func TestCreateSet_MissingDoctor(t *testing.T) {
	svc, m := newTestService()

	err := svc.CreateSet(context.Background(), &domain.AlignerSet{WorkID: 3})

	var apiErr *apiErrors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "validation_error", apiErr.Code)
	assert.Equal(t, "doctor_id", apiErr.Details["field"])
	m.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateSet_UnknownDoctor(t *testing.T) {
	svc, m := newTestService()

	m.doctors.On("GetDoctorByID", mock.Anything, uint64(99)).Return(nil, gorm.ErrRecordNotFound)

	err := svc.CreateSet(context.Background(), &domain.AlignerSet{WorkID: 3, DoctorID: 99})

	var apiErr *apiErrors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "validation_error", apiErr.Code)
	m.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func activeFlag(v bool) *bool { return &v }

func TestUpdateSet_ReactivationBlocked(t *testing.T) {
	svc, m := newTestService()

	existing := &domain.AlignerSet{ID: 1, WorkID: 3, IsActive: false, CreatedAt: time.Now().Add(-48 * time.Hour)}
	m.repo.On("FindByID", mock.Anything, uint64(1)).Return(existing, nil)
	m.repo.On("UpdateReactivating", mock.Anything, mock.Anything).Return(uint64(9), nil)

	_, err := svc.UpdateSet(context.Background(), 1, &SetInput{
		DoctorID: 7,
		Sequence: 1,
		Type:     domain.SetTypeInitial,
		IsActive: activeFlag(true),
	})

	var apiErr *apiErrors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "reactivation_blocked", apiErr.Code)
	assert.Equal(t, uint64(9), apiErr.Details["blocking_set_id"])
	m.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateSet_ReactivationAllowed(t *testing.T) {
	svc, m := newTestService()

	existing := &domain.AlignerSet{ID: 1, WorkID: 3, IsActive: false}
	m.repo.On("FindByID", mock.Anything, uint64(1)).Return(existing, nil)
	m.repo.On("UpdateReactivating", mock.Anything, mock.Anything).Return(uint64(0), nil)

	set, err := svc.UpdateSet(context.Background(), 1, &SetInput{
		DoctorID: 7,
		Sequence: 1,
		Type:     domain.SetTypeInitial,
		IsActive: activeFlag(true),
	})

	assert.NoError(t, err)
	assert.True(t, set.IsActive)
	m.repo.AssertExpectations(t)
}

func TestUpdateSet_PlainUpdateSkipsGuard(t *testing.T) {
	svc, m := newTestService()

	existing := &domain.AlignerSet{ID: 1, WorkID: 3, IsActive: true}
	m.repo.On("FindByID", mock.Anything, uint64(1)).Return(existing, nil)
	m.repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	// deactivating is always allowed
	set, err := svc.UpdateSet(context.Background(), 1, &SetInput{
		DoctorID: 7,
		Sequence: 1,
		Type:     domain.SetTypeInitial,
		IsActive: activeFlag(false),
	})

	assert.NoError(t, err)
	assert.False(t, set.IsActive)
	m.repo.AssertNotCalled(t, "UpdateReactivating", mock.Anything, mock.Anything)
}

func TestUpdateSet_NotFound(t *testing.T) {
	svc, m := newTestService()

	m.repo.On("FindByID", mock.Anything, uint64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.UpdateSet(context.Background(), 404, &SetInput{DoctorID: 7, Sequence: 1, Type: domain.SetTypeInitial})

	var apiErr *apiErrors.APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not_found", apiErr.Code)
}

func TestDeleteSet_Cascades(t *testing.T) {
	svc, m := newTestService()

	m.repo.On("FindByID", mock.Anything, uint64(5)).Return(&domain.AlignerSet{ID: 5, WorkID: 3}, nil)
	m.repo.On("DeleteCascade", mock.Anything, uint64(5)).Return(nil)

	assert.NoError(t, svc.DeleteSet(context.Background(), 5))
	m.repo.AssertExpectations(t)
}

func TestDeleteSet_CascadeFailurePropagates(t *testing.T) {
	svc, m := newTestService()

	m.repo.On("FindByID", mock.Anything, uint64(5)).Return(&domain.AlignerSet{ID: 5}, nil)
	m.repo.On("DeleteCascade", mock.Anything, uint64(5)).Return(errors.New("tx rolled back"))

	err := svc.DeleteSet(context.Background(), 5)
	assert.Error(t, err)
}

func TestComputeProgress_HalfDelivered(t *testing.T) {
	set := &domain.AlignerSet{UpperAlignersCount: 14, LowerAlignersCount: 14}
	delivered := time.Now()
	batches := []domain.Batch{
		{Sequence: 1, UpperCount: 7, LowerCount: 7, DeliveredAt: &delivered},
	}

	p := ComputeProgress(set, batches)

	assert.Equal(t, uint(14), p.Delivered)
	assert.Equal(t, 50, p.Percent)
	assert.Equal(t, uint(7), p.RemainingUpper)
	assert.Equal(t, uint(7), p.RemainingLower)
}

func TestComputeProgress_UndeliveredBatchesDontCount(t *testing.T) {
	set := &domain.AlignerSet{UpperAlignersCount: 14, LowerAlignersCount: 14}
	batches := []domain.Batch{
		{Sequence: 1, UpperCount: 7, LowerCount: 7},
	}

	p := ComputeProgress(set, batches)

	assert.Equal(t, uint(0), p.Delivered)
	assert.Equal(t, 0, p.Percent)
}

func TestComputeProgress_ZeroTotal(t *testing.T) {
	p := ComputeProgress(&domain.AlignerSet{}, nil)

	assert.Equal(t, uint(0), p.Delivered)
	assert.Equal(t, 0, p.Percent)
}

func TestComputeProgress_OverdeliveryClamped(t *testing.T) {
	set := &domain.AlignerSet{UpperAlignersCount: 10, LowerAlignersCount: 10}
	delivered := time.Now()
	batches := []domain.Batch{
		{Sequence: 1, UpperCount: 12, LowerCount: 12, DeliveredAt: &delivered},
	}

	p := ComputeProgress(set, batches)

	assert.Equal(t, uint(20), p.Delivered)
	assert.Equal(t, 100, p.Percent)
}

func TestGetSet_AssemblesProjections(t *testing.T) {
	svc, m := newTestService()

	mfg := time.Now().Add(-72 * time.Hour)
	delivered := time.Now().Add(-24 * time.Hour)
	set := &domain.AlignerSet{ID: 5, WorkID: 3, UpperAlignersCount: 14, LowerAlignersCount: 14, Cost: 500, Currency: "USD"}

	m.repo.On("FindByID", mock.Anything, uint64(5)).Return(set, nil)
	m.batches.On("ListBySet", mock.Anything, uint64(5)).Return([]domain.Batch{
		{ID: 1, Sequence: 1, UpperCount: 7, LowerCount: 7, UpperStart: 1, LowerStart: 1,
			ManufactureDate: &mfg, DeliveredAt: &delivered, DaysPerAligner: 10},
	}, nil)
	m.pays.On("ListBySet", mock.Anything, uint64(5)).Return([]domain.Payment{
		{Amount: 120}, {Amount: 80},
	}, nil)
	m.unread.On("UnreadCountForSet", mock.Anything, uint64(5), domain.AuthorLab).Return(int64(2), nil)
	m.unread.On("UnreadCountForSet", mock.Anything, uint64(5), domain.AuthorDoctor).Return(int64(0), nil)

	detail, err := svc.GetSet(context.Background(), 5)

	assert.NoError(t, err)
	assert.Equal(t, "all_delivered", string(detail.LabStatus))
	assert.Equal(t, 50, detail.Progress.Percent)
	assert.Equal(t, 300.0, detail.Balance.Balance)
	assert.Equal(t, "partial", detail.Balance.Status)
	assert.Equal(t, int64(2), detail.Unread.Lab)
	assert.Len(t, detail.Batches, 1)
	assert.Equal(t, uint(7), detail.Batches[0].UpperEnd)
	assert.NotNil(t, detail.Batches[0].NextReadyDate)
}
