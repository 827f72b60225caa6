package alignerset

import (
	"aligner-lab/internal/attachments"
	"aligner-lab/internal/domain"
	"aligner-lab/internal/errors"
	"aligner-lab/internal/labstatus"
	"aligner-lab/internal/payment"
	"aligner-lab/internal/worker"
	"aligner-lab/redis"
	"context"
	defError "errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
)

type Service interface {
	CreateSet(ctx context.Context, set *domain.AlignerSet) error
	UpdateSet(ctx context.Context, setID uint64, input *SetInput) (*domain.AlignerSet, error)
	DeleteSet(ctx context.Context, setID uint64) error
	SetDocumentURL(ctx context.Context, setID uint64, url string) (*domain.AlignerSet, error)
	GetDocumentInfo(ctx context.Context, setID uint64) (*attachments.DocumentInfo, error)
	GetSet(ctx context.Context, setID uint64) (*SetDetailResponse, error)
	ListSetsForWork(ctx context.Context, workID uint64) ([]SetSummary, error)
}

// DoctorProvider resolves doctor references from the registry
type DoctorProvider interface {
	GetDoctorByID(ctx context.Context, id uint64) (*domain.Doctor, error)
}

// BatchProvider loads the batches owned by a set
type BatchProvider interface {
	ListBySet(ctx context.Context, setID uint64) ([]domain.Batch, error)
}

// PaymentProvider loads the payments recorded against a set
type PaymentProvider interface {
	ListBySet(ctx context.Context, setID uint64) ([]domain.Payment, error)
}

// UnreadProvider counts unread counter-party notes for a set
type UnreadProvider interface {
	UnreadCountForSet(ctx context.Context, setID uint64, forRole string) (int64, error)
}

type DefaultService struct {
	repository     SetRepository
	doctorProvider DoctorProvider
	batches        BatchProvider
	payments       PaymentProvider
	unread         UnreadProvider
	attachments    *attachments.Client
	cache          *redis.Cache
	pool           *worker.WorkerPool
}

func NewService(
	repository SetRepository,
	doctorProvider DoctorProvider,
	batches BatchProvider,
	payments PaymentProvider,
	unread UnreadProvider,
	attachmentClient *attachments.Client,
	cache *redis.Cache,
	pool *worker.WorkerPool,
) Service {
	return &DefaultService{
		repository:     repository,
		doctorProvider: doctorProvider,
		batches:        batches,
		payments:       payments,
		unread:         unread,
		attachments:    attachmentClient,
		cache:          cache,
		pool:           pool,
	}
}

// SetInput is the full field set applied on update. IsActive is a pointer so
// an omitted value keeps the current activation state.
type SetInput struct {
	DoctorID           uint64
	Sequence           uint
	Type               string
	UpperAlignersCount uint
	LowerAlignersCount uint
	TreatmentDays      uint
	IsActive           *bool
	Cost               float64
	Currency           string
	Remarks            string
	SetURL             string
	DocumentURL        string
}

func (s *DefaultService) CreateSet(ctx context.Context, set *domain.AlignerSet) error {
	if set.DoctorID == 0 {
		return errors.Validation("doctor_id", "Doctor reference is required")
	}
	if set.WorkID == 0 {
		return errors.Validation("work_id", "Work reference is required")
	}

	// Ensure the doctor exists in the registry
	if _, err := s.doctorProvider.GetDoctorByID(ctx, set.DoctorID); err != nil {
		return errors.Validation("doctor_id", "Doctor not found").WithDetail("doctor_id", set.DoctorID)
	}

	// Default the sequence to max+1 within the work when not supplied
	if set.Sequence == 0 {
		seq, err := s.repository.NextSequence(ctx, set.WorkID)
		if err != nil {
			return err
		}
		set.Sequence = seq
	}

	set.IsActive = true
	if err := s.repository.Create(ctx, set); err != nil {
		return err
	}

	s.bumpWorkVersion(ctx, set.WorkID)
	return nil
}

func (s *DefaultService) UpdateSet(ctx context.Context, setID uint64, input *SetInput) (*domain.AlignerSet, error) {
	set, err := s.repository.FindByID(ctx, setID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Set not found", err)
		}
		return nil, err
	}

	reactivating := !set.IsActive && input.IsActive != nil && *input.IsActive

	set.DoctorID = input.DoctorID
	set.Sequence = input.Sequence
	set.Type = input.Type
	set.UpperAlignersCount = input.UpperAlignersCount
	set.LowerAlignersCount = input.LowerAlignersCount
	set.TreatmentDays = input.TreatmentDays
	set.Cost = input.Cost
	set.Currency = input.Currency
	set.Remarks = input.Remarks
	set.SetURL = input.SetURL
	set.DocumentURL = input.DocumentURL
	if input.IsActive != nil {
		set.IsActive = *input.IsActive
	}

	if reactivating {
		blockingID, err := s.repository.UpdateReactivating(ctx, set)
		if err != nil {
			return nil, err
		}
		if blockingID != 0 {
			return nil, errors.ReactivationBlocked(blockingID)
		}
	} else {
		if err := s.repository.Update(ctx, set); err != nil {
			return nil, err
		}
	}

	s.bumpWorkVersion(ctx, set.WorkID)
	return set, nil
}

func (s *DefaultService) DeleteSet(ctx context.Context, setID uint64) error {
	set, err := s.repository.FindByID(ctx, setID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return errors.NotFound("Set not found", err)
		}
		return err
	}

	if err := s.repository.DeleteCascade(ctx, setID); err != nil {
		return err
	}

	s.bumpWorkVersion(ctx, set.WorkID)

	// the stored PDF lives in the external document store; purge it off the
	// request path
	if s.pool != nil && set.DocumentURL != "" {
		s.pool.Submit(func(taskCtx context.Context) error {
			taskCtx, cancel := context.WithTimeout(taskCtx, 5*time.Second)
			defer cancel()
			return s.attachments.DeleteSetDocument(taskCtx, setID)
		})
	}

	return nil
}

// SetDocumentURL records (or clears) the opaque reference to the uploaded
// document. The file itself lives in the external store; this is the callback
// target it hits after an upload completes.
func (s *DefaultService) SetDocumentURL(ctx context.Context, setID uint64, url string) (*domain.AlignerSet, error) {
	set, err := s.repository.FindByID(ctx, setID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Set not found", err)
		}
		return nil, err
	}

	set.DocumentURL = url
	if err := s.repository.Update(ctx, set); err != nil {
		return nil, err
	}

	s.bumpWorkVersion(ctx, set.WorkID)
	return set, nil
}

// GetDocumentInfo proxies document metadata from the external store for the
// set's stored reference
func (s *DefaultService) GetDocumentInfo(ctx context.Context, setID uint64) (*attachments.DocumentInfo, error) {
	set, err := s.repository.FindByID(ctx, setID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Set not found", err)
		}
		return nil, err
	}

	if set.DocumentURL == "" {
		return nil, errors.NotFound("Set has no document", nil)
	}

	return s.attachments.FetchDocumentInfo(ctx, setID)
}

// Progress is the delivered-aligner projection of a set
type Progress struct {
	Delivered      uint `json:"delivered"`
	RemainingUpper uint `json:"remaining_upper"`
	RemainingLower uint `json:"remaining_lower"`
	Percent        int  `json:"progress_percent"`
}

// ComputeProgress derives delivery progress from the delivered batches.
// A set with zero aligners reports 0%.
func ComputeProgress(set *domain.AlignerSet, batches []domain.Batch) Progress {
	var deliveredUpper, deliveredLower uint
	for i := range batches {
		if batches[i].Delivered() {
			deliveredUpper += batches[i].UpperCount
			deliveredLower += batches[i].LowerCount
		}
	}

	remainingUpper := clampedRemainder(set.UpperAlignersCount, deliveredUpper)
	remainingLower := clampedRemainder(set.LowerAlignersCount, deliveredLower)

	total := set.TotalAligners()
	delivered := total - (remainingUpper + remainingLower)

	percent := 0
	if total > 0 {
		percent = int(math.Round(100 * float64(delivered) / float64(total)))
	}

	return Progress{
		Delivered:      delivered,
		RemainingUpper: remainingUpper,
		RemainingLower: remainingLower,
		Percent:        percent,
	}
}

func clampedRemainder(total, delivered uint) uint {
	if delivered >= total {
		return 0
	}
	return total - delivered
}

// BatchView is a batch plus its derived range/readiness fields, computed per
// read and never persisted
type BatchView struct {
	domain.Batch
	UpperEnd      uint       `json:"upper_end"`
	LowerEnd      uint       `json:"lower_end"`
	NextReadyDate *time.Time `json:"next_ready_date"`
	IsFinal       bool       `json:"is_final"`
}

type UnreadCounts struct {
	Lab    int64 `json:"lab"`
	Doctor int64 `json:"doctor"`
}

type SetDetailResponse struct {
	Set            domain.AlignerSet `json:"set"`
	Batches        []BatchView       `json:"batches"`
	LabStatus      labstatus.Status  `json:"lab_status"`
	NextBatchReady bool              `json:"next_batch_ready"`
	Progress       Progress          `json:"progress"`
	Balance        payment.Balance   `json:"balance"`
	Unread         UnreadCounts      `json:"unread"`
}

func (s *DefaultService) GetSet(ctx context.Context, setID uint64) (*SetDetailResponse, error) {
	set, err := s.repository.FindByID(ctx, setID)
	if err != nil {
		if defError.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("Set not found", err)
		}
		return nil, err
	}

	batches, err := s.batches.ListBySet(ctx, setID)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.ListBySet(ctx, setID)
	if err != nil {
		return nil, err
	}

	unreadLab, err := s.unread.UnreadCountForSet(ctx, setID, domain.AuthorLab)
	if err != nil {
		return nil, err
	}
	unreadDoctor, err := s.unread.UnreadCountForSet(ctx, setID, domain.AuthorDoctor)
	if err != nil {
		return nil, err
	}

	views := make([]BatchView, 0, len(batches))
	for i := range batches {
		b := batches[i]
		views = append(views, BatchView{
			Batch:         b,
			UpperEnd:      b.UpperEnd(),
			LowerEnd:      b.LowerEnd(),
			NextReadyDate: b.NextReadyDate(),
			IsFinal:       labstatus.IsFinal(&b),
		})
	}

	return &SetDetailResponse{
		Set:            *set,
		Batches:        views,
		LabStatus:      labstatus.Derive(batches),
		NextBatchReady: labstatus.NextBatchReady(batches),
		Progress:       ComputeProgress(set, batches),
		Balance:        payment.ComputeBalance(set, payments),
		Unread:         UnreadCounts{Lab: unreadLab, Doctor: unreadDoctor},
	}, nil
}

// SetSummary is the list-view projection of a set
type SetSummary struct {
	Set            domain.AlignerSet `json:"set"`
	LabStatus      labstatus.Status  `json:"lab_status"`
	NextBatchReady bool              `json:"next_batch_ready"`
	Progress       Progress          `json:"progress"`
	PaymentStatus  string            `json:"payment_status"`
	UnreadForLab   int64             `json:"unread_for_lab"`
}

func (s *DefaultService) ListSetsForWork(ctx context.Context, workID uint64) ([]SetSummary, error) {
	// Versioned cache: any mutation on the work's sets bumps the version
	versionKey := fmt.Sprintf("work:%d:sets:version", workID)
	v := s.cache.GetVersion(ctx, versionKey)
	cacheKey := fmt.Sprintf("sets:w:%d:v:%d", workID, v)

	var cached []SetSummary
	found, _ := s.cache.Get(ctx, cacheKey, &cached)
	if found {
		return cached, nil
	}

	sets, err := s.repository.ListByWork(ctx, workID)
	if err != nil {
		return nil, err
	}

	summaries := make([]SetSummary, 0, len(sets))
	for i := range sets {
		set := sets[i]

		batches, err := s.batches.ListBySet(ctx, set.ID)
		if err != nil {
			return nil, err
		}
		payments, err := s.payments.ListBySet(ctx, set.ID)
		if err != nil {
			return nil, err
		}
		unreadLab, err := s.unread.UnreadCountForSet(ctx, set.ID, domain.AuthorLab)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, SetSummary{
			Set:            set,
			LabStatus:      labstatus.Derive(batches),
			NextBatchReady: labstatus.NextBatchReady(batches),
			Progress:       ComputeProgress(&set, batches),
			PaymentStatus:  payment.ComputeBalance(&set, payments).Status,
			UnreadForLab:   unreadLab,
		})
	}

	// set value to cache
	go s.cache.Set(context.Background(), cacheKey, summaries, 24*time.Hour)

	return summaries, nil
}

func (s *DefaultService) bumpWorkVersion(ctx context.Context, workID uint64) {
	if s.cache == nil {
		return
	}
	versionKey := fmt.Sprintf("work:%d:sets:version", workID)
	s.cache.IncrementVersion(ctx, versionKey)
}
