package registry

import (
	"aligner-lab/internal/domain"
	apiErrors "aligner-lab/internal/errors"
	"aligner-lab/internal/middleware"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// mock implementation of the Service interface
type MockService struct {
	mock.Mock
}

func (m *MockService) ListDoctors(ctx context.Context, page, perPage int) ([]domain.Doctor, error) {
	args := m.Called(ctx, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Doctor), args.Error(1)
}

func (m *MockService) GetDoctorByID(ctx context.Context, id uint64) (*domain.Doctor, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Doctor), args.Error(1)
}

func (m *MockService) ListPatients(ctx context.Context, doctorID uint64) ([]domain.Patient, error) {
	args := m.Called(ctx, doctorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Patient), args.Error(1)
}

func (m *MockService) GetPatientByID(ctx context.Context, id uint64) (*domain.Patient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Patient), args.Error(1)
}

func (m *MockService) GetWorkByID(ctx context.Context, id uint64) (*domain.Work, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Work), args.Error(1)
}

func (m *MockService) ListWorksForPatient(ctx context.Context, patientID uint64) ([]domain.Work, error) {
	args := m.Called(ctx, patientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Work), args.Error(1)
}

func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.ErrorHandler())

	router.GET("/doctors", handler.ListDoctors)
	router.GET("/doctors/:id", handler.ShowDoctor)
	router.GET("/doctors/:id/patients", handler.ListDoctorPatients)
	router.GET("/patients/:id", handler.ShowPatient)
	router.GET("/patients/:id/works", handler.ListPatientWorks)
	return router
}

func TestListDoctors_DefaultPagination(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter(handler)

	mockService.On("ListDoctors", mock.Anything, 1, 10).Return([]domain.Doctor{
		{ID: 1, Name: "Dr. Amal", ClinicName: "Smile Clinic"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/doctors", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var resp []domain.Doctor
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
	assert.Equal(t, "Dr. Amal", resp[0].Name)
}

func TestListDoctors_PageParams(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter(handler)

	mockService.On("ListDoctors", mock.Anything, 3, 25).Return([]domain.Doctor{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/doctors?page=3&per_page=25", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	mockService.AssertExpectations(t)
}

func TestShowDoctor_NotFound(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter(handler)

	mockService.On("GetDoctorByID", mock.Anything, uint64(404)).
		Return(nil, apiErrors.NotFound("Doctor not found", nil))

	req := httptest.NewRequest(http.MethodGet, "/doctors/404", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestListPatientWorks(t *testing.T) {
	mockService := new(MockService)
	handler := NewHandler(mockService)
	router := setupRouter(handler)

	mockService.On("ListWorksForPatient", mock.Anything, uint64(7)).Return([]domain.Work{
		{ID: 12, PatientID: 7},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/patients/7/works", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var resp []domain.Work
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	assert.Len(t, resp, 1)
	assert.Equal(t, uint64(12), resp[0].ID)
}
