package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadplan/timetable-api/internal/dto"
	"github.com/acadplan/timetable-api/internal/models"
	appErrors "github.com/acadplan/timetable-api/pkg/errors"
	"github.com/acadplan/timetable-api/pkg/response"
)

type scheduleServiceMock struct {
	generateResp  *dto.GenerateScheduleResponse
	generateErr   error
	generateLevel int
	latestResp    *models.ScheduleVersion
	latestErr     error
	updateResp    *models.ScheduleVersion
	updateErr     error
	updateReq     dto.UpdateScheduleRequest
	deleteErr     error
	deletedID     string
	levels        []int
}

func (m *scheduleServiceMock) Generate(_ context.Context, req dto.GenerateScheduleRequest, _ *string) (*dto.GenerateScheduleResponse, error) {
	m.generateLevel = req.Level
	return m.generateResp, m.generateErr
}

func (m *scheduleServiceMock) Latest(_ context.Context, _ int) (*models.ScheduleVersion, error) {
	return m.latestResp, m.latestErr
}

func (m *scheduleServiceMock) Versions(_ context.Context, _ int) ([]dto.ScheduleVersionSummary, error) {
	return nil, nil
}

func (m *scheduleServiceMock) VersionByID(_ context.Context, _ string) (*models.ScheduleVersion, error) {
	return m.latestResp, m.latestErr
}

func (m *scheduleServiceMock) Update(_ context.Context, _ string, req dto.UpdateScheduleRequest, _ *string) (*models.ScheduleVersion, error) {
	m.updateReq = req
	return m.updateResp, m.updateErr
}

func (m *scheduleServiceMock) Delete(_ context.Context, id string, _ *string) error {
	m.deletedID = id
	return m.deleteErr
}

func (m *scheduleServiceMock) ActiveLevels(_ context.Context) ([]int, error) {
	return m.levels, nil
}

func performRequest(t *testing.T, handler gin.HandlerFunc, method, target string, params gin.Params, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, target, reader)
	require.NoError(t, err)
	c.Request = req
	c.Params = params
	handler(c)
	c.Writer.WriteHeaderNow()
	return w
}

func TestScheduleHandlerGenerate(t *testing.T) {
	mockSvc := &scheduleServiceMock{generateResp: &dto.GenerateScheduleResponse{
		Version: &models.ScheduleVersion{ID: "ver-1", Level: 1},
		State:   "done",
	}}
	handler := NewScheduleHandler(mockSvc, nil)

	w := performRequest(t, handler.Generate, http.MethodPost, "/schedules/generate/1",
		gin.Params{{Key: "level", Value: "1"}}, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, mockSvc.generateLevel)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Error)
}

func TestScheduleHandlerGenerateRejectsBadLevel(t *testing.T) {
	handler := NewScheduleHandler(&scheduleServiceMock{}, nil)

	w := performRequest(t, handler.Generate, http.MethodPost, "/schedules/generate/abc",
		gin.Params{{Key: "level", Value: "abc"}}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerLatestNotFound(t *testing.T) {
	mockSvc := &scheduleServiceMock{latestErr: appErrors.Clone(appErrors.ErrNotFound, "no schedule generated for this level yet")}
	handler := NewScheduleHandler(mockSvc, nil)

	w := performRequest(t, handler.Latest, http.MethodGet, "/schedules/3",
		gin.Params{{Key: "level", Value: "3"}}, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrNotFound.Code, envelope.Error.Code)
}

func TestScheduleHandlerUpdate(t *testing.T) {
	mockSvc := &scheduleServiceMock{updateResp: &models.ScheduleVersion{ID: "ver-1", Level: 1}}
	handler := NewScheduleHandler(mockSvc, nil)

	payload, err := json.Marshal(dto.UpdateScheduleRequest{
		Groups: map[string]models.GroupSchedule{"A": {StudentCount: 25}},
		Prompt: "shift labs to Thursday",
	})
	require.NoError(t, err)

	w := performRequest(t, handler.Update, http.MethodPut, "/schedules/versions/ver-1",
		gin.Params{{Key: "id", Value: "ver-1"}}, payload)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "shift labs to Thursday", mockSvc.updateReq.Prompt)
}

func TestScheduleHandlerUpdateInvalidBody(t *testing.T) {
	handler := NewScheduleHandler(&scheduleServiceMock{}, nil)

	w := performRequest(t, handler.Update, http.MethodPut, "/schedules/versions/ver-1",
		gin.Params{{Key: "id", Value: "ver-1"}}, []byte(`{"groups":`))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScheduleHandlerDelete(t *testing.T) {
	mockSvc := &scheduleServiceMock{}
	handler := NewScheduleHandler(mockSvc, nil)

	w := performRequest(t, handler.Delete, http.MethodDelete, "/schedules/versions/ver-1",
		gin.Params{{Key: "id", Value: "ver-1"}}, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "ver-1", mockSvc.deletedID)
}

func TestScheduleHandlerRegenerateWithoutQueue(t *testing.T) {
	handler := NewScheduleHandler(&scheduleServiceMock{levels: []int{1, 2}}, nil)

	w := performRequest(t, handler.Regenerate, http.MethodPost, "/schedules/regenerate", nil, nil)
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
}
