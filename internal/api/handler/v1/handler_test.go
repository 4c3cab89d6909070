package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/happy2help/h2h-api/internal/api/handler/v1/response"
	"github.com/happy2help/h2h-api/internal/api/middleware"
	"github.com/happy2help/h2h-api/internal/domain"
	"github.com/happy2help/h2h-api/internal/pkg/jwthelper"
)

const signingKey = "handler-test-key"

func init() {
	gin.SetMode(gin.TestMode)
}

type stubUsers struct{}

func (stubUsers) GetUser(_ context.Context, id uint) (domain.User, error) {
	if id == 404 {
		return domain.User{}, domain.NotFoundError("user", id)
	}
	return domain.User{ID: id, Name: "Ada", CreditPoints: 7}, nil
}

func (stubUsers) ResolveActor(_ context.Context, userID uint) (domain.Actor, error) {
	if userID == 404 {
		return domain.Actor{}, domain.NotFoundError("user", userID)
	}
	return domain.Actor{UserID: userID, OrganisationIDs: []uint{9}}, nil
}

type stubEvents struct {
	gotActor domain.Actor
	gotInput domain.CreateEventInput
	err      error
}

func (s *stubEvents) CreateEvent(_ context.Context, actor domain.Actor, in domain.CreateEventInput) (domain.EventDetails, error) {
	s.gotActor, s.gotInput = actor, in
	if s.err != nil {
		return domain.EventDetails{}, s.err
	}
	return domain.EventDetails{
		Event: domain.Event{ID: 1, Name: in.Name, CreatorID: actor.UserID},
		Jobs:  []domain.Job{{ID: 2, EventID: 1, Name: in.Name, Status: domain.JobActive}},
	}, nil
}

func (s *stubEvents) UpdateEvent(_ context.Context, _ domain.Actor, id uint, patch domain.EventPatch) (domain.Event, error) {
	if s.err != nil {
		return domain.Event{}, s.err
	}
	return domain.Event{ID: id, Name: *patch.Name}, nil
}

func (s *stubEvents) DeleteEvent(_ context.Context, _ domain.Actor, _ uint) error {
	return s.err
}

func (s *stubEvents) GetEvent(_ context.Context, id uint) (domain.EventDetails, error) {
	if s.err != nil {
		return domain.EventDetails{}, s.err
	}
	return domain.EventDetails{Event: domain.Event{ID: id}}, nil
}

type stubParticipations struct {
	gotTarget domain.ParticipationState
	err       error
}

func (s *stubParticipations) CreateParticipation(_ context.Context, actor domain.Actor, jobID uint) (domain.Participation, error) {
	if s.err != nil {
		return domain.Participation{}, s.err
	}
	return domain.Participation{ID: 5, JobID: jobID, UserID: actor.UserID, State: domain.StateApplied}, nil
}

func (s *stubParticipations) UpdateParticipationState(_ context.Context, _ domain.Actor, id uint, target domain.ParticipationState) (domain.Participation, error) {
	s.gotTarget = target
	if s.err != nil {
		return domain.Participation{}, s.err
	}
	return domain.Participation{ID: id, State: target}, nil
}

func (s *stubParticipations) GetParticipation(_ context.Context, id uint) (domain.Participation, error) {
	return domain.Participation{ID: id}, s.err
}

func (s *stubParticipations) ListParticipations(_ context.Context, _ uint) ([]domain.Participation, error) {
	return nil, s.err
}

type stubJobs struct {
	gotIncludeDeleted bool
	err               error
}

func (s *stubJobs) CreateJob(_ context.Context, _ domain.Actor, eventID uint, spec domain.JobSpec) (domain.Job, error) {
	return domain.Job{ID: 3, EventID: eventID, Name: spec.Name, TotalPositions: spec.TotalPositions}, s.err
}

func (s *stubJobs) UpdateJob(_ context.Context, _ domain.Actor, jobID uint, _ domain.JobPatch) (domain.Job, error) {
	return domain.Job{ID: jobID}, s.err
}

func (s *stubJobs) DeleteJob(_ context.Context, _ domain.Actor, _ uint) error {
	return s.err
}

func (s *stubJobs) GetJob(_ context.Context, id uint, includeDeleted bool) (domain.Job, error) {
	s.gotIncludeDeleted = includeDeleted
	return domain.Job{ID: id}, s.err
}

func (s *stubJobs) ListJobs(_ context.Context, _ uint, includeDeleted bool) ([]domain.Job, error) {
	s.gotIncludeDeleted = includeDeleted
	return []domain.Job{}, s.err
}

func (s *stubJobs) Capacity(_ context.Context, _ uint) (domain.Capacity, error) {
	total := 3
	return domain.Capacity{Total: &total, Occupied: 1}, s.err
}

func newRouter(events EventService, jobs JobService, participations ParticipationService) *gin.Engine {
	r := gin.New()
	api := r.Group("/api/v1", middleware.NewAuthenticator(signingKey).VerifyJWT())

	users := NewUserHandler(stubUsers{})
	api.GET("/users/me", users.HandleGetMe)

	eh := NewEventHandler(events, stubUsers{})
	api.POST("/events", eh.HandleCreateEvent)
	api.GET("/events/:eventID", eh.HandleGetEvent)
	api.PATCH("/events/:eventID", eh.HandleUpdateEvent)
	api.DELETE("/events/:eventID", eh.HandleDeleteEvent)

	jh := NewJobHandler(jobs, stubUsers{})
	api.GET("/events/:eventID/jobs", jh.HandleListJobs)
	api.POST("/events/:eventID/jobs", jh.HandleCreateJob)
	api.GET("/jobs/:jobID", jh.HandleGetJob)
	api.GET("/jobs/:jobID/capacity", jh.HandleGetCapacity)
	api.DELETE("/jobs/:jobID", jh.HandleDeleteJob)

	ph := NewParticipationHandler(participations, stubUsers{})
	api.POST("/jobs/:jobID/participations", ph.HandleApply)
	api.PATCH("/participations/:participationID", ph.HandleUpdateState)

	r.GET("/", HandleHealthcheck)

	return r
}

func do(t *testing.T, r http.Handler, method, path string, userID uint, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != 0 {
		token, err := jwthelper.GenerateToken([]byte(signingKey), userID, "test")
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeErr(t *testing.T, w *httptest.ResponseRecorder) response.Err {
	t.Helper()

	var e response.Err
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e))
	return e
}

func TestHealthcheck(t *testing.T) {
	w := do(t, newRouter(&stubEvents{}, &stubJobs{}, &stubParticipations{}), http.MethodGet, "/", 0, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRequired(t *testing.T) {
	r := newRouter(&stubEvents{}, &stubJobs{}, &stubParticipations{})

	w := do(t, r, http.MethodGet, "/api/v1/users/me", 0, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, r, http.MethodPost, "/api/v1/jobs/1/participations", 404, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetMe(t *testing.T) {
	w := do(t, newRouter(&stubEvents{}, &stubJobs{}, &stubParticipations{}), http.MethodGet, "/api/v1/users/me", 12, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var user domain.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, uint(12), user.ID)
	assert.Equal(t, 7, user.CreditPoints)
}

func TestCreateEvent(t *testing.T) {
	events := &stubEvents{}
	r := newRouter(events, &stubJobs{}, &stubParticipations{})
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	w := do(t, r, http.MethodPost, "/api/v1/events", 12, map[string]any{
		"name":  "Beach cleanup",
		"start": start,
		"end":   start.Add(3 * time.Hour),
		"location": map[string]any{
			"name": "Pier 4", "latitude": 43.29, "longitude": 5.37,
		},
		"jobs": []map[string]any{
			{"name": "Driver", "total_positions": 2, "required_skills": []string{"Driving licence"}},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Equal(t, uint(12), events.gotActor.UserID)
	assert.Equal(t, []uint{9}, events.gotActor.OrganisationIDs)
	assert.Equal(t, "Pier 4", events.gotInput.Location.Name)
	require.Len(t, events.gotInput.Jobs, 1)
	assert.Equal(t, []string{"Driving licence"}, events.gotInput.Jobs[0].RequiredSkills)

	var details domain.EventDetails
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &details))
	assert.Equal(t, "Beach cleanup", details.Event.Name)
}

func TestCreateEventRejectsInvalidRequests(t *testing.T) {
	r := newRouter(&stubEvents{}, &stubJobs{}, &stubParticipations{})
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := map[string]map[string]any{
		"missing name":   {"start": start, "end": start},
		"missing start":  {"name": "x", "end": start},
		"both locations": {"name": "x", "start": start, "end": start, "location_id": 3, "location": map[string]any{"name": "y"}},
		"bad latitude":   {"name": "x", "start": start, "end": start, "location": map[string]any{"name": "y", "latitude": 91}},
		"bad skill":      {"name": "x", "start": start, "end": start, "jobs": []map[string]any{{"name": "a", "required_skills": []string{" padded"}}}},
		"negative slots": {"name": "x", "start": start, "end": start, "jobs": []map[string]any{{"name": "a", "total_positions": -1}}},
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/v1/events", 12, body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestDomainErrorsMapToStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{domain.Unauthorized(domain.ActionUpdateEvent, domain.RoleEventCreator), http.StatusForbidden},
		{domain.NotFoundError("event", 1), http.StatusNotFound},
		{domain.ErrInsufficientCredit, http.StatusPaymentRequired},
		{domain.ErrLocationInUse, http.StatusConflict},
		{domain.ErrInvalidTimeRange, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		r := newRouter(&stubEvents{err: tt.err}, &stubJobs{}, &stubParticipations{})
		w := do(t, r, http.MethodPatch, "/api/v1/events/1", 12, map[string]any{"name": "New"})
		assert.Equal(t, tt.status, w.Code, tt.err.Error())
	}

	r := newRouter(&stubEvents{err: domain.Unauthorized(domain.ActionDeleteEvent, domain.RoleOrganisationMember)}, &stubJobs{}, &stubParticipations{})
	e := decodeErr(t, do(t, r, http.MethodDelete, "/api/v1/events/1", 12, nil))
	assert.Equal(t, domain.CodeUnauthorized, e.Code)
	assert.Equal(t, string(domain.RoleOrganisationMember), e.Metadata["role"])

	r = newRouter(&stubEvents{err: context.Canceled}, &stubJobs{}, &stubParticipations{})
	e = decodeErr(t, do(t, r, http.MethodGet, "/api/v1/events/1", 12, nil))
	assert.Equal(t, "internal server error", e.ErrorMsg)
}

func TestInvalidPathID(t *testing.T) {
	r := newRouter(&stubEvents{}, &stubJobs{}, &stubParticipations{})

	for _, path := range []string{"/api/v1/events/abc", "/api/v1/events/0", "/api/v1/jobs/-1"} {
		w := do(t, r, http.MethodGet, path, 12, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestJobRoutes(t *testing.T) {
	jobs := &stubJobs{}
	r := newRouter(&stubEvents{}, jobs, &stubParticipations{})

	w := do(t, r, http.MethodGet, "/api/v1/jobs/3?include_deleted=true", 12, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, jobs.gotIncludeDeleted)

	w = do(t, r, http.MethodGet, "/api/v1/events/1/jobs", 12, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, jobs.gotIncludeDeleted)

	w = do(t, r, http.MethodGet, "/api/v1/events/1/jobs?include_deleted=maybe", 12, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, r, http.MethodGet, "/api/v1/jobs/3/capacity", 12, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var c response.CapacityResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	assert.Equal(t, 1, c.Occupied)
	assert.Equal(t, 2, c.Open)

	w = do(t, r, http.MethodPost, "/api/v1/events/1/jobs", 12, map[string]any{"name": "Cook", "total_positions": 4})
	assert.Equal(t, http.StatusCreated, w.Code)

	jobs.err = domain.ErrLastJobViolation
	w = do(t, r, http.MethodDelete, "/api/v1/jobs/3", 12, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	jobs.err = nil
	w = do(t, r, http.MethodDelete, "/api/v1/jobs/3", 12, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestParticipationRoutes(t *testing.T) {
	participations := &stubParticipations{}
	r := newRouter(&stubEvents{}, &stubJobs{}, participations)

	w := do(t, r, http.MethodPost, "/api/v1/jobs/3/participations", 12, nil)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, r, http.MethodPatch, "/api/v1/participations/5", 12, map[string]any{"state": 4})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StateAccepted, participations.gotTarget)

	w = do(t, r, http.MethodPatch, "/api/v1/participations/5", 12, map[string]any{"state": "canceled"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StateCanceled, participations.gotTarget)

	for _, state := range []any{0, 9, "finished"} {
		w = do(t, r, http.MethodPatch, "/api/v1/participations/5", 12, map[string]any{"state": state})
		assert.Equal(t, http.StatusBadRequest, w.Code, state)
	}

	participations.err = domain.CapacityExceeded(3, domain.Capacity{Occupied: 1})
	w = do(t, r, http.MethodPatch, "/api/v1/participations/5", 12, map[string]any{"state": 4})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, domain.CodeCapacityViolation, decodeErr(t, w).Code)

	participations.err = domain.ErrJobUnavailable
	w = do(t, r, http.MethodPost, "/api/v1/jobs/3/participations", 12, nil)
	assert.Equal(t, http.StatusGone, w.Code)
}
