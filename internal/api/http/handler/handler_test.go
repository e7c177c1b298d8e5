package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equidadeplus/equidade_backend/internal/api/http/middleware"
	"github.com/equidadeplus/equidade_backend/internal/repo"
	"github.com/equidadeplus/equidade_backend/internal/service/evolution"
	"github.com/equidadeplus/equidade_backend/internal/service/fielderr"
	"github.com/equidadeplus/equidade_backend/internal/service/paging"
	"github.com/equidadeplus/equidade_backend/internal/service/profile"
	"github.com/equidadeplus/equidade_backend/internal/service/report"
	"github.com/equidadeplus/equidade_backend/internal/service/scope"
	"github.com/equidadeplus/equidade_backend/pkg/authorize"
)

// Only the methods a test calls are implemented; the embedded interface
// panics on anything else.
type fakeEvolutions struct {
	evolution.Service
	approveErr  error
	gotVersion  int
	gotFeedback string
}

func (f *fakeEvolutions) Approve(_ context.Context, _ authorize.Actor, id uuid.UUID, version int) (*repo.Evolution, error) {
	f.gotVersion = version
	if f.approveErr != nil {
		return nil, f.approveErr
	}
	return &repo.Evolution{ID: id, Version: version + 1}, nil
}

func (f *fakeEvolutions) RequestRevision(_ context.Context, _ authorize.Actor, id uuid.UUID, feedback string, _ int) (*repo.Evolution, error) {
	f.gotFeedback = feedback
	if feedback == "" {
		return nil, fielderr.Single("feedback", "is required")
	}
	return &repo.Evolution{ID: id}, nil
}

type fakeScope struct {
	scope.Service
	allowed uuid.UUID
}

func (f fakeScope) Switch(_ context.Context, _ *repo.Profile, unitID uuid.UUID) (*scope.View, error) {
	if unitID != f.allowed {
		return nil, scope.ErrUnitNotPermitted
	}
	return &scope.View{Current: &repo.Unit{ID: unitID}, Available: []*repo.Unit{{ID: unitID}}}, nil
}

type fakeReports struct {
	report.Service
	gotFrom time.Time
}

func (f *fakeReports) ExportXLSX(_ context.Context, _ authorize.Actor, from, _ time.Time, w io.Writer) error {
	f.gotFrom = from
	_, err := w.Write([]byte("PK"))
	return err
}

func (f *fakeReports) Dashboard(_ context.Context, _ authorize.Actor, from, _ time.Time) (*report.Dashboard, error) {
	f.gotFrom = from
	return &report.Dashboard{Appointments: []repo.StatusCount{}}, nil
}

type fakeProfiles struct {
	profile.Service
	gotFilter    profile.ListFilter
	gotProvision profile.ProvisionRequest
	gotUpdate    profile.UpdateRequest
}

func (f *fakeProfiles) List(_ context.Context, _ authorize.Actor, filter profile.ListFilter) (*paging.Result[*repo.Profile], error) {
	f.gotFilter = filter
	return &paging.Result[*repo.Profile]{Data: []*repo.Profile{}}, nil
}

func (f *fakeProfiles) Provision(_ context.Context, _ authorize.Actor, req profile.ProvisionRequest) (*repo.Profile, error) {
	f.gotProvision = req
	return &repo.Profile{ID: req.ID, Role: req.Role}, nil
}

func (f *fakeProfiles) Update(_ context.Context, _ authorize.Actor, id uuid.UUID, req profile.UpdateRequest) (*repo.Profile, error) {
	f.gotUpdate = req
	return &repo.Profile{ID: id}, nil
}

// stubActor plays the part of AuthRequired + LoadActor.
func stubActor(actor authorize.Actor) fiber.Handler {
	return func(c fiber.Ctx) error {
		middleware.SetActor(c, &repo.Profile{ID: actor.UserID, Role: actor.Role}, actor)
		return c.Next()
	}
}

func newTestApp(actor authorize.Actor) *fiber.App {
	app := fiber.New()
	app.Use(stubActor(actor))
	return app
}

type envelope struct {
	Data   json.RawMessage   `json:"data"`
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, fiber.TestConfig{Timeout: 5 * time.Second})
	require.NoError(t, err)

	var env envelope
	if resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSON || resp.Header.Get("Content-Type") == fiber.MIMEApplicationJSONCharsetUTF8 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	}
	return resp, env
}

var supervisor = authorize.Actor{UserID: uuid.New(), Role: authorize.RoleCoordinator}

func TestEvolutionApprove(t *testing.T) {
	id := uuid.New()
	path := "/evolutions/" + id.String() + "/approve"

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"approved", nil, fiber.StatusOK},
		{"own record", evolution.ErrSelfSupervision, fiber.StatusForbidden},
		{"lost the race", evolution.ErrConflict, fiber.StatusConflict},
		{"not pending", evolution.ErrInvalidTransition, fiber.StatusConflict},
		{"hidden", evolution.ErrNotFound, fiber.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeEvolutions{approveErr: tc.err}
			h := NewEvolutionHandler(svc, nil)
			app := newTestApp(supervisor)
			app.Post("/evolutions/:id/approve", h.Approve)

			resp, env := call(t, app, fiber.MethodPost, path, map[string]int{"version": 3})
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, 3, svc.gotVersion)
			if tc.err != nil {
				assert.Equal(t, tc.err.Error(), env.Error)
			}
		})
	}

	t.Run("empty body skips the version check", func(t *testing.T) {
		svc := &fakeEvolutions{}
		h := NewEvolutionHandler(svc, nil)
		app := newTestApp(supervisor)
		app.Post("/evolutions/:id/approve", h.Approve)

		resp, _ := call(t, app, fiber.MethodPost, path, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Zero(t, svc.gotVersion)
	})

	t.Run("bad id", func(t *testing.T) {
		h := NewEvolutionHandler(&fakeEvolutions{}, nil)
		app := newTestApp(supervisor)
		app.Post("/evolutions/:id/approve", h.Approve)

		resp, _ := call(t, app, fiber.MethodPost, "/evolutions/nope/approve", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestEvolutionRequestRevision_FieldErrors(t *testing.T) {
	h := NewEvolutionHandler(&fakeEvolutions{}, nil)
	app := newTestApp(supervisor)
	app.Post("/evolutions/:id/request-revision", h.RequestRevision)

	resp, env := call(t, app, fiber.MethodPost, "/evolutions/"+uuid.NewString()+"/request-revision", map[string]string{"feedback": ""})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "validation failed", env.Error)
	assert.Contains(t, env.Fields, "feedback")
}

func TestMeSwitch(t *testing.T) {
	unitID := uuid.New()
	h := NewMeHandler(nil, fakeScope{allowed: unitID})
	app := newTestApp(authorize.Actor{UserID: uuid.New(), Role: authorize.RoleTherapist})
	app.Put("/me/scope", h.Switch)

	resp, env := call(t, app, fiber.MethodPut, "/me/scope", map[string]string{"unit_id": unitID.String()})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var view scope.View
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.NotNil(t, view.Current)
	assert.Equal(t, unitID, view.Current.ID)

	resp, env = call(t, app, fiber.MethodPut, "/me/scope", map[string]string{"unit_id": uuid.NewString()})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, scope.ErrUnitNotPermitted.Error(), env.Error)

	resp, _ = call(t, app, fiber.MethodPut, "/me/scope", map[string]string{"unit_id": "x"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestReports(t *testing.T) {
	unitID := uuid.New()
	svc := &fakeReports{}
	h := NewReportHandler(svc)
	app := newTestApp(authorize.Actor{UserID: uuid.New(), Role: authorize.RoleCoordinator, UnitID: &unitID})
	app.Get("/reports/export", h.Export)
	app.Get("/reports/dashboard", h.Dashboard)

	resp, _ := call(t, app, fiber.MethodGet, "/reports/export?from=2026-03-01", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), svc.gotFrom)

	resp, env := call(t, app, fiber.MethodGet, "/reports/dashboard?to=yesterday", nil)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, env.Fields, "to")
}

func TestMissingActor(t *testing.T) {
	h := NewReportHandler(&fakeReports{})
	app := fiber.New()
	app.Get("/reports/dashboard", h.Dashboard)

	resp, _ := call(t, app, fiber.MethodGet, "/reports/dashboard", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestUserRoleParsing(t *testing.T) {
	admin := authorize.Actor{UserID: uuid.New(), Role: authorize.RoleAdmin}

	t.Run("list filter", func(t *testing.T) {
		svc := &fakeProfiles{}
		app := newTestApp(admin)
		app.Get("/users", NewUserHandler(svc).List)

		resp, _ := call(t, app, fiber.MethodGet, "/users?role=Coordinator", nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, authorize.RoleCoordinator, svc.gotFilter.Role)
	})

	t.Run("provision and update bodies", func(t *testing.T) {
		svc := &fakeProfiles{}
		app := newTestApp(admin)
		h := NewUserHandler(svc)
		app.Post("/users", h.Provision)
		app.Patch("/users/:id", h.Update)

		resp, _ := call(t, app, fiber.MethodPost, "/users", map[string]string{"id": uuid.NewString(), "role": " Intern "})
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Equal(t, authorize.RoleIntern, svc.gotProvision.Role)

		resp, _ = call(t, app, fiber.MethodPatch, "/users/"+uuid.NewString(), map[string]string{"role": "THERAPIST"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NotNil(t, svc.gotUpdate.Role)
		assert.Equal(t, authorize.RoleTherapist, *svc.gotUpdate.Role)
	})
}
