package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"partnerhub/internal/datastore"
	"partnerhub/internal/datastore/dbtest"
	"partnerhub/internal/interfaces"
	"partnerhub/internal/models"
	"partnerhub/internal/pkg/caching"
	"partnerhub/internal/services"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/limiter"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testAPI struct {
	t         *testing.T
	container *do.Injector
	db        *bun.DB
	handler   http.Handler
	user      *models.User
}

func newTestAPI(t *testing.T, rateLimit int) *testAPI {
	t.Helper()

	container := do.New()
	db := dbtest.New(t)
	do.ProvideValue(container, db)

	cache, err := caching.NewCacheRedis(nil, true)
	require.NoError(t, err)
	do.ProvideValue[caching.Cache](container, cache)
	do.ProvideValue[interfaces.Limiter](container, &fakeLimiter{budget: 2})
	services.Register(container)

	h, err := New(&Config{Container: container, RateLimitPerMinute: rateLimit})
	require.NoError(t, err)

	user, err := do.MustInvoke[*services.ServiceUser](container).CreateUser(context.Background(), "John Doe", "john@example.com", "password")
	require.NoError(t, err)

	return &testAPI{t: t, container: container, db: db, handler: h, user: user}
}

func (api *testAPI) token(abilities ...string) string {
	api.t.Helper()
	if len(abilities) == 0 {
		// a token may exist with no abilities at all
		token, plain, err := do.MustInvoke[*services.ServiceToken](api.container).CreateToken(context.Background(), api.user, "Empty", []string{models.AbilityViewPartners}, nil)
		require.NoError(api.t, err)
		_, err = api.db.NewUpdate().Model(token).Set("abilities = ?", "[]").WherePK().Exec(context.Background())
		require.NoError(api.t, err)
		return plain
	}

	_, plain, err := do.MustInvoke[*services.ServiceToken](api.container).CreateToken(context.Background(), api.user, "Test Token", abilities, nil)
	require.NoError(api.t, err)
	return plain
}

func (api *testAPI) seed(n int) []*models.Partner {
	api.t.Helper()
	service := do.MustInvoke[*services.ServicePartner](api.container)
	partners := make([]*models.Partner, 0, n)
	for i := 0; i < n; i++ {
		in, err := services.ValidatePartner(map[string]json.RawMessage{
			"name":        json.RawMessage(fmt.Sprintf(`"Partner %d"`, i+1)),
			"description": json.RawMessage(`"Test Description"`),
			"level":       json.RawMessage(`"platinum"`),
		})
		require.NoError(api.t, err)
		p, err := service.CreatePartner(context.Background(), in)
		require.NoError(api.t, err)
		partners = append(partners, p)
	}
	return partners
}

func (api *testAPI) do(method, target, token, body string) *httptest.ResponseRecorder {
	api.t.Helper()
	return api.doContent(method, target, token, "application/json", body)
}

func (api *testAPI) doContent(method, target, token, contentType, body string) *httptest.ResponseRecorder {
	api.t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", contentType)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	return rec
}

func (api *testAPI) partnerCount() int {
	api.t.Helper()
	count, err := datastore.CountPartners(context.Background(), api.db)
	require.NoError(api.t, err)
	return count
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

type fakeLimiter struct {
	budget int
}

func (l *fakeLimiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	if l.budget == 0 {
		return limiter.ErrRateLimited
	}
	l.budget--
	return nil
}

func TestUnauthenticatedRequestsAreRejected(t *testing.T) {
	api := newTestAPI(t, 0)
	partner := api.seed(1)[0]
	show := fmt.Sprintf("/api/partners/%d", partner.ID)

	requests := []struct{ method, target string }{
		{http.MethodGet, "/api/user"},
		{http.MethodGet, "/api/partners"},
		{http.MethodPost, "/api/partners"},
		{http.MethodGet, show},
		{http.MethodPut, show},
		{http.MethodDelete, show},
	}

	for _, token := range []string{"", "1|not-the-secret", "garbage"} {
		for _, r := range requests {
			rec := api.do(r.method, r.target, token, `{"name": "New Partner"}`)
			assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", r.method, r.target)
			assert.Equal(t, "Unauthenticated.", decode(t, rec)["message"])
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Authorization", "Basic am9objpwYXNz")
	rec := httptest.NewRecorder()
	api.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	assert.Equal(t, 1, api.partnerCount())
}

func TestGetUserReturnsTokenOwner(t *testing.T) {
	api := newTestAPI(t, 0)

	rec := api.do(http.MethodGet, "/api/user", api.token(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decode(t, rec)
	assert.Equal(t, float64(api.user.ID), body["id"])
	assert.Equal(t, "John Doe", body["name"])
	assert.Equal(t, "john@example.com", body["email"])
	assert.NotContains(t, body, "password")
}

func TestIndexPaginatesPartners(t *testing.T) {
	api := newTestAPI(t, 0)
	api.seed(20)
	token := api.token(models.AbilityViewPartners)

	rec := api.do(http.MethodGet, "/api/partners", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)

	data := body["data"].([]any)
	assert.Len(t, data, 15)
	first := data[0].(map[string]any)
	for _, key := range []string{"id", "name", "description", "website", "is_featured", "level", "image", "location", "specialties", "created_at", "updated_at"} {
		assert.Contains(t, first, key)
	}
	assert.Equal(t, "Partner 1", first["name"])

	links := body["links"].(map[string]any)
	assert.Equal(t, "http://example.com/api/partners?page=1", links["first"])
	assert.Equal(t, "http://example.com/api/partners?page=2", links["next"])
	assert.Nil(t, links["prev"])

	meta := body["meta"].(map[string]any)
	assert.Equal(t, float64(1), meta["current_page"])
	assert.Equal(t, float64(15), meta["per_page"])
	assert.Equal(t, float64(2), meta["last_page"])
	assert.Equal(t, float64(20), meta["total"])
	assert.Equal(t, float64(1), meta["from"])
	assert.Equal(t, float64(15), meta["to"])

	rec = api.do(http.MethodGet, "/api/partners?page=2", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 5)

	rec = api.do(http.MethodGet, "/api/partners?page=1&per_page=20", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Len(t, body["data"], 20)
	assert.Equal(t, "http://example.com/api/partners?page=1&per_page=20", body["links"].(map[string]any)["last"])

	rec = api.do(http.MethodGet, "/api/partners?page=9", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body = decode(t, rec)
	assert.Empty(t, body["data"])
	assert.Nil(t, body["meta"].(map[string]any)["from"])
}

func TestReadsRequireViewAbility(t *testing.T) {
	api := newTestAPI(t, 0)
	partner := api.seed(1)[0]

	for _, token := range []string{api.token(), api.token(models.AbilityEditPartners)} {
		rec := api.do(http.MethodGet, "/api/partners", token, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Invalid ability provided.", decode(t, rec)["message"])

		rec = api.do(http.MethodGet, fmt.Sprintf("/api/partners/%d", partner.ID), token, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	}
}

func TestWritesRequireEditAbility(t *testing.T) {
	api := newTestAPI(t, 0)
	partner := api.seed(1)[0]
	target := fmt.Sprintf("/api/partners/%d", partner.ID)

	for _, token := range []string{api.token(), api.token(models.AbilityViewPartners)} {
		assert.Equal(t, http.StatusForbidden, api.do(http.MethodPost, "/api/partners", token, `{"name": "New Partner"}`).Code)
		assert.Equal(t, http.StatusForbidden, api.do(http.MethodPut, target, token, `{"name": "Updated Name"}`).Code)
		assert.Equal(t, http.StatusForbidden, api.do(http.MethodPatch, target, token, `{"name": "Updated Name"}`).Code)
		assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, target, token, "").Code)
	}

	assert.Equal(t, 1, api.partnerCount())
	stored, err := datastore.FindPartnerByID(context.Background(), api.db, partner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Partner 1", stored.Name)
}

func TestCreatePartner(t *testing.T) {
	api := newTestAPI(t, 0)
	token := api.token(models.AbilityEditPartners, models.AbilityViewPartners)

	rec := api.do(http.MethodPost, "/api/partners", token, `{
		"name": "New Partner",
		"website": "https://partner.test",
		"is_featured": true,
		"level": "diamond",
		"specialties": ["go", "sql"]
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "New Partner", data["name"])
	assert.Equal(t, true, data["is_featured"])
	assert.Equal(t, "diamond", data["level"])
	assert.Nil(t, data["description"])
	assert.Equal(t, 1, api.partnerCount())

	rec = api.do(http.MethodGet, fmt.Sprintf("/api/partners/%v", data["id"]), token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	fetched := decode(t, rec)["data"].(map[string]any)
	for _, key := range []string{"id", "name", "website", "is_featured", "level", "specialties"} {
		assert.Equal(t, data[key], fetched[key], key)
	}
}

func TestCreatePartnerValidation(t *testing.T) {
	api := newTestAPI(t, 0)
	token := api.token(models.AbilityEditPartners)

	for _, body := range []string{"", `{}`, `{"description": "no name"}`} {
		rec := api.do(http.MethodPost, "/api/partners", token, body)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		resp := decode(t, rec)
		assert.Equal(t, "The name field is required.", resp["message"])
		assert.Equal(t, []any{"The name field is required."}, resp["errors"].(map[string]any)["name"])
	}

	rec := api.do(http.MethodPost, "/api/partners", token, `{"name": "x", "website": "nope", "specialties": [1]}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "The website field must be a valid URL. (and 1 more error)", resp["message"])
	assert.Contains(t, resp["errors"], "specialties.0")

	for _, body := range []string{`{"name":`, `{"name":"x"}garbage`, `{"name":"x"}{"name":"y"}`, `["x"]`} {
		rec = api.do(http.MethodPost, "/api/partners", token, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Malformed JSON body.", decode(t, rec)["message"])
	}

	assert.Zero(t, api.partnerCount())
}

func TestCreatePartnerFromForm(t *testing.T) {
	api := newTestAPI(t, 0)
	token := api.token(models.AbilityEditPartners)

	rec := api.doContent(http.MethodPost, "/api/partners", token, "application/x-www-form-urlencoded",
		"name=Form+Partner&is_featured=1&level=silver&specialties[]=go&specialties[]=sql")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Form Partner", data["name"])
	assert.Equal(t, true, data["is_featured"])
	assert.Equal(t, "silver", data["level"])
	assert.Equal(t, []any{"go", "sql"}, data["specialties"])

	rec = api.doContent(http.MethodPost, "/api/partners", token, "application/x-www-form-urlencoded", "website=nope")
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode(t, rec)["errors"], "name")

	assert.Equal(t, 1, api.partnerCount())
}

func TestShowPartner(t *testing.T) {
	api := newTestAPI(t, 0)
	partner := api.seed(1)[0]
	token := api.token(models.AbilityViewPartners)

	rec := api.do(http.MethodGet, fmt.Sprintf("/api/partners/%d", partner.ID), token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, float64(partner.ID), data["id"])
	assert.Equal(t, "Partner 1", data["name"])
	assert.Equal(t, "Test Description", data["description"])

	for _, target := range []string{"/api/partners/999", "/api/partners/abc", "/api/partners/0"} {
		rec = api.do(http.MethodGet, target, token, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.Equal(t, "Partner not found.", decode(t, rec)["message"])
	}
}

func TestUpdatePartner(t *testing.T) {
	api := newTestAPI(t, 0)
	partner := api.seed(1)[0]
	token := api.token(models.AbilityEditPartners)
	target := fmt.Sprintf("/api/partners/%d", partner.ID)

	rec := api.do(http.MethodPut, target, token, `{"name": "Updated Name"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "Updated Name", data["name"])
	assert.Equal(t, "Test Description", data["description"])

	rec = api.do(http.MethodPatch, target, token, `{"name": "Patched", "description": null}`)
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := datastore.FindPartnerByID(context.Background(), api.db, partner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Patched", stored.Name)
	assert.Nil(t, stored.Description)

	rec = api.do(http.MethodPut, target, token, `{"description": "no name"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = api.do(http.MethodPut, "/api/partners/999", token, `{"name": "Ghost"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	stored, err = datastore.FindPartnerByID(context.Background(), api.db, partner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Patched", stored.Name)
}

func TestDeletePartner(t *testing.T) {
	api := newTestAPI(t, 0)
	partner := api.seed(1)[0]
	token := api.token(models.AbilityAll)
	target := fmt.Sprintf("/api/partners/%d", partner.ID)

	require.Equal(t, http.StatusOK, api.do(http.MethodGet, target, token, "").Code)

	rec := api.do(http.MethodDelete, target, token, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Zero(t, api.partnerCount())

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, target, token, "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodDelete, target, token, "").Code)
}

func TestThrottle(t *testing.T) {
	api := newTestAPI(t, 60)
	token := api.token(models.AbilityViewPartners)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/partners", token, "").Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, "/api/partners", token, "").Code)

	rec := api.do(http.MethodGet, "/api/partners", token, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Too Many Attempts.", decode(t, rec)["message"])
}

func TestRenderError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{errorx.Wrap(services.ErrUnauthenticated, errorx.Authn), http.StatusUnauthorized, "Unauthenticated."},
		{errorx.Wrap(services.ErrForbidden, errorx.Authz), http.StatusForbidden, "Invalid ability provided."},
		{fmt.Errorf("show: %w", errorx.Wrap(services.ErrPartnerNotFound, errorx.NotExist)), http.StatusNotFound, "Partner not found."},
		{errorx.Wrap(sql.ErrNoRows, errorx.Database), http.StatusNotFound, "not found"},
		{limiter.ErrRateLimited, http.StatusTooManyRequests, "Too Many Attempts."},
		{errorx.Wrap(errors.New("connection refused"), errorx.Database), http.StatusInternalServerError, "Server Error"},
		{errors.New("boom"), http.StatusInternalServerError, "Server Error"},
		{echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, "Method Not Allowed"},
	}

	for _, tc := range cases {
		status, body := renderError(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.message, body.Message, tc.err.Error())
		assert.Nil(t, body.Errors)
	}
}

func TestUnknownRoute(t *testing.T) {
	api := newTestAPI(t, 0)

	rec := api.do(http.MethodGet, "/api/nothing-here", api.token(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", decode(t, rec)["message"])
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer   abc "))
	assert.Equal(t, "1|x", bearerToken("Bearer 1|x"))
	assert.Empty(t, bearerToken("Bearer"))
	assert.Empty(t, bearerToken("Basic abc"))
	assert.Empty(t, bearerToken(""))
}
