package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trailpine/campground/internal/app"
	"github.com/trailpine/campground/internal/middleware"
)

func newTestServer(t *testing.T) (http.Handler, *app.Application) {
	t.Helper()
	application := app.New(app.Stores{}, app.Options{
		SessionIdleTTL:     time.Hour,
		SessionMaxLifetime: 24 * time.Hour,
	}, nil)
	auth := middleware.NewAuth(application.Sessions, "test_session", false, "test-secret", time.Hour, nil)
	return NewHandler(Config{App: application, Auth: auth}), application
}

func doJSON(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Accept", "application/json")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func registerAndToken(t *testing.T, h http.Handler, username string) string {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"email":%q,"password":"password123"}`, username, username+"@example.com")
	rec := doJSON(t, h, http.MethodPost, "/register", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func createCampground(t *testing.T, h http.Handler, token string) string {
	t.Helper()
	body := `{"title":"Forest Creek","description":"Shady sites by the water","price":25.5,"location":"Bend, Oregon"}`
	rec := doJSON(t, h, http.MethodPost, "/campgrounds", token, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	return created.ID
}

func TestHealthz(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateAndShowCampground(t *testing.T) {
	h, _ := newTestServer(t)
	token := registerAndToken(t, h, "camper")
	id := createCampground(t, h, token)

	rec := doJSON(t, h, http.MethodGet, "/campgrounds/"+id, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		Campground struct {
			Title   string `json:"title"`
			OwnerID string `json:"owner_id"`
		}
		Owner struct {
			Username string `json:"username"`
		}
		Reviews []json.RawMessage
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.Equal(t, "Forest Creek", detail.Campground.Title)
	assert.Equal(t, "camper", detail.Owner.Username)
	assert.Empty(t, detail.Reviews)
}

func TestCreateCampgroundRequiresAuth(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/campgrounds", "", `{"title":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateCampgroundInvalidPayload(t *testing.T) {
	h, _ := newTestServer(t)
	token := registerAndToken(t, h, "camper")

	rec := doJSON(t, h, http.MethodPost, "/campgrounds", token, `{"title":"","price":-1}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "title")
	assert.Contains(t, resp.Error, "price")

	list := doJSON(t, h, http.MethodGet, "/campgrounds", "", "")
	assert.NotContains(t, list.Body.String(), `"id"`)
}

func TestUpdateCampgroundForbiddenForNonOwner(t *testing.T) {
	h, _ := newTestServer(t)
	owner := registerAndToken(t, h, "owner")
	intruder := registerAndToken(t, h, "intruder")
	id := createCampground(t, h, owner)

	body := `{"title":"Stolen","description":"x","price":1,"location":"y"}`
	rec := doJSON(t, h, http.MethodPut, "/campgrounds/"+id, intruder, body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	show := doJSON(t, h, http.MethodGet, "/campgrounds/"+id, "", "")
	assert.Contains(t, show.Body.String(), "Forest Creek")
}

func TestReviewLifecycle(t *testing.T) {
	h, _ := newTestServer(t)
	owner := registerAndToken(t, h, "owner")
	reviewer := registerAndToken(t, h, "reviewer")
	id := createCampground(t, h, owner)

	rec := doJSON(t, h, http.MethodPost, "/campgrounds/"+id+"/reviews", reviewer, `{"body":"Great spot","rating":5}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	show := doJSON(t, h, http.MethodGet, "/campgrounds/"+id, "", "")
	assert.Contains(t, show.Body.String(), "Great spot")
	assert.Contains(t, show.Body.String(), "reviewer")

	// Only the author may delete.
	denied := doJSON(t, h, http.MethodDelete, "/campgrounds/"+id+"/reviews/"+created.ID, owner, "")
	assert.Equal(t, http.StatusForbidden, denied.Code)

	deleted := doJSON(t, h, http.MethodDelete, "/campgrounds/"+id+"/reviews/"+created.ID, reviewer, "")
	require.Equal(t, http.StatusNoContent, deleted.Code)

	show = doJSON(t, h, http.MethodGet, "/campgrounds/"+id, "", "")
	assert.NotContains(t, show.Body.String(), "Great spot")
}

func TestReviewInvalidRating(t *testing.T) {
	h, _ := newTestServer(t)
	owner := registerAndToken(t, h, "owner")
	id := createCampground(t, h, owner)

	for _, rating := range []int{0, 6} {
		body := fmt.Sprintf(`{"body":"meh","rating":%d}`, rating)
		rec := doJSON(t, h, http.MethodPost, "/campgrounds/"+id+"/reviews", owner, body)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "rating %d", rating)
	}

	show := doJSON(t, h, http.MethodGet, "/campgrounds/"+id, "", "")
	assert.NotContains(t, show.Body.String(), "meh")
}

func TestDeleteCampgroundCascadesReviews(t *testing.T) {
	h, application := newTestServer(t)
	owner := registerAndToken(t, h, "owner")
	id := createCampground(t, h, owner)

	var reviewIDs []string
	for i := 0; i < 3; i++ {
		body := fmt.Sprintf(`{"body":"visit %d","rating":4}`, i)
		rec := doJSON(t, h, http.MethodPost, "/campgrounds/"+id+"/reviews", owner, body)
		require.Equal(t, http.StatusCreated, rec.Code)
		var created struct {
			ID string `json:"id"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		reviewIDs = append(reviewIDs, created.ID)
	}

	rec := doJSON(t, h, http.MethodDelete, "/campgrounds/"+id, owner, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	show := doJSON(t, h, http.MethodGet, "/campgrounds/"+id, "", "")
	assert.Equal(t, http.StatusNotFound, show.Code)

	for _, rid := range reviewIDs {
		_, err := application.Reviews.Get(context.Background(), rid)
		assert.Error(t, err, "review %s survived the cascade", rid)
	}
}

func TestShowUnknownCampgroundRedirectsBrowser(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/campgrounds/nope", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/campgrounds", rec.Header().Get("Location"))
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := newTestServer(t)
	registerAndToken(t, h, "camper")

	rec := doJSON(t, h, http.MethodPost, "/login", "", `{"username":"camper","password":"wrong-password"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "Invalid username or password")
}

func TestBrowserFormFlow(t *testing.T) {
	h, _ := newTestServer(t)

	form := url.Values{
		"username": {"camper"},
		"email":    {"camper@example.com"},
		"password": {"password123"},
	}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/campgrounds", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	session := cookies[len(cookies)-1]

	// The welcome flash shows once, then clears.
	page := browserGet(t, h, "/campgrounds", session)
	assert.Contains(t, page.Body.String(), "Welcome to Campground!")
	page = browserGet(t, h, "/campgrounds", session)
	assert.NotContains(t, page.Body.String(), "Welcome to Campground!")

	// Create a listing through the HTML form.
	create := url.Values{
		"campground[title]":       {"River Bend"},
		"campground[description]": {"Right on the water"},
		"campground[price]":       {"30"},
		"campground[location]":    {"Missoula, Montana"},
	}
	req = httptest.NewRequest(http.MethodPost, "/campgrounds", strings.NewReader(create.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/campgrounds/"), "redirected to %s", location)

	page = browserGet(t, h, location, session)
	assert.Contains(t, page.Body.String(), "Successfully made a new campground!")
	assert.Contains(t, page.Body.String(), "River Bend")

	// Delete through the _method override form.
	req = httptest.NewRequest(http.MethodPost, location+"?_method=DELETE", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/campgrounds", rec.Header().Get("Location"))

	page = browserGet(t, h, "/campgrounds", session)
	assert.NotContains(t, page.Body.String(), "River Bend")
}

func TestAnonymousRedirectedToLoginThenBack(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	session := cookies[0]

	// Register an account first so login can succeed, on a separate
	// client without the pending session.
	registerAndToken(t, h, "camper")

	form := url.Values{"username": {"camper"}, "password": {"password123"}}
	req = httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/campgrounds/new", rec.Header().Get("Location"))

	// Login rotated the token.
	rotated := rec.Result().Cookies()
	require.NotEmpty(t, rotated)
	assert.NotEqual(t, session.Value, rotated[len(rotated)-1].Value)
}

func TestLogoutClearsIdentity(t *testing.T) {
	h, _ := newTestServer(t)

	form := url.Values{
		"username": {"camper"},
		"email":    {"camper@example.com"},
		"password": {"password123"},
	}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	session := rec.Result().Cookies()[len(rec.Result().Cookies())-1]

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	// The old token no longer authenticates.
	req = httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil)
	req.AddCookie(session)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestUnknownRouteIsNotFound(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/no/such/page", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Page Not Found")
}

func browserGet(t *testing.T, h http.Handler, path string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
