package server

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"favefm/config"
	"favefm/core/auth"
	"favefm/core/discovery"
	"favefm/core/spotify"
	"favefm/model"

	"github.com/go-resty/resty/v2"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	users       map[string]*model.User
	nextID      int64
	createCalls int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{}, nextID: 1}
}

func (f *fakeUserRepo) CreateUser(username string) (int64, error) {
	f.createCalls++
	id := f.nextID
	f.nextID++
	f.users[username] = &model.User{ID: id, Username: username, CreatedAt: time.Now()}
	return id, nil
}

func (f *fakeUserRepo) FindUser(username string) (*model.User, error) {
	return f.users[username], nil
}

// fakeFavoriteRepo is an in-memory FavoriteArtistRepository.
type fakeFavoriteRepo struct {
	byUser map[string][]string
}

func newFakeFavoriteRepo() *fakeFavoriteRepo {
	return &fakeFavoriteRepo{byUser: map[string][]string{}}
}

func (f *fakeFavoriteRepo) ListFavorites(username string) ([]string, error) {
	return f.byUser[username], nil
}

func (f *fakeFavoriteRepo) ReplaceFavorites(username string, artistIDs []string) error {
	f.byUser[username] = append([]string(nil), artistIDs...)
	return nil
}

// fakeProvider validates against a fixed artist set.
type fakeProvider struct {
	validArtists map[string]bool
	tracks       []spotify.Track
	tokenErr     error
	tokenCalls   int
}

func (p *fakeProvider) Token(ctx context.Context) (string, error) {
	p.tokenCalls++
	if p.tokenErr != nil {
		return "", p.tokenErr
	}
	return "test-token", nil
}

func (p *fakeProvider) TopTracks(ctx context.Context, token, artistID string) ([]spotify.Track, error) {
	return p.tracks, nil
}

func (p *fakeProvider) CheckArtist(ctx context.Context, token, artistID string) (bool, error) {
	return p.validArtists[artistID], nil
}

type fakeLocator struct {
	link string
}

func (l *fakeLocator) LyricsLink(ctx context.Context, title string) (string, error) {
	return l.link, nil
}

type testEnv struct {
	users     *fakeUserRepo
	favorites *fakeFavoriteRepo
	provider  *fakeProvider
	sessions  *auth.SessionManager
	router    *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newFakeUserRepo()
	favorites := newFakeFavoriteRepo()
	provider := &fakeProvider{validArtists: map[string]bool{}}
	sessions := auth.NewSessionManager("test-secret", time.Hour)

	svc := discovery.NewService(favorites, provider, &fakeLocator{link: "https://genius.example/lyrics"}, rand.New(rand.NewSource(1)))

	handler, err := NewAPIHandler(users, svc, sessions, &config.Config{StaticDir: t.TempDir()})
	require.NoError(t, err)

	return &testEnv{
		users:     users,
		favorites: favorites,
		provider:  provider,
		sessions:  sessions,
		router:    NewRouter(handler),
	}
}

func (e *testEnv) sessionCookie(t *testing.T, username string) *http.Cookie {
	t.Helper()
	token, err := e.sessions.IssueToken(username)
	require.NoError(t, err)
	return e.sessions.SessionCookie(token)
}

func postForm(router *mux.Router, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSignupIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	form := url.Values{"username": {"alice"}}

	first := postForm(env.router, "/signup", form)
	assert.Equal(t, http.StatusFound, first.Code)
	assert.Equal(t, "/login", first.Header().Get("Location"))

	second := postForm(env.router, "/signup", form)
	assert.Equal(t, http.StatusFound, second.Code)
	assert.Equal(t, "/login", second.Header().Get("Location"), "an existing username still lands on login")

	assert.Equal(t, 1, env.users.createCalls, "signing up twice creates exactly one record")
	assert.Len(t, env.users.users, 1)
}

func TestLoginKnownUsernameEstablishesSession(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.CreateUser("alice")
	require.NoError(t, err)

	w := postForm(env.router, "/login", url.Values{"username": {"alice"}})

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/index", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestLoginUnknownUsername(t *testing.T) {
	env := newTestEnv(t)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	resp, err := resty.New().R().
		SetFormData(map[string]string{"username": "nobody"}).
		Post(srv.URL + "/login")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
	assert.JSONEq(t, `{"status":401,"reason":"Username or Password Error"}`, string(resp.Body()))
	assert.Empty(t, resp.Cookies(), "no session is established for an unknown username")
}

func TestSignoutClearsSession(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/signout", nil)
	req.AddCookie(env.sessionCookie(t, "alice"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.CookieName, cookies[0].Name)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestUnauthenticatedIndexRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/index", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestRootRedirects(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.CreateUser("alice")
	require.NoError(t, err)

	anonymous := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, anonymous)
	assert.Equal(t, "/login", w.Header().Get("Location"))

	authenticated := httptest.NewRequest(http.MethodGet, "/", nil)
	authenticated.AddCookie(env.sessionCookie(t, "alice"))
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, authenticated)
	assert.Equal(t, "/index", w.Header().Get("Location"))
}

func TestSessionForDeletedUserIsUnauthenticated(t *testing.T) {
	env := newTestEnv(t)

	// A signed cookie for a username with no user record behind it.
	req := httptest.NewRequest(http.MethodGet, "/index", nil)
	req.AddCookie(env.sessionCookie(t, "ghost"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestSaveReplacesFavorites(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.CreateUser("alice")
	require.NoError(t, err)
	env.favorites.byUser["alice"] = []string{"old"}
	env.provider.validArtists["B"] = true

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	resp, err := resty.New().R().
		SetCookie(env.sessionCookie(t, "alice")).
		SetHeader("Content-Type", "application/json").
		SetBody(`{"new_artist":["A","B","C"]}`).
		Post(srv.URL + "/save")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.JSONEq(t, `{"status":200,"reason":"Artist ID has been saved"}`, string(resp.Body()))
	assert.Equal(t, []string{"B"}, env.favorites.byUser["alice"])
}

func TestSaveAllInvalid(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.CreateUser("alice")
	require.NoError(t, err)
	env.favorites.byUser["alice"] = []string{"old1", "old2"}

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	resp, err := resty.New().R().
		SetCookie(env.sessionCookie(t, "alice")).
		SetHeader("Content-Type", "application/json").
		SetBody(`{"new_artist":["bogus"]}`).
		Post(srv.URL + "/save")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
	assert.JSONEq(t, `{"status":401,"reason":"Invalid artist ID entered"}`, string(resp.Body()))
	assert.Empty(t, env.favorites.byUser["alice"], "a failed save still clears the old favorites")
}

func TestSaveUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.CreateUser("alice")
	require.NoError(t, err)
	env.favorites.byUser["alice"] = []string{"keep-me"}
	env.provider.tokenErr = errors.New("connection refused")

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	resp, err := resty.New().R().
		SetCookie(env.sessionCookie(t, "alice")).
		SetHeader("Content-Type", "application/json").
		SetBody(`{"new_artist":["A"]}`).
		Post(srv.URL + "/save")
	require.NoError(t, err)

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode())
	assert.Equal(t, []string{"keep-me"}, env.favorites.byUser["alice"], "a credential failure never touches stored favorites")
}

func TestSaveRequiresSession(t *testing.T) {
	env := newTestEnv(t)

	srv := httptest.NewServer(env.router)
	defer srv.Close()

	resp, err := resty.New().R().
		SetHeader("Content-Type", "application/json").
		SetBody(`{"new_artist":["A"]}`).
		Post(srv.URL + "/save")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode())
}

func TestIndexEmptyFavorites(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.CreateUser("alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/index", nil)
	req.AddCookie(env.sessionCookie(t, "alice"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"has_artists_saved":false`)
	assert.Contains(t, body, `"song_name":null`)
	assert.Contains(t, body, `"username":"alice"`)
	assert.Zero(t, env.provider.tokenCalls, "no provider calls for an empty favorites set")
}

func TestIndexRendersChosenTrack(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.CreateUser("alice")
	require.NoError(t, err)
	env.favorites.byUser["alice"] = []string{"only-artist"}
	env.provider.tracks = []spotify.Track{
		{
			Name:    "Only Song",
			Artists: []spotify.Artist{{Name: "Only Artist"}},
			Album:   spotify.Album{Images: []spotify.Image{{URL: "https://img.example/a.jpg"}}},
			// PreviewURL left nil: the page must still render.
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/index", nil)
	req.AddCookie(env.sessionCookie(t, "alice"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"has_artists_saved":true`)
	assert.Contains(t, body, `"song_name":"Only Song"`)
	assert.Contains(t, body, `"song_artist":"Only Artist"`)
	assert.Contains(t, body, `"preview_url":null`)
	assert.Contains(t, body, `"genius_url":"https://genius.example/lyrics"`)
}

func TestIndexUpstreamFailure(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.users.CreateUser("alice")
	require.NoError(t, err)
	env.favorites.byUser["alice"] = []string{"artist"}
	env.provider.tokenErr = errors.New("boom")

	req := httptest.NewRequest(http.MethodGet, "/index", nil)
	req.AddCookie(env.sessionCookie(t, "alice"))
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}
