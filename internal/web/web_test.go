package web_test

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cantis/FlaskFactor2/internal/factory"
	"github.com/cantis/FlaskFactor2/internal/model"
	"github.com/cantis/FlaskFactor2/internal/web"
	"github.com/cantis/FlaskFactor2/internal/web/middleware"
)

var siteURL = &url.URL{Scheme: "http", Host: "flaskfactor.test", Path: "/"}

// webTestServer drives the web router like a browser: cookies persist
// between requests and redirects are followed on demand.
type webTestServer struct {
	t       *testing.T
	handler http.Handler
	app     *factory.TestApp
	jar     *cookiejar.Jar
}

func newWebTestServer(t *testing.T) *webTestServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(app.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &webTestServer{
		t: t,
		handler: web.NewRouter(web.RouterConfig{
			Logger:        app.Logger,
			Metrics:       app.Metrics,
			AuthService:   app.AuthService,
			PlayerService: app.PlayerService,
		}),
		app: app,
		jar: jar,
	}
}

func (ts *webTestServer) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, c := range ts.jar.Cookies(siteURL) {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	ts.jar.SetCookies(siteURL, rr.Result().Cookies())
	return rr
}

func (ts *webTestServer) get(path string) *httptest.ResponseRecorder {
	return ts.do(http.MethodGet, path, nil)
}

func (ts *webTestServer) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return ts.do(http.MethodPost, path, form)
}

func (ts *webTestServer) followRedirect(rr *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	ts.t.Helper()
	location := rr.Header().Get("Location")
	require.NotEmpty(ts.t, location, "expected a redirect")
	return ts.get(location)
}

// document parses the recorded body as HTML
func (ts *webTestServer) document(rr *httptest.ResponseRecorder) *goquery.Document {
	ts.t.Helper()
	doc, err := goquery.NewDocumentFromReader(rr.Body)
	require.NoError(ts.t, err)
	return doc
}

// loggedIn reports whether the browser holds a session cookie
func (ts *webTestServer) loggedIn() bool {
	for _, c := range ts.jar.Cookies(siteURL) {
		if c.Name == middleware.SessionCookie && c.Value != "" {
			return true
		}
	}
	return false
}

func (ts *webTestServer) seedAndLogin(name, email, password string) *model.Player {
	ts.t.Helper()
	player := ts.app.SeedPlayer(name, email, password)

	rr := ts.post("/login", url.Values{"email": {email}, "password": {password}})
	require.Equal(ts.t, http.StatusSeeOther, rr.Code, "login should redirect")
	require.True(ts.t, ts.loggedIn(), "login should set the session cookie")
	return player
}

func assertContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	assert.Positive(t, doc.Find(selector).Length(), "no element matches %q", selector)
}

func assertNotContainsElement(t *testing.T, doc *goquery.Document, selector string) {
	t.Helper()
	assert.Zero(t, doc.Find(selector).Length(), "unexpected element matching %q", selector)
}

func assertContainsText(t *testing.T, doc *goquery.Document, selector, text string) {
	t.Helper()
	sel := doc.Find(selector)
	if assert.Positive(t, sel.Length(), "no element matches %q", selector) {
		assert.Contains(t, sel.Text(), text)
	}
}
