package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang/mock/gomock"

	"melhado-backend/internal/auth"
	"melhado-backend/internal/compliance"
	"melhado-backend/internal/database"
	"melhado-backend/internal/inspection"
	"melhado-backend/internal/models"
	"melhado-backend/internal/storage"
	"melhado-backend/internal/testutil"
)

const (
	mainSt = "123 Main St, London SW1A 1AA"
	oakAve = "456 Oak Ave, Manchester M1 1AA"
	pineRd = "789 Pine Rd, Birmingham B1 1AA"

	inspectorEmail = "client@demo.com"
	landlordEmail  = "landlord@demo.com"
	adminEmail     = "admin@demo.com"
)

// testEnv serves the full /api router over a seeded in-memory store.
type testEnv struct {
	t        *testing.T
	store    *database.Store
	tokens   *auth.TokenManager
	files    *storage.LocalStore
	events   *MockBroadcaster
	notifier *MockSubmissionNotifier
	scanner  *MockExpiryScanner
	api      *API
	router   chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	store := testutil.NewSeededStore(t)
	files, err := storage.NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("NewLocalStore() error: %v", err)
	}

	env := &testEnv{
		t:        t,
		store:    store,
		tokens:   auth.NewTokenManager("test-secret", time.Hour),
		files:    files,
		events:   NewMockBroadcaster(ctrl),
		notifier: NewMockSubmissionNotifier(ctrl),
		scanner:  NewMockExpiryScanner(ctrl),
	}
	env.events.EXPECT().BroadcastToUser(gomock.Any(), gomock.Any()).AnyTimes()
	env.events.EXPECT().BroadcastToRole(gomock.Any(), gomock.Any()).AnyTimes()

	api := &API{
		Store:    store,
		Authn:    auth.NewAuthenticator(store, 0),
		Tokens:   env.tokens,
		Builder:  inspection.NewBuilder(inspection.DefaultCatalog()),
		Files:    files,
		Events:   env.events,
		Notifier: env.notifier,
		Scanner:  env.scanner,
		Windows:  compliance.DefaultWindows(),
	}
	env.api = api
	r := chi.NewRouter()
	api.Routes(r)
	env.router = r
	return env
}

// useFiles rebuilds the router around another file store.
func (e *testEnv) useFiles(files storage.FileStore) {
	api := *e.api
	api.Files = files
	r := chi.NewRouter()
	api.Routes(r)
	e.router = r
}

// token logs the seeded account in without going through the handler.
func (e *testEnv) token(email string) string {
	e.t.Helper()
	user := testutil.User(e.t, e.store, email)
	tok, claims, err := e.tokens.Issue(user)
	if err != nil {
		e.t.Fatalf("Issue() error: %v", err)
	}
	err = e.store.CreateSession(context.Background(), models.Session{
		ID:        claims.ID,
		UserID:    user.ID,
		CreatedAt: time.Now().Unix(),
		ExpiresAt: claims.ExpiresAt.Unix(),
	})
	if err != nil {
		e.t.Fatalf("CreateSession() error: %v", err)
	}
	return tok
}

func (e *testEnv) send(req *http.Request, email string) *httptest.ResponseRecorder {
	e.t.Helper()
	if email != "" {
		req.Header.Set("Authorization", "Bearer "+e.token(email))
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// do sends body as JSON on behalf of email. An empty email sends no token.
func (e *testEnv) do(method, path, email string, body interface{}) *httptest.ResponseRecorder {
	e.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			e.t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return e.send(req, email)
}

// upload posts a multipart form with one file part.
func (e *testEnv) upload(path, email string, fields map[string]string, filename, contentType string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		mw.WriteField(k, v)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		e.t.Fatalf("CreatePart() error: %v", err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return e.send(req, email)
}

func (e *testEnv) property(address string) *models.Property {
	return testutil.PropertyByAddress(e.t, e.store, address)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}
