package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"doctransfer/internal/events"
	"doctransfer/internal/http/middleware"
	identityMocks "doctransfer/internal/identity/mocks"
	"doctransfer/internal/model"
	"doctransfer/internal/service"
	serviceMocks "doctransfer/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testUser = model.User{Email: "mia@example.com", Name: "Mia", Surname: "Rossi", Role: "user", SubjectID: "sub-1"}

// newTestApp returns an app whose requests are authenticated as user.
func newTestApp(user *model.User) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(middleware.RequestID())
	if user != nil {
		u := *user
		app.Use(func(c *fiber.Ctx) error {
			c.Locals(middleware.UserLocalKey, u)
			return c.Next()
		})
	}
	return app
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func decode[T any](t *testing.T, r io.Reader) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(r).Decode(&v))
	return v
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]string](t, resp.Body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		body := decode[errorPayload](t, resp.Body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"bad request", fiber.ErrBadRequest, http.StatusBadRequest, "BAD_REQUEST"},
		{"unauthorized", fiber.ErrUnauthorized, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", fiber.ErrForbidden, http.StatusForbidden, "FORBIDDEN"},
		{"not found", fiber.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"plain error is hidden", errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(nil)
			app.Get("/x", func(c *fiber.Ctx) error { return tt.err })

			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			req.Header.Set("X-Request-ID", "req-42")
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body := decode[errorPayload](t, resp.Body)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.Equal(t, "req-42", body.RequestID)
			assert.NotContains(t, body.Error.Message, "pq:")
		})
	}
}

func TestListDocuments(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(&testUser)
		app.Get("/docs", ListDocuments(mockSvc))

		views := []service.DocumentView{{ShareID: "s1", DisplayName: "report.pdf", Size: 42}}
		mockSvc.On("ListFor", mock.Anything, testUser).Return(views, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/docs", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[[]service.DocumentView](t, resp.Body)
		require.Len(t, body, 1)
		assert.Equal(t, "s1", body[0].ShareID)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty list is an array", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(&testUser)
		app.Get("/docs", ListDocuments(mockSvc))

		mockSvc.On("ListFor", mock.Anything, testUser).Return([]service.DocumentView{}, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/docs", nil))
		require.NoError(t, err)

		raw, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, "[]", string(raw))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		app := newTestApp(nil)
		app.Get("/docs", ListDocuments(new(serviceMocks.MockDocumentService)))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/docs", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(&testUser)
		app.Get("/docs", ListDocuments(mockSvc))

		mockSvc.On("ListFor", mock.Anything, testUser).Return(nil, errors.New("db down")).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/docs", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestUpdateDocument(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMocks func(m *serviceMocks.MockDocumentService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "delete ok",
			body: `{"action":"delete"}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("Delete", mock.Anything, testUser, "s1").Return(true, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"Ok"}`,
		},
		{
			name: "delete not owned",
			body: `{"action":"delete"}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("Delete", mock.Anything, testUser, "s1").Return(false, nil).Once()
			},
			wantStatus: http.StatusForbidden,
			wantBody:   `{"status":"Forbidden"}`,
		},
		{
			name: "rename ok",
			body: `{"action":"rename","new_name":"final.pdf"}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("Rename", mock.Anything, testUser, "s1", "final.pdf").Return(nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"Ok"}`,
		},
		{
			name: "rename not owned",
			body: `{"action":"rename","new_name":"final.pdf"}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("Rename", mock.Anything, testUser, "s1", "final.pdf").Return(service.ErrNotFound).Once()
			},
			wantStatus: http.StatusForbidden,
			wantBody:   `{"status":"Forbidden"}`,
		},
		{
			name: "rename without name",
			body: `{"action":"rename"}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("Rename", mock.Anything, testUser, "s1", "").Return(service.ErrNameRequired).Once()
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown action",
			body:       `{"action":"archive"}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid body",
			body:       `{`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockDocumentService)
			tt.setupMocks(mockSvc)

			app := newTestApp(&testUser)
			app.Post("/docs/:shareId", UpdateDocument(mockSvc))

			resp, err := app.Test(jsonRequest(http.MethodPost, "/docs/s1", tt.body))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				raw, _ := io.ReadAll(resp.Body)
				assert.JSONEq(t, tt.wantBody, string(raw))
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestShareDocument(t *testing.T) {
	rita := model.Person{Email: "rita@example.com", Name: "Rita", Surname: "Levi"}
	bad := model.Person{Email: "user@example.com", Name: "Bad", Surname: "Actor"}

	tests := []struct {
		name       string
		body       string
		setupMocks func(m *serviceMocks.MockDocumentService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "all allowed",
			body: `{"users":["` + rita.Key() + `"]}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("Share", mock.Anything, testUser, "s1", []model.Person{rita}).Return(&service.ShareResult{}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"Ok"}`,
		},
		{
			name: "some blocked",
			body: `{"users":["` + rita.Key() + `","` + bad.Key() + `"]}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("Share", mock.Anything, testUser, "s1", []model.Person{rita, bad}).
					Return(&service.ShareResult{Blocked: []string{bad.Email}}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"Ok","forbidden":["user@example.com"]}`,
		},
		{
			name:       "short recipient key rejected",
			body:       `{"users":["` + rita.Key() + `","a@b.com"]}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "recipient key stored as sent",
			body: `{"users":["c@d.com##"]}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("Share", mock.Anything, testUser, "s1", []model.Person{{Email: "c@d.com"}}).Return(&service.ShareResult{}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"message":"Ok"}`,
		},
		{
			name: "not owned",
			body: `{"users":[]}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("Share", mock.Anything, testUser, "s1", mock.Anything).Return(nil, service.ErrNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"message":"Error"}`,
		},
		{
			name: "service error",
			body: `{"users":[]}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("Share", mock.Anything, testUser, "s1", mock.Anything).Return(nil, errors.New("boom")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockDocumentService)
			tt.setupMocks(mockSvc)

			app := newTestApp(&testUser)
			app.Post("/share/:shareId", ShareDocument(mockSvc))

			resp, err := app.Test(jsonRequest(http.MethodPost, "/share/s1", tt.body))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				raw, _ := io.ReadAll(resp.Body)
				assert.JSONEq(t, tt.wantBody, string(raw))
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestDownloadLink(t *testing.T) {
	t.Run("granted", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(&testUser)
		app.Get("/share/:shareId", DownloadLink(mockSvc))

		mockSvc.On("DownloadLink", mock.Anything, testUser, "s1").Return("https://minio/secure/k?sig", nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/share/s1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decode[map[string]string](t, resp.Body)
		assert.Equal(t, "https://minio/secure/k?sig", body["download_link"])
	})

	t.Run("forbidden", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newTestApp(&testUser)
		app.Get("/share/:shareId", DownloadLink(mockSvc))

		mockSvc.On("DownloadLink", mock.Anything, testUser, "s1").Return("", service.ErrForbidden).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/share/s1", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		raw, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"message":"Forbidden"}`, string(raw))
	})
}

func TestListShareUsers(t *testing.T) {
	dir := new(identityMocks.MockDirectory)
	app := newTestApp(&testUser)
	app.Get("/share/users", ListShareUsers(dir))

	dir.On("ListUsers", mock.Anything).Return([]model.User{testUser}, nil).Once()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/share/users", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[[]userView](t, resp.Body)
	require.Len(t, body, 1)
	assert.Equal(t, testUser.IdentityKey(), body[0].Key)
	assert.Equal(t, "mia@example.com", body[0].Email)
}

func TestCreateUploadLink(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMocks func(m *serviceMocks.MockDocumentService)
		wantStatus int
	}{
		{
			name: "created",
			body: `{"filename":"report.pdf"}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("UploadLink", mock.Anything, testUser, "report.pdf").
					Return(&service.UploadLink{URL: "https://minio/put", Key: "private/sub-1/report.pdf", ExpiresIn: 900}, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "missing filename",
			body: `{}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("UploadLink", mock.Anything, testUser, "").Return(nil, service.ErrNameRequired).Once()
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "no subject",
			body: `{"filename":"report.pdf"}`,
			setupMocks: func(m *serviceMocks.MockDocumentService) {
				m.On("UploadLink", mock.Anything, testUser, "report.pdf").Return(nil, service.ErrIdentityNotFound).Once()
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockDocumentService)
			tt.setupMocks(mockSvc)

			app := newTestApp(&testUser)
			app.Post("/uploads", CreateUploadLink(mockSvc))

			resp, err := app.Test(jsonRequest(http.MethodPost, "/uploads", tt.body))
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantStatus == http.StatusCreated {
				body := decode[service.UploadLink](t, resp.Body)
				assert.Equal(t, "https://minio/put", body.URL)
				assert.Equal(t, "private/sub-1/report.pdf", body.Key)
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestListAudit(t *testing.T) {
	t.Run("admin", func(t *testing.T) {
		audit := new(serviceMocks.MockAuditLog)
		app := newTestApp(&testUser)
		app.Get("/audit", ListAudit(audit))

		entries := []model.AuditEntry{{ShareID: "s1", Action: service.ActionUploaded}}
		audit.On("ListAll", mock.Anything, testUser).Return(entries, nil).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("not admin", func(t *testing.T) {
		audit := new(serviceMocks.MockAuditLog)
		app := newTestApp(&testUser)
		app.Get("/audit", ListAudit(audit))

		audit.On("ListAll", mock.Anything, testUser).Return(nil, service.ErrForbidden).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		raw, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"status":"Forbidden"}`, string(raw))
	})
}

func TestExportAudit(t *testing.T) {
	t.Run("workbook", func(t *testing.T) {
		audit := new(serviceMocks.MockAuditLog)
		app := newTestApp(&testUser)
		app.Get("/audit/export", ExportAudit(audit))

		audit.On("Export", mock.Anything, testUser, mock.Anything).Return(func(w io.Writer) error {
			_, err := w.Write([]byte("PK-xlsx"))
			return err
		}).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit/export", nil))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, xlsxContentType, resp.Header.Get(fiber.HeaderContentType))
		assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "attachment")
		raw, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "PK-xlsx", string(raw))
	})

	t.Run("not admin", func(t *testing.T) {
		audit := new(serviceMocks.MockAuditLog)
		app := newTestApp(&testUser)
		app.Get("/audit/export", ExportAudit(audit))

		audit.On("Export", mock.Anything, testUser, mock.Anything).Return(service.ErrForbidden).Once()

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/audit/export", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestS3Events(t *testing.T) {
	payload := `{"Records":[
		{"eventName":"s3:ObjectCreated:Put","s3":{"bucket":{"name":"documents"},"object":{"key":"private%2Fsub-1%2Freport.pdf","size":42}}},
		{"eventName":"s3:ObjectRemoved:Delete","s3":{"bucket":{"name":"documents"},"object":{"key":"private%2Fsub-1%2Fold.pdf"}}}
	]}`

	t.Run("processed", func(t *testing.T) {
		ingest := new(serviceMocks.MockIngestService)
		app := newTestApp(nil)
		app.Post("/events/s3", S3Events(events.NewDispatcher(ingest, zap.NewNop())))

		ingest.On("Transform", mock.Anything, service.UploadEvent{Bucket: "documents", Key: "private/sub-1/report.pdf", Size: 42}).
			Return(&service.IngestResult{Processed: true}, nil).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/events/s3", payload))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		raw, _ := io.ReadAll(resp.Body)
		assert.JSONEq(t, `{"processed":1}`, string(raw))
		ingest.AssertExpectations(t)
	})

	t.Run("invalid payload", func(t *testing.T) {
		app := newTestApp(nil)
		app.Post("/events/s3", S3Events(events.NewDispatcher(new(serviceMocks.MockIngestService), zap.NewNop())))

		resp, err := app.Test(jsonRequest(http.MethodPost, "/events/s3", "not json"))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("ingest failure", func(t *testing.T) {
		ingest := new(serviceMocks.MockIngestService)
		app := newTestApp(nil)
		app.Post("/events/s3", S3Events(events.NewDispatcher(ingest, zap.NewNop())))

		ingest.On("Transform", mock.Anything, mock.Anything).Return(nil, errors.New("copy failed")).Once()

		resp, err := app.Test(jsonRequest(http.MethodPost, "/events/s3", payload))
		require.NoError(t, err)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		body := decode[errorPayload](t, resp.Body)
		assert.Equal(t, "INGEST_FAILED", body.Error.Code)
	})
}

func TestRegisterRoutes_ShareUsersBeforeShareID(t *testing.T) {
	docs := new(serviceMocks.MockDocumentService)
	dir := new(identityMocks.MockDirectory)
	resolver := stubResolver{user: &testUser}

	app := newTestApp(nil)
	RegisterRoutes(app, Deps{
		Documents: docs,
		Audit:     new(serviceMocks.MockAuditLog),
		Directory: dir,
		Resolver:  resolver,
		Log:       zap.NewNop(),
	})

	dir.On("Remember", mock.Anything, testUser).Return(nil)
	dir.On("ListUsers", mock.Anything).Return([]model.User{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/share/users", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer t")
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	dir.AssertExpectations(t)
	docs.AssertNotCalled(t, "DownloadLink", mock.Anything, mock.Anything, mock.Anything)
}

func TestRegisterRoutes_EventsRequireToken(t *testing.T) {
	app := newTestApp(nil)
	RegisterRoutes(app, Deps{
		Dispatcher:  events.NewDispatcher(new(serviceMocks.MockIngestService), zap.NewNop()),
		EventsToken: "hook-secret",
		Resolver:    stubResolver{},
		Directory:   new(identityMocks.MockDirectory),
		Log:         zap.NewNop(),
	})

	req := httptest.NewRequest(http.MethodPost, "/events/s3", bytes.NewBufferString(`{"Records":[]}`))
	req.Header.Set(fiber.HeaderAuthorization, "Bearer wrong")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req = httptest.NewRequest(http.MethodPost, "/events/s3", bytes.NewBufferString(`{"Records":[]}`))
	req.Header.Set(fiber.HeaderAuthorization, "Bearer hook-secret")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

type stubResolver struct {
	user *model.User
}

func (s stubResolver) Resolve(string) (*model.User, error) {
	if s.user == nil {
		return nil, errors.New("invalid token")
	}
	return s.user, nil
}
