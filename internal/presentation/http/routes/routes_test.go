package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/receipts-api/internal/application/service"
	"github.com/sangkips/receipts-api/internal/config"
	"github.com/sangkips/receipts-api/internal/infrastructure/database"
	"github.com/sangkips/receipts-api/internal/infrastructure/document"
	infraRepo "github.com/sangkips/receipts-api/internal/infrastructure/repository"
	"github.com/sangkips/receipts-api/internal/presentation/http/handler"
	"github.com/sangkips/receipts-api/internal/presentation/http/middleware"
	"github.com/sangkips/receipts-api/internal/worker"
	"github.com/sangkips/receipts-api/pkg/email"
	"github.com/sangkips/receipts-api/pkg/oauth"
	"github.com/sangkips/receipts-api/pkg/printer"
	"github.com/sangkips/receipts-api/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := database.NewSQLiteDB(":memory:", false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	pool := worker.NewPool(10)
	userRepo := infraRepo.NewUserRepository(db)
	receiptRepo := infraRepo.NewReceiptRepository(db)
	settingsRepo := infraRepo.NewSettingsRepository(db)
	idempotencyRepo := infraRepo.NewIdempotencyRepository(db)
	mailer := email.NewEmailService(email.EmailConfig{})

	authService := service.NewAuthService(userRepo, utils.NewJWTManager("test-secret", time.Hour),
		service.NewNotificationService(mailer, pool, ""))
	receiptService := service.NewReceiptService(receiptRepo, service.NewReceiptNumberer(receiptRepo, "", 0))
	settingsService := service.NewSettingsService(settingsRepo)
	documentService := service.NewDocumentService(receiptService, settingsService, document.Renderer{}, mailer)
	printerService := service.NewPrinterService(printer.NewNullPrinter(), receiptService, settingsService, 0)

	handlers := &Handlers{
		Auth:     handler.NewAuthHandler(authService, oauth.NewGoogleOAuthService(oauth.GoogleOAuthConfig{})),
		Receipt:  handler.NewReceiptHandler(receiptService, documentService, printerService),
		Settings: handler.NewSettingsHandler(settingsService),
		Template: handler.NewTemplateHandler(service.NewTemplateService(infraRepo.NewTemplateRepository(db))),
		Backup:   handler.NewBackupHandler(service.NewBackupService(receiptRepo)),
		Printer:  handler.NewPrinterHandler(printerService),
		Health:   handler.NewHealthHandler(sqlDB, "receipts-api", "test"),
	}

	router := Setup(handlers, &Deps{
		Cfg:             &config.Config{},
		Users:           authService,
		IdempotencyRepo: idempotencyRepo,
	})
	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func parse(t *testing.T, w *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func dataAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(parse(t, w).Data, &out), w.Body.String())
	return out
}

// signUp registers a user and returns a bearer token for it
func (s *testServer) signUp(username string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email":     username + "@example.com",
		"username":  username,
		"full_name": strings.ToUpper(username),
		"password":  "secret1",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": "secret1",
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return dataAs[struct {
		AccessToken string `json:"access_token"`
	}](s.t, w).AccessToken
}

type receiptBody struct {
	ID            uint    `json:"id"`
	ReceiptNumber string  `json:"receipt_number"`
	CustomerName  string  `json:"customer_name"`
	Status        string  `json:"status"`
	Total         string  `json:"total"`
	Notes         *string `json:"notes"`
	Items         []struct {
		Description string `json:"description"`
		Total       string `json:"total"`
	} `json:"items"`
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		w := s.do(http.MethodGet, path, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "ok", body["database"])
		assert.Equal(t, "receipts-api", body["service"])
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("ana")

	w := s.do(http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := dataAs[struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		IsSuperuser bool   `json:"is_superuser"`
	}](t, w)
	assert.Equal(t, "ana", me.Username)
	assert.Equal(t, "ana@example.com", me.Email)
	assert.False(t, me.IsSuperuser)

	w = s.do(http.MethodPut, "/api/v1/auth/me", token, map[string]string{"full_name": "Ana López"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Ana López")

	w = s.do(http.MethodGet, "/api/v1/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "ana", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{
		"email": "not-an-email", "username": "x", "password": "1",
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var fields []string
	for _, fe := range parse(t, w).Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"email", "username", "password"}, fields)
}

func TestGoogleSignInNotConfigured(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/auth/google", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, parse(t, w).Success)
}

func TestReceiptLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("ana")

	w := s.do(http.MethodGet, "/api/v1/receipts/next-number", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "RECIBO-00000001", dataAs[map[string]string](t, w)["next_number"])

	create := map[string]interface{}{
		"customer_name":  "Ana López",
		"payment_method": "Efectivo",
		"notes":          "primer pago",
		"items": []map[string]interface{}{
			{"description": "Inscripción", "quantity": 1, "unit_price": "100"},
			{"description": "Libros", "quantity": "2", "unit_price": 25.5},
		},
	}
	w = s.do(http.MethodPost, "/api/v1/receipts", token, create, middleware.IdempotencyKeyHeader, "abc-1")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := dataAs[receiptBody](t, w)
	assert.Equal(t, "RECIBO-00000001", created.ReceiptNumber)
	assert.Equal(t, "151.00", created.Total)
	assert.Equal(t, "completed", created.Status)
	require.Len(t, created.Items, 2)
	assert.Equal(t, "51.00", created.Items[1].Total)

	// the same key replays the first response without creating a second receipt
	replay := s.do(http.MethodPost, "/api/v1/receipts", token, create, middleware.IdempotencyKeyHeader, "abc-1")
	assert.Equal(t, http.StatusCreated, replay.Code)
	assert.Equal(t, "true", replay.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, created.ID, dataAs[receiptBody](t, replay).ID)

	w = s.do(http.MethodGet, "/api/v1/receipts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := dataAs[struct {
		Items      []receiptBody `json:"items"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}](t, w)
	assert.Equal(t, int64(1), page.Pagination.Total)
	require.Len(t, page.Items, 1)

	id := fmt.Sprint(created.ID)
	w = s.do(http.MethodPut, "/api/v1/receipts/"+id, token, `{"notes": null, "status": "paid"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := dataAs[receiptBody](t, w)
	assert.Equal(t, "paid", updated.Status)
	assert.Equal(t, "151.00", updated.Total)
	assert.Nil(t, updated.Notes)

	w = s.do(http.MethodGet, "/api/v1/receipts/"+id+"/pdf", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "inline"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))

	w = s.do(http.MethodGet, "/api/v1/receipts/"+id+"/pdf?download=true", token, nil)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Disposition"), "attachment"))

	w = s.do(http.MethodGet, "/api/v1/receipts/export.xlsx", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.Bytes())

	w = s.do(http.MethodPost, "/api/v1/receipts/"+id+"/print", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "RECIBO-00000001", dataAs[map[string]string](t, w)["receipt_number"])

	w = s.do(http.MethodPost, "/api/v1/receipts/"+id+"/email", token, map[string]string{"to": "x@example.com"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/receipts/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/v1/receipts/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/receipts/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateReceiptValidation(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("ana")

	w := s.do(http.MethodPost, "/api/v1/receipts", token, map[string]interface{}{
		"customer_name": "Ana",
		"items":         []interface{}{},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	resp := parse(t, w)
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, "items", resp.Errors[0].Field)

	w = s.do(http.MethodPost, "/api/v1/receipts", token, map[string]interface{}{
		"customer_name": "Ana",
		"status":        "archived",
		"items":         []map[string]interface{}{{"description": "x", "quantity": 1, "unit_price": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/receipts", token, `{"items": [`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/receipts", token, map[string]interface{}{
		"customer_name":  "Ana",
		"customer_email": "ana-at-example",
		"items":          []map[string]interface{}{{"description": "x", "quantity": "0.125", "unit_price": 1}},
	})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	fields := map[string]bool{}
	for _, e := range parse(t, w).Errors {
		fields[e.Field] = true
	}
	assert.True(t, fields["customer_email"], w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/receipts/next-number", token, nil)
	assert.Equal(t, "RECIBO-00000001", dataAs[map[string]string](t, w)["next_number"])
}

func TestNextNumberWithoutToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/receipts/next-number", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "RECIBO-00000001", dataAs[map[string]string](t, w)["next_number"])

	w = s.do(http.MethodGet, "/api/v1/receipts/next-number", "not-a-token", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/receipts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("ana")

	w := s.do(http.MethodGet, "/api/v1/settings", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	type settingsBody struct {
		CompanyName     string          `json:"company_name"`
		FieldVisibility map[string]bool `json:"field_visibility"`
	}
	defaults := dataAs[settingsBody](t, w)
	assert.True(t, defaults.FieldVisibility["notes"])

	w = s.do(http.MethodPut, "/api/v1/settings", token, map[string]interface{}{
		"company_name":     "Librería Central",
		"field_visibility": map[string]bool{"notes": false},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/settings", token, nil)
	saved := dataAs[settingsBody](t, w)
	assert.Equal(t, "Librería Central", saved.CompanyName)
	assert.False(t, saved.FieldVisibility["notes"])
	assert.True(t, saved.FieldVisibility["signature"])
}

func TestTemplateEndpoints(t *testing.T) {
	s := newTestServer(t)
	ana := s.signUp("ana")
	bruno := s.signUp("bruno")

	w := s.do(http.MethodPost, "/api/v1/templates", ana, map[string]interface{}{
		"name":  "Mensualidad",
		"items": []map[string]interface{}{{"description": "Cuota", "unit_price": "150"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := dataAs[struct {
		ID uint `json:"id"`
	}](t, w)
	path := fmt.Sprintf("/api/v1/templates/%d", created.ID)

	w = s.do(http.MethodGet, path, bruno, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, path, ana, map[string]string{"name": "Cuota mensual"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Cuota mensual")

	w = s.do(http.MethodGet, "/api/v1/templates", ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, dataAs[[]json.RawMessage](t, w), 1)

	w = s.do(http.MethodGet, "/api/v1/templates", bruno, nil)
	assert.Empty(t, dataAs[[]json.RawMessage](t, w))

	w = s.do(http.MethodPost, "/api/v1/templates", ana, map[string]string{"name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodDelete, path, ana, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, path, ana, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func uploadBackup(t *testing.T, s *testServer, token, filename, content, skipExisting string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	if skipExisting != "" {
		require.NoError(t, mw.WriteField("skip_existing", skipExisting))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/backup/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func TestBackupEndpoints(t *testing.T) {
	s := newTestServer(t)
	clerk := s.signUp("clerk")

	w := s.do(http.MethodPost, "/api/v1/receipts", clerk, map[string]interface{}{
		"customer_name": "Ana",
		"items":         []map[string]interface{}{{"description": "Servicio", "quantity": 3, "unit_price": 7}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/backup/export", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/backup/export", clerk, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	var doc struct {
		ReceiptCount int `json:"receipt_count"`
		Receipts     []struct {
			ReceiptNumber string `json:"receipt_number"`
		} `json:"receipts"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Equal(t, 1, doc.ReceiptCount)
	require.Len(t, doc.Receipts, 1)
	exported := w.Body.String()

	w = uploadBackup(t, s, clerk, "backup.txt", exported, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadBackup(t, s, clerk, "backup.json", `{"version": "1.0"}`, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadBackup(t, s, clerk, "backup.json", exported, "maybe")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadBackup(t, s, clerk, "backup.json", exported, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result := dataAs[service.ImportResult](t, w)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	w = uploadBackup(t, s, clerk, "BACKUP.JSON", exported, "false")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result = dataAs[service.ImportResult](t, w)
	assert.Equal(t, 1, result.Replaced)
	assert.Equal(t, 1, result.TotalProcessed)

	mixed := `{"receipts": [
		{"receipt_number": "EXT-1", "customer_name": "Bruno", "items": [{"description": "Caja", "quantity": 2, "unit_price": 4.5}]},
		{"receipt_number": "EXT-2", "items": [{"description": "x", "quantity": "mucho"}]}
	]}`
	w = uploadBackup(t, s, clerk, "backup.json", mixed, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	result = dataAs[service.ImportResult](t, w)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "EXT-2", result.Errors[0].ReceiptNumber)

	w = s.do(http.MethodGet, "/api/v1/receipts?search=EXT-1", clerk, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"total":"9.00"`)
}

func TestPrinterStatus(t *testing.T) {
	s := newTestServer(t)
	token := s.signUp("ana")

	w := s.do(http.MethodGet, "/api/v1/printer/status", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := dataAs[map[string]interface{}](t, w)
	assert.Equal(t, false, status["configured"])
}
