package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"contact-keeper/internal/repository/sqlite"
	"contact-keeper/internal/service"
	"contact-keeper/internal/storage"
)

func newTestRouter(t *testing.T) *gin.Engine {
	return newTestRouterWithStorage(t, nil, "", "")
}

func newTestRouterWithStorage(t *testing.T, store storage.Service, bucket, prefix string) *gin.Engine {
	t.Helper()

	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	userRepo := sqlite.NewUserRepository(db)
	contactRepo := sqlite.NewContactRepository(db)
	require.NoError(t, userRepo.Init(ctx))
	require.NoError(t, contactRepo.Init(ctx))

	authSvc := service.NewAuthService(userRepo, []byte("test-secret"), time.Hour)
	contactSvc := service.NewContactService(contactRepo)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(authSvc, contactSvc, store, bucket, prefix, logger).RegisterRoutes(router)
	return router
}

// fakeStorage records uploads and serves them back from memory.
type fakeStorage struct {
	uploads map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: map[string][]byte{}}
}

func (f *fakeStorage) UploadSnapshot(_ context.Context, key string, body io.Reader, opts storage.UploadOptions) (string, error) {
	if prefix := opts.KeyPrefix; prefix != "" {
		key = prefix + "/" + key
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.uploads[key] = data
	return fmt.Sprintf("s3://%s/%s", opts.Bucket, key), nil
}

func (f *fakeStorage) ListObjects(_ context.Context, _ string, prefix string) ([]storage.ObjectInfo, error) {
	var objects []storage.ObjectInfo
	for key, data := range f.uploads {
		if strings.HasPrefix(key, prefix) {
			objects = append(objects, storage.ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return objects, nil
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var decoded map[string]any
	if w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		_ = json.Unmarshal(w.Body.Bytes(), &decoded)
	}
	return w, decoded
}

func registerUser(t *testing.T, router *gin.Engine, name, email, password string) string {
	t.Helper()

	w, body := doJSON(t, router, http.MethodPost, "/api/users", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestAPI_RegisterLoginAndContactLifecycle(t *testing.T) {
	router := newTestRouter(t)

	token := registerUser(t, router, "Alice", "alice@x.com", "secret1")

	// The token resolves to the registered profile.
	w, body := doJSON(t, router, http.MethodGet, "/api/auth", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := body["user"].(map[string]any)
	require.Equal(t, "Alice", user["name"])
	aliceID := user["id"].(float64)

	// Create a contact.
	w, body = doJSON(t, router, http.MethodPost, "/api/contacts", token, map[string]string{"name": "Bob"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "Bob", body["name"])
	require.Equal(t, aliceID, body["owner"])
	contactID := body["id"].(string)

	// It shows up in the list.
	w, _ = doJSON(t, router, http.MethodGet, "/api/contacts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var contacts []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &contacts))
	require.Len(t, contacts, 1)
	require.Equal(t, "Bob", contacts[0]["name"])

	// Delete it; list is empty again.
	w, body = doJSON(t, router, http.MethodDelete, "/api/contacts/"+contactID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Bob deleted", body["msg"])

	w, _ = doJSON(t, router, http.MethodGet, "/api/contacts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]", w.Body.String())
}

func TestAPI_Login(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@x.com", "secret1")

	w, body := doJSON(t, router, http.MethodPost, "/api/auth", "", map[string]string{
		"email":    "alice@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, body["token"])

	w, _ = doJSON(t, router, http.MethodPost, "/api/auth", "", map[string]string{
		"email":    "alice@x.com",
		"password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_Register_Errors(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "Alice", "alice@x.com", "secret1")

	w, _ := doJSON(t, router, http.MethodPost, "/api/users", "", map[string]string{
		"name":     "Impostor",
		"email":    "alice@x.com",
		"password": "secret2",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/api/users", "", map[string]string{
		"name":     "",
		"email":    "new@x.com",
		"password": "secret1",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_ContactsRequireToken(t *testing.T) {
	router := newTestRouter(t)

	w, _ := doJSON(t, router, http.MethodGet, "/api/contacts", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/api/contacts", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAPI_PartialUpdate(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "Alice", "alice@x.com", "secret1")

	w, body := doJSON(t, router, http.MethodPost, "/api/contacts", token, map[string]string{
		"name":  "Bob",
		"email": "bob@x.com",
		"phone": "555-0100",
		"type":  "professional",
	})
	require.Equal(t, http.StatusOK, w.Code)
	contactID := body["id"].(string)

	w, body = doJSON(t, router, http.MethodPut, "/api/contacts/"+contactID, token, map[string]string{
		"phone": "555",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "555", body["phone"])
	require.Equal(t, "Bob", body["name"])
	require.Equal(t, "bob@x.com", body["email"])
	require.Equal(t, "professional", body["type"])
}

func TestAPI_CrossUserAccess(t *testing.T) {
	router := newTestRouter(t)
	aliceToken := registerUser(t, router, "Alice", "alice@x.com", "secret1")
	bobToken := registerUser(t, router, "Bob", "bob@x.com", "secret2")

	w, body := doJSON(t, router, http.MethodPost, "/api/contacts", aliceToken, map[string]string{"name": "Carol"})
	require.Equal(t, http.StatusOK, w.Code)
	contactID := body["id"].(string)

	w, _ = doJSON(t, router, http.MethodPut, "/api/contacts/"+contactID, bobToken, map[string]string{"name": "Stolen"})
	require.Equal(t, http.StatusForbidden, w.Code)

	w, _ = doJSON(t, router, http.MethodDelete, "/api/contacts/"+contactID, bobToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	// Bob never sees Alice's contact.
	w, _ = doJSON(t, router, http.MethodGet, "/api/contacts", bobToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "[]", w.Body.String())
}

func TestAPI_NotFound(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "Alice", "alice@x.com", "secret1")

	w, _ := doJSON(t, router, http.MethodPut, "/api/contacts/missing-id", token, map[string]string{"name": "X"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w, _ = doJSON(t, router, http.MethodDelete, "/api/contacts/missing-id", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAPI_ExportWithoutStorage(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "Alice", "alice@x.com", "secret1")

	w, _ := doJSON(t, router, http.MethodPost, "/api/contacts/export", token, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	w, _ = doJSON(t, router, http.MethodGet, "/api/contacts/exports", token, nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestAPI_ExportAndListExports(t *testing.T) {
	store := newFakeStorage()
	router := newTestRouterWithStorage(t, store, "backups", "contact-exports")
	token := registerUser(t, router, "Alice", "alice@x.com", "secret1")

	w, _ := doJSON(t, router, http.MethodPost, "/api/contacts", token, map[string]string{"name": "Bob"})
	require.Equal(t, http.StatusOK, w.Code)

	w, body := doJSON(t, router, http.MethodPost, "/api/contacts/export", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, float64(1), body["count"])
	location := body["location"].(string)
	require.True(t, strings.HasPrefix(location, "s3://backups/contact-exports/user-"), location)

	w, _ = doJSON(t, router, http.MethodGet, "/api/contacts/exports", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var exports []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exports))
	require.Len(t, exports, 1)
	key := exports[0]["key"].(string)
	require.Contains(t, location, key)
	require.Greater(t, exports[0]["size"].(float64), float64(0))

	// Another user sees none of them.
	otherToken := registerUser(t, router, "Bob", "bob@x.com", "secret2")
	w, _ = doJSON(t, router, http.MethodGet, "/api/contacts/exports", otherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var otherExports []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &otherExports))
	require.Empty(t, otherExports)
}

func TestAPI_ListOrder(t *testing.T) {
	router := newTestRouter(t)
	token := registerUser(t, router, "Alice", "alice@x.com", "secret1")

	for i := 1; i <= 3; i++ {
		w, _ := doJSON(t, router, http.MethodPost, "/api/contacts", token, map[string]string{
			"name": fmt.Sprintf("C%d", i),
		})
		require.Equal(t, http.StatusOK, w.Code)
		time.Sleep(5 * time.Millisecond)
	}

	w, _ := doJSON(t, router, http.MethodGet, "/api/contacts", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var contacts []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &contacts))
	require.Len(t, contacts, 3)
	require.Equal(t, "C3", contacts[0]["name"])
	require.Equal(t, "C2", contacts[1]["name"])
	require.Equal(t, "C1", contacts[2]["name"])
}
