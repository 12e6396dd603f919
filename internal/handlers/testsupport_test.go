package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jobreadyai/backend/internal/config"
	"github.com/jobreadyai/backend/internal/generation"
	"github.com/jobreadyai/backend/internal/models"
	"github.com/jobreadyai/backend/internal/services"
	"github.com/jobreadyai/backend/pkg/middleware"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// memStore is the in-memory repository fake behind the handler tests.
type memStore struct {
	users map[primitive.ObjectID]*models.User
}

func newMemStore() *memStore {
	return &memStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *memStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	user.ID = primitive.NewObjectID()
	f.users[user.ID] = user
	return user, nil
}

func (f *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, fmt.Errorf("failed to find user by email")
}

func (f *memStore) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("failed to find user by id")
	}
	return u, nil
}

func (f *memStore) GetUserByResetToken(_ context.Context, token string) (*models.User, error) {
	for _, u := range f.users {
		if u.ResetToken != "" && u.ResetToken == token {
			return u, nil
		}
	}
	return nil, fmt.Errorf("failed to find user by reset token")
}

func (f *memStore) UpdateUser(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("no user matched")
	}
	for key, value := range fields {
		switch key {
		case "hashed_password":
			u.HashedPassword = value.(string)
		case "reset_token":
			u.ResetToken = value.(string)
		case "reset_token_exp":
			u.ResetTokenExp = value.(time.Time)
		}
	}
	return nil
}

func (f *memStore) ConsumeToken(_ context.Context, id primitive.ObjectID) (int, error) {
	u, ok := f.users[id]
	if !ok {
		return 0, fmt.Errorf("failed to find user by id")
	}
	if u.Tokens > 0 {
		u.Tokens--
	}
	return u.Tokens, nil
}

func (f *memStore) UpgradePlan(_ context.Context, id primitive.ObjectID) error {
	u, ok := f.users[id]
	if !ok {
		return fmt.Errorf("no user matched for upgrade")
	}
	u.Plan = models.PlanPro
	u.Tokens = models.ProTokenAllotment
	return nil
}

func (f *memStore) PrependDocument(_ context.Context, userID primitive.ObjectID, doc *models.Document) error {
	u, ok := f.users[userID]
	if !ok {
		return fmt.Errorf("owner not found")
	}
	doc.ID = primitive.NewObjectID()
	u.Documents = append([]models.Document{*doc}, u.Documents...)
	return nil
}

func (f *memStore) GetDocument(_ context.Context, userID, docID primitive.ObjectID) (*models.Document, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, fmt.Errorf("failed to find document")
	}
	for i := range u.Documents {
		if u.Documents[i].ID == docID {
			return &u.Documents[i], nil
		}
	}
	return nil, fmt.Errorf("failed to find document")
}

func (f *memStore) UpdateDocument(_ context.Context, userID, docID primitive.ObjectID, fields bson.M) (bool, error) {
	u, ok := f.users[userID]
	if !ok {
		return false, nil
	}
	for i := range u.Documents {
		if u.Documents[i].ID != docID {
			continue
		}
		doc := &u.Documents[i]
		for key, value := range fields {
			switch key {
			case "title":
				doc.Title = value.(string)
			case "type":
				doc.Type = value.(models.DocumentType)
			case "content":
				doc.Content = value.(string)
			case "is_public":
				doc.IsPublic = value.(bool)
			case "source_request":
				doc.SourceRequest = value.(*models.GenerationRequest)
			}
		}
		return true, nil
	}
	return false, nil
}

func (f *memStore) RemoveDocument(_ context.Context, userID, docID primitive.ObjectID) error {
	u, ok := f.users[userID]
	if !ok {
		return nil
	}
	for i := range u.Documents {
		if u.Documents[i].ID == docID {
			u.Documents = append(u.Documents[:i], u.Documents[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *memStore) FindPublicDocument(_ context.Context, docID primitive.ObjectID) (*models.Document, error) {
	for _, u := range f.users {
		for i := range u.Documents {
			if u.Documents[i].ID == docID && u.Documents[i].IsPublic {
				return &u.Documents[i], nil
			}
		}
	}
	return nil, fmt.Errorf("failed to find public document")
}

// newTestServer wires the full router the way cmd/server does, backed by the
// in-memory store and the mock generator.
func newTestServer(t *testing.T) (*httptest.Server, *memStore) {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:   "test-secret",
		TokenExpiry: time.Hour,
		AppBaseURL:  "http://localhost:3000",
		UploadDir:   t.TempDir(),
	}

	store := newMemStore()
	userService := services.NewUserService(store, cfg.AppBaseURL)
	planService := services.NewPlanService(store, nil)
	docService := services.NewDocumentService(store)

	authHandler := NewAuthHandler(userService, cfg)
	userHandler := NewUserHandler(userService, planService)
	docHandler := NewDocumentHandler(docService)
	uploadHandler := NewUploadHandler(cfg.UploadDir)
	generateHandler := NewGenerateHandler(&generation.MockClient{}, planService)

	router := mux.NewRouter()
	router.HandleFunc("/auth/signup", authHandler.SignupHandler).Methods("POST")
	router.HandleFunc("/auth/login", authHandler.LoginHandler).Methods("POST")
	router.HandleFunc("/auth/forgot-password", authHandler.ForgotPasswordHandler).Methods("POST")
	router.HandleFunc("/auth/reset-password", authHandler.ResetPasswordHandler).Methods("POST")
	router.HandleFunc("/share/{id}", docHandler.ShareHandler).Methods("GET")

	protected := router.PathPrefix("/user").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protected.HandleFunc("/me", userHandler.MeHandler).Methods("GET")
	protected.HandleFunc("/consumeToken", userHandler.ConsumeTokenHandler).Methods("POST")
	protected.HandleFunc("/upgradePlan", userHandler.UpgradePlanHandler).Methods("POST")
	protected.HandleFunc("/documents", docHandler.CreateDocumentHandler).Methods("POST")
	protected.HandleFunc("/documents/{id}", docHandler.UpdateDocumentHandler).Methods("PUT")
	protected.HandleFunc("/documents/{id}", docHandler.DeleteDocumentHandler).Methods("DELETE")
	protected.HandleFunc("/documents/{id}/publish", docHandler.PublishDocumentHandler).Methods("POST")

	gated := router.PathPrefix("").Subrouter()
	gated.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	gated.HandleFunc("/generate", generateHandler.GenerateDocumentHandler).Methods("POST")
	gated.HandleFunc("/upload", uploadHandler.UploadImageHandler).Methods("POST")

	router.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", UploadsFileServer(cfg.UploadDir)))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, store
}

// doJSON issues a JSON request, optionally authenticated, and decodes the
// response body into out when it is non-nil.
func doJSON(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}, out interface{}) *http.Response {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// signup registers a fresh account over HTTP and returns its session token.
func signup(t *testing.T, srv *httptest.Server, name, email string) string {
	t.Helper()

	var out struct {
		Token string      `json:"token"`
		User  models.User `json:"user"`
	}
	resp := doJSON(t, srv, http.MethodPost, "/auth/signup", "", map[string]string{
		"name": name, "email": email, "password": "secret123",
	}, &out)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, out.Token)
	return out.Token
}
