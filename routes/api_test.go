package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pixfeed/pixfeed/config"
	"github.com/pixfeed/pixfeed/models"
	"github.com/pixfeed/pixfeed/services"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Post{}, &models.MediaFile{}, &models.Comment{}))
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		_ = sqlDB.Close()
	})

	cfg := config.AppConfig{
		GinMode:            "test",
		FileRoutePrefix:    "/api/files/",
		MaxUploadSizeMB:    10,
		RateLimitPerMinute: 1000,
		AllowedOrigins:     []string{"*"},
		GinLogPath:         filepath.Join(t.TempDir(), "access.log"),
	}
	store := services.NewMediaStore(t.TempDir(), nil)
	return SetupRouter(cfg, db, store)
}

func doJSON(t *testing.T, r *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type formFile struct {
	name    string
	content []byte
}

func doMultipartPost(t *testing.T, r *gin.Engine, url string, fields map[string]string, files []formFile) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile("mediaFiles", f.name)
		require.NoError(t, err)
		_, err = fw.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func registerUser(t *testing.T, r *gin.Engine, username, password string) uint {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		UserID   uint   `json:"userId"`
		Username string `json:"username"`
	}
	decode(t, w, &resp)
	require.Equal(t, username, resp.Username)
	return resp.UserID
}

func TestHealthEndpoint(t *testing.T) {
	r := setupTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRegisterDuplicateUsername(t *testing.T) {
	r := setupTestRouter(t)
	registerUser(t, r, "alice", "secret1")

	w := doJSON(t, r, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"password": "another",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestLogin(t *testing.T) {
	r := setupTestRouter(t)
	userID := registerUser(t, r, "alice", "secret1")

	w := doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "nobody",
		"password": "secret1",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/auth/login", map[string]string{
		"username": "alice",
		"password": "secret1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		UserID uint `json:"userId"`
	}
	decode(t, w, &resp)
	assert.Equal(t, userID, resp.UserID, "login returns the registered id")
}

type postResponse struct {
	ID             uint   `json:"id"`
	Title          string `json:"title"`
	Caption        string `json:"caption"`
	AuthorID       uint   `json:"authorId"`
	AuthorUsername string `json:"authorUsername"`
	MediaFiles     []struct {
		FileURL   string `json:"fileUrl"`
		MediaType string `json:"mediaType"`
		Position  int    `json:"position"`
	} `json:"mediaFiles"`
}

func TestPostLifecycle(t *testing.T) {
	r := setupTestRouter(t)
	userID := registerUser(t, r, "alice", "secret1")
	authorID := fmt.Sprint(userID)

	// Create a post with one photo.
	w := doMultipartPost(t, r, "/api/posts",
		map[string]string{"title": "Trip", "caption": "fun", "authorId": authorID},
		[]formFile{{name: "photo.jpg", content: []byte("jpeg bytes")}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var post postResponse
	decode(t, w, &post)
	assert.Equal(t, "Trip", post.Title)
	assert.Equal(t, "fun", post.Caption)
	assert.Equal(t, userID, post.AuthorID)
	assert.Equal(t, "alice", post.AuthorUsername)
	require.Len(t, post.MediaFiles, 1)
	assert.Equal(t, "photo", post.MediaFiles[0].MediaType)
	assert.Equal(t, 0, post.MediaFiles[0].Position)

	// The stored file is retrievable at the returned URL.
	w = doJSON(t, r, http.MethodGet, post.MediaFiles[0].FileURL, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg bytes", w.Body.String())

	// Comment on it.
	w = doJSON(t, r, http.MethodPost, "/api/comments", map[string]interface{}{
		"message":  "nice!",
		"authorId": userID,
		"postId":   post.ID,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Feed has exactly one post.
	w = doJSON(t, r, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed []postResponse
	decode(t, w, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, post.ID, feed[0].ID)

	// Post comments are listed newest first.
	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/comments/post/%d", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var comments []struct {
		Message string `json:"message"`
	}
	decode(t, w, &comments)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice!", comments[0].Message)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/comments/post/%d/count", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"commentCount":1`)

	// Delete cascades; the post is gone afterwards.
	w = doJSON(t, r, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/posts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &feed)
	assert.Empty(t, feed)
}

func TestCreatePostValidation(t *testing.T) {
	r := setupTestRouter(t)
	userID := registerUser(t, r, "alice", "secret1")
	authorID := fmt.Sprint(userID)

	// No files at all.
	w := doMultipartPost(t, r, "/api/posts",
		map[string]string{"title": "t", "caption": "", "authorId": authorID}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unsupported extension.
	w = doMultipartPost(t, r, "/api/posts",
		map[string]string{"title": "t", "caption": "", "authorId": authorID},
		[]formFile{{name: "virus.exe", content: []byte("x")}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown author.
	w = doMultipartPost(t, r, "/api/posts",
		map[string]string{"title": "t", "caption": "", "authorId": "9999"},
		[]formFile{{name: "a.jpg", content: []byte("x")}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Missing title.
	w = doMultipartPost(t, r, "/api/posts",
		map[string]string{"title": "  ", "caption": "", "authorId": authorID},
		[]formFile{{name: "a.jpg", content: []byte("x")}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPostsByUser(t *testing.T) {
	r := setupTestRouter(t)
	aliceID := registerUser(t, r, "alice", "secret1")
	bobID := registerUser(t, r, "bob", "secret2")

	w := doMultipartPost(t, r, "/api/posts",
		map[string]string{"title": "from alice", "caption": "", "authorId": fmt.Sprint(aliceID)},
		[]formFile{{name: "a.jpg", content: []byte("x")}})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/posts/user/%d", aliceID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var posts []postResponse
	decode(t, w, &posts)
	assert.Len(t, posts, 1)

	w = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/posts/user/%d", bobID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &posts)
	assert.Empty(t, posts)

	w = doJSON(t, r, http.MethodGet, "/api/posts/user/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentEndpointsValidation(t *testing.T) {
	r := setupTestRouter(t)
	userID := registerUser(t, r, "alice", "secret1")

	w := doMultipartPost(t, r, "/api/posts",
		map[string]string{"title": "t", "caption": "", "authorId": fmt.Sprint(userID)},
		[]formFile{{name: "a.jpg", content: []byte("x")}})
	require.Equal(t, http.StatusCreated, w.Code)
	var post postResponse
	decode(t, w, &post)

	// Blank message.
	w = doJSON(t, r, http.MethodPost, "/api/comments", map[string]interface{}{
		"message": "   ", "authorId": userID, "postId": post.ID,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown post.
	w = doJSON(t, r, http.MethodPost, "/api/comments", map[string]interface{}{
		"message": "hi", "authorId": userID, "postId": 9999,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unknown user on listing.
	w = doJSON(t, r, http.MethodGet, "/api/comments/user/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Unknown post on listing.
	w = doJSON(t, r, http.MethodGet, "/api/comments/post/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Delete of a missing comment.
	w = doJSON(t, r, http.MethodDelete, "/api/comments/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeFileNotFound(t *testing.T) {
	r := setupTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/files/photos/missing.jpg", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/files/../go.mod", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnknownRoute(t *testing.T) {
	r := setupTestRouter(t)
	w := doJSON(t, r, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "route not found")
}
