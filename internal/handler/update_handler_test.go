package handler

import (
	"bytes"
	"context"
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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abogida/abogida-api/internal/middleware"
	"github.com/abogida/abogida-api/internal/models"
	"github.com/abogida/abogida-api/internal/service"
)

type stubFeedRepo struct {
	page    *models.FeedPage
	updates []models.DailyUpdate
}

func (s *stubFeedRepo) Insert(_ context.Context, update *models.DailyUpdate) error {
	update.ID = fmt.Sprintf("u-%d", len(s.updates)+1)
	update.CreatedAt = time.Now().UTC()
	s.updates = append(s.updates, *update)
	return nil
}

func (s *stubFeedRepo) ListFeed(_ context.Context, q models.FeedQuery) (*models.FeedPage, error) {
	if s.page != nil {
		return s.page, nil
	}
	return &models.FeedPage{Updates: []models.DailyUpdateDetail{}, Page: q.Page, PageSize: q.PageSize}, nil
}

type stubMediaRepo struct {
	assets []models.MediaAsset
}

func (s *stubMediaRepo) Insert(_ context.Context, asset *models.MediaAsset) error {
	asset.ID = fmt.Sprintf("m-%d", len(s.assets)+1)
	s.assets = append(s.assets, *asset)
	return nil
}

func (s *stubMediaRepo) ListByUpdateIDs(_ context.Context, _ string, _ []string) ([]models.MediaAsset, error) {
	return s.assets, nil
}

type stubOwnership struct{}

func (stubOwnership) OwnedByTeacher(_ context.Context, _, _ string) (bool, error) { return true, nil }

type stubStore struct {
	uploads map[string][]byte
}

func (s *stubStore) Upload(_ context.Context, path string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if s.uploads == nil {
		s.uploads = map[string][]byte{}
	}
	s.uploads[path] = data
	return nil
}

func (s *stubStore) List(_ context.Context, _ string) ([]string, error) { return nil, nil }

func (s *stubStore) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	return "https://media.test/" + path, nil
}

func testRouter(h *UpdateHandler, cc *models.CallerContext) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if cc != nil {
			c.Set(middleware.ContextCallerKey, cc)
		}
	})
	router.GET("/updates", h.ListFeed)
	router.POST("/updates", h.Post)
	return router
}

func teacherContext() *models.CallerContext {
	teacherID := "t-1"
	return &models.CallerContext{
		Caller:  models.Caller{UserID: "user-1", Role: models.RoleTeacher, SchoolID: "school-1", TeacherID: &teacherID},
		Classes: []models.ClassRef{{ID: "class-1", Name: "Grade 1A"}},
	}
}

func newTestUpdateService(feed *stubFeedRepo, media *stubMediaRepo, store *stubStore) *service.UpdateService {
	return service.NewUpdateService(feed, media, stubOwnership{}, store, nil, nil, nil, service.UpdateConfig{
		PageSize:         10,
		SignedURLTTL:     time.Hour,
		MaxFileSizeBytes: 1 << 20,
		AllowedMIMEs:     []string{"image/jpeg"},
	})
}

func TestUpdateHandlerListFeed(t *testing.T) {
	feed := &stubFeedRepo{page: &models.FeedPage{
		Updates: []models.DailyUpdateDetail{
			{DailyUpdate: models.DailyUpdate{ID: "u-1", TextContent: "hi"}, TeacherName: "Teacher A", ClassName: "Grade 1A"},
		},
		Page: 0, PageSize: 10, HasMore: true,
	}}
	media := &stubMediaRepo{assets: []models.MediaAsset{
		{ID: "m-1", SchoolID: "school-1", UpdateID: "u-1", FileName: "a.jpg", FilePath: "p/a.jpg", FileType: "image/jpeg"},
	}}
	h := NewUpdateHandler(newTestUpdateService(feed, media, &stubStore{}))
	router := testRouter(h, teacherContext())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/updates?page=0", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data struct {
			Updates  []models.DailyUpdateDetail             `json:"updates"`
			Previews map[string][]models.MediaPreview       `json:"previews"`
			HasMore  bool                                   `json:"has_more"`
		} `json:"data"`
		Pagination *models.Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Updates, 1)
	assert.True(t, envelope.Data.HasMore)
	require.Len(t, envelope.Data.Previews["u-1"], 1)
	assert.True(t, envelope.Data.Previews["u-1"][0].Resolved)
	require.NotNil(t, envelope.Pagination)
	assert.Equal(t, 10, envelope.Pagination.PageSize)
}

func TestUpdateHandlerListFeedUnauthenticated(t *testing.T) {
	h := NewUpdateHandler(newTestUpdateService(&stubFeedRepo{}, &stubMediaRepo{}, &stubStore{}))
	router := testRouter(h, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/updates", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateHandlerPostMultipart(t *testing.T) {
	feed := &stubFeedRepo{}
	media := &stubMediaRepo{}
	store := &stubStore{}
	h := NewUpdateHandler(newTestUpdateService(feed, media, store))
	router := testRouter(h, teacherContext())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("class_id", "class-1"))
	require.NoError(t, writer.WriteField("text", "field trip tomorrow"))
	part, err := writer.CreatePart(map[string][]string{
		"Content-Disposition": {`form-data; name="file"; filename="photo.jpg"`},
		"Content-Type":        {"image/jpeg"},
	})
	require.NoError(t, err)
	_, err = part.Write([]byte("jpegdata"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/updates", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, feed.updates, 1)
	assert.Len(t, media.assets, 1)
	assert.Len(t, store.uploads, 1)
	assert.NotContains(t, w.Body.String(), "media_error")
}

func TestUpdateHandlerPostTextOnly(t *testing.T) {
	feed := &stubFeedRepo{}
	h := NewUpdateHandler(newTestUpdateService(feed, &stubMediaRepo{}, &stubStore{}))
	router := testRouter(h, teacherContext())

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("class_id", "class-1"))
	require.NoError(t, writer.WriteField("text", "no attachment"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/updates", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, feed.updates, 1)
}

func TestUpdateHandlerPostValidation(t *testing.T) {
	feed := &stubFeedRepo{}
	h := NewUpdateHandler(newTestUpdateService(feed, &stubMediaRepo{}, &stubStore{}))
	router := testRouter(h, teacherContext())

	body := strings.NewReader("class_id=class-1&text=")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/updates", body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, feed.updates)
}
