package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

type fakeFeedRepo struct {
	updates   []models.DailyUpdate
	insertErr error
	listErr   error
	pages     map[string]*models.FeedPage
}

func (f *fakeFeedRepo) Insert(_ context.Context, update *models.DailyUpdate) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if update.ID == "" {
		update.ID = fmt.Sprintf("u-%d", len(f.updates)+1)
	}
	update.CreatedAt = time.Now().UTC()
	f.updates = append(f.updates, *update)
	return nil
}

func (f *fakeFeedRepo) ListFeed(_ context.Context, q models.FeedQuery) (*models.FeedPage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if page, ok := f.pages[fmt.Sprintf("%s|%d", q.ClassID, q.Page)]; ok {
		return page, nil
	}
	return &models.FeedPage{Updates: []models.DailyUpdateDetail{}, Page: q.Page, PageSize: q.PageSize}, nil
}

type fakeMediaRepo struct {
	assets    []models.MediaAsset
	insertErr error
	listErr   error
}

func (f *fakeMediaRepo) Insert(_ context.Context, asset *models.MediaAsset) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if asset.ID == "" {
		asset.ID = fmt.Sprintf("m-%d", len(f.assets)+1)
	}
	f.assets = append(f.assets, *asset)
	return nil
}

func (f *fakeMediaRepo) ListByUpdateIDs(_ context.Context, schoolID string, updateIDs []string) ([]models.MediaAsset, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.MediaAsset, 0)
	for _, asset := range f.assets {
		if asset.SchoolID != schoolID {
			continue
		}
		for _, id := range updateIDs {
			if asset.UpdateID == id {
				out = append(out, asset)
			}
		}
	}
	return out, nil
}

type fakeClassOwnership struct {
	owned map[string]string // class id -> teacher id
	err   error
}

func (f *fakeClassOwnership) OwnedByTeacher(_ context.Context, classID, teacherID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.owned[classID] == teacherID, nil
}

type fakeObjectStore struct {
	uploads   map[string][]byte
	uploadErr error
	signErr   map[string]error
}

func (f *fakeObjectStore) Upload(_ context.Context, path string, r io.Reader, _ string) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if f.uploads == nil {
		f.uploads = map[string][]byte{}
	}
	f.uploads[path] = data
	return nil
}

func (f *fakeObjectStore) List(_ context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	for path := range f.uploads {
		if strings.HasPrefix(path, prefix) {
			keys = append(keys, path)
		}
	}
	return keys, nil
}

func (f *fakeObjectStore) SignedURL(_ context.Context, path string, _ time.Duration) (string, error) {
	if err := f.signErr[path]; err != nil {
		return "", err
	}
	return "https://media.test/" + path, nil
}

func teacherCaller() models.Caller {
	teacherID := "t-1"
	return models.Caller{UserID: "user-1", Role: models.RoleTeacher, SchoolID: "school-1", TeacherID: &teacherID}
}

func newUpdateService(feed *fakeFeedRepo, media *fakeMediaRepo, classes *fakeClassOwnership, store *fakeObjectStore) *UpdateService {
	return NewUpdateService(feed, media, classes, store, nil, nil, nil, UpdateConfig{
		PageSize:         10,
		SignedURLTTL:     time.Hour,
		MaxFileSizeBytes: 1 << 20,
		AllowedMIMEs:     []string{"image/jpeg", "application/pdf"},
	})
}

func TestUpdateServicePostTextOnly(t *testing.T) {
	feed := &fakeFeedRepo{}
	classes := &fakeClassOwnership{owned: map[string]string{"class-1": "t-1"}}
	svc := newUpdateService(feed, &fakeMediaRepo{}, classes, &fakeObjectStore{})

	result, err := svc.Post(context.Background(), teacherCaller(), models.PostUpdateRequest{ClassID: "class-1", Text: "  hello class  "})
	require.NoError(t, err)
	assert.Equal(t, "hello class", result.Update.TextContent)
	assert.False(t, result.Degraded())
	assert.Len(t, feed.updates, 1)
}

func TestUpdateServicePostValidationShortCircuits(t *testing.T) {
	feed := &fakeFeedRepo{}
	svc := newUpdateService(feed, &fakeMediaRepo{}, &fakeClassOwnership{}, &fakeObjectStore{})

	_, err := svc.Post(context.Background(), teacherCaller(), models.PostUpdateRequest{ClassID: "class-1", Text: "   "})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, feed.updates, "phase one must not run on invalid input")
}

func TestUpdateServicePostRequiresTeacher(t *testing.T) {
	svc := newUpdateService(&fakeFeedRepo{}, &fakeMediaRepo{}, &fakeClassOwnership{}, &fakeObjectStore{})

	_, err := svc.Post(context.Background(), models.Caller{UserID: "p", Role: models.RoleParent, SchoolID: "school-1"}, models.PostUpdateRequest{ClassID: "class-1", Text: "hi"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestUpdateServicePostWithAttachment(t *testing.T) {
	feed := &fakeFeedRepo{}
	media := &fakeMediaRepo{}
	store := &fakeObjectStore{}
	classes := &fakeClassOwnership{owned: map[string]string{"class-1": "t-1"}}
	svc := newUpdateService(feed, media, classes, store)

	result, err := svc.Post(context.Background(), teacherCaller(), models.PostUpdateRequest{
		ClassID: "class-1",
		Text:    "photo day",
		Attachment: &models.MediaUpload{
			FileName:    "class photo.jpg",
			ContentType: "image/jpeg",
			Size:        4,
			Reader:      bytes.NewReader([]byte("data")),
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result.Media)
	assert.False(t, result.Degraded())
	assert.Len(t, media.assets, 1)
	assert.Contains(t, result.Media.FilePath, "school-1/updates/t-1/")
	assert.Contains(t, result.Media.FilePath, "class_photo.jpg")
}

func TestUpdateServicePostAttachmentFailureDegrades(t *testing.T) {
	feed := &fakeFeedRepo{}
	media := &fakeMediaRepo{}
	store := &fakeObjectStore{uploadErr: errors.New("bucket unavailable")}
	classes := &fakeClassOwnership{owned: map[string]string{"class-1": "t-1"}}
	svc := newUpdateService(feed, media, classes, store)

	result, err := svc.Post(context.Background(), teacherCaller(), models.PostUpdateRequest{
		ClassID: "class-1",
		Text:    "still posts",
		Attachment: &models.MediaUpload{
			FileName:    "photo.jpg",
			ContentType: "image/jpeg",
			Size:        4,
			Reader:      bytes.NewReader([]byte("data")),
		},
	})
	require.NoError(t, err, "attachment failure must not fail the post")
	assert.True(t, result.Degraded())
	assert.Len(t, feed.updates, 1, "text row survives")
	assert.Empty(t, media.assets, "no media row without an upload")
}

func TestUpdateServicePostRejectsDisallowedMIME(t *testing.T) {
	feed := &fakeFeedRepo{}
	classes := &fakeClassOwnership{owned: map[string]string{"class-1": "t-1"}}
	svc := newUpdateService(feed, &fakeMediaRepo{}, classes, &fakeObjectStore{})

	result, err := svc.Post(context.Background(), teacherCaller(), models.PostUpdateRequest{
		ClassID: "class-1",
		Text:    "exe attached",
		Attachment: &models.MediaUpload{
			FileName:    "virus.exe",
			ContentType: "application/octet-stream",
			Size:        4,
			Reader:      bytes.NewReader([]byte("data")),
		},
	})
	require.NoError(t, err)
	assert.True(t, result.Degraded())
	assert.Len(t, feed.updates, 1)
}

func TestUpdateServiceListFeedUnknownRoleEmpty(t *testing.T) {
	svc := newUpdateService(&fakeFeedRepo{}, &fakeMediaRepo{}, &fakeClassOwnership{}, &fakeObjectStore{})

	page, err := svc.ListFeed(context.Background(), models.Caller{UserID: "x", Role: models.RoleUnknown}, models.FeedQuery{Page: 0})
	require.NoError(t, err)
	assert.Empty(t, page.Updates)
}

func TestUpdateServiceResolvePreviewsIsolatesFailures(t *testing.T) {
	media := &fakeMediaRepo{assets: []models.MediaAsset{
		{ID: "m-1", SchoolID: "school-1", UpdateID: "u-1", FileName: "a.jpg", FilePath: "p/a.jpg", FileType: "image/jpeg"},
		{ID: "m-2", SchoolID: "school-1", UpdateID: "u-2", FileName: "b.jpg", FilePath: "p/b.jpg", FileType: "image/jpeg"},
	}}
	store := &fakeObjectStore{signErr: map[string]error{"p/b.jpg": errors.New("sign failed")}}
	svc := newUpdateService(&fakeFeedRepo{}, media, &fakeClassOwnership{}, store)

	previews, err := svc.ResolvePreviews(context.Background(), "school-1", []string{"u-1", "u-2"})
	require.NoError(t, err, "one bad asset must not abort the batch")
	require.Len(t, previews["u-1"], 1)
	require.Len(t, previews["u-2"], 1)
	assert.True(t, previews["u-1"][0].Resolved)
	assert.NotEmpty(t, previews["u-1"][0].URL)
	assert.False(t, previews["u-2"][0].Resolved)
	assert.Empty(t, previews["u-2"][0].URL)
}

func TestUpdateServiceResolvePreviewsEmptyPage(t *testing.T) {
	svc := newUpdateService(&fakeFeedRepo{}, &fakeMediaRepo{}, &fakeClassOwnership{}, &fakeObjectStore{})

	previews, err := svc.ResolvePreviews(context.Background(), "school-1", nil)
	require.NoError(t, err)
	assert.Empty(t, previews)
}
