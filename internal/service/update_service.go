package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
	"github.com/abogida/abogida-api/pkg/jobs"
	"github.com/abogida/abogida-api/pkg/storage"
)

type feedRepository interface {
	Insert(ctx context.Context, update *models.DailyUpdate) error
	ListFeed(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error)
}

type mediaAssetRepository interface {
	Insert(ctx context.Context, asset *models.MediaAsset) error
	ListByUpdateIDs(ctx context.Context, schoolID string, updateIDs []string) ([]models.MediaAsset, error)
}

type classOwnershipRepository interface {
	OwnedByTeacher(ctx context.Context, classID, teacherID string) (bool, error)
}

// UpdateConfig tunes feed paging, attachment limits and preview TTLs.
type UpdateConfig struct {
	PageSize         int
	SignedURLTTL     time.Duration
	PreviewCacheTTL  time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// PreviewWarmPayload is the background job enqueued after a successful
// attachment write so the first feed render finds its signed URL cached.
type PreviewWarmPayload struct {
	AssetID string
	Path    string
}

// UpdateService orchestrates the daily updates feed: idempotent page fetches,
// the two-phase post (text row first, attachment best-effort second) and batch
// media preview resolution.
type UpdateService struct {
	updates   feedRepository
	media     mediaAssetRepository
	classes   classOwnershipRepository
	store     storage.ObjectStorage
	cache     *CacheService
	warmQueue *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
	cfg       UpdateConfig
}

// NewUpdateService constructs an UpdateService.
func NewUpdateService(updates feedRepository, media mediaAssetRepository, classes classOwnershipRepository, store storage.ObjectStorage, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg UpdateConfig) *UpdateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.SignedURLTTL <= 0 {
		cfg.SignedURLTTL = time.Hour
	}
	return &UpdateService{
		updates:   updates,
		media:     media,
		classes:   classes,
		store:     store,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// SetWarmQueue attaches the preview warm queue. Optional; posts work without it.
func (s *UpdateService) SetWarmQueue(q *jobs.Queue) { s.warmQueue = q }

// WarmPreview resolves and caches the signed URL for one asset. Used as the
// warm queue handler.
func (s *UpdateService) WarmPreview(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(PreviewWarmPayload)
	if !ok {
		return fmt.Errorf("unexpected warm payload %T", job.Payload)
	}
	url, err := s.store.SignedURL(ctx, payload.Path, s.cfg.SignedURLTTL)
	if err != nil {
		return fmt.Errorf("warm preview %s: %w", payload.AssetID, err)
	}
	return s.cache.Set(ctx, previewCacheKey(payload.AssetID), url, s.cfg.PreviewCacheTTL)
}

// ListFeed returns one page of the caller's school feed, newest first. The
// fetch is idempotent; callers may safely retry or discard results.
func (s *UpdateService) ListFeed(ctx context.Context, caller models.Caller, q models.FeedQuery) (*models.FeedPage, error) {
	if caller.Role == models.RoleUnknown || caller.SchoolID == "" {
		return &models.FeedPage{Updates: []models.DailyUpdateDetail{}, Page: q.Page, PageSize: s.cfg.PageSize}, nil
	}
	q.SchoolID = caller.SchoolID
	if q.PageSize <= 0 {
		q.PageSize = s.cfg.PageSize
	}
	page, err := s.updates.ListFeed(ctx, q)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch feed page")
	}
	return page, nil
}

// Post publishes a daily update. Phase one inserts the text row and any
// failure there aborts the post. Phase two uploads the attachment and links
// its media row; failure there degrades the result rather than rolling the
// update back, so the text survives and the client is told the attachment was
// dropped.
func (s *UpdateService) Post(ctx context.Context, caller models.Caller, req models.PostUpdateRequest) (*models.PostResult, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "class and non-empty text are required")
	}
	if !caller.IsTeacher() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only teachers can post updates")
	}

	owned, err := s.classes.OwnedByTeacher(ctx, req.ClassID, *caller.TeacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify class ownership")
	}
	if !owned {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "class does not belong to caller")
	}

	update := &models.DailyUpdate{
		SchoolID:    caller.SchoolID,
		ClassID:     req.ClassID,
		TeacherID:   *caller.TeacherID,
		TextContent: req.Text,
	}
	if err := s.updates.Insert(ctx, update); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save update")
	}

	result := &models.PostResult{Update: *update}
	if req.Attachment == nil {
		return result, nil
	}

	asset, err := s.attachMedia(ctx, caller, update, req.Attachment)
	if err != nil {
		// the update stands; there is no rollback or cleanup of a
		// half-written attachment
		s.logger.Warn("attachment phase failed",
			zap.String("update_id", update.ID),
			zap.String("file_name", req.Attachment.FileName),
			zap.Error(err))
		result.MediaError = err.Error()
		return result, nil
	}
	result.Media = asset

	if s.warmQueue != nil {
		job := jobs.Job{
			ID:      uuid.NewString(),
			Type:    "preview_warm",
			Payload: PreviewWarmPayload{AssetID: asset.ID, Path: asset.FilePath},
		}
		if err := s.warmQueue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue preview warm", zap.String("asset_id", asset.ID), zap.Error(err))
		}
	}
	return result, nil
}

func (s *UpdateService) attachMedia(ctx context.Context, caller models.Caller, update *models.DailyUpdate, upload *models.MediaUpload) (*models.MediaAsset, error) {
	if upload.Reader == nil {
		return nil, fmt.Errorf("attachment has no content")
	}
	if s.cfg.MaxFileSizeBytes > 0 && upload.Size > s.cfg.MaxFileSizeBytes {
		return nil, fmt.Errorf("attachment exceeds %d bytes", s.cfg.MaxFileSizeBytes)
	}
	if len(s.cfg.AllowedMIMEs) > 0 && !mimeAllowed(s.cfg.AllowedMIMEs, upload.ContentType) {
		return nil, fmt.Errorf("attachment type %s not allowed", upload.ContentType)
	}

	path := fmt.Sprintf("%s/updates/%s/%d_%s", caller.SchoolID, update.TeacherID, time.Now().UTC().Unix(), sanitizeFileName(upload.FileName))
	if err := s.store.Upload(ctx, path, upload.Reader, upload.ContentType); err != nil {
		return nil, fmt.Errorf("upload attachment: %w", err)
	}

	asset := &models.MediaAsset{
		SchoolID:   update.SchoolID,
		UpdateID:   update.ID,
		UploadedBy: caller.UserID,
		FileName:   upload.FileName,
		FilePath:   path,
		FileType:   upload.ContentType,
		FileSize:   upload.Size,
	}
	if err := s.media.Insert(ctx, asset); err != nil {
		return nil, fmt.Errorf("link media asset: %w", err)
	}
	return asset, nil
}

// ResolvePreviews turns the attachments of a feed page into display-ready
// previews with one relational query. A signed URL that cannot be produced
// marks that asset unresolved and never fails the batch.
func (s *UpdateService) ResolvePreviews(ctx context.Context, schoolID string, updateIDs []string) (map[string][]models.MediaPreview, error) {
	previews := make(map[string][]models.MediaPreview)
	if len(updateIDs) == 0 {
		return previews, nil
	}

	assets, err := s.media.ListByUpdateIDs(ctx, schoolID, updateIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load media assets")
	}

	for _, asset := range assets {
		preview := models.MediaPreview{
			AssetID:  asset.ID,
			UpdateID: asset.UpdateID,
			FileName: asset.FileName,
			FileType: asset.FileType,
		}

		url, hit := s.cachedPreviewURL(ctx, asset.ID)
		if !hit {
			url, err = s.store.SignedURL(ctx, asset.FilePath, s.cfg.SignedURLTTL)
			if err != nil {
				s.logger.Warn("signed url resolution failed",
					zap.String("asset_id", asset.ID),
					zap.String("update_id", asset.UpdateID),
					zap.Error(err))
				previews[asset.UpdateID] = append(previews[asset.UpdateID], preview)
				continue
			}
		}

		preview.URL = url
		preview.ExpiresAt = time.Now().UTC().Add(s.cfg.SignedURLTTL)
		preview.Resolved = true
		previews[asset.UpdateID] = append(previews[asset.UpdateID], preview)
	}
	return previews, nil
}

func (s *UpdateService) cachedPreviewURL(ctx context.Context, assetID string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	var url string
	hit, err := s.cache.Get(ctx, previewCacheKey(assetID), &url)
	if err != nil || !hit || url == "" {
		return "", false
	}
	return url, true
}

func previewCacheKey(assetID string) string {
	return "feed:preview:" + assetID
}

func mimeAllowed(allowed []string, contentType string) bool {
	for _, mime := range allowed {
		if strings.EqualFold(mime, contentType) {
			return true
		}
	}
	return false
}

func sanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "attachment"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
