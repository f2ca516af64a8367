package feed

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

// State names the lifecycle phase of the active feed key.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateErrored State = "errored"
)

// Key identifies one page of one filtered feed. An empty Filter is the
// unfiltered school-wide feed.
type Key struct {
	Page   int
	Filter string
}

// UpdatesAPI is the slice of the update service the controller drives.
type UpdatesAPI interface {
	ListFeed(ctx context.Context, caller models.Caller, q models.FeedQuery) (*models.FeedPage, error)
	Post(ctx context.Context, caller models.Caller, req models.PostUpdateRequest) (*models.PostResult, error)
	ResolvePreviews(ctx context.Context, schoolID string, updateIDs []string) (map[string][]models.MediaPreview, error)
}

// Snapshot is a consistent read of the controller's visible state.
type Snapshot struct {
	State    State
	Key      Key
	Page     *models.FeedPage
	Err      error
	Previews map[string][]models.MediaPreview
	Posting  bool
}

// Controller is the long-lived state machine behind one caller's feed view.
// Every navigation (filter select, page change, refresh) immediately enters
// Loading for the new key and starts an asynchronous fetch tagged with a
// sequence number; a result whose sequence no longer matches is discarded, so
// the last requested key always wins regardless of response ordering. Media
// previews resolve asynchronously after a page lands and merge into the
// preview map rather than replacing it. The previously rendered page is kept
// through Loading and Errored so the view never blanks.
type Controller struct {
	ctx    context.Context
	caller models.Caller
	svc    UpdatesAPI
	logger *zap.Logger

	pageSize int

	mu       sync.Mutex
	seq      uint64
	key      Key
	state    State
	page     *models.FeedPage
	err      error
	previews map[string][]models.MediaPreview
	posting  bool
	wg       sync.WaitGroup
}

// NewController builds a controller bound to one caller. The context carries
// the session lifetime; cancelling it stops in-flight work.
func NewController(ctx context.Context, caller models.Caller, svc UpdatesAPI, pageSize int, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	return &Controller{
		ctx:      ctx,
		caller:   caller,
		svc:      svc,
		logger:   logger,
		pageSize: pageSize,
		state:    StateIdle,
		previews: make(map[string][]models.MediaPreview),
	}
}

// Activate performs the initial transition: Loading for page zero, no filter.
func (c *Controller) Activate() {
	c.load(Key{Page: 0, Filter: ""})
}

// Select switches to a class filter and resets to page zero.
func (c *Controller) Select(filter string) {
	c.load(Key{Page: 0, Filter: filter})
}

// SetPage navigates within the current filter.
func (c *Controller) SetPage(page int) {
	if page < 0 {
		page = 0
	}
	c.mu.Lock()
	filter := c.key.Filter
	c.mu.Unlock()
	c.load(Key{Page: page, Filter: filter})
}

// Refresh re-fetches the active key.
func (c *Controller) Refresh() {
	c.mu.Lock()
	key := c.key
	c.mu.Unlock()
	c.load(key)
}

// load transitions to Loading for the key and starts the fetch. Bumping the
// sequence under the lock logically invalidates every fetch still in flight.
func (c *Controller) load(key Key) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.key = key
	c.state = StateLoading
	c.err = nil
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		page, err := c.svc.ListFeed(c.ctx, c.caller, models.FeedQuery{
			ClassID:  key.Filter,
			Page:     key.Page,
			PageSize: c.pageSize,
		})

		c.mu.Lock()
		if seq != c.seq {
			// a newer request owns the view now
			c.mu.Unlock()
			return
		}
		if err != nil {
			c.state = StateErrored
			c.err = err
			c.mu.Unlock()
			c.logger.Warn("feed fetch failed", zap.Int("page", key.Page), zap.String("filter", key.Filter), zap.Error(err))
			return
		}
		c.state = StateLoaded
		c.page = page
		c.mu.Unlock()

		c.resolvePreviews(page)
	}()
}

// resolvePreviews fetches signed previews for a landed page and merges them
// in. Failures leave existing previews untouched; entries without a resolved
// preview render without media.
func (c *Controller) resolvePreviews(page *models.FeedPage) {
	if page == nil || len(page.Updates) == 0 {
		return
	}
	ids := make([]string, 0, len(page.Updates))
	for _, update := range page.Updates {
		ids = append(ids, update.ID)
	}

	previews, err := c.svc.ResolvePreviews(c.ctx, c.caller.SchoolID, ids)
	if err != nil {
		c.logger.Warn("preview resolution failed", zap.Int("updates", len(ids)), zap.Error(err))
		return
	}

	c.mu.Lock()
	for updateID, list := range previews {
		c.previews[updateID] = list
	}
	c.mu.Unlock()
}

// Post submits the composer. Only one post may be in flight; a second submit
// while the first is pending is rejected. On success the active key reloads
// so the new entry appears.
func (c *Controller) Post(req models.PostUpdateRequest) (*models.PostResult, error) {
	c.mu.Lock()
	if c.posting {
		c.mu.Unlock()
		return nil, appErrors.Clone(appErrors.ErrConflict, "a post is already in progress")
	}
	c.posting = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.posting = false
		c.mu.Unlock()
	}()

	result, err := c.svc.Post(c.ctx, c.caller, req)
	if err != nil {
		return nil, err
	}

	c.Refresh()
	return result, nil
}

// Snapshot returns a copy of the visible state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	previews := make(map[string][]models.MediaPreview, len(c.previews))
	for updateID, list := range c.previews {
		previews[updateID] = list
	}
	return Snapshot{
		State:    c.state,
		Key:      c.key,
		Page:     c.page,
		Err:      c.err,
		Previews: previews,
		Posting:  c.posting,
	}
}

// Wait blocks until in-flight fetches finish. Intended for shutdown paths.
func (c *Controller) Wait() {
	c.wg.Wait()
}
