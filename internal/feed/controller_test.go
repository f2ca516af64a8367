package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abogida/abogida-api/internal/models"
	appErrors "github.com/abogida/abogida-api/pkg/errors"
)

// fakeUpdates serves canned pages and can hold individual fetches hostage to
// exercise request ordering.
type fakeUpdates struct {
	mu       sync.Mutex
	pages    map[string]*models.FeedPage
	previews map[string][]models.MediaPreview
	listErr  map[string]error
	gates    map[string]chan struct{}
	postErr  error
	posted   []models.PostUpdateRequest
	postGate chan struct{}
	listens  int
}

func queryKey(q models.FeedQuery) string { return fmt.Sprintf("%s|%d", q.ClassID, q.Page) }

func (f *fakeUpdates) ListFeed(ctx context.Context, _ models.Caller, q models.FeedQuery) (*models.FeedPage, error) {
	key := queryKey(q)
	f.mu.Lock()
	gate := f.gates[key]
	err := f.listErr[key]
	page := f.pages[key]
	f.listens++
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	if page == nil {
		page = &models.FeedPage{Updates: []models.DailyUpdateDetail{}, Page: q.Page, PageSize: q.PageSize}
	}
	return page, nil
}

func (f *fakeUpdates) Post(_ context.Context, _ models.Caller, req models.PostUpdateRequest) (*models.PostResult, error) {
	if f.postGate != nil {
		<-f.postGate
	}
	if f.postErr != nil {
		return nil, f.postErr
	}
	f.mu.Lock()
	f.posted = append(f.posted, req)
	f.mu.Unlock()
	return &models.PostResult{Update: models.DailyUpdate{ID: "new", TextContent: req.Text}}, nil
}

func (f *fakeUpdates) ResolvePreviews(_ context.Context, _ string, updateIDs []string) (map[string][]models.MediaPreview, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string][]models.MediaPreview)
	for _, id := range updateIDs {
		if list, ok := f.previews[id]; ok {
			out[id] = list
		}
	}
	return out, nil
}

func pageWith(page int, ids ...string) *models.FeedPage {
	updates := make([]models.DailyUpdateDetail, 0, len(ids))
	for _, id := range ids {
		updates = append(updates, models.DailyUpdateDetail{DailyUpdate: models.DailyUpdate{ID: id}})
	}
	return &models.FeedPage{Updates: updates, Page: page, PageSize: 10, HasMore: false}
}

func testCaller() models.Caller {
	teacherID := "t-1"
	return models.Caller{UserID: "user-1", Role: models.RoleTeacher, SchoolID: "school-1", TeacherID: &teacherID}
}

func waitLoaded(t *testing.T, c *Controller, key Key) Snapshot {
	t.Helper()
	var snap Snapshot
	require.Eventually(t, func() bool {
		snap = c.Snapshot()
		return snap.State == StateLoaded && snap.Key == key
	}, time.Second, 2*time.Millisecond)
	return snap
}

func TestControllerActivateLoadsFirstPage(t *testing.T) {
	svc := &fakeUpdates{pages: map[string]*models.FeedPage{"|0": pageWith(0, "u-1", "u-2")}}
	c := NewController(context.Background(), testCaller(), svc, 10, nil)

	assert.Equal(t, StateIdle, c.Snapshot().State)
	c.Activate()

	snap := waitLoaded(t, c, Key{Page: 0, Filter: ""})
	require.NotNil(t, snap.Page)
	assert.Len(t, snap.Page.Updates, 2)
	assert.NoError(t, snap.Err)
}

func TestControllerRefreshIsIdempotent(t *testing.T) {
	svc := &fakeUpdates{pages: map[string]*models.FeedPage{"|0": pageWith(0, "u-1")}}
	c := NewController(context.Background(), testCaller(), svc, 10, nil)

	c.Activate()
	first := waitLoaded(t, c, Key{Page: 0, Filter: ""})

	c.Refresh()
	second := waitLoaded(t, c, Key{Page: 0, Filter: ""})
	assert.Equal(t, first.Page.Updates, second.Page.Updates)
}

func TestControllerStaleFetchIsDiscarded(t *testing.T) {
	gate := make(chan struct{})
	svc := &fakeUpdates{
		pages: map[string]*models.FeedPage{
			"|0": pageWith(0, "stale"),
			"|1": pageWith(1, "fresh"),
		},
		gates: map[string]chan struct{}{"|0": gate},
	}
	c := NewController(context.Background(), testCaller(), svc, 10, nil)

	c.Activate() // page 0 hangs on the gate
	c.SetPage(1) // supersedes it

	snap := waitLoaded(t, c, Key{Page: 1, Filter: ""})
	assert.Equal(t, "fresh", snap.Page.Updates[0].ID)

	close(gate) // the stale response arrives late
	c.Wait()

	snap = c.Snapshot()
	assert.Equal(t, Key{Page: 1, Filter: ""}, snap.Key)
	assert.Equal(t, "fresh", snap.Page.Updates[0].ID, "late result for a superseded key must not win")
	assert.Equal(t, StateLoaded, snap.State)
}

func TestControllerErrorKeepsRenderedEntries(t *testing.T) {
	svc := &fakeUpdates{
		pages:   map[string]*models.FeedPage{"|0": pageWith(0, "u-1")},
		listErr: map[string]error{"|1": errors.New("timeout")},
	}
	c := NewController(context.Background(), testCaller(), svc, 10, nil)

	c.Activate()
	waitLoaded(t, c, Key{Page: 0, Filter: ""})

	c.SetPage(1)
	require.Eventually(t, func() bool {
		return c.Snapshot().State == StateErrored
	}, time.Second, 2*time.Millisecond)

	snap := c.Snapshot()
	assert.Error(t, snap.Err)
	require.NotNil(t, snap.Page, "previous page stays rendered through the error")
	assert.Equal(t, "u-1", snap.Page.Updates[0].ID)
	assert.Equal(t, Key{Page: 1, Filter: ""}, snap.Key, "error is published for the key that failed")
}

func TestControllerSelectResetsToPageZero(t *testing.T) {
	svc := &fakeUpdates{pages: map[string]*models.FeedPage{
		"|2":        pageWith(2, "u-3"),
		"class-1|0": pageWith(0, "u-9"),
	}}
	c := NewController(context.Background(), testCaller(), svc, 10, nil)

	c.SetPage(2)
	waitLoaded(t, c, Key{Page: 2, Filter: ""})

	c.Select("class-1")
	snap := waitLoaded(t, c, Key{Page: 0, Filter: "class-1"})
	assert.Equal(t, "u-9", snap.Page.Updates[0].ID)
}

func TestControllerPreviewsMergeAcrossPages(t *testing.T) {
	svc := &fakeUpdates{
		pages: map[string]*models.FeedPage{
			"|0": pageWith(0, "u-1"),
			"|1": pageWith(1, "u-2"),
		},
		previews: map[string][]models.MediaPreview{
			"u-1": {{AssetID: "m-1", UpdateID: "u-1", Resolved: true, URL: "https://media.test/a"}},
			"u-2": {{AssetID: "m-2", UpdateID: "u-2", Resolved: true, URL: "https://media.test/b"}},
		},
	}
	c := NewController(context.Background(), testCaller(), svc, 10, nil)

	c.Activate()
	waitLoaded(t, c, Key{Page: 0, Filter: ""})
	require.Eventually(t, func() bool {
		return len(c.Snapshot().Previews["u-1"]) == 1
	}, time.Second, 2*time.Millisecond)

	c.SetPage(1)
	waitLoaded(t, c, Key{Page: 1, Filter: ""})
	require.Eventually(t, func() bool {
		return len(c.Snapshot().Previews["u-2"]) == 1
	}, time.Second, 2*time.Millisecond)

	snap := c.Snapshot()
	assert.Len(t, snap.Previews["u-1"], 1, "previews merge, they are not replaced per page")
	assert.Len(t, snap.Previews["u-2"], 1)
}

func TestControllerSingleFlightPost(t *testing.T) {
	gate := make(chan struct{})
	svc := &fakeUpdates{postGate: gate}
	c := NewController(context.Background(), testCaller(), svc, 10, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := c.Post(models.PostUpdateRequest{ClassID: "class-1", Text: "first"})
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		return c.Snapshot().Posting
	}, time.Second, 2*time.Millisecond)

	_, err := c.Post(models.PostUpdateRequest{ClassID: "class-1", Text: "second"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	close(gate)
	<-done
	assert.False(t, c.Snapshot().Posting)
}

func TestControllerPostSuccessRefreshesActiveKey(t *testing.T) {
	svc := &fakeUpdates{pages: map[string]*models.FeedPage{"|0": pageWith(0, "u-1")}}
	c := NewController(context.Background(), testCaller(), svc, 10, nil)

	c.Activate()
	waitLoaded(t, c, Key{Page: 0, Filter: ""})

	f := svc
	f.mu.Lock()
	before := f.listens
	f.mu.Unlock()

	_, err := c.Post(models.PostUpdateRequest{ClassID: "class-1", Text: "hello"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.listens > before
	}, time.Second, 2*time.Millisecond)
	waitLoaded(t, c, Key{Page: 0, Filter: ""})
}

func TestControllerPostErrorDoesNotRefresh(t *testing.T) {
	svc := &fakeUpdates{postErr: appErrors.Clone(appErrors.ErrForbidden, "not a teacher")}
	c := NewController(context.Background(), testCaller(), svc, 10, nil)

	_, err := c.Post(models.PostUpdateRequest{ClassID: "class-1", Text: "hello"})
	require.Error(t, err)
	assert.Equal(t, StateIdle, c.Snapshot().State, "failed post leaves the view untouched")
}
