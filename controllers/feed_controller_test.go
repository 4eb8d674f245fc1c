package controllers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"vibin_client/models"
	"vibin_client/utils"
	"vibin_client/utils/utilstest"
)

type fakeRecommendations struct {
	mu      sync.Mutex
	pages   map[int]*models.RecommendationsPage
	errs    map[int]error
	block   map[int]chan struct{}
	calls   []int
	started chan int
}

func newFakeRecommendations() *fakeRecommendations {
	return &fakeRecommendations{
		pages: make(map[int]*models.RecommendationsPage),
		errs:  make(map[int]error),
		block: make(map[int]chan struct{}),
	}
}

func (f *fakeRecommendations) GetRecommendations(ctx context.Context, viewerID string, page, limit int) (*models.RecommendationsPage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, page)
	gate := f.block[page]
	resp, err := f.pages[page], f.errs[page]
	started := f.started
	f.mu.Unlock()

	if started != nil {
		started <- page
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return &models.RecommendationsPage{Page: page}, nil
	}
	// callers may rewrite images, so hand out a copy
	out := *resp
	out.Users = append([]models.CandidateProfile(nil), resp.Users...)
	return &out, nil
}

func (f *fakeRecommendations) Calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.calls...)
}

func profiles(ids ...string) []models.CandidateProfile {
	out := make([]models.CandidateProfile, len(ids))
	for i, id := range ids {
		out[i] = models.CandidateProfile{ID: id, Name: "user " + id}
	}
	return out
}

func seq(prefix string, from, to int) []string {
	var ids []string
	for i := from; i <= to; i++ {
		ids = append(ids, fmt.Sprintf("%s%d", prefix, i))
	}
	return ids
}

func queueIDs(f *FeedController) []string {
	var ids []string
	for _, p := range f.Queue() {
		ids = append(ids, p.ID)
	}
	return ids
}

func assertUnique(t *testing.T, ids []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %q in queue %v", id, ids)
		}
		seen[id] = true
	}
}

func TestLoadPageDedupesAcrossPages(t *testing.T) {
	src := newFakeRecommendations()
	src.pages[1] = &models.RecommendationsPage{Users: profiles("a", "b", "c", "c"), Page: 1, TotalPages: 3}
	src.pages[2] = &models.RecommendationsPage{Users: profiles("b", "c", "d"), Page: 2, TotalPages: 3}
	src.pages[3] = &models.RecommendationsPage{Users: profiles("a", "d", "e"), Page: 3, TotalPages: 3}
	feed := NewFeedController(src, nil, &utilstest.RecordingNotifier{}, 10)
	ctx := context.Background()

	for page := 1; page <= 3; page++ {
		if err := feed.LoadPage(ctx, "viewer", page); err != nil {
			t.Fatalf("LoadPage(%d): %v", page, err)
		}
		assertUnique(t, queueIDs(feed))
	}

	got := queueIDs(feed)
	want := []string{"a", "b", "c", "d", "e"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("queue = %v, want %v", got, want)
	}
	if feed.Cursor().HasMore {
		t.Fatal("hasMore should be false on the last page")
	}
}

func TestPageOneReplacesQueue(t *testing.T) {
	src := newFakeRecommendations()
	src.pages[1] = &models.RecommendationsPage{Users: profiles("a", "b"), Page: 1, TotalPages: 2}
	feed := NewFeedController(src, nil, &utilstest.RecordingNotifier{}, 10)
	ctx := context.Background()

	feed.LoadPage(ctx, "viewer", 1)
	src.pages[1] = &models.RecommendationsPage{Users: profiles("x"), Page: 1, TotalPages: 2}
	feed.LoadPage(ctx, "viewer", 1)

	if got := queueIDs(feed); fmt.Sprint(got) != "[x]" {
		t.Fatalf("queue = %v, want [x]", got)
	}
}

func TestAdvanceTriggersBackfill(t *testing.T) {
	src := newFakeRecommendations()
	src.pages[1] = &models.RecommendationsPage{Users: profiles(seq("p1-", 1, 10)...), Page: 1, TotalPages: 3}
	src.pages[2] = &models.RecommendationsPage{Users: profiles(seq("p2-", 1, 10)...), Page: 2, TotalPages: 3}
	feed := NewFeedController(src, nil, &utilstest.RecordingNotifier{}, 10)
	ctx := context.Background()

	if err := feed.LoadPage(ctx, "viewer", 1); err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	if c := feed.Cursor(); !c.HasMore || c.Page != 1 {
		t.Fatalf("cursor = %+v", c)
	}

	for i := 0; i < 4; i++ {
		feed.Advance(ctx, "viewer")
	}
	feed.Wait()
	if calls := src.Calls(); len(calls) != 1 {
		t.Fatalf("backfill started early: %v", calls)
	}

	feed.Advance(ctx, "viewer")
	feed.Wait()

	if calls := src.Calls(); fmt.Sprint(calls) != "[1 2]" {
		t.Fatalf("calls = %v, want [1 2]", calls)
	}
	if n := len(feed.Queue()); n != 15 {
		t.Fatalf("queue length = %d, want 15", n)
	}
	if c := feed.Cursor(); c.Page != 2 || !c.HasMore {
		t.Fatalf("cursor = %+v", c)
	}
}

func TestBackfillChainsWhenPageAddsLittle(t *testing.T) {
	src := newFakeRecommendations()
	src.pages[1] = &models.RecommendationsPage{Users: profiles("a", "b", "c", "d"), Page: 1, TotalPages: 3}
	src.pages[2] = &models.RecommendationsPage{Users: profiles("a", "b"), Page: 2, TotalPages: 3}
	src.pages[3] = &models.RecommendationsPage{Users: profiles("e", "f"), Page: 3, TotalPages: 3}
	feed := NewFeedController(src, nil, &utilstest.RecordingNotifier{}, 4)
	ctx := context.Background()

	feed.LoadPage(ctx, "viewer", 1)
	feed.Advance(ctx, "viewer")
	feed.Advance(ctx, "viewer")
	feed.Wait()

	if calls := src.Calls(); fmt.Sprint(calls) != "[1 2 3]" {
		t.Fatalf("calls = %v, want [1 2 3]", calls)
	}
	if got := queueIDs(feed); fmt.Sprint(got) != "[c d e f]" {
		t.Fatalf("queue = %v", got)
	}
}

func TestEmptyFirstPageIsExhausted(t *testing.T) {
	src := newFakeRecommendations()
	src.pages[1] = &models.RecommendationsPage{Page: 1, TotalPages: 0}
	feed := NewFeedController(src, nil, &utilstest.RecordingNotifier{}, 10)

	if feed.Status() != FeedIdle {
		t.Fatalf("status before load = %s", feed.Status())
	}
	if err := feed.LoadPage(context.Background(), "viewer", 1); err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	if feed.Status() != FeedExhausted {
		t.Fatalf("status = %s, want exhausted", feed.Status())
	}
	if !feed.Empty() || feed.Cursor().HasMore {
		t.Fatal("expected an empty queue with hasMore=false")
	}
}

func TestStatusLoadingWhileFetching(t *testing.T) {
	src := newFakeRecommendations()
	src.pages[1] = &models.RecommendationsPage{Users: profiles("a"), Page: 1, TotalPages: 1}
	src.block[1] = make(chan struct{})
	src.started = make(chan int, 1)
	feed := NewFeedController(src, nil, &utilstest.RecordingNotifier{}, 10)

	done := make(chan error, 1)
	go func() { done <- feed.LoadPage(context.Background(), "viewer", 1) }()
	<-src.started

	if feed.Status() != FeedLoading {
		t.Fatalf("status = %s, want loading", feed.Status())
	}
	if err := feed.LoadPage(context.Background(), "viewer", 2); !errors.Is(err, ErrFetchInFlight) {
		t.Fatalf("expected ErrFetchInFlight, got %v", err)
	}

	close(src.block[1])
	if err := <-done; err != nil {
		t.Fatalf("LoadPage: %v", err)
	}
	if feed.Status() != FeedReady {
		t.Fatalf("status = %s, want ready", feed.Status())
	}
	if calls := src.Calls(); fmt.Sprint(calls) != "[1]" {
		t.Fatalf("calls = %v", calls)
	}
}

func TestLoadPageFailure(t *testing.T) {
	src := newFakeRecommendations()
	src.pages[1] = &models.RecommendationsPage{Users: profiles("a", "b", "c"), Page: 1, TotalPages: 5}
	src.errs[2] = errors.New("network down")
	notifier := &utilstest.RecordingNotifier{}
	feed := NewFeedController(src, nil, notifier, 10)
	ctx := context.Background()

	feed.LoadPage(ctx, "viewer", 1)
	if err := feed.LoadPage(ctx, "viewer", 2); err == nil {
		t.Fatal("expected an error")
	}

	if got := queueIDs(feed); fmt.Sprint(got) != "[a b c]" {
		t.Fatalf("queue changed on failure: %v", got)
	}
	if feed.Cursor().HasMore {
		t.Fatal("hasMore should be false after a failure")
	}
	if notifier.Count(utils.NoticeError) != 1 {
		t.Fatalf("notices = %+v", notifier.Notices())
	}

	// no automatic fetching until refresh
	feed.Advance(ctx, "viewer")
	feed.Wait()
	if calls := src.Calls(); len(calls) != 2 {
		t.Fatalf("unexpected fetch after failure: %v", calls)
	}
}

func TestLoadPageWithoutViewer(t *testing.T) {
	src := newFakeRecommendations()
	notifier := &utilstest.RecordingNotifier{}
	feed := NewFeedController(src, nil, notifier, 10)

	if err := feed.LoadPage(context.Background(), "", 1); !errors.Is(err, ErrMissingViewer) {
		t.Fatalf("expected ErrMissingViewer, got %v", err)
	}
	if len(src.Calls()) != 0 {
		t.Fatal("no remote call expected without a viewer")
	}
	if notifier.Count(utils.NoticeError) != 1 {
		t.Fatalf("notices = %+v", notifier.Notices())
	}
}

func TestRefreshRestartsFromPageOne(t *testing.T) {
	src := newFakeRecommendations()
	src.pages[1] = &models.RecommendationsPage{Users: profiles("a", "b"), Page: 1, TotalPages: 2}
	src.errs[2] = errors.New("boom")
	feed := NewFeedController(src, nil, &utilstest.RecordingNotifier{}, 10)
	ctx := context.Background()

	var heads []string
	feed.OnHeadChange = func(id string) { heads = append(heads, id) }

	feed.LoadPage(ctx, "viewer", 1)
	feed.LoadPage(ctx, "viewer", 2)
	feed.Advance(ctx, "viewer")

	if err := feed.Refresh(ctx, "viewer"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got := queueIDs(feed); fmt.Sprint(got) != "[a b]" {
		t.Fatalf("queue = %v", got)
	}
	if c := feed.Cursor(); c.Page != 1 || !c.HasMore {
		t.Fatalf("cursor = %+v", c)
	}
	if fmt.Sprint(heads) != "[a b  a]" {
		t.Fatalf("head changes = %q", heads)
	}
}

func TestRefreshDiscardsStaleFetch(t *testing.T) {
	src := newFakeRecommendations()
	src.pages[1] = &models.RecommendationsPage{Users: profiles("a", "b", "c"), Page: 1, TotalPages: 3}
	src.pages[2] = &models.RecommendationsPage{Users: profiles("stale"), Page: 2, TotalPages: 3}
	feed := NewFeedController(src, nil, &utilstest.RecordingNotifier{}, 10)
	ctx := context.Background()
	feed.LoadPage(ctx, "viewer", 1)

	src.block[2] = make(chan struct{})
	src.started = make(chan int, 1)
	done := make(chan error, 1)
	go func() { done <- feed.LoadPage(ctx, "viewer", 2) }()
	<-src.started

	src.mu.Lock()
	src.started = nil
	src.mu.Unlock()
	if err := feed.Refresh(ctx, "viewer"); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	close(src.block[2])
	<-done

	if got := queueIDs(feed); fmt.Sprint(got) != "[a b c]" {
		t.Fatalf("queue = %v, stale page leaked", got)
	}
}

type prefixPhotos struct{}

func (prefixPhotos) ResolvePhotos(ctx context.Context, keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = "https://cdn.example/" + k
	}
	return out
}

func TestLoadPageResolvesPhotos(t *testing.T) {
	src := newFakeRecommendations()
	src.pages[1] = &models.RecommendationsPage{
		Users:      []models.CandidateProfile{{ID: "a", Images: []string{"a/1.jpg"}}},
		Page:       1,
		TotalPages: 1,
	}
	feed := NewFeedController(src, prefixPhotos{}, &utilstest.RecordingNotifier{}, 10)
	feed.LoadPage(context.Background(), "viewer", 1)

	head, ok := feed.Current()
	if !ok || head.Images[0] != "https://cdn.example/a/1.jpg" {
		t.Fatalf("head = %+v", head)
	}
}
