package review

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"dinewise/database/repository/memory"
	reviewRepo "dinewise/database/repository/review"
	"dinewise/models"
	"dinewise/services/rating"
	"dinewise/utils"

	"go.uber.org/zap/zaptest"
)

type fakeImages struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (f *fakeImages) Upload(_ context.Context, _, folder, publicID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := folder + "/" + publicID
	f.uploaded = append(f.uploaded, id)
	return fmt.Sprintf("https://res.cloudinary.com/test/image/upload/v1/%s.jpg", id), nil
}

func (f *fakeImages) Delete(_ context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, publicID)
	return nil
}

type recordingEnqueuer struct{ businessIDs, customerIDs []string }

func (r *recordingEnqueuer) EnqueueReconcile(_ context.Context, businessID, customerID string) error {
	r.businessIDs = append(r.businessIDs, businessID)
	r.customerIDs = append(r.customerIDs, customerID)
	return nil
}

// failingAggregator fails every review event but still toggles upvotes.
type failingAggregator struct{ rating.Aggregator }

var errStoreDown = errors.New("store unavailable")

func (failingAggregator) OnReviewCreated(context.Context, models.Review) (*models.Business, error) {
	return nil, errStoreDown
}

type harness struct {
	store    *memory.Store
	images   *fakeImages
	enqueuer *recordingEnqueuer
	svc      *DefaultReviewService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	logger := zaptest.NewLogger(t)

	if err := store.Businesses().Create(ctx, &models.Business{ID: "biz", OwnerID: "owner", Name: "Tipo 00"}); err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"alice", "bob"} {
		if err := store.Customers().Create(ctx, &models.Customer{ID: id, Email: id + "@example.com"}); err != nil {
			t.Fatal(err)
		}
	}

	agg := &rating.DefaultAggregator{
		Businesses: store.Businesses(),
		Stats:      store.Stats(),
		Customers:  store.Customers(),
		Reviews:    store.Reviews(),
		Upvotes:    store.Upvotes(),
		Logger:     logger,
	}
	h := &harness{store: store, images: &fakeImages{}, enqueuer: &recordingEnqueuer{}}
	h.svc = &DefaultReviewService{
		Reviews:    store.Reviews(),
		Responses:  store.Responses(),
		Upvotes:    store.Upvotes(),
		Businesses: store.Businesses(),
		Aggregator: agg,
		Reconcile:  h.enqueuer,
		Images:     h.images,
		Logger:     logger,
	}
	return h
}

func validInput() CreateInput {
	return CreateInput{BusinessID: "biz", Title: "Great pasta", Text: "Would return.", FoodRating: 5, ServiceRating: 4, AmbienceRating: 3}
}

func TestCreateUpdatesAggregates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	in := validInput()
	in.ImagePaths = []string{"/tmp/a.jpg", "/tmp/b.jpg"}
	r, err := h.svc.Create(ctx, "alice", in)
	if err != nil {
		t.Fatal(err)
	}
	if r.Rating != 4 {
		t.Errorf("review rating = %v, want 4", r.Rating)
	}
	if len(r.Images) != 2 || h.images.uploaded[1] != "reviews/"+r.ID+"-1" {
		t.Errorf("unexpected uploads %v", h.images.uploaded)
	}

	b, _ := h.store.Businesses().GetByID(ctx, "biz")
	if b.ReviewCount != 1 || b.FoodRating != 5 || b.Rating != 4 {
		t.Errorf("business aggregate = %+v", b)
	}
}

func TestCreateValidation(t *testing.T) {
	h := newHarness(t)
	tests := map[string]func(*CreateInput){
		"missing title":      func(in *CreateInput) { in.Title = "" },
		"rating too high":    func(in *CreateInput) { in.FoodRating = 6 },
		"rating missing":     func(in *CreateInput) { in.AmbienceRating = 0 },
		"missing businessId": func(in *CreateInput) { in.BusinessID = "" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := h.svc.Create(context.Background(), "alice", in)
			if !utils.IsKind(err, utils.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	in := validInput()
	in.BusinessID = "nope"
	if _, err := h.svc.Create(context.Background(), "alice", in); !utils.IsKind(err, utils.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSecondReviewOfSameBusinessConflicts(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.svc.Create(ctx, "alice", validInput()); err != nil {
		t.Fatal(err)
	}
	in := validInput()
	in.ImagePaths = []string{"/tmp/c.jpg"}
	_, err := h.svc.Create(ctx, "alice", in)
	if !utils.IsKind(err, utils.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(h.images.deleted) != 1 {
		t.Errorf("orphaned upload not cleaned up: %v", h.images.deleted)
	}

	b, _ := h.store.Businesses().GetByID(ctx, "biz")
	if b.ReviewCount != 1 {
		t.Errorf("review_count = %d, want 1", b.ReviewCount)
	}
}

func TestAggregateFailureKeepsReviewAndQueuesReconcile(t *testing.T) {
	h := newHarness(t)
	h.svc.Aggregator = failingAggregator{h.svc.Aggregator}

	r, err := h.svc.Create(context.Background(), "alice", validInput())
	if err != nil {
		t.Fatalf("review write must succeed: %v", err)
	}
	if _, err := h.store.Reviews().GetByID(context.Background(), r.ID); err != nil {
		t.Fatalf("review was rolled back: %v", err)
	}
	if len(h.enqueuer.businessIDs) != 1 || h.enqueuer.businessIDs[0] != "biz" {
		t.Fatalf("reconcile not queued: %v", h.enqueuer.businessIDs)
	}
	if h.enqueuer.customerIDs[0] != "alice" {
		t.Fatalf("customer recount not queued: %v", h.enqueuer.customerIDs)
	}
}

func TestUpdateOnlyByAuthor(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r, _ := h.svc.Create(ctx, "alice", validInput())

	if _, err := h.svc.Update(ctx, "bob", r.ID, UpdateInput{Title: "mine now"}); !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	updated, err := h.svc.Update(ctx, "alice", r.ID, UpdateInput{FoodRating: 2})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Title != "Great pasta" || updated.ServiceRating != 4 || updated.Rating != 3 {
		t.Errorf("partial update lost fields: %+v", updated)
	}
	b, _ := h.store.Businesses().GetByID(ctx, "biz")
	if b.FoodRating != 2 || b.ReviewCount != 1 {
		t.Errorf("business aggregate = %+v", b)
	}
}

func TestDeleteReversesAggregates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	in := validInput()
	in.ImagePaths = []string{"/tmp/a.jpg"}
	r, _ := h.svc.Create(ctx, "alice", in)
	if _, err := h.svc.Vote(ctx, "bob", r.ID, models.VoteUp); err != nil {
		t.Fatal(err)
	}

	if err := h.svc.Delete(ctx, "bob", r.ID); !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := h.svc.Delete(ctx, "alice", r.ID); err != nil {
		t.Fatal(err)
	}

	b, _ := h.store.Businesses().GetByID(ctx, "biz")
	if b.ReviewCount != 0 || b.Rating != 0 {
		t.Errorf("aggregate not reset: %+v", b)
	}
	if voted, _ := h.store.Upvotes().Exists(ctx, r.ID, "bob"); voted {
		t.Error("upvote of deleted review left behind")
	}
	if len(h.images.deleted) != 1 || h.images.deleted[0] != "reviews/"+r.ID+"-0" {
		t.Errorf("images not deleted: %v", h.images.deleted)
	}
}

func TestVoteRules(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r, _ := h.svc.Create(ctx, "alice", validInput())

	if _, err := h.svc.Vote(ctx, "alice", r.ID, models.VoteUp); !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("self upvote: expected forbidden, got %v", err)
	}
	if _, err := h.svc.Vote(ctx, "bob", r.ID, "like"); !utils.IsKind(err, utils.KindValidation) {
		t.Fatalf("bad action: expected validation, got %v", err)
	}

	res, err := h.svc.Vote(ctx, "bob", r.ID, models.VoteUp)
	if err != nil || res.Upvotes != 1 {
		t.Fatalf("upvote: %+v, %v", res, err)
	}

	page, err := h.svc.List(ctx, reviewRepo.ListCriteria{BusinessID: "biz"}, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Reviews) != 1 || !page.Reviews[0].IsUpvoted {
		t.Errorf("listing does not show bob's upvote: %+v", page.Reviews)
	}
}

func TestRespondOnlyByBusinessOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r, _ := h.svc.Create(ctx, "alice", validInput())

	if _, err := h.svc.Respond(ctx, "someone-else", r.ID, "Thanks!"); !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	first, err := h.svc.Respond(ctx, "owner", r.ID, "Thanks!")
	if err != nil {
		t.Fatal(err)
	}
	second, err := h.svc.Respond(ctx, "owner", r.ID, "Thanks again!")
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID || second.Text != "Thanks again!" {
		t.Errorf("response not upserted: %+v", second)
	}

	got, err := h.svc.Get(ctx, r.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if got.Response == nil || got.Response.Text != "Thanks again!" {
		t.Errorf("review carries response %+v", got.Response)
	}
}

type recordingObserver struct{ customers []string }

func (r *recordingObserver) ForgetCustomer(_ context.Context, customerID string) {
	r.customers = append(r.customers, customerID)
}

func TestReviewChangesNotifyActivityObserver(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	observer := &recordingObserver{}
	h.svc.Activity = observer

	r, err := h.svc.Create(ctx, "alice", validInput())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.Update(ctx, "alice", r.ID, UpdateInput{Title: "text only"}); err != nil {
		t.Fatal(err)
	}
	if _, err := h.svc.Update(ctx, "alice", r.ID, UpdateInput{FoodRating: 1}); err != nil {
		t.Fatal(err)
	}
	if err := h.svc.Delete(ctx, "alice", r.ID); err != nil {
		t.Fatal(err)
	}

	// The title-only edit does not change what the ranker sees.
	want := []string{"alice", "alice", "alice"}
	if len(observer.customers) != len(want) {
		t.Fatalf("observer calls = %v, want %v", observer.customers, want)
	}
}

// staleReviews hands out a snapshot, then lets a competing edit land before
// the caller writes.
type staleReviews struct {
	reviewRepo.ReviewRepository
	competing func()
}

func (s *staleReviews) GetByID(ctx context.Context, id string) (*models.Review, error) {
	r, err := s.ReviewRepository.GetByID(ctx, id)
	if err == nil && s.competing != nil {
		run := s.competing
		s.competing = nil
		run()
	}
	return r, err
}

func TestConcurrentRatingEditsDoNotDriftAggregate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	r, err := h.svc.Create(ctx, "alice", validInput())
	if err != nil {
		t.Fatal(err)
	}

	stale := &staleReviews{ReviewRepository: h.svc.Reviews}
	stale.competing = func() {
		if _, err := h.svc.Update(ctx, "alice", r.ID, UpdateInput{FoodRating: 1}); err != nil {
			t.Errorf("competing edit: %v", err)
		}
	}
	h.svc.Reviews = stale

	_, err = h.svc.Update(ctx, "alice", r.ID, UpdateInput{FoodRating: 3})
	if !utils.IsKind(err, utils.KindConflict) {
		t.Fatalf("expected conflict for an edit from a stale snapshot, got %v", err)
	}

	stored, _ := h.store.Reviews().GetByID(ctx, r.ID)
	b, _ := h.store.Businesses().GetByID(ctx, "biz")
	if stored.FoodRating != 1 || b.FoodRating != 1 || b.ReviewCount != 1 {
		t.Errorf("review food=%d, business food=%v count=%d; want 1, 1, 1", stored.FoodRating, b.FoodRating, b.ReviewCount)
	}
}
