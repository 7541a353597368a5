package deal

import (
	"context"
	"testing"
	"time"

	"dinewise/database/repository/memory"
	"dinewise/models"
	"dinewise/utils"

	"go.uber.org/zap/zaptest"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newDealHarness(t *testing.T) (*DefaultDealService, *Sweeper, *clock) {
	t.Helper()
	store := memory.NewStore()
	if err := store.Businesses().Create(context.Background(), &models.Business{ID: "biz", OwnerID: "owner", Name: "Supernormal"}); err != nil {
		t.Fatal(err)
	}
	c := &clock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	logger := zaptest.NewLogger(t)
	svc := &DefaultDealService{Deals: store.Deals(), Businesses: store.Businesses(), Logger: logger, Now: c.Now}
	sweeper := &Sweeper{Deals: store.Deals(), Logger: logger, Now: c.Now}
	return svc, sweeper, c
}

func input(start, end time.Time) DealInput {
	return DealInput{BusinessID: "biz", Title: "Half-price dumplings", Type: models.DealPercentage, StartDate: start, EndDate: end}
}

func TestStatusAt(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	end := start.Add(48 * time.Hour)
	tests := []struct {
		name      string
		now       time.Time
		requested models.DealStatus
		want      models.DealStatus
	}{
		{"before window", start.Add(-time.Minute), "", models.DealScheduled},
		{"at start", start, "", models.DealActive},
		{"at end", end, "", models.DealActive},
		{"after window", end.Add(time.Second), "", models.DealExpired},
		{"manual inactive", start.Add(time.Hour), models.DealInactive, models.DealInactive},
		{"requested active is recomputed", start.Add(-time.Hour), models.DealActive, models.DealScheduled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusAt(start, end, tt.now, tt.requested); got != tt.want {
				t.Errorf("StatusAt = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestScheduledActiveExpiredLifecycle(t *testing.T) {
	svc, sweeper, c := newDealHarness(t)
	ctx := context.Background()

	d, err := svc.Create(ctx, "owner", input(c.now.Add(time.Hour), c.now.AddDate(0, 1, 0)))
	if err != nil {
		t.Fatal(err)
	}
	if d.Status != models.DealScheduled {
		t.Fatalf("new deal status = %s, want SCHEDULED", d.Status)
	}
	if d.RedemptionInfo != models.DefaultRedemptionInfo {
		t.Errorf("redemption info = %q", d.RedemptionInfo)
	}

	status := func() models.DealStatus {
		got, err := svc.Deals.GetByID(ctx, d.ID)
		if err != nil {
			t.Fatal(err)
		}
		return got.Status
	}

	c.now = c.now.Add(2 * time.Hour)
	res, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Activated != 1 || status() != models.DealActive {
		t.Fatalf("after start: %+v, status %s", res, status())
	}

	res, _ = sweeper.Sweep(ctx)
	if res.Activated != 0 || res.Expired != 0 || status() != models.DealActive {
		t.Fatalf("second sweep flapped: %+v, status %s", res, status())
	}

	c.now = c.now.AddDate(0, 2, 0)
	res, _ = sweeper.Sweep(ctx)
	if res.Expired != 1 || status() != models.DealExpired {
		t.Fatalf("after end: %+v, status %s", res, status())
	}
	res, _ = sweeper.Sweep(ctx)
	if res.Activated != 0 || res.Expired != 0 {
		t.Fatalf("expired deal moved again: %+v", res)
	}
}

func TestSweepSkipsInactiveAndExpiresMissedWindows(t *testing.T) {
	svc, sweeper, c := newDealHarness(t)
	ctx := context.Background()

	in := input(c.now.Add(-time.Hour), c.now.Add(time.Hour))
	in.Status = models.DealInactive
	inactive, err := svc.Create(ctx, "owner", in)
	if err != nil {
		t.Fatal(err)
	}
	missed, err := svc.Create(ctx, "owner", input(c.now.Add(time.Hour), c.now.Add(2*time.Hour)))
	if err != nil {
		t.Fatal(err)
	}

	c.now = c.now.Add(24 * time.Hour)
	if _, err := sweeper.Sweep(ctx); err != nil {
		t.Fatal(err)
	}

	got, _ := svc.Deals.GetByID(ctx, inactive.ID)
	if got.Status != models.DealInactive {
		t.Errorf("inactive deal became %s", got.Status)
	}
	got, _ = svc.Deals.GetByID(ctx, missed.ID)
	if got.Status != models.DealExpired {
		t.Errorf("scheduled deal whose window passed is %s, want EXPIRED", got.Status)
	}
}

func TestCreateRejectsBadWindowAndForeignBusiness(t *testing.T) {
	svc, _, c := newDealHarness(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "owner", input(c.now, c.now)); !utils.IsKind(err, utils.KindValidation) {
		t.Fatalf("end == start: expected validation, got %v", err)
	}
	if _, err := svc.Create(ctx, "owner", input(c.now, c.now.Add(-time.Hour))); !utils.IsKind(err, utils.KindValidation) {
		t.Fatalf("end < start: expected validation, got %v", err)
	}
	bad := input(c.now, c.now.Add(time.Hour))
	bad.Type = "HAPPY_HOUR"
	if _, err := svc.Create(ctx, "owner", bad); !utils.IsKind(err, utils.KindValidation) {
		t.Fatalf("unknown type: expected validation, got %v", err)
	}
	if _, err := svc.Create(ctx, "intruder", input(c.now, c.now.Add(time.Hour))); !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("foreign business: expected forbidden, got %v", err)
	}
}

func TestUpdateRevalidatesAndKeepsOwnership(t *testing.T) {
	svc, _, c := newDealHarness(t)
	ctx := context.Background()
	d, _ := svc.Create(ctx, "owner", input(c.now.Add(time.Hour), c.now.Add(48*time.Hour)))

	if _, err := svc.Update(ctx, "intruder", d.ID, input(c.now, c.now.Add(time.Hour))); !utils.IsKind(err, utils.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Update(ctx, "owner", d.ID, input(c.now.Add(time.Hour), c.now)); !utils.IsKind(err, utils.KindValidation) {
		t.Fatalf("expected validation, got %v", err)
	}

	in := input(c.now.Add(-time.Hour), c.now.Add(time.Hour))
	in.BusinessID = "somewhere-else"
	updated, err := svc.Update(ctx, "owner", d.ID, in)
	if err != nil {
		t.Fatal(err)
	}
	if updated.BusinessID != "biz" || updated.Status != models.DealActive {
		t.Errorf("updated deal = %+v", updated)
	}
}

func TestListForBusinessShowsLiveDealsByStart(t *testing.T) {
	svc, sweeper, c := newDealHarness(t)
	ctx := context.Background()
	later, _ := svc.Create(ctx, "owner", input(c.now.Add(48*time.Hour), c.now.Add(72*time.Hour)))
	sooner, _ := svc.Create(ctx, "owner", input(c.now.Add(-time.Hour), c.now.Add(time.Hour)))
	_, _ = svc.Create(ctx, "owner", input(c.now.Add(-72*time.Hour), c.now.Add(-48*time.Hour)))
	if _, err := sweeper.Sweep(ctx); err != nil {
		t.Fatal(err)
	}

	deals, err := svc.ListForBusiness(ctx, "biz")
	if err != nil {
		t.Fatal(err)
	}
	if len(deals) != 2 || deals[0].ID != sooner.ID || deals[1].ID != later.ID {
		t.Fatalf("unexpected listing %+v", deals)
	}
}

func TestUpdateKeepsInactiveUnlessStatusSent(t *testing.T) {
	svc, _, c := newDealHarness(t)
	ctx := context.Background()

	in := input(c.now.Add(-time.Hour), c.now.AddDate(0, 0, 7))
	in.Status = models.DealInactive
	d, err := svc.Create(ctx, "owner", in)
	if err != nil {
		t.Fatal(err)
	}

	edit := input(in.StartDate, in.EndDate)
	edit.Title = "Half-price dumplings, Mondays"
	updated, err := svc.Update(ctx, "owner", d.ID, edit)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != models.DealInactive {
		t.Fatalf("title edit changed status to %s", updated.Status)
	}

	edit.Status = models.DealActive
	reactivated, err := svc.Update(ctx, "owner", d.ID, edit)
	if err != nil {
		t.Fatal(err)
	}
	if reactivated.Status != models.DealActive {
		t.Fatalf("explicit status = %s, want ACTIVE", reactivated.Status)
	}
}
