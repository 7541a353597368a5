package customer

import (
	"context"
	"fmt"
	"testing"

	"dinewise/database/repository/memory"
	"dinewise/models"
	"dinewise/utils"

	"go.uber.org/zap/zaptest"
)

type recordingInvalidator struct{ ids []string }

func (r *recordingInvalidator) Invalidate(_ context.Context, _ models.Role, id string) {
	r.ids = append(r.ids, id)
}

type fakeImages struct{ deleted []string }

func (f *fakeImages) Upload(_ context.Context, _, folder, publicID string) (string, error) {
	return fmt.Sprintf("https://res.cloudinary.com/test/image/upload/v1/%s/%s.jpg", folder, publicID), nil
}

func (f *fakeImages) Delete(_ context.Context, publicID string) error {
	f.deleted = append(f.deleted, publicID)
	return nil
}

type recordingForgetter struct{ ids []string }

func (r *recordingForgetter) ForgetCustomer(_ context.Context, id string) {
	r.ids = append(r.ids, id)
}

func TestUpdatePreferencesNormalizesCuisines(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	if err := store.Customers().Create(ctx, &models.Customer{ID: "c1", Email: "c1@example.com"}); err != nil {
		t.Fatal(err)
	}
	sessions := &recordingInvalidator{}
	svc := &DefaultCustomerService{Customers: store.Customers(), Sessions: sessions, Logger: zaptest.NewLogger(t)}

	c, err := svc.UpdatePreferences(ctx, "c1", PreferencesInput{
		PreferredCuisines: []string{" Thai ", "thai", "", "Korean"},
		PreferredSuburb:   " Richmond ",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(c.PreferredCuisines) != 2 || c.PreferredCuisines[0] != "Thai" || c.PreferredCuisines[1] != "Korean" {
		t.Fatalf("cuisines = %q", c.PreferredCuisines)
	}
	if c.PreferredSuburb != "Richmond" {
		t.Fatalf("suburb = %q", c.PreferredSuburb)
	}
	if len(sessions.ids) != 1 || sessions.ids[0] != "c1" {
		t.Fatalf("invalidated %v", sessions.ids)
	}
}

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	if err := store.Customers().Create(ctx, &models.Customer{ID: "c1", Email: "c1@example.com", FirstName: "Ada", LastName: "L"}); err != nil {
		t.Fatal(err)
	}
	svc := &DefaultCustomerService{Customers: store.Customers(), Logger: zaptest.NewLogger(t)}

	bio := "Dumpling enthusiast"
	if _, err := svc.UpdateProfile(ctx, "c1", ProfileInput{Bio: &bio}); err != nil {
		t.Fatal(err)
	}
	c, err := svc.Get(ctx, "c1")
	if err != nil {
		t.Fatal(err)
	}
	if c.FirstName != "Ada" || c.Bio != bio {
		t.Fatalf("unexpected customer %+v", c)
	}
}

func TestProfileImageUploadAndRemoval(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	if err := store.Customers().Create(ctx, &models.Customer{ID: "c1", Email: "c1@example.com"}); err != nil {
		t.Fatal(err)
	}
	images := &fakeImages{}
	svc := &DefaultCustomerService{Customers: store.Customers(), Images: images, Logger: zaptest.NewLogger(t)}

	c, err := svc.UpdateProfile(ctx, "c1", ProfileInput{ImagePath: "/tmp/me.jpg"})
	if err != nil {
		t.Fatal(err)
	}
	want := "https://res.cloudinary.com/test/image/upload/v1/customers/c1.jpg"
	if c.ProfileImage != want {
		t.Fatalf("profile image = %q, want %q", c.ProfileImage, want)
	}

	// Replacing overwrites the same public id, so nothing is deleted.
	if _, err := svc.UpdateProfile(ctx, "c1", ProfileInput{ImagePath: "/tmp/me2.jpg"}); err != nil {
		t.Fatal(err)
	}
	if len(images.deleted) != 0 {
		t.Fatalf("deleted %v on replace", images.deleted)
	}

	c, err = svc.UpdateProfile(ctx, "c1", ProfileInput{RemoveProfileImage: true})
	if err != nil {
		t.Fatal(err)
	}
	if c.ProfileImage != "" {
		t.Fatalf("profile image = %q after removal", c.ProfileImage)
	}
	if len(images.deleted) != 1 || images.deleted[0] != "customers/c1" {
		t.Fatalf("deleted %v", images.deleted)
	}
}

func TestUploadWithoutImageStoreFails(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	if err := store.Customers().Create(ctx, &models.Customer{ID: "c1", Email: "c1@example.com"}); err != nil {
		t.Fatal(err)
	}
	svc := &DefaultCustomerService{Customers: store.Customers(), Logger: zaptest.NewLogger(t)}
	if _, err := svc.UpdateProfile(ctx, "c1", ProfileInput{ImagePath: "/tmp/me.jpg"}); err == nil {
		t.Fatal("expected upload to fail without an image store")
	}
}

func TestDeleteRemovesAccountButKeepsReviews(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	if err := store.Customers().Create(ctx, &models.Customer{
		ID: "c1", Email: "c1@example.com",
		ProfileImage: "https://res.cloudinary.com/test/image/upload/v1/customers/c1.jpg",
	}); err != nil {
		t.Fatal(err)
	}
	review := &models.Review{ID: "r1", BusinessID: "b1", CustomerID: "c1", FoodRating: 4, ServiceRating: 4, AmbienceRating: 4}
	if err := store.Reviews().Create(ctx, review); err != nil {
		t.Fatal(err)
	}

	images := &fakeImages{}
	sessions := &recordingInvalidator{}
	recs := &recordingForgetter{}
	svc := &DefaultCustomerService{
		Customers:       store.Customers(),
		Images:          images,
		Sessions:        sessions,
		Recommendations: recs,
		Logger:          zaptest.NewLogger(t),
	}

	if err := svc.Delete(ctx, "c1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, "c1"); !utils.IsKind(err, utils.KindNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if len(sessions.ids) != 1 || sessions.ids[0] != "c1" {
		t.Fatalf("sessions invalidated %v", sessions.ids)
	}
	if len(recs.ids) != 1 || recs.ids[0] != "c1" {
		t.Fatalf("recommendations forgotten %v", recs.ids)
	}
	if len(images.deleted) != 1 || images.deleted[0] != "customers/c1" {
		t.Fatalf("deleted images %v", images.deleted)
	}
	if _, err := store.Reviews().GetByID(ctx, "r1"); err != nil {
		t.Fatalf("review should survive account deletion: %v", err)
	}

	if err := svc.Delete(ctx, "c1"); !utils.IsKind(err, utils.KindNotFound) {
		t.Fatalf("second delete = %v, want not found", err)
	}
}
