//go:build integration

package businessRepo

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"dinewise/models"
	"dinewise/utils"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/errgroup"
)

// Run with: go test -tags integration ./database/repository/business/...

const mongoPort = "27017/tcp"

func dockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return exec.CommandContext(ctx, "docker", "info").Run() == nil
}

// startMongo runs a throwaway MongoDB and returns a database on it.
func startMongo(t *testing.T) *mongo.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	if !dockerAvailable() {
		t.Skip("Docker not available")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7",
			ExposedPorts: []string{mongoPort},
			WaitingFor:   wait.ForListeningPort(mongoPort).WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start mongo container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("terminate mongo container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := container.MappedPort(ctx, mongoPort)
	if err != nil {
		t.Fatal(err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(fmt.Sprintf("mongodb://%s:%s", host, port.Port())))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("ping mongo: %v", err)
	}
	return client.Database("dinewise_test")
}

func newBusiness(t *testing.T, repo BusinessRepository, id string) {
	t.Helper()
	if err := repo.Create(context.Background(), &models.Business{ID: id, OwnerID: "o1", Name: id}); err != nil {
		t.Fatal(err)
	}
}

func TestRatingPipelinesOnMongo(t *testing.T) {
	db := startMongo(t)
	repo := NewMongoBusinessRepo(db, zaptest.NewLogger(t))
	ctx := context.Background()

	t.Run("concurrent deltas all land", func(t *testing.T) {
		newBusiness(t, repo, "busy")
		var g errgroup.Group
		for i := 0; i < 20; i++ {
			g.Go(func() error {
				_, err := repo.ApplyRatingDelta(ctx, "busy", models.RatingDelta{Food: 4, Service: 3, Ambience: 5, Count: 1})
				return err
			})
		}
		if err := g.Wait(); err != nil {
			t.Fatal(err)
		}
		b, err := repo.GetByID(ctx, "busy")
		if err != nil {
			t.Fatal(err)
		}
		if b.ReviewCount != 20 || b.RatingTotals != (models.RatingTotals{Food: 80, Service: 60, Ambience: 100}) {
			t.Fatalf("count %d totals %+v", b.ReviewCount, b.RatingTotals)
		}
		if b.FoodRating != 4 || b.ServiceRating != 3 || b.AmbienceRating != 5 || b.Rating != 4 {
			t.Fatalf("means %v/%v/%v overall %v", b.FoodRating, b.ServiceRating, b.AmbienceRating, b.Rating)
		}
	})

	t.Run("removing the last review zeroes the aggregate", func(t *testing.T) {
		newBusiness(t, repo, "single")
		if _, err := repo.ApplyRatingDelta(ctx, "single", models.RatingDelta{Food: 5, Service: 4, Ambience: 3, Count: 1}); err != nil {
			t.Fatal(err)
		}
		b, err := repo.ApplyRatingDelta(ctx, "single", models.RatingDelta{Food: -5, Service: -4, Ambience: -3, Count: -1})
		if err != nil {
			t.Fatal(err)
		}
		if b.ReviewCount != 0 || b.Rating != 0 || b.FoodRating != 0 || b.RatingTotals != (models.RatingTotals{}) {
			t.Fatalf("expected empty aggregate, got %+v", b)
		}

		// A stray removal never drives the count negative.
		b, err = repo.ApplyRatingDelta(ctx, "single", models.RatingDelta{Food: -2, Service: -2, Ambience: -2, Count: -1})
		if err != nil {
			t.Fatal(err)
		}
		if b.ReviewCount != 0 || b.RatingTotals != (models.RatingTotals{}) {
			t.Fatalf("count %d totals %+v", b.ReviewCount, b.RatingTotals)
		}
	})

	t.Run("overwrite replaces totals and means", func(t *testing.T) {
		newBusiness(t, repo, "drifted")
		if _, err := repo.ApplyRatingDelta(ctx, "drifted", models.RatingDelta{Food: 1, Service: 1, Ambience: 1, Count: 3}); err != nil {
			t.Fatal(err)
		}
		b, err := repo.SetRatingAggregate(ctx, "drifted", models.RatingTotals{Food: 9, Service: 6, Ambience: 3}, 3)
		if err != nil {
			t.Fatal(err)
		}
		if b.ReviewCount != 3 || b.FoodRating != 3 || b.ServiceRating != 2 || b.AmbienceRating != 1 || b.Rating != 2 {
			t.Fatalf("unexpected aggregate %+v", b)
		}
	})

	t.Run("unknown business", func(t *testing.T) {
		if _, err := repo.ApplyRatingDelta(ctx, "missing", models.RatingDelta{Count: 1}); !utils.IsKind(err, utils.KindNotFound) {
			t.Fatalf("delta on missing business = %v, want not found", err)
		}
		if _, err := repo.SetRatingAggregate(ctx, "missing", models.RatingTotals{}, 0); !utils.IsKind(err, utils.KindNotFound) {
			t.Fatalf("overwrite on missing business = %v, want not found", err)
		}
	})
}
