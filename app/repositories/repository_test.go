package repositories

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sweetshop/app/models"
	"github.com/shashiranjanraj/sweetshop/pkg/database"
)

// backends returns one store per available backend. Mongo runs only when
// SWEETSHOP_TEST_MONGO_URI is set; sqlite is skipped when the driver cannot
// open (cgo disabled).
func backends(t *testing.T) map[string]*Store {
	t.Helper()
	stores := map[string]*Store{"memory": NewMemoryStore()}

	if db, err := database.OpenSQL("sqlite", filepath.Join(t.TempDir(), "shop.db")); err == nil {
		store, err := NewSQLStore(db, "sqlite", 5*time.Second)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close(context.Background()) })
		stores["sqlite"] = store
	} else {
		t.Logf("sqlite unavailable: %v", err)
	}

	if uri := os.Getenv("SWEETSHOP_TEST_MONGO_URI"); uri != "" {
		ctx := context.Background()
		client, db, err := database.ConnectMongo(ctx, uri, fmt.Sprintf("sweetshop_test_%d", time.Now().UnixNano()))
		require.NoError(t, err)
		require.NoError(t, database.EnsureIndexes(ctx, db))
		t.Cleanup(func() {
			_ = db.Drop(context.Background())
			_ = client.Disconnect(context.Background())
		})
		stores["mongo"] = NewMongoStore(client, db, 5*time.Second)
	}
	return stores
}

func ptr[T any](v T) *T { return &v }

func seed(t *testing.T, repo SweetRepository, sweets ...models.Sweet) []models.Sweet {
	t.Helper()
	out := make([]models.Sweet, 0, len(sweets))
	for _, s := range sweets {
		require.NoError(t, repo.Create(context.Background(), &s))
		out = append(out, s)
		time.Sleep(2 * time.Millisecond) // keep createdAt strictly increasing
	}
	return out
}

func catalogue() []models.Sweet {
	return []models.Sweet{
		{Name: "Kaju Katli", Category: "Indian", Price: 20, Quantity: 10, Image: "kaju.png", Rating: 4.5},
		{Name: "Gulab Jamun", Category: "indian dessert", Price: 15, Quantity: 4, Image: "gj.png", Rating: 4.8},
		{Name: "Macaron", Category: "French", Price: 30, Quantity: 0, Image: "mac.png", Rating: 4},
		{Name: "50% Fudge", Category: "Candy", Price: 5, Quantity: 2, Image: "fudge.png", Rating: 3},
	}
}

func TestSweetCRUD(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			created := seed(t, store.Sweets, catalogue()[0])[0]
			require.NotEmpty(t, created.ID)

			got, err := store.Sweets.FindByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "Kaju Katli", got.Name)
			assert.Equal(t, 10, got.Quantity)
			assert.Equal(t, 4.5, got.Rating)

			updated, err := store.Sweets.Update(ctx, created.ID, SweetChanges{Price: ptr(0.0), Name: ptr("Kaju Barfi")})
			require.NoError(t, err)
			assert.Equal(t, 0.0, updated.Price)
			assert.Equal(t, "Kaju Barfi", updated.Name)
			assert.Equal(t, "Indian", updated.Category)

			unchanged, err := store.Sweets.Update(ctx, created.ID, SweetChanges{})
			require.NoError(t, err)
			assert.Equal(t, "Kaju Barfi", unchanged.Name)

			require.NoError(t, store.Sweets.Delete(ctx, created.ID))
			_, err = store.Sweets.FindByID(ctx, created.ID)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, store.Sweets.Delete(ctx, created.ID), ErrNotFound)
		})
	}
}

func TestUnknownIDsAreNotFound(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for _, id := range []string{"does-not-exist", "64b7f0c2a1b2c3d4e5f60718"} {
				_, err := store.Sweets.FindByID(ctx, id)
				assert.ErrorIs(t, err, ErrNotFound)
				_, err = store.Sweets.Decrement(ctx, id, 1)
				assert.ErrorIs(t, err, ErrNotFound)
				_, err = store.Sweets.Increment(ctx, id, 1)
				assert.ErrorIs(t, err, ErrNotFound)
				_, err = store.Sweets.Update(ctx, id, SweetChanges{Name: ptr("x")})
				assert.ErrorIs(t, err, ErrNotFound)
			}
		})
	}
}

func TestListFiltersAndPaging(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, store.Sweets, catalogue()...)

			all, total, err := store.Sweets.List(ctx, SweetFilter{}, Page{})
			require.NoError(t, err)
			assert.EqualValues(t, 4, total)
			require.Len(t, all, 4)
			assert.Equal(t, "Kaju Katli", all[0].Name, "insertion order")
			assert.Equal(t, "50% Fudge", all[3].Name)

			indian, _, err := store.Sweets.List(ctx, SweetFilter{Category: "INDIAN"}, Page{})
			require.NoError(t, err)
			assert.Len(t, indian, 2)

			literal, _, err := store.Sweets.List(ctx, SweetFilter{Name: "50%"}, Page{})
			require.NoError(t, err)
			require.Len(t, literal, 1)
			assert.Equal(t, "50% Fudge", literal[0].Name)

			none, _, err := store.Sweets.List(ctx, SweetFilter{Name: ".*"}, Page{})
			require.NoError(t, err)
			assert.Empty(t, none)

			priced, _, err := store.Sweets.List(ctx, SweetFilter{MinPrice: ptr(15.0), MaxPrice: ptr(20.0)}, Page{})
			require.NoError(t, err)
			assert.Len(t, priced, 2, "bounds are inclusive")

			page, total, err := store.Sweets.List(ctx, SweetFilter{}, Page{Number: 2, Size: 3})
			require.NoError(t, err)
			assert.EqualValues(t, 4, total)
			require.Len(t, page, 1)
			assert.Equal(t, "50% Fudge", page[0].Name)

			beyond, _, err := store.Sweets.List(ctx, SweetFilter{}, Page{Number: 5, Size: 3})
			require.NoError(t, err)
			assert.Empty(t, beyond)

			n, err := store.Sweets.Count(ctx)
			require.NoError(t, err)
			assert.EqualValues(t, 4, n)
		})
	}
}

func TestStockAdjustments(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := seed(t, store.Sweets, catalogue()[1])[0]

			after, err := store.Sweets.Decrement(ctx, s.ID, 3)
			require.NoError(t, err)
			assert.Equal(t, 1, after.Quantity)

			_, err = store.Sweets.Decrement(ctx, s.ID, 2)
			assert.ErrorIs(t, err, ErrInsufficientStock)
			still, _ := store.Sweets.FindByID(ctx, s.ID)
			assert.Equal(t, 1, still.Quantity)

			restocked, err := store.Sweets.Increment(ctx, s.ID, 100)
			require.NoError(t, err)
			assert.Equal(t, 101, restocked.Quantity)
		})
	}
}

func TestConcurrentDecrementNeverOversells(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := seed(t, store.Sweets, models.Sweet{Name: "Jalebi", Category: "Indian", Price: 2, Quantity: 5, Image: "j.png"})[0]

			const workers = 20
			var wg sync.WaitGroup
			var ok, short atomic.Int32
			wg.Add(workers)
			for i := 0; i < workers; i++ {
				go func() {
					defer wg.Done()
					_, err := store.Sweets.Decrement(ctx, s.ID, 5)
					switch err {
					case nil:
						ok.Add(1)
					case ErrInsufficientStock:
						short.Add(1)
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.EqualValues(t, 1, ok.Load())
			assert.EqualValues(t, workers-1, short.Load())
			final, err := store.Sweets.FindByID(ctx, s.ID)
			require.NoError(t, err)
			assert.Equal(t, 0, final.Quantity)
		})
	}
}

func TestUsers(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			u := models.User{Name: "Asha", Email: "asha@example.com", Password: "hash", Role: models.RoleUser}
			require.NoError(t, store.Users.Create(ctx, &u))
			require.NotEmpty(t, u.ID)

			dup := models.User{Name: "Other", Email: "asha@example.com", Password: "hash", Role: models.RoleUser}
			assert.ErrorIs(t, store.Users.Create(ctx, &dup), ErrDuplicate)

			byEmail, err := store.Users.FindByEmail(ctx, "asha@example.com")
			require.NoError(t, err)
			assert.Equal(t, u.ID, byEmail.ID)

			require.NoError(t, store.Users.SetRole(ctx, u.ID, models.RoleAdmin))
			byID, err := store.Users.FindByID(ctx, u.ID)
			require.NoError(t, err)
			assert.True(t, byID.IsAdmin())

			_, err = store.Users.FindByEmail(ctx, "nobody@example.com")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, store.Users.SetRole(ctx, "missing", models.RoleAdmin), ErrNotFound)
		})
	}
}

func TestLikePatternEscapes(t *testing.T) {
	assert.Equal(t, "%50!% off!_now!!%", likePattern("50% OFF_now!"))
}
