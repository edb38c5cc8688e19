package seed

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"userapi/internals/models"
	"userapi/internals/password"
	"userapi/internals/storage"
	"userapi/internals/testutil"
)

func TestRun_Idempotent(t *testing.T) {
	repo := storage.NewUserRepository(testutil.OpenMemoryDB(t, "seed_idempotent"))
	ctx := context.Background()

	// a pre-existing row with a seed email is updated in place
	pre, err := repo.Create(ctx, models.User{Name: "Bobby", Email: "bob@example.com", Password: "old"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := Run(ctx, repo, password.Plain{}, testutil.Logger()); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != len(Users) {
		t.Fatalf("got %d users, want %d: %+v", len(list), len(Users), list)
	}
	bob, err := repo.FindByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("find bob: %v", err)
	}
	if bob.ID != pre.ID || bob.Name != "Bob" || bob.Password != "secret" {
		t.Fatalf("bob = %+v", bob)
	}
}

func TestRun_HashesPasswords(t *testing.T) {
	repo := storage.NewUserRepository(testutil.OpenMemoryDB(t, "seed_hash"))
	ctx := context.Background()
	if err := Run(ctx, repo, password.Bcrypt{Cost: bcrypt.MinCost}, testutil.Logger()); err != nil {
		t.Fatalf("run: %v", err)
	}
	alice, err := repo.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(alice.Password), []byte("secret")); err != nil {
		t.Fatalf("stored password is not a bcrypt hash of the seed: %v", err)
	}
}
