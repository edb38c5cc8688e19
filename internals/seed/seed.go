package seed

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"userapi/internals/models"
	"userapi/internals/password"
)

// Users is the fixed set of seed accounts, matched by email.
var Users = []models.User{
	{Name: "Alice", Email: "alice@example.com", Password: "secret"},
	{Name: "Bob", Email: "bob@example.com", Password: "secret"},
	{Name: "Charlie", Email: "charlie@example.com", Password: "secret"},
}

type Upserter interface {
	UpsertByEmail(ctx context.Context, u models.User) (*models.User, bool, error)
}

// Run upserts every seed user. Re-running it converges to the same rows.
func Run(ctx context.Context, store Upserter, hasher password.Hasher, log logrus.FieldLogger) error {
	for _, u := range Users {
		pw, err := hasher.Hash(u.Password)
		if err != nil {
			return errors.Wrapf(err, "hash password for %s", u.Email)
		}
		u.Password = pw
		stored, created, err := store.UpsertByEmail(ctx, u)
		if err != nil {
			return errors.Wrapf(err, "upsert %s", u.Email)
		}
		log.WithFields(logrus.Fields{
			"id":      stored.ID,
			"email":   stored.Email,
			"created": created,
		}).Info("seeded user")
	}
	return nil
}
