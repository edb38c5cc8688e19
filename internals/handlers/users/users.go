package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"userapi/internals/handlers/respond"
	"userapi/internals/models"
	"userapi/internals/password"
	"userapi/internals/storage"
)

const maxFormMemory = 1 << 20

// Store is the data access the handlers need.
type Store interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, u models.User) (*models.User, error)
}

// ListHandler handles GET /users
func ListHandler(store Store, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := store.List(r.Context())
		if err != nil {
			status := statusFor(err, http.StatusInternalServerError)
			log.WithError(err).WithField("status", status).Error("list users failed")
			respond.Detail(w, status, err.Error())
			return
		}
		respond.JSON(w, http.StatusOK, users)
	}
}

// CreateHandler handles POST /users with form fields name, email and password.
func CreateHandler(store Store, hasher password.Hasher, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
			respond.Detail(w, http.StatusBadRequest, "invalid form body: "+err.Error())
			return
		}

		var missing []string
		field := func(name string) string {
			v := r.PostForm.Get(name)
			if v == "" {
				missing = append(missing, name)
			}
			return v
		}
		name, email, pw := field("name"), field("email"), field("password")
		if len(missing) > 0 {
			respond.Detail(w, http.StatusUnprocessableEntity, "field required: "+strings.Join(missing, ", "))
			return
		}

		stored, err := hasher.Hash(pw)
		if err != nil {
			log.WithError(err).Error("hash password failed")
			respond.Detail(w, http.StatusInternalServerError, err.Error())
			return
		}

		user, err := store.Create(r.Context(), models.User{Name: name, Email: email, Password: stored})
		if err != nil {
			status := statusFor(err, http.StatusBadRequest)
			log.WithError(err).WithFields(logrus.Fields{
				"status": status,
				"kind":   storage.KindOf(err).String(),
			}).Warn("create user failed")
			respond.Detail(w, status, err.Error())
			return
		}
		respond.JSON(w, http.StatusOK, user)
	}
}

// statusFor maps a storage failure to an HTTP status; fallback covers unclassified errors.
func statusFor(err error, fallback int) int {
	switch storage.KindOf(err) {
	case storage.KindConflict, storage.KindInvalid:
		return http.StatusBadRequest
	case storage.KindNotFound:
		return http.StatusNotFound
	case storage.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return fallback
	}
}
