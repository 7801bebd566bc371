package mongo

import (
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/crustntrust/site-api/internal/apperr"
)

const codeUnauthorized = 13

// translate classifies a driver error. Missing documents become NotFound,
// authorization failures Permission, duplicate keys Conflict and everything
// else Transient.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperr.Wrap(apperr.KindNotFound, op, err)
	case mongo.IsDuplicateKeyError(err):
		return apperr.Wrap(apperr.KindConflict, op, err)
	case isUnauthorized(err):
		return apperr.Wrap(apperr.KindPermission, op, err)
	default:
		return apperr.Wrap(apperr.KindTransient, op, err)
	}
}

func isUnauthorized(err error) bool {
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.HasErrorCode(codeUnauthorized)
	}
	return false
}
