package service

import (
	"errors"

	"github.com/lib/pq"

	customError "github.com/camilozg/lending-engine/pkg/errors"
)

// postgres error codes surfaced to the business taxonomy
const (
	pqUniqueViolation      = "23505"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// translateStoreError maps storage-level failures onto the business error
// taxonomy: duplicate external ids become validation errors, lost locking
// races become retryable conflicts, everything else stays a database error.
func translateStoreError(err error, externalID string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return customError.WrapAlreadyExists(externalID)
		case pqSerializationFailure, pqDeadlockDetected:
			return customError.WrapTransitionConflict(externalID)
		}
	}

	return customError.WrapDatabaseError(err)
}
