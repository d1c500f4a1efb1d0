// Package common holds helpers shared by the domain services.
package common

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/jwalitptl/careconnect-api/internal/repository"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

// FromRepo translates repository sentinels into API errors. AppErrors pass through.
func FromRepo(resource string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound(resource, err)
	}
	return apperrors.Internal(err)
}

// MissingObject is the field error for a reference to a record that does not exist.
func MissingObject(field string, id int64) error {
	return apperrors.Field(field, fmt.Sprintf("Invalid pk %q - object does not exist.", strconv.FormatInt(id, 10)))
}

// EmailTaken is the field error for an email held by another identity.
func EmailTaken(kind string) error {
	return apperrors.Field("email", fmt.Sprintf("%s with this email already exists.", kind))
}
