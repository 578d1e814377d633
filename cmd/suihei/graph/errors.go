package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/tjper/suihei/cmd/suihei/db"
	serrors "github.com/tjper/suihei/cmd/suihei/errors"
	"github.com/tjper/suihei/cmd/suihei/model"
	"github.com/tjper/suihei/cmd/suihei/query"
	gerrors "github.com/tjper/suihei/internal/graph/errors"
	"github.com/tjper/suihei/internal/logger"
	"github.com/tjper/suihei/internal/token"

	graphql "github.com/graph-gophers/graphql-go"
	"go.uber.org/zap"
)

// fail converts err into an error fit for clients. Domain errors surface
// with their message and code, query composition errors surface as
// validation errors. Any other error is logged as msg and hidden behind
// gerrors.ErrInternalServer.
func (r *Resolver) fail(ctx context.Context, err error, msg string) error {
	if validationErr := serrors.AsValidationError(err); validationErr != nil {
		return gerrors.New(gerrors.CodeValidation, validationErr.Error())
	}
	if permissionErr := serrors.AsPermissionError(err); permissionErr != nil {
		return gerrors.New(gerrors.CodePermission, permissionErr.Error())
	}
	if notFoundErr := serrors.AsNotFoundError(err); notFoundErr != nil {
		return gerrors.New(gerrors.CodeNotFound, notFoundErr.Error())
	}
	if decodingErr := serrors.AsDecodingError(err); decodingErr != nil {
		return gerrors.New(gerrors.CodeDecoding, decodingErr.Error())
	}
	if conflictErr := serrors.AsConflictError(err); conflictErr != nil {
		return gerrors.New(gerrors.CodeConflict, conflictErr.Error())
	}
	if errors.Is(err, serrors.ErrRecordDNE) {
		return gerrors.New(gerrors.CodeNotFound, "Record not found")
	}
	if errors.Is(err, query.ErrUnknownField) ||
		errors.Is(err, query.ErrUnknownFilter) ||
		errors.Is(err, query.ErrNotGroupable) ||
		errors.Is(err, serrors.ErrUnknownKind) {
		return gerrors.New(gerrors.CodeValidation, err.Error())
	}

	r.logger.Error(msg, append(logger.ContextFields(ctx), zap.Error(err))...)
	return gerrors.ErrInternalServer
}

// decode decodes tok, which must reference a record of kind.
func decode(tok graphql.ID, kind string) (int64, error) {
	id, err := token.DecodeKind(tok, kind)
	if err != nil {
		return 0, serrors.DecodingError(fmt.Sprintf("Invalid %s id %q", kind, tok))
	}
	return id, nil
}

// lookup retrieves the record referenced by tok. Malformed tokens report a
// DecodingError and missing records a NotFoundError.
func lookup[T any, P interface {
	*T
	model.Record
}](ctx context.Context, store db.IStore, tok graphql.ID) (P, error) {
	record := P(new(T))
	id, err := decode(tok, record.RecordKind())
	if err != nil {
		return nil, err
	}
	if err := store.Get(ctx, record, id); err != nil {
		if errors.Is(err, serrors.ErrRecordDNE) {
			return nil, serrors.NotFoundError(fmt.Sprintf("%s not found", record.RecordKind()))
		}
		return nil, err
	}
	return record, nil
}

// get retrieves the record of kind P identified by id.
func get[T any, P interface {
	*T
	model.Record
}](ctx context.Context, store db.IStore, id int64) (P, error) {
	record := P(new(T))
	if err := store.Get(ctx, record, id); err != nil {
		return nil, err
	}
	return record, nil
}
