package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/pledge/internal/middleware"
	"github.com/mmynk/pledge/internal/models"
)

// toConnectError maps store errors to Connect codes. Unrecognized errors are
// logged and reported as internal.
func toConnectError(op string, err error) error {
	var code connect.Code
	switch {
	case errors.Is(err, models.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, models.ErrTooEarly), errors.Is(err, models.ErrAlreadyCompleted):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, models.ErrAlreadyContributed):
		code = connect.CodeAlreadyExists
	case errors.Is(err, models.ErrIntegrityViolation):
		code = connect.CodeDataLoss
	case errors.Is(err, models.ErrNotAParticipant), errors.Is(err, models.ErrAccessDenied):
		code = connect.CodePermissionDenied
	case errors.Is(err, models.ErrInvalidArgument):
		code = connect.CodeInvalidArgument
	case errors.Is(err, models.ErrNotInitialized):
		code = connect.CodeUnavailable
	case errors.Is(err, context.Canceled):
		code = connect.CodeCanceled
	case errors.Is(err, context.DeadlineExceeded):
		code = connect.CodeDeadlineExceeded
	default:
		slog.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, fmt.Errorf("%s failed", op))
	}
	return connect.NewError(code, err)
}

// callerFor returns the authenticated participant and checks that it is the
// participant the request acts for.
func callerFor(ctx context.Context, participantID string) error {
	caller := middleware.GetParticipantID(ctx)
	if caller == "" {
		return connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	if participantID == "" {
		return connect.NewError(connect.CodeInvalidArgument, errors.New("participant id is required"))
	}
	if caller != participantID {
		return connect.NewError(connect.CodePermissionDenied, fmt.Errorf("token for %s cannot act for %s", caller, participantID))
	}
	return nil
}

// requireCaller checks that the request carries an authenticated participant.
func requireCaller(ctx context.Context) error {
	if middleware.GetParticipantID(ctx) == "" {
		return connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	return nil
}
