package grpc

import (
	"errors"

	"github.com/DRSN-tech/shop-backend/pkg/e"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCErrorResponse переводит ошибку в статус gRPC. Текст неизвестных ошибок наружу не отдаётся.
func GRPCErrorResponse(err error) error {
	var ce *e.ClientError
	if !errors.As(err, &ce) {
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}

	switch {
	case errors.Is(ce.Kind, e.ErrBadRequest):
		if errors.Is(err, e.ErrInsufficientStock) {
			return status.Error(codes.FailedPrecondition, ce.Msg)
		}
		return status.Error(codes.InvalidArgument, ce.Msg)
	case errors.Is(ce.Kind, e.ErrUnauthenticated):
		return status.Error(codes.Unauthenticated, ce.Msg)
	case errors.Is(ce.Kind, e.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, ce.Msg)
	case errors.Is(ce.Kind, e.ErrNotFound):
		return status.Error(codes.NotFound, ce.Msg)
	default:
		return status.Error(codes.Internal, e.ErrInternalServerError.Error())
	}
}
