package server

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"go.alis.build/alog"
)

// Validator is implemented by request messages that can check themselves.
type Validator interface {
	Validate() error
}

// ValidationInterceptor rejects requests whose message fails Validate.
func ValidationInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if msg, ok := req.Any().(Validator); ok {
				if err := msg.Validate(); err != nil {
					return nil, connect.NewError(connect.CodeInvalidArgument, err)
				}
			}
			return next(ctx, req)
		}
	}
}

// LoggingInterceptor logs each procedure call with its outcome and duration.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			if err != nil {
				alog.Warnf(ctx, "%s %s: %v (%s)", req.Spec().Procedure, connect.CodeOf(err), err, time.Since(start))
				return resp, err
			}
			alog.Infof(ctx, "%s ok (%s)", req.Spec().Procedure, time.Since(start))
			return resp, nil
		}
	}
}
