// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package operation instruments the state-changing calls of the governance
// and treasury services with a span, a log line and a rejection counter.
package operation

import (
	"context"
	"log/slog"

	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/failure"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// CodeInternal labels failures outside the failure taxonomy
const CodeInternal = "internal"

type Recorder struct {
	component string
	logger    *slog.Logger
	tracer    trace.Tracer
	rejected  *prometheus.CounterVec
}

// NewRecorder returns a Recorder for a component. The rejected counter may be
// nil and must carry the labels "operation" and "code".
func NewRecorder(
	component string,
	tracerName string,
	logger *slog.Logger,
	rejected *prometheus.CounterVec,
) *Recorder {
	return &Recorder{
		component: component,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
		rejected:  rejected,
	}
}

// Start opens a span for an operation. The returned function ends it,
// recording the error when the operation failed.
func (r *Recorder) Start(
	ctx context.Context,
	op string,
	caller auth.Caller,
	attrs ...attribute.KeyValue,
) (context.Context, func(error)) {
	attrs = append(attrs, attribute.String("votevault.caller", caller.String()))
	ctx, span := r.tracer.Start(
		ctx,
		r.component+"."+op,
		trace.WithAttributes(attrs...),
	)
	return ctx, func(err error) {
		defer span.End()
		if err == nil {
			return
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		code := CodeInternal
		if fCode, ok := failure.CodeOf(err); ok {
			code = string(fCode)
			r.logger.Debug(
				"operation rejected",
				"component", r.component,
				"operation", op,
				"code", code,
			)
		} else {
			r.logger.Error(
				"operation failed",
				"component", r.component,
				"operation", op,
				"error", err,
			)
		}
		span.SetAttributes(attribute.String("votevault.failure", code))
		if r.rejected != nil {
			r.rejected.WithLabelValues(op, code).Inc()
		}
	}
}
