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

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/failure"
	"github.com/blinklabs-io/votevault/keys"
)

const maxRequestBodySize = 1 << 20

// writeJSON writes a JSON response with the given status code
func writeJSON(
	w http.ResponseWriter,
	status int,
	v any,
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,errchkjson
	json.NewEncoder(w).Encode(v)
}

func writeError(
	w http.ResponseWriter,
	status int,
	errStr string,
	message string,
) {
	writeJSON(w, status, ErrorResponse{
		StatusCode: status,
		Error:      errStr,
		Message:    message,
	})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "Bad Request", message)
}

// statusForCode maps a failure code to its HTTP status
func statusForCode(code failure.Code) int {
	switch code {
	case failure.UnauthorizedAccess:
		return http.StatusForbidden
	case failure.ProposalNotFound,
		failure.AccountNotFound:
		return http.StatusNotFound
	case failure.InvalidDeadline,
		failure.InvalidAmount,
		failure.InvalidMint,
		failure.InvalidTokenAccountOwner,
		failure.TokenMintMismatch,
		failure.InsufficientFunds:
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

// writeFailure reports an operation error. Rejections carry their failure
// code; anything else is an internal error and is logged.
func (s *Server) writeFailure(
	w http.ResponseWriter,
	r *http.Request,
	err error,
) {
	var fail *failure.Error
	if errors.As(err, &fail) {
		writeError(w, statusForCode(fail.Code), string(fail.Code), fail.Error())
		return
	}
	s.logger.Error(
		"request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(
		w,
		http.StatusInternalServerError,
		"Internal Server Error",
		"failed to process request",
	)
}

func (s *Server) caller(
	w http.ResponseWriter,
	r *http.Request,
) (auth.Caller, bool) {
	caller, err := s.config.Identity(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return auth.Anonymous, false
	}
	return caller, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeBadRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func pathUint(w http.ResponseWriter, r *http.Request, name string) (uint64, bool) {
	ret, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil {
		writeBadRequest(w, "invalid "+name+": "+r.PathValue(name))
		return 0, false
	}
	return ret, true
}

func pathKey(w http.ResponseWriter, r *http.Request, name string) (keys.Key, bool) {
	ret, err := keys.Parse(r.PathValue(name))
	if err != nil {
		writeBadRequest(w, "invalid "+name+": "+err.Error())
		return keys.Key{}, false
	}
	return ret, true
}

func (s *Server) handleHealth(
	w http.ResponseWriter,
	r *http.Request,
) {
	if _, err := s.db.JournalSequence(nil); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{IsHealthy: true})
}

func (s *Server) handleJournal(
	w http.ResponseWriter,
	r *http.Request,
) {
	params, err := ParseJournalRange(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	txn := s.db.TransactionContext(r.Context(), false)
	defer txn.Release()
	last, err := s.db.JournalSequence(txn)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	entries, err := s.db.GetJournal(params.From, params.Limit, txn)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	var next uint64
	if len(entries) > 0 {
		next = entries[len(entries)-1].Sequence + 1
	}
	SetJournalHeaders(w, last, next)
	writeJSON(w, http.StatusOK, entries)
}
