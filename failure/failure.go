// Copyright 2026 Blink Labs Software
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

// Package failure defines the closed set of user-facing failure kinds
// returned by the governance and treasury programs.
package failure

import "errors"

// Code identifies a failure kind. Codes are stable and surfaced verbatim to
// callers (API responses, CLI output, metrics labels).
type Code string

const (
	InvalidDeadline          Code = "InvalidDeadline"
	AlreadyInitialized       Code = "AlreadyInitialized"
	CounterOverflow          Code = "CounterOverflow"
	ProposalEnded            Code = "ProposalEnded"
	ProposalVotesOverflow    Code = "ProposalVotesOverflow"
	VotingStillActive        Code = "VotingStillActive"
	NoVotesCast              Code = "NoVotesCast"
	UnauthorizedAccess       Code = "UnauthorizedAccess"
	TokenMintMismatch        Code = "TokenMintMismatch"
	VoterAlreadyVoted        Code = "VoterAlreadyVoted"
	InvalidTokenAccountOwner Code = "InvalidTokenAccountOwner"
	InvalidMint              Code = "InvalidMint"

	// Lookup and balance failures
	NotInitialized    Code = "NotInitialized"
	ProposalNotFound  Code = "ProposalNotFound"
	AccountNotFound   Code = "AccountNotFound"
	InsufficientFunds Code = "InsufficientFunds"
	InvalidAmount     Code = "InvalidAmount"
)

// Error is a failure of a precondition check. Two errors match with
// errors.Is when their codes are equal, so callers can compare against the
// package sentinels even when the message carries extra detail.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New returns an error of the given kind with a custom message
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

var (
	ErrInvalidDeadline = New(
		InvalidDeadline,
		"invalid deadline passed",
	)
	ErrAlreadyInitialized = New(
		AlreadyInitialized,
		"account is already initialized",
	)
	ErrCounterOverflow = New(
		CounterOverflow,
		"proposal counter overflow",
	)
	ErrProposalEnded = New(
		ProposalEnded,
		"proposal ended",
	)
	ErrProposalVotesOverflow = New(
		ProposalVotesOverflow,
		"proposal votes overflow",
	)
	ErrVotingStillActive = New(
		VotingStillActive,
		"voting is still active",
	)
	ErrNoVotesCast = New(
		NoVotesCast,
		"no votes cast",
	)
	ErrUnauthorizedAccess = New(
		UnauthorizedAccess,
		"unauthorized access",
	)
	ErrTokenMintMismatch = New(
		TokenMintMismatch,
		"token mint mismatch",
	)
	ErrVoterAlreadyVoted = New(
		VoterAlreadyVoted,
		"voter already voted",
	)
	ErrInvalidTokenAccountOwner = New(
		InvalidTokenAccountOwner,
		"invalid token account owner",
	)
	ErrInvalidMint = New(
		InvalidMint,
		"invalid mint",
	)
	ErrNotInitialized = New(
		NotInitialized,
		"account is not initialized",
	)
	ErrProposalNotFound = New(
		ProposalNotFound,
		"proposal not found",
	)
	ErrAccountNotFound = New(
		AccountNotFound,
		"account not found",
	)
	ErrInsufficientFunds = New(
		InsufficientFunds,
		"insufficient funds",
	)
	ErrInvalidAmount = New(
		InvalidAmount,
		"invalid amount",
	)
)

// Codes lists every failure kind
var Codes = []Code{
	InvalidDeadline,
	AlreadyInitialized,
	CounterOverflow,
	ProposalEnded,
	ProposalVotesOverflow,
	VotingStillActive,
	NoVotesCast,
	UnauthorizedAccess,
	TokenMintMismatch,
	VoterAlreadyVoted,
	InvalidTokenAccountOwner,
	InvalidMint,
	NotInitialized,
	ProposalNotFound,
	AccountNotFound,
	InsufficientFunds,
	InvalidAmount,
}

// CodeOf returns the failure code carried anywhere in the error chain
func CodeOf(err error) (Code, bool) {
	var fErr *Error
	if errors.As(err, &fErr) {
		return fErr.Code, true
	}
	return "", false
}
