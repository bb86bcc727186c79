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
	"net/http"
)

func (s *Server) handleGetCounter(
	w http.ResponseWriter,
	r *http.Request,
) {
	next, err := s.governance.Counter(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CounterResponse{NextID: next})
}

func (s *Server) handleInitializeCounter(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	if err := s.governance.InitializeCounter(r.Context(), caller); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CounterResponse{NextID: 0})
}

func (s *Server) handleListProposals(
	w http.ResponseWriter,
	r *http.Request,
) {
	proposals, err := s.governance.Proposals(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proposals)
}

func (s *Server) handleCreateProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req CreateProposalRequest
	if !decodeBody(w, r, &req) {
		return
	}
	id, err := s.governance.CreateProposal(r.Context(), caller, req.Deadline)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateProposalResponse{ID: id})
}

func (s *Server) handleGetProposal(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	proposal, err := s.governance.Proposal(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

// handleCastVote records the caller's vote and returns the updated proposal
func (s *Server) handleCastVote(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	if err := s.governance.CastVote(r.Context(), caller, id); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	proposal, err := s.governance.Proposal(r.Context(), id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

func (s *Server) handleHasVoted(
	w http.ResponseWriter,
	r *http.Request,
) {
	id, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	voter, ok := pathKey(w, r, "voter")
	if !ok {
		return
	}
	voted, err := s.governance.HasVoted(r.Context(), id, voter)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, HasVotedResponse{
		ProposalID: id,
		Voter:      voter,
		Voted:      voted,
	})
}

func (s *Server) handleDeclareWinner(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	id, ok := pathUint(w, r, "id")
	if !ok {
		return
	}
	tally, err := s.governance.DeclareWinner(r.Context(), caller, id)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DeclareWinnerResponse{
		ProposalID: id,
		VoteCount:  tally,
	})
}
