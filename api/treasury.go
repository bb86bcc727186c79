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
	"context"
	"net/http"

	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/blinklabs-io/votevault/treasury"
)

func (s *Server) handleGetTreasury(
	w http.ResponseWriter,
	r *http.Request,
) {
	cfg, err := s.treasury.Config(r.Context())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleInitializeTreasury(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req InitializeTreasuryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cfg, err := s.treasury.InitializeTreasury(
		r.Context(),
		caller,
		treasury.InitParams{
			CollateralVault:   req.CollateralVault,
			TokenType:         req.TokenType,
			SolPrice:          req.SolPrice,
			TokensPerPurchase: req.TokensPerPurchase,
			SupplyMode:        req.SupplyMode,
			SupplySource:      req.SupplySource,
			InitialSupply:     req.InitialSupply,
			Decimals:          req.Decimals,
		},
	)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

func (s *Server) handleUpdatePrice(
	w http.ResponseWriter,
	r *http.Request,
) {
	s.handleUpdate(w, r, s.treasury.UpdatePrice)
}

func (s *Server) handleUpdateVolume(
	w http.ResponseWriter,
	r *http.Request,
) {
	s.handleUpdate(w, r, s.treasury.UpdateVolume)
}

func (s *Server) handleUpdate(
	w http.ResponseWriter,
	r *http.Request,
	update func(context.Context, auth.Caller, keys.Key, uint64) (*treasury.TreasuryConfig, error),
) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req UpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cfg, err := update(r.Context(), caller, req.TokenType, req.Value)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleBuyTokens(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req BuyTokensRequest
	if !decodeBody(w, r, &req) {
		return
	}
	receipt, err := s.treasury.BuyTokens(
		r.Context(),
		caller,
		req.Source,
		req.Destination,
	)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) handleCreateMint(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req CreateMintRequest
	if !decodeBody(w, r, &req) {
		return
	}
	mint, err := s.treasury.CreateMint(
		r.Context(),
		caller,
		req.Authority,
		req.Decimals,
	)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mint)
}

func (s *Server) handleGetMint(
	w http.ResponseWriter,
	r *http.Request,
) {
	key, ok := pathKey(w, r, "key")
	if !ok {
		return
	}
	mint, err := s.treasury.Mint(r.Context(), key)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mint)
}

func (s *Server) handleOpenCollateralAccount(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	account, err := s.treasury.OpenCollateralAccount(r.Context(), caller)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleGetCollateralAccount(
	w http.ResponseWriter,
	r *http.Request,
) {
	key, ok := pathKey(w, r, "key")
	if !ok {
		return
	}
	account, err := s.treasury.CollateralAccount(r.Context(), key)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleDepositCollateral(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	key, ok := pathKey(w, r, "key")
	if !ok {
		return
	}
	var req DepositRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account, err := s.treasury.DepositCollateral(
		r.Context(),
		caller,
		key,
		req.Amount,
	)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleOpenTokenAccount(
	w http.ResponseWriter,
	r *http.Request,
) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	var req OpenTokenAccountRequest
	if !decodeBody(w, r, &req) {
		return
	}
	account, err := s.treasury.OpenTokenAccount(r.Context(), caller, req.Mint)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleGetTokenAccount(
	w http.ResponseWriter,
	r *http.Request,
) {
	key, ok := pathKey(w, r, "key")
	if !ok {
		return
	}
	account, err := s.treasury.TokenAccount(r.Context(), key)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleOwnerAccounts(
	w http.ResponseWriter,
	r *http.Request,
) {
	owner, ok := pathKey(w, r, "owner")
	if !ok {
		return
	}
	collateral, err := s.treasury.CollateralAccountsByOwner(r.Context(), owner)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	tokens, err := s.treasury.TokenAccountsByOwner(r.Context(), owner)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, OwnerAccountsResponse{
		Owner:      owner,
		Collateral: collateral,
		Tokens:     tokens,
	})
}
