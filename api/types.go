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
	"github.com/blinklabs-io/votevault/keys"
	"github.com/blinklabs-io/votevault/treasury"
)

// HealthResponse is returned by GET /health
type HealthResponse struct {
	IsHealthy bool `json:"is_healthy"`
}

// ErrorResponse is the body of every failed request. Error carries the
// failure code for rejected operations.
type ErrorResponse struct {
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Message    string `json:"message"`
}

type CounterResponse struct {
	NextID uint64 `json:"next_id"`
}

type CreateProposalRequest struct {
	Deadline int64 `json:"deadline"`
}

type CreateProposalResponse struct {
	ID uint64 `json:"id"`
}

type HasVotedResponse struct {
	ProposalID uint64   `json:"proposal_id"`
	Voter      keys.Key `json:"voter"`
	Voted      bool     `json:"voted"`
}

type DeclareWinnerResponse struct {
	ProposalID uint64 `json:"proposal_id"`
	VoteCount  uint64 `json:"vote_count"`
}

type InitializeTreasuryRequest struct {
	CollateralVault   keys.Key            `json:"collateral_vault"`
	TokenType         keys.Key            `json:"token_type"`
	SolPrice          uint64              `json:"sol_price"`
	TokensPerPurchase uint64              `json:"tokens_per_purchase"`
	SupplyMode        treasury.SupplyMode `json:"supply_mode"`
	SupplySource      keys.Key            `json:"supply_source"`
	InitialSupply     uint64              `json:"initial_supply"`
	Decimals          *uint8              `json:"decimals"`
}

// UpdateRequest sets the price or the volume of the treasury token
type UpdateRequest struct {
	TokenType keys.Key `json:"token_type"`
	Value     uint64   `json:"value"`
}

type BuyTokensRequest struct {
	Source      keys.Key `json:"source"`
	Destination keys.Key `json:"destination"`
}

type CreateMintRequest struct {
	Authority keys.Key `json:"authority"`
	Decimals  uint8    `json:"decimals"`
}

type DepositRequest struct {
	Amount uint64 `json:"amount"`
}

type OpenTokenAccountRequest struct {
	Mint keys.Key `json:"mint"`
}

type OwnerAccountsResponse struct {
	Owner      keys.Key                     `json:"owner"`
	Collateral []treasury.CollateralAccount `json:"collateral"`
	Tokens     []treasury.TokenAccount      `json:"tokens"`
}
