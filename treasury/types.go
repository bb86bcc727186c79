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

package treasury

import (
	"fmt"

	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/keys"
)

// SupplyMode selects where purchased tokens come from
type SupplyMode uint8

const (
	// SupplyMint mints new tokens to the buyer
	SupplyMint SupplyMode = 0
	// SupplyTransfer moves tokens from a treasury token account
	SupplyTransfer SupplyMode = 1
)

func (m SupplyMode) String() string {
	switch m {
	case SupplyMint:
		return "mint"
	case SupplyTransfer:
		return "transfer"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

func (m SupplyMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *SupplyMode) UnmarshalText(data []byte) error {
	mode, err := ParseSupplyMode(string(data))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseSupplyMode parses "mint" or "transfer". An empty string selects
// SupplyMint.
func ParseSupplyMode(s string) (SupplyMode, error) {
	switch s {
	case "", "mint":
		return SupplyMint, nil
	case "transfer":
		return SupplyTransfer, nil
	default:
		return 0, fmt.Errorf("unknown supply mode: %q", s)
	}
}

type TreasuryConfig struct {
	Authority         keys.Key   `json:"authority"`
	CollateralVault   keys.Key   `json:"collateral_vault"`
	TokenType         keys.Key   `json:"token_type"`
	MintAuthority     keys.Key   `json:"mint_authority"`
	SolPrice          uint64     `json:"sol_price"`
	TokensPerPurchase uint64     `json:"tokens_per_purchase"`
	SupplyMode        SupplyMode `json:"supply_mode"`
	SupplySource      *keys.Key  `json:"supply_source,omitempty"`
	InitializedAt     int64      `json:"initialized_at"`
}

func treasuryConfigFromModel(m *models.TreasuryConfig) *TreasuryConfig {
	return &TreasuryConfig{
		Authority:         m.Authority,
		CollateralVault:   m.CollateralVault,
		TokenType:         m.TokenType,
		MintAuthority:     m.MintAuthority,
		SolPrice:          uint64(m.SolPrice),
		TokensPerPurchase: uint64(m.TokensPerPurchase),
		SupplyMode:        SupplyMode(m.SupplyMode),
		SupplySource:      m.SupplySource,
		InitializedAt:     m.InitializedAt,
	}
}

type Mint struct {
	Key           keys.Key `json:"key"`
	MintAuthority keys.Key `json:"mint_authority"`
	Decimals      uint8    `json:"decimals"`
	Supply        uint64   `json:"supply"`
}

func mintFromModel(m *models.Mint) *Mint {
	return &Mint{
		Key:           m.Key,
		MintAuthority: m.MintAuthority,
		Decimals:      m.Decimals,
		Supply:        uint64(m.Supply),
	}
}

type TokenAccount struct {
	Key    keys.Key `json:"key"`
	Owner  keys.Key `json:"owner"`
	Mint   keys.Key `json:"mint"`
	Amount uint64   `json:"amount"`
}

func tokenAccountFromModel(m *models.TokenAccount) *TokenAccount {
	return &TokenAccount{
		Key:    m.Key,
		Owner:  m.Owner,
		Mint:   m.Mint,
		Amount: uint64(m.Amount),
	}
}

type CollateralAccount struct {
	Key      keys.Key `json:"key"`
	Owner    keys.Key `json:"owner"`
	Lamports uint64   `json:"lamports"`
}

func collateralAccountFromModel(
	m *models.CollateralAccount,
) *CollateralAccount {
	return &CollateralAccount{
		Key:      m.Key,
		Owner:    m.Owner,
		Lamports: uint64(m.Lamports),
	}
}
