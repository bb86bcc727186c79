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

package models

import (
	"errors"

	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/keys"
)

var ErrTreasuryConfigNotFound = errors.New("treasury config not found")

// TreasuryConfig holds the exchange parameters. There is at most one row.
type TreasuryConfig struct {
	ID                uint         `gorm:"primarykey"`
	Authority         keys.Key     `gorm:"size:32;not null"`
	CollateralVault   keys.Key     `gorm:"size:32;not null"`
	TokenType         keys.Key     `gorm:"size:32;not null"`
	MintAuthority     keys.Key     `gorm:"size:32;not null"`
	SolPrice          types.Uint64 `gorm:"type:varchar(20);not null"`
	TokensPerPurchase types.Uint64 `gorm:"type:varchar(20);not null"`
	SupplyMode        uint8        `gorm:"not null"`
	SupplySource      *keys.Key    `gorm:"size:32"`
	InitializedAt     int64        `gorm:"not null"`
}

func (TreasuryConfig) TableName() string {
	return "treasury_config"
}
