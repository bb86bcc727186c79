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

package metadata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/database/plugin"
	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	// Register the metadata plugins
	_ "github.com/blinklabs-io/votevault/database/plugin/metadata/mysql"
	_ "github.com/blinklabs-io/votevault/database/plugin/metadata/postgres"
	_ "github.com/blinklabs-io/votevault/database/plugin/metadata/sqlite"
)

type MetadataStore interface {
	// Database
	Close() error
	DB() *gorm.DB
	GetCommitTimestamp() (int64, error)
	SetCommitTimestamp(int64, types.Txn) error
	Transaction(context.Context) types.Txn

	// Governance
	GetSequenceCounter(types.Txn) (*models.SequenceCounter, error)
	CreateSequenceCounter(*models.SequenceCounter, types.Txn) (bool, error)
	SetSequenceCounter(*models.SequenceCounter, types.Txn) error
	GetProposal(
		uint64, // proposalID
		types.Txn,
	) (*models.Proposal, error)
	GetProposals(types.Txn) ([]models.Proposal, error)
	CreateProposal(*models.Proposal, types.Txn) error
	SetProposal(*models.Proposal, types.Txn) error
	GetVoteRecord(
		uint64, // proposalID
		keys.Key, // voter
		types.Txn,
	) (*models.VoteRecord, error)
	CreateVoteRecord(*models.VoteRecord, types.Txn) (bool, error)
	CountVoteRecords(
		uint64, // proposalID
		types.Txn,
	) (uint64, error)

	// Treasury
	GetTreasuryConfig(types.Txn) (*models.TreasuryConfig, error)
	CreateTreasuryConfig(*models.TreasuryConfig, types.Txn) (bool, error)
	SetTreasuryConfig(*models.TreasuryConfig, types.Txn) error
	GetMint(keys.Key, types.Txn) (*models.Mint, error)
	CreateMint(*models.Mint, types.Txn) error
	SetMint(*models.Mint, types.Txn) error
	GetTokenAccount(keys.Key, types.Txn) (*models.TokenAccount, error)
	CreateTokenAccount(*models.TokenAccount, types.Txn) error
	SetTokenAccount(*models.TokenAccount, types.Txn) error
	GetTokenAccountsByMint(keys.Key, types.Txn) ([]models.TokenAccount, error)
	GetTokenAccountsByOwner(keys.Key, types.Txn) ([]models.TokenAccount, error)
	GetCollateralAccount(
		keys.Key,
		types.Txn,
	) (*models.CollateralAccount, error)
	CreateCollateralAccount(*models.CollateralAccount, types.Txn) error
	SetCollateralAccount(*models.CollateralAccount, types.Txn) error
	GetCollateralAccountsByOwner(
		keys.Key,
		types.Txn,
	) ([]models.CollateralAccount, error)
}

// New returns the started metadata plugin selected by name
func New(
	pluginName string,
	logger *slog.Logger,
	promRegistry prometheus.Registerer,
) (MetadataStore, error) {
	// Get and start the plugin
	p, err := plugin.StartPlugin(
		plugin.PluginTypeMetadata,
		pluginName,
		logger,
		promRegistry,
	)
	if err != nil {
		return nil, err
	}

	// Type assert to MetadataStore interface
	metadataStore, ok := p.(MetadataStore)
	if !ok {
		_ = p.Stop()
		return nil, fmt.Errorf(
			"plugin '%s' does not implement MetadataStore interface",
			pluginName,
		)
	}

	return metadataStore, nil
}
