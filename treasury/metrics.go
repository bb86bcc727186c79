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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type treasuryMetrics struct {
	purchases          prometheus.Counter
	collateralReceived prometheus.Counter
	tokensDelivered    prometheus.Counter
	rejected           *prometheus.CounterVec
}

func (m *treasuryMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.purchases = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "votevault_treasury_purchases_total",
		Help: "total completed token purchases",
	})
	m.collateralReceived = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "votevault_treasury_collateral_received_total",
		Help: "total collateral paid into the vault",
	})
	m.tokensDelivered = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "votevault_treasury_tokens_delivered_total",
		Help: "total tokens credited to buyers",
	})
	m.rejected = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votevault_treasury_rejected_total",
			Help: "failed treasury calls by operation and failure code",
		},
		[]string{"operation", "code"},
	)
}
