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

package governance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type governanceMetrics struct {
	proposalsCreated prometheus.Counter
	votesCast        prometheus.Counter
	winnersDeclared  prometheus.Counter
	rejected         *prometheus.CounterVec
}

func (m *governanceMetrics) init(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	m.proposalsCreated = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "votevault_governance_proposals_created_total",
		Help: "total proposals created",
	})
	m.votesCast = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "votevault_governance_votes_cast_total",
		Help: "total votes cast",
	})
	m.winnersDeclared = promautoFactory.NewCounter(prometheus.CounterOpts{
		Name: "votevault_governance_winners_declared_total",
		Help: "total proposals ended by a winner declaration",
	})
	m.rejected = promautoFactory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "votevault_governance_rejected_total",
			Help: "failed governance calls by operation and failure code",
		},
		[]string{"operation", "code"},
	)
}
