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
	"github.com/blinklabs-io/votevault/event"
)

const (
	TreasuryInitializedEventType event.EventType = "treasury.initialized"
	TreasuryUpdatedEventType     event.EventType = "treasury.updated"
	PurchaseEventType            event.EventType = "treasury.purchase"
)

type TreasuryInitializedEvent struct {
	Config TreasuryConfig
}

type TreasuryUpdatedEvent struct {
	Operation string
	Config    TreasuryConfig
}

type PurchaseEvent struct {
	Receipt Receipt
}
