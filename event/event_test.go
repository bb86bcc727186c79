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

package event_test

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/blinklabs-io/votevault/event"
	waitutil "github.com/blinklabs-io/votevault/internal/test/testutil"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestEventBusSingleSubscriber(t *testing.T) {
	var testEvtData int = 999
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, testEvtData))
	evt := waitutil.RequireReceive(t, subCh, time.Second, "event")
	v, ok := evt.Data.(int)
	require.True(t, ok, "event data was not of expected type, got %T", evt.Data)
	assert.Equal(t, testEvtData, v)
	assert.Equal(t, testEvtType, evt.Type)
}

func TestEventBusMultipleSubscribers(t *testing.T) {
	var testEvtData int = 999
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, sub1Ch := eb.Subscribe(testEvtType)
	_, sub2Ch := eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, testEvtData))
	for _, ch := range []<-chan event.Event{sub1Ch, sub2Ch} {
		select {
		case evt, ok := <-ch:
			require.True(t, ok, "event channel closed unexpectedly")
			assert.Equal(t, testEvtData, evt.Data)
		case <-time.After(1 * time.Second):
			t.Fatalf("timeout waiting for event")
		}
	}
}

func TestEventBusOtherTypeNotDelivered(t *testing.T) {
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe("test.one")
	eb.Publish("test.two", event.NewEvent("test.two", 1))
	waitutil.RequireNoReceive(t, subCh, 50*time.Millisecond, "unsubscribed type")
}

func TestEventBusUnsubscribe(t *testing.T) {
	var testEvtData int = 999
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()
	subId, subCh := eb.Subscribe(testEvtType)
	eb.Unsubscribe(testEvtType, subId)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, testEvtData))
	// Unsubscribe closes the subscriber channel
	waitutil.RequireClosed(t, subCh, time.Second, "unsubscribed channel")
}

func TestEventBusStop(t *testing.T) {
	var testEvtType event.EventType = "test.event"
	eb := event.NewEventBus(nil, nil)

	_, subCh1 := eb.Subscribe(testEvtType)
	var handled atomic.Int32
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		handled.Add(1)
	})

	eb.Publish(testEvtType, event.NewEvent(testEvtType, "before"))
	waitutil.WaitForCondition(t, func() bool {
		return handled.Load() == 1
	}, time.Second, "handler did not run")

	eb.Stop()

	// Drain buffered events and verify the channel closes
	for range subCh1 {
	}

	// Nothing is delivered after Stop
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "after"))
	assert.Equal(t, int32(1), handled.Load())

	// Subscriptions after Stop are closed immediately
	subId, subCh2 := eb.Subscribe(testEvtType)
	assert.Equal(t, event.EventSubscriberId(0), subId)
	_, ok := <-subCh2
	assert.False(t, ok)
	assert.Equal(
		t,
		event.EventSubscriberId(0),
		eb.SubscribeFunc(testEvtType, func(event.Event) {}),
	)

	// A second Stop is a no-op
	eb.Stop()
}

func TestSubscribeFuncPanicRecovery(t *testing.T) {
	var testEvtType event.EventType = "test.panic"
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()

	var received atomic.Int32

	// Register a handler that panics on the first event, then succeeds
	eb.SubscribeFunc(testEvtType, func(evt event.Event) {
		count := received.Add(1)
		if count == 1 {
			panic("intentional test panic")
		}
	})

	// First event triggers the panic -- the goroutine must survive
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "panic"))

	// Second event should still be delivered to the same handler
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "after-panic"))

	require.Eventually(t, func() bool {
		return received.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond,
		"handler should continue processing events after a panic",
	)
}

func TestEventBusMetrics(t *testing.T) {
	var testEvtType event.EventType = "test.metrics"
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	defer eb.Stop()

	subId, _ := eb.Subscribe(testEvtType)
	eb.Subscribe(testEvtType)
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
	eb.Publish(testEvtType, event.NewEvent(testEvtType, 2))
	eb.Unsubscribe(testEvtType, subId)

	count, err := testutil.GatherAndCount(
		reg,
		"votevault_event_published_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	expected := `
# HELP votevault_event_published_total total events published by type
# TYPE votevault_event_published_total counter
votevault_event_published_total{type="test.metrics"} 2
# HELP votevault_event_subscribers current subscribers by event type and subscriber kind
# TYPE votevault_event_subscribers gauge
votevault_event_subscribers{kind="in-memory",type="test.metrics"} 1
`
	require.NoError(t, testutil.GatherAndCompare(
		reg,
		strings.NewReader(expected),
		"votevault_event_published_total",
		"votevault_event_subscribers",
	))
}
