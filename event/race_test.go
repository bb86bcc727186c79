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
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blinklabs-io/votevault/event"
	waitutil "github.com/blinklabs-io/votevault/internal/test/testutil"
)

// panicSubscriber panics on every delivery
type panicSubscriber struct {
	delivered atomic.Int32
	closed    atomic.Bool
}

func (p *panicSubscriber) Deliver(event.Event) error {
	p.delivered.Add(1)
	panic("subscriber exploded")
}

func (p *panicSubscriber) Close() {
	p.closed.Store(true)
}

// funcSubscriber calls fn synchronously from Publish
type funcSubscriber struct {
	fn func(event.Event)
}

func (f *funcSubscriber) Deliver(evt event.Event) error {
	f.fn(evt)
	return nil
}

func (f *funcSubscriber) Close() {}

func TestPublishToFullSubscriberDropsEvent(t *testing.T) {
	const extra = 3
	testEvtType := event.EventType("race.full")
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	defer eb.Stop()
	_, subCh := eb.Subscribe(testEvtType)

	// Nobody reads subCh while publishing
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range event.EventQueueSize + extra {
			eb.Publish(testEvtType, event.NewEvent(testEvtType, i))
		}
	}()
	waitutil.RequireClosed(t, done, waitutil.DefaultTimeout, "publish blocked on full subscriber")

	expected := fmt.Sprintf(`
# HELP votevault_event_delivery_errors_total failed or dropped event deliveries by type and reason
# TYPE votevault_event_delivery_errors_total counter
votevault_event_delivery_errors_total{kind="dropped",type="race.full"} %d
`, extra)
	require.NoError(t, testutil.GatherAndCompare(
		reg,
		strings.NewReader(expected),
		"votevault_event_delivery_errors_total",
	))

	// The buffered events are the oldest ones, in publish order
	for i := range event.EventQueueSize {
		evt := waitutil.RequireReceive(t, subCh, time.Second, "buffered event")
		assert.Equal(t, i, evt.Data)
	}
	waitutil.RequireNoReceive(t, subCh, 50*time.Millisecond, "dropped event")
}

func TestPanickingSubscriberIsUnregistered(t *testing.T) {
	testEvtType := event.EventType("race.panic")
	reg := prometheus.NewRegistry()
	eb := event.NewEventBus(reg, nil)
	defer eb.Stop()

	bad := &panicSubscriber{}
	require.NotZero(t, eb.RegisterSubscriber(testEvtType, bad))
	_, goodCh := eb.Subscribe(testEvtType)

	require.NotPanics(t, func() {
		eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
		eb.Publish(testEvtType, event.NewEvent(testEvtType, 2))
	})
	assert.Equal(t, int32(1), bad.delivered.Load())
	assert.True(t, bad.closed.Load())

	// Healthy subscribers keep receiving
	for _, want := range []int{1, 2} {
		evt := waitutil.RequireReceive(t, goodCh, time.Second, "healthy subscriber")
		assert.Equal(t, want, evt.Data)
	}

	expected := `
# HELP votevault_event_delivery_errors_total failed or dropped event deliveries by type and reason
# TYPE votevault_event_delivery_errors_total counter
votevault_event_delivery_errors_total{kind="remote",type="race.panic"} 1
# HELP votevault_event_subscribers current subscribers by event type and subscriber kind
# TYPE votevault_event_subscribers gauge
votevault_event_subscribers{kind="in-memory",type="race.panic"} 1
votevault_event_subscribers{kind="remote",type="race.panic"} 0
`
	require.NoError(t, testutil.GatherAndCompare(
		reg,
		strings.NewReader(expected),
		"votevault_event_delivery_errors_total",
		"votevault_event_subscribers",
	))
}

func TestSubscriberUnsubscribesDuringPublish(t *testing.T) {
	testEvtType := event.EventType("race.reentrant")
	eb := event.NewEventBus(nil, nil)
	defer eb.Stop()

	var calls atomic.Int32
	var subId event.EventSubscriberId
	sub := &funcSubscriber{}
	sub.fn = func(event.Event) {
		calls.Add(1)
		// Publish must not hold the bus lock while delivering
		eb.Unsubscribe(testEvtType, subId)
	}
	subId = eb.RegisterSubscriber(testEvtType, sub)
	require.NotZero(t, subId)

	done := make(chan struct{})
	go func() {
		defer close(done)
		eb.Publish(testEvtType, event.NewEvent(testEvtType, 1))
		eb.Publish(testEvtType, event.NewEvent(testEvtType, 2))
	}()
	waitutil.RequireClosed(t, done, waitutil.DefaultTimeout, "publish deadlocked")
	assert.Equal(t, int32(1), calls.Load())
}

func TestConcurrentSubscribePublishStop(t *testing.T) {
	const (
		workers = 8
		rounds  = 50
	)
	testEvtType := event.EventType("race.churn")
	eb := event.NewEventBus(prometheus.NewRegistry(), nil)

	var handled atomic.Int64
	eb.SubscribeFunc(testEvtType, func(event.Event) {
		handled.Add(1)
	})

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(2)
		// Subscribers churn and drain their channels until closed
		go func() {
			defer wg.Done()
			for range rounds {
				subId, ch := eb.Subscribe(testEvtType)
				if subId == 0 {
					// Bus already stopped, ch is closed
					for range ch {
					}
					return
				}
				select {
				case <-ch:
				default:
				}
				eb.Unsubscribe(testEvtType, subId)
				for range ch {
				}
			}
		}()
		go func() {
			defer wg.Done()
			for i := range rounds {
				eb.Publish(testEvtType, event.NewEvent(testEvtType, w*rounds+i))
			}
		}()
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		time.Sleep(5 * time.Millisecond)
		eb.Stop()
	}()

	wg.Wait()
	waitutil.RequireClosed(t, stopped, waitutil.DefaultTimeout, "stop did not return")
	assert.LessOrEqual(t, handled.Load(), int64(workers*rounds))

	// Stop leaves no live subscriptions behind
	subId, ch := eb.Subscribe(testEvtType)
	assert.Zero(t, subId)
	waitutil.RequireClosed(t, ch, time.Second, "subscription after stop")
}

func TestStopWaitsForRunningHandler(t *testing.T) {
	testEvtType := event.EventType("race.slow")
	eb := event.NewEventBus(nil, nil)

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	eb.SubscribeFunc(testEvtType, func(event.Event) {
		close(started)
		<-release
		finished.Store(true)
	})
	eb.Publish(testEvtType, event.NewEvent(testEvtType, "slow"))
	waitutil.RequireClosed(t, started, time.Second, "handler did not start")

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		eb.Stop()
	}()
	waitutil.RequireNoReceive(t, stopped, 50*time.Millisecond, "stop returned while handler was running")

	close(release)
	waitutil.RequireClosed(t, stopped, waitutil.DefaultTimeout, "stop did not return")
	assert.True(t, finished.Load())
}
