package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fekuna/omnipos-pricing-service/internal/model"
	"github.com/fekuna/omnipos-pricing-service/internal/pkg/logger"
)

type recordingPublisher struct {
	topics []string
	keys   []string
	bodies [][]byte
	err    error
}

func (p *recordingPublisher) PublishJSON(_ context.Context, topic, key string, value any) error {
	data, _ := json.Marshal(value)
	p.topics = append(p.topics, topic)
	p.keys = append(p.keys, key)
	p.bodies = append(p.bodies, data)
	return p.err
}

func TestBusDeliversToAllSubscribersInOrder(t *testing.T) {
	bus := NewBus()
	var got []string
	bus.OnCustomerTypeChanged(func(_ context.Context, e CustomerTypeChanged) { got = append(got, "a:"+e.CustomerID) })
	bus.OnCustomerTypeChanged(func(_ context.Context, e CustomerTypeChanged) { got = append(got, "b:"+e.CustomerID) })

	bus.PublishCustomerTypeChanged(context.Background(), CustomerTypeChanged{CustomerID: "c1", NewType: model.CustomerClassNormal})

	if len(got) != 2 || got[0] != "a:c1" || got[1] != "b:c1" {
		t.Fatalf("delivered = %v", got)
	}
}

func TestForwarderWrapsEventsInEnvelope(t *testing.T) {
	pub := &recordingPublisher{}
	bus := NewBus()
	NewForwarder(pub, Topics{Customers: "customers.events", Loyalty: "loyalty.events"}, logger.NewNop()).Attach(bus)

	bus.PublishCustomerTypeChanged(context.Background(), CustomerTypeChanged{CustomerID: "c1", NewType: model.CustomerClassMerchant})
	bus.PublishTierChanged(context.Background(), TierChanged{CustomerID: "c2", Reason: model.TierChangeMonthlyReset})

	if len(pub.topics) != 2 || pub.topics[0] != "customers.events" || pub.topics[1] != "loyalty.events" {
		t.Fatalf("topics = %v", pub.topics)
	}
	var env Envelope[CustomerTypeChanged]
	if err := json.Unmarshal(pub.bodies[0], &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.EventType != TypeCustomerTypeChanged || env.Payload.NewType != model.CustomerClassMerchant || env.EventID == "" {
		t.Errorf("envelope = %+v", env)
	}
	if pub.keys[1] != "c2" {
		t.Errorf("key = %q, want c2", pub.keys[1])
	}
}

func TestForwarderSwallowsPublishErrors(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	bus := NewBus()
	NewForwarder(pub, Topics{Customers: "c", Loyalty: "l"}, logger.NewNop()).Attach(bus)

	called := false
	bus.OnCustomerTypeChanged(func(context.Context, CustomerTypeChanged) { called = true })
	bus.PublishCustomerTypeChanged(context.Background(), CustomerTypeChanged{CustomerID: "c1"})

	if !called {
		t.Error("subscriber after forwarder did not run")
	}
}
