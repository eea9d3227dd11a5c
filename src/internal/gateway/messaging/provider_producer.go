package messaging

import (
	"repair-service/src/internal/model"
	kafka "repair-service/src/pkg/kafka/confluent"
	"repair-service/src/pkg/log"
)

type ProviderProducer struct {
	OrderClaimedProducer   Producer[*model.OrderEvent]
	OrderAcceptedProducer  Producer[*model.OrderEvent]
	OrderReleasedProducer  Producer[*model.OrderEvent]
	OrderCompletedProducer Producer[*model.OrderEvent]
}

func NewProviderProducer(producer kafka.Producer, log log.Log) *ProviderProducer {
	return &ProviderProducer{
		OrderClaimedProducer: Producer[*model.OrderEvent]{
			Producer: producer,
			Topic:    "order-claimed",
			Log:      log,
		},
		OrderAcceptedProducer: Producer[*model.OrderEvent]{
			Producer: producer,
			Topic:    "order-accepted",
			Log:      log,
		},
		OrderReleasedProducer: Producer[*model.OrderEvent]{
			Producer: producer,
			Topic:    "order-released",
			Log:      log,
		},
		OrderCompletedProducer: Producer[*model.OrderEvent]{
			Producer: producer,
			Topic:    "order-completed",
			Log:      log,
		},
	}
}

func (p *ProviderProducer) SendOrderClaimed(event *model.OrderEvent) error {
	return p.OrderClaimedProducer.Send(event)
}

func (p *ProviderProducer) SendOrderAccepted(event *model.OrderEvent) error {
	return p.OrderAcceptedProducer.Send(event)
}

func (p *ProviderProducer) SendOrderReleased(event *model.OrderEvent) error {
	return p.OrderReleasedProducer.Send(event)
}

func (p *ProviderProducer) SendOrderCompleted(event *model.OrderEvent) error {
	return p.OrderCompletedProducer.Send(event)
}
