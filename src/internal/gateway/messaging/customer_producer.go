package messaging

import (
	"repair-service/src/internal/model"
	kafka "repair-service/src/pkg/kafka/confluent"
	"repair-service/src/pkg/log"
)

type CustomerProducer struct {
	OrderRequestedProducer Producer[*model.OrderEvent]
	OrderCancelledProducer Producer[*model.OrderEvent]
	QuoteDecidedProducer   Producer[*model.QuoteEvent]
}

func NewCustomerProducer(producer kafka.Producer, log log.Log) *CustomerProducer {
	return &CustomerProducer{
		OrderRequestedProducer: Producer[*model.OrderEvent]{
			Producer: producer,
			Topic:    "repair-requested",
			Log:      log,
		},
		OrderCancelledProducer: Producer[*model.OrderEvent]{
			Producer: producer,
			Topic:    "repair-cancelled",
			Log:      log,
		},
		QuoteDecidedProducer: Producer[*model.QuoteEvent]{
			Producer: producer,
			Topic:    "quote-decided",
			Log:      log,
		},
	}
}

func (p *CustomerProducer) SendOrderRequested(event *model.OrderEvent) error {
	return p.OrderRequestedProducer.Send(event)
}

func (p *CustomerProducer) SendOrderCancelled(event *model.OrderEvent) error {
	return p.OrderCancelledProducer.Send(event)
}

func (p *CustomerProducer) SendQuoteDecided(event *model.QuoteEvent) error {
	return p.QuoteDecidedProducer.Send(event)
}
