package kafka

import (
	"fmt"

	"repair-service/src/pkg/log"

	k "gopkg.in/confluentinc/confluent-kafka-go.v1/kafka"
)

type producer struct {
	producer *k.Producer
	log      log.Log
}

func NewProducer(cfg *k.ConfigMap, logger log.Log) (Producer, error) {
	p, err := k.NewProducer(cfg)
	if err != nil {
		return nil, err
	}

	return &producer{
		producer: p,
		log:      logger,
	}, nil
}

func (p *producer) Publish(message *k.Message) error {
	deliveryChan := make(chan k.Event, 1)
	defer close(deliveryChan)

	if err := p.producer.Produce(message, deliveryChan); err != nil {
		p.log.Error("kafka-producer", fmt.Sprintf("failed to produce message: %v", err), "Publish", "")
		return err
	}

	event := <-deliveryChan
	msg, ok := event.(*k.Message)
	if !ok {
		return fmt.Errorf("unexpected kafka event: %v", event)
	}
	if msg.TopicPartition.Error != nil {
		p.log.Error("kafka-producer", fmt.Sprintf("delivery failed: %v", msg.TopicPartition.Error), "Publish", "")
		return msg.TopicPartition.Error
	}

	return nil
}

func (p *producer) Close() {
	p.producer.Flush(5000)
	p.producer.Close()
}
