package main

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// consumerRetryDelay is the pause after a failed pop so a broken
// queue connection does not spin the consumer.
const consumerRetryDelay = time.Second

type Consumer interface {
	Consume(ctx context.Context, qids ...string) error
}

type journalConsumer struct {
	logger  *zap.Logger
	queue   Queuer
	journal Journal
}

// NewJournalConsumer provides a consumer which records each popped event.
func NewJournalConsumer(logger *zap.Logger, q Queuer, journal Journal) Consumer {
	return &journalConsumer{logger, q, journal}
}

// Consume pops events from the given queues until the context is done.
func (jc *journalConsumer) Consume(ctx context.Context, qids ...string) error {
	for {
		qid, event, err := jc.queue.Pop(ctx, qids...)
		if err != nil && ctx.Err() != nil {
			jc.logger.Info("consumer: queue pop call: context is done: exit", zap.String("reason", ctx.Err().Error()))
			return nil
		}

		if err != nil {
			jc.logger.Error("consumer: error on queue pop call", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(consumerRetryDelay):
			}
			continue
		}

		switch qid {
		case SellerEventsQueue, BookEventsQueue:
			if err = jc.journal.Append(ctx, qid, event); err != nil {
				jc.logger.Error("consumer: failed to journal event", zap.String("qid", qid), zap.Any("event", event), zap.Error(err))
			}
		default:
			jc.logger.Warn("consumer: received event on unknow queue id", zap.String("qid", qid), zap.Any("event", event))
		}
	}
}
