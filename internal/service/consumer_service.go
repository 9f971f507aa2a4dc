package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"doc-assistant-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	pubSub           *gochannel.GoChannel
	topicName        string
	ingestionService IIngestionService
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	ingestionService IIngestionService,
) IConsumerService {
	return &consumerService{
		pubSub:           pubSub,
		topicName:        topicName,
		ingestionService: ingestionService,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.PublishReindexMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal reindex message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	var (
		summary *dto.IngestSummary
		err     error
	)
	if payload.Path == "" {
		log.Printf("[INFO] Reindexing full corpus")
		summary, err = cs.ingestionService.IngestDir(ctx)
	} else {
		log.Printf("[INFO] Reindexing document: %s", payload.Path)
		summary, err = cs.ingestionService.IngestFile(ctx, payload.Path)
	}

	if err != nil {
		if errors.Is(err, ErrIngestAborted) {
			// Embedding backend failure is retriable.
			log.Printf("[ERROR] Reindex aborted: %v", err)
			msg.Nack()
			return
		}
		// Per-document failures are already recorded in the summary; a
		// retry would hit the same malformed input again.
		log.Printf("[ERROR] Reindex finished with error: %v", err)
		msg.Ack()
		return
	}

	log.Printf("[SUCCESS] Reindex done: %d docs, %d chunks, %d failed",
		summary.DocsIndexed, summary.ChunksWritten, summary.DocsFailed)
	msg.Ack()
}
