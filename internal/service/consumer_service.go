package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"chatbot-router-be/internal/dto"
	"chatbot-router-be/pkg/vectorstore"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	gocache "github.com/patrickmn/go-cache"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService pre-warms the CSV analysis cache: whenever a CSV upload
// finishes ingesting, the analysis is computed once here instead of on the
// first request.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	store         vectorstore.Store
	analysisCache *gocache.Cache
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	store vectorstore.Store,
	analysisCache *gocache.Cache,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		store:         store,
		analysisCache: analysisCache,
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
	var payload dto.PublishDocumentIngestedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingestion message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	if !strings.HasSuffix(strings.ToLower(payload.Source), ".csv") {
		msg.Ack()
		return
	}

	log.Printf("[INFO] Pre-warming CSV analysis for: %s", payload.Source)

	analysis, err := BuildCSVAnalysis(ctx, cs.store, payload.Collection, payload.Source)
	if err != nil {
		log.Printf("[ERROR] Failed to analyze %s: %v", payload.Source, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	cs.analysisCache.Set(fmt.Sprintf(csvAnalysisKeyFmt, payload.Source), analysis, gocache.DefaultExpiration)
	log.Printf("[SUCCESS] CSV analysis cached: %s (%d chunks)", payload.Source, analysis.TotalChunks)
	msg.Ack()
}
