package feed

import (
	"context"
	"fmt"
	"log"
	"time"

	streamsav "github.com/aws/aws-sdk-go-v2/feature/dynamodbstreams/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodbstreams"
	streamstypes "github.com/aws/aws-sdk-go-v2/service/dynamodbstreams/types"

	"github.com/euromart/storefront-notify/internal/aws"
	"github.com/euromart/storefront-notify/internal/orders"
)

// Poller tails the orders-table stream directly with the DynamoDB Streams
// API. It is the local-development stand-in for the Lambda trigger: same
// events, same listener.
type Poller struct {
	streams   aws.StreamsAPI
	streamArn string
	listener  *Listener
	interval  time.Duration
}

// NewPoller builds a poller over a stream ARN.
func NewPoller(streams aws.StreamsAPI, streamArn string, listener *Listener, interval time.Duration) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Poller{
		streams:   streams,
		streamArn: streamArn,
		listener:  listener,
		interval:  interval,
	}
}

// Run tails the stream until the context is cancelled or the stream errors.
// A stream error is returned, not retried: the subscription is not
// automatically re-established and the caller owns restart policy.
func (p *Poller) Run(ctx context.Context) error {
	iterators, err := p.shardIterators(ctx)
	if err != nil {
		return err
	}
	log.Printf("[feed] polling %d shard(s) on %s", len(iterators), p.streamArn)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		next := iterators[:0]
		for _, it := range iterators {
			out, err := p.streams.GetRecords(ctx, &dynamodbstreams.GetRecordsInput{
				ShardIterator: &it,
			})
			if err != nil {
				log.Printf("[feed] stream read error: %v", err)
				return fmt.Errorf("get records: %w", err)
			}
			for _, rec := range out.Records {
				change, err := fromStreamRecord(rec)
				if err != nil {
					log.Printf("[feed] skipping undecodable record: %v", err)
					continue
				}
				if err := p.listener.Deliver(ctx, change); err != nil {
					return err
				}
			}
			if out.NextShardIterator != nil {
				next = append(next, *out.NextShardIterator)
			}
		}
		iterators = next
		if len(iterators) == 0 {
			log.Printf("[feed] all shards closed")
			return nil
		}
	}
}

func (p *Poller) shardIterators(ctx context.Context) ([]string, error) {
	desc, err := p.streams.DescribeStream(ctx, &dynamodbstreams.DescribeStreamInput{
		StreamArn: &p.streamArn,
	})
	if err != nil {
		return nil, fmt.Errorf("describe stream: %w", err)
	}

	var iterators []string
	for _, shard := range desc.StreamDescription.Shards {
		// open shards only: a present EndingSequenceNumber means the shard
		// is closed
		if shard.SequenceNumberRange != nil && shard.SequenceNumberRange.EndingSequenceNumber != nil {
			continue
		}
		out, err := p.streams.GetShardIterator(ctx, &dynamodbstreams.GetShardIteratorInput{
			StreamArn:         &p.streamArn,
			ShardId:           shard.ShardId,
			ShardIteratorType: streamstypes.ShardIteratorTypeLatest,
		})
		if err != nil {
			return nil, fmt.Errorf("get shard iterator: %w", err)
		}
		if out.ShardIterator != nil {
			iterators = append(iterators, *out.ShardIterator)
		}
	}
	return iterators, nil
}

func fromStreamRecord(rec streamstypes.Record) (ChangeEvent, error) {
	var ev ChangeEvent
	switch rec.EventName {
	case streamstypes.OperationTypeInsert:
		ev.Type = EventInsert
	case streamstypes.OperationTypeModify:
		ev.Type = EventUpdate
	case streamstypes.OperationTypeRemove:
		ev.Type = EventDelete
	default:
		return ev, fmt.Errorf("unknown operation type %q", rec.EventName)
	}
	if rec.Dynamodb == nil {
		return ev, fmt.Errorf("record %s has no stream data", *rec.EventID)
	}

	if len(rec.Dynamodb.OldImage) > 0 {
		var o orders.Order
		if err := streamsav.UnmarshalMap(rec.Dynamodb.OldImage, &o); err != nil {
			return ev, fmt.Errorf("old image: %w", err)
		}
		ev.Old = &o
	}
	if len(rec.Dynamodb.NewImage) > 0 {
		var o orders.Order
		if err := streamsav.UnmarshalMap(rec.Dynamodb.NewImage, &o); err != nil {
			return ev, fmt.Errorf("new image: %w", err)
		}
		ev.New = &o
	}
	return ev, nil
}
