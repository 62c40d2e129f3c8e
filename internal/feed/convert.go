package feed

import (
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/euromart/storefront-notify/internal/orders"
)

// FromLambdaRecord converts one Lambda stream record into a ChangeEvent.
// DynamoDB names modifications MODIFY and removals REMOVE; consumers see the
// feed vocabulary INSERT/UPDATE/DELETE.
func FromLambdaRecord(rec events.DynamoDBEventRecord) (ChangeEvent, error) {
	var ev ChangeEvent
	switch rec.EventName {
	case "INSERT":
		ev.Type = EventInsert
	case "MODIFY":
		ev.Type = EventUpdate
	case "REMOVE":
		ev.Type = EventDelete
	default:
		return ev, fmt.Errorf("unknown stream event name %q", rec.EventName)
	}

	var err error
	if len(rec.Change.OldImage) > 0 {
		if ev.Old, err = imageToOrder(rec.Change.OldImage); err != nil {
			return ev, fmt.Errorf("old image: %w", err)
		}
	}
	if len(rec.Change.NewImage) > 0 {
		if ev.New, err = imageToOrder(rec.Change.NewImage); err != nil {
			return ev, fmt.Errorf("new image: %w", err)
		}
	}
	return ev, nil
}

func imageToOrder(image map[string]events.DynamoDBAttributeValue) (*orders.Order, error) {
	item := make(map[string]types.AttributeValue, len(image))
	for name, av := range image {
		converted, err := convertAttr(av)
		if err != nil {
			return nil, fmt.Errorf("attribute %s: %w", name, err)
		}
		item[name] = converted
	}
	var o orders.Order
	if err := attributevalue.UnmarshalMap(item, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	return &o, nil
}

// convertAttr maps the Lambda events attribute representation onto the SDK
// one so the shared attributevalue unmarshaler can decode stream images.
func convertAttr(av events.DynamoDBAttributeValue) (types.AttributeValue, error) {
	switch av.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: av.String()}, nil
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: av.Number()}, nil
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: av.Boolean()}, nil
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: av.Binary()}, nil
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: av.IsNull()}, nil
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: av.StringSet()}, nil
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: av.NumberSet()}, nil
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: av.BinarySet()}, nil
	case events.DataTypeList:
		list := make([]types.AttributeValue, 0, len(av.List()))
		for _, item := range av.List() {
			converted, err := convertAttr(item)
			if err != nil {
				return nil, err
			}
			list = append(list, converted)
		}
		return &types.AttributeValueMemberL{Value: list}, nil
	case events.DataTypeMap:
		m := make(map[string]types.AttributeValue, len(av.Map()))
		for key, item := range av.Map() {
			converted, err := convertAttr(item)
			if err != nil {
				return nil, err
			}
			m[key] = converted
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	default:
		return nil, fmt.Errorf("unsupported attribute type %v", av.DataType())
	}
}
