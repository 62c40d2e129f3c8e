package metrics

import (
	"context"
	"log"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/euromart/storefront-notify/internal/aws"
)

// Namespace groups every metric this service emits.
const Namespace = "EuroMart/Notifications"

// Recorder emits per-channel dispatch outcome metrics to CloudWatch.
// Emission is best effort: a metrics failure is logged and never propagated
// into the dispatch path.
type Recorder struct {
	cw aws.CloudWatchAPI
}

// NewRecorder wraps a CloudWatch client.
func NewRecorder(cw aws.CloudWatchAPI) *Recorder {
	return &Recorder{cw: cw}
}

// RecordDispatch implements notify.Metrics: one count per (channel, outcome).
func (r *Recorder) RecordDispatch(ctx context.Context, channel, outcome string) {
	ns := Namespace
	name := "Dispatch"
	value := 1.0
	_, err := r.cw.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: &ns,
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: &name,
				Value:      &value,
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					dimension("Channel", channel),
					dimension("Outcome", outcome),
				},
			},
		},
	})
	if err != nil {
		log.Printf("[metrics] put metric failed channel=%s outcome=%s: %v", channel, outcome, err)
	}
}

func dimension(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: &name, Value: &value}
}
