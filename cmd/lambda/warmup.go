package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"golang.org/x/sync/errgroup"

	"relay/backend/internal/logger"
)

const (
	// WarmupSource identifies warmup events from the scheduler rule.
	WarmupSource = "warmup"

	// WarmupDelay keeps this instance busy long enough for the self-invocations
	// to land on other instances.
	WarmupDelay = 75 * time.Millisecond

	// maxWarmupConcurrency caps self-invocations per warmup event.
	maxWarmupConcurrency = 10
)

// WarmupEvent is the scheduled event payload, {"source":"warmup","concurrency":N}.
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// invoker is the part of the Lambda client used for self-invocation.
type invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// newInvoker is replaced in tests.
var newInvoker = func(ctx context.Context) (invoker, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return lambdasdk.NewFromConfig(cfg), nil
}

// IsWarmupEvent reports whether event is a warmup event and decodes it.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var warmup WarmupEvent
	if err := json.Unmarshal(event, &warmup); err != nil {
		return nil, false
	}
	if warmup.Source != WarmupSource {
		return nil, false
	}
	if warmup.Concurrency < 0 {
		warmup.Concurrency = 0
	}
	return &warmup, true
}

// HandleWarmup answers a warmup event, first invoking this function Concurrency more
// times so that several instances stay warm.
func HandleWarmup(ctx context.Context, warmup *WarmupEvent) (events.APIGatewayProxyResponse, error) {
	instancesWarmed := 1

	if warmup.Concurrency > 0 {
		count := min(warmup.Concurrency, maxWarmupConcurrency)
		if err := selfInvoke(ctx, count); err != nil {
			logger.Warn("warmup self invoke failed", "module", "lambda", "action", "warmup", "resource", "lambda", "result", "failed", "count", count, "error", err)
		} else {
			instancesWarmed += count
		}
	}

	time.Sleep(WarmupDelay)

	logger.Debug("warmup done", "module", "lambda", "action", "warmup", "resource", "lambda", "result", "ok", "instances", instancesWarmed)
	return jsonResponse(http.StatusOK, WarmupResponse{Status: "warm", InstancesWarmed: instancesWarmed}), nil
}

// selfInvoke invokes this function count times asynchronously.
func selfInvoke(ctx context.Context, count int) error {
	client, err := newInvoker(ctx)
	if err != nil {
		return err
	}

	// Child invocations carry no concurrency so they do not fan out again.
	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource})
	if err != nil {
		return err
	}
	functionName := os.Getenv("AWS_LAMBDA_FUNCTION_NAME")

	g, ctx := errgroup.WithContext(ctx)
	for range count {
		g.Go(func() error {
			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			return err
		})
	}
	return g.Wait()
}
