package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	orderworkflows "github.com/Apurer/go-gin-carrier-checkout/internal/platform/temporal/workflows/orders"
)

var (
	_ ports.CommitOrchestrator = (*TemporalCommitWorkflows)(nil)
	_ ports.CommitOrchestrator = (*InlineCommitWorkflows)(nil)
)

// TemporalCommitWorkflows runs post-persist carrier commits on a Temporal cluster.
type TemporalCommitWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalCommitWorkflows wires a Temporal client into the orchestrator.
func NewTemporalCommitWorkflows(c client.Client) *TemporalCommitWorkflows {
	return &TemporalCommitWorkflows{client: c, taskQueue: orderworkflows.CarrierCommitTaskQueue}
}

// Commit starts the commit workflow and waits for its result. The workflow
// id is derived from the order and trigger, so a repeated trigger joins the
// run already in progress instead of starting a second one.
func (o *TemporalCommitWorkflows) Commit(ctx context.Context, req ports.CommitRequest) (ports.CommitResult, error) {
	if o == nil || o.client == nil {
		return ports.CommitResult{}, errors.New("temporal commit workflows not configured")
	}
	workflowID := buildCommitWorkflowID(req)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.CarrierCommitWorkflow,
		orderworkflows.CarrierCommitWorkflowInput{Request: req, TraceID: workflowTraceComponent(ctx)},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return ports.CommitResult{}, err
		}
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	var result ports.CommitResult
	if err := run.Get(ctx, &result); err != nil {
		return ports.CommitResult{}, err
	}
	return result, nil
}

// InlineCommitWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineCommitWorkflows struct {
	service ports.Service
}

// NewInlineCommitWorkflows wraps the orders service for synchronous execution.
func NewInlineCommitWorkflows(service ports.Service) *InlineCommitWorkflows {
	return &InlineCommitWorkflows{service: service}
}

// Commit delegates to the application service without durable orchestration.
func (o *InlineCommitWorkflows) Commit(ctx context.Context, req ports.CommitRequest) (ports.CommitResult, error) {
	if o == nil || o.service == nil {
		return ports.CommitResult{}, errors.New("inline commit workflows not configured")
	}
	return o.service.Commit(ctx, req)
}

func buildCommitWorkflowID(req ports.CommitRequest) string {
	return fmt.Sprintf("order-carrier-commit-%d-%s", req.OrderID, req.Trigger)
}

func workflowTraceComponent(ctx context.Context) string {
	if traceID := workflowTraceID(ctx); traceID != "" {
		return traceID
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
