package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	ordersdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-gin-carrier-checkout/internal/domains/orders/ports"
	shipdomain "github.com/Apurer/go-gin-carrier-checkout/internal/domains/shipping/domain"
	orderactivities "github.com/Apurer/go-gin-carrier-checkout/internal/platform/temporal/activities/orders"
)

type commitStub struct {
	ordersports.Service
	calls  int
	result ordersports.CommitResult
	err    error
}

func (s *commitStub) Commit(_ context.Context, _ ordersports.CommitRequest) (ordersports.CommitResult, error) {
	s.calls++
	return s.result, s.err
}

func runCommitWorkflow(t *testing.T, stub *commitStub) (ordersports.CommitResult, error) {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	env.RegisterActivityWithOptions(orderactivities.NewActivities(stub).CommitCarriers,
		activity.RegisterOptions{Name: orderactivities.CommitCarriersActivityName})

	env.ExecuteWorkflow(CarrierCommitWorkflow, CarrierCommitWorkflowInput{
		Request: ordersports.CommitRequest{OrderID: 12, Trigger: ordersdomain.TriggerOrderProcessed, Session: "sess"},
		TraceID: "trace-1",
	})
	require.True(t, env.IsWorkflowCompleted())
	if err := env.GetWorkflowError(); err != nil {
		return ordersports.CommitResult{}, err
	}
	var result ordersports.CommitResult
	require.NoError(t, env.GetWorkflowResult(&result))
	return result, nil
}

func TestCarrierCommitWorkflow_ReturnsActivityResult(t *testing.T) {
	stub := &commitStub{result: ordersports.CommitResult{
		Committed: true,
		Carriers:  map[shipdomain.InstanceID]string{5: "Andreani"},
	}}

	result, err := runCommitWorkflow(t, stub)
	require.NoError(t, err)
	assert.True(t, result.Committed)
	assert.Equal(t, "Andreani", result.Carriers[5])
	assert.Equal(t, 1, stub.calls)
}

func TestCarrierCommitWorkflow_DoesNotRetryFailures(t *testing.T) {
	stub := &commitStub{err: errors.New("database unavailable")}

	_, err := runCommitWorkflow(t, stub)
	require.Error(t, err)
	assert.Equal(t, 1, stub.calls)
}
