package workflow_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	workflow "github.com/lucasmqar/vercflow-sub003"
)

func TestParsePriority(t *testing.T) {
	p, err := workflow.ParsePriority("critical")
	require.NoError(t, err)
	require.Equal(t, workflow.PriorityCritical, p)

	// Empty parses to the creation default.
	p, err = workflow.ParsePriority("")
	require.NoError(t, err)
	require.Equal(t, workflow.PriorityMedium, p)

	_, err = workflow.ParsePriority("blocker")
	require.Error(t, err)
}

func TestPriorityJSONRoundTrip(t *testing.T) {
	b, err := json.Marshal(workflow.PriorityUrgent)
	require.NoError(t, err)
	require.Equal(t, `"urgent"`, string(b))

	var p workflow.Priority
	require.NoError(t, json.Unmarshal(b, &p))
	require.Equal(t, workflow.PriorityUrgent, p)
}

func TestPriorityOrdering(t *testing.T) {
	require.True(t, workflow.PriorityCritical > workflow.PriorityUrgent)
	require.True(t, workflow.PriorityUrgent > workflow.PriorityHigh)
	require.True(t, workflow.PriorityHigh > workflow.PriorityMedium)
	require.True(t, workflow.PriorityMedium > workflow.PriorityLow)
}
