package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func upper(_ context.Context, s string) (string, error) {
	return strings.ToUpper(s), nil
}

func TestBatchProcessor_Parallel_AllSucceed(t *testing.T) {
	p := NewBatchProcessor(upper, 4, zap.NewNop())

	items := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	result, err := p.Process(context.Background(), items)

	require.NoError(t, err)
	assert.False(t, result.FellBack)
	assert.False(t, result.Sequential)
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F", "G", "H", "I"}, result.Items)
}

func TestBatchProcessor_FallsBackToSequentialOnFailure(t *testing.T) {
	var calls sync.Map
	transform := func(_ context.Context, s string) (string, error) {
		n, _ := calls.LoadOrStore(s, new(int32))
		counter := n.(*int32)
		*counter++
		// item7 fails only during the parallel pass
		if s == "item7" && *counter == 1 {
			return "", errors.New("downstream rejected item7")
		}
		return strings.ToUpper(s), nil
	}
	p := NewBatchProcessor(transform, 4, zap.NewNop())

	items := make([]string, 9)
	for i := range items {
		items[i] = fmt.Sprintf("item%d", i+1)
	}

	result, err := p.Process(context.Background(), items)
	require.NoError(t, err)
	assert.True(t, result.FellBack)
	assert.True(t, result.Sequential)
	assert.Empty(t, result.Errors)

	want := make([]string, 9)
	for i := range want {
		want[i] = strings.ToUpper(items[i])
	}
	assert.Equal(t, want, result.Items)
}

func TestBatchProcessor_SequentialCollectsPerItemErrors(t *testing.T) {
	transform := func(_ context.Context, s string) (string, error) {
		if s == "bad" {
			return "", errors.New("always fails")
		}
		return strings.ToUpper(s), nil
	}
	p := NewBatchProcessor(transform, 4, zap.NewNop())

	result, err := p.Process(context.Background(), []string{"a", "bad", "c", "bad", "e"})
	require.NoError(t, err)
	assert.True(t, result.FellBack)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, 3, result.Errors[1].Index)
	assert.Equal(t, []string{"A", "", "C", "", "E"}, result.Items)
}

func TestBatchProcessor_SingleItemRunsSequentially(t *testing.T) {
	p := NewBatchProcessor(upper, 4, zap.NewNop())

	result, err := p.Process(context.Background(), []string{"solo"})
	require.NoError(t, err)
	assert.True(t, result.Sequential)
	assert.False(t, result.FellBack)
	assert.Equal(t, []string{"SOLO"}, result.Items)
}

func TestBatchProcessor_EmptyInput(t *testing.T) {
	p := NewBatchProcessor(upper, 4, zap.NewNop())

	result, err := p.Process(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestBatchProcessor_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewBatchProcessor(upper, 4, zap.NewNop())
	_, err := p.Process(ctx, []string{"a", "b", "c"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPartition(t *testing.T) {
	assert.Equal(t, [][2]int{{0, 3}, {3, 5}, {5, 7}, {7, 9}}, partition(9, 4))
	assert.Equal(t, [][2]int{{0, 1}, {1, 2}}, partition(2, 4))
	assert.Equal(t, [][2]int{{0, 4}}, partition(4, 1))
}
