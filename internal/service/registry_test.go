package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MarkShawn2020/lovcode/backend/internal/shared/types"
)

type stubProvider struct {
	id       string
	lastTool string
}

func (s *stubProvider) Definition() types.Service {
	return types.Service{
		ID:       s.id,
		Name:     "Stub Service",
		Category: types.CategorySystem,
	}
}

func (s *stubProvider) Execute(ctx context.Context, toolID string, params map[string]interface{}, appCtx *types.Context) (*types.Result, error) {
	s.lastTool = toolID
	return &types.Result{
		Success: true,
		Data:    map[string]interface{}{"echo": params["value"]},
	}, nil
}

func TestRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	stub := &stubProvider{id: "stub"}

	require.NoError(t, reg.Register(stub))

	got, ok := reg.Get("stub")
	require.True(t, ok)
	assert.Equal(t, "stub", got.Definition().ID)

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestRegisterEmptyID(t *testing.T) {
	reg := NewRegistry()
	require.Error(t, reg.Register(&stubProvider{id: ""}))
}

func TestUnregister(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubProvider{id: "stub"}))

	reg.Unregister("stub")

	_, ok := reg.Get("stub")
	assert.False(t, ok)
}

func TestListServices(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubProvider{id: "a"}))
	require.NoError(t, reg.Register(&stubProvider{id: "b"}))

	services := reg.List()
	require.Len(t, services, 2)

	ids := []string{services[0].ID, services[1].ID}
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestExecuteDispatch(t *testing.T) {
	reg := NewRegistry()
	stub := &stubProvider{id: "stub"}
	require.NoError(t, reg.Register(stub))

	result, err := reg.Execute(context.Background(), "stub.echo", map[string]interface{}{
		"value": "hello",
	}, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "hello", result.Data["echo"])
	assert.Equal(t, "stub.echo", stub.lastTool)
}

func TestExecuteInvalidToolID(t *testing.T) {
	reg := NewRegistry()

	result, err := reg.Execute(context.Background(), "no-dot", nil, nil)
	require.Error(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Contains(t, *result.Error, "invalid tool ID")
}

func TestExecuteUnknownService(t *testing.T) {
	reg := NewRegistry()

	result, err := reg.Execute(context.Background(), "ghost.tool", nil, nil)
	require.Error(t, err)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Contains(t, *result.Error, "service not found")
}
