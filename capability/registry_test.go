package capability

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addCapability() Capability {
	return NewFunc(
		"add",
		"Add two numbers",
		[]Parameter{
			{Name: "a", Kind: KindNumber, Required: true},
			{Name: "b", Kind: KindNumber, Required: true},
		},
		func(_ context.Context, params map[string]any) (any, error) {
			return map[string]any{"result": params["a"].(float64) + params["b"].(float64)}, nil
		},
	)
}

func TestRegistry_RegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(addCapability()))

	// Same name, different descriptor content: still a duplicate.
	other := NewFunc("add", "Something else entirely", nil, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, nil
	})
	err := r.Register(other)
	assert.ErrorIs(t, err, ErrDuplicateCapability)
	assert.Len(t, r.Names(), 1)
}

func TestRegistry_InvokeUnknownNeverRaises(t *testing.T) {
	r := NewRegistry()
	result := r.Invoke(context.Background(), "unknown", map[string]any{})
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "unknown")
	assert.Equal(t, CodeNotFound, result.Metadata["error_code"])
}

func TestRegistry_InvokeMissingParameters(t *testing.T) {
	r := NewRegistry()
	executed := false
	cap := NewFunc(
		"needs_args",
		"Needs a and b",
		[]Parameter{
			{Name: "a", Kind: KindNumber, Required: true},
			{Name: "b", Kind: KindString, Required: true},
			{Name: "opt", Kind: KindString, Required: false},
		},
		func(_ context.Context, _ map[string]any) (any, error) {
			executed = true
			return nil, nil
		},
	)
	require.NoError(t, r.Register(cap))

	result := r.Invoke(context.Background(), "needs_args", map[string]any{})
	assert.False(t, result.Success)
	// Both missing required fields are listed; the body never ran.
	assert.Contains(t, result.Error, "a")
	assert.Contains(t, result.Error, "b")
	assert.NotContains(t, result.Error, "opt")
	assert.Equal(t, CodeMissingParameters, result.Metadata["error_code"])
	assert.False(t, executed)
}

func TestRegistry_ValidatorsFailFastInDeclarationOrder(t *testing.T) {
	r := NewRegistry()
	var ran []string
	mkValidator := func(name string, fail bool) Validator {
		return func(any) error {
			ran = append(ran, name)
			if fail {
				return fmt.Errorf("%s rejected", name)
			}
			return nil
		}
	}
	cap := NewFunc(
		"validated",
		"Validator ordering",
		[]Parameter{
			{Name: "first", Kind: KindString, Required: true, Validator: mkValidator("first", false)},
			{Name: "second", Kind: KindString, Required: true, Validator: mkValidator("second", true)},
			{Name: "third", Kind: KindString, Required: true, Validator: mkValidator("third", true)},
		},
		func(_ context.Context, _ map[string]any) (any, error) { return "ok", nil },
	)
	require.NoError(t, r.Register(cap))

	result := r.Invoke(context.Background(), "validated", map[string]any{
		"first": "x", "second": "y", "third": "z",
	})
	assert.False(t, result.Success)
	assert.Equal(t, CodeInvalidParameter, result.Metadata["error_code"])
	assert.Contains(t, result.Error, "second rejected")
	// Fail-fast: the third validator never ran.
	assert.Equal(t, []string{"first", "second"}, ran)
}

func TestRegistry_KindMismatch(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(addCapability()))

	result := r.Invoke(context.Background(), "add", map[string]any{"a": "two", "b": 3.0})
	assert.False(t, result.Success)
	assert.Equal(t, CodeInvalidParameter, result.Metadata["error_code"])
	assert.Contains(t, result.Error, "a")
}

func TestRegistry_InvokeAddScenario(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(addCapability()))

	result := r.Invoke(context.Background(), "add", map[string]any{"a": 2.0, "b": 3.0})
	require.True(t, result.Success, "unexpected error: %s", result.Error)
	data, ok := result.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 5.0, data["result"])
}

func TestRegistry_InvokeContainsExecutionError(t *testing.T) {
	r := NewRegistry()
	failing := NewFunc("failing", "Always errors", nil, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("backend unavailable")
	})
	require.NoError(t, r.Register(failing))

	result := r.Invoke(context.Background(), "failing", nil)
	assert.False(t, result.Success)
	assert.Equal(t, "backend unavailable", result.Error)
	assert.Equal(t, CodeExecutionError, result.Metadata["error_code"])
}

func TestRegistry_InvokeContainsPanic(t *testing.T) {
	r := NewRegistry()
	panicking := NewFunc("panicking", "Always panics", nil, func(_ context.Context, _ map[string]any) (any, error) {
		panic("boom")
	})
	require.NoError(t, r.Register(panicking))

	result := r.Invoke(context.Background(), "panicking", nil)
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "boom")
	assert.Equal(t, CodeExecutionError, result.Metadata["error_code"])
}

func TestRegistry_DescribeSubsetPreservesOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"alpha", "beta", "gamma"} {
		cap := NewFunc(name, name+" capability", nil, func(_ context.Context, _ map[string]any) (any, error) {
			return nil, nil
		})
		require.NoError(t, r.Register(cap))
	}

	all := r.ListDescriptors()
	require.Len(t, all, 3)
	assert.Equal(t, "alpha", all[0].Name)
	assert.Equal(t, "gamma", all[2].Name)

	subset := r.Describe([]string{"gamma", "alpha", "missing"})
	require.Len(t, subset, 2)
	assert.Equal(t, "alpha", subset[0].Name)
	assert.Equal(t, "gamma", subset[1].Name)
}

func TestFormatManifest(t *testing.T) {
	descs := []Descriptor{
		{
			Name:        "fetch_price",
			Description: "Fetch a price",
			Parameters: []Parameter{
				{Name: "symbol", Kind: KindString, Required: true},
				{Name: "currency", Kind: KindString, Required: false},
			},
		},
	}
	manifest := FormatManifest(descs)
	assert.Contains(t, manifest, "fetch_price: Fetch a price")
	assert.Contains(t, manifest, "required: symbol (string)")
	assert.Contains(t, manifest, "optional: currency (string)")

	assert.Equal(t, "(no capabilities available)", FormatManifest(nil))
}
