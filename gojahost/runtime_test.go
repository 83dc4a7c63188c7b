package gojahost

import (
	"testing"

	"github.com/dop251/goja"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scopes "github.com/goliatone/go-scopes"
)

func TestEvalUnderHandleScope(t *testing.T) {
	rt := New()
	iso := scopes.NewIsolate(rt)
	defer iso.Dispose()

	hs := iso.NewHandleScope()
	defer hs.Release()

	raw, err := rt.Eval("sum.js", "6 * 7")
	require.NoError(t, err)

	local := hs.NewLocal(raw)
	v, ok := local.Value().(goja.Value)
	require.True(t, ok)
	assert.Equal(t, int64(42), v.ToInteger())
}

func TestEscapeRealValue(t *testing.T) {
	rt := New()
	iso := scopes.NewIsolate(rt)
	defer iso.Dispose()

	hs := iso.NewHandleScope()
	defer hs.Release()

	var out scopes.Local
	esc := hs.NewEscapableScope()
	raw, err := rt.Eval("obj.js", `({answer: 42})`)
	require.NoError(t, err)
	out = esc.Escape(esc.NewLocal(raw))
	esc.Release()

	hs.NewLocal("touch") // collapse the escapable scope

	obj, ok := out.Value().(*goja.Object)
	require.True(t, ok)
	assert.Equal(t, int64(42), obj.Get("answer").ToInteger())
}

func TestTrapCatchesScriptException(t *testing.T) {
	rt := New()
	iso := scopes.NewIsolate(rt)
	defer iso.Dispose()

	hs := iso.NewHandleScope()
	defer hs.Release()

	tc := hs.NewTryCatch()
	_, err := rt.Eval("boom.js", `throw new Error("kaboom")`)
	require.Error(t, err)

	require.True(t, tc.HasCaught())
	msg, ok := tc.Message()
	require.True(t, ok)
	assert.Contains(t, msg, "kaboom")

	exc, ok := tc.Exception()
	require.True(t, ok)
	tc.Release()

	// The exception local belongs to hs's block and survives the trap.
	obj, isObj := exc.Value().(*goja.Object)
	require.True(t, isObj)
	assert.Contains(t, obj.Get("message").String(), "kaboom")
}

func TestTrapResetAndSubsequentEval(t *testing.T) {
	rt := New()
	iso := scopes.NewIsolate(rt)
	defer iso.Dispose()

	hs := iso.NewHandleScope()
	defer hs.Release()

	tc := hs.NewTryCatch()
	defer tc.Release()

	_, err := rt.Eval("bad.js", `throw "first"`)
	require.Error(t, err)
	require.True(t, tc.HasCaught())

	tc.Reset()
	assert.False(t, tc.HasCaught())

	raw, err := rt.Eval("good.js", `"ok"`)
	require.NoError(t, err)
	assert.Equal(t, "ok", raw.(goja.Value).String())
	assert.False(t, tc.HasCaught())
}

func TestContextGlobalsAppliedAndRestored(t *testing.T) {
	rt := New()
	iso := scopes.NewIsolate(rt)
	defer iso.Dispose()

	hs := iso.NewHandleScope()
	defer hs.Release()

	ctx := rt.NewContext("tenant", map[string]any{"tenant": "acme", "limit": 3})
	cs := hs.NewContextScope(ctx)

	raw, err := rt.Eval("ctx.js", `tenant + ":" + limit`)
	require.NoError(t, err)
	assert.Equal(t, "acme:3", raw.(goja.Value).String())

	inner := rt.NewContext("user", map[string]any{"limit": 9})
	ics := cs.NewContextScope(inner)
	raw, err = rt.Eval("ctx2.js", `tenant + ":" + limit`)
	require.NoError(t, err)
	assert.Equal(t, "acme:9", raw.(goja.Value).String())
	ics.Release()

	// Exiting the inner context restores the displaced global.
	raw, err = rt.Eval("ctx3.js", `limit`)
	require.NoError(t, err)
	assert.Equal(t, int64(3), raw.(goja.Value).ToInteger())

	cs.Release()
	raw, err = rt.Eval("ctx4.js", `typeof tenant`)
	require.NoError(t, err)
	assert.Equal(t, "undefined", raw.(goja.Value).String())
}

func TestThrowSurfacesWithoutTrap(t *testing.T) {
	rt := New()
	iso := scopes.NewIsolate(rt)
	defer iso.Dispose()

	hs := iso.NewHandleScope()
	defer hs.Release()

	hs.Throw(hs.NewLocal("scheduled"))
	_, err := rt.Eval("next.js", `1 + 1`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pending exception")

	// The pending slot is consumed; the engine works again.
	raw, err := rt.Eval("after.js", `1 + 1`)
	require.NoError(t, err)
	assert.Equal(t, int64(2), raw.(goja.Value).ToInteger())
}

func TestRegistryFunctions(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.Register("greet", func(args ...any) (any, error) {
		name := "world"
		if len(args) > 0 {
			name, _ = args[0].(string)
		}
		return "hello " + name, nil
	}))
	require.Error(t, registry.Register("greet", nil))
	require.Error(t, registry.Register("", func(args ...any) (any, error) { return nil, nil }))

	rt := New(WithRegistry(registry))
	iso := scopes.NewIsolate(rt)
	defer iso.Dispose()

	hs := iso.NewHandleScope()
	defer hs.Release()

	raw, err := rt.Eval("fn.js", `greet("scopes")`)
	require.NoError(t, err)
	assert.Equal(t, "hello scopes", raw.(goja.Value).String())

	raw, err = rt.Eval("dispatch.js", `call("greet")`)
	require.NoError(t, err)
	assert.Equal(t, "hello world", raw.(goja.Value).String())
}

type countingCache struct {
	inner ProgramCache
	hits  int
}

func (c *countingCache) Get(key string) (*goja.Program, bool) {
	program, ok := c.inner.Get(key)
	if ok {
		c.hits++
	}
	return program, ok
}

func (c *countingCache) Set(key string, program *goja.Program) {
	c.inner.Set(key, program)
}

func TestProgramCacheReuse(t *testing.T) {
	cache := &countingCache{inner: NewMemoryCache()}
	rt := New(WithProgramCache(cache))

	for i := 0; i < 3; i++ {
		_, err := rt.Eval("loop.js", `2 + 2`)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, cache.hits)
}
