package flowconfig

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rgalloway/flowkit/pkg/flowkit"
)

func newValidDocument() *Document {
	return &Document{
		Version: "1.0.0",
		Name:    "roundtrip",
		Activities: []Activity{
			{Name: "step-one", Kind: "once", Uses: "increment"},
			{Name: "loop", Kind: "while", Predicate: "below-three", Uses: "increment"},
		},
	}
}

func registryWithIncrement() *ActivityRegistry {
	reg := NewActivityRegistry()
	reg.Register("increment", flowkit.ActivityFunc(func(_ context.Context, _ any, v any) (any, error) {
		return v.(int) + 1, nil
	}))
	reg.Register("below-three", flowkit.PredicateFunc(func(_ context.Context, _ any, v any) (bool, error) {
		return v.(int) < 3, nil
	}))
	return reg
}

func TestResolveBuildsRunnablePipeline(t *testing.T) {
	t.Parallel()

	require.NoError(t, validateDocument(newValidDocument()))

	reg := registryWithIncrement()
	builder, err := Resolve(newValidDocument(), reg)
	require.NoError(t, err)

	p, err := builder.Build()
	require.NoError(t, err)

	result, err := flowkit.NewRunner().Run(context.Background(), p, 0)
	require.NoError(t, err)
	require.Equal(t, 3, result)
}

func TestResolveFailsOnUnregisteredUses(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Version:    "1.0.0",
		Name:       "missing-ref",
		Activities: []Activity{{Name: "a", Kind: "once", Uses: "nope"}},
	}

	_, err := Resolve(doc, NewActivityRegistry())
	require.Error(t, err)
}

func TestValidateDocumentRejectsMissingPredicate(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Version:    "1.0.0",
		Name:       "bad",
		Activities: []Activity{{Name: "a", Kind: "while", Uses: "increment"}},
	}
	require.Error(t, validateDocument(doc))
}

func TestValidateDocumentRejectsSplitMissingRejoiner(t *testing.T) {
	t.Parallel()

	doc := &Document{
		Version:    "1.0.0",
		Name:       "bad-split",
		Activities: []Activity{{Name: "a", Kind: "split", Splitter: "split-fn", Uses: "increment"}},
	}
	require.Error(t, validateDocument(doc))
}

func TestResolveNestedPipelineDocument(t *testing.T) {
	t.Parallel()

	inner := &Document{
		Version:    "1.0.0",
		Name:       "inner",
		Activities: []Activity{{Name: "bump", Kind: "once", Uses: "increment"}},
	}
	outer := &Document{
		Version: "1.0.0",
		Name:    "outer",
		Activities: []Activity{
			{Name: "wrapper", Kind: "if", Predicate: "below-three", Pipeline: inner},
		},
	}
	require.NoError(t, validateDocument(outer))

	builder, err := Resolve(outer, registryWithIncrement())
	require.NoError(t, err)
	p, err := builder.Build()
	require.NoError(t, err)

	result, err := flowkit.NewRunner().Run(context.Background(), p, 0)
	require.NoError(t, err)
	require.Equal(t, 1, result)
}
