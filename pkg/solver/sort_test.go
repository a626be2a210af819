package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apitypes"
)

func descWithLoad(id string, load interface{}) *Descriptor {
	props := map[string]interface{}{}
	if load != nil {
		props["avg_load"] = load
	}
	return NewDescriptor(apitypes.SolverDescriptor{ID: id, Properties: props})
}

func TestSort_AscendingByPath(t *testing.T) {
	descs := []*Descriptor{
		descWithLoad("c", 0.9),
		descWithLoad("a", 0.1),
		descWithLoad("b", 0.5),
	}

	sorted := Sort(descs, "avg_load")
	ids := []string{sorted[0].ID(), sorted[1].ID(), sorted[2].ID()}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}

func TestSort_DescendingPrefix(t *testing.T) {
	descs := []*Descriptor{
		descWithLoad("a", 0.1),
		descWithLoad("b", 0.5),
		descWithLoad("c", 0.9),
	}

	sorted := Sort(descs, "-avg_load")
	ids := []string{sorted[0].ID(), sorted[1].ID(), sorted[2].ID()}
	assert.Equal(t, []string{"c", "b", "a"}, ids)
}

func TestSort_NoneKeysAlwaysLast(t *testing.T) {
	descs := []*Descriptor{
		descWithLoad("has-load", 0.5),
		descWithLoad("no-load", nil),
	}

	ascending := Sort(descs, "avg_load")
	assert.Equal(t, "has-load", ascending[0].ID())
	assert.Equal(t, "no-load", ascending[1].ID())

	descending := Sort(descs, "-avg_load")
	assert.Equal(t, "has-load", descending[0].ID())
	assert.Equal(t, "no-load", descending[1].ID())
}

func TestSort_StableOnTies(t *testing.T) {
	descs := []*Descriptor{
		descWithLoad("first", 0.5),
		descWithLoad("second", 0.5),
		descWithLoad("third", 0.5),
	}

	sorted := Sort(descs, "avg_load")
	ids := []string{sorted[0].ID(), sorted[1].ID(), sorted[2].ID()}
	assert.Equal(t, []string{"first", "second", "third"}, ids)
}

func TestSort_NilOrderByIsNoOp(t *testing.T) {
	descs := []*Descriptor{descWithLoad("a", 0.1), descWithLoad("b", 0.2)}
	sorted := Sort(descs, nil)
	assert.Same(t, descs[0], sorted[0])
}

func TestSort_KeyFunc(t *testing.T) {
	descs := []*Descriptor{
		descWithLoad("a", 3.0),
		descWithLoad("b", 1.0),
	}
	byNegatedLoad := KeyFunc(func(d *Descriptor) (interface{}, bool) {
		return -d.AvgLoad(), true
	})
	sorted := Sort(descs, byNegatedLoad)
	assert.Equal(t, "a", sorted[0].ID())
}
