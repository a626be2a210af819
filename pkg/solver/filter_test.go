package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dwavesystems/dwave-cloud-client-go/pkg/apitypes"
)

func sampleDescriptor() *Descriptor {
	return NewDescriptor(apitypes.SolverDescriptor{
		ID: "Advantage_system4.1",
		Parameters: map[string]interface{}{
			"num_reads":      "Number of reads",
			"chain_strength": "Chain strength",
		},
		Properties: map[string]interface{}{
			"online":            true,
			"avg_load":          0.42,
			"num_active_qubits": float64(5000),
			"topology": map[string]interface{}{
				"type": "pegasus",
			},
			"tags": []interface{}{"qpu", "pegasus"},
		},
	})
}

func TestParseFilters_DefaultOperators(t *testing.T) {
	preds := ParseFilters(map[string]interface{}{
		"online":                  true,
		"parameters.num_reads":    true,
		"avg_load__lt":            0.5,
		"properties.topology.type": "pegasus",
	})

	byPath := map[string]Predicate{}
	for _, p := range preds {
		byPath[p.Path] = p
	}
	assert.Equal(t, OpEq, byPath["online"].Op)
	assert.Equal(t, OpAvailable, byPath["parameters.num_reads"].Op)
	assert.Equal(t, OpLt, byPath["avg_load"].Op)
	assert.Equal(t, OpEq, byPath["properties.topology.type"].Op)
}

func TestMatch_EqAndAvailable(t *testing.T) {
	d := sampleDescriptor()

	assert.True(t, Match(d, ParseFilters(map[string]interface{}{"online": true})))
	assert.False(t, Match(d, ParseFilters(map[string]interface{}{"online": false})))
	assert.True(t, Match(d, ParseFilters(map[string]interface{}{"parameters.num_reads": true})))
	assert.False(t, Match(d, ParseFilters(map[string]interface{}{"parameters.missing_param": true})))
}

func TestMatch_NumericComparisons(t *testing.T) {
	d := sampleDescriptor()

	assert.True(t, Match(d, ParseFilters(map[string]interface{}{"avg_load__lt": 0.5})))
	assert.False(t, Match(d, ParseFilters(map[string]interface{}{"avg_load__gt": 0.5})))
	assert.True(t, Match(d, ParseFilters(map[string]interface{}{"num_active_qubits__gte": 5000.0})))
}

func TestMatch_RegexFullMatch(t *testing.T) {
	d := sampleDescriptor()
	assert.True(t, Match(d, ParseFilters(map[string]interface{}{"id__regex": `Advantage_system\d\.\d`})))
	assert.False(t, Match(d, ParseFilters(map[string]interface{}{"id__regex": `Advantage`})))
}

func TestMatch_CoversAndWithin(t *testing.T) {
	d := sampleDescriptor()
	preds := ParseFilters(map[string]interface{}{"num_active_qubits__covers": []interface{}{1000.0, 4000.0}})
	assert.False(t, Match(d, preds)) // a point value can't cover a range

	rangeDesc := NewDescriptor(apitypes.SolverDescriptor{
		Properties: map[string]interface{}{
			"h_range": []interface{}{-2.0, 2.0},
		},
	})
	covers := ParseFilters(map[string]interface{}{"h_range__covers": []interface{}{-1.0, 1.0}})
	assert.True(t, Match(rangeDesc, covers))

	within := ParseFilters(map[string]interface{}{"h_range__within": []interface{}{-5.0, 5.0}})
	assert.True(t, Match(rangeDesc, within))
}

func TestMatch_ContainsInSubsetSuperset(t *testing.T) {
	d := sampleDescriptor()

	assert.True(t, Match(d, ParseFilters(map[string]interface{}{"tags__contains": "qpu"})))
	assert.False(t, Match(d, ParseFilters(map[string]interface{}{"tags__contains": "cpu"})))

	assert.True(t, Match(d, ParseFilters(map[string]interface{}{"id__in": []interface{}{"Advantage_system4.1", "other"}})))

	assert.True(t, Match(d, ParseFilters(map[string]interface{}{"tags__issubset": []interface{}{"qpu", "pegasus", "extra"}})))
	assert.True(t, Match(d, ParseFilters(map[string]interface{}{"tags__issuperset": []interface{}{"qpu"}})))
}

func TestMatch_MissingPathTreatedAsNone(t *testing.T) {
	d := sampleDescriptor()
	assert.False(t, Match(d, ParseFilters(map[string]interface{}{"properties.nonexistent": "value"})))
	assert.True(t, Match(d, ParseFilters(map[string]interface{}{"properties.nonexistent__available": false})))
}
