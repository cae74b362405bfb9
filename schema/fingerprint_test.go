package schema_test

import (
	"testing"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/stretchr/testify/assert"

	"github.com/arrowquery/goquery/schema"
)

func sampleSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int32},
		{Name: "b", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
}

func TestFingerprintStableAcrossPointerIdentity(t *testing.T) {
	s1 := sampleSchema()
	s2 := sampleSchema()
	assert.Equal(t, schema.Fingerprint(s1), schema.Fingerprint(s2))
}

func TestFingerprintDiffersOnFieldChange(t *testing.T) {
	s1 := sampleSchema()
	s2 := arrow.NewSchema([]arrow.Field{
		{Name: "a", Type: arrow.PrimitiveTypes.Int64},
		{Name: "b", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
	assert.NotEqual(t, schema.Fingerprint(s1), schema.Fingerprint(s2))
}

func TestProjectPreservesOriginalOrder(t *testing.T) {
	s := sampleSchema()
	projected := schema.Project(s, map[string]struct{}{"b": {}, "a": {}})
	fields := projected.Fields()
	assert.Equal(t, "a", fields[0].Name)
	assert.Equal(t, "b", fields[1].Name)
}

func TestIndexOfMissingColumn(t *testing.T) {
	assert.Equal(t, -1, schema.IndexOf(sampleSchema(), "nope"))
}
