package envelope

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"query-genie/pkg/sqlguard"
)

func TestEnvelopeJSONShapes(t *testing.T) {
	tests := []struct {
		name string
		env  Envelope
		want string
	}{
		{
			name: "select",
			env:  NewSelect([]string{"id", "name"}, [][]string{{"1", "Ann"}}),
			want: `{"type":"select","data":[["1","Ann"]],"columns":["id","name"],"row_count":1}`,
		},
		{
			name: "status",
			env:  NewStatus("SQL execution cancelled by user", 0),
			want: `{"type":"status","message":"SQL execution cancelled by user","affected_rows":0}`,
		},
		{
			name: "confirmation required",
			env:  NewConfirmationRequired("DROP TABLE logs", sqlguard.BuildPreview("DROP TABLE logs")),
			want: `{"type":"confirmation_required","sql":"DROP TABLE logs","table":{"columns":["Action","Table","Condition","Impact"],"data":[["UNKNOWN","-","-","Removes record(s) permanently"]]}}`,
		},
		{
			name: "error",
			env:  NewError("boom"),
			want: `{"type":"error","message":"boom"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.env)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))

			var decoded Envelope
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.env.Type(), decoded.Type())
		})
	}
}

func TestEnvelopeExactlyOneVariant(t *testing.T) {
	for _, env := range []Envelope{
		NewSelect(nil, nil),
		NewStatus("ok", 3),
		NewConfirmationRequired("DELETE FROM t", sqlguard.BuildPreview("DELETE FROM t")),
		NewError("x"),
	} {
		set := 0
		if env.Select != nil {
			set++
		}
		if env.Status != nil {
			set++
		}
		if env.Confirmation != nil {
			set++
		}
		if env.Error != nil {
			set++
		}
		assert.Equal(t, 1, set)
	}
}

func TestNewStatusClampsNegativeRows(t *testing.T) {
	assert.Equal(t, 0, NewStatus("x", -5).Status.AffectedRows)
}

func TestUnmarshalUnknownType(t *testing.T) {
	var env Envelope
	assert.Error(t, json.Unmarshal([]byte(`{"type":"weird"}`), &env))
}
