package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEquipmentNotes(t *testing.T) {
	tests := []struct {
		name  string
		notes string
		want  EquipmentCounts
	}{
		{
			name:  "two known keys",
			notes: "tireuse=1;co2=2",
			want:  EquipmentCounts{EquipmentTap: 1, EquipmentCO2: 2, EquipmentCounter: 0, EquipmentTent: 0},
		},
		{
			name:  "garbage yields zeros",
			notes: "garbage;;k=",
			want:  NewEquipmentCounts(),
		},
		{
			name:  "case-insensitive keys and padding",
			notes: " TIREUSE = 2 ; Tonnelle=1",
			want:  EquipmentCounts{EquipmentTap: 2, EquipmentCO2: 0, EquipmentCounter: 0, EquipmentTent: 1},
		},
		{
			name:  "non-integer and negative values ignored",
			notes: "co2=1.5;comptoir=-2;tonnelle=abc;tireuse=3",
			want:  EquipmentCounts{EquipmentTap: 3, EquipmentCO2: 0, EquipmentCounter: 0, EquipmentTent: 0},
		},
		{
			name:  "free text around pairs",
			notes: "livré le matin;comptoir=1;merci",
			want:  EquipmentCounts{EquipmentTap: 0, EquipmentCO2: 0, EquipmentCounter: 1, EquipmentTent: 0},
		},
		{
			name:  "repeated key keeps last value",
			notes: "co2=1;co2=4",
			want:  EquipmentCounts{EquipmentTap: 0, EquipmentCO2: 4, EquipmentCounter: 0, EquipmentTent: 0},
		},
		{
			name:  "empty notes",
			notes: "",
			want:  NewEquipmentCounts(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseEquipmentNotes(tt.notes))
		})
	}
}

func TestFormatEquipmentNotes(t *testing.T) {
	c := EquipmentCounts{EquipmentCO2: 2, EquipmentTap: 1}
	assert.Equal(t, "tireuse=1;co2=2", FormatEquipmentNotes(c))
	assert.Equal(t, c.Positive(), ParseEquipmentNotes(FormatEquipmentNotes(c)))
	assert.Equal(t, "", FormatEquipmentNotes(NewEquipmentCounts()))
}

func TestEquipmentCounts_Positive(t *testing.T) {
	c := EquipmentCounts{EquipmentTap: -1, EquipmentTent: 2, EquipmentKind("van"): 5}
	p := c.Positive()
	assert.Equal(t, int64(0), p[EquipmentTap])
	assert.Equal(t, int64(2), p[EquipmentTent])
	assert.Equal(t, int64(2), p.Total())
	assert.Len(t, p, len(AllEquipmentKinds))
}
