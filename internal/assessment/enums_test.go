// internal/assessment/enums_test.go
package assessment

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMachineType_AllCanonical(t *testing.T) {
	for _, m := range MachineTypes() {
		got, err := ParseMachineType(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestMachineClass(t *testing.T) {
	special, semi, other := 0, 0, 0
	for _, m := range MachineTypes() {
		switch m.Class() {
		case MachineClassSpecial:
			special++
		case MachineClassSemiSpecial:
			semi++
		default:
			other++
		}
	}
	assert.Equal(t, 3, special)
	assert.Equal(t, 3, semi)
	assert.Equal(t, 5, other)
}

func TestMachineTypes_ReturnsCopy(t *testing.T) {
	list := MachineTypes()
	list[0] = "Laser"
	assert.Equal(t, MachineSNLSDNLS, MachineTypes()[0])
}

func TestParseEnums_Invalid(t *testing.T) {
	_, err := ParseDOP("medium")
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "dop", ve.Field)
	assert.Equal(t, CodeInvalidEnum, ve.Code)
	assert.True(t, errors.Is(err, ErrValidation))

	_, err = ParseQualityStatus("no defects at all")
	assert.Error(t, err)
	_, err = ParseEducation("")
	assert.Error(t, err)
	_, err = ParseAttitude("ok")
	assert.Error(t, err)
	_, err = ParseMachineType("")
	assert.Error(t, err)
}

func TestQualityStatus_Defects(t *testing.T) {
	statuses := []QualityStatus{QualityNoDefect, Quality1Defect, Quality2Defect, Quality3Defect, Quality4Defect, Quality5Defect}
	for i, q := range statuses {
		assert.Equal(t, i, q.Defects())
	}
}

func TestLevelRank_Order(t *testing.T) {
	order := []Level{LevelUnskill, LevelAverage, LevelMedium, LevelGood, LevelVeryGood, LevelExcellent, LevelMultiskill}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i].Rank(), order[i-1].Rank())
	}
	assert.Greater(t, GradeAPlusPlus.Rank(), GradeAPlus.Rank())
	assert.Greater(t, GradeB.Rank(), GradeUnskill.Rank())
}
