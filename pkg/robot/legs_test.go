package robot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLegName_SideAndRow(t *testing.T) {
	assert.Equal(t, Left, LeftBack.Side())
	assert.Equal(t, Back, LeftBack.Row())
	assert.Equal(t, Right, RightCenter.Side())
	assert.Equal(t, Center, RightCenter.Row())
	assert.Equal(t, Left, Right.Opposite())
}

func TestSplitJointName(t *testing.T) {
	leg, role, ok := SplitJointName("right_center_lower")
	require.True(t, ok)
	assert.Equal(t, RightCenter, leg)
	assert.Equal(t, Lower, role)

	_, _, ok = SplitJointName("camera_pan")
	assert.False(t, ok)
}

func TestSelector_Legs(t *testing.T) {
	tests := []struct {
		sel  Selector
		want []LegName
	}{
		{SelectAll, AllLegs()},
		{SelectLeft, []LegName{LeftFront, LeftCenter, LeftBack}},
		{SelectRight, []LegName{RightFront, RightCenter, RightBack}},
		{SelectFront, []LegName{LeftFront, RightFront}},
		{SelectCenter, []LegName{LeftCenter, RightCenter}},
		{SelectBack, []LegName{LeftBack, RightBack}},
		{SelectLeftRightLeft, []LegName{LeftFront, RightCenter, LeftBack}},
		{SelectRightLeftRight, []LegName{RightFront, LeftCenter, RightBack}},
		{LegSelector(RightBack), []LegName{RightBack}},
	}

	for _, tt := range tests {
		got, err := tt.sel.Legs()
		require.NoError(t, err, tt.sel)
		assert.Equal(t, tt.want, got, tt.sel)
	}

	_, err := Selector("middle").Legs()
	assert.Error(t, err)
}

func TestSelector_TripodsPartitionLegs(t *testing.T) {
	comp, ok := SelectLeftRightLeft.Complement()
	require.True(t, ok)
	assert.Equal(t, SelectRightLeftRight, comp)

	a, _ := SelectLeftRightLeft.Legs()
	b, _ := comp.Legs()
	assert.ElementsMatch(t, AllLegs(), append(a, b...))

	_, ok = SelectLeft.Complement()
	assert.False(t, ok)
}
