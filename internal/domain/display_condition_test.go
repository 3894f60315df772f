package domain_test

import (
	"testing"

	"github.com/straye-as/product-configurator/internal/domain"
	"github.com/stretchr/testify/assert"
)

func selection(pairs ...[2]int64) domain.SelectionLookup {
	set := make(map[[2]int64]bool, len(pairs))
	for _, p := range pairs {
		set[p] = true
	}
	return func(stepID, choiceID int64) bool {
		return set[[2]int64{stepID, choiceID}]
	}
}

func TestDisplayConditions_Visible(t *testing.T) {
	conditions := domain.DisplayConditions{
		{{Step: 1, Choice: 10}, {Step: 2, Choice: 20}},
		{{Step: 1, Choice: 11}},
	}

	assert.True(t, conditions.Visible(selection([2]int64{1, 10}, [2]int64{2, 20})), "first group holds")
	assert.True(t, conditions.Visible(selection([2]int64{1, 11})), "second group holds")
	assert.False(t, conditions.Visible(selection([2]int64{1, 10})), "first group only partially holds")
	assert.False(t, conditions.Visible(selection()))
}

func TestDisplayConditions_NoGroupsAlwaysVisible(t *testing.T) {
	assert.True(t, domain.DisplayConditions{}.Visible(selection()))
	assert.True(t, domain.DisplayConditions{{}, {}}.Visible(selection()), "empty groups are ignored")
}

func TestDisplayConditions_Compact(t *testing.T) {
	conditions := domain.DisplayConditions{{}, {{Step: 1, Choice: 2}}, nil}
	compact := conditions.Compact()

	assert.Equal(t, domain.DisplayConditions{{{Step: 1, Choice: 2}}}, compact)
	assert.NotNil(t, domain.DisplayConditions(nil).Compact())
}

func TestDisplayConditions_All(t *testing.T) {
	conditions := domain.DisplayConditions{
		{{Step: 1, Choice: 2}},
		{{Step: 3, Choice: 4}, {Step: 5, Choice: 6}},
	}
	assert.Len(t, conditions.All(), 3)
}

func TestLegacyDisplayConditions(t *testing.T) {
	t.Run("grouped", func(t *testing.T) {
		got := domain.LegacyDisplayConditions([]byte(`[[{"step":1,"choice":2}],[{"step":3,"choice":4}]]`))
		assert.Equal(t, domain.DisplayConditions{
			{{Step: 1, Choice: 2}},
			{{Step: 3, Choice: 4}},
		}, got)
	})

	t.Run("flat list is one group", func(t *testing.T) {
		got := domain.LegacyDisplayConditions([]byte(`[{"id_step":1,"id_choice":2},{"step":"3","product_choice":"4"}]`))
		assert.Equal(t, domain.DisplayConditions{
			{{Step: 1, Choice: 2}, {Step: 3, Choice: 4}},
		}, got)
	})

	t.Run("invalid entries are dropped", func(t *testing.T) {
		got := domain.LegacyDisplayConditions([]byte(`[[{"step":0,"choice":2}],[{"step":1}]]`))
		assert.Empty(t, got)
	})

	t.Run("unreadable data yields nothing", func(t *testing.T) {
		assert.Empty(t, domain.LegacyDisplayConditions([]byte(`{"step":1}`)))
		assert.Empty(t, domain.LegacyDisplayConditions(nil))
	})
}
