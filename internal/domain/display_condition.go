package domain

import "encoding/json"

// DisplayCondition holds when the shopper selected choice in step
type DisplayCondition struct {
	Step   int64 `json:"step"`
	Choice int64 `json:"choice"`
}

// DisplayConditionGroup is satisfied when all of its conditions hold
type DisplayConditionGroup []DisplayCondition

// DisplayConditions is an OR of AND-groups. No groups means the choice is always shown.
type DisplayConditions []DisplayConditionGroup

// SelectionLookup reports whether a choice of a step is currently selected
type SelectionLookup func(stepID, choiceID int64) bool

// Holds reports whether every condition of the group is satisfied
func (g DisplayConditionGroup) Holds(selected SelectionLookup) bool {
	for _, c := range g {
		if !selected(c.Step, c.Choice) {
			return false
		}
	}
	return true
}

// Visible evaluates the groups against the current selection
func (d DisplayConditions) Visible(selected SelectionLookup) bool {
	groups := d.Compact()
	if len(groups) == 0 {
		return true
	}
	for _, g := range groups {
		if g.Holds(selected) {
			return true
		}
	}
	return false
}

// Compact drops empty groups; it never returns nil
func (d DisplayConditions) Compact() DisplayConditions {
	out := make(DisplayConditions, 0, len(d))
	for _, g := range d {
		if len(g) > 0 {
			out = append(out, append(DisplayConditionGroup(nil), g...))
		}
	}
	return out
}

// All flattens the groups into a single list of conditions
func (d DisplayConditions) All() []DisplayCondition {
	var out []DisplayCondition
	for _, g := range d {
		out = append(out, g...)
	}
	return out
}

// LegacyDisplayConditions reads stored conditions. Older rows hold a flat list of
// conditions, which is read as a single AND-group. Unreadable data yields no conditions.
func LegacyDisplayConditions(stored []byte) DisplayConditions {
	if len(stored) == 0 {
		return DisplayConditions{}
	}
	var raw []interface{}
	if err := json.Unmarshal(stored, &raw); err != nil {
		return DisplayConditions{}
	}

	out := DisplayConditions{}
	flat := DisplayConditionGroup{}
	for _, entry := range raw {
		switch v := entry.(type) {
		case []interface{}:
			group := DisplayConditionGroup{}
			for _, item := range v {
				if c, ok := legacyCondition(item); ok {
					group = append(group, c)
				}
			}
			if len(group) > 0 {
				out = append(out, group)
			}
		default:
			if c, ok := legacyCondition(v); ok {
				flat = append(flat, c)
			}
		}
	}
	if len(flat) > 0 {
		out = append(out, flat)
	}
	return out
}

func legacyCondition(item interface{}) (DisplayCondition, bool) {
	m, ok := item.(map[string]interface{})
	if !ok {
		return DisplayCondition{}, false
	}
	step, okStep := asFloat(firstPresent(m, "step", "id_step"))
	choice, okChoice := asFloat(firstPresent(m, "choice", "id_choice", "product_choice"))
	if !okStep || !okChoice || step <= 0 || choice <= 0 {
		return DisplayCondition{}, false
	}
	return DisplayCondition{Step: int64(step), Choice: int64(choice)}, true
}
