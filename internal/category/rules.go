package category

import "math"

// Derived column names.
const (
	ColumnHypertension = "htn_category"
	ColumnMortality    = "death_category"
	ColumnDiabetes     = "dm_category"
	ColumnAge          = "age_category"
	ColumnBMI          = "bmi_category"
	ColumnICUStay      = "icu_category"
)

var inf = math.Inf(1)

// flag bins exactly zero as the negative label; everything else, missing
// values included, is positive.
func flag(attr Attribute, source, column, negative, positive string) Rule {
	return Rule{
		Attribute: attr,
		Source:    source,
		Column:    column,
		Bins:      []Bin{{Label: negative, Min: 0, Max: 0}},
		Fallback:  positive,
	}
}

// Rules builds the rule table for the given BMI gap policy.
func Rules(policy BMIGapPolicy) RuleSet {
	if policy == "" {
		policy = GapClose
	}
	normalMax := 25.0
	if policy == GapLegacy {
		normalMax = 24.9
	}
	return RuleSet{
		Policy: policy,
		rules: []Rule{
			flag(Hypertension, "preop_htn", ColumnHypertension, "No", "Yes"),
			flag(Mortality, "death_inhosp", ColumnMortality, "Alive", "Dead"),
			flag(Diabetes, "preop_dm", ColumnDiabetes, "No", "Yes"),
			{
				Attribute: Age,
				Source:    "age",
				Column:    ColumnAge,
				Bins: []Bin{
					{Label: "Below 18", Min: -inf, Max: 18},
					{Label: "18 - 29", Min: 18, Max: 30},
					{Label: "30 - 45", Min: 30, Max: 46},
				},
				Fallback: "Above 45",
			},
			{
				Attribute: BMI,
				Source:    "bmi",
				Column:    ColumnBMI,
				Bins: []Bin{
					{Label: "Underweight", Min: -inf, Max: 18.5},
					{Label: "Normal", Min: 18.5, Max: normalMax},
					{Label: "Overweight", Min: 25, Max: 29.9},
				},
				Fallback: "Obese",
			},
			{
				Attribute: ICUStay,
				Source:    "icu_days",
				Column:    ColumnICUStay,
				Bins: []Bin{
					{Label: "Less than a day", Min: -inf, Max: 1},
					{Label: "Under a week", Min: 1, Max: 7},
					{Label: "Under a month", Min: 7, Max: 30},
				},
				Fallback: "More than one month",
			},
		},
	}
}
