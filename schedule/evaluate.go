/*
evaluate.go - The due-status evaluator

ALGORITHM (per rule, independent, catalog order):
  Time branch:    basis = max(purchase date, matching service dates);
                  due date = basis + interval; due when days remaining <= 0.
  Mileage branch: basis = max(0, matching service mileages);
                  due mileage = basis + interval; due when km remaining <= 0.

  A rule emits at most ONE suggestion even when both branches are due; the
  mileage message wins. Both branches always emit a debug projection entry,
  with remaining values clamped to zero once elapsed.

The basis is derived from the history as a whole, the true maximum, not the
first row of whatever ordering the store happened to return.
*/
package schedule

import "fmt"

// Evaluate runs the catalog against one immutable snapshot of vehicle state.
// purchaseDate must be valid (callers short-circuit when no profile exists)
// and currentMileage non-negative. Identical inputs produce identical output.
func Evaluate(catalog []MaintenanceRule, purchaseDate Date, history []ServiceEvent, currentMileage int, today Date) (*Evaluation, error) {
	if currentMileage < 0 {
		return nil, ErrMissingMileage
	}

	eval := &Evaluation{
		Suggestions: []string{},
		Debug: DebugInfo{
			QueryDate:    today.String(),
			TimeBased:    []string{},
			MileageBased: []string{},
		},
	}

	for _, rule := range catalog {
		if rule.Time == nil && rule.Mileage == nil {
			return nil, &IntegrityError{Rule: rule.Name, Err: ErrRuleWithoutInterval}
		}

		assessment := DueAssessment{ItemName: rule.Name}

		if rule.Time != nil {
			ts, err := evaluateTime(rule, purchaseDate, history, today)
			if err != nil {
				return nil, err
			}
			assessment.Time = ts
			eval.Debug.TimeBased = append(eval.Debug.TimeBased, fmt.Sprintf(
				"%s: 下次保养日期 %s. 基于 %s. 还剩 %d 天.",
				rule.Name, ts.NextDueDate, ts.BasisLabel, clampZero(ts.DaysRemaining)))
		}

		if rule.Mileage != nil {
			ms, err := evaluateMileage(rule, history, currentMileage)
			if err != nil {
				return nil, err
			}
			assessment.Mileage = ms
			eval.Debug.MileageBased = append(eval.Debug.MileageBased, fmt.Sprintf(
				"%s: 下次保养里程 %dkm. 基于 %s. 还差 %d km.",
				rule.Name, ms.NextDueMileage, ms.BasisLabel, clampZero(ms.DistanceRemaining)))
		}

		// One suggestion per rule at most; mileage wins when both are due.
		switch {
		case assessment.Mileage != nil && assessment.Mileage.DistanceRemaining <= 0:
			assessment.IsDue = true
			eval.Suggestions = append(eval.Suggestions, dueMessage(rule.Name, assessment.Mileage.BasisLabel))
		case assessment.Time != nil && assessment.Time.DaysRemaining <= 0:
			assessment.IsDue = true
			eval.Suggestions = append(eval.Suggestions, dueMessage(rule.Name, assessment.Time.BasisLabel))
		}

		eval.Assessments = append(eval.Assessments, assessment)
	}

	return eval, nil
}

func evaluateTime(rule MaintenanceRule, purchaseDate Date, history []ServiceEvent, today Date) (*TimeStatus, error) {
	// Basis is the chronological maximum of the purchase date and every
	// matching service date, independent of history ordering.
	basis := purchaseDate
	for _, ev := range history {
		if ev.ItemName != rule.Name {
			continue
		}
		d, err := ParseDate(ev.Date)
		if err != nil {
			return nil, &IntegrityError{Rule: rule.Name, Value: ev.Date, Err: ErrMalformedDate}
		}
		if d.After(basis) {
			basis = d
		}
	}

	label := fmt.Sprintf("上次保养 (%s)", basis)
	if basis.Equal(purchaseDate) {
		label = fmt.Sprintf("购车日期 (%s)", purchaseDate)
	}

	dueDate := rule.Time.Advance(basis)
	return &TimeStatus{
		NextDueDate:   dueDate,
		DaysRemaining: today.DaysUntil(dueDate),
		BasisDate:     basis,
		BasisLabel:    label,
	}, nil
}

func evaluateMileage(rule MaintenanceRule, history []ServiceEvent, currentMileage int) (*MileageStatus, error) {
	// Basis is the highest matching odometer reading; 0 stands in for the
	// purchase itself. A malformed date is an integrity failure even here,
	// where only the mileage feeds the computation.
	basis := 0
	for _, ev := range history {
		if ev.ItemName != rule.Name {
			continue
		}
		if _, err := ParseDate(ev.Date); err != nil {
			return nil, &IntegrityError{Rule: rule.Name, Value: ev.Date, Err: ErrMalformedDate}
		}
		if ev.Mileage > basis {
			basis = ev.Mileage
		}
	}

	label := "购车 (0km)"
	if basis > 0 {
		label = fmt.Sprintf("上次保养 (%dkm)", basis)
	}

	dueMileage := basis + rule.Mileage.Amount
	return &MileageStatus{
		NextDueMileage:    dueMileage,
		DistanceRemaining: dueMileage - currentMileage,
		BasisMileage:      basis,
		BasisLabel:        label,
	}, nil
}

func dueMessage(name, basisLabel string) string {
	return fmt.Sprintf("%s: 已到期, 请立即保养. (基于: %s)", name, basisLabel)
}

func clampZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
