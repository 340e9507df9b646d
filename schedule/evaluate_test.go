/*
evaluate_test.go - Specification tests for the due-status evaluator

Each test states one behavior the evaluator guarantees:
  1. Basis selection - purchase date vs. latest matching service
  2. Due determination - signed remaining values, <= 0 means due
  3. Combination policy - one suggestion per rule, mileage wins
  4. Debug projections - always emitted, clamped at zero
  5. Failure semantics - malformed data fails fast
  6. Idempotence - identical inputs, identical output
*/
package schedule

import (
	"reflect"
	"testing"
	"time"
)

func rule(name string, t *TimeInterval, m *MileageInterval) MaintenanceRule {
	return MaintenanceRule{Name: name, Time: t, Mileage: m}
}

func event(item, date string, mileage int) ServiceEvent {
	return ServiceEvent{ItemName: item, Date: date, Mileage: mileage}
}

func TestTimeRule_NoHistory_DueFromPurchaseDate(t *testing.T) {
	// GIVEN: a 6-month oil rule, purchased 2020-01-01, never serviced
	catalog := []MaintenanceRule{rule("机油", months(6), nil)}
	purchase := NewDate(2020, time.January, 1)

	// WHEN: queried on 2020-08-01
	eval, err := Evaluate(catalog, purchase, nil, 0, NewDate(2020, time.August, 1))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// THEN: due date is purchase + 6 months and the item is overdue
	ts := eval.Assessments[0].Time
	if got, want := ts.NextDueDate.String(), "2020-07-01"; got != want {
		t.Errorf("next due date = %s, want %s", got, want)
	}
	if ts.DaysRemaining > 0 {
		t.Errorf("days remaining = %d, want <= 0", ts.DaysRemaining)
	}
	if !eval.Assessments[0].IsDue {
		t.Error("expected rule to be due")
	}
	if len(eval.Suggestions) != 1 {
		t.Fatalf("suggestions = %v, want exactly one", eval.Suggestions)
	}
	if want := "机油: 已到期, 请立即保养. (基于: 购车日期 (2020-01-01))"; eval.Suggestions[0] != want {
		t.Errorf("suggestion = %q, want %q", eval.Suggestions[0], want)
	}
}

func TestTimeRule_BasisIsChronologicalMax_NotInsertionOrder(t *testing.T) {
	// GIVEN: history deliberately out of order: the newest service is listed last
	catalog := []MaintenanceRule{rule("机油", months(6), nil)}
	purchase := NewDate(2020, time.January, 1)
	history := []ServiceEvent{
		event("机油", "2020-03-01", 5000),
		event("机油", "2021-02-01", 12000),
		event("冷却液", "2021-06-01", 15000), // different item, ignored
	}

	// WHEN: queried shortly after the latest oil change
	eval, err := Evaluate(catalog, purchase, history, 12500, NewDate(2021, time.March, 1))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// THEN: the basis is the true maximum date, not the first row
	ts := eval.Assessments[0].Time
	if got, want := ts.BasisDate.String(), "2021-02-01"; got != want {
		t.Errorf("basis date = %s, want %s", got, want)
	}
	if got, want := ts.NextDueDate.String(), "2021-08-01"; got != want {
		t.Errorf("next due date = %s, want %s", got, want)
	}
	if ts.BasisLabel != "上次保养 (2021-02-01)" {
		t.Errorf("basis label = %q", ts.BasisLabel)
	}
	if eval.Assessments[0].IsDue {
		t.Error("rule should not be due yet")
	}
}

func TestTimeRule_LaterEventOnlyMovesBasisForward(t *testing.T) {
	// GIVEN: a basis computed from a subset of the history
	catalog := []MaintenanceRule{rule("空气滤芯", years(1), nil)}
	purchase := NewDate(2020, time.January, 1)
	subset := []ServiceEvent{event("空气滤芯", "2021-05-01", 20000)}
	today := NewDate(2021, time.June, 1)

	before, err := Evaluate(catalog, purchase, subset, 0, today)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// WHEN: an older event is added to the history
	full := append(subset, event("空气滤芯", "2020-06-01", 8000))
	after, err := Evaluate(catalog, purchase, full, 0, today)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// THEN: the basis never moves backward
	if after.Assessments[0].Time.BasisDate.Before(before.Assessments[0].Time.BasisDate) {
		t.Errorf("basis moved backward: %s -> %s",
			before.Assessments[0].Time.BasisDate, after.Assessments[0].Time.BasisDate)
	}
}

func TestMileageRule_BasisIsMaxMileage(t *testing.T) {
	// GIVEN: one service at 10000 km, a 7500 km interval
	catalog := []MaintenanceRule{rule("火花塞", nil, km(7500))}
	purchase := NewDate(2020, time.January, 1)
	history := []ServiceEvent{event("火花塞", "2021-01-01", 10000)}

	// WHEN: the odometer reads 16000
	eval, err := Evaluate(catalog, purchase, history, 16000, NewDate(2021, time.June, 1))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// THEN: basis 10000, due 17500, 1500 km to go, not due
	ms := eval.Assessments[0].Mileage
	if ms.BasisMileage != 10000 || ms.NextDueMileage != 17500 || ms.DistanceRemaining != 1500 {
		t.Errorf("got basis=%d due=%d remaining=%d", ms.BasisMileage, ms.NextDueMileage, ms.DistanceRemaining)
	}
	if eval.Assessments[0].IsDue {
		t.Error("rule should not be due")
	}
	if ms.BasisLabel != "上次保养 (10000km)" {
		t.Errorf("basis label = %q", ms.BasisLabel)
	}
}

func TestMileageRule_MonotonicBasis(t *testing.T) {
	// GIVEN: a growing history for the same item
	catalog := []MaintenanceRule{rule("节流阀", nil, km(20000))}
	purchase := NewDate(2020, time.January, 1)
	today := NewDate(2022, time.January, 1)

	var history []ServiceEvent
	prevBasis := -1
	for _, mileage := range []int{5000, 30000, 12000, 30000} {
		// WHEN: events are appended in arbitrary mileage order
		history = append(history, event("节流阀", "2021-01-01", mileage))
		eval, err := Evaluate(catalog, purchase, history, 31000, today)
		if err != nil {
			t.Fatalf("Evaluate failed: %v", err)
		}

		// THEN: the basis never decreases
		basis := eval.Assessments[0].Mileage.BasisMileage
		if basis < prevBasis {
			t.Fatalf("basis decreased: %d -> %d", prevBasis, basis)
		}
		prevBasis = basis
	}
}

func TestMileageRule_NoHistory_PurchaseBasis(t *testing.T) {
	// GIVEN: a mileage rule with no matching history
	catalog := []MaintenanceRule{rule("火花塞", nil, km(30000))}
	eval, err := Evaluate(catalog, NewDate(2020, time.January, 1), nil, 31000, NewDate(2022, time.January, 1))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// THEN: basis is 0 km, labeled as purchase, and the rule is due
	ms := eval.Assessments[0].Mileage
	if ms.BasisMileage != 0 || ms.BasisLabel != "购车 (0km)" {
		t.Errorf("basis = %d label = %q", ms.BasisMileage, ms.BasisLabel)
	}
	if !eval.Assessments[0].IsDue {
		t.Error("expected rule to be due at 31000 km")
	}
	if want := "火花塞: 已到期, 请立即保养. (基于: 购车 (0km))"; eval.Suggestions[0] != want {
		t.Errorf("suggestion = %q", eval.Suggestions[0])
	}
}

func TestBothBranchesDue_MileageMessageWins(t *testing.T) {
	// GIVEN: a rule with both intervals, both long past due
	catalog := []MaintenanceRule{rule("机油", months(6), km(7500))}
	purchase := NewDate(2019, time.January, 1)

	// WHEN: queried years later with a high odometer reading
	eval, err := Evaluate(catalog, purchase, nil, 50000, NewDate(2022, time.January, 1))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// THEN: exactly one suggestion, and it is the mileage-based one
	if len(eval.Suggestions) != 1 {
		t.Fatalf("suggestions = %v, want exactly one", eval.Suggestions)
	}
	if want := "机油: 已到期, 请立即保养. (基于: 购车 (0km))"; eval.Suggestions[0] != want {
		t.Errorf("suggestion = %q, want mileage message %q", eval.Suggestions[0], want)
	}
	// Both branches still appear in the debug projections
	if len(eval.Debug.TimeBased) != 1 || len(eval.Debug.MileageBased) != 1 {
		t.Errorf("debug entries time=%d mileage=%d, want 1 and 1",
			len(eval.Debug.TimeBased), len(eval.Debug.MileageBased))
	}
}

func TestDebugProjections_ClampedToZeroWhenOverdue(t *testing.T) {
	// GIVEN: both branches far past due
	catalog := []MaintenanceRule{
		rule("机油", months(6), nil),
		rule("火花塞", nil, km(30000)),
	}
	eval, err := Evaluate(catalog, NewDate(2018, time.January, 1), nil, 100000, NewDate(2022, time.January, 1))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// THEN: debug text reports zero remaining, never a negative number
	if want := "机油: 下次保养日期 2018-07-01. 基于 购车日期 (2018-01-01). 还剩 0 天."; eval.Debug.TimeBased[0] != want {
		t.Errorf("time debug = %q, want %q", eval.Debug.TimeBased[0], want)
	}
	if want := "火花塞: 下次保养里程 30000km. 基于 购车 (0km). 还差 0 km."; eval.Debug.MileageBased[0] != want {
		t.Errorf("mileage debug = %q, want %q", eval.Debug.MileageBased[0], want)
	}
	// The signed values remain negative for the due determination itself
	if eval.Assessments[0].Time.DaysRemaining >= 0 {
		t.Error("signed days remaining should be negative")
	}
	if eval.Assessments[1].Mileage.DistanceRemaining >= 0 {
		t.Error("signed distance remaining should be negative")
	}
}

func TestDebugProjections_EmittedForEveryRule(t *testing.T) {
	// GIVEN: the full production catalog, nothing due
	eval, err := Evaluate(Catalog(), Today(), nil, 0, Today())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// THEN: every time rule and every mileage rule has a projection entry
	if len(eval.Debug.TimeBased) != 7 {
		t.Errorf("time projections = %d, want 7", len(eval.Debug.TimeBased))
	}
	if len(eval.Debug.MileageBased) != 2 {
		t.Errorf("mileage projections = %d, want 2", len(eval.Debug.MileageBased))
	}
	if len(eval.Suggestions) != 0 {
		t.Errorf("suggestions = %v, want none on day of purchase", eval.Suggestions)
	}
}

func TestMalformedHistoryDate_FailsFast(t *testing.T) {
	// GIVEN: a history row with a garbage date
	catalog := []MaintenanceRule{rule("机油", months(6), nil)}
	history := []ServiceEvent{event("机油", "not-a-date", 5000)}

	// WHEN/THEN: evaluation fails with an integrity error, nothing is skipped
	_, err := Evaluate(catalog, NewDate(2020, time.January, 1), history, 6000, Today())
	if err == nil {
		t.Fatal("expected an error for malformed date")
	}
	if !IsIntegrityError(err) {
		t.Errorf("expected integrity error, got %v", err)
	}
}

func TestMalformedHistoryDate_MileageRule_FailsFast(t *testing.T) {
	// GIVEN: a mileage-only rule whose matching history row has a garbage
	// date; the mileage computation itself would not need the date
	catalog := []MaintenanceRule{rule("火花塞", nil, km(30000))}
	history := []ServiceEvent{event("火花塞", "not-a-date", 10000)}

	// WHEN/THEN: evaluation still fails with an integrity error
	_, err := Evaluate(catalog, NewDate(2020, time.January, 1), history, 12000, Today())
	if err == nil {
		t.Fatal("expected an error for malformed date on mileage rule")
	}
	if !IsIntegrityError(err) {
		t.Errorf("expected integrity error, got %v", err)
	}
}

func TestRuleWithoutAnyInterval_FailsFast(t *testing.T) {
	catalog := []MaintenanceRule{{Name: "broken"}}
	_, err := Evaluate(catalog, NewDate(2020, time.January, 1), nil, 0, Today())
	if err == nil || !IsIntegrityError(err) {
		t.Fatalf("expected integrity error, got %v", err)
	}
}

func TestNegativeMileage_Rejected(t *testing.T) {
	_, err := Evaluate(Catalog(), NewDate(2020, time.January, 1), nil, -1, Today())
	if err == nil || !IsClientError(err) {
		t.Fatalf("expected client error, got %v", err)
	}
}

func TestEvaluate_Idempotent(t *testing.T) {
	// GIVEN: a non-trivial snapshot
	purchase := NewDate(2020, time.February, 29)
	history := []ServiceEvent{
		event("机油", "2021-03-15", 14000),
		event("火花塞", "2021-03-15", 14000),
	}
	today := NewDate(2022, time.January, 10)

	// WHEN: evaluated twice with identical inputs
	a, err := Evaluate(Catalog(), purchase, history, 22000, today)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	b, err := Evaluate(Catalog(), purchase, history, 22000, today)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// THEN: the outputs are identical
	if !reflect.DeepEqual(a, b) {
		t.Error("repeated evaluation produced different output")
	}
}

func TestOutputOrder_FollowsCatalogOrder(t *testing.T) {
	// GIVEN: everything overdue
	eval, err := Evaluate(Catalog(), NewDate(2015, time.January, 1), nil, 99999, NewDate(2022, time.January, 1))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// THEN: suggestions appear in catalog definition order
	want := []string{"冷却液", "机油", "制动液", "活性炭罐过滤器", "四轮对换", "空气滤芯", "传动皮带", "火花塞", "节流阀"}
	if len(eval.Suggestions) != len(want) {
		t.Fatalf("suggestions = %d, want %d", len(eval.Suggestions), len(want))
	}
	for i, name := range want {
		if eval.Assessments[i].ItemName != name {
			t.Errorf("assessment[%d] = %s, want %s", i, eval.Assessments[i].ItemName, name)
		}
	}
}

func TestServiceOnPurchaseDay_LabeledAsPurchaseDate(t *testing.T) {
	// GIVEN: a service event dated exactly on the purchase date
	catalog := []MaintenanceRule{rule("机油", months(6), nil)}
	purchase := NewDate(2020, time.January, 1)
	history := []ServiceEvent{event("机油", "2020-01-01", 0)}

	eval, err := Evaluate(catalog, purchase, history, 100, NewDate(2020, time.February, 1))
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	// THEN: the basis label names the purchase date, not a service
	if want := "购车日期 (2020-01-01)"; eval.Assessments[0].Time.BasisLabel != want {
		t.Errorf("basis label = %q, want %q", eval.Assessments[0].Time.BasisLabel, want)
	}
}
