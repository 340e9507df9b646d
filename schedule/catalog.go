/*
catalog.go - The production maintenance rule table

PURPOSE:
  The fixed catalog of maintenance items. Pure data: adding an item is a new
  table row, never new code. Order matters: suggestions and debug
  projections are emitted in catalog order.

ITEM NAMES:
  Names are the user-facing Chinese labels and double as the join key against
  ServiceEvent.ItemName (no foreign key enforcement; an unknown item in the
  history simply matches no rule).
*/
package schedule

func months(n int) *TimeInterval { return &TimeInterval{Amount: n, Unit: UnitMonth} }
func years(n int) *TimeInterval  { return &TimeInterval{Amount: n, Unit: UnitYear} }
func km(n int) *MileageInterval  { return &MileageInterval{Amount: n} }

var catalog = []MaintenanceRule{
	{Name: "冷却液", Time: years(3)},
	{Name: "机油", Time: months(6)},
	{Name: "制动液", Time: years(3)},
	{Name: "活性炭罐过滤器", Time: years(3)},
	{Name: "四轮对换", Time: years(2)},
	{Name: "空气滤芯", Time: years(1)},
	{Name: "传动皮带", Time: years(3)},
	{Name: "火花塞", Mileage: km(30000)},
	{Name: "节流阀", Mileage: km(20000)},
}

// Catalog returns the production rule table in definition order. Callers must
// treat the returned slice as read-only.
func Catalog() []MaintenanceRule {
	return catalog
}
