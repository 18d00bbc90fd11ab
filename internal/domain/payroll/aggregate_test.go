package payroll

import (
	"reflect"
	"testing"
	"time"

	"timeclock/internal/domain/payrate"
)

func TestAggregateMixedWeek(t *testing.T) {
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	saturday := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)

	shifts := []ReportShift{
		{ShiftID: "s1", EmployeeID: "e1", EmployeeName: "Ana Ortiz", ShiftDate: monday, TotalHours: 8.5, TotalPaidHours: 8},
		{ShiftID: "s2", EmployeeID: "e1", EmployeeName: "Ana Ortiz", ShiftDate: saturday, TotalHours: 5, TotalPaidHours: 5},
	}
	rates := map[string]payrate.Rate{
		"e1": {WeekdayRate: 25, SaturdayRate: 30, SundayRate: 35, PublicHolidayRate: 50},
	}

	items := Aggregate(shifts, rates, nil)
	if len(items) != 1 {
		t.Fatalf("expected one line item, got %d", len(items))
	}
	item := items[0]
	if item.TotalPay != 8*25+5*30 {
		t.Fatalf("expected total pay 350, got %v", item.TotalPay)
	}
	if item.EntriesCount != 2 {
		t.Fatalf("expected 2 entries, got %d", item.EntriesCount)
	}
	if item.WeekdayHours != 8 || item.SaturdayHours != 5 {
		t.Fatalf("expected 8 weekday and 5 saturday hours, got %v/%v", item.WeekdayHours, item.SaturdayHours)
	}
	if item.TotalHours != 13.5 || item.TotalPaidHours != 13 {
		t.Fatalf("expected 13.5 gross and 13 paid hours, got %v/%v", item.TotalHours, item.TotalPaidHours)
	}
}

func TestAggregateHolidayOnSaturday(t *testing.T) {
	saturday := time.Date(2025, 6, 7, 0, 0, 0, 0, time.UTC)

	shifts := []ReportShift{
		{ShiftID: "s1", EmployeeID: "e1", EmployeeName: "Ana Ortiz", ShiftDate: saturday, TotalHours: 6, TotalPaidHours: 6},
	}
	rates := map[string]payrate.Rate{
		"e1": {WeekdayRate: 25, SaturdayRate: 30, PublicHolidayRate: 50},
	}
	holidays := map[string]bool{"2025-06-07": true}

	item := Aggregate(shifts, rates, holidays)[0]
	if item.PublicHolidayHours != 6 {
		t.Fatalf("expected 6 public holiday hours, got %v", item.PublicHolidayHours)
	}
	if item.SaturdayHours != 0 {
		t.Fatalf("holiday hours double-counted as saturday: %v", item.SaturdayHours)
	}
	if item.TotalPay != 6*50 {
		t.Fatalf("expected holiday rate applied (300), got %v", item.TotalPay)
	}
}

func TestAggregateFirstSeenOrder(t *testing.T) {
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	shifts := []ReportShift{
		{ShiftID: "s1", EmployeeID: "e2", EmployeeName: "Ben Chu", ShiftDate: monday, TotalPaidHours: 4},
		{ShiftID: "s2", EmployeeID: "e1", EmployeeName: "Ana Ortiz", ShiftDate: monday, TotalPaidHours: 8},
		{ShiftID: "s3", EmployeeID: "e2", EmployeeName: "Ben Chu", ShiftDate: monday, TotalPaidHours: 4},
	}
	rates := map[string]payrate.Rate{"e1": {WeekdayRate: 25}, "e2": {WeekdayRate: 25}}

	items := Aggregate(shifts, rates, nil)
	if len(items) != 2 || items[0].EmployeeID != "e2" || items[1].EmployeeID != "e1" {
		t.Fatalf("expected first-seen order e2,e1, got %+v", items)
	}
	if items[0].EntriesCount != 2 {
		t.Fatalf("expected e2 to have 2 entries, got %d", items[0].EntriesCount)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	monday := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	shifts := []ReportShift{
		{ShiftID: "s1", EmployeeID: "e1", EmployeeName: "Ana Ortiz", ShiftDate: monday, TotalHours: 8, TotalPaidHours: 8},
	}
	rates := map[string]payrate.Rate{"e1": {WeekdayRate: 25}}

	first := Aggregate(shifts, rates, nil)
	second := Aggregate(shifts, rates, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical output on repeat aggregation: %+v vs %+v", first, second)
	}
}
