package payrate

// Merge applies a field-wise override on top of the default record.
func Merge(def Rate, override *Override) Rate {
	if override == nil {
		return def
	}
	out := def
	if override.WeekdayRate != nil {
		out.WeekdayRate = *override.WeekdayRate
	}
	if override.SaturdayRate != nil {
		out.SaturdayRate = *override.SaturdayRate
	}
	if override.SundayRate != nil {
		out.SundayRate = *override.SundayRate
	}
	if override.PublicHolidayRate != nil {
		out.PublicHolidayRate = *override.PublicHolidayRate
	}
	if override.PaidBreakMinutes != nil {
		out.PaidBreakMinutes = *override.PaidBreakMinutes
	}
	return out
}
