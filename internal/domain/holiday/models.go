package holiday

import "time"

type Holiday struct {
	ID          string    `json:"id"`
	HolidayOn   time.Time `json:"holidayOn"`
	Name        string    `json:"name"`
	IsRecurring bool      `json:"isRecurring"`
	CreatedAt   time.Time `json:"createdAt"`
}
