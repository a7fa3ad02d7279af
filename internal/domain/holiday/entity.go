package holiday

import "time"

type HolidayType string

const (
	HolidayTypePublic  HolidayType = "Public"
	HolidayTypeCompany HolidayType = "Company"
)

func (t HolidayType) IsValid() bool {
	return t == HolidayTypePublic || t == HolidayTypeCompany
}

type Holiday struct {
	ID          string
	Name        string
	Date        time.Time // calendar day, midnight UTC
	Type        HolidayType
	Description *string
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
