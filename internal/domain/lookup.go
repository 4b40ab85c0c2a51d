package domain

const (
	EnumBookingStatus = "booking_status"
	EnumShootType     = "shoot_type"
)

// EnumValue is one allowed value of a named lookup enumeration.
type EnumValue struct {
	ID       int64  `json:"id" gorm:"primaryKey"`
	EnumName string `json:"enum_name" gorm:"size:64;index:idx_enum_values_name_value,unique"`
	Value    string `json:"value" gorm:"size:64;index:idx_enum_values_name_value,unique"`
	Position int    `json:"position"`
}

func (EnumValue) TableName() string { return "enum_values" }

// DefaultEnumValues returns the built-in values of a known enumeration.
// Unknown names yield nil.
func DefaultEnumValues(name string) []string {
	switch name {
	case EnumBookingStatus:
		out := make([]string, 0, len(BookingStatuses))
		for _, s := range BookingStatuses {
			out = append(out, string(s))
		}
		return out
	case EnumShootType:
		out := make([]string, 0, len(ShootTypes))
		for _, t := range ShootTypes {
			out = append(out, string(t))
		}
		return out
	default:
		return nil
	}
}
