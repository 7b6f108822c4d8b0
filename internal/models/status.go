package models

type StatusType string

const (
	StatusTypeCategory    StatusType = "CATEGORY"
	StatusTypeService     StatusType = "SERVICE"
	StatusTypeCustomer    StatusType = "CUSTOMER"
	StatusTypeTurn        StatusType = "TURN"
	StatusTypeQueue       StatusType = "QUEUE"
	StatusTypeAppointment StatusType = "APPOINTMENT"
)

var statusTypes = []StatusType{
	StatusTypeCategory,
	StatusTypeService,
	StatusTypeCustomer,
	StatusTypeTurn,
	StatusTypeQueue,
	StatusTypeAppointment,
}

// ParseStatusType reports whether value names one of the six status categories.
func ParseStatusType(value string) (StatusType, bool) {
	for _, t := range statusTypes {
		if string(t) == value {
			return t, true
		}
	}
	return "", false
}

type Gender string

const (
	GenderMale         Gender = "M"
	GenderFemale       Gender = "F"
	GenderNotSpecified Gender = "N/S"
)

func ParseGender(value string) (Gender, bool) {
	switch Gender(value) {
	case GenderMale, GenderFemale, GenderNotSpecified:
		return Gender(value), true
	default:
		return "", false
	}
}

// Status codes with a fixed meaning for service turns.
const (
	TurnStatusPending       = "PENDING"
	TurnStatusToBeAttended  = "TO_BE_ATTENDED"
	TurnStatusBeingAttended = "BEING_ATTENDED"
	TurnStatusAttended      = "ATTENDED"
	TurnStatusCancelled     = "CANCELLED"
)

const (
	DefaultTurnPriority = "NORMAL_PRIORITY"
	SystemCreator       = "SYSTEM"
)

type Status struct {
	ID          int64
	Name        string
	Code        string
	Description string
	Type        string
	IsActive    bool
}

type Priority struct {
	ID          int64
	Name        string
	Code        string
	Weight      int
	Description string
	IsActive    bool
}

type Location struct {
	ID          int64
	Name        string
	Code        string
	Address     string
	Description string
	IsActive    bool
}
