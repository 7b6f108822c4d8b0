package models

import (
	"time"

	"github.com/guregu/null/v5"
)

// Audit holds the store-managed bookkeeping columns.
type Audit struct {
	Created        time.Time
	CreatedBy      null.String
	LastModified   time.Time
	LastModifiedBy null.String
}

type Customer struct {
	ID          int64
	FirstName   string
	LastName    string
	Email       string
	Gender      string
	YearOfBirth int
	StatusID    int64
	Status      Status
	Audit
}

type Appointment struct {
	ID                    int64
	CustomerID            int64
	ServiceID             int64
	StatusID              int64
	LocationID            null.Int
	ServiceStarted        null.Time
	ServiceEndingExpected null.Time
	ServiceEnded          null.Time
	Customer              Customer
	Service               Service
	Status                Status
	Location              *Location
	Audit
}

type ServiceTurn struct {
	ID                    int64
	TicketNumber          string
	CustomerName          string
	ServiceID             int64
	StatusID              int64
	PriorityID            int64
	AppointmentID         null.Int
	CustomerID            null.Int
	ServiceStarted        null.Time
	ServiceEndingExpected null.Time
	ServiceEnded          null.Time
	Service               Service
	Status                Status
	Priority              Priority
	Appointment           *Appointment
	Customer              *Customer
	Audit
}

// IssuedTurn is the result of the ticket issuance workflow.
type IssuedTurn struct {
	ID            int64
	CustomerName  string
	TicketNumber  string
	PeopleInQueue int
}

// TurnStatus is one line of the "now serving" board.
type TurnStatus struct {
	TicketNumber string
	ServiceID    int64
	ServiceName  string
	StatusName   string
	StatusCode   string
}
