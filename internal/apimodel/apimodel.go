// Package apimodel holds the JSON shapes returned by the HTTP API.
package apimodel

import "github.com/guregu/null/v5"

// NotAvailable replaces audit actors that were never recorded.
const NotAvailable = "N/A"

const (
	OperationAdd    = "ADD"
	OperationUpdate = "UPDATE"
	OperationDelete = "DELETE"
)

// APIResponse is the envelope for every write acknowledgement and error.
type APIResponse struct {
	Code    string `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

type Status struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Type        string `json:"type"`
	IsActive    bool   `json:"isActive"`
}

type Priority struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	Weight      int    `json:"weight"`
	IsActive    bool   `json:"isActive"`
}

type Location struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Address     string `json:"address"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl"`
	IsActive    bool   `json:"isActive"`
	Status      Status `json:"status"`
}

type Service struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Prefix      string   `json:"prefix"`
	Description string   `json:"description"`
	IconURL     string   `json:"iconUrl"`
	IsActive    bool     `json:"isActive"`
	Status      Status   `json:"status"`
	Category    Category `json:"category"`
}

type Queue struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Code        string   `json:"code"`
	Description string   `json:"description"`
	IsActive    bool     `json:"isActive"`
	Status      Status   `json:"status"`
	Priority    Priority `json:"priority"`
}

// Audit carries the bookkeeping fields shared by customers, appointments and turns.
type Audit struct {
	Created        string `json:"created"`
	CreatedBy      string `json:"createdBy"`
	LastModified   string `json:"lastModified"`
	LastModifiedBy string `json:"lastModifiedBy"`
}

type Customer struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Gender      string `json:"gender"`
	YearOfBirth int    `json:"yearOfBirth"`
	Status      Status `json:"status"`
	Audit
}

type Appointment struct {
	ID                    int64       `json:"id"`
	Customer              Customer    `json:"customer"`
	Service               Service     `json:"service"`
	Status                Status      `json:"status"`
	Location              *Location   `json:"location"`
	ServiceStarted        null.String `json:"serviceStarted"`
	ServiceEndingExpected null.String `json:"serviceEndingExpected"`
	ServiceEnded          null.String `json:"serviceEnded"`
	Audit
}

type ServiceTurn struct {
	ID                    int64        `json:"id"`
	TicketNumber          string       `json:"ticketNumber"`
	CustomerName          string       `json:"customerName"`
	Service               Service      `json:"service"`
	Status                Status       `json:"status"`
	Priority              Priority     `json:"priority"`
	Appointment           *Appointment `json:"appointment"`
	Customer              *Customer    `json:"customer"`
	ServiceStarted        null.String  `json:"serviceStarted"`
	ServiceEndingExpected null.String  `json:"serviceEndingExpected"`
	ServiceEnded          null.String  `json:"serviceEnded"`
	Audit
}

// CreatedTurn answers a ticket issuance.
type CreatedTurn struct {
	ID            int64  `json:"id"`
	CustomerName  string `json:"customerName"`
	TicketNumber  string `json:"ticketNumber"`
	PeopleInQueue int    `json:"peopleInQueue"`
}

// TurnStatusRow is one line of the public status board.
type TurnStatusRow struct {
	TicketNumber string `json:"ticketNumber"`
	QueueName    string `json:"queueName"`
	StatusName   string `json:"statusName"`
	StatusCode   string `json:"statusCode"`
}
