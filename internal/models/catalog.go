package models

type Category struct {
	ID          int64
	Name        string
	Code        string
	Description string
	IconURL     string
	IsActive    bool
	StatusID    int64
	Status      Status
}

type Service struct {
	ID          int64
	Name        string
	Code        string
	Prefix      string
	Description string
	IconURL     string
	IsActive    bool
	StatusID    int64
	CategoryID  int64
	Status      Status
	Category    Category
}

type Queue struct {
	ID          int64
	Name        string
	Code        string
	Description string
	IsActive    bool
	StatusID    int64
	PriorityID  int64
	Status      Status
	Priority    Priority
}
