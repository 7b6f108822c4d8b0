// Package seed loads the reference statuses and priorities the ticket
// workflow depends on.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"qms/core-api/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Status struct {
	Name        string `yaml:"name"`
	Code        string `yaml:"code"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
	Inactive    bool   `yaml:"inactive"`
}

type Priority struct {
	Name        string `yaml:"name"`
	Code        string `yaml:"code"`
	Weight      int    `yaml:"weight"`
	Description string `yaml:"description"`
	Inactive    bool   `yaml:"inactive"`
}

type Data struct {
	Statuses   []Status   `yaml:"statuses"`
	Priorities []Priority `yaml:"priorities"`
}

type Seeder interface {
	SeedStatuses(ctx context.Context, statuses []models.Status) (int, error)
	SeedPriorities(ctx context.Context, priorities []models.Priority) (int, error)
}

// Result counts the rows that did not exist before.
type Result struct {
	Statuses   int
	Priorities int
}

func Defaults() (Data, error) {
	return Parse(defaultsYAML)
}

func LoadFile(path string) (Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return Parse(raw)
}

func Parse(raw []byte) (Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Data{}, fmt.Errorf("parse seed data: %w", err)
	}
	if err := data.validate(); err != nil {
		return Data{}, err
	}
	return data, nil
}

func (d Data) validate() error {
	var errs []error
	for i, st := range d.Statuses {
		if st.Name == "" || st.Code == "" {
			errs = append(errs, fmt.Errorf("statuses[%d]: name and code are required", i))
		}
		if _, ok := models.ParseStatusType(st.Type); !ok {
			errs = append(errs, fmt.Errorf("statuses[%d]: unknown type %q", i, st.Type))
		}
	}
	for i, p := range d.Priorities {
		if p.Name == "" || p.Code == "" {
			errs = append(errs, fmt.Errorf("priorities[%d]: name and code are required", i))
		}
	}
	return errors.Join(errs...)
}

// Apply inserts the rows that are missing and leaves existing ones untouched.
func Apply(ctx context.Context, seeder Seeder, data Data) (Result, error) {
	statuses := make([]models.Status, 0, len(data.Statuses))
	for _, st := range data.Statuses {
		statuses = append(statuses, models.Status{
			Name:        st.Name,
			Code:        st.Code,
			Type:        st.Type,
			Description: st.Description,
			IsActive:    !st.Inactive,
		})
	}
	priorities := make([]models.Priority, 0, len(data.Priorities))
	for _, p := range data.Priorities {
		priorities = append(priorities, models.Priority{
			Name:        p.Name,
			Code:        p.Code,
			Weight:      p.Weight,
			Description: p.Description,
			IsActive:    !p.Inactive,
		})
	}

	var result Result
	var err error
	if result.Statuses, err = seeder.SeedStatuses(ctx, statuses); err != nil {
		return result, fmt.Errorf("seed statuses: %w", err)
	}
	if result.Priorities, err = seeder.SeedPriorities(ctx, priorities); err != nil {
		return result, fmt.Errorf("seed priorities: %w", err)
	}
	return result, nil
}
