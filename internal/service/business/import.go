package business

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// ImportResult summarizes a bulk import run.
type ImportResult struct {
	Created int
	Skipped int
	Errors  []ImportError
}

// ImportError records why one CSV row was rejected.
type ImportError struct {
	Line   int
	Reason string
}

var columnAliases = map[string]string{
	"name":          "name",
	"nombre":        "name",
	"address":       "address",
	"direccion":     "address",
	"postal_code":   "postal_code",
	"cp":            "postal_code",
	"city":          "city",
	"ciudad":        "city",
	"province":      "province",
	"provincia":     "province",
	"sector":        "sector",
	"category":      "category",
	"categoria":     "category",
	"phone":         "phone",
	"telefono":      "phone",
	"email":         "email",
	"correo":        "email",
	"website":       "website",
	"web":           "website",
	"review_target": "review_target",
	"objetivo":      "review_target",
	"notes":         "notes",
	"notas":         "notes",
}

// ImportCSV reads businesses from r and creates them on behalf of the
// given user. Columns are matched by alias; rows that fail validation or
// collide with an existing (name, address) pair are reported, not fatal.
func (s *Service) ImportCSV(ctx context.Context, createdBy uuid.UUID, r io.Reader) (ImportResult, error) {
	if createdBy == uuid.Nil {
		return ImportResult{}, domain.NewValidationErrors([]domain.FieldError{
			{Field: "created_by", Message: "is required"},
		})
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return ImportResult{}, fmt.Errorf("read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		canonical, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]
		if ok {
			cols[canonical] = i
		}
	}
	for _, required := range []string{"name", "address"} {
		if _, ok := cols[required]; !ok {
			return ImportResult{}, domain.NewValidationErrors([]domain.FieldError{
				{Field: required, Message: "column is missing from the csv header"},
			})
		}
	}

	var result ImportResult
	line := 1

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, ImportError{Line: line, Reason: err.Error()})
			continue
		}

		field := func(name string) string {
			i, ok := cols[name]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		input := CreateBusinessInput{
			Name:         field("name"),
			Address:      field("address"),
			PostalCode:   field("postal_code"),
			City:         field("city"),
			Province:     field("province"),
			Category:     domain.BusinessCategory(strings.ToUpper(field("category"))),
			Sector:       domain.Sector(strings.ToUpper(field("sector"))),
			Phone:        field("phone"),
			Email:        field("email"),
			Website:      field("website"),
			ReviewTarget: parseTarget(field("review_target")),
			Notes:        field("notes"),
		}

		_, err = s.Create(ctx, createdBy, input)
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, domain.ErrAlreadyExists):
			result.Skipped++
			result.Errors = append(result.Errors, ImportError{Line: line, Reason: "business already exists"})
		case errors.Is(err, domain.ErrValidation):
			result.Skipped++
			result.Errors = append(result.Errors, ImportError{Line: line, Reason: err.Error()})
		default:
			return result, fmt.Errorf("import line %d: %w", line, err)
		}
	}

	s.log.InfoContext(ctx, "csv import finished",
		slog.Int("created", result.Created),
		slog.Int("skipped", result.Skipped),
	)

	return result, nil
}

// SampleCSV returns a header plus one example row for the import format.
func SampleCSV() string {
	return strings.Join([]string{
		"name,address,postal_code,city,province,sector,category,phone,email,website,review_target,notes",
		"Cerrajeros Rapidos,Calle Mayor 1,28001,Madrid,Madrid,LOCKSMITH,SAB,+34600000000,info@cerrajeros.example,https://cerrajeros.example,20,",
	}, "\n") + "\n"
}

func parseTarget(s string) int {
	var n int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}
