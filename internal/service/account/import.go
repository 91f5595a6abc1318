package account

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

// columnAliases maps accepted header spellings onto canonical column names.
// Spreadsheets exported by different operators use different headings.
var columnAliases = map[string]string{
	"email":       "email",
	"correo":      "email",
	"mail":        "email",
	"province":    "province",
	"provincia":   "province",
	"city":        "city",
	"ciudad":      "city",
	"comments":    "comments",
	"comentarios": "comments",
	"notes":       "comments",
	"ip":          "ip",
	"emulator":    "emulator",
	"emulador":    "emulator",
	"device":      "device_type",
	"device_type": "device_type",
	"dispositivo": "device_type",
}

// ImportCSV reads accounts from r and creates them for the given owner.
// The first record must be a header; recognized columns are matched by
// alias, unknown columns are ignored. Rows that fail validation or
// collide with an existing email are reported in the result, not fatal.
func (s *Service) ImportCSV(ctx context.Context, ownerID uuid.UUID, r io.Reader) (ImportResult, error) {
	if ownerID == uuid.Nil {
		return ImportResult{}, domain.NewValidationErrors([]domain.FieldError{
			{Field: "owner_id", Message: "is required"},
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
	if _, ok := cols["email"]; !ok {
		return ImportResult{}, domain.NewValidationErrors([]domain.FieldError{
			{Field: "email", Message: "column is missing from the csv header"},
		})
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

		input := CreateAccountInput{
			Email:      field("email"),
			OwnerID:    ownerID,
			Province:   field("province"),
			City:       field("city"),
			Comments:   field("comments"),
			IP:         field("ip"),
			Emulator:   field("emulator"),
			DeviceType: domain.DeviceType(strings.ToUpper(field("device_type"))),
		}

		_, err = s.Create(ctx, input)
		switch {
		case err == nil:
			result.Created++
		case errors.Is(err, domain.ErrAlreadyExists):
			result.Skipped++
			result.Errors = append(result.Errors, ImportError{Line: line, Reason: "account already exists"})
		case errors.Is(err, domain.ErrValidation):
			result.Skipped++
			result.Errors = append(result.Errors, ImportError{Line: line, Reason: err.Error()})
		default:
			// Storage failures abort the run; partial results are still reported.
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
		"email,province,city,comments,ip,emulator,device_type",
		"reviewer01@gmail.com,Madrid,Madrid,,83.45.12.9,LDPlayer 9,ANDROID",
	}, "\n") + "\n"
}
