package envelope

import (
	"encoding/json"
	"fmt"

	"query-genie/pkg/sqlguard"
)

type Type string

const (
	TypeSelect               Type = "select"
	TypeStatus               Type = "status"
	TypeConfirmationRequired Type = "confirmation_required"
	TypeError                Type = "error"
)

type Select struct {
	Columns  []string
	Rows     [][]string
	RowCount int
}

type Status struct {
	Message      string
	AffectedRows int
}

type ConfirmationRequired struct {
	SQL     string
	Preview sqlguard.TablePreview
}

type Error struct {
	Message string
}

// Envelope is the response of every pipeline outcome. Exactly one variant is
// set; use the constructors rather than filling fields by hand.
type Envelope struct {
	Select       *Select
	Status       *Status
	Confirmation *ConfirmationRequired
	Error        *Error
}

func NewSelect(columns []string, rows [][]string) Envelope {
	if columns == nil {
		columns = []string{}
	}
	if rows == nil {
		rows = [][]string{}
	}
	return Envelope{Select: &Select{Columns: columns, Rows: rows, RowCount: len(rows)}}
}

func NewStatus(message string, affectedRows int) Envelope {
	if affectedRows < 0 {
		affectedRows = 0
	}
	return Envelope{Status: &Status{Message: message, AffectedRows: affectedRows}}
}

func NewConfirmationRequired(sql string, preview sqlguard.TablePreview) Envelope {
	return Envelope{Confirmation: &ConfirmationRequired{SQL: sql, Preview: preview}}
}

func NewError(message string) Envelope {
	return Envelope{Error: &Error{Message: message}}
}

// Type returns the variant tag. An empty envelope reports TypeError.
func (e Envelope) Type() Type {
	switch {
	case e.Select != nil:
		return TypeSelect
	case e.Status != nil:
		return TypeStatus
	case e.Confirmation != nil:
		return TypeConfirmationRequired
	default:
		return TypeError
	}
}

type wireEnvelope struct {
	Type         Type                   `json:"type"`
	Data         [][]string             `json:"data,omitempty"`
	Columns      []string               `json:"columns,omitempty"`
	RowCount     *int                   `json:"row_count,omitempty"`
	Message      *string                `json:"message,omitempty"`
	AffectedRows *int                   `json:"affected_rows,omitempty"`
	SQL          *string                `json:"sql,omitempty"`
	Table        *sqlguard.TablePreview `json:"table,omitempty"`
}

func (e Envelope) MarshalJSON() ([]byte, error) {
	switch e.Type() {
	case TypeSelect:
		// data and columns are always present, even when empty
		return json.Marshal(struct {
			Type     Type       `json:"type"`
			Data     [][]string `json:"data"`
			Columns  []string   `json:"columns"`
			RowCount int        `json:"row_count"`
		}{TypeSelect, nonNilRows(e.Select.Rows), nonNilColumns(e.Select.Columns), e.Select.RowCount})
	case TypeStatus:
		return json.Marshal(wireEnvelope{
			Type:         TypeStatus,
			Message:      &e.Status.Message,
			AffectedRows: &e.Status.AffectedRows,
		})
	case TypeConfirmationRequired:
		return json.Marshal(wireEnvelope{
			Type:  TypeConfirmationRequired,
			SQL:   &e.Confirmation.SQL,
			Table: &e.Confirmation.Preview,
		})
	default:
		message := ""
		if e.Error != nil {
			message = e.Error.Message
		}
		return json.Marshal(wireEnvelope{Type: TypeError, Message: &message})
	}
}

func (e *Envelope) UnmarshalJSON(data []byte) error {
	var wire wireEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	switch wire.Type {
	case TypeSelect:
		*e = NewSelect(wire.Columns, wire.Data)
		if wire.RowCount != nil {
			e.Select.RowCount = *wire.RowCount
		}
	case TypeStatus:
		var affected int
		if wire.AffectedRows != nil {
			affected = *wire.AffectedRows
		}
		*e = NewStatus(deref(wire.Message), affected)
	case TypeConfirmationRequired:
		var preview sqlguard.TablePreview
		if wire.Table != nil {
			preview = *wire.Table
		}
		*e = NewConfirmationRequired(deref(wire.SQL), preview)
	case TypeError:
		*e = NewError(deref(wire.Message))
	default:
		return fmt.Errorf("unknown envelope type %q", wire.Type)
	}
	return nil
}

// String renders the envelope as compact JSON.
func (e Envelope) String() string {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Sprintf(`{"type":"error","message":%q}`, err.Error())
	}
	return string(data)
}

func nonNilRows(rows [][]string) [][]string {
	if rows == nil {
		return [][]string{}
	}
	return rows
}

func nonNilColumns(columns []string) []string {
	if columns == nil {
		return []string{}
	}
	return columns
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
