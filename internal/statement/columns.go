package statement

import "strings"

// Field is a logical statement column.
type Field int

const (
	FieldDate Field = iota
	FieldDescription
	FieldAmount
	FieldReference
	FieldAccount
	FieldBalance
	FieldType
)

// String returns the field name used in error messages.
func (f Field) String() string {
	switch f {
	case FieldDate:
		return "date"
	case FieldDescription:
		return "description"
	case FieldAmount:
		return "amount"
	case FieldReference:
		return "reference"
	case FieldAccount:
		return "account"
	case FieldBalance:
		return "balance"
	case FieldType:
		return "type"
	default:
		return "unknown"
	}
}

// synonyms maps each logical field to the header names banks use for it.
// Matching is case-insensitive substring search, so "Fecha Operacion"
// binds to FieldDate via "fecha".
var synonyms = map[Field][]string{
	FieldDate:        {"fecha", "date", "fecha_transaccion", "transaction_date", "fecha_operacion"},
	FieldDescription: {"descripcion", "description", "detalle", "concepto", "glosa", "memo"},
	FieldAmount:      {"monto", "amount", "importe", "valor", "cantidad"},
	FieldReference:   {"referencia", "reference", "numero_referencia", "ref", "numero_operacion"},
	FieldAccount:     {"cuenta", "account", "numero_cuenta", "account_number"},
	FieldBalance:     {"saldo", "balance", "saldo_final"},
	FieldType:        {"tipo", "type", "movimiento"},
}

// mandatoryFields must all be detected for parsing to proceed.
var mandatoryFields = []Field{FieldDate, FieldDescription, FieldAmount}

// DetectColumns scans a header row and binds each logical field to the
// first column whose lowercased name contains one of its synonyms.
// Undetected optional fields are simply absent from the result.
func DetectColumns(header []string) map[Field]int {
	lowered := make([]string, len(header))
	for i, h := range header {
		lowered[i] = strings.ToLower(strings.TrimSpace(h))
	}

	detected := make(map[Field]int)
	for field, names := range synonyms {
		for _, name := range names {
			idx := -1
			for i, col := range lowered {
				if strings.Contains(col, name) {
					idx = i
					break
				}
			}
			if idx >= 0 {
				detected[field] = idx
				break
			}
		}
	}
	return detected
}

// MissingMandatory returns the mandatory fields absent from a detection
// result, in a stable order.
func MissingMandatory(detected map[Field]int) []Field {
	var missing []Field
	for _, f := range mandatoryFields {
		if _, ok := detected[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}
