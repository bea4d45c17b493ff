package attendance

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/juju/errors"
)

// codec is configured to behave exactly like encoding/json so stored
// collections written by other tools round-trip unchanged.
var codec = sonic.ConfigStd

var validate = validator.New()

// EncodeRecords serialises a collection. The compact form is what the
// store persists; the indented form is what an export hands out.
func EncodeRecords(records []Record, indent bool) ([]byte, error) {
	if records == nil {
		records = []Record{}
	}
	if indent {
		return codec.MarshalIndent(records, "", "  ")
	}
	return codec.Marshal(records)
}

// DecodeRecords parses a serialised collection without validating its
// content. Empty input decodes to an empty collection.
func DecodeRecords(data []byte) ([]Record, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var records []Record
	if err := codec.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// ParseImport decodes text and checks that every record is well formed
// and that no (nic, date) pair repeats.
func ParseImport(text string) ([]Record, error) {
	records, err := DecodeRecords([]byte(text))
	if err != nil {
		return nil, errors.Annotatef(ErrMalformedInput, "not a record array: %v", err)
	}
	if records == nil {
		return nil, errors.Annotate(ErrMalformedInput, "empty input")
	}
	if err := ValidateRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

// ValidateRecords checks record fields and collection invariants.
func ValidateRecords(records []Record) error {
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if err := validate.Struct(r); err != nil {
			return errors.Annotatef(ErrMalformedInput, "record %d: %v", i, err)
		}
		if r.OutTime != nil && r.InTime == nil {
			return errors.Annotatef(ErrMalformedInput, "record %d: outTime set without inTime", i)
		}
		key := recordKey(r.NIC, r.Date)
		if j, dup := seen[key]; dup {
			return errors.Annotatef(ErrMalformedInput, "records %d and %d share nic %s on %s", j, i, r.NIC, r.Date)
		}
		seen[key] = i
	}
	return nil
}

func recordKey(nic, date string) string {
	return fmt.Sprintf("%s/%s", nic, date)
}
