package persistence

import (
	"encoding/json"
	"fmt"
)

// EncodeSlot serialises records into the payload stored under a slot.
func EncodeSlot(records []Reservation) ([]byte, error) {
	if records == nil {
		records = []Reservation{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode slot: %w", err)
	}
	return payload, nil
}

// DecodeSlot parses a stored payload.
func DecodeSlot(payload []byte) ([]Reservation, error) {
	var records []Reservation
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if records == nil {
		records = []Reservation{}
	}
	return records, nil
}
