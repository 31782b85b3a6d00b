package models

import "github.com/google/uuid"

// ensureID assigns a time-ordered v7 id, so rows written within the same timestamp still
// sort in insertion order on (created_at, id).
func ensureID(id *uuid.UUID) error {
	if *id != uuid.Nil {
		return nil
	}
	next, err := uuid.NewV7()
	if err != nil {
		return err
	}
	*id = next
	return nil
}
