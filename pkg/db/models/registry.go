package models

// All lists every persisted model in foreign key order. It backs sqlite auto-migration
// and test databases; Postgres schemas come from the goose migrations.
func All() []any {
	return []any{
		&User{},
		&Product{},
		&Cart{},
		&CartLineItem{},
		&TrailEntry{},
		&Order{},
		&OrderItem{},
		&OracleLog{},
		&OutboxEvent{},
	}
}
