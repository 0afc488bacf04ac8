package models

// Sequence is the explicit counter behind one identifier kind. Value is the
// last number handed out and only ever grows.
type Sequence struct {
	Name  string `gorm:"primaryKey;type:varchar(20)"`
	Value int64  `gorm:"not null"`
}

// AllModels lists every table the service migrates.
func AllModels() []interface{} {
	return []interface{}{
		&Sequence{},
		&Account{},
		&Customer{},
		&Employee{},
		&Bill{},
		&Order{},
	}
}
