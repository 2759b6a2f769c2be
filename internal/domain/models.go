package domain

// Models lists every persisted entity in dependency order.
func Models() []any {
	return []any{
		&Profile{},
		&Teacher{},
		&LessonType{},
		&AvailabilityWindow{},
		&Booking{},
		&Wallet{},
		&Transaction{},
		&PaymentMethod{},
		&PaymentRecord{},
		&Subscription{},
		&Message{},
		&Review{},
		&LearningGoal{},
	}
}
