package leads

import "time"

// StatusNew marks a freshly captured lead that nobody has worked yet.
const StatusNew = "new"

// Lead is one captured prospect record. Records are keyed by the sender
// address of the chat the intake happened in; Phone is the contact number
// the prospect typed into the form and may differ from the key.
type Lead struct {
	ID         string    `json:"id"`
	Sender     string    `json:"sender"`
	Name       string    `json:"name"`
	Company    string    `json:"company"`
	Phone      string    `json:"phone"`
	Task       string    `json:"task"`
	Status     string    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Required field display names, in the order they are reported back to the
// user when something is missing.
const (
	FieldName    = "Имя"
	FieldCompany = "Компания"
	FieldPhone   = "Телефон"
	FieldTask    = "Задача"
)

// MissingFields lists the display names of required fields that are still
// empty, in intake-form order.
func (l *Lead) MissingFields() []string {
	var missing []string
	if l.Name == "" {
		missing = append(missing, FieldName)
	}
	if l.Company == "" {
		missing = append(missing, FieldCompany)
	}
	if l.Phone == "" {
		missing = append(missing, FieldPhone)
	}
	if l.Task == "" {
		missing = append(missing, FieldTask)
	}
	return missing
}

// Complete reports whether all four required fields are present.
func (l *Lead) Complete() bool {
	return len(l.MissingFields()) == 0
}
