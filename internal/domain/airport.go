package domain

// Airport is a selectable search endpoint
type Airport struct {
	ID   string `json:"id"`   // IATA code
	Name string `json:"name"` // Display name
}

// HistoryLabel returns the label stored in search history: the name when
// known, otherwise the code.
func (a Airport) HistoryLabel() string {
	if a.Name != "" {
		return a.Name
	}
	return a.ID
}

// Display returns "Name (CODE)"
func (a Airport) Display() string {
	if a.Name == "" {
		return a.ID
	}
	return a.Name + " (" + a.ID + ")"
}
