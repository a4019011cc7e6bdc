package markers

// Indicator shows a loading state while a filter is being applied.
type Indicator interface {
	Show()
	Hide()
}

// Notifier is told when a filter leaves no marker visible.
type Notifier interface {
	NoResults()
}

// Form holds the criteria inputs edited by the user.
type Form interface {
	Clear()
}
