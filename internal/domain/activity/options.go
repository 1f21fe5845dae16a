package activity

// ListOptions provides filtering options for listing activity.
type ListOptions struct {
	ProjectID string
	FileID    *string
	Type      *Type
	Limit     int
	Offset    int
}
