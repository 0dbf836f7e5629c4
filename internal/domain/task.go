package domain

const (
	// MaxTitleLength bounds task titles.
	MaxTitleLength = 255

	// MaxDescriptionLength bounds task descriptions.
	MaxDescriptionLength = 4000

	// DefaultPageLimit is used when a listing does not specify a limit.
	DefaultPageLimit = 10

	// MaxPageLimit caps a single listing page.
	MaxPageLimit = 100
)

// Task is a unit of work owned by a user.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     int64  `json:"owner_id"`
}

// NewTask creates a task owned by ownerID.
// The ID is assigned by the store on insert.
func NewTask(title, description string, ownerID int64) (*Task, error) {
	task := &Task{
		Title:       title,
		Description: description,
		OwnerID:     ownerID,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks task fields. ID is not checked since new tasks have none.
func (t *Task) Validate() error {
	if t.OwnerID <= 0 {
		return NewValidationError("owner_id", "must be positive", ErrInvalidID)
	}
	return t.ValidateContent()
}

// ValidateContent checks only the user-editable fields.
func (t *Task) ValidateContent() error {
	if t.Title == "" {
		return NewValidationError("title", "cannot be empty", ErrEmptyContent)
	}
	if len(t.Title) > MaxTitleLength {
		return NewValidationError("title", "is too long", ErrContentTooLong)
	}
	if len(t.Description) > MaxDescriptionLength {
		return NewValidationError("description", "is too long", ErrContentTooLong)
	}
	return nil
}

// Page selects a window of an ordered listing.
type Page struct {
	Skip  int
	Limit int
}

// DefaultPage is the first page with the default limit.
func DefaultPage() Page {
	return Page{Skip: 0, Limit: DefaultPageLimit}
}

// Normalize clamps a page into the supported range.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}
