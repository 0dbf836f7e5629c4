package domain

// Permission expresses one user's rights on one task.
// There is at most one Permission per (TaskID, UserID) pair.
type Permission struct {
	TaskID    int64 `json:"task_id"`
	UserID    int64 `json:"user_id"`
	CanRead   bool  `json:"can_read"`
	CanUpdate bool  `json:"can_update"`
}

// OwnerPermission is the full-access grant created together with a task.
func OwnerPermission(task *Task) *Permission {
	return &Permission{
		TaskID:    task.ID,
		UserID:    task.OwnerID,
		CanRead:   true,
		CanUpdate: true,
	}
}

// PermissionUpdate is a partial change to a Permission.
// A nil flag leaves the stored value unchanged; on first creation it means false.
type PermissionUpdate struct {
	CanRead   *bool
	CanUpdate *bool
}

// IsEmpty reports whether the update changes nothing.
func (u PermissionUpdate) IsEmpty() bool {
	return u.CanRead == nil && u.CanUpdate == nil
}

// Apply returns p with the supplied flags applied.
func (u PermissionUpdate) Apply(p Permission) Permission {
	if u.CanRead != nil {
		p.CanRead = *u.CanRead
	}
	if u.CanUpdate != nil {
		p.CanUpdate = *u.CanUpdate
	}
	return p
}

// Bool returns a pointer to b, for building PermissionUpdate literals.
func Bool(b bool) *bool {
	return &b
}
