package shared

import "fmt"

// OrganizerLockKey builds the key serialising payment submissions per organizer.
func OrganizerLockKey(organizerID string) string {
	return fmt.Sprintf("treasury:organizer:%s:lock", organizerID)
}
