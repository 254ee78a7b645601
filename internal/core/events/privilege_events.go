package events

import (
	"time"

	"github.com/google/uuid"
)

// Privilege-change event types. Subscribers (the audit logger) record them;
// nothing here pushes invalidation to clients, the session cache stays
// pull-based.
const (
	EventRoleModulesReplaced = "privilege.role_modules_replaced"
	EventRoleDeleted         = "privilege.role_deleted"
	EventUserRoleChanged     = "privilege.user_role_changed"
)

func NewRoleModulesReplacedEvent(roleID int64, modules []string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventRoleModulesReplaced,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"role_id": roleID,
			"modules": modules,
		},
	}
}

func NewRoleDeletedEvent(roleID int64, name string) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventRoleDeleted,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"role_id": roleID,
			"name":    name,
		},
	}
}

func NewUserRoleChangedEvent(userID int64, roleID *int64) BaseEvent {
	data := map[string]interface{}{
		"user_id": userID,
	}
	if roleID != nil {
		data["role_id"] = *roleID
	}
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      EventUserRoleChanged,
		Timestamp: time.Now(),
		Data:      data,
	}
}
