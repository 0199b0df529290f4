package event

type Type string

const (
	TypeToast           Type = "toast"
	TypeSystemStatus    Type = "system.status"
	TypeServiceChanged  Type = "service.changed"
	TypeModuleProgress  Type = "module.install.progress"
	TypeModuleInstalled Type = "module.installed"
	TypeActivityAdded   Type = "activity.added"
	TypeFileUploaded    Type = "file.uploaded"
	TypeFileDeleted     Type = "file.deleted"
	TypeDirCreated      Type = "dir.created"
)

type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Payload   any    `json:"payload"`
	Timestamp string `json:"timestamp"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func()) // Returns channel and unsubscribe function
}
