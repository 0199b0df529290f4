package model

// LoginRequest is accepted as JSON or as a urlencoded form.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
	From     string `json:"from,omitempty" form:"from"`
}

type AddHostRequest struct {
	Domain string `json:"domain"`
	Root   string `json:"root"`
}

type InstallModuleRequest struct {
	Name string `json:"name" validate:"max=64"`
}

type ConfigRequest struct {
	Content string `json:"content"`
}

type CreateDirectoryRequest struct {
	Path string `json:"path"`
	Name string `json:"name" validate:"required"`
}

type RenameRequest struct {
	Path    string `json:"path" validate:"required"`
	NewName string `json:"new_name" validate:"required"`
}

type SaveTextRequest struct {
	Path    string `json:"path" validate:"required"`
	Content string `json:"content"`
}

type DeleteRequest struct {
	Paths []string `json:"paths" validate:"required,min=1,dive,required"`
}

type DeleteFailure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

type DeleteResponse struct {
	Deleted []string        `json:"deleted"`
	Failed  []DeleteFailure `json:"failed"`
}
