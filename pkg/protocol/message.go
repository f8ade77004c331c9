package protocol

// ClientMessage is a message sent from the client to the server. It is one
// of *InitRequest, *ApplyUpdate or *FindSource.
type ClientMessage interface {
	clientMessage()
}

// ServerMessage is a message sent from the server to the client. The only
// member is *Response.
type ServerMessage interface {
	serverMessage()
}

// Update is the change carried by an ApplyUpdate. It is one of
// *CreateSource, *CreateScene, *UpdateSource, *AppendChild, *RemoveChild
// or *CommitUpdates.
type Update interface {
	update()
}

// InitRequest opens a client session.
type InitRequest struct {
	ClientID  string
	RequestID string
}

// ApplyUpdate wraps one mutation of the scene.
type ApplyUpdate struct {
	Update Update
}

// FindSource asks the server to adopt an existing compositor element by
// name and register it under UID.
type FindSource struct {
	UID       string
	Name      string
	RequestID string
}

// Response answers an InitRequest or FindSource.
type Response struct {
	RequestID string
	Success   bool
}

// CreateSource creates a managed source inside a container.
type CreateSource struct {
	ID           string // Compositor type id, e.g. "text_ft2_source"
	ContainerUID string
	Name         string
	UID          string
	Settings     Props
}

// CreateScene creates a managed scene (grouping element) inside a container.
type CreateScene struct {
	ContainerUID string
	Name         string
	UID          string
	Props        Props
}

// UpdateSource merges changed props into an existing node.
type UpdateSource struct {
	UID          string
	ChangedProps Props
}

// AppendChild attaches child as the last child of parent.
type AppendChild struct {
	ParentUID string
	ChildUID  string
}

// RemoveChild detaches child from parent.
type RemoveChild struct {
	ParentUID string
	ChildUID  string
}

// CommitUpdates marks the end of a batch of updates for a container.
type CommitUpdates struct {
	ContainerUID string
}

func (*InitRequest) clientMessage() {}
func (*ApplyUpdate) clientMessage() {}
func (*FindSource) clientMessage()  {}

func (*Response) serverMessage() {}

func (*CreateSource) update()  {}
func (*CreateScene) update()   {}
func (*UpdateSource) update()  {}
func (*AppendChild) update()   {}
func (*RemoveChild) update()   {}
func (*CommitUpdates) update() {}

// MessageName returns a short name for logging and metric labels.
func MessageName(m ClientMessage) string {
	switch m := m.(type) {
	case *InitRequest:
		return "init_request"
	case *FindSource:
		return "find_source"
	case *ApplyUpdate:
		return UpdateName(m.Update)
	case nil:
		return "empty"
	default:
		return "unknown"
	}
}

// UpdateName returns a short name for an update.
func UpdateName(u Update) string {
	switch u.(type) {
	case *CreateSource:
		return "create_source"
	case *CreateScene:
		return "create_scene"
	case *UpdateSource:
		return "update_source"
	case *AppendChild:
		return "append_child"
	case *RemoveChild:
		return "remove_child"
	case *CommitUpdates:
		return "commit_updates"
	case nil:
		return "empty_update"
	default:
		return "unknown_update"
	}
}
