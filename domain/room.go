package domain

// ChatRoomMetadata identifies a chat room. Name is unique across the server.
type ChatRoomMetadata struct {
	Name        string `json:"name" yaml:"name" validate:"required,max=64"`
	Description string `json:"description" yaml:"description"`
}
