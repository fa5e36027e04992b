package domain

// UserCommand is an intent received from a connected user.
type UserCommand interface {
	RoomName() string
}

type JoinRoomCommand struct {
	Room string `validate:"required,max=64"`
}

func (c JoinRoomCommand) RoomName() string { return c.Room }

type LeaveRoomCommand struct {
	Room string `validate:"required,max=64"`
}

func (c LeaveRoomCommand) RoomName() string { return c.Room }

type SendMessageCommand struct {
	Room    string `validate:"required,max=64"`
	Content string `validate:"max=4096"`
}

func (c SendMessageCommand) RoomName() string { return c.Room }

type GetHistoryCommand struct {
	Room string `validate:"required,max=64"`
}

func (c GetHistoryCommand) RoomName() string { return c.Room }
