package event

type Type string

const (
	UserJoinedRoomType    Type = "user_joined_room"
	UserMessageType       Type = "user_message"
	RoomParticipationType Type = "room_participation"
)

// Event is delivered to a session, either as a reply or as a room broadcast.
type Event interface {
	Type() Type
	RoomName() string
}

// UserJoinedRoom is the reply sent to a session right after it joined a room.
// Users holds the distinct user ids present at join time.
type UserJoinedRoom struct {
	Room  string   `json:"room"`
	Users []string `json:"users"`
}

func (e UserJoinedRoom) Type() Type       { return UserJoinedRoomType }
func (e UserJoinedRoom) RoomName() string { return e.Room }

type UserMessage struct {
	Room    string `json:"room"`
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

func (e UserMessage) Type() Type       { return UserMessageType }
func (e UserMessage) RoomName() string { return e.Room }

type ParticipationStatus string

const (
	Joined ParticipationStatus = "joined"
	Left   ParticipationStatus = "left"
)

type RoomParticipation struct {
	UserID string              `json:"user_id"`
	Room   string              `json:"room"`
	Status ParticipationStatus `json:"status"`
}

func (e RoomParticipation) Type() Type       { return RoomParticipationType }
func (e RoomParticipation) RoomName() string { return e.Room }
