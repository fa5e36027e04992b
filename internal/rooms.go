package internal

import (
	"chat-rooms/domain"
	"chat-rooms/errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// RoomCatalogue is the file declaring the rooms created at startup, in listing order.
//
//	rooms:
//	  - name: general
//	    description: Anything goes
type RoomCatalogue struct {
	Rooms []domain.ChatRoomMetadata `yaml:"rooms" validate:"unique=Name,dive"`
}

func LoadRooms(path string) ([]domain.ChatRoomMetadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rooms file: %w", err)
	}
	return ParseRooms(data)
}

func ParseRooms(data []byte) ([]domain.ChatRoomMetadata, error) {
	var catalogue RoomCatalogue
	if err := yaml.Unmarshal(data, &catalogue); err != nil {
		return nil, fmt.Errorf("parsing rooms file: %w", err)
	}
	if len(catalogue.Rooms) == 0 {
		return nil, errors.ErrNoRooms
	}
	if err := validate.Struct(catalogue); err != nil {
		return nil, fmt.Errorf("invalid rooms file: %w", err)
	}
	return catalogue.Rooms, nil
}
