package main

import (
	"chat-rooms/internal"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"
)

// Config is read from the same environment as the server.
type Config struct {
	RoomsFilepath string `envconfig:"ROOMS_FILEPATH" default:"rooms.yaml"`
	Colours       bool   `envconfig:"INSPECT_COLOURS" default:"true"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal("Config error: ", err)
	}
	path := flag.String("rooms", cfg.RoomsFilepath, "Path to the rooms file")
	flag.Parse()

	color.Enable = cfg.Colours

	rooms, err := internal.LoadRooms(*path)
	if err != nil {
		color.Red.Printf("✗ %s: %v\n", *path, err)
		os.Exit(1)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "Name", "Description"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for i, room := range rooms {
		table.Append([]string{fmt.Sprint(i + 1), room.Name, room.Description})
	}
	table.Render()

	color.Green.Printf("✓ %d rooms declared in %s\n", len(rooms), *path)
}
