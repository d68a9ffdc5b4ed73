// Command collab-cli is a terminal client for the collaboration
// backend: it joins a trip room by share code and relays chat between
// stdin and the room.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/client"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"
	"github.com/FlyingWhaleisME/where-to-next-sub001/internal/utils"
)

func main() {
	_ = utils.LoadEnv()

	server := flag.String("server", utils.GetEnv("COLLAB_SERVER", "http://localhost:3001"), "backend base URL")
	token := flag.String("token", utils.GetEnv("COLLAB_TOKEN", ""), "JWT credential")
	room := flag.String("room", "", "room id or share code to join")
	userID := flag.String("user", "", "user id")
	name := flag.String("name", "traveler", "display name")
	creator := flag.Bool("creator", false, "join as the room creator")
	flag.Parse()

	if *token == "" || *room == "" || *userID == "" {
		fmt.Fprintln(os.Stderr, "usage: collab-cli -token <jwt> -room <share-code> -user <id> [-name <name>]")
		os.Exit(2)
	}

	c, err := client.New(client.Config{
		ServerURL: *server,
		Tokens:    client.NewMemoryTokenStore(*token),
		Sessions:  client.NewMemorySessionCache(),
	})
	if err != nil {
		log.Fatal(err)
	}

	c.RegisterCallbacks(client.Callbacks{
		OnConnectionChange: func(connected bool) {
			fmt.Printf("* connection: %v\n", connected)
		},
		OnError: func(message string) {
			fmt.Printf("! %s\n", message)
		},
		OnChatMessage: func(m models.ChatMessage) {
			fmt.Printf("<%s> %s\n", m.Sender.Name, m.Text)
		},
		OnChatHistory: func(ms []models.ChatMessage) {
			for _, m := range ms {
				fmt.Printf("<%s> %s\n", m.Sender.Name, m.Text)
			}
		},
		OnRoomJoined: func(roomID string) {
			fmt.Printf("* joined room %s\n", roomID)
		},
		OnUserJoined: func(u models.RoomUser) {
			fmt.Printf("* %s joined\n", u.Name)
		},
		OnUserLeft: func(id string) {
			fmt.Printf("* %s left\n", id)
		},
		OnRoomDeleted: func(roomID, reason string) {
			fmt.Printf("* room %s deleted: %s\n", roomID, reason)
		},
		OnUserTyping: func(id string, isTyping bool) {
			if isTyping {
				fmt.Printf("* %s is typing...\n", id)
			}
		},
	})

	if err := c.JoinRoom(*room, *userID, *name, *creator); err != nil {
		log.Fatal(err)
	}
	defer c.Disconnect()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit":
			return
		case "/who":
			for _, u := range c.Users() {
				status := "offline"
				if u.IsOnline {
					status = "online"
				}
				fmt.Printf("  %s (%s)\n", u.Name, status)
			}
			continue
		}
		if err := c.SendChatMessage(line); err != nil {
			fmt.Printf("! %v\n", err)
		}
	}
}
