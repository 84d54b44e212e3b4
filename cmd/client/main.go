// Command client is a small interactive websocket client for poking at
// a running relay: register an identity, drive room commands from
// stdin, and watch server pushes as they arrive.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"

	"relaygo/backend/internal/models"
)

func main() {
	addr := flag.String("addr", "localhost:8080", "relay host:port")
	id := flag.String("id", "", "identity to register (required)")
	flag.Parse()

	if *id == "" {
		fmt.Fprintln(os.Stderr, "usage: client -id <identity> [-addr host:port]")
		os.Exit(2)
	}

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws", RawQuery: "id=" + url.QueryEscape(*id)}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		color.Red.Printf("dial %s: %v\n", u.String(), err)
		os.Exit(1)
	}
	defer conn.Close()

	go readLoop(conn)

	printHelp()
	var seq int64
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		frame, ok := parseCommand(scanner.Text())
		if !ok {
			printHelp()
			continue
		}
		seq++
		frame.Seq = seq
		if err := conn.WriteJSON(frame); err != nil {
			color.Red.Printf("write: %v\n", err)
			return
		}
	}
}

type outFrame struct {
	Event string `json:"event"`
	Seq   int64  `json:"seq"`
	Data  any    `json:"data"`
}

func parseCommand(line string) (outFrame, bool) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return outFrame{}, false
	}

	arg := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}

	switch fields[0] {
	case "/exists":
		return outFrame{Event: models.EventRoomExists, Data: models.RoomExistsRequest{RoomID: arg(1)}}, arg(1) != ""
	case "/create":
		return outFrame{Event: models.EventRoomCreate, Data: models.RoomCreateRequest{RoomID: arg(1), Password: arg(2)}}, arg(1) != ""
	case "/join":
		return outFrame{Event: models.EventRoomJoin, Data: models.RoomJoinRequest{RoomID: arg(1), Password: arg(2)}}, arg(1) != ""
	case "/invite":
		return outFrame{Event: models.EventRoomInvite, Data: models.RoomInviteRequest{RoomID: arg(1), PeerID: arg(2)}}, arg(2) != ""
	case "/accept":
		return outFrame{Event: models.EventRoomAccept, Data: models.InviteActionRequest{InviteID: arg(1)}}, arg(1) != ""
	case "/reject":
		return outFrame{Event: models.EventRoomReject, Data: models.InviteActionRequest{InviteID: arg(1)}}, arg(1) != ""
	case "/leave":
		return outFrame{Event: models.EventRoomLeave, Data: models.RoomLeaveRequest{RoomID: arg(1)}}, arg(1) != ""
	case "/send":
		text := strings.Join(fields[2:], " ")
		return outFrame{Event: models.EventRoomSend, Data: models.RoomSendRequest{RoomID: arg(1), Text: text}}, arg(1) != "" && text != ""
	default:
		return outFrame{}, false
	}
}

func readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			color.Red.Printf("connection closed: %v\n", err)
			os.Exit(0)
		}

		var ev models.ServerEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			color.Yellow.Printf("unparseable frame: %s\n", raw)
			continue
		}

		data, _ := json.Marshal(ev.Data)
		switch ev.Event {
		case models.EventAck:
			color.Cyan.Printf("ack #%d %s\n", ev.Seq, data)
		case models.EventRoomMessage:
			color.Green.Printf("%s %s\n", ev.Event, data)
		case models.EventUserError:
			color.Red.Printf("%s %s\n", ev.Event, data)
		default:
			color.Gray.Printf("%s %s\n", ev.Event, data)
		}
	}
}

func printHelp() {
	fmt.Println(`commands:
  /exists <room>
  /create <room> [password]
  /join   <room> [password]
  /invite <room> <peer>
  /accept <inviteId>
  /reject <inviteId>
  /leave  <room>
  /send   <room> <text...>`)
}
