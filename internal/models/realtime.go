package models

import "encoding/json"

// Event names exchanged over the websocket. Inbound events carry an
// optional seq for ack correlation; server pushes never do.
const (
	EventAck = "ack"

	EventRoomExists = "room:exists"
	EventRoomCreate = "room:create"
	EventRoomJoin   = "room:join"
	EventRoomInvite = "room:invite"
	EventRoomAccept = "room:accept"
	EventRoomReject = "room:reject"
	EventRoomLeave  = "room:leave"
	EventRoomSend   = "room:send"

	EventUserRegistered = "user:registered"
	EventUserError      = "user:error"
	EventRoomSystem     = "room:system"
	EventRoomIncoming   = "room:incoming"
	EventRoomRejected   = "room:rejected"
	EventRoomMessage    = "room:message"
)

// ClientFrame is one inbound websocket frame. Seq > 0 means the client
// expects an ack frame carrying the same seq.
type ClientFrame struct {
	Event string          `json:"event"`
	Seq   int64           `json:"seq,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// ServerEvent is one outbound websocket frame: either an ack (Event ==
// EventAck, Seq echoing the request) or a server push.
type ServerEvent struct {
	Event string `json:"event"`
	Seq   int64  `json:"seq,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Inbound payloads. Validator tags mirror the identifier limits: keys
// are required and at most 64 characters.

type RoomExistsRequest struct {
	RoomID string `json:"roomId" validate:"required,max=64"`
}

type RoomCreateRequest struct {
	RoomID   string `json:"roomId" validate:"required,max=64"`
	Password string `json:"password,omitempty"`
}

type RoomJoinRequest struct {
	RoomID   string `json:"roomId" validate:"required,max=64"`
	Password string `json:"password,omitempty"`
}

type RoomInviteRequest struct {
	RoomID string `json:"roomId" validate:"required,max=64"`
	PeerID string `json:"peerId" validate:"required,max=64"`
}

type InviteActionRequest struct {
	InviteID string `json:"inviteId" validate:"required"`
}

type RoomLeaveRequest struct {
	RoomID string `json:"roomId" validate:"required,max=64"`
}

type RoomSendRequest struct {
	RoomID string `json:"roomId" validate:"required,max=64"`
	Text   string `json:"text" validate:"required"`
}

// Ack payloads.

type ErrorAck struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

type EmptyAck struct {
	OK bool `json:"ok"`
}

type RoomExistsAck struct {
	OK     bool `json:"ok"`
	Exists bool `json:"exists"`
	Locked bool `json:"locked"`
}

type RoomAck struct {
	OK      bool     `json:"ok"`
	RoomID  string   `json:"roomId"`
	Members []string `json:"members"`
	Locked  bool     `json:"locked"`
}

type InviteAck struct {
	OK       bool   `json:"ok"`
	InviteID string `json:"inviteId"`
}

type SendAck struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

// Server push payloads. At is Unix milliseconds.

type Registered struct {
	ID string `json:"id"`
}

type UserError struct {
	Error string `json:"error"`
}

type SystemNotice struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
	At     int64  `json:"at"`
}

type IncomingInvite struct {
	InviteID string `json:"inviteId"`
	RoomID   string `json:"roomId"`
	FromID   string `json:"fromId"`
	At       int64  `json:"at"`
}

type InviteRejected struct {
	InviteID string `json:"inviteId"`
	By       string `json:"by"`
	At       int64  `json:"at"`
}

type RoomMessage struct {
	ID     string `json:"id"`
	RoomID string `json:"roomId"`
	From   string `json:"from"`
	Text   string `json:"text"`
	At     int64  `json:"at"`
}
