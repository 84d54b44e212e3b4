package models

// Code is a wire-level error code returned inside a failed ack.
// Codes double as error values so the stores and the coordinator can
// return them directly up the call chain.
type Code string

const (
	CodeMissingFields     Code = "MISSING_FIELDS"
	CodeRoomExists        Code = "ROOM_EXISTS"
	CodeRoomNotFound      Code = "ROOM_NOT_FOUND"
	CodeAlreadyInRoom     Code = "ALREADY_IN_ROOM"
	CodeWrongPassword     Code = "WRONG_PASSWORD"
	CodeNotAMember        Code = "NOT_A_MEMBER"
	CodePeerAlreadyInRoom Code = "PEER_ALREADY_IN_ROOM"
	CodePeerOffline       Code = "PEER_OFFLINE"
	CodeInviteNotFound    Code = "INVITE_NOT_FOUND"
	CodeUnauthorized      Code = "UNAUTHORIZED"
	CodeAlreadyInUse      Code = "ALREADY_IN_USE"
	CodeUnknownEvent      Code = "UNKNOWN_EVENT"
	CodeInternal          Code = "INTERNAL_ERROR"
)

func (c Code) Error() string { return string(c) }
