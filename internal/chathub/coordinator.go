// Package chathub coordinates connected identities, room membership,
// and pending invites for the relay. The CoordinatorService is the
// only component with business logic; the stores it drives are passive.
package chathub

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"relaygo/backend/internal/models"
	"relaygo/backend/internal/notice"
	"relaygo/backend/internal/storage"
)

// CoordinatorService owns all relay state: the identity registry
// (clients map) plus the room and invite stores. Every mutation runs
// under one mutex, so a single inbound event is fully processed,
// broadcasts included, before the next one starts.
type CoordinatorService struct {
	mu       sync.Mutex
	clients  map[string]Client // identity registry: identity -> live connection
	store    storage.Store
	ids      *IDSource
	validate *validator.Validate
	log      *slog.Logger
}

func NewCoordinatorService(store storage.Store, log *slog.Logger) *CoordinatorService {
	return &CoordinatorService{
		clients:  make(map[string]Client),
		store:    store,
		ids:      NewIDSource(),
		validate: validator.New(),
		log:      log,
	}
}

// Register binds the client's identity to its connection. A live
// duplicate is rejected: the new connection gets a user:error push and
// is closed. A stale slot, left by a connection that died before its
// disconnect cleanup fired, is silently reclaimed.
func (s *CoordinatorService) Register(c Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity := c.GetUserID()
	if existing, ok := s.clients[identity]; ok && existing != c {
		if existing.Alive() {
			s.push(c, models.ServerEvent{
				Event: models.EventUserError,
				Data:  models.UserError{Error: string(models.CodeAlreadyInUse)},
			})
			c.Close()
			s.log.Warn("identity already in use", "identity", identity)
			return models.CodeAlreadyInUse
		}
		s.log.Info("reclaimed stale identity slot", "identity", identity)
	}

	s.clients[identity] = c
	s.push(c, models.ServerEvent{
		Event: models.EventUserRegistered,
		Data:  models.Registered{ID: identity},
	})
	s.log.Info("client registered", "identity", identity)
	return nil
}

// Unregister runs the disconnect cascade for c. The registry slot is
// released only if it still points at this connection; when it does
// not (the slot was reclaimed, or c was a rejected duplicate), the
// identity's state belongs to another live connection and is left
// untouched. Otherwise the identity is removed from every room it
// belongs to, emptied rooms are deleted, remaining members get a
// disconnect notice, and all of the identity's pending invites are
// silently discarded.
func (s *CoordinatorService) Unregister(c Client) {
	s.mu.Lock()
	defer s.mu.Unlock()

	identity := c.GetUserID()
	current, ok := s.clients[identity]
	if !ok || current != c {
		return
	}
	delete(s.clients, identity)

	at := nowMillis()
	for _, rm := range s.store.RemoveFromAllRooms(identity) {
		if rm.Deleted {
			continue
		}
		s.notify(rm.Remaining, models.ServerEvent{
			Event: models.EventRoomSystem,
			Data: models.SystemNotice{
				RoomID: rm.RoomID,
				Text:   notice.Disconnected(identity),
				At:     at,
			},
		})
	}
	s.store.DropInvitesFor(identity)
	s.log.Info("client unregistered", "identity", identity)
}

// Dispatch processes one inbound event from c and, when the frame
// requested one, sends the ack back on c's channel. Unexpected faults
// inside a handler are converted to a generic failure ack instead of
// crossing the coordinator boundary.
func (s *CoordinatorService) Dispatch(c Client, frame models.ClientFrame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Only the registered holder of an identity may act as it. Frames
	// from any other connection (a rejected duplicate, or a dead
	// connection whose slot was reclaimed) are dropped unprocessed.
	if current, ok := s.clients[c.GetUserID()]; !ok || current != c {
		s.log.Warn("dropping frame from unregistered connection", "identity", c.GetUserID(), "event", frame.Event)
		return
	}

	data := s.handle(c, frame)
	if frame.Seq > 0 {
		s.push(c, models.ServerEvent{Event: models.EventAck, Seq: frame.Seq, Data: data})
	}
}

// Stats returns the current client and room counts.
func (s *CoordinatorService) Stats() (clients, rooms int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients), s.store.RoomCount()
}

func (s *CoordinatorService) handle(c Client, frame models.ClientFrame) (data any) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("event handler panicked", "event", frame.Event, "panic", r)
			data = errAck(models.CodeInternal)
		}
	}()

	switch frame.Event {
	case models.EventRoomExists:
		return s.roomExists(frame.Data)
	case models.EventRoomCreate:
		return s.roomCreate(c, frame.Data)
	case models.EventRoomJoin:
		return s.roomJoin(c, frame.Data)
	case models.EventRoomInvite:
		return s.roomInvite(c, frame.Data)
	case models.EventRoomAccept:
		return s.roomAccept(c, frame.Data)
	case models.EventRoomReject:
		return s.roomReject(c, frame.Data)
	case models.EventRoomLeave:
		return s.roomLeave(c, frame.Data)
	case models.EventRoomSend:
		return s.roomSend(c, frame.Data)
	default:
		s.log.Warn("unknown event", "event", frame.Event, "identity", c.GetUserID())
		return errAck(models.CodeUnknownEvent)
	}
}

func (s *CoordinatorService) roomExists(raw json.RawMessage) any {
	var req models.RoomExistsRequest
	if err := s.decode(raw, &req); err != nil {
		return errAck(models.CodeMissingFields)
	}
	req.RoomID = models.NormalizeKey(req.RoomID)
	if err := s.validate.Struct(req); err != nil {
		return errAck(models.CodeMissingFields)
	}
	exists, locked := s.store.RoomExists(req.RoomID)
	return models.RoomExistsAck{OK: true, Exists: exists, Locked: locked}
}

func (s *CoordinatorService) roomCreate(c Client, raw json.RawMessage) any {
	var req models.RoomCreateRequest
	if err := s.decode(raw, &req); err != nil {
		return errAck(models.CodeMissingFields)
	}
	req.RoomID = models.NormalizeKey(req.RoomID)
	if err := s.validate.Struct(req); err != nil {
		return errAck(models.CodeMissingFields)
	}

	identity := c.GetUserID()
	members, locked, err := s.store.CreateRoom(req.RoomID, req.Password, identity)
	if err != nil {
		return errAckFrom(err)
	}

	s.systemNotice(req.RoomID, members, notice.Created(identity))
	s.log.Info("room created", "room", req.RoomID, "identity", identity, "locked", locked)
	return models.RoomAck{OK: true, RoomID: req.RoomID, Members: members, Locked: locked}
}

func (s *CoordinatorService) roomJoin(c Client, raw json.RawMessage) any {
	var req models.RoomJoinRequest
	if err := s.decode(raw, &req); err != nil {
		return errAck(models.CodeMissingFields)
	}
	req.RoomID = models.NormalizeKey(req.RoomID)
	if err := s.validate.Struct(req); err != nil {
		return errAck(models.CodeMissingFields)
	}

	identity := c.GetUserID()
	members, locked, err := s.store.JoinRoom(req.RoomID, req.Password, identity)
	if err != nil {
		return errAckFrom(err)
	}

	s.systemNotice(req.RoomID, members, notice.Joined(identity))
	s.log.Info("room joined", "room", req.RoomID, "identity", identity)
	return models.RoomAck{OK: true, RoomID: req.RoomID, Members: members, Locked: locked}
}

func (s *CoordinatorService) roomInvite(c Client, raw json.RawMessage) any {
	var req models.RoomInviteRequest
	if err := s.decode(raw, &req); err != nil {
		return errAck(models.CodeMissingFields)
	}
	req.RoomID = models.NormalizeKey(req.RoomID)
	req.PeerID = models.NormalizeKey(req.PeerID)
	if err := s.validate.Struct(req); err != nil {
		return errAck(models.CodeMissingFields)
	}

	identity := c.GetUserID()
	if exists, _ := s.store.RoomExists(req.RoomID); !exists {
		return errAck(models.CodeRoomNotFound)
	}
	if !s.store.IsMember(req.RoomID, identity) {
		return errAck(models.CodeNotAMember)
	}
	if s.store.IsMember(req.RoomID, req.PeerID) {
		return errAck(models.CodePeerAlreadyInRoom)
	}
	peer, online := s.lookupLive(req.PeerID)
	if !online {
		return errAck(models.CodePeerOffline)
	}

	inv := &models.Invite{
		ID:        s.ids.Next("inv"),
		RoomID:    req.RoomID,
		FromID:    identity,
		ToID:      req.PeerID,
		CreatedAt: time.Now(),
	}
	s.store.AddInvite(inv)
	s.push(peer, models.ServerEvent{
		Event: models.EventRoomIncoming,
		Data: models.IncomingInvite{
			InviteID: inv.ID,
			RoomID:   inv.RoomID,
			FromID:   inv.FromID,
			At:       inv.CreatedAt.UnixMilli(),
		},
	})
	s.log.Info("invite issued", "invite", inv.ID, "room", inv.RoomID, "from", inv.FromID, "to", inv.ToID)
	return models.InviteAck{OK: true, InviteID: inv.ID}
}

func (s *CoordinatorService) roomAccept(c Client, raw json.RawMessage) any {
	var req models.InviteActionRequest
	if err := s.decode(raw, &req); err != nil {
		return errAck(models.CodeMissingFields)
	}
	if err := s.validate.Struct(req); err != nil {
		return errAck(models.CodeMissingFields)
	}

	identity := c.GetUserID()
	inv, ok := s.store.Invite(req.InviteID)
	if !ok {
		return errAck(models.CodeInviteNotFound)
	}
	// Not the target's invite to consume.
	if inv.ToID != identity {
		return errAck(models.CodeUnauthorized)
	}

	// Single use: the token is burned no matter how the checks below
	// turn out.
	s.store.TakeInvite(req.InviteID)

	if exists, _ := s.store.RoomExists(inv.RoomID); !exists {
		return errAck(models.CodeRoomNotFound)
	}
	// Liveness at the moment of use: either party may have gone
	// offline since the invite was issued.
	if _, online := s.lookupLive(inv.FromID); !online {
		return errAck(models.CodePeerOffline)
	}
	if !c.Alive() {
		return errAck(models.CodePeerOffline)
	}

	// The proposer may already be a member; AddMember is idempotent.
	s.store.AddMember(inv.RoomID, inv.FromID)
	members, _ := s.store.AddMember(inv.RoomID, identity)
	locked := s.store.RoomLocked(inv.RoomID)

	s.systemNotice(inv.RoomID, members, notice.Accepted(identity, inv.FromID))
	s.log.Info("invite accepted", "invite", inv.ID, "room", inv.RoomID, "identity", identity)
	return models.RoomAck{OK: true, RoomID: inv.RoomID, Members: members, Locked: locked}
}

func (s *CoordinatorService) roomReject(c Client, raw json.RawMessage) any {
	// Always acknowledged ok, even on a malformed payload or an
	// unknown token.
	var req models.InviteActionRequest
	if err := s.decode(raw, &req); err != nil {
		return models.EmptyAck{OK: true}
	}

	identity := c.GetUserID()
	inv, ok := s.store.Invite(req.InviteID)
	if !ok || inv.ToID != identity {
		return models.EmptyAck{OK: true}
	}

	s.store.TakeInvite(req.InviteID)
	if proposer, online := s.lookupLive(inv.FromID); online {
		s.push(proposer, models.ServerEvent{
			Event: models.EventRoomRejected,
			Data: models.InviteRejected{
				InviteID: inv.ID,
				By:       identity,
				At:       nowMillis(),
			},
		})
	}
	s.log.Info("invite rejected", "invite", inv.ID, "by", identity)
	return models.EmptyAck{OK: true}
}

func (s *CoordinatorService) roomLeave(c Client, raw json.RawMessage) any {
	var req models.RoomLeaveRequest
	if err := s.decode(raw, &req); err != nil {
		return errAck(models.CodeMissingFields)
	}
	req.RoomID = models.NormalizeKey(req.RoomID)
	if err := s.validate.Struct(req); err != nil {
		return errAck(models.CodeMissingFields)
	}

	identity := c.GetUserID()
	// Leaving a room you are not in, or one that does not exist, is a
	// silent ok.
	removed, remaining := s.store.LeaveRoom(req.RoomID, identity)
	if removed && len(remaining) > 0 {
		s.systemNotice(req.RoomID, remaining, notice.Left(identity))
	}
	if removed {
		s.log.Info("room left", "room", req.RoomID, "identity", identity)
	}
	return models.EmptyAck{OK: true}
}

func (s *CoordinatorService) roomSend(c Client, raw json.RawMessage) any {
	var req models.RoomSendRequest
	if err := s.decode(raw, &req); err != nil {
		return errAck(models.CodeMissingFields)
	}
	req.RoomID = models.NormalizeKey(req.RoomID)
	if err := s.validate.Struct(req); err != nil {
		return errAck(models.CodeMissingFields)
	}

	identity := c.GetUserID()
	if !s.store.IsMember(req.RoomID, identity) {
		return errAck(models.CodeNotAMember)
	}

	msg := models.RoomMessage{
		ID:     s.ids.Next("msg"),
		RoomID: req.RoomID,
		From:   identity,
		Text:   models.Clip(req.Text, models.MaxMessageLen),
		At:     nowMillis(),
	}
	members, _ := s.store.Members(req.RoomID)
	s.notify(members, models.ServerEvent{Event: models.EventRoomMessage, Data: msg})
	return models.SendAck{OK: true, ID: msg.ID}
}

// lookupLive resolves an identity to its connection, re-validating
// liveness at the moment of use.
func (s *CoordinatorService) lookupLive(identity string) (Client, bool) {
	c, ok := s.clients[identity]
	if !ok || !c.Alive() {
		return nil, false
	}
	return c, true
}

// systemNotice broadcasts a room:system event to the given members.
func (s *CoordinatorService) systemNotice(roomID string, members []string, text string) {
	s.notify(members, models.ServerEvent{
		Event: models.EventRoomSystem,
		Data:  models.SystemNotice{RoomID: roomID, Text: text, At: nowMillis()},
	})
}

// notify fans an event out to every listed identity with a live
// connection.
func (s *CoordinatorService) notify(members []string, ev models.ServerEvent) {
	for _, identity := range members {
		if c, ok := s.lookupLive(identity); ok {
			s.push(c, ev)
		}
	}
}

// push writes ev to the client's send channel without blocking the
// coordinator. Delivery is best effort: a full buffer drops the event.
func (s *CoordinatorService) push(c Client, ev models.ServerEvent) {
	select {
	case c.GetSendChannel() <- ev:
	default:
		s.log.Warn("send buffer full, dropping event", "identity", c.GetUserID(), "event", ev.Event)
	}
}

func (s *CoordinatorService) decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(raw, v)
}

func errAck(code models.Code) models.ErrorAck {
	return models.ErrorAck{OK: false, Error: string(code)}
}

func errAckFrom(err error) models.ErrorAck {
	var code models.Code
	if errors.As(err, &code) {
		return errAck(code)
	}
	return errAck(models.CodeInternal)
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}
