// Package storage owns the relay's passive in-memory state: rooms with
// their membership sets, the reverse membership index, and pending
// invites. It holds no business logic and no locks; the coordinator is
// its only caller and serializes every access.
package storage

import (
	"sort"

	"github.com/samber/lo"

	"relaygo/backend/internal/models"
)

// Store is the state surface the session coordinator mutates.
type Store interface {
	// RoomExists reports whether roomID exists and whether it is
	// password protected. Pure lookup, no side effects.
	RoomExists(roomID string) (exists, locked bool)
	// CreateRoom creates roomID with creator as sole member. Returns
	// models.CodeRoomExists if the key is already taken.
	CreateRoom(roomID, password, creator string) (members []string, locked bool, err error)
	// JoinRoom adds identity to roomID. Checks run in order: existence,
	// current membership, password equality.
	JoinRoom(roomID, password, identity string) (members []string, locked bool, err error)
	// AddMember inserts identity into an existing room, idempotently.
	// Reports false if the room does not exist.
	AddMember(roomID, identity string) (members []string, ok bool)
	// LeaveRoom removes identity from roomID. Removed is false when the
	// room did not exist or identity was not a member; the room is
	// deleted when its last member leaves.
	LeaveRoom(roomID, identity string) (removed bool, remaining []string)
	// Members returns the sorted member list of roomID.
	Members(roomID string) (members []string, ok bool)
	// IsMember reports whether identity belongs to roomID.
	IsMember(roomID, identity string) bool
	// RoomLocked reports the password flag of an existing room.
	RoomLocked(roomID string) bool
	// RoomsOf returns the room keys identity currently belongs to.
	RoomsOf(identity string) []string
	// RemoveFromAllRooms cascades identity out of every room it belongs
	// to and clears its index entry, reporting one Removal per room.
	RemoveFromAllRooms(identity string) []Removal
	// RoomCount returns the number of live rooms.
	RoomCount() int

	// AddInvite stores a pending invite under its token.
	AddInvite(inv *models.Invite)
	// Invite looks up a pending invite without consuming it.
	Invite(id string) (*models.Invite, bool)
	// TakeInvite consumes a pending invite.
	TakeInvite(id string) (*models.Invite, bool)
	// DropInvitesFor discards every pending invite where identity is
	// proposer or target.
	DropInvitesFor(identity string)
}

// Removal records one step of a disconnect or leave cascade.
type Removal struct {
	RoomID    string
	Remaining []string
	Deleted   bool
}

type room struct {
	members  map[string]struct{}
	password string
	locked   bool
}

// Service is the in-memory Store implementation. Not safe for
// concurrent use on its own: the coordinator's mutex is the single
// serialization point.
type Service struct {
	rooms   map[string]*room
	index   map[string]map[string]struct{} // identity -> room keys
	invites map[string]*models.Invite
}

func NewService() *Service {
	return &Service{
		rooms:   make(map[string]*room),
		index:   make(map[string]map[string]struct{}),
		invites: make(map[string]*models.Invite),
	}
}

func (s *Service) RoomExists(roomID string) (bool, bool) {
	r, ok := s.rooms[roomID]
	if !ok {
		return false, false
	}
	return true, r.locked
}

func (s *Service) CreateRoom(roomID, password, creator string) ([]string, bool, error) {
	if _, taken := s.rooms[roomID]; taken {
		return nil, false, models.CodeRoomExists
	}
	r := &room{
		members:  map[string]struct{}{creator: {}},
		password: password,
		locked:   password != "",
	}
	s.rooms[roomID] = r
	s.indexAdd(creator, roomID)
	return s.memberList(r), r.locked, nil
}

func (s *Service) JoinRoom(roomID, password, identity string) ([]string, bool, error) {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, false, models.CodeRoomNotFound
	}
	if _, member := r.members[identity]; member {
		return nil, false, models.CodeAlreadyInRoom
	}
	// Exact match; an unlocked room requires an empty password.
	if r.password != password {
		return nil, false, models.CodeWrongPassword
	}
	r.members[identity] = struct{}{}
	s.indexAdd(identity, roomID)
	return s.memberList(r), r.locked, nil
}

func (s *Service) AddMember(roomID, identity string) ([]string, bool) {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, false
	}
	if _, member := r.members[identity]; !member {
		r.members[identity] = struct{}{}
		s.indexAdd(identity, roomID)
	}
	return s.memberList(r), true
}

func (s *Service) LeaveRoom(roomID, identity string) (bool, []string) {
	r, ok := s.rooms[roomID]
	if !ok {
		return false, nil
	}
	if _, member := r.members[identity]; !member {
		return false, nil
	}
	delete(r.members, identity)
	s.indexDrop(identity, roomID)
	if len(r.members) == 0 {
		delete(s.rooms, roomID)
		return true, nil
	}
	return true, s.memberList(r)
}

func (s *Service) Members(roomID string) ([]string, bool) {
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, false
	}
	return s.memberList(r), true
}

func (s *Service) IsMember(roomID, identity string) bool {
	r, ok := s.rooms[roomID]
	if !ok {
		return false
	}
	_, member := r.members[identity]
	return member
}

func (s *Service) RoomLocked(roomID string) bool {
	r, ok := s.rooms[roomID]
	return ok && r.locked
}

func (s *Service) RoomsOf(identity string) []string {
	keys := lo.Keys(s.index[identity])
	sort.Strings(keys)
	return keys
}

func (s *Service) RemoveFromAllRooms(identity string) []Removal {
	var removals []Removal
	for _, roomID := range s.RoomsOf(identity) {
		removed, remaining := s.LeaveRoom(roomID, identity)
		if !removed {
			continue
		}
		removals = append(removals, Removal{
			RoomID:    roomID,
			Remaining: remaining,
			Deleted:   len(remaining) == 0,
		})
	}
	delete(s.index, identity)
	return removals
}

func (s *Service) RoomCount() int { return len(s.rooms) }

func (s *Service) AddInvite(inv *models.Invite) {
	s.invites[inv.ID] = inv
}

func (s *Service) Invite(id string) (*models.Invite, bool) {
	inv, ok := s.invites[id]
	return inv, ok
}

func (s *Service) TakeInvite(id string) (*models.Invite, bool) {
	inv, ok := s.invites[id]
	if ok {
		delete(s.invites, id)
	}
	return inv, ok
}

func (s *Service) DropInvitesFor(identity string) {
	for id, inv := range s.invites {
		if inv.FromID == identity || inv.ToID == identity {
			delete(s.invites, id)
		}
	}
}

func (s *Service) memberList(r *room) []string {
	members := lo.Keys(r.members)
	sort.Strings(members)
	return members
}

func (s *Service) indexAdd(identity, roomID string) {
	if _, ok := s.index[identity]; !ok {
		s.index[identity] = make(map[string]struct{})
	}
	s.index[identity][roomID] = struct{}{}
}

func (s *Service) indexDrop(identity, roomID string) {
	if rooms, ok := s.index[identity]; ok {
		delete(rooms, roomID)
		if len(rooms) == 0 {
			delete(s.index, identity)
		}
	}
}
