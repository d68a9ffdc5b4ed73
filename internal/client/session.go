package client

import "github.com/FlyingWhaleisME/where-to-next-sub001/internal/models"

// intentState is the lifecycle of the single pending join intent. A
// join requested while the connection is not yet open parks here and
// is flushed exactly once when the transport opens.
type intentState int

const (
	intentNone intentState = iota
	intentPending
	intentFlushed
)

// joinIntent holds the parameters of a parked join request.
type joinIntent struct {
	RoomID    string
	UserID    string
	UserName  string
	IsCreator bool
}

// roomSession tracks which room the client belongs to, the membership
// roster, and the typing set. Not safe for concurrent use; the owning
// Client guards it.
type roomSession struct {
	roomID    string
	userID    string
	userName  string
	isCreator bool

	roster map[string]models.RoomUser
	order  []string
	typing map[string]bool

	intent      joinIntent
	intentState intentState
}

func newRoomSession() *roomSession {
	return &roomSession{
		roster: make(map[string]models.RoomUser),
		typing: make(map[string]bool),
	}
}

func (s *roomSession) active() bool { return s.roomID != "" }

// setPendingIntent parks a join request. A second request while one is
// pending supersedes it; the caller decides whether that deserves a
// notification.
func (s *roomSession) setPendingIntent(intent joinIntent) (superseded joinIntent, didSupersede bool) {
	if s.intentState == intentPending && s.intent.RoomID != intent.RoomID {
		superseded = s.intent
		didSupersede = true
	}
	s.intent = intent
	s.intentState = intentPending
	return superseded, didSupersede
}

// takePendingIntent consumes the parked intent, transitioning it to
// flushed. Returns false if nothing was pending.
func (s *roomSession) takePendingIntent() (joinIntent, bool) {
	if s.intentState != intentPending {
		return joinIntent{}, false
	}
	s.intentState = intentFlushed
	return s.intent, true
}

func (s *roomSession) clearIntent() {
	s.intent = joinIntent{}
	s.intentState = intentNone
}

// enterRoom records the active room and local identity after a join
// frame has been sent.
func (s *roomSession) enterRoom(intent joinIntent) {
	s.roomID = intent.RoomID
	s.userID = intent.UserID
	s.userName = intent.UserName
	s.isCreator = intent.IsCreator
}

// upsertUser applies a user_joined frame. Existing entries are updated
// in place; roster ids stay unique.
func (s *roomSession) upsertUser(u models.RoomUser) {
	if _, known := s.roster[u.ID]; !known {
		s.order = append(s.order, u.ID)
	}
	s.roster[u.ID] = u
}

// markOffline applies a user_left frame. The entry is retained so the
// roster keeps showing who has been in the room; the next room_users
// frame is the authority on actual membership.
func (s *roomSession) markOffline(userID string) {
	u, known := s.roster[userID]
	if !known {
		return
	}
	u.IsOnline = false
	s.roster[userID] = u
	delete(s.typing, userID)
}

// replaceRoster adopts an authoritative room_users frame wholesale.
// Merging would resurrect entries the server has dropped, so the old
// roster is discarded entirely.
func (s *roomSession) replaceRoster(users []models.RoomUser) {
	s.roster = make(map[string]models.RoomUser, len(users))
	s.order = s.order[:0]
	for _, u := range users {
		if _, dup := s.roster[u.ID]; dup {
			continue
		}
		s.roster[u.ID] = u
		s.order = append(s.order, u.ID)
	}
	for id := range s.typing {
		if _, present := s.roster[id]; !present {
			delete(s.typing, id)
		}
	}
}

func (s *roomSession) setTyping(userID string, isTyping bool) {
	if isTyping {
		s.typing[userID] = true
		return
	}
	delete(s.typing, userID)
}

func (s *roomSession) users() []models.RoomUser {
	out := make([]models.RoomUser, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.roster[id])
	}
	return out
}

func (s *roomSession) typingUsers() []string {
	out := make([]string, 0, len(s.typing))
	for _, id := range s.order {
		if s.typing[id] {
			out = append(out, id)
		}
	}
	return out
}

// reset clears the room, roster and typing set. Used by deliberate
// disconnects and room exits; there is no undo.
func (s *roomSession) reset() {
	s.roomID = ""
	s.userID = ""
	s.userName = ""
	s.isCreator = false
	s.roster = make(map[string]models.RoomUser)
	s.order = nil
	s.typing = make(map[string]bool)
	s.clearIntent()
}
