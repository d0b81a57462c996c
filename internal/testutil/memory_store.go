package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/apperr"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/models"
	"github.com/PLP-MERN-Stack-Development/mern-final-project-bece21-mkenani/internal/repository"
	"github.com/google/uuid"
)

// AdminScope is the scope recorded for calls made through the admin handle.
const AdminScope = "admin"

// Call records one repository call and the handle it went through.
type Call struct {
	Scope string
	Op    string
}

// MemoryStore is an in-memory repository.Factory for service and handler
// tests. Errors can be injected per operation name ("Members.Add", ...).
type MemoryStore struct {
	mu sync.Mutex

	Groups      map[string]*models.Group
	Members     map[string]map[string]bool
	Rooms       []models.GroupRoom
	Messages    map[int64]*models.Message
	Receipts    map[models.ReadReceipt]bool
	Levels      map[string]*models.EducationLevel
	Sessions    map[string]*models.ChatSession
	Users       map[string]*models.User
	nextMessage int64

	// LoseCAS makes the next n compare-and-swap calls fail their compare.
	LoseCAS int
	// OnLoseCAS, when set, runs while a compare is being lost so a test can
	// play the concurrent writer. It runs with the store locked and must
	// touch the maps directly.
	OnLoseCAS func(messageID int64)

	Fail  map[string]error
	Calls []Call
}

var _ repository.Factory = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		Groups:      make(map[string]*models.Group),
		Members:     make(map[string]map[string]bool),
		Messages:    make(map[int64]*models.Message),
		Receipts:    make(map[models.ReadReceipt]bool),
		Levels:      make(map[string]*models.EducationLevel),
		Sessions:    make(map[string]*models.ChatSession),
		Users:       make(map[string]*models.User),
		Fail:        make(map[string]error),
		nextMessage: 1,
	}
}

func (s *MemoryStore) Admin() *repository.Repositories {
	return s.bundle(AdminScope)
}

func (s *MemoryStore) ForUser(userID string) *repository.Repositories {
	return s.bundle(userID)
}

func (s *MemoryStore) bundle(scope string) *repository.Repositories {
	v := view{s: s, scope: scope}
	return &repository.Repositories{
		Groups:          groupRepo{v},
		Members:         memberRepo{v},
		Rooms:           roomRepo{v},
		Messages:        messageRepo{v},
		Receipts:        receiptRepo{v},
		EducationLevels: levelRepo{v},
		ChatSessions:    sessionRepo{v},
		Users:           userRepo{v},
	}
}

// CallsTo returns the scopes op was called with, in order.
func (s *MemoryStore) CallsTo(op string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var scopes []string
	for _, c := range s.Calls {
		if c.Op == op {
			scopes = append(scopes, c.Scope)
		}
	}
	return scopes
}

// AddGroup seeds a group and returns it.
func (s *MemoryStore) AddGroup(name string, adminGroup bool, memberIDs ...string) *models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := &models.Group{
		ID:           uuid.NewString(),
		Name:         name,
		IsAdminGroup: adminGroup,
		CreatedAt:    time.Now(),
	}
	s.Groups[g.ID] = g
	for _, id := range memberIDs {
		s.addMember(g.ID, id)
	}
	return g
}

// AddMessage seeds a message and returns its id.
func (s *MemoryStore) AddMessage(groupID, userID, content string, reactions models.Reactions) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reactions == nil {
		reactions = models.Reactions{}
	}
	id := s.nextMessage
	s.nextMessage++
	s.Messages[id] = &models.Message{
		ID:        id,
		GroupID:   groupID,
		RoomName:  models.DefaultRoom,
		UserID:    userID,
		Content:   content,
		Reactions: reactions,
		CreatedAt: time.Now().Add(time.Duration(id) * time.Millisecond),
	}
	return id
}

func (s *MemoryStore) ReactionsOf(messageID int64) models.Reactions {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.Messages[messageID]; ok {
		return m.Reactions.Clone()
	}
	return nil
}

func (s *MemoryStore) addMember(groupID, userID string) {
	if s.Members[groupID] == nil {
		s.Members[groupID] = make(map[string]bool)
	}
	s.Members[groupID][userID] = true
}

type view struct {
	s     *MemoryStore
	scope string
}

// begin locks the store and records the call. The returned error is the
// injected failure for op, if any.
func (v view) begin(op string) (func(), error) {
	v.s.mu.Lock()
	v.s.Calls = append(v.s.Calls, Call{Scope: v.scope, Op: op})
	return v.s.mu.Unlock, v.s.Fail[op]
}

type groupRepo struct{ view }

func (r groupRepo) List(context.Context) ([]models.Group, error) {
	done, err := r.begin("Groups.List")
	defer done()
	if err != nil {
		return nil, err
	}
	out := make([]models.Group, 0, len(r.s.Groups))
	for _, g := range r.s.Groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsAdminGroup != out[j].IsAdminGroup {
			return out[i].IsAdminGroup
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r groupRepo) FindByID(_ context.Context, id string) (*models.Group, error) {
	done, err := r.begin("Groups.FindByID")
	defer done()
	if err != nil {
		return nil, err
	}
	g, ok := r.s.Groups[id]
	if !ok {
		return nil, apperr.NotFound("group not found")
	}
	cp := *g
	return &cp, nil
}

func (r groupRepo) Create(_ context.Context, group *models.Group) error {
	done, err := r.begin("Groups.Create")
	defer done()
	if err != nil {
		return err
	}
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	group.CreatedAt = time.Now()
	cp := *group
	r.s.Groups[group.ID] = &cp
	return nil
}

type memberRepo struct{ view }

func (r memberRepo) Add(_ context.Context, groupID, userID string) error {
	done, err := r.begin("Members.Add")
	defer done()
	if err != nil {
		return err
	}
	if _, ok := r.s.Groups[groupID]; !ok {
		return apperr.NotFound("group not found")
	}
	if r.s.Members[groupID][userID] {
		return apperr.Conflict("membership already exists", "23505", nil)
	}
	r.s.addMember(groupID, userID)
	return nil
}

func (r memberRepo) Remove(_ context.Context, groupID, userID string) error {
	done, err := r.begin("Members.Remove")
	defer done()
	if err != nil {
		return err
	}
	delete(r.s.Members[groupID], userID)
	return nil
}

func (r memberRepo) IsMember(_ context.Context, groupID, userID string) (bool, error) {
	done, err := r.begin("Members.IsMember")
	defer done()
	if err != nil {
		return false, err
	}
	return r.s.Members[groupID][userID], nil
}

func (r memberRepo) GroupIDsForUser(_ context.Context, userID string) ([]string, error) {
	done, err := r.begin("Members.GroupIDsForUser")
	defer done()
	if err != nil {
		return nil, err
	}
	var ids []string
	for gid, members := range r.s.Members {
		if members[userID] {
			ids = append(ids, gid)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r memberRepo) UserIDsForGroup(_ context.Context, groupID string) ([]string, error) {
	done, err := r.begin("Members.UserIDsForGroup")
	defer done()
	if err != nil {
		return nil, err
	}
	var ids []string
	for uid := range r.s.Members[groupID] {
		ids = append(ids, uid)
	}
	sort.Strings(ids)
	return ids, nil
}

type roomRepo struct{ view }

func (r roomRepo) ListByGroup(_ context.Context, groupID string) ([]models.GroupRoom, error) {
	done, err := r.begin("Rooms.ListByGroup")
	defer done()
	if err != nil {
		return nil, err
	}
	var out []models.GroupRoom
	for _, room := range r.s.Rooms {
		if room.GroupID == groupID {
			out = append(out, room)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomName < out[j].RoomName })
	return out, nil
}

type messageRepo struct{ view }

func (r messageRepo) ListByRoom(_ context.Context, groupID, room string, limit int) ([]models.Message, error) {
	done, err := r.begin("Messages.ListByRoom")
	defer done()
	if err != nil {
		return nil, err
	}
	out := []models.Message{}
	for _, m := range r.s.Messages {
		if m.GroupID == groupID && m.RoomName == room {
			cp := *m
			if u, ok := r.s.Users[m.UserID]; ok {
				cp.Author = &models.Author{ID: u.ID, Name: u.Name}
			}
			out = append(out, cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r messageRepo) Create(_ context.Context, message *models.Message) error {
	done, err := r.begin("Messages.Create")
	defer done()
	if err != nil {
		return err
	}
	message.ID = r.s.nextMessage
	r.s.nextMessage++
	message.CreatedAt = time.Now()
	cp := *message
	cp.Reactions = message.Reactions.Clone()
	r.s.Messages[message.ID] = &cp
	return nil
}

func (r messageRepo) FindReactionState(_ context.Context, id int64) (*models.ReactionState, error) {
	done, err := r.begin("Messages.FindReactionState")
	defer done()
	if err != nil {
		return nil, err
	}
	m, ok := r.s.Messages[id]
	if !ok {
		return nil, apperr.NotFound("message not found")
	}
	return &models.ReactionState{ID: m.ID, GroupID: m.GroupID, Reactions: m.Reactions.Clone()}, nil
}

func (r messageRepo) CompareAndSwapReactions(_ context.Context, id int64, expected, next models.Reactions) (bool, error) {
	done, err := r.begin("Messages.CompareAndSwapReactions")
	defer done()
	if err != nil {
		return false, err
	}
	m, ok := r.s.Messages[id]
	if !ok {
		return false, nil
	}
	if r.s.LoseCAS > 0 {
		r.s.LoseCAS--
		if r.s.OnLoseCAS != nil {
			r.s.OnLoseCAS(id)
		}
		return false, nil
	}
	if fmt.Sprint(canonical(m.Reactions)) != fmt.Sprint(canonical(expected)) {
		return false, nil
	}
	m.Reactions = next.Clone()
	return true, nil
}

func (r messageRepo) UpdateReactions(_ context.Context, id int64, next models.Reactions) error {
	done, err := r.begin("Messages.UpdateReactions")
	defer done()
	if err != nil {
		return err
	}
	m, ok := r.s.Messages[id]
	if !ok {
		return apperr.NotFound("message not found")
	}
	m.Reactions = next.Clone()
	return nil
}

// canonical sorts member lists so maps compare by content.
func canonical(r models.Reactions) map[string][]string {
	out := make(map[string][]string, len(r))
	for emoji, users := range r.Clone() {
		sort.Strings(users)
		out[emoji] = users
	}
	return out
}

type receiptRepo struct{ view }

func (r receiptRepo) Upsert(_ context.Context, messageID int64, userID string) error {
	done, err := r.begin("Receipts.Upsert")
	defer done()
	if err != nil {
		return err
	}
	if _, ok := r.s.Messages[messageID]; !ok {
		return apperr.NotFound("message not found")
	}
	r.s.Receipts[models.ReadReceipt{MessageID: messageID, UserID: userID}] = true
	return nil
}

type levelRepo struct{ view }

func (r levelRepo) Get(_ context.Context, userID string) (*models.EducationLevel, error) {
	done, err := r.begin("EducationLevels.Get")
	defer done()
	if err != nil {
		return nil, err
	}
	l, ok := r.s.Levels[userID]
	if !ok {
		return nil, apperr.NotFound("education level not found")
	}
	return copyLevel(l), nil
}

func (r levelRepo) InsertIfUnset(_ context.Context, level *models.EducationLevel) (bool, error) {
	done, err := r.begin("EducationLevels.InsertIfUnset")
	defer done()
	if err != nil {
		return false, err
	}
	if !models.CanWriteEducationLevel(r.s.Levels[level.UserID]) {
		return false, nil
	}
	r.s.Levels[level.UserID] = copyLevel(level)
	return true, nil
}

func (r levelRepo) Upsert(_ context.Context, level *models.EducationLevel) error {
	done, err := r.begin("EducationLevels.Upsert")
	defer done()
	if err != nil {
		return err
	}
	r.s.Levels[level.UserID] = copyLevel(level)
	return nil
}

func copyLevel(l *models.EducationLevel) *models.EducationLevel {
	cp := &models.EducationLevel{UserID: l.UserID}
	if l.Level != nil {
		v := *l.Level
		cp.Level = &v
	}
	return cp
}

type sessionRepo struct{ view }

func (r sessionRepo) FindByUser(_ context.Context, userID string) (*models.ChatSession, error) {
	done, err := r.begin("ChatSessions.FindByUser")
	defer done()
	if err != nil {
		return nil, err
	}
	cs, ok := r.s.Sessions[userID]
	if !ok {
		return nil, apperr.NotFound("chat session not found")
	}
	cp := *cs
	cp.Messages = append(models.ChatTurns(nil), cs.Messages...)
	return &cp, nil
}

func (r sessionRepo) Create(_ context.Context, session *models.ChatSession) error {
	done, err := r.begin("ChatSessions.Create")
	defer done()
	if err != nil {
		return err
	}
	if _, ok := r.s.Sessions[session.UserID]; ok {
		return apperr.Conflict("chat session already exists", "23505", nil)
	}
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	cp := *session
	cp.Messages = append(models.ChatTurns(nil), session.Messages...)
	r.s.Sessions[session.UserID] = &cp
	return nil
}

func (r sessionRepo) Append(_ context.Context, id string, turns []models.ChatTurn) error {
	done, err := r.begin("ChatSessions.Append")
	defer done()
	if err != nil {
		return err
	}
	for _, cs := range r.s.Sessions {
		if cs.ID == id {
			cs.Messages = append(cs.Messages, turns...)
			return nil
		}
	}
	return apperr.NotFound("chat session not found")
}

func (r sessionRepo) AppendForUser(_ context.Context, userID string, turns []models.ChatTurn) error {
	done, err := r.begin("ChatSessions.AppendForUser")
	defer done()
	if err != nil {
		return err
	}
	cs, ok := r.s.Sessions[userID]
	if !ok {
		return apperr.NotFound("chat session not found")
	}
	cs.Messages = append(cs.Messages, turns...)
	return nil
}

type userRepo struct{ view }

func (r userRepo) FindByID(_ context.Context, id string) (*models.User, error) {
	done, err := r.begin("Users.FindByID")
	defer done()
	if err != nil {
		return nil, err
	}
	u, ok := r.s.Users[id]
	if !ok {
		return nil, apperr.NotFound("user not found")
	}
	cp := *u
	if l, ok := r.s.Levels[id]; ok {
		cp.EducationLevel = copyLevel(l)
	}
	return &cp, nil
}

func (r userRepo) CreateIfMissing(_ context.Context, user *models.User) error {
	done, err := r.begin("Users.CreateIfMissing")
	defer done()
	if err != nil {
		return err
	}
	if _, ok := r.s.Users[user.ID]; ok {
		return nil
	}
	cp := *user
	r.s.Users[user.ID] = &cp
	return nil
}
