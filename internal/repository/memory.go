package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"carvfi/internal/domain"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It is the default store
// when no database is configured; data is lost on restart.
type MemoryStore struct {
	mu sync.RWMutex
	st *memState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{st: newMemState()}
}

type memState struct {
	users      map[string]*domain.User
	byWallet   map[string]string
	byUsername map[string]string // lower(username) -> user id
	checkIns   []*domain.CheckIn
	chats      map[string]*domain.ChatInteraction
	userChats  map[string][]string // user id -> chat interaction ids
	messages   []*domain.ChatMessage
	txs        []*domain.PointsTransaction
	partners   []*domain.PartnerProject
	activities []*domain.TwitterActivity

	undo *undoLog
}

func newMemState() *memState {
	return &memState{
		users:      make(map[string]*domain.User),
		byWallet:   make(map[string]string),
		byUsername: make(map[string]string),
		chats:      make(map[string]*domain.ChatInteraction),
		userChats:  make(map[string][]string),
	}
}

// undoLog records the state a unit of work replaced. Users and chat
// counters are copied on first write; a nil entry means the record did not
// exist before. Append-only slices are restored by length.
type undoLog struct {
	users map[string]*domain.User
	chats map[string]*domain.ChatInteraction

	checkIns, messages, txs, partners, activities int
}

func (s *memState) begin() {
	s.undo = &undoLog{
		users:      make(map[string]*domain.User),
		chats:      make(map[string]*domain.ChatInteraction),
		checkIns:   len(s.checkIns),
		messages:   len(s.messages),
		txs:        len(s.txs),
		partners:   len(s.partners),
		activities: len(s.activities),
	}
}

func (s *memState) touchUser(id string) {
	if s.undo == nil {
		return
	}
	if _, seen := s.undo.users[id]; seen {
		return
	}
	if u, ok := s.users[id]; ok {
		s.undo.users[id] = u.Clone()
	} else {
		s.undo.users[id] = nil
	}
}

func (s *memState) touchChat(id string) {
	if s.undo == nil {
		return
	}
	if _, seen := s.undo.chats[id]; seen {
		return
	}
	if ci, ok := s.chats[id]; ok {
		cp := *ci
		s.undo.chats[id] = &cp
	} else {
		s.undo.chats[id] = nil
	}
}

func (s *memState) rollback() {
	j := s.undo
	if j == nil {
		return
	}
	for id, prev := range j.users {
		if cur, ok := s.users[id]; ok {
			s.unindexUser(cur)
			delete(s.users, id)
		}
		if prev != nil {
			s.users[id] = prev
			s.indexUser(prev)
		}
	}
	for id, prev := range j.chats {
		if prev != nil {
			s.chats[id] = prev
			continue
		}
		if cur, ok := s.chats[id]; ok {
			s.userChats[cur.UserID] = removeID(s.userChats[cur.UserID], id)
			delete(s.chats, id)
		}
	}
	s.checkIns = s.checkIns[:j.checkIns]
	s.messages = s.messages[:j.messages]
	s.txs = s.txs[:j.txs]
	s.partners = s.partners[:j.partners]
	s.activities = s.activities[:j.activities]
}

func (s *memState) indexUser(u *domain.User) {
	s.byWallet[u.WalletAddress] = u.ID
	s.byUsername[strings.ToLower(u.Username)] = u.ID
}

func (s *memState) unindexUser(u *domain.User) {
	if s.byWallet[u.WalletAddress] == u.ID {
		delete(s.byWallet, u.WalletAddress)
	}
	if key := strings.ToLower(u.Username); s.byUsername[key] == u.ID {
		delete(s.byUsername, key)
	}
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}

// Atomic holds the write lock for the whole of fn and undoes its writes if
// fn fails or panics.
func (m *MemoryStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	m.mu.Lock()
	committed := false
	defer func() {
		if !committed {
			m.st.rollback()
		}
		m.st.undo = nil
		m.mu.Unlock()
	}()

	m.st.begin()
	if err := fn(ctx, m.st); err != nil {
		return err
	}
	committed = true
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

func (m *MemoryStore) Close() {}

func (m *MemoryStore) read(fn func(s *memState) error) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(m.st)
}

func (m *MemoryStore) write(fn func(s *memState) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.st)
}

// ---- Tx on the store itself: each call is its own unit of work ----

func (m *MemoryStore) GetUser(ctx context.Context, id string) (u *domain.User, err error) {
	err = m.read(func(s *memState) error { u, err = s.GetUser(ctx, id); return err })
	return u, err
}

func (m *MemoryStore) GetUserByWallet(ctx context.Context, wallet string) (u *domain.User, err error) {
	err = m.read(func(s *memState) error { u, err = s.GetUserByWallet(ctx, wallet); return err })
	return u, err
}

func (m *MemoryStore) LockUser(ctx context.Context, id string) (*domain.User, error) {
	return m.GetUser(ctx, id)
}

func (m *MemoryStore) CreateUser(ctx context.Context, u *domain.User) error {
	return m.write(func(s *memState) error { return s.CreateUser(ctx, u) })
}

func (m *MemoryStore) UsernameExists(ctx context.Context, username, excludeID string) (ok bool, err error) {
	err = m.read(func(s *memState) error { ok, err = s.UsernameExists(ctx, username, excludeID); return err })
	return ok, err
}

func (m *MemoryStore) AddPoints(ctx context.Context, id string, delta int64) (u *domain.User, err error) {
	err = m.write(func(s *memState) error { u, err = s.AddPoints(ctx, id, delta); return err })
	return u, err
}

func (m *MemoryStore) UpdateStreak(ctx context.Context, id string, streak int, lastLogin time.Time) (u *domain.User, err error) {
	err = m.write(func(s *memState) error { u, err = s.UpdateStreak(ctx, id, streak, lastLogin); return err })
	return u, err
}

func (m *MemoryStore) UpdateProfile(ctx context.Context, u *domain.User) error {
	return m.write(func(s *memState) error { return s.UpdateProfile(ctx, u) })
}

func (m *MemoryStore) TopUsers(ctx context.Context, limit int) (out []*domain.User, err error) {
	err = m.read(func(s *memState) error { out, err = s.TopUsers(ctx, limit); return err })
	return out, err
}

func (m *MemoryStore) UserRank(ctx context.Context, id string) (rank int, err error) {
	err = m.read(func(s *memState) error { rank, err = s.UserRank(ctx, id); return err })
	return rank, err
}

func (m *MemoryStore) CountUsers(ctx context.Context) (n int, err error) {
	err = m.read(func(s *memState) error { n, err = s.CountUsers(ctx); return err })
	return n, err
}

func (m *MemoryStore) GetCheckIn(ctx context.Context, userID string, from, to time.Time) (c *domain.CheckIn, err error) {
	err = m.read(func(s *memState) error { c, err = s.GetCheckIn(ctx, userID, from, to); return err })
	return c, err
}

func (m *MemoryStore) CreateCheckIn(ctx context.Context, c *domain.CheckIn) error {
	return m.write(func(s *memState) error { return s.CreateCheckIn(ctx, c) })
}

func (m *MemoryStore) GetChatInteraction(ctx context.Context, userID string, from, to time.Time) (ci *domain.ChatInteraction, err error) {
	err = m.read(func(s *memState) error { ci, err = s.GetChatInteraction(ctx, userID, from, to); return err })
	return ci, err
}

func (m *MemoryStore) SaveChatInteraction(ctx context.Context, ci *domain.ChatInteraction) error {
	return m.write(func(s *memState) error { return s.SaveChatInteraction(ctx, ci) })
}

func (m *MemoryStore) CreateChatMessage(ctx context.Context, msg *domain.ChatMessage) error {
	return m.write(func(s *memState) error { return s.CreateChatMessage(ctx, msg) })
}

func (m *MemoryStore) ListChatMessages(ctx context.Context, userID string, limit int) (out []*domain.ChatMessage, err error) {
	err = m.read(func(s *memState) error { out, err = s.ListChatMessages(ctx, userID, limit); return err })
	return out, err
}

func (m *MemoryStore) CreateTransaction(ctx context.Context, t *domain.PointsTransaction) error {
	return m.write(func(s *memState) error { return s.CreateTransaction(ctx, t) })
}

func (m *MemoryStore) ListTransactions(ctx context.Context, userID string, limit, offset int) (out []*domain.PointsTransaction, err error) {
	err = m.read(func(s *memState) error { out, err = s.ListTransactions(ctx, userID, limit, offset); return err })
	return out, err
}

func (m *MemoryStore) CountTransactions(ctx context.Context, userID string) (n int, err error) {
	err = m.read(func(s *memState) error { n, err = s.CountTransactions(ctx, userID); return err })
	return n, err
}

func (m *MemoryStore) SumTransactions(ctx context.Context, userID string) (sum int64, err error) {
	err = m.read(func(s *memState) error { sum, err = s.SumTransactions(ctx, userID); return err })
	return sum, err
}

func (m *MemoryStore) ListPartnerProjects(ctx context.Context, activeOnly bool) (out []*domain.PartnerProject, err error) {
	err = m.read(func(s *memState) error { out, err = s.ListPartnerProjects(ctx, activeOnly); return err })
	return out, err
}

func (m *MemoryStore) CreatePartnerProject(ctx context.Context, p *domain.PartnerProject) error {
	return m.write(func(s *memState) error { return s.CreatePartnerProject(ctx, p) })
}

func (m *MemoryStore) ListTwitterActivities(ctx context.Context, userID string, limit int) (out []*domain.TwitterActivity, err error) {
	err = m.read(func(s *memState) error { out, err = s.ListTwitterActivities(ctx, userID, limit); return err })
	return out, err
}

func (m *MemoryStore) TwitterActivityExists(ctx context.Context, tweetID string) (ok bool, err error) {
	err = m.read(func(s *memState) error { ok, err = s.TwitterActivityExists(ctx, tweetID); return err })
	return ok, err
}

func (m *MemoryStore) CreateTwitterActivity(ctx context.Context, a *domain.TwitterActivity) error {
	return m.write(func(s *memState) error { return s.CreateTwitterActivity(ctx, a) })
}

// ---- memState: unlocked implementation, used directly inside Atomic ----

func (s *memState) GetUser(_ context.Context, id string) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return u.Clone(), nil
}

func (s *memState) GetUserByWallet(ctx context.Context, wallet string) (*domain.User, error) {
	id, ok := s.byWallet[wallet]
	if !ok {
		return nil, ErrNotFound
	}
	return s.GetUser(ctx, id)
}

func (s *memState) LockUser(ctx context.Context, id string) (*domain.User, error) {
	return s.GetUser(ctx, id)
}

func (s *memState) CreateUser(ctx context.Context, u *domain.User) error {
	if _, ok := s.byWallet[u.WalletAddress]; ok {
		return ErrDuplicate
	}
	if taken, _ := s.UsernameExists(ctx, u.Username, ""); taken {
		return ErrDuplicate
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, ok := s.users[u.ID]; ok {
		return ErrDuplicate
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	u.Level = domain.LevelFor(u.TotalPoints)
	s.touchUser(u.ID)
	stored := u.Clone()
	s.users[u.ID] = stored
	s.indexUser(stored)
	return nil
}

func (s *memState) UsernameExists(_ context.Context, username, excludeID string) (bool, error) {
	id, ok := s.byUsername[strings.ToLower(username)]
	return ok && id != excludeID, nil
}

func (s *memState) AddPoints(_ context.Context, id string, delta int64) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.touchUser(id)
	u.AddPoints(delta)
	return u.Clone(), nil
}

func (s *memState) UpdateStreak(_ context.Context, id string, streak int, lastLogin time.Time) (*domain.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	s.touchUser(id)
	u.RecordStreak(streak, lastLogin)
	return u.Clone(), nil
}

func (s *memState) UpdateProfile(ctx context.Context, u *domain.User) error {
	cur, ok := s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if taken, _ := s.UsernameExists(ctx, u.Username, u.ID); taken {
		return ErrDuplicate
	}
	s.touchUser(cur.ID)
	s.unindexUser(cur)
	cur.Username = u.Username
	cur.UsernameChanged = u.UsernameChanged
	cur.Email = u.Email
	cur.AvatarURL = u.AvatarURL
	cur.TwitterHandle = u.TwitterHandle
	cur.TwitterID = u.TwitterID
	s.indexUser(cur)
	return nil
}

// rankLess orders users by points desc, then earlier signup, then id.
func rankLess(a, b *domain.User) bool {
	if a.TotalPoints != b.TotalPoints {
		return a.TotalPoints > b.TotalPoints
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}

func (s *memState) TopUsers(_ context.Context, limit int) ([]*domain.User, error) {
	all := make([]*domain.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u.Clone())
	}
	sort.Slice(all, func(i, j int) bool { return rankLess(all[i], all[j]) })
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *memState) UserRank(_ context.Context, id string) (int, error) {
	me, ok := s.users[id]
	if !ok {
		return 0, ErrNotFound
	}
	rank := 1
	for _, u := range s.users {
		if u.ID != id && rankLess(u, me) {
			rank++
		}
	}
	return rank, nil
}

func (s *memState) CountUsers(context.Context) (int, error) {
	return len(s.users), nil
}

func (s *memState) GetCheckIn(_ context.Context, userID string, from, to time.Time) (*domain.CheckIn, error) {
	for i := len(s.checkIns) - 1; i >= 0; i-- {
		c := s.checkIns[i]
		if c.UserID == userID && !c.CheckInDate.Before(from) && c.CheckInDate.Before(to) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memState) CreateCheckIn(_ context.Context, c *domain.CheckIn) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	cp := *c
	s.checkIns = append(s.checkIns, &cp)
	return nil
}

func (s *memState) GetChatInteraction(_ context.Context, userID string, from, to time.Time) (*domain.ChatInteraction, error) {
	for _, id := range s.userChats[userID] {
		ci := s.chats[id]
		if !ci.Date.Before(from) && ci.Date.Before(to) {
			cp := *ci
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *memState) SaveChatInteraction(_ context.Context, ci *domain.ChatInteraction) error {
	if ci.ID == "" {
		ci.ID = uuid.NewString()
	}
	s.touchChat(ci.ID)
	if _, ok := s.chats[ci.ID]; !ok {
		s.userChats[ci.UserID] = append(s.userChats[ci.UserID], ci.ID)
	}
	cp := *ci
	s.chats[ci.ID] = &cp
	return nil
}

func (s *memState) CreateChatMessage(_ context.Context, msg *domain.ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	cp := *msg
	s.messages = append(s.messages, &cp)
	return nil
}

func (s *memState) ListChatMessages(_ context.Context, userID string, limit int) ([]*domain.ChatMessage, error) {
	limit = clampLimit(limit)
	var out []*domain.ChatMessage
	for i := len(s.messages) - 1; i >= 0 && len(out) < limit; i-- {
		if m := s.messages[i]; m.UserID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (s *memState) CreateTransaction(_ context.Context, t *domain.PointsTransaction) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	cp := *t
	s.txs = append(s.txs, &cp)
	return nil
}

func (s *memState) ListTransactions(_ context.Context, userID string, limit, offset int) ([]*domain.PointsTransaction, error) {
	limit, offset = ledgerPage(limit, offset)
	var all []*domain.PointsTransaction
	for i := len(s.txs) - 1; i >= 0; i-- {
		if t := s.txs[i]; t.UserID == userID {
			all = append(all, t)
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]*domain.PointsTransaction, 0, len(all))
	for _, t := range all {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memState) CountTransactions(_ context.Context, userID string) (int, error) {
	n := 0
	for _, t := range s.txs {
		if t.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *memState) SumTransactions(_ context.Context, userID string) (int64, error) {
	var sum int64
	for _, t := range s.txs {
		if t.UserID == userID {
			sum += t.Amount
		}
	}
	return sum, nil
}

func (s *memState) ListPartnerProjects(_ context.Context, activeOnly bool) ([]*domain.PartnerProject, error) {
	var out []*domain.PartnerProject
	for _, p := range s.partners {
		if activeOnly && !p.Active {
			continue
		}
		cp := *p
		cp.Hashtags = append([]string(nil), p.Hashtags...)
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memState) CreatePartnerProject(_ context.Context, p *domain.PartnerProject) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	cp.Hashtags = append([]string(nil), p.Hashtags...)
	s.partners = append(s.partners, &cp)
	return nil
}

func (s *memState) ListTwitterActivities(_ context.Context, userID string, limit int) ([]*domain.TwitterActivity, error) {
	limit = clampLimit(limit)
	var out []*domain.TwitterActivity
	for i := len(s.activities) - 1; i >= 0 && len(out) < limit; i-- {
		if a := s.activities[i]; a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memState) TwitterActivityExists(_ context.Context, tweetID string) (bool, error) {
	for _, a := range s.activities {
		if a.TweetID == tweetID {
			return true, nil
		}
	}
	return false, nil
}

func (s *memState) CreateTwitterActivity(ctx context.Context, a *domain.TwitterActivity) error {
	if ok, _ := s.TwitterActivityExists(ctx, a.TweetID); ok {
		return ErrDuplicate
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	cp := *a
	cp.Hashtags = append([]string(nil), a.Hashtags...)
	s.activities = append(s.activities, &cp)
	return nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Tx    = (*memState)(nil)
)
