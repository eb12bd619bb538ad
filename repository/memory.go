package repository

import (
	"clutch-review/constant"
	"clutch-review/entities"
	"context"
	"github.com/lib/pq"
	"sort"
	"sync"
)

type memoryState struct {
	users    map[string]*entities.User
	videos   []*entities.Video
	pending  []*entities.PendingReview
	failed   map[string]*entities.FailedReview
	messages []*entities.Message
	groups   map[string]*entities.Group
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:  make(map[string]*entities.User),
		failed: make(map[string]*entities.FailedReview),
		groups: make(map[string]*entities.Group),
	}
}

func (s *memoryState) clone() *memoryState {
	c := newMemoryState()
	for id, u := range s.users {
		c.users[id] = copyUser(u)
	}
	for _, v := range s.videos {
		c.videos = append(c.videos, copyVideo(v))
	}
	for _, p := range s.pending {
		c.pending = append(c.pending, copyPending(p))
	}
	for id, f := range s.failed {
		c.failed[id] = copyFailed(f)
	}
	for _, m := range s.messages {
		c.messages = append(c.messages, copyMessage(m))
	}
	for name, g := range s.groups {
		c.groups[name] = copyGroup(g)
	}
	return c
}

func copyStrings(in pq.StringArray) pq.StringArray {
	if in == nil {
		return nil
	}
	out := make(pq.StringArray, len(in))
	copy(out, in)
	return out
}

func copyUser(u *entities.User) *entities.User {
	c := *u
	c.Groups = copyStrings(u.Groups)
	return &c
}

func copyVideo(v *entities.Video) *entities.Video {
	c := *v
	return &c
}

func copyPending(p *entities.PendingReview) *entities.PendingReview {
	c := *p
	return &c
}

func copyFailed(f *entities.FailedReview) *entities.FailedReview {
	c := *f
	return &c
}

func copyMessage(m *entities.Message) *entities.Message {
	c := *m
	return &c
}

func copyGroup(g *entities.Group) *entities.Group {
	c := *g
	c.Members = copyStrings(g.Members)
	return &c
}

// MemoryRepository keeps everything in process. Transactions work on a copy of the
// state that replaces the live state only when the callback succeeds.
type MemoryRepository struct {
	mu    *sync.Mutex
	state *memoryState
	inTx  bool
}

func NewMemoryRepo() *MemoryRepository {
	return &MemoryRepository{
		mu:    &sync.Mutex{},
		state: newMemoryState(),
	}
}

func (r *MemoryRepository) lock() func() {
	if r.inTx {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}

func (r *MemoryRepository) Transaction(ctx context.Context, callback func(repo Repository) error) error {
	if r.inTx {
		return callback(r)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &MemoryRepository{mu: r.mu, state: r.state.clone(), inTx: true}
	if err := callback(tx); err != nil {
		return err
	}
	r.state = tx.state
	return nil
}

func (r *MemoryRepository) Migrate(ctx context.Context) error {
	return nil
}

func (r *MemoryRepository) CreateUser(ctx context.Context, user *entities.User) error {
	defer r.lock()()
	r.state.users[user.ID] = copyUser(user)
	return nil
}

func (r *MemoryRepository) FindUserByID(ctx context.Context, id string) (*entities.User, error) {
	defer r.lock()()
	u, ok := r.state.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (r *MemoryRepository) SaveUser(ctx context.Context, user *entities.User) error {
	defer r.lock()()
	r.state.users[user.ID] = copyUser(user)
	return nil
}

func (r *MemoryRepository) sortedUsers(keep func(u *entities.User) bool) []*entities.User {
	users := make([]*entities.User, 0, len(r.state.users))
	for _, u := range r.state.users {
		if keep(u) {
			users = append(users, copyUser(u))
		}
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].ID < users[j].ID
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})
	return users
}

func (r *MemoryRepository) ListUsers(ctx context.Context) ([]*entities.User, error) {
	defer r.lock()()
	return r.sortedUsers(func(*entities.User) bool { return true }), nil
}

func (r *MemoryRepository) ListUsersForModeration(ctx context.Context) ([]*entities.User, error) {
	defer r.lock()()
	return r.sortedUsers(func(u *entities.User) bool {
		return !u.Suspended && (u.TotalViolations() > 0 || u.LastWarningDate != nil)
	}), nil
}

func (r *MemoryRepository) IncrementViolation(ctx context.Context, userID string, kind constant.ViolationKind) error {
	if _, err := violationColumn(kind); err != nil {
		return err
	}
	defer r.lock()()
	u, ok := r.state.users[userID]
	if !ok {
		return ErrNotFound
	}
	if kind == constant.ViolationUpload {
		u.IncorrectUploads++
	} else {
		u.IncorrectReviews++
	}
	return nil
}

func (r *MemoryRepository) MarkReviewerActive(ctx context.Context, userID string) error {
	defer r.lock()()
	u, ok := r.state.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.HasReviewed = true
	return nil
}

func (r *MemoryRepository) DeleteUser(ctx context.Context, id string) error {
	defer r.lock()()
	delete(r.state.users, id)
	return nil
}

func (r *MemoryRepository) CreateVideo(ctx context.Context, video *entities.Video) error {
	defer r.lock()()
	r.state.videos = append(r.state.videos, copyVideo(video))
	return nil
}

func (r *MemoryRepository) findVideo(userID, videoID string) *entities.Video {
	for _, v := range r.state.videos {
		if v.ID == videoID && v.UserID == userID {
			return v
		}
	}
	return nil
}

func (r *MemoryRepository) FindVideo(ctx context.Context, userID, videoID string) (*entities.Video, error) {
	defer r.lock()()
	v := r.findVideo(userID, videoID)
	if v == nil {
		return nil, ErrNotFound
	}
	return copyVideo(v), nil
}

func (r *MemoryRepository) SaveVideo(ctx context.Context, video *entities.Video) error {
	defer r.lock()()
	for i, v := range r.state.videos {
		if v.ID == video.ID {
			r.state.videos[i] = copyVideo(video)
			return nil
		}
	}
	r.state.videos = append(r.state.videos, copyVideo(video))
	return nil
}

func (r *MemoryRepository) ListVideosByUser(ctx context.Context, userID string) ([]*entities.Video, error) {
	defer r.lock()()
	var videos []*entities.Video
	for _, v := range r.state.videos {
		if v.UserID == userID {
			videos = append(videos, copyVideo(v))
		}
	}
	sort.SliceStable(videos, func(i, j int) bool {
		return videos[i].CreatedAt.After(videos[j].CreatedAt)
	})
	return videos, nil
}

func (r *MemoryRepository) MarkVideoVerified(ctx context.Context, userID, videoID string) error {
	defer r.lock()()
	v := r.findVideo(userID, videoID)
	if v == nil {
		return ErrNotFound
	}
	v.Verified = true
	return nil
}

func (r *MemoryRepository) DeleteVideosByUser(ctx context.Context, userID string) (int64, error) {
	defer r.lock()()
	kept := r.state.videos[:0]
	var deleted int64
	for _, v := range r.state.videos {
		if v.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, v)
	}
	r.state.videos = kept
	return deleted, nil
}

func (r *MemoryRepository) CreatePendingReview(ctx context.Context, entry *entities.PendingReview) error {
	defer r.lock()()
	r.state.pending = append(r.state.pending, copyPending(entry))
	return nil
}

func (r *MemoryRepository) FindPendingReview(ctx context.Context, country, videoID, userID string) (*entities.PendingReview, error) {
	defer r.lock()()
	for _, p := range r.state.pending {
		if p.Country == country && p.VideoID == videoID && p.UserID == userID {
			return copyPending(p), nil
		}
	}
	return nil, ErrNotFound
}

// ListPendingReviews returns entries in insertion order, which is the queue order.
func (r *MemoryRepository) ListPendingReviews(ctx context.Context, country string) ([]*entities.PendingReview, error) {
	defer r.lock()()
	var entries []*entities.PendingReview
	for _, p := range r.state.pending {
		if p.Country == country {
			entries = append(entries, copyPending(p))
		}
	}
	return entries, nil
}

func (r *MemoryRepository) CompareAndSwapClaim(ctx context.Context, entry *entities.PendingReview) (bool, error) {
	defer r.lock()()
	for _, p := range r.state.pending {
		if p.ID != entry.ID {
			continue
		}
		if p.Version != entry.Version {
			return false, nil
		}
		p.BeingReviewedCurrently = entry.BeingReviewedCurrently
		p.ClaimedBy = entry.ClaimedBy
		p.BeingReviewedCurrentlyDate = entry.BeingReviewedCurrentlyDate
		p.Version++
		entry.Version = p.Version
		return true, nil
	}
	return false, nil
}

func (r *MemoryRepository) deletePending(match func(p *entities.PendingReview) bool) int64 {
	kept := r.state.pending[:0]
	var deleted int64
	for _, p := range r.state.pending {
		if match(p) {
			deleted++
			continue
		}
		kept = append(kept, p)
	}
	r.state.pending = kept
	return deleted
}

func (r *MemoryRepository) DeletePendingReview(ctx context.Context, country, videoID, userID string) (int64, error) {
	defer r.lock()()
	return r.deletePending(func(p *entities.PendingReview) bool {
		return p.Country == country && p.VideoID == videoID && p.UserID == userID
	}), nil
}

func (r *MemoryRepository) DeletePendingReviewsByUser(ctx context.Context, userID string) (int64, error) {
	defer r.lock()()
	return r.deletePending(func(p *entities.PendingReview) bool {
		return p.UserID == userID
	}), nil
}

func (r *MemoryRepository) SaveFailedReview(ctx context.Context, review *entities.FailedReview) error {
	defer r.lock()()
	r.state.failed[review.VideoID] = copyFailed(review)
	return nil
}

func (r *MemoryRepository) FindFailedReview(ctx context.Context, videoID string) (*entities.FailedReview, error) {
	defer r.lock()()
	f, ok := r.state.failed[videoID]
	if !ok {
		return nil, ErrNotFound
	}
	return copyFailed(f), nil
}

func (r *MemoryRepository) ListFailedReviews(ctx context.Context, country string) ([]*entities.FailedReview, error) {
	defer r.lock()()
	var reviews []*entities.FailedReview
	for _, f := range r.state.failed {
		if f.Country == country {
			reviews = append(reviews, copyFailed(f))
		}
	}
	sort.Slice(reviews, func(i, j int) bool {
		return reviews[i].ReviewedAt.After(reviews[j].ReviewedAt)
	})
	return reviews, nil
}

func (r *MemoryRepository) DeleteFailedReviewsByUser(ctx context.Context, userID string) (int64, error) {
	defer r.lock()()
	var deleted int64
	for id, f := range r.state.failed {
		if f.UserID == userID {
			delete(r.state.failed, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *MemoryRepository) CreateMessage(ctx context.Context, message *entities.Message) error {
	defer r.lock()()
	r.state.messages = append(r.state.messages, copyMessage(message))
	return nil
}

func (r *MemoryRepository) ListMessages(ctx context.Context, userID string) ([]*entities.Message, error) {
	defer r.lock()()
	var messages []*entities.Message
	for _, m := range r.state.messages {
		if m.UserID == userID {
			messages = append(messages, copyMessage(m))
		}
	}
	return messages, nil
}

func (r *MemoryRepository) DeleteMessagesByUser(ctx context.Context, userID string) (int64, error) {
	defer r.lock()()
	kept := r.state.messages[:0]
	var deleted int64
	for _, m := range r.state.messages {
		if m.UserID == userID {
			deleted++
			continue
		}
		kept = append(kept, m)
	}
	r.state.messages = kept
	return deleted, nil
}

func (r *MemoryRepository) SaveGroup(ctx context.Context, group *entities.Group) error {
	defer r.lock()()
	r.state.groups[group.Name] = copyGroup(group)
	return nil
}

func (r *MemoryRepository) FindGroup(ctx context.Context, name string) (*entities.Group, error) {
	defer r.lock()()
	g, ok := r.state.groups[name]
	if !ok {
		return nil, ErrNotFound
	}
	return copyGroup(g), nil
}

func (r *MemoryRepository) ListGroupsByMember(ctx context.Context, userID string) ([]*entities.Group, error) {
	defer r.lock()()
	var groups []*entities.Group
	for _, g := range r.state.groups {
		if g.AdminID == userID || g.HasMember(userID) {
			groups = append(groups, copyGroup(g))
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}
