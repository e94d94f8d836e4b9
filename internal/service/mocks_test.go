package service_test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aimarketing/accounts/internal/domain"
	"github.com/aimarketing/accounts/internal/repository"
)

// ---------- Mocks ----------

type mockUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (m *mockUserRepo) Create(_ context.Context, username, email, passwordHash string) (*domain.User, error) {
	id := m.nextID
	m.nextID++

	u := &domain.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     false,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.users[id] = u
	return u, nil
}

func (m *mockUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *mockUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *mockUserRepo) FindByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	var matches []*domain.User
	for _, u := range m.users {
		if strings.EqualFold(u.Username, identifier) || strings.EqualFold(u.Email, identifier) {
			matches = append(matches, u)
		}
	}
	if len(matches) != 1 {
		return nil, nil
	}
	return matches[0], nil
}

func (m *mockUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	var users []domain.User
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, nil
}

type mockProfileRepo struct {
	profiles map[int64]*domain.Profile
}

func newMockProfileRepo() *mockProfileRepo {
	return &mockProfileRepo{profiles: make(map[int64]*domain.Profile)}
}

func (m *mockProfileRepo) Ensure(_ context.Context, userID int64) (*domain.Profile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	p := &domain.Profile{UserID: userID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.profiles[userID] = p
	return p, nil
}

func (m *mockProfileRepo) Get(_ context.Context, userID int64) (*domain.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (m *mockProfileRepo) Update(_ context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.BusinessName != nil {
		p.BusinessName = *req.BusinessName
	}
	if req.BusinessType != nil {
		p.BusinessType = *req.BusinessType
	}
	if req.BusinessLocation != nil {
		p.BusinessLocation = *req.BusinessLocation
	}
	if req.TargetAudience != nil {
		p.TargetAudience = *req.TargetAudience
	}
	p.UpdatedAt = time.Now()
	return p, nil
}

// mockVerifyRepo holds references to the user and profile mocks so Consume
// can apply the multi-entity transition the real repository performs in one
// transaction.
type mockVerifyRepo struct {
	nextID   int64
	tokens   map[string]*domain.VerificationToken // token value -> token
	users    *mockUserRepo
	profiles *mockProfileRepo
}

func newMockVerifyRepo(users *mockUserRepo, profiles *mockProfileRepo) *mockVerifyRepo {
	return &mockVerifyRepo{
		nextID:   1,
		tokens:   make(map[string]*domain.VerificationToken),
		users:    users,
		profiles: profiles,
	}
}

func (m *mockVerifyRepo) tokensForUser(userID int64) []*domain.VerificationToken {
	var out []*domain.VerificationToken
	for _, t := range m.tokens {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out
}

func (m *mockVerifyRepo) Issue(_ context.Context, userID int64) (*domain.VerificationToken, error) {
	for value, t := range m.tokens {
		if t.UserID == userID {
			delete(m.tokens, value)
		}
	}

	t := &domain.VerificationToken{
		ID:        m.nextID,
		UserID:    userID,
		Token:     fmt.Sprintf("token-%d", m.nextID),
		CreatedAt: time.Now(),
	}
	m.nextID++
	m.tokens[t.Token] = t
	return t, nil
}

func (m *mockVerifyRepo) Find(_ context.Context, token string) (*domain.VerificationToken, error) {
	t, ok := m.tokens[token]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (m *mockVerifyRepo) Consume(_ context.Context, token string) (int64, error) {
	t, ok := m.tokens[token]
	if !ok {
		return 0, domain.ErrTokenNotFound
	}
	if !t.IsValid() {
		return 0, domain.ErrTokenExpired
	}

	if u := m.users.users[t.UserID]; u != nil {
		u.IsActive = true
	}
	p, _ := m.profiles.Ensure(context.Background(), t.UserID)
	p.Verified = true

	delete(m.tokens, token)
	return t.UserID, nil
}

func (m *mockVerifyRepo) ListReminderDue(_ context.Context) ([]domain.ReminderTarget, error) {
	var targets []domain.ReminderTarget
	for _, t := range m.tokens {
		if t.ReminderSent || !t.IsValid() {
			continue
		}
		u := m.users.users[t.UserID]
		if u == nil || u.IsActive {
			continue
		}
		targets = append(targets, domain.ReminderTarget{
			TokenID:  t.ID,
			Token:    t.Token,
			UserID:   u.ID,
			Username: u.Username,
			Email:    u.Email,
		})
	}
	return targets, nil
}

func (m *mockVerifyRepo) MarkReminderSent(_ context.Context, tokenID int64) error {
	for _, t := range m.tokens {
		if t.ID == tokenID {
			now := time.Now()
			t.ReminderSent = true
			t.ReminderSentAt = &now
		}
	}
	return nil
}

func (m *mockVerifyRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for value, t := range m.tokens {
		if !t.IsValid() {
			delete(m.tokens, value)
			n++
		}
	}
	return n, nil
}

type mockMailer struct {
	verifications []string // recipient emails
	reminders     []string
	sendErr       error
}

func (m *mockMailer) SendVerificationEmail(toEmail, username, verifyURL string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.verifications = append(m.verifications, toEmail)
	return nil
}

func (m *mockMailer) SendVerificationReminder(toEmail, username, verifyURL string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.reminders = append(m.reminders, toEmail)
	return nil
}

type mockEventBus struct {
	subjects []string
}

func (m *mockEventBus) Publish(_ context.Context, subject string, _ interface{}) error {
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockEventBus) Close() error { return nil }

// ---------- Favourite collection mocks ----------

type memCollection struct {
	kind    domain.CatalogKind
	items   map[string]*domain.CatalogItem // ref -> item
	members map[int64]map[int64]bool       // userID -> itemID set
}

func newMemCollection(kind domain.CatalogKind) *memCollection {
	return &memCollection{
		kind:    kind,
		items:   make(map[string]*domain.CatalogItem),
		members: make(map[int64]map[int64]bool),
	}
}

func (c *memCollection) seed(ref string, id int64, title string) {
	c.items[ref] = &domain.CatalogItem{ID: id, Kind: c.kind, Slug: ref, Title: title}
}

func (c *memCollection) Kind() domain.CatalogKind { return c.kind }

func (c *memCollection) Resolve(_ context.Context, ref string) (*domain.CatalogItem, error) {
	item, ok := c.items[ref]
	if !ok {
		return nil, nil
	}
	return item, nil
}

func (c *memCollection) Contains(_ context.Context, userID, itemID int64) (bool, error) {
	return c.members[userID][itemID], nil
}

func (c *memCollection) Add(_ context.Context, userID, itemID int64) error {
	if c.members[userID] == nil {
		c.members[userID] = make(map[int64]bool)
	}
	c.members[userID][itemID] = true
	return nil
}

func (c *memCollection) Remove(_ context.Context, userID, itemID int64) error {
	delete(c.members[userID], itemID)
	return nil
}

func (c *memCollection) List(_ context.Context, userID int64) ([]domain.CatalogItem, error) {
	var items []domain.CatalogItem
	for _, item := range c.items {
		if c.members[userID][item.ID] {
			items = append(items, *item)
		}
	}
	return items, nil
}

type mockFavouriteRepo struct {
	products  *memCollection
	prompts   *memCollection
	templates *memCollection
}

func newMockFavouriteRepo() *mockFavouriteRepo {
	return &mockFavouriteRepo{
		products:  newMemCollection(domain.KindProduct),
		prompts:   newMemCollection(domain.KindPrompt),
		templates: newMemCollection(domain.KindTemplate),
	}
}

func (m *mockFavouriteRepo) Products() repository.Collection  { return m.products }
func (m *mockFavouriteRepo) Prompts() repository.Collection   { return m.prompts }
func (m *mockFavouriteRepo) Templates() repository.Collection { return m.templates }

func (m *mockFavouriteRepo) Collection(kind domain.CatalogKind) repository.Collection {
	switch kind {
	case domain.KindProduct:
		return m.products
	case domain.KindPrompt:
		return m.prompts
	case domain.KindTemplate:
		return m.templates
	}
	return nil
}

type mockOrderRepo struct {
	counts map[int64]int
}

func (m *mockOrderRepo) CountDistinctPurchased(_ context.Context, userID int64) (int, error) {
	return m.counts[userID], nil
}

type mockResourceRepo struct {
	resources []domain.MemberResource
}

func (m *mockResourceRepo) ListActive(_ context.Context, limit int) ([]domain.MemberResource, error) {
	var active []domain.MemberResource
	for _, r := range m.resources {
		if r.IsActive {
			active = append(active, r)
		}
	}
	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

func (m *mockResourceRepo) List(_ context.Context, limit, offset int) ([]domain.MemberResource, error) {
	return m.resources, nil
}

func (m *mockResourceRepo) Create(_ context.Context, req *domain.UpsertResourceRequest) (*domain.MemberResource, error) {
	r := domain.MemberResource{
		ID:          int64(len(m.resources) + 1),
		Title:       req.Title,
		Description: req.Description,
		FileURL:     req.FileURL,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	m.resources = append(m.resources, r)
	return &r, nil
}

func (m *mockResourceRepo) Update(_ context.Context, id int64, req *domain.UpsertResourceRequest) (*domain.MemberResource, error) {
	return nil, nil
}

func (m *mockResourceRepo) Delete(_ context.Context, id int64) error { return nil }
