package handlers_test

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aimarketing/accounts/internal/domain"
	"github.com/aimarketing/accounts/internal/repository"
	"github.com/jackc/pgx/v5"
)

// The real repository surfaces pgx.ErrNoRows for a delete that hit nothing.
var errNoResource = pgx.ErrNoRows

type memUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (m *memUserRepo) Create(_ context.Context, username, email, passwordHash string) (*domain.User, error) {
	id := m.nextID
	m.nextID++

	u := &domain.User{
		ID:           id,
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	m.users[id] = u
	return u, nil
}

func (m *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

func (m *memUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) FindByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
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

func (m *memUserRepo) List(_ context.Context, limit, offset int) ([]domain.User, error) {
	var users []domain.User
	for _, u := range m.users {
		users = append(users, *u)
	}
	return users, nil
}

type memProfileRepo struct {
	profiles map[int64]*domain.Profile
}

func newMemProfileRepo() *memProfileRepo {
	return &memProfileRepo{profiles: make(map[int64]*domain.Profile)}
}

func (m *memProfileRepo) Ensure(_ context.Context, userID int64) (*domain.Profile, error) {
	if p, ok := m.profiles[userID]; ok {
		return p, nil
	}
	p := &domain.Profile{UserID: userID, CreatedAt: time.Now(), UpdatedAt: time.Now()}
	m.profiles[userID] = p
	return p, nil
}

func (m *memProfileRepo) Get(_ context.Context, userID int64) (*domain.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return p, nil
}

func (m *memProfileRepo) Update(_ context.Context, userID int64, req *domain.UpdateProfileRequest) (*domain.Profile, error) {
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
	return p, nil
}

type memVerifyRepo struct {
	nextID   int64
	tokens   map[string]*domain.VerificationToken
	users    *memUserRepo
	profiles *memProfileRepo
}

func newMemVerifyRepo(users *memUserRepo, profiles *memProfileRepo) *memVerifyRepo {
	return &memVerifyRepo{
		nextID:   1,
		tokens:   make(map[string]*domain.VerificationToken),
		users:    users,
		profiles: profiles,
	}
}

func (m *memVerifyRepo) Issue(_ context.Context, userID int64) (*domain.VerificationToken, error) {
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

func (m *memVerifyRepo) Find(_ context.Context, token string) (*domain.VerificationToken, error) {
	t, ok := m.tokens[token]
	if !ok {
		return nil, nil
	}
	return t, nil
}

func (m *memVerifyRepo) Consume(_ context.Context, token string) (int64, error) {
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

func (m *memVerifyRepo) ListReminderDue(_ context.Context) ([]domain.ReminderTarget, error) {
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

func (m *memVerifyRepo) MarkReminderSent(_ context.Context, tokenID int64) error {
	for _, t := range m.tokens {
		if t.ID == tokenID {
			now := time.Now()
			t.ReminderSent = true
			t.ReminderSentAt = &now
		}
	}
	return nil
}

func (m *memVerifyRepo) DeleteExpired(_ context.Context) (int64, error) {
	var n int64
	for value, t := range m.tokens {
		if !t.IsValid() {
			delete(m.tokens, value)
			n++
		}
	}
	return n, nil
}

type memCollection struct {
	kind    domain.CatalogKind
	items   map[string]*domain.CatalogItem
	members map[int64]map[int64]bool
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

type memFavouriteRepo struct {
	products  *memCollection
	prompts   *memCollection
	templates *memCollection
}

func newMemFavouriteRepo() *memFavouriteRepo {
	return &memFavouriteRepo{
		products:  newMemCollection(domain.KindProduct),
		prompts:   newMemCollection(domain.KindPrompt),
		templates: newMemCollection(domain.KindTemplate),
	}
}

func (m *memFavouriteRepo) Products() repository.Collection  { return m.products }
func (m *memFavouriteRepo) Prompts() repository.Collection   { return m.prompts }
func (m *memFavouriteRepo) Templates() repository.Collection { return m.templates }

func (m *memFavouriteRepo) Collection(kind domain.CatalogKind) repository.Collection {
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

type memOrderRepo struct {
	counts map[int64]int
}

func (m *memOrderRepo) CountDistinctPurchased(_ context.Context, userID int64) (int, error) {
	return m.counts[userID], nil
}

type memResourceRepo struct {
	nextID    int64
	resources []*domain.MemberResource
}

func (m *memResourceRepo) ListActive(_ context.Context, limit int) ([]domain.MemberResource, error) {
	var active []domain.MemberResource
	for _, r := range m.resources {
		if r.IsActive {
			active = append(active, *r)
		}
	}
	if limit > 0 && len(active) > limit {
		active = active[:limit]
	}
	return active, nil
}

func (m *memResourceRepo) List(_ context.Context, limit, offset int) ([]domain.MemberResource, error) {
	var all []domain.MemberResource
	for _, r := range m.resources {
		all = append(all, *r)
	}
	return all, nil
}

func (m *memResourceRepo) Create(_ context.Context, req *domain.UpsertResourceRequest) (*domain.MemberResource, error) {
	m.nextID++
	r := &domain.MemberResource{
		ID:          m.nextID,
		Title:       req.Title,
		Description: req.Description,
		FileURL:     req.FileURL,
		IsActive:    true,
		CreatedAt:   time.Now(),
	}
	if req.DisplayOrder != nil {
		r.DisplayOrder = *req.DisplayOrder
	}
	if req.IsActive != nil {
		r.IsActive = *req.IsActive
	}
	m.resources = append(m.resources, r)
	return r, nil
}

func (m *memResourceRepo) Update(_ context.Context, id int64, req *domain.UpsertResourceRequest) (*domain.MemberResource, error) {
	for _, r := range m.resources {
		if r.ID != id {
			continue
		}
		if req.Title != "" {
			r.Title = req.Title
		}
		if req.FileURL != "" {
			r.FileURL = req.FileURL
		}
		if req.IsActive != nil {
			r.IsActive = *req.IsActive
		}
		return r, nil
	}
	return nil, nil
}

func (m *memResourceRepo) Delete(_ context.Context, id int64) error {
	for i, r := range m.resources {
		if r.ID == id {
			m.resources = append(m.resources[:i], m.resources[i+1:]...)
			return nil
		}
	}
	return errNoResource
}

type memMailer struct {
	verifications []string
	reminders     []string
}

func (m *memMailer) SendVerificationEmail(toEmail, username, verifyURL string) error {
	m.verifications = append(m.verifications, toEmail)
	return nil
}

func (m *memMailer) SendVerificationReminder(toEmail, username, verifyURL string) error {
	m.reminders = append(m.reminders, toEmail)
	return nil
}

// memRateLimiter counts per key; max <= 0 means unlimited.
type memRateLimiter struct {
	max    int
	counts map[string]int
}

func newMemRateLimiter(max int) *memRateLimiter {
	return &memRateLimiter{max: max, counts: make(map[string]int)}
}

func (m *memRateLimiter) CheckRateLimit(_ context.Context, key string, requests int, window time.Duration) (bool, error) {
	if m.max <= 0 {
		return true, nil
	}
	m.counts[key]++
	return m.counts[key] <= m.max, nil
}
