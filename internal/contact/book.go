package contact

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Store persists the complete set of contacts.
type Store interface {
	Save(contacts map[string]Contact) error
}

// Patch describes a partial update. Nil or empty fields are left unchanged.
type Patch struct {
	Phone *string
	Email *string
	Group *string
}

// GroupCount is the number of contacts in one group.
type GroupCount struct {
	Group string
	Count int
}

// Stats summarizes the book by group.
type Stats struct {
	Total  int
	Groups []GroupCount
}

// Book is the in-memory contact mapping. Every mutation is written through
// the Store before the call returns; a failed write rolls the mutation back.
type Book struct {
	contacts     map[string]Contact
	store        Store
	logger       *zap.Logger
	defaultGroup string
	now          func() time.Time
}

// Option configures a Book.
type Option func(*Book)

// WithLogger sets the logger used for mutation events.
func WithLogger(l *zap.Logger) Option {
	return func(b *Book) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithDefaultGroup overrides the group assigned when Add receives none.
func WithDefaultGroup(group string) Option {
	return func(b *Book) {
		if group != "" {
			b.defaultGroup = group
		}
	}
}

// WithClock sets the time source for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(b *Book) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBook wraps an already-loaded mapping. A nil mapping starts empty.
func NewBook(store Store, contacts map[string]Contact, opts ...Option) *Book {
	if contacts == nil {
		contacts = make(map[string]Contact)
	}
	b := &Book{
		contacts:     contacts,
		store:        store,
		logger:       zap.NewNop(),
		defaultGroup: DefaultGroup,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// DefaultGroup returns the group used when none is given.
func (b *Book) DefaultGroup() string {
	return b.defaultGroup
}

// Len returns the number of contacts.
func (b *Book) Len() int {
	return len(b.contacts)
}

// Has reports whether name is present.
func (b *Book) Has(name string) bool {
	_, ok := b.contacts[name]
	return ok
}

// Get returns the contact stored under name.
func (b *Book) Get(name string) (Contact, error) {
	c, ok := b.contacts[name]
	if !ok {
		return Contact{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return c, nil
}

// Add validates and stores a new contact, returning the stored record.
func (b *Book) Add(name, phone, email, group string) (Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Contact{}, ErrEmptyName
	}
	if _, ok := b.contacts[name]; ok {
		return Contact{}, fmt.Errorf("%w: %q", ErrExists, name)
	}

	digits, err := ValidatePhone(phone)
	if err != nil {
		return Contact{}, err
	}
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return Contact{}, err
	}
	group = strings.TrimSpace(group)
	if group == "" {
		group = b.defaultGroup
	}

	now := b.now()
	c := Contact{
		Phone:     digits,
		Email:     email,
		Group:     group,
		CreatedAt: now,
		UpdatedAt: now,
	}

	b.contacts[name] = c
	if err := b.persist(); err != nil {
		delete(b.contacts, name)
		return Contact{}, err
	}
	b.logger.Info("contact added", zap.String("name", name), zap.String("group", group))
	return c, nil
}

// Update applies p to the contact stored under name. Every supplied field is
// validated before any is written; updated_at is always refreshed.
func (b *Book) Update(name string, p Patch) (Contact, error) {
	name = strings.TrimSpace(name)
	prev, ok := b.contacts[name]
	if !ok {
		return Contact{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	next := prev
	var changed []string
	if v, ok := nonEmpty(p.Phone); ok {
		digits, err := ValidatePhone(v)
		if err != nil {
			return Contact{}, err
		}
		next.Phone = digits
		changed = append(changed, "phone")
	}
	if v, ok := nonEmpty(p.Email); ok {
		if err := ValidateEmail(v); err != nil {
			return Contact{}, err
		}
		next.Email = v
		changed = append(changed, "email")
	}
	if v, ok := nonEmpty(p.Group); ok {
		next.Group = v
		changed = append(changed, "group")
	}
	next.UpdatedAt = b.now()

	b.contacts[name] = next
	if err := b.persist(); err != nil {
		b.contacts[name] = prev
		return Contact{}, err
	}
	b.logger.Info("contact updated", zap.String("name", name), zap.Strings("fields", changed))
	return next, nil
}

// Delete removes the contact stored under name. Callers are expected to have
// obtained the user's confirmation.
func (b *Book) Delete(name string) error {
	name = strings.TrimSpace(name)
	prev, ok := b.contacts[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	delete(b.contacts, name)
	if err := b.persist(); err != nil {
		b.contacts[name] = prev
		return err
	}
	b.logger.Info("contact deleted", zap.String("name", name))
	return nil
}

// Search returns contacts whose name contains term, ignoring case, sorted by
// name. An empty term matches everything.
func (b *Book) Search(term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	var out []Entry
	for name, c := range b.contacts {
		if strings.Contains(strings.ToLower(name), term) {
			out = append(out, Entry{Name: name, Contact: c})
		}
	}
	sortEntries(out)
	return out
}

// All returns every contact sorted by name.
func (b *Book) All() []Entry {
	out := make([]Entry, 0, len(b.contacts))
	for name, c := range b.contacts {
		out = append(out, Entry{Name: name, Contact: c})
	}
	sortEntries(out)
	return out
}

// Snapshot returns a copy of the mapping.
func (b *Book) Snapshot() map[string]Contact {
	out := make(map[string]Contact, len(b.contacts))
	for name, c := range b.contacts {
		out[name] = c
	}
	return out
}

// Stats counts contacts per group. Groups are sorted by name.
func (b *Book) Stats() Stats {
	counts := make(map[string]int)
	for _, c := range b.contacts {
		counts[c.Group]++
	}
	s := Stats{Total: len(b.contacts)}
	for g, n := range counts {
		s.Groups = append(s.Groups, GroupCount{Group: g, Count: n})
	}
	sort.Slice(s.Groups, func(i, j int) bool {
		return s.Groups[i].Group < s.Groups[j].Group
	})
	return s
}

// Save writes the full mapping through the Store.
func (b *Book) Save() error {
	return b.persist()
}

func (b *Book) persist() error {
	if b.store == nil {
		return nil
	}
	if err := b.store.Save(b.contacts); err != nil {
		b.logger.Error("save failed", zap.Error(err))
		return fmt.Errorf("contact: saving: %w", err)
	}
	return nil
}

func nonEmpty(p *string) (string, bool) {
	if p == nil {
		return "", false
	}
	v := strings.TrimSpace(*p)
	return v, v != ""
}

func sortEntries(es []Entry) {
	sort.Slice(es, func(i, j int) bool { return es[i].Name < es[j].Name })
}
