package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"joinify/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID       map[string]*domain.User
	byUsername map[string]*domain.User
	byEmail    map[string]*domain.User
	nextID     int
	getErr     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byID:       make(map[string]*domain.User),
		byUsername: make(map[string]*domain.User),
		byEmail:    make(map[string]*domain.User),
	}
}

func (f *fakeUserRepo) add(u *domain.User) *domain.User {
	f.byID[u.ID] = u
	f.byUsername[u.Username] = u
	f.byEmail[u.Email] = u
	return u
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if _, ok := f.byUsername[u.Username]; ok {
		return domain.ErrDuplicateUsername
	}
	if _, ok := f.byEmail[u.Email]; ok {
		return domain.ErrDuplicateEmail
	}
	f.nextID++
	u.ID = "user-" + strconv.Itoa(f.nextID)
	f.add(u)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if u, ok := f.byUsername[username]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if u, ok := f.byEmail[email]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	byID      map[string]*domain.Event
	nextID    int
	createErr error
	deleted   []string
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{byID: make(map[string]*domain.Event)}
}

func (f *fakeEventRepo) Create(ctx context.Context, e *domain.Event) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	e.ID = "event-" + strconv.Itoa(f.nextID)
	f.byID[e.ID] = e
	return nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if e, ok := f.byID[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeEventRepo) List(ctx context.Context, p domain.PaginationParams) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeEventRepo) ListUpcoming(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.DateTime.After(now) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListPast(ctx context.Context, now time.Time) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if !e.DateTime.After(now) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListByOrganizerID(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.byID {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeRSVPRepo implements domain.RSVPRepository with the same admission
// semantics as the postgres repository: duplicate check, capacity check, and
// insert happen atomically under a mutex, so concurrent callers contend the
// way transactions do on the event row lock.
type fakeRSVPRepo struct {
	mu       sync.Mutex
	rsvps    []*domain.RSVP
	capacity map[string]int
	users    *fakeUserRepo
	events   *fakeEventRepo
	nextID   int
}

func newFakeRSVPRepo(users *fakeUserRepo, events *fakeEventRepo) *fakeRSVPRepo {
	return &fakeRSVPRepo{
		capacity: make(map[string]int),
		users:    users,
		events:   events,
	}
}

func (f *fakeRSVPRepo) live(userID, eventID string) *domain.RSVP {
	for _, r := range f.rsvps {
		if r.UserID == userID && r.EventID == eventID && r.Status != domain.RSVPCancelled {
			return r
		}
	}
	return nil
}

func (f *fakeRSVPRepo) confirmed(eventID string) int {
	n := 0
	for _, r := range f.rsvps {
		if r.EventID == eventID && r.Status == domain.RSVPConfirmed {
			n++
		}
	}
	return n
}

func (f *fakeRSVPRepo) Reserve(ctx context.Context, userID, eventID string, createdAt time.Time) (*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cap, ok := f.capacity[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if f.live(userID, eventID) != nil {
		return nil, domain.ErrDuplicateRSVP
	}
	if f.confirmed(eventID) >= cap {
		return nil, domain.ErrEventFull
	}
	f.nextID++
	r := &domain.RSVP{
		ID:        "rsvp-" + strconv.Itoa(f.nextID),
		UserID:    userID,
		EventID:   eventID,
		Status:    domain.RSVPConfirmed,
		CreatedAt: createdAt,
	}
	f.rsvps = append(f.rsvps, r)
	cp := *r
	return &cp, nil
}

func (f *fakeRSVPRepo) Cancel(ctx context.Context, userID, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.live(userID, eventID)
	if r == nil {
		return domain.ErrNotFound
	}
	r.Status = domain.RSVPCancelled
	return nil
}

func (f *fakeRSVPRepo) SetStatus(ctx context.Context, userID, eventID string, status domain.RSVPStatus) (*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cap, ok := f.capacity[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	r := f.live(userID, eventID)
	if r == nil {
		return nil, domain.ErrNotFound
	}
	if status == domain.RSVPConfirmed && r.Status != domain.RSVPConfirmed && f.confirmed(eventID) >= cap {
		return nil, domain.ErrEventFull
	}
	r.Status = status
	cp := *r
	return &cp, nil
}

func (f *fakeRSVPRepo) PromotePending(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cap, ok := f.capacity[eventID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	n := f.confirmed(eventID)
	for _, r := range f.rsvps {
		if n >= cap {
			break
		}
		if r.EventID == eventID && r.Status == domain.RSVPPending {
			r.Status = domain.RSVPConfirmed
			n++
		}
	}
	var out []*domain.RSVP
	for _, r := range f.rsvps {
		if r.EventID == eventID && r.Status == domain.RSVPConfirmed {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRSVPRepo) GetLive(ctx context.Context, userID, eventID string) (*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r := f.live(userID, eventID); r != nil {
		cp := *r
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRSVPRepo) ListByEvent(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RSVP
	for _, r := range f.rsvps {
		if r.EventID == eventID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRSVPRepo) ListPendingByEvent(ctx context.Context, eventID string) ([]*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RSVP
	for _, r := range f.rsvps {
		if r.EventID == eventID && r.Status == domain.RSVPPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRSVPRepo) ListConfirmedUsersByEvent(ctx context.Context, eventID string) ([]*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.User
	for _, r := range f.rsvps {
		if r.EventID == eventID && r.Status == domain.RSVPConfirmed {
			if u, ok := f.users.byID[r.UserID]; ok {
				cp := *u
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (f *fakeRSVPRepo) ListByUser(ctx context.Context, userID string) ([]*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RSVP
	for _, r := range f.rsvps {
		if r.UserID == userID {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRSVPRepo) ListUpcomingByUser(ctx context.Context, userID string, now time.Time) ([]*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RSVP
	for _, r := range f.rsvps {
		if r.UserID != userID {
			continue
		}
		if e, ok := f.events.byID[r.EventID]; ok && e.DateTime.After(now) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRSVPRepo) ListPastByUser(ctx context.Context, userID string, now time.Time) ([]*domain.RSVP, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.RSVP
	for _, r := range f.rsvps {
		if r.UserID != userID {
			continue
		}
		if e, ok := f.events.byID[r.EventID]; ok && !e.DateTime.After(now) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRSVPRepo) CountByEvent(ctx context.Context, eventID string) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	confirmed, total := 0, 0
	for _, r := range f.rsvps {
		if r.EventID != eventID {
			continue
		}
		total++
		if r.Status == domain.RSVPConfirmed {
			confirmed++
		}
	}
	return confirmed, total, nil
}

// fakeMailer records sent emails.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []string
	sendErr error
}

func (f *fakeMailer) Send(to, subject, html, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, to)
	return nil
}

// fakeRenderer implements domain.EmailTemplateRenderer.
type fakeRenderer struct {
	renderErr error
}

func (f *fakeRenderer) Render(name string, data interface{}) (string, string, string, error) {
	if f.renderErr != nil {
		return "", "", "", f.renderErr
	}
	return "subject", "<p>html</p>", "text", nil
}

// rsvpFixture bundles the fakes behind an RSVPService for tests.
type rsvpFixture struct {
	users  *fakeUserRepo
	events *fakeEventRepo
	rsvps  *fakeRSVPRepo
	mailer *fakeMailer
	svc    domain.RSVPService
}

func newRSVPFixture() *rsvpFixture {
	users := newFakeUserRepo()
	events := newFakeEventRepo()
	rsvps := newFakeRSVPRepo(users, events)
	mailer := &fakeMailer{}
	svc := NewRSVPService(users, events, rsvps, mailer, &fakeRenderer{}, slog.New(slog.DiscardHandler))
	return &rsvpFixture{users: users, events: events, rsvps: rsvps, mailer: mailer, svc: svc}
}

// addUser registers an attendee with the given ID.
func (fx *rsvpFixture) addUser(id string) *domain.User {
	now := time.Now()
	return fx.users.add(&domain.User{
		ID:        id,
		Username:  id,
		Email:     id + "@example.com",
		Role:      domain.RoleAttendee,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// addEvent registers an event with the given ID and capacity, dated in the
// future unless past is true.
func (fx *rsvpFixture) addEvent(id string, capacity int, past bool) *domain.Event {
	dt := time.Now().Add(24 * time.Hour)
	if past {
		dt = time.Now().Add(-24 * time.Hour)
	}
	e := &domain.Event{
		ID:          id,
		Title:       "Event " + id,
		DateTime:    dt,
		Location:    "Test Hall",
		MaxCapacity: capacity,
		OrganizerID: "organizer-1",
	}
	fx.events.byID[id] = e
	fx.rsvps.capacity[id] = capacity
	return e
}

func TestRSVPService_Reserve(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(*rsvpFixture)
		userID  string
		eventID string
		wantErr error
	}{
		{
			name: "success",
			setup: func(fx *rsvpFixture) {
				fx.addUser("u1")
				fx.addEvent("e1", 10, false)
			},
			userID:  "u1",
			eventID: "e1",
		},
		{
			name: "duplicate live rsvp",
			setup: func(fx *rsvpFixture) {
				fx.addUser("u1")
				fx.addEvent("e1", 10, false)
				_, err := fx.svc.Reserve(ctx, "u1", "e1")
				require.NoError(t, err)
			},
			userID:  "u1",
			eventID: "e1",
			wantErr: domain.ErrDuplicateRSVP,
		},
		{
			name: "event at capacity",
			setup: func(fx *rsvpFixture) {
				fx.addUser("u1")
				fx.addUser("u2")
				fx.addEvent("e1", 1, false)
				_, err := fx.svc.Reserve(ctx, "u1", "e1")
				require.NoError(t, err)
			},
			userID:  "u2",
			eventID: "e1",
			wantErr: domain.ErrEventFull,
		},
		{
			name: "past event",
			setup: func(fx *rsvpFixture) {
				fx.addUser("u1")
				fx.addEvent("e1", 10, true)
			},
			userID:  "u1",
			eventID: "e1",
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "unknown user",
			setup: func(fx *rsvpFixture) {
				fx.addEvent("e1", 10, false)
			},
			userID:  "ghost",
			eventID: "e1",
			wantErr: domain.ErrNotFound,
		},
		{
			name: "unknown event",
			setup: func(fx *rsvpFixture) {
				fx.addUser("u1")
			},
			userID:  "u1",
			eventID: "ghost",
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "missing ids",
			setup:   func(fx *rsvpFixture) {},
			userID:  "",
			eventID: "",
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newRSVPFixture()
			tt.setup(fx)

			rsvp, err := fx.svc.Reserve(ctx, tt.userID, tt.eventID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, rsvp)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, rsvp)
			assert.Equal(t, tt.userID, rsvp.UserID)
			assert.Equal(t, tt.eventID, rsvp.EventID)
			assert.Equal(t, domain.RSVPConfirmed, rsvp.Status)
		})
	}
}

// TestRSVPService_Reserve_Concurrent races many attendees at a small event
// and checks that exactly capacity of them are admitted.
func TestRSVPService_Reserve_Concurrent(t *testing.T) {
	ctx := context.Background()
	const capacity = 3
	const attendees = 20

	fx := newRSVPFixture()
	fx.addEvent("e1", capacity, false)
	for i := 0; i < attendees; i++ {
		fx.addUser("u" + strconv.Itoa(i))
	}

	var wg sync.WaitGroup
	errs := make([]error, attendees)
	for i := 0; i < attendees; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = fx.svc.Reserve(ctx, "u"+strconv.Itoa(i), "e1")
		}(i)
	}
	wg.Wait()

	admitted, full := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			admitted++
		case errors.Is(err, domain.ErrEventFull):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, capacity, admitted)
	assert.Equal(t, attendees-capacity, full)

	counts, err := fx.svc.Counts(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, capacity, counts.Confirmed)
	assert.True(t, counts.AtCapacity)
}

// TestRSVPService_CancelFreesCapacity runs the single-spot handoff: A holds
// the only spot, B is rejected, A cancels, B gets in.
func TestRSVPService_CancelFreesCapacity(t *testing.T) {
	ctx := context.Background()
	fx := newRSVPFixture()
	fx.addUser("alice")
	fx.addUser("bob")
	fx.addEvent("e1", 1, false)

	_, err := fx.svc.Reserve(ctx, "alice", "e1")
	require.NoError(t, err)

	_, err = fx.svc.Reserve(ctx, "bob", "e1")
	assert.ErrorIs(t, err, domain.ErrEventFull)

	require.NoError(t, fx.svc.Cancel(ctx, "alice", "e1"))

	rsvp, err := fx.svc.Reserve(ctx, "bob", "e1")
	require.NoError(t, err)
	assert.Equal(t, domain.RSVPConfirmed, rsvp.Status)

	// alice's cancelled row stays in history
	all, err := fx.svc.ListForEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRSVPService_Cancel(t *testing.T) {
	ctx := context.Background()
	fx := newRSVPFixture()
	fx.addUser("u1")
	fx.addEvent("e1", 5, false)

	err := fx.svc.Cancel(ctx, "u1", "e1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = fx.svc.Reserve(ctx, "u1", "e1")
	require.NoError(t, err)
	require.NoError(t, fx.svc.Cancel(ctx, "u1", "e1"))

	// cancelling twice fails, the live reservation is gone
	err = fx.svc.Cancel(ctx, "u1", "e1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRSVPService_SetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid status", func(t *testing.T) {
		fx := newRSVPFixture()
		_, err := fx.svc.SetStatus(ctx, "u1", "e1", domain.RSVPStatus("MAYBE"))
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("no live reservation", func(t *testing.T) {
		fx := newRSVPFixture()
		fx.addEvent("e1", 5, false)
		_, err := fx.svc.SetStatus(ctx, "u1", "e1", domain.RSVPPending)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("demote then promote within capacity", func(t *testing.T) {
		fx := newRSVPFixture()
		fx.addUser("u1")
		fx.addEvent("e1", 5, false)
		_, err := fx.svc.Reserve(ctx, "u1", "e1")
		require.NoError(t, err)

		rsvp, err := fx.svc.SetStatus(ctx, "u1", "e1", domain.RSVPPending)
		require.NoError(t, err)
		assert.Equal(t, domain.RSVPPending, rsvp.Status)

		rsvp, err = fx.svc.SetStatus(ctx, "u1", "e1", domain.RSVPConfirmed)
		require.NoError(t, err)
		assert.Equal(t, domain.RSVPConfirmed, rsvp.Status)
	})

	t.Run("confirm blocked at capacity", func(t *testing.T) {
		fx := newRSVPFixture()
		fx.addUser("u1")
		fx.addUser("u2")
		fx.addEvent("e1", 1, false)
		_, err := fx.svc.Reserve(ctx, "u1", "e1")
		require.NoError(t, err)

		// u2 waits as PENDING while u1 holds the spot
		_, err = fx.rsvps.Reserve(ctx, "u2", "e1", time.Now())
		assert.ErrorIs(t, err, domain.ErrEventFull)
		fx.rsvps.rsvps = append(fx.rsvps.rsvps, &domain.RSVP{
			ID: "rsvp-pending", UserID: "u2", EventID: "e1",
			Status: domain.RSVPPending, CreatedAt: time.Now(),
		})

		_, err = fx.svc.SetStatus(ctx, "u2", "e1", domain.RSVPConfirmed)
		assert.ErrorIs(t, err, domain.ErrEventFull)
	})
}

func TestRSVPService_GetStatus(t *testing.T) {
	ctx := context.Background()
	fx := newRSVPFixture()
	fx.addUser("u1")
	fx.addEvent("e1", 5, false)

	status, ok, err := fx.svc.GetStatus(ctx, "u1", "e1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, status)

	_, err = fx.svc.Reserve(ctx, "u1", "e1")
	require.NoError(t, err)

	status, ok, err = fx.svc.GetStatus(ctx, "u1", "e1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.RSVPConfirmed, status)

	has, err := fx.svc.HasReserved(ctx, "u1", "e1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRSVPService_Counts(t *testing.T) {
	ctx := context.Background()
	fx := newRSVPFixture()
	fx.addEvent("e1", 3, false)

	counts, err := fx.svc.Counts(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, &domain.EventCounts{Confirmed: 0, Total: 0, Available: 3, AtCapacity: false}, counts)

	for i := 0; i < 3; i++ {
		id := "u" + strconv.Itoa(i)
		fx.addUser(id)
		_, err := fx.svc.Reserve(ctx, id, "e1")
		require.NoError(t, err)
	}
	require.NoError(t, fx.svc.Cancel(ctx, "u0", "e1"))

	counts, err = fx.svc.Counts(ctx, "e1")
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Confirmed)
	assert.Equal(t, 3, counts.Total)
	assert.Equal(t, 1, counts.Available)
	assert.False(t, counts.AtCapacity)

	_, err = fx.svc.Counts(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRSVPService_PromotePending(t *testing.T) {
	ctx := context.Background()
	fx := newRSVPFixture()
	fx.addEvent("e1", 2, false)

	base := time.Now()
	for i := 0; i < 4; i++ {
		id := "u" + strconv.Itoa(i)
		fx.addUser(id)
		fx.rsvps.rsvps = append(fx.rsvps.rsvps, &domain.RSVP{
			ID:        fmt.Sprintf("rsvp-%d", i),
			UserID:    id,
			EventID:   "e1",
			Status:    domain.RSVPPending,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		})
	}

	// Oldest two pending get the two spots.
	confirmed, err := fx.svc.PromotePending(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, confirmed, 2)
	assert.Equal(t, "u0", confirmed[0].UserID)
	assert.Equal(t, "u1", confirmed[1].UserID)

	pending, err := fx.svc.PendingForEvent(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	// A second pass changes nothing.
	confirmed, err = fx.svc.PromotePending(ctx, "e1")
	require.NoError(t, err)
	assert.Len(t, confirmed, 2)

	// Freeing a spot lets the next-oldest pending in.
	require.NoError(t, fx.svc.Cancel(ctx, "u0", "e1"))
	confirmed, err = fx.svc.PromotePending(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, confirmed, 2)
	assert.Equal(t, "u1", confirmed[0].UserID)
	assert.Equal(t, "u2", confirmed[1].UserID)

	_, err = fx.svc.PromotePending(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRSVPService_ConfirmationEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("sent on reserve", func(t *testing.T) {
		fx := newRSVPFixture()
		fx.addUser("u1")
		fx.addEvent("e1", 5, false)
		_, err := fx.svc.Reserve(ctx, "u1", "e1")
		require.NoError(t, err)
		require.Len(t, fx.mailer.sent, 1)
		assert.Equal(t, "u1@example.com", fx.mailer.sent[0])
	})

	t.Run("send failure does not fail the reservation", func(t *testing.T) {
		fx := newRSVPFixture()
		fx.mailer.sendErr = errors.New("smtp down")
		fx.addUser("u1")
		fx.addEvent("e1", 5, false)
		rsvp, err := fx.svc.Reserve(ctx, "u1", "e1")
		require.NoError(t, err)
		assert.Equal(t, domain.RSVPConfirmed, rsvp.Status)
	})
}
