package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"mentorhub/internal/adapters/persistence/models"
	"mentorhub/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// In-memory fakes for the repository interfaces. They mirror the storage
// guarantees the real layer provides: slot-key uniqueness, versioned updates
// and atomic counters, all under a mutex so concurrency tests are meaningful.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]*models.User{}}
}

func (r *fakeUserRepo) put(u *models.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
}

func (r *fakeUserRepo) Create(ctx context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u.ID = uint(len(r.users) + 1)
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	return err == nil, nil
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[uint]*models.MentorProfile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[uint]*models.MentorProfile{}}
}

func (r *fakeProfileRepo) Upsert(ctx context.Context, p *models.MentorProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == 0 {
		p.ID = uint(len(r.profiles) + 1)
	}
	r.profiles[p.UserID] = p
	return nil
}

func (r *fakeProfileRepo) GetByUserID(ctx context.Context, userID uint) (*models.MentorProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *fakeProfileRepo) List(ctx context.Context, offset, limit int) ([]*models.MentorProfile, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.MentorProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

type fakeMentorshipRepo struct {
	mu       sync.Mutex
	nextID   uint
	items    map[uint]*models.Mentorship
	sessions map[uint][]*models.MentorshipSession
	nextSess uint
}

func newFakeMentorshipRepo() *fakeMentorshipRepo {
	return &fakeMentorshipRepo{
		items:    map[uint]*models.Mentorship{},
		sessions: map[uint][]*models.MentorshipSession{},
	}
}

func (r *fakeMentorshipRepo) Create(ctx context.Context, m *models.Mentorship) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	cp := *m
	r.items[m.ID] = &cp
	return nil
}

func (r *fakeMentorshipRepo) GetByID(ctx context.Context, id uint) (*models.Mentorship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *m
	for _, s := range r.sessions[id] {
		cp.Sessions = append(cp.Sessions, *s)
	}
	return &cp, nil
}

func (r *fakeMentorshipRepo) UpdateFields(ctx context.Context, id uint, version int, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok || m.Version != version {
		return repositories.ErrStaleAggregate
	}
	m.Version = version + 1
	applyMentorshipUpdates(m, updates)
	return nil
}

func applyMentorshipUpdates(m *models.Mentorship, updates map[string]interface{}) {
	for key, val := range updates {
		switch key {
		case "version":
			m.Version = val.(int)
		case "status":
			m.Status = val.(models.MentorshipStatus)
		case "rejection_reason":
			m.RejectionReason = val.(string)
		case "payment_status":
			m.PaymentStatus = val.(string)
		case "payment_id":
			m.PaymentID = val.(string)
		case "used_sessions":
			m.UsedSessions = val.(int)
		case "proposed_start_date":
			m.ProposedStartDate = timePtr(val)
		case "mentor_suggested_start_date":
			m.MentorSuggestedStartDate = timePtr(val)
		case "start_date":
			m.StartDate = timePtr(val)
		case "end_date":
			m.EndDate = timePtr(val)
		case "user_confirmed_completion":
			m.UserConfirmedCompletion = val.(bool)
		case "mentor_confirmed_completion":
			m.MentorConfirmedCompletion = val.(bool)
		case "user_rating":
			v := val.(int)
			m.UserRating = &v
		case "user_comment":
			m.UserComment = val.(string)
		case "mentor_rating":
			v := val.(int)
			m.MentorRating = &v
		case "mentor_comment":
			m.MentorComment = val.(string)
		}
	}
}

// sameDay compares calendar days, papering over zone differences between
// parsed dates and time.Now based fixtures.
func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func timePtr(val interface{}) *time.Time {
	if val == nil {
		return nil
	}
	t := val.(time.Time)
	return &t
}

func (r *fakeMentorshipRepo) IncrementUsedSessions(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok || m.UsedSessions >= m.TotalSessions {
		return repositories.ErrBudgetExhausted
	}
	m.UsedSessions++
	return nil
}

func (r *fakeMentorshipRepo) ClaimWalletCredit(ctx context.Context, id uint) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return false, gorm.ErrRecordNotFound
	}
	if m.WalletCredited {
		return false, nil
	}
	m.WalletCredited = true
	return true, nil
}

func (r *fakeMentorshipRepo) ReleaseWalletCredit(ctx context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.items[id]; ok {
		m.WalletCredited = false
	}
	return nil
}

func (r *fakeMentorshipRepo) AppendSession(ctx context.Context, session *models.MentorshipSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSess++
	session.ID = r.nextSess
	r.sessions[session.MentorshipID] = append(r.sessions[session.MentorshipID], session)
	return nil
}

func (r *fakeMentorshipRepo) UpdateSessionFields(ctx context.Context, sessionID uint, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, list := range r.sessions {
		for _, s := range list {
			if s.ID == sessionID {
				if v, ok := updates["status"]; ok {
					s.Status = v.(models.SessionStatus)
				}
				if v, ok := updates["date"]; ok {
					s.Date = timePtr(v)
				}
				if v, ok := updates["slot"]; ok {
					s.Slot = v.(string)
				}
				return nil
			}
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeMentorshipRepo) GetBookedSessionByBooking(ctx context.Context, mentorshipID, bookingID uint) (*models.MentorshipSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions[mentorshipID] {
		if s.BookingID == bookingID && s.Status == models.SessionBooked {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMentorshipRepo) CountBudgetedSessions(ctx context.Context, mentorshipID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.sessions[mentorshipID] {
		if s.Status == models.SessionBooked || s.Status == models.SessionCompleted {
			n++
		}
	}
	return n, nil
}

func (r *fakeMentorshipRepo) FindOpenByPair(ctx context.Context, userID, mentorID uint) (*models.Mentorship, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.items {
		if m.UserID == userID && m.MentorID == mentorID && !m.Status.Terminal() {
			cp := *m
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMentorshipRepo) HasWithStatus(ctx context.Context, userID, mentorID uint, statuses []models.MentorshipStatus) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.items {
		if m.UserID != userID || m.MentorID != mentorID {
			continue
		}
		for _, st := range statuses {
			if m.Status == st {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeMentorshipRepo) ListByUser(ctx context.Context, userID uint, offset, limit int, status *models.MentorshipStatus) ([]*models.Mentorship, int64, error) {
	return r.list(func(m *models.Mentorship) bool { return m.UserID == userID }, status)
}

func (r *fakeMentorshipRepo) ListByMentor(ctx context.Context, mentorID uint, offset, limit int, status *models.MentorshipStatus) ([]*models.Mentorship, int64, error) {
	return r.list(func(m *models.Mentorship) bool { return m.MentorID == mentorID }, status)
}

func (r *fakeMentorshipRepo) list(match func(*models.Mentorship) bool, status *models.MentorshipStatus) ([]*models.Mentorship, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Mentorship
	for _, m := range r.items {
		if match(m) && (status == nil || m.Status == *status) {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

type fakeBookingRepo struct {
	mu       sync.Mutex
	nextID   uint
	items    map[uint]*models.Booking
	slotKeys map[string]uint
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{
		items:    map[uint]*models.Booking{},
		slotKeys: map[string]uint{},
	}
}

func (r *fakeBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b.SlotKey != nil {
		if _, taken := r.slotKeys[*b.SlotKey]; taken {
			return repositories.ErrDuplicateSlot
		}
	}
	r.nextID++
	b.ID = r.nextID
	b.CreatedAt = time.Now()
	if b.SlotKey != nil {
		r.slotKeys[*b.SlotKey] = b.ID
	}
	cp := *b
	r.items[b.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeBookingRepo) UpdateFields(ctx context.Context, id uint, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	if val, has := updates["slot_key"]; has {
		if val == nil {
			if b.SlotKey != nil {
				delete(r.slotKeys, *b.SlotKey)
				b.SlotKey = nil
			}
		} else {
			key := val.(string)
			if owner, taken := r.slotKeys[key]; taken && owner != id {
				return repositories.ErrDuplicateSlot
			}
			if b.SlotKey != nil {
				delete(r.slotKeys, *b.SlotKey)
			}
			r.slotKeys[key] = id
			b.SlotKey = &key
		}
	}

	for key, val := range updates {
		switch key {
		case "status":
			b.Status = val.(models.BookingStatus)
		case "meeting_link":
			b.MeetingLink = val.(string)
		case "booking_date":
			b.BookingDate = val.(time.Time)
		case "slot":
			b.Slot = val.(string)
		case "reschedule_by":
			b.RescheduleBy = val.(string)
		case "proposed_date":
			b.ProposedDate = timePtr(val)
		case "proposed_slot":
			b.ProposedSlot = val.(string)
		}
	}
	return nil
}

func (r *fakeBookingRepo) CountActiveByUserOnDate(ctx context.Context, userID uint, date time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.items {
		if b.UserID == userID && sameDay(b.BookingDate, date) && b.Status != models.BookingCancelled {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) ListActiveSlots(ctx context.Context, mentorID uint, date time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var slots []string
	for _, b := range r.items {
		if b.MentorID == mentorID && sameDay(b.BookingDate, date) && b.Status != models.BookingCancelled {
			slots = append(slots, b.Slot)
		}
	}
	return slots, nil
}

func (r *fakeBookingRepo) ListByMentor(ctx context.Context, mentorID uint, offset, limit int, status *models.BookingStatus) ([]*models.Booking, int64, error) {
	return r.list(func(b *models.Booking) bool { return b.MentorID == mentorID }, status)
}

func (r *fakeBookingRepo) ListByUser(ctx context.Context, userID uint, offset, limit int, status *models.BookingStatus) ([]*models.Booking, int64, error) {
	return r.list(func(b *models.Booking) bool { return b.UserID == userID }, status)
}

func (r *fakeBookingRepo) list(match func(*models.Booking) bool, status *models.BookingStatus) ([]*models.Booking, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.items {
		if match(b) && (status == nil || b.Status == *status) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeBookingRepo) ListConfirmedOnDate(ctx context.Context, date time.Time) ([]*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Booking
	for _, b := range r.items {
		if sameDay(b.BookingDate, date) && b.Status == models.BookingConfirmed {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CancelActiveByPair(ctx context.Context, userID, mentorID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.items {
		if b.UserID == userID && b.MentorID == mentorID && !b.Status.Terminal() {
			b.Status = models.BookingCancelled
			if b.SlotKey != nil {
				delete(r.slotKeys, *b.SlotKey)
				b.SlotKey = nil
			}
		}
	}
	return nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *fakeNotifier) Notify(recipientID uint, event string, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *fakeNotifier) has(event string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, e := range n.events {
		if e == event {
			return true
		}
	}
	return false
}

func (n *fakeNotifier) count(event string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	var c int
	for _, e := range n.events {
		if e == event {
			c++
		}
	}
	return c
}

type fakeGateway struct {
	err   error
	calls int
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, amount float64, reference string) (*CheckoutSession, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return &CheckoutSession{
		SessionID: "cs_test_" + reference,
		URL:       "https://pay.test/" + reference,
	}, nil
}

type fakeWallet struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (w *fakeWallet) AddEarnings(ctx context.Context, mentorID uint, amount float64, mentorshipID uint) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.calls++
	return nil
}

func (w *fakeWallet) credits() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

type fakeLedger struct {
	mu          sync.Mutex
	booked      int
	completed   int
	cancelled   int
	rescheduled int
	lastDate    time.Time
	lastSlot    string
	bookErr     error
	completeErr error
}

func (l *fakeLedger) RecordBookedSession(ctx context.Context, userID, mentorID, bookingID uint, date time.Time, slot, meetingLink string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.bookErr != nil {
		return l.bookErr
	}
	l.booked++
	return nil
}

func (l *fakeLedger) RecordCompletedSession(ctx context.Context, userID, mentorID, bookingID uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.completeErr != nil {
		return l.completeErr
	}
	l.completed++
	return nil
}

func (l *fakeLedger) RecordCancelledSession(ctx context.Context, userID, mentorID, bookingID uint) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cancelled++
	return nil
}

func (l *fakeLedger) RecordRescheduledSession(ctx context.Context, userID, mentorID, bookingID uint, date time.Time, slot string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rescheduled++
	l.lastDate = date
	l.lastSlot = slot
	return nil
}

var errGatewayDown = errors.New("gateway unreachable")
