// Package testhelpers holds in-memory repositories for unit tests and the
// database-backed TestHelper used by the integration suite.
package testhelpers

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/constants"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/models"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/repositories"
	"github.com/Allan-Binga/Modern-Hostel-Management-System-sub000/internal/utils"
)

// MemStore is one shared in-memory database. Every repository built from it
// sees the same rows, so cross-table effects (a webhook flipping bookings,
// rooms and notifications) can be asserted the way they would be in Postgres.
type MemStore struct {
	mu    sync.Mutex
	clock time.Time

	tenants       map[uuid.UUID]*models.Tenant
	admins        map[uuid.UUID]*models.Admin
	rooms         map[uuid.UUID]*models.Room
	bookings      map[uuid.UUID]*models.Booking
	payments      map[uuid.UUID]*models.Payment
	events        map[string]time.Time
	notifications map[uuid.UUID]*models.Notification
	issues        map[uuid.UUID]*models.Issue
	technicians   map[uuid.UUID]*models.Technician
	ads           map[uuid.UUID]*models.Advertisement
	visitors      map[uuid.UUID]*models.Visitor
	verifications map[uuid.UUID]*models.EmailVerificationCode
	resets        map[uuid.UUID]*models.PasswordResetCode
	attempts      map[uuid.UUID]*repositories.LoginAttempts
	tenantTokens  map[string]*models.RefreshToken
	adminTokens   map[string]*models.RefreshToken
	audit         []*models.AdminAuditLog

	// FailNext, when set, is returned (once) by the next write that checks it.
	FailNext error
}

func NewMemStore() *MemStore {
	return &MemStore{
		clock:         time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		tenants:       map[uuid.UUID]*models.Tenant{},
		admins:        map[uuid.UUID]*models.Admin{},
		rooms:         map[uuid.UUID]*models.Room{},
		bookings:      map[uuid.UUID]*models.Booking{},
		payments:      map[uuid.UUID]*models.Payment{},
		events:        map[string]time.Time{},
		notifications: map[uuid.UUID]*models.Notification{},
		issues:        map[uuid.UUID]*models.Issue{},
		technicians:   map[uuid.UUID]*models.Technician{},
		ads:           map[uuid.UUID]*models.Advertisement{},
		visitors:      map[uuid.UUID]*models.Visitor{},
		verifications: map[uuid.UUID]*models.EmailVerificationCode{},
		resets:        map[uuid.UUID]*models.PasswordResetCode{},
		attempts:      map[uuid.UUID]*repositories.LoginAttempts{},
		tenantTokens:  map[string]*models.RefreshToken{},
		adminTokens:   map[string]*models.RefreshToken{},
	}
}

// tick hands out strictly increasing timestamps so "newest first" is stable.
func (s *MemStore) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

func (s *MemStore) takeFailure() error {
	err := s.FailNext
	s.FailNext = nil
	return err
}

func tag(n int) pgconn.CommandTag {
	if n == 0 {
		return pgconn.CommandTag("UPDATE 0")
	}
	return pgconn.CommandTag("UPDATE 1")
}

func copyOf[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Repositories

func (s *MemStore) Tenants() repositories.TenantRepository       { return &memTenants{s} }
func (s *MemStore) Admins() repositories.AdminRepository         { return &memAdmins{s} }
func (s *MemStore) Rooms() repositories.RoomRepository           { return &memRooms{s} }
func (s *MemStore) Bookings() repositories.BookingRepository     { return &memBookings{s} }
func (s *MemStore) Payments() repositories.PaymentRepository     { return &memPayments{s} }
func (s *MemStore) Issues() repositories.IssueRepository         { return &memIssues{s} }
func (s *MemStore) Technicians() repositories.TechnicianRepository {
	return &memTechnicians{s}
}
func (s *MemStore) Advertisements() repositories.AdvertisementRepository {
	return &memAds{s}
}
func (s *MemStore) Visitors() repositories.VisitorRepository { return &memVisitors{s} }
func (s *MemStore) Notifications() repositories.NotificationRepository {
	return &memNotifications{s}
}
func (s *MemStore) EmailVerifications() repositories.EmailVerificationRepository {
	return &memVerifications{s}
}
func (s *MemStore) PasswordResets() repositories.PasswordResetRepository {
	return &memResets{s}
}
func (s *MemStore) LoginAttempts() repositories.LoginAttemptsRepository {
	return &memAttempts{s}
}
func (s *MemStore) TenantTokens() repositories.TokenRepository {
	return &memTokens{s: s, table: func() map[string]*models.RefreshToken { return s.tenantTokens }}
}
func (s *MemStore) AdminTokens() repositories.TokenRepository {
	return &memTokens{s: s, table: func() map[string]*models.RefreshToken { return s.adminTokens }}
}
func (s *MemStore) AuditLog() repositories.AdminAuditLogRepository { return &memAudit{s} }

// Direct accessors for assertions.

func (s *MemStore) Room(number int) *models.Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyOf(s.roomByNumber(number))
}

func (s *MemStore) Payment(id uuid.UUID) *models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyOf(s.payments[id])
}

func (s *MemStore) BookingsFor(tenantID uuid.UUID) []*models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Booking
	for _, b := range s.bookings {
		if b.TenantID == tenantID {
			out = append(out, copyOf(b))
		}
	}
	return out
}

func (s *MemStore) NotificationsFor(tenantID uuid.UUID) []*models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Notification
	for _, n := range s.notifications {
		if n.TenantID == tenantID {
			out = append(out, copyOf(n))
		}
	}
	return out
}

func (s *MemStore) AuditEntries() []*models.AdminAuditLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*models.AdminAuditLog(nil), s.audit...)
}

func (s *MemStore) RefreshTokenCount(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.tenantTokens {
		if t.UserID == userID {
			n++
		}
	}
	for _, t := range s.adminTokens {
		if t.UserID == userID {
			n++
		}
	}
	return n
}

func (s *MemStore) roomByNumber(number int) *models.Room {
	for _, r := range s.rooms {
		if r.RoomNumber == number {
			return r
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Tenants
// ---------------------------------------------------------------------------

type memTenants struct{ s *MemStore }

func (r *memTenants) Create(_ context.Context, t *models.Tenant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.tenants {
		if existing.Email == t.Email {
			return utils.ErrEmailExists
		}
		if existing.PhoneNumber == t.PhoneNumber {
			return utils.ErrPhoneExists
		}
	}
	now := r.s.tick()
	t.CreatedAt, t.UpdatedAt = now, now
	t.RowVersion = 1
	r.s.tenants[t.ID] = copyOf(t)
	return nil
}

func (r *memTenants) GetByID(_ context.Context, id uuid.UUID) (*models.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.tenants[id]), nil
}

func (r *memTenants) GetByEmail(_ context.Context, email string) (*models.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tenants {
		if t.Email == email {
			return copyOf(t), nil
		}
	}
	return nil, nil
}

func (r *memTenants) GetByPhoneNumber(_ context.Context, phone string) (*models.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, t := range r.s.tenants {
		if t.PhoneNumber == phone {
			return copyOf(t), nil
		}
	}
	return nil, nil
}

func (r *memTenants) List(_ context.Context) ([]*models.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Tenant
	for _, t := range r.s.tenants {
		out = append(out, copyOf(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memTenants) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	list, _ := r.List(ctx)
	ids := make([]uuid.UUID, 0, len(list))
	for _, t := range list {
		ids = append(ids, t.ID)
	}
	return ids, nil
}

func (r *memTenants) UpdateIfVersion(_ context.Context, t *models.Tenant, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.tenants[t.ID]
	if !ok || cur.RowVersion != expected {
		return tag(0), nil
	}
	for _, other := range r.s.tenants {
		if other.ID != t.ID && other.PhoneNumber == t.PhoneNumber {
			return tag(0), utils.ErrPhoneExists
		}
	}
	next := copyOf(t)
	next.RowVersion = expected + 1
	next.UpdatedAt = r.s.tick()
	r.s.tenants[t.ID] = next
	return tag(1), nil
}

func (r *memTenants) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Tenant) error) error {
	load := func(ctx context.Context) (*models.Tenant, error) { return r.GetByID(ctx, id) }
	return repositories.UpdateVersioned(ctx, constants.OptimisticLockAttempts, load, r.UpdateIfVersion, mutate)
}

func (r *memTenants) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.PasswordHash = hash
	return nil
}

func (r *memTenants) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tenants[id]
	if !ok {
		return pgx.ErrNoRows
	}
	t.EmailVerified = true
	return nil
}

func (r *memTenants) HasActiveTenancy(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bookings {
		if b.TenantID != id || b.PaymentStatus != models.BookingPaid {
			continue
		}
		if room, ok := r.s.rooms[b.RoomID]; ok && room.Status == models.RoomStatusOccupied {
			return true, nil
		}
	}
	return false, nil
}

func (r *memTenants) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.s.tenants, id)
	return nil
}

// ---------------------------------------------------------------------------
// Admins, audit
// ---------------------------------------------------------------------------

type memAdmins struct{ s *MemStore }

func (r *memAdmins) Create(_ context.Context, a *models.Admin) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.admins {
		if existing.Email == a.Email {
			return utils.ErrEmailExists
		}
	}
	now := r.s.tick()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.admins[a.ID] = copyOf(a)
	return nil
}

func (r *memAdmins) GetByID(_ context.Context, id uuid.UUID) (*models.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.admins[id]), nil
}

func (r *memAdmins) GetByEmail(_ context.Context, email string) (*models.Admin, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.admins {
		if a.Email == email {
			return copyOf(a), nil
		}
	}
	return nil, nil
}

func (r *memAdmins) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.admins[id]
	if !ok {
		return pgx.ErrNoRows
	}
	a.PasswordHash = hash
	return nil
}

type memAudit struct{ s *MemStore }

func (r *memAudit) Create(_ context.Context, entry *models.AdminAuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audit = append(r.s.audit, copyOf(entry))
	return nil
}

// ---------------------------------------------------------------------------
// Rooms, bookings
// ---------------------------------------------------------------------------

type memRooms struct{ s *MemStore }

func (r *memRooms) Create(_ context.Context, room *models.Room) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.roomByNumber(room.RoomNumber) != nil {
		return repositories.ErrRoomNumberExists
	}
	now := r.s.tick()
	room.CreatedAt, room.UpdatedAt = now, now
	room.RowVersion = 1
	r.s.rooms[room.ID] = copyOf(room)
	return nil
}

func (r *memRooms) GetByID(_ context.Context, id uuid.UUID) (*models.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.rooms[id]), nil
}

func (r *memRooms) GetByNumber(_ context.Context, number int) (*models.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.roomByNumber(number)), nil
}

func (r *memRooms) List(_ context.Context, status *models.RoomStatus) ([]*models.Room, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Room
	for _, room := range r.s.rooms {
		if status == nil || room.Status == *status {
			out = append(out, copyOf(room))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomNumber < out[j].RoomNumber })
	return out, nil
}

func (r *memRooms) UpdateIfVersion(_ context.Context, room *models.Room, expected int64) (pgconn.CommandTag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.rooms[room.ID]
	if !ok || cur.RowVersion != expected {
		return tag(0), nil
	}
	next := copyOf(room)
	next.Status = cur.Status
	next.RowVersion = expected + 1
	next.UpdatedAt = r.s.tick()
	r.s.rooms[room.ID] = next
	return tag(1), nil
}

func (r *memRooms) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Room) error) error {
	load := func(ctx context.Context) (*models.Room, error) { return r.GetByID(ctx, id) }
	return repositories.UpdateVersioned(ctx, constants.OptimisticLockAttempts, load, r.UpdateIfVersion, mutate)
}

func (r *memRooms) SetPhotoURL(_ context.Context, number int, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room := r.s.roomByNumber(number)
	if room == nil {
		return pgx.ErrNoRows
	}
	room.PhotoURL = &url
	return nil
}

func (r *memRooms) DeleteIfAvailable(_ context.Context, number int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room := r.s.roomByNumber(number)
	if room == nil {
		return pgx.ErrNoRows
	}
	if room.Status != models.RoomStatusAvailable {
		return utils.ErrRoomUnavailable
	}
	if r.s.roomHasPayments(room.ID) {
		return utils.ErrRoomUnavailable
	}
	for id, b := range r.s.bookings {
		if b.RoomID == room.ID {
			delete(r.s.bookings, id)
		}
	}
	delete(r.s.rooms, room.ID)
	return nil
}

// roomHasPayments reports whether any payment references a booking of the
// room, the case where Postgres refuses to cascade the delete.
func (s *MemStore) roomHasPayments(roomID uuid.UUID) bool {
	for _, p := range s.payments {
		if b, ok := s.bookings[p.BookingID]; ok && b.RoomID == roomID {
			return true
		}
	}
	return false
}

func (r *memRooms) ReleasePending(_ context.Context, number int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	room := r.s.roomByNumber(number)
	if room == nil {
		return pgx.ErrNoRows
	}
	if room.Status != models.RoomStatusPending {
		return utils.ErrRoomUnavailable
	}
	for _, b := range r.s.bookings {
		if b.RoomID == room.ID && b.PaymentStatus == models.BookingPaid {
			return utils.ErrRoomUnavailable
		}
	}
	for _, p := range r.s.payments {
		b, ok := r.s.bookings[p.BookingID]
		if ok && b.RoomID == room.ID && b.ReleasedAt == nil && p.Status == models.PaymentPending {
			return utils.ErrCheckoutInProgress
		}
	}
	now := r.s.tick()
	for _, b := range r.s.bookings {
		if b.RoomID == room.ID && b.PaymentStatus == models.BookingUnpaid && b.ReleasedAt == nil {
			released := now
			b.ReleasedAt = &released
			b.UpdatedAt = now
		}
	}
	room.Status = models.RoomStatusAvailable
	room.RowVersion++
	return nil
}

type memBookings struct{ s *MemStore }

func (r *memBookings) CreateWithReservation(_ context.Context, b *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	if _, ok := r.s.tenants[b.TenantID]; !ok {
		return repositories.ErrTenantNotFound
	}
	room := r.s.roomByNumber(b.RoomNumber)
	if room == nil {
		return pgx.ErrNoRows
	}
	if room.Status != models.RoomStatusAvailable {
		return utils.ErrRoomUnavailable
	}
	room.Status = models.RoomStatusPending
	room.RowVersion++

	now := r.s.tick()
	b.RoomID = room.ID
	b.PaymentStatus = models.BookingUnpaid
	b.CreatedAt, b.UpdatedAt = now, now
	r.s.bookings[b.ID] = copyOf(b)
	return nil
}

func (r *memBookings) GetByID(_ context.Context, id uuid.UUID) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.bookings[id]), nil
}

func (r *memBookings) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(b *models.Booking) bool { return b.TenantID == tenantID }), nil
}

func (r *memBookings) ListAll(_ context.Context) ([]*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(*models.Booking) bool { return true }), nil
}

func (r *memBookings) filter(keep func(*models.Booking) bool) []*models.Booking {
	var out []*models.Booking
	for _, b := range r.s.bookings {
		if keep(b) {
			out = append(out, copyOf(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ---------------------------------------------------------------------------
// Payments
// ---------------------------------------------------------------------------

type memPayments struct{ s *MemStore }

func (r *memPayments) Create(_ context.Context, p *models.Payment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if b, ok := r.s.bookings[p.BookingID]; ok && b.ReleasedAt != nil {
		return utils.ErrBookingReleased
	}
	if p.Status == models.PaymentPending {
		for _, other := range r.s.payments {
			if other.BookingID == p.BookingID && other.Status == models.PaymentPending {
				return utils.ErrCheckoutInProgress
			}
		}
	}
	now := r.s.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	r.s.payments[p.ID] = copyOf(p)
	return nil
}

func (r *memPayments) SetCheckoutSession(_ context.Context, id uuid.UUID, sessionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.payments[id]; ok {
		p.CheckoutSessionID = &sessionID
	}
	return nil
}

func (r *memPayments) MarkFailed(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p, ok := r.s.payments[id]; ok && p.Status == models.PaymentPending {
		p.Status = models.PaymentFailed
	}
	return nil
}

func (r *memPayments) GetByID(_ context.Context, id uuid.UUID) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.payments[id]), nil
}

func (r *memPayments) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(p *models.Payment) bool { return p.TenantID == tenantID }), nil
}

func (r *memPayments) List(_ context.Context, status *models.PaymentStatus) ([]*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(p *models.Payment) bool { return status == nil || p.Status == *status }), nil
}

func (r *memPayments) filter(keep func(*models.Payment) bool) []*models.Payment {
	var out []*models.Payment
	for _, p := range r.s.payments {
		if keep(p) {
			out = append(out, copyOf(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// ApplySucceeded mirrors the Postgres transaction: every check runs before
// the first write so a failure leaves nothing behind.
func (r *memPayments) ApplySucceeded(_ context.Context, evt models.PaymentEvent, notification string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.takeFailure(); err != nil {
		return err
	}
	if _, seen := r.s.events[evt.EventID]; seen {
		return utils.ErrDuplicateEvent
	}
	p, ok := r.s.payments[evt.PaymentID]
	if !ok {
		return pgx.ErrNoRows
	}
	room := r.s.roomByNumber(evt.RoomNumber)
	if room == nil {
		return pgx.ErrNoRows
	}

	now := r.s.tick()
	r.s.events[evt.EventID] = now
	p.Status = models.PaymentPaid
	p.UpdatedAt = now
	for _, b := range r.s.bookings {
		if b.TenantID == evt.TenantID && b.ReleasedAt == nil {
			b.PaymentStatus = models.BookingPaid
			b.UpdatedAt = now
		}
	}
	room.Status = models.RoomStatusOccupied
	room.RowVersion++
	id := uuid.New()
	r.s.notifications[id] = &models.Notification{
		ID:        id,
		TenantID:  evt.TenantID,
		Message:   notification,
		Status:    models.NotificationUnread,
		CreatedAt: now,
	}
	return nil
}

func (r *memPayments) ApplyFailed(_ context.Context, evt models.PaymentEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, seen := r.s.events[evt.EventID]; seen {
		return utils.ErrDuplicateEvent
	}
	p, ok := r.s.payments[evt.PaymentID]
	if !ok {
		return pgx.ErrNoRows
	}
	now := r.s.tick()
	r.s.events[evt.EventID] = now
	if p.Status != models.PaymentPaid {
		p.Status = models.PaymentFailed
		p.UpdatedAt = now
	}
	return nil
}

func (r *memPayments) CleanupProcessedEvents(_ context.Context, olderThan time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cutoff := r.s.clock.Add(-olderThan)
	for id, at := range r.s.events {
		if at.Before(cutoff) {
			delete(r.s.events, id)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Issues, technicians
// ---------------------------------------------------------------------------

type memIssues struct{ s *MemStore }

func (r *memIssues) Create(_ context.Context, issue *models.Issue) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[issue.TenantID]; !ok {
		return repositories.ErrForeignKey
	}
	now := r.s.tick()
	issue.CreatedAt, issue.UpdatedAt = now, now
	r.s.issues[issue.ID] = copyOf(issue)
	return nil
}

func (r *memIssues) GetByID(_ context.Context, id uuid.UUID) (*models.Issue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.issues[id]), nil
}

func (r *memIssues) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*models.Issue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(i *models.Issue) bool { return i.TenantID == tenantID }), nil
}

func (r *memIssues) List(_ context.Context, status *models.IssueStatus) ([]*models.Issue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(i *models.Issue) bool { return status == nil || i.Status == *status }), nil
}

func (r *memIssues) filter(keep func(*models.Issue) bool) []*models.Issue {
	var out []*models.Issue
	for _, i := range r.s.issues {
		if keep(i) {
			out = append(out, copyOf(i))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out
}

func (r *memIssues) Assign(_ context.Context, issueID, technicianID uuid.UUID) (*models.Issue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	issue, ok := r.s.issues[issueID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if issue.Status != models.IssueOpen {
		return nil, repositories.ErrInvalidTransition
	}
	tech, ok := r.s.technicians[technicianID]
	if !ok {
		return nil, repositories.ErrTechnicianNotFound
	}
	if tech.Specialty != issue.Category {
		return nil, repositories.ErrSpecialtyMismatch
	}
	if tech.AssignmentStatus != models.TechnicianUnassigned {
		return nil, repositories.ErrTechnicianBusy
	}
	now := r.s.tick()
	tech.AssignmentStatus = models.TechnicianAssigned
	tech.UpdatedAt = now
	issue.Status = models.IssueAssigned
	issue.TechnicianID = &technicianID
	issue.UpdatedAt = now
	return copyOf(issue), nil
}

func (r *memIssues) Resolve(_ context.Context, issueID uuid.UUID) (*models.Issue, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	issue, ok := r.s.issues[issueID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if issue.Status != models.IssueAssigned {
		return nil, repositories.ErrInvalidTransition
	}
	now := r.s.tick()
	issue.Status = models.IssueResolved
	issue.ResolvedAt = &now
	issue.UpdatedAt = now
	if issue.TechnicianID != nil {
		if tech, ok := r.s.technicians[*issue.TechnicianID]; ok {
			tech.AssignmentStatus = models.TechnicianUnassigned
			tech.UpdatedAt = now
		}
	}
	return copyOf(issue), nil
}

type memTechnicians struct{ s *MemStore }

func (r *memTechnicians) Create(_ context.Context, t *models.Technician) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.tick()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.technicians[t.ID] = copyOf(t)
	return nil
}

func (r *memTechnicians) GetByID(_ context.Context, id uuid.UUID) (*models.Technician, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.technicians[id]), nil
}

func (r *memTechnicians) List(_ context.Context, f repositories.TechnicianFilter) ([]*models.Technician, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Technician
	for _, t := range r.s.technicians {
		if f.Specialty != nil && t.Specialty != *f.Specialty {
			continue
		}
		if f.Status != nil && t.AssignmentStatus != *f.Status {
			continue
		}
		out = append(out, copyOf(t))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *memTechnicians) DeleteIfUnassigned(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.technicians[id]
	if !ok {
		return pgx.ErrNoRows
	}
	if t.AssignmentStatus != models.TechnicianUnassigned {
		return repositories.ErrTechnicianBusy
	}
	delete(r.s.technicians, id)
	return nil
}

// ---------------------------------------------------------------------------
// Advertisements
// ---------------------------------------------------------------------------

type memAds struct{ s *MemStore }

func (r *memAds) Create(_ context.Context, ad *models.Advertisement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[ad.TenantID]; !ok {
		return repositories.ErrForeignKey
	}
	now := r.s.tick()
	ad.CreatedAt, ad.UpdatedAt = now, now
	r.s.ads[ad.ID] = copyOf(ad)
	return nil
}

func (r *memAds) GetByID(_ context.Context, id uuid.UUID) (*models.Advertisement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.ads[id]), nil
}

func (r *memAds) ListByStatus(_ context.Context, status models.ApprovalStatus) ([]*models.Advertisement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(a *models.Advertisement) bool { return a.ApprovalStatus == status }), nil
}

func (r *memAds) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*models.Advertisement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(a *models.Advertisement) bool { return a.TenantID == tenantID }), nil
}

func (r *memAds) filter(keep func(*models.Advertisement) bool) []*models.Advertisement {
	var out []*models.Advertisement
	for _, a := range r.s.ads {
		if keep(a) {
			out = append(out, copyOf(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *memAds) Transition(_ context.Context, id uuid.UUID, from, to models.ApprovalStatus) (*models.Advertisement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ad, ok := r.s.ads[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if ad.ApprovalStatus != from {
		return nil, repositories.ErrInvalidTransition
	}
	ad.ApprovalStatus = to
	ad.UpdatedAt = r.s.tick()
	return copyOf(ad), nil
}

func (r *memAds) DeleteByOwner(_ context.Context, id, tenantID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ad, ok := r.s.ads[id]
	if !ok || ad.TenantID != tenantID {
		return pgx.ErrNoRows
	}
	delete(r.s.ads, id)
	return nil
}

// ---------------------------------------------------------------------------
// Visitors
// ---------------------------------------------------------------------------

type memVisitors struct{ s *MemStore }

func (r *memVisitors) Create(_ context.Context, v *models.Visitor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[v.TenantID]; !ok {
		return repositories.ErrForeignKey
	}
	v.CreatedAt = r.s.tick()
	r.s.visitors[v.ID] = copyOf(v)
	return nil
}

func (r *memVisitors) GetByID(_ context.Context, id uuid.UUID) (*models.Visitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.s.visitors[id]), nil
}

func (r *memVisitors) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*models.Visitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(v *models.Visitor) bool { return v.TenantID == tenantID }), nil
}

func (r *memVisitors) List(_ context.Context, active *bool) ([]*models.Visitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(v *models.Visitor) bool { return active == nil || v.IsActive == *active }), nil
}

func (r *memVisitors) filter(keep func(*models.Visitor) bool) []*models.Visitor {
	var out []*models.Visitor
	for _, v := range r.s.visitors {
		if keep(v) {
			out = append(out, copyOf(v))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryTime.After(out[j].EntryTime) })
	return out
}

func (r *memVisitors) SignOut(_ context.Context, id uuid.UUID, exit time.Time) (*models.Visitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.visitors[id]
	if !ok || !v.IsActive {
		return nil, repositories.ErrInvalidTransition
	}
	v.IsActive = false
	v.ActualExitTime = &exit
	return copyOf(v), nil
}

func (r *memVisitors) ListOverstayed(_ context.Context, now time.Time) ([]*models.Visitor, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(v *models.Visitor) bool {
		return v.IsActive && !v.OverstayNotified && v.PlannedExitTime.Before(now)
	}), nil
}

func (r *memVisitors) MarkOverstayNotified(_ context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.visitors[id]
	if !ok || v.OverstayNotified {
		return false, nil
	}
	v.OverstayNotified = true
	return true, nil
}

// ---------------------------------------------------------------------------
// Notifications
// ---------------------------------------------------------------------------

type memNotifications struct{ s *MemStore }

func (r *memNotifications) Create(_ context.Context, n *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tenants[n.TenantID]; !ok {
		return repositories.ErrForeignKey
	}
	n.CreatedAt = r.s.tick()
	r.s.notifications[n.ID] = copyOf(n)
	return nil
}

func (r *memNotifications) CreateForAll(_ context.Context, message string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := r.s.tick()
	var n int64
	for tenantID := range r.s.tenants {
		id := uuid.New()
		r.s.notifications[id] = &models.Notification{
			ID:        id,
			TenantID:  tenantID,
			Message:   message,
			Status:    models.NotificationUnread,
			CreatedAt: now,
		}
		n++
	}
	return n, nil
}

func (r *memNotifications) ListByTenant(_ context.Context, tenantID uuid.UUID) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.s.notifications {
		if n.TenantID == tenantID {
			out = append(out, copyOf(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memNotifications) MarkRead(_ context.Context, id, tenantID uuid.UUID) (*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.TenantID != tenantID {
		return nil, nil
	}
	n.Status = models.NotificationRead
	return copyOf(n), nil
}

func (r *memNotifications) MarkAllRead(_ context.Context, tenantID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var count int64
	for _, n := range r.s.notifications {
		if n.TenantID == tenantID && n.Status == models.NotificationUnread {
			n.Status = models.NotificationRead
			count++
		}
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// Verification and reset codes
// ---------------------------------------------------------------------------

type memVerifications struct{ s *MemStore }

func (r *memVerifications) CreateCode(_ context.Context, tenantID uuid.UUID, email, code string, expiresAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	id := uuid.New()
	r.s.verifications[id] = &models.EmailVerificationCode{
		ID:               id,
		TenantID:         tenantID,
		Email:            email,
		VerificationCode: code,
		ExpiresAt:        expiresAt,
		CreatedAt:        r.s.tick(),
	}
	return nil
}

func (r *memVerifications) GetLatest(_ context.Context, tenantID uuid.UUID) (*models.EmailVerificationCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *models.EmailVerificationCode
	for _, c := range r.s.verifications {
		if c.TenantID == tenantID && (latest == nil || c.CreatedAt.After(latest.CreatedAt)) {
			latest = c
		}
	}
	return copyOf(latest), nil
}

func (r *memVerifications) IncrementAttempts(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.verifications[id]; ok {
		c.Attempts++
	}
	return nil
}

func (r *memVerifications) MarkVerified(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.verifications[id]
	if !ok {
		return pgx.ErrNoRows
	}
	now := r.s.tick()
	c.Verified = true
	c.VerifiedAt = &now
	return nil
}

func (r *memVerifications) CleanupExpired(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for id, c := range r.s.verifications {
		if c.ExpiresAt.Before(now) {
			delete(r.s.verifications, id)
		}
	}
	return nil
}

// LatestVerificationCode exposes the emailed code to tests.
func (s *MemStore) LatestVerificationCode(tenantID uuid.UUID) string {
	c, _ := (&memVerifications{s}).GetLatest(context.Background(), tenantID)
	if c == nil {
		return ""
	}
	return c.VerificationCode
}

type memResets struct{ s *MemStore }

func (r *memResets) Create(_ context.Context, rec *models.PasswordResetCode) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, old := range r.s.resets {
		if old.AccountType == rec.AccountType && old.AccountID == rec.AccountID {
			old.Used = true
		}
	}
	rec.CreatedAt = r.s.tick()
	r.s.resets[rec.ID] = copyOf(rec)
	return nil
}

func (r *memResets) GetLatest(_ context.Context, accountType models.AccountType, email string) (*models.PasswordResetCode, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var latest *models.PasswordResetCode
	for _, c := range r.s.resets {
		if c.AccountType == accountType && c.Email == email && (latest == nil || c.CreatedAt.After(latest.CreatedAt)) {
			latest = c
		}
	}
	return copyOf(latest), nil
}

func (r *memResets) IncrementAttempts(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if c, ok := r.s.resets[id]; ok {
		c.Attempts++
	}
	return nil
}

func (r *memResets) MarkUsed(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.resets[id]
	if !ok || c.Used {
		return pgx.ErrNoRows
	}
	c.Used = true
	return nil
}

func (r *memResets) CleanupExpired(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	now := time.Now()
	for id, c := range r.s.resets {
		if c.ExpiresAt.Before(now) || c.Used {
			delete(r.s.resets, id)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Login attempts, refresh tokens
// ---------------------------------------------------------------------------

type memAttempts struct{ s *MemStore }

func (r *memAttempts) GetOrCreate(_ context.Context, accountID uuid.UUID) (*repositories.LoginAttempts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	la, ok := r.s.attempts[accountID]
	if !ok {
		now := time.Now()
		la = &repositories.LoginAttempts{AccountID: accountID, CreatedAt: now, UpdatedAt: now}
		r.s.attempts[accountID] = la
	}
	return copyOf(la), nil
}

func (r *memAttempts) Increment(_ context.Context, accountID uuid.UUID, lockDuration, window time.Duration, maxAttempts int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	la, ok := r.s.attempts[accountID]
	if !ok {
		return nil
	}
	now := time.Now()
	switch {
	case la.LockedUntil != nil && la.LockedUntil.After(now):
	case now.Sub(la.UpdatedAt) > window:
		la.AttemptCount = 1
		la.LockedUntil = nil
	default:
		la.AttemptCount++
		if la.AttemptCount >= maxAttempts {
			until := now.Add(lockDuration)
			la.LockedUntil = &until
		}
	}
	la.UpdatedAt = now
	return nil
}

func (r *memAttempts) Reset(_ context.Context, accountID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if la, ok := r.s.attempts[accountID]; ok {
		la.AttemptCount = 0
		la.LockedUntil = nil
		la.UpdatedAt = time.Now()
	}
	return nil
}

func (r *memAttempts) IsLocked(_ context.Context, accountID uuid.UUID) (bool, time.Time, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	la, ok := r.s.attempts[accountID]
	if !ok || la.LockedUntil == nil || !la.LockedUntil.After(time.Now()) {
		return false, time.Time{}, nil
	}
	return true, *la.LockedUntil, nil
}

type memTokens struct {
	s     *MemStore
	table func() map[string]*models.RefreshToken
}

func (r *memTokens) CreateRefreshToken(_ context.Context, t *models.RefreshToken) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored := copyOf(t)
	stored.CreatedAt = time.Now()
	r.table()[utils.HashToken(t.Token)] = stored
	return nil
}

func (r *memTokens) GetRefreshToken(_ context.Context, raw string) (*models.RefreshToken, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return copyOf(r.table()[utils.HashToken(raw)]), nil
}

func (r *memTokens) RemoveRefreshToken(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.table() {
		if t.ID == id {
			delete(r.table(), k)
		}
	}
	return nil
}

func (r *memTokens) RemoveAllRefreshTokensByUserID(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.table() {
		if t.UserID == userID {
			delete(r.table(), k)
		}
	}
	return nil
}

func (r *memTokens) CleanupExpiredRefreshTokens(_ context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for k, t := range r.table() {
		if t.IsExpired() {
			delete(r.table(), k)
		}
	}
	return nil
}
