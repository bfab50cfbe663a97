package cart

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-klin/internal/common"
	"github.com/noah-isme/backend-klin/internal/coupon"
	"github.com/noah-isme/backend-klin/internal/identity"
	"github.com/noah-isme/backend-klin/internal/obs"
	"github.com/noah-isme/backend-klin/internal/pricing"
	"github.com/noah-isme/backend-klin/internal/store"
)

// ErrNotFound indicates the requested cart session could not be located.
var ErrNotFound = errors.New("cart not found")

// Service is the cart aggregator. It owns the ordered line item collection
// per session, merges on add via the identity resolver, prices service
// configurations through the catalog and persists a snapshot after every
// mutation. One logical writer per session; the mutex serialises in-process
// callers, the sequence fence guards against stale async coupon completions.
type Service struct {
	Catalog   *pricing.Catalog
	Directory coupon.Directory
	Snapshots *store.Snapshots
	Logger    zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	items    []LineItem
	coupon   *coupon.Applied
	sigIndex map[string]int
	seq      uint64
	clearSeq uint64
	loaded   bool
	lastSeen time.Time
}

// NewService constructs a cart aggregator.
func NewService(catalog *pricing.Catalog, dir coupon.Directory, snapshots *store.Snapshots, logger zerolog.Logger) *Service {
	return &Service{
		Catalog:   catalog,
		Directory: dir,
		Snapshots: snapshots,
		Logger:    logger,
		sessions:  make(map[string]*session),
	}
}

// NewSessionID mints a fresh cart session identifier.
func NewSessionID() string { return uuid.NewString() }

// AddItemInput describes the item the caller wants added.
type AddItemInput struct {
	ID         string
	Name       string
	UnitPrice  pricing.Money
	Quantity   int
	Recurrence pricing.Recurrence
	Config     Config
}

// Add merges the item into an existing entry when the identity resolver finds
// a match, otherwise appends. A merged item keeps its existing unit price;
// quantity scales it. Never errors on valid input; pricing failures for
// service configurations are converted to an "unpriceable" state that blocks
// only this add.
func (s *Service) Add(ctx context.Context, sessionID string, in AddItemInput) (Cart, error) {
	if in.Quantity < 1 {
		return Cart{}, common.Validation("quantity must be at least 1")
	}
	if in.Recurrence == "" {
		in.Recurrence = pricing.OneTime
	}
	if !in.Recurrence.Valid() {
		return Cart{}, common.Validation(fmt.Sprintf("unknown recurrence %q", in.Recurrence))
	}
	item, err := s.buildItem(in)
	if err != nil {
		return Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.sessionLocked(ctx, sessionID)

	sig := identity.Signature(item.identityView())
	if idx, ok := st.sigIndex[sig]; ok && identity.SamePurchase(st.items[idx].identityView(), item.identityView()) {
		st.items[idx].Quantity += item.Quantity
		s.recordMerge()
	} else if idx := s.scanLocked(st, item); idx >= 0 {
		st.items[idx].Quantity += item.Quantity
		s.recordMerge()
	} else {
		st.items = append(st.items, item)
		st.sigIndex[sig] = len(st.items) - 1
	}

	s.commitLocked(ctx, sessionID, st, "add")
	return snapshotCartLocked(st), nil
}

// Remove deletes the item with the given id. Absent ids are a no-op, not an
// error: removal is idempotent.
func (s *Service) Remove(ctx context.Context, sessionID, itemID string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.sessionLocked(ctx, sessionID)

	idx := -1
	for i, it := range st.items {
		if it.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return snapshotCartLocked(st), nil
	}
	st.items = append(st.items[:idx], st.items[idx+1:]...)
	rebuildIndexLocked(st)
	s.commitLocked(ctx, sessionID, st, "remove")
	return snapshotCartLocked(st), nil
}

// UpdateQuantity sets the quantity directly. A quantity of zero or less is
// equivalent to Remove.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, itemID string, qty int) (Cart, error) {
	if qty <= 0 {
		return s.Remove(ctx, sessionID, itemID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.sessionLocked(ctx, sessionID)

	for i, it := range st.items {
		if it.ID == itemID {
			st.items[i].Quantity = qty
			s.commitLocked(ctx, sessionID, st, "update_qty")
			return snapshotCartLocked(st), nil
		}
	}
	return Cart{}, fmt.Errorf("item %q: %w", itemID, ErrNotFound)
}

// Clear empties the cart and drops any applied coupon. It bumps the clear
// fence so a coupon validation still in flight cannot repopulate the cart.
func (s *Service) Clear(ctx context.Context, sessionID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.sessionLocked(ctx, sessionID)
	st.items = nil
	st.coupon = nil
	st.sigIndex = make(map[string]int)
	st.seq++
	st.clearSeq = st.seq
	if err := s.Snapshots.Delete(ctx, sessionID); err != nil {
		s.logPersistFailure(sessionID, "clear", err)
	}
	s.recordMutation("clear", "ok")
	return snapshotCartLocked(st)
}

// Get returns the current cart, reconciling once with the persisted snapshot
// on first access.
func (s *Service) Get(ctx context.Context, sessionID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotCartLocked(s.sessionLocked(ctx, sessionID))
}

// ApplyCoupon validates the code against the directory and, when accepted,
// attaches the rule to the cart. Validation runs outside the lock: other
// mutations proceed meanwhile, and the result is applied to the cart as it
// exists at resolution time. A clear issued after the request fences the
// response out. A rejected or failed validation never clobbers an already
// applied coupon.
func (s *Service) ApplyCoupon(ctx context.Context, sessionID, code string) (coupon.Result, error) {
	if err := coupon.CheckCode(code); err != nil {
		return coupon.Result{}, err
	}
	if s.Directory == nil {
		return coupon.Result{Accepted: false, Reason: "coupon service unavailable"}, nil
	}

	s.mu.Lock()
	st := s.sessionLocked(ctx, sessionID)
	reqSeq := st.seq
	s.mu.Unlock()

	v, err := s.Directory.Validate(ctx, code)
	if err != nil {
		if errors.Is(err, coupon.ErrUnavailable) {
			s.Logger.Warn().Err(err).Str("code", code).Msg("coupon_directory_unavailable")
			s.recordCoupon("unavailable")
			return coupon.Result{Accepted: false, Reason: "coupon service unavailable"}, nil
		}
		return coupon.Result{}, err
	}
	if !v.Valid {
		reason := v.Reason
		if reason == "" {
			reason = "invalid or expired"
		}
		s.recordCoupon("rejected")
		return coupon.Result{Accepted: false, Reason: reason}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-resolve: the session map may have been reloaded meanwhile.
	st = s.sessionLocked(ctx, sessionID)
	if st.clearSeq > reqSeq {
		s.recordCoupon("stale")
		return coupon.Result{Accepted: false, Reason: "cart was cleared"}, nil
	}
	st.coupon = &coupon.Applied{Code: code, PercentBps: v.PercentBps, AmountOff: v.AmountOff}
	s.commitLocked(ctx, sessionID, st, "apply_coupon")
	s.recordCoupon("accepted")
	return coupon.Result{Accepted: true}, nil
}

// RemoveCoupon detaches the applied coupon, if any.
func (s *Service) RemoveCoupon(ctx context.Context, sessionID string) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.sessionLocked(ctx, sessionID)
	if st.coupon != nil {
		st.coupon = nil
		s.commitLocked(ctx, sessionID, st, "remove_coupon")
	}
	return snapshotCartLocked(st)
}

// Summary derives the money breakdown for the current cart state.
func (s *Service) Summary(ctx context.Context, sessionID string, taxBps int, shipping pricing.Money) pricing.Summary {
	s.mu.Lock()
	st := s.sessionLocked(ctx, sessionID)
	items := make([]pricing.Item, 0, len(st.items))
	var subtotal pricing.Money
	for _, it := range st.items {
		items = append(items, pricing.Item{Qty: it.Quantity, UnitPrice: it.UnitPrice})
		subtotal += pricing.Money(it.Quantity) * it.UnitPrice
	}
	applied := st.coupon
	s.mu.Unlock()

	return pricing.Compute(items, coupon.Discount(applied, subtotal), taxBps, shipping)
}

// Location returns the first service address on the cart, for tax resolution.
func (s *Service) Location(ctx context.Context, sessionID string) (address, postal string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.sessionLocked(ctx, sessionID)
	for _, it := range st.items {
		if it.Config.Address != "" || it.Config.PostalCode != "" {
			return it.Config.Address, it.Config.PostalCode
		}
	}
	return "", ""
}

func (s *Service) buildItem(in AddItemInput) (LineItem, error) {
	item := LineItem{
		ID:         in.ID,
		Name:       in.Name,
		UnitPrice:  in.UnitPrice,
		Quantity:   in.Quantity,
		Recurrence: in.Recurrence,
		Config:     in.Config,
	}
	if item.Config.Service != nil {
		svc := *item.Config.Service
		if svc.Recurrence == "" {
			svc.Recurrence = item.Recurrence
			item.Config.Service = &svc
		}
		quote, err := s.Catalog.Quote(svc)
		if err != nil {
			if errors.Is(err, pricing.ErrUnknownEntry) {
				s.recordQuoteFailure("unknown_entry")
				return LineItem{}, common.NewAppError("UNPRICEABLE", "could not price this item", http.StatusUnprocessableEntity, err)
			}
			return LineItem{}, err
		}
		item.UnitPrice = quote.UnitPrice(item.Recurrence)
	}
	if item.UnitPrice < 0 {
		return LineItem{}, common.Validation("unit price must not be negative")
	}
	if item.ID == "" {
		item.ID = deriveID(item)
	}
	return item, nil
}

// deriveID gives custom items a stable configuration-derived id. Items whose
// location is entirely empty get a random id: they are never merge candidates.
func deriveID(item LineItem) string {
	view := item.identityView()
	if view.PriceID == "" && view.Address == "" && view.PostalCode == "" {
		return uuid.NewString()
	}
	return "li_" + identity.Signature(view)
}

func (s *Service) scanLocked(st *session, item LineItem) int {
	view := item.identityView()
	for i, existing := range st.items {
		if identity.SamePurchase(existing.identityView(), view) {
			return i
		}
	}
	return -1
}

func (s *Service) sessionLocked(ctx context.Context, sessionID string) *session {
	if s.sessions == nil {
		s.sessions = make(map[string]*session)
	}
	st, ok := s.sessions[sessionID]
	if ok {
		st.lastSeen = time.Now()
		return st
	}
	st = &session{sigIndex: make(map[string]int), lastSeen: time.Now()}
	s.sessions[sessionID] = st
	s.reconcileLocked(ctx, sessionID, st)
	return st
}

// EvictIdle drops in-memory sessions untouched for at least maxIdle and
// reports how many were removed. The snapshot store still holds their state;
// the next access reconciles from there. Every operation refreshes the idle
// clock when it resolves the session.
func (s *Service) EvictIdle(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, st := range s.sessions {
		if time.Since(st.lastSeen) >= maxIdle {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.Logger.Debug().Int("evicted", evicted).Msg("cart_sessions_evicted")
	}
	return evicted
}

// reconcileLocked loads the persisted snapshot exactly once per session. The
// snapshot is a cache: a read failure leaves an empty cart and memory owns
// all further state.
func (s *Service) reconcileLocked(ctx context.Context, sessionID string, st *session) {
	if st.loaded {
		return
	}
	st.loaded = true
	var snap snapshot
	found, err := s.Snapshots.Load(ctx, sessionID, &snap)
	if err != nil {
		s.Logger.Warn().Err(err).Str("session", sessionID).Msg("cart_snapshot_load_failed")
		return
	}
	if !found {
		return
	}
	for _, it := range snap.Items {
		if it.Quantity < 1 || it.ID == "" {
			continue
		}
		st.items = append(st.items, it)
	}
	st.coupon = snap.Coupon
	rebuildIndexLocked(st)
}

func (s *Service) commitLocked(ctx context.Context, sessionID string, st *session, op string) {
	st.seq++
	snap := snapshot{Version: snapshotVersion, Items: st.items, Coupon: st.coupon}
	if err := s.Snapshots.Save(ctx, sessionID, snap); err != nil {
		s.logPersistFailure(sessionID, op, err)
	}
	s.recordMutation(op, "ok")
}

func (s *Service) logPersistFailure(sessionID, op string, err error) {
	// persistence is retried on the next mutation, never blocks the caller
	s.Logger.Warn().Err(err).Str("session", sessionID).Str("op", op).Msg("cart_snapshot_write_failed")
	if obs.SnapshotWriteFailures != nil {
		obs.SnapshotWriteFailures.Inc()
	}
}

func (s *Service) recordMutation(op, result string) {
	if obs.CartMutationTotal != nil {
		obs.CartMutationTotal.WithLabelValues(op, result).Inc()
	}
}

func (s *Service) recordMerge() {
	if obs.CartMergeTotal != nil {
		obs.CartMergeTotal.Inc()
	}
}

func (s *Service) recordCoupon(result string) {
	if obs.CouponApplyTotal != nil {
		obs.CouponApplyTotal.WithLabelValues(result).Inc()
	}
}

func (s *Service) recordQuoteFailure(reason string) {
	if obs.QuoteFailureTotal != nil {
		obs.QuoteFailureTotal.WithLabelValues(reason).Inc()
	}
}

func rebuildIndexLocked(st *session) {
	st.sigIndex = make(map[string]int, len(st.items))
	for i, it := range st.items {
		st.sigIndex[identity.Signature(it.identityView())] = i
	}
}

func snapshotCartLocked(st *session) Cart {
	items := make([]LineItem, len(st.items))
	copy(items, st.items)
	total := 0
	for _, it := range items {
		total += it.Quantity
	}
	var applied *coupon.Applied
	if st.coupon != nil {
		c := *st.coupon
		applied = &c
	}
	return Cart{Items: items, Coupon: applied, TotalItems: total}
}
