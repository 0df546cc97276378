package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"

	"svw.info/blockpuzzle/internal/domain"
	"svw.info/blockpuzzle/internal/ports"
	"svw.info/blockpuzzle/internal/session"
)

// OptionsFunc builds session options for a mode. Restoring a saved session
// calls it with seed 0; the saved generator state replaces the seed.
type OptionsFunc func(mode domain.Mode, seed uint64) session.Options

// Service hosts sessions for the transports. Sessions live serialized in
// the Store; every command runs load, apply, save under a per-session lock
// so concurrent requests for one session are queued.
type Service struct {
	Options OptionsFunc
	Store   ports.Store
	Wallet  ports.Wallet
	Hinter  ports.Hinter
	Logger  *slog.Logger
	Now     func() time.Time

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is dropped from the map once nobody holds or waits for it.
type sessionLock struct {
	sync.Mutex
	refs int
}

func NewService(o OptionsFunc, st ports.Store, w ports.Wallet, h ports.Hinter, l *slog.Logger) *Service {
	return &Service{Options: o, Store: st, Wallet: w, Hinter: h, Logger: l}
}

var errNotConfigured = errors.New("usecase dependency not configured")

// Result is the outcome of one command. A rejected command leaves the
// session unchanged and carries the reason.
type Result struct {
	Accepted bool            `json:"accepted"`
	Reason   string          `json:"reason,omitempty"`
	Events   []domain.Event  `json:"events"`
	Snapshot domain.Snapshot `json:"snapshot"`
}

func (u *Service) log() *slog.Logger {
	if u.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return u.Logger
}

func (u *Service) now() time.Time {
	if u.Now == nil {
		return time.Now()
	}
	return u.Now()
}

func (u *Service) lock(id string) func() {
	u.mu.Lock()
	if u.locks == nil {
		u.locks = map[string]*sessionLock{}
	}
	l, ok := u.locks[id]
	if !ok {
		l = &sessionLock{}
		u.locks[id] = l
	}
	l.refs++
	u.mu.Unlock()
	l.Lock()
	return func() {
		l.Unlock()
		u.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(u.locks, id)
		}
		u.mu.Unlock()
	}
}

func (u *Service) ready() error {
	if u.Options == nil || u.Store == nil {
		return errNotConfigured
	}
	return nil
}

// Start creates a session. Seed 0 picks a random seed.
func (u *Service) Start(ctx context.Context, mode domain.Mode, seed uint64) (string, domain.Snapshot, error) {
	if err := u.ready(); err != nil {
		return "", domain.Snapshot{}, err
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	s, err := session.New(u.Options(mode, seed))
	if err != nil {
		return "", domain.Snapshot{}, err
	}
	id := uuid.NewString()
	defer u.lock(id)()
	created := u.now().Unix()
	if err := u.save(ctx, id, s, created); err != nil {
		return "", domain.Snapshot{}, err
	}
	u.log().Info("session started", "id", id, "mode", mode, "seed", seed)
	return id, s.Snapshot(), nil
}

func (u *Service) save(ctx context.Context, id string, s *session.Session, created int64) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	meta := domain.SessionMeta{
		ID:        id,
		Mode:      s.Mode(),
		Score:     s.Score(),
		Outcome:   s.Outcome(),
		CreatedAt: created,
		UpdatedAt: u.now().Unix(),
	}
	return u.Store.Save(ctx, id, meta, data)
}

func (u *Service) load(ctx context.Context, id string) (*session.Session, error) {
	data, err := u.Store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	var head struct {
		Mode domain.Mode `json:"mode"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	return session.Restore(data, u.Options(head.Mode, 0))
}

// Get returns the current snapshot of a session.
func (u *Service) Get(ctx context.Context, id string) (domain.Snapshot, error) {
	if err := u.ready(); err != nil {
		return domain.Snapshot{}, err
	}
	defer u.lock(id)()
	s, err := u.load(ctx, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return s.Snapshot(), nil
}

func (u *Service) List(ctx context.Context) ([]domain.SessionMeta, error) {
	if u.Store == nil {
		return nil, errNotConfigured
	}
	return u.Store.List(ctx)
}

// Apply runs one command against a session. Rejections are reported in the
// result, not as an error. Payouts emitted by a reset are credited to the
// wallet before the session is saved; if the wallet refuses, the stored
// session keeps its coins.
func (u *Service) Apply(ctx context.Context, id string, c domain.Command) (Result, error) {
	if err := u.ready(); err != nil {
		return Result{}, err
	}
	defer u.lock(id)()
	s, err := u.load(ctx, id)
	if err != nil {
		return Result{}, err
	}
	events, err := s.Apply(c)
	if err != nil {
		if domain.Rejected(err) {
			u.log().Debug("command rejected", "id", id, "op", c.Op, "reason", err)
			return Result{Reason: err.Error(), Events: []domain.Event{}, Snapshot: s.Snapshot()}, nil
		}
		return Result{}, err
	}
	for _, e := range events {
		if e.Kind != domain.EventPayout {
			continue
		}
		if _, err := u.credit(ctx, id, e.Amount); err != nil {
			return Result{}, err
		}
	}
	if err := u.save(ctx, id, s, 0); err != nil {
		return Result{}, err
	}
	u.log().Debug("command applied", "id", id, "op", c.Op, "events", len(events), "outcome", s.Outcome())
	for _, e := range events {
		if e.Kind == domain.EventGameWon || e.Kind == domain.EventGameLost {
			u.log().Info("session finished", "id", id, "outcome", s.Outcome(), "score", s.Score())
		}
	}
	if events == nil {
		events = []domain.Event{}
	}
	return Result{Accepted: true, Events: events, Snapshot: s.Snapshot()}, nil
}

func (u *Service) credit(ctx context.Context, id string, amount int) (int, error) {
	if u.Wallet == nil || amount <= 0 {
		return u.balance(ctx), nil
	}
	bal, err := u.Wallet.Credit(ctx, amount)
	if err != nil {
		u.log().Warn("wallet credit failed", "id", id, "amount", amount, "err", err)
		return 0, err
	}
	u.log().Info("coins paid out", "id", id, "amount", amount, "balance", bal)
	return bal, nil
}

func (u *Service) balance(ctx context.Context) int {
	if u.Wallet == nil {
		return 0
	}
	bal, err := u.Wallet.Balance(ctx)
	if err != nil {
		return 0
	}
	return bal
}

// Hint suggests a legal move for the session.
func (u *Service) Hint(ctx context.Context, id string) (domain.Hint, bool, error) {
	if u.Hinter == nil {
		return domain.Hint{}, false, errNotConfigured
	}
	snap, err := u.Get(ctx, id)
	if err != nil {
		return domain.Hint{}, false, err
	}
	return u.Hinter.Hint(ctx, snap)
}

// Exit ends a session, forgets it and credits its coins. It returns the
// payout and the wallet balance after it. The session is deleted before the
// wallet is credited; if the credit fails the session is saved again.
func (u *Service) Exit(ctx context.Context, id string) (payout, balance int, err error) {
	if err := u.ready(); err != nil {
		return 0, 0, err
	}
	defer u.lock(id)()
	s, err := u.load(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	payout = s.Exit()
	if err := u.Store.Delete(ctx, id); err != nil {
		return 0, 0, err
	}
	balance, err = u.credit(ctx, id, payout)
	if err != nil {
		if serr := u.save(ctx, id, s, u.now().Unix()); serr != nil {
			return 0, 0, errors.Join(err, serr)
		}
		return 0, 0, err
	}
	u.log().Info("session exited", "id", id, "payout", payout, "balance", balance)
	return payout, balance, nil
}

func (u *Service) Balance(ctx context.Context) (int, error) {
	if u.Wallet == nil {
		return 0, errNotConfigured
	}
	return u.Wallet.Balance(ctx)
}
