package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"minesweeper_webapp/internal/domain"
	"minesweeper_webapp/internal/game"
	"minesweeper_webapp/internal/leaderboard"
	"minesweeper_webapp/internal/logger"
	"minesweeper_webapp/internal/repository"
	"minesweeper_webapp/internal/store"
)

// ErrNoSession marks operations against an instance that has no stored
// document. Handlers turn it into an empty-state reply, not an error page.
var ErrNoSession = errors.New("no session for instance")

// Actor identifies the authenticated player behind an interactive call.
type Actor struct {
	ID       string
	Username string
}

// Broadcaster pushes state frames to the clients subscribed to an instance.
// The ws hub implements it; nil disables pushes.
type Broadcaster interface {
	Broadcast(instance string, payload []byte)
}

// SessionService runs the interactive display flow: page navigation, the
// shared board, clocks and pushes. One service handles every instance.
type SessionService struct {
	store     store.DocumentStore
	engine    *game.Engine
	archive   repository.MatchArchive
	hub       Broadcaster
	stepDelay time.Duration

	mu     sync.Mutex
	active map[string]struct{}
}

func NewSessionService(st store.DocumentStore, engine *game.Engine, archive repository.MatchArchive, hub Broadcaster, stepDelay time.Duration) *SessionService {
	if archive == nil {
		archive = repository.NopArchive{}
	}
	return &SessionService{
		store:     st,
		engine:    engine,
		archive:   archive,
		hub:       hub,
		stepDelay: stepDelay,
		active:    make(map[string]struct{}),
	}
}

// CreateInstance mints a fresh instance, stores its starting document and
// registers the creator as a player.
func (s *SessionService) CreateInstance(ctx context.Context, actor Actor) (string, error) {
	id := uuid.NewString()
	_, err := store.Update(ctx, s.store, id, func(doc *domain.GameDocument) error {
		doc.EnsurePlayer(actor.ID, actor.Username)
		return nil
	})
	if err != nil {
		return "", err
	}
	logger.Info("instance created", "instance", id, "player", actor.ID)
	return id, nil
}

// State returns the client view of an instance.
func (s *SessionService) State(ctx context.Context, key string) (*Snapshot, error) {
	doc, _, err := s.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}
	s.syncTracking(key, doc)
	return buildSnapshot(&doc.Shared), nil
}

// Navigate moves the shared session to another page.
func (s *SessionService) Navigate(ctx context.Context, key string, actor Actor, page domain.Page) (*Snapshot, error) {
	doc, err := s.mutate(ctx, key, func(doc *domain.GameDocument) error {
		doc.EnsurePlayer(actor.ID, actor.Username)
		return s.engine.Navigate(&doc.Shared, page)
	})
	if err != nil {
		return nil, err
	}
	return s.finish(key, doc), nil
}

// Setup stores the board parameters and enters the setup page.
func (s *SessionService) Setup(ctx context.Context, key string, actor Actor, size int, difficulty string) (*Snapshot, error) {
	d, ok := domain.ParseDifficulty(difficulty)
	if !ok {
		return nil, game.ErrBadDifficulty
	}
	doc, err := s.mutate(ctx, key, func(doc *domain.GameDocument) error {
		doc.EnsurePlayer(actor.ID, actor.Username)
		return s.engine.Configure(&doc.Shared, size, d)
	})
	if err != nil {
		return nil, err
	}
	return s.finish(key, doc), nil
}

// StartGame generates a board from the configured parameters and enters the
// game page.
func (s *SessionService) StartGame(ctx context.Context, key string, actor Actor) (*Snapshot, error) {
	doc, err := s.mutate(ctx, key, func(doc *domain.GameDocument) error {
		doc.EnsurePlayer(actor.ID, actor.Username)
		return s.engine.Start(&doc.Shared)
	})
	if err != nil {
		return nil, err
	}
	GamesStarted.WithLabelValues(repository.ModeShared).Inc()
	return s.finish(key, doc), nil
}

// Reveal uncovers a cell on the shared board. With a step delay configured,
// only the near rings land now; the rest follows on a timer so watchers see
// the cascade unfold.
func (s *SessionService) Reveal(ctx context.Context, key string, actor Actor, row, col int) (*Snapshot, error) {
	var res game.MoveResult
	doc, err := s.mutate(ctx, key, func(doc *domain.GameDocument) error {
		p := doc.EnsurePlayer(actor.ID, actor.Username)
		var err error
		if s.stepDelay > 0 {
			res, err = s.engine.RevealSharedStepped(doc, p, row, col)
		} else {
			res, err = s.engine.RevealShared(doc, p, row, col)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.recordOutcome(key, actor, &doc.Shared, res)
	if len(res.Deferred) > 0 {
		coords := res.Deferred
		time.AfterFunc(s.stepDelay, func() { s.applyDeferred(key, actor, coords) })
	}
	return s.finish(key, doc), nil
}

// Flag toggles the flag on an unrevealed cell.
func (s *SessionService) Flag(ctx context.Context, key string, actor Actor, row, col int) (*Snapshot, error) {
	doc, err := s.mutate(ctx, key, func(doc *domain.GameDocument) error {
		doc.EnsurePlayer(actor.ID, actor.Username)
		return s.engine.FlagShared(doc, row, col)
	})
	if err != nil {
		return nil, err
	}
	return s.finish(key, doc), nil
}

// Hint uncovers up to three random safe cells.
func (s *SessionService) Hint(ctx context.Context, key string, actor Actor) (*Snapshot, error) {
	var res game.MoveResult
	doc, err := s.mutate(ctx, key, func(doc *domain.GameDocument) error {
		p := doc.EnsurePlayer(actor.ID, actor.Username)
		var err error
		res, err = s.engine.HintShared(doc, p)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordOutcome(key, actor, &doc.Shared, res)
	return s.finish(key, doc), nil
}

// Leaderboard derives the standings of an instance, as entries plus the
// rendered markdown table.
func (s *SessionService) Leaderboard(ctx context.Context, key string) ([]leaderboard.Entry, string, error) {
	doc, _, err := s.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", ErrNoSession
		}
		return nil, "", err
	}
	entries := leaderboard.Build(doc.Players)
	return entries, leaderboard.Markdown(entries), nil
}

// Matches lists the most recently archived games of an instance.
func (s *SessionService) Matches(ctx context.Context, key string, limit int) ([]*repository.Match, error) {
	return s.archive.RecentByInstance(ctx, key, limit)
}

// StateFrame renders the push frame for an instance's current state, nil when
// no document exists yet. The ws handler sends it on connect.
func (s *SessionService) StateFrame(ctx context.Context, key string) ([]byte, error) {
	doc, _, err := s.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	s.syncTracking(key, doc)
	return json.Marshal(stateFrame{Type: "state", Instance: key, State: buildSnapshot(&doc.Shared)})
}

// applyDeferred is the gradual-reveal continuation: it lands the coordinates
// a stepped reveal held back. The game may have ended or moved on in the
// meantime; that is not an error.
func (s *SessionService) applyDeferred(key string, actor Actor, coords []game.Coord) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var res game.MoveResult
	doc, err := s.mutate(ctx, key, func(doc *domain.GameDocument) error {
		p := doc.EnsurePlayer(actor.ID, actor.Username)
		var err error
		res, err = s.engine.RevealDeferred(doc, p, coords)
		return err
	})
	if err != nil {
		if !errors.Is(err, game.ErrGameOver) && !errors.Is(err, game.ErrNoActiveGame) && !errors.Is(err, ErrNoSession) {
			logger.Error("deferred reveal failed", "instance", key, "error", err)
		}
		return
	}
	s.recordOutcome(key, actor, &doc.Shared, res)
	s.finish(key, doc)
}

// mutate runs fn on the instance document through the store's retry loop.
// Unlike store.Update it refuses to conjure documents: an instance that was
// never created reports ErrNoSession. A failed save after a successful fn is
// logged and the mutated copy still drives the reply.
func (s *SessionService) mutate(ctx context.Context, key string, fn func(doc *domain.GameDocument) error) (*domain.GameDocument, error) {
	if _, _, err := s.store.Load(ctx, key); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoSession
		}
		return nil, err
	}

	doc, err := store.Update(ctx, s.store, key, fn)
	if err == nil {
		return doc, nil
	}
	if doc != nil {
		logger.Error("session persist failed", "instance", key, "error", err)
		return doc, nil
	}
	return nil, err
}

// finish is the common tail of a successful mutation: tracking, push, snapshot.
func (s *SessionService) finish(key string, doc *domain.GameDocument) *Snapshot {
	s.syncTracking(key, doc)
	s.publish(key, doc)
	return buildSnapshot(&doc.Shared)
}

func (s *SessionService) recordOutcome(key string, actor Actor, shared *domain.SharedSession, res game.MoveResult) {
	var result string
	switch {
	case res.Won:
		result = repository.ResultWin
	case res.Lost:
		result = repository.ResultLose
	default:
		return
	}
	GamesFinished.WithLabelValues(repository.ModeShared, result).Inc()

	m := &repository.Match{
		InstanceKey:     key,
		PlayerID:        actor.ID,
		Mode:            repository.ModeShared,
		Difficulty:      shared.Difficulty,
		Result:          result,
		DurationSeconds: res.DurationSeconds,
		Revealed:        shared.RevealedCount,
		Score:           res.ScoreEarned,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.archive.Record(ctx, m); err != nil {
			logger.Error("archive match failed", "instance", key, "player", actor.ID, "error", err)
		}
	}()
}

// syncTracking keeps the instance in the clock set while its shared game is
// running and drops it otherwise.
func (s *SessionService) syncTracking(key string, doc *domain.GameDocument) {
	running := doc.Shared.Page == domain.PageGame && !doc.Shared.GameOver && len(doc.Shared.Grid) > 0
	s.mu.Lock()
	if running {
		s.active[key] = struct{}{}
	} else {
		delete(s.active, key)
	}
	s.mu.Unlock()
}

func (s *SessionService) untrack(key string) {
	s.mu.Lock()
	delete(s.active, key)
	s.mu.Unlock()
}

func (s *SessionService) activeKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.active))
	for k := range s.active {
		keys = append(keys, k)
	}
	return keys
}

var errClockIdle = errors.New("clock idle")

// AdvanceClocks moves the elapsed time forward one second on every tracked
// running game. Instances that finished or left the game page drop out.
func (s *SessionService) AdvanceClocks(ctx context.Context) {
	for _, key := range s.activeKeys() {
		doc, err := s.mutate(ctx, key, func(doc *domain.GameDocument) error {
			sh := &doc.Shared
			if sh.Page != domain.PageGame || sh.GameOver || len(sh.Grid) == 0 {
				return errClockIdle
			}
			sh.TimeElapsed++
			return nil
		})
		if err != nil {
			if errors.Is(err, errClockIdle) || errors.Is(err, ErrNoSession) {
				s.untrack(key)
			} else {
				logger.Error("clock advance failed", "instance", key, "error", err)
			}
			continue
		}
		s.syncTracking(key, doc)
	}
}

// BroadcastActive pushes a fresh snapshot of every tracked instance, so
// watchers stay current even between moves.
func (s *SessionService) BroadcastActive(ctx context.Context) {
	if s.hub == nil {
		return
	}
	for _, key := range s.activeKeys() {
		doc, _, err := s.store.Load(ctx, key)
		if err != nil {
			continue
		}
		s.publish(key, doc)
	}
}

func (s *SessionService) publish(key string, doc *domain.GameDocument) {
	if s.hub == nil {
		return
	}
	frame, err := json.Marshal(stateFrame{Type: "state", Instance: key, State: buildSnapshot(&doc.Shared)})
	if err != nil {
		logger.Error("state frame marshal failed", "instance", key, "error", err)
		return
	}
	s.hub.Broadcast(key, frame)
}
