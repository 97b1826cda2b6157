package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"minesweeper_webapp/internal/domain"
	"minesweeper_webapp/internal/game"
	"minesweeper_webapp/internal/leaderboard"
	"minesweeper_webapp/internal/logger"
	"minesweeper_webapp/internal/repository"
	"minesweeper_webapp/internal/service"
	"minesweeper_webapp/internal/store"

	"github.com/prometheus/client_golang/prometheus"
)

var errNotJoined = errors.New("player has not joined")

var commandsHandled = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "commands_handled_total",
		Help: "Total recognized text commands by verb",
	},
	[]string{"verb"},
)

func init() {
	prometheus.MustRegister(commandsHandled)
}

const helpText = `Minesweeper commands:
/join - join this game
/play [easy|medium|hard] - start a fresh board
/reveal <row> <col> - dig a cell
/flag <row> <col> - toggle a flag
/leaderboard - player standings
/help - this message`

// Dispatcher runs parsed commands against the per-player boards of a
// game instance. Replies are plain text; an empty reply means "send
// nothing".
type Dispatcher struct {
	store   store.DocumentStore
	engine  *game.Engine
	archive repository.MatchArchive
}

func NewDispatcher(st store.DocumentStore, engine *game.Engine, archive repository.MatchArchive) *Dispatcher {
	if archive == nil {
		archive = repository.NopArchive{}
	}
	return &Dispatcher{store: st, engine: engine, archive: archive}
}

// Handle parses and executes one inbound line. The instance key groups
// players into one shared document; unknown verbs and non-command text
// are ignored without a reply.
func (d *Dispatcher) Handle(ctx context.Context, instanceKey, playerID, username, line string) string {
	cmd, ok := Parse(line)
	if !ok {
		return ""
	}

	var reply string
	switch cmd.Verb {
	case "join":
		reply = d.join(ctx, instanceKey, playerID, username)
	case "play":
		reply = d.play(ctx, instanceKey, playerID, cmd.Args)
	case "reveal":
		reply = d.reveal(ctx, instanceKey, playerID, cmd.Args)
	case "flag":
		reply = d.flag(ctx, instanceKey, playerID, cmd.Args)
	case "leaderboard":
		reply = d.leaderboard(ctx, instanceKey)
	case "help":
		reply = helpText
	default:
		return ""
	}

	commandsHandled.WithLabelValues(cmd.Verb).Inc()
	return reply
}

func (d *Dispatcher) join(ctx context.Context, key, playerID, username string) string {
	var joined bool
	doc, reject := d.mutate(ctx, key, func(doc *domain.GameDocument) error {
		_, ok := doc.Player(playerID)
		joined = !ok
		if joined {
			doc.EnsurePlayer(playerID, username)
		}
		return nil
	})
	if doc == nil {
		return reject
	}
	if !joined {
		return "You are already in. Use /play to start a game."
	}
	return fmt.Sprintf("Welcome, %s! Use /play [easy|medium|hard] to start a game.", displayName(doc, playerID))
}

func (d *Dispatcher) play(ctx context.Context, key, playerID string, args []string) string {
	difficulty := domain.DifficultyMedium
	if len(args) > 0 {
		parsed, ok := domain.ParseDifficulty(args[0])
		if !ok {
			return "Unknown difficulty. Choose easy, medium or hard."
		}
		difficulty = parsed
	}

	doc, reject := d.mutate(ctx, key, func(doc *domain.GameDocument) error {
		p, ok := doc.Player(playerID)
		if !ok {
			return errNotJoined
		}
		return d.engine.StartPlayerGame(p, difficulty)
	})
	if doc == nil {
		return reject
	}

	service.GamesStarted.WithLabelValues(repository.ModeSolo).Inc()
	p, _ := doc.Player(playerID)
	return fmt.Sprintf("New %s game, %d bombs hidden. /reveal <row> <col> to dig.\n%s",
		strings.ToLower(string(p.Session.Difficulty)), p.Session.BombCount, fencedBoard(p.Session.Grid, p.Session.GridSize, false))
}

func (d *Dispatcher) reveal(ctx context.Context, key, playerID string, args []string) string {
	row, col, ok := parseCoords(args)
	if !ok {
		return "Usage: /reveal <row> <col>"
	}

	var res game.MoveResult
	doc, reject := d.mutate(ctx, key, func(doc *domain.GameDocument) error {
		p, ok := doc.Player(playerID)
		if !ok {
			return errNotJoined
		}
		var err error
		res, err = d.engine.RevealPlayer(p, row, col)
		return err
	})
	if doc == nil {
		return reject
	}

	p, _ := doc.Player(playerID)
	s := p.Session
	switch {
	case res.Lost:
		d.archiveMatch(key, playerID, s, repository.ResultLose, res)
		return "💥 BOOM! That was a bomb. Game over.\n" + fencedBoard(s.Grid, s.GridSize, true)
	case res.Won:
		d.archiveMatch(key, playerID, s, repository.ResultWin, res)
		return fmt.Sprintf("🎉 Board cleared! +%d points (total %d).\n%s",
			res.ScoreEarned, p.Score, fencedBoard(s.Grid, s.GridSize, true))
	default:
		return fmt.Sprintf("Revealed %d. %d of %d safe cells open.\n%s",
			res.Outcome.Count(), s.RevealedCount, s.TotalSafeCells(), fencedBoard(s.Grid, s.GridSize, false))
	}
}

func (d *Dispatcher) flag(ctx context.Context, key, playerID string, args []string) string {
	row, col, ok := parseCoords(args)
	if !ok {
		return "Usage: /flag <row> <col>"
	}

	doc, reject := d.mutate(ctx, key, func(doc *domain.GameDocument) error {
		p, ok := doc.Player(playerID)
		if !ok {
			return errNotJoined
		}
		return d.engine.FlagPlayer(p, row, col)
	})
	if doc == nil {
		return reject
	}

	p, _ := doc.Player(playerID)
	s := p.Session
	return fmt.Sprintf("Flags: %d/%d\n%s", s.FlagCount, s.BombCount, fencedBoard(s.Grid, s.GridSize, false))
}

func (d *Dispatcher) leaderboard(ctx context.Context, key string) string {
	doc, _, err := d.store.Load(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "No players yet. /join to get on the board."
	}
	if err != nil {
		logger.Error("leaderboard load failed", "instance", key, "error", err)
		return ""
	}

	entries := leaderboard.Build(doc.Players)
	if len(entries) == 0 {
		return "No players yet. /join to get on the board."
	}
	return leaderboard.Markdown(entries)
}

// mutate wraps store.Update with the reply conventions of this path: a
// nil document means the command was rejected (or nothing could be
// loaded) and the returned string is the reply; a non-nil document means
// the mutation applied, with persistence errors logged and swallowed.
func (d *Dispatcher) mutate(ctx context.Context, key string, fn func(doc *domain.GameDocument) error) (*domain.GameDocument, string) {
	doc, err := store.Update(ctx, d.store, key, fn)
	if err == nil {
		return doc, ""
	}
	if doc != nil {
		logger.Error("command persist failed", "instance", key, "error", err)
		return doc, ""
	}
	if reply, ok := rejectionReply(err); ok {
		return nil, reply
	}
	logger.Error("command failed", "instance", key, "error", err)
	return nil, ""
}

func rejectionReply(err error) (string, bool) {
	switch {
	case errors.Is(err, errNotJoined):
		return "Join the game first with /join.", true
	case errors.Is(err, game.ErrNoActiveGame):
		return "No game running. Start one with /play.", true
	case errors.Is(err, game.ErrGameOver):
		return "That game is finished. /play to start another.", true
	case errors.Is(err, game.ErrOutOfBounds):
		return "Those coordinates are off the board.", true
	case errors.Is(err, game.ErrCellRevealed):
		return "That cell is already revealed.", true
	case errors.Is(err, game.ErrCellFlagged):
		return "That cell is flagged. Unflag it first with /flag.", true
	case errors.Is(err, game.ErrBadDifficulty):
		return "Unknown difficulty. Choose easy, medium or hard.", true
	}
	return "", false
}

func (d *Dispatcher) archiveMatch(key, playerID string, s *domain.PlayerSession, result string, res game.MoveResult) {
	service.GamesFinished.WithLabelValues(repository.ModeSolo, result).Inc()
	m := &repository.Match{
		InstanceKey:     key,
		PlayerID:        playerID,
		Mode:            repository.ModeSolo,
		Difficulty:      s.Difficulty,
		Result:          result,
		DurationSeconds: res.DurationSeconds,
		Revealed:        s.RevealedCount,
		Score:           res.ScoreEarned,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.archive.Record(ctx, m); err != nil {
			logger.Error("archive match failed", "instance", key, "player", playerID, "error", err)
		}
	}()
}

func parseCoords(args []string) (int, int, bool) {
	if len(args) < 2 {
		return 0, 0, false
	}
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, false
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, false
	}
	// 1-based on the wire, 0-based inside.
	return row - 1, col - 1, true
}

func fencedBoard(grid domain.Grid, size int, full bool) string {
	return "```\n" + game.RenderBoard(grid, size, full) + "```"
}

func displayName(doc *domain.GameDocument, playerID string) string {
	if p, ok := doc.Player(playerID); ok && p.Username != "" {
		return p.Username
	}
	return playerID
}
