package bot

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"minesweeper_webapp/internal/command"
	"minesweeper_webapp/internal/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CommandBot bridges Telegram chats to the command dispatcher. Every chat
// plays on its own shared board keyed by the chat ID.
type CommandBot struct {
	bot        *tgbotapi.BotAPI
	dispatcher *command.Dispatcher
	stopCh     chan struct{}
	wg         sync.WaitGroup
	log        *slog.Logger
}

// NewCommandBot authorizes against the Telegram API with the given token.
func NewCommandBot(token string, dispatcher *command.Dispatcher) (*CommandBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log := logger.With("component", "command_bot")
	log.Info("bot authorized", "username", api.Self.UserName)

	return &CommandBot{
		bot:        api,
		dispatcher: dispatcher,
		stopCh:     make(chan struct{}),
		log:        log,
	}, nil
}

// Start runs the long-poll update loop until Stop is called.
func (b *CommandBot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.bot.GetUpdatesChan(u)
	b.log.Info("starting bot update loop")

	for {
		select {
		case <-b.stopCh:
			b.log.Info("stopping bot update loop")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}

			msg := update.Message
			if msg == nil || msg.From == nil || msg.Text == "" {
				continue
			}

			b.wg.Add(1)
			go func(msg *tgbotapi.Message) {
				defer b.wg.Done()
				b.handleMessage(msg)
			}(msg)
		}
	}
}

// Stop gracefully stops the bot.
func (b *CommandBot) Stop() {
	b.log.Info("stopping command bot...")
	close(b.stopCh)
	b.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("command bot stopped gracefully")
	case <-time.After(10 * time.Second):
		b.log.Warn("bot shutdown timeout, some handlers may not have completed")
	}
}

func (b *CommandBot) handleMessage(msg *tgbotapi.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	instanceKey := fmt.Sprintf("chat:%d", msg.Chat.ID)
	playerID := fmt.Sprintf("tg:%d", msg.From.ID)
	username := msg.From.UserName
	if username == "" {
		username = msg.From.FirstName
	}

	response := b.dispatcher.Handle(ctx, instanceKey, playerID, username, msg.Text)
	if response == "" {
		return
	}

	reply := tgbotapi.NewMessage(msg.Chat.ID, response)
	reply.ParseMode = tgbotapi.ModeMarkdown
	reply.ReplyToMessageID = msg.MessageID

	if _, err := b.bot.Send(reply); err != nil {
		b.log.Error("error sending message", "error", err)
	}
}
