package bot

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/findorigin/findorigin/internal/model"
	"github.com/findorigin/findorigin/internal/pipeline"
	"github.com/findorigin/findorigin/pkg/telegram"
)

// Analyzer is the pipeline the bot drives.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*model.AnalysisResult, error)
}

// Handler processes incoming Telegram updates.
type Handler struct {
	analyzer Analyzer
	sender   telegram.Client
}

// NewHandler creates an update handler.
func NewHandler(analyzer Analyzer, sender telegram.Client) *Handler {
	return &Handler{analyzer: analyzer, sender: sender}
}

// HandleUpdate runs the pipeline for one update and replies in chat. The
// user always gets a message; failures degrade to an explanatory reply and
// are reported to the caller only for logging.
func (h *Handler) HandleUpdate(ctx context.Context, update *telegram.Update) error {
	msg := update.EffectiveMessage()
	if msg == nil {
		return nil
	}
	chatID := msg.Chat.ID
	log := zap.L().With(zap.Int64("chat_id", chatID))

	text, onlyLink := InputText(msg)
	if onlyLink {
		return h.send(ctx, chatID, msgOnlyLink)
	}
	if text == "" {
		return h.send(ctx, chatID, msgEmptyInput)
	}

	// Acknowledge before the slow part so the user sees the bot is alive.
	if err := h.send(ctx, chatID, msgProcessing); err != nil {
		log.Error("bot: processing ack failed, check bot token", zap.Error(err))
		return err
	}

	result, err := h.analyzer.Analyze(ctx, text)
	if err != nil {
		if eris.Is(err, pipeline.ErrSearchThrottled) {
			return h.send(ctx, chatID, msgSearchThrottled)
		}
		return eris.Wrap(err, "bot: analyze")
	}

	return h.send(ctx, chatID, RenderResult(result))
}

func (h *Handler) send(ctx context.Context, chatID int64, text string) error {
	if err := h.sender.SendMessage(ctx, chatID, text); err != nil {
		zap.L().Error("bot: send failed", zap.Int64("chat_id", chatID), zap.Error(err))
		return err
	}
	return nil
}
