package report

import (
	"context"
	"fmt"
	"log/slog"

	"diabetes-assistant/internal/assessment"
)

// TelegramClient delivers finished reports to a care-team chat.
type TelegramClient interface {
	SendDocument(ctx context.Context, chatID int64, data []byte, fileName, caption string) error
}

type Service struct {
	renderer Renderer
	tgClient TelegramClient
	chatID   int64
	logger   *slog.Logger
}

// NewService builds reports with renderer. When tg is non-nil every report
// is also sent to chatID.
func NewService(renderer Renderer, tg TelegramClient, chatID int64, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		renderer: renderer,
		tgClient: tg,
		chatID:   chatID,
		logger:   logger,
	}
}

func (s *Service) Build(ctx context.Context, in assessment.ReportInput) (*assessment.Report, error) {
	layout := BuildLayout(in)
	data, err := s.renderer.Render(layout)
	if err != nil {
		return nil, err
	}
	s.logger.Info("report generated", "pages", len(layout.Pages), "bytes", len(data), "risk_level", in.RiskLevel)

	rep := &assessment.Report{
		FileName:    assessment.ReportFileName,
		ContentType: assessment.ReportContentType,
		Pages:       len(layout.Pages),
		Data:        data,
	}
	s.deliver(ctx, rep, in)
	return rep, nil
}

func (s *Service) deliver(ctx context.Context, rep *assessment.Report, in assessment.ReportInput) {
	if s.tgClient == nil {
		return
	}
	caption := fmt.Sprintf("Diabetes risk report: %s (%.2f%%)", in.RiskLevel, in.Probability*100)
	if err := s.tgClient.SendDocument(ctx, s.chatID, rep.Data, rep.FileName, caption); err != nil {
		s.logger.Warn("sending report to telegram failed", "chat_id", s.chatID, "error", err)
		return
	}
	s.logger.Info("report sent to telegram", "chat_id", s.chatID)
}
