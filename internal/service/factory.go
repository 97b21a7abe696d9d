package service

import (
	"draftdesk.app/server/common/llm"
	"draftdesk.app/server/core/config"
	"draftdesk.app/server/internal/canvas"
)

type Services struct {
	canvasClient *canvas.Client
	llm          llm.Client
	draftsCfg    config.DraftsConfig
	allowedExts  []string
}

type ServicesConfig struct {
	CanvasClient *canvas.Client
	LLM          llm.Client // nil when no generative credential is configured
	Drafts       config.DraftsConfig
	AllowedExts  []string
}

func NewServices(cfg ServicesConfig) *Services {
	return &Services{
		canvasClient: cfg.CanvasClient,
		llm:          cfg.LLM,
		draftsCfg:    cfg.Drafts,
		allowedExts:  cfg.AllowedExts,
	}
}

func (s *Services) Canvas() CanvasService {
	return NewCanvasService(s.canvasClient, s.allowedExts)
}

func (s *Services) Style() StyleService {
	return NewStyleService(s.llm, s.canvasClient)
}

func (s *Services) Drafts() DraftService {
	return NewDraftService(s.llm, s.canvasClient, s.draftsCfg.MaxConcurrent, s.draftsCfg.MaxTokens)
}
