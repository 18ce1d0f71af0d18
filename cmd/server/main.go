package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"fraudit/internal/config"
	"fraudit/internal/domain"
	"fraudit/internal/extractor"
	"fraudit/internal/extractor/anthropic"
	"fraudit/internal/extractor/gemini"
	"fraudit/internal/extractor/groq"
	"fraudit/internal/extractor/openai"
	"fraudit/internal/handler"
	"fraudit/internal/pdftext"
	"fraudit/internal/port"
	"fraudit/internal/recon"
	"fraudit/internal/router"
	"fraudit/internal/service"
	"fraudit/internal/validate"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func registerExtractors() {
	extractor.Register(domain.ProviderOpenAI, func(cfg *config.ProviderConfig) (port.InvoiceExtractor, error) {
		return openai.NewExtractor(cfg), nil
	})
	extractor.Register(domain.ProviderGemini, func(cfg *config.ProviderConfig) (port.InvoiceExtractor, error) {
		return gemini.NewExtractor(cfg), nil
	})
	extractor.Register(domain.ProviderAnthropic, func(cfg *config.ProviderConfig) (port.InvoiceExtractor, error) {
		return anthropic.NewExtractor(cfg), nil
	})
	extractor.Register(domain.ProviderGroq, func(cfg *config.ProviderConfig) (port.InvoiceExtractor, error) {
		return groq.NewExtractor(cfg), nil
	})
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize extractors
	registerExtractors()
	extractors := make(map[domain.Provider]port.InvoiceExtractor, len(domain.AllProviders()))
	for _, p := range domain.AllProviders() {
		ext, err := extractor.New(p, cfg.Extract.For(string(p)))
		if err != nil {
			return fmt.Errorf("failed to initialize %s extractor: %w", p, err)
		}
		extractors[p] = ext
	}

	// Initialize pipeline
	validator, err := validate.New()
	if err != nil {
		return fmt.Errorf("failed to compile invoice schema: %w", err)
	}
	checker := recon.NewChecker(cfg.Recon.Epsilon, cfg.Recon.FraudScoreFloor)
	auditSvc := service.NewAuditService(extractors, validator, checker, &cfg.Pipeline)

	// Initialize handlers
	auditH := handler.NewAuditHandler(auditSvc, pdftext.NewExtractor(), cfg.Upload.MaxFileSizeMB)
	healthH := handler.NewHealthHandler()

	// Setup router
	r := router.Setup(auditH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
