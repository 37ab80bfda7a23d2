package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"crazygels/internal/catalog"
	"crazygels/internal/config"
	"crazygels/internal/database"
	"crazygels/internal/events"
	"crazygels/internal/export"
	"crazygels/internal/logger"
)

// EventProcessor dispatches catalog events to the right pipeline stage.
type EventProcessor struct {
	config   *config.Config
	logger   *logger.Logger
	db       *database.Database
	ingester *Ingester
	promoter *catalog.Promoter
	reporter *export.Reporter
	producer *events.Producer
}

func NewEventProcessor(cfg *config.Config, logger *logger.Logger, db *database.Database) *EventProcessor {
	return &EventProcessor{
		config:   cfg,
		logger:   logger,
		db:       db,
		ingester: NewIngester(db.DB, logger),
		promoter: catalog.NewPromoter(db.DB, logger),
		reporter: export.NewReporter(db.DB, logger),
		producer: events.NewProducer(cfg.KafkaBrokers, logger),
	}
}

func (ep *EventProcessor) Process(event events.Event) error {
	switch event.Type {
	case events.TypeScrapedBatch:
		return ep.processBatch(event)
	case events.TypeExportRequested:
		return ep.writeReports()
	case events.TypeProductListed:
		ep.logger.Info("Product %s listed on Shopify", event.ProductHash)
		return nil
	case events.TypePriceAlert, events.TypeCatalogPromoted:
		ep.logger.Debug("Event %s acknowledged", event.Type)
		return nil
	default:
		ep.logger.Warn("Unknown event type %s", event.Type)
		return nil
	}
}

// processBatch ingests one scraper batch, then runs promotion so fresh
// intelligence reaches the catalog in the same pass.
func (ep *EventProcessor) processBatch(event events.Event) error {
	raw, ok := event.Data["items"]
	if !ok {
		return fmt.Errorf("scrape batch without items")
	}

	// Re-marshal through JSON: map payloads arrive as []interface{}.
	encoded, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to re-encode batch: %w", err)
	}
	var items []ScrapedItem
	if err := json.Unmarshal(encoded, &items); err != nil {
		return fmt.Errorf("failed to decode batch items: %w", err)
	}

	result, err := ep.ingester.Ingest(items)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	ep.logger.Info("Ingested batch: %d items, %d new, %d alerts", result.Items, result.NewItems, result.Alerts)

	for _, alert := range result.NewAlerts {
		ep.producer.Publish(context.Background(), events.Event{
			Type: events.TypePriceAlert,
			Data: map[string]interface{}{
				"product_id": alert.ProductID,
				"old_price":  alert.OldPrice,
				"new_price":  alert.NewPrice,
				"change_pct": alert.ChangePct,
			},
		})
	}

	promo, err := ep.promoter.Run()
	if err != nil {
		return fmt.Errorf("promotion failed: %w", err)
	}
	ep.logger.Info("Promotion: %d new, %d refreshed", promo.NewPromoted, promo.EfficacyUpdated)

	return nil
}

// writeReports drops the weekly report files into the export directory.
func (ep *EventProcessor) writeReports() error {
	dir := os.Getenv("EXPORT_DIR")
	if dir == "" {
		dir = "exports"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create export dir: %w", err)
	}

	stamp := time.Now().Format("2006-01-02")

	files := []struct {
		name  string
		build func() ([]byte, error)
	}{
		{fmt.Sprintf("intelligence_%s.json", stamp), ep.reporter.Intelligence},
		{fmt.Sprintf("price_trends_%s.csv", stamp), ep.reporter.PriceTrendsCSV},
		{fmt.Sprintf("alerts_%s.json", stamp), ep.reporter.Alerts},
	}

	for _, f := range files {
		data, err := f.build()
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", f.name, err)
		}
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		ep.logger.Info("Wrote report %s", path)
	}
	return nil
}
