package catalog

import (
	"time"

	"crazygels/internal/logger"
	"crazygels/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Review signal thresholds: volume growth that counts as trending, rating
// drop that counts as declining.
const (
	trendingGrowth = 1.2
	decliningDrop  = 0.3
)

type Promoter struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewPromoter(db *gorm.DB, logger *logger.Logger) *Promoter {
	return &Promoter{
		db:     db,
		logger: logger,
	}
}

// PromotionResult summarises one promotion run.
type PromotionResult struct {
	NewPromoted     int `json:"new_promoted"`
	EfficacyUpdated int `json:"efficacy_updated"`
	SignalsComputed int `json:"signals_computed"`
}

// Run promotes new anonymised products into the catalog and refreshes
// efficacy data and review signals on existing entries.
func (p *Promoter) Run() (*PromotionResult, error) {
	result := &PromotionResult{}

	promoted, err := p.promoteNew()
	if err != nil {
		return nil, err
	}
	result.NewPromoted = promoted

	updated, signals, err := p.refreshExisting()
	if err != nil {
		return nil, err
	}
	result.EfficacyUpdated = updated
	result.SignalsComputed = signals

	p.logger.Info("Promotion run: %d new, %d efficacy updates, %d signals",
		result.NewPromoted, result.EfficacyUpdated, result.SignalsComputed)
	return result, nil
}

// promoteNew inserts anonymised products that have no catalog row yet,
// with status research.
func (p *Promoter) promoteNew() (int, error) {
	var pending []models.AnonymisedProduct
	err := p.db.Model(&models.AnonymisedProduct{}).
		Select("anonymised_products.*").
		Joins("LEFT JOIN product_catalog ON product_catalog.product_hash = anonymised_products.product_hash").
		Where("product_catalog.product_hash IS NULL").
		Where("anonymised_products.name_clean IS NOT NULL AND anonymised_products.name_clean != ''").
		Find(&pending).Error
	if err != nil {
		return 0, err
	}

	count := 0
	for _, anon := range pending {
		entry := p.buildEntry(&anon)

		err := p.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_hash"}},
			DoNothing: true,
		}).Create(entry).Error
		if err != nil {
			p.logger.Error("Failed to promote %s: %v", anon.ProductHash, err)
			continue
		}

		if anon.AcquisitionLead != "" {
			p.upsertSourceStub(anon.AcquisitionLead, anon.ProductHash)
		}
		count++
	}
	return count, nil
}

// buildEntry converts an anonymised product into a catalog entry.
func (p *Promoter) buildEntry(anon *models.AnonymisedProduct) *models.CatalogProduct {
	productType := ProductTypeFor(anon.Category)
	profile := DeriveProfile(anon.NameClean, productType)

	summary := models.JSONMap{}
	for group, n := range profile.Summary {
		summary[group] = n
	}

	entry := &models.CatalogProduct{
		ProductHash:       anon.ProductHash,
		DisplayName:       DisplayName(anon.NameClean, productType),
		Category:          anon.Category,
		ProductType:       productType,
		PriceTier:         anon.PriceTier,
		ReviewSignals:     string(models.SignalStable),
		KeyActives:        profile.KeyActives,
		IngredientSummary: summary,
		SuitableFor:       profile.SuitableFor,
		Contraindications: profile.Contraindications,
		Status:            string(models.StatusResearch),
		Source:            "scraper",
	}
	if entry.PriceTier == "" {
		entry.PriceTier = "unknown"
	}
	if anon.AcquisitionLead != "" {
		lead := anon.AcquisitionLead
		entry.AcquisitionLead = &lead
	}

	if rating := signalFloat(anon.EfficacySignals, "rating"); rating != nil {
		entry.EfficacyScore = rating
	}
	entry.ReviewVolume = signalInt(anon.EfficacySignals, "review_volume")

	return entry
}

// refreshExisting copies the latest efficacy data onto catalog rows and
// recomputes review signals against the previously recorded volume/rating.
func (p *Promoter) refreshExisting() (int, int, error) {
	cutoff := time.Now().Add(-24 * time.Hour)

	var fresh []models.AnonymisedProduct
	if err := p.db.Where("last_updated >= ?", cutoff).Find(&fresh).Error; err != nil {
		return 0, 0, err
	}

	updated := 0
	signals := 0
	for _, anon := range fresh {
		var entry models.CatalogProduct
		err := p.db.Where("product_hash = ?", anon.ProductHash).First(&entry).Error
		if err == gorm.ErrRecordNotFound {
			continue
		}
		if err != nil {
			return updated, signals, err
		}

		changed := false

		rating := signalFloat(anon.EfficacySignals, "rating")
		if rating != nil {
			if entry.EfficacyScore == nil || *entry.EfficacyScore != *rating {
				changed = true
			}
			signal := reviewSignal(entry.ReviewVolume, signalInt(anon.EfficacySignals, "review_volume"),
				entry.EfficacyScore, rating)
			if signal != entry.ReviewSignals {
				entry.ReviewSignals = signal
				signals++
				changed = true
			}
			entry.EfficacyScore = rating
		}

		if volume := signalInt(anon.EfficacySignals, "review_volume"); volume > 0 && volume != entry.ReviewVolume {
			entry.ReviewVolume = volume
			changed = true
		}

		if anon.PriceTier != "" && anon.PriceTier != "unknown" && anon.PriceTier != entry.PriceTier {
			entry.PriceTier = anon.PriceTier
			changed = true
		}

		if !changed {
			continue
		}
		if err := p.db.Save(&entry).Error; err != nil {
			p.logger.Error("Failed to refresh %s: %v", entry.ProductHash, err)
			continue
		}
		updated++
	}
	return updated, signals, nil
}

func (p *Promoter) upsertSourceStub(lead, productHash string) {
	if len(lead) > 32 {
		lead = lead[:32]
	}
	stub := &models.SourceIntelligence{
		AcquisitionLead: lead,
		ProductHash:     productHash,
	}
	err := p.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "acquisition_lead"}},
		DoUpdates: clause.AssignmentColumns([]string{"product_hash", "updated_at"}),
	}).Create(stub).Error
	if err != nil {
		p.logger.Error("Failed to upsert source stub for %s: %v", productHash, err)
	}
}

// reviewSignal classifies the review trend between two observations.
func reviewSignal(prevVolume, newVolume int, prevRating, newRating *float64) string {
	if prevVolume > 0 && float64(newVolume) > float64(prevVolume)*trendingGrowth {
		return string(models.SignalTrending)
	}
	if prevRating != nil && newRating != nil && *newRating < *prevRating-decliningDrop {
		return string(models.SignalDeclining)
	}
	return string(models.SignalStable)
}

func signalFloat(signals models.JSONMap, key string) *float64 {
	if signals == nil {
		return nil
	}
	switch v := signals[key].(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	}
	return nil
}

func signalInt(signals models.JSONMap, key string) int {
	if signals == nil {
		return 0
	}
	switch v := signals[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}
