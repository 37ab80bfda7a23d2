package database

import (
	"fmt"
	"strings"

	"crazygels/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		// SQLite can't run the Postgres bootstrap SQL
		if err := Migrate(db); err != nil {
			return nil, err
		}
		return &Database{DB: db}, nil
	}

	// PostgreSQL for production (Neon or RDS)
	db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Exec(createTablesSQL).Error; err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

// Migrate creates the schema through gorm's migrator. Used for SQLite and in
// handler tests.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.CatalogProduct{},
		&models.AnonymisedProduct{},
		&models.StockingDecision{},
		&models.SourceIntelligence{},
		&models.ScrapedProduct{},
		&models.PricePoint{},
		&models.PriceAlert{},
		&models.PriceAggregate{},
		&models.WebhookEvent{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS product_catalog (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	product_hash TEXT UNIQUE NOT NULL,
	display_name TEXT NOT NULL,
	category TEXT,
	product_type TEXT,
	price_tier TEXT DEFAULT 'unknown',
	efficacy_score DECIMAL(3,1),
	review_signals TEXT DEFAULT 'stable',
	review_volume INTEGER DEFAULT 0,
	key_actives JSONB,
	ingredient_summary JSONB,
	suitable_for JSONB,
	contraindications JSONB,
	image_url TEXT,
	description_generated TEXT,
	source_url TEXT,
	brand TEXT,
	retail_price DECIMAL(10,2),
	currency TEXT,
	price_original DECIMAL(10,2),
	price_currency TEXT,
	status TEXT DEFAULT 'research',
	acquisition_lead TEXT,
	source TEXT DEFAULT 'unknown',
	shopify_product_id BIGINT,
	listed_at TIMESTAMPTZ,
	created_at TIMESTAMPTZ DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS anonymised_products (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	product_hash TEXT UNIQUE NOT NULL,
	category TEXT,
	name_clean TEXT,
	brand_type TEXT,
	price_tier TEXT,
	efficacy_signals JSONB,
	market_signals JSONB,
	acquisition_lead TEXT,
	last_updated TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS stocking_decisions (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	product_hash TEXT UNIQUE NOT NULL,
	decision TEXT NOT NULL,
	target_price DECIMAL(10,2),
	initial_quantity INTEGER DEFAULT 0,
	fulfillment_method TEXT DEFAULT 'warehouse',
	notes TEXT,
	decided_by TEXT,
	created_at TIMESTAMPTZ DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS source_intelligence (
	id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	acquisition_lead TEXT UNIQUE NOT NULL,
	product_hash TEXT NOT NULL,
	supplier_notes TEXT,
	created_at TIMESTAMPTZ DEFAULT NOW(),
	updated_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS products (
	id SERIAL PRIMARY KEY,
	source TEXT NOT NULL,
	external_id TEXT NOT NULL,
	name TEXT,
	brand TEXT,
	category TEXT,
	url TEXT,
	image_url TEXT,
	rating DECIMAL(3,1),
	review_count INTEGER DEFAULT 0,
	first_seen_at TIMESTAMPTZ DEFAULT NOW(),
	last_seen_at TIMESTAMPTZ DEFAULT NOW(),
	UNIQUE (source, external_id)
);

CREATE TABLE IF NOT EXISTS price_history (
	id SERIAL PRIMARY KEY,
	product_id INTEGER NOT NULL REFERENCES products(id),
	price DECIMAL(10,2),
	currency TEXT DEFAULT 'EUR',
	in_stock BOOLEAN DEFAULT true,
	scraped_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS price_alerts (
	id SERIAL PRIMARY KEY,
	product_id INTEGER NOT NULL REFERENCES products(id),
	old_price DECIMAL(10,2),
	new_price DECIMAL(10,2),
	change_pct DECIMAL(6,2),
	is_reviewed BOOLEAN DEFAULT false,
	reviewed_at TIMESTAMPTZ,
	detected_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS price_aggregates (
	id SERIAL PRIMARY KEY,
	source TEXT,
	category TEXT,
	avg_price DECIMAL(10,2),
	min_price DECIMAL(10,2),
	max_price DECIMAL(10,2),
	product_count INTEGER,
	computed_at TIMESTAMPTZ DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS webhook_events (
	id SERIAL PRIMARY KEY,
	topic TEXT NOT NULL,
	shop_domain TEXT,
	resource_id BIGINT,
	processed BOOLEAN DEFAULT false,
	received_at TIMESTAMPTZ DEFAULT NOW()
);
`
