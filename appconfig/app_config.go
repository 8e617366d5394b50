package appconfig

import (
	"github.com/SaiNageswarS/go-api-boot/config"
)

type AppConfig struct {
	config.BootConfig `ini:",extends"`

	PaperlessURL   string `env:"PAPERLESS-URL" ini:"paperless_url"`
	PaperlessToken string `env:"PAPERLESS-TOKEN" ini:"paperless_token"`

	MongoURI      string `env:"MONGO-URI" ini:"mongo_uri"`
	MongoDatabase string `env:"MONGO-DATABASE" ini:"mongo_database"`

	AnalyzerModel  string `env:"ANALYZER-MODEL" ini:"analyzer_model"`
	VerifierModel  string `env:"VERIFIER-MODEL" ini:"verifier_model"`
	VisionModel    string `env:"VISION-MODEL" ini:"vision_model"`
	EmbeddingModel string `env:"EMBEDDING-MODEL" ini:"embedding_model"`

	MaxAttempts       int     `ini:"max_attempts"`
	JobItemsPerSecond float64 `ini:"job_items_per_second"`
	CleanupThreshold  float64 `ini:"cleanup_threshold"`
	MetricsPort       int     `ini:"metrics_port"`
}
