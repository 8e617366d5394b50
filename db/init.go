package db

import (
	"context"

	"github.com/SaiNageswarS/go-api-boot/odm"
)

func InitDocpilotDB(ctx context.Context, mongo odm.MongoClient, database string) error {
	return odm.EnsureIndexes[DocEmbeddingModel](ctx, mongo, database)
}
