package storage

import "covid-explorer/models"

// RecordSource loads the raw dataset. Each call performs an independent read.
type RecordSource interface {
	Load() (*models.RawDataset, error)
}

// SnapshotSink stores the latest-per-location snapshot
type SnapshotSink interface {
	WriteSnapshot(records []models.Record) error
}
