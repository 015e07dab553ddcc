package store

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/covidtrack/covid19-api/schema"
)

var (
	// ErrNoSnapshot - the store has never been populated. Callers treat
	// this as a normal empty state, not a failure.
	ErrNoSnapshot = fmt.Errorf("no snapshot")

	ErrSnapshotDecode = fmt.Errorf("decode snapshot fail")
)

// SnapshotStore persists the single aggregated snapshot.
type SnapshotStore interface {
	ReplaceSnapshot(snapshot *schema.Snapshot) error
	GetLatestSnapshot() (*schema.Snapshot, error)
}

// ReplaceSnapshot atomically supersedes the stored snapshot. The
// document is replaced in place by its fixed id, so the previous
// snapshot stays authoritative until the new one is fully written.
func (m *mongoDB) ReplaceSnapshot(snapshot *schema.Snapshot) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	snapshot.ID = schema.SnapshotID

	c := m.client.Database(m.database).Collection(schema.SnapshotCollection)
	opts := options.Replace().SetUpsert(true)
	if _, err := c.ReplaceOne(ctx, bson.M{"_id": schema.SnapshotID}, snapshot, opts); err != nil {
		log.WithField("prefix", mongoLogPrefix).Errorf("replace snapshot with error: %s", err)
		return err
	}

	log.WithFields(log.Fields{
		"prefix":    mongoLogPrefix,
		"countries": len(snapshot.CountryStatistics),
		"confirmed": snapshot.TotalConfirmed,
	}).Debug("snapshot replaced")

	return nil
}

// GetLatestSnapshot returns the current snapshot or ErrNoSnapshot.
func (m mongoDB) GetLatestSnapshot() (*schema.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	c := m.client.Database(m.database).Collection(schema.SnapshotCollection)
	opts := options.FindOne().SetSort(bson.M{"updated_at": -1})

	var snapshot schema.Snapshot
	err := c.FindOne(ctx, bson.M{}, opts).Decode(&snapshot)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		log.WithField("prefix", mongoLogPrefix).Errorf("find snapshot with error: %s", err)
		return nil, ErrSnapshotDecode
	}

	return &snapshot, nil
}
