package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/covidtrack/covid19-api/schema"
)

var (
	snapshotTestFirst = &schema.Snapshot{
		TotalConfirmed:  100,
		TotalDeaths:     10,
		TotalRecovered:  20,
		LastDateUpdated: "Mon Apr 27 2020",
		CountryStatistics: []schema.CountryStatistic{
			{Country: "US", Code: "us", Confirmed: 100, Deaths: 10, Recovered: 20},
		},
		UpdatedAt: time.Date(2020, time.April, 27, 2, 0, 0, 0, time.UTC),
	}

	snapshotTestSecond = &schema.Snapshot{
		TotalConfirmed:  150,
		TotalDeaths:     12,
		TotalRecovered:  30,
		LastDateUpdated: "Tue Apr 28 2020",
		CountryStatistics: []schema.CountryStatistic{
			{Country: "US", Code: "us", Confirmed: 120, Deaths: 11, Recovered: 25},
			{Country: "Italy", Code: "it", Confirmed: 30, Deaths: 1, Recovered: 5},
		},
		UpdatedAt: time.Date(2020, time.April, 28, 2, 0, 0, 0, time.UTC),
	}
)

type SnapshotTestSuite struct {
	suite.Suite
	connURI      string
	testDBName   string
	mongoClient  *mongo.Client
	testDatabase *mongo.Database
}

func NewSnapshotTestSuite(connURI, dbName string) *SnapshotTestSuite {
	return &SnapshotTestSuite{
		connURI:    connURI,
		testDBName: dbName,
	}
}

func (s *SnapshotTestSuite) SetupSuite() {
	if s.connURI == "" || s.testDBName == "" {
		s.T().Fatal("invalid test suite configuration")
	}

	opts := options.Client().ApplyURI(s.connURI)
	mongoClient, err := mongo.NewClient(opts)
	if nil != err {
		s.T().Fatalf("create mongo client with error: %s", err)
	}

	if err = mongoClient.Connect(context.Background()); nil != err {
		s.T().Fatalf("connect mongo database with error: %s", err.Error())
	}

	s.mongoClient = mongoClient
	s.testDatabase = mongoClient.Database(s.testDBName)

	// make sure the test suite is run with a clean environment
	if err := s.CleanMongoDB(); err != nil {
		s.T().Fatal(err)
	}
	schema.NewMongoDBIndexer(s.connURI, s.testDBName).IndexAll()
}

// CleanMongoDB drop the whole test mongodb
func (s *SnapshotTestSuite) CleanMongoDB() error {
	return s.testDatabase.Drop(context.Background())
}

func (s *SnapshotTestSuite) SetupTest() {
	if _, err := s.testDatabase.Collection(schema.SnapshotCollection).DeleteMany(context.Background(), bson.M{}); err != nil {
		s.T().Fatal(err)
	}
}

func (s *SnapshotTestSuite) TestGetLatestSnapshotEmpty() {
	store := NewMongoStore(s.mongoClient, s.testDBName)

	_, err := store.GetLatestSnapshot()
	s.Equal(ErrNoSnapshot, err)
}

func (s *SnapshotTestSuite) TestReplaceThenGet() {
	store := NewMongoStore(s.mongoClient, s.testDBName)

	s.NoError(store.ReplaceSnapshot(snapshotTestFirst))

	snapshot, err := store.GetLatestSnapshot()
	s.NoError(err)
	s.Equal(snapshotTestFirst.TotalConfirmed, snapshot.TotalConfirmed)
	s.Equal(snapshotTestFirst.LastDateUpdated, snapshot.LastDateUpdated)
	s.Len(snapshot.CountryStatistics, 1)
}

// TestReplaceIsUpsert checks a second replace supersedes the first
// without ever holding two documents.
func (s *SnapshotTestSuite) TestReplaceIsUpsert() {
	store := NewMongoStore(s.mongoClient, s.testDBName)

	s.NoError(store.ReplaceSnapshot(snapshotTestFirst))
	s.NoError(store.ReplaceSnapshot(snapshotTestSecond))

	count, err := s.testDatabase.Collection(schema.SnapshotCollection).CountDocuments(context.Background(), bson.M{})
	s.NoError(err)
	s.Equal(int64(1), count, "exactly one logical snapshot")

	snapshot, err := store.GetLatestSnapshot()
	s.NoError(err)
	s.Equal(snapshotTestSecond.TotalConfirmed, snapshot.TotalConfirmed)
	s.Len(snapshot.CountryStatistics, 2)
	s.Equal(schema.SnapshotID, snapshot.ID)
}

func TestSnapshotTestSuite(t *testing.T) {
	suite.Run(t, NewSnapshotTestSuite("mongodb://127.0.0.1:27017/?compressors=disabled", "test-db"))
}
