package storage

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	rates "github.com/malusev998/privat-rates"
	"github.com/malusev998/privat-rates/logger"
)

type (
	mongoStorage struct {
		ctx        context.Context
		client     *mongo.Client
		collection *mongo.Collection
		logger     *logrus.Logger
	}

	mongoQuote struct {
		ID        primitive.ObjectID   `bson:"_id,omitempty"`
		Date      time.Time            `bson:"date"`
		Currency  string               `bson:"currency"`
		Sale      primitive.Decimal128 `bson:"sale"`
		Purchase  primitive.Decimal128 `bson:"purchase"`
		CreatedAt time.Time            `bson:"createdAt"`
	}
)

func NewMongoStorage(config MongoDBConfig) (rates.Storage, error) {
	ctx := config.Cxt

	if ctx == nil {
		ctx = context.Background()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.ConnectionString))

	if err != nil {
		return nil, err
	}

	log := config.Logger

	if log == nil {
		log = logger.Discard()
	}

	st := mongoStorage{
		ctx:        ctx,
		client:     client,
		collection: client.Database(config.Database).Collection(config.Collection),
		logger:     log,
	}

	if config.Migrate {
		if err := st.Migrate(); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}

	return st, nil
}

func toMongoQuote(date time.Time, quote rates.RateQuote, createdAt time.Time) (mongoQuote, error) {
	sale, err := primitive.ParseDecimal128(quote.Sale.String())

	if err != nil {
		return mongoQuote{}, err
	}

	purchase, err := primitive.ParseDecimal128(quote.Purchase.String())

	if err != nil {
		return mongoQuote{}, err
	}

	return mongoQuote{
		Date:      date,
		Currency:  string(quote.Currency),
		Sale:      sale,
		Purchase:  purchase,
		CreatedAt: createdAt,
	}, nil
}

func (q mongoQuote) toStoredQuote() (rates.StoredQuote, error) {
	currency, err := rates.ParseCurrency(q.Currency)

	if err != nil {
		return rates.StoredQuote{}, err
	}

	sale, err := decimal.NewFromString(q.Sale.String())

	if err != nil {
		return rates.StoredQuote{}, err
	}

	purchase, err := decimal.NewFromString(q.Purchase.String())

	if err != nil {
		return rates.StoredQuote{}, err
	}

	return rates.StoredQuote{
		RateQuote: rates.RateQuote{
			Currency: currency,
			Sale:     sale,
			Purchase: purchase,
		},
		Date: q.Date,
		ID:   q.ID,
	}, nil
}

func (m mongoStorage) Store(reports []rates.DayReport) ([]rates.StoredQuote, error) {
	documents := make([]interface{}, 0, len(reports)*len(rates.TrackedCurrencies))
	quotes := make([]rates.StoredQuote, 0, cap(documents))
	now := time.Now()

	for _, report := range reports {
		date, err := rates.ParseDate(report.Date)

		if err != nil {
			return nil, err
		}

		for _, currency := range report.Currencies() {
			quote := report.Rates[currency]
			document, err := toMongoQuote(date, quote, now)

			if err != nil {
				return nil, err
			}

			documents = append(documents, document)
			quotes = append(quotes, rates.StoredQuote{RateQuote: quote, Date: date})
		}
	}

	if len(documents) == 0 {
		return quotes, nil
	}

	result, err := m.collection.InsertMany(m.ctx, documents)

	if err != nil {
		return nil, err
	}

	for i, id := range result.InsertedIDs {
		quotes[i].ID = id
	}

	m.logger.Debugf("Stored %d quotes in %s", len(quotes), m.collection.Name())

	return quotes, nil
}

func (m mongoStorage) GetByDate(currency rates.Currency, start, end time.Time) ([]rates.StoredQuote, error) {
	filter := bson.M{
		"currency": string(currency),
		"date": bson.M{
			"$gte": start,
			"$lte": end,
		},
	}

	cursor, err := m.collection.Find(m.ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))

	if err != nil {
		return nil, err
	}

	defer cursor.Close(m.ctx)

	var documents []mongoQuote

	if err := cursor.All(m.ctx, &documents); err != nil {
		return nil, err
	}

	quotes := make([]rates.StoredQuote, 0, len(documents))

	for _, document := range documents {
		quote, err := document.toStoredQuote()

		if err != nil {
			return nil, err
		}

		quotes = append(quotes, quote)
	}

	return quotes, nil
}

func (m mongoStorage) GetStorageProviderName() string {
	return string(MongoDB)
}

func (m mongoStorage) Migrate() error {
	_, err := m.collection.Indexes().CreateOne(m.ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "currency", Value: 1},
			{Key: "date", Value: -1},
		},
	})

	return err
}

func (m mongoStorage) Drop() error {
	return m.collection.Drop(m.ctx)
}

func (m mongoStorage) Close() error {
	return m.client.Disconnect(m.ctx)
}
