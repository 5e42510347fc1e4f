package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tiendalia/cart-service/internal/app/config"
	"github.com/tiendalia/cart-service/internal/domain/entity"
	"github.com/tiendalia/cart-service/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const orderCollectionName = "orders"

type orderRepository struct {
	collection *mongo.Collection
}

func NewOrderRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.OrderRepository {
	return &orderRepository{
		collection: client.Database(cfg.Database).Collection(orderCollectionName),
	}
}

func (r *orderRepository) Create(ctx context.Context, order *entity.Order) (string, error) {
	doc := *order
	doc.ID = ""

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create order: %w", err)
	}

	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objectID.Hex(), nil
}

func (r *orderRepository) GetByID(ctx context.Context, orderID string) (*entity.Order, error) {
	objID, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return nil, fmt.Errorf("invalid order ID format: %w", repository.ErrNotFound)
	}

	var doc orderDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", orderID, err)
	}
	return doc.toEntity(), nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, params repository.UpdateOrderStatusParams) error {
	objID, err := primitive.ObjectIDFromHex(params.OrderID)
	if err != nil {
		return fmt.Errorf("invalid order ID format for update status: %w", repository.ErrUpdateFailed)
	}

	filter := bson.M{
		"_id":     objID,
		"version": params.Version,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     params.Status,
			"updated_at": time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update order status for ID %s: %w", params.OrderID, err)
	}

	if result.MatchedCount == 0 {
		var existing orderDocument
		errFind := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&existing)
		if errors.Is(errFind, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		if errFind == nil && existing.Version != params.Version {
			return repository.ErrOptimisticLock
		}
		return repository.ErrUpdateFailed
	}
	return nil
}

func (r *orderRepository) List(ctx context.Context, params repository.ListOrdersParams) (*repository.ListOrdersResult, error) {
	filter := bson.M{}
	if params.SessionID != "" {
		filter["session_id"] = params.SessionID
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if params.PageSize > 0 {
		if params.Page <= 0 {
			params.Page = 1
		}
		findOptions.SetSkip(int64((params.Page - 1) * params.PageSize))
		findOptions.SetLimit(int64(params.PageSize))
	}

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listed orders: %w", err)
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}

	totalPages := 0
	if params.PageSize > 0 {
		totalPages = (int(totalCount) + params.PageSize - 1) / params.PageSize
	} else if totalCount > 0 {
		totalPages = 1
	}

	orders := make([]entity.Order, len(docs))
	for i, doc := range docs {
		orders[i] = *doc.toEntity()
	}

	return &repository.ListOrdersResult{
		Orders:     orders,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}, nil
}

// orderDocument mirrors entity.Order but keeps _id as an ObjectID so decoding
// round-trips cleanly.
type orderDocument struct {
	ID            primitive.ObjectID     `bson:"_id,omitempty"`
	SessionID     string                 `bson:"session_id"`
	Transport     string                 `bson:"transporte"`
	PaymentMethod string                 `bson:"metodo_pago"`
	Total         float64                `bson:"contenido_total"`
	Address       entity.ShippingAddress `bson:"direccion"`
	Details       []entity.OrderDetail   `bson:"detalles"`
	Status        entity.OrderStatus     `bson:"status"`
	CreatedAt     time.Time              `bson:"created_at"`
	UpdatedAt     time.Time              `bson:"updated_at"`
	Version       int                    `bson:"version"`
}

func (d *orderDocument) toEntity() *entity.Order {
	return &entity.Order{
		ID:            d.ID.Hex(),
		SessionID:     d.SessionID,
		Transport:     d.Transport,
		PaymentMethod: d.PaymentMethod,
		Total:         d.Total,
		Address:       d.Address,
		Details:       d.Details,
		Status:        d.Status,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
		Version:       d.Version,
	}
}
